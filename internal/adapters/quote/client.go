package quote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/satstack/swapkit/internal/logger"
	"github.com/satstack/swapkit/pkg/auth"
	"github.com/satstack/swapkit/pkg/swap"
	"github.com/satstack/swapkit/pkg/trade"
)

// Client talks to the swap-aggregator checkout API. The response is treated
// as opaque beyond the fields the call composer consumes; validation happens
// there, fail-closed.
type Client struct {
	baseURL    string
	httpClient *http.Client
	auth       *auth.Manager
}

var _ trade.QuoteService = (*Client)(nil)

// NewClient creates an aggregator client. authManager may be nil when the
// API needs no session token.
func NewClient(baseURL string, authManager *auth.Manager) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		auth:       authManager,
	}
}

type checkoutLeg struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

type checkoutRequest struct {
	ChainID     int64         `json:"chainId"`
	From        string        `json:"from"`
	To          string        `json:"to"`
	TokenToSell string        `json:"tokenToSellAddress,omitempty"` // omitted for native sells
	TokensToBuy []checkoutLeg `json:"tokensToBuy"`
}

type checkoutStep struct {
	TargetAddress string `json:"targetAddress"`
	RouterAddress string `json:"routerAddress"`
	Data          string `json:"data"`
	AmountIn      string `json:"amountIn"`
}

type checkoutResponse struct {
	Data []checkoutStep `json:"data"`
}

// GetQuote requests checkout data for a built quote request. A disabled
// request is never sent and yields a nil quote.
func (c *Client) GetQuote(ctx context.Context, req trade.QuoteRequest) (*swap.Quote, error) {
	if req.Disabled {
		return nil, nil
	}

	body := checkoutRequest{
		ChainID: req.ChainID,
		From:    req.From.Hex(),
		To:      req.To.Hex(),
	}
	if !req.Pair.Sell.IsNative() {
		body.TokenToSell = req.Pair.Sell.Address.Hex()
	}
	for _, leg := range req.Legs {
		body.TokensToBuy = append(body.TokensToBuy, checkoutLeg{
			Address: leg.Asset.Address.Hex(),
			Amount:  leg.Amount.String(),
		})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal checkout request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/checkout", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.auth != nil {
		token, err := c.auth.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to sign session token: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("quote api returned status %d: %s", resp.StatusCode, string(raw))
	}

	var decoded checkoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	quote := &swap.Quote{
		SellAsset: req.Pair.Sell,
		BuyAsset:  req.Pair.Buy,
		Route:     make([]swap.RouteStep, 0, len(decoded.Data)),
	}
	for _, step := range decoded.Data {
		quote.Route = append(quote.Route, toRouteStep(step))
	}
	if len(quote.Route) > 0 {
		quote.SellAmount = quote.Route[0].AmountIn
	}

	logger.L().Debug().
		Int("route_steps", len(quote.Route)).
		Str("sell", req.Pair.Sell.Symbol).
		Str("buy", req.Pair.Buy.Symbol).
		Msg("quote received")

	return quote, nil
}

// toRouteStep maps one wire entry, leaving absent fields zero. The composer
// rejects incomplete steps; this layer performs no validation of its own.
func toRouteStep(step checkoutStep) swap.RouteStep {
	out := swap.RouteStep{
		TargetAddress: common.HexToAddress(step.TargetAddress),
		RouterAddress: common.HexToAddress(step.RouterAddress),
	}
	if data, err := hexutil.Decode(step.Data); err == nil {
		out.CallData = data
	}
	if step.AmountIn != "" {
		if v, ok := new(big.Int).SetString(step.AmountIn, 10); ok {
			out.AmountIn = v
		}
	}
	return out
}
