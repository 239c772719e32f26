package transfer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/satstack/swapkit/internal/core/domain"
)

// Client fetches ERC-20 transfer history from a Moralis-style wallet API.
// Only the first page is consumed; the provider may truncate older history.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ domain.TransferService = (*Client)(nil)

// NewClient creates a transfer-history client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type transferRecord struct {
	FromAddress     string `json:"from_address"`
	ToAddress       string `json:"to_address"`
	TokenAddress    string `json:"address"`
	Value           string `json:"value"`
	BlockTimestamp  string `json:"block_timestamp"`
	TransactionHash string `json:"transaction_hash"`
}

type transferPage struct {
	Result []transferRecord `json:"result"`
}

// GetTokenTransfers returns the subject wallet's transfers of the given
// token, as far back as the provider's first page reaches.
func (c *Client) GetTokenTransfers(ctx context.Context, chainID int64, subject common.Address, token common.Address) ([]domain.Transfer, error) {
	endpoint := fmt.Sprintf("%s/%s/erc20/transfers", c.baseURL, subject.Hex())

	params := url.Values{}
	params.Set("chain", fmt.Sprintf("0x%x", chainID))
	params.Set("contract_addresses[0]", token.Hex())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("transfer api returned status %d: %s", resp.StatusCode, string(raw))
	}

	var page transferPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	transfers := make([]domain.Transfer, 0, len(page.Result))
	for _, rec := range page.Result {
		ts, err := time.Parse(time.RFC3339, rec.BlockTimestamp)
		if err != nil {
			continue // skip records with unreadable timestamps
		}
		value, ok := new(big.Int).SetString(rec.Value, 10)
		if !ok {
			continue
		}
		transfers = append(transfers, domain.Transfer{
			TimestampMillis: ts.UnixMilli(),
			From:            common.HexToAddress(rec.FromAddress),
			To:              common.HexToAddress(rec.ToAddress),
			Token:           common.HexToAddress(rec.TokenAddress),
			RawAmount:       value,
			TxHash:          rec.TransactionHash,
		})
	}
	return transfers, nil
}
