package price

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/satstack/swapkit/internal/core/domain"
)

// Client fetches raw market-chart samples from a CoinGecko-style API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ domain.PriceService = (*Client)(nil)

// NewClient creates a market-chart client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// GetMarketChart returns the raw [timestamp, price] samples for an asset over
// the lookback window. Cadence and ordering are the provider's; the
// aggregator normalizes both.
func (c *Client) GetMarketChart(ctx context.Context, assetID string, days int) ([]domain.PricePoint, error) {
	endpoint := fmt.Sprintf("%s/coins/%s/market_chart", c.baseURL, url.PathEscape(assetID))

	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("days", strconv.Itoa(days))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("price api returned status %d: %s", resp.StatusCode, string(raw))
	}

	var decoded struct {
		Prices [][]float64 `json:"prices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	points := make([]domain.PricePoint, 0, len(decoded.Prices))
	for _, pair := range decoded.Prices {
		if len(pair) < 2 {
			continue
		}
		points = append(points, domain.PricePoint{
			TimestampMillis: int64(pair[0]),
			Price:           pair[1],
		})
	}
	return points, nil
}
