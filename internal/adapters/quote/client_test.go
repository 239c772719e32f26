package quote

import (
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satstack/swapkit/pkg/assets"
	"github.com/satstack/swapkit/pkg/auth"
	"github.com/satstack/swapkit/pkg/trade"
)

func testPair(t *testing.T) trade.AssetPair {
	t.Helper()
	registry := assets.DefaultRegistry()
	btc, err := registry.Lookup("cbBTC")
	require.NoError(t, err)
	usdc, err := registry.Lookup("USDC")
	require.NoError(t, err)
	return trade.Sell.Pair(btc, usdc)
}

func testRequest(t *testing.T) trade.QuoteRequest {
	pair := testPair(t)
	wallet := common.HexToAddress("0x742d35Cc6634C0532925a3b844Bc9e7595f2b21D")
	return trade.QuoteRequest{
		ChainID: 8453,
		From:    wallet,
		To:      wallet,
		Pair:    pair,
		Legs:    []trade.BuyLeg{{Asset: pair.Buy, Amount: big.NewInt(200_000)}},
	}
}

func TestGetQuote(t *testing.T) {
	var received checkoutRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/checkout", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		json.NewEncoder(w).Encode(checkoutResponse{Data: []checkoutStep{
			{
				TargetAddress: "0x2222222222222222222222222222222222222222",
				RouterAddress: "0x6131B5fae19EA4f9D964eAc0408E4408b66337b5",
				Data:          "0xdeadbeef",
				AmountIn:      "200000",
			},
		}})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	quote, err := client.GetQuote(t.Context(), testRequest(t))
	require.NoError(t, err)
	require.NotNil(t, quote)

	assert.Equal(t, int64(8453), received.ChainID)
	assert.Equal(t, common.HexToAddress(assets.CbBTCAddress).Hex(), received.TokenToSell)
	require.Len(t, received.TokensToBuy, 1)
	assert.Equal(t, "200000", received.TokensToBuy[0].Amount)

	require.Len(t, quote.Route, 1)
	assert.Equal(t, "cbBTC", quote.SellAsset.Symbol)
	assert.Equal(t, big.NewInt(200_000), quote.SellAmount)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, []byte(quote.Route[0].CallData))
}

func TestGetQuoteNativeSellOmitsTokenField(t *testing.T) {
	var rawBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawBody, _ = io.ReadAll(r.Body)
		json.NewEncoder(w).Encode(checkoutResponse{})
	}))
	defer server.Close()

	registry := assets.DefaultRegistry()
	eth, err := registry.Lookup("ETH")
	require.NoError(t, err)
	usdc, err := registry.Lookup("USDC")
	require.NoError(t, err)

	req := testRequest(t)
	req.Pair = trade.Sell.Pair(eth, usdc)

	client := NewClient(server.URL, nil)
	_, err = client.GetQuote(t.Context(), req)
	require.NoError(t, err)
	assert.NotContains(t, string(rawBody), "tokenToSellAddress")
}

func TestGetQuoteDisabledNeverSent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("disabled request reached the server")
	}))
	defer server.Close()

	req := testRequest(t)
	req.Disabled = true

	client := NewClient(server.URL, nil)
	quote, err := client.GetQuote(t.Context(), req)
	require.NoError(t, err)
	assert.Nil(t, quote)
}

func TestGetQuoteAttachesSessionToken(t *testing.T) {
	manager := auth.NewManager("test-secret", "swapkit", time.Minute)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		require.True(t, strings.HasPrefix(header, "Bearer "))
		ok, err := manager.Verify(strings.TrimPrefix(header, "Bearer "))
		require.NoError(t, err)
		assert.True(t, ok)
		json.NewEncoder(w).Encode(checkoutResponse{})
	}))
	defer server.Close()

	client := NewClient(server.URL, manager)
	_, err := client.GetQuote(t.Context(), testRequest(t))
	require.NoError(t, err)
}

func TestGetQuoteServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "route not found", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	quote, err := client.GetQuote(t.Context(), testRequest(t))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Nil(t, quote)
}

func TestGetQuoteIncompleteStepPassedThrough(t *testing.T) {
	// Wire-level holes stay holes; rejecting them is the composer's job.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(checkoutResponse{Data: []checkoutStep{
			{TargetAddress: "0x2222222222222222222222222222222222222222"},
		}})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	quote, err := client.GetQuote(t.Context(), testRequest(t))
	require.NoError(t, err)
	require.Len(t, quote.Route, 1)
	assert.Empty(t, quote.Route[0].CallData)
	assert.Nil(t, quote.Route[0].AmountIn)
	assert.Equal(t, common.Address{}, quote.Route[0].RouterAddress)
}
