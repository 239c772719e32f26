package transfer

import (
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satstack/swapkit/pkg/assets"
)

var (
	testSubject = common.HexToAddress("0x742d35Cc6634C0532925a3b844Bc9e7595f2b21D")
	testToken   = common.HexToAddress(assets.CbBTCAddress)
)

func TestGetTokenTransfers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/"+testSubject.Hex()+"/erc20/transfers", r.URL.Path)
		assert.Equal(t, "0x2105", r.URL.Query().Get("chain"))
		assert.Equal(t, testToken.Hex(), r.URL.Query().Get("contract_addresses[0]"))
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))

		w.Write([]byte(`{"result":[
			{
				"from_address":"0x1111111111111111111111111111111111111111",
				"to_address":"0x742d35cc6634c0532925a3b844bc9e7595f2b21d",
				"address":"0xcbb7c0000ab88b473b1f5afd9ef808440eed33bf",
				"value":"200000",
				"block_timestamp":"2025-03-01T12:00:00.000Z",
				"transaction_hash":"0xabc"
			},
			{
				"from_address":"0x1111111111111111111111111111111111111111",
				"to_address":"0x742d35cc6634c0532925a3b844bc9e7595f2b21d",
				"address":"0xcbb7c0000ab88b473b1f5afd9ef808440eed33bf",
				"value":"not-a-number",
				"block_timestamp":"2025-03-02T12:00:00.000Z",
				"transaction_hash":"0xdef"
			},
			{
				"from_address":"0x1111111111111111111111111111111111111111",
				"to_address":"0x742d35cc6634c0532925a3b844bc9e7595f2b21d",
				"address":"0xcbb7c0000ab88b473b1f5afd9ef808440eed33bf",
				"value":"50000",
				"block_timestamp":"garbage",
				"transaction_hash":"0x123"
			}
		]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	transfers, err := client.GetTokenTransfers(t.Context(), 8453, testSubject, testToken)
	require.NoError(t, err)

	// The two unparsable records are skipped, not fatal.
	require.Len(t, transfers, 1)
	tr := transfers[0]
	assert.Equal(t, testSubject, tr.To)
	assert.Equal(t, testToken, tr.Token)
	assert.Equal(t, big.NewInt(200_000), tr.RawAmount)
	assert.Equal(t, "0xabc", tr.TxHash)

	want := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC).UnixMilli()
	assert.Equal(t, want, tr.TimestampMillis)
}

func TestGetTokenTransfersEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":[]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	transfers, err := client.GetTokenTransfers(t.Context(), 8453, testSubject, testToken)
	require.NoError(t, err)
	assert.Empty(t, transfers)
}

func TestGetTokenTransfersServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid key", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "bad-key")
	_, err := client.GetTokenTransfers(t.Context(), 8453, testSubject, testToken)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
