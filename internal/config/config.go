package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	ChainID int64 // chain the app trades on (default: Base mainnet)

	RPCEndpoint string // Ethereum mainnet RPC for the Chainlink feeds

	QuoteBaseURL    string // swap-aggregator API
	QuoteAuthSecret string // shared secret for signed session tokens
	QuoteDebounceMS int    // debounce window for user edits

	PriceBaseURL string // market-chart API

	TransferBaseURL string // token-transfer history API
	TransferAPIKey  string

	TickerURL string // optional live price WebSocket feed

	ExecPrivateKey string // optional; enables on-chain submission
	JournalDir     string // submission journal directory

	RedisAddr     string // optional; empty falls back to in-memory cache
	RedisPassword string
	RedisDB       int
}

// Load reads configuration from the environment, loading .env first if
// present. RPC_ENDPOINT is required; everything else has a default or is
// optional.
func Load() (*Config, error) {
	_ = godotenv.Load() // Load .env if present

	rpcEndpoint := os.Getenv("RPC_ENDPOINT")
	if rpcEndpoint == "" {
		return nil, fmt.Errorf("RPC_ENDPOINT environment variable is required")
	}

	cfg := &Config{
		ChainID:         getenvInt64("CHAIN_ID", 8453),
		RPCEndpoint:     rpcEndpoint,
		QuoteBaseURL:    getenv("QUOTE_BASE_URL", "https://aggregator-api.kyberswap.com"),
		QuoteAuthSecret: os.Getenv("QUOTE_AUTH_SECRET"),
		QuoteDebounceMS: int(getenvInt64("QUOTE_DEBOUNCE_MS", 500)),
		PriceBaseURL:    getenv("PRICE_BASE_URL", "https://api.coingecko.com/api/v3"),
		TransferBaseURL: getenv("TRANSFER_BASE_URL", "https://deep-index.moralis.io/api/v2.2"),
		TransferAPIKey:  os.Getenv("TRANSFER_API_KEY"),
		TickerURL:       os.Getenv("TICKER_URL"),
		ExecPrivateKey:  os.Getenv("EXEC_PRIVATE_KEY"),
		JournalDir:      getenv("JOURNAL_DIR", ".swapkit/journal"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         int(getenvInt64("REDIS_DB", 0)),
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}
