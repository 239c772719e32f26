// Command swapd runs the live pipeline: it assembles the market overview from
// the configured providers, folds in ticker samples as they arrive, and keeps
// a debounced quote session ready for edits fed over stdin.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/satstack/swapkit/internal/adapters/chain"
	"github.com/satstack/swapkit/internal/adapters/oracle"
	"github.com/satstack/swapkit/internal/adapters/price"
	"github.com/satstack/swapkit/internal/adapters/quote"
	"github.com/satstack/swapkit/internal/adapters/stream"
	"github.com/satstack/swapkit/internal/adapters/transfer"
	"github.com/satstack/swapkit/internal/config"
	"github.com/satstack/swapkit/internal/core/service"
	"github.com/satstack/swapkit/internal/logger"
	"github.com/satstack/swapkit/pkg/amount"
	"github.com/satstack/swapkit/pkg/assets"
	"github.com/satstack/swapkit/pkg/auth"
	"github.com/satstack/swapkit/pkg/cache"
	"github.com/satstack/swapkit/pkg/journal"
	"github.com/satstack/swapkit/pkg/swap"
	"github.com/satstack/swapkit/pkg/trade"
	"github.com/satstack/swapkit/pkg/version"
)

const (
	assetID      = "coinbase-wrapped-btc"
	lookbackDays = 30
)

func main() {
	logger.Init()
	log := logger.L()
	log.Info().Str("version", version.GetBuildInfo().String()).Msg("starting")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := buildCache(ctx, cfg)
	defer store.Close()

	feeds, err := oracle.NewFeedReader(cfg.RPCEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("oracle init failed")
	}
	defer feeds.Close()

	registry := assets.DefaultRegistry()
	btc, err := registry.Lookup("cbBTC")
	if err != nil {
		log.Fatal().Err(err).Msg("asset registry incomplete")
	}
	usdc, _ := registry.Lookup("USDC")

	market := service.NewMarketService(
		price.NewClient(cfg.PriceBaseURL),
		transfer.NewClient(cfg.TransferBaseURL, cfg.TransferAPIKey),
		store,
	)

	spot, err := feeds.GetAssetPrice(ctx, "BTC")
	if err != nil {
		log.Fatal().Err(err).Msg("spot price unavailable")
	}

	wallet := common.HexToAddress(os.Getenv("WALLET_ADDRESS"))
	overview, err := market.Overview(ctx, service.OverviewInput{
		AssetID:      assetID,
		LookbackDays: lookbackDays,
		ChainID:      cfg.ChainID,
		Subject:      wallet,
		Token:        btc,
		SpotPrice:    spot,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("overview failed")
	}
	printJSON("overview", overview)

	composer, err := swap.NewComposer()
	if err != nil {
		log.Fatal().Err(err).Msg("composer init failed")
	}

	var authManager *auth.Manager
	if cfg.QuoteAuthSecret != "" {
		authManager = auth.NewManager(cfg.QuoteAuthSecret, "swapkit", 5*time.Minute)
	}

	executor := buildExecutor(cfg)
	if executor != nil {
		defer executor.Close()
	}

	session := trade.NewSession(trade.SessionConfig{
		Builder:  trade.NewRequestBuilder(cfg.ChainID, amount.NewConverter(registry)),
		Quotes:   quote.NewClient(cfg.QuoteBaseURL, authManager),
		Composer: composer,
		Pair:     trade.Sell.Pair(btc, usdc),
		Window:   time.Duration(cfg.QuoteDebounceMS) * time.Millisecond,
		OnResult: func(r trade.Result) { handleResult(ctx, executor, r) },
	})
	defer session.Close()
	session.SetWallet(wallet)
	session.SetUnitPrice(spot)

	if cfg.TickerURL != "" {
		ticker := stream.NewTicker(cfg.TickerURL)
		go func() {
			if err := ticker.Run(ctx); err != nil && ctx.Err() == nil {
				log.Warn().Err(err).Msg("ticker stopped")
			}
		}()
		go func() {
			for point := range ticker.Points() {
				overview = market.MergeLive(overview, point)
				session.SetUnitPrice(point.Price)
			}
		}()
	}

	go readEdits(ctx, session)

	<-ctx.Done()
	log.Info().Msg("shutting down")
}

// readEdits treats each stdin line as a fiat-amount edit.
func readEdits(ctx context.Context, session *trade.Session) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			session.Edit(line)
		}
	}
}

func handleResult(ctx context.Context, executor *chain.Executor, r trade.Result) {
	log := logger.L()
	switch {
	case r.Err != nil:
		log.Error().Err(r.Err).Uint64("generation", r.Generation).Msg("quote failed")
	case r.Disabled:
		log.Info().Uint64("generation", r.Generation).Msg("quote gated off")
	default:
		printJSON("calls", r.Calls)
		if executor != nil {
			if err := executor.Submit(ctx, r.Calls); err != nil {
				log.Error().Err(err).Msg("submission failed")
			}
		}
	}
}

func buildCache(ctx context.Context, cfg *config.Config) cache.Cache {
	if cfg.RedisAddr == "" {
		return cache.NewMemoryCache()
	}
	store, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, "swapkit")
	if err != nil {
		logger.L().Warn().Err(err).Msg("redis unavailable, using in-memory cache")
		return cache.NewMemoryCache()
	}
	return store
}

func buildExecutor(cfg *config.Config) *chain.Executor {
	if cfg.ExecPrivateKey == "" {
		return nil
	}
	executor, err := chain.NewExecutor(cfg.RPCEndpoint, cfg.ExecPrivateKey, cfg.ChainID, journal.New(cfg.JournalDir))
	if err != nil {
		logger.L().Fatal().Err(err).Msg("executor init failed")
	}
	return executor
}

func printJSON(label string, v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Printf("%s:\n%s\n", label, out)
}
