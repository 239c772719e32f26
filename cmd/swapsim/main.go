// Command swapsim runs the full pipeline against canned data: it aggregates
// a price series, classifies and anchors a wallet's transfer history, then
// debounces a simulated user edit into a composed call sequence.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"

	"github.com/satstack/swapkit/internal/core/domain"
	"github.com/satstack/swapkit/internal/core/service"
	"github.com/satstack/swapkit/internal/logger"
	"github.com/satstack/swapkit/pkg/amount"
	"github.com/satstack/swapkit/pkg/assets"
	"github.com/satstack/swapkit/pkg/cache"
	"github.com/satstack/swapkit/pkg/swap"
	"github.com/satstack/swapkit/pkg/trade"
	"github.com/satstack/swapkit/pkg/version"
)

const baseChainID = 8453

type cannedPrices struct{ points []domain.PricePoint }

func (c cannedPrices) GetMarketChart(context.Context, string, int) ([]domain.PricePoint, error) {
	return c.points, nil
}

type cannedTransfers struct{ transfers []domain.Transfer }

func (c cannedTransfers) GetTokenTransfers(context.Context, int64, common.Address, common.Address) ([]domain.Transfer, error) {
	return c.transfers, nil
}

type cannedQuotes struct{ route []swap.RouteStep }

func (c cannedQuotes) GetQuote(_ context.Context, req trade.QuoteRequest) (*swap.Quote, error) {
	if req.Disabled {
		return nil, nil
	}
	return &swap.Quote{
		SellAsset:  req.Pair.Sell,
		BuyAsset:   req.Pair.Buy,
		SellAmount: c.route[0].AmountIn,
		Route:      c.route,
	}, nil
}

func main() {
	_ = godotenv.Load()
	logger.Init()
	log := logger.L()
	log.Info().Str("version", version.GetBuildInfo().String()).Msg("starting")

	registry := assets.DefaultRegistry()
	btc, _ := registry.Lookup("cbBTC")
	usdc, _ := registry.Lookup("USDC")
	wallet := common.HexToAddress("0x742d35Cc6634C0532925a3b844Bc9e7595f2b21D")
	counterparty := common.HexToAddress("0x1111111111111111111111111111111111111111")

	// 1. Market view: aggregate, classify, anchor, derive the position.
	now := time.Now().UTC()
	day := func(offset int, hour int) int64 {
		return now.AddDate(0, 0, -offset).Truncate(24 * time.Hour).Add(time.Duration(hour) * time.Hour).UnixMilli()
	}
	market := service.NewMarketService(
		cannedPrices{points: []domain.PricePoint{
			{TimestampMillis: day(2, 3), Price: 49_500},
			{TimestampMillis: day(2, 15), Price: 50_500},
			{TimestampMillis: day(1, 9), Price: 51_200},
			{TimestampMillis: day(0, 1), Price: 52_000},
		}},
		cannedTransfers{transfers: []domain.Transfer{
			{TimestampMillis: day(2, 12), From: counterparty, To: wallet, Token: btc.Address, RawAmount: big.NewInt(200_000)},
			{TimestampMillis: day(0, 2), From: wallet, To: counterparty, Token: btc.Address, RawAmount: big.NewInt(50_000)},
		}},
		cache.NewMemoryCache(),
	)

	overview, err := market.Overview(context.Background(), service.OverviewInput{
		AssetID:      "coinbase-wrapped-btc",
		LookbackDays: 30,
		ChainID:      baseChainID,
		Subject:      wallet,
		Token:        btc,
		SpotPrice:    52_000,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("overview failed")
	}

	// 2. Trade flow: debounced edits, the last one wins, calls composed.
	composer, err := swap.NewComposer()
	if err != nil {
		log.Fatal().Err(err).Msg("composer init failed")
	}

	router := common.HexToAddress("0x6131B5fae19EA4f9D964eAc0408E4408b66337b5")
	quotes := cannedQuotes{route: []swap.RouteStep{{
		TargetAddress: router,
		RouterAddress: router,
		CallData:      []byte{0xde, 0xad, 0xbe, 0xef},
		AmountIn:      big.NewInt(200_000),
	}}}

	results := make(chan trade.Result, 1)
	session := trade.NewSession(trade.SessionConfig{
		Builder:  trade.NewRequestBuilder(baseChainID, amount.NewConverter(registry)),
		Quotes:   quotes,
		Composer: composer,
		Pair:     trade.Sell.Pair(btc, usdc),
		Window:   100 * time.Millisecond,
		OnResult: func(r trade.Result) { results <- r },
	})
	defer session.Close()

	session.SetWallet(wallet)
	session.SetUnitPrice(50_000)
	session.Edit("90")
	session.Edit("95.50")
	session.Edit("100.00") // only this edit survives the debounce window

	select {
	case r := <-results:
		if r.Err != nil {
			log.Fatal().Err(r.Err).Msg("trade flow failed")
		}
		printJSON("calls", r.Calls)
	case <-time.After(2 * time.Second):
		log.Fatal().Msg("no quote result within deadline")
	}

	printJSON("overview", overview)
}

func printJSON(label string, v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Printf("%s:\n%s\n", label, out)
}
