package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/satstack/swapkit/internal/core/domain"
	"github.com/satstack/swapkit/internal/logger"
	"github.com/satstack/swapkit/pkg/assets"
	"github.com/satstack/swapkit/pkg/cache"
)

// bucketCacheTTL bounds how stale a cached daily series may get before the
// provider is asked again.
const bucketCacheTTL = 10 * time.Minute

// MarketService assembles the full market view for one asset and wallet:
// fetch the raw series, aggregate it into daily buckets, classify the
// wallet's transfers, anchor them onto the series and derive the position.
type MarketService struct {
	prices     domain.PriceService
	transfers  domain.TransferService
	aggregator *Aggregator
	positions  *PositionCalculator
	cache      cache.Cache
}

// OverviewInput names the parameters of one overview computation.
type OverviewInput struct {
	AssetID      string // price-provider identifier, e.g. "coinbase-wrapped-btc"
	LookbackDays int
	ChainID      int64
	Subject      common.Address
	Token        assets.Asset
	SpotPrice    float64 // current price for unrealized PnL; zero is allowed
}

// NewMarketService creates the orchestrator. cache may be nil to disable
// series caching.
func NewMarketService(prices domain.PriceService, transfers domain.TransferService, c cache.Cache) *MarketService {
	return &MarketService{
		prices:     prices,
		transfers:  transfers,
		aggregator: NewAggregator(),
		positions:  NewPositionCalculator(),
		cache:      c,
	}
}

// Overview runs the read-side pipeline once. Provider failures propagate so
// the caller can surface a retryable error state; absent data (no samples,
// no transfers, no wallet) produces empty sections, never an error.
func (s *MarketService) Overview(ctx context.Context, input OverviewInput) (*domain.MarketOverview, error) {
	buckets, err := s.dailySeries(ctx, input.AssetID, input.LookbackDays)
	if err != nil {
		return nil, fmt.Errorf("failed to load price series: %w", err)
	}

	overview := &domain.MarketOverview{
		Buckets:        buckets,
		PriceChangePct: PriceChange(buckets),
	}

	if input.Subject == (common.Address{}) {
		// No wallet connected: the chart still renders, history stays empty.
		return overview, nil
	}

	history, err := s.transfers.GetTokenTransfers(ctx, input.ChainID, input.Subject, input.Token.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to load transfer history: %w", err)
	}

	overview.Buys, overview.Sells = Classify(history, input.Subject)

	classified := make([]domain.ClassifiedTransfer, 0, len(overview.Buys)+len(overview.Sells))
	classified = append(classified, overview.Buys...)
	classified = append(classified, overview.Sells...)
	overview.Annotations = Annotate(buckets, classified)
	overview.Position = s.positions.Calculate(overview.Annotations, input.Token.Decimals, input.SpotPrice)

	logger.L().Info().
		Int("buckets", len(buckets)).
		Int("buys", len(overview.Buys)).
		Int("sells", len(overview.Sells)).
		Str("subject", input.Subject.Hex()).
		Msg("market overview assembled")

	return overview, nil
}

// MergeLive folds a live tick into an existing overview's series, returning
// a new overview with the series, annotations and price change recomputed.
func (s *MarketService) MergeLive(overview *domain.MarketOverview, point domain.PricePoint) *domain.MarketOverview {
	buckets := s.aggregator.Merge(overview.Buckets, point)

	classified := make([]domain.ClassifiedTransfer, 0, len(overview.Buys)+len(overview.Sells))
	classified = append(classified, overview.Buys...)
	classified = append(classified, overview.Sells...)

	return &domain.MarketOverview{
		Buckets:        buckets,
		Buys:           overview.Buys,
		Sells:          overview.Sells,
		Annotations:    Annotate(buckets, classified),
		Position:       overview.Position,
		PriceChangePct: PriceChange(buckets),
	}
}

func (s *MarketService) dailySeries(ctx context.Context, assetID string, days int) ([]domain.PriceBucket, error) {
	key := fmt.Sprintf("buckets:%s:%d", assetID, days)

	if s.cache != nil {
		var cached []domain.PriceBucket
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			logger.L().Warn().Err(err).Str("key", key).Msg("cache read failed, fetching fresh")
		} else if hit {
			return cached, nil
		}
	}

	points, err := s.prices.GetMarketChart(ctx, assetID, days)
	if err != nil {
		return nil, err
	}
	buckets := s.aggregator.Aggregate(points)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, buckets, bucketCacheTTL); err != nil {
			logger.L().Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}
	return buckets, nil
}
