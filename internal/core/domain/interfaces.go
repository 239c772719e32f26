package domain

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/satstack/swapkit/pkg/swap"
)

// PriceService returns raw timestamped price samples for an asset over a
// lookback window. Order is provider-defined; the aggregator does not care.
type PriceService interface {
	GetMarketChart(ctx context.Context, assetID string, days int) ([]PricePoint, error)
}

// SpotPriceService returns the current USD price of an asset.
type SpotPriceService interface {
	GetAssetPrice(ctx context.Context, symbol string) (float64, error)
}

// TransferService returns a single page of token transfers touching the
// subject wallet. Pagination beyond the first page is the provider's problem;
// the pipeline operates on whatever page it receives.
type TransferService interface {
	GetTokenTransfers(ctx context.Context, chainID int64, subject common.Address, token common.Address) ([]Transfer, error)
}

// ExecutionService consumes an ordered call sequence for signing and
// submission. The pipeline never inspects results beyond success/failure.
type ExecutionService interface {
	Submit(ctx context.Context, calls []swap.Call) error
}
