package domain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// PricePoint is one raw sample from the price service. Cadence is irregular
// and ordering is whatever the provider returned.
type PricePoint struct {
	TimestampMillis int64   `json:"timestamp_ms"`
	Price           float64 `json:"price"`
}

// PriceBucket is the arithmetic mean of all samples that fell on one calendar
// day. Days with no samples are simply absent, never interpolated.
type PriceBucket struct {
	Day         time.Time `json:"day"` // midnight of the bucket's day, UTC
	MeanPrice   float64   `json:"mean_price"`
	SampleCount int       `json:"sample_count"`
}

// Transfer is one token transfer as reported by the transfer service.
type Transfer struct {
	TimestampMillis int64          `json:"timestamp_ms"`
	From            common.Address `json:"from"`
	To              common.Address `json:"to"`
	Token           common.Address `json:"token"`
	RawAmount       *big.Int       `json:"raw_amount"` // base units
	TxHash          string         `json:"tx_hash,omitempty"`
}

// TransferDirection tags a transfer relative to the subject wallet.
type TransferDirection string

const (
	DirectionBuy  TransferDirection = "buy"  // subject is the recipient
	DirectionSell TransferDirection = "sell" // subject is the sender
)

// ClassifiedTransfer is a transfer with its direction resolved. Records are
// not mutated after creation; re-anchoring produces new Annotations instead.
type ClassifiedTransfer struct {
	Transfer
	Direction TransferDirection `json:"direction"`
}

// Annotation anchors one classified transfer onto the nearest daily bucket
// for chart overlay. Several transfers may share a bucket; rendering decides
// how to stack the markers.
type Annotation struct {
	Bucket   PriceBucket        `json:"bucket"`
	Transfer ClassifiedTransfer `json:"transfer"`
	Label    string             `json:"label"`
}

// Position holds the profit-and-loss metrics for the subject wallet's
// holdings of one token.
type Position struct {
	TotalBought      float64 `json:"total_bought_tokens"`
	TotalSold        float64 `json:"total_sold_tokens"`
	CurrentBalance   float64 `json:"current_balance_tokens"`
	AverageBuyPrice  float64 `json:"avg_buy_price_usd"`
	AverageSellPrice float64 `json:"avg_sell_price_usd"`

	RealizedPnL   float64 `json:"realized_pnl_usd"`
	UnrealizedPnL float64 `json:"unrealized_pnl_usd"`
	TotalPnL      float64 `json:"total_pnl_usd"`
	ROI           float64 `json:"roi_percentage"`
}

// MarketOverview bundles everything the chart and stats views consume: the
// daily series, the classified transfer history anchored onto it, and the
// derived position.
type MarketOverview struct {
	Buckets        []PriceBucket        `json:"buckets"`
	Buys           []ClassifiedTransfer `json:"buys"`
	Sells          []ClassifiedTransfer `json:"sells"`
	Annotations    []Annotation         `json:"annotations"`
	Position       *Position            `json:"position,omitempty"`
	PriceChangePct float64              `json:"price_change_pct"`
}
