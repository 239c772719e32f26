package trade

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/satstack/swapkit/pkg/amount"
	"github.com/satstack/swapkit/pkg/assets"
)

// BuyLeg is one asset the caller wants out of the swap.
type BuyLeg struct {
	Asset  assets.Asset
	Amount *big.Int // base units; the aggregator reads this as input to spend
}

// QuoteRequest is the body sent to the quote service. A request is built
// type-complete even when it cannot be issued: a missing wallet is replaced
// by the zero-address sentinel and the request marked Disabled instead of
// being sent with holes.
type QuoteRequest struct {
	ChainID  int64
	From     common.Address
	To       common.Address
	Pair     AssetPair
	Legs     []BuyLeg
	Disabled bool
}

// RequestBuilder turns validated user input into quote requests.
type RequestBuilder struct {
	chainID int64
	conv    *amount.Converter
}

// NewRequestBuilder creates a builder for the given chain.
func NewRequestBuilder(chainID int64, conv *amount.Converter) *RequestBuilder {
	return &RequestBuilder{chainID: chainID, conv: conv}
}

// Build converts a raw fiat amount at the given unit price into a request for
// the oriented pair. The base-unit conversion uses the sell asset's declared
// precision, since the leg amount is the amount being disposed of.
//
// The request is marked Disabled, never issued, when the converted amount is
// zero or no wallet is connected. Invalid input also yields a Disabled
// request, alongside the amount error for the caller's UI state.
func (b *RequestBuilder) Build(raw string, unitPrice float64, pair AssetPair, wallet common.Address) (QuoteRequest, error) {
	req := QuoteRequest{
		ChainID: b.chainID,
		From:    wallet,
		To:      wallet,
		Pair:    pair,
	}

	base, err := b.conv.FiatToBase(raw, unitPrice, pair.Sell.Symbol)
	if err != nil {
		req.Disabled = true
		return req, err
	}

	req.Legs = []BuyLeg{{Asset: pair.Buy, Amount: base}}
	if base.Sign() == 0 || wallet == (common.Address{}) {
		req.Disabled = true
	}
	return req, nil
}
