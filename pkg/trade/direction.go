package trade

import "github.com/satstack/swapkit/pkg/assets"

// Direction is the explicit buy/sell tag for a trade. It is never inferred
// from which optional request field happens to be populated.
type Direction int

const (
	// Buy disposes of the counter asset to acquire the traded asset.
	Buy Direction = iota
	// Sell disposes of the traded asset to acquire the counter asset.
	Sell
)

func (d Direction) String() string {
	if d == Sell {
		return "sell"
	}
	return "buy"
}

// AssetPair carries the derived sell/buy assets for one direction.
type AssetPair struct {
	Sell assets.Asset
	Buy  assets.Asset
}

// Pair orients the traded asset against its counter asset for this direction.
func (d Direction) Pair(traded, counter assets.Asset) AssetPair {
	if d == Sell {
		return AssetPair{Sell: traded, Buy: counter}
	}
	return AssetPair{Sell: counter, Buy: traded}
}
