package assets

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ErrUnknownAsset indicates a lookup for an asset that was never registered.
// This is a configuration error, not a user-input error.
var ErrUnknownAsset = errors.New("unknown asset")

// Asset describes a tradable asset: either an ERC-20 contract or the chain's
// native coin. Assets are immutable and defined in static configuration.
type Asset struct {
	Symbol   string         `json:"symbol"`
	Address  common.Address `json:"address"`  // zero for the native asset
	Decimals uint8          `json:"decimals"` // base-unit precision, e.g. 6, 8, 18
	Native   bool           `json:"native"`
}

// IsNative reports whether the asset is the chain's native coin and therefore
// needs no allowance before a swap.
func (a Asset) IsNative() bool {
	return a.Native
}

// Registry holds the static set of assets the pipeline can trade.
type Registry struct {
	bySymbol  map[string]Asset
	byAddress map[common.Address]Asset
}

// NewRegistry creates a registry from a static asset list.
func NewRegistry(list ...Asset) *Registry {
	r := &Registry{
		bySymbol:  make(map[string]Asset, len(list)),
		byAddress: make(map[common.Address]Asset, len(list)),
	}
	for _, a := range list {
		r.bySymbol[a.Symbol] = a
		if !a.Native {
			r.byAddress[a.Address] = a
		}
	}
	return r
}

// Lookup resolves an asset by symbol.
func (r *Registry) Lookup(symbol string) (Asset, error) {
	a, ok := r.bySymbol[symbol]
	if !ok {
		return Asset{}, fmt.Errorf("%w: %s", ErrUnknownAsset, symbol)
	}
	return a, nil
}

// ByAddress resolves an ERC-20 asset by contract address.
func (r *Registry) ByAddress(addr common.Address) (Asset, bool) {
	a, ok := r.byAddress[addr]
	return a, ok
}

// Base mainnet assets traded by the application.
const (
	CbBTCAddress = "0xcbB7C0000aB88B473b1f5aFd9ef808440eed33Bf"
	USDCAddress  = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"
)

// DefaultRegistry returns the static asset set for the Base-chain deployment:
// wrapped Bitcoin (cbBTC, 8 decimals), the USDC stablecoin (6 decimals) and
// the native coin (18 decimals).
func DefaultRegistry() *Registry {
	return NewRegistry(
		Asset{Symbol: "cbBTC", Address: common.HexToAddress(CbBTCAddress), Decimals: 8},
		Asset{Symbol: "USDC", Address: common.HexToAddress(USDCAddress), Decimals: 6},
		Asset{Symbol: "ETH", Decimals: 18, Native: true},
	)
}
