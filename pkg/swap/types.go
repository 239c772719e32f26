package swap

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/satstack/swapkit/pkg/assets"
)

// RouteStep is one hop of a quote's execution plan. The payload is opaque:
// the aggregator encodes it and only the execution layer interprets it.
type RouteStep struct {
	TargetAddress common.Address `json:"targetAddress"` // contract the hop executes against
	RouterAddress common.Address `json:"routerAddress"` // spender that must be approved for token sells
	CallData      hexutil.Bytes  `json:"data"`
	AmountIn      *big.Int       `json:"amountIn"` // hop input amount, base units
}

// Quote is the aggregator's answer for one debounced input event. Superseded
// quotes are discarded whole, never merged.
type Quote struct {
	SellAsset  assets.Asset `json:"sellAsset"`
	BuyAsset   assets.Asset `json:"buyAsset"`
	SellAmount *big.Int     `json:"sellAmount"` // base units
	Route      []RouteStep  `json:"route"`
}

// Call is one on-chain call handed to the execution layer. An ordered Call
// sequence is the unit of submission; downstream must never reorder it.
type Call struct {
	To    common.Address `json:"to"`
	Data  hexutil.Bytes  `json:"data"`
	Value *big.Int       `json:"value"` // native value, base units
}
