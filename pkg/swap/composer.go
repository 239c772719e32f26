package swap

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ErrMissingRouteData indicates a quote route entry lacking required fields.
// Composition fails closed on it: an approval without the matching swap would
// leave an unconsumed allowance, so a partial sequence is never produced.
var ErrMissingRouteData = errors.New("quote route entry missing required data")

const erc20ApproveABI = `[{"inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"}]`

// Composer turns quotes into the exact ordered call sequence to submit:
// an ERC-20 approval first when the sell asset is a token, then one call per
// route hop in aggregator order.
type Composer struct {
	erc20 abi.ABI
}

// NewComposer creates a composer with the token-approval interface parsed once.
func NewComposer() (*Composer, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20ApproveABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse approve ABI: %w", err)
	}
	return &Composer{erc20: parsed}, nil
}

// ComposeCalls produces the ordered calls for a quote.
//
// A nil quote or an empty route yields an empty sequence: with no quote there
// is nothing safe to submit. Any malformed route entry aborts the whole
// composition with ErrMissingRouteData and an empty sequence.
func (c *Composer) ComposeCalls(q *Quote) ([]Call, error) {
	if q == nil || len(q.Route) == 0 {
		return nil, nil
	}

	for i, step := range q.Route {
		if err := validateStep(step); err != nil {
			return nil, fmt.Errorf("route entry %d: %w", i, err)
		}
	}

	calls := make([]Call, 0, len(q.Route)+1)

	if !q.SellAsset.IsNative() {
		first := q.Route[0]
		data, err := c.erc20.Pack("approve", first.RouterAddress, first.AmountIn)
		if err != nil {
			return nil, fmt.Errorf("failed to pack approve call: %w", err)
		}
		calls = append(calls, Call{
			To:    q.SellAsset.Address,
			Data:  data,
			Value: big.NewInt(0),
		})
	}

	for _, step := range q.Route {
		value := big.NewInt(0)
		if q.SellAsset.IsNative() {
			// Value rides on the call itself only for native sells; token
			// sells move value through the token contract instead.
			value = new(big.Int).Set(step.AmountIn)
		}
		calls = append(calls, Call{
			To:    step.TargetAddress,
			Data:  step.CallData,
			Value: value,
		})
	}

	return calls, nil
}

func validateStep(step RouteStep) error {
	switch {
	case step.TargetAddress == (common.Address{}):
		return fmt.Errorf("%w: target address", ErrMissingRouteData)
	case step.RouterAddress == (common.Address{}):
		return fmt.Errorf("%w: router address", ErrMissingRouteData)
	case len(step.CallData) == 0:
		return fmt.Errorf("%w: call data", ErrMissingRouteData)
	case step.AmountIn == nil:
		return fmt.Errorf("%w: input amount", ErrMissingRouteData)
	}
	return nil
}
