package amount

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/satstack/swapkit/pkg/assets"
)

// ErrInvalidAmount indicates unparsable, negative or overflowing user input.
// It is recovered locally and surfaced as a disabled action, never fatal.
var ErrInvalidAmount = errors.New("invalid amount")

// DefaultMaxAmount caps user-entered amounts. Anything above it is treated as
// input error rather than a legitimate order size.
const DefaultMaxAmount = 1e12

// Converter converts between human-readable decimal strings and integer base
// units using the precision registered for each asset. All monetary amounts
// cross the float boundary at most once, inside FiatToBase.
type Converter struct {
	registry *assets.Registry
	max      float64
}

// NewConverter creates a converter over the given asset registry.
func NewConverter(registry *assets.Registry) *Converter {
	return &Converter{registry: registry, max: DefaultMaxAmount}
}

// NewConverterWithMax creates a converter with a custom maximum input amount.
func NewConverterWithMax(registry *assets.Registry, max float64) *Converter {
	return &Converter{registry: registry, max: max}
}

// ToBaseUnits converts a decimal amount string into the asset's base units.
// Fractional digits beyond the asset's precision are truncated, never rounded.
func (c *Converter) ToBaseUnits(s, symbol string) (*big.Int, error) {
	asset, err := c.registry.Lookup(symbol)
	if err != nil {
		return nil, err
	}
	if err := c.validate(s); err != nil {
		return nil, err
	}
	return ToBaseUnits(s, asset.Decimals)
}

// FromBaseUnits renders base units as a decimal string at the asset's precision.
func (c *Converter) FromBaseUnits(v *big.Int, symbol string) (string, error) {
	asset, err := c.registry.Lookup(symbol)
	if err != nil {
		return "", err
	}
	return FromBaseUnits(v, asset.Decimals), nil
}

// FiatToBase converts a fiat amount into base units of the target asset at the
// given unit price: tokenAmount = fiatAmount / unitPrice, computed in floating
// decimal, then truncated into base units in a single step.
//
// An empty fiat string or a zero/absent price short-circuits to zero base
// units rather than failing; both mean "nothing to quote yet".
func (c *Converter) FiatToBase(fiat string, unitPrice float64, symbol string) (*big.Int, error) {
	asset, err := c.registry.Lookup(symbol)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(fiat) == "" {
		return big.NewInt(0), nil
	}
	if err := c.validate(fiat); err != nil {
		return nil, err
	}
	if unitPrice <= 0 || math.IsNaN(unitPrice) || math.IsInf(unitPrice, 0) {
		return big.NewInt(0), nil
	}
	f, err := strconv.ParseFloat(fiat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, fiat)
	}
	tokens := strconv.FormatFloat(f/unitPrice, 'f', -1, 64)
	return ToBaseUnits(tokens, asset.Decimals)
}

func (c *Converter) validate(s string) error {
	if _, _, err := splitDecimal(s); err != nil {
		return err
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if f > c.max {
		return fmt.Errorf("%w: %q exceeds maximum %v", ErrInvalidAmount, s, c.max)
	}
	return nil
}

// ToBaseUnits converts a plain decimal string into base units at the given
// precision, truncating any sub-unit remainder.
func ToBaseUnits(s string, decimals uint8) (*big.Int, error) {
	intPart, fracPart, err := splitDecimal(s)
	if err != nil {
		return nil, err
	}

	v, ok := new(big.Int).SetString(intPart, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	v.Mul(v, pow10(int(decimals)))

	if len(fracPart) > int(decimals) {
		fracPart = fracPart[:decimals] // truncate, never round up
	}
	if fracPart != "" {
		f, ok := new(big.Int).SetString(fracPart, 10)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
		f.Mul(f, pow10(int(decimals)-len(fracPart)))
		v.Add(v, f)
	}
	return v, nil
}

// FromBaseUnits renders base units as a decimal string, trimming trailing
// fractional zeros.
func FromBaseUnits(v *big.Int, decimals uint8) string {
	if v == nil {
		return "0"
	}
	sign := ""
	abs := new(big.Int).Abs(v)
	if v.Sign() < 0 {
		sign = "-"
	}
	if decimals == 0 {
		return sign + abs.String()
	}

	quo, rem := new(big.Int).QuoRem(abs, pow10(int(decimals)), new(big.Int))
	frac := strings.TrimRight(fmt.Sprintf("%0*s", decimals, rem.String()), "0")
	if frac == "" {
		return sign + quo.String()
	}
	return sign + quo.String() + "." + frac
}

// splitDecimal validates a strict non-negative decimal string and returns its
// integer and fractional digit runs. Exponents and signs are rejected.
func splitDecimal(s string) (intPart, fracPart string, err error) {
	if s == "" {
		return "", "", fmt.Errorf("%w: empty input", ErrInvalidAmount)
	}
	intPart = s
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
		if strings.IndexByte(fracPart, '.') >= 0 {
			return "", "", fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
	}
	if intPart == "" && fracPart == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, part := range []string{intPart, fracPart} {
		for _, r := range part {
			if r < '0' || r > '9' {
				return "", "", fmt.Errorf("%w: %q", ErrInvalidAmount, s)
			}
		}
	}
	return intPart, fracPart, nil
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
