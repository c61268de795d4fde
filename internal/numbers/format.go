package numbers

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// FormatUsd renders a 1e30 USD value with the given number of decimals.
func FormatUsd(usd *big.Int, displayDecimals int32) string {
	if usd == nil {
		return "..."
	}
	return "$" + decimal.NewFromBigInt(usd, -UsdDecimals).StringFixed(displayDecimals)
}

// FormatAmount renders a raw token amount in whole-token units.
func FormatAmount(amount *big.Int, decimals int, displayDecimals int32) string {
	if amount == nil {
		return "..."
	}
	return decimal.NewFromBigInt(amount, -int32(decimals)).StringFixed(displayDecimals)
}

// FormatBps renders basis points as a percentage, e.g. 125 -> "1.25%".
func FormatBps(bps *big.Int) string {
	if bps == nil {
		return "..."
	}
	return decimal.NewFromBigInt(bps, -2).StringFixed(2) + "%"
}

// ParseAmount converts a human amount such as "1.5" into raw token units.
// More fractional digits than the token carries is an error.
func ParseAmount(s string, decimals int) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("amount %q is negative", s)
	}
	shifted := d.Shift(int32(decimals))
	if !shifted.IsInteger() {
		return nil, fmt.Errorf("amount %q has more than %d decimals", s, decimals)
	}
	return shifted.BigInt(), nil
}
