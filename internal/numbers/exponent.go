package numbers

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// powPrecision is the number of fractional digits kept while raising to a
// fractional exponent. It matches the 1e30 factor precision.
const powPrecision = PrecisionDecimals

// ApplyExponentFactor raises a 1e30 float value to a 1e30 exponent.
// Values below 1.0 give zero and a 1.0 exponent returns the value unchanged.
// Whole exponents stay in exact integer math.
func ApplyExponentFactor(value, exponent *big.Int) *big.Int {
	if value.Cmp(Precision) < 0 {
		return new(big.Int)
	}
	if exponent.Cmp(Precision) == 0 {
		return new(big.Int).Set(value)
	}

	whole, rem := new(big.Int).QuoRem(exponent, Precision, new(big.Int))
	if rem.Sign() == 0 && whole.Sign() > 0 {
		// value^n / 1e30^(n-1)
		n := whole.Int64()
		result := new(big.Int).Exp(value, whole, nil)
		scale := new(big.Int).Exp(Precision, big.NewInt(n-1), nil)
		return result.Quo(result, scale)
	}

	base := decimal.NewFromBigInt(value, -PrecisionDecimals)
	exp := decimal.NewFromBigInt(exponent, -PrecisionDecimals)
	pow, err := base.PowWithPrecision(exp, powPrecision)
	if err != nil {
		return new(big.Int)
	}
	return pow.Shift(PrecisionDecimals).BigInt()
}

// ApplyImpactFactor is factor * diff^exponent, all in 1e30 precision.
func ApplyImpactFactor(diff, factor, exponent *big.Int) *big.Int {
	return ApplyFactor(ApplyExponentFactor(diff, exponent), factor)
}
