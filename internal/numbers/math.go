// Package numbers holds the fixed-point arithmetic shared by every engine.
// All divisions truncate toward zero, the same way the contracts round.
package numbers

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
)

const (
	PrecisionDecimals  = 30
	UsdDecimals        = 30
	BasisPointsDivisor = 10000
)

var (
	// Precision is the 1e30 factor unit. Read only.
	Precision = ExpandDecimals(1, PrecisionDecimals)

	basisPoints = big.NewInt(BasisPointsDivisor)
	one         = big.NewInt(1)
)

// ExpandDecimals returns n * 10^decimals.
func ExpandDecimals(n int64, decimals int) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), math.BigPow(10, int64(decimals)))
}

// ApplyFactor scales value by a 1e30 factor: value * factor / 1e30.
func ApplyFactor(value, factor *big.Int) *big.Int {
	v := new(big.Int).Mul(value, factor)
	return v.Quo(v, Precision)
}

// MulDiv returns x * y / z, or zero when z is zero.
func MulDiv(x, y, z *big.Int) *big.Int {
	if z.Sign() == 0 {
		return new(big.Int)
	}
	v := new(big.Int).Mul(x, y)
	return v.Quo(v, z)
}

// BasisPoints returns numerator / denominator in bps. With roundUp a non-zero
// remainder moves the result one bps away from zero.
func BasisPoints(numerator, denominator *big.Int, roundUp bool) *big.Int {
	if denominator.Sign() == 0 {
		return new(big.Int)
	}
	scaled := new(big.Int).Mul(numerator, basisPoints)
	result, rem := new(big.Int).QuoRem(scaled, denominator, new(big.Int))
	if roundUp && rem.Sign() != 0 {
		if numerator.Sign()*denominator.Sign() < 0 {
			return result.Sub(result, one)
		}
		return result.Add(result, one)
	}
	return result
}

// RoundUpDivision returns ceil(a / b) for non-negative a and positive b.
func RoundUpDivision(a, b *big.Int) *big.Int {
	v := new(big.Int).Add(a, b)
	v.Sub(v, one)
	return v.Quo(v, b)
}

// RoundUpMagnitudeDivision rounds a / b away from zero.
func RoundUpMagnitudeDivision(a, b *big.Int) *big.Int {
	v := new(big.Int)
	if a.Sign() < 0 {
		v.Sub(a, b)
		v.Add(v, one)
	} else {
		v.Add(a, b)
		v.Sub(v, one)
	}
	return v.Quo(v, b)
}

// ApplySlippage calculates minimum output with slippage tolerance
// slippageBps: basis points (e.g., 100 = 1%, 50 = 0.5%)
func ApplySlippage(amount *big.Int, slippageBps uint16) *big.Int {
	if slippageBps >= BasisPointsDivisor {
		return new(big.Int) // 100% slippage = no output
	}

	// minOut = amount * (10000 - slippageBps) / 10000
	factor := big.NewInt(int64(BasisPointsDivisor - uint64(slippageBps)))
	result := new(big.Int).Mul(amount, factor)
	return result.Quo(result, basisPoints)
}

func Abs(v *big.Int) *big.Int {
	return new(big.Int).Abs(v)
}

func Min(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}

func Max(a, b *big.Int) *big.Int {
	if a.Cmp(b) >= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}

// Sum adds values, treating nil as zero.
func Sum(values ...*big.Int) *big.Int {
	total := new(big.Int)
	for _, v := range values {
		if v != nil {
			total.Add(total, v)
		}
	}
	return total
}

// OrZero returns v, or a fresh zero when v is nil.
func OrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
