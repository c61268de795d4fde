package numbers

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func b(v int64) *big.Int { return big.NewInt(v) }

// assertBig compares by value; big.Int internals differ between equal numbers.
func assertBig(t *testing.T, want, got *big.Int, msgAndArgs ...interface{}) {
	t.Helper()
	require.NotNil(t, got, msgAndArgs...)
	assert.Equal(t, want.String(), got.String(), msgAndArgs...)
}

func TestApplyFactor(t *testing.T) {
	half := new(big.Int).Quo(Precision, b(2))
	assertBig(t, b(500), ApplyFactor(b(1000), half))
	assertBig(t, b(-500), ApplyFactor(b(-1000), half))
	assertBig(t, b(0), ApplyFactor(b(1), half)) // truncates
}

func TestMulDiv(t *testing.T) {
	assertBig(t, b(6), MulDiv(b(4), b(3), b(2)))
	assertBig(t, b(-1), MulDiv(b(-3), b(1), b(2)), "truncates toward zero")
	assertBig(t, b(0), MulDiv(b(4), b(3), b(0)))
}

func TestBasisPoints(t *testing.T) {
	assertBig(t, b(3333), BasisPoints(b(1), b(3), false))
	assertBig(t, b(3334), BasisPoints(b(1), b(3), true))
	assertBig(t, b(-3334), BasisPoints(b(-1), b(3), true))
	assertBig(t, b(-1), BasisPoints(b(-1), b(30000), true))
	assertBig(t, b(5000), BasisPoints(b(1), b(2), true), "exact results are not bumped")
	assertBig(t, b(0), BasisPoints(b(1), b(0), true))
}

func TestRoundUpDivision(t *testing.T) {
	assertBig(t, b(4), RoundUpDivision(b(7), b(2)))
	assertBig(t, b(3), RoundUpDivision(b(6), b(2)))

	assertBig(t, b(4), RoundUpMagnitudeDivision(b(7), b(2)))
	assertBig(t, b(-4), RoundUpMagnitudeDivision(b(-7), b(2)))
	assertBig(t, b(-3), RoundUpMagnitudeDivision(b(-6), b(2)))
}

func TestApplySlippage(t *testing.T) {
	assertBig(t, b(9950), ApplySlippage(b(10000), 50))
	assertBig(t, b(10000), ApplySlippage(b(10000), 0))
	assertBig(t, b(0), ApplySlippage(b(10000), 10000))
}

func TestMinMaxSum(t *testing.T) {
	assertBig(t, b(1), Min(b(1), b(2)))
	assertBig(t, b(2), Max(b(1), b(2)))
	assertBig(t, b(5), Abs(b(-5)))
	assertBig(t, b(3), Sum(b(1), nil, b(2)))
	assertBig(t, b(0), OrZero(nil))
}

func TestConvertToUsd(t *testing.T) {
	price := ExpandDecimals(2000, 30)
	oneEth := ExpandDecimals(1, 18)

	usd := ConvertToUsd(oneEth, 18, price)
	assertBig(t, price, usd)
	assertBig(t, oneEth, ConvertToTokenAmount(usd, 18, price))

	assert.Nil(t, ConvertToUsd(nil, 18, price))
	assert.Nil(t, ConvertToTokenAmount(usd, 18, b(0)))
}

func TestContractPrice(t *testing.T) {
	price := ExpandDecimals(2000, 30)
	contract := ConvertToContractPrice(price, 18)
	assertBig(t, ExpandDecimals(2000, 12), contract)
	assertBig(t, price, ConvertFromContractPrice(contract, 18))
	assertBig(t, b(15), MidPrice(b(10), b(20)))
}

func TestApplyExponentFactor(t *testing.T) {
	// Below 1.0 the impact is zero
	assertBig(t, b(0), ApplyExponentFactor(ExpandDecimals(5, 29), ExpandDecimals(2, 30)))

	// Unit exponent
	v := ExpandDecimals(7, 30)
	assertBig(t, v, ApplyExponentFactor(v, Precision))

	// Whole exponent is exact
	assertBig(t, ExpandDecimals(9, 30), ApplyExponentFactor(ExpandDecimals(3, 30), ExpandDecimals(2, 30)))
	assertBig(t, ExpandDecimals(27, 30), ApplyExponentFactor(ExpandDecimals(3, 30), ExpandDecimals(3, 30)))

	// Fractional exponent
	sqrt := ApplyExponentFactor(ExpandDecimals(4, 30), ExpandDecimals(5, 29))
	diff := new(big.Int).Sub(sqrt, ExpandDecimals(2, 30))
	require.True(t, diff.CmpAbs(ExpandDecimals(1, 20)) < 0, "got %s", sqrt)
}

func TestApplyImpactFactor(t *testing.T) {
	// (10^2) * 0.01 = 1
	factor := ExpandDecimals(1, 28)
	got := ApplyImpactFactor(ExpandDecimals(10, 30), factor, ExpandDecimals(2, 30))
	assertBig(t, ExpandDecimals(1, 30), got)
}
