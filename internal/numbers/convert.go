package numbers

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
)

// ConvertToUsd prices a token amount: amount * price / 10^decimals.
// nil inputs give nil.
func ConvertToUsd(amount *big.Int, decimals int, price *big.Int) *big.Int {
	if amount == nil || price == nil {
		return nil
	}
	v := new(big.Int).Mul(amount, price)
	return v.Quo(v, math.BigPow(10, int64(decimals)))
}

// ConvertToTokenAmount is the inverse of ConvertToUsd. It returns nil for a
// missing or non-positive price.
func ConvertToTokenAmount(usd *big.Int, decimals int, price *big.Int) *big.Int {
	if usd == nil || price == nil || price.Sign() <= 0 {
		return nil
	}
	v := new(big.Int).Mul(usd, math.BigPow(10, int64(decimals)))
	return v.Quo(v, price)
}

// ConvertToContractPrice drops the token decimals from a 1e30 USD price, the
// unit the contracts store prices in.
func ConvertToContractPrice(price *big.Int, decimals int) *big.Int {
	return new(big.Int).Quo(price, math.BigPow(10, int64(decimals)))
}

func ConvertFromContractPrice(price *big.Int, decimals int) *big.Int {
	return new(big.Int).Mul(price, math.BigPow(10, int64(decimals)))
}

// MidPrice is (min + max) / 2.
func MidPrice(minPrice, maxPrice *big.Int) *big.Int {
	v := new(big.Int).Add(minPrice, maxPrice)
	return v.Quo(v, big.NewInt(2))
}
