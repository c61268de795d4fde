package fees

import (
	"math/big"

	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
	"github.com/aman-zulfiqar/perps-swap-core/internal/numbers"
)

var hundredPercent = new(big.Int).Mul(big.NewInt(100), numbers.Precision)

// GetFeeItem expresses deltaUsd relative to basisUsd. A nil delta means the
// fee does not apply and yields nil; a missing or non-positive basis yields
// zero percentages.
func GetFeeItem(deltaUsd, basisUsd *big.Int, roundUp bool) *models.FeeItem {
	if deltaUsd == nil {
		return nil
	}

	item := &models.FeeItem{
		DeltaUsd:          new(big.Int).Set(deltaUsd),
		Bps:               new(big.Int),
		PrecisePercentage: new(big.Int),
	}
	if basisUsd != nil && basisUsd.Sign() > 0 {
		item.Bps = numbers.BasisPoints(deltaUsd, basisUsd, roundUp)
		item.PrecisePercentage = numbers.MulDiv(deltaUsd, hundredPercent, basisUsd)
	}
	return item
}

// GetTotalFeeItem sums the items, skipping nil ones.
func GetTotalFeeItem(items ...*models.FeeItem) *models.FeeItem {
	total := &models.FeeItem{
		DeltaUsd:          new(big.Int),
		Bps:               new(big.Int),
		PrecisePercentage: new(big.Int),
	}
	for _, item := range items {
		if item == nil {
			continue
		}
		total.DeltaUsd.Add(total.DeltaUsd, item.DeltaUsd)
		total.Bps.Add(total.Bps, item.Bps)
		total.PrecisePercentage.Add(total.PrecisePercentage, item.PrecisePercentage)
	}
	return total
}

func neg(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Neg(v)
}
