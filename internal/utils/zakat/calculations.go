package zakat

import (
	"github.com/shopspring/decimal"
)

// ObligationAmount computes the zakat due on qualifying wealth: assets held
// above nisab for a full hawl, multiplied by the school's rate (2.5% in this
// implementation).
func ObligationAmount(assets, rate decimal.Decimal) decimal.Decimal {
	return assets.Mul(rate)
}

// ProjectedAssets grows the asset base by the annual growth rate for the
// given number of years: assets * (1 + growthRate)^years.
func ProjectedAssets(assets, growthRate decimal.Decimal, years int) decimal.Decimal {
	if years <= 0 {
		return assets
	}
	factor := decimal.NewFromInt(1).Add(growthRate).Pow(decimal.NewFromInt(int64(years)))
	return assets.Mul(factor)
}

// ProjectedObligation is the obligation on the projected asset base.
func ProjectedObligation(assets, growthRate, rate decimal.Decimal, years int) decimal.Decimal {
	return ObligationAmount(ProjectedAssets(assets, growthRate, years), rate)
}
