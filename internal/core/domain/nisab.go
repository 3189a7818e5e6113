package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceSnapshot holds manually supplied precious-metal spot prices, per gram.
// The engine never fetches prices itself; callers supply them and the cache
// keeps the latest set.
type PriceSnapshot struct {
	GoldPricePerGram   decimal.Decimal `json:"goldPricePerGram"`
	SilverPricePerGram decimal.Decimal `json:"silverPricePerGram"`
	CapturedAt         time.Time       `json:"capturedAt"`
}

// HasGold reports whether the gold price is usable. Non-positive prices are
// treated as unknown rather than rejected.
func (p PriceSnapshot) HasGold() bool {
	return p.GoldPricePerGram.IsPositive()
}

// HasSilver reports whether the silver price is usable.
func (p PriceSnapshot) HasSilver() bool {
	return p.SilverPricePerGram.IsPositive()
}

// NisabSource records which selection branch produced a nisab value.
type NisabSource string

const (
	NisabFromGold     NisabSource = "GOLD"
	NisabFromSilver   NisabSource = "SILVER"
	NisabFromFallback NisabSource = "FALLBACK"
)

// NisabMethod is an explicit caller override of the metal used for the
// threshold, independent of the school's preference. Empty means no override.
type NisabMethod string

const (
	MethodNone   NisabMethod = ""
	MethodGold   NisabMethod = "GOLD"
	MethodSilver NisabMethod = "SILVER"
)

// NisabResult is the derived, non-persisted wealth threshold. Source tells an
// auditor which rule picked the value; Breakdown keeps both metal thresholds
// regardless of which one won.
type NisabResult struct {
	Value     decimal.Decimal `json:"value"`
	Source    NisabSource     `json:"source"`
	Breakdown NisabBreakdown  `json:"breakdown"`
}

// NisabBreakdown carries the per-metal thresholds behind a NisabResult.
type NisabBreakdown struct {
	GoldNisab   decimal.Decimal `json:"goldNisab"`
	SilverNisab decimal.Decimal `json:"silverNisab"`
}
