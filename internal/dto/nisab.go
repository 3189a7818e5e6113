package dto

import (
	"time"

	"github.com/hawltrack/zakat_engine_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// StorePricesRequest supplies manual metal spot prices, per gram.
type StorePricesRequest struct {
	GoldPricePerGram   decimal.Decimal `json:"goldPricePerGram" binding:"required"`
	SilverPricePerGram decimal.Decimal `json:"silverPricePerGram" binding:"required"`
}

// ToPriceSnapshot converts the request into a domain snapshot stamped now.
func (r StorePricesRequest) ToPriceSnapshot(now time.Time) domain.PriceSnapshot {
	return domain.PriceSnapshot{
		GoldPricePerGram:   r.GoldPricePerGram,
		SilverPricePerGram: r.SilverPricePerGram,
		CapturedAt:         now,
	}
}

// ComputeNisabRequest asks for a threshold computation. Prices are optional;
// when omitted the cached snapshot is used.
type ComputeNisabRequest struct {
	School             string           `json:"school" binding:"required"`
	Method             string           `json:"method" binding:"omitempty,oneof=GOLD SILVER"`
	GoldPricePerGram   *decimal.Decimal `json:"goldPricePerGram,omitempty"`
	SilverPricePerGram *decimal.Decimal `json:"silverPricePerGram,omitempty"`
}

// NisabResponse is the computed threshold with its audit trail.
type NisabResponse struct {
	Value       decimal.Decimal `json:"value"`
	Source      string          `json:"source"`
	GoldNisab   decimal.Decimal `json:"goldNisab"`
	SilverNisab decimal.Decimal `json:"silverNisab"`
	School      string          `json:"school"`
	ComputedAt  time.Time       `json:"computedAt"`
}

// ToNisabResponse converts a domain result to its response DTO.
func ToNisabResponse(result domain.NisabResult, school domain.School, now time.Time) NisabResponse {
	return NisabResponse{
		Value:       result.Value,
		Source:      string(result.Source),
		GoldNisab:   result.Breakdown.GoldNisab,
		SilverNisab: result.Breakdown.SilverNisab,
		School:      string(school),
		ComputedAt:  now,
	}
}

// PricesResponse returns the cached price snapshot.
type PricesResponse struct {
	GoldPricePerGram   decimal.Decimal `json:"goldPricePerGram"`
	SilverPricePerGram decimal.Decimal `json:"silverPricePerGram"`
	CapturedAt         time.Time       `json:"capturedAt"`
}

// ToPricesResponse converts a domain snapshot to its response DTO.
func ToPricesResponse(snapshot domain.PriceSnapshot) PricesResponse {
	return PricesResponse{
		GoldPricePerGram:   snapshot.GoldPricePerGram,
		SilverPricePerGram: snapshot.SilverPricePerGram,
		CapturedAt:         snapshot.CapturedAt,
	}
}
