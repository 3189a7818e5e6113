package services

import (
	"context"

	"github.com/hawltrack/zakat_engine_app/internal/core/domain"
)

// NisabCalculatorSvc defines the pure threshold computation.
type NisabCalculatorSvc interface {
	// ComputeNisab converts spot prices into a currency-denominated
	// threshold. Selection order: explicit method override, school metal
	// preference, conservative min of both metals, whichever single price is
	// known, fixed fallback. Never fails; malformed prices count as unknown.
	ComputeNisab(prices domain.PriceSnapshot, profile domain.ComplianceProfile, method domain.NisabMethod) domain.NisabResult
}

// NisabPriceSvc defines access to the manually supplied price cache.
type NisabPriceSvc interface {
	// StorePrices caches a manually supplied price snapshot.
	StorePrices(ctx context.Context, snapshot domain.PriceSnapshot) error

	// LatestPrices returns the cached snapshot, apperrors.ErrNotFound when
	// none has been supplied yet.
	LatestPrices(ctx context.Context) (*domain.PriceSnapshot, error)

	// ComputeForSchool resolves the school's profile, pulls cached prices and
	// computes the threshold. Missing cache entries degrade to the fallback
	// branch rather than failing.
	ComputeForSchool(ctx context.Context, school domain.School, method domain.NisabMethod) (*domain.NisabResult, error)
}

// NisabSvcFacade combines the nisab calculator interfaces
type NisabSvcFacade interface {
	NisabCalculatorSvc
	NisabPriceSvc
}
