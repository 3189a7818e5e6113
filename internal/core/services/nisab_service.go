package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hawltrack/zakat_engine_app/internal/apperrors"
	"github.com/hawltrack/zakat_engine_app/internal/core/domain"
	"github.com/hawltrack/zakat_engine_app/internal/core/ports/providers"
	portssvc "github.com/hawltrack/zakat_engine_app/internal/core/ports/services"
	"github.com/hawltrack/zakat_engine_app/internal/middleware"
	"github.com/shopspring/decimal"
)

// nisabService converts metal spot prices into currency-denominated
// thresholds using the active school's method.
type nisabService struct {
	complianceSvc portssvc.ComplianceSvcFacade
	priceCache    providers.PriceCache
	fallbackValue decimal.Decimal
}

// NewNisabService creates a new NisabService. fallbackValue is the threshold
// used when no usable price is available (150000 currency units by default).
func NewNisabService(complianceSvc portssvc.ComplianceSvcFacade, priceCache providers.PriceCache, fallbackValue decimal.Decimal) portssvc.NisabSvcFacade {
	return &nisabService{
		complianceSvc: complianceSvc,
		priceCache:    priceCache,
		fallbackValue: fallbackValue,
	}
}

// Ensure nisabService implements the facade
var _ portssvc.NisabSvcFacade = (*nisabService)(nil)

// ComputeNisab derives the threshold from prices and the school profile.
//
// Selection order:
//  1. explicit method override, when that metal's price is known
//  2. the school's metal preference, when that metal's price is known
//  3. min(goldNisab, silverNisab) when both prices are known, the
//     traditional conservative rule favoring more payers
//  4. whichever single metal price is known
//  5. the fixed fallback value
//
// Non-positive prices are treated as unknown; the computation never fails.
func (s *nisabService) ComputeNisab(prices domain.PriceSnapshot, profile domain.ComplianceProfile, method domain.NisabMethod) domain.NisabResult {
	goldNisab := prices.GoldPricePerGram.Mul(profile.NisabGoldGrams)
	silverNisab := prices.SilverPricePerGram.Mul(profile.NisabSilverGrams)

	result := domain.NisabResult{
		Breakdown: domain.NisabBreakdown{
			GoldNisab:   goldNisab,
			SilverNisab: silverNisab,
		},
	}

	hasGold := prices.HasGold()
	hasSilver := prices.HasSilver()

	// 1. Explicit caller override, independent of school.
	switch method {
	case domain.MethodGold:
		if hasGold {
			result.Value = goldNisab
			result.Source = domain.NisabFromGold
			return result
		}
	case domain.MethodSilver:
		if hasSilver {
			result.Value = silverNisab
			result.Source = domain.NisabFromSilver
			return result
		}
	}

	// 2. School preference.
	if profile.MetalPreference == domain.PreferGold && hasGold {
		result.Value = goldNisab
		result.Source = domain.NisabFromGold
		return result
	}
	if profile.MetalPreference == domain.PreferSilver && hasSilver {
		result.Value = silverNisab
		result.Source = domain.NisabFromSilver
		return result
	}

	// 3. Conservative rule when both metals are priced.
	if hasGold && hasSilver {
		if goldNisab.LessThanOrEqual(silverNisab) {
			result.Value = goldNisab
			result.Source = domain.NisabFromGold
		} else {
			result.Value = silverNisab
			result.Source = domain.NisabFromSilver
		}
		return result
	}

	// 4. Whichever single price is known.
	if hasGold {
		result.Value = goldNisab
		result.Source = domain.NisabFromGold
		return result
	}
	if hasSilver {
		result.Value = silverNisab
		result.Source = domain.NisabFromSilver
		return result
	}

	// 5. Fixed fallback.
	result.Value = s.fallbackValue
	result.Source = domain.NisabFromFallback
	return result
}

// StorePrices caches a manually supplied price snapshot.
func (s *nisabService) StorePrices(ctx context.Context, snapshot domain.PriceSnapshot) error {
	if err := s.priceCache.StorePrices(ctx, snapshot); err != nil {
		return fmt.Errorf("%w: storing price snapshot: %v", apperrors.ErrPersistence, err)
	}
	return nil
}

// LatestPrices returns the cached snapshot.
func (s *nisabService) LatestPrices(ctx context.Context) (*domain.PriceSnapshot, error) {
	snapshot, err := s.priceCache.LatestPrices(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: reading price snapshot: %v", apperrors.ErrPersistence, err)
	}
	return snapshot, nil
}

// ComputeForSchool resolves the school profile, pulls cached prices and
// computes the threshold. A missing cache entry degrades to the fallback
// branch instead of failing.
func (s *nisabService) ComputeForSchool(ctx context.Context, school domain.School, method domain.NisabMethod) (*domain.NisabResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	profile, err := s.complianceSvc.ResolveProfile(school)
	if err != nil {
		return nil, err
	}

	var prices domain.PriceSnapshot
	cached, err := s.priceCache.LatestPrices(ctx)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: reading price snapshot: %v", apperrors.ErrPersistence, err)
		}
		logger.Warn("No cached metal prices, nisab will use the fallback value", slog.String("school", string(school)))
	} else if cached != nil {
		prices = *cached
	}

	result := s.ComputeNisab(prices, *profile, method)
	return &result, nil
}
