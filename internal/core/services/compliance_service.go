package services

import (
	"fmt"

	"github.com/hawltrack/zakat_engine_app/internal/apperrors"
	"github.com/hawltrack/zakat_engine_app/internal/core/domain"
	portssvc "github.com/hawltrack/zakat_engine_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// Fixed scholarly constants shared by every school in this implementation.
var (
	nisabGoldGrams   = decimal.NewFromInt(85)
	nisabSilverGrams = decimal.NewFromInt(595)
	zakatRate        = decimal.NewFromFloat(0.025)
)

// schoolOrder fixes the registry iteration order for stable API output.
var schoolOrder = []domain.School{domain.Hanafi, domain.Maliki, domain.Shafii, domain.Hanbali}

// profileRegistry is the immutable per-school rule table. Profiles are copied
// on resolve and never mutated in place.
var profileRegistry = map[domain.School]domain.ComplianceProfile{
	domain.Hanafi: {
		School:           domain.Hanafi,
		DisplayName:      "Hanafi",
		NisabGoldGrams:   nisabGoldGrams,
		NisabSilverGrams: nisabSilverGrams,
		MetalPreference:  domain.PreferSilver,
		ZakatRate:        zakatRate,
		AssetEligibility: map[domain.AssetCategory]bool{
			domain.AssetCash:       true,
			domain.AssetGold:       true,
			domain.AssetSilver:     true,
			domain.AssetInvestment: true,
			domain.AssetInventory:  true,
			domain.AssetLivestock:  true,
			domain.AssetCrops:      true,
			domain.AssetJewelry:    true, // Hanafi: personal jewelry is zakatable
		},
		HawlPolicy: domain.HawlPolicy{
			DurationDays: domain.HawlDurationDays,
			Continuity:   domain.ContinuityModerate,
			Interruption: domain.InterruptionRestart,
		},
	},
	domain.Maliki: {
		School:           domain.Maliki,
		DisplayName:      "Maliki",
		NisabGoldGrams:   nisabGoldGrams,
		NisabSilverGrams: nisabSilverGrams,
		MetalPreference:  domain.PreferGold,
		ZakatRate:        zakatRate,
		AssetEligibility: map[domain.AssetCategory]bool{
			domain.AssetCash:       true,
			domain.AssetGold:       true,
			domain.AssetSilver:     true,
			domain.AssetInvestment: true,
			domain.AssetInventory:  true,
			domain.AssetLivestock:  true,
			domain.AssetCrops:      true,
			domain.AssetJewelry:    false,
		},
		HawlPolicy: domain.HawlPolicy{
			DurationDays: domain.HawlDurationDays,
			Continuity:   domain.ContinuityModerate,
			Interruption: domain.InterruptionPartial,
		},
		// The declared partial-credit interruption policy is NOT honored by
		// the interruption detector, which applies the strict rule to every
		// school. Surfaced here until the scholarly formula is settled.
		Notes: "Partial hawl credit on interruption is declared but not applied; interruption detection is uniformly strict.",
	},
	domain.Shafii: {
		School:           domain.Shafii,
		DisplayName:      "Shafi'i",
		NisabGoldGrams:   nisabGoldGrams,
		NisabSilverGrams: nisabSilverGrams,
		MetalPreference:  domain.PreferGold,
		ZakatRate:        zakatRate,
		AssetEligibility: map[domain.AssetCategory]bool{
			domain.AssetCash:       true,
			domain.AssetGold:       true,
			domain.AssetSilver:     true,
			domain.AssetInvestment: true,
			domain.AssetInventory:  true,
			domain.AssetLivestock:  true,
			domain.AssetCrops:      true,
			domain.AssetJewelry:    false,
		},
		HawlPolicy: domain.HawlPolicy{
			DurationDays: domain.HawlDurationDays,
			Continuity:   domain.ContinuityStrict,
			Interruption: domain.InterruptionRestart,
		},
	},
	domain.Hanbali: {
		School:           domain.Hanbali,
		DisplayName:      "Hanbali",
		NisabGoldGrams:   nisabGoldGrams,
		NisabSilverGrams: nisabSilverGrams,
		MetalPreference:  domain.PreferGold,
		ZakatRate:        zakatRate,
		AssetEligibility: map[domain.AssetCategory]bool{
			domain.AssetCash:       true,
			domain.AssetGold:       true,
			domain.AssetSilver:     true,
			domain.AssetInvestment: true,
			domain.AssetInventory:  true,
			domain.AssetLivestock:  true,
			domain.AssetCrops:      true,
			domain.AssetJewelry:    false,
		},
		HawlPolicy: domain.HawlPolicy{
			DurationDays: domain.HawlDurationDays,
			Continuity:   domain.ContinuityStrict,
			Interruption: domain.InterruptionRestart,
		},
	},
}

// complianceService provides pure, side-effect-free rule table lookups.
type complianceService struct{}

// NewComplianceService creates a new ComplianceService.
func NewComplianceService() portssvc.ComplianceSvcFacade {
	return &complianceService{}
}

// Ensure complianceService implements the facade
var _ portssvc.ComplianceSvcFacade = (*complianceService)(nil)

// ListSchools returns a copy of every registered profile in registry order.
func (s *complianceService) ListSchools() []domain.ComplianceProfile {
	profiles := make([]domain.ComplianceProfile, 0, len(schoolOrder))
	for _, school := range schoolOrder {
		profiles = append(profiles, copyProfile(profileRegistry[school]))
	}
	return profiles
}

// ResolveProfile returns the profile for a school, ErrValidation if unknown.
func (s *complianceService) ResolveProfile(school domain.School) (*domain.ComplianceProfile, error) {
	profile, ok := profileRegistry[school]
	if !ok {
		return nil, fmt.Errorf("%w: unknown school %q", apperrors.ErrValidation, school)
	}
	copied := copyProfile(profile)
	return &copied, nil
}

// ValidateProfile asserts the fixed compliance constants. Violations are
// returned, never thrown, so callers can aggregate warnings across schools.
func (s *complianceService) ValidateProfile(profile domain.ComplianceProfile) []domain.Violation {
	var violations []domain.Violation

	report := func(field, message string) {
		violations = append(violations, domain.Violation{
			School:  profile.School,
			Field:   field,
			Message: message,
		})
	}

	if !profile.NisabGoldGrams.Equal(nisabGoldGrams) {
		report("nisabGoldGrams", fmt.Sprintf("must be %s grams, got %s", nisabGoldGrams, profile.NisabGoldGrams))
	}
	if !profile.NisabSilverGrams.Equal(nisabSilverGrams) {
		report("nisabSilverGrams", fmt.Sprintf("must be %s grams, got %s", nisabSilverGrams, profile.NisabSilverGrams))
	}
	if !profile.ZakatRate.Equal(zakatRate) {
		report("zakatRate", fmt.Sprintf("must be %s, got %s", zakatRate, profile.ZakatRate))
	}
	if profile.HawlPolicy.DurationDays != domain.HawlDurationDays {
		report("hawlPolicy.durationDays", fmt.Sprintf("must be %d days, got %d", domain.HawlDurationDays, profile.HawlPolicy.DurationDays))
	}
	if profile.MetalPreference != domain.PreferGold && profile.MetalPreference != domain.PreferSilver {
		report("metalPreference", fmt.Sprintf("unknown metal preference %q", profile.MetalPreference))
	}
	if len(profile.AssetEligibility) == 0 {
		report("assetEligibility", "eligibility table is empty")
	}

	return violations
}

// ValidateAllProfiles runs ValidateProfile over the whole registry.
func (s *complianceService) ValidateAllProfiles() map[domain.School][]domain.Violation {
	report := make(map[domain.School][]domain.Violation, len(profileRegistry))
	for _, school := range schoolOrder {
		if violations := s.ValidateProfile(profileRegistry[school]); len(violations) > 0 {
			report[school] = violations
		}
	}
	return report
}

// copyProfile deep-copies a profile so callers cannot mutate the registry
// through the shared eligibility map.
func copyProfile(p domain.ComplianceProfile) domain.ComplianceProfile {
	eligibility := make(map[domain.AssetCategory]bool, len(p.AssetEligibility))
	for category, eligible := range p.AssetEligibility {
		eligibility[category] = eligible
	}
	p.AssetEligibility = eligibility
	return p
}
