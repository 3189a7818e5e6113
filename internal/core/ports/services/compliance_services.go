package services

import (
	"github.com/hawltrack/zakat_engine_app/internal/core/domain"
)

// ComplianceReaderSvc defines read access to the per-school rule tables.
type ComplianceReaderSvc interface {
	// ListSchools returns every resolvable profile, in registry order.
	ListSchools() []domain.ComplianceProfile

	// ResolveProfile returns the immutable profile for a school.
	// Unknown school ids produce apperrors.ErrValidation.
	ResolveProfile(school domain.School) (*domain.ComplianceProfile, error)
}

// ComplianceValidatorSvc defines the non-throwing validation surface.
// Violations are accumulated and reported, never thrown, so a caller can
// aggregate warnings across schools.
type ComplianceValidatorSvc interface {
	// ValidateProfile asserts the fixed nisab constants (85g gold, 595g
	// silver), the 2.5% rate and the hawl policy of one profile.
	ValidateProfile(profile domain.ComplianceProfile) []domain.Violation

	// ValidateAllProfiles runs ValidateProfile over the whole registry.
	ValidateAllProfiles() map[domain.School][]domain.Violation
}

// ComplianceSvcFacade combines all compliance rule set interfaces
type ComplianceSvcFacade interface {
	ComplianceReaderSvc
	ComplianceValidatorSvc
}
