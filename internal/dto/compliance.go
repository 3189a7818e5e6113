package dto

import (
	"github.com/hawltrack/zakat_engine_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SchoolResponse is the API shape of one compliance profile.
type SchoolResponse struct {
	School           string            `json:"school"`
	DisplayName      string            `json:"displayName"`
	NisabGoldGrams   decimal.Decimal   `json:"nisabGoldGrams"`
	NisabSilverGrams decimal.Decimal   `json:"nisabSilverGrams"`
	MetalPreference  string            `json:"metalPreference"`
	ZakatRate        decimal.Decimal   `json:"zakatRate"`
	AssetEligibility map[string]bool   `json:"assetEligibility"`
	HawlPolicy       domain.HawlPolicy `json:"hawlPolicy"`
	Notes            string            `json:"notes,omitempty"`
}

// ToSchoolResponse converts a compliance profile to its response DTO.
func ToSchoolResponse(p *domain.ComplianceProfile) SchoolResponse {
	eligibility := make(map[string]bool, len(p.AssetEligibility))
	for category, eligible := range p.AssetEligibility {
		eligibility[string(category)] = eligible
	}
	return SchoolResponse{
		School:           string(p.School),
		DisplayName:      p.DisplayName,
		NisabGoldGrams:   p.NisabGoldGrams,
		NisabSilverGrams: p.NisabSilverGrams,
		MetalPreference:  string(p.MetalPreference),
		ZakatRate:        p.ZakatRate,
		AssetEligibility: eligibility,
		HawlPolicy:       p.HawlPolicy,
		Notes:            p.Notes,
	}
}

// ToListSchoolResponse converts profiles to response DTOs.
func ToListSchoolResponse(profiles []domain.ComplianceProfile) []SchoolResponse {
	res := make([]SchoolResponse, len(profiles))
	for i := range profiles {
		res[i] = ToSchoolResponse(&profiles[i])
	}
	return res
}

// ValidationReportResponse aggregates violations across every school.
type ValidationReportResponse struct {
	Valid      bool                          `json:"valid"`
	Violations map[string][]domain.Violation `json:"violations"`
}
