package domain

import "github.com/shopspring/decimal"

// School identifies one of the recognized schools of jurisprudence (madhhab).
type School string

const (
	Hanafi  School = "HANAFI"
	Maliki  School = "MALIKI"
	Shafii  School = "SHAFII"
	Hanbali School = "HANBALI"
)

// MetalPreference selects which metal a school prefers for the nisab threshold.
type MetalPreference string

const (
	PreferGold   MetalPreference = "GOLD"
	PreferSilver MetalPreference = "SILVER"
)

// AssetCategory is a class of wealth whose zakatability varies by school.
type AssetCategory string

const (
	AssetCash       AssetCategory = "CASH"
	AssetGold       AssetCategory = "GOLD"
	AssetSilver     AssetCategory = "SILVER"
	AssetInvestment AssetCategory = "INVESTMENTS"
	AssetInventory  AssetCategory = "BUSINESS_INVENTORY"
	AssetLivestock  AssetCategory = "LIVESTOCK"
	AssetCrops      AssetCategory = "AGRICULTURAL_PRODUCE"
	AssetJewelry    AssetCategory = "PERSONAL_JEWELRY"
)

// ContinuityRule describes how strictly a school requires assets to stay
// above nisab for the whole hawl.
type ContinuityRule string

const (
	ContinuityStrict   ContinuityRule = "STRICT"
	ContinuityModerate ContinuityRule = "MODERATE"
)

// InterruptionRule describes what happens to the hawl when assets dip below nisab.
type InterruptionRule string

const (
	InterruptionRestart InterruptionRule = "RESTART"
	InterruptionPartial InterruptionRule = "PARTIAL"
)

// HawlPolicy captures a school's hawl duration and continuity requirements.
type HawlPolicy struct {
	DurationDays int              `json:"durationDays"` // Lunar year, ~354 days
	Continuity   ContinuityRule   `json:"continuity"`
	Interruption InterruptionRule `json:"interruption"`
}

// ComplianceProfile is the immutable rule table for one school. Profiles are
// resolved from a fixed registry and never mutated.
type ComplianceProfile struct {
	School           School                 `json:"school"`
	DisplayName      string                 `json:"displayName"`
	NisabGoldGrams   decimal.Decimal        `json:"nisabGoldGrams"`   // Must be 85
	NisabSilverGrams decimal.Decimal        `json:"nisabSilverGrams"` // Must be 595
	MetalPreference  MetalPreference        `json:"metalPreference"`
	ZakatRate        decimal.Decimal        `json:"zakatRate"` // Must be 0.025
	AssetEligibility map[AssetCategory]bool `json:"assetEligibility"`
	HawlPolicy       HawlPolicy             `json:"hawlPolicy"`
	Notes            string                 `json:"notes,omitempty"`
}

// Violation is one failed compliance assertion, reported rather than thrown so
// a caller can aggregate warnings across schools.
type Violation struct {
	School  School `json:"school"`
	Field   string `json:"field"`
	Message string `json:"message"`
}
