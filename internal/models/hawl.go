package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// HawlStatus mirrors the domain cycle status in the database.
type HawlStatus string

const (
	HawlActive      HawlStatus = "ACTIVE"
	HawlDue         HawlStatus = "DUE"
	HawlPaid        HawlStatus = "PAID"
	HawlInterrupted HawlStatus = "INTERRUPTED"
)

// HawlCycle is the persisted shape of one qualification cycle. The current
// cycle and the history share the table; a partial unique index on
// (user_id) WHERE is_current enforces the singleton.
type HawlCycle struct {
	HawlID                   string          `db:"hawl_id"`
	UserID                   string          `db:"user_id"`
	StartDate                time.Time       `db:"start_date"`
	EndDate                  time.Time       `db:"end_date"`
	Status                   HawlStatus      `db:"status"`
	IsCurrent                bool            `db:"is_current"`
	InitialAssets            decimal.Decimal `db:"initial_assets"`
	CurrentAssets            decimal.Decimal `db:"current_assets"`
	NisabThresholdAtCreation decimal.Decimal `db:"nisab_threshold_at_creation"`
	HasBeenInterrupted       bool            `db:"has_been_interrupted"`
	ContinuousAboveNisab     bool            `db:"continuous_above_nisab"`
	HijriStart               []byte          `db:"hijri_start"`      // JSONB, nullable
	HijriEnd                 []byte          `db:"hijri_end"`        // JSONB, nullable
	PreviousPayment          []byte          `db:"previous_payment"` // JSONB, nullable
	AuditFields
}

// AssetSnapshot is the persisted shape of one asset snapshot log entry.
type AssetSnapshot struct {
	SnapshotID              string          `db:"snapshot_id"`
	HawlID                  string          `db:"hawl_id"`
	UserID                  string          `db:"user_id"`
	Date                    time.Time       `db:"snapshot_date"`
	TotalAssets             decimal.Decimal `db:"total_assets"`
	NisabThresholdAtCapture decimal.Decimal `db:"nisab_threshold_at_capture"`
	IsAboveNisab            bool            `db:"is_above_nisab"`
	Reason                  string          `db:"reason"`
}
