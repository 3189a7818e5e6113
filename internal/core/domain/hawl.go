package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// HawlStatus indicates the state of a hawl qualification cycle.
// NEW is the conceptual moment assets first cross nisab; it collapses into
// ACTIVE on creation and is never stored.
type HawlStatus string

const (
	HawlActive      HawlStatus = "ACTIVE"
	HawlDue         HawlStatus = "DUE"
	HawlPaid        HawlStatus = "PAID" // Terminal, archived
	HawlInterrupted HawlStatus = "INTERRUPTED"
)

// HawlDurationDays is the lunar year length used by every hawl policy.
const HawlDurationDays = 354

// PreviousPaymentData is the audit-trail carryover written onto a restarted
// cycle, linking it to the payment that closed its predecessor.
type PreviousPaymentData struct {
	PaymentID   string          `json:"paymentID"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"paymentDate"`
	HawlID      string          `json:"hawlID"`
}

// HawlCycle is one qualification cycle for a user's zakatable wealth.
// Exactly one cycle may be current per user at a time; archived cycles form
// an append-only history.
type HawlCycle struct {
	HawlID                   string               `json:"hawlID"`
	UserID                   string               `json:"userID"`
	StartDate                time.Time            `json:"startDate"`
	EndDate                  time.Time            `json:"endDate"`
	Status                   HawlStatus           `json:"status"`
	InitialAssets            decimal.Decimal      `json:"initialAssets"`
	CurrentAssets            decimal.Decimal      `json:"currentAssets"`
	NisabThresholdAtCreation decimal.Decimal      `json:"nisabThresholdAtCreation"`
	HasBeenInterrupted       bool                 `json:"hasBeenInterrupted"`
	ContinuousAboveNisab     bool                 `json:"continuousAboveNisab"`
	HijriStart               *HijriDate           `json:"hijriStart,omitempty"`
	HijriEnd                 *HijriDate           `json:"hijriEnd,omitempty"`
	PreviousPayment          *PreviousPaymentData `json:"previousPayment,omitempty"`
	AuditFields
}

// IsCurrent reports whether the cycle still occupies the per-user current
// slot. INTERRUPTED cycles remain current until an explicit restart.
func (h HawlCycle) IsCurrent() bool {
	return h.Status != HawlPaid
}

// HijriDate is an Islamic calendar date as reported by the external calendar
// provider. The engine performs no lunar arithmetic of its own.
type HijriDate struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Day   int    `json:"day"`
	Label string `json:"label,omitempty"` // Provider-formatted, e.g. "15 Ramadan 1447"
}

// AssetSnapshot is a point-in-time record of total zakatable assets used to
// verify hawl continuity. Snapshots are append-only and pruned to a rolling
// twelve month window after every append.
type AssetSnapshot struct {
	SnapshotID              string          `json:"snapshotID"`
	HawlID                  string          `json:"hawlID"`
	UserID                  string          `json:"userID"`
	Date                    time.Time       `json:"date"`
	TotalAssets             decimal.Decimal `json:"totalAssets"`
	NisabThresholdAtCapture decimal.Decimal `json:"nisabThresholdAtCapture"`
	IsAboveNisab            bool            `json:"isAboveNisab"`
	Reason                  string          `json:"reason"`
}

// SnapshotRetentionMonths is the rolling window snapshots are pruned to.
const SnapshotRetentionMonths = 12

// HawlStartReason is the snapshot reason written when a cycle begins.
const HawlStartReason = "Hawl started"
