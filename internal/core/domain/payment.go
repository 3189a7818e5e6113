package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus indicates the state of a zakat payment.
// PENDING is the only non-terminal state; COMPLETED, FAILED and REFUNDED are
// terminal and one-way.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

// CanTransitionTo reports whether a payment may move from its current status
// to the target one. Only PENDING payments may move.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	if s != PaymentPending {
		return false
	}
	switch target {
	case PaymentCompleted, PaymentFailed:
		return true
	default:
		return false
	}
}

// Payment is one ledger entry recording a zakat obligation payment.
type Payment struct {
	PaymentID   string          `json:"paymentID"`
	UserID      string          `json:"userID"`
	HawlID      string          `json:"hawlID"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"paymentDate"`
	Method      string          `json:"method"` // e.g. bank transfer, cash, charity platform
	Status      PaymentStatus   `json:"status"`
	Description string          `json:"description,omitempty"`
	Reference   string          `json:"reference,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	AuditFields
}

// PaymentStats summarizes the ledger for the export document.
type PaymentStats struct {
	Total     decimal.Decimal `json:"total"` // COMPLETED only
	Completed int             `json:"completed"`
	Pending   int             `json:"pending"`
	Failed    int             `json:"failed"`
	Refunded  int             `json:"refunded"`
}

// PaymentExport is the downloadable ledger document.
type PaymentExport struct {
	Payments      []Payment       `json:"payments"`
	ExportDate    time.Time       `json:"exportDate"`
	TotalPayments decimal.Decimal `json:"totalPayments"`
	Stats         PaymentStats    `json:"stats"`
}
