package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus mirrors the domain payment status in the database.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

// Payment is the persisted shape of one ledger entry.
type Payment struct {
	PaymentID   string          `db:"payment_id"`
	UserID      string          `db:"user_id"`
	HawlID      string          `db:"hawl_id"`
	Amount      decimal.Decimal `db:"amount"`
	PaymentDate time.Time       `db:"payment_date"`
	Method      string          `db:"method"`
	Status      PaymentStatus   `db:"status"`
	Description string          `db:"description"`
	Reference   string          `db:"reference"`
	Notes       string          `db:"notes"`
	AuditFields
}
