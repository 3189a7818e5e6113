package repositories

import (
	"context"

	"github.com/hawltrack/zakat_engine_app/internal/core/domain"
)

// PaymentReader defines read operations for the payment ledger
type PaymentReader interface {
	// FindPaymentByID retrieves a payment by its unique identifier.
	FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error)

	// ListPaymentsByUser retrieves the user's ledger entries, newest first.
	ListPaymentsByUser(ctx context.Context, userID string) ([]domain.Payment, error)
}

// PaymentWriter defines write operations for the payment ledger
type PaymentWriter interface {
	// SavePayment persists a new ledger entry.
	SavePayment(ctx context.Context, payment domain.Payment) error

	// UpdatePayment persists a status transition on an existing entry.
	UpdatePayment(ctx context.Context, payment domain.Payment) error

	// DeletePayment removes a ledger entry.
	DeletePayment(ctx context.Context, paymentID string) error
}

// PaymentRepositoryFacade combines all payment-related repository interfaces
type PaymentRepositoryFacade interface {
	PaymentReader
	PaymentWriter
}
