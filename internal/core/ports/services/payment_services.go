package services

import (
	"context"

	"github.com/hawltrack/zakat_engine_app/internal/core/domain"
	"github.com/hawltrack/zakat_engine_app/internal/dto"
	"github.com/shopspring/decimal"
)

// PaymentLedgerSvc defines the mutating ledger operations.
type PaymentLedgerSvc interface {
	// CreatePayment records a PENDING payment. When the payment targets the
	// user's current DUE cycle the cycle is archived as paid and a fresh one
	// is started with the assets carried forward. Targeting the current
	// cycle while it is not DUE produces apperrors.ErrDomainRule.
	CreatePayment(ctx context.Context, userID string, req dto.CreatePaymentRequest) (*domain.Payment, error)

	// MarkCompleted transitions a PENDING payment to COMPLETED.
	MarkCompleted(ctx context.Context, userID string, paymentID string, req dto.CompletePaymentRequest) (*domain.Payment, error)

	// MarkFailed transitions a PENDING payment to FAILED.
	MarkFailed(ctx context.Context, userID string, paymentID string, reason string) (*domain.Payment, error)

	// DeletePayment removes a ledger entry. COMPLETED entries tied to an
	// archived cycle are protected and produce apperrors.ErrDomainRule.
	DeletePayment(ctx context.Context, userID string, paymentID string) error
}

// PaymentReportingSvc defines the ledger aggregation surface.
type PaymentReportingSvc interface {
	// ListPayments returns the user's ledger entries, newest first.
	ListPayments(ctx context.Context, userID string) ([]domain.Payment, error)

	// TotalPayments sums amounts over COMPLETED payments only.
	TotalPayments(ctx context.Context, userID string) (decimal.Decimal, error)

	// PaymentsByYear groups ledger entries by payment date year.
	PaymentsByYear(ctx context.Context, userID string) (map[int][]domain.Payment, error)

	// ExportPayments builds the downloadable ledger document.
	ExportPayments(ctx context.Context, userID string) (*domain.PaymentExport, error)
}

// PaymentSvcFacade combines all payment ledger interfaces
type PaymentSvcFacade interface {
	PaymentLedgerSvc
	PaymentReportingSvc
}
