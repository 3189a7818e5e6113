package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hawltrack/zakat_engine_app/internal/apperrors"
	"github.com/hawltrack/zakat_engine_app/internal/core/domain"
	portsrepo "github.com/hawltrack/zakat_engine_app/internal/core/ports/repositories"
	portssvc "github.com/hawltrack/zakat_engine_app/internal/core/ports/services"
	"github.com/hawltrack/zakat_engine_app/internal/dto"
	"github.com/hawltrack/zakat_engine_app/internal/middleware"
	"github.com/shopspring/decimal"
)

var (
	ErrAmountNotPositive  = errors.New("payment amount must be positive")
	ErrTerminalPayment    = errors.New("payment is already in a terminal state")
	ErrCompletedProtected = errors.New("completed payments tied to an archived hawl cannot be deleted")
)

// paymentService records obligation payments, aggregates ledger totals and
// triggers hawl closure and restart.
type paymentService struct {
	paymentRepo portsrepo.PaymentRepositoryFacade
	hawlSvc     portssvc.HawlSvcFacade
	now         func() time.Time
}

// PaymentServiceOption customizes a paymentService.
type PaymentServiceOption func(*paymentService)

// WithPaymentClock overrides the time source, for tests.
func WithPaymentClock(now func() time.Time) PaymentServiceOption {
	return func(s *paymentService) {
		s.now = now
	}
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(paymentRepo portsrepo.PaymentRepositoryFacade, hawlSvc portssvc.HawlSvcFacade, opts ...PaymentServiceOption) portssvc.PaymentSvcFacade {
	s := &paymentService{
		paymentRepo: paymentRepo,
		hawlSvc:     hawlSvc,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ensure paymentService implements the facade
var _ portssvc.PaymentSvcFacade = (*paymentService)(nil)

// CreatePayment records a PENDING ledger entry. A payment targeting the
// user's current cycle is only accepted while that cycle is DUE; on accept
// the cycle is archived as paid and a fresh one is started with the current
// asset value carried forward. Payments against archived hawl IDs are
// recorded without touching the current cycle.
func (s *paymentService) CreatePayment(ctx context.Context, userID string, req dto.CreatePaymentRequest) (*domain.Payment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrAmountNotPositive)
	}

	current, err := s.hawlSvc.GetCurrentCycle(ctx, userID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	targetsCurrent := current != nil && current.HawlID == req.HawlID
	if targetsCurrent && current.Status != domain.HawlDue {
		return nil, fmt.Errorf("%w: %s (status %s)", apperrors.ErrDomainRule, ErrCycleNotDue, current.Status)
	}

	now := s.now()
	paymentDate := now
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}

	payment := domain.Payment{
		PaymentID:   uuid.NewString(),
		UserID:      userID,
		HawlID:      req.HawlID,
		Amount:      req.Amount,
		PaymentDate: paymentDate,
		Method:      req.Method,
		Status:      domain.PaymentPending,
		Description: req.Description,
		Reference:   req.Reference,
		Notes:       req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.paymentRepo.SavePayment(ctx, payment); err != nil {
		return nil, err
	}
	logger.Info("Payment recorded",
		slog.String("user_id", userID),
		slog.String("payment_id", payment.PaymentID),
		slog.String("hawl_id", payment.HawlID),
		slog.String("amount", payment.Amount.String()))

	// Close the cycle the payment targets, when it is the current one.
	if targetsCurrent {
		carryForward := current.CurrentAssets

		if _, err := s.hawlSvc.ArchiveAsPaid(ctx, userID, domain.PreviousPaymentData{
			PaymentID:   payment.PaymentID,
			Amount:      payment.Amount,
			PaymentDate: payment.PaymentDate,
			HawlID:      current.HawlID,
		}); err != nil {
			return nil, err
		}

		if _, err := s.hawlSvc.RestartCycle(ctx, userID, carryForward, &domain.PreviousPaymentData{
			PaymentID:   payment.PaymentID,
			Amount:      payment.Amount,
			PaymentDate: payment.PaymentDate,
			HawlID:      current.HawlID,
		}); err != nil {
			return nil, err
		}
	}

	return &payment, nil
}

// MarkCompleted transitions a PENDING payment to COMPLETED.
func (s *paymentService) MarkCompleted(ctx context.Context, userID string, paymentID string, req dto.CompletePaymentRequest) (*domain.Payment, error) {
	return s.transition(ctx, userID, paymentID, domain.PaymentCompleted, func(p *domain.Payment) {
		if req.Reference != "" {
			p.Reference = req.Reference
		}
		if req.Notes != "" {
			p.Notes = req.Notes
		}
	})
}

// MarkFailed transitions a PENDING payment to FAILED, recording the reason.
func (s *paymentService) MarkFailed(ctx context.Context, userID string, paymentID string, reason string) (*domain.Payment, error) {
	return s.transition(ctx, userID, paymentID, domain.PaymentFailed, func(p *domain.Payment) {
		p.Notes = reason
	})
}

// transition applies a one-way terminal status change.
func (s *paymentService) transition(ctx context.Context, userID, paymentID string, target domain.PaymentStatus, mutate func(*domain.Payment)) (*domain.Payment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	payment, err := s.paymentRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.UserID != userID {
		return nil, fmt.Errorf("%w: payment %s", apperrors.ErrNotFound, paymentID)
	}

	if !payment.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %s (status %s)", apperrors.ErrDomainRule, ErrTerminalPayment, payment.Status)
	}

	payment.Status = target
	mutate(payment)
	payment.LastUpdatedAt = s.now()
	payment.LastUpdatedBy = userID

	if err := s.paymentRepo.UpdatePayment(ctx, *payment); err != nil {
		return nil, err
	}

	logger.Info("Payment status updated",
		slog.String("user_id", userID),
		slog.String("payment_id", paymentID),
		slog.String("status", string(target)))
	return payment, nil
}

// DeletePayment removes a ledger entry. COMPLETED entries tied to an archived
// cycle are part of the audit trail and cannot be removed.
func (s *paymentService) DeletePayment(ctx context.Context, userID string, paymentID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	payment, err := s.paymentRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if payment.UserID != userID {
		return fmt.Errorf("%w: payment %s", apperrors.ErrNotFound, paymentID)
	}

	if payment.Status == domain.PaymentCompleted {
		current, err := s.hawlSvc.GetCurrentCycle(ctx, userID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		// A completed payment whose cycle is no longer current belongs to an
		// archived hawl and is part of the audit trail.
		if current == nil || current.HawlID != payment.HawlID {
			return fmt.Errorf("%w: %s", apperrors.ErrDomainRule, ErrCompletedProtected)
		}
	}

	if err := s.paymentRepo.DeletePayment(ctx, paymentID); err != nil {
		return err
	}
	logger.Info("Payment deleted", slog.String("user_id", userID), slog.String("payment_id", paymentID))
	return nil
}

// ListPayments returns the user's ledger, newest first.
func (s *paymentService) ListPayments(ctx context.Context, userID string) ([]domain.Payment, error) {
	payments, err := s.paymentRepo.ListPaymentsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if payments == nil {
		return []domain.Payment{}, nil
	}
	return payments, nil
}

// TotalPayments sums amounts over COMPLETED payments only.
func (s *paymentService) TotalPayments(ctx context.Context, userID string) (decimal.Decimal, error) {
	payments, err := s.paymentRepo.ListPaymentsByUser(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, p := range payments {
		if p.Status == domain.PaymentCompleted {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}

// PaymentsByYear groups ledger entries by payment date year.
func (s *paymentService) PaymentsByYear(ctx context.Context, userID string) (map[int][]domain.Payment, error) {
	payments, err := s.paymentRepo.ListPaymentsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	byYear := make(map[int][]domain.Payment)
	for _, p := range payments {
		year := p.PaymentDate.Year()
		byYear[year] = append(byYear[year], p)
	}
	return byYear, nil
}

// ExportPayments builds the downloadable ledger document.
func (s *paymentService) ExportPayments(ctx context.Context, userID string) (*domain.PaymentExport, error) {
	payments, err := s.paymentRepo.ListPaymentsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if payments == nil {
		payments = []domain.Payment{}
	}

	stats := domain.PaymentStats{Total: decimal.Zero}
	for _, p := range payments {
		switch p.Status {
		case domain.PaymentCompleted:
			stats.Completed++
			stats.Total = stats.Total.Add(p.Amount)
		case domain.PaymentPending:
			stats.Pending++
		case domain.PaymentFailed:
			stats.Failed++
		case domain.PaymentRefunded:
			stats.Refunded++
		}
	}

	return &domain.PaymentExport{
		Payments:      payments,
		ExportDate:    s.now(),
		TotalPayments: stats.Total,
		Stats:         stats,
	}, nil
}
