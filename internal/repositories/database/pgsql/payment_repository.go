package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/hawltrack/zakat_engine_app/internal/apperrors"
	"github.com/hawltrack/zakat_engine_app/internal/core/domain"
	portsrepo "github.com/hawltrack/zakat_engine_app/internal/core/ports/repositories"
	"github.com/hawltrack/zakat_engine_app/internal/models"
	"github.com/hawltrack/zakat_engine_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const paymentColumns = `payment_id, user_id, hawl_id, amount, payment_date,
	method, status, description, reference, notes,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxPaymentRepository struct {
	BaseRepository
}

// newPgxPaymentRepository creates a new repository for the payment ledger.
func newPgxPaymentRepository(pool *pgxpool.Pool) portsrepo.PaymentRepositoryFacade {
	return &PgxPaymentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxPaymentRepository implements portsrepo.PaymentRepositoryFacade
var _ portsrepo.PaymentRepositoryFacade = (*PgxPaymentRepository)(nil)

// SavePayment persists a new ledger entry.
func (r *PgxPaymentRepository) SavePayment(ctx context.Context, payment domain.Payment) error {
	m := mapping.ToModelPayment(payment)

	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.PaymentID,
		m.UserID,
		m.HawlID,
		m.Amount,
		m.PaymentDate,
		m.Method,
		m.Status,
		m.Description,
		m.Reference,
		m.Notes,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: payment %s", apperrors.ErrDuplicate, m.PaymentID)
		}
		return fmt.Errorf("failed to save payment %s: %w", m.PaymentID, err)
	}
	return nil
}

// FindPaymentByID retrieves a payment by its unique identifier.
func (r *PgxPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE payment_id = $1;
	`
	m, err := scanPayment(r.Pool.QueryRow(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: payment %s", apperrors.ErrNotFound, paymentID)
		}
		return nil, fmt.Errorf("failed to find payment %s: %w", paymentID, err)
	}
	payment := mapping.ToDomainPayment(*m)
	return &payment, nil
}

// ListPaymentsByUser retrieves the user's ledger entries, newest first.
func (r *PgxPaymentRepository) ListPaymentsByUser(ctx context.Context, userID string) ([]domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE user_id = $1
		ORDER BY payment_date DESC, created_at DESC;
	`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments for user %s: %w", userID, err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		m, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, mapping.ToDomainPayment(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating payments: %w", err)
	}
	return payments, nil
}

// UpdatePayment persists a status transition on an existing entry.
func (r *PgxPaymentRepository) UpdatePayment(ctx context.Context, payment domain.Payment) error {
	m := mapping.ToModelPayment(payment)

	query := `
		UPDATE payments
		SET status = $2,
		    reference = $3,
		    notes = $4,
		    last_updated_at = $5,
		    last_updated_by = $6
		WHERE payment_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.PaymentID,
		m.Status,
		m.Reference,
		m.Notes,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment %s: %w", m.PaymentID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: payment %s", apperrors.ErrNotFound, m.PaymentID)
	}
	return nil
}

// DeletePayment removes a ledger entry.
func (r *PgxPaymentRepository) DeletePayment(ctx context.Context, paymentID string) error {
	query := `DELETE FROM payments WHERE payment_id = $1;`
	tag, err := r.Pool.Exec(ctx, query, paymentID)
	if err != nil {
		return fmt.Errorf("failed to delete payment %s: %w", paymentID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: payment %s", apperrors.ErrNotFound, paymentID)
	}
	return nil
}

// scanPayment reads one payment row into a model.
func scanPayment(row pgx.Row) (*models.Payment, error) {
	var m models.Payment
	err := row.Scan(
		&m.PaymentID,
		&m.UserID,
		&m.HawlID,
		&m.Amount,
		&m.PaymentDate,
		&m.Method,
		&m.Status,
		&m.Description,
		&m.Reference,
		&m.Notes,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
