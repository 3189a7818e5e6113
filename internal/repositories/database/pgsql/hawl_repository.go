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

const hawlColumns = `hawl_id, user_id, start_date, end_date, status, is_current,
	initial_assets, current_assets, nisab_threshold_at_creation,
	has_been_interrupted, continuous_above_nisab, hijri_start, hijri_end,
	previous_payment, created_at, created_by, last_updated_at, last_updated_by`

type PgxHawlRepository struct {
	BaseRepository
}

// newPgxHawlRepository creates a new repository for hawl cycle data.
func newPgxHawlRepository(pool *pgxpool.Pool) portsrepo.HawlRepositoryFacade {
	return &PgxHawlRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxHawlRepository implements portsrepo.HawlRepositoryFacade
var _ portsrepo.HawlRepositoryFacade = (*PgxHawlRepository)(nil)

// SaveHawl inserts a new cycle as the user's current one. The partial unique
// index on (user_id) WHERE is_current turns a double-create into ErrDuplicate.
func (r *PgxHawlRepository) SaveHawl(ctx context.Context, cycle domain.HawlCycle) error {
	m, err := mapping.ToModelHawlCycle(cycle)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
	}

	query := `
		INSERT INTO hawl_cycles (` + hawlColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err = r.Pool.Exec(ctx, query,
		m.HawlID,
		m.UserID,
		m.StartDate,
		m.EndDate,
		m.Status,
		m.IsCurrent,
		m.InitialAssets,
		m.CurrentAssets,
		m.NisabThresholdAtCreation,
		m.HasBeenInterrupted,
		m.ContinuousAboveNisab,
		m.HijriStart,
		m.HijriEnd,
		m.PreviousPayment,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user %s already has a current hawl cycle", apperrors.ErrDuplicate, m.UserID)
		}
		return fmt.Errorf("failed to save hawl cycle %s: %w", m.HawlID, err)
	}
	return nil
}

// FindCurrentByUser retrieves the user's current cycle.
func (r *PgxHawlRepository) FindCurrentByUser(ctx context.Context, userID string) (*domain.HawlCycle, error) {
	query := `
		SELECT ` + hawlColumns + `
		FROM hawl_cycles
		WHERE user_id = $1 AND is_current;
	`
	return r.queryOne(ctx, query, userID)
}

// FindHawlByID retrieves a specific cycle, current or archived.
func (r *PgxHawlRepository) FindHawlByID(ctx context.Context, hawlID string) (*domain.HawlCycle, error) {
	query := `
		SELECT ` + hawlColumns + `
		FROM hawl_cycles
		WHERE hawl_id = $1;
	`
	return r.queryOne(ctx, query, hawlID)
}

func (r *PgxHawlRepository) queryOne(ctx context.Context, query string, arg any) (*domain.HawlCycle, error) {
	m, err := scanHawl(r.Pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find hawl cycle: %w", err)
	}

	cycle, err := mapping.ToDomainHawlCycle(*m)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
	}
	return &cycle, nil
}

// ListHistoryByUser retrieves archived cycles, most recent first.
func (r *PgxHawlRepository) ListHistoryByUser(ctx context.Context, userID string, limit int) ([]domain.HawlCycle, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT ` + hawlColumns + `
		FROM hawl_cycles
		WHERE user_id = $1 AND NOT is_current
		ORDER BY end_date DESC, created_at DESC
		LIMIT $2;
	`
	rows, err := r.Pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list hawl history for user %s: %w", userID, err)
	}
	defer rows.Close()

	var history []domain.HawlCycle
	for rows.Next() {
		m, err := scanHawl(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hawl cycle: %w", err)
		}
		cycle, err := mapping.ToDomainHawlCycle(*m)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
		}
		history = append(history, cycle)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating hawl history: %w", err)
	}
	return history, nil
}

// UpdateHawl persists status/asset mutations of an existing cycle.
func (r *PgxHawlRepository) UpdateHawl(ctx context.Context, cycle domain.HawlCycle) error {
	m, err := mapping.ToModelHawlCycle(cycle)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
	}

	query := `
		UPDATE hawl_cycles
		SET status = $2,
		    current_assets = $3,
		    has_been_interrupted = $4,
		    continuous_above_nisab = $5,
		    previous_payment = $6,
		    last_updated_at = $7,
		    last_updated_by = $8
		WHERE hawl_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.HawlID,
		m.Status,
		m.CurrentAssets,
		m.HasBeenInterrupted,
		m.ContinuousAboveNisab,
		m.PreviousPayment,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update hawl cycle %s: %w", m.HawlID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: hawl cycle %s", apperrors.ErrNotFound, m.HawlID)
	}
	return nil
}

// ArchiveHawl moves the cycle to history and clears the current slot in one
// statement, so the per-user singleton invariant is never observably broken.
func (r *PgxHawlRepository) ArchiveHawl(ctx context.Context, cycle domain.HawlCycle) error {
	m, err := mapping.ToModelHawlCycle(cycle)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
	}

	query := `
		UPDATE hawl_cycles
		SET status = $2,
		    is_current = FALSE,
		    current_assets = $3,
		    previous_payment = $4,
		    last_updated_at = $5,
		    last_updated_by = $6
		WHERE hawl_id = $1 AND is_current;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.HawlID,
		m.Status,
		m.CurrentAssets,
		m.PreviousPayment,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to archive hawl cycle %s: %w", m.HawlID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: current hawl cycle %s", apperrors.ErrNotFound, m.HawlID)
	}
	return nil
}

// scanHawl reads one hawl row into a model.
func scanHawl(row pgx.Row) (*models.HawlCycle, error) {
	var m models.HawlCycle
	err := row.Scan(
		&m.HawlID,
		&m.UserID,
		&m.StartDate,
		&m.EndDate,
		&m.Status,
		&m.IsCurrent,
		&m.InitialAssets,
		&m.CurrentAssets,
		&m.NisabThresholdAtCreation,
		&m.HasBeenInterrupted,
		&m.ContinuousAboveNisab,
		&m.HijriStart,
		&m.HijriEnd,
		&m.PreviousPayment,
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
