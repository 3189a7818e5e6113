package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/hawltrack/zakat_engine_app/internal/apperrors"
	"github.com/hawltrack/zakat_engine_app/internal/core/domain"
	portsrepo "github.com/hawltrack/zakat_engine_app/internal/core/ports/repositories"
	"github.com/hawltrack/zakat_engine_app/internal/models"
	"github.com/hawltrack/zakat_engine_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const snapshotColumns = `snapshot_id, hawl_id, user_id, snapshot_date,
	total_assets, nisab_threshold_at_capture, is_above_nisab, reason`

type PgxSnapshotRepository struct {
	BaseRepository
}

// newPgxSnapshotRepository creates a new repository for the asset snapshot log.
func newPgxSnapshotRepository(pool *pgxpool.Pool) portsrepo.SnapshotRepositoryFacade {
	return &PgxSnapshotRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxSnapshotRepository implements portsrepo.SnapshotRepositoryFacade
var _ portsrepo.SnapshotRepositoryFacade = (*PgxSnapshotRepository)(nil)

// AppendSnapshot appends one snapshot to the log. The log is append-only;
// there is deliberately no update method.
func (r *PgxSnapshotRepository) AppendSnapshot(ctx context.Context, snapshot domain.AssetSnapshot) error {
	m := mapping.ToModelAssetSnapshot(snapshot)

	query := `
		INSERT INTO asset_snapshots (` + snapshotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.SnapshotID,
		m.HawlID,
		m.UserID,
		m.Date,
		m.TotalAssets,
		m.NisabThresholdAtCapture,
		m.IsAboveNisab,
		m.Reason,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: snapshot %s", apperrors.ErrDuplicate, m.SnapshotID)
		}
		return fmt.Errorf("failed to append asset snapshot %s: %w", m.SnapshotID, err)
	}
	return nil
}

// ListSnapshotsByUser retrieves the user's snapshots, oldest first.
func (r *PgxSnapshotRepository) ListSnapshotsByUser(ctx context.Context, userID string) ([]domain.AssetSnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM asset_snapshots
		WHERE user_id = $1
		ORDER BY snapshot_date ASC;
	`
	return r.list(ctx, query, userID)
}

// ListSnapshotsByHawl retrieves the snapshots of one cycle, oldest first.
func (r *PgxSnapshotRepository) ListSnapshotsByHawl(ctx context.Context, hawlID string) ([]domain.AssetSnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM asset_snapshots
		WHERE hawl_id = $1
		ORDER BY snapshot_date ASC;
	`
	return r.list(ctx, query, hawlID)
}

func (r *PgxSnapshotRepository) list(ctx context.Context, query string, arg any) ([]domain.AssetSnapshot, error) {
	rows, err := r.Pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list asset snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []domain.AssetSnapshot
	for rows.Next() {
		m, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset snapshot: %w", err)
		}
		snapshots = append(snapshots, mapping.ToDomainAssetSnapshot(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating asset snapshots: %w", err)
	}
	return snapshots, nil
}

// PruneSnapshotsBefore drops snapshots older than the cutoff, enforcing the
// rolling retention window.
func (r *PgxSnapshotRepository) PruneSnapshotsBefore(ctx context.Context, userID string, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM asset_snapshots
		WHERE user_id = $1 AND snapshot_date < $2;
	`
	tag, err := r.Pool.Exec(ctx, query, userID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune asset snapshots for user %s: %w", userID, err)
	}
	return tag.RowsAffected(), nil
}

// scanSnapshot reads one snapshot row into a model.
func scanSnapshot(row pgx.Row) (*models.AssetSnapshot, error) {
	var m models.AssetSnapshot
	err := row.Scan(
		&m.SnapshotID,
		&m.HawlID,
		&m.UserID,
		&m.Date,
		&m.TotalAssets,
		&m.NisabThresholdAtCapture,
		&m.IsAboveNisab,
		&m.Reason,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
