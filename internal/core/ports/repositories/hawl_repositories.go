package repositories

import (
	"context"
	"time"

	"github.com/hawltrack/zakat_engine_app/internal/core/domain"
)

// HawlReader defines read operations for hawl cycle data
type HawlReader interface {
	// FindCurrentByUser retrieves the user's current (non-archived) cycle.
	// Returns apperrors.ErrNotFound when the user has no current cycle.
	FindCurrentByUser(ctx context.Context, userID string) (*domain.HawlCycle, error)

	// FindHawlByID retrieves a specific cycle, current or archived.
	FindHawlByID(ctx context.Context, hawlID string) (*domain.HawlCycle, error)

	// ListHistoryByUser retrieves archived cycles, most recent first.
	ListHistoryByUser(ctx context.Context, userID string, limit int) ([]domain.HawlCycle, error)
}

// HawlWriter defines write operations for hawl cycle data
type HawlWriter interface {
	// SaveHawl persists a new cycle as the user's current one.
	SaveHawl(ctx context.Context, cycle domain.HawlCycle) error

	// UpdateHawl persists status/asset mutations of an existing cycle.
	UpdateHawl(ctx context.Context, cycle domain.HawlCycle) error

	// ArchiveHawl moves the cycle to history and clears the current slot, in
	// one statement so the singleton invariant cannot be observed broken.
	ArchiveHawl(ctx context.Context, cycle domain.HawlCycle) error
}

// HawlRepositoryFacade combines all hawl-related repository interfaces
type HawlRepositoryFacade interface {
	HawlReader
	HawlWriter
}

// SnapshotRepositoryFacade defines operations for the append-only asset
// snapshot log.
type SnapshotRepositoryFacade interface {
	// AppendSnapshot appends one snapshot to the log.
	AppendSnapshot(ctx context.Context, snapshot domain.AssetSnapshot) error

	// ListSnapshotsByUser retrieves the user's snapshots, oldest first.
	ListSnapshotsByUser(ctx context.Context, userID string) ([]domain.AssetSnapshot, error)

	// ListSnapshotsByHawl retrieves the snapshots of one cycle, oldest first.
	ListSnapshotsByHawl(ctx context.Context, hawlID string) ([]domain.AssetSnapshot, error)

	// PruneSnapshotsBefore drops snapshots older than the cutoff and returns
	// how many were removed.
	PruneSnapshotsBefore(ctx context.Context, userID string, cutoff time.Time) (int64, error)
}
