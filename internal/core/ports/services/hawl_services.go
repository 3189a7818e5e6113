package services

import (
	"context"

	"github.com/hawltrack/zakat_engine_app/internal/core/domain"
	"github.com/hawltrack/zakat_engine_app/internal/dto"
	"github.com/shopspring/decimal"
)

// HawlReaderSvc defines read operations on hawl cycles.
type HawlReaderSvc interface {
	// GetCurrentCycle returns the user's current cycle, apperrors.ErrNotFound
	// when none exists.
	GetCurrentCycle(ctx context.Context, userID string) (*domain.HawlCycle, error)

	// ListHistory returns archived (PAID) cycles, most recent first.
	ListHistory(ctx context.Context, userID string, limit int) ([]domain.HawlCycle, error)

	// ListSnapshots returns the user's asset snapshot log, oldest first.
	ListSnapshots(ctx context.Context, userID string) ([]domain.AssetSnapshot, error)

	// Progress reports calendar-derived progress of the current cycle.
	Progress(ctx context.Context, userID string) (*dto.HawlProgressResponse, error)
}

// HawlLifecycleSvc defines the mutating state machine operations.
type HawlLifecycleSvc interface {
	// CreateCycle starts a new cycle as the user's current one. The caller is
	// responsible for initialAssets being at or above the threshold; the
	// engine only logs when they are not.
	CreateCycle(ctx context.Context, userID string, req dto.CreateHawlRequest) (*domain.HawlCycle, error)

	// RecordAssetUpdate sets currentAssets, appends a snapshot, prunes the
	// snapshot log and recomputes status.
	RecordAssetUpdate(ctx context.Context, userID string, newValue decimal.Decimal, reason string) (*domain.HawlCycle, error)

	// RecomputeStatus re-derives the cycle status from snapshots and the
	// calendar without touching assets.
	RecomputeStatus(ctx context.Context, userID string) (*domain.HawlCycle, error)

	// ArchiveAsPaid moves a DUE cycle into history with status PAID and
	// clears the current slot. Non-DUE cycles produce apperrors.ErrDomainRule.
	ArchiveAsPaid(ctx context.Context, userID string, paymentData domain.PreviousPaymentData) (*domain.HawlCycle, error)

	// RestartCycle starts a fresh cycle, carrying forward the closing
	// payment data for the audit trail. A cycle stuck in INTERRUPTED never
	// restarts on its own; this call is always explicit.
	RestartCycle(ctx context.Context, userID string, newAssetValue decimal.Decimal, previous *domain.PreviousPaymentData) (*domain.HawlCycle, error)
}

// HawlSvcFacade combines all hawl lifecycle interfaces
type HawlSvcFacade interface {
	HawlReaderSvc
	HawlLifecycleSvc
}
