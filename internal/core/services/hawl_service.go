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
	"github.com/hawltrack/zakat_engine_app/internal/core/ports/providers"
	portsrepo "github.com/hawltrack/zakat_engine_app/internal/core/ports/repositories"
	portssvc "github.com/hawltrack/zakat_engine_app/internal/core/ports/services"
	"github.com/hawltrack/zakat_engine_app/internal/dto"
	"github.com/hawltrack/zakat_engine_app/internal/middleware"
	"github.com/shopspring/decimal"
)

var (
	ErrCycleExists      = errors.New("a current hawl cycle already exists")
	ErrNoCurrentCycle   = errors.New("no current hawl cycle")
	ErrCycleNotDue      = errors.New("hawl cycle is not due")
	ErrCycleStillActive = errors.New("current hawl cycle is still active")
)

// hawlService drives the hawl qualification state machine over the
// append-only asset snapshot log.
type hawlService struct {
	hawlRepo     portsrepo.HawlRepositoryFacade
	snapshotRepo portsrepo.SnapshotRepositoryFacade
	calendar     providers.IslamicCalendarProvider
	now          func() time.Time
}

// HawlServiceOption customizes a hawlService.
type HawlServiceOption func(*hawlService)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) HawlServiceOption {
	return func(s *hawlService) {
		s.now = now
	}
}

// NewHawlService creates a new HawlService.
func NewHawlService(hawlRepo portsrepo.HawlRepositoryFacade, snapshotRepo portsrepo.SnapshotRepositoryFacade, calendar providers.IslamicCalendarProvider, opts ...HawlServiceOption) portssvc.HawlSvcFacade {
	s := &hawlService{
		hawlRepo:     hawlRepo,
		snapshotRepo: snapshotRepo,
		calendar:     calendar,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ensure hawlService implements the facade
var _ portssvc.HawlSvcFacade = (*hawlService)(nil)

// isInterrupted reports whether the cycle's continuity is broken: current
// assets below the frozen threshold, or any snapshot since the start dipping
// below it. The rule is uniformly strict for every school; the Maliki
// partial-credit policy is declared but intentionally not applied here.
func isInterrupted(cycle domain.HawlCycle, snapshots []domain.AssetSnapshot) bool {
	if cycle.CurrentAssets.LessThan(cycle.NisabThresholdAtCreation) {
		return true
	}
	for _, snap := range snapshots {
		if snap.Date.Before(cycle.StartDate) {
			continue
		}
		if snap.TotalAssets.LessThan(cycle.NisabThresholdAtCreation) {
			return true
		}
	}
	return false
}

// deriveStatus is the pure status derivation invoked after every mutating
// call. Interruption dominates completion: a cycle that dipped below nisab is
// INTERRUPTED even if the lunar year has since elapsed.
func deriveStatus(cycle domain.HawlCycle, snapshots []domain.AssetSnapshot, hawlCompleted bool) domain.HawlStatus {
	if isInterrupted(cycle, snapshots) {
		return domain.HawlInterrupted
	}
	if hawlCompleted {
		return domain.HawlDue
	}
	return domain.HawlActive
}

// CreateCycle starts a new cycle as the user's current one.
//
// The caller is responsible for initialAssets being at or above the
// threshold; the engine does not enforce that precondition at creation and
// only logs when it does not hold.
func (s *hawlService) CreateCycle(ctx context.Context, userID string, req dto.CreateHawlRequest) (*domain.HawlCycle, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if existing, err := s.hawlRepo.FindCurrentByUser(ctx, userID); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: %s for user %s", apperrors.ErrDomainRule, ErrCycleExists, userID)
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	if req.InitialAssets.LessThan(req.NisabThreshold) {
		logger.Warn("Creating hawl cycle with assets below nisab",
			slog.String("user_id", userID),
			slog.String("initial_assets", req.InitialAssets.String()),
			slog.String("nisab_threshold", req.NisabThreshold.String()))
	}

	cycle, err := s.buildCycle(ctx, userID, req.InitialAssets, req.NisabThreshold, nil)
	if err != nil {
		return nil, err
	}

	if err := s.hawlRepo.SaveHawl(ctx, *cycle); err != nil {
		return nil, err
	}

	if err := s.appendSnapshot(ctx, *cycle, cycle.InitialAssets, domain.HawlStartReason); err != nil {
		return nil, err
	}

	logger.Info("Hawl cycle created",
		slog.String("user_id", userID),
		slog.String("hawl_id", cycle.HawlID),
		slog.String("end_date", cycle.EndDate.Format(time.RFC3339)))
	return cycle, nil
}

// buildCycle assembles a fresh ACTIVE cycle, asking the calendar provider for
// the end date and the hijri labels. Hijri labels are best effort; an end
// date failure aborts since the cycle cannot track progress without it.
func (s *hawlService) buildCycle(ctx context.Context, userID string, assets, threshold decimal.Decimal, previous *domain.PreviousPaymentData) (*domain.HawlCycle, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := s.now()

	endDate, err := s.calendar.CalculateHawlEndDate(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("%w: calculating hawl end date: %v", apperrors.ErrExternalService, err)
	}

	cycle := &domain.HawlCycle{
		HawlID:                   uuid.NewString(),
		UserID:                   userID,
		StartDate:                now,
		EndDate:                  endDate,
		Status:                   domain.HawlActive,
		InitialAssets:            assets,
		CurrentAssets:            assets,
		NisabThresholdAtCreation: threshold,
		HasBeenInterrupted:       false,
		ContinuousAboveNisab:     true,
		PreviousPayment:          previous,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if hijriStart, err := s.calendar.ToHijri(ctx, now); err != nil {
		logger.Warn("Hijri conversion failed for hawl start", slog.String("error", err.Error()))
	} else {
		cycle.HijriStart = hijriStart
	}
	if hijriEnd, err := s.calendar.ToHijri(ctx, endDate); err != nil {
		logger.Warn("Hijri conversion failed for hawl end", slog.String("error", err.Error()))
	} else {
		cycle.HijriEnd = hijriEnd
	}

	return cycle, nil
}

// appendSnapshot writes one snapshot and prunes the log to the rolling
// twelve month window.
func (s *hawlService) appendSnapshot(ctx context.Context, cycle domain.HawlCycle, totalAssets decimal.Decimal, reason string) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := s.now()

	snapshot := domain.AssetSnapshot{
		SnapshotID:              uuid.NewString(),
		HawlID:                  cycle.HawlID,
		UserID:                  cycle.UserID,
		Date:                    now,
		TotalAssets:             totalAssets,
		NisabThresholdAtCapture: cycle.NisabThresholdAtCreation,
		IsAboveNisab:            totalAssets.GreaterThanOrEqual(cycle.NisabThresholdAtCreation),
		Reason:                  reason,
	}
	if err := s.snapshotRepo.AppendSnapshot(ctx, snapshot); err != nil {
		return err
	}

	cutoff := now.AddDate(0, -domain.SnapshotRetentionMonths, 0)
	pruned, err := s.snapshotRepo.PruneSnapshotsBefore(ctx, cycle.UserID, cutoff)
	if err != nil {
		// Pruning is housekeeping; a failure must not lose the appended
		// snapshot or the asset update.
		logger.Warn("Snapshot pruning failed", slog.String("user_id", cycle.UserID), slog.String("error", err.Error()))
		return nil
	}
	if pruned > 0 {
		logger.Info("Pruned old asset snapshots", slog.String("user_id", cycle.UserID), slog.Int64("count", pruned))
	}
	return nil
}

// GetCurrentCycle returns the user's current cycle.
func (s *hawlService) GetCurrentCycle(ctx context.Context, userID string) (*domain.HawlCycle, error) {
	cycle, err := s.hawlRepo.FindCurrentByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return cycle, nil
}

// RecordAssetUpdate sets currentAssets, appends a snapshot and recomputes the
// cycle status.
func (s *hawlService) RecordAssetUpdate(ctx context.Context, userID string, newValue decimal.Decimal, reason string) (*domain.HawlCycle, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	cycle, err := s.hawlRepo.FindCurrentByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	cycle.CurrentAssets = newValue
	cycle.LastUpdatedAt = now
	cycle.LastUpdatedBy = userID

	if err := s.appendSnapshot(ctx, *cycle, newValue, reason); err != nil {
		return nil, err
	}

	if err := s.recompute(ctx, cycle); err != nil {
		return nil, err
	}

	if err := s.hawlRepo.UpdateHawl(ctx, *cycle); err != nil {
		return nil, err
	}

	logger.Info("Asset update recorded",
		slog.String("user_id", userID),
		slog.String("hawl_id", cycle.HawlID),
		slog.String("total_assets", newValue.String()),
		slog.String("status", string(cycle.Status)))
	return cycle, nil
}

// RecomputeStatus re-derives the cycle status without touching assets.
func (s *hawlService) RecomputeStatus(ctx context.Context, userID string) (*domain.HawlCycle, error) {
	cycle, err := s.hawlRepo.FindCurrentByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	previous := cycle.Status
	if err := s.recompute(ctx, cycle); err != nil {
		return nil, err
	}

	if cycle.Status != previous {
		cycle.LastUpdatedAt = s.now()
		cycle.LastUpdatedBy = userID
		if err := s.hawlRepo.UpdateHawl(ctx, *cycle); err != nil {
			return nil, err
		}
	}
	return cycle, nil
}

// recompute applies deriveStatus over the cycle's snapshot log and the
// calendar. Interruption is sticky: hasBeenInterrupted stays set even if
// assets later recover, and the status never leaves INTERRUPTED without an
// explicit restart.
func (s *hawlService) recompute(ctx context.Context, cycle *domain.HawlCycle) error {
	snapshots, err := s.snapshotRepo.ListSnapshotsByHawl(ctx, cycle.HawlID)
	if err != nil {
		return err
	}

	completed, err := s.calendar.IsHawlCompleted(ctx, cycle.StartDate)
	if err != nil {
		return fmt.Errorf("%w: checking hawl completion: %v", apperrors.ErrExternalService, err)
	}

	status := deriveStatus(*cycle, snapshots, completed)
	cycle.Status = status
	if status == domain.HawlInterrupted {
		cycle.HasBeenInterrupted = true
		cycle.ContinuousAboveNisab = false
	}
	return nil
}

// ArchiveAsPaid moves a DUE cycle into history with status PAID and clears
// the current slot.
func (s *hawlService) ArchiveAsPaid(ctx context.Context, userID string, paymentData domain.PreviousPaymentData) (*domain.HawlCycle, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	cycle, err := s.hawlRepo.FindCurrentByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if cycle.Status != domain.HawlDue {
		return nil, fmt.Errorf("%w: %s (status %s)", apperrors.ErrDomainRule, ErrCycleNotDue, cycle.Status)
	}

	now := s.now()
	cycle.Status = domain.HawlPaid
	cycle.PreviousPayment = &paymentData
	cycle.LastUpdatedAt = now
	cycle.LastUpdatedBy = userID

	if err := s.hawlRepo.ArchiveHawl(ctx, *cycle); err != nil {
		return nil, err
	}

	logger.Info("Hawl cycle archived as paid",
		slog.String("user_id", userID),
		slog.String("hawl_id", cycle.HawlID),
		slog.String("payment_id", paymentData.PaymentID))
	return cycle, nil
}

// RestartCycle starts a fresh cycle after payment or after an interruption
// has been abandoned. An INTERRUPTED current cycle is moved to history as
// part of the restart; ACTIVE and DUE cycles must be closed first.
func (s *hawlService) RestartCycle(ctx context.Context, userID string, newAssetValue decimal.Decimal, previous *domain.PreviousPaymentData) (*domain.HawlCycle, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	threshold := decimal.Zero

	current, err := s.hawlRepo.FindCurrentByUser(ctx, userID)
	switch {
	case err == nil:
		if current.Status != domain.HawlInterrupted {
			return nil, fmt.Errorf("%w: %s (status %s)", apperrors.ErrDomainRule, ErrCycleStillActive, current.Status)
		}
		threshold = current.NisabThresholdAtCreation
		current.LastUpdatedAt = s.now()
		current.LastUpdatedBy = userID
		if err := s.hawlRepo.ArchiveHawl(ctx, *current); err != nil {
			return nil, err
		}
		logger.Info("Interrupted hawl cycle abandoned", slog.String("user_id", userID), slog.String("hawl_id", current.HawlID))
	case errors.Is(err, apperrors.ErrNotFound):
		// Restart after ArchiveAsPaid: carry the threshold forward from the
		// most recently archived cycle.
		history, histErr := s.hawlRepo.ListHistoryByUser(ctx, userID, 1)
		if histErr != nil {
			return nil, histErr
		}
		if len(history) == 0 {
			return nil, fmt.Errorf("%w: %s and no archived cycle to restart from", apperrors.ErrDomainRule, ErrNoCurrentCycle)
		}
		threshold = history[0].NisabThresholdAtCreation
	default:
		return nil, err
	}

	cycle, err := s.buildCycle(ctx, userID, newAssetValue, threshold, previous)
	if err != nil {
		return nil, err
	}

	if err := s.hawlRepo.SaveHawl(ctx, *cycle); err != nil {
		return nil, err
	}

	if err := s.appendSnapshot(ctx, *cycle, newAssetValue, domain.HawlStartReason); err != nil {
		return nil, err
	}

	logger.Info("Hawl cycle restarted",
		slog.String("user_id", userID),
		slog.String("hawl_id", cycle.HawlID),
		slog.String("initial_assets", newAssetValue.String()))
	return cycle, nil
}

// ListHistory returns archived cycles, most recent first.
func (s *hawlService) ListHistory(ctx context.Context, userID string, limit int) ([]domain.HawlCycle, error) {
	history, err := s.hawlRepo.ListHistoryByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if history == nil {
		return []domain.HawlCycle{}, nil
	}
	return history, nil
}

// ListSnapshots returns the user's snapshot log, oldest first.
func (s *hawlService) ListSnapshots(ctx context.Context, userID string) ([]domain.AssetSnapshot, error) {
	snapshots, err := s.snapshotRepo.ListSnapshotsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if snapshots == nil {
		return []domain.AssetSnapshot{}, nil
	}
	return snapshots, nil
}

// Progress reports calendar-derived progress of the current cycle.
func (s *hawlService) Progress(ctx context.Context, userID string) (*dto.HawlProgressResponse, error) {
	cycle, err := s.hawlRepo.FindCurrentByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	daysRemaining, err := s.calendar.DaysRemainingInHawl(ctx, cycle.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: days remaining: %v", apperrors.ErrExternalService, err)
	}
	progress, err := s.calendar.HawlProgress(ctx, cycle.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: hawl progress: %v", apperrors.ErrExternalService, err)
	}

	return &dto.HawlProgressResponse{
		HawlID:        cycle.HawlID,
		Status:        string(cycle.Status),
		DaysRemaining: daysRemaining,
		Progress:      progress,
		StartDate:     s.calendar.FormatDate(cycle.StartDate),
		EndDate:       s.calendar.FormatDate(cycle.EndDate),
		HijriStart:    cycle.HijriStart,
		HijriEnd:      cycle.HijriEnd,
	}, nil
}
