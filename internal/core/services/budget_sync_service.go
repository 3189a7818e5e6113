package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hawltrack/zakat_engine_app/internal/apperrors"
	"github.com/hawltrack/zakat_engine_app/internal/core/domain"
	"github.com/hawltrack/zakat_engine_app/internal/core/ports/providers"
	portssvc "github.com/hawltrack/zakat_engine_app/internal/core/ports/services"
	"github.com/hawltrack/zakat_engine_app/internal/dto"
	"github.com/hawltrack/zakat_engine_app/internal/middleware"
	"github.com/hawltrack/zakat_engine_app/internal/utils/zakat"
	"github.com/shopspring/decimal"
)

var (
	ErrAssetsBelowNisab  = errors.New("assets below nisab")
	ErrZakatItemForYear  = errors.New("a zakat budget item already exists for this year")
	ErrUnknownBudgetItem = errors.New("budget item not found")
)

// zakatBudgetMonth is the month zakat items are scheduled into.
const zakatBudgetMonth = 12 // December

// defaultProjectionYears is how many upcoming years the projection covers
// when the caller does not say.
const defaultProjectionYears = 3

// budgetSyncService projects computed obligations into the external budget
// store and keeps a local cache of the zakat items, at most one non-deleted
// item per user and year.
type budgetSyncService struct {
	store      providers.BudgetStore
	hawlSvc    portssvc.HawlSvcFacade
	paymentSvc portssvc.PaymentSvcFacade
	growthRate decimal.Decimal
	now        func() time.Time

	mu    sync.RWMutex
	cache map[string][]domain.BudgetItem // userID -> cached zakat items
}

// BudgetSyncOption customizes a budgetSyncService.
type BudgetSyncOption func(*budgetSyncService)

// WithBudgetClock overrides the time source, for tests.
func WithBudgetClock(now func() time.Time) BudgetSyncOption {
	return func(s *budgetSyncService) {
		s.now = now
	}
}

// NewBudgetSyncService creates a new BudgetSyncService. growthRate is the
// assumed annual asset growth used by the multi-year projection (0.05).
func NewBudgetSyncService(store providers.BudgetStore, hawlSvc portssvc.HawlSvcFacade, paymentSvc portssvc.PaymentSvcFacade, growthRate decimal.Decimal, opts ...BudgetSyncOption) portssvc.BudgetSyncSvcFacade {
	s := &budgetSyncService{
		store:      store,
		hawlSvc:    hawlSvc,
		paymentSvc: paymentSvc,
		growthRate: growthRate,
		now:        time.Now,
		cache:      make(map[string][]domain.BudgetItem),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ensure budgetSyncService implements the facade
var _ portssvc.BudgetSyncSvcFacade = (*budgetSyncService)(nil)

// CreateZakatBudgetItem creates the year's zakat item in the external store.
// The duplicate check runs against a fresh fetch, not the possibly stale
// cache, so two non-deleted items for one year can never be created through
// this path.
func (s *budgetSyncService) CreateZakatBudgetItem(ctx context.Context, userID string, year int, amount decimal.Decimal, hawlData *domain.ZakatMetadata) (*domain.BudgetItem, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	items, err := s.refetch(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.Year == year && !item.Deleted {
			return nil, fmt.Errorf("%w: %s (%d)", apperrors.ErrDomainRule, ErrZakatItemForYear, year)
		}
	}

	now := s.now()
	metadata := hawlData
	if metadata == nil {
		// Placeholder metadata: an obligation expected at the end of the
		// budget year, with no hawl linkage yet.
		metadata = &domain.ZakatMetadata{
			HawlEndDate: time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
		}
	}

	item := domain.BudgetItem{
		UserID:   userID,
		Kind:     domain.BudgetKindZakat,
		Name:     fmt.Sprintf("Zakat %d", year),
		Category: "Zakat",
		Year:     year,
		PlannedAmounts: map[int]decimal.Decimal{
			zakatBudgetMonth: amount,
		},
		DueDate:       metadata.HawlEndDate,
		ZakatMetadata: metadata,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	created, err := s.store.AddBudgetItem(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("%w: adding budget item: %v", apperrors.ErrExternalService, err)
	}

	s.mu.Lock()
	s.cache[userID] = append(s.cache[userID], *created)
	s.mu.Unlock()

	logger.Info("Zakat budget item created",
		slog.String("user_id", userID),
		slog.String("item_id", created.ItemID),
		slog.Int("year", year),
		slog.String("amount", amount.String()))
	return created, nil
}

// CreateZakatBudgetForCurrentHawl computes the obligation from the current
// cycle and creates the matching budget item.
func (s *budgetSyncService) CreateZakatBudgetForCurrentHawl(ctx context.Context, userID string) (*domain.BudgetItem, error) {
	cycle, err := s.hawlSvc.GetCurrentCycle(ctx, userID)
	if err != nil {
		return nil, err
	}

	if cycle.CurrentAssets.LessThan(cycle.NisabThresholdAtCreation) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrDomainRule, ErrAssetsBelowNisab)
	}

	amount := zakat.ObligationAmount(cycle.CurrentAssets, zakatRate)
	metadata := &domain.ZakatMetadata{
		HawlID:         cycle.HawlID,
		HawlStartDate:  cycle.StartDate,
		HawlEndDate:    cycle.EndDate,
		NisabThreshold: cycle.NisabThresholdAtCreation,
		AssetValue:     cycle.CurrentAssets,
	}

	return s.CreateZakatBudgetItem(ctx, userID, cycle.EndDate.Year(), amount, metadata)
}

// CreateZakatBudgetForUpcomingYears projects obligations for the next n
// years assuming annual asset growth. Best effort per year: a failure on one
// year is recorded in its result and the loop moves on; years already
// created are not rolled back.
func (s *budgetSyncService) CreateZakatBudgetForUpcomingYears(ctx context.Context, userID string, years int) ([]dto.YearProjectionResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if years <= 0 {
		years = defaultProjectionYears
	}

	cycle, err := s.hawlSvc.GetCurrentCycle(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cycle.CurrentAssets.LessThan(cycle.NisabThresholdAtCreation) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrDomainRule, ErrAssetsBelowNisab)
	}

	baseYear := s.now().Year()
	results := make([]dto.YearProjectionResult, 0, years)

	for i := 1; i <= years; i++ {
		year := baseYear + i
		amount := zakat.ProjectedObligation(cycle.CurrentAssets, s.growthRate, zakatRate, i)

		item, err := s.CreateZakatBudgetItem(ctx, userID, year, amount, &domain.ZakatMetadata{
			HawlID:         cycle.HawlID,
			HawlStartDate:  cycle.StartDate,
			HawlEndDate:    time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
			NisabThreshold: cycle.NisabThresholdAtCreation,
			AssetValue:     zakat.ProjectedAssets(cycle.CurrentAssets, s.growthRate, i),
		})
		if err != nil {
			logger.Warn("Projection year skipped",
				slog.String("user_id", userID),
				slog.Int("year", year),
				slog.String("error", err.Error()))
			results = append(results, dto.YearProjectionResult{Year: year, Error: err.Error()})
			continue
		}

		resp := dto.ToBudgetItemResponse(item)
		results = append(results, dto.YearProjectionResult{Year: year, Item: &resp})
	}

	return results, nil
}

// MarkZakatAsPaid writes actuals onto the external budget item and records a
// ledger payment. The two writes are separate and non-transactional; the
// budget store write lands first, so a crash in between leaves the item
// updated with no payment recorded.
func (s *budgetSyncService) MarkZakatAsPaid(ctx context.Context, userID string, itemID string, req dto.CreatePaymentRequest) (*domain.BudgetItem, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	item, err := s.findItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	paymentDate := s.now()
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}

	actuals := map[int]decimal.Decimal{
		int(paymentDate.Month()): req.Amount,
	}
	updated, err := s.store.UpdateBudgetItem(ctx, item.ItemID, domain.BudgetItemUpdates{
		ActualAmounts: actuals,
		DueDate:       &paymentDate,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: updating budget item %s: %v", apperrors.ErrExternalService, itemID, err)
	}

	if req.HawlID == "" && item.ZakatMetadata != nil {
		req.HawlID = item.ZakatMetadata.HawlID
	}
	if _, err := s.paymentSvc.CreatePayment(ctx, userID, req); err != nil {
		return nil, err
	}

	s.replaceCachedItem(userID, *updated)

	logger.Info("Zakat budget item marked paid",
		slog.String("user_id", userID),
		slog.String("item_id", itemID),
		slog.String("amount", req.Amount.String()))
	return updated, nil
}

// SyncWithBudgetStore refetches every budget item, filters to zakat ones and
// wholesale-replaces the local cache; this is a replacement, not a merge.
func (s *budgetSyncService) SyncWithBudgetStore(ctx context.Context, userID string) ([]domain.BudgetItem, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	items, err := s.refetch(ctx, userID)
	if err != nil {
		return nil, err
	}

	logger.Info("Budget store synced", slog.String("user_id", userID), slog.Int("zakat_items", len(items)))
	return items, nil
}

// ListZakatItems returns the locally cached zakat items, syncing first when
// the cache is cold.
func (s *budgetSyncService) ListZakatItems(ctx context.Context, userID string) ([]domain.BudgetItem, error) {
	s.mu.RLock()
	cached, ok := s.cache[userID]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}
	return s.refetch(ctx, userID)
}

// refetch pulls all budget items from the external store, keeps the zakat
// ones and replaces the user's cache with them.
func (s *budgetSyncService) refetch(ctx context.Context, userID string) ([]domain.BudgetItem, error) {
	all, err := s.store.FetchBudgetItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching budget items: %v", apperrors.ErrExternalService, err)
	}

	zakatItems := make([]domain.BudgetItem, 0)
	for _, item := range all {
		if item.IsZakatItem() {
			zakatItems = append(zakatItems, item)
		}
	}

	s.mu.Lock()
	s.cache[userID] = zakatItems
	s.mu.Unlock()
	return zakatItems, nil
}

// findItem locates a cached zakat item, refetching once when missing.
func (s *budgetSyncService) findItem(ctx context.Context, userID, itemID string) (*domain.BudgetItem, error) {
	items, err := s.ListZakatItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ItemID == itemID {
			return &items[i], nil
		}
	}

	items, err = s.refetch(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ItemID == itemID {
			return &items[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s %s", apperrors.ErrNotFound, ErrUnknownBudgetItem, itemID)
}

// replaceCachedItem swaps one cached item in place after an update.
func (s *budgetSyncService) replaceCachedItem(userID string, updated domain.BudgetItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.cache[userID]
	for i := range items {
		if items[i].ItemID == updated.ItemID {
			items[i] = updated
			return
		}
	}
	s.cache[userID] = append(items, updated)
}
