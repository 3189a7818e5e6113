package services

import (
	"context"

	"github.com/hawltrack/zakat_engine_app/internal/core/domain"
	"github.com/hawltrack/zakat_engine_app/internal/dto"
	"github.com/shopspring/decimal"
)

// BudgetSyncSvcFacade projects computed zakat obligations into the external
// budget store, keeping at most one non-deleted zakat item per year.
type BudgetSyncSvcFacade interface {
	// CreateZakatBudgetItem creates the year's zakat item. A second
	// non-deleted item for the same year produces apperrors.ErrDomainRule.
	CreateZakatBudgetItem(ctx context.Context, userID string, year int, amount decimal.Decimal, hawlData *domain.ZakatMetadata) (*domain.BudgetItem, error)

	// CreateZakatBudgetForCurrentHawl computes the obligation from the
	// current cycle (assets x 0.025). Assets below the cycle's nisab
	// threshold produce apperrors.ErrDomainRule.
	CreateZakatBudgetForCurrentHawl(ctx context.Context, userID string) (*domain.BudgetItem, error)

	// CreateZakatBudgetForUpcomingYears projects obligations for the next n
	// years assuming 5% asset growth. Best effort per year: failures are
	// reported in the result list, never aborting the remaining years.
	CreateZakatBudgetForUpcomingYears(ctx context.Context, userID string, years int) ([]dto.YearProjectionResult, error)

	// MarkZakatAsPaid writes actuals onto the budget item and records a
	// ledger payment. The two writes are not transactional; the budget store
	// write lands first.
	MarkZakatAsPaid(ctx context.Context, userID string, itemID string, req dto.CreatePaymentRequest) (*domain.BudgetItem, error)

	// SyncWithBudgetStore refetches every budget item, filters to zakat ones
	// and wholesale-replaces the local cache.
	SyncWithBudgetStore(ctx context.Context, userID string) ([]domain.BudgetItem, error)

	// ListZakatItems returns the locally cached zakat items.
	ListZakatItems(ctx context.Context, userID string) ([]domain.BudgetItem, error)
}
