package providers

import (
	"context"
	"time"

	"github.com/hawltrack/zakat_engine_app/internal/core/domain"
)

// IslamicCalendarProvider abstracts the external lunar calendar service.
// The engine never performs hijri arithmetic itself; every date question is
// delegated here.
type IslamicCalendarProvider interface {
	// CalculateHawlEndDate returns the date one hawl (lunar year) after start.
	CalculateHawlEndDate(ctx context.Context, start time.Time) (time.Time, error)

	// ToHijri converts a gregorian date to its hijri equivalent.
	ToHijri(ctx context.Context, date time.Time) (*domain.HijriDate, error)

	// DaysRemainingInHawl returns whole days left in the hawl started at start.
	DaysRemainingInHawl(ctx context.Context, start time.Time) (int, error)

	// HawlProgress returns completion of the hawl as a fraction in [0, 1].
	HawlProgress(ctx context.Context, start time.Time) (float64, error)

	// IsHawlCompleted reports whether a full hawl has elapsed since start.
	IsHawlCompleted(ctx context.Context, start time.Time) (bool, error)

	// FormatDate renders a gregorian date for display.
	FormatDate(date time.Time) string

	// FormatHijriDate renders a hijri date for display.
	FormatHijriDate(date domain.HijriDate) string
}

// BudgetStore abstracts the external generic budgeting subsystem that zakat
// obligations are projected into.
type BudgetStore interface {
	// AddBudgetItem creates an item in the external store and returns it with
	// its assigned id.
	AddBudgetItem(ctx context.Context, item domain.BudgetItem) (*domain.BudgetItem, error)

	// UpdateBudgetItem applies partial updates and returns the updated item.
	UpdateBudgetItem(ctx context.Context, itemID string, updates domain.BudgetItemUpdates) (*domain.BudgetItem, error)

	// DeleteBudgetItem removes an item from the external store.
	DeleteBudgetItem(ctx context.Context, itemID string) error

	// FetchBudgetItems returns every budget item for the user, zakat or not.
	FetchBudgetItems(ctx context.Context, userID string) ([]domain.BudgetItem, error)
}

// PriceCache stores the latest manually supplied metal prices. Backed by
// redis in production and an in-memory fake in tests.
type PriceCache interface {
	// StorePrices caches the snapshot as the latest known prices.
	StorePrices(ctx context.Context, snapshot domain.PriceSnapshot) error

	// LatestPrices returns the cached snapshot, or apperrors.ErrNotFound when
	// no prices have been supplied yet.
	LatestPrices(ctx context.Context) (*domain.PriceSnapshot, error)
}
