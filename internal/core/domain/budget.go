package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BudgetItemKind discriminates generic budget items from zakat obligation
// items. The tag is explicit rather than inferred from metadata presence.
type BudgetItemKind string

const (
	BudgetKindGeneric BudgetItemKind = "GENERIC"
	BudgetKindZakat   BudgetItemKind = "ZAKAT"
)

// ZakatMetadata links a budget item back to the hawl cycle that produced it.
type ZakatMetadata struct {
	HawlID         string          `json:"hawlID"`
	HawlStartDate  time.Time       `json:"hawlStartDate"`
	HawlEndDate    time.Time       `json:"hawlEndDate"`
	NisabThreshold decimal.Decimal `json:"nisabThreshold"`
	AssetValue     decimal.Decimal `json:"assetValue"`
}

// BudgetItem mirrors a record in the external budget store. The engine only
// owns items of kind ZAKAT; generic items pass through untouched.
type BudgetItem struct {
	ItemID   string         `json:"itemID"`
	UserID   string         `json:"userID"`
	Kind     BudgetItemKind `json:"kind"`
	Name     string         `json:"name"`
	Category string         `json:"category"`
	Year     int            `json:"year"`
	// PlannedAmounts is keyed by month (1-12); zakat items carry a single
	// December-scheduled amount.
	PlannedAmounts map[int]decimal.Decimal `json:"plannedAmounts"`
	ActualAmounts  map[int]decimal.Decimal `json:"actualAmounts,omitempty"`
	DueDate        time.Time               `json:"dueDate"`
	Deleted        bool                    `json:"deleted"`
	ZakatMetadata  *ZakatMetadata          `json:"zakatMetadata,omitempty"`
	AuditFields
}

// BudgetItemUpdates is the partial-update payload accepted by the external
// budget store. Nil fields are left untouched.
type BudgetItemUpdates struct {
	Name           *string                 `json:"name,omitempty"`
	PlannedAmounts map[int]decimal.Decimal `json:"plannedAmounts,omitempty"`
	ActualAmounts  map[int]decimal.Decimal `json:"actualAmounts,omitempty"`
	DueDate        *time.Time              `json:"dueDate,omitempty"`
	Deleted        *bool                   `json:"deleted,omitempty"`
	ZakatMetadata  *ZakatMetadata          `json:"zakatMetadata,omitempty"`
}

// IsZakatItem reports whether the item belongs to the zakat engine, either by
// its kind tag or by the legacy name/category heuristic used for records
// created before the tag existed.
func (b BudgetItem) IsZakatItem() bool {
	if b.Kind == BudgetKindZakat {
		return true
	}
	return b.Category == "Zakat" || strings.Contains(strings.ToLower(b.Name), "zakat")
}
