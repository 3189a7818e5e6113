package dto

import (
	"time"

	"github.com/hawltrack/zakat_engine_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateZakatBudgetItemRequest creates the year's zakat budget item.
type CreateZakatBudgetItemRequest struct {
	Year   int             `json:"year" binding:"required,min=2000,max=2200"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// MarkZakatPaidRequest settles a budget item and records the ledger payment.
// The hawl id is optional; when omitted it is taken from the item's metadata.
type MarkZakatPaidRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Method      string          `json:"method" binding:"required"`
	HawlID      string          `json:"hawlID,omitempty"`
	PaymentDate *time.Time      `json:"paymentDate,omitempty"`
	Description string          `json:"description,omitempty"`
	Reference   string          `json:"reference,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

// ToCreatePaymentRequest converts the settle request into a ledger request.
func (r MarkZakatPaidRequest) ToCreatePaymentRequest() CreatePaymentRequest {
	return CreatePaymentRequest{
		HawlID:      r.HawlID,
		Amount:      r.Amount,
		PaymentDate: r.PaymentDate,
		Method:      r.Method,
		Description: r.Description,
		Reference:   r.Reference,
		Notes:       r.Notes,
	}
}

// ProjectionRequest asks for multi-year obligation projections.
type ProjectionRequest struct {
	Years int `json:"years" binding:"omitempty,min=1,max=10"`
}

// YearProjectionResult is one year's outcome of the best-effort projection
// loop. Either Item or Error is set, never both.
type YearProjectionResult struct {
	Year  int                 `json:"year"`
	Item  *BudgetItemResponse `json:"item,omitempty"`
	Error string              `json:"error,omitempty"`
}

// BudgetItemResponse is the API shape of a budget item owned by the engine.
type BudgetItemResponse struct {
	ItemID         string                  `json:"itemID"`
	Kind           string                  `json:"kind"`
	Name           string                  `json:"name"`
	Category       string                  `json:"category"`
	Year           int                     `json:"year"`
	PlannedAmounts map[int]decimal.Decimal `json:"plannedAmounts"`
	ActualAmounts  map[int]decimal.Decimal `json:"actualAmounts,omitempty"`
	DueDate        time.Time               `json:"dueDate"`
	ZakatMetadata  *domain.ZakatMetadata   `json:"zakatMetadata,omitempty"`
}

// ToBudgetItemResponse converts a domain budget item to its response DTO.
func ToBudgetItemResponse(item *domain.BudgetItem) BudgetItemResponse {
	return BudgetItemResponse{
		ItemID:         item.ItemID,
		Kind:           string(item.Kind),
		Name:           item.Name,
		Category:       item.Category,
		Year:           item.Year,
		PlannedAmounts: item.PlannedAmounts,
		ActualAmounts:  item.ActualAmounts,
		DueDate:        item.DueDate,
		ZakatMetadata:  item.ZakatMetadata,
	}
}

// ToListBudgetItemResponse converts a slice of budget items to response DTOs.
func ToListBudgetItemResponse(items []domain.BudgetItem) []BudgetItemResponse {
	res := make([]BudgetItemResponse, len(items))
	for i := range items {
		res[i] = ToBudgetItemResponse(&items[i])
	}
	return res
}
