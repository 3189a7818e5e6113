package dto

import (
	"time"

	"github.com/hawltrack/zakat_engine_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreatePaymentRequest records a new zakat payment against a cycle.
type CreatePaymentRequest struct {
	HawlID      string          `json:"hawlID" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate *time.Time      `json:"paymentDate,omitempty"`
	Method      string          `json:"method" binding:"required"`
	Description string          `json:"description,omitempty"`
	Reference   string          `json:"reference,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

// CompletePaymentRequest carries optional detail for the terminal transition.
type CompletePaymentRequest struct {
	Reference string `json:"reference,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// FailPaymentRequest records why a payment failed.
type FailPaymentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// PaymentResponse is the API shape of one ledger entry.
type PaymentResponse struct {
	PaymentID   string          `json:"paymentID"`
	HawlID      string          `json:"hawlID"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"paymentDate"`
	Method      string          `json:"method"`
	Status      string          `json:"status"`
	Description string          `json:"description,omitempty"`
	Reference   string          `json:"reference,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ToPaymentResponse converts a domain payment to its response DTO.
func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:   p.PaymentID,
		HawlID:      p.HawlID,
		Amount:      p.Amount,
		PaymentDate: p.PaymentDate,
		Method:      p.Method,
		Status:      string(p.Status),
		Description: p.Description,
		Reference:   p.Reference,
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt,
	}
}

// ToListPaymentResponse converts a slice of payments to response DTOs.
func ToListPaymentResponse(payments []domain.Payment) []PaymentResponse {
	res := make([]PaymentResponse, len(payments))
	for i := range payments {
		res[i] = ToPaymentResponse(&payments[i])
	}
	return res
}
