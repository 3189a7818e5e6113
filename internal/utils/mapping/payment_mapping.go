package mapping

import (
	"github.com/hawltrack/zakat_engine_app/internal/core/domain"
	"github.com/hawltrack/zakat_engine_app/internal/models"
)

// ToModelPayment converts a domain Payment to a model Payment
func ToModelPayment(d domain.Payment) models.Payment {
	return models.Payment{
		PaymentID:   d.PaymentID,
		UserID:      d.UserID,
		HawlID:      d.HawlID,
		Amount:      d.Amount,
		PaymentDate: d.PaymentDate,
		Method:      d.Method,
		Status:      models.PaymentStatus(d.Status),
		Description: d.Description,
		Reference:   d.Reference,
		Notes:       d.Notes,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPayment converts a model Payment to a domain Payment
func ToDomainPayment(m models.Payment) domain.Payment {
	return domain.Payment{
		PaymentID:   m.PaymentID,
		UserID:      m.UserID,
		HawlID:      m.HawlID,
		Amount:      m.Amount,
		PaymentDate: m.PaymentDate,
		Method:      m.Method,
		Status:      domain.PaymentStatus(m.Status),
		Description: m.Description,
		Reference:   m.Reference,
		Notes:       m.Notes,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
