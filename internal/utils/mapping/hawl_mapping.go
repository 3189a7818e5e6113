package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/hawltrack/zakat_engine_app/internal/core/domain"
	"github.com/hawltrack/zakat_engine_app/internal/models"
)

// ToModelHawlCycle converts a domain HawlCycle to a model HawlCycle.
// Hijri dates and the payment carryover are stored as JSONB.
func ToModelHawlCycle(d domain.HawlCycle) (models.HawlCycle, error) {
	m := models.HawlCycle{
		HawlID:                   d.HawlID,
		UserID:                   d.UserID,
		StartDate:                d.StartDate,
		EndDate:                  d.EndDate,
		Status:                   models.HawlStatus(d.Status),
		IsCurrent:                d.IsCurrent(),
		InitialAssets:            d.InitialAssets,
		CurrentAssets:            d.CurrentAssets,
		NisabThresholdAtCreation: d.NisabThresholdAtCreation,
		HasBeenInterrupted:       d.HasBeenInterrupted,
		ContinuousAboveNisab:     d.ContinuousAboveNisab,
		AuditFields:              ToModelAuditFields(d.AuditFields),
	}

	var err error
	if m.HijriStart, err = marshalNullable(d.HijriStart); err != nil {
		return models.HawlCycle{}, fmt.Errorf("marshalling hijri start: %w", err)
	}
	if m.HijriEnd, err = marshalNullable(d.HijriEnd); err != nil {
		return models.HawlCycle{}, fmt.Errorf("marshalling hijri end: %w", err)
	}
	if m.PreviousPayment, err = marshalNullable(d.PreviousPayment); err != nil {
		return models.HawlCycle{}, fmt.Errorf("marshalling previous payment: %w", err)
	}
	return m, nil
}

// ToDomainHawlCycle converts a model HawlCycle to a domain HawlCycle.
func ToDomainHawlCycle(m models.HawlCycle) (domain.HawlCycle, error) {
	d := domain.HawlCycle{
		HawlID:                   m.HawlID,
		UserID:                   m.UserID,
		StartDate:                m.StartDate,
		EndDate:                  m.EndDate,
		Status:                   domain.HawlStatus(m.Status),
		InitialAssets:            m.InitialAssets,
		CurrentAssets:            m.CurrentAssets,
		NisabThresholdAtCreation: m.NisabThresholdAtCreation,
		HasBeenInterrupted:       m.HasBeenInterrupted,
		ContinuousAboveNisab:     m.ContinuousAboveNisab,
		AuditFields:              ToDomainAuditFields(m.AuditFields),
	}

	if len(m.HijriStart) > 0 {
		d.HijriStart = &domain.HijriDate{}
		if err := json.Unmarshal(m.HijriStart, d.HijriStart); err != nil {
			return domain.HawlCycle{}, fmt.Errorf("unmarshalling hijri start: %w", err)
		}
	}
	if len(m.HijriEnd) > 0 {
		d.HijriEnd = &domain.HijriDate{}
		if err := json.Unmarshal(m.HijriEnd, d.HijriEnd); err != nil {
			return domain.HawlCycle{}, fmt.Errorf("unmarshalling hijri end: %w", err)
		}
	}
	if len(m.PreviousPayment) > 0 {
		d.PreviousPayment = &domain.PreviousPaymentData{}
		if err := json.Unmarshal(m.PreviousPayment, d.PreviousPayment); err != nil {
			return domain.HawlCycle{}, fmt.Errorf("unmarshalling previous payment: %w", err)
		}
	}
	return d, nil
}

// ToModelAssetSnapshot converts a domain AssetSnapshot to a model AssetSnapshot
func ToModelAssetSnapshot(d domain.AssetSnapshot) models.AssetSnapshot {
	return models.AssetSnapshot{
		SnapshotID:              d.SnapshotID,
		HawlID:                  d.HawlID,
		UserID:                  d.UserID,
		Date:                    d.Date,
		TotalAssets:             d.TotalAssets,
		NisabThresholdAtCapture: d.NisabThresholdAtCapture,
		IsAboveNisab:            d.IsAboveNisab,
		Reason:                  d.Reason,
	}
}

// ToDomainAssetSnapshot converts a model AssetSnapshot to a domain AssetSnapshot
func ToDomainAssetSnapshot(m models.AssetSnapshot) domain.AssetSnapshot {
	return domain.AssetSnapshot{
		SnapshotID:              m.SnapshotID,
		HawlID:                  m.HawlID,
		UserID:                  m.UserID,
		Date:                    m.Date,
		TotalAssets:             m.TotalAssets,
		NisabThresholdAtCapture: m.NisabThresholdAtCapture,
		IsAboveNisab:            m.IsAboveNisab,
		Reason:                  m.Reason,
	}
}

// marshalNullable marshals a pointer to JSON, mapping nil to nil bytes so the
// column stays NULL.
func marshalNullable[T any](ptr *T) ([]byte, error) {
	if ptr == nil {
		return nil, nil
	}
	return json.Marshal(ptr)
}
