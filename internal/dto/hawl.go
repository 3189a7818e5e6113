package dto

import (
	"time"

	"github.com/hawltrack/zakat_engine_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateHawlRequest starts a new qualification cycle. The nisab threshold is
// captured at creation and frozen for the life of the cycle.
type CreateHawlRequest struct {
	InitialAssets  decimal.Decimal `json:"initialAssets" binding:"required"`
	NisabThreshold decimal.Decimal `json:"nisabThreshold" binding:"required"`
}

// RecordAssetsRequest records a new total asset value against the current cycle.
type RecordAssetsRequest struct {
	TotalAssets decimal.Decimal `json:"totalAssets" binding:"required"`
	Reason      string          `json:"reason" binding:"required"`
}

// RestartHawlRequest starts a fresh cycle after payment or interruption.
type RestartHawlRequest struct {
	NewAssetValue decimal.Decimal `json:"newAssetValue" binding:"required"`
}

// HawlResponse is the API shape of a cycle.
type HawlResponse struct {
	HawlID                   string                      `json:"hawlID"`
	Status                   string                      `json:"status"`
	StartDate                time.Time                   `json:"startDate"`
	EndDate                  time.Time                   `json:"endDate"`
	InitialAssets            decimal.Decimal             `json:"initialAssets"`
	CurrentAssets            decimal.Decimal             `json:"currentAssets"`
	NisabThresholdAtCreation decimal.Decimal             `json:"nisabThresholdAtCreation"`
	HasBeenInterrupted       bool                        `json:"hasBeenInterrupted"`
	ContinuousAboveNisab     bool                        `json:"continuousAboveNisab"`
	HijriStart               *domain.HijriDate           `json:"hijriStart,omitempty"`
	HijriEnd                 *domain.HijriDate           `json:"hijriEnd,omitempty"`
	PreviousPayment          *domain.PreviousPaymentData `json:"previousPayment,omitempty"`
	CreatedAt                time.Time                   `json:"createdAt"`
	LastUpdatedAt            time.Time                   `json:"lastUpdatedAt"`
}

// ToHawlResponse converts a domain cycle to its response DTO.
func ToHawlResponse(cycle *domain.HawlCycle) HawlResponse {
	return HawlResponse{
		HawlID:                   cycle.HawlID,
		Status:                   string(cycle.Status),
		StartDate:                cycle.StartDate,
		EndDate:                  cycle.EndDate,
		InitialAssets:            cycle.InitialAssets,
		CurrentAssets:            cycle.CurrentAssets,
		NisabThresholdAtCreation: cycle.NisabThresholdAtCreation,
		HasBeenInterrupted:       cycle.HasBeenInterrupted,
		ContinuousAboveNisab:     cycle.ContinuousAboveNisab,
		HijriStart:               cycle.HijriStart,
		HijriEnd:                 cycle.HijriEnd,
		PreviousPayment:          cycle.PreviousPayment,
		CreatedAt:                cycle.CreatedAt,
		LastUpdatedAt:            cycle.LastUpdatedAt,
	}
}

// ToListHawlResponse converts a slice of cycles to response DTOs.
func ToListHawlResponse(cycles []domain.HawlCycle) []HawlResponse {
	res := make([]HawlResponse, len(cycles))
	for i := range cycles {
		res[i] = ToHawlResponse(&cycles[i])
	}
	return res
}

// SnapshotResponse is the API shape of one asset snapshot.
type SnapshotResponse struct {
	SnapshotID     string          `json:"snapshotID"`
	HawlID         string          `json:"hawlID"`
	Date           time.Time       `json:"date"`
	TotalAssets    decimal.Decimal `json:"totalAssets"`
	NisabThreshold decimal.Decimal `json:"nisabThreshold"`
	IsAboveNisab   bool            `json:"isAboveNisab"`
	Reason         string          `json:"reason"`
}

// ToListSnapshotResponse converts domain snapshots to response DTOs.
func ToListSnapshotResponse(snapshots []domain.AssetSnapshot) []SnapshotResponse {
	res := make([]SnapshotResponse, len(snapshots))
	for i, s := range snapshots {
		res[i] = SnapshotResponse{
			SnapshotID:     s.SnapshotID,
			HawlID:         s.HawlID,
			Date:           s.Date,
			TotalAssets:    s.TotalAssets,
			NisabThreshold: s.NisabThresholdAtCapture,
			IsAboveNisab:   s.IsAboveNisab,
			Reason:         s.Reason,
		}
	}
	return res
}

// HawlProgressResponse reports calendar-derived progress of the current cycle.
type HawlProgressResponse struct {
	HawlID        string            `json:"hawlID"`
	Status        string            `json:"status"`
	DaysRemaining int               `json:"daysRemaining"`
	Progress      float64           `json:"progress"` // Fraction in [0, 1]
	StartDate     string            `json:"startDate"`
	EndDate       string            `json:"endDate"`
	HijriStart    *domain.HijriDate `json:"hijriStart,omitempty"`
	HijriEnd      *domain.HijriDate `json:"hijriEnd,omitempty"`
}
