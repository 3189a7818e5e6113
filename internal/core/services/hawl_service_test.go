package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hawltrack/zakat_engine_app/internal/apperrors"
	"github.com/hawltrack/zakat_engine_app/internal/core/domain"
	"github.com/hawltrack/zakat_engine_app/internal/core/ports/providers"
	portsrepo "github.com/hawltrack/zakat_engine_app/internal/core/ports/repositories"
	portssvc "github.com/hawltrack/zakat_engine_app/internal/core/ports/services"
	"github.com/hawltrack/zakat_engine_app/internal/core/services"
	"github.com/hawltrack/zakat_engine_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock HawlRepository ---
type MockHawlRepository struct {
	mock.Mock
}

// Ensure MockHawlRepository implements portsrepo.HawlRepositoryFacade
var _ portsrepo.HawlRepositoryFacade = (*MockHawlRepository)(nil)

func (m *MockHawlRepository) FindCurrentByUser(ctx context.Context, userID string) (*domain.HawlCycle, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HawlCycle), args.Error(1)
}

func (m *MockHawlRepository) FindHawlByID(ctx context.Context, hawlID string) (*domain.HawlCycle, error) {
	args := m.Called(ctx, hawlID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HawlCycle), args.Error(1)
}

func (m *MockHawlRepository) ListHistoryByUser(ctx context.Context, userID string, limit int) ([]domain.HawlCycle, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HawlCycle), args.Error(1)
}

func (m *MockHawlRepository) SaveHawl(ctx context.Context, cycle domain.HawlCycle) error {
	args := m.Called(ctx, cycle)
	return args.Error(0)
}

func (m *MockHawlRepository) UpdateHawl(ctx context.Context, cycle domain.HawlCycle) error {
	args := m.Called(ctx, cycle)
	return args.Error(0)
}

func (m *MockHawlRepository) ArchiveHawl(ctx context.Context, cycle domain.HawlCycle) error {
	args := m.Called(ctx, cycle)
	return args.Error(0)
}

// --- Mock SnapshotRepository ---
type MockSnapshotRepository struct {
	mock.Mock
}

// Ensure MockSnapshotRepository implements portsrepo.SnapshotRepositoryFacade
var _ portsrepo.SnapshotRepositoryFacade = (*MockSnapshotRepository)(nil)

func (m *MockSnapshotRepository) AppendSnapshot(ctx context.Context, snapshot domain.AssetSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockSnapshotRepository) ListSnapshotsByUser(ctx context.Context, userID string) ([]domain.AssetSnapshot, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AssetSnapshot), args.Error(1)
}

func (m *MockSnapshotRepository) ListSnapshotsByHawl(ctx context.Context, hawlID string) ([]domain.AssetSnapshot, error) {
	args := m.Called(ctx, hawlID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AssetSnapshot), args.Error(1)
}

func (m *MockSnapshotRepository) PruneSnapshotsBefore(ctx context.Context, userID string, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, userID, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock IslamicCalendarProvider ---
type MockCalendarProvider struct {
	mock.Mock
}

// Ensure MockCalendarProvider implements providers.IslamicCalendarProvider
var _ providers.IslamicCalendarProvider = (*MockCalendarProvider)(nil)

func (m *MockCalendarProvider) CalculateHawlEndDate(ctx context.Context, start time.Time) (time.Time, error) {
	args := m.Called(ctx, start)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockCalendarProvider) ToHijri(ctx context.Context, date time.Time) (*domain.HijriDate, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HijriDate), args.Error(1)
}

func (m *MockCalendarProvider) DaysRemainingInHawl(ctx context.Context, start time.Time) (int, error) {
	args := m.Called(ctx, start)
	return args.Int(0), args.Error(1)
}

func (m *MockCalendarProvider) HawlProgress(ctx context.Context, start time.Time) (float64, error) {
	args := m.Called(ctx, start)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockCalendarProvider) IsHawlCompleted(ctx context.Context, start time.Time) (bool, error) {
	args := m.Called(ctx, start)
	return args.Bool(0), args.Error(1)
}

func (m *MockCalendarProvider) FormatDate(date time.Time) string {
	args := m.Called(date)
	return args.String(0)
}

func (m *MockCalendarProvider) FormatHijriDate(date domain.HijriDate) string {
	args := m.Called(date)
	return args.String(0)
}

type HawlServiceTestSuite struct {
	suite.Suite
	mockHawlRepo     *MockHawlRepository
	mockSnapshotRepo *MockSnapshotRepository
	mockCalendar     *MockCalendarProvider
	service          portssvc.HawlSvcFacade
	userID           string
	now              time.Time
	threshold        decimal.Decimal
}

func (suite *HawlServiceTestSuite) SetupTest() {
	suite.mockHawlRepo = new(MockHawlRepository)
	suite.mockSnapshotRepo = new(MockSnapshotRepository)
	suite.mockCalendar = new(MockCalendarProvider)
	suite.now = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	suite.service = services.NewHawlService(
		suite.mockHawlRepo,
		suite.mockSnapshotRepo,
		suite.mockCalendar,
		services.WithClock(func() time.Time { return suite.now }),
	)
	suite.userID = uuid.NewString()
	suite.threshold = decimal.NewFromInt(26775)
}

// currentCycle builds a cycle half way through its hawl.
func (suite *HawlServiceTestSuite) currentCycle(status domain.HawlStatus, assets decimal.Decimal) *domain.HawlCycle {
	start := suite.now.AddDate(0, -6, 0)
	return &domain.HawlCycle{
		HawlID:                   uuid.NewString(),
		UserID:                   suite.userID,
		StartDate:                start,
		EndDate:                  start.AddDate(0, 0, domain.HawlDurationDays),
		Status:                   status,
		InitialAssets:            assets,
		CurrentAssets:            assets,
		NisabThresholdAtCreation: suite.threshold,
		ContinuousAboveNisab:     true,
	}
}

func (suite *HawlServiceTestSuite) expectSnapshotAppend() {
	suite.mockSnapshotRepo.On("AppendSnapshot", mock.Anything, mock.Anything).Return(nil)
	suite.mockSnapshotRepo.On("PruneSnapshotsBefore", mock.Anything, suite.userID, mock.Anything).Return(int64(0), nil)
}

func (suite *HawlServiceTestSuite) TestCreateCycleStartsActiveWithStartSnapshot() {
	assets := decimal.NewFromInt(300000)
	endDate := suite.now.AddDate(0, 0, domain.HawlDurationDays)

	suite.mockHawlRepo.On("FindCurrentByUser", mock.Anything, suite.userID).Return(nil, apperrors.ErrNotFound)
	suite.mockCalendar.On("CalculateHawlEndDate", mock.Anything, suite.now).Return(endDate, nil)
	suite.mockCalendar.On("ToHijri", mock.Anything, mock.Anything).Return(&domain.HijriDate{Year: 1446, Month: 9, Day: 10, Label: "Ramadan"}, nil)
	suite.mockHawlRepo.On("SaveHawl", mock.Anything, mock.MatchedBy(func(c domain.HawlCycle) bool {
		return c.Status == domain.HawlActive && c.UserID == suite.userID
	})).Return(nil)
	suite.mockSnapshotRepo.On("AppendSnapshot", mock.Anything, mock.MatchedBy(func(s domain.AssetSnapshot) bool {
		return s.Reason == domain.HawlStartReason && s.TotalAssets.Equal(assets) && s.IsAboveNisab
	})).Return(nil)
	suite.mockSnapshotRepo.On("PruneSnapshotsBefore", mock.Anything, suite.userID, mock.Anything).Return(int64(0), nil)

	cycle, err := suite.service.CreateCycle(context.Background(), suite.userID, dto.CreateHawlRequest{
		InitialAssets:  assets,
		NisabThreshold: suite.threshold,
	})

	suite.Require().NoError(err)
	suite.Equal(domain.HawlActive, cycle.Status)
	suite.Equal(endDate, cycle.EndDate)
	suite.True(cycle.ContinuousAboveNisab)
	suite.False(cycle.HasBeenInterrupted)
	suite.NotNil(cycle.HijriStart)
	suite.mockHawlRepo.AssertExpectations(suite.T())
	suite.mockSnapshotRepo.AssertExpectations(suite.T())
}

func (suite *HawlServiceTestSuite) TestCreateCycleRejectsSecondCurrent() {
	existing := suite.currentCycle(domain.HawlActive, decimal.NewFromInt(300000))
	suite.mockHawlRepo.On("FindCurrentByUser", mock.Anything, suite.userID).Return(existing, nil)

	cycle, err := suite.service.CreateCycle(context.Background(), suite.userID, dto.CreateHawlRequest{
		InitialAssets:  decimal.NewFromInt(300000),
		NisabThreshold: suite.threshold,
	})

	suite.Nil(cycle)
	suite.ErrorIs(err, apperrors.ErrDomainRule)
	suite.mockHawlRepo.AssertNotCalled(suite.T(), "SaveHawl", mock.Anything, mock.Anything)
}

func (suite *HawlServiceTestSuite) TestRecordAssetUpdateDipBelowNisabInterrupts() {
	cycle := suite.currentCycle(domain.HawlActive, decimal.NewFromInt(300000))
	dipped := decimal.NewFromInt(20000)

	suite.mockHawlRepo.On("FindCurrentByUser", mock.Anything, suite.userID).Return(cycle, nil)
	suite.expectSnapshotAppend()
	suite.mockSnapshotRepo.On("ListSnapshotsByHawl", mock.Anything, cycle.HawlID).Return([]domain.AssetSnapshot{}, nil)
	suite.mockCalendar.On("IsHawlCompleted", mock.Anything, cycle.StartDate).Return(false, nil)
	suite.mockHawlRepo.On("UpdateHawl", mock.Anything, mock.MatchedBy(func(c domain.HawlCycle) bool {
		return c.Status == domain.HawlInterrupted && c.HasBeenInterrupted && !c.ContinuousAboveNisab
	})).Return(nil)

	updated, err := suite.service.RecordAssetUpdate(context.Background(), suite.userID, dipped, "Market loss")

	suite.Require().NoError(err)
	suite.Equal(domain.HawlInterrupted, updated.Status)
	suite.True(updated.HasBeenInterrupted)
	suite.mockHawlRepo.AssertExpectations(suite.T())
}

func (suite *HawlServiceTestSuite) TestRecordAssetUpdatePrunesTwelveMonthWindow() {
	cycle := suite.currentCycle(domain.HawlActive, decimal.NewFromInt(300000))
	cutoff := suite.now.AddDate(0, -domain.SnapshotRetentionMonths, 0)

	suite.mockHawlRepo.On("FindCurrentByUser", mock.Anything, suite.userID).Return(cycle, nil)
	suite.mockSnapshotRepo.On("AppendSnapshot", mock.Anything, mock.Anything).Return(nil)
	suite.mockSnapshotRepo.On("PruneSnapshotsBefore", mock.Anything, suite.userID, cutoff).Return(int64(3), nil)
	suite.mockSnapshotRepo.On("ListSnapshotsByHawl", mock.Anything, cycle.HawlID).Return([]domain.AssetSnapshot{}, nil)
	suite.mockCalendar.On("IsHawlCompleted", mock.Anything, cycle.StartDate).Return(false, nil)
	suite.mockHawlRepo.On("UpdateHawl", mock.Anything, mock.Anything).Return(nil)

	_, err := suite.service.RecordAssetUpdate(context.Background(), suite.userID, decimal.NewFromInt(305000), "Savings")

	suite.Require().NoError(err)
	suite.mockSnapshotRepo.AssertExpectations(suite.T())
}

func (suite *HawlServiceTestSuite) TestRecordAssetUpdateInterruptionIsStickyInSnapshotLog() {
	// Assets recovered above nisab, but an earlier snapshot dipped below.
	cycle := suite.currentCycle(domain.HawlActive, decimal.NewFromInt(300000))
	recovered := decimal.NewFromInt(310000)
	dippedSnapshot := domain.AssetSnapshot{
		HawlID:      cycle.HawlID,
		Date:        cycle.StartDate.AddDate(0, 2, 0),
		TotalAssets: decimal.NewFromInt(10000),
	}

	suite.mockHawlRepo.On("FindCurrentByUser", mock.Anything, suite.userID).Return(cycle, nil)
	suite.expectSnapshotAppend()
	suite.mockSnapshotRepo.On("ListSnapshotsByHawl", mock.Anything, cycle.HawlID).Return([]domain.AssetSnapshot{dippedSnapshot}, nil)
	suite.mockCalendar.On("IsHawlCompleted", mock.Anything, cycle.StartDate).Return(false, nil)
	suite.mockHawlRepo.On("UpdateHawl", mock.Anything, mock.Anything).Return(nil)

	updated, err := suite.service.RecordAssetUpdate(context.Background(), suite.userID, recovered, "Recovery")

	suite.Require().NoError(err)
	suite.Equal(domain.HawlInterrupted, updated.Status)
}

func (suite *HawlServiceTestSuite) TestRecomputeStatusBecomesDueAfterFullHawl() {
	cycle := suite.currentCycle(domain.HawlActive, decimal.NewFromInt(300000))

	suite.mockHawlRepo.On("FindCurrentByUser", mock.Anything, suite.userID).Return(cycle, nil)
	suite.mockSnapshotRepo.On("ListSnapshotsByHawl", mock.Anything, cycle.HawlID).Return([]domain.AssetSnapshot{}, nil)
	suite.mockCalendar.On("IsHawlCompleted", mock.Anything, cycle.StartDate).Return(true, nil)
	suite.mockHawlRepo.On("UpdateHawl", mock.Anything, mock.MatchedBy(func(c domain.HawlCycle) bool {
		return c.Status == domain.HawlDue
	})).Return(nil)

	updated, err := suite.service.RecomputeStatus(context.Background(), suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.HawlDue, updated.Status)
	suite.mockHawlRepo.AssertExpectations(suite.T())
}

func (suite *HawlServiceTestSuite) TestRecomputeStatusSkipsPersistWhenUnchanged() {
	cycle := suite.currentCycle(domain.HawlActive, decimal.NewFromInt(300000))

	suite.mockHawlRepo.On("FindCurrentByUser", mock.Anything, suite.userID).Return(cycle, nil)
	suite.mockSnapshotRepo.On("ListSnapshotsByHawl", mock.Anything, cycle.HawlID).Return([]domain.AssetSnapshot{}, nil)
	suite.mockCalendar.On("IsHawlCompleted", mock.Anything, cycle.StartDate).Return(false, nil)

	updated, err := suite.service.RecomputeStatus(context.Background(), suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.HawlActive, updated.Status)
	suite.mockHawlRepo.AssertNotCalled(suite.T(), "UpdateHawl", mock.Anything, mock.Anything)
}

func (suite *HawlServiceTestSuite) TestArchiveAsPaidRequiresDue() {
	cycle := suite.currentCycle(domain.HawlActive, decimal.NewFromInt(300000))
	suite.mockHawlRepo.On("FindCurrentByUser", mock.Anything, suite.userID).Return(cycle, nil)

	archived, err := suite.service.ArchiveAsPaid(context.Background(), suite.userID, domain.PreviousPaymentData{})

	suite.Nil(archived)
	suite.ErrorIs(err, apperrors.ErrDomainRule)
	suite.mockHawlRepo.AssertNotCalled(suite.T(), "ArchiveHawl", mock.Anything, mock.Anything)
}

func (suite *HawlServiceTestSuite) TestArchiveAsPaidMovesDueCycleToHistory() {
	cycle := suite.currentCycle(domain.HawlDue, decimal.NewFromInt(300000))
	payment := domain.PreviousPaymentData{
		PaymentID:   uuid.NewString(),
		Amount:      decimal.NewFromInt(7500),
		PaymentDate: suite.now,
		HawlID:      cycle.HawlID,
	}

	suite.mockHawlRepo.On("FindCurrentByUser", mock.Anything, suite.userID).Return(cycle, nil)
	suite.mockHawlRepo.On("ArchiveHawl", mock.Anything, mock.MatchedBy(func(c domain.HawlCycle) bool {
		return c.Status == domain.HawlPaid && c.PreviousPayment != nil && c.PreviousPayment.PaymentID == payment.PaymentID
	})).Return(nil)

	archived, err := suite.service.ArchiveAsPaid(context.Background(), suite.userID, payment)

	suite.Require().NoError(err)
	suite.Equal(domain.HawlPaid, archived.Status)
	suite.mockHawlRepo.AssertExpectations(suite.T())
}

func (suite *HawlServiceTestSuite) TestRestartCycleAbandonsInterruptedCurrent() {
	interrupted := suite.currentCycle(domain.HawlInterrupted, decimal.NewFromInt(20000))
	newAssets := decimal.NewFromInt(280000)
	endDate := suite.now.AddDate(0, 0, domain.HawlDurationDays)

	suite.mockHawlRepo.On("FindCurrentByUser", mock.Anything, suite.userID).Return(interrupted, nil)
	suite.mockHawlRepo.On("ArchiveHawl", mock.Anything, mock.Anything).Return(nil)
	suite.mockCalendar.On("CalculateHawlEndDate", mock.Anything, suite.now).Return(endDate, nil)
	suite.mockCalendar.On("ToHijri", mock.Anything, mock.Anything).Return(nil, apperrors.ErrExternalService)
	suite.mockHawlRepo.On("SaveHawl", mock.Anything, mock.MatchedBy(func(c domain.HawlCycle) bool {
		return c.Status == domain.HawlActive &&
			c.NisabThresholdAtCreation.Equal(interrupted.NisabThresholdAtCreation) &&
			c.CurrentAssets.Equal(newAssets)
	})).Return(nil)
	suite.expectSnapshotAppend()

	cycle, err := suite.service.RestartCycle(context.Background(), suite.userID, newAssets, nil)

	suite.Require().NoError(err)
	suite.Equal(domain.HawlActive, cycle.Status)
	suite.Nil(cycle.HijriStart)
	suite.mockHawlRepo.AssertExpectations(suite.T())
}

func (suite *HawlServiceTestSuite) TestRestartCycleRejectsActiveCurrent() {
	active := suite.currentCycle(domain.HawlActive, decimal.NewFromInt(300000))
	suite.mockHawlRepo.On("FindCurrentByUser", mock.Anything, suite.userID).Return(active, nil)

	cycle, err := suite.service.RestartCycle(context.Background(), suite.userID, decimal.NewFromInt(300000), nil)

	suite.Nil(cycle)
	suite.ErrorIs(err, apperrors.ErrDomainRule)
}

func (suite *HawlServiceTestSuite) TestRestartCycleAfterPaymentCarriesThresholdFromHistory() {
	archived := suite.currentCycle(domain.HawlPaid, decimal.NewFromInt(300000))
	newAssets := decimal.NewFromInt(300000)
	endDate := suite.now.AddDate(0, 0, domain.HawlDurationDays)
	previous := &domain.PreviousPaymentData{PaymentID: uuid.NewString(), HawlID: archived.HawlID}

	suite.mockHawlRepo.On("FindCurrentByUser", mock.Anything, suite.userID).Return(nil, apperrors.ErrNotFound)
	suite.mockHawlRepo.On("ListHistoryByUser", mock.Anything, suite.userID, 1).Return([]domain.HawlCycle{*archived}, nil)
	suite.mockCalendar.On("CalculateHawlEndDate", mock.Anything, suite.now).Return(endDate, nil)
	suite.mockCalendar.On("ToHijri", mock.Anything, mock.Anything).Return(&domain.HijriDate{Year: 1446, Month: 10, Day: 1}, nil)
	suite.mockHawlRepo.On("SaveHawl", mock.Anything, mock.MatchedBy(func(c domain.HawlCycle) bool {
		return c.NisabThresholdAtCreation.Equal(archived.NisabThresholdAtCreation) &&
			c.PreviousPayment != nil && c.PreviousPayment.PaymentID == previous.PaymentID
	})).Return(nil)
	suite.expectSnapshotAppend()

	cycle, err := suite.service.RestartCycle(context.Background(), suite.userID, newAssets, previous)

	suite.Require().NoError(err)
	suite.Equal(domain.HawlActive, cycle.Status)
	suite.mockHawlRepo.AssertExpectations(suite.T())
}

func (suite *HawlServiceTestSuite) TestRestartCycleWithoutAnyCycle() {
	suite.mockHawlRepo.On("FindCurrentByUser", mock.Anything, suite.userID).Return(nil, apperrors.ErrNotFound)
	suite.mockHawlRepo.On("ListHistoryByUser", mock.Anything, suite.userID, 1).Return([]domain.HawlCycle{}, nil)

	cycle, err := suite.service.RestartCycle(context.Background(), suite.userID, decimal.NewFromInt(300000), nil)

	suite.Nil(cycle)
	suite.ErrorIs(err, apperrors.ErrDomainRule)
}

func (suite *HawlServiceTestSuite) TestProgressReportsCalendarNumbers() {
	cycle := suite.currentCycle(domain.HawlActive, decimal.NewFromInt(300000))

	suite.mockHawlRepo.On("FindCurrentByUser", mock.Anything, suite.userID).Return(cycle, nil)
	suite.mockCalendar.On("DaysRemainingInHawl", mock.Anything, cycle.StartDate).Return(177, nil)
	suite.mockCalendar.On("HawlProgress", mock.Anything, cycle.StartDate).Return(0.5, nil)
	suite.mockCalendar.On("FormatDate", cycle.StartDate).Return("10 September 2024")
	suite.mockCalendar.On("FormatDate", cycle.EndDate).Return("30 August 2025")

	progress, err := suite.service.Progress(context.Background(), suite.userID)

	suite.Require().NoError(err)
	suite.Equal(cycle.HawlID, progress.HawlID)
	suite.Equal(177, progress.DaysRemaining)
	suite.InDelta(0.5, progress.Progress, 0.0001)
}

func TestHawlService(t *testing.T) {
	suite.Run(t, new(HawlServiceTestSuite))
}
