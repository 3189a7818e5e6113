package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hawltrack/zakat_engine_app/internal/apperrors"
	"github.com/hawltrack/zakat_engine_app/internal/core/domain"
	"github.com/hawltrack/zakat_engine_app/internal/core/ports/providers"
	portssvc "github.com/hawltrack/zakat_engine_app/internal/core/ports/services"
	"github.com/hawltrack/zakat_engine_app/internal/core/services"
	"github.com/hawltrack/zakat_engine_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock BudgetStore ---
type MockBudgetStore struct {
	mock.Mock
}

// Ensure MockBudgetStore implements providers.BudgetStore
var _ providers.BudgetStore = (*MockBudgetStore)(nil)

func (m *MockBudgetStore) AddBudgetItem(ctx context.Context, item domain.BudgetItem) (*domain.BudgetItem, error) {
	args := m.Called(ctx, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetItem), args.Error(1)
}

func (m *MockBudgetStore) UpdateBudgetItem(ctx context.Context, itemID string, updates domain.BudgetItemUpdates) (*domain.BudgetItem, error) {
	args := m.Called(ctx, itemID, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetItem), args.Error(1)
}

func (m *MockBudgetStore) DeleteBudgetItem(ctx context.Context, itemID string) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

func (m *MockBudgetStore) FetchBudgetItems(ctx context.Context, userID string) ([]domain.BudgetItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BudgetItem), args.Error(1)
}

// --- Mock PaymentService (only CreatePayment is exercised here) ---
type MockPaymentService struct {
	mock.Mock
}

// Ensure MockPaymentService implements portssvc.PaymentSvcFacade
var _ portssvc.PaymentSvcFacade = (*MockPaymentService)(nil)

func (m *MockPaymentService) CreatePayment(ctx context.Context, userID string, req dto.CreatePaymentRequest) (*domain.Payment, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentService) MarkCompleted(ctx context.Context, userID string, paymentID string, req dto.CompletePaymentRequest) (*domain.Payment, error) {
	args := m.Called(ctx, userID, paymentID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentService) MarkFailed(ctx context.Context, userID string, paymentID string, reason string) (*domain.Payment, error) {
	args := m.Called(ctx, userID, paymentID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentService) DeletePayment(ctx context.Context, userID string, paymentID string) error {
	args := m.Called(ctx, userID, paymentID)
	return args.Error(0)
}

func (m *MockPaymentService) ListPayments(ctx context.Context, userID string) ([]domain.Payment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *MockPaymentService) TotalPayments(ctx context.Context, userID string) (decimal.Decimal, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentService) PaymentsByYear(ctx context.Context, userID string) (map[int][]domain.Payment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int][]domain.Payment), args.Error(1)
}

func (m *MockPaymentService) ExportPayments(ctx context.Context, userID string) (*domain.PaymentExport, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentExport), args.Error(1)
}

type BudgetSyncServiceTestSuite struct {
	suite.Suite
	mockStore      *MockBudgetStore
	mockHawlSvc    *MockHawlService
	mockPaymentSvc *MockPaymentService
	service        portssvc.BudgetSyncSvcFacade
	userID         string
	now            time.Time
}

func (suite *BudgetSyncServiceTestSuite) SetupTest() {
	suite.mockStore = new(MockBudgetStore)
	suite.mockHawlSvc = new(MockHawlService)
	suite.mockPaymentSvc = new(MockPaymentService)
	suite.now = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	suite.service = services.NewBudgetSyncService(
		suite.mockStore,
		suite.mockHawlSvc,
		suite.mockPaymentSvc,
		decimal.NewFromFloat(0.05),
		services.WithBudgetClock(func() time.Time { return suite.now }),
	)
	suite.userID = uuid.NewString()
}

func (suite *BudgetSyncServiceTestSuite) cycleAboveNisab() *domain.HawlCycle {
	start := time.Date(2024, time.September, 21, 0, 0, 0, 0, time.UTC)
	return &domain.HawlCycle{
		HawlID:                   uuid.NewString(),
		UserID:                   suite.userID,
		Status:                   domain.HawlActive,
		StartDate:                start,
		EndDate:                  start.AddDate(0, 0, domain.HawlDurationDays),
		CurrentAssets:            decimal.NewFromInt(300000),
		NisabThresholdAtCreation: decimal.NewFromInt(26775),
	}
}

func (suite *BudgetSyncServiceTestSuite) zakatItem(year int) domain.BudgetItem {
	return domain.BudgetItem{
		ItemID:   uuid.NewString(),
		UserID:   suite.userID,
		Kind:     domain.BudgetKindZakat,
		Name:     fmt.Sprintf("Zakat %d", year),
		Category: "Zakat",
		Year:     year,
		PlannedAmounts: map[int]decimal.Decimal{
			12: decimal.NewFromInt(7500),
		},
		ZakatMetadata: &domain.ZakatMetadata{HawlID: uuid.NewString()},
	}
}

func (suite *BudgetSyncServiceTestSuite) TestCreateZakatBudgetItemRejectsDuplicateYear() {
	existing := suite.zakatItem(2025)
	suite.mockStore.On("FetchBudgetItems", mock.Anything, suite.userID).Return([]domain.BudgetItem{existing}, nil)

	item, err := suite.service.CreateZakatBudgetItem(context.Background(), suite.userID, 2025, decimal.NewFromInt(5000), nil)

	suite.Nil(item)
	suite.ErrorIs(err, apperrors.ErrDomainRule)
	suite.mockStore.AssertNotCalled(suite.T(), "AddBudgetItem", mock.Anything, mock.Anything)
}

func (suite *BudgetSyncServiceTestSuite) TestCreateZakatBudgetItemIgnoresDeletedDuplicates() {
	deleted := suite.zakatItem(2025)
	deleted.Deleted = true
	suite.mockStore.On("FetchBudgetItems", mock.Anything, suite.userID).Return([]domain.BudgetItem{deleted}, nil)

	created := suite.zakatItem(2025)
	suite.mockStore.On("AddBudgetItem", mock.Anything, mock.Anything).Return(&created, nil)

	item, err := suite.service.CreateZakatBudgetItem(context.Background(), suite.userID, 2025, decimal.NewFromInt(5000), nil)

	suite.Require().NoError(err)
	suite.Equal(created.ItemID, item.ItemID)
}

func (suite *BudgetSyncServiceTestSuite) TestCreateForCurrentHawlBelowNisab() {
	cycle := suite.cycleAboveNisab()
	cycle.CurrentAssets = decimal.NewFromInt(20000)
	suite.mockHawlSvc.On("GetCurrentCycle", mock.Anything, suite.userID).Return(cycle, nil)

	item, err := suite.service.CreateZakatBudgetForCurrentHawl(context.Background(), suite.userID)

	suite.Nil(item)
	suite.ErrorIs(err, apperrors.ErrDomainRule)
	suite.ErrorContains(err, services.ErrAssetsBelowNisab.Error())
	suite.mockStore.AssertNotCalled(suite.T(), "FetchBudgetItems", mock.Anything, mock.Anything)
}

func (suite *BudgetSyncServiceTestSuite) TestCreateForCurrentHawlBuildsDecemberItem() {
	cycle := suite.cycleAboveNisab()
	suite.mockHawlSvc.On("GetCurrentCycle", mock.Anything, suite.userID).Return(cycle, nil)
	suite.mockStore.On("FetchBudgetItems", mock.Anything, suite.userID).Return([]domain.BudgetItem{}, nil)

	expectedYear := cycle.EndDate.Year()
	expectedAmount := decimal.NewFromInt(7500) // 300000 x 0.025

	suite.mockStore.On("AddBudgetItem", mock.Anything, mock.MatchedBy(func(item domain.BudgetItem) bool {
		planned, ok := item.PlannedAmounts[12]
		return ok && planned.Equal(expectedAmount) &&
			item.Kind == domain.BudgetKindZakat &&
			item.Year == expectedYear &&
			item.Category == "Zakat" &&
			item.ZakatMetadata != nil &&
			item.ZakatMetadata.HawlID == cycle.HawlID &&
			item.ZakatMetadata.AssetValue.Equal(cycle.CurrentAssets)
	})).Return(&domain.BudgetItem{
		ItemID: uuid.NewString(),
		UserID: suite.userID,
		Kind:   domain.BudgetKindZakat,
		Name:   fmt.Sprintf("Zakat %d", expectedYear),
		Year:   expectedYear,
	}, nil)

	item, err := suite.service.CreateZakatBudgetForCurrentHawl(context.Background(), suite.userID)

	suite.Require().NoError(err)
	suite.NotEmpty(item.ItemID)
	suite.Equal(fmt.Sprintf("Zakat %d", expectedYear), item.Name)
	suite.mockStore.AssertExpectations(suite.T())
}

func (suite *BudgetSyncServiceTestSuite) TestUpcomingYearsContinuesPastFailures() {
	cycle := suite.cycleAboveNisab()
	suite.mockHawlSvc.On("GetCurrentCycle", mock.Anything, suite.userID).Return(cycle, nil)
	suite.mockStore.On("FetchBudgetItems", mock.Anything, suite.userID).Return([]domain.BudgetItem{}, nil)

	storeDown := errors.New("store unavailable")
	suite.mockStore.On("AddBudgetItem", mock.Anything, mock.MatchedBy(func(item domain.BudgetItem) bool {
		return item.Year == 2027
	})).Return(nil, storeDown)
	created := suite.zakatItem(2026)
	suite.mockStore.On("AddBudgetItem", mock.Anything, mock.MatchedBy(func(item domain.BudgetItem) bool {
		return item.Year != 2027
	})).Return(&created, nil)

	results, err := suite.service.CreateZakatBudgetForUpcomingYears(context.Background(), suite.userID, 3)

	suite.Require().NoError(err)
	suite.Require().Len(results, 3)
	suite.Equal(2026, results[0].Year)
	suite.NotNil(results[0].Item)
	suite.Equal(2027, results[1].Year)
	suite.Nil(results[1].Item)
	suite.Contains(results[1].Error, "store unavailable")
	suite.Equal(2028, results[2].Year)
	suite.NotNil(results[2].Item)
}

func (suite *BudgetSyncServiceTestSuite) TestUpcomingYearsCompoundsGrowth() {
	cycle := suite.cycleAboveNisab()
	suite.mockHawlSvc.On("GetCurrentCycle", mock.Anything, suite.userID).Return(cycle, nil)
	suite.mockStore.On("FetchBudgetItems", mock.Anything, suite.userID).Return([]domain.BudgetItem{}, nil)

	created := suite.zakatItem(2026)
	var amounts []decimal.Decimal
	suite.mockStore.On("AddBudgetItem", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		item := args.Get(1).(domain.BudgetItem)
		amounts = append(amounts, item.PlannedAmounts[12])
	}).Return(&created, nil)

	results, err := suite.service.CreateZakatBudgetForUpcomingYears(context.Background(), suite.userID, 2)

	suite.Require().NoError(err)
	suite.Require().Len(results, 2)
	suite.Require().Len(amounts, 2)
	// 300000 x 1.05 x 0.025, then 300000 x 1.05^2 x 0.025.
	suite.True(decimal.NewFromInt(7875).Equal(amounts[0]), "got %s", amounts[0])
	suite.True(decimal.NewFromFloat(8268.75).Equal(amounts[1]), "got %s", amounts[1])
}

func (suite *BudgetSyncServiceTestSuite) TestMarkZakatAsPaidFillsHawlIDFromMetadata() {
	item := suite.zakatItem(2025)
	suite.mockStore.On("FetchBudgetItems", mock.Anything, suite.userID).Return([]domain.BudgetItem{item}, nil)

	updated := item
	updated.ActualAmounts = map[int]decimal.Decimal{3: decimal.NewFromInt(7500)}
	suite.mockStore.On("UpdateBudgetItem", mock.Anything, item.ItemID, mock.MatchedBy(func(u domain.BudgetItemUpdates) bool {
		actual, ok := u.ActualAmounts[int(suite.now.Month())]
		return ok && actual.Equal(decimal.NewFromInt(7500)) && u.DueDate != nil && u.DueDate.Equal(suite.now)
	})).Return(&updated, nil)

	suite.mockPaymentSvc.On("CreatePayment", mock.Anything, suite.userID, mock.MatchedBy(func(req dto.CreatePaymentRequest) bool {
		return req.HawlID == item.ZakatMetadata.HawlID && req.Amount.Equal(decimal.NewFromInt(7500))
	})).Return(&domain.Payment{PaymentID: uuid.NewString()}, nil)

	got, err := suite.service.MarkZakatAsPaid(context.Background(), suite.userID, item.ItemID, dto.CreatePaymentRequest{
		Amount: decimal.NewFromInt(7500),
		Method: "BANK_TRANSFER",
	})

	suite.Require().NoError(err)
	suite.Equal(updated.ItemID, got.ItemID)
	suite.mockPaymentSvc.AssertExpectations(suite.T())
}

func (suite *BudgetSyncServiceTestSuite) TestMarkZakatAsPaidUnknownItem() {
	suite.mockStore.On("FetchBudgetItems", mock.Anything, suite.userID).Return([]domain.BudgetItem{}, nil)

	got, err := suite.service.MarkZakatAsPaid(context.Background(), suite.userID, uuid.NewString(), dto.CreatePaymentRequest{
		Amount: decimal.NewFromInt(100),
		Method: "CASH",
	})

	suite.Nil(got)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockStore.AssertNotCalled(suite.T(), "UpdateBudgetItem", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BudgetSyncServiceTestSuite) TestSyncFiltersToZakatItems() {
	generic := domain.BudgetItem{ItemID: uuid.NewString(), UserID: suite.userID, Kind: domain.BudgetKindGeneric, Name: "Groceries", Category: "Food", Year: 2025}
	zakat := suite.zakatItem(2025)
	legacy := domain.BudgetItem{ItemID: uuid.NewString(), UserID: suite.userID, Kind: domain.BudgetKindGeneric, Name: "Annual zakat", Category: "Charity", Year: 2024}
	suite.mockStore.On("FetchBudgetItems", mock.Anything, suite.userID).Return([]domain.BudgetItem{generic, zakat, legacy}, nil)

	items, err := suite.service.SyncWithBudgetStore(context.Background(), suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(items, 2)
	suite.Equal(zakat.ItemID, items[0].ItemID)
	suite.Equal(legacy.ItemID, items[1].ItemID)
}

func (suite *BudgetSyncServiceTestSuite) TestListZakatItemsUsesCacheAfterSync() {
	zakat := suite.zakatItem(2025)
	suite.mockStore.On("FetchBudgetItems", mock.Anything, suite.userID).Return([]domain.BudgetItem{zakat}, nil).Once()

	_, err := suite.service.SyncWithBudgetStore(context.Background(), suite.userID)
	suite.Require().NoError(err)

	items, err := suite.service.ListZakatItems(context.Background(), suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(items, 1)
	suite.mockStore.AssertNumberOfCalls(suite.T(), "FetchBudgetItems", 1)
}

func (suite *BudgetSyncServiceTestSuite) TestSyncWrapsStoreFailure() {
	suite.mockStore.On("FetchBudgetItems", mock.Anything, suite.userID).Return(nil, errors.New("connection refused"))

	items, err := suite.service.SyncWithBudgetStore(context.Background(), suite.userID)

	suite.Nil(items)
	suite.ErrorIs(err, apperrors.ErrExternalService)
}

func TestBudgetSyncService(t *testing.T) {
	suite.Run(t, new(BudgetSyncServiceTestSuite))
}
