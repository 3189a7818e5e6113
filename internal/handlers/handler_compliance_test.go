package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hawltrack/zakat_engine_app/internal/apperrors"
	"github.com/hawltrack/zakat_engine_app/internal/core/domain"
	portssvc "github.com/hawltrack/zakat_engine_app/internal/core/ports/services"
	"github.com/hawltrack/zakat_engine_app/internal/core/services"
	"github.com/hawltrack/zakat_engine_app/internal/dto"
	"github.com/hawltrack/zakat_engine_app/internal/handlers"
	"github.com/hawltrack/zakat_engine_app/internal/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock HawlService ---
type MockHawlService struct {
	mock.Mock
}

// Ensure mock implements the interface
var _ portssvc.HawlSvcFacade = (*MockHawlService)(nil)

func (m *MockHawlService) GetCurrentCycle(ctx context.Context, userID string) (*domain.HawlCycle, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HawlCycle), args.Error(1)
}

func (m *MockHawlService) ListHistory(ctx context.Context, userID string, limit int) ([]domain.HawlCycle, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HawlCycle), args.Error(1)
}

func (m *MockHawlService) ListSnapshots(ctx context.Context, userID string) ([]domain.AssetSnapshot, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AssetSnapshot), args.Error(1)
}

func (m *MockHawlService) Progress(ctx context.Context, userID string) (*dto.HawlProgressResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.HawlProgressResponse), args.Error(1)
}

func (m *MockHawlService) CreateCycle(ctx context.Context, userID string, req dto.CreateHawlRequest) (*domain.HawlCycle, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HawlCycle), args.Error(1)
}

func (m *MockHawlService) RecordAssetUpdate(ctx context.Context, userID string, newValue decimal.Decimal, reason string) (*domain.HawlCycle, error) {
	args := m.Called(ctx, userID, newValue, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HawlCycle), args.Error(1)
}

func (m *MockHawlService) RecomputeStatus(ctx context.Context, userID string) (*domain.HawlCycle, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HawlCycle), args.Error(1)
}

func (m *MockHawlService) ArchiveAsPaid(ctx context.Context, userID string, paymentData domain.PreviousPaymentData) (*domain.HawlCycle, error) {
	args := m.Called(ctx, userID, paymentData)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HawlCycle), args.Error(1)
}

func (m *MockHawlService) RestartCycle(ctx context.Context, userID string, newAssetValue decimal.Decimal, previous *domain.PreviousPaymentData) (*domain.HawlCycle, error) {
	args := m.Called(ctx, userID, newAssetValue, previous)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HawlCycle), args.Error(1)
}

// --- Test Suite ---
type ComplianceHandlerTestSuite struct {
	suite.Suite
	router          *gin.Engine
	mockHawlService *MockHawlService
	userID          string
}

func (suite *ComplianceHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.userID = uuid.NewString()

	suite.mockHawlService = new(MockHawlService)

	v1 := suite.router.Group("/api/v1", middleware.UserScopeMiddleware())
	handlers.RegisterComplianceRoutes(v1, services.NewComplianceService())
	handlers.RegisterHawlRoutes(v1, suite.mockHawlService)
}

// perform issues a request with the user scope header set.
func (suite *ComplianceHandlerTestSuite) perform(method, url string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			suite.FailNow("Failed to encode request body", err.Error())
		}
	}

	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("X-User-ID", suite.userID)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *ComplianceHandlerTestSuite) TestListSchools_Success() {
	w := suite.perform(http.MethodGet, "/api/v1/schools", nil)

	suite.Equal(http.StatusOK, w.Code)

	var schools []dto.SchoolResponse
	err := json.Unmarshal(w.Body.Bytes(), &schools)
	suite.Require().NoError(err, "Failed to unmarshal response body")
	suite.Require().Len(schools, 4)
	suite.Equal("HANAFI", schools[0].School)
	suite.Equal("SILVER", schools[0].MetalPreference)
	suite.True(schools[0].ZakatRate.Equal(decimal.NewFromFloat(0.025)))
}

func (suite *ComplianceHandlerTestSuite) TestGetSchool_Unknown() {
	w := suite.perform(http.MethodGet, "/api/v1/schools/JAFARI", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *ComplianceHandlerTestSuite) TestValidateSchools_CleanRegistry() {
	w := suite.perform(http.MethodGet, "/api/v1/schools/validate", nil)

	suite.Equal(http.StatusOK, w.Code)

	var report dto.ValidationReportResponse
	err := json.Unmarshal(w.Body.Bytes(), &report)
	suite.Require().NoError(err)
	suite.True(report.Valid)
	suite.Len(report.Violations, 4)
}

func (suite *ComplianceHandlerTestSuite) TestMissingUserHeader_Rejected() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/schools", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *ComplianceHandlerTestSuite) TestGetCurrentCycle_Success() {
	start := time.Date(2024, time.September, 21, 0, 0, 0, 0, time.UTC)
	cycle := &domain.HawlCycle{
		HawlID:                   uuid.NewString(),
		UserID:                   suite.userID,
		Status:                   domain.HawlActive,
		StartDate:                start,
		EndDate:                  start.AddDate(0, 0, domain.HawlDurationDays),
		InitialAssets:            decimal.NewFromInt(300000),
		CurrentAssets:            decimal.NewFromInt(300000),
		NisabThresholdAtCreation: decimal.NewFromInt(26775),
		ContinuousAboveNisab:     true,
	}
	suite.mockHawlService.On("GetCurrentCycle", mock.Anything, suite.userID).Return(cycle, nil).Once()

	w := suite.perform(http.MethodGet, "/api/v1/hawl/current", nil)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.HawlResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	suite.Require().NoError(err)
	suite.Equal(cycle.HawlID, resp.HawlID)
	suite.Equal(string(domain.HawlActive), resp.Status)
	suite.mockHawlService.AssertExpectations(suite.T())
}

func (suite *ComplianceHandlerTestSuite) TestGetCurrentCycle_NotFound() {
	suite.mockHawlService.On("GetCurrentCycle", mock.Anything, suite.userID).
		Return(nil, fmt.Errorf("%w: no current cycle", apperrors.ErrNotFound)).Once()

	w := suite.perform(http.MethodGet, "/api/v1/hawl/current", nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *ComplianceHandlerTestSuite) TestCreateCycle_Conflict() {
	suite.mockHawlService.On("CreateCycle", mock.Anything, suite.userID, mock.Anything).
		Return(nil, fmt.Errorf("%w: a current cycle already exists", apperrors.ErrDomainRule)).Once()

	w := suite.perform(http.MethodPost, "/api/v1/hawl", dto.CreateHawlRequest{
		InitialAssets:  decimal.NewFromInt(300000),
		NisabThreshold: decimal.NewFromInt(26775),
	})

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *ComplianceHandlerTestSuite) TestCreateCycle_MalformedBody() {
	w := suite.perform(http.MethodPost, "/api/v1/hawl", map[string]string{"initialAssets": "not-a-number"})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockHawlService.AssertNotCalled(suite.T(), "CreateCycle", mock.Anything, mock.Anything, mock.Anything)
}

func TestComplianceHandler(t *testing.T) {
	suite.Run(t, new(ComplianceHandlerTestSuite))
}
