package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hawltrack/zakat_engine_app/internal/apperrors"
	"github.com/hawltrack/zakat_engine_app/internal/core/domain"
	portssvc "github.com/hawltrack/zakat_engine_app/internal/core/ports/services"
	"github.com/hawltrack/zakat_engine_app/internal/dto"
	"github.com/hawltrack/zakat_engine_app/internal/middleware"
)

// complianceHandler handles HTTP requests for the per-school rule tables.
type complianceHandler struct {
	complianceService portssvc.ComplianceSvcFacade
}

func newComplianceHandler(cs portssvc.ComplianceSvcFacade) *complianceHandler {
	return &complianceHandler{complianceService: cs}
}

// RegisterComplianceRoutes registers routes related to compliance profiles.
func RegisterComplianceRoutes(rg *gin.RouterGroup, complianceService portssvc.ComplianceSvcFacade) {
	h := newComplianceHandler(complianceService)

	schools := rg.Group("/schools")
	{
		schools.GET("", h.listSchools)
		schools.GET("/validate", h.validateAllSchools)
		schools.GET("/:school", h.getSchool)
	}
}

func (h *complianceHandler) listSchools(c *gin.Context) {
	profiles := h.complianceService.ListSchools()
	c.JSON(http.StatusOK, dto.ToListSchoolResponse(profiles))
}

func (h *complianceHandler) getSchool(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	school := domain.School(c.Param("school"))

	profile, err := h.complianceService.ResolveProfile(school)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Unknown school requested", slog.String("school", string(school)))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to resolve school profile", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve school profile"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToSchoolResponse(profile))
}

// validateAllSchools reports rule violations across the whole registry.
// Violations are reported, never thrown; a clean registry yields valid=true.
func (h *complianceHandler) validateAllSchools(c *gin.Context) {
	bySchool := h.complianceService.ValidateAllProfiles()

	violations := make(map[string][]domain.Violation, len(bySchool))
	valid := true
	for school, list := range bySchool {
		if len(list) > 0 {
			valid = false
		}
		violations[string(school)] = list
	}

	c.JSON(http.StatusOK, dto.ValidationReportResponse{
		Valid:      valid,
		Violations: violations,
	})
}
