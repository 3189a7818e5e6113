package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hawltrack/zakat_engine_app/internal/apperrors"
	"github.com/hawltrack/zakat_engine_app/internal/core/domain"
	portssvc "github.com/hawltrack/zakat_engine_app/internal/core/ports/services"
	"github.com/hawltrack/zakat_engine_app/internal/dto"
	"github.com/hawltrack/zakat_engine_app/internal/middleware"
)

// nisabHandler handles HTTP requests for threshold computation and the
// manually supplied price cache.
type nisabHandler struct {
	nisabService      portssvc.NisabSvcFacade
	complianceService portssvc.ComplianceSvcFacade
}

func newNisabHandler(ns portssvc.NisabSvcFacade, cs portssvc.ComplianceSvcFacade) *nisabHandler {
	return &nisabHandler{nisabService: ns, complianceService: cs}
}

// registerNisabRoutes registers routes related to nisab thresholds.
func registerNisabRoutes(rg *gin.RouterGroup, nisabService portssvc.NisabSvcFacade, complianceService portssvc.ComplianceSvcFacade) {
	h := newNisabHandler(nisabService, complianceService)

	nisab := rg.Group("/nisab")
	{
		nisab.POST("/prices", h.storePrices)
		nisab.GET("/prices", h.latestPrices)
		nisab.POST("/compute", h.computeNisab)
	}
}

func (h *nisabHandler) storePrices(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.StorePricesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for StorePrices", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	snapshot := req.ToPriceSnapshot(time.Now().UTC())
	if err := h.nisabService.StorePrices(c.Request.Context(), snapshot); err != nil {
		logger.Error("Failed to store metal prices", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store metal prices"})
		return
	}

	logger.Info("Metal prices stored")
	c.JSON(http.StatusCreated, dto.ToPricesResponse(snapshot))
}

func (h *nisabHandler) latestPrices(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	snapshot, err := h.nisabService.LatestPrices(c.Request.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No metal prices cached yet"})
		} else {
			logger.Error("Failed to fetch cached prices", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cached prices"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToPricesResponse(*snapshot))
}

// computeNisab computes the threshold for a school. Explicit prices in the
// request bypass the cache; otherwise the cached snapshot feeds the
// computation, degrading to the fixed fallback when nothing is cached.
func (h *nisabHandler) computeNisab(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ComputeNisabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ComputeNisab", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	school := domain.School(req.School)
	method := domain.NisabMethod(req.Method)

	var result *domain.NisabResult
	if req.GoldPricePerGram != nil || req.SilverPricePerGram != nil {
		profile, err := h.complianceService.ResolveProfile(school)
		if err != nil {
			logger.Warn("Unknown school in nisab computation", slog.String("school", req.School))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		snapshot := domain.PriceSnapshot{CapturedAt: time.Now().UTC()}
		if req.GoldPricePerGram != nil {
			snapshot.GoldPricePerGram = *req.GoldPricePerGram
		}
		if req.SilverPricePerGram != nil {
			snapshot.SilverPricePerGram = *req.SilverPricePerGram
		}
		r := h.nisabService.ComputeNisab(snapshot, *profile, method)
		result = &r
	} else {
		r, err := h.nisabService.ComputeForSchool(c.Request.Context(), school, method)
		if err != nil {
			if errors.Is(err, apperrors.ErrValidation) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			} else {
				logger.Error("Failed to compute nisab", slog.String("error", err.Error()))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute nisab"})
			}
			return
		}
		result = r
	}

	logger.Info("Nisab computed",
		slog.String("school", req.School),
		slog.String("source", string(result.Source)))
	c.JSON(http.StatusOK, dto.ToNisabResponse(*result, school, time.Now().UTC()))
}
