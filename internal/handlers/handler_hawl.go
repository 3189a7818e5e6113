package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hawltrack/zakat_engine_app/internal/apperrors"
	portssvc "github.com/hawltrack/zakat_engine_app/internal/core/ports/services"
	"github.com/hawltrack/zakat_engine_app/internal/dto"
	"github.com/hawltrack/zakat_engine_app/internal/middleware"
)

// hawlHandler handles HTTP requests for the hawl cycle state machine.
type hawlHandler struct {
	hawlService portssvc.HawlSvcFacade
}

func newHawlHandler(hs portssvc.HawlSvcFacade) *hawlHandler {
	return &hawlHandler{hawlService: hs}
}

// RegisterHawlRoutes registers routes related to hawl cycles.
func RegisterHawlRoutes(rg *gin.RouterGroup, hawlService portssvc.HawlSvcFacade) {
	h := newHawlHandler(hawlService)

	hawl := rg.Group("/hawl")
	{
		hawl.POST("", h.createCycle)
		hawl.GET("/current", h.getCurrentCycle)
		hawl.GET("/current/progress", h.getProgress)
		hawl.POST("/assets", h.recordAssets)
		hawl.POST("/recompute", h.recomputeStatus)
		hawl.POST("/restart", h.restartCycle)
		hawl.GET("/history", h.listHistory)
		hawl.GET("/snapshots", h.listSnapshots)
	}
}

func (h *hawlHandler) createCycle(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.CreateHawlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateCycle", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	cycle, err := h.hawlService.CreateCycle(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, apperrors.ErrDomainRule) {
			logger.Warn("Cycle creation rejected", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrExternalService) {
			logger.Error("Calendar service failure during cycle creation", slog.String("error", err.Error()))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Calendar service unavailable"})
		} else {
			logger.Error("Failed to create hawl cycle", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create hawl cycle"})
		}
		return
	}

	logger.Info("Hawl cycle created", slog.String("hawl_id", cycle.HawlID))
	c.JSON(http.StatusCreated, dto.ToHawlResponse(cycle))
}

func (h *hawlHandler) getCurrentCycle(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	cycle, err := h.hawlService.GetCurrentCycle(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No current hawl cycle"})
		} else {
			logger.Error("Failed to fetch current cycle", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch current cycle"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToHawlResponse(cycle))
}

func (h *hawlHandler) getProgress(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	progress, err := h.hawlService.Progress(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No current hawl cycle"})
		} else if errors.Is(err, apperrors.ErrExternalService) {
			logger.Error("Calendar service failure during progress check", slog.String("error", err.Error()))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Calendar service unavailable"})
		} else {
			logger.Error("Failed to compute hawl progress", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute hawl progress"})
		}
		return
	}

	c.JSON(http.StatusOK, progress)
}

func (h *hawlHandler) recordAssets(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.RecordAssetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RecordAssets", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	cycle, err := h.hawlService.RecordAssetUpdate(c.Request.Context(), userID, req.TotalAssets, req.Reason)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No current hawl cycle"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to record asset update", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record asset update"})
		}
		return
	}

	logger.Info("Asset update recorded",
		slog.String("hawl_id", cycle.HawlID),
		slog.String("status", string(cycle.Status)))
	c.JSON(http.StatusOK, dto.ToHawlResponse(cycle))
}

func (h *hawlHandler) recomputeStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	cycle, err := h.hawlService.RecomputeStatus(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No current hawl cycle"})
		} else {
			logger.Error("Failed to recompute cycle status", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to recompute cycle status"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToHawlResponse(cycle))
}

func (h *hawlHandler) restartCycle(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.RestartHawlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RestartCycle", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	cycle, err := h.hawlService.RestartCycle(c.Request.Context(), userID, req.NewAssetValue, nil)
	if err != nil {
		if errors.Is(err, apperrors.ErrDomainRule) {
			logger.Warn("Cycle restart rejected", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrExternalService) {
			logger.Error("Calendar service failure during restart", slog.String("error", err.Error()))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Calendar service unavailable"})
		} else {
			logger.Error("Failed to restart hawl cycle", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to restart hawl cycle"})
		}
		return
	}

	logger.Info("Hawl cycle restarted", slog.String("hawl_id", cycle.HawlID))
	c.JSON(http.StatusCreated, dto.ToHawlResponse(cycle))
}

func (h *hawlHandler) listHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}

	cycles, err := h.hawlService.ListHistory(c.Request.Context(), userID, limit)
	if err != nil {
		logger.Error("Failed to list hawl history", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list hawl history"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListHawlResponse(cycles))
}

func (h *hawlHandler) listSnapshots(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	snapshots, err := h.hawlService.ListSnapshots(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to list asset snapshots", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list asset snapshots"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListSnapshotResponse(snapshots))
}
