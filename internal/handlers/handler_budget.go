package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hawltrack/zakat_engine_app/internal/apperrors"
	portssvc "github.com/hawltrack/zakat_engine_app/internal/core/ports/services"
	"github.com/hawltrack/zakat_engine_app/internal/dto"
	"github.com/hawltrack/zakat_engine_app/internal/middleware"
)

// budgetHandler handles HTTP requests for zakat budget projection.
type budgetHandler struct {
	budgetService portssvc.BudgetSyncSvcFacade
}

func newBudgetHandler(bs portssvc.BudgetSyncSvcFacade) *budgetHandler {
	return &budgetHandler{budgetService: bs}
}

// registerBudgetRoutes registers routes related to the budget store sync.
func registerBudgetRoutes(rg *gin.RouterGroup, budgetService portssvc.BudgetSyncSvcFacade) {
	h := newBudgetHandler(budgetService)

	budget := rg.Group("/budget")
	{
		budget.GET("/zakat", h.listZakatItems)
		budget.POST("/zakat", h.createZakatItem)
		budget.POST("/zakat/current", h.createFromCurrentHawl)
		budget.POST("/zakat/projections", h.projectUpcomingYears)
		budget.POST("/zakat/:itemID/pay", h.markZakatPaid)
		budget.POST("/sync", h.syncWithStore)
	}
}

func (h *budgetHandler) listZakatItems(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	items, err := h.budgetService.ListZakatItems(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrExternalService) {
			logger.Error("Budget store unavailable", slog.String("error", err.Error()))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Budget store unavailable"})
		} else {
			logger.Error("Failed to list zakat budget items", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list zakat budget items"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToListBudgetItemResponse(items))
}

func (h *budgetHandler) createZakatItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.CreateZakatBudgetItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateZakatItem", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	item, err := h.budgetService.CreateZakatBudgetItem(c.Request.Context(), userID, req.Year, req.Amount, nil)
	if err != nil {
		h.respondBudgetError(c, logger, err, "Failed to create zakat budget item")
		return
	}

	logger.Info("Zakat budget item created", slog.Int("year", req.Year))
	c.JSON(http.StatusCreated, dto.ToBudgetItemResponse(item))
}

func (h *budgetHandler) createFromCurrentHawl(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	item, err := h.budgetService.CreateZakatBudgetForCurrentHawl(c.Request.Context(), userID)
	if err != nil {
		h.respondBudgetError(c, logger, err, "Failed to create zakat budget item from current cycle")
		return
	}

	logger.Info("Zakat budget item created from current cycle", slog.String("item_id", item.ItemID))
	c.JSON(http.StatusCreated, dto.ToBudgetItemResponse(item))
}

// projectUpcomingYears runs the best-effort multi-year projection. Per-year
// failures appear inline in the result list; the endpoint itself succeeds.
func (h *budgetHandler) projectUpcomingYears(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.ProjectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for projection", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	results, err := h.budgetService.CreateZakatBudgetForUpcomingYears(c.Request.Context(), userID, req.Years)
	if err != nil {
		h.respondBudgetError(c, logger, err, "Failed to project zakat obligations")
		return
	}

	c.JSON(http.StatusOK, results)
}

func (h *budgetHandler) markZakatPaid(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	itemID := c.Param("itemID")

	var req dto.MarkZakatPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for MarkZakatPaid", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	item, err := h.budgetService.MarkZakatAsPaid(c.Request.Context(), userID, itemID, req.ToCreatePaymentRequest())
	if err != nil {
		h.respondBudgetError(c, logger, err, "Failed to mark zakat as paid")
		return
	}

	logger.Info("Zakat budget item settled", slog.String("item_id", itemID))
	c.JSON(http.StatusOK, dto.ToBudgetItemResponse(item))
}

func (h *budgetHandler) syncWithStore(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	items, err := h.budgetService.SyncWithBudgetStore(c.Request.Context(), userID)
	if err != nil {
		h.respondBudgetError(c, logger, err, "Failed to sync with budget store")
		return
	}

	logger.Info("Budget store sync completed", slog.Int("zakat_items", len(items)))
	c.JSON(http.StatusOK, dto.ToListBudgetItemResponse(items))
}

// respondBudgetError maps budget sync failures to HTTP responses.
func (h *budgetHandler) respondBudgetError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrDomainRule) {
		logger.Warn("Budget rule rejected request", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrExternalService) {
		logger.Error("Budget store unavailable", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Budget store unavailable"})
	} else {
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
