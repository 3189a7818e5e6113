package handlers

import (
	"github.com/gin-gonic/gin"
	portssvc "github.com/hawltrack/zakat_engine_app/internal/core/ports/services"
	"github.com/hawltrack/zakat_engine_app/internal/middleware"
	"github.com/hawltrack/zakat_engine_app/internal/platform/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	registerHomeRoutes(r)

	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Every v1 route is scoped to the caller identified by the X-User-ID header
	v1 := r.Group("/api/v1", middleware.UserScopeMiddleware())

	RegisterComplianceRoutes(v1, services.Compliance)
	registerNisabRoutes(v1, services.Nisab, services.Compliance)
	RegisterHawlRoutes(v1, services.Hawl)
	registerPaymentRoutes(v1, services.Payment)
	registerBudgetRoutes(v1, services.BudgetSync)
}
