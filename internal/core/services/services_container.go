package services

import (
	"github.com/hawltrack/zakat_engine_app/internal/core/ports/providers"
	portsrepo "github.com/hawltrack/zakat_engine_app/internal/core/ports/repositories"
	portssvc "github.com/hawltrack/zakat_engine_app/internal/core/ports/services"
	"github.com/hawltrack/zakat_engine_app/internal/platform/config"
)

// ProviderSet holds the external collaborators needed by services.
type ProviderSet struct {
	Calendar    providers.IslamicCalendarProvider
	BudgetStore providers.BudgetStore
	PriceCache  providers.PriceCache
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, ext ProviderSet) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Compliance first since the nisab calculator depends on it
	container.Compliance = NewComplianceService()
	container.Nisab = NewNisabService(container.Compliance, ext.PriceCache, cfg.NisabFallbackValue)

	container.Hawl = NewHawlService(repos.HawlRepo, repos.SnapshotRepo, ext.Calendar)
	container.Payment = NewPaymentService(repos.PaymentRepo, container.Hawl)
	container.BudgetSync = NewBudgetSyncService(ext.BudgetStore, container.Hawl, container.Payment, cfg.AssetGrowthRate)

	return container
}
