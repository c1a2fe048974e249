// Package di provides dependency injection configuration for the Vitrine server.
package di

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/do/v2"

	"github.com/vitrinelab/vitrine/internal/analysis"
	"github.com/vitrinelab/vitrine/internal/config"
	"github.com/vitrinelab/vitrine/internal/di/providers"
	"github.com/vitrinelab/vitrine/internal/logger"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideMetricsRegistry)

	// Reference data
	do.Provide(injector, providers.ProvideTaxonomy)

	// Catalog backend
	do.Provide(injector, providers.ProvideCatalogClient)
	do.Provide(injector, providers.ProvideAnalysisMetrics)

	// Drafts and events
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideDraftRegistry)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*prometheus.Registry](injector)

	if _, err := do.Invoke[*providers.TaxonomyHandle](injector); err != nil {
		return err
	}

	_ = do.MustInvoke[*providers.CatalogHandle](injector)
	if _, err := do.Invoke[*analysis.Metrics](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.DraftRegistryHandle](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
