package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/do/v2"

	"github.com/vitrinelab/vitrine/internal/analysis"
	"github.com/vitrinelab/vitrine/internal/catalog"
	"github.com/vitrinelab/vitrine/internal/config"
	"github.com/vitrinelab/vitrine/internal/logger"
)

// CatalogHandle wraps the catalog backend client with shutdown capability.
type CatalogHandle struct {
	*catalog.Client
}

// Shutdown implements do.Shutdownable.
func (h *CatalogHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideCatalogClient provides the rate-limited catalog backend client.
func ProvideCatalogClient(i do.Injector) (*CatalogHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := catalog.New(catalog.Options{
		BaseURL:           cfg.Backend.BaseURL,
		Timeout:           cfg.Backend.Timeout,
		RequestsPerSecond: cfg.Backend.RequestsPerSecond,
		Burst:             cfg.Backend.Burst,
		Logger:            log.Logger,
	})

	log.Info("Catalog client ready",
		"base_url", cfg.Backend.BaseURL,
		"timeout", cfg.Backend.Timeout,
		"rps", cfg.Backend.RequestsPerSecond,
	)

	return &CatalogHandle{Client: client}, nil
}

// ProvideMetricsRegistry provides the Prometheus registry served on /metrics.
func ProvideMetricsRegistry(i do.Injector) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}
	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, err
	}
	return reg, nil
}

// ProvideAnalysisMetrics provides the collectors shared by every draft's orchestrator.
func ProvideAnalysisMetrics(i do.Injector) (*analysis.Metrics, error) {
	reg := do.MustInvoke[*prometheus.Registry](i)
	return analysis.NewMetrics(reg)
}
