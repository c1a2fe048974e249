// Package providers contains dependency injection providers for the Vitrine server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/vitrinelab/vitrine/internal/config"
	"github.com/vitrinelab/vitrine/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
		Service:     "vitrine",
	})

	log.Info("Starting Vitrine Server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"backend_url", cfg.Backend.BaseURL,
		"taxonomy_path", cfg.Taxonomy.Path,
	)

	return log, nil
}
