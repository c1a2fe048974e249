package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/vitrinelab/vitrine/internal/analysis"
	"github.com/vitrinelab/vitrine/internal/config"
	"github.com/vitrinelab/vitrine/internal/drafts"
	"github.com/vitrinelab/vitrine/internal/form"
	"github.com/vitrinelab/vitrine/internal/logger"
	"github.com/vitrinelab/vitrine/internal/validation"
)

// DraftRegistryHandle wraps the draft registry and its sweeper.
type DraftRegistryHandle struct {
	*drafts.Registry
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *DraftRegistryHandle) Shutdown() error {
	h.cancel()
	h.Stop()
	return nil
}

// ProvideDraftRegistry provides the in-memory draft registry. Every draft gets
// its own session and orchestrator over the shared taxonomy and backend.
func ProvideDraftRegistry(i do.Injector) (*DraftRegistryHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	tax := do.MustInvoke[*TaxonomyHandle](i)
	backend := do.MustInvoke[*CatalogHandle](i)
	metrics := do.MustInvoke[*analysis.Metrics](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	v := validation.New()
	factory := func() (*form.Session, *analysis.Orchestrator) {
		return form.NewSession(tax.Resolver, v), analysis.New(backend.Client, log.Logger, metrics)
	}

	registry := drafts.NewRegistry(factory, drafts.Options{
		IdleTTL:       cfg.Drafts.IdleTTL,
		SweepInterval: cfg.Drafts.SweepInterval,
		Logger:        log.Logger,
		OnEvict: func(id string) {
			sseHandle.DisconnectDraft(id)
		},
	})

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go registry.Run(ctx)

	log.Info("Draft registry started",
		"idle_ttl", cfg.Drafts.IdleTTL,
		"sweep_interval", cfg.Drafts.SweepInterval,
	)

	return &DraftRegistryHandle{Registry: registry, cancel: cancel}, nil
}
