package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/vitrinelab/vitrine/internal/config"
	"github.com/vitrinelab/vitrine/internal/logger"
	"github.com/vitrinelab/vitrine/internal/taxonomy"
)

// TaxonomyHandle wraps the resolver and, when a file is watched, its reloader.
type TaxonomyHandle struct {
	*taxonomy.Resolver
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (h *TaxonomyHandle) Shutdown() error {
	if h.cancel != nil {
		h.cancel()
		<-h.done
	}
	return h.Resolver.Close()
}

// ProvideTaxonomy provides the taxonomy resolver. The built-in tree is used
// unless a file is configured.
func ProvideTaxonomy(i do.Injector) (*TaxonomyHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Taxonomy.Path == "" {
		resolver, err := taxonomy.NewDefaultResolver(log.Logger)
		if err != nil {
			return nil, err
		}
		log.Info("Taxonomy loaded", "source", "built-in", "types", len(resolver.Types()))
		return &TaxonomyHandle{Resolver: resolver}, nil
	}

	tree, err := taxonomy.LoadFile(cfg.Taxonomy.Path)
	if err != nil {
		return nil, err
	}
	resolver, err := taxonomy.NewResolver(tree, log.Logger)
	if err != nil {
		return nil, err
	}
	log.Info("Taxonomy loaded", "source", cfg.Taxonomy.Path, "types", len(resolver.Types()))

	handle := &TaxonomyHandle{Resolver: resolver}
	if !cfg.Taxonomy.Watch {
		return handle, nil
	}

	reloader := taxonomy.NewReloader(cfg.Taxonomy.Path, resolver, log.Logger)
	ctx, cancel := context.WithCancel(context.Background())
	handle.cancel = cancel
	handle.done = make(chan struct{})

	// Start in background
	go func() {
		defer close(handle.done)
		if err := reloader.Run(ctx); err != nil {
			log.Error("Taxonomy watcher stopped", "error", err)
		}
	}()

	return handle, nil
}
