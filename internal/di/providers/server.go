package providers

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/do/v2"

	"github.com/vitrinelab/vitrine/internal/api"
	"github.com/vitrinelab/vitrine/internal/config"
	"github.com/vitrinelab/vitrine/internal/logger"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	api *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	// Background analyses hold drafts; stop them after the last request.
	h.api.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	tax := do.MustInvoke[*TaxonomyHandle](i)
	registry := do.MustInvoke[*DraftRegistryHandle](i)
	backend := do.MustInvoke[*CatalogHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	reg := do.MustInvoke[*prometheus.Registry](i)

	services := &api.Services{
		Taxonomy: tax.Resolver,
		Drafts:   registry.Registry,
		Catalog:  backend.Client,
		Events:   sseHandle.Manager,
		Gatherer: reg,
	}

	handler := api.NewServer(services, api.Options{
		CORSOrigins:      cfg.Server.CORSOrigins,
		MaxImages:        cfg.Analysis.MaxImages,
		MaxImageBytes:    cfg.Analysis.MaxImageBytes,
		UploadsPerMinute: cfg.Analysis.UploadsPerMinute,
	}, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv, api: handler}, nil
}
