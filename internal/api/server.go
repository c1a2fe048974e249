// Package api exposes the configuration engine over HTTP: taxonomy lookups,
// draft editing, image analysis, submission and the product list.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vitrinelab/vitrine/internal/validation"
)

// Options tunes the HTTP surface.
type Options struct {
	CORSOrigins      []string
	MaxImages        int
	MaxImageBytes    int64
	UploadsPerMinute int // 0 disables upload rate limiting
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services  *Services
	router    chi.Router
	api       huma.API
	logger    *slog.Logger
	validator *validation.Validator
	opts      Options

	uploadLimiter *RateLimiter

	// Background analyses started with async=true run under ctx.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxImages <= 0 {
		opts.MaxImages = DefaultMaxImages
	}
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = MaxImageSize
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	humaConfig := huma.DefaultConfig("Vitrine API", "1.0.0")
	humaConfig.Info.Description = "Product configuration service: taxonomy, drafts, image analysis and submission."
	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		services:  services,
		router:    router,
		api:       api,
		logger:    logger,
		validator: validation.New(),
		opts:      opts,
		ctx:       ctx,
		cancel:    cancel,
	}
	if opts.UploadsPerMinute > 0 {
		s.uploadLimiter = NewRateLimiter(opts.UploadsPerMinute, time.Minute, opts.UploadsPerMinute)
	}

	s.registerHealthRoutes()
	s.registerTaxonomyRoutes()
	s.registerDraftRoutes()
	s.registerListRoutes()
	s.registerAnalysisRoutes()
	s.registerProductRoutes()
	s.registerStreamRoutes()

	if services.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(services.Gatherer, promhttp.HandlerOpts{}))
	}

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, used for the OpenAPI document and tests.
func (s *Server) API() huma.API {
	return s.api
}

// Close stops background analyses and waits for them to return.
func (s *Server) Close() {
	s.cancel()
	s.wg.Wait()
	if s.uploadLimiter != nil {
		s.uploadLimiter.Stop()
	}
}
