package api

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vitrinelab/vitrine/internal/domain"
	"github.com/vitrinelab/vitrine/internal/drafts"
	"github.com/vitrinelab/vitrine/internal/sse"
	"github.com/vitrinelab/vitrine/internal/taxonomy"
)

// Catalog is the part of the catalog backend the API proxies directly.
// *catalog.Client implements it.
type Catalog interface {
	CreateProduct(ctx context.Context, payload *domain.ProductPayload) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	DeleteProduct(ctx context.Context, sku int64) error
}

// Services groups everything the handlers depend on.
type Services struct {
	Taxonomy *taxonomy.Resolver
	Drafts   *drafts.Registry
	Catalog  Catalog
	Events   *sse.Manager       // optional; nil disables event streams
	Gatherer prometheus.Gatherer // optional; nil hides /metrics
}
