package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/vitrinelab/vitrine/internal/domain"
)

// Messages shown when the backend fails without an explanation.
const (
	listProductsFailureMessage  = "Erro ao carregar produtos"
	deleteProductFailureMessage = "Erro ao excluir produto"
)

func (s *Server) registerProductRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listProducts",
		Method:      http.MethodGet,
		Path:        "/api/v1/products",
		Summary:     "List products",
		Description: "Returns every product in the catalog",
		Tags:        []string{"Products"},
	}, s.handleListProducts)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteProduct",
		Method:      http.MethodDelete,
		Path:        "/api/v1/products/{sku}",
		Summary:     "Delete product",
		Description: "Removes a product from the catalog",
		Tags:        []string{"Products"},
	}, s.handleDeleteProduct)
}

// === DTOs ===

// ListProductsOutput wraps the product list.
type ListProductsOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         struct {
		Products []domain.Product `json:"products" doc:"Catalog products"`
	}
}

// DeleteProductInput identifies a product.
type DeleteProductInput struct {
	SKU int64 `path:"sku" minimum:"1" doc:"Product SKU"`
}

// === Handlers ===

func (s *Server) handleListProducts(ctx context.Context, _ *struct{}) (*ListProductsOutput, error) {
	products, err := s.services.Catalog.ListProducts(ctx)
	if err != nil {
		s.logger.Warn("listing products failed", "error", err)
		return nil, upstreamError(err, listProductsFailureMessage)
	}
	if products == nil {
		products = []domain.Product{}
	}

	out := &ListProductsOutput{CacheControl: CacheNoStore}
	out.Body.Products = products
	return out, nil
}

func (s *Server) handleDeleteProduct(ctx context.Context, input *DeleteProductInput) (*struct{}, error) {
	if err := s.services.Catalog.DeleteProduct(ctx, input.SKU); err != nil {
		s.logger.Warn("deleting product failed", "sku", input.SKU, "error", err)
		return nil, upstreamError(err, deleteProductFailureMessage)
	}
	s.logger.Info("product deleted", "sku", input.SKU)
	return nil, nil
}
