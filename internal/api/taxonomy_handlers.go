package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/vitrinelab/vitrine/internal/domain"
	domainerrors "github.com/vitrinelab/vitrine/internal/errors"
	"github.com/vitrinelab/vitrine/internal/taxonomy"
)

func (s *Server) registerTaxonomyRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listProductTypes",
		Method:      http.MethodGet,
		Path:        "/api/v1/taxonomy/types",
		Summary:     "List product types",
		Description: "Returns the root level of the product taxonomy",
		Tags:        []string{"Taxonomy"},
	}, s.handleListTypes)

	huma.Register(s.api, huma.Operation{
		OperationID: "listClassifications",
		Method:      http.MethodGet,
		Path:        "/api/v1/taxonomy/types/{type}/classifications",
		Summary:     "List classifications",
		Description: "Returns the classifications of a product type. Unknown types yield an empty list.",
		Tags:        []string{"Taxonomy"},
	}, s.handleListClassifications)

	huma.Register(s.api, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/taxonomy/classifications/{classification}/categories",
		Summary:     "List categories",
		Description: "Returns the categories of a classification. Unknown classifications yield an empty list.",
		Tags:        []string{"Taxonomy"},
	}, s.handleListCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFormOptions",
		Method:      http.MethodGet,
		Path:        "/api/v1/taxonomy/options",
		Summary:     "Get form options",
		Description: "Returns the flat select lists of the product form",
		Tags:        []string{"Taxonomy"},
	}, s.handleGetFormOptions)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchTaxonomy",
		Method:      http.MethodGet,
		Path:        "/api/v1/taxonomy/search",
		Summary:     "Search taxonomy",
		Description: "Fuzzy, accent-insensitive search over taxonomy labels",
		Tags:        []string{"Taxonomy"},
	}, s.handleSearchTaxonomy)
}

// === DTOs ===

// OptionsOutput wraps a select list.
type OptionsOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         struct {
		Options []domain.Option `json:"options" doc:"Select options"`
	}
}

// ListClassificationsInput identifies a product type.
type ListClassificationsInput struct {
	Type string `path:"type" doc:"Product type value"`
}

// ListCategoriesInput identifies a classification.
type ListCategoriesInput struct {
	Classification string `path:"classification" doc:"Classification value"`
}

// FormOptionsResponse holds the flat option lists.
type FormOptionsResponse struct {
	Partners     []domain.Option `json:"partners" doc:"Partners"`
	Printers     []domain.Option `json:"printers" doc:"Printers"`
	MeasureUnits []domain.Option `json:"measureUnits" doc:"Measure units"`
	Statuses     []domain.Option `json:"statuses" doc:"Product statuses"`
}

// FormOptionsOutput wraps FormOptionsResponse for Huma.
type FormOptionsOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         FormOptionsResponse
}

// SearchTaxonomyInput holds search parameters.
type SearchTaxonomyInput struct {
	Query string `query:"q" doc:"Search text"`
	Level string `query:"level" doc:"Restrict to one level"`
	Limit int    `query:"limit" minimum:"0" maximum:"50" doc:"Maximum results (default 10)"`
}

// SearchTaxonomyOutput wraps search hits.
type SearchTaxonomyOutput struct {
	Body struct {
		Hits []taxonomy.Hit `json:"hits" doc:"Matching nodes, best first"`
	}
}

// === Handlers ===

func optionsOutput(opts []domain.Option) *OptionsOutput {
	out := &OptionsOutput{CacheControl: CacheOneHour}
	out.Body.Options = opts
	return out
}

func (s *Server) handleListTypes(_ context.Context, _ *struct{}) (*OptionsOutput, error) {
	return optionsOutput(s.services.Taxonomy.Types()), nil
}

func (s *Server) handleListClassifications(_ context.Context, input *ListClassificationsInput) (*OptionsOutput, error) {
	return optionsOutput(s.services.Taxonomy.ClassificationsFor(input.Type)), nil
}

func (s *Server) handleListCategories(_ context.Context, input *ListCategoriesInput) (*OptionsOutput, error) {
	return optionsOutput(s.services.Taxonomy.CategoriesFor(input.Classification)), nil
}

func (s *Server) handleGetFormOptions(_ context.Context, _ *struct{}) (*FormOptionsOutput, error) {
	tree := s.services.Taxonomy.Tree()
	return &FormOptionsOutput{
		CacheControl: CacheOneHour,
		Body: FormOptionsResponse{
			Partners:     tree.Partners(),
			Printers:     tree.Printers(),
			MeasureUnits: tree.MeasureUnits(),
			Statuses:     tree.Statuses(),
		},
	}, nil
}

func (s *Server) handleSearchTaxonomy(ctx context.Context, input *SearchTaxonomyInput) (*SearchTaxonomyOutput, error) {
	var level *taxonomy.Level
	if input.Level != "" {
		l, ok := taxonomy.ParseLevel(input.Level)
		if !ok {
			return nil, domainerrors.Validationf("unknown level %q", input.Level)
		}
		level = &l
	}
	limit := input.Limit
	if limit == 0 {
		limit = defaultSearchLimit
	}

	hits, err := s.services.Taxonomy.Search(ctx, input.Query, level, limit)
	if err != nil {
		return nil, err
	}

	out := &SearchTaxonomyOutput{}
	out.Body.Hits = hits
	return out, nil
}
