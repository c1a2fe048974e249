package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/vitrinelab/vitrine/internal/analysis"
	"github.com/vitrinelab/vitrine/internal/domain"
	"github.com/vitrinelab/vitrine/internal/drafts"
	"github.com/vitrinelab/vitrine/internal/form"
	"github.com/vitrinelab/vitrine/internal/sse"
)

// submitFailureMessage is shown when the backend rejects a product without saying why.
const submitFailureMessage = "Erro ao cadastrar produto"

func (s *Server) registerDraftRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createDraft",
		Method:        http.MethodPost,
		Path:          "/api/v1/drafts",
		Summary:       "Create draft",
		Description:   "Starts a new product configuration with an empty draft",
		Tags:          []string{"Drafts"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateDraft)

	huma.Register(s.api, huma.Operation{
		OperationID: "getDraft",
		Method:      http.MethodGet,
		Path:        "/api/v1/drafts/{id}",
		Summary:     "Get draft",
		Description: "Returns the draft, its select options, its lists and the analysis state",
		Tags:        []string{"Drafts"},
	}, s.handleGetDraft)

	huma.Register(s.api, huma.Operation{
		OperationID: "cancelDraft",
		Method:      http.MethodDelete,
		Path:        "/api/v1/drafts/{id}",
		Summary:     "Cancel draft",
		Description: "Drops the draft. An analysis in flight is discarded.",
		Tags:        []string{"Drafts"},
	}, s.handleCancelDraft)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateDraft",
		Method:      http.MethodPatch,
		Path:        "/api/v1/drafts/{id}",
		Summary:     "Update draft fields",
		Description: "Sets plain draft fields. Taxonomy selections have their own endpoints.",
		Tags:        []string{"Drafts"},
	}, s.handleUpdateDraft)

	huma.Register(s.api, huma.Operation{
		OperationID: "setDraftType",
		Method:      http.MethodPut,
		Path:        "/api/v1/drafts/{id}/type",
		Summary:     "Select product type",
		Description: "Selects the product type and clears classification and category",
		Tags:        []string{"Drafts"},
	}, s.handleSetType)

	huma.Register(s.api, huma.Operation{
		OperationID: "setDraftClassification",
		Method:      http.MethodPut,
		Path:        "/api/v1/drafts/{id}/classification",
		Summary:     "Select classification",
		Description: "Selects a classification of the current type and clears the category",
		Tags:        []string{"Drafts"},
	}, s.handleSetClassification)

	huma.Register(s.api, huma.Operation{
		OperationID: "setDraftCategory",
		Method:      http.MethodPut,
		Path:        "/api/v1/drafts/{id}/category",
		Summary:     "Select category",
		Description: "Selects a category of the current classification",
		Tags:        []string{"Drafts"},
	}, s.handleSetCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "previewDraftPayload",
		Method:      http.MethodGet,
		Path:        "/api/v1/drafts/{id}/payload",
		Summary:     "Preview payload",
		Description: "Builds and validates the submission body without sending it",
		Tags:        []string{"Drafts"},
	}, s.handlePreviewPayload)

	huma.Register(s.api, huma.Operation{
		OperationID: "submitDraft",
		Method:      http.MethodPost,
		Path:        "/api/v1/drafts/{id}/submit",
		Summary:     "Submit draft",
		Description: "Creates the product in the catalog. On success the draft starts over; on failure it is kept.",
		Tags:        []string{"Drafts"},
	}, s.handleSubmitDraft)
}

// === DTOs ===

// DraftIDInput identifies a draft.
type DraftIDInput struct {
	ID string `path:"id" doc:"Draft ID"`
}

// DraftResponse is the full state of a draft.
type DraftResponse struct {
	ID        string              `json:"id" doc:"Draft ID"`
	CreatedAt time.Time           `json:"createdAt" doc:"Creation time"`
	Draft     domain.ProductDraft `json:"draft" doc:"Product record under construction"`
	Options   form.Options        `json:"options" doc:"Taxonomy options for the current selections"`
	Lists     []form.ListView     `json:"lists" doc:"Attribute list editors"`
	Submitted int                 `json:"submitted" doc:"Products submitted from this draft"`
	Analysis  analysis.State      `json:"analysis" doc:"Image analysis state"`
}

// DraftOutput wraps DraftResponse for Huma.
type DraftOutput struct {
	Body DraftResponse
}

// UpdateDraftInput carries plain field updates.
type UpdateDraftInput struct {
	ID   string `path:"id" doc:"Draft ID"`
	Body form.Patch
}

// SelectionRequest is the body of the taxonomy selection endpoints.
type SelectionRequest struct {
	Value string `json:"value" doc:"Option value; empty clears the selection"`
}

// SelectionInput wraps a taxonomy selection.
type SelectionInput struct {
	ID   string `path:"id" doc:"Draft ID"`
	Body SelectionRequest
}

// PayloadOutput wraps a submission body preview.
type PayloadOutput struct {
	Body *domain.ProductPayload
}

// SubmitResponse is the result of a successful submission.
type SubmitResponse struct {
	Product *domain.Product `json:"product" doc:"Product created by the catalog"`
	Draft   DraftResponse   `json:"draft" doc:"The fresh draft that replaced the submitted one"`
}

// SubmitOutput wraps SubmitResponse for Huma.
type SubmitOutput struct {
	Body SubmitResponse
}

// === Handlers ===

func draftResponse(e *drafts.Entry) DraftResponse {
	snap := e.Session.Snapshot()
	return DraftResponse{
		ID:        e.ID,
		CreatedAt: e.CreatedAt,
		Draft:     snap.Draft,
		Options:   snap.Options,
		Lists:     snap.Lists,
		Submitted: snap.Submitted,
		Analysis:  e.Analysis.State(),
	}
}

func draftOutput(e *drafts.Entry) *DraftOutput {
	return &DraftOutput{Body: draftResponse(e)}
}

func (s *Server) handleCreateDraft(_ context.Context, _ *struct{}) (*DraftOutput, error) {
	e, err := s.services.Drafts.Create()
	if err != nil {
		return nil, err
	}
	if s.services.Events != nil {
		e.Analysis.Observe(s.services.Events.ForDraft(e.ID))
	}
	s.logger.Info("draft created", "draft_id", e.ID)
	return draftOutput(e), nil
}

func (s *Server) handleGetDraft(_ context.Context, input *DraftIDInput) (*DraftOutput, error) {
	e, err := s.draft(input.ID)
	if err != nil {
		return nil, err
	}
	return draftOutput(e), nil
}

func (s *Server) handleCancelDraft(_ context.Context, input *DraftIDInput) (*struct{}, error) {
	if err := s.services.Drafts.Delete(input.ID); err != nil {
		return nil, err
	}
	if s.services.Events != nil {
		s.services.Events.DisconnectDraft(input.ID)
	}
	s.logger.Info("draft cancelled", "draft_id", input.ID)
	return nil, nil
}

func (s *Server) handleUpdateDraft(_ context.Context, input *UpdateDraftInput) (*DraftOutput, error) {
	e, err := s.draft(input.ID)
	if err != nil {
		return nil, err
	}
	if err := e.Session.Apply(input.Body); err != nil {
		return nil, err
	}
	return draftOutput(e), nil
}

func (s *Server) handleSetType(_ context.Context, input *SelectionInput) (*DraftOutput, error) {
	e, err := s.draft(input.ID)
	if err != nil {
		return nil, err
	}
	if _, err := e.Session.SetType(input.Body.Value); err != nil {
		return nil, err
	}
	return draftOutput(e), nil
}

func (s *Server) handleSetClassification(_ context.Context, input *SelectionInput) (*DraftOutput, error) {
	e, err := s.draft(input.ID)
	if err != nil {
		return nil, err
	}
	if _, err := e.Session.SetClassification(input.Body.Value); err != nil {
		return nil, err
	}
	return draftOutput(e), nil
}

func (s *Server) handleSetCategory(_ context.Context, input *SelectionInput) (*DraftOutput, error) {
	e, err := s.draft(input.ID)
	if err != nil {
		return nil, err
	}
	if err := e.Session.SetCategory(input.Body.Value); err != nil {
		return nil, err
	}
	return draftOutput(e), nil
}

func (s *Server) handlePreviewPayload(_ context.Context, input *DraftIDInput) (*PayloadOutput, error) {
	e, err := s.draft(input.ID)
	if err != nil {
		return nil, err
	}
	payload, err := e.Session.Payload()
	if err != nil {
		return nil, err
	}
	return &PayloadOutput{Body: payload}, nil
}

func (s *Server) handleSubmitDraft(ctx context.Context, input *DraftIDInput) (*SubmitOutput, error) {
	e, err := s.draft(input.ID)
	if err != nil {
		return nil, err
	}

	product, err := e.Session.Submit(ctx, s.services.Catalog)
	if err != nil {
		s.logger.Warn("draft submission failed", "draft_id", e.ID, "error", err)
		return nil, upstreamError(err, submitFailureMessage)
	}
	if product == nil {
		product = &domain.Product{}
	}

	resp := draftResponse(e)
	if s.services.Events != nil {
		s.services.Events.Emit(sse.NewDraftSubmittedEvent(e.ID, product, resp.Submitted))
	}
	s.logger.Info("draft submitted", "draft_id", e.ID, "sku", product.SKU)

	return &SubmitOutput{Body: SubmitResponse{Product: product, Draft: resp}}, nil
}
