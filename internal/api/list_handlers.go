package api

import (
	"context"
	"net/http"
	"sort"

	"github.com/danielgtaylor/huma/v2"

	"github.com/vitrinelab/vitrine/internal/domain"
	"github.com/vitrinelab/vitrine/internal/form"
)

func (s *Server) registerListRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getDraftList",
		Method:      http.MethodGet,
		Path:        "/api/v1/drafts/{id}/lists/{kind}",
		Summary:     "Get list",
		Description: "Returns the rows of one attribute list and its pending and committed encodings",
		Tags:        []string{"Lists"},
	}, s.handleGetList)

	huma.Register(s.api, huma.Operation{
		OperationID:   "addDraftListRow",
		Method:        http.MethodPost,
		Path:          "/api/v1/drafts/{id}/lists/{kind}/rows",
		Summary:       "Add row",
		Description:   "Appends an empty row. Datasheet rows take the shape of the current product type.",
		Tags:          []string{"Lists"},
		DefaultStatus: http.StatusCreated,
	}, s.handleAddRow)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateDraftListRow",
		Method:      http.MethodPatch,
		Path:        "/api/v1/drafts/{id}/lists/{kind}/rows/{index}",
		Summary:     "Update row",
		Description: "Sets fields of one row. Out-of-range indexes are ignored.",
		Tags:        []string{"Lists"},
	}, s.handleUpdateRow)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeDraftListRow",
		Method:      http.MethodDelete,
		Path:        "/api/v1/drafts/{id}/lists/{kind}/rows/{index}",
		Summary:     "Remove row",
		Description: "Removes one row. Out-of-range indexes are ignored.",
		Tags:        []string{"Lists"},
	}, s.handleRemoveRow)

	huma.Register(s.api, huma.Operation{
		OperationID: "commitDraftList",
		Method:      http.MethodPost,
		Path:        "/api/v1/drafts/{id}/lists/{kind}/commit",
		Summary:     "Commit list",
		Description: "Encodes the complete rows and stores the encoding on the draft",
		Tags:        []string{"Lists"},
	}, s.handleCommitList)
}

// === DTOs ===

// ListInput identifies one list of a draft.
type ListInput struct {
	ID   string          `path:"id" doc:"Draft ID"`
	Kind domain.ListKind `path:"kind" enum:"include,remove,datasheet" doc:"List kind"`
}

// RowInput identifies one row.
type RowInput struct {
	ID    string          `path:"id" doc:"Draft ID"`
	Kind  domain.ListKind `path:"kind" enum:"include,remove,datasheet" doc:"List kind"`
	Index int             `path:"index" doc:"Row index"`
}

// UpdateRowRequest holds field values keyed by field name
// (ingredient, value, kind, quantity, unit, variant, stockLevel).
type UpdateRowRequest struct {
	Fields map[string]string `json:"fields" doc:"Field values by name"`
}

// UpdateRowInput wraps a row update.
type UpdateRowInput struct {
	ID    string          `path:"id" doc:"Draft ID"`
	Kind  domain.ListKind `path:"kind" enum:"include,remove,datasheet" doc:"List kind"`
	Index int             `path:"index" doc:"Row index"`
	Body  UpdateRowRequest
}

// ListOutput wraps a list view.
type ListOutput struct {
	Body form.ListView
}

// AddRowResponse reports the new row and the list after adding it.
type AddRowResponse struct {
	Index int           `json:"index" doc:"Index of the new row"`
	List  form.ListView `json:"list" doc:"The list after the change"`
}

// AddRowOutput wraps AddRowResponse.
type AddRowOutput struct {
	Body AddRowResponse
}

// CommitResponse reports what was stored on the draft.
type CommitResponse struct {
	Encoding *string       `json:"encoding" doc:"Canonical encoding; null when no row is complete"`
	List     form.ListView `json:"list" doc:"The list after the commit"`
}

// CommitOutput wraps CommitResponse.
type CommitOutput struct {
	Body CommitResponse
}

// === Handlers ===

func (s *Server) listOutput(id string, kind domain.ListKind) (*ListOutput, error) {
	e, err := s.draft(id)
	if err != nil {
		return nil, err
	}
	view, err := e.Session.List(kind)
	if err != nil {
		return nil, err
	}
	return &ListOutput{Body: view}, nil
}

func (s *Server) handleGetList(_ context.Context, input *ListInput) (*ListOutput, error) {
	return s.listOutput(input.ID, input.Kind)
}

func (s *Server) handleAddRow(_ context.Context, input *ListInput) (*AddRowOutput, error) {
	e, err := s.draft(input.ID)
	if err != nil {
		return nil, err
	}
	index, err := e.Session.AddRow(input.Kind)
	if err != nil {
		return nil, err
	}
	view, err := e.Session.List(input.Kind)
	if err != nil {
		return nil, err
	}
	return &AddRowOutput{Body: AddRowResponse{Index: index, List: view}}, nil
}

func (s *Server) handleUpdateRow(_ context.Context, input *UpdateRowInput) (*ListOutput, error) {
	e, err := s.draft(input.ID)
	if err != nil {
		return nil, err
	}

	// Sorted so a bad field is reported the same way every time.
	names := make([]string, 0, len(input.Body.Fields))
	for name := range input.Body.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := e.Session.SetRowField(input.Kind, input.Index, name, input.Body.Fields[name]); err != nil {
			return nil, err
		}
	}
	return s.listOutput(input.ID, input.Kind)
}

func (s *Server) handleRemoveRow(_ context.Context, input *RowInput) (*ListOutput, error) {
	e, err := s.draft(input.ID)
	if err != nil {
		return nil, err
	}
	if err := e.Session.RemoveRow(input.Kind, input.Index); err != nil {
		return nil, err
	}
	return s.listOutput(input.ID, input.Kind)
}

func (s *Server) handleCommitList(_ context.Context, input *ListInput) (*CommitOutput, error) {
	e, err := s.draft(input.ID)
	if err != nil {
		return nil, err
	}
	enc, err := e.Session.CommitList(input.Kind)
	if err != nil {
		return nil, err
	}
	view, err := e.Session.List(input.Kind)
	if err != nil {
		return nil, err
	}
	return &CommitOutput{Body: CommitResponse{Encoding: enc, List: view}}, nil
}
