package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/vitrinelab/vitrine/internal/analysis"
	"github.com/vitrinelab/vitrine/internal/domain"
	"github.com/vitrinelab/vitrine/internal/drafts"
	domainerrors "github.com/vitrinelab/vitrine/internal/errors"
	"github.com/vitrinelab/vitrine/internal/http/response"
	"github.com/vitrinelab/vitrine/internal/media/images"
	"github.com/vitrinelab/vitrine/internal/sse"
)

func (s *Server) registerAnalysisRoutes() {
	// Multipart uploads do not fit huma's typed bodies; this one is plain chi.
	upload := s.router.With()
	if s.uploadLimiter != nil {
		upload = s.router.With(RateLimitMiddleware(s.uploadLimiter, s.logger))
	}
	upload.Post("/api/v1/drafts/{id}/analysis", s.handleStartAnalysis)

	huma.Register(s.api, huma.Operation{
		OperationID: "getDraftAnalysis",
		Method:      http.MethodGet,
		Path:        "/api/v1/drafts/{id}/analysis",
		Summary:     "Get analysis state",
		Description: "Returns whether an analysis is running and the last result or error",
		Tags:        []string{"Analysis"},
	}, s.handleGetAnalysis)

	huma.Register(s.api, huma.Operation{
		OperationID: "discardDraftAnalysis",
		Method:      http.MethodDelete,
		Path:        "/api/v1/drafts/{id}/analysis",
		Summary:     "Discard analysis",
		Description: "Drops the running analysis, if any, and clears the last result. A late result is not applied.",
		Tags:        []string{"Analysis"},
	}, s.handleDiscardAnalysis)
}

// === DTOs ===

// AnalysisResponse is the outcome of a synchronous analysis.
type AnalysisResponse struct {
	Result *analysis.Result   `json:"result"`
	Method *domain.MethodInfo `json:"method,omitempty"`
	Images []images.Info      `json:"images"`
	Draft  DraftResponse      `json:"draft"`
}

// AcceptedAnalysisResponse is returned when the analysis runs in the background.
type AcceptedAnalysisResponse struct {
	Operation domain.AnalysisMode `json:"operation"`
	Images    []images.Info       `json:"images"`
}

// AnalysisStateOutput wraps the orchestrator state for Huma.
type AnalysisStateOutput struct {
	Body AnalysisStateResponse
}

// AnalysisStateResponse is the analysis state plus display copy for its method.
type AnalysisStateResponse struct {
	analysis.State
	Method *domain.MethodInfo `json:"method,omitempty" doc:"Display copy for the result's method"`
}

// DiscardOutput reports what Discard found.
type DiscardOutput struct {
	Body struct {
		InFlight bool           `json:"inFlight" doc:"Whether a request was still running"`
		State    analysis.State `json:"state" doc:"State after discarding"`
	}
}

// === Handlers ===

// handleStartAnalysis accepts multipart field "images" (repeated; "image"
// also works for a single file) and an optional "mode". With async=true the
// call returns 202 and the outcome arrives on the event stream.
func (s *Server) handleStartAnalysis(w http.ResponseWriter, r *http.Request) {
	e, err := s.draft(chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	imgs, infos, err := s.readImages(w, r)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	mode := domain.AnalysisMode(r.FormValue("mode"))
	op, err := analysis.SelectOperation(mode, len(imgs))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	async, _ := strconv.ParseBool(r.FormValue("async"))
	if async {
		if err := s.runInBackground(e, imgs, mode); err != nil {
			response.HandleError(w, err, s.logger)
			return
		}
		response.Accepted(w, AcceptedAnalysisResponse{Operation: op, Images: infos}, s.logger)
		return
	}

	result, err := e.Analysis.AnalyzeInto(r.Context(), imgs, mode, e.Session)
	if err != nil {
		if errors.Is(err, analysis.ErrDiscarded) {
			err = domainerrors.Conflict("analysis was discarded")
		}
		response.HandleError(w, err, s.logger)
		return
	}

	resp := AnalysisResponse{
		Result: result,
		Images: infos,
		Draft:  draftResponse(e),
	}
	if result.Method != "" {
		info := result.MethodInfo()
		resp.Method = &info
	}
	response.Success(w, resp, s.logger)
}

// runInBackground analyzes under the server context so the call outlives
// the request. The guard is taken before it returns; outcomes are reported
// through the draft's observer.
func (s *Server) runInBackground(e *drafts.Entry, imgs []domain.Image, mode domain.AnalysisMode) error {
	s.wg.Add(1)
	err := e.Analysis.Start(s.ctx, imgs, mode, e.Session, func(_ *analysis.Result, err error) {
		defer s.wg.Done()
		if err != nil {
			s.logger.Debug("background analysis ended without result", "draft_id", e.ID, "error", err)
		}
	})
	if err != nil {
		s.wg.Done()
	}
	return err
}

// readImages parses the multipart body and validates every file.
func (s *Server) readImages(w http.ResponseWriter, r *http.Request) ([]domain.Image, []images.Info, error) {
	// Room for every image plus form overhead.
	limit := int64(s.opts.MaxImages)*s.opts.MaxImageBytes + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, domainerrors.PayloadTooLargef("upload exceeds %d bytes", limit)
		}
		return nil, nil, domainerrors.Validationf("invalid multipart body: %v", err)
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			s.logger.Debug("failed to remove multipart temp files", "error", err)
		}
	}()

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		files = r.MultipartForm.File["image"]
	}
	if len(files) == 0 {
		return nil, nil, domainerrors.ValidationWithDetails("at least one image is required",
			map[string]string{"images": "is required"})
	}
	if len(files) > s.opts.MaxImages {
		return nil, nil, domainerrors.ValidationWithDetails(
			fmt.Sprintf("at most %d images per analysis", s.opts.MaxImages),
			map[string]string{"images": fmt.Sprintf("must not exceed %d files", s.opts.MaxImages)})
	}

	raw := make([]domain.Image, 0, len(files))
	for i, fh := range files {
		img, err := readPart(fh, i, s.opts.MaxImageBytes)
		if err != nil {
			return nil, nil, err
		}
		raw = append(raw, img)
	}
	return images.InspectAll(raw, s.opts.MaxImageBytes)
}

// readPart reads at most maxBytes+1 bytes so Inspect can report oversize files.
func readPart(fh *multipart.FileHeader, index int, maxBytes int64) (domain.Image, error) {
	name := fh.Filename
	if name == "" {
		name = fmt.Sprintf("image-%d", index+1)
	}
	f, err := fh.Open()
	if err != nil {
		return domain.Image{}, domainerrors.Validationf("cannot read image %q", name)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return domain.Image{}, domainerrors.Validationf("cannot read image %q", name)
	}
	return domain.Image{
		Name:        name,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func analysisStateResponse(st analysis.State) AnalysisStateResponse {
	resp := AnalysisStateResponse{State: st}
	if st.Result != nil && st.Result.Method != "" {
		info := st.Result.MethodInfo()
		resp.Method = &info
	}
	return resp
}

func (s *Server) handleGetAnalysis(_ context.Context, input *DraftIDInput) (*AnalysisStateOutput, error) {
	e, err := s.draft(input.ID)
	if err != nil {
		return nil, err
	}
	return &AnalysisStateOutput{Body: analysisStateResponse(e.Analysis.State())}, nil
}

func (s *Server) handleDiscardAnalysis(_ context.Context, input *DraftIDInput) (*DiscardOutput, error) {
	e, err := s.draft(input.ID)
	if err != nil {
		return nil, err
	}

	inFlight := e.Analysis.Discard()
	if s.services.Events != nil {
		s.services.Events.Emit(sse.NewAnalysisDiscardedEvent(e.ID, inFlight))
	}
	s.logger.Info("analysis discarded", "draft_id", e.ID, "in_flight", inFlight)

	out := &DiscardOutput{}
	out.Body.InFlight = inFlight
	out.Body.State = e.Analysis.State()
	return out, nil
}
