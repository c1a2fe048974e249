package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vitrinelab/vitrine/internal/http/response"
	"github.com/vitrinelab/vitrine/internal/sse"
)

func (s *Server) registerStreamRoutes() {
	if s.services.Events == nil {
		return
	}
	stream := sse.NewHandler(s.services.Events, s.logger)
	s.router.Get("/api/v1/drafts/{id}/events", func(w http.ResponseWriter, r *http.Request) {
		draftID := chi.URLParam(r, "id")
		if _, err := s.draft(draftID); err != nil {
			response.HandleError(w, err, s.logger)
			return
		}
		stream.Serve(w, r, draftID)
	})
}
