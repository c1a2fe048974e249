package api

import (
	"errors"

	"github.com/vitrinelab/vitrine/internal/catalog"
	"github.com/vitrinelab/vitrine/internal/drafts"
	domainerrors "github.com/vitrinelab/vitrine/internal/errors"
)

// draft looks up a live draft or returns a NOT_FOUND domain error.
func (s *Server) draft(draftID string) (*drafts.Entry, error) {
	return s.services.Drafts.Get(draftID)
}

// upstreamError turns a catalog failure into a domain error. The backend's
// own message is kept when it sent one; fallback is used otherwise.
// Domain errors pass through untouched.
func upstreamError(err error, fallback string) error {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return err
	}

	msg := catalog.Message(err)
	if msg == "" {
		msg = fallback
	}

	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return domainerrors.NotFound(msg).WithCause(err)
	case errors.Is(err, catalog.ErrBadRequest):
		return domainerrors.Validation(msg).WithCause(err)
	case errors.Is(err, catalog.ErrRateLimited):
		return domainerrors.RateLimited(msg).WithCause(err)
	default:
		return domainerrors.Upstream(msg).WithCause(err)
	}
}
