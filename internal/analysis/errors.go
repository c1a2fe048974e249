package analysis

import (
	"errors"

	apperrors "github.com/vitrinelab/vitrine/internal/errors"
)

// Failure messages used when the backend gives no explanation of its own.
const (
	DefaultFailureMessage     = "Erro ao analisar imagem com IA"
	DefaultMenuFailureMessage = "Erro ao analisar cardápio"
)

var (
	// ErrConcurrentRequest rejects a call made while another is outstanding.
	ErrConcurrentRequest = apperrors.ErrAnalysisInProgress

	// ErrDiscarded is returned for a result that arrived after Discard.
	ErrDiscarded = errors.New("analysis: result discarded")

	errEmptyResponse = errors.New("analysis: empty response")
)

// RemoteError is a failed analysis reduced to one human-readable message.
type RemoteError struct {
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	return e.Message
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Is lets callers match any remote failure with apperrors.ErrRemoteAnalysisFailed.
func (e *RemoteError) Is(target error) bool {
	return target == apperrors.ErrRemoteAnalysisFailed
}
