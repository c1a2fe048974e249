// Package response writes JSON bodies and coded error bodies for the handlers
// that sit outside huma (uploads, streams, middleware).
package response

import (
	"encoding/json/v2"
	"errors"
	"log/slog"
	"net/http"

	domainerrors "github.com/vitrinelab/vitrine/internal/errors"
)

// ErrorBody is the error shape every endpoint returns.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON writes data as a JSON response with the given status code using json/v2.
func JSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.MarshalWrite(w, data); err != nil {
		if logger != nil {
			logger.Error("Failed to encode JSON response", "error", err)
		}
	}
}

// Success writes a successful JSON response (200 OK).
func Success(w http.ResponseWriter, data any, logger *slog.Logger) {
	JSON(w, http.StatusOK, data, logger)
}

// Accepted writes a 202 Accepted response.
func Accepted(w http.ResponseWriter, data any, logger *slog.Logger) {
	JSON(w, http.StatusAccepted, data, logger)
}

// NoContent writes a no content response (204 No Content).
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes a coded error response.
func Error(w http.ResponseWriter, status int, body ErrorBody, logger *slog.Logger) {
	JSON(w, status, body, logger)
}

// BadRequest writes a 400 Bad Request response.
func BadRequest(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusBadRequest, ErrorBody{Code: string(domainerrors.CodeValidation), Message: message}, logger)
}

// NotFound writes a 404 Not Found response.
func NotFound(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusNotFound, ErrorBody{Code: string(domainerrors.CodeNotFound), Message: message}, logger)
}

// TooManyRequests writes a 429 response.
func TooManyRequests(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusTooManyRequests, ErrorBody{Code: string(domainerrors.CodeRateLimited), Message: message}, logger)
}

// InternalError writes a 500 Internal Server Error response.
func InternalError(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusInternalServerError, ErrorBody{Code: string(domainerrors.CodeInternal), Message: message}, logger)
}

// Classify maps err to a status and body. Domain errors keep their code;
// errors that only match a domain sentinel keep their own message; anything
// else is an internal error with a generic message.
func Classify(err error) (int, ErrorBody) {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return domainErr.HTTPStatus(), ErrorBody{
			Code:    string(domainErr.Code),
			Message: domainErr.Message,
			Details: domainErr.Details,
		}
	}

	for _, sentinel := range []*domainerrors.Error{
		domainerrors.ErrRemoteAnalysisFailed,
		domainerrors.ErrAnalysisInProgress,
		domainerrors.ErrUpstream,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.HTTPStatus(), ErrorBody{Code: string(sentinel.Code), Message: err.Error()}
		}
	}

	return http.StatusInternalServerError, ErrorBody{
		Code:    string(domainerrors.CodeInternal),
		Message: "internal server error",
	}
}

// HandleError writes an appropriate HTTP response based on the error type.
// Unknown errors become 500 and are logged.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	status, body := Classify(err)
	if status == http.StatusInternalServerError && logger != nil {
		logger.Error("Unhandled error", "error", err)
	}
	Error(w, status, body, logger)
}
