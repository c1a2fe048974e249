package api

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/vitrinelab/vitrine/internal/errors"
	"github.com/vitrinelab/vitrine/internal/http/response"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps domain errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to use domain errors.
// Call this after creating the huma.API but before registering routes.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			if err == nil {
				continue
			}
			code, body := response.Classify(err)
			if code == http.StatusInternalServerError {
				continue
			}
			return &APIError{
				status:  code,
				Code:    body.Code,
				Message: body.Message,
				Details: body.Details,
			}
		}

		apiErr := &APIError{
			status:  status,
			Code:    statusToCode(status),
			Message: message,
		}
		// huma's own request validation failures come through here.
		if status == http.StatusUnprocessableEntity || status == http.StatusBadRequest {
			details := make(map[string]string)
			for _, err := range errs {
				if d, ok := err.(*huma.ErrorDetail); ok {
					details[d.Location] = d.Message
				}
			}
			if len(details) > 0 {
				apiErr.Details = details
			}
		}
		return apiErr
	}
}

// statusToCode maps HTTP status codes to our domain error codes.
func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return string(domainerrors.CodeValidation)
	case http.StatusNotFound:
		return string(domainerrors.CodeNotFound)
	case http.StatusConflict:
		return string(domainerrors.CodeConflict)
	case http.StatusRequestEntityTooLarge:
		return string(domainerrors.CodePayloadTooLarge)
	case http.StatusTooManyRequests:
		return string(domainerrors.CodeRateLimited)
	case http.StatusBadGateway:
		return string(domainerrors.CodeUpstream)
	default:
		return string(domainerrors.CodeInternal)
	}
}
