package catalog

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for catalog backend operations.
var (
	ErrNotFound    = errors.New("catalog: not found")
	ErrRateLimited = errors.New("catalog: rate limited by server")
	ErrBadRequest  = errors.New("catalog: bad request")
	ErrServer      = errors.New("catalog: server error")
	ErrNoImages    = errors.New("catalog: no images")
)

// APIError is a non-2xx response. Message is the backend's own explanation
// when the body carried one.
type APIError struct {
	StatusCode int
	Message    string
	// Kind is one of the sentinels above, matched by errors.Is.
	Kind error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("status %d", e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return e.Kind
}

// Error wraps an underlying error with operation context.
type Error struct {
	Op  string // Operation: "analyzeSingle", "createProduct", ...
	ID  string // If applicable
	Err error
}

func (e *Error) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("catalog %s [%s]: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("catalog %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapError creates an Error with context.
func wrapError(op, id string, err error) error {
	return &Error{Op: op, ID: id, Err: err}
}

// Message returns the backend-provided explanation carried by err, or "".
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// errorBody covers the error shapes the backend produces:
// {"message": "..."}, {"error": "..."} and {"error": {"message": "..."}}.
type errorBody struct {
	Message string     `json:"message"`
	Error   errorField `json:"error"`
}

type errorField struct {
	text string
}

func (j *errorField) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		j.text = s
		return nil
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &nested); err == nil {
		j.text = nested.Message
	}
	return nil
}

func extractMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(eb.Message); msg != "" {
		return msg
	}
	return strings.TrimSpace(eb.Error.text)
}
