// Package sse streams draft events to the browser with Server-Sent Events.
package sse

import (
	"time"

	"github.com/vitrinelab/vitrine/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventAnalysisStarted is sent when a draft's analysis request goes out.
	EventAnalysisStarted EventType = "analysis.started"
	// EventAnalysisCompleted carries the analysis result.
	EventAnalysisCompleted EventType = "analysis.completed"
	// EventAnalysisFailed carries the message shown to the user.
	EventAnalysisFailed EventType = "analysis.failed"
	// EventAnalysisDiscarded is sent when the user drops an analysis.
	EventAnalysisDiscarded EventType = "analysis.discarded"

	// EventDraftSubmitted is sent after the backend accepted a product.
	EventDraftSubmitted EventType = "draft.submitted"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// DraftID limits delivery to clients watching that draft.
	// Empty means every client.
	DraftID string `json:"draftId,omitempty"`
}

// AnalysisStartedEventData is the payload of analysis.started.
type AnalysisStartedEventData struct {
	Operation domain.AnalysisMode `json:"operation"`
	Images    int                 `json:"images"`
}

// AnalysisCompletedEventData is the payload of analysis.completed.
type AnalysisCompletedEventData struct {
	Result any               `json:"result"`
	Method domain.MethodInfo `json:"method"`
}

// AnalysisFailedEventData is the payload of analysis.failed.
type AnalysisFailedEventData struct {
	Operation domain.AnalysisMode `json:"operation"`
	Message   string              `json:"message"`
}

// AnalysisDiscardedEventData is the payload of analysis.discarded.
type AnalysisDiscardedEventData struct {
	InFlight bool `json:"inFlight"`
}

// DraftSubmittedEventData is the payload of draft.submitted.
type DraftSubmittedEventData struct {
	Product   *domain.Product `json:"product"`
	Submitted int             `json:"submitted"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

func newDraftEvent(t EventType, draftID string, data any) Event {
	return Event{
		Type:      t,
		DraftID:   draftID,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// NewAnalysisStartedEvent creates an analysis.started event.
func NewAnalysisStartedEvent(draftID string, op domain.AnalysisMode, images int) Event {
	return newDraftEvent(EventAnalysisStarted, draftID, AnalysisStartedEventData{
		Operation: op,
		Images:    images,
	})
}

// NewAnalysisCompletedEvent creates an analysis.completed event.
// result is whatever the API renders for the outcome.
func NewAnalysisCompletedEvent(draftID string, result any, method domain.AnalysisMethod) Event {
	return newDraftEvent(EventAnalysisCompleted, draftID, AnalysisCompletedEventData{
		Result: result,
		Method: method.Info(),
	})
}

// NewAnalysisFailedEvent creates an analysis.failed event.
func NewAnalysisFailedEvent(draftID string, op domain.AnalysisMode, message string) Event {
	return newDraftEvent(EventAnalysisFailed, draftID, AnalysisFailedEventData{
		Operation: op,
		Message:   message,
	})
}

// NewAnalysisDiscardedEvent creates an analysis.discarded event.
func NewAnalysisDiscardedEvent(draftID string, inFlight bool) Event {
	return newDraftEvent(EventAnalysisDiscarded, draftID, AnalysisDiscardedEventData{InFlight: inFlight})
}

// NewDraftSubmittedEvent creates a draft.submitted event.
func NewDraftSubmittedEvent(draftID string, product *domain.Product, submitted int) Event {
	return newDraftEvent(EventDraftSubmitted, draftID, DraftSubmittedEventData{
		Product:   product,
		Submitted: submitted,
	})
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type: EventHeartbeat,
		Data: HeartbeatEventData{
			ServerTime: time.Now(),
		},
		Timestamp: time.Now(),
	}
}
