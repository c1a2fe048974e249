package sse

import (
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Handler streams one draft's events. The API mounts it at
// GET /api/v1/drafts/{id}/events after checking the draft exists.
type Handler struct {
	manager *Manager
	logger  *slog.Logger
}

// NewHandler creates a new SSE Handler.
func NewHandler(manager *Manager, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		manager: manager,
		logger:  logger,
	}
}

// Serve streams events for draftID until the client goes away or the
// manager closes the connection.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request, draftID string) {
	if r.Context().Err() != nil {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	rc := http.NewResponseController(w)

	if err := rc.Flush(); err != nil {
		h.logger.Error("failed to flush headers", slog.String("error", err.Error()))
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	client, err := h.manager.Connect(draftID)
	if err != nil {
		h.logger.Error("failed to register SSE client", slog.String("error", err.Error()))
		http.Error(w, "Failed to establish connection", http.StatusInternalServerError)
		return
	}
	defer h.manager.Disconnect(client.ID)

	clientLogger := h.logger.With(
		slog.String("client_id", client.ID),
		slog.String("draft_id", draftID))

	if err := h.sendEvent(w, rc, "connected", map[string]string{
		"client_id": client.ID,
		"draft_id":  draftID,
	}); err != nil {
		clientLogger.Warn("failed to send initial connection message", slog.String("error", err.Error()))
		return
	}

	ctx := r.Context()
	for {
		select {
		case event, ok := <-client.EventChan:
			if !ok {
				return
			}
			if err := h.sendEvent(w, rc, string(event.Type), event); err != nil {
				clientLogger.Info("client disconnected during send")
				return
			}

		case <-client.Done:
			clientLogger.Info("client closed by manager")
			return

		case <-ctx.Done():
			clientLogger.Info("client context canceled")
			return
		}
	}
}

// sendEvent writes one SSE frame and flushes it.
func (h *Handler) sendEvent(w http.ResponseWriter, rc *http.ResponseController, eventType string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	if _, err := fmt.Fprintf(w, "event: %s\n", eventType); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", jsonData); err != nil {
		return err
	}

	if err := rc.Flush(); err != nil {
		return err
	}

	// Reset after each successful write so a stuck client times out.
	if err := rc.SetWriteDeadline(time.Now().Add(60 * time.Second)); err != nil {
		h.logger.Debug("failed to set write deadline", slog.String("error", err.Error()))
	}

	return nil
}
