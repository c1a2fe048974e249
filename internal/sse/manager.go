package sse

import (
	"context"
	"iter"
	"log/slog"
	"sync"
	"time"

	"github.com/vitrinelab/vitrine/internal/id"
)

// Client represents a connected SSE client.
type Client struct {
	ConnectedAt time.Time
	EventChan   chan Event
	Done        chan struct{}
	ID          string
	// DraftID is the draft this client watches. Events for other drafts
	// are filtered in broadcast().
	DraftID string
}

// Manager manages SSE connections and broadcasts events.
type Manager struct {
	clients           map[string]*Client
	events            chan Event
	logger            *slog.Logger
	wg                sync.WaitGroup
	heartbeatInterval time.Duration
	mu                sync.RWMutex

	// Shutdown state - protected by shutdownMu
	shutdownMu sync.RWMutex
	shutdown   bool
}

// NewManager creates a new SSE Manager.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		clients:           make(map[string]*Client),
		events:            make(chan Event, 1000),
		logger:            logger,
		heartbeatInterval: 30 * time.Second,
	}
}

// Start begins the event broadcasting loop.
// This should be called once at server startup in a goroutine.
func (m *Manager) Start(ctx context.Context) {
	m.wg.Add(1)
	defer m.wg.Done()

	m.logger.Info("SSE manager starting")

	heartbeatTicker := time.NewTicker(m.heartbeatInterval)
	defer heartbeatTicker.Stop()

	for {
		select {
		case event, ok := <-m.events:
			if !ok {
				// Shutdown closed the queue and drains it itself.
				return
			}
			m.broadcast(event)

		case <-heartbeatTicker.C:
			m.broadcast(NewHeartbeatEvent())

		case <-ctx.Done():
			m.logger.Info("SSE manager stopping")
			m.closeAllClients()
			return
		}
	}
}

// Shutdown gracefully shuts down the manager.
// It stops accepting new events, drains remaining events, and closes all clients.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.logger.Info("SSE manager shutdown initiated")

	// Mark as shutdown and close the queue while holding the lock;
	// Emit holds the read lock during its send.
	m.shutdownMu.Lock()
	if m.shutdown {
		m.shutdownMu.Unlock()
		return nil
	}
	m.shutdown = true
	close(m.events)
	m.shutdownMu.Unlock()

	// Wait for the broadcast loop first so only one goroutine reads the queue.
	m.wg.Wait()

	done := make(chan struct{})
	go func() {
		for event := range m.events {
			m.broadcast(event)
		}
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("SSE events drained successfully")
	case <-ctx.Done():
		m.logger.Warn("SSE event drain timeout, some events may be lost")
	}

	m.closeAllClients()
	m.logger.Info("SSE manager shutdown complete")
	return nil
}

// broadcast sends an event to connected clients, filtered by draft.
func (m *Manager) broadcast(event Event) {
	var delivered, dropped, filtered int

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, client := range m.clients {
		if event.DraftID != "" && client.DraftID != event.DraftID {
			filtered++
			continue
		}

		// Non-blocking send (drop if client is slow/stuck).
		select {
		case client.EventChan <- event:
			delivered++
		default:
			dropped++
			m.logger.Warn("dropped event for slow client",
				slog.String("client_id", client.ID),
				slog.String("draft_id", client.DraftID),
				slog.String("event_type", string(event.Type)))
		}
	}

	if event.Type != EventHeartbeat {
		m.logger.Debug("event broadcast",
			slog.String("event_type", string(event.Type)),
			slog.String("draft_id", event.DraftID),
			slog.Group("stats",
				slog.Int("delivered", delivered),
				slog.Int("filtered", filtered),
				slog.Int("dropped", dropped)))
	}
}

// Connect registers a new SSE client watching draftID.
func (m *Manager) Connect(draftID string) (*Client, error) {
	clientID, err := id.Generate(id.PrefixClient)
	if err != nil {
		return nil, err
	}

	client := &Client{
		ID:          clientID,
		DraftID:     draftID,
		EventChan:   make(chan Event, 100),
		Done:        make(chan struct{}),
		ConnectedAt: time.Now(),
	}

	m.mu.Lock()
	m.clients[client.ID] = client
	totalClients := len(m.clients)
	m.mu.Unlock()

	m.logger.Info("SSE client connected",
		slog.String("client_id", clientID),
		slog.String("draft_id", draftID),
		slog.Int("total_clients", totalClients))
	return client, nil
}

// Disconnect removes a client and closes its channels.
func (m *Manager) Disconnect(clientID string) {
	m.mu.Lock()
	client, ok := m.clients[clientID]
	if !ok {
		m.mu.Unlock()
		return
	}
	delete(m.clients, clientID)
	totalClients := len(m.clients)
	m.mu.Unlock()

	close(client.Done)
	close(client.EventChan)

	m.logger.Info("SSE client disconnected",
		slog.String("client_id", clientID),
		slog.Duration("duration", time.Since(client.ConnectedAt)),
		slog.Int("total_clients", totalClients))
}

// DisconnectDraft closes every client watching draftID.
// Used when a draft is cancelled or evicted.
func (m *Manager) DisconnectDraft(draftID string) int {
	var ids []string
	m.mu.RLock()
	for _, c := range m.clients {
		if c.DraftID == draftID {
			ids = append(ids, c.ID)
		}
	}
	m.mu.RUnlock()

	for _, clientID := range ids {
		m.Disconnect(clientID)
	}
	return len(ids)
}

// Emit queues an event for broadcasting to clients.
func (m *Manager) Emit(evt Event) {
	// Hold read lock through the entire send operation.
	// This prevents race with Shutdown() which holds write lock when closing channel.
	m.shutdownMu.RLock()
	defer m.shutdownMu.RUnlock()

	if m.shutdown {
		return
	}

	select {
	case m.events <- evt:
	default:
		m.logger.Error("SSE event channel full, dropping event",
			slog.String("event_type", string(evt.Type)),
			slog.String("draft_id", evt.DraftID))
	}
}

// Clients returns an iterator over all connected clients.
func (m *Manager) Clients() iter.Seq[*Client] {
	return func(yield func(*Client) bool) {
		m.mu.RLock()
		defer m.mu.RUnlock()

		for _, client := range m.clients {
			if !yield(client) {
				return
			}
		}
	}
}

// ClientCount returns the number of connected clients.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// closeAllClients closes all client connections (used during shutdown).
func (m *Manager) closeAllClients() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, client := range m.clients {
		close(client.Done)
		close(client.EventChan)
	}
	m.clients = make(map[string]*Client)

	m.logger.Info("all SSE clients disconnected")
}
