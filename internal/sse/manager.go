package sse

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gdgscriet/studyjam-server/internal/id"
)

const (
	clientBuffer = 64
	// replaySize is how many past events a reconnecting client can catch up on.
	replaySize = 64
)

// Client represents a connected SSE client.
type Client struct {
	ConnectedAt time.Time
	EventChan   chan Event
	Done        chan struct{}
	ID          string
	// IsAdmin clients also receive bot and upload events.
	IsAdmin bool
}

// Allows reports whether the client may see events of type t.
func (c *Client) Allows(t EventType) bool {
	return c.IsAdmin || !isAdminOnlyEvent(t)
}

// Manager fans events out to connected clients. Every non-heartbeat event gets a
// monotonically increasing ID and is kept in a small ring so a client reconnecting
// with Last-Event-ID receives what it missed.
type Manager struct {
	logger            *slog.Logger
	heartbeatInterval time.Duration
	queue             chan Event
	loops             sync.WaitGroup

	mu      sync.Mutex
	clients map[string]*Client
	lastID  uint64
	replay  []Event // oldest first, at most replaySize

	closeMu sync.RWMutex
	closed  bool
}

// NewManager creates a new SSE Manager.
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		logger:            logger,
		heartbeatInterval: 30 * time.Second,
		queue:             make(chan Event, 256),
		clients:           make(map[string]*Client),
		replay:            make([]Event, 0, replaySize),
	}
}

// Start runs the broadcast loop until ctx is cancelled or the manager shuts down.
func (m *Manager) Start(ctx context.Context) {
	m.loops.Add(1)
	defer m.loops.Done()

	m.logger.Info("SSE manager starting")

	heartbeat := time.NewTicker(m.heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case event, ok := <-m.queue:
			if !ok {
				return
			}
			m.publish(event)
		case <-heartbeat.C:
			m.publish(NewHeartbeatEvent())
		case <-ctx.Done():
			m.logger.Info("SSE manager stopping")
			m.closeAllClients()
			return
		}
	}
}

// Shutdown stops accepting events, publishes what is still queued, and disconnects everyone.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.closeMu.Lock()
	if m.closed {
		m.closeMu.Unlock()
		return nil
	}
	m.closed = true
	close(m.queue)
	m.closeMu.Unlock()

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for event := range m.queue {
			m.publish(event)
		}
	}()

	select {
	case <-drained:
	case <-ctx.Done():
		m.logger.Warn("SSE drain timed out, queued events dropped")
	}

	m.loops.Wait()
	m.closeAllClients()
	m.logger.Info("SSE manager shutdown complete")
	return nil
}

func isAdminOnlyEvent(eventType EventType) bool {
	//nolint:exhaustive // default covers the public events
	switch eventType {
	case EventBotStatus, EventBotCompleted, EventCSVUploaded:
		return true
	default:
		return false
	}
}

// publish numbers the event, remembers it for replay and hands it to every client
// allowed to see it. A client whose buffer is full misses the event.
func (m *Manager) publish(event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if event.Type != EventHeartbeat {
		m.lastID++
		event.ID = m.lastID
		if len(m.replay) == replaySize {
			m.replay = append(m.replay[:0], m.replay[1:]...)
		}
		m.replay = append(m.replay, event)
	}

	var sent, skipped, full int
	for _, c := range m.clients {
		if !c.Allows(event.Type) {
			skipped++
			continue
		}
		if offer(c, event) {
			sent++
		} else {
			full++
			m.logger.Warn("SSE client too slow, event dropped",
				slog.String("client_id", c.ID),
				slog.String("event_type", string(event.Type)))
		}
	}

	if event.Type != EventHeartbeat {
		m.logger.Debug("event published",
			slog.Uint64("id", event.ID),
			slog.String("event_type", string(event.Type)),
			slog.Int("sent", sent),
			slog.Int("skipped", skipped),
			slog.Int("dropped", full))
	}
}

func offer(c *Client, event Event) bool {
	select {
	case c.EventChan <- event:
		return true
	default:
		return false
	}
}

// Connect registers a client. When lastEventID is non-zero, retained events newer
// than it are queued first, so a reconnecting browser sees them before anything new.
func (m *Manager) Connect(isAdmin bool, lastEventID uint64) (*Client, error) {
	clientID, err := id.Generate("sse")
	if err != nil {
		return nil, err
	}

	c := &Client{
		ID:          clientID,
		IsAdmin:     isAdmin,
		EventChan:   make(chan Event, clientBuffer),
		Done:        make(chan struct{}),
		ConnectedAt: time.Now(),
	}

	m.mu.Lock()
	replayed := 0
	if lastEventID > 0 {
		for _, event := range m.replay {
			if event.ID > lastEventID && c.Allows(event.Type) && offer(c, event) {
				replayed++
			}
		}
	}
	m.clients[c.ID] = c
	total := len(m.clients)
	m.mu.Unlock()

	m.logger.Info("SSE client connected",
		slog.String("client_id", clientID),
		slog.Bool("is_admin", isAdmin),
		slog.Uint64("last_event_id", lastEventID),
		slog.Int("replayed", replayed),
		slog.Int("total_clients", total))
	return c, nil
}

// Disconnect removes a client and closes its channels.
func (m *Manager) Disconnect(clientID string) {
	m.mu.Lock()
	c, ok := m.clients[clientID]
	if ok {
		delete(m.clients, clientID)
		close(c.Done)
		close(c.EventChan)
	}
	total := len(m.clients)
	m.mu.Unlock()

	if ok {
		m.logger.Info("SSE client disconnected",
			slog.String("client_id", clientID),
			slog.Duration("duration", time.Since(c.ConnectedAt)),
			slog.Int("total_clients", total))
	}
}

// Emit queues an event for broadcasting. Events emitted after shutdown are dropped.
func (m *Manager) Emit(event Event) {
	m.closeMu.RLock()
	defer m.closeMu.RUnlock()

	if m.closed {
		return
	}

	select {
	case m.queue <- event:
	default:
		m.logger.Error("SSE queue full, event dropped", slog.String("event_type", string(event.Type)))
	}
}

// ClientCount returns the number of connected clients.
func (m *Manager) ClientCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

// LastEventID is the ID of the most recent published event, zero before the first.
func (m *Manager) LastEventID() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastID
}

func (m *Manager) closeAllClients() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.clients {
		close(c.Done)
		close(c.EventChan)
	}
	m.clients = make(map[string]*Client)
}
