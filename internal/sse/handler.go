package sse

import (
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const (
	// retryMillis is the reconnect delay suggested to EventSource.
	retryMillis  = 3000
	writeTimeout = 60 * time.Second
)

// AdminChecker reports whether the stream request carries an admin session.
type AdminChecker func(r *http.Request) bool

// Handler serves GET /api/v1/stream.
type Handler struct {
	manager *Manager
	isAdmin AdminChecker
	logger  *slog.Logger
}

// NewHandler creates a stream handler. A nil isAdmin treats every client as public.
func NewHandler(manager *Manager, isAdmin AdminChecker, logger *slog.Logger) *Handler {
	if isAdmin == nil {
		isAdmin = func(*http.Request) bool { return false }
	}
	return &Handler{manager: manager, isAdmin: isAdmin, logger: logger}
}

// lastEventID reads the resume point from the Last-Event-ID header, or from
// ?last_event_id= for clients that reconnect by hand.
func lastEventID(r *http.Request) uint64 {
	raw := r.Header.Get("Last-Event-ID")
	if raw == "" {
		raw = r.URL.Query().Get("last_event_id")
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// ServeHTTP streams events until the client goes away or the manager closes it.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	hdr := w.Header()
	hdr.Set("Content-Type", "text/event-stream")
	hdr.Set("Cache-Control", "no-cache")
	hdr.Set("Connection", "keep-alive")
	hdr.Set("X-Accel-Buffering", "no")

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		h.logger.Error("streaming unsupported", slog.String("error", err.Error()))
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	client, err := h.manager.Connect(h.isAdmin(r), lastEventID(r))
	if err != nil {
		h.logger.Error("failed to register SSE client", slog.String("error", err.Error()))
		http.Error(w, "Failed to establish connection", http.StatusInternalServerError)
		return
	}
	defer h.manager.Disconnect(client.ID)

	log := h.logger.With(slog.String("client_id", client.ID))

	hello := Event{
		Type:      "connected",
		Timestamp: time.Now(),
		Data: map[string]any{
			"client_id":     client.ID,
			"admin":         client.IsAdmin,
			"last_event_id": h.manager.LastEventID(),
		},
	}
	if _, err := fmt.Fprintf(w, "retry: %d\n", retryMillis); err != nil {
		return
	}
	if err := h.write(w, rc, hello); err != nil {
		log.Warn("failed to send connection message", slog.String("error", err.Error()))
		return
	}

	for {
		select {
		case event, ok := <-client.EventChan:
			if !ok {
				return
			}
			if err := h.write(w, rc, event); err != nil {
				log.Info("client disconnected during send")
				return
			}
		case <-client.Done:
			log.Info("client closed by manager")
			return
		case <-r.Context().Done():
			return
		}
	}
}

// write frames one event. Events with an ID carry an id: line so the browser
// sends it back as Last-Event-ID on reconnect.
func (h *Handler) write(w io.Writer, rc *http.ResponseController, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if event.ID > 0 {
		if _, err := fmt.Fprintf(w, "id: %d\n", event.ID); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data); err != nil {
		return err
	}
	if err := rc.Flush(); err != nil {
		return err
	}

	// Not every ResponseWriter supports deadlines.
	if err := rc.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		h.logger.Debug("failed to set write deadline", slog.String("error", err.Error()))
	}
	return nil
}
