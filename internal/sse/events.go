// Package sse pushes live tracker updates (dashboard reloads, feed reloads, bot progress)
// to connected browsers as Server-Sent Events.
package sse

import (
	"time"

	"github.com/gdgscriet/studyjam-server/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventDashboardReloaded is sent after a new participant snapshot is installed.
	EventDashboardReloaded EventType = "dashboard.reloaded"
	// EventFeedReloaded is sent after the leaderboard CSV is re-parsed.
	EventFeedReloaded EventType = "feed.reloaded"

	// Admin-only.
	EventBotStatus    EventType = "bot.status"
	EventBotCompleted EventType = "bot.completed"
	EventCSVUploaded  EventType = "csv.uploaded"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// ID is assigned by the Manager when the event is broadcast; heartbeats have none.
type Event struct {
	ID        uint64    `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
}

// DashboardReloadedData summarizes a freshly installed snapshot.
type DashboardReloadedData struct {
	Participants int          `json:"participants"`
	Stats        domain.Stats `json:"stats"`
	Error        string       `json:"error,omitempty"`
}

// FeedReloadedData summarizes a re-parsed leaderboard feed.
type FeedReloadedData struct {
	Rows      int `json:"rows"`
	Malformed int `json:"malformed"`
}

// BotStatusData carries one poll observation.
type BotStatusData struct {
	RunID  string           `json:"run_id"`
	Poll   int              `json:"poll"`
	Status domain.BotStatus `json:"status"`
}

// BotCompletedData carries the terminal state of a poll run.
type BotCompletedData struct {
	Run     domain.BotRun          `json:"run"`
	Message domain.OperatorMessage `json:"message"`
}

// CSVUploadedData reports an accepted upload.
type CSVUploadedData struct {
	Filename string `json:"filename"`
	Added    int    `json:"added"`
	Updated  int    `json:"updated"`
}

func newEvent(t EventType, data any) Event {
	return Event{Type: t, Data: data, Timestamp: time.Now()}
}

// NewDashboardReloadedEvent creates a dashboard.reloaded event.
func NewDashboardReloadedEvent(participants int, stats domain.Stats, errMsg string) Event {
	return newEvent(EventDashboardReloaded, DashboardReloadedData{
		Participants: participants,
		Stats:        stats,
		Error:        errMsg,
	})
}

// NewFeedReloadedEvent creates a feed.reloaded event.
func NewFeedReloadedEvent(rows, malformed int) Event {
	return newEvent(EventFeedReloaded, FeedReloadedData{Rows: rows, Malformed: malformed})
}

// NewBotStatusEvent creates a bot.status event.
func NewBotStatusEvent(runID string, poll int, status domain.BotStatus) Event {
	return newEvent(EventBotStatus, BotStatusData{RunID: runID, Poll: poll, Status: status})
}

// NewBotCompletedEvent creates a bot.completed event.
func NewBotCompletedEvent(run domain.BotRun, msg domain.OperatorMessage) Event {
	return newEvent(EventBotCompleted, BotCompletedData{Run: run, Message: msg})
}

// NewCSVUploadedEvent creates a csv.uploaded event.
func NewCSVUploadedEvent(filename string, res domain.UploadResult) Event {
	return newEvent(EventCSVUploaded, CSVUploadedData{Filename: filename, Added: res.Added, Updated: res.Updated})
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return newEvent(EventHeartbeat, struct{}{})
}
