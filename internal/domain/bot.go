package domain

import "time"

// ScrapeType selects which participants the scraper bot refreshes.
type ScrapeType string

// Scrape types accepted by the bot trigger endpoint.
const (
	ScrapeActive   ScrapeType = "active"
	ScrapeInactive ScrapeType = "inactive"
	ScrapeAll      ScrapeType = "all"
)

// Valid reports whether t is a recognized scrape type.
func (t ScrapeType) Valid() bool {
	switch t {
	case ScrapeActive, ScrapeInactive, ScrapeAll:
		return true
	default:
		return false
	}
}

// BotResult is the outcome of the last scraper run. A failed run carries
// Status "error" and a Message instead of the counters.
type BotResult struct {
	Status         string  `json:"status"`
	Total          int     `json:"total,omitzero"`
	Success        int     `json:"success,omitzero"`
	Failed         int     `json:"failed,omitzero"`
	ElapsedSeconds float64 `json:"elapsed_seconds,omitzero"`
	Message        string  `json:"message,omitempty"`
}

// IsError reports whether the run ended in an error.
func (r *BotResult) IsError() bool {
	return r != nil && r.Status == "error"
}

// BotStatus is the scraper bot state reported by the remote API.
type BotStatus struct {
	IsRunning  bool       `json:"is_running"`
	LastRun    *Timestamp `json:"last_run,omitempty"`
	LastResult *BotResult `json:"last_result,omitempty"`
}

// PollState tracks this server's watch over a triggered bot run.
type PollState string

// Poll states.
const (
	PollIdle      PollState = "idle"
	PollRunning   PollState = "polling"
	PollCompleted PollState = "completed"
	PollTimedOut  PollState = "timed_out"
	PollCancelled PollState = "cancelled"
	PollFailed    PollState = "failed"
)

// BotRun is one trigger plus its polling outcome, persisted in history.
type BotRun struct {
	ID          string     `json:"id"`
	ScrapeType  ScrapeType `json:"scrape_type"`
	State       PollState  `json:"state"`
	Message     string     `json:"message,omitempty"`
	Polls       int        `json:"polls"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	TriggeredBy string     `json:"triggered_by,omitempty"`
}
