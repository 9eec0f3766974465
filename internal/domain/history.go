package domain

import "time"

// HistoryKind labels entries in the local activity history.
type HistoryKind string

// History kinds.
const (
	HistoryLoad   HistoryKind = "load"
	HistoryUpload HistoryKind = "upload"
	HistoryBotRun HistoryKind = "bot_run"
)

// LoadRecord summarizes one dashboard load.
type LoadRecord struct {
	ID           string    `json:"id"`
	Seq          uint64    `json:"seq"`
	Participants int       `json:"participants"`
	StatsOK      bool      `json:"stats_ok"`
	Error        string    `json:"error,omitempty"`
	Superseded   bool      `json:"superseded"`
	DurationMs   int64     `json:"duration_ms"`
	StartedAt    time.Time `json:"started_at"`
}

// UploadRecord summarizes one forwarded CSV upload.
type UploadRecord struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	Added      int       `json:"added"`
	Updated    int       `json:"updated"`
	Message    string    `json:"message"`
	Error      string    `json:"error,omitempty"`
	UploadedBy string    `json:"uploaded_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// UploadResult is the remote API's reply to a CSV upload.
type UploadResult struct {
	Message string `json:"message"`
	Added   int    `json:"added"`
	Updated int    `json:"updated"`
}

// LoginResult is the remote API's reply to a successful admin login.
type LoginResult struct {
	AccessToken  string `json:"access_token"`
	FirstName    string `json:"first_name"`
	IsSuperAdmin bool   `json:"is_super_admin"`
}
