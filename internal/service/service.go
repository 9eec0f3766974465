// Package service holds the tracker's application logic: the in-memory participant
// snapshot, the public leaderboard feed, bot control, admin sessions, uploads, events
// and search. Handlers in internal/api call these; nothing here knows about HTTP.
package service

import (
	"context"
	"io"

	"github.com/gdgscriet/studyjam-server/internal/domain"
	"github.com/gdgscriet/studyjam-server/internal/sse"
)

// ParticipantSource is the read side of the participant API.
type ParticipantSource interface {
	ListParticipants(ctx context.Context) ([]domain.Participant, error)
	GetParticipant(ctx context.Context, id string) (*domain.Participant, error)
	GetStats(ctx context.Context) (domain.Stats, error)
}

// BotAPI controls the remote scraper bot.
type BotAPI interface {
	BotStatus(ctx context.Context, apiKey string) (domain.BotStatus, error)
	TriggerBot(ctx context.Context, apiKey string, scrapeType domain.ScrapeType) (string, error)
}

// Authenticator verifies admin credentials.
type Authenticator interface {
	Login(ctx context.Context, firstName, accessCode string) (domain.LoginResult, error)
}

// CSVUploader forwards participant CSV files.
type CSVUploader interface {
	UploadCSV(ctx context.Context, filename string, content io.Reader) (domain.UploadResult, error)
}

// HistoryStore persists what the server did.
type HistoryStore interface {
	RecordLoad(ctx context.Context, r *domain.LoadRecord) error
	RecentLoads(ctx context.Context, limit int) ([]domain.LoadRecord, error)
	SaveBotRun(ctx context.Context, run *domain.BotRun) error
	RecentBotRuns(ctx context.Context, limit int) ([]domain.BotRun, error)
	RecordUpload(ctx context.Context, u *domain.UploadRecord) error
	RecentUploads(ctx context.Context, limit int) ([]domain.UploadRecord, error)
}

// ParticipantCache caches participant details between reloads.
type ParticipantCache interface {
	GetParticipant(id string) (*domain.Participant, error)
	PutParticipant(p *domain.Participant) error
	Clear() error
}

// EventEmitter broadcasts live updates.
type EventEmitter interface {
	Emit(event sse.Event)
}

type noopEmitter struct{}

func (noopEmitter) Emit(sse.Event) {}

// NewNoopEmitter returns an emitter that drops everything.
func NewNoopEmitter() EventEmitter { return noopEmitter{} }
