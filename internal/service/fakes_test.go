package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gdgscriet/studyjam-server/internal/cache"
	"github.com/gdgscriet/studyjam-server/internal/domain"
	domainerrors "github.com/gdgscriet/studyjam-server/internal/errors"
	"github.com/gdgscriet/studyjam-server/internal/sse"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type fakeSource struct {
	mu           sync.Mutex
	participants []domain.Participant
	stats        domain.Stats
	listErr      error
	statsErr     error
	detail       map[string]*domain.Participant
	detailErr    error
	detailCalls  int
	// listHook runs before ListParticipants returns; it may block on ctx.
	listHook func(ctx context.Context) error
}

func (f *fakeSource) ListParticipants(ctx context.Context) ([]domain.Participant, error) {
	f.mu.Lock()
	hook := f.listHook
	f.mu.Unlock()
	if hook != nil {
		if err := hook(ctx); err != nil {
			return nil, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Participant, len(f.participants))
	for i := range f.participants {
		out[i] = f.participants[i].Clone()
	}
	return out, nil
}

func (f *fakeSource) GetParticipant(_ context.Context, id string) (*domain.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls++
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	p, ok := f.detail[id]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	c := p.Clone()
	return &c, nil
}

func (f *fakeSource) GetStats(context.Context) (domain.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats, f.statsErr
}

type fakeHistory struct {
	mu      sync.Mutex
	loads   []domain.LoadRecord
	runs    map[string]domain.BotRun
	order   []string
	uploads []domain.UploadRecord
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{runs: make(map[string]domain.BotRun)}
}

func (h *fakeHistory) RecordLoad(_ context.Context, r *domain.LoadRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loads = append(h.loads, *r)
	return nil
}

func (h *fakeHistory) RecentLoads(context.Context, int) ([]domain.LoadRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.LoadRecord(nil), h.loads...), nil
}

func (h *fakeHistory) SaveBotRun(_ context.Context, run *domain.BotRun) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.runs[run.ID]; !ok {
		h.order = append(h.order, run.ID)
	}
	h.runs[run.ID] = *run
	return nil
}

func (h *fakeHistory) RecentBotRuns(context.Context, int) ([]domain.BotRun, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.BotRun, 0, len(h.order))
	for _, id := range h.order {
		out = append(out, h.runs[id])
	}
	return out, nil
}

func (h *fakeHistory) RecordUpload(_ context.Context, u *domain.UploadRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.uploads = append(h.uploads, *u)
	return nil
}

func (h *fakeHistory) RecentUploads(context.Context, int) ([]domain.UploadRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.UploadRecord(nil), h.uploads...), nil
}

func (h *fakeHistory) run(id string) domain.BotRun {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.runs[id]
}

type fakeCache struct {
	mu      sync.Mutex
	items   map[string]domain.Participant
	cleared int
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[string]domain.Participant)}
}

func (c *fakeCache) GetParticipant(id string) (*domain.Participant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.items[id]
	if !ok {
		return nil, cache.ErrMiss
	}
	return &p, nil
}

func (c *fakeCache) PutParticipant(p *domain.Participant) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[string(p.ID)] = p.Clone()
	return nil
}

func (c *fakeCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.items)
	c.cleared++
	return nil
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []sse.Event
}

func (r *recordingEmitter) Emit(e sse.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingEmitter) types() []sse.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sse.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// errMessage returns the operator-facing message of a domain error.
func errMessage(t *testing.T, err error) string {
	t.Helper()
	var de *domainerrors.Error
	require.ErrorAs(t, err, &de)
	return de.Message
}
