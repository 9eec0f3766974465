package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gdgscriet/studyjam-server/internal/cache"
	"github.com/gdgscriet/studyjam-server/internal/domain"
	domainerrors "github.com/gdgscriet/studyjam-server/internal/errors"
	"github.com/gdgscriet/studyjam-server/internal/id"
	"github.com/gdgscriet/studyjam-server/internal/normalize"
	"github.com/gdgscriet/studyjam-server/internal/query"
	"github.com/gdgscriet/studyjam-server/internal/remote"
	"github.com/gdgscriet/studyjam-server/internal/sse"
)

// ErrLoadSuperseded is returned by Load when a newer load started before it finished.
var ErrLoadSuperseded = errors.New("dashboard load superseded by a newer load")

const (
	participantsFailedMessage = "Failed to load data from server"
	detailFailedMessage       = "Failed to load participant details"
)

// Snapshot is one installed record set. It is never mutated after install.
type Snapshot struct {
	Seq          uint64               `json:"seq"`
	Participants []domain.Participant `json:"-"`
	Stats        domain.Stats         `json:"stats"`
	StatsOK      bool                 `json:"stats_ok"`
	// Error is the operator message when the participant list failed to load.
	Error    string    `json:"error,omitempty"`
	LoadedAt time.Time `json:"loaded_at"`
}

// ParticipantView is the filtered, sorted and numbered participant table.
type ParticipantView struct {
	query.Result `json:",inline"`
	// Summary aggregates the filtered rows only.
	Summary  domain.Stats `json:"summary"`
	LoadedAt time.Time    `json:"loaded_at"`
}

// WithoutEmails clears participant emails in place, for callers without an admin session.
func (v *ParticipantView) WithoutEmails() *ParticipantView {
	for i := range v.Rows {
		v.Rows[i].Participant.Email = ""
	}
	return v
}

// ParticipantRecord carries the participant fields without domain.Participant's methods,
// so huma can build a schema for the embedding detail type.
type ParticipantRecord domain.Participant

// ParticipantDetail is one participant with badges split by kind.
type ParticipantDetail struct {
	ParticipantRecord `json:",inline"`
	SkillBadges       []domain.Badge `json:"skill_badges"`
	ArcadeGames       []domain.Badge `json:"arcade_games"`
}

// WithoutEmail clears the email, for callers without an admin session.
func (d *ParticipantDetail) WithoutEmail() *ParticipantDetail {
	d.Email = ""
	return d
}

// DashboardService owns the participant record set. Loads replace it wholesale;
// a later load cancels an earlier in-flight one and only the newest may install.
type DashboardService struct {
	source  ParticipantSource
	history HistoryStore
	cache   ParticipantCache
	events  EventEmitter
	logger  *slog.Logger
	now     func() time.Time

	seq      atomic.Uint64
	snapshot atomic.Pointer[Snapshot]

	mu         sync.Mutex
	cancelLoad context.CancelFunc
	// loadDone is closed when the newest started load returns.
	loadDone  chan struct{}
	installMu sync.Mutex
}

// NewDashboardService creates a dashboard service. history and cache may be nil.
func NewDashboardService(source ParticipantSource, history HistoryStore, cache ParticipantCache, events EventEmitter, logger *slog.Logger) *DashboardService {
	if events == nil {
		events = NewNoopEmitter()
	}
	return &DashboardService{
		source:  source,
		history: history,
		cache:   cache,
		events:  events,
		logger:  logger,
		now:     time.Now,
	}
}

// Load fetches stats and participants concurrently and installs the result.
// The two fetches fail independently: failed stats become zeros, failed participants
// an empty set with Snapshot.Error set.
func (s *DashboardService) Load(ctx context.Context) (*Snapshot, error) {
	started := s.now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// seq is taken under mu so that cancel order always matches sequence order.
	done := make(chan struct{})
	defer close(done)
	s.mu.Lock()
	seq := s.seq.Add(1)
	if s.cancelLoad != nil {
		s.cancelLoad()
	}
	s.cancelLoad = cancel
	s.loadDone = done
	s.mu.Unlock()

	var (
		stats        domain.Stats
		statsErr     error
		participants []domain.Participant
		listErr      error
		g            errgroup.Group
	)
	g.Go(func() error {
		stats, statsErr = s.source.GetStats(ctx)
		return nil
	})
	g.Go(func() error {
		participants, listErr = s.source.ListParticipants(ctx)
		return nil
	})
	_ = g.Wait() //nolint:errcheck // both funcs return nil

	record := &domain.LoadRecord{Seq: seq, StartedAt: started}

	if ctx.Err() != nil {
		record.Superseded = true
		record.Error = ctx.Err().Error()
		s.recordLoad(record, started)
		if s.seq.Load() != seq {
			return nil, ErrLoadSuperseded
		}
		return nil, ctx.Err()
	}

	snap := &Snapshot{Seq: seq, LoadedAt: s.now()}
	if statsErr != nil {
		s.logger.Warn("failed to load stats", "seq", seq, "error", statsErr)
	} else {
		snap.Stats = stats
		snap.StatsOK = true
	}
	if listErr != nil {
		s.logger.Error("failed to load participants", "seq", seq, "error", listErr)
		snap.Participants = []domain.Participant{}
		snap.Error = participantsFailedMessage
	} else {
		snap.Participants = normalize.Participants(participants)
	}

	if !s.install(snap) {
		record.Superseded = true
		s.recordLoad(record, started)
		return nil, ErrLoadSuperseded
	}

	if s.cache != nil {
		if err := s.cache.Clear(); err != nil {
			s.logger.Warn("failed to clear participant cache", "error", err)
		}
	}

	record.Participants = len(snap.Participants)
	record.StatsOK = snap.StatsOK
	record.Error = snap.Error
	s.recordLoad(record, started)

	s.events.Emit(sse.NewDashboardReloadedEvent(len(snap.Participants), snap.Stats, snap.Error))
	s.logger.Info("dashboard snapshot installed",
		"seq", seq,
		"participants", len(snap.Participants),
		"stats_ok", snap.StatsOK)
	return snap, nil
}

// install stores snap unless a newer snapshot is already in place.
func (s *DashboardService) install(snap *Snapshot) bool {
	s.installMu.Lock()
	defer s.installMu.Unlock()

	if cur := s.snapshot.Load(); cur != nil && cur.Seq > snap.Seq {
		return false
	}
	s.snapshot.Store(snap)
	return true
}

func (s *DashboardService) recordLoad(r *domain.LoadRecord, started time.Time) {
	if s.history == nil {
		return
	}
	r.DurationMs = s.now().Sub(started).Milliseconds()
	r.ID = id.MustGenerate(id.PrefixLoad)
	// The request context may already be cancelled; history still gets written.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.history.RecordLoad(ctx, r); err != nil {
		s.logger.Warn("failed to record load", "error", err)
	}
}

// Snapshot returns the installed snapshot, or nil before the first load.
func (s *DashboardService) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// Current returns the installed snapshot, loading if there is none yet. When its own
// load is superseded it waits for the newer load rather than failing or starting another.
func (s *DashboardService) Current(ctx context.Context) (*Snapshot, error) {
	for {
		if snap := s.snapshot.Load(); snap != nil {
			return snap, nil
		}
		snap, err := s.Load(ctx)
		if !errors.Is(err, ErrLoadSuperseded) {
			return snap, err
		}
		if snap := s.snapshot.Load(); snap != nil {
			return snap, nil
		}

		s.mu.Lock()
		newer := s.loadDone
		s.mu.Unlock()
		select {
		case <-newer:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Participants returns the ranked view of the current snapshot.
func (s *DashboardService) Participants(ctx context.Context, spec query.FilterSpec, keys []query.SortKey) (*ParticipantView, error) {
	snap, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	if snap.Error != "" && len(snap.Participants) == 0 {
		return nil, domainerrors.Unavailable(snap.Error)
	}

	res := query.Apply(snap.Participants, spec, keys)
	filtered := make([]domain.Participant, len(res.Rows))
	for i, r := range res.Rows {
		filtered[i] = r.Participant
	}
	return &ParticipantView{
		Result:   res,
		Summary:  domain.ComputeStats(filtered),
		LoadedAt: snap.LoadedAt,
	}, nil
}

// Stats returns the aggregate block of the current snapshot.
func (s *DashboardService) Stats(ctx context.Context) (*Snapshot, error) {
	return s.Current(ctx)
}

// Participant returns one participant's normalized detail, from cache when possible.
func (s *DashboardService) Participant(ctx context.Context, participantID string) (*ParticipantDetail, error) {
	if s.cache != nil {
		if p, err := s.cache.GetParticipant(participantID); err == nil {
			return newDetail(*p), nil
		} else if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("participant cache read failed", "id", participantID, "error", err)
		}
	}

	p, err := s.source.GetParticipant(ctx, participantID)
	if err != nil {
		var respErr *remote.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
			return nil, domainerrors.NotFoundf("participant %s not found", participantID)
		}
		return nil, domainerrors.Upstream(detailFailedMessage, err)
	}

	normalized := normalize.Participant(*p)
	if s.cache != nil {
		if err := s.cache.PutParticipant(&normalized); err != nil {
			s.logger.Warn("participant cache write failed", "id", participantID, "error", err)
		}
	}
	return newDetail(normalized), nil
}

func newDetail(p domain.Participant) *ParticipantDetail {
	skill := p.BadgesOfType(domain.BadgeTypeSkill)
	arcade := p.BadgesOfType(domain.BadgeTypeArcade)
	if skill == nil {
		skill = []domain.Badge{}
	}
	if arcade == nil {
		arcade = []domain.Badge{}
	}
	return &ParticipantDetail{ParticipantRecord: ParticipantRecord(p), SkillBadges: skill, ArcadeGames: arcade}
}

// Stop cancels any in-flight load.
func (s *DashboardService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelLoad != nil {
		s.cancelLoad()
	}
}
