package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdgscriet/studyjam-server/internal/domain"
	"github.com/gdgscriet/studyjam-server/internal/leaderboard"
	"github.com/gdgscriet/studyjam-server/internal/sse"
)

// FeedSnapshot is the parsed public leaderboard.
type FeedSnapshot struct {
	leaderboard.Feed `json:",inline"`
	LoadedAt         time.Time `json:"loaded_at"`
}

// FeedService serves the public leaderboard from a local CSV file.
type FeedService struct {
	path   string
	search *SearchService
	events EventEmitter
	logger *slog.Logger

	feed   atomic.Pointer[FeedSnapshot]
	loadMu sync.Mutex
}

// NewFeedService creates a feed service for path. An empty path serves an empty board.
// search may be nil.
func NewFeedService(path string, search *SearchService, events EventEmitter, logger *slog.Logger) *FeedService {
	if events == nil {
		events = NewNoopEmitter()
	}
	s := &FeedService{path: path, search: search, events: events, logger: logger}
	s.feed.Store(&FeedSnapshot{Feed: leaderboard.Feed{Rows: []domain.LeaderboardRow{}}})
	return s
}

// Path is the feed file, empty when none is configured.
func (s *FeedService) Path() string {
	return s.path
}

// Load re-reads the feed file. On a read error the previous rows are kept.
func (s *FeedService) Load() (*FeedSnapshot, error) {
	if s.path == "" {
		return s.feed.Load(), nil
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open feed: %w", err)
	}
	defer f.Close()

	parsed, err := leaderboard.ParseReader(f)
	if err != nil {
		return nil, err
	}

	for _, m := range parsed.Malformed {
		s.logger.Warn("skipping malformed leaderboard line",
			"file", s.path,
			"line", m.Line,
			"reason", m.Reason)
	}

	snap := &FeedSnapshot{Feed: parsed, LoadedAt: time.Now()}
	s.feed.Store(snap)

	if s.search != nil {
		s.search.IndexRows(parsed.Rows)
	}
	s.events.Emit(sse.NewFeedReloadedEvent(len(parsed.Rows), len(parsed.Malformed)))
	s.logger.Info("leaderboard feed loaded",
		"file", s.path,
		"rows", len(parsed.Rows),
		"malformed", len(parsed.Malformed))
	return snap, nil
}

// Snapshot returns the current feed.
func (s *FeedService) Snapshot() *FeedSnapshot {
	return s.feed.Load()
}

// Rows returns rows whose name contains q, case-insensitively. Empty q returns all rows.
func (s *FeedService) Rows(q string) []domain.LeaderboardRow {
	return leaderboard.Search(s.feed.Load().Rows, q)
}

// Watch reloads the feed whenever the file changes, until ctx is cancelled.
func (s *FeedService) Watch(ctx context.Context) error {
	if s.path == "" {
		return nil
	}
	return watchFile(ctx, s.path, s.logger, func() {
		if _, err := s.Load(); err != nil {
			s.logger.Error("failed to reload leaderboard feed", "file", s.path, "error", err)
		}
	})
}
