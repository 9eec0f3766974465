package service

import (
	"cmp"
	"context"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gdgscriet/studyjam-server/internal/domain"
)

// ActivityEntry is one line of the admin history feed.
type ActivityEntry struct {
	Kind   domain.HistoryKind   `json:"kind"`
	At     time.Time            `json:"at"`
	Load   *domain.LoadRecord   `json:"load,omitempty"`
	BotRun *domain.BotRun       `json:"bot_run,omitempty"`
	Upload *domain.UploadRecord `json:"upload,omitempty"`
}

// ActivityService merges loads, bot runs and uploads into one timeline.
type ActivityService struct {
	history HistoryStore
}

// NewActivityService creates an activity service.
func NewActivityService(history HistoryStore) *ActivityService {
	return &ActivityService{history: history}
}

// Recent returns up to limit entries, newest first.
func (s *ActivityService) Recent(ctx context.Context, limit int) ([]ActivityEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	var (
		loads   []domain.LoadRecord
		runs    []domain.BotRun
		uploads []domain.UploadRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		loads, err = s.history.RecentLoads(gctx, limit)
		return err
	})
	g.Go(func() (err error) {
		runs, err = s.history.RecentBotRuns(gctx, limit)
		return err
	})
	g.Go(func() (err error) {
		uploads, err = s.history.RecentUploads(gctx, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make([]ActivityEntry, 0, len(loads)+len(runs)+len(uploads))
	for i := range loads {
		entries = append(entries, ActivityEntry{Kind: domain.HistoryLoad, At: loads[i].StartedAt, Load: &loads[i]})
	}
	for i := range runs {
		entries = append(entries, ActivityEntry{Kind: domain.HistoryBotRun, At: runs[i].StartedAt, BotRun: &runs[i]})
	}
	for i := range uploads {
		entries = append(entries, ActivityEntry{Kind: domain.HistoryUpload, At: uploads[i].CreatedAt, Upload: &uploads[i]})
	}

	slices.SortStableFunc(entries, func(a, b ActivityEntry) int {
		return cmp.Compare(b.At.UnixNano(), a.At.UnixNano())
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
