package providers

import (
	"context"
	"errors"
	"time"

	"github.com/samber/do/v2"

	"github.com/gdgscriet/studyjam-server/internal/config"
	"github.com/gdgscriet/studyjam-server/internal/logger"
	"github.com/gdgscriet/studyjam-server/internal/service"
)

// FileWatcherHandle owns the feed and catalog watchers.
type FileWatcherHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (h *FileWatcherHandle) Shutdown() error {
	h.cancel()
	<-h.done
	return nil
}

// ProvideFileWatcher loads the leaderboard feed and starts watching it and the
// event catalog file for changes.
func ProvideFileWatcher(i do.Injector) (*FileWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	feed := do.MustInvoke[*service.FeedService](i)
	eventsService := do.MustInvoke[*service.EventService](i)
	log := do.MustInvoke[*logger.Logger](i)

	if feed.Path() != "" {
		if snap, err := feed.Load(); err != nil {
			log.Warn("Leaderboard feed unavailable", "file", feed.Path(), "error", err)
		} else {
			log.Info("Leaderboard feed loaded", "rows", len(snap.Rows), "malformed", len(snap.Malformed))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &FileWatcherHandle{cancel: cancel, done: make(chan struct{})}

	var watchers []func(context.Context) error
	if cfg.Feed.Watch {
		watchers = append(watchers, feed.Watch)
	}
	watchers = append(watchers, eventsService.Watch)

	go func() {
		defer close(h.done)
		errs := make(chan error, len(watchers))
		for _, watch := range watchers {
			go func() { errs <- watch(ctx) }()
		}
		for range watchers {
			if err := <-errs; err != nil && !errors.Is(err, context.Canceled) {
				log.Error("File watcher stopped", "error", err)
			}
		}
	}()

	log.Info("File watchers started", "feed", cfg.Feed.Watch && feed.Path() != "", "events", cfg.Events.File != "")

	return h, nil
}

// StartInitialLoad fetches the first participant snapshot in the background so
// the HTTP server can accept requests while the remote API answers.
func StartInitialLoad(i do.Injector) {
	dashboard := do.MustInvoke[*DashboardHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), initialLoadTimeout)
		defer cancel()

		snap, err := dashboard.Load(ctx)
		switch {
		case errors.Is(err, service.ErrLoadSuperseded):
			return
		case err != nil:
			log.Error("Initial dashboard load failed", "error", err)
		case snap.Error != "":
			log.Warn("Initial dashboard load incomplete", "error", snap.Error, "stats_ok", snap.StatsOK)
		default:
			log.Info("Initial dashboard load completed", "participants", len(snap.Participants))
		}
	}()
}

// historyPruneInterval is how often old history rows are deleted.
const historyPruneInterval = 6 * time.Hour

// HistoryCleanupJob periodically deletes history older than the configured retention.
type HistoryCleanupJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *HistoryCleanupJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideHistoryCleanupJob provides the history retention job. A zero retention keeps everything.
func ProvideHistoryCleanupJob(i do.Injector) (*HistoryCleanupJob, error) {
	cfg := do.MustInvoke[*config.Config](i)
	history := do.MustInvoke[*HistoryHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())
	job := &HistoryCleanupJob{cancel: cancel}

	retention := cfg.Data.HistoryRetention
	if retention == 0 {
		log.Info("History retention disabled")
		return job, nil
	}

	prune := func() {
		n, err := history.Prune(ctx, time.Now().Add(-retention))
		switch {
		case err != nil && ctx.Err() == nil:
			log.Warn("History cleanup failed", "error", err)
		case n > 0:
			log.Info("History cleanup completed", "deleted", n)
		}
	}

	go func() {
		ticker := time.NewTicker(historyPruneInterval)
		defer ticker.Stop()

		prune()
		for {
			select {
			case <-ticker.C:
				prune()
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("History cleanup job started", "retention", retention)

	return job, nil
}
