package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gdgscriet/studyjam-server/internal/watcher"
)

// watchFile calls onChange each time path settles after a write or replace.
// It blocks until ctx is cancelled.
func watchFile(ctx context.Context, path string, logger *slog.Logger, onChange func()) error {
	w, err := watcher.New(logger, watcher.Options{})
	if err != nil {
		return err
	}
	defer w.Stop() //nolint:errcheck // best effort on shutdown

	if err := w.Watch(path); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	go func() {
		if err := w.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Error("file watcher stopped", "path", path, "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			if ev.Type == watcher.EventRemoved {
				logger.Warn("watched file removed, keeping last contents", "path", ev.Path)
				continue
			}
			logger.Debug("watched file changed", "path", ev.Path, "type", ev.Type.String())
			onChange()
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", "path", path, "error", err)
		}
	}
}
