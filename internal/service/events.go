package service

import (
	"context"
	"log/slog"
	"time"

	domainerrors "github.com/gdgscriet/studyjam-server/internal/errors"
	"github.com/gdgscriet/studyjam-server/internal/events"
)

// EventService serves the event catalog at the current time.
type EventService struct {
	catalog *events.Catalog
	file    string
	search  *SearchService
	logger  *slog.Logger
	now     func() time.Time
}

// NewEventService wraps a catalog. file is the catalog's backing file, empty for
// the built-in one; search may be nil.
func NewEventService(catalog *events.Catalog, file string, search *SearchService, logger *slog.Logger) *EventService {
	s := &EventService{
		catalog: catalog,
		file:    file,
		search:  search,
		logger:  logger,
		now:     time.Now,
	}
	s.reindex()
	return s
}

// List returns events; ended ones only when includeEnded is set.
func (s *EventService) List(includeEnded bool) []events.View {
	return s.catalog.List(s.now(), includeEnded)
}

// Get returns one event by slug.
func (s *EventService) Get(slug string) (events.View, error) {
	v, ok := s.catalog.Get(slug, s.now())
	if !ok {
		return events.View{}, domainerrors.NotFoundf("event %q not found", slug)
	}
	return v, nil
}

// Reload re-reads the catalog file. A bad file keeps the previous catalog.
func (s *EventService) Reload() error {
	if s.file == "" {
		return nil
	}
	if err := s.catalog.ReloadFile(s.file); err != nil {
		return err
	}
	s.reindex()
	return nil
}

// Watch reloads the catalog whenever its file changes, until ctx is cancelled.
func (s *EventService) Watch(ctx context.Context) error {
	if s.file == "" {
		return nil
	}
	return watchFile(ctx, s.file, s.logger, func() {
		if err := s.Reload(); err != nil {
			s.logger.Error("failed to reload event catalog", "file", s.file, "error", err)
		}
	})
}

func (s *EventService) reindex() {
	if s.search != nil {
		s.search.IndexEvents(s.catalog.Texts())
	}
}
