package service

import (
	"context"
	"log/slog"

	"github.com/gdgscriet/studyjam-server/internal/domain"
	domainerrors "github.com/gdgscriet/studyjam-server/internal/errors"
	"github.com/gdgscriet/studyjam-server/internal/events"
	"github.com/gdgscriet/studyjam-server/internal/search"
)

const maxSearchLimit = 100

// SearchService keeps the full-text index in step with the feed and the event catalog.
type SearchService struct {
	index  *search.SearchIndex
	logger *slog.Logger
}

// NewSearchService wraps an index.
func NewSearchService(index *search.SearchIndex, logger *slog.Logger) *SearchService {
	return &SearchService{index: index, logger: logger}
}

// IndexRows replaces the indexed leaderboard rows.
func (s *SearchService) IndexRows(rows []domain.LeaderboardRow) {
	docs := make([]*search.SearchDocument, len(rows))
	for i, row := range rows {
		docs[i] = search.RowToSearchDocument(row)
	}
	if err := s.index.Replace(search.DocTypeParticipant, docs); err != nil {
		s.logger.Error("failed to index leaderboard rows", "error", err)
		return
	}
	s.logger.Debug("indexed leaderboard rows", "count", len(docs))
}

// IndexEvents replaces the indexed events.
func (s *SearchService) IndexEvents(items []events.Indexed) {
	docs := make([]*search.SearchDocument, len(items))
	for i := range items {
		docs[i] = search.EventToSearchDocument(&items[i].Event, items[i].Text)
	}
	if err := s.index.Replace(search.DocTypeEvent, docs); err != nil {
		s.logger.Error("failed to index events", "error", err)
		return
	}
	s.logger.Debug("indexed events", "count", len(docs))
}

// Search runs a query. Unknown types are a validation error.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	for _, t := range params.Types {
		if t != search.DocTypeParticipant && t != search.DocTypeEvent {
			return nil, domainerrors.Validationf("unknown search type %q", t)
		}
	}
	if params.Limit > maxSearchLimit {
		params.Limit = maxSearchLimit
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	res, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "search failed")
	}
	return res, nil
}
