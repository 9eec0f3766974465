package search

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

// SearchIndex wraps an in-memory Bleve index. Feed rows and events are small
// and always re-derivable, so nothing is persisted.
//
// All public methods are safe for concurrent use.
type SearchIndex struct {
	index  bleve.Index
	logger *slog.Logger
	ids    map[DocType]map[string]struct{}
	mu     sync.RWMutex
}

// Options configures the search index.
type Options struct {
	Logger *slog.Logger
}

// NewSearchIndex creates an empty in-memory index.
func NewSearchIndex(opts Options) (*SearchIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SearchIndex{
		index:  index,
		logger: logger,
		ids:    make(map[DocType]map[string]struct{}),
	}, nil
}

// Close closes the index and releases resources.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// Replace swaps every document of typ for docs in one batch.
// Documents whose Type differs from typ are rejected.
func (s *SearchIndex) Replace(typ DocType, docs []*SearchDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := s.index.NewBatch()
	for id := range s.ids[typ] {
		batch.Delete(id)
	}

	next := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		if doc.Type != typ {
			return fmt.Errorf("document %s has type %s, want %s", doc.ID, doc.Type, typ)
		}
		if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
			return fmt.Errorf("batch index %s: %w", doc.ID, err)
		}
		next[doc.ID] = struct{}{}
	}

	if err := s.index.Batch(batch); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	s.ids[typ] = next

	s.logger.Debug("search documents replaced", "type", string(typ), "count", len(next))
	return nil
}

// DocumentCount returns the total number of indexed documents.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}
