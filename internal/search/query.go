package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SearchParams configures a search query.
type SearchParams struct {
	Query  string
	Types  []DocType // empty means all
	Limit  int
	Offset int
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{Limit: 20}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []SearchHit  `json:"hits"`
	Facets []FacetCount `json:"facets,omitempty"`
}

// SearchHit represents a single search result.
type SearchHit struct {
	ID         string            `json:"id"`
	Type       DocType           `json:"type"`
	Score      float64           `json:"score"`
	Name       string            `json:"name"`
	Location   string            `json:"location,omitempty"`
	URL        string            `json:"url,omitempty"`
	Date       string            `json:"date,omitempty"`
	Rank       int               `json:"rank,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// FacetCount is the number of hits per document type.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a search query. An empty query matches everything.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if params.Limit <= 0 {
		params.Limit = DefaultSearchParams().Limit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, params.Offset, false)
	req.SortBy([]string{"-_score", "rank", "name"})
	req.AddFacet("type", bleve.NewFacetRequest("type", 5))
	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField("name")
	req.Fields = []string{"type", "name", "location", "url", "date", "rank"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(res.Hits)),
	}

	for _, hit := range res.Hits {
		h := SearchHit{ID: hit.ID, Score: hit.Score}
		if t, ok := hit.Fields["type"].(string); ok {
			h.Type = DocType(t)
		}
		h.Name, _ = hit.Fields["name"].(string)
		h.Location, _ = hit.Fields["location"].(string)
		h.URL, _ = hit.Fields["url"].(string)
		h.Date, _ = hit.Fields["date"].(string)
		if r, ok := hit.Fields["rank"].(float64); ok {
			h.Rank = int(r)
		}
		for field, fragments := range hit.Fragments {
			if len(fragments) == 0 {
				continue
			}
			if h.Highlights == nil {
				h.Highlights = make(map[string]string)
			}
			h.Highlights[field] = fragments[0]
		}
		result.Hits = append(result.Hits, h)
	}

	if facet, ok := res.Facets["type"]; ok && facet.Terms != nil {
		for _, term := range facet.Terms.Terms() {
			result.Facets = append(result.Facets, FacetCount{Value: term.Term, Count: term.Count})
		}
	}

	return result, nil
}

func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		lower := strings.ToLower(q)

		nameMatch := bleve.NewMatchQuery(q)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)

		textMatch := bleve.NewMatchQuery(q)
		textMatch.SetField("text")

		locationMatch := bleve.NewMatchQuery(q)
		locationMatch.SetField("location")
		locationMatch.SetBoost(0.8)

		// Typo tolerance on names.
		fuzzy := bleve.NewFuzzyQuery(lower)
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("name")
		fuzzy.SetBoost(0.8)

		textQueries := []query.Query{nameMatch, textMatch, locationMatch, fuzzy}

		// Autocomplete once there are two characters.
		if len(lower) >= 2 && !strings.ContainsRune(lower, ' ') {
			prefix := bleve.NewPrefixQuery(lower)
			prefix.SetField("name")
			prefix.SetBoost(0.5)
			textQueries = append(textQueries, prefix)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if len(params.Types) > 0 {
		typeQueries := make([]query.Query, len(params.Types))
		for i, t := range params.Types {
			tq := bleve.NewTermQuery(string(t))
			tq.SetField("type")
			typeQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(typeQueries...))
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}
