package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdgscriet/studyjam-server/internal/domain"
)

func setupTestIndex(t *testing.T) *SearchIndex {
	t.Helper()

	index, err := NewSearchIndex(Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	rows := []domain.LeaderboardRow{
		{Rank: 1, Name: "Asha Verma", ProfileURL: "https://skills.example/p/asha", CompletionDate: "2025-10-01"},
		{Rank: 2, Name: "Rohan Gupta", ProfileURL: "https://skills.example/p/rohan"},
		{Rank: 3, Name: "Ashwin Rao", ProfileURL: "https://skills.example/p/ashwin"},
	}
	docs := make([]*SearchDocument, len(rows))
	for i, r := range rows {
		docs[i] = RowToSearchDocument(r)
	}
	require.NoError(t, index.Replace(DocTypeParticipant, docs))

	ev := &domain.Event{Slug: "techsprint", Heading: "TechSprint Hackathon", Location: "Main Auditorium"}
	require.NoError(t, index.Replace(DocTypeEvent, []*SearchDocument{
		EventToSearchDocument(ev, "A 24 hour hackathon building with Gemini and Cloud."),
	}))

	return index
}

func TestNewSearchIndex(t *testing.T) {
	index, err := NewSearchIndex(Options{})
	require.NoError(t, err)
	defer index.Close()

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearchIndex_Replace(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), count)

	// Replacing participants leaves events alone.
	require.NoError(t, index.Replace(DocTypeParticipant, []*SearchDocument{
		RowToSearchDocument(domain.LeaderboardRow{Rank: 1, Name: "Meera", ProfileURL: "https://skills.example/p/meera"}),
	}))

	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestSearchIndex_Replace_RejectsWrongType(t *testing.T) {
	index := setupTestIndex(t)

	err := index.Replace(DocTypeEvent, []*SearchDocument{{ID: "x", Type: DocTypeParticipant, Name: "x"}})
	assert.Error(t, err)
}

func TestSearchIndex_Search_Name(t *testing.T) {
	index := setupTestIndex(t)

	res, err := index.Search(context.Background(), SearchParams{Query: "rohan"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Hits)

	assert.Equal(t, "Rohan Gupta", res.Hits[0].Name)
	assert.Equal(t, DocTypeParticipant, res.Hits[0].Type)
	assert.Equal(t, 2, res.Hits[0].Rank)
	assert.Equal(t, "https://skills.example/p/rohan", res.Hits[0].URL)
}

func TestSearchIndex_Search_Prefix(t *testing.T) {
	index := setupTestIndex(t)

	res, err := index.Search(context.Background(), SearchParams{Query: "ash", Types: []DocType{DocTypeParticipant}})
	require.NoError(t, err)

	var names []string
	for _, h := range res.Hits {
		names = append(names, h.Name)
	}
	assert.ElementsMatch(t, []string{"Asha Verma", "Ashwin Rao"}, names)
}

func TestSearchIndex_Search_EventText(t *testing.T) {
	index := setupTestIndex(t)

	res, err := index.Search(context.Background(), SearchParams{Query: "hackathons"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Hits)

	assert.Equal(t, DocTypeEvent, res.Hits[0].Type)
	assert.Equal(t, "/events/techsprint", res.Hits[0].URL)
}

func TestSearchIndex_Search_ByType(t *testing.T) {
	index := setupTestIndex(t)

	res, err := index.Search(context.Background(), SearchParams{Types: []DocType{DocTypeEvent}})
	require.NoError(t, err)

	assert.Equal(t, uint64(1), res.Total)
	require.Len(t, res.Facets, 1)
	assert.Equal(t, FacetCount{Value: "event", Count: 1}, res.Facets[0])
}

func TestSearchIndex_Search_Fuzzy(t *testing.T) {
	index := setupTestIndex(t)

	res, err := index.Search(context.Background(), SearchParams{Query: "rohen"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Hits)
	assert.Equal(t, "Rohan Gupta", res.Hits[0].Name)
}

func TestSearchParams_Defaults(t *testing.T) {
	assert.Equal(t, 20, DefaultSearchParams().Limit)
}
