package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdgscriet/studyjam-server/internal/search"
	"github.com/gdgscriet/studyjam-server/internal/sse"
)

const feedHeader = "Rank,Name,Profile URL,Completion Date\n"

func writeFeed(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(feedHeader+body), 0o644))
}

func newTestSearch(t *testing.T) *SearchService {
	t.Helper()
	idx, err := search.NewSearchIndex(search.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return NewSearchService(idx, testLogger())
}

func TestFeed_NoPath(t *testing.T) {
	s := NewFeedService("", nil, nil, testLogger())

	snap, err := s.Load()
	require.NoError(t, err)
	assert.NotNil(t, snap.Rows)
	assert.Empty(t, s.Rows(""))
	assert.NoError(t, s.Watch(context.Background()))
}

func TestFeed_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaderboard.csv")
	writeFeed(t, path, "1,Asha Verma,https://example.com/u/asha,2024-10-03\n"+
		"not a row\n"+
		"2,Bilal Khan,https://example.com/u/bilal,\n")

	em := &recordingEmitter{}
	srch := newTestSearch(t)
	s := NewFeedService(path, srch, em, testLogger())

	snap, err := s.Load()
	require.NoError(t, err)
	assert.Len(t, snap.Rows, 2)
	require.Len(t, snap.Malformed, 1)
	assert.Equal(t, 3, snap.Malformed[0].Line)

	assert.Len(t, s.Rows("BILAL"), 1)
	assert.Len(t, s.Rows(""), 2)
	assert.Equal(t, []sse.EventType{sse.EventFeedReloaded}, em.types())

	res, err := srch.Search(context.Background(), search.SearchParams{Query: "asha"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Hits)
	assert.Equal(t, "Asha Verma", res.Hits[0].Name)
}

func TestFeed_LoadMissingFileKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaderboard.csv")
	writeFeed(t, path, "1,Asha Verma,https://example.com/u/asha,\n")
	s := NewFeedService(path, nil, nil, testLogger())
	_, err := s.Load()
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	_, err = s.Load()
	assert.Error(t, err)
	assert.Len(t, s.Rows(""), 1)
}

func TestFeed_WatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaderboard.csv")
	writeFeed(t, path, "1,Asha Verma,https://example.com/u/asha,\n")
	s := NewFeedService(path, nil, nil, testLogger())
	_, err := s.Load()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)
	writeFeed(t, path, "1,Asha Verma,https://example.com/u/asha,\n2,Bilal Khan,https://example.com/u/bilal,\n")

	assert.Eventually(t, func() bool {
		return len(s.Rows("")) == 2
	}, 3*time.Second, 20*time.Millisecond)
}
