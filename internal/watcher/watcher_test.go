package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, opts Options, paths ...string) *Watcher {
	t.Helper()
	w, err := New(slog.New(slog.DiscardHandler), opts)
	require.NoError(t, err)
	for _, p := range paths {
		require.NoError(t, w.Watch(p))
	}

	ctx, cancel := context.WithCancel(context.Background())
	go w.Start(ctx) //nolint:errcheck // test goroutine
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})
	return w
}

func nextEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case e := <-w.Events():
		return e
	case err := <-w.Errors():
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
	}
	return Event{}
}

func TestWatcher_FileModified(t *testing.T) {
	dir := t.TempDir()
	feed := filepath.Join(dir, "leaderboard.csv")
	require.NoError(t, os.WriteFile(feed, []byte("Rank,Name,URL\n"), 0o644))

	w := startWatcher(t, Options{SettleDelay: 30 * time.Millisecond}, feed)

	require.NoError(t, os.WriteFile(feed, []byte("Rank,Name,URL\n1,Asha,https://x.dev/a\n"), 0o644))

	e := nextEvent(t, w)
	assert.Equal(t, EventModified, e.Type)
	assert.Equal(t, feed, e.Path)
	assert.Equal(t, int64(37), e.Size)
}

func TestWatcher_SiblingFilesIgnored(t *testing.T) {
	dir := t.TempDir()
	feed := filepath.Join(dir, "leaderboard.csv")
	require.NoError(t, os.WriteFile(feed, []byte("a"), 0o644))

	w := startWatcher(t, Options{SettleDelay: 30 * time.Millisecond}, feed)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.csv"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(feed, []byte("ab"), 0o644))

	e := nextEvent(t, w)
	assert.Equal(t, feed, e.Path)
}

func TestWatcher_Removed(t *testing.T) {
	dir := t.TempDir()
	feed := filepath.Join(dir, "leaderboard.csv")
	require.NoError(t, os.WriteFile(feed, []byte("a"), 0o644))

	w := startWatcher(t, Options{SettleDelay: 30 * time.Millisecond}, feed)

	require.NoError(t, os.Remove(feed))

	e := nextEvent(t, w)
	assert.Equal(t, EventRemoved, e.Type)
}

func TestWatcher_DirectoryInclude(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, Options{SettleDelay: 30 * time.Millisecond, Include: []string{"*.json"}}, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	events := filepath.Join(dir, "events.json")
	require.NoError(t, os.WriteFile(events, []byte("[]"), 0o644))

	e := nextEvent(t, w)
	assert.Equal(t, EventAdded, e.Type)
	assert.Equal(t, events, e.Path)
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := New(slog.New(slog.DiscardHandler), Options{})
	require.NoError(t, err)
	require.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}

func TestEventType_String(t *testing.T) {
	assert.Equal(t, "added", EventAdded.String())
	assert.Equal(t, "modified", EventModified.String())
	assert.Equal(t, "removed", EventRemoved.String())
}
