package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdgscriet/studyjam-server/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	require.NoError(t, s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	for _, table := range []string{"dashboard_loads", "bot_runs", "csv_uploads"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path, nil)
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}

func TestLoads(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 10, 3, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.RecordLoad(ctx, &domain.LoadRecord{ID: "load-1", Seq: 1, Participants: 10, StatsOK: true, StartedAt: base}))
	require.NoError(t, s.RecordLoad(ctx, &domain.LoadRecord{ID: "load-2", Seq: 2, Error: "Cannot connect", Superseded: true, StartedAt: base.Add(time.Minute)}))

	loads, err := s.RecentLoads(ctx, 10)
	require.NoError(t, err)
	require.Len(t, loads, 2)
	assert.Equal(t, "load-2", loads[0].ID)
	assert.True(t, loads[0].Superseded)
	assert.Equal(t, "Cannot connect", loads[0].Error)
	assert.Equal(t, uint64(1), loads[1].Seq)
	assert.True(t, loads[1].StatsOK)
	assert.Equal(t, base, loads[1].StartedAt)
}

func TestBotRuns_Upsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	started := time.Date(2024, 10, 3, 9, 0, 0, 0, time.UTC)

	run := &domain.BotRun{ID: "run-1", ScrapeType: domain.ScrapeAll, State: domain.PollRunning, StartedAt: started, TriggeredBy: "Asha"}
	require.NoError(t, s.SaveBotRun(ctx, run))

	finished := started.Add(2 * time.Minute)
	run.State = domain.PollCompleted
	run.Polls = 40
	run.Message = "Scraping completed! Refreshing data..."
	run.FinishedAt = &finished
	require.NoError(t, s.SaveBotRun(ctx, run))

	runs, err := s.RecentBotRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, domain.PollCompleted, runs[0].State)
	assert.Equal(t, 40, runs[0].Polls)
	assert.Equal(t, "Asha", runs[0].TriggeredBy)
	require.NotNil(t, runs[0].FinishedAt)
	assert.Equal(t, finished, *runs[0].FinishedAt)
}

func TestUploads(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordUpload(ctx, &domain.UploadRecord{
		ID: "upl-1", Filename: "jam.csv", Size: 120, Added: 3, Updated: 1, Message: "ok", CreatedAt: time.Now(),
	}))

	uploads, err := s.RecentUploads(ctx, 5)
	require.NoError(t, err)
	require.Len(t, uploads, 1)
	assert.Equal(t, "jam.csv", uploads[0].Filename)
	assert.Equal(t, 3, uploads[0].Added)
	assert.Empty(t, uploads[0].Error)
}

func TestOpen_RecordsSchemaVersion(t *testing.T) {
	s := newTestStore(t)

	var version int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, len(migrations), version)
}

func TestOpen_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path, nil)
	require.NoError(t, err)
	_, err = s.db.Exec("PRAGMA user_version = 99")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(path, nil)
	assert.ErrorContains(t, err, "schema version 99")
}

func TestPrune(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := old.AddDate(0, 6, 0)
	finished := old.Add(time.Minute)

	require.NoError(t, s.RecordLoad(ctx, &domain.LoadRecord{ID: "load-old", Seq: 1, StartedAt: old}))
	require.NoError(t, s.RecordLoad(ctx, &domain.LoadRecord{ID: "load-new", Seq: 2, StartedAt: recent}))
	require.NoError(t, s.SaveBotRun(ctx, &domain.BotRun{ID: "run-done", ScrapeType: domain.ScrapeAll, State: domain.PollCompleted, StartedAt: old, FinishedAt: &finished}))
	require.NoError(t, s.SaveBotRun(ctx, &domain.BotRun{ID: "run-open", ScrapeType: domain.ScrapeAll, State: domain.PollRunning, StartedAt: old}))
	require.NoError(t, s.RecordUpload(ctx, &domain.UploadRecord{ID: "upl-old", Filename: "a.csv", CreatedAt: old}))

	n, err := s.Prune(ctx, old.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	loads, err := s.RecentLoads(ctx, 10)
	require.NoError(t, err)
	require.Len(t, loads, 1)
	assert.Equal(t, "load-new", loads[0].ID)

	runs, err := s.RecentBotRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-open", runs[0].ID)

	uploads, err := s.RecentUploads(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, uploads)
}
