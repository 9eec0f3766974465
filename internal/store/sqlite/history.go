package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gdgscriet/studyjam-server/internal/domain"
)

// RecordLoad stores a dashboard load summary.
func (s *Store) RecordLoad(ctx context.Context, r *domain.LoadRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dashboard_loads (id, seq, participants, stats_ok, error, superseded, duration_ms, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, int64(r.Seq), r.Participants, boolInt(r.StatsOK), nullString(r.Error),
		boolInt(r.Superseded), r.DurationMs, formatTime(r.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("insert dashboard load: %w", err)
	}
	return nil
}

// RecentLoads returns the newest loads first.
func (s *Store) RecentLoads(ctx context.Context, limit int) ([]domain.LoadRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, participants, stats_ok, error, superseded, duration_ms, started_at
		FROM dashboard_loads ORDER BY started_at DESC, seq DESC LIMIT ?`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query dashboard loads: %w", err)
	}
	defer rows.Close()

	out := []domain.LoadRecord{}
	for rows.Next() {
		var (
			r          domain.LoadRecord
			seq        int64
			statsOK    int
			superseded int
			errText    sql.NullString
			startedAt  string
		)
		if err := rows.Scan(&r.ID, &seq, &r.Participants, &statsOK, &errText, &superseded, &r.DurationMs, &startedAt); err != nil {
			return nil, fmt.Errorf("scan dashboard load: %w", err)
		}
		r.Seq = uint64(seq)
		r.StatsOK = statsOK == 1
		r.Superseded = superseded == 1
		r.Error = errText.String
		if r.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveBotRun inserts or updates a bot run.
func (s *Store) SaveBotRun(ctx context.Context, run *domain.BotRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bot_runs (id, scrape_type, state, message, polls, triggered_by, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			message = excluded.message,
			polls = excluded.polls,
			finished_at = excluded.finished_at`,
		run.ID, string(run.ScrapeType), string(run.State), nullString(run.Message), run.Polls,
		nullString(run.TriggeredBy), formatTime(run.StartedAt), nullTimeString(run.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("save bot run: %w", err)
	}
	return nil
}

// RecentBotRuns returns the newest runs first.
func (s *Store) RecentBotRuns(ctx context.Context, limit int) ([]domain.BotRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scrape_type, state, message, polls, triggered_by, started_at, finished_at
		FROM bot_runs ORDER BY started_at DESC LIMIT ?`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query bot runs: %w", err)
	}
	defer rows.Close()

	out := []domain.BotRun{}
	for rows.Next() {
		var (
			run         domain.BotRun
			scrapeType  string
			state       string
			message     sql.NullString
			triggeredBy sql.NullString
			startedAt   string
			finishedAt  sql.NullString
		)
		if err := rows.Scan(&run.ID, &scrapeType, &state, &message, &run.Polls, &triggeredBy, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scan bot run: %w", err)
		}
		run.ScrapeType = domain.ScrapeType(scrapeType)
		run.State = domain.PollState(state)
		run.Message = message.String
		run.TriggeredBy = triggeredBy.String
		if run.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, err
		}
		if run.FinishedAt, err = parseNullableTime(finishedAt); err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// RecordUpload stores a CSV upload summary.
func (s *Store) RecordUpload(ctx context.Context, u *domain.UploadRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO csv_uploads (id, filename, size, added, updated, message, error, uploaded_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Filename, u.Size, u.Added, u.Updated, nullString(u.Message), nullString(u.Error),
		nullString(u.UploadedBy), formatTime(u.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert csv upload: %w", err)
	}
	return nil
}

// RecentUploads returns the newest uploads first.
func (s *Store) RecentUploads(ctx context.Context, limit int) ([]domain.UploadRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, size, added, updated, message, error, uploaded_by, created_at
		FROM csv_uploads ORDER BY created_at DESC LIMIT ?`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query csv uploads: %w", err)
	}
	defer rows.Close()

	out := []domain.UploadRecord{}
	for rows.Next() {
		var (
			u          domain.UploadRecord
			message    sql.NullString
			errText    sql.NullString
			uploadedBy sql.NullString
			createdAt  string
		)
		if err := rows.Scan(&u.ID, &u.Filename, &u.Size, &u.Added, &u.Updated, &message, &errText, &uploadedBy, &createdAt); err != nil {
			return nil, fmt.Errorf("scan csv upload: %w", err)
		}
		u.Message = message.String
		u.Error = errText.String
		u.UploadedBy = uploadedBy.String
		if u.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Prune deletes history older than before from every table and returns how many
// rows went. Bot runs still in progress are kept regardless of age.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	cutoff := formatTime(before)
	stmts := []struct{ table, query string }{
		{"dashboard_loads", `DELETE FROM dashboard_loads WHERE started_at < ?`},
		{"bot_runs", `DELETE FROM bot_runs WHERE started_at < ? AND finished_at IS NOT NULL`},
		{"csv_uploads", `DELETE FROM csv_uploads WHERE created_at < ?`},
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin prune: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var total int64
	for _, st := range stmts {
		res, err := tx.ExecContext(ctx, st.query, cutoff)
		if err != nil {
			return 0, fmt.Errorf("prune %s: %w", st.table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("prune %s: %w", st.table, err)
		}
		total += n
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit prune: %w", err)
	}
	return total, nil
}
