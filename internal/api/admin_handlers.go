package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gdgscriet/studyjam-server/internal/domain"
	domainerrors "github.com/gdgscriet/studyjam-server/internal/errors"
	"github.com/gdgscriet/studyjam-server/internal/service"
)

const timeFormat = time.RFC3339

func (s *Server) registerAdminRoutes() {
	security := []map[string][]string{{"bearer": {}}}

	huma.Register(s.api, huma.Operation{
		OperationID: "getStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/stats",
		Summary:     "Dashboard stats",
		Description: "Aggregate block of the current participant snapshot",
		Tags:        []string{"Admin"},
		Security:    security,
	}, s.handleGetStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "refreshDashboard",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/refresh",
		Summary:     "Reload participants",
		Description: "Fetches stats and participants again and replaces the snapshot",
		Tags:        []string{"Admin"},
		Security:    security,
	}, s.handleRefresh)

	huma.Register(s.api, huma.Operation{
		OperationID: "getHistory",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/history",
		Summary:     "Activity history",
		Description: "Recent loads, bot runs and uploads, newest first",
		Tags:        []string{"Admin"},
		Security:    security,
	}, s.handleGetHistory)
}

// StatsResponse is the dashboard aggregate block.
type StatsResponse struct {
	Stats domain.Stats `json:"stats"`
	// StatsOK is false when the stats call failed and zeros are shown.
	StatsOK      bool      `json:"stats_ok"`
	Participants int       `json:"participants"`
	Error        string    `json:"error,omitempty"`
	LoadedAt     time.Time `json:"loaded_at"`
}

// StatsOutput wraps the stats response for Huma.
type StatsOutput struct {
	Body StatsResponse
}

func newStatsResponse(snap *service.Snapshot) StatsResponse {
	return StatsResponse{
		Stats:        snap.Stats,
		StatsOK:      snap.StatsOK,
		Participants: len(snap.Participants),
		Error:        snap.Error,
		LoadedAt:     snap.LoadedAt,
	}
}

func (s *Server) handleGetStats(ctx context.Context, _ *struct{}) (*StatsOutput, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	snap, err := s.services.Dashboard.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &StatsOutput{Body: newStatsResponse(snap)}, nil
}

func (s *Server) handleRefresh(ctx context.Context, _ *struct{}) (*StatsOutput, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	snap, err := s.services.Dashboard.Load(ctx)
	if errors.Is(err, service.ErrLoadSuperseded) {
		// A newer load won; report what is installed.
		if snap = s.services.Dashboard.Snapshot(); snap == nil {
			return nil, domainerrors.Unavailable("a newer reload is in progress")
		}
	} else if err != nil {
		return nil, err
	}
	return &StatsOutput{Body: newStatsResponse(snap)}, nil
}

// HistoryInput limits the history feed.
type HistoryInput struct {
	Limit int `query:"limit" minimum:"0" maximum:"200" doc:"Max entries (default 50)"`
}

// HistoryOutput wraps the history feed for Huma.
type HistoryOutput struct {
	Body []service.ActivityEntry
}

func (s *Server) handleGetHistory(ctx context.Context, input *HistoryInput) (*HistoryOutput, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if s.services.Activity == nil {
		return &HistoryOutput{Body: []service.ActivityEntry{}}, nil
	}
	entries, err := s.services.Activity.Recent(ctx, input.Limit)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to read history")
	}
	return &HistoryOutput{Body: entries}, nil
}
