package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gdgscriet/studyjam-server/internal/domain"
)

func (s *Server) registerLeaderboardRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getLeaderboard",
		Method:      http.MethodGet,
		Path:        "/api/v1/leaderboard",
		Summary:     "Public leaderboard",
		Description: "Rows of the local leaderboard CSV feed, optionally filtered by name",
		Tags:        []string{"Leaderboard"},
	}, s.handleGetLeaderboard)
}

// LeaderboardInput filters the public leaderboard.
type LeaderboardInput struct {
	Query string `query:"q" maxLength:"200" doc:"Case-insensitive name filter"`
}

// LeaderboardResponse is the public leaderboard.
type LeaderboardResponse struct {
	Rows      []domain.LeaderboardRow `json:"rows" doc:"Matching rows in file order"`
	Total     int                     `json:"total" doc:"Rows in the feed before filtering"`
	Malformed int                     `json:"malformed" doc:"Lines skipped while parsing"`
	LoadedAt  *time.Time              `json:"loaded_at,omitempty" doc:"When the feed file was last read"`
}

// LeaderboardOutput wraps the leaderboard response for Huma.
type LeaderboardOutput struct {
	Body LeaderboardResponse
}

func (s *Server) handleGetLeaderboard(_ context.Context, input *LeaderboardInput) (*LeaderboardOutput, error) {
	snap := s.services.Feed.Snapshot()
	resp := LeaderboardResponse{
		Rows:      s.services.Feed.Rows(input.Query),
		Total:     len(snap.Rows),
		Malformed: len(snap.Malformed),
	}
	if !snap.LoadedAt.IsZero() {
		resp.LoadedAt = &snap.LoadedAt
	}
	return &LeaderboardOutput{Body: resp}, nil
}
