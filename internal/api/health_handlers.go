package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy or degraded"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(_ context.Context, _ *struct{}) (*HealthOutput, error) {
	components := map[string]ComponentHealth{
		"dashboard": s.checkDashboard(),
		"feed":      s.checkFeed(),
		"sse":       s.checkSSEManager(),
	}

	overall := "healthy"
	for _, c := range components {
		if c.Status != "healthy" {
			overall = "degraded"
		}
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Components: components,
		},
	}, nil
}

// checkDashboard reports whether the participant snapshot loaded.
func (s *Server) checkDashboard() ComponentHealth {
	snap := s.services.Dashboard.Snapshot()
	switch {
	case snap == nil:
		return ComponentHealth{Status: "degraded", Message: "not loaded yet"}
	case snap.Error != "":
		return ComponentHealth{Status: "degraded", Message: snap.Error}
	case !snap.StatsOK:
		return ComponentHealth{Status: "degraded", Message: "stats unavailable"}
	default:
		return ComponentHealth{Status: "healthy", Message: fmt.Sprintf("%d participants", len(snap.Participants))}
	}
}

func (s *Server) checkFeed() ComponentHealth {
	if s.services.Feed.Path() == "" {
		return ComponentHealth{Status: "healthy", Message: "no feed configured"}
	}
	snap := s.services.Feed.Snapshot()
	if snap.LoadedAt.IsZero() {
		return ComponentHealth{Status: "degraded", Message: "feed not loaded"}
	}
	return ComponentHealth{Status: "healthy", Message: fmt.Sprintf("%d rows", len(snap.Rows))}
}

func (s *Server) checkSSEManager() ComponentHealth {
	switch n := s.services.SSE.ClientCount(); n {
	case 1:
		return ComponentHealth{Status: "healthy", Message: "1 connected client"}
	default:
		return ComponentHealth{Status: "healthy", Message: fmt.Sprintf("%d connected clients", n)}
	}
}
