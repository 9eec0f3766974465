package api

import (
	"github.com/gdgscriet/studyjam-server/internal/service"
	"github.com/gdgscriet/studyjam-server/internal/sse"
)

// Services groups all business logic services used by the API server.
type Services struct {
	Dashboard *service.DashboardService
	Feed      *service.FeedService
	Events    *service.EventService
	Search    *service.SearchService
	Bot       *service.BotService
	Auth      *service.AuthService
	Upload    *service.UploadService
	Activity  *service.ActivityService // nil when history is disabled
	SSE       *sse.Manager
}
