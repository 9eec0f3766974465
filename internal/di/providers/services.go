package providers

import (
	"github.com/samber/do/v2"

	"github.com/gdgscriet/studyjam-server/internal/auth"
	"github.com/gdgscriet/studyjam-server/internal/config"
	"github.com/gdgscriet/studyjam-server/internal/events"
	"github.com/gdgscriet/studyjam-server/internal/logger"
	"github.com/gdgscriet/studyjam-server/internal/service"
	"github.com/gdgscriet/studyjam-server/internal/validation"
)

// DashboardHandle wraps the dashboard service so an in-flight load is cancelled on shutdown.
type DashboardHandle struct {
	*service.DashboardService
}

// Shutdown implements do.Shutdownable.
func (h *DashboardHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideDashboardService provides the participant snapshot service.
func ProvideDashboardService(i do.Injector) (*DashboardHandle, error) {
	client := do.MustInvoke[*RemoteClientHandle](i)
	history := do.MustInvoke[*HistoryHandle](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewDashboardService(
		client.Client,
		history.Store,
		cacheHandle.Cache,
		sseHandle.Manager,
		log.WithComponent("dashboard").Logger,
	)
	return &DashboardHandle{DashboardService: svc}, nil
}

// ProvideFeedService provides the public leaderboard feed service.
func ProvideFeedService(i do.Injector) (*service.FeedService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFeedService(cfg.Feed.CSVPath, searchService, sseHandle.Manager, log.WithComponent("feed").Logger), nil
}

// ProvideEventService provides the event catalog service.
func ProvideEventService(i do.Injector) (*service.EventService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	log := do.MustInvoke[*logger.Logger](i)

	catalog, err := events.New(events.Options{
		File:     cfg.Events.File,
		ImageDir: cfg.Events.ImageDir,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	svc := service.NewEventService(catalog, cfg.Events.File, searchService, log.WithComponent("events").Logger)
	log.Info("Event catalog loaded", "events", len(svc.List(true)), "file", cfg.Events.File)
	return svc, nil
}

// BotHandle wraps the bot service so the status poller stops on shutdown.
type BotHandle struct {
	*service.BotService
}

// ProvideBotService provides the scraper bot service.
func ProvideBotService(i do.Injector) (*BotHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	client := do.MustInvoke[*RemoteClientHandle](i)
	dashboard := do.MustInvoke[*DashboardHandle](i)
	history := do.MustInvoke[*HistoryHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewBotService(
		client.Client,
		dashboard.DashboardService,
		history.Store,
		sseHandle.Manager,
		service.BotOptions{
			DefaultAPIKey:   cfg.Bot.APIKey,
			PollInterval:    cfg.Bot.PollInterval,
			MaxPollDuration: cfg.Bot.MaxPollDuration,
		},
		log.WithComponent("bot").Logger,
	)
	return &BotHandle{BotService: svc}, nil
}

// AuthHandle wraps the auth service so its login limiter stops on shutdown.
type AuthHandle struct {
	*service.AuthService
}

// Shutdown implements do.Shutdownable.
func (h *AuthHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideAuthService provides the admin login service.
func ProvideAuthService(i do.Injector) (*AuthHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	client := do.MustInvoke[*RemoteClientHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewAuthService(client.Client, tokens, validator, cfg.Auth.LoginRPM, log.WithComponent("auth").Logger)
	return &AuthHandle{AuthService: svc}, nil
}

// ProvideUploadService provides the participant CSV upload service.
func ProvideUploadService(i do.Injector) (*service.UploadService, error) {
	client := do.MustInvoke[*RemoteClientHandle](i)
	dashboard := do.MustInvoke[*DashboardHandle](i)
	history := do.MustInvoke[*HistoryHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUploadService(client.Client, dashboard.DashboardService, history.Store, sseHandle.Manager, log.WithComponent("upload").Logger), nil
}

// ProvideActivityService provides the admin activity log.
func ProvideActivityService(i do.Injector) (*service.ActivityService, error) {
	history := do.MustInvoke[*HistoryHandle](i)
	return service.NewActivityService(history.Store), nil
}
