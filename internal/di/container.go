// Package di provides dependency injection configuration for the Study Jam server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/gdgscriet/studyjam-server/internal/auth"
	"github.com/gdgscriet/studyjam-server/internal/config"
	"github.com/gdgscriet/studyjam-server/internal/di/providers"
	"github.com/gdgscriet/studyjam-server/internal/logger"
	"github.com/gdgscriet/studyjam-server/internal/service"
	"github.com/gdgscriet/studyjam-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideValidator)

	// Storage and transport
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideHistory)
	do.Provide(injector, providers.ProvideCache)
	do.Provide(injector, providers.ProvideRemoteClient)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideDashboardService)
	do.Provide(injector, providers.ProvideFeedService)
	do.Provide(injector, providers.ProvideEventService)
	do.Provide(injector, providers.ProvideBotService)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideUploadService)
	do.Provide(injector, providers.ProvideActivityService)

	// Workers
	do.Provide(injector, providers.ProvideFileWatcher)
	do.Provide(injector, providers.ProvideHistoryCleanupJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services, starts the HTTP server and kicks off the
// first participant load.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.HistoryHandle](injector)
	_ = do.MustInvoke[*providers.CacheHandle](injector)
	_ = do.MustInvoke[*providers.RemoteClientHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*providers.DashboardHandle](injector)
	_ = do.MustInvoke[*service.FeedService](injector)
	_ = do.MustInvoke[*service.EventService](injector)
	_ = do.MustInvoke[*providers.BotHandle](injector)
	_ = do.MustInvoke[*providers.AuthHandle](injector)
	_ = do.MustInvoke[*service.UploadService](injector)
	_ = do.MustInvoke[*service.ActivityService](injector)

	// Workers
	_ = do.MustInvoke[*providers.FileWatcherHandle](injector)
	_ = do.MustInvoke[*providers.HistoryCleanupJob](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	providers.StartInitialLoad(injector)

	return nil
}
