package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/gdgscriet/studyjam-server/internal/api"
	"github.com/gdgscriet/studyjam-server/internal/config"
	"github.com/gdgscriet/studyjam-server/internal/logger"
	"github.com/gdgscriet/studyjam-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server and starts listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	services := &api.Services{
		Dashboard: do.MustInvoke[*DashboardHandle](i).DashboardService,
		Feed:      do.MustInvoke[*service.FeedService](i),
		Events:    do.MustInvoke[*service.EventService](i),
		Search:    do.MustInvoke[*service.SearchService](i),
		Bot:       do.MustInvoke[*BotHandle](i).BotService,
		Auth:      do.MustInvoke[*AuthHandle](i).AuthService,
		Upload:    do.MustInvoke[*service.UploadService](i),
		Activity:  do.MustInvoke[*service.ActivityService](i),
		SSE:       sseHandle.Manager,
	}

	handler := api.NewServer(services, api.Options{
		Version:     version,
		CORSOrigins: cfg.Server.CORSOrigins,
	}, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr, "cors_origins", cfg.Server.CORSOrigins)

	return &HTTPServerHandle{Server: srv}, nil
}
