package providers

import (
	"github.com/samber/do/v2"

	"github.com/gdgscriet/studyjam-server/internal/config"
	"github.com/gdgscriet/studyjam-server/internal/logger"
	"github.com/gdgscriet/studyjam-server/internal/remote"
)

// RemoteClientHandle wraps the participant API client with shutdown capability.
type RemoteClientHandle struct {
	*remote.Client
}

// Shutdown implements do.Shutdownable.
func (h *RemoteClientHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideRemoteClient provides the participant API client.
func ProvideRemoteClient(i do.Injector) (*RemoteClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := remote.New(remote.Options{
		BaseURL:           cfg.Remote.BaseURL,
		Timeout:           cfg.Remote.Timeout,
		RequestsPerSecond: cfg.Remote.RequestsPerSecond,
		Logger:            log.Logger,
	})

	log.Info("Participant API client ready",
		"base_url", cfg.Remote.BaseURL,
		"timeout", cfg.Remote.Timeout,
		"rps", cfg.Remote.RequestsPerSecond,
	)

	return &RemoteClientHandle{Client: client}, nil
}
