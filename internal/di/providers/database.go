package providers

import (
	"context"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/gdgscriet/studyjam-server/internal/cache"
	"github.com/gdgscriet/studyjam-server/internal/config"
	"github.com/gdgscriet/studyjam-server/internal/logger"
	"github.com/gdgscriet/studyjam-server/internal/sse"
	"github.com/gdgscriet/studyjam-server/internal/store/sqlite"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// HistoryHandle wraps the SQLite history store with shutdown capability.
type HistoryHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *HistoryHandle) Shutdown() error {
	return h.Close()
}

// ProvideHistory provides the load, bot run and upload history store.
func ProvideHistory(i do.Injector) (*HistoryHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	path := filepath.Join(cfg.Data.BasePath, "history.db")
	store, err := sqlite.Open(path, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("History database initialized", "path", path)

	return &HistoryHandle{Store: store}, nil
}

// CacheHandle wraps the participant detail cache with shutdown capability.
type CacheHandle struct {
	*cache.Cache
}

// Shutdown implements do.Shutdownable.
func (h *CacheHandle) Shutdown() error {
	return h.Close()
}

// ProvideCache provides the Badger-backed participant detail cache.
func ProvideCache(i do.Injector) (*CacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dir := filepath.Join(cfg.Data.BasePath, "cache")
	c, err := cache.Open(dir, cfg.Cache.TTL, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Participant cache initialized", "path", dir, "ttl", cfg.Cache.TTL)

	return &CacheHandle{Cache: c}, nil
}
