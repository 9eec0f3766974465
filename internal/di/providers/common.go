package providers

import "time"

const (
	// shutdownTimeout bounds graceful shutdown of the HTTP server and SSE clients.
	shutdownTimeout = 30 * time.Second

	// initialLoadTimeout bounds the first dashboard load at startup.
	initialLoadTimeout = 45 * time.Second
)

// version is reported in the OpenAPI document and health checks.
var version = "dev"

// SetVersion overrides the reported server version. Call before Bootstrap.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}
