package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Nadrieril/rustorio/internal/infrastructure/config"
)

// StartServer exposes the registry over HTTP in the background. Returns the
// address it listens on.
func StartServer(cfg *config.MetricsConfig, registry *prometheus.Registry) string {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	go func() {
		// Serve errors only happen on shutdown or a taken port; the
		// simulation keeps running either way.
		_ = http.ListenAndServe(addr, mux)
	}()
	return addr
}
