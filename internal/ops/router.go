// Package ops exposes the stage's operational HTTP surface: liveness,
// readiness, Prometheus metrics, and the configured detector listing.
package ops

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docflow/internal/classifier/registry"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// NewRouter builds the ops HTTP handler.
func NewRouter(reg *registry.Registry, store HealthChecker) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if err := store.Health(req.Context()); err != nil {
			http.Error(w, "idempotency store unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/detectors", func(w http.ResponseWriter, _ *http.Request) {
		type entry struct {
			Name       string `json:"name"`
			OutputType string `json:"outputType"`
		}
		entries := make([]entry, 0)
		for _, name := range reg.Names() {
			d, err := reg.Descriptor(name)
			if err != nil {
				continue
			}
			entries = append(entries, entry{Name: d.Name, OutputType: d.OutputType})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(entries)
	})

	return r
}
