package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// statusSnapshot is the body served on /status.
type statusSnapshot struct {
	Actions   map[string]status   `json:"actions"`
	Resources map[resource]status `json:"resources"`
}

// newStatusRouter exposes metrics and a read-only status snapshot.
func newStatusRouter(store *statusStore, metrics *panelMetrics) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		snap := statusSnapshot{
			Actions: store.getAll(),
			Resources: map[resource]status{
				resourceDatabase: store.resourceStatus(resourceDatabase),
				resourceCompute:  store.resourceStatus(resourceCompute),
			},
		}
		writeJSON(w, http.StatusOK, snap)
	})

	r.Handle("/metrics", promhttp.HandlerFor(metrics.registry, promhttp.HandlerOpts{}))
	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// serveStatus runs the status server until ctx is done.
func serveStatus(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) {
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("starting status server", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("status server stopped", "err", err)
	}
}
