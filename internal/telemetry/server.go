package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ganbarometer/internal/meter"
	"ganbarometer/internal/visuals"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Renderer produces reports on demand and remembers the last one.
// *meter.Meter satisfies it.
type Renderer interface {
	Render(ctx context.Context) (meter.Report, error)
	Last() (meter.Report, bool)
}

// NewRouter wires the HTTP endpoints:
//
//	GET /metrics          Prometheus exposition
//	GET /snapshot         last report as JSON (?refresh=true renders first)
//	GET /snapshot.md      last report as Markdown with Mermaid charts
//	GET /healthz          liveness
func NewRouter(r Renderer, metrics *Metrics) http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	router.Get("/snapshot", func(w http.ResponseWriter, req *http.Request) {
		report, ok := current(w, req, r)
		if !ok {
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(report); err != nil {
			log.Error().Err(err).Msg("Failed to encode snapshot")
		}
	})
	router.Get("/snapshot.md", func(w http.ResponseWriter, req *http.Request) {
		report, ok := current(w, req, r)
		if !ok {
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(visuals.Markdown(report)))
	})
	return router
}

func current(w http.ResponseWriter, req *http.Request, r Renderer) (meter.Report, bool) {
	if req.URL.Query().Get("refresh") == "true" {
		report, err := r.Render(req.Context())
		if err != nil {
			log.Error().Err(err).Msg("Render failed")
			http.Error(w, err.Error(), statusFor(err))
			return meter.Report{}, false
		}
		return report, true
	}
	report, ok := r.Last()
	if !ok {
		http.Error(w, "no report rendered yet", http.StatusServiceUnavailable)
		return meter.Report{}, false
	}
	return report, true
}

func statusFor(err error) int {
	if errors.Is(err, meter.ErrDataUnavailable) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Serve runs the router on addr, rendering every refresh interval until ctx ends.
func Serve(ctx context.Context, addr string, r Renderer, metrics *Metrics, refresh time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(r, metrics),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		ticker := time.NewTicker(refresh)
		defer ticker.Stop()
		for {
			if _, err := r.Render(ctx); err != nil {
				log.Warn().Err(err).Msg("Scheduled render failed")
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("Serving GanbarOmeter metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
