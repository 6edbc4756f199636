// Package httpapi assembles the public HTTP surface: the shared middleware
// chain, the registry and order handlers, health and metrics endpoints.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"daviz/pkg/platform/httputil"
	"daviz/pkg/platform/middleware/metadata"
	"daviz/pkg/platform/middleware/request"
	"daviz/pkg/platform/middleware/requesttime"
)

// Registrar mounts a group of routes.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Options struct {
	Logger         *slog.Logger
	RequestTimeout time.Duration
	Latency        request.LatencyObserver
	Gatherer       prometheus.Gatherer
	HealthChecks   map[string]HealthCheck
	// RateLimit, when set, runs after client metadata is known.
	RateLimit func(http.Handler) http.Handler
}

// NewRouter wires every public endpoint behind the shared middleware chain.
func NewRouter(opts Options, handlers ...Registrar) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(logger))
	r.Use(request.Logger(logger))
	r.Use(request.Latency(opts.Latency, routePattern))
	r.Use(metadata.ClientMetadata)
	if opts.RateLimit != nil {
		r.Use(opts.RateLimit)
	}
	r.Use(requesttime.Middleware)
	if opts.RequestTimeout > 0 {
		r.Use(request.Timeout(opts.RequestTimeout))
	}

	r.Get("/healthz", healthHandler(opts.HealthChecks))
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		for _, h := range handlers {
			h.Register(r)
		}
	})
	return r
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]string{}
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				status = http.StatusServiceUnavailable
				body[name] = err.Error()
				continue
			}
			body[name] = "ok"
		}
		httputil.WriteJSON(w, status, body)
	}
}
