package ratelimit

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"daviz/pkg/platform/httputil"
	"daviz/pkg/requestcontext"
)

// Buckets admits or refuses one request against a keyed window.
type Buckets interface {
	Allow(ctx context.Context, key string, limit Limit) (*Result, error)
}

type Middleware struct {
	buckets Buckets
	limits  map[Class]Limit
	logger  *slog.Logger
}

func New(buckets Buckets, limits map[Class]Limit, logger *slog.Logger) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &Middleware{buckets: buckets, limits: limits, logger: logger}
}

// PerIP limits requests by client IP, with separate budgets for reads and
// writes. Store failures let the request through.
func (m *Middleware) PerIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		class := ClassOf(r)
		limit, ok := m.limits[class]
		if !ok || limit.Requests <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		ip := requestcontext.ClientIP(ctx)
		result, err := m.buckets.Allow(ctx, string(class)+":"+ip, limit)
		if err != nil {
			m.logger.ErrorContext(ctx, "rate limit check failed", "error", err, "class", class)
			next.ServeHTTP(w, r)
			return
		}

		addHeaders(w, result)
		if !result.Allowed {
			m.logger.WarnContext(ctx, "rate limit exceeded", "class", class, "client_ip", ip)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(result)))
			httputil.WriteJSON(w, http.StatusTooManyRequests, map[string]any{
				"error":             "rate_limit_exceeded",
				"error_description": "too many requests, retry later",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func addHeaders(w http.ResponseWriter, result *Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func retryAfterSeconds(result *Result) int {
	return max(1, int(math.Ceil(result.RetryAfter.Seconds())))
}
