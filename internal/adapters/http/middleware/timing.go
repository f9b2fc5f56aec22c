package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"sportsday/internal/adapters/http/perf"
)

// DefaultSlowRequest is the latency above which an API request logs at WARN.
const DefaultSlowRequest = 200 * time.Millisecond

// Timing returns middleware that times every request.
// Requests under /api are logged: INFO normally, WARN at or above slow
// (DefaultSlowRequest when slow <= 0). Other paths such as /metrics are only
// recorded. collector may be nil.
func Timing(collector *perf.Collector, slow time.Duration) func(http.Handler) http.Handler {
	if slow <= 0 {
		slow = DefaultSlowRequest
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			// Deferred so the entry is still written while a panic unwinds
			// toward Recoverer.
			defer func() {
				elapsed := time.Since(start)
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				if strings.HasPrefix(r.URL.Path, "/api") {
					logRequest(r, status, ww.BytesWritten(), elapsed, slow)
				}
				if collector != nil {
					collector.Record(perf.Entry{
						Kind:       perf.KindRequest,
						Method:     r.Method,
						Path:       r.URL.Path,
						Route:      routePattern(r),
						StatusCode: status,
						DurationMs: float64(elapsed.Microseconds()) / 1000.0,
						Timestamp:  start,
					})
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

func logRequest(r *http.Request, status, bytes int, elapsed, slow time.Duration) {
	attrs := []any{
		"request_id", chimw.GetReqID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"bytes", bytes,
		"duration_ms", float64(elapsed.Microseconds()) / 1000.0,
	}
	if elapsed >= slow {
		slog.Warn("slow_request", attrs...)
		return
	}
	slog.Info("request", attrs...)
}

// routePattern returns the chi route that served r, or "" outside a router.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}
