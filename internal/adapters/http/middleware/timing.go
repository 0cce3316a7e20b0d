package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"gymbios/internal/adapters/http/perf"
)

// DefaultSlowRequest is used when no threshold is configured.
const DefaultSlowRequest = 500 * time.Millisecond

// RequestIDHeader carries the per-request sequence number back to the client.
const RequestIDHeader = "X-Request-ID"

var requestSeq atomic.Uint64

// responseRecorder captures what the handler wrote.
type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rr *responseRecorder) WriteHeader(code int) {
	rr.status = code
	rr.ResponseWriter.WriteHeader(code)
}

func (rr *responseRecorder) Write(b []byte) (int, error) {
	n, err := rr.ResponseWriter.Write(b)
	rr.bytes += n
	return n, err
}

// Timing returns middleware that times every non-static request, tags the
// response with X-Request-ID and feeds the perf collector when one is given.
// Requests at or above slow log at WARN as slow_request, others at DEBUG.
// Entity IDs in the path are folded to {id} so GET /api/members/<uuid>
// is one perf row, not one per member.
func Timing(collector *perf.Collector, slow time.Duration) func(http.Handler) http.Handler {
	if slow <= 0 {
		slow = DefaultSlowRequest
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/static/") {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			reqID := strconv.FormatUint(requestSeq.Add(1), 10)
			w.Header().Set(RequestIDHeader, reqID)
			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}

			defer func() {
				elapsed := time.Since(start)
				ms := float64(elapsed.Microseconds()) / 1000.0
				attrs := []any{
					"request_id", reqID,
					"method", r.Method,
					"path", r.URL.Path,
					"status", rec.status,
					"bytes", rec.bytes,
					"duration_ms", ms,
				}
				if elapsed >= slow {
					slog.Warn("slow_request", attrs...)
				} else {
					slog.Debug("request", attrs...)
				}
				if collector != nil {
					collector.Record(perf.Entry{
						Kind:       perf.KindRequest,
						Path:       RouteKey(r.Method, r.URL.Path),
						StatusCode: rec.status,
						DurationMs: ms,
						Timestamp:  start,
					})
				}
			}()

			next.ServeHTTP(rec, r)
		})
	}
}

// RouteKey folds ID segments of path into {id}: UUIDs and all-digit segments.
func RouteKey(method, path string) string {
	segs := strings.Split(path, "/")
	for i, s := range segs {
		if s == "" {
			continue
		}
		if _, err := uuid.Parse(s); err == nil || isDigits(s) {
			segs[i] = "{id}"
		}
	}
	return method + " " + strings.Join(segs, "/")
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
