package middleware

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/attendance/pkg/logger"

	"github.com/google/uuid"
)

const TraceHeader = "X-Trace-ID"

// RequestID reuses the caller's trace id or mints one, and attaches it to the
// request logger and the response.
func RequestID(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get(TraceHeader)
			if traceID == "" {
				traceID = uuid.NewString()
			}

			lg := logger.FromOr(r.Context(), base).With("trace_id", traceID)
			w.Header().Set(TraceHeader, traceID)

			next.ServeHTTP(w, r.WithContext(logger.Into(r.Context(), lg)))
		})
	}
}
