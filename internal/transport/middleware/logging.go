package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/attendance/pkg/logger"
)

const maxLoggedBody = 4096

// sensitiveFields are matched as substrings of lower-cased header names and
// JSON keys.
var sensitiveFields = []string{
	"password",
	"token",
	"authorization",
	"secret",
	"api_key",
	"cookie",
	"credential",
}

// Logging writes one line for the request and one for the response through
// the request-scoped logger, so trace and user ids set by earlier middleware
// are included. Credentials are masked.
func Logging(base *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lg := logger.FromOr(r.Context(), base)

			var body []byte
			if r.Body != nil {
				body, _ = io.ReadAll(r.Body)
				r.Body = io.NopCloser(bytes.NewReader(body))
			}
			lg.Info("incoming request",
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"remote_addr", r.RemoteAddr,
				"headers", filterSensitiveHeaders(r.Header),
				"body", filterSensitiveBody(r.Header.Get("Content-Type"), body),
			)

			rw := &responseWriter{ResponseWriter: w, body: &bytes.Buffer{}}
			next.ServeHTTP(rw, r)

			status := rw.statusCode
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}

			lg.Log(r.Context(), level, "response",
				"method", r.Method,
				"path", r.URL.Path,
				"status_code", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"response_size", rw.size,
				"body", filterSensitiveBody(rw.Header().Get("Content-Type"), rw.body.Bytes()),
			)
		})
	}
}

// responseWriter keeps the status and the first bytes of the body.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
	body       *bytes.Buffer
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.statusCode == 0 {
		rw.statusCode = code
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.statusCode == 0 {
		rw.statusCode = http.StatusOK
	}
	if remaining := maxLoggedBody - rw.body.Len(); remaining > 0 {
		if len(b) < remaining {
			remaining = len(b)
		}
		rw.body.Write(b[:remaining])
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

func isSensitive(name string) bool {
	lower := strings.ToLower(name)
	for _, field := range sensitiveFields {
		if strings.Contains(lower, field) {
			return true
		}
	}
	return false
}

func filterSensitiveHeaders(headers http.Header) map[string]string {
	filtered := make(map[string]string, len(headers))
	for name, values := range headers {
		if isSensitive(name) {
			filtered[name] = "[FILTERED]"
			continue
		}
		filtered[name] = strings.Join(values, ", ")
	}
	return filtered
}

// filterSensitiveBody masks credential fields in JSON bodies. Other content
// types are summarized by size only.
func filterSensitiveBody(contentType string, body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if contentType != "" && !strings.Contains(contentType, "json") {
		return "[" + contentType + "]"
	}

	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		if len(body) >= maxLoggedBody {
			return "[TRUNCATED]"
		}
		if isSensitive(string(body)) {
			return "[FILTERED - Contains sensitive data]"
		}
		return string(body)
	}

	out, err := json.Marshal(filterSensitiveJSON(data))
	if err != nil {
		return "[ERROR - Failed to marshal filtered JSON]"
	}
	return string(out)
}

func filterSensitiveJSON(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		filtered := make(map[string]interface{}, len(v))
		for key, value := range v {
			if isSensitive(key) {
				filtered[key] = "[FILTERED]"
				continue
			}
			filtered[key] = filterSensitiveJSON(value)
		}
		return filtered
	case []interface{}:
		filtered := make([]interface{}, len(v))
		for i, item := range v {
			filtered[i] = filterSensitiveJSON(item)
		}
		return filtered
	default:
		return v
	}
}
