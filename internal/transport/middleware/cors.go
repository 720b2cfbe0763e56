package middleware

import (
	"net/http"
	"strings"
)

// CORS answers browser preflights and echoes allowed origins. allowed is a
// comma-separated list; "*" or an empty list allows any origin.
func CORS(allowed string) func(http.Handler) http.Handler {
	origins := make(map[string]bool)
	anyOrigin := false
	for _, o := range strings.Split(allowed, ",") {
		o = strings.TrimSpace(o)
		if o == "" || o == "*" {
			anyOrigin = true
			continue
		}
		origins[o] = true
	}
	if len(origins) == 0 {
		anyOrigin = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (anyOrigin || origins[origin]) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Trace-ID")
				h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				h.Set("Access-Control-Expose-Headers", "X-Trace-ID, Content-Disposition")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
