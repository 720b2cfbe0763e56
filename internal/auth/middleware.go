package auth

import (
	"net/http"

	"github.com/frahmantamala/attendance/internal"
	"github.com/frahmantamala/attendance/internal/transport"
	"github.com/frahmantamala/attendance/pkg/logger"
)

type Middleware struct {
	*transport.BaseHandler
	tokens       TokenGenerator
	enforceAdmin bool
}

func NewMiddleware(base *transport.BaseHandler, tokens TokenGenerator, enforceAdmin bool) *Middleware {
	return &Middleware{
		BaseHandler:  base,
		tokens:       tokens,
		enforceAdmin: enforceAdmin,
	}
}

// Authenticate attaches the caller to the request context when a bearer
// token is present. Requests without a token pass through anonymously; a
// token that fails validation is rejected.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.ExtractTokenFromHeader(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.tokens.ValidateToken(token)
		if err != nil {
			m.Logger.Warn("auth middleware: token rejected", "error", err)
			m.HandleServiceError(w, err)
			return
		}

		ctx := internal.ContextWithPrincipal(r.Context(), claims.Principal())
		ctx = logger.Into(ctx, logger.FromOr(ctx, m.Logger).With("user_id", claims.UserID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin guards administrator routes. With enforcement disabled the
// routes stay open, matching deployments that rely on the UI hiding them.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enforceAdmin {
			next.ServeHTTP(w, r)
			return
		}

		principal, ok := internal.PrincipalFromContext(r.Context())
		if !ok {
			m.WriteAppError(w, internal.NewUnauthorizedError("missing authorization token", internal.ErrCodeInvalidToken))
			return
		}
		if !principal.IsAdmin() {
			m.Logger.Warn("access denied: administrator route", "user_id", principal.UserID, "path", r.URL.Path)
			m.WriteAppError(w, internal.ErrAdminRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
