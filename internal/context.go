package internal

import (
	"context"
	"time"
)

type ctxKey string

const ContextUserKey ctxKey = "user"

// Principal is the authenticated caller attached to a request context.
type Principal struct {
	UserID int64
	Role   string
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == "admin"
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(ContextUserKey).(*Principal)
	return p, ok && p != nil
}

func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ContextUserKey, p)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
