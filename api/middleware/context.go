package middleware

import (
	"context"

	"github.com/coopmercado/coopmercado-backend/internal/policy"
)

type contextKey string

const (
	ctxActor     contextKey = "actor"
	ctxSessionID contextKey = "session_id"
)

// ActorFromContext returns the authenticated actor seeded by Auth.
func ActorFromContext(ctx context.Context) (policy.Actor, bool) {
	if ctx == nil {
		return policy.Actor{}, false
	}
	actor, ok := ctx.Value(ctxActor).(policy.Actor)
	return actor, ok
}

// SessionIDFromContext returns the token's session id (jti).
func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

// WithActor injects an actor into the context. Used by Auth and by tests.
func WithActor(ctx context.Context, actor policy.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActor, actor)
}

// WithSessionID injects the session id into the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSessionID, sessionID)
}
