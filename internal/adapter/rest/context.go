package rest

import (
	"context"

	"github.com/Dhee091/Housing-Management-sub000/internal/listing/domain"
)

type contextKey string

const (
	principalCtxKey = contextKey("principal")
	sessionCtxKey   = contextKey("session_id")
)

// PrincipalFrom returns the authenticated principal, if any.
func PrincipalFrom(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalCtxKey).(domain.Principal)
	return p, ok
}

func sessionIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionCtxKey).(string)
	return id
}

func withPrincipal(ctx context.Context, p domain.Principal, sessionID string) context.Context {
	ctx = context.WithValue(ctx, principalCtxKey, p)
	return context.WithValue(ctx, sessionCtxKey, sessionID)
}
