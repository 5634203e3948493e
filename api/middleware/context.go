package middleware

import (
	"context"

	"github.com/angelmondragon/storerate-backend/pkg/auth"
	"github.com/google/uuid"
)

type contextKey string

const ctxIdentity contextKey = "identity"

// WithIdentity injects the authenticated caller into the context.
func WithIdentity(ctx context.Context, identity auth.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, identity)
}

// IdentityFromContext returns the caller resolved by Authenticate.
func IdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	if ctx == nil {
		return auth.Identity{}, false
	}
	identity, ok := ctx.Value(ctxIdentity).(auth.Identity)
	return identity, ok
}

func AccountIDFromContext(ctx context.Context) uuid.UUID {
	identity, _ := IdentityFromContext(ctx)
	return identity.AccountID
}
