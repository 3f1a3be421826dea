package interceptors

import (
	"context"

	"paladin-core/internal/security"
)

type contextKey struct{ name string }

var identityKey = contextKey{"identity"}

// WithIdentity returns a context carrying the caller's verified identity.
// Services read it back via IdentityFromContext; nothing else is ambient.
func WithIdentity(ctx context.Context, id *security.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the verified identity from ctx and true if set;
// otherwise nil, false.
func IdentityFromContext(ctx context.Context) (*security.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*security.Identity)
	return id, ok && id != nil
}
