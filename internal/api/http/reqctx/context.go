// Package reqctx carries the authenticated identity through request contexts.
package reqctx

import (
	"context"

	"github.com/paperdesk/paperdesk/internal/model"
)

type contextKey int

const identityKey contextKey = iota

// WithIdentity returns a context carrying the authenticated identity.
func WithIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFrom retrieves the authenticated identity from the context. The
// second return is false when no identity was set.
func IdentityFrom(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(model.Identity)
	if !ok || identity.IsZero() {
		return model.Identity{}, false
	}
	return identity, true
}
