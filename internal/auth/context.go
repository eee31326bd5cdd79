// ABOUTME: Authentication context for tracking identity through request handlers
// ABOUTME: Provides WithIdentity/FromContext for propagating auth info via context

package auth

import (
	"context"

	"github.com/2389/taskboard/internal/store"
)

// Identity holds the authenticated identity information decoded from a token.
// It is populated by the auth middleware and retrieved from context in
// handlers. It is request-scoped and never cached across requests.
type Identity struct {
	UserID string // UUID of the authenticated user
	Role   string // "user" or "admin"
}

// IsAdmin returns true if the identity has the admin role.
func (id *Identity) IsAdmin() bool {
	return id.Role == store.RoleAdmin
}

// identityKey is the key type for storing Identity in context.Context.
type identityKey struct{}

// WithIdentity returns a new context with the Identity attached.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext retrieves the Identity from the context, returning nil if not present.
func FromContext(ctx context.Context) *Identity {
	val := ctx.Value(identityKey{})
	if val == nil {
		return nil
	}
	id, ok := val.(*Identity)
	if !ok {
		return nil
	}
	return id
}

// MustFromContext retrieves the Identity from the context, panicking if not present.
func MustFromContext(ctx context.Context) *Identity {
	id := FromContext(ctx)
	if id == nil {
		panic("auth: Identity not found in context")
	}
	return id
}
