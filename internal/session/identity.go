// Package session carries the authenticated identity through a request.
package session

import "context"

// Cookie names used to transport the two credentials.
const (
	AccessCookieName  = "access_token"
	RefreshCookieName = "refresh_token"
)

// Identity is the minimal authenticated principal attached to a request.
type Identity struct {
	ID    uint
	Email string
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity attached to ctx, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.ID == 0 {
		return Identity{}, false
	}
	return id, true
}
