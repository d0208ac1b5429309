package shared

import "context"

// Identity is the resolved subject of an authorized request, computed once by
// the authorization middleware and reused by handlers (never re-fetched).
type Identity struct {
	UserID      int64
	Name        string
	Email       string
	Roles       []string
	Permissions []string
}

type identityContextKey struct{}

// ContextWithIdentity stores the resolved identity in context.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the resolved identity, or nil.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey{}).(*Identity)
	return id
}
