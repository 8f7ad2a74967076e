package guard

import (
	"context"

	"github.com/MachineKe/spa-console/internal/identity"
)

type principalContextKey struct{}

// WithPrincipal stores the authorized principal on the context for
// downstream handlers.
func WithPrincipal(ctx context.Context, principal *identity.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, principal)
}

// PrincipalFromContext retrieves the authorized principal placed on the
// context by the guard middleware.
func PrincipalFromContext(ctx context.Context) (*identity.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey{}).(*identity.Principal)
	return principal, ok
}
