// Package guard is the route access-control check performed before any
// protected view is served.
//
// One parameterized guard replaces per-page copies of the same check: each
// evaluation consults the session store, the identity resolver, and the
// role policy, and produces a Decision. Decisions are transient: they are
// re-derived from scratch on every evaluation, so clearing the credential
// anywhere is caught on the next request rather than leaving a stale
// "logged in forever" state.
package guard

import (
	"context"
	"errors"

	"github.com/MachineKe/spa-console/internal/identity"
	"github.com/MachineKe/spa-console/internal/policy"
	"github.com/MachineKe/spa-console/internal/session"
)

// State is the outcome of one guard evaluation.
type State int

const (
	// StateLoading is the initial state while resolution is in flight.
	StateLoading State = iota
	// StateRedirecting means no usable credential exists; navigate to login.
	StateRedirecting
	// StateUnauthorized means the principal is authenticated but its role
	// may not reach the route. Render an explicit unauthorized message,
	// never a silent blank page.
	StateUnauthorized
	// StateAuthorized means the guarded content may render with the
	// resolved principal available to it.
	StateAuthorized
)

// String returns the state label used in logs and metrics.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateRedirecting:
		return "redirecting"
	case StateUnauthorized:
		return "unauthorized"
	case StateAuthorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// Decision is the tri-state (plus loading) result of a guard evaluation.
// It is never persisted.
type Decision struct {
	State State
	// RedirectTo is the navigation target when State is StateRedirecting.
	RedirectTo string
	// Principal is set when State is StateAuthorized.
	Principal *identity.Principal
	// Err carries the resolution failure for StateUnauthorized decisions
	// that stem from an error rather than a policy denial. Informational;
	// the state alone drives behavior.
	Err error
}

// Guard evaluates access to protected routes.
type Guard struct {
	resolver  *identity.Resolver
	table     *policy.Table
	loginPath string
}

// New creates a Guard. loginPath is where unauthenticated visitors are sent.
func New(resolver *identity.Resolver, table *policy.Table, loginPath string) *Guard {
	if loginPath == "" {
		loginPath = "/login"
	}
	return &Guard{resolver: resolver, table: table, loginPath: loginPath}
}

// Evaluate runs the state machine for one route against one session store.
//
//	Loading → Redirecting(login)  no credential, or the server rejected it
//	Loading → Unauthorized        authenticated but role not permitted here
//	Loading → Authorized          role permitted; principal attached
//
// Resolution failures that are neither "absent" nor "rejected" (the
// platform unreachable, for example) deny access rather than redirect: the
// visitor may well hold a valid session, so bouncing them to login would
// discard it, but rendering guarded content on an unverified identity is
// not an option either.
func (g *Guard) Evaluate(ctx context.Context, store session.Store, routePath string) Decision {
	token, ok := store.Get()
	if !ok {
		return Decision{State: StateRedirecting, RedirectTo: g.loginPath}
	}

	principal, err := g.resolver.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, identity.ErrUnauthenticated) || errors.Is(err, identity.ErrInvalidCredential) {
			return Decision{State: StateRedirecting, RedirectTo: g.loginPath}
		}
		return Decision{State: StateUnauthorized, Err: err}
	}

	if !g.table.IsAllowed(principal.Role, routePath) {
		return Decision{State: StateUnauthorized}
	}

	return Decision{State: StateAuthorized, Principal: principal}
}

// LoginPath returns the configured login route.
func (g *Guard) LoginPath() string {
	return g.loginPath
}
