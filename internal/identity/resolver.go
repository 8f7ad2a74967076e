// Package identity turns a bearer credential into the authenticated
// Principal by asking the platform's "who am I" endpoint.
//
// The resolver is the only sanctioned source of role and tenant values for
// access decisions. Locally-decoded token claims (see hint.go) are never
// consulted for authorization.
package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/MachineKe/spa-console/pkg/sdk"
)

var (
	// ErrUnauthenticated is returned when no credential is presented.
	ErrUnauthenticated = errors.New("no credential")

	// ErrInvalidCredential is returned when the platform rejects the
	// credential (expired, revoked, bad signature). The route guard treats
	// this identically to an absent credential.
	ErrInvalidCredential = errors.New("credential rejected by server")
)

// Principal is the resolved identity of the current user.
//
// Immutable after construction: it is resolved once per credential per
// cache window and shared by reference, so nothing may mutate it.
type Principal struct {
	// ID is the platform user id.
	ID string
	// Name is the display name, when the platform provides one.
	Name string
	// Email is the login email.
	Email string
	// Role is the platform role label, as returned by the server. Consumers
	// compare it case-insensitively through the policy table.
	Role string
	// TenantID scopes the principal to one business. Read-only metadata
	// owned by the server.
	TenantID string
	// Avatar is an image reference for navigation chrome.
	Avatar string
}

// CurrentUserAPI is the slice of the SDK the resolver needs.
type CurrentUserAPI interface {
	CurrentUser(ctx context.Context, token string) (*sdk.User, error)
}

const (
	defaultCacheTTL  = 30 * time.Second
	defaultCacheSize = 256
)

// Resolver resolves credentials to principals with a short-lived cache.
//
// The cache bounds how long a server-side revocation can go unnoticed: a
// resolved Principal is reused for at most the TTL, is dropped when the
// credential changes (different token, different cache key), and is evicted
// eagerly via Invalidate when the gateway sees a 401.
type Resolver struct {
	api   CurrentUserAPI
	cache *lru.LRU[string, *Principal]
}

// ResolverOption mutates resolver construction.
type ResolverOption func(*resolverOptions)

type resolverOptions struct {
	ttl  time.Duration
	size int
}

// WithCacheTTL overrides how long a resolved Principal may be reused.
func WithCacheTTL(ttl time.Duration) ResolverOption {
	return func(o *resolverOptions) {
		o.ttl = ttl
	}
}

// NewResolver creates a Resolver over the given API client.
func NewResolver(api CurrentUserAPI, optFns ...ResolverOption) *Resolver {
	opts := resolverOptions{ttl: defaultCacheTTL, size: defaultCacheSize}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Resolver{
		api:   api,
		cache: lru.NewLRU[string, *Principal](opts.size, nil, opts.ttl),
	}
}

// Resolve turns a credential into a Principal.
//
// Fails with ErrUnauthenticated when the credential is absent and with
// ErrInvalidCredential when the server rejects it. Transport failures pass
// through unclassified so callers can distinguish "cannot reach the server"
// from "the server said no".
func (r *Resolver) Resolve(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	key := cacheKey(token)
	if principal, ok := r.cache.Get(key); ok {
		return principal, nil
	}

	user, err := r.api.CurrentUser(ctx, token)
	if err != nil {
		if sdk.IsUnauthorized(err) || sdk.IsForbidden(err) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
		}
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: empty identity reply", ErrInvalidCredential)
	}

	principal := &Principal{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Role:     user.Role,
		TenantID: user.TenantID,
		Avatar:   user.Avatar,
	}
	r.cache.Add(key, principal)
	return principal, nil
}

// Invalidate drops the cached Principal for a credential. Called when the
// gateway sees a 401 so server-side revocation is detected promptly rather
// than at TTL expiry.
func (r *Resolver) Invalidate(token string) {
	if token == "" {
		return
	}
	r.cache.Remove(cacheKey(token))
}

// cacheKey hashes the token so the raw credential never sits in the cache
// as a map key.
func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
