package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mitchellh/mapstructure"
)

// Hint is the result of decoding a token payload locally, WITHOUT signature
// verification.
//
// Hints exist for non-sensitive display purposes only: prefilling a tenant
// filter, showing an approximate expiry in `auth status`. They must never
// participate in an access-control decision. Any role or permission check
// goes through Resolver.Resolve and the server round trip behind it.
type Hint struct {
	Subject  string
	TenantID string
	IssuedAt time.Time
	Expiry   time.Time
}

// tenantClaims is the unverified claim subset the console cares about.
// The platform has emitted the tenant id both flat and nested over time.
type tenantClaims struct {
	TenantID string         `mapstructure:"tenantId"`
	Tenant   map[string]any `mapstructure:"tenant"`
}

// TokenHint decodes the payload of a JWT-shaped credential without
// verifying it. Opaque (non-JWT) tokens return an error; callers should
// treat that as "no hint available", not as a failure.
func TokenHint(token string) (*Hint, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("token is not locally decodable: %w", err)
	}

	hint := &Hint{}
	if sub, err := claims.GetSubject(); err == nil {
		hint.Subject = sub
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		hint.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		hint.Expiry = exp.Time
	}

	var tc tenantClaims
	if err := mapstructure.Decode(map[string]any(claims), &tc); err == nil {
		hint.TenantID = tc.TenantID
		if hint.TenantID == "" && tc.Tenant != nil {
			if id, ok := tc.Tenant["id"].(string); ok {
				hint.TenantID = id
			}
		}
	}

	return hint, nil
}
