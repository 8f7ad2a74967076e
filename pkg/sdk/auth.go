package sdk

import (
	"context"
	"net/http"
)

// LoginResult is the reply of the login and 2FA-verify endpoints.
//
// When the account has two-factor authentication enabled, the first step
// returns Require2FA=true and NO token. Callers must not persist anything
// until the 2FA step independently returns a token.
type LoginResult struct {
	Token      string `json:"token"`
	Require2FA bool   `json:"require2fa"`
	Role       string `json:"role,omitempty"`
	User       *User  `json:"user,omitempty"`
}

// EffectiveRole returns the role label from the login reply, preferring the
// top-level field and falling back to the embedded user, matching the
// server's two observed reply shapes.
func (r *LoginResult) EffectiveRole() string {
	if r.Role != "" {
		return r.Role
	}
	if r.User != nil {
		return r.User.Role
	}
	return ""
}

// Login authenticates with email and password. The reply either carries a
// token or requests a second factor.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var result LoginResult
	err := c.Do(ctx, "/auth/login", RequestOptions{
		Method: http.MethodPost,
		Body:   map[string]string{"email": email, "password": password},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Verify2FA completes the second authentication step with the emailed or
// TOTP code. Only this reply carries the token for 2FA-enabled accounts.
func (c *Client) Verify2FA(ctx context.Context, email, code string) (*LoginResult, error) {
	var result LoginResult
	err := c.Do(ctx, "/auth/2fa", RequestOptions{
		Method: http.MethodPost,
		Body:   map[string]string{"email": email, "code": code},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CurrentUser resolves the principal behind an explicit bearer token via the
// platform's "who am I" endpoint. This is the only sanctioned source for
// role and tenant values used in access decisions; locally-decoded token
// claims are display hints at best.
func (c *Client) CurrentUser(ctx context.Context, token string) (*User, error) {
	var reply struct {
		User *User `json:"user"`
	}
	err := c.Do(ctx, "/auth/me", RequestOptions{Token: token}, &reply)
	if err != nil {
		return nil, err
	}
	return reply.User, nil
}

// RegisterInput is the payload for customer self-registration.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	TenantID string `json:"tenantId,omitempty"`
}

// Register creates a customer account.
func (c *Client) Register(ctx context.Context, input RegisterInput) error {
	return c.Do(ctx, "/auth/register", RequestOptions{Method: http.MethodPost, Body: input}, nil)
}

// RegisterEmployee creates a staff account via the employee invitation flow.
func (c *Client) RegisterEmployee(ctx context.Context, input RegisterInput) error {
	return c.Do(ctx, "/auth/employee-register", RequestOptions{Method: http.MethodPost, Body: input}, nil)
}
