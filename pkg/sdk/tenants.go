package sdk

import (
	"context"
	"net/http"
)

// CurrentTenant returns the tenant the authenticated principal belongs to.
func (c *Client) CurrentTenant(ctx context.Context) (*Tenant, error) {
	var reply struct {
		Tenant *Tenant `json:"tenant"`
	}
	if err := c.Do(ctx, "/tenants/me", RequestOptions{}, &reply); err != nil {
		return nil, err
	}
	return reply.Tenant, nil
}

// PublicTenants lists businesses in the public directory. No credential is
// required; the endpoint backs the marketing pages.
func (c *Client) PublicTenants(ctx context.Context) ([]Tenant, error) {
	var reply struct {
		Tenants []Tenant `json:"tenants"`
	}
	if err := c.Do(ctx, "/tenants/public", RequestOptions{}, &reply); err != nil {
		return nil, err
	}
	return reply.Tenants, nil
}

// TenantRegistration is the payload for onboarding a new business.
type TenantRegistration struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	BusinessID string `json:"businessId,omitempty"`
	PlanID     string `json:"planId,omitempty"`
}

// RegisterTenant onboards a new business onto the platform.
func (c *Client) RegisterTenant(ctx context.Context, input TenantRegistration) error {
	return c.Do(ctx, "/tenants/register", RequestOptions{Method: http.MethodPost, Body: input}, nil)
}

// PlatformTenants lists every tenant on the platform. Requires the
// superadmin role server-side.
func (c *Client) PlatformTenants(ctx context.Context) ([]Tenant, error) {
	var reply struct {
		Tenants []Tenant `json:"tenants"`
	}
	if err := c.Do(ctx, "/superadmin/tenants", RequestOptions{}, &reply); err != nil {
		return nil, err
	}
	return reply.Tenants, nil
}

// PlatformPlans lists the subscription plans offered to tenants.
func (c *Client) PlatformPlans(ctx context.Context) ([]Plan, error) {
	var reply struct {
		Plans []Plan `json:"plans"`
	}
	if err := c.Do(ctx, "/superadmin/plans", RequestOptions{}, &reply); err != nil {
		return nil, err
	}
	return reply.Plans, nil
}

// PlatformUsage lists per-tenant usage metrics.
func (c *Client) PlatformUsage(ctx context.Context) ([]UsageEntry, error) {
	var reply struct {
		Usage []UsageEntry `json:"usage"`
	}
	if err := c.Do(ctx, "/superadmin/usage", RequestOptions{}, &reply); err != nil {
		return nil, err
	}
	return reply.Usage, nil
}
