package sdk

import (
	"context"
	"net/http"
	"net/url"
)

// Products lists the tenant's retail inventory.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var reply struct {
		Products []Product `json:"products"`
	}
	if err := c.Do(ctx, "/products", RequestOptions{}, &reply); err != nil {
		return nil, err
	}
	return reply.Products, nil
}

// TopSellingProducts lists the best-selling products for the tenant.
func (c *Client) TopSellingProducts(ctx context.Context) ([]Product, error) {
	var reply struct {
		Products []Product `json:"products"`
	}
	if err := c.Do(ctx, "/products/top-selling", RequestOptions{}, &reply); err != nil {
		return nil, err
	}
	return reply.Products, nil
}

// CreateProduct adds a product to the tenant's inventory.
func (c *Client) CreateProduct(ctx context.Context, product Product) error {
	return c.Do(ctx, "/products", RequestOptions{Method: http.MethodPost, Body: product}, nil)
}

// Stores lists the tenant's business locations.
func (c *Client) Stores(ctx context.Context) ([]Store, error) {
	var reply struct {
		Stores []Store `json:"stores"`
	}
	if err := c.Do(ctx, "/stores", RequestOptions{}, &reply); err != nil {
		return nil, err
	}
	return reply.Stores, nil
}

// Services lists the tenant's bookable offerings.
func (c *Client) Services(ctx context.Context) ([]Service, error) {
	var reply struct {
		Services []Service `json:"services"`
	}
	if err := c.Do(ctx, "/services", RequestOptions{}, &reply); err != nil {
		return nil, err
	}
	return reply.Services, nil
}

// PublicServices lists bookable offerings without authentication. The
// optional tenantID narrows the listing to one business; it is a display
// filter, not an access control.
func (c *Client) PublicServices(ctx context.Context, tenantID string) ([]Service, error) {
	var reply struct {
		Services []Service `json:"services"`
	}
	opts := RequestOptions{}
	if tenantID != "" {
		opts.Query = url.Values{"tenantId": []string{tenantID}}
	}
	if err := c.Do(ctx, "/services/public", opts, &reply); err != nil {
		return nil, err
	}
	return reply.Services, nil
}
