package sdk

import (
	"context"
	"net/url"
)

// SalesFilter narrows sales queries. Zero-valued fields are omitted from the
// query string entirely.
type SalesFilter struct {
	StoreID    string
	EmployeeID string
	ServiceID  string
	From       string
	To         string
}

func (f SalesFilter) query() url.Values {
	q := url.Values{}
	if f.StoreID != "" {
		q.Set("storeId", f.StoreID)
	}
	if f.EmployeeID != "" {
		q.Set("employeeId", f.EmployeeID)
	}
	if f.ServiceID != "" {
		q.Set("serviceId", f.ServiceID)
	}
	if f.From != "" {
		q.Set("from", f.From)
	}
	if f.To != "" {
		q.Set("to", f.To)
	}
	return q
}

// SalesSummary returns aggregate sales figures matching the filter.
func (c *Client) SalesSummary(ctx context.Context, filter SalesFilter) (*SalesSummary, error) {
	var summary SalesSummary
	if err := c.Do(ctx, "/sales/summary", RequestOptions{Query: filter.query()}, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// RecentSales returns the most recent transactions matching the filter.
func (c *Client) RecentSales(ctx context.Context, filter SalesFilter) ([]Sale, error) {
	var reply struct {
		Sales []Sale `json:"sales"`
	}
	if err := c.Do(ctx, "/sales/recent", RequestOptions{Query: filter.query()}, &reply); err != nil {
		return nil, err
	}
	return reply.Sales, nil
}

// SalesLogs lists sales log entries by review status ("pending", "approved").
func (c *Client) SalesLogs(ctx context.Context, status string) ([]Sale, error) {
	var reply struct {
		Sales []Sale `json:"sales"`
	}
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if err := c.Do(ctx, "/saleslogs", RequestOptions{Query: q}, &reply); err != nil {
		return nil, err
	}
	return reply.Sales, nil
}
