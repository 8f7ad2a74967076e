package sdk

import (
	"context"
	"fmt"
	"net/http"
)

// PageContent fetches the CMS content blob for a public marketing page
// ("home", "about", "services", "team", "gallery").
func (c *Client) PageContent(ctx context.Context, page string) (*PageContent, error) {
	var content PageContent
	path := fmt.Sprintf("/pagecontent/%s", page)
	if err := c.Do(ctx, path, RequestOptions{}, &content); err != nil {
		return nil, err
	}
	if content.Page == "" {
		content.Page = page
	}
	return &content, nil
}

// Bookings lists appointment requests visible to the caller.
func (c *Client) Bookings(ctx context.Context) ([]Booking, error) {
	var reply struct {
		Bookings []Booking `json:"bookings"`
	}
	if err := c.Do(ctx, "/bookings", RequestOptions{}, &reply); err != nil {
		return nil, err
	}
	return reply.Bookings, nil
}

// CreateBooking submits a public appointment request.
func (c *Client) CreateBooking(ctx context.Context, booking Booking) error {
	return c.Do(ctx, "/bookings", RequestOptions{Method: http.MethodPost, Body: booking}, nil)
}

// OrderGiftCard submits a public gift-card purchase.
func (c *Client) OrderGiftCard(ctx context.Context, order GiftCardOrder) error {
	return c.Do(ctx, "/giftcard/public", RequestOptions{Method: http.MethodPost, Body: order}, nil)
}

// AuditLogs lists platform audit trail entries. Requires an administrative
// role server-side.
func (c *Client) AuditLogs(ctx context.Context) ([]AuditLog, error) {
	var reply struct {
		Logs []AuditLog `json:"logs"`
	}
	if err := c.Do(ctx, "/auditlogs", RequestOptions{}, &reply); err != nil {
		return nil, err
	}
	return reply.Logs, nil
}

// EmailNotification is the payload for the notification relay.
type EmailNotification struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SendEmail relays a notification email through the platform.
func (c *Client) SendEmail(ctx context.Context, notification EmailNotification) error {
	return c.Do(ctx, "/notify/email", RequestOptions{Method: http.MethodPost, Body: notification}, nil)
}
