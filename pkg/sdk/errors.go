package sdk

import (
	"errors"
	"fmt"
)

// ErrTimedOut is wrapped into a TransportError when a request exceeds the
// client's deadline. Callers can detect it with errors.Is.
var ErrTimedOut = errors.New("request timed out")

// FieldError is a single validation message from the platform API.
// The server reports these as {"errors": [{"msg": "..."}]}.
type FieldError struct {
	Msg string `json:"msg"`
}

// APIError is returned for any non-2xx response that reached the server.
//
// The platform API reports errors as JSON bodies with either an "error"
// string or an "errors" array of {msg} objects. Bodies that fail to parse
// are tolerated: Message and Errors are simply left empty, and callers must
// not assume either is populated.
type APIError struct {
	// Status is the HTTP status code of the response.
	Status int
	// Message is the server-provided "error" string, when parseable.
	Message string
	// Errors holds per-field validation messages, when present.
	Errors []FieldError
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error (status %d)", e.Status)
}

// TransportError is returned when no HTTP response was received at all
// (connection refused, DNS failure, timeout). The underlying cause is
// available via Unwrap.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsUnauthorized reports whether err is an APIError with HTTP status 401.
// Shells use this to trigger the redirect-to-login default on server-side
// credential revocation; the gateway itself never redirects.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 401
}

// IsForbidden reports whether err is an APIError with HTTP status 403.
func IsForbidden(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 403
}

// IsNotFound reports whether err is an APIError with HTTP status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 404
}
