package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/MachineKe/spa-console/internal/telemetry"
)

// defaultTimeout bounds every request so a hung server cannot leave callers
// waiting indefinitely. Exceeding it surfaces as ErrTimedOut.
const defaultTimeout = 15 * time.Second

// CredentialSource supplies the current bearer credential, when one exists.
// It is satisfied by the session store implementations; the client treats it
// as read-only.
type CredentialSource interface {
	Get() (string, bool)
}

// Client is the single chokepoint for all calls to the spa-platform API.
//
// Every request flows through Do: the bearer credential is attached if and
// only if one is present, bodies are serialized to JSON unless already
// serialized, and failures are classified into APIError (server responded
// non-2xx), TransportError (no response), and ErrTimedOut (deadline hit).
//
// The client never redirects or retries on its own. Whether a 401 should
// navigate to login is the caller's decision, not the gateway's.
type Client struct {
	baseURL     string
	http        *http.Client
	credentials CredentialSource
}

// ClientOptions configures client construction.
type ClientOptions struct {
	HTTPClient  *http.Client
	Credentials CredentialSource
	Timeout     time.Duration
}

// ClientOption mutates ClientOptions.
type ClientOption func(*ClientOptions)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(opts *ClientOptions) {
		opts.HTTPClient = client
	}
}

// WithCredentials sets the source consulted for the bearer credential on
// each request. Without one, all requests are sent unauthenticated.
func WithCredentials(source CredentialSource) ClientOption {
	return func(opts *ClientOptions) {
		opts.Credentials = source
	}
}

// WithTimeout overrides the default per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(opts *ClientOptions) {
		opts.Timeout = d
	}
}

// NewClient creates a client for the platform API server at baseURL.
// An http.Client with the default timeout is created when one is not supplied.
func NewClient(baseURL string, optFns ...ClientOption) *Client {
	opts := ClientOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		http:        opts.HTTPClient,
		credentials: opts.Credentials,
	}
}

// staticCredential is a CredentialSource for a fixed token.
type staticCredential string

func (s staticCredential) Get() (string, bool) {
	return string(s), s != ""
}

// WithToken returns a shallow copy of the client that authenticates every
// request with the given token. The copy shares the underlying HTTP client,
// so it is cheap to create per request.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.credentials = staticCredential(token)
	return &clone
}

// RequestOptions describes a single API request.
type RequestOptions struct {
	// Method defaults to GET when empty.
	Method string
	// Body is serialized to JSON unless it is already a []byte, string, or
	// json.RawMessage, which are sent as-is.
	Body any
	// Query is appended to the path as a URL-encoded query string.
	Query url.Values
	// Token overrides the credential source for this request. Used by flows
	// that operate on an explicit token, such as identity resolution.
	Token string
}

// Do issues a request against path and decodes the JSON response into out
// when out is non-nil.
//
// The Authorization header is attached if and only if a credential is
// available: an explicit Token, otherwise the configured source. A request
// with no credential omits the header entirely.
func (c *Client) Do(ctx context.Context, path string, opts RequestOptions, out any) error {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	reqURL := c.baseURL + path
	if len(opts.Query) > 0 {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		reqURL += sep + opts.Query.Encode()
	}

	body, err := encodeBody(opts.Body)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	token := opts.Token
	if token == "" && c.credentials != nil {
		if t, ok := c.credentials.Get(); ok {
			token = t
		}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		telemetry.CountRequest(ctx, method, path, 0)
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	telemetry.CountRequest(ctx, method, path, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// encodeBody serializes a request body only when it is not already serialized.
func encodeBody(body any) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(b), nil
	case json.RawMessage:
		return bytes.NewReader(b), nil
	case string:
		return strings.NewReader(b), nil
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(data), nil
	}
}

// classifyTransportError maps low-level failures into the gateway taxonomy.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return &TransportError{Err: ErrTimedOut}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return &TransportError{Err: ErrTimedOut}
	}
	return &TransportError{Err: err}
}

// decodeAPIError builds an APIError from a non-2xx response. The body is
// parsed tolerantly: the platform usually sends {"error": "..."} or
// {"errors": [{"msg": "..."}]}, but an unparseable body yields an APIError
// with only the status populated.
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var payload struct {
		Error  string       `json:"error"`
		Errors []FieldError `json:"errors"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return apiErr
	}
	apiErr.Message = payload.Error
	apiErr.Errors = payload.Errors
	return apiErr
}
