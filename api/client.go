// Package api is the REST client for the BidAgri backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	// RequestIDHeader carries a per-request id for correlating backend logs
	RequestIDHeader = "X-Request-ID"

	maxResponseSize = 4 << 20
)

// Client calls the backend. Requests that need a user attach the bearer
// credential of the configured token source.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokenSource oauth2.TokenSource
	timeout     time.Duration
}

// Option defines a function type to modify the Client instance.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTokenSource sets where the bearer credential comes from.
// *session.Manager implements oauth2.TokenSource.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) {
		c.tokenSource = ts
	}
}

// WithTimeout bounds each request
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// New creates a client for the API rooted at baseURL,
// e.g. http://localhost:8080/api/v1
func New(baseURL string, options ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("[api.New] base url is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("[api.New] invalid base url %q", baseURL)
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range options {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	if c.timeout > 0 {
		withTimeout := *c.httpClient
		withTimeout.Timeout = c.timeout
		c.httpClient = &withTimeout
	}
	return c, nil
}

// BaseURL returns the API root requests are sent to
func (c *Client) BaseURL() string {
	return c.baseURL
}

type authMode int

const (
	authNone authMode = iota
	authOptional
	authRequired
)

// call sends one request and decodes the response envelope.
// path may carry a query string.
func call[T any](ctx context.Context, c *Client, method, path string, auth authMode, body any) (*Envelope[T], error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s body: %w", path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &RequestError{Method: method, Path: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	if err := c.authorize(req, auth); err != nil {
		return nil, err
	}

	log.Debug().Str("method", method).Str("path", path).Str("request_id", requestID).Msg("Calling backend")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &RequestError{Method: method, Path: path, StatusCode: resp.StatusCode, Status: resp.Status, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reqErr := &RequestError{Method: method, Path: path, StatusCode: resp.StatusCode, Status: resp.Status}
		var failure Envelope[json.RawMessage]
		if json.Unmarshal(data, &failure) == nil {
			reqErr.Message = failure.Message
		}
		log.Warn().Str("path", path).Int("status", resp.StatusCode).Str("request_id", requestID).Msg("Backend returned an error status")
		return nil, reqErr
	}

	envelope := &Envelope[T]{}
	if len(bytes.TrimSpace(data)) == 0 {
		return envelope, nil
	}
	if err := json.Unmarshal(data, envelope); err != nil {
		return nil, &RequestError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Err:        fmt.Errorf("decoding response: %w", err),
		}
	}
	return envelope, nil
}

func (c *Client) authorize(req *http.Request, auth authMode) error {
	if auth == authNone {
		return nil
	}
	if c.tokenSource == nil {
		if auth == authRequired {
			return fmt.Errorf("%s %s needs a signed-in user: no token source configured", req.Method, req.URL.Path)
		}
		return nil
	}

	token, err := c.tokenSource.Token()
	if err != nil {
		if auth == authRequired {
			return fmt.Errorf("%s %s needs a signed-in user: %w", req.Method, req.URL.Path, err)
		}
		return nil
	}
	token.SetAuthHeader(req)
	return nil
}

// withQuery appends url-escaped query parameters to path
func withQuery(path string, params map[string]string) string {
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	return path + "?" + values.Encode()
}
