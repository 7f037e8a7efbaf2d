// Package api is the authenticated access layer to the PSC backend.
//
// A Client sends one request at a time on behalf of its caller, attaches the
// bearer credential held by a TokenStore, and, when the server answers 401,
// exchanges the refresh credential and retries the request exactly once.
// Every failure is returned as an *Error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/pscapp/psc/internal/credentials"
	"github.com/pscapp/psc/internal/log"
)

// TokenStore is the credential holder the client reads and updates.
// *credentials.Store implements it.
type TokenStore interface {
	Access() (string, bool)
	RefreshToken() (string, bool)
	Set(access, refresh string)
	Clear()
}

// Doer sends a request and decodes the response into out.
type Doer interface {
	Do(ctx context.Context, req *Request, out any) error
}

// Client is the PSC API client
type Client struct {
	baseURL     string
	store       TokenStore
	http        *http.Client
	logger      *log.Logger
	refreshPath string
	userAgent   string

	coalesce bool
	flight   singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport. The default client has a cookie
// jar and no timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for request traces.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRefreshCoalescing joins concurrent refresh exchanges into a single
// in-flight call whose result every waiter shares.
func WithRefreshCoalescing() Option {
	return func(c *Client) {
		c.coalesce = true
	}
}

// WithRefreshPath overrides the token refresh endpoint.
func WithRefreshPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.refreshPath = path
		}
	}
}

// WithUserAgent sets the User-Agent header on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client for the backend at baseURL using store for credentials.
func New(baseURL string, store TokenStore, opts ...Option) *Client {
	jar, _ := cookiejar.New(nil)

	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		store:       store,
		http:        &http.Client{Jar: jar},
		logger:      log.Discard(),
		refreshPath: PathTokenRefresh,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Store returns the credential store the client reads from.
func (c *Client) Store() TokenStore {
	return c.store
}

func (c *Client) resolveURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + path
}

// credential picks the bearer token for req. explicit is true when the
// caller supplied it, which rules out refresh-and-retry.
func (c *Client) credential(req *Request) (token string, explicit bool) {
	if req.NoAuth {
		return "", false
	}
	if req.Token != "" {
		return req.Token, true
	}
	if c.store == nil {
		return "", false
	}
	token, _ = c.store.Access()
	return token, false
}

// Do sends req and decodes a successful JSON response into out. An empty
// body leaves out untouched. A nil out discards the body.
func (c *Client) Do(ctx context.Context, req *Request, out any) error {
	if req == nil {
		return invalidRequest("nil request")
	}

	body, err := req.encode()
	if err != nil {
		return err
	}

	if _, ok := log.RequestIDFrom(ctx); !ok {
		ctx = log.ContextWithRequestID(ctx, uuid.NewString())
	}

	token, explicit := c.credential(req)
	resp, err := c.send(ctx, req, body, token, 1)
	if err != nil {
		return err
	}

	if resp.status == http.StatusUnauthorized && c.refreshEligible(req, explicit) {
		return c.retryAfterRefresh(ctx, req, body, resp, out)
	}

	return resp.decode(out)
}

// Fetch sends req and returns the decoded body. An empty or null body
// yields a nil pointer.
func Fetch[T any](ctx context.Context, d Doer, req *Request) (*T, error) {
	var out *T
	if err := d.Do(ctx, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// response is a fully read HTTP response.
type response struct {
	status int
	body   []byte
}

func (r *response) ok() bool {
	return r.status >= 200 && r.status < 300
}

func (r *response) decode(out any) error {
	if !r.ok() {
		return NormalizeBody(r.body, r.status)
	}
	if len(bytes.TrimSpace(r.body)) == 0 {
		return nil
	}
	if out == nil {
		if !json.Valid(r.body) {
			return parseError(r.body, nil)
		}
		return nil
	}
	if err := json.Unmarshal(r.body, out); err != nil {
		return parseError(r.body, err)
	}
	return nil
}

// send performs one HTTP exchange and reads the whole body.
func (c *Client) send(ctx context.Context, req *Request, body payload, token string, attempt int) (*response, error) {
	method := req.method()

	httpReq, err := http.NewRequestWithContext(ctx, method, c.resolveURL(req.Path), body.reader())
	if err != nil {
		e := invalidRequest("cannot build request for %s", req.Path)
		e.Cause = err
		return nil, e
	}

	httpReq.Header.Set("Accept", contentTypeJSON)
	httpReq.Header.Set("Content-Type", body.contentType)
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	for k, vs := range req.Header {
		httpReq.Header.Del(k)
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	logger := c.logger.WithContext(ctx).With(
		"method", method,
		"path", req.Path,
		"attempt", attempt,
	)
	if token != "" {
		logger = logger.With("token_fp", credentials.Fingerprint(token))
	}

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		logger.DebugContext(ctx, "request failed", "error", err.Error(), "duration", time.Since(start))
		return nil, networkError(err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		logger.DebugContext(ctx, "reading response failed", "error", err.Error(), "status", httpResp.StatusCode)
		return nil, networkError(err)
	}

	logger.DebugContext(ctx, "request completed",
		"status", httpResp.StatusCode,
		"bytes", len(raw),
		"duration", time.Since(start),
	)

	return &response{status: httpResp.StatusCode, body: raw}, nil
}
