package health

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/pscapp/psc/internal/api"
	"github.com/pscapp/psc/internal/credentials"
	"github.com/pscapp/psc/internal/schema"
	"github.com/pscapp/psc/internal/session"
)

// anonymous strips credentials from every request so diagnostics never
// trigger a refresh of their own.
type anonymous struct {
	d api.Doer
}

func (a anonymous) Do(ctx context.Context, req *api.Request, out any) error {
	r := *req
	r.NoAuth = true
	return a.d.Do(ctx, &r, out)
}

// BackendChecker checks that the backend answers a public endpoint.
type BackendChecker struct {
	doer    api.Doer
	baseURL string
}

func NewBackendChecker(d api.Doer, baseURL string) *BackendChecker {
	return &BackendChecker{doer: anonymous{d}, baseURL: baseURL}
}

func (c *BackendChecker) Name() string {
	return "backend"
}

// Check fetches the public settings list. An HTTP error still proves the
// backend is up, so only a missing response is unhealthy.
func (c *BackendChecker) Check(ctx context.Context) *Result {
	var out json.RawMessage
	err := c.doer.Do(ctx, api.Get(api.PathSettings), &out)
	if err == nil {
		return Healthy("backend is reachable").
			WithDetail("base_url", c.baseURL)
	}

	apiErr, ok := api.AsError(err)
	if !ok || apiErr.StatusCode == 0 {
		return Unhealthy("backend is unreachable").
			WithDetail("base_url", c.baseURL).
			WithDetail("error", err.Error()).
			WithDetail("suggestion", "Check that the backend is running and api.base_url points at it")
	}
	return Degraded(fmt.Sprintf("backend answered with status %d", apiErr.StatusCode)).
		WithDetail("base_url", c.baseURL).
		WithDetail("error", apiErr.Message)
}

// CredentialsChecker inspects the encrypted credentials file.
type CredentialsChecker struct {
	file *credentials.FileStore
	now  func() time.Time
}

func NewCredentialsChecker(file *credentials.FileStore, now func() time.Time) *CredentialsChecker {
	if now == nil {
		now = time.Now
	}
	return &CredentialsChecker{file: file, now: now}
}

func (c *CredentialsChecker) Name() string {
	return "stored-credentials"
}

func (c *CredentialsChecker) Check(ctx context.Context) *Result {
	pair, err := c.file.Load()
	switch {
	case stderrors.Is(err, credentials.ErrNoCredentials):
		return Degraded("no stored credentials").
			WithDetail("path", c.file.Path()).
			WithDetail("suggestion", "Run 'psc auth login' to sign in")
	case err != nil:
		return Unhealthy("stored credentials cannot be read").
			WithDetail("path", c.file.Path()).
			WithDetail("error", err.Error()).
			WithDetail("suggestion", "Run 'psc auth login' to replace them, or check credentials.passphrase")
	}

	r := Healthy("stored credentials are readable").
		WithDetail("path", c.file.Path()).
		WithDetail("fingerprint", credentials.Fingerprint(pair.Access))
	if exp, ok := credentials.ExpiresAt(pair.Access); ok {
		r.WithDetail("expires_at", exp.UTC().Format(time.RFC3339))
	}

	if credentials.Expired(pair.Access, c.now()) {
		if !pair.HasRefresh() {
			r.Status = StatusDegraded
			r.Message = "access credential expired and no refresh credential is stored"
			return r.WithDetail("suggestion", "Run 'psc auth login' to sign in again")
		}
		r.Message = "access credential expired; it is renewed on next use"
	}
	return r
}

// SessionChecker validates the stored session against the backend. A
// rejected session is discarded, as on any other command.
type SessionChecker struct {
	session *session.Manager
	store   api.TokenStore
}

func NewSessionChecker(m *session.Manager, store api.TokenStore) *SessionChecker {
	return &SessionChecker{session: m, store: store}
}

func (c *SessionChecker) Name() string {
	return "session"
}

func (c *SessionChecker) Check(ctx context.Context) *Result {
	if _, ok := c.store.Access(); !ok {
		return Degraded("signed out").
			WithDetail("suggestion", "Run 'psc auth login' to sign in")
	}

	c.session.CheckAuth(ctx)
	state := c.session.State()
	if !state.IsAuthenticated || state.User == nil {
		return Degraded("stored session was rejected and discarded").
			WithDetail("suggestion", "Run 'psc auth login' to sign in again")
	}
	return Healthy("signed in as "+state.User.Email).
		WithDetail("user_id", state.User.ID)
}

// SchemaChecker compares the backend's OpenAPI document with catalog.
type SchemaChecker struct {
	doer    api.Doer
	catalog []api.Endpoint

	mu     sync.Mutex
	report *schema.Report
}

func NewSchemaChecker(d api.Doer, catalog []api.Endpoint) *SchemaChecker {
	return &SchemaChecker{doer: anonymous{d}, catalog: catalog}
}

func (c *SchemaChecker) Name() string {
	return "api-schema"
}

// Report returns the schema report from the last check, or nil.
func (c *SchemaChecker) Report() *schema.Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.report
}

func (c *SchemaChecker) Check(ctx context.Context) *Result {
	report, err := schema.Check(ctx, c.doer, c.catalog)
	if err != nil {
		return Unhealthy("backend schema unavailable").
			WithDetail("error", err.Error())
	}

	c.mu.Lock()
	c.report = report
	c.mu.Unlock()

	if !report.OK() {
		return Unhealthy(fmt.Sprintf("%d of %d endpoints missing from the backend schema", len(report.Findings), report.Checked)).
			WithDetail("title", report.Title).
			WithDetail("version", report.Version)
	}
	r := Healthy(fmt.Sprintf("all %d endpoints present", report.Checked)).
		WithDetail("title", report.Title).
		WithDetail("version", report.Version)
	if report.ValidationError != "" {
		r.Status = StatusDegraded
		r.WithDetail("validation_error", report.ValidationError)
	}
	return r
}
