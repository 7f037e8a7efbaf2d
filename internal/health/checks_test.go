package health

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscapp/psc/internal/api"
	"github.com/pscapp/psc/internal/apitest"
	"github.com/pscapp/psc/internal/credentials"
	"github.com/pscapp/psc/internal/exam"
	"github.com/pscapp/psc/internal/session"
)

func TestBackendChecker(t *testing.T) {
	s := apitest.New(t)
	s.JSON(http.MethodGet, api.PathSettings, http.StatusOK, []any{})

	store := credentials.NewStore(credentials.WithPair(credentials.Pair{Access: "T1", Refresh: "R1"}))
	r := NewBackendChecker(api.New(s.URL, store), s.URL).Check(context.Background())

	assert.Equal(t, StatusHealthy, r.Status)
	assert.Equal(t, s.URL, r.Details["base_url"])
	assert.Empty(t, s.Last().Authorization())
}

func TestBackendChecker_ErrorStatus(t *testing.T) {
	s := apitest.New(t)
	s.JSON(http.MethodGet, api.PathSettings, http.StatusServiceUnavailable, map[string]any{"detail": "maintenance"})

	r := NewBackendChecker(api.New(s.URL, credentials.NewStore()), s.URL).Check(context.Background())
	assert.Equal(t, StatusDegraded, r.Status)
	assert.Contains(t, r.Message, "503")
	assert.Equal(t, "maintenance", r.Details["error"])
}

func TestBackendChecker_Unreachable(t *testing.T) {
	r := NewBackendChecker(api.New("http://127.0.0.1:1", credentials.NewStore()), "http://127.0.0.1:1").Check(context.Background())
	assert.Equal(t, StatusUnhealthy, r.Status)
	assert.Contains(t, r.Details, "suggestion")
}

func newFileStore(t *testing.T) *credentials.FileStore {
	t.Helper()
	fs, err := credentials.NewFileStore(filepath.Join(t.TempDir(), "credentials.enc"), "passphrase")
	require.NoError(t, err)
	return fs
}

func TestCredentialsChecker(t *testing.T) {
	s := apitest.New(t)
	fs := newFileStore(t)
	checker := NewCredentialsChecker(fs, nil)

	r := checker.Check(context.Background())
	assert.Equal(t, StatusDegraded, r.Status)
	assert.Equal(t, "no stored credentials", r.Message)

	access := s.IssueToken("7", time.Hour)
	require.NoError(t, fs.Save(credentials.Pair{Access: access, Refresh: "R1"}))

	r = checker.Check(context.Background())
	assert.Equal(t, StatusHealthy, r.Status)
	assert.Equal(t, credentials.Fingerprint(access), r.Details["fingerprint"])
	assert.Contains(t, r.Details, "expires_at")
}

func TestCredentialsChecker_Expired(t *testing.T) {
	s := apitest.New(t)
	fs := newFileStore(t)
	later := func() time.Time { return time.Now().Add(2 * time.Hour) }
	access := s.IssueToken("7", time.Hour)

	require.NoError(t, fs.Save(credentials.Pair{Access: access, Refresh: "R1"}))
	r := NewCredentialsChecker(fs, later).Check(context.Background())
	assert.Equal(t, StatusHealthy, r.Status)
	assert.Contains(t, r.Message, "renewed on next use")

	require.NoError(t, fs.Save(credentials.Pair{Access: access}))
	r = NewCredentialsChecker(fs, later).Check(context.Background())
	assert.Equal(t, StatusDegraded, r.Status)
}

func TestCredentialsChecker_WrongPassphrase(t *testing.T) {
	fs := newFileStore(t)
	require.NoError(t, fs.Save(credentials.Pair{Access: "T1"}))

	other, err := credentials.NewFileStore(fs.Path(), "another passphrase")
	require.NoError(t, err)

	r := NewCredentialsChecker(other, nil).Check(context.Background())
	assert.Equal(t, StatusUnhealthy, r.Status)
}

func TestSessionChecker(t *testing.T) {
	s := apitest.New(t)
	s.Handle(http.MethodGet, api.PathAuthUser, apitest.RequireBearer("T1", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteJSON(w, http.StatusOK, map[string]any{"id": 7, "email": "sita@example.com"})
	}))

	store := credentials.NewStore()
	client := api.New(s.URL, store)
	checker := NewSessionChecker(session.New(exam.New(client), store), store)

	r := checker.Check(context.Background())
	assert.Equal(t, StatusDegraded, r.Status)
	assert.Equal(t, "signed out", r.Message)
	assert.Empty(t, s.Requests())

	store.Set("T1", "R1")
	r = checker.Check(context.Background())
	assert.Equal(t, StatusHealthy, r.Status)
	assert.Equal(t, "signed in as sita@example.com", r.Message)

	store.Set("T0", "")
	r = checker.Check(context.Background())
	assert.Equal(t, StatusDegraded, r.Status)
	_, ok := store.Access()
	assert.False(t, ok)
}

const miniSchema = `{
  "openapi": "3.0.3",
  "info": {"title": "PSC API", "version": "2.1.0"},
  "paths": {
    "/api/auth/user/": {"get": {"responses": {"200": {"description": "ok"}}}}
  }
}`

func TestSchemaChecker(t *testing.T) {
	s := apitest.New(t)
	s.Raw(http.MethodGet, "/schema/", http.StatusOK, "application/json", miniSchema)
	client := api.New(s.URL, credentials.NewStore())

	ok := NewSchemaChecker(client, []api.Endpoint{{Name: "auth.user", Method: "GET", Path: api.PathAuthUser}})
	r := ok.Check(context.Background())
	assert.Equal(t, StatusHealthy, r.Status)
	assert.Equal(t, "all 1 endpoints present", r.Message)
	require.NotNil(t, ok.Report())
	assert.Equal(t, "2.1.0", ok.Report().Version)

	missing := NewSchemaChecker(client, []api.Endpoint{
		{Name: "auth.user", Method: "GET", Path: api.PathAuthUser},
		{Name: "attempts.start", Method: "POST", Path: api.PathAttemptStart},
	})
	r = missing.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, r.Status)
	assert.Equal(t, "1 of 2 endpoints missing from the backend schema", r.Message)
	require.Len(t, missing.Report().Findings, 1)
}

func TestSchemaChecker_Unavailable(t *testing.T) {
	s := apitest.New(t)
	s.JSON(http.MethodGet, "/schema/", http.StatusNotFound, map[string]any{"detail": "Not found."})

	c := NewSchemaChecker(api.New(s.URL, credentials.NewStore()), api.Catalog)
	r := c.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, r.Status)
	assert.Nil(t, c.Report())
}
