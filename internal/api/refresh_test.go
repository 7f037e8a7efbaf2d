package api

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscapp/psc/internal/apitest"
	"github.com/pscapp/psc/internal/credentials"
)

// protectedProfile answers 200 only for the given access token.
func protectedProfile(s *apitest.Server, token string) {
	s.Handle(http.MethodGet, PathAuthUser, apitest.RequireBearer(token, func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteJSON(w, http.StatusOK, map[string]any{"id": 1, "full_name": "A"})
	}))
}

func TestRefresh_SuccessRetriesOnce(t *testing.T) {
	s := apitest.New(t)
	protectedProfile(s, "T2")
	s.JSON(http.MethodPost, PathTokenRefresh, http.StatusOK, map[string]any{"access": "T2", "refresh": "R2"})

	store := credentials.NewStore()
	store.Set("T1", "R1")
	c := newTestClient(t, s, store)

	got, err := Fetch[profile](context.Background(), c, Get(PathAuthUser))
	require.NoError(t, err)
	assert.Equal(t, 1, got.ID)

	assert.Equal(t, 1, s.Count(http.MethodPost, PathTokenRefresh))
	calls := s.RequestsTo(http.MethodGet, PathAuthUser)
	require.Len(t, calls, 2)
	assert.Equal(t, "Bearer T1", calls[0].Authorization())
	assert.Equal(t, "Bearer T2", calls[1].Authorization())

	refreshCall := s.RequestsTo(http.MethodPost, PathTokenRefresh)[0]
	assert.Empty(t, refreshCall.Authorization(), "the refresh exchange carries no bearer credential")
	assert.JSONEq(t, `{"refresh":"R1"}`, string(refreshCall.Body))

	pair, ok := store.Pair()
	require.True(t, ok)
	assert.Equal(t, credentials.Pair{Access: "T2", Refresh: "R2"}, pair)
}

func TestRefresh_WithoutRotationKeepsRefresh(t *testing.T) {
	s := apitest.New(t)
	protectedProfile(s, "T2")
	s.JSON(http.MethodPost, PathTokenRefresh, http.StatusOK, map[string]any{"access": "T2"})

	store := credentials.NewStore()
	store.Set("T1", "R1")

	require.NoError(t, newTestClient(t, s, store).Do(context.Background(), Get(PathAuthUser), nil))

	pair, _ := store.Pair()
	assert.Equal(t, credentials.Pair{Access: "T2", Refresh: "R1"}, pair)
}

func TestRefresh_FailureClearsStoreAndSurfacesOriginal401(t *testing.T) {
	tests := []struct {
		name    string
		refresh func(s *apitest.Server) []Option
	}{
		{
			name: "refresh rejected",
			refresh: func(s *apitest.Server) []Option {
				s.JSON(http.MethodPost, PathTokenRefresh, http.StatusUnauthorized, map[string]any{"detail": "Token is blacklisted"})
				return nil
			},
		},
		{
			name: "refresh response without access",
			refresh: func(s *apitest.Server) []Option {
				s.JSON(http.MethodPost, PathTokenRefresh, http.StatusOK, map[string]any{"refresh": "R2"})
				return nil
			},
		},
		{
			name: "refresh response not json",
			refresh: func(s *apitest.Server) []Option {
				s.Raw(http.MethodPost, PathTokenRefresh, http.StatusOK, "text/plain", "ok")
				return nil
			},
		},
		{
			name: "refresh endpoint unreachable",
			refresh: func(s *apitest.Server) []Option {
				return []Option{WithRefreshPath("http://127.0.0.1:1/token/refresh/")}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := apitest.New(t)
			protectedProfile(s, "never-valid")
			opts := tt.refresh(s)

			store := credentials.NewStore()
			store.Set("T1", "R1")
			c := newTestClient(t, s, store, opts...)

			err := c.Do(context.Background(), Get(PathAuthUser), nil)

			apiErr, ok := AsError(err)
			require.True(t, ok, "expected *api.Error, got %T", err)
			assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
			assert.Equal(t, "Given token not valid for any token type", apiErr.Message)

			_, live := store.Pair()
			assert.False(t, live, "store must end cleared")
			assert.Equal(t, 1, s.Count(http.MethodGet, PathAuthUser), "no retry after a failed refresh")
		})
	}
}

func TestRefresh_NoRefreshCredential(t *testing.T) {
	s := apitest.New(t)
	protectedProfile(s, "never-valid")
	s.JSON(http.MethodPost, PathTokenRefresh, http.StatusOK, map[string]any{"access": "T2"})

	store := credentials.NewStore()
	store.Set("T1", "")

	err := newTestClient(t, s, store).Do(context.Background(), Get(PathAuthUser), nil)

	assert.True(t, IsUnauthorized(err))
	assert.Zero(t, s.Count(http.MethodPost, PathTokenRefresh))
	assert.Equal(t, 1, s.Count(http.MethodGet, PathAuthUser))

	access, ok := store.Access()
	assert.True(t, ok, "an ineligible 401 leaves the store alone")
	assert.Equal(t, "T1", access)
}

func TestRefresh_ExplicitTokenDisablesRetry(t *testing.T) {
	s := apitest.New(t)
	protectedProfile(s, "never-valid")
	s.JSON(http.MethodPost, PathTokenRefresh, http.StatusOK, map[string]any{"access": "T2"})

	store := credentials.NewStore()
	store.Set("T1", "R1")

	err := newTestClient(t, s, store).Do(context.Background(), &Request{Path: PathAuthUser, Token: "one-off"}, nil)

	assert.True(t, IsUnauthorized(err))
	assert.Zero(t, s.Count(http.MethodPost, PathTokenRefresh))
}

func TestRefresh_NoAuthDisablesRetry(t *testing.T) {
	s := apitest.New(t)
	s.JSON(http.MethodPost, PathAuthLogin, http.StatusUnauthorized, map[string]any{"detail": "bad credentials"})

	store := credentials.NewStore()
	store.Set("T1", "R1")

	err := newTestClient(t, s, store).Do(context.Background(), &Request{Method: http.MethodPost, Path: PathAuthLogin, NoAuth: true}, nil)

	assert.True(t, IsUnauthorized(err))
	assert.Zero(t, s.Count(http.MethodPost, PathTokenRefresh))
}

func TestRefresh_RetriedUnauthorizedIsFinal(t *testing.T) {
	s := apitest.New(t)
	protectedProfile(s, "never-valid")
	s.JSON(http.MethodPost, PathTokenRefresh, http.StatusOK, map[string]any{"access": "T2", "refresh": "R2"})

	store := credentials.NewStore()
	store.Set("T1", "R1")

	err := newTestClient(t, s, store).Do(context.Background(), Get(PathAuthUser), nil)

	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, 1, s.Count(http.MethodPost, PathTokenRefresh))
	assert.Equal(t, 2, s.Count(http.MethodGet, PathAuthUser))

	pair, ok := store.Pair()
	require.True(t, ok, "a successful refresh is kept even if the retry fails")
	assert.Equal(t, "T2", pair.Access)
}

func TestRefresh_RetryResendsSameForm(t *testing.T) {
	s := apitest.New(t)
	s.Handle(http.MethodPatch, PathAuthUser, apitest.RequireBearer("T2", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteJSON(w, http.StatusOK, map[string]any{"id": 1})
	}))
	s.JSON(http.MethodPost, PathTokenRefresh, http.StatusOK, map[string]any{"access": "T2"})

	store := credentials.NewStore()
	store.Set("T1", "R1")

	form := NewForm().Set("full_name", "A").AddFile(FormFile{Field: "profile_picture", Filename: "a.jpg", Data: []byte{0xff, 0xd8}})
	req := &Request{Method: http.MethodPatch, Path: PathAuthUser, Form: form}
	require.NoError(t, newTestClient(t, s, store).Do(context.Background(), req, nil))

	calls := s.RequestsTo(http.MethodPatch, PathAuthUser)
	require.Len(t, calls, 2)
	assert.Equal(t, calls[0].Body, calls[1].Body)
	assert.Equal(t, calls[0].Header.Get("Content-Type"), calls[1].Header.Get("Content-Type"))
}

func TestClient_ForcedRefresh(t *testing.T) {
	s := apitest.New(t)
	s.JSON(http.MethodPost, PathTokenRefresh, http.StatusOK, map[string]any{"access": "T2", "refresh": "R2"})

	store := credentials.NewStore()
	store.Set("T1", "R1")
	c := newTestClient(t, s, store)

	pair, err := c.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TokenPair{Access: "T2", Refresh: "R2"}, pair)

	_, err = New(s.URL, credentials.NewStore()).Refresh(context.Background())
	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindInvalid, apiErr.Kind)
}

// concurrent401s fires n requests whose first attempts all reach the server
// before any of them is answered, so every caller sees its 401 together.
func concurrent401s(t *testing.T, n int, opts ...Option) (*apitest.Server, *credentials.Store) {
	t.Helper()

	s := apitest.New(t)
	var arrived sync.WaitGroup
	arrived.Add(n)
	s.Handle(http.MethodGet, PathAuthUser, func(w http.ResponseWriter, r *http.Request) {
		if apitest.BearerToken(r) == "T1" {
			arrived.Done()
			arrived.Wait()
			apitest.WriteJSON(w, http.StatusUnauthorized, map[string]any{"detail": "expired"})
			return
		}
		apitest.WriteJSON(w, http.StatusOK, map[string]any{"id": 1})
	})
	s.Handle(http.MethodPost, PathTokenRefresh, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		apitest.WriteJSON(w, http.StatusOK, map[string]any{"access": "T2"})
	})

	store := credentials.NewStore()
	store.Set("T1", "R1")
	c := newTestClient(t, s, store, opts...)

	var done sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		done.Add(1)
		go func() {
			defer done.Done()
			errs <- c.Do(context.Background(), Get(PathAuthUser), nil)
		}()
	}
	done.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	return s, store
}

func TestRefresh_ConcurrentCallersRefreshIndependently(t *testing.T) {
	s, store := concurrent401s(t, 3)

	assert.Equal(t, 3, s.Count(http.MethodPost, PathTokenRefresh))
	access, _ := store.Access()
	assert.Equal(t, "T2", access)
}

func TestRefresh_CoalescedConcurrentCallersShareOneRefresh(t *testing.T) {
	s, store := concurrent401s(t, 3, WithRefreshCoalescing())

	assert.Equal(t, 1, s.Count(http.MethodPost, PathTokenRefresh))
	assert.Equal(t, 6, s.Count(http.MethodGet, PathAuthUser))
	access, _ := store.Access()
	assert.Equal(t, "T2", access)
}

func TestRefreshStateString(t *testing.T) {
	states := []refreshState{stateSent, stateUnauthorized, stateRefreshing, stateRetrying, stateDone, stateCleared, stateFailed}
	want := []string{"sent", "unauthorized", "refreshing", "retrying", "done", "cleared", "failed"}
	for i, s := range states {
		assert.Equal(t, want[i], s.String())
	}
	assert.Equal(t, "unknown", refreshState(99).String())
}
