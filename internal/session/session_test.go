package session

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscapp/psc/internal/api"
	"github.com/pscapp/psc/internal/apitest"
	"github.com/pscapp/psc/internal/credentials"
	"github.com/pscapp/psc/internal/exam"
)

func newTestManager(t *testing.T) (*Manager, *apitest.Server, *credentials.Store) {
	t.Helper()
	s := apitest.New(t)
	store := credentials.NewStore()
	client := exam.New(api.New(s.URL, store))
	return New(client, store), s, store
}

func profileHandler(token string) http.HandlerFunc {
	return apitest.RequireBearer(token, func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteJSON(w, http.StatusOK, map[string]any{"id": 1, "full_name": "A"})
	})
}

func TestNew_StartsLoading(t *testing.T) {
	m, _, _ := newTestManager(t)
	assert.Equal(t, State{IsLoading: true}, m.State())
}

func TestLogin_Success(t *testing.T) {
	m, s, store := newTestManager(t)
	s.JSON(http.MethodPost, api.PathAuthLogin, http.StatusOK, map[string]any{"access": "T1", "refresh": "R1"})
	s.Handle(http.MethodGet, api.PathAuthUser, profileHandler("T1"))

	tokens, err := m.Login(context.Background(), exam.LoginRequest{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "T1", tokens.Access)

	pair, ok := store.Pair()
	require.True(t, ok)
	assert.Equal(t, credentials.Pair{Access: "T1", Refresh: "R1"}, pair)

	state := m.State()
	assert.True(t, state.IsAuthenticated)
	assert.False(t, state.IsLoading)
	assert.Empty(t, state.Error)
	require.NotNil(t, state.User)
	assert.Equal(t, 1, state.User.ID)
	assert.Equal(t, "A", state.User.FullName)

	assert.Empty(t, s.RequestsTo(http.MethodPost, api.PathAuthLogin)[0].Authorization())
	assert.Equal(t, "Bearer T1", s.RequestsTo(http.MethodGet, api.PathAuthUser)[0].Authorization())
}

func TestLogin_ReportsTransitions(t *testing.T) {
	m, s, _ := newTestManager(t)
	s.JSON(http.MethodPost, api.PathAuthLogin, http.StatusOK, map[string]any{"access": "T1", "refresh": "R1"})
	s.Handle(http.MethodGet, api.PathAuthUser, profileHandler("T1"))

	var states []State
	m.OnChange(func(st State) { states = append(states, st) })

	_, err := m.Login(context.Background(), exam.LoginRequest{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)

	require.Len(t, states, 2)
	assert.True(t, states[0].IsLoading)
	assert.False(t, states[0].IsAuthenticated)
	assert.True(t, states[1].IsAuthenticated)
	assert.False(t, states[1].IsLoading)
}

func TestLogin_ServerMessage(t *testing.T) {
	m, s, store := newTestManager(t)
	s.JSON(http.MethodPost, api.PathAuthLogin, http.StatusBadRequest, map[string]any{
		"non_field_errors": []string{"Unable to log in with provided credentials."},
	})

	_, err := m.Login(context.Background(), exam.LoginRequest{Email: "a@b.com", Password: "bad"})
	require.Error(t, err)

	state := m.State()
	assert.False(t, state.IsLoading)
	assert.False(t, state.IsAuthenticated)
	assert.Equal(t, "Unable to log in with provided credentials.", state.Error)

	_, ok := store.Access()
	assert.False(t, ok)
}

func TestLogin_FallbackMessages(t *testing.T) {
	tests := []struct {
		name string
		path string
		run  func(*Manager) error
		want string
	}{
		{
			name: "login",
			path: api.PathAuthLogin,
			run: func(m *Manager) error {
				_, err := m.Login(context.Background(), exam.LoginRequest{Email: "a@b.com"})
				return err
			},
			want: "Request failed with status 400",
		},
		{
			name: "dev login",
			path: api.PathAuthDevLogin,
			run: func(m *Manager) error {
				_, err := m.DevLogin(context.Background(), "a@b.com", "")
				return err
			},
			want: "Request failed with status 400",
		},
		{
			name: "google",
			path: api.PathAuthGoogle,
			run: func(m *Manager) error {
				_, err := m.GoogleLogin(context.Background(), exam.GoogleLoginRequest{AccessToken: "g"})
				return err
			},
			want: "Request failed with status 400",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, s, _ := newTestManager(t)
			s.JSON(http.MethodPost, tt.path, http.StatusBadRequest, map[string]any{"error": "nope"})

			require.Error(t, tt.run(m))
			assert.Equal(t, tt.want, m.State().Error)
		})
	}
}

func TestFail_NonAPIErrorUsesFallback(t *testing.T) {
	m, _, _ := newTestManager(t)

	err := m.fail(context.Background(), context.Canceled, msgGoogleFailed)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "Google login failed", m.State().Error)
}

func TestLogin_ProfileFailureClearsStore(t *testing.T) {
	m, s, store := newTestManager(t)
	s.JSON(http.MethodPost, api.PathAuthLogin, http.StatusOK, map[string]any{"access": "T1", "refresh": "R1"})
	s.JSON(http.MethodGet, api.PathAuthUser, http.StatusInternalServerError, map[string]any{"detail": "boom"})

	_, err := m.Login(context.Background(), exam.LoginRequest{Email: "a@b.com", Password: "x"})
	require.Error(t, err)

	_, ok := store.Pair()
	assert.False(t, ok)
	assert.Equal(t, "boom", m.State().Error)
	assert.False(t, m.State().IsAuthenticated)
}

func TestDevLogin_Success(t *testing.T) {
	m, s, _ := newTestManager(t)
	s.JSON(http.MethodPost, api.PathAuthDevLogin, http.StatusOK, map[string]any{"access": "T1", "refresh": "R1"})
	s.Handle(http.MethodGet, api.PathAuthUser, profileHandler("T1"))

	_, err := m.DevLogin(context.Background(), "dev@b.com", "")
	require.NoError(t, err)
	assert.True(t, m.State().IsAuthenticated)

	var body map[string]any
	require.NoError(t, s.RequestsTo(http.MethodPost, api.PathAuthDevLogin)[0].JSON(&body))
	assert.Equal(t, map[string]any{"email": "dev@b.com"}, body)
}

func TestRegister_Success(t *testing.T) {
	m, s, store := newTestManager(t)
	s.JSON(http.MethodPost, api.PathAuthRegistration, http.StatusCreated, map[string]any{"access": "T1", "refresh": "R1"})
	s.Handle(http.MethodGet, api.PathAuthUser, profileHandler("T1"))

	_, err := m.Register(context.Background(), exam.RegisterRequest{Email: "a@b.com", Password1: "pw", Password2: "pw"})
	require.NoError(t, err)
	assert.True(t, m.State().IsAuthenticated)

	access, _ := store.Access()
	assert.Equal(t, "T1", access)
}

func TestCheckAuth_NoCredential(t *testing.T) {
	m, s, _ := newTestManager(t)

	m.CheckAuth(context.Background())

	assert.Equal(t, State{}, m.State())
	assert.Empty(t, s.Requests())
}

func TestCheckAuth_Valid(t *testing.T) {
	m, s, store := newTestManager(t)
	store.Set("T1", "R1")
	s.Handle(http.MethodGet, api.PathAuthUser, profileHandler("T1"))

	m.CheckAuth(context.Background())

	state := m.State()
	assert.True(t, state.IsAuthenticated)
	assert.False(t, state.IsLoading)
	require.NotNil(t, state.User)
	assert.Equal(t, "A", state.User.FullName)
}

func TestCheckAuth_RefreshesExpiredAccess(t *testing.T) {
	m, s, store := newTestManager(t)
	store.Set("T0", "R1")
	s.Handle(http.MethodGet, api.PathAuthUser, profileHandler("T1"))
	s.JSON(http.MethodPost, api.PathTokenRefresh, http.StatusOK, map[string]any{"access": "T1"})

	m.CheckAuth(context.Background())

	assert.True(t, m.State().IsAuthenticated)
	pair, ok := store.Pair()
	require.True(t, ok)
	assert.Equal(t, credentials.Pair{Access: "T1", Refresh: "R1"}, pair)
}

func TestCheckAuth_RejectedClearsStore(t *testing.T) {
	m, s, store := newTestManager(t)
	store.Set("T0", "R1")
	s.Handle(http.MethodGet, api.PathAuthUser, profileHandler("T1"))
	s.JSON(http.MethodPost, api.PathTokenRefresh, http.StatusUnauthorized, map[string]any{"detail": "Token is blacklisted"})

	m.CheckAuth(context.Background())

	assert.Equal(t, State{}, m.State())
	_, ok := store.Pair()
	assert.False(t, ok)
}

func TestLogout_AlwaysClears(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"server accepts", http.StatusOK},
		{"server fails", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, s, store := newTestManager(t)
			store.Set("T1", "R1")
			s.Handle(http.MethodGet, api.PathAuthUser, profileHandler("T1"))
			s.JSON(http.MethodPost, api.PathAuthLogout, tt.status, map[string]any{"detail": "x"})

			m.CheckAuth(context.Background())
			require.True(t, m.State().IsAuthenticated)

			m.Logout(context.Background())

			assert.Equal(t, State{}, m.State())
			_, ok := store.Pair()
			assert.False(t, ok)

			var body map[string]string
			require.NoError(t, s.RequestsTo(http.MethodPost, api.PathAuthLogout)[0].JSON(&body))
			assert.Equal(t, "R1", body["refresh"])
		})
	}
}

func TestLogout_Unreachable(t *testing.T) {
	store := credentials.NewStore()
	store.Set("T1", "R1")
	m := New(exam.New(api.New("http://127.0.0.1:1", store)), store)

	m.Logout(context.Background())

	assert.Equal(t, State{}, m.State())
	_, ok := store.Pair()
	assert.False(t, ok)
}

func TestRefreshUser(t *testing.T) {
	m, s, store := newTestManager(t)
	store.Set("T1", "R1")
	s.Sequence(http.MethodGet, api.PathAuthUser,
		func(w http.ResponseWriter, r *http.Request) {
			apitest.WriteJSON(w, http.StatusOK, map[string]any{"id": 1, "full_name": "A"})
		},
		func(w http.ResponseWriter, r *http.Request) {
			apitest.WriteJSON(w, http.StatusOK, map[string]any{"id": 1, "full_name": "B"})
		},
		func(w http.ResponseWriter, r *http.Request) {
			apitest.WriteJSON(w, http.StatusInternalServerError, map[string]any{"detail": "down"})
		},
	)

	m.CheckAuth(context.Background())
	require.Equal(t, "A", m.State().User.FullName)

	m.RefreshUser(context.Background())
	assert.Equal(t, "B", m.State().User.FullName)

	m.RefreshUser(context.Background())
	state := m.State()
	assert.Equal(t, "B", state.User.FullName)
	assert.True(t, state.IsAuthenticated)
	assert.Empty(t, state.Error)
}

func TestRefreshUser_SignedOutIsNoop(t *testing.T) {
	m, s, _ := newTestManager(t)

	m.RefreshUser(context.Background())

	assert.Empty(t, s.Requests())
	assert.Equal(t, State{IsLoading: true}, m.State())
}

func TestState_ConcurrentReaders(t *testing.T) {
	m, s, store := newTestManager(t)
	store.Set("T1", "R1")
	s.Handle(http.MethodGet, api.PathAuthUser, profileHandler("T1"))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.RefreshUser(context.Background())
		}()
		go func() {
			defer wg.Done()
			_ = m.State()
		}()
	}
	wg.Wait()

	require.NotNil(t, m.State().User)
	assert.Equal(t, 1, m.State().User.ID)
}
