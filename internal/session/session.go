// Package session tracks who is signed in and drives the login, logout and
// auth-check flows over the credential store and the backend.
package session

import (
	"context"
	"sync"

	"github.com/pscapp/psc/internal/api"
	"github.com/pscapp/psc/internal/exam"
	"github.com/pscapp/psc/internal/log"
)

// Fallback messages used when a failure carries no server message.
const (
	msgLoginFailed    = "Login failed"
	msgDevLoginFailed = "Dev login failed"
	msgGoogleFailed   = "Google login failed"
	msgRegisterFailed = "Registration failed"
)

// State is a snapshot of the session.
type State struct {
	User            *exam.Profile
	IsAuthenticated bool
	IsLoading       bool
	Error           string
}

// Manager owns the session state. It is safe for concurrent use, but
// overlapping flows are applied in completion order.
type Manager struct {
	client *exam.Client
	store  api.TokenStore
	logger *log.Logger

	mu        sync.Mutex
	state     State
	observers []func(State)
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. The default discards.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// New creates a manager in the loading state. Call CheckAuth to resolve it.
func New(client *exam.Client, store api.TokenStore, opts ...Option) *Manager {
	m := &Manager{
		client: client,
		store:  store,
		logger: log.Discard(),
		state:  State{IsLoading: true},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns a copy of the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// OnChange registers fn to be called with every new state.
func (m *Manager) OnChange(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// update applies fn to the state and notifies observers outside the lock.
func (m *Manager) update(fn func(*State)) State {
	m.mu.Lock()
	fn(&m.state)
	next := m.state
	observers := append([]func(State){}, m.observers...)
	m.mu.Unlock()

	for _, o := range observers {
		o(next)
	}
	return next
}

func (m *Manager) signedOut() {
	m.update(func(s *State) {
		*s = State{}
	})
}

// CheckAuth resolves the session from the stored credential. Any failure
// discards the stored pair and leaves the session signed out without an
// error message.
func (m *Manager) CheckAuth(ctx context.Context) {
	if _, ok := m.store.Access(); !ok {
		m.signedOut()
		return
	}

	user, err := m.client.CurrentProfile(ctx, "")
	if err != nil {
		m.logger.WithError(err).DebugContext(ctx, "stored session rejected")
		m.store.Clear()
		m.signedOut()
		return
	}

	m.update(func(s *State) {
		*s = State{User: user, IsAuthenticated: true}
	})
}

// issueFunc obtains a credential pair from one of the login endpoints.
type issueFunc func(ctx context.Context) (*exam.TokenResponse, error)

// signIn runs the shared login flow: store the pair, load the profile with
// the new access credential, mark the session authenticated.
func (m *Manager) signIn(ctx context.Context, issue issueFunc, fallback string) (*exam.TokenResponse, error) {
	m.update(func(s *State) {
		s.IsLoading = true
		s.Error = ""
	})

	tokens, err := issue(ctx)
	if err != nil {
		return nil, m.fail(ctx, err, fallback)
	}

	m.store.Set(tokens.Access, tokens.Refresh)

	user, err := m.client.CurrentProfile(ctx, tokens.Access)
	if err != nil {
		m.store.Clear()
		return nil, m.fail(ctx, err, fallback)
	}

	m.update(func(s *State) {
		*s = State{User: user, IsAuthenticated: true}
	})
	m.logger.InfoContext(ctx, "signed in", "user_id", user.ID)
	return tokens, nil
}

func (m *Manager) fail(ctx context.Context, err error, fallback string) error {
	msg := fallback
	if apiErr, ok := api.AsError(err); ok && apiErr.Message != "" {
		msg = apiErr.Message
	}
	m.update(func(s *State) {
		s.IsLoading = false
		s.Error = msg
	})
	m.logger.WithError(err).WarnContext(ctx, "sign-in failed")
	return err
}

// Login signs in with email and password.
func (m *Manager) Login(ctx context.Context, in exam.LoginRequest) (*exam.TokenResponse, error) {
	return m.signIn(ctx, func(ctx context.Context) (*exam.TokenResponse, error) {
		return m.client.Login(ctx, in)
	}, msgLoginFailed)
}

// DevLogin signs in against a development backend.
func (m *Manager) DevLogin(ctx context.Context, email, password string) (*exam.TokenResponse, error) {
	return m.signIn(ctx, func(ctx context.Context) (*exam.TokenResponse, error) {
		return m.client.DevLogin(ctx, exam.DevLoginRequest{Email: email, Password: password})
	}, msgDevLoginFailed)
}

// GoogleLogin signs in with a token from Google sign-in.
func (m *Manager) GoogleLogin(ctx context.Context, in exam.GoogleLoginRequest) (*exam.TokenResponse, error) {
	return m.signIn(ctx, func(ctx context.Context) (*exam.TokenResponse, error) {
		return m.client.GoogleLogin(ctx, in)
	}, msgGoogleFailed)
}

// Register creates an account and signs in with it.
func (m *Manager) Register(ctx context.Context, in exam.RegisterRequest) (*exam.TokenResponse, error) {
	return m.signIn(ctx, func(ctx context.Context) (*exam.TokenResponse, error) {
		return m.client.Register(ctx, in)
	}, msgRegisterFailed)
}

// Logout tells the backend the session is over and always clears the local
// credentials, whatever the backend answers.
func (m *Manager) Logout(ctx context.Context) {
	m.update(func(s *State) {
		s.IsLoading = true
	})

	refresh, _ := m.store.RefreshToken()
	if err := m.client.Logout(ctx, refresh); err != nil {
		m.logger.WithError(err).WarnContext(ctx, "server logout failed")
	}

	m.store.Clear()
	m.signedOut()
}

// RefreshUser reloads the profile. It does nothing when signed out, and
// failures leave the state untouched.
func (m *Manager) RefreshUser(ctx context.Context) {
	if _, ok := m.store.Access(); !ok {
		return
	}

	user, err := m.client.CurrentProfile(ctx, "")
	if err != nil {
		m.logger.WithError(err).DebugContext(ctx, "profile reload failed")
		return
	}

	m.update(func(s *State) {
		s.User = user
	})
}
