package exam

import (
	"context"
	"net/http"

	"github.com/pscapp/psc/internal/api"
)

// LoginRequest is the email/password login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleLoginRequest carries a token issued by Google sign-in.
type GoogleLoginRequest struct {
	AccessToken string `json:"access_token,omitempty"`
	IDToken     string `json:"id_token,omitempty"`
}

// DevLoginRequest is accepted only by development backends.
type DevLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

// RegisterRequest creates an account.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password1 string `json:"password1"`
	Password2 string `json:"password2"`
	FullName  string `json:"full_name,omitempty"`
}

// AuthUser is the minimal user object some auth endpoints embed.
type AuthUser struct {
	PK        int    `json:"pk"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// TokenResponse is returned by every endpoint that issues credentials.
type TokenResponse struct {
	Access  string    `json:"access"`
	Refresh string    `json:"refresh,omitempty"`
	User    *AuthUser `json:"user,omitempty"`
}

// TokenRequest obtains a pair directly from the JWT endpoint.
type TokenRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

func (c *Client) issue(ctx context.Context, path string, body any) (*TokenResponse, error) {
	req := &api.Request{Method: http.MethodPost, Path: path, Body: body, NoAuth: true}
	var out TokenResponse
	if err := c.doer.Do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges email and password for a credential pair.
func (c *Client) Login(ctx context.Context, in LoginRequest) (*TokenResponse, error) {
	return c.issue(ctx, api.PathAuthLogin, in)
}

// DevLogin signs in without a password check on development backends.
func (c *Client) DevLogin(ctx context.Context, in DevLoginRequest) (*TokenResponse, error) {
	return c.issue(ctx, api.PathAuthDevLogin, in)
}

// GoogleLogin exchanges a Google token for a credential pair.
func (c *Client) GoogleLogin(ctx context.Context, in GoogleLoginRequest) (*TokenResponse, error) {
	return c.issue(ctx, api.PathAuthGoogle, in)
}

// Register creates an account and returns its first credential pair.
func (c *Client) Register(ctx context.Context, in RegisterRequest) (*TokenResponse, error) {
	return c.issue(ctx, api.PathAuthRegistration, in)
}

// ObtainTokenPair calls the JWT obtain endpoint directly.
func (c *Client) ObtainTokenPair(ctx context.Context, in TokenRequest) (*TokenResponse, error) {
	return c.issue(ctx, api.PathTokenObtainPair, in)
}

// Logout ends the server-side session. refresh, when set, is sent so the
// backend can blacklist it.
func (c *Client) Logout(ctx context.Context, refresh string) error {
	var body any
	if refresh != "" {
		body = map[string]string{"refresh": refresh}
	}
	return c.doer.Do(ctx, api.Post(api.PathAuthLogout, body), nil)
}

// BlacklistToken revokes a refresh credential.
func (c *Client) BlacklistToken(ctx context.Context, refresh string) error {
	req := &api.Request{
		Method: http.MethodPost,
		Path:   api.PathTokenBlacklist,
		Body:   map[string]string{"refresh": refresh},
		NoAuth: true,
	}
	return c.doer.Do(ctx, req, nil)
}
