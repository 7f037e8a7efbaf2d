package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pscapp/psc/internal/api"
	"github.com/pscapp/psc/internal/credentials"
	"github.com/pscapp/psc/internal/errors"
	"github.com/pscapp/psc/internal/exam"
	"github.com/pscapp/psc/internal/tui"
	"github.com/pscapp/psc/internal/ux"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Sign in, sign out and inspect the stored session",
	Long: `Manage the session with the PSC backend.

Credentials are stored encrypted at credentials.path (default
~/.psc/credentials.enc) and refreshed automatically when they expire.

Examples:
  # Sign in, prompting for anything not given as a flag
  psc auth login

  # Sign in against a development backend
  psc auth dev-login --email dev@example.com

  # Show who is signed in
  psc auth status
`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	RunE:  runAuthLogin,
}

var authDevLoginCmd = &cobra.Command{
	Use:   "dev-login",
	Short: "Sign in against a development backend",
	Long:  `Sign in through the development login endpoint. Only backends running in debug mode accept it.`,
	RunE:  runAuthDevLogin,
}

var authGoogleLoginCmd = &cobra.Command{
	Use:   "google-login",
	Short: "Sign in with a token issued by Google sign-in",
	RunE:  runAuthGoogleLogin,
}

var authRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in with it",
	RunE:  runAuthRegister,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and discard the stored credentials",
	Long:  `Tell the backend the session is over and discard the stored credentials. The local credentials are removed even when the backend cannot be reached.`,
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a session is active and for whom",
	RunE:  runAuthStatus,
}

var authTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Inspect the stored credentials",
	Long:  `Show fingerprints and expiry times of the stored credentials. Use --show to print the raw access credential for scripting.`,
	RunE:  runAuthToken,
}

func init() {
	authLoginCmd.Flags().String("email", "", "account email")
	authLoginCmd.Flags().String("password", "", "account password (prompted when omitted)")

	authDevLoginCmd.Flags().String("email", "", "account email")
	authDevLoginCmd.Flags().String("password", "", "account password, if the backend asks for one")

	authGoogleLoginCmd.Flags().String("id-token", "", "Google ID token")
	authGoogleLoginCmd.Flags().String("access-token", "", "Google OAuth access token")

	authRegisterCmd.Flags().String("email", "", "account email")
	authRegisterCmd.Flags().String("password", "", "account password (prompted when omitted)")
	authRegisterCmd.Flags().String("full-name", "", "display name")

	authTokenCmd.Flags().Bool("show", false, "print the raw access credential")
	authTokenCmd.Flags().Bool("refresh", false, "exchange the refresh credential for a new access credential first")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authDevLoginCmd)
	authCmd.AddCommand(authGoogleLoginCmd)
	authCmd.AddCommand(authRegisterCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authTokenCmd)

	rootCmd.AddCommand(authCmd)
}

// credentialFlags reads --email and --password, prompting for whatever is
// missing when a terminal is attached.
func credentialFlags(cmd *cobra.Command, needPassword bool) (tui.Credentials, error) {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	missing := email == "" || (needPassword && password == "")
	if !missing {
		return tui.Credentials{Email: email, Password: password}, nil
	}
	if !tui.ShouldPrompt() {
		if needPassword {
			return tui.Credentials{}, fmt.Errorf("--email and --password are required when not running in a terminal")
		}
		return tui.Credentials{}, fmt.Errorf("--email is required when not running in a terminal")
	}

	creds, err := tui.PromptForCredentials(email, needPassword && password == "")
	if err != nil {
		return tui.Credentials{}, err
	}
	if password != "" {
		creds.Password = password
	}
	return creds, nil
}

// signInError keeps the session's message for failures the backend did
// not explain.
func signInError(a *app, err error) error {
	if _, ok := api.AsError(err); ok {
		return ux.EnhanceError(err)
	}
	return fmt.Errorf("%s: %w", a.session.State().Error, err)
}

func signedIn(a *app) error {
	state := a.session.State()
	if a.cfg.Output.Format != "text" {
		return a.render(state.User, nil)
	}
	return a.done("Signed in as %s (%s)", orDash(state.User.FullName), state.User.Email)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	creds, err := credentialFlags(cmd, true)
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	if _, err := a.session.Login(cmd.Context(), exam.LoginRequest{Email: creds.Email, Password: creds.Password}); err != nil {
		return signInError(a, err)
	}
	return signedIn(a)
}

func runAuthDevLogin(cmd *cobra.Command, args []string) error {
	creds, err := credentialFlags(cmd, false)
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	if _, err := a.session.DevLogin(cmd.Context(), creds.Email, creds.Password); err != nil {
		return signInError(a, err)
	}
	return signedIn(a)
}

func runAuthGoogleLogin(cmd *cobra.Command, args []string) error {
	idToken, _ := cmd.Flags().GetString("id-token")
	accessToken, _ := cmd.Flags().GetString("access-token")
	if idToken == "" && accessToken == "" {
		return fmt.Errorf("one of --id-token or --access-token is required")
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	in := exam.GoogleLoginRequest{IDToken: idToken, AccessToken: accessToken}
	if _, err := a.session.GoogleLogin(cmd.Context(), in); err != nil {
		return signInError(a, err)
	}
	return signedIn(a)
}

func runAuthRegister(cmd *cobra.Command, args []string) error {
	creds, err := credentialFlags(cmd, true)
	if err != nil {
		return err
	}
	fullName, _ := cmd.Flags().GetString("full-name")

	confirm := creds.Password
	if !cmd.Flags().Changed("password") {
		// The password was typed, so ask for it twice.
		if confirm, err = tui.PromptForString("Confirm password", "", true); err != nil {
			return err
		}
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	in := exam.RegisterRequest{
		Email:     creds.Email,
		Password1: creds.Password,
		Password2: confirm,
		FullName:  fullName,
	}
	if _, err := a.session.Register(cmd.Context(), in); err != nil {
		return signInError(a, err)
	}
	return signedIn(a)
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	if _, ok := a.store.Access(); !ok {
		return a.done("Not signed in")
	}

	a.session.Logout(cmd.Context())
	return a.done("Signed out")
}

// AuthStatus is the output of auth status.
type AuthStatus struct {
	Authenticated   bool          `json:"authenticated"`
	BaseURL         string        `json:"base_url"`
	CredentialsPath string        `json:"credentials_path"`
	User            *exam.Profile `json:"user,omitempty"`
}

func (s AuthStatus) Table() ux.Table {
	t := ux.Table{
		Headers: []string{"Field", "Value"},
		Rows: [][]string{
			{"Signed in", yesNo(s.Authenticated)},
			{"Backend", s.BaseURL},
			{"Credentials", s.CredentialsPath},
		},
	}
	if s.User != nil {
		t.Rows = append(t.Rows,
			[]string{"User", orDash(s.User.FullName)},
			[]string{"Email", s.User.Email},
		)
	}
	return t
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	a.session.CheckAuth(cmd.Context())
	state := a.session.State()

	status := AuthStatus{
		Authenticated:   state.IsAuthenticated,
		BaseURL:         a.client.BaseURL(),
		CredentialsPath: a.file.Path(),
		User:            state.User,
	}
	return a.render(status, status)
}

// TokenInfo describes one stored credential without revealing it.
type TokenInfo struct {
	Fingerprint string     `json:"fingerprint"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Expired     bool       `json:"expired"`
}

// TokenStatus is the output of auth token.
type TokenStatus struct {
	Access  *TokenInfo `json:"access,omitempty"`
	Refresh *TokenInfo `json:"refresh,omitempty"`
}

func (s TokenStatus) Table() ux.Table {
	t := ux.Table{Headers: []string{"Credential", "Fingerprint", "Expires", "Expired"}}
	for _, row := range []struct {
		name string
		info *TokenInfo
	}{{"access", s.Access}, {"refresh", s.Refresh}} {
		if row.info == nil {
			continue
		}
		t.Rows = append(t.Rows, []string{row.name, row.info.Fingerprint, optWhen(row.info.ExpiresAt), yesNo(row.info.Expired)})
	}
	return t
}

func describeToken(token string, now time.Time) *TokenInfo {
	if token == "" {
		return nil
	}
	info := &TokenInfo{Fingerprint: credentials.Fingerprint(token)}
	if exp, ok := credentials.ExpiresAt(token); ok {
		info.ExpiresAt = &exp
		info.Expired = credentials.Expired(token, now)
	}
	return info
}

func runAuthToken(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	if refresh, _ := cmd.Flags().GetBool("refresh"); refresh {
		if _, err := a.client.Refresh(cmd.Context()); err != nil {
			return ux.FormatError(err, "refreshing credentials")
		}
	}

	pair, ok := a.store.Pair()
	if !ok {
		return errors.NewNotLoggedInError()
	}

	if show, _ := cmd.Flags().GetBool("show"); show {
		_, err := fmt.Fprintln(a.out, pair.Access)
		return err
	}

	now := time.Now()
	status := TokenStatus{
		Access:  describeToken(pair.Access, now),
		Refresh: describeToken(pair.Refresh, now),
	}
	return a.render(status, status)
}
