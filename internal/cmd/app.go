package cmd

import (
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"

	"github.com/spf13/cobra"

	"github.com/pscapp/psc/internal/api"
	"github.com/pscapp/psc/internal/config"
	"github.com/pscapp/psc/internal/credentials"
	"github.com/pscapp/psc/internal/errors"
	"github.com/pscapp/psc/internal/exam"
	"github.com/pscapp/psc/internal/log"
	"github.com/pscapp/psc/internal/session"
	"github.com/pscapp/psc/internal/tui"
	"github.com/pscapp/psc/internal/ux"
	"github.com/pscapp/psc/internal/version"
)

// app is everything a command needs to talk to the backend. It is built
// once per invocation from flags, environment and the config file.
type app struct {
	flags   *CommandContext
	cfg     *config.Config
	logger  *log.Logger
	store   *credentials.Store
	file    *credentials.FileStore
	client  *api.Client
	exam    *exam.Client
	session *session.Manager
	out     io.Writer
}

func newApp(cmd *cobra.Command) (*app, error) {
	flags, err := NewCommandContext(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to create command context: %w", err)
	}

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return nil, ux.FormatError(err, "loading configuration")
	}
	flags.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, errors.NewConfigInvalidError(err.Error())
	}

	logger := newLogger(flags, cfg, cmd.ErrOrStderr())
	log.SetDefaultLogger(logger)

	file, err := credentials.NewFileStore(cfg.Credentials.Path, cfg.Credentials.Passphrase)
	if err != nil {
		return nil, errors.NewCredentialsStoreError(cfg.Credentials.Path, err)
	}

	seed, err := file.Load()
	if err != nil && !stderrors.Is(err, credentials.ErrNoCredentials) {
		// An unreadable file behaves like a signed-out session; the next
		// login overwrites it.
		logger.WithError(err).Warn("ignoring stored credentials", "path", file.Path())
	}

	store := credentials.NewStore(
		credentials.WithPair(seed),
		credentials.WithObserver(file.Observer(func(err error) {
			logger.WithError(err).Warn("failed to persist credentials", "path", file.Path())
		})),
	)

	jar, _ := cookiejar.New(nil)
	opts := []api.Option{
		api.WithHTTPClient(&http.Client{Jar: jar, Timeout: cfg.API.Timeout.Std()}),
		api.WithLogger(logger),
		api.WithUserAgent(version.GetInfo().UserAgent()),
	}
	if cfg.API.CoalesceRefresh {
		opts = append(opts, api.WithRefreshCoalescing())
	}
	client := api.New(cfg.API.BaseURL, store, opts...)
	examClient := exam.New(client)

	return &app{
		flags:   flags,
		cfg:     cfg,
		logger:  logger,
		store:   store,
		file:    file,
		client:  client,
		exam:    examClient,
		session: session.New(examClient, store, session.WithLogger(logger)),
		out:     cmd.OutOrStdout(),
	}, nil
}

func newLogger(flags *CommandContext, cfg *config.Config, w io.Writer) *log.Logger {
	lc := cfg.LoggerConfig()
	if flags.Verbose {
		lc = log.VerboseConfig()
		lc.Format = log.ParseFormat(cfg.Logging.Format)
	}
	lc.Output = log.NewOutput(w)
	lc.ServiceVersion = version.GetInfo().Short()
	return log.New(lc)
}

// requireAuth fails fast for commands that make no sense signed out.
func (a *app) requireAuth() error {
	if _, ok := a.store.Access(); !ok {
		return errors.NewNotLoggedInError()
	}
	return nil
}

func (a *app) lang() exam.Language {
	return exam.Language(a.cfg.Output.Language)
}

// render writes data in the configured format. Text output uses tab when
// given; structured formats always write data itself.
func (a *app) render(data any, tab ux.Tabular) error {
	f, err := ux.NewFormatter(a.cfg.Output.Format, &ux.FormatterOptions{
		Writer:  a.out,
		NoColor: a.flags.NoColor,
	})
	if err != nil {
		return err
	}
	if a.cfg.Output.Format == "text" && tab != nil {
		return f.Format(tab)
	}
	return f.Format(data)
}

// list renders a result page, or opens the table viewer when the command
// was run with --interactive and prints the id of the chosen row.
func (a *app) list(cmd *cobra.Command, title string, data any, tab ux.Tabular) error {
	interactive, _ := cmd.Flags().GetBool("interactive")
	if !interactive {
		return a.render(data, tab)
	}
	if !tui.IsInteractive() {
		return fmt.Errorf("--interactive requires a terminal")
	}

	row, err := tui.RunTable(title, tab.Table())
	if err != nil {
		return err
	}
	if len(row) > 0 {
		_, err = fmt.Fprintln(a.out, row[0])
	}
	return err
}

// done reports a command that has no resource to show.
func (a *app) done(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if a.cfg.Output.Format == "text" {
		_, err := fmt.Fprintln(a.out, msg)
		return err
	}
	return a.render(map[string]any{"ok": true, "message": msg}, nil)
}

func addPageFlags(cmd *cobra.Command) {
	cmd.Flags().Int("page", 0, "result page to fetch (1-based)")
	cmd.Flags().BoolP("interactive", "i", false, "browse results in an interactive table")
}

func pageFlag(cmd *cobra.Command) int {
	page, _ := cmd.Flags().GetInt("page")
	return page
}

// present rejects a success that carried no body.
func present[T any](v *T, action string) error {
	if v == nil {
		return fmt.Errorf("%s: empty response from server", action)
	}
	return nil
}
