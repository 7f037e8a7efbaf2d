package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/pscapp/psc/internal/apitest"
	"github.com/pscapp/psc/internal/config"
	"github.com/pscapp/psc/internal/credentials"
)

// testEnv runs commands against a recording backend with HOME pointed at
// a temporary directory.
type testEnv struct {
	t      *testing.T
	home   string
	server *apitest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, kv := range os.Environ() {
		if key, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(key, "PSC_") {
			t.Setenv(key, "")
			require.NoError(t, os.Unsetenv(key))
		}
	}
	// Never prompt from tests.
	t.Setenv("CI", "true")

	return &testEnv{t: t, home: home, server: apitest.New(t)}
}

// resetFlags restores every flag in the tree to its default so runs do
// not leak into each other through the package-level commands.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes psc with args against the test backend and returns stdout.
func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()

	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--base-url", e.server.URL, "--no-color"}, args...))

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) credentialsFile() *credentials.FileStore {
	e.t.Helper()

	fs, err := credentials.NewFileStore(filepath.Join(e.home, ".psc", "credentials.enc"), config.DefaultPassphrase())
	require.NoError(e.t, err)
	return fs
}

// signIn stores a credential pair as a previous login would have.
func (e *testEnv) signIn(access, refresh string) {
	e.t.Helper()
	require.NoError(e.t, e.credentialsFile().Save(credentials.Pair{Access: access, Refresh: refresh}))
}

func (e *testEnv) storedPair() (credentials.Pair, error) {
	return e.credentialsFile().Load()
}
