package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "psc",
	Short: "Command-line client for the PSC exam preparation platform",
	Long: `psc talks to the PSC exam preparation backend: sign in, browse branches and
categories, practise questions, take mock tests and follow your progress.

Credentials are kept in an encrypted file under ~/.psc and renewed
automatically when the backend reports an expired session.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx available to every
// subcommand through cmd.Context().
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default is $PSC_CONFIG or ~/.psc/config.yaml)")
	flags.String("base-url", "", "backend base URL (overrides api.base_url)")
	flags.StringP("format", "f", "", "output format: text, json, yaml (overrides output.format)")
	flags.String("lang", "", "content language: EN or NP (overrides output.language)")
	flags.String("log-level", "", "log level: debug, info, warn, error (overrides logging.level)")
	flags.BoolP("verbose", "v", false, "log every request and credential refresh")
	flags.Bool("no-color", false, "disable styled output")
}
