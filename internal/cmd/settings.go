package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pscapp/psc/internal/exam"
	"github.com/pscapp/psc/internal/ux"
)

var settingsCmd = &cobra.Command{
	Use:   "settings [key]",
	Short: "Show server-managed application settings",
	Long:  `Without an argument, list every public setting. With a key, show that setting only.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSettings,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
}

func runSettings(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		s, err := a.exam.GetSetting(cmd.Context(), args[0])
		if err != nil {
			return ux.FormatError(err, "loading setting")
		}
		if err := present(s, "loading setting"); err != nil {
			return err
		}
		return a.render(s, settingsView([]exam.AppSetting{*s}))
	}

	settings, err := a.exam.ListSettings(cmd.Context())
	if err != nil {
		return ux.FormatError(err, "listing settings")
	}
	return a.render(settings, settingsView(settings))
}
