package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pscapp/psc/internal/config"
	"github.com/pscapp/psc/internal/ux"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or edit psc configuration",
	Long: `Manage psc configuration stored at ~/.psc/config.yaml (or --config, or $PSC_CONFIG).

Environment variables (PSC_API_BASE_URL, PSC_LOG_LEVEL, ...) override the
file, and global flags override both.

Examples:
  # View the effective configuration
  psc config view

  # Get a specific value
  psc config get api.base_url

  # Point psc at a staging backend
  psc config set api.base_url https://staging.example.com

  # Show configuration file path
  psc config path
`,
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Display the effective configuration",
	RunE:  runConfigView,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  `Retrieve the effective value of a configuration key using dot notation (e.g., api.base_url).`,
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a specific configuration value",
	Long:  `Validate and write a configuration value to the config file using dot notation (e.g., logging.level debug).`,
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configViewCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}

// effectiveConfig loads the configuration with the global flags applied.
func effectiveConfig(cmd *cobra.Command) (*CommandContext, *config.Config, error) {
	flags, err := NewCommandContext(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create command context: %w", err)
	}

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return nil, nil, ux.FormatError(err, "loading configuration")
	}
	flags.Apply(cfg)
	return flags, cfg, nil
}

// configPath is the file config set writes to.
func configPath(flags *CommandContext) (string, error) {
	if path := config.Resolve(flags.ConfigPath); path != "" {
		return path, nil
	}
	return config.DefaultPath()
}

func runConfigView(cmd *cobra.Command, args []string) error {
	flags, cfg, err := effectiveConfig(cmd)
	if err != nil {
		return err
	}

	values := make(map[string]string)
	t := ux.Table{Headers: []string{"Key", "Value"}}
	for _, key := range config.Keys() {
		v, _ := cfg.Get(key)
		values[key] = v
		t.Rows = append(t.Rows, []string{key, v})
	}

	f, err := ux.NewFormatter(cfg.Output.Format, &ux.FormatterOptions{Writer: cmd.OutOrStdout(), NoColor: flags.NoColor})
	if err != nil {
		return err
	}
	if cfg.Output.Format == "text" {
		return f.Format(t)
	}
	return f.Format(values)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	_, cfg, err := effectiveConfig(cmd)
	if err != nil {
		return err
	}

	v, err := cfg.Get(args[0])
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), v)
	return err
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	flags, err := NewCommandContext(cmd)
	if err != nil {
		return fmt.Errorf("failed to create command context: %w", err)
	}

	path, err := configPath(flags)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if _, statErr := os.Stat(path); statErr == nil {
		if cfg, err = config.Load(path); err != nil {
			return ux.FormatError(err, "loading configuration")
		}
	}

	if err := cfg.Set(args[0], args[1]); err != nil {
		return err
	}
	if err := config.Save(path, cfg); err != nil {
		return ux.FormatError(err, "saving configuration")
	}

	v, _ := cfg.Get(args[0])
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", args[0], v, path)
	return err
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	flags, err := NewCommandContext(cmd)
	if err != nil {
		return fmt.Errorf("failed to create command context: %w", err)
	}

	path, err := configPath(flags)
	if err != nil {
		return err
	}

	note := ""
	if _, err := os.Stat(path); os.IsNotExist(err) {
		note = " (not created yet)"
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", path, note)
	return err
}
