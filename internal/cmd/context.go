package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pscapp/psc/internal/config"
)

// CommandContext holds the global flags of one invocation.
type CommandContext struct {
	// Output control
	Verbose bool
	Format  string
	Lang    string
	NoColor bool

	// Configuration
	ConfigPath string
	BaseURL    string
	LogLevel   string
}

// NewCommandContext reads the global flags from cmd. A non-empty NO_COLOR
// environment variable has the same effect as --no-color.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, err
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return nil, err
	}

	lang, err := cmd.Flags().GetString("lang")
	if err != nil {
		return nil, err
	}

	noColor, err := cmd.Flags().GetBool("no-color")
	if err != nil {
		return nil, err
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	baseURL, err := cmd.Flags().GetString("base-url")
	if err != nil {
		return nil, err
	}

	logLevel, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Verbose:    verbose,
		Format:     format,
		Lang:       strings.ToUpper(lang),
		NoColor:    noColor || os.Getenv("NO_COLOR") != "",
		ConfigPath: configPath,
		BaseURL:    baseURL,
		LogLevel:   logLevel,
	}, nil
}

// Apply overlays the flags that were set on cfg. Flags win over every
// other configuration source.
func (c *CommandContext) Apply(cfg *config.Config) {
	if c.BaseURL != "" {
		cfg.API.BaseURL = strings.TrimRight(c.BaseURL, "/")
	}
	if c.Format != "" {
		cfg.Output.Format = c.Format
	}
	if c.Lang != "" {
		cfg.Output.Language = c.Lang
	}
	if c.LogLevel != "" {
		cfg.Logging.Level = c.LogLevel
	}
}
