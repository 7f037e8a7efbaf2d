// Package config loads the psc configuration.
//
// Sources, highest priority first:
//  1. an explicit path (--config);
//  2. PSC_CONFIG;
//  3. ~/.psc/config.yaml, when it exists;
//  4. environment variables only.
//
// Environment variables always override values read from a file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"

	psclog "github.com/pscapp/psc/internal/log"
)

// EnvConfigPath names the variable that points at a config file.
const EnvConfigPath = "PSC_CONFIG"

const (
	dirName  = ".psc"
	fileName = "config.yaml"
)

// Config is the full psc configuration.
type Config struct {
	API         APIConfig         `yaml:"api"`
	Logging     LoggingConfig     `yaml:"logging"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Output      OutputConfig      `yaml:"output"`
}

// APIConfig locates the backend.
type APIConfig struct {
	BaseURL         string   `yaml:"base_url"         env:"PSC_API_BASE_URL"         env-default:"http://localhost:8000"`
	Timeout         Duration `yaml:"timeout"          env:"PSC_API_TIMEOUT"          env-default:"30s"`
	CoalesceRefresh bool     `yaml:"coalesce_refresh" env:"PSC_API_COALESCE_REFRESH" env-default:"false"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"  env:"PSC_LOG_LEVEL"  env-default:"warn"`
	Format string `yaml:"format" env:"PSC_LOG_FORMAT" env-default:"text"`
}

// CredentialsConfig controls where the credential pair is persisted.
// Empty values are filled by Load.
type CredentialsConfig struct {
	Path       string `yaml:"path"                 env:"PSC_CREDENTIALS_PATH"`
	Passphrase string `yaml:"passphrase,omitempty" env:"PSC_CREDENTIALS_PASSPHRASE"`
}

type OutputConfig struct {
	Format   string `yaml:"format"   env:"PSC_OUTPUT_FORMAT"   env-default:"text"`
	Language string `yaml:"language" env:"PSC_OUTPUT_LANGUAGE" env-default:"EN"`
}

// Duration is a time.Duration written as "30s" in YAML and env.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return d.SetValue(s)
}

// SetValue implements cleanenv.Setter.
func (d *Duration) SetValue(s string) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Default returns the configuration used when no file or env is present.
func Default() *Config {
	cfg := &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000",
			Timeout: Duration(30 * time.Second),
		},
		Logging: LoggingConfig{Level: "warn", Format: "text"},
		Output:  OutputConfig{Format: "text", Language: "EN"},
	}
	applyDerived(cfg)
	return cfg
}

// DefaultPath returns ~/.psc/config.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Dir returns ~/.psc.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// Resolve returns the file Load would read for path, or "" when only the
// environment applies.
func Resolve(path string) string {
	if path != "" {
		return path
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env
	}
	if def, err := DefaultPath(); err == nil {
		if _, err := os.Stat(def); err == nil {
			return def
		}
	}
	return ""
}

// Load reads the configuration for path following the source order in the
// package doc. An explicit or PSC_CONFIG path that does not exist is an error.
func Load(path string) (*Config, error) {
	var cfg Config

	file := Resolve(path)
	if file != "" {
		if _, err := os.Stat(file); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", file, err)
		}
		if err := cleanenv.ReadConfig(file, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from env: %w", err)
	}

	applyDerived(&cfg)
	return &cfg, nil
}

// applyDerived fills the values that depend on the host.
func applyDerived(cfg *Config) {
	if cfg.Credentials.Path == "" {
		if dir, err := Dir(); err == nil {
			cfg.Credentials.Path = filepath.Join(dir, "credentials.enc")
		}
	} else {
		cfg.Credentials.Path = expandHome(cfg.Credentials.Path)
	}
	if cfg.Credentials.Passphrase == "" {
		cfg.Credentials.Passphrase = DefaultPassphrase()
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
}

// DefaultPassphrase derives a per-machine, per-user passphrase so the
// credentials file is not readable when copied elsewhere.
func DefaultPassphrase() string {
	host, _ := os.Hostname()
	user := os.Getenv("USER")
	if user == "" {
		user = os.Getenv("USERNAME")
	}
	return "psc:" + host + ":" + user
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// Save writes cfg to path as YAML, creating parent directories. The derived
// passphrase is never written.
func Save(path string, cfg *Config) error {
	out := *cfg
	if out.Credentials.Passphrase == DefaultPassphrase() {
		out.Credentials.Passphrase = ""
	}

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate reports every invalid value at once.
func (c *Config) Validate() error {
	var errs []error

	if u, err := url.Parse(c.API.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("api.base_url must be an absolute http(s) URL, got %q", c.API.BaseURL))
	}
	if c.API.Timeout < 0 {
		errs = append(errs, fmt.Errorf("api.timeout cannot be negative"))
	}
	if !psclog.ValidLevel(c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level))
	}
	if !psclog.ValidFormat(c.Logging.Format) {
		errs = append(errs, fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format))
	}
	switch c.Output.Format {
	case "text", "json", "yaml":
	default:
		errs = append(errs, fmt.Errorf("output.format must be text, json or yaml, got %q", c.Output.Format))
	}
	switch c.Output.Language {
	case "EN", "NP":
	default:
		errs = append(errs, fmt.Errorf("output.language must be EN or NP, got %q", c.Output.Language))
	}

	return errors.Join(errs...)
}

// LoggerConfig maps the logging section onto a logger configuration.
func (c *Config) LoggerConfig() psclog.Config {
	lc := psclog.DefaultConfig()
	lc.Level = psclog.ParseLevel(c.Logging.Level)
	lc.Format = psclog.ParseFormat(c.Logging.Format)
	return lc
}
