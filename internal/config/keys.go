package config

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/pscapp/psc/internal/errors"
)

// field binds a dotted key to a Config value.
type field struct {
	get func(*Config) string
	set func(*Config, string) error
}

var fields = map[string]field{
	"api.base_url": {
		get: func(c *Config) string { return c.API.BaseURL },
		set: func(c *Config, v string) error { c.API.BaseURL = v; return nil },
	},
	"api.timeout": {
		get: func(c *Config) string { return c.API.Timeout.String() },
		set: func(c *Config, v string) error { return c.API.Timeout.SetValue(v) },
	},
	"api.coalesce_refresh": {
		get: func(c *Config) string { return strconv.FormatBool(c.API.CoalesceRefresh) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid boolean %q", v)
			}
			c.API.CoalesceRefresh = b
			return nil
		},
	},
	"logging.level": {
		get: func(c *Config) string { return c.Logging.Level },
		set: func(c *Config, v string) error { c.Logging.Level = v; return nil },
	},
	"logging.format": {
		get: func(c *Config) string { return c.Logging.Format },
		set: func(c *Config, v string) error { c.Logging.Format = v; return nil },
	},
	"credentials.path": {
		get: func(c *Config) string { return c.Credentials.Path },
		set: func(c *Config, v string) error { c.Credentials.Path = v; return nil },
	},
	"credentials.passphrase": {
		get: func(c *Config) string {
			if c.Credentials.Passphrase == "" {
				return ""
			}
			return "********"
		},
		set: func(c *Config, v string) error { c.Credentials.Passphrase = v; return nil },
	},
	"output.format": {
		get: func(c *Config) string { return c.Output.Format },
		set: func(c *Config, v string) error { c.Output.Format = v; return nil },
	},
	"output.language": {
		get: func(c *Config) string { return c.Output.Language },
		set: func(c *Config, v string) error { c.Output.Language = v; return nil },
	},
}

// Keys lists the supported dotted keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value at key. The passphrase is masked.
func (c *Config) Get(key string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", errors.NewConfigKeyError(key)
	}
	return f.get(c), nil
}

// Set parses value into key and validates the result. On failure the
// previous value is restored.
func (c *Config) Set(key, value string) error {
	f, ok := fields[key]
	if !ok {
		return errors.NewConfigKeyError(key)
	}

	prev := *c
	if err := f.set(c, value); err != nil {
		return errors.NewConfigInvalidError(fmt.Sprintf("%s: %v", key, err))
	}
	if err := c.Validate(); err != nil {
		*c = prev
		return errors.NewConfigInvalidError(err.Error())
	}
	return nil
}
