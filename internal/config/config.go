package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/fbkclanna/odometer/internal/journal"
	"github.com/fbkclanna/odometer/internal/selector"
)

// FileName is the per-workspace config file looked up from the working
// directory upward.
const FileName = ".odometer.yaml"

// EnvPrefix prefixes environment overrides, e.g. ODOMETER_ROOT_POLICY.
const EnvPrefix = "ODOMETER"

// Config holds settings shared by every command.
type Config struct {
	Exclude        []string `mapstructure:"exclude"`
	IncludeIgnored bool     `mapstructure:"include_ignored"`
	RootPolicy     string   `mapstructure:"root_policy"`
	Format         string   `mapstructure:"format"`
	Jobs           int      `mapstructure:"jobs"`
	Journal        string   `mapstructure:"journal"`
	LogLevel       string   `mapstructure:"log_level"`
	// DirtyCheck is what to do when a manifest about to be rewritten has
	// uncommitted git changes: warn, error, or off.
	DirtyCheck string `mapstructure:"dirty_check"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		RootPolicy: string(selector.RootWhenVersioned),
		Format:     "simple",
		Jobs:       4,
		Journal:    journal.DefaultFile,
		LogLevel:   "warn",
		DirtyCheck: "warn",
	}
}

var (
	formats     = map[string]bool{"simple": true, "json": true, "yaml": true}
	dirtyChecks = map[string]bool{"warn": true, "error": true, "off": true}
)

// Load resolves the configuration for dir. When path is set it must exist and
// is used instead of searching. It returns the config file used, if any.
func Load(dir, path string) (*Config, string, error) {
	v := viper.New()
	d := Default()
	v.SetDefault("exclude", []string{})
	v.SetDefault("include_ignored", d.IncludeIgnored)
	v.SetDefault("root_policy", d.RootPolicy)
	v.SetDefault("format", d.Format)
	v.SetDefault("jobs", d.Jobs)
	v.SetDefault("journal", d.Journal)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("dirty_check", d.DirtyCheck)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = Find(dir)
	} else if _, err := os.Stat(path); err != nil {
		return nil, "", fmt.Errorf("config file not found: %s", path)
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		if path != "" {
			return nil, "", fmt.Errorf("%s: %w", path, err)
		}
		return nil, "", err
	}
	return &cfg, path, nil
}

// Validate rejects unknown enum values and non-positive job counts.
func (c *Config) Validate() error {
	var errs []error
	if _, err := selector.ParseRootPolicy(c.RootPolicy); err != nil {
		errs = append(errs, err)
	}
	if !formats[c.Format] {
		errs = append(errs, fmt.Errorf("invalid format %q (must be simple, json, or yaml)", c.Format))
	}
	if !dirtyChecks[c.DirtyCheck] {
		errs = append(errs, fmt.Errorf("invalid dirty_check %q (must be warn, error, or off)", c.DirtyCheck))
	}
	if c.Jobs < 1 {
		errs = append(errs, fmt.Errorf("jobs must be at least 1, got %d", c.Jobs))
	}
	return errors.Join(errs...)
}

// Policy returns the parsed root policy. Validate must have succeeded.
func (c *Config) Policy() selector.RootPolicy {
	p, _ := selector.ParseRootPolicy(c.RootPolicy)
	return p
}

// Find returns the nearest FileName at or above dir, or "".
func Find(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		p := filepath.Join(abs, FileName)
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return ""
		}
		abs = parent
	}
}
