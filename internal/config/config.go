package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// EnvVar names the environment variable consulted for a config path.
const EnvVar = "GRACE_CONFIG"

// Config holds the settings of the grace command.
type Config struct {
	Parse  ParseConfig  `toml:"parse"`
	Output OutputConfig `toml:"output"`
	Log    LogConfig    `toml:"log"`
}

// ParseConfig holds parser settings
type ParseConfig struct {
	TabWidth int `toml:"tab_width"`
}

// OutputConfig holds AST dump and diagnostic rendering settings
type OutputConfig struct {
	Format    string `toml:"format"`
	Positions bool   `toml:"positions"`
	Comments  bool   `toml:"comments"`
	Color     string `toml:"color"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Parse: ParseConfig{TabWidth: 1},
		Output: OutputConfig{
			Format:    "yaml",
			Positions: true,
			Comments:  true,
			Color:     "auto",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load reads a TOML file over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Find resolves the configuration to use: an explicit path, then $GRACE_CONFIG,
// then ./grace.toml and ~/.config/grace/config.toml. With none present it
// returns the defaults.
func Find(explicit string) (*Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	if path := os.Getenv(EnvVar); path != "" {
		return Load(path)
	}

	candidates := []string{"./grace.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "grace", "config.toml"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}
	return Default(), nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.Parse.TabWidth < 1 {
		return fmt.Errorf("parse.tab_width must be at least 1, got %d", c.Parse.TabWidth)
	}
	switch strings.ToLower(c.Output.Format) {
	case "yaml", "json", "text":
	default:
		return fmt.Errorf("output.format must be yaml, json or text, got %q", c.Output.Format)
	}
	switch strings.ToLower(c.Output.Color) {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("output.color must be auto, always or never, got %q", c.Output.Color)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}
