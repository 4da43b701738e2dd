// Package config layers defaults, syncup.toml, SYNCUP_* environment
// variables and command line flags into one Config.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	// DefaultFile is read from the working directory when --config is not set
	DefaultFile = "syncup.toml"
	envPrefix   = "SYNCUP_"
)

// Config holds all configuration for the application
type Config struct {
	ConfigFile      string  `koanf:"config"`
	DataDir         string  `koanf:"data-dir"`
	Port            int     `koanf:"port"`
	Serve           bool    `koanf:"serve"`
	Watch           bool    `koanf:"watch"`
	Threshold       float64 `koanf:"threshold"`
	RadioSize       int     `koanf:"radio-size"`
	SuggestionLimit int     `koanf:"suggestion-limit"`
	DiscoverySize   int     `koanf:"discovery-size"`
	Log             Log     `koanf:"log"`

	// One-shot queries, printed to the console instead of serving
	Recommend string `koanf:"recommend"`
	Suggest   string `koanf:"suggest"`
	Prefix    string `koanf:"prefix"`
}

type Log struct {
	Level string `koanf:"level"`
	JSON  bool   `koanf:"json"`
}

// HasQuery reports whether a one-shot query was requested
func (c *Config) HasQuery() bool {
	return c.Recommend != "" || c.Suggest != "" || c.Prefix != ""
}

// Validate checks ranges koanf cannot express
func (c *Config) Validate() error {
	var errs []error
	if c.Threshold < 0 || c.Threshold > 1 {
		errs = append(errs, fmt.Errorf("threshold must be within [0,1], got %v", c.Threshold))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port out of range: %d", c.Port))
	}
	if c.RadioSize < 1 || c.SuggestionLimit < 1 || c.DiscoverySize < 1 {
		errs = append(errs, errors.New("radio-size, suggestion-limit and discovery-size must be positive"))
	}
	return errors.Join(errs...)
}

// Defaults are the values used when nothing else sets a key
func Defaults() map[string]any {
	return map[string]any{
		"config":           DefaultFile,
		"data-dir":         "data",
		"port":             8080,
		"serve":            false,
		"watch":            false,
		"threshold":        0.3,
		"radio-size":       30,
		"suggestion-limit": 10,
		"discovery-size":   20,
		"log": map[string]any{
			"level": "info",
			"json":  false,
		},
		"recommend": "",
		"suggest":   "",
		"prefix":    "",
	}
}

// RegisterFlags adds every configuration flag to f
func RegisterFlags(f *pflag.FlagSet) {
	f.String("config", DefaultFile, "Path to the TOML configuration file")
	f.StringP("data-dir", "d", "data", "Directory holding tracks.json and users.json")
	f.IntP("port", "p", 8080, "HTTP port")
	f.Bool("serve", false, "Serve the HTTP API")
	f.BoolP("watch", "w", false, "Reload when data files change (with --serve)")
	f.Float64("threshold", 0.3, "Minimum similarity for a graph edge")
	f.Int("radio-size", 30, "Tracks per radio station")
	f.Int("suggestion-limit", 10, "Friend suggestions per query")
	f.Int("discovery-size", 20, "Tracks per discovery playlist")
	f.String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	f.Bool("log-json", false, "Log as JSON")
	f.String("recommend", "", "Print recommendations for a track ID and exit")
	f.String("suggest", "", "Print friend suggestions for a username and exit")
	f.String("prefix", "", "Print titles starting with a prefix and exit")
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(makeMapProvider(Defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path := DefaultFile
	if f != nil {
		if v, err := f.GetString("config"); err == nil && v != "" {
			path = v
		}
	}
	if v := os.Getenv(envPrefix + "CONFIG"); v != "" && (f == nil || !f.Changed("config")) {
		path = v
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	// SYNCUP_DATA_DIR=x sets data-dir, SYNCUP_LOG_LEVEL=debug sets log.level
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if f != nil {
		cb := func(fl *pflag.Flag) (string, any) {
			return flagKey(fl.Name), posflag.FlagVal(f, fl)
		}
		if err := k.Load(posflag.ProviderWithFlag(f, ".", k, cb), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.ConfigFile = path
	return &cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	if rest, ok := strings.CutPrefix(key, "log_"); ok {
		return "log." + rest
	}
	return strings.ReplaceAll(key, "_", "-")
}

// flagKey maps --log-level to log.level; other flag names are keys as is
func flagKey(name string) string {
	if rest, ok := strings.CutPrefix(name, "log-"); ok {
		return "log." + rest
	}
	return name
}

// mapProvider feeds a plain map to koanf
type mapProvider struct {
	m map[string]any
}

func makeMapProvider(m map[string]any) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]any, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("not implemented")
}
