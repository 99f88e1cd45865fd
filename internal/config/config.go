// Package config loads TimeFiles' startup settings: where the database
// file lives, and a couple of rest-advisor tuning knobs. These are read
// once, before the store opens, so they cannot live in the database
// itself (grounded on steveyegge-beads' internal/config "yaml-only
// keys" split between bootstrap settings and in-database settings).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const envPrefix = "TIMEFILES"

// Config is the full set of startup settings.
type Config struct {
	// DBPath is the sqlite database file. Defaults to
	// ~/.local/share/timefiles/timefiles.db; XDG_DATA_HOME is not consulted.
	DBPath string `mapstructure:"db_path" toml:"db_path" yaml:"db_path"`

	// PauseMergeSeconds is the pause-gap threshold of the rest advisor:
	// gaps shorter than this are treated as part of the same focus block.
	PauseMergeSeconds int64 `mapstructure:"pause_merge_seconds" toml:"pause_merge_seconds" yaml:"pause_merge_seconds"`

	// SwitchWindowSeconds is the lookback window for switch_count_30m.
	SwitchWindowSeconds int64 `mapstructure:"switch_window_seconds" toml:"switch_window_seconds" yaml:"switch_window_seconds"`
}

// defaults mirrors spec.md §4.F's constants; a config file only needs to
// name the values it wants to override.
func defaults() Config {
	return Config{
		DBPath:              defaultDBPath(),
		PauseMergeSeconds:   120,
		SwitchWindowSeconds: 1800,
	}
}

func defaultDBPath() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, ".local", "share", "timefiles", "timefiles.db")
}

// Load reads configPath (config.yaml by default, config.toml if it ends
// in .toml) layered over defaults, then applies TIMEFILES_* environment
// overrides. A missing configPath is not an error — defaults and env
// vars alone are a valid configuration.
func Load(configPath string) (*Config, error) {
	cfg := defaults()

	v := viper.New()
	v.SetConfigType(formatOf(configPath))
	v.SetConfigFile(configPath)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetDefault("db_path", cfg.DBPath)
	v.SetDefault("pause_merge_seconds", cfg.PauseMergeSeconds)
	v.SetDefault("switch_window_seconds", cfg.SwitchWindowSeconds)

	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %q: %w", configPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: stat %q: %w", configPath, err)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode %q: %w", configPath, err)
	}
	return &cfg, nil
}

// formatOf picks the viper config type from the file extension, defaulting
// to yaml (spec's ambient config format); ".toml" opts into the alternate
// format, read by viper's own TOML decoder.
func formatOf(path string) string {
	if filepath.Ext(path) == ".toml" {
		return "toml"
	}
	return "yaml"
}

// WriteDefaultTOML writes a commented starter config.toml at path, for
// `tf init --format toml`. Uses BurntSushi/toml directly (viper's
// own encoder only round-trips what it already parsed) so the file's
// comments and key order are under our control.
func WriteDefaultTOML(path string) error {
	cfg := defaults()
	f, err := os.Create(path) // #nosec G304 -- path is operator-supplied via CLI flag
	if err != nil {
		return fmt.Errorf("config: create %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString("# TimeFiles configuration\n"); err != nil {
		return err
	}
	return toml.NewEncoder(f).Encode(cfg)
}

// WriteDefaultYAML writes a commented starter config.yaml at path, for
// `tf init` (the default format). Marshals the same defaults struct
// WriteDefaultTOML does, via gopkg.in/yaml.v3 directly, so both starter
// files are generated the same way instead of one being a hand-written
// string literal.
func WriteDefaultYAML(path string) error {
	cfg := defaults()
	f, err := os.Create(path) // #nosec G304 -- path is operator-supplied via CLI flag
	if err != nil {
		return fmt.Errorf("config: create %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString("# TimeFiles configuration\n"); err != nil {
		return err
	}
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()
	return enc.Encode(cfg)
}
