package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Empty query policies
const (
	EmptyQueryNone = "none"
	EmptyQueryAll  = "all"
)

// Config represents the application configuration
type Config struct {
	Paths   PathsConfig   `mapstructure:"paths" toml:"paths"`
	Search  SearchConfig  `mapstructure:"search" toml:"search"`
	Icons   IconsConfig   `mapstructure:"icons" toml:"icons"`
	Watch   WatchConfig   `mapstructure:"watch" toml:"watch"`
	Logging LoggingConfig `mapstructure:"logging" toml:"logging"`
}

// PathsConfig contains path-related configuration.
// Empty lists mean "derive from the environment".
type PathsConfig struct {
	LogFile  string   `mapstructure:"log_file" toml:"log_file"`
	DataDirs []string `mapstructure:"data_dirs" toml:"data_dirs"`
	PathDirs []string `mapstructure:"path_dirs" toml:"path_dirs"`
	IconDirs []string `mapstructure:"icon_dirs" toml:"icon_dirs"`
}

// SearchConfig controls sharding and ranking
type SearchConfig struct {
	Workers            int    `mapstructure:"workers" toml:"workers"`
	DescriptorBonus    int    `mapstructure:"descriptor_bonus" toml:"descriptor_bonus"`
	EmptyQuery         string `mapstructure:"empty_query" toml:"empty_query"`
	Limit              int    `mapstructure:"limit" toml:"limit"`
	IncludeDesktopStem bool   `mapstructure:"include_desktop_stem" toml:"include_desktop_stem"`
}

// IconsConfig lists icon themes searched before the fallback directories
type IconsConfig struct {
	Themes       []string `mapstructure:"themes" toml:"themes"`
	FallbackDirs []string `mapstructure:"fallback_dirs" toml:"fallback_dirs"`
}

// WatchConfig controls live discovery after the initial walk
type WatchConfig struct {
	Enabled     bool          `mapstructure:"enabled" toml:"enabled"`
	Debounce    time.Duration `mapstructure:"debounce" toml:"debounce"`
	RefreshRate float64       `mapstructure:"refresh_rate" toml:"refresh_rate"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `mapstructure:"level" toml:"level"`
	Color string `mapstructure:"color" toml:"color"`
}

// Load loads configuration from file and environment
func Load() (*Config, error) {
	return LoadWith(viper.New())
}

// LoadWith loads configuration into the given viper instance
func LoadWith(v *viper.Viper) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("toml")

	homeDir, err := os.UserHomeDir()
	if err == nil {
		v.AddConfigPath(filepath.Join(homeDir, ".config", "appseek"))
	}
	v.AddConfigPath(".")

	setDefaults(v)

	// Environment variable overrides
	v.SetEnvPrefix("APPSEEK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found - use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Paths.LogFile = expandPath(cfg.Paths.LogFile)
	cfg.Paths.DataDirs = expandPaths(cfg.Paths.DataDirs)
	cfg.Paths.PathDirs = expandPaths(cfg.Paths.PathDirs)
	cfg.Paths.IconDirs = expandPaths(cfg.Paths.IconDirs)
	cfg.Icons.FallbackDirs = expandPaths(cfg.Icons.FallbackDirs)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that cannot be defaulted silently
func (c *Config) Validate() error {
	switch c.Search.EmptyQuery {
	case EmptyQueryNone, EmptyQueryAll:
	default:
		return fmt.Errorf("search.empty_query must be %q or %q, got %q", EmptyQueryNone, EmptyQueryAll, c.Search.EmptyQuery)
	}
	if c.Search.Workers < 1 {
		c.Search.Workers = 1
	}
	if c.Search.DescriptorBonus < 0 {
		return fmt.Errorf("search.descriptor_bonus must not be negative, got %d", c.Search.DescriptorBonus)
	}
	if c.Watch.RefreshRate <= 0 {
		return fmt.Errorf("watch.refresh_rate must be positive, got %v", c.Watch.RefreshRate)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		homeDir = os.Getenv("HOME")
	}
	if homeDir == "" {
		homeDir = "."
	}

	v.SetDefault("paths.log_file", filepath.Join(homeDir, ".local", "state", "appseek", "appseek.log"))
	v.SetDefault("paths.data_dirs", []string{})
	v.SetDefault("paths.path_dirs", []string{})
	v.SetDefault("paths.icon_dirs", []string{})

	v.SetDefault("search.workers", runtime.NumCPU())
	v.SetDefault("search.descriptor_bonus", 20)
	v.SetDefault("search.empty_query", EmptyQueryNone)
	v.SetDefault("search.limit", 20)
	v.SetDefault("search.include_desktop_stem", true)

	v.SetDefault("icons.themes", []string{"hicolor"})
	v.SetDefault("icons.fallback_dirs", []string{"/usr/share/pixmaps"})

	v.SetDefault("watch.enabled", true)
	v.SetDefault("watch.debounce", 300*time.Millisecond)
	v.SetDefault("watch.refresh_rate", 10.0)

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.color", "auto")
}

func expandPaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p = expandPath(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}

	// Expand ~
	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, path[1:])
		}
	}

	return os.ExpandEnv(path)
}
