package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the top-level tally configuration.
type Config struct {
	User   UserConfig   `toml:"user"`
	Habits HabitsConfig `toml:"habits"`
	Server ServerConfig `toml:"server"`
	Log    LogConfig    `toml:"log"`
}

type UserConfig struct {
	Name string `toml:"name"`
}

// HabitsConfig controls how days are resolved and displayed.
type HabitsConfig struct {
	// Timezone is an IANA name used to decide what "today" is.
	// Empty or "Local" means the system timezone.
	Timezone     string `toml:"timezone"`
	DefaultLimit int    `toml:"default_limit"`
	// WeekStart is "sun" or "mon"; it orders heatmap rows.
	WeekStart string `toml:"week_start"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// DefaultAddr is the HTTP listen address used when none is configured.
const DefaultAddr = "127.0.0.1:7777"

// Location resolves the configured timezone.
func (h HabitsConfig) Location() (*time.Location, error) {
	if h.Timezone == "" || h.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(h.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", h.Timezone, err)
	}
	return loc, nil
}

// WeekStartsMonday reports whether heatmap weeks start on Monday.
func (h HabitsConfig) WeekStartsMonday() bool {
	return strings.HasPrefix(strings.ToLower(h.WeekStart), "mon")
}

// Paths returns standard XDG-compliant paths.
type Paths struct {
	ConfigDir  string
	DataDir    string
	CacheDir   string
	StateDir   string
	ConfigFile string
	DBFile     string
	LogFile    string
}

// GetPaths returns the resolved paths, respecting XDG env vars.
func GetPaths() Paths {
	home, _ := os.UserHomeDir()

	configDir := envOr("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	dataDir := envOr("XDG_DATA_HOME", filepath.Join(home, ".local", "share"))
	cacheDir := envOr("XDG_CACHE_HOME", filepath.Join(home, ".cache"))
	stateDir := envOr("XDG_STATE_HOME", filepath.Join(home, ".local", "state"))

	tallyConfig := filepath.Join(configDir, "tally")
	tallyData := filepath.Join(dataDir, "tally")
	tallyState := filepath.Join(stateDir, "tally")

	return Paths{
		ConfigDir:  tallyConfig,
		DataDir:    tallyData,
		CacheDir:   filepath.Join(cacheDir, "tally"),
		StateDir:   tallyState,
		ConfigFile: filepath.Join(tallyConfig, "config.toml"),
		DBFile:     filepath.Join(tallyData, "tally.db"),
		LogFile:    filepath.Join(tallyState, "tally.log"),
	}
}

// EnsureDirs creates all required directories.
func (p Paths) EnsureDirs() error {
	dirs := []string{p.ConfigDir, p.DataDir, p.CacheDir, p.StateDir}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// Load reads config from disk, returning defaults if not found.
// Keys missing from the file keep their default values.
func Load() (*Config, error) {
	paths := GetPaths()
	cfg := defaultConfig()

	data, err := os.ReadFile(paths.ConfigFile)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", paths.ConfigFile, err)
	}
	return cfg, nil
}

// Save writes config to disk.
func Save(cfg *Config) error {
	paths := GetPaths()
	if err := paths.EnsureDirs(); err != nil {
		return err
	}

	f, err := os.Create(paths.ConfigFile)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Initialized returns true if a config file has been written.
func Initialized() bool {
	paths := GetPaths()
	_, err := os.Stat(paths.ConfigFile)
	return err == nil
}

func defaultConfig() *Config {
	return &Config{
		Habits: HabitsConfig{
			Timezone:     "Local",
			DefaultLimit: 1,
			WeekStart:    "sun",
		},
		Server: ServerConfig{
			Addr: envOr("TALLY_ADDR", DefaultAddr),
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
