package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// KeyType represents the data type of a config key.
type KeyType string

const (
	KeyTypeString KeyType = "string"
	KeyTypeInt    KeyType = "int"
)

// KeyEntry describes a known, settable config key.
type KeyEntry struct {
	// Type is the value's data type.
	Type KeyType
	// Desc is a human-readable description shown in `tally config list`.
	Desc string
	// DefaultStr is the string representation of the default value.
	DefaultStr string

	get   func(*Config) string
	set   func(cfg *Config, value string) error
	unset func(cfg *Config)
}

// Get returns the current value of the key as a string.
func (e *KeyEntry) Get(cfg *Config) string { return e.get(cfg) }

// Set validates and sets the value, returning a descriptive error on bad input.
func (e *KeyEntry) Set(cfg *Config, value string) error { return e.set(cfg, value) }

// Unset resets the key to its default.
func (e *KeyEntry) Unset(cfg *Config) { e.unset(cfg) }

// SchemaKeys is the authoritative registry of all settable config keys.
// Keys use dot-notation matching the TOML section structure.
var SchemaKeys = map[string]*KeyEntry{
	"user.name": {
		Type:       KeyTypeString,
		Desc:       "Display name used in the dashboard greeting",
		DefaultStr: "",
		get:        func(cfg *Config) string { return cfg.User.Name },
		set:        func(cfg *Config, v string) error { cfg.User.Name = v; return nil },
		unset:      func(cfg *Config) { cfg.User.Name = "" },
	},
	"habits.timezone": {
		Type:       KeyTypeString,
		Desc:       "IANA timezone that decides what \"today\" is (Local = system)",
		DefaultStr: "Local",
		get:        func(cfg *Config) string { return cfg.Habits.Timezone },
		set: func(cfg *Config, v string) error {
			h := HabitsConfig{Timezone: v}
			if _, err := h.Location(); err != nil {
				return err
			}
			cfg.Habits.Timezone = v
			return nil
		},
		unset: func(cfg *Config) { cfg.Habits.Timezone = "Local" },
	},
	"habits.default_limit": {
		Type:       KeyTypeInt,
		Desc:       "Default repetitions per day for new habits (1-10)",
		DefaultStr: "1",
		get:        func(cfg *Config) string { return strconv.Itoa(cfg.Habits.DefaultLimit) },
		set: func(cfg *Config, v string) error {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil || n < 1 || n > 10 {
				return fmt.Errorf("invalid value %q for habits.default_limit (use 1-10)", v)
			}
			cfg.Habits.DefaultLimit = n
			return nil
		},
		unset: func(cfg *Config) { cfg.Habits.DefaultLimit = 1 },
	},
	"habits.week_start": {
		Type:       KeyTypeString,
		Desc:       "First row of the heatmap (sun or mon)",
		DefaultStr: "sun",
		get:        func(cfg *Config) string { return cfg.Habits.WeekStart },
		set: func(cfg *Config, v string) error {
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "sun", "sunday":
				cfg.Habits.WeekStart = "sun"
			case "mon", "monday":
				cfg.Habits.WeekStart = "mon"
			default:
				return fmt.Errorf("invalid value %q for habits.week_start (use sun or mon)", v)
			}
			return nil
		},
		unset: func(cfg *Config) { cfg.Habits.WeekStart = "sun" },
	},
	"server.addr": {
		Type:       KeyTypeString,
		Desc:       "Listen address for `tally serve`",
		DefaultStr: DefaultAddr,
		get:        func(cfg *Config) string { return cfg.Server.Addr },
		set:        func(cfg *Config, v string) error { cfg.Server.Addr = v; return nil },
		unset:      func(cfg *Config) { cfg.Server.Addr = DefaultAddr },
	},
	"log.level": {
		Type:       KeyTypeString,
		Desc:       "Log level (debug, info, warn, error)",
		DefaultStr: "warn",
		get:        func(cfg *Config) string { return cfg.Log.Level },
		set: func(cfg *Config, v string) error {
			switch strings.ToLower(v) {
			case "debug", "info", "warn", "error":
				cfg.Log.Level = strings.ToLower(v)
				return nil
			}
			return fmt.Errorf("invalid value %q for log.level (use debug, info, warn, error)", v)
		},
		unset: func(cfg *Config) { cfg.Log.Level = "warn" },
	},
}

// ValidKeyNames returns the sorted list of all known config key names.
func ValidKeyNames() []string {
	names := make([]string, 0, len(SchemaKeys))
	for k := range SchemaKeys {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// LookupKey returns the KeyEntry for a known config key.
func LookupKey(key string) (*KeyEntry, bool) {
	entry, ok := SchemaKeys[key]
	return entry, ok
}
