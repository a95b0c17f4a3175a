package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetPaths(t *testing.T) {
	paths := GetPaths()

	if paths.ConfigDir == "" {
		t.Fatal("ConfigDir should not be empty")
	}
	if paths.DataDir == "" {
		t.Fatal("DataDir should not be empty")
	}
	if paths.ConfigFile == "" {
		t.Fatal("ConfigFile should not be empty")
	}
	if paths.DBFile == "" {
		t.Fatal("DBFile should not be empty")
	}
}

func TestGetPathsRespectsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/testxdg/config")
	t.Setenv("XDG_DATA_HOME", "/tmp/testxdg/data")
	t.Setenv("XDG_STATE_HOME", "/tmp/testxdg/state")

	paths := GetPaths()

	if paths.ConfigDir != "/tmp/testxdg/config/tally" {
		t.Fatalf("expected /tmp/testxdg/config/tally, got %s", paths.ConfigDir)
	}
	if paths.DBFile != "/tmp/testxdg/data/tally/tally.db" {
		t.Fatalf("unexpected DBFile %s", paths.DBFile)
	}
	if paths.LogFile != "/tmp/testxdg/state/tally/tally.log" {
		t.Fatalf("unexpected LogFile %s", paths.LogFile)
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("TALLY_ADDR", "")
	cfg := defaultConfig()

	if cfg.Habits.DefaultLimit != 1 {
		t.Fatalf("expected default limit 1, got %d", cfg.Habits.DefaultLimit)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Fatalf("expected addr %s, got %s", DefaultAddr, cfg.Server.Addr)
	}
	if cfg.Habits.WeekStartsMonday() {
		t.Fatal("default week should start on Sunday")
	}
}

func TestLoadMissingReturnsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Fatalf("expected warn, got %q", cfg.Log.Level)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmpDir, "data"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(tmpDir, "cache"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(tmpDir, "state"))

	cfg := defaultConfig()
	cfg.User.Name = "Sam"
	cfg.Habits.Timezone = "UTC"
	cfg.Habits.DefaultLimit = 4
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Initialized() {
		t.Fatal("expected Initialized after Save")
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.User.Name != "Sam" || got.Habits.Timezone != "UTC" || got.Habits.DefaultLimit != 4 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	paths := GetPaths()
	if err := os.MkdirAll(paths.ConfigDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(paths.ConfigFile, []byte("[user]\nname = \"Ada\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.User.Name != "Ada" {
		t.Fatalf("name = %q", cfg.User.Name)
	}
	if cfg.Habits.DefaultLimit != 1 {
		t.Fatalf("DefaultLimit should keep default, got %d", cfg.Habits.DefaultLimit)
	}
}

func TestEnsureDirs(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir+"/config")
	t.Setenv("XDG_DATA_HOME", tmpDir+"/data")
	t.Setenv("XDG_CACHE_HOME", tmpDir+"/cache")
	t.Setenv("XDG_STATE_HOME", tmpDir+"/state")

	paths := GetPaths()
	if err := paths.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs failed: %v", err)
	}

	for _, dir := range []string{paths.ConfigDir, paths.DataDir, paths.CacheDir, paths.StateDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("dir %s not created: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("%s is not a directory", dir)
		}
	}
}
