package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// setupTestXDG sets XDG env vars to a temp directory for isolated testing.
func setupTestXDG(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(tmpDir, "cache"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(tmpDir, "state"))
	return tmpDir
}

func TestOpenAndClose(t *testing.T) {
	tmpDir := setupTestXDG(t)

	db, err := Open()
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	if db.Conn() == nil {
		t.Fatal("Conn() returned nil")
	}

	dbPath := filepath.Join(tmpDir, "tally", "tally.db")
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("Database file not created at %s: %v", dbPath, err)
	}
}

func TestMigrationsCreateTables(t *testing.T) {
	setupTestXDG(t)

	db, err := Open()
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	tables := []string{"migrations", "habits", "habit_completions", "goals", "kv"}
	for _, table := range tables {
		var name string
		err := db.Conn().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("Table %q not found: %v", table, err)
		}
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	setupTestXDG(t)

	for i := 0; i < 2; i++ {
		db, err := Open()
		if err != nil {
			t.Fatalf("Open #%d failed: %v", i+1, err)
		}
		db.Close()
	}
}

func TestWALMode(t *testing.T) {
	setupTestXDG(t)

	db, err := Open()
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	var journalMode string
	err = db.Conn().QueryRow("PRAGMA journal_mode").Scan(&journalMode)
	if err != nil {
		t.Fatalf("Querying journal_mode failed: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("Expected WAL mode, got %q", journalMode)
	}
}

func TestCompletionsUniquePerDay(t *testing.T) {
	db, err := OpenPath(":memory:")
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	defer db.Close()

	c := db.Conn()
	if _, err := c.Exec(`INSERT INTO habits (id, name, start_date) VALUES ('h1', 'read', '2024-01-01')`); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Exec(`INSERT INTO habit_completions (id, habit_id, completed_date) VALUES ('c1', 'h1', '2024-01-02')`); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Exec(`INSERT INTO habit_completions (id, habit_id, completed_date) VALUES ('c2', 'h1', '2024-01-02')`); err == nil {
		t.Fatal("expected unique constraint violation for duplicate day")
	}

	// Deleting the habit cascades to its completions.
	if _, err := c.Exec(`DELETE FROM habits WHERE id = 'h1'`); err != nil {
		t.Fatal(err)
	}
	var n int
	if err := c.QueryRow(`SELECT COUNT(*) FROM habit_completions`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("expected cascade delete, %d completions remain", n)
	}
}

func TestKV(t *testing.T) {
	db, err := OpenPath(":memory:")
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	if _, ok, err := db.GetKV(ctx, "missing"); err != nil || ok {
		t.Fatalf("GetKV(missing) = ok %v, err %v", ok, err)
	}
	if err := db.SetKV(ctx, "board.day", "2024-01-02"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetKV(ctx, "board.day", "2024-01-03"); err != nil {
		t.Fatal(err)
	}
	v, ok, err := db.GetKV(ctx, "board.day")
	if err != nil || !ok || v != "2024-01-03" {
		t.Fatalf("GetKV = %q, %v, %v", v, ok, err)
	}
}

func TestParseTime(t *testing.T) {
	want := time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)
	for _, s := range []string{"2024-03-09 14:05:00", "2024-03-09T14:05:00Z", FormatTime(want)} {
		if got := ParseTime(s); !got.Equal(want) {
			t.Errorf("ParseTime(%q) = %v, want %v", s, got, want)
		}
	}
	if !ParseTime("garbage").IsZero() {
		t.Error("expected zero time for garbage input")
	}
}
