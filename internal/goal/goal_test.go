package goal

import (
	"context"
	"errors"
	"testing"

	"github.com/rnwolfe/tally/internal/store"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	db, err := store.OpenPath(":memory:")
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db.Conn())
}

func TestAddAndGet(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	g := &Goal{Name: "Run a marathon", Emoji: "🏅"}
	if err := s.Add(ctx, g); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if g.ID == "" {
		t.Fatal("expected ID to be assigned")
	}

	got, err := s.Get(ctx, g.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Run a marathon" || got.Status != StatusActive {
		t.Fatalf("unexpected goal %+v", got)
	}
	if got.Label() != "🏅 Run a marathon" {
		t.Fatalf("Label = %q", got.Label())
	}
}

func TestAddRejectsEmptyName(t *testing.T) {
	s := setupStore(t)
	if err := s.Add(context.Background(), &Goal{Name: " "}); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestListAndSetStatus(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	a := &Goal{Name: "a"}
	b := &Goal{Name: "b"}
	for _, g := range []*Goal{a, b} {
		if err := s.Add(ctx, g); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.SetStatus(ctx, b.ID, StatusPaused); err != nil {
		t.Fatal(err)
	}

	active, err := s.List(ctx, StatusActive)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 1 || active[0].ID != a.ID {
		t.Fatalf("active goals = %+v", active)
	}
	all, err := s.List(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 goals, got %d", len(all))
	}

	if err := s.SetStatus(ctx, "missing", StatusArchived); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	g := &Goal{ID: "abcd-1234", Name: "Fitness"}
	if err := s.Add(ctx, g); err != nil {
		t.Fatal(err)
	}

	for _, ref := range []string{"abcd-1234", "abcd", "fitness"} {
		got, err := s.Resolve(ctx, ref)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", ref, err)
		}
		if got.ID != g.ID {
			t.Fatalf("Resolve(%q) = %s", ref, got.ID)
		}
	}
	if _, err := s.Resolve(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteUnlinksHabits(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	g := &Goal{Name: "Health"}
	if err := s.Add(ctx, g); err != nil {
		t.Fatal(err)
	}
	if _, err := s.db.Exec(`INSERT INTO habits (id, name, start_date, goal_id) VALUES ('h1', 'walk', '2024-01-01', ?)`, g.ID); err != nil {
		t.Fatal(err)
	}

	n, err := s.HabitCount(ctx, g.ID)
	if err != nil || n != 1 {
		t.Fatalf("HabitCount = %d, %v", n, err)
	}

	if err := s.Delete(ctx, g.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	var goalID *string
	if err := s.db.QueryRow(`SELECT goal_id FROM habits WHERE id = 'h1'`).Scan(&goalID); err != nil {
		t.Fatal(err)
	}
	if goalID != nil {
		t.Fatalf("habit still linked to %s", *goalID)
	}
	if err := s.Delete(ctx, g.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestPutUpserts(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	if err := s.Put(ctx, Goal{ID: "g1", Name: "first"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, Goal{ID: "g1", Name: "second", Status: StatusArchived}); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "g1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "second" || got.Status != StatusArchived {
		t.Fatalf("unexpected goal %+v", got)
	}
}

func TestParseStatus(t *testing.T) {
	tests := map[string]Status{"active": StatusActive, "Paused": StatusPaused, "ARCHIVED": StatusArchived, "": StatusActive}
	for in, want := range tests {
		got, err := ParseStatus(in)
		if err != nil || got != want {
			t.Errorf("ParseStatus(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseStatus("done"); err == nil {
		t.Error("expected error for done")
	}
}
