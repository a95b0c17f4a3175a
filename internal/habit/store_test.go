package habit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rnwolfe/tally/internal/store"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	db, err := store.OpenPath(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db.Conn())
}

func addHabit(t *testing.T, s *Store, h Habit) *Habit {
	t.Helper()
	if err := s.Create(context.Background(), &h); err != nil {
		t.Fatalf("creating %s: %v", h.Name, err)
	}
	return &h
}

func TestStore_CreateGet(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	h := mwf("2024-01-01")
	h.ID = ""
	h.EndDate = ptr(mustDay("2024-06-30"))
	h.Emoji = "🏃"
	h.LimitCounter = 3
	h.Clock = "07:00"
	h.Reminder = true
	created := addHabit(t, s, h)
	if created.ID == "" {
		t.Fatal("Create did not assign an ID")
	}

	got, err := s.Get(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "run" || got.StartDate != mustDay("2024-01-01") {
		t.Errorf("got %q starting %s, want run starting 2024-01-01", got.Name, got.StartDate)
	}
	if got.EndDate == nil || *got.EndDate != mustDay("2024-06-30") {
		t.Errorf("EndDate = %v, want 2024-06-30", got.EndDate)
	}
	if got.Frequency != h.Frequency {
		t.Errorf("Frequency = %v, want %v", got.Frequency, h.Frequency)
	}
	if got.LimitCounter != 3 || !got.Reminder || got.Clock != "07:00" {
		t.Errorf("limit=%d reminder=%v clock=%q, want 3 true 07:00", got.LimitCounter, got.Reminder, got.Clock)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}

	if _, err := s.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(nope) err = %v, want ErrNotFound", err)
	}
}

func TestStore_CreateRejectsInvalid(t *testing.T) {
	s := setupStore(t)
	if err := s.Create(context.Background(), &Habit{Name: "x"}); err == nil {
		t.Error("expected an error for a habit without a start date")
	}
}

func TestStore_Resolve(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	read := addHabit(t, s, Habit{ID: "aaaa1111-0000", Name: "Read", StartDate: mustDay("2024-01-01"), Frequency: EveryDay})
	addHabit(t, s, Habit{ID: "aaaa2222-0000", Name: "Stretch", StartDate: mustDay("2024-01-01"), Frequency: EveryDay})

	tests := []struct {
		ref     string
		wantID  string
		wantErr error
	}{
		{read.ID, read.ID, nil},
		{"aaaa1", read.ID, nil},
		{"read", read.ID, nil},
		{"aaaa", "", ErrAmbiguous},
		{"juggle", "", ErrNotFound},
	}
	for _, tc := range tests {
		got, err := s.Resolve(ctx, tc.ref)
		if tc.wantErr != nil {
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Resolve(%q) err = %v, want %v", tc.ref, err, tc.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("Resolve(%q): %v", tc.ref, err)
			continue
		}
		if got.ID != tc.wantID {
			t.Errorf("Resolve(%q) = %s, want %s", tc.ref, got.ID, tc.wantID)
		}
	}
}

func TestStore_ListArchiveAndUpdate(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	a := addHabit(t, s, Habit{Name: "b-habit", StartDate: mustDay("2024-01-01"), Frequency: EveryDay})
	addHabit(t, s, Habit{Name: "a-habit", StartDate: mustDay("2024-01-01"), Frequency: EveryDay})

	list, err := s.List(ctx, ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Name != "a-habit" {
		t.Fatalf("List() = %v, want a-habit first of 2", list)
	}

	if err := s.SetArchived(ctx, a.ID, true); err != nil {
		t.Fatal(err)
	}
	list, err = s.List(ctx, ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("active habits = %d, want 1", len(list))
	}

	list, err = s.List(ctx, ListOptions{ArchivedOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != a.ID {
		t.Errorf("archived habits = %v, want only %s", list, a.ID)
	}

	a.Name = "renamed"
	a.Archived = false
	a.EndDate = nil
	if err := s.Update(ctx, a); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "renamed" || got.Archived || got.EndDate != nil {
		t.Errorf("after update: name=%q archived=%v end=%v", got.Name, got.Archived, got.EndDate)
	}

	if err := s.SetArchived(ctx, "missing", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetArchived(missing) err = %v, want ErrNotFound", err)
	}
}

func TestStore_ApplyToggleRoundTrip(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	h := addHabit(t, s, Habit{Name: "water", StartDate: mustDay("2024-01-01"), Frequency: EveryDay, LimitCounter: 3})
	d := mustDay("2024-01-04")

	for i, want := range []int{1, 2, 3, 0} {
		dec, err := s.ApplyToggle(ctx, h.ID, d, d)
		if err != nil {
			t.Fatalf("toggle %d: %v", i+1, err)
		}
		if dec.NewCounter != want {
			t.Errorf("toggle %d: counter = %d, want %d", i+1, dec.NewCounter, want)
		}

		l, err := s.Ledger(ctx, h.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got := l.Counter(d); got != want {
			t.Errorf("stored counter after toggle %d = %d, want %d", i+1, got, want)
		}
		if l.HasAny(d) != (want > 0) {
			t.Errorf("toggle %d: HasAny = %v", i+1, l.HasAny(d))
		}
	}
}

func TestStore_ApplyToggleGuard(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	h := addHabit(t, s, mwf("2024-01-01"))

	_, err := s.ApplyToggle(ctx, h.ID, mustDay("2024-01-02"), mustDay("2024-01-08"))
	if !errors.Is(err, ErrNotToggleable) {
		t.Errorf("off-schedule toggle err = %v, want ErrNotToggleable", err)
	}

	recs, err := s.Completions(ctx, h.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 0 {
		t.Errorf("rejected toggle wrote %d records", len(recs))
	}

	_, err = s.ApplyToggle(ctx, "missing", mustDay("2024-01-01"), mustDay("2024-01-08"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing habit err = %v, want ErrNotFound", err)
	}
}

func TestStore_ApplyToggleConcurrent(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	h := addHabit(t, s, Habit{Name: "pushups", StartDate: mustDay("2024-01-01"), Frequency: EveryDay, LimitCounter: 10})
	d := mustDay("2024-01-02")

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.ApplyToggle(ctx, h.ID, d, d); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("toggle failed: %v", err)
	}

	recs, err := s.Completions(ctx, h.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Counter != 5 {
		t.Errorf("records = %+v, want one record with counter 5", recs)
	}
}

// A database written before completions were unique per day can hold two
// records for one day. Toggling that day keeps the later one and logs the
// other.
func TestStore_ApplyToggleLogsDuplicateDay(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	var buf bytes.Buffer
	s.WithLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	h := addHabit(t, s, Habit{Name: "water", StartDate: mustDay("2024-01-01"), Frequency: EveryDay, LimitCounter: 3})
	d := mustDay("2024-01-04")

	for _, q := range []string{
		`DROP TABLE habit_completions`,
		`CREATE TABLE habit_completions (
			id TEXT PRIMARY KEY,
			habit_id TEXT NOT NULL REFERENCES habits(id) ON DELETE CASCADE,
			completed_date TEXT NOT NULL,
			counter INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	} {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			t.Fatal(err)
		}
	}
	early := store.FormatTime(time.Date(2024, 1, 4, 8, 0, 0, 0, time.UTC))
	late := store.FormatTime(time.Date(2024, 1, 4, 9, 0, 0, 0, time.UTC))
	for _, r := range []struct {
		id      string
		counter int
		at      string
	}{
		{"rec-early", 1, early},
		{"rec-late", 2, late},
	} {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO habit_completions (`+completionColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
			r.id, h.ID, d, r.counter, r.at, r.at)
		if err != nil {
			t.Fatal(err)
		}
	}

	dec, err := s.ApplyToggle(ctx, h.ID, d, d)
	if err != nil {
		t.Fatal(err)
	}
	if dec.Action != ActionIncrement || dec.NewCounter != 3 {
		t.Errorf("toggle = %s to %d, want increment to 3", dec.Action, dec.NewCounter)
	}

	out := buf.String()
	for _, want := range []string{"duplicate completion record", "kept_id=rec-late", "dropped_id=rec-early", "date=2024-01-04"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestStore_DeleteCascades(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	h := addHabit(t, s, Habit{Name: "floss", StartDate: mustDay("2024-01-01"), Frequency: EveryDay})
	if _, err := s.ApplyToggle(ctx, h.ID, mustDay("2024-01-01"), mustDay("2024-01-01")); err != nil {
		t.Fatal(err)
	}

	if err := s.Delete(ctx, h.ID); err != nil {
		t.Fatal(err)
	}
	recs, err := s.Completions(ctx, h.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 0 {
		t.Errorf("%d records survived the delete", len(recs))
	}
	if err := s.Delete(ctx, h.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestStore_PutCompletionAndBetween(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	h := addHabit(t, s, Habit{Name: "walk", StartDate: mustDay("2024-01-01"), Frequency: EveryDay, LimitCounter: 5})

	for _, c := range []Completion{
		{HabitID: h.ID, Date: mustDay("2024-01-01"), Counter: 2},
		{HabitID: h.ID, Date: mustDay("2024-01-03"), Counter: 1},
		{HabitID: h.ID, Date: mustDay("2024-01-03"), Counter: 4},
		{HabitID: h.ID, Date: mustDay("2024-01-09"), Counter: 1},
	} {
		if err := s.PutCompletion(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	recs, err := s.CompletionsBetween(ctx, h.ID, mustDay("2024-01-02"), mustDay("2024-01-08"))
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Counter != 4 {
		t.Errorf("records between = %+v, want one with counter 4", recs)
	}

	if err := s.PutCompletion(ctx, Completion{HabitID: h.ID, Date: mustDay("2024-01-03")}); err != nil {
		t.Fatal(err)
	}
	all, err := s.Completions(ctx, h.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("records after removing 2024-01-03 = %d, want 2", len(all))
	}
}

func TestStore_SetGoalRequiresExistingGoal(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	h := addHabit(t, s, Habit{Name: "walk", StartDate: mustDay("2024-01-01"), Frequency: EveryDay})

	if _, err := s.db.ExecContext(ctx, `INSERT INTO goals (id, name) VALUES ('g1', 'fitness')`); err != nil {
		t.Fatal(err)
	}

	g := "g1"
	if err := s.SetGoal(ctx, h.ID, &g); err != nil {
		t.Fatal(err)
	}
	list, err := s.List(ctx, ListOptions{GoalID: &g})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("habits under g1 = %d, want 1", len(list))
	}

	missing := "g2"
	if err := s.SetGoal(ctx, h.ID, &missing); err == nil {
		t.Error("linking to a missing goal should fail")
	}

	if err := s.SetGoal(ctx, h.ID, nil); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, h.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.GoalID != nil {
		t.Errorf("GoalID = %v after unlinking, want nil", *got.GoalID)
	}
}

func TestStore_CreatedAtPreserved(t *testing.T) {
	s := setupStore(t)
	when := time.Date(2023, 5, 1, 9, 30, 0, 0, time.UTC)
	h := addHabit(t, s, Habit{Name: "old", StartDate: mustDay("2023-05-01"), Frequency: EveryDay, CreatedAt: when})
	got, err := s.Get(context.Background(), h.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.CreatedAt.Equal(when) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, when)
	}
}
