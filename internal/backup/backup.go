// Package backup exports tally's habits, completions and goals to a portable
// snapshot (JSON or YAML, optionally age-encrypted) and imports them back.
package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/rnwolfe/tally/internal/day"
	"github.com/rnwolfe/tally/internal/goal"
	"github.com/rnwolfe/tally/internal/habit"
	"github.com/rnwolfe/tally/internal/version"
)

// SchemaVersion is the snapshot layout written by this build.
const SchemaVersion = 1

// Snapshot is the full exported state.
type Snapshot struct {
	Version    int       `json:"version" yaml:"version"`
	Generator  string    `json:"generator,omitempty" yaml:"generator,omitempty"`
	ExportedAt time.Time `json:"exported_at" yaml:"exported_at"`
	Goals      []Goal    `json:"goals" yaml:"goals"`
	Habits     []Habit   `json:"habits" yaml:"habits"`
}

// Goal is the snapshot form of goal.Goal.
type Goal struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Emoji       string    `json:"emoji,omitempty" yaml:"emoji,omitempty"`
	Status      string    `json:"status" yaml:"status"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
}

// Habit is the snapshot form of habit.Habit, completions included.
type Habit struct {
	ID           string       `json:"id" yaml:"id"`
	Name         string       `json:"name" yaml:"name"`
	Emoji        string       `json:"emoji,omitempty" yaml:"emoji,omitempty"`
	Color        string       `json:"color,omitempty" yaml:"color,omitempty"`
	Motivation   string       `json:"motivation,omitempty" yaml:"motivation,omitempty"`
	StartDate    string       `json:"start_date" yaml:"start_date"`
	EndDate      string       `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	Frequency    []string     `json:"frequency" yaml:"frequency,flow"`
	LimitCounter int          `json:"limit_counter" yaml:"limit_counter"`
	Reminder     bool         `json:"reminder,omitempty" yaml:"reminder,omitempty"`
	Clock        string       `json:"clock,omitempty" yaml:"clock,omitempty"`
	GoalID       string       `json:"goal_id,omitempty" yaml:"goal_id,omitempty"`
	Archived     bool         `json:"archived,omitempty" yaml:"archived,omitempty"`
	CreatedAt    time.Time    `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" yaml:"updated_at"`
	Completions  []Completion `json:"completions" yaml:"completions"`
}

// Completion is one day's record.
type Completion struct {
	Date      string    `json:"date" yaml:"date"`
	Counter   int       `json:"counter" yaml:"counter"`
	CreatedAt time.Time `json:"created_at,omitzero" yaml:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitzero" yaml:"updated_at,omitempty"`
}

// Export reads every habit (archived included) with its completions and
// every goal.
func Export(ctx context.Context, habits *habit.Store, goals *goal.Store) (*Snapshot, error) {
	snap := &Snapshot{
		Version:    SchemaVersion,
		Generator:  "tally " + version.Short(),
		ExportedAt: time.Now().UTC().Truncate(time.Second),
		Goals:      []Goal{},
		Habits:     []Habit{},
	}

	gs, err := goals.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("listing goals: %w", err)
	}
	for _, g := range gs {
		snap.Goals = append(snap.Goals, Goal{
			ID:          g.ID,
			Name:        g.Name,
			Description: g.Description,
			Emoji:       g.Emoji,
			Status:      string(g.Status),
			CreatedAt:   g.CreatedAt.UTC(),
			UpdatedAt:   g.UpdatedAt.UTC(),
		})
	}

	hs, err := habits.List(ctx, habit.ListOptions{IncludeArchived: true})
	if err != nil {
		return nil, fmt.Errorf("listing habits: %w", err)
	}
	for _, h := range hs {
		records, err := habits.Completions(ctx, h.ID)
		if err != nil {
			return nil, fmt.Errorf("reading completions for %s: %w", h.Name, err)
		}
		snap.Habits = append(snap.Habits, fromHabit(h, records))
	}
	return snap, nil
}

func fromHabit(h habit.Habit, records []habit.Completion) Habit {
	out := Habit{
		ID:           h.ID,
		Name:         h.Name,
		Emoji:        h.Emoji,
		Color:        h.Color,
		Motivation:   h.Motivation,
		StartDate:    h.StartDate.String(),
		Frequency:    h.Frequency.Tokens(),
		LimitCounter: h.Limit(),
		Reminder:     h.Reminder,
		Clock:        h.Clock,
		Archived:     h.Archived,
		CreatedAt:    h.CreatedAt.UTC(),
		UpdatedAt:    h.UpdatedAt.UTC(),
		Completions:  make([]Completion, 0, len(records)),
	}
	if h.EndDate != nil {
		out.EndDate = h.EndDate.String()
	}
	if h.GoalID != nil {
		out.GoalID = *h.GoalID
	}
	for _, c := range records {
		out.Completions = append(out.Completions, Completion{
			Date:      c.Date.String(),
			Counter:   c.Counter,
			CreatedAt: c.CreatedAt.UTC(),
			UpdatedAt: c.UpdatedAt.UTC(),
		})
	}
	return out
}

// toHabit validates and converts a snapshot habit along with its records in
// file order.
func (h Habit) toHabit() (habit.Habit, []habit.Completion, error) {
	start, err := day.Parse(h.StartDate)
	if err != nil {
		return habit.Habit{}, nil, fmt.Errorf("start_date: %w", err)
	}
	freq, unknown := habit.ParseFrequency(h.Frequency)
	if len(unknown) > 0 {
		return habit.Habit{}, nil, fmt.Errorf("unknown frequency tokens %v", unknown)
	}
	out := habit.Habit{
		ID:           h.ID,
		Name:         h.Name,
		Emoji:        h.Emoji,
		Color:        h.Color,
		Motivation:   h.Motivation,
		StartDate:    start,
		Frequency:    freq,
		LimitCounter: h.LimitCounter,
		Reminder:     h.Reminder,
		Clock:        h.Clock,
		Archived:     h.Archived,
		CreatedAt:    h.CreatedAt,
		UpdatedAt:    h.UpdatedAt,
	}
	if h.EndDate != "" {
		end, err := day.Parse(h.EndDate)
		if err != nil {
			return habit.Habit{}, nil, fmt.Errorf("end_date: %w", err)
		}
		out.EndDate = &end
	}
	if h.GoalID != "" {
		gid := h.GoalID
		out.GoalID = &gid
	}

	records := make([]habit.Completion, 0, len(h.Completions))
	for _, c := range h.Completions {
		d, err := day.Parse(c.Date)
		if err != nil {
			return habit.Habit{}, nil, fmt.Errorf("completion: %w", err)
		}
		records = append(records, habit.Completion{
			HabitID:   h.ID,
			Date:      d,
			Counter:   c.Counter,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}
	return out, records, nil
}

// ItemError is a failure to import one goal or habit.
type ItemError struct {
	Kind string
	ID   string
	Name string
	Err  error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Kind, e.Name, e.Err)
}

func (e ItemError) Unwrap() error { return e.Err }

// Report summarizes an import.
type Report struct {
	Goals       int
	Habits      int
	Completions int
	// Duplicates lists days that appeared more than once for a habit. The
	// record later in the file was kept.
	Duplicates []habit.DataIntegrityWarning
	// Clamped lists records whose counter was above the habit's limit.
	// They were stored at the limit.
	Clamped    []ClampedCompletion
	Errors     []ItemError
}

// ClampedCompletion is a record whose counter exceeded the habit's limit.
type ClampedCompletion struct {
	HabitID string
	Name    string
	Date    day.Key
	Given   int
	Kept    int
}

// Import upserts goals, then habits, then replays each habit's completions.
// A bad item is recorded in the report and skipped; the rest continue.
// Returned errors are reserved for context cancellation.
func Import(ctx context.Context, habits *habit.Store, goals *goal.Store, snap *Snapshot) (*Report, error) {
	rep := &Report{}

	for _, sg := range snap.Goals {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		status, err := goal.ParseStatus(sg.Status)
		if err == nil && sg.ID == "" {
			err = fmt.Errorf("missing id")
		}
		if err == nil {
			err = goals.Put(ctx, goal.Goal{
				ID:          sg.ID,
				Name:        sg.Name,
				Description: sg.Description,
				Emoji:       sg.Emoji,
				Status:      status,
				CreatedAt:   sg.CreatedAt,
				UpdatedAt:   sg.UpdatedAt,
			})
		}
		if err != nil {
			rep.Errors = append(rep.Errors, ItemError{Kind: "goal", ID: sg.ID, Name: sg.Name, Err: err})
			continue
		}
		rep.Goals++
	}

	for _, sh := range snap.Habits {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if sh.ID == "" {
			sh.ID = habit.NewID()
		}
		h, records, err := sh.toHabit()
		if err == nil {
			err = habits.Put(ctx, h)
		}
		if err != nil {
			rep.Errors = append(rep.Errors, ItemError{Kind: "habit", ID: sh.ID, Name: sh.Name, Err: err})
			continue
		}
		rep.Habits++

		ledger := habit.BuildLedger(records, habit.WithDuplicateHandler(func(w habit.DataIntegrityWarning) {
			rep.Duplicates = append(rep.Duplicates, w)
		}))
		for _, c := range ledger.Records() {
			if limit := h.Limit(); c.Counter > limit {
				rep.Clamped = append(rep.Clamped, ClampedCompletion{
					HabitID: h.ID, Name: h.Name, Date: c.Date, Given: c.Counter, Kept: limit,
				})
				c.Counter = limit
			}
			if err := habits.PutCompletion(ctx, c); err != nil {
				rep.Errors = append(rep.Errors, ItemError{
					Kind: "completion", ID: h.ID, Name: h.Name + " " + c.Date.String(), Err: err,
				})
				continue
			}
			if c.Counter > 0 {
				rep.Completions++
			}
		}
	}
	return rep, nil
}
