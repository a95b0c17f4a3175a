package habit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rnwolfe/tally/internal/day"
	"github.com/rnwolfe/tally/internal/store"
)

// ErrNotFound is returned when a habit reference matches nothing.
var ErrNotFound = errors.New("habit not found")

// ErrAmbiguous is returned when a reference matches more than one habit.
var ErrAmbiguous = errors.New("habit reference is ambiguous")

// minPrefix is the shortest ID prefix Resolve accepts.
const minPrefix = 4

// ListOptions configures which habits List returns.
type ListOptions struct {
	// IncludeArchived includes archived habits alongside active ones.
	IncludeArchived bool
	// ArchivedOnly returns only archived habits. Implies IncludeArchived.
	ArchivedOnly bool
	// GoalID filters to habits linked to this goal.
	GoalID *string
}

// Store handles habit and completion persistence.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// NewStore creates a new habit store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// WithLogger sets the logger ApplyToggle reports duplicate day records to.
func (s *Store) WithLogger(log *slog.Logger) *Store {
	s.log = log
	return s
}

func (s *Store) toggleLedger(records []Completion) *Ledger {
	if s.log == nil {
		return BuildLedger(records)
	}
	return BuildLedger(records, WarnDuplicates(s.log))
}

// WarnDuplicates returns a LedgerOption that logs duplicate records at WARN.
func WarnDuplicates(log *slog.Logger) LedgerOption {
	return WithDuplicateHandler(func(w DataIntegrityWarning) {
		log.Warn("duplicate completion record",
			"habit_id", w.HabitID,
			"date", w.Date.String(),
			"kept_id", w.Kept.ID,
			"kept_counter", w.Kept.Counter,
			"dropped_id", w.Dropped.ID,
			"dropped_counter", w.Dropped.Counter,
		)
	})
}

// NewID returns a fresh random identifier.
func NewID() string {
	return uuid.NewString()
}

const habitColumns = `id, name, emoji, color, motivation, start_date, end_date, frequency,
	limit_counter, reminder, clock, goal_id, archived, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (*Habit, error) {
	var h Habit
	var end day.Key
	var freq string
	var reminder, archived int
	var goalID sql.NullString
	var createdStr, updatedStr string

	if err := row.Scan(&h.ID, &h.Name, &h.Emoji, &h.Color, &h.Motivation, &h.StartDate, &end, &freq,
		&h.LimitCounter, &reminder, &h.Clock, &goalID, &archived, &createdStr, &updatedStr); err != nil {
		return nil, err
	}
	if !end.IsZero() {
		h.EndDate = &end
	}
	h.Frequency = DecodeFrequency(freq)
	h.Reminder = reminder == 1
	h.Archived = archived == 1
	if goalID.Valid && goalID.String != "" {
		g := goalID.String
		h.GoalID = &g
	}
	h.CreatedAt = store.ParseTime(createdStr)
	h.UpdatedAt = store.ParseTime(updatedStr)
	return &h, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func endValue(end *day.Key) any {
	if end == nil {
		return nil
	}
	return *end
}

// Create validates h, assigns an ID if it has none, and inserts it.
func (s *Store) Create(ctx context.Context, h *Habit) error {
	if err := h.Validate(); err != nil {
		return err
	}
	if h.ID == "" {
		h.ID = NewID()
	}
	if h.LimitCounter < 1 {
		h.LimitCounter = DefaultLimit
	}
	now := time.Now().UTC().Truncate(time.Second)
	if h.CreatedAt.IsZero() {
		h.CreatedAt = now
	}
	h.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO habits (`+habitColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.Name, h.Emoji, h.Color, h.Motivation, h.StartDate, endValue(h.EndDate), h.Frequency.Encode(),
		h.LimitCounter, boolInt(h.Reminder), h.Clock, h.GoalID, boolInt(h.Archived),
		store.FormatTime(h.CreatedAt), store.FormatTime(h.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("adding habit: %w", err)
	}
	return nil
}

// Put inserts h or overwrites the habit with the same ID, keeping its
// completions. Timestamps are written as given.
func (s *Store) Put(ctx context.Context, h Habit) error {
	if err := h.Validate(); err != nil {
		return err
	}
	if h.LimitCounter < 1 {
		h.LimitCounter = DefaultLimit
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	if h.UpdatedAt.IsZero() {
		h.UpdatedAt = h.CreatedAt
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO habits (`+habitColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name, emoji = excluded.emoji, color = excluded.color,
		   motivation = excluded.motivation, start_date = excluded.start_date, end_date = excluded.end_date,
		   frequency = excluded.frequency, limit_counter = excluded.limit_counter,
		   reminder = excluded.reminder, clock = excluded.clock, goal_id = excluded.goal_id,
		   archived = excluded.archived, updated_at = excluded.updated_at`,
		h.ID, h.Name, h.Emoji, h.Color, h.Motivation, h.StartDate, endValue(h.EndDate), h.Frequency.Encode(),
		h.LimitCounter, boolInt(h.Reminder), h.Clock, h.GoalID, boolInt(h.Archived),
		store.FormatTime(h.CreatedAt), store.FormatTime(h.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("writing habit %s: %w", h.ID, err)
	}
	return nil
}

// Get returns a habit by its exact ID.
func (s *Store) Get(ctx context.Context, id string) (*Habit, error) {
	return getHabit(ctx, s.db, id)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getHabit(ctx context.Context, q querier, id string) (*Habit, error) {
	h, err := scanHabit(q.QueryRowContext(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting habit %s: %w", id, err)
	}
	return h, nil
}

// Resolve finds a habit by exact ID, unique ID prefix (at least four
// characters), or case-insensitive name, in that order.
func (s *Store) Resolve(ctx context.Context, ref string) (*Habit, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty reference", ErrNotFound)
	}

	h, err := s.Get(ctx, ref)
	if err == nil {
		return h, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	all, err := s.List(ctx, ListOptions{IncludeArchived: true})
	if err != nil {
		return nil, err
	}

	var matches []Habit
	if len(ref) >= minPrefix {
		for _, c := range all {
			if strings.HasPrefix(c.ID, strings.ToLower(ref)) {
				matches = append(matches, c)
			}
		}
	}
	if len(matches) == 0 {
		for _, c := range all {
			if strings.EqualFold(c.Name, ref) {
				matches = append(matches, c)
			}
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %q", ErrNotFound, ref)
	case 1:
		return &matches[0], nil
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = fmt.Sprintf("%s (%s)", m.Name, ShortID(m.ID))
		}
		return nil, fmt.Errorf("%w: %q matches %s", ErrAmbiguous, ref, strings.Join(names, ", "))
	}
}

// ShortID returns the first eight characters of an ID for display.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// List returns habits matching opts, sorted by name.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits`

	var conditions []string
	var args []any
	switch {
	case opts.ArchivedOnly:
		conditions = append(conditions, "archived = 1")
	case !opts.IncludeArchived:
		conditions = append(conditions, "archived = 0")
	}
	if opts.GoalID != nil {
		conditions = append(conditions, "goal_id = ?")
		args = append(args, *opts.GoalID)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing habits: %w", err)
	}
	defer rows.Close()

	var habits []Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	SortByName(habits)
	return habits, nil
}

// Update writes every editable field of h.
func (s *Store) Update(ctx context.Context, h *Habit) error {
	if err := h.Validate(); err != nil {
		return err
	}
	if h.LimitCounter < 1 {
		h.LimitCounter = DefaultLimit
	}
	h.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	res, err := s.db.ExecContext(ctx,
		`UPDATE habits SET name = ?, emoji = ?, color = ?, motivation = ?, start_date = ?, end_date = ?,
		 frequency = ?, limit_counter = ?, reminder = ?, clock = ?, goal_id = ?, archived = ?, updated_at = ?
		 WHERE id = ?`,
		h.Name, h.Emoji, h.Color, h.Motivation, h.StartDate, endValue(h.EndDate),
		h.Frequency.Encode(), h.LimitCounter, boolInt(h.Reminder), h.Clock, h.GoalID, boolInt(h.Archived),
		store.FormatTime(h.UpdatedAt), h.ID,
	)
	if err != nil {
		return fmt.Errorf("updating habit: %w", err)
	}
	return expectOne(res, h.ID)
}

// Delete removes a habit and, by cascade, its completions.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM habits WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting habit: %w", err)
	}
	return expectOne(res, id)
}

// SetArchived archives or restores a habit.
func (s *Store) SetArchived(ctx context.Context, id string, archived bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE habits SET archived = ?, updated_at = ? WHERE id = ?`,
		boolInt(archived), store.FormatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("archiving habit: %w", err)
	}
	return expectOne(res, id)
}

// SetGoal links a habit to a goal, or unlinks it when goalID is nil.
func (s *Store) SetGoal(ctx context.Context, id string, goalID *string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE habits SET goal_id = ?, updated_at = ? WHERE id = ?`,
		goalID, store.FormatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("linking habit: %w", err)
	}
	return expectOne(res, id)
}

func expectOne(res sql.Result, id string) error {
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

const completionColumns = `id, habit_id, completed_date, counter, created_at, updated_at`

func scanCompletions(rows *sql.Rows) ([]Completion, error) {
	var out []Completion
	for rows.Next() {
		var c Completion
		var createdStr, updatedStr string
		if err := rows.Scan(&c.ID, &c.HabitID, &c.Date, &c.Counter, &createdStr, &updatedStr); err != nil {
			return nil, err
		}
		c.CreatedAt = store.ParseTime(createdStr)
		c.UpdatedAt = store.ParseTime(updatedStr)
		out = append(out, c)
	}
	return out, rows.Err()
}

// Completions returns every record for a habit, oldest day first. Records for
// the same day (legacy data) are ordered by creation so the newest wins when
// passed to BuildLedger.
func (s *Store) Completions(ctx context.Context, habitID string) ([]Completion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+completionColumns+` FROM habit_completions
		 WHERE habit_id = ? ORDER BY completed_date ASC, created_at ASC`, habitID)
	if err != nil {
		return nil, fmt.Errorf("listing completions: %w", err)
	}
	defer rows.Close()
	return scanCompletions(rows)
}

// CompletionsBetween returns records with from <= date <= to.
func (s *Store) CompletionsBetween(ctx context.Context, habitID string, from, to day.Key) ([]Completion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+completionColumns+` FROM habit_completions
		 WHERE habit_id = ? AND completed_date >= ? AND completed_date <= ?
		 ORDER BY completed_date ASC, created_at ASC`, habitID, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing completions: %w", err)
	}
	defer rows.Close()
	return scanCompletions(rows)
}

// Ledger loads a habit's completions into a Ledger.
func (s *Store) Ledger(ctx context.Context, habitID string, opts ...LedgerOption) (*Ledger, error) {
	records, err := s.Completions(ctx, habitID)
	if err != nil {
		return nil, err
	}
	return BuildLedger(records, opts...), nil
}

// ApplyToggle toggles habit id on d inside a single transaction: the habit
// and the day's record are read, Toggle decides, and the decision is written
// before commit. Concurrent toggles on the same day are serialized by SQLite.
func (s *Store) ApplyToggle(ctx context.Context, id string, d, today day.Key) (Decision, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Decision{}, fmt.Errorf("starting toggle: %w", err)
	}
	defer tx.Rollback()

	h, err := getHabit(ctx, tx, id)
	if err != nil {
		return Decision{}, err
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT `+completionColumns+` FROM habit_completions
		 WHERE habit_id = ? AND completed_date = ? ORDER BY created_at ASC`, id, d)
	if err != nil {
		return Decision{}, fmt.Errorf("reading completion: %w", err)
	}
	records, err := scanCompletions(rows)
	rows.Close()
	if err != nil {
		return Decision{}, err
	}

	dec, err := Toggle(*h, s.toggleLedger(records), d, today)
	if err != nil {
		return Decision{}, err
	}

	now := store.FormatTime(time.Now())
	switch dec.Action {
	case ActionCreate:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO habit_completions (`+completionColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
			NewID(), id, d, dec.NewCounter, now, now)
	case ActionIncrement:
		_, err = tx.ExecContext(ctx,
			`UPDATE habit_completions SET counter = ?, updated_at = ? WHERE habit_id = ? AND completed_date = ?`,
			dec.NewCounter, now, id, d)
	case ActionReset:
		_, err = tx.ExecContext(ctx,
			`DELETE FROM habit_completions WHERE habit_id = ? AND completed_date = ?`, id, d)
	}
	if err != nil {
		return Decision{}, fmt.Errorf("applying %s: %w", dec.Action, err)
	}

	if err := tx.Commit(); err != nil {
		return Decision{}, fmt.Errorf("committing toggle: %w", err)
	}
	return dec, nil
}

// PutCompletion writes a record as-is, replacing any record for the same
// day. A counter below 1 removes the day's record. It bypasses the toggle
// guards and is meant for imports.
func (s *Store) PutCompletion(ctx context.Context, c Completion) error {
	if c.Counter < 1 {
		_, err := s.db.ExecContext(ctx,
			`DELETE FROM habit_completions WHERE habit_id = ? AND completed_date = ?`, c.HabitID, c.Date)
		if err != nil {
			return fmt.Errorf("clearing completion: %w", err)
		}
		return nil
	}
	if c.ID == "" {
		c.ID = NewID()
	}
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO habit_completions (`+completionColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(habit_id, completed_date) DO UPDATE SET
		   counter = excluded.counter, updated_at = excluded.updated_at`,
		c.ID, c.HabitID, c.Date, c.Counter, store.FormatTime(c.CreatedAt), store.FormatTime(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("writing completion: %w", err)
	}
	return nil
}
