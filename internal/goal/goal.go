// Package goal groups habits under longer-term goals.
package goal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rnwolfe/tally/internal/store"
)

// Status is a goal's lifecycle state.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusPaused   Status = "PAUSED"
	StatusArchived Status = "ARCHIVED"
)

// ErrNotFound is returned when a goal reference matches nothing.
var ErrNotFound = errors.New("goal not found")

// ParseStatus accepts a status name in any case.
func ParseStatus(s string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ACTIVE", "":
		return StatusActive, nil
	case "PAUSED":
		return StatusPaused, nil
	case "ARCHIVED":
		return StatusArchived, nil
	default:
		return "", fmt.Errorf("invalid goal status %q (use active, paused, archived)", s)
	}
}

// Label returns a lowercase display label.
func (s Status) Label() string { return strings.ToLower(string(s)) }

// Goal is a named objective that habits can be linked to.
type Goal struct {
	ID          string
	Name        string
	Description string
	Emoji       string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Label returns the display name with the emoji prefix, if any.
func (g Goal) Label() string {
	if g.Emoji == "" {
		return g.Name
	}
	return g.Emoji + " " + g.Name
}

// Store handles goal persistence.
type Store struct {
	db *sql.DB
}

// NewStore creates a new goal store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const columns = `id, name, description, emoji, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGoal(row rowScanner) (*Goal, error) {
	var g Goal
	var status, createdStr, updatedStr string
	if err := row.Scan(&g.ID, &g.Name, &g.Description, &g.Emoji, &status, &createdStr, &updatedStr); err != nil {
		return nil, err
	}
	g.Status = Status(status)
	g.CreatedAt = store.ParseTime(createdStr)
	g.UpdatedAt = store.ParseTime(updatedStr)
	return &g, nil
}

// Add creates a new goal. An empty ID is filled in and an empty status
// defaults to ACTIVE.
func (s *Store) Add(ctx context.Context, g *Goal) error {
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("goal name must not be empty")
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.Status == "" {
		g.Status = StatusActive
	}
	now := time.Now().UTC().Truncate(time.Second)
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	g.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO goals (`+columns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Name, g.Description, g.Emoji, string(g.Status),
		store.FormatTime(g.CreatedAt), store.FormatTime(g.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("adding goal: %w", err)
	}
	return nil
}

// Put inserts g or overwrites the goal with the same ID.
func (s *Store) Put(ctx context.Context, g Goal) error {
	if g.Status == "" {
		g.Status = StatusActive
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	if g.UpdatedAt.IsZero() {
		g.UpdatedAt = g.CreatedAt
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO goals (`+columns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name, description = excluded.description, emoji = excluded.emoji,
		   status = excluded.status, updated_at = excluded.updated_at`,
		g.ID, g.Name, g.Description, g.Emoji, string(g.Status),
		store.FormatTime(g.CreatedAt), store.FormatTime(g.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("writing goal %s: %w", g.ID, err)
	}
	return nil
}

// Get returns a goal by ID.
func (s *Store) Get(ctx context.Context, id string) (*Goal, error) {
	g, err := scanGoal(s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM goals WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting goal %s: %w", id, err)
	}
	return g, nil
}

// Resolve finds a goal by ID, ID prefix, or case-insensitive name.
func (s *Store) Resolve(ctx context.Context, ref string) (*Goal, error) {
	if g, err := s.Get(ctx, ref); err == nil {
		return g, nil
	}
	all, err := s.List(ctx, "")
	if err != nil {
		return nil, err
	}
	var match *Goal
	for i := range all {
		g := &all[i]
		if strings.EqualFold(g.Name, ref) || (len(ref) >= 4 && strings.HasPrefix(g.ID, ref)) {
			if match != nil {
				return nil, fmt.Errorf("goal reference %q is ambiguous", ref)
			}
			match = g
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, ref)
	}
	return match, nil
}

// List returns goals with the given status, or all goals when status is
// empty, ordered by creation time.
func (s *Store) List(ctx context.Context, status Status) ([]Goal, error) {
	query := `SELECT ` + columns + ` FROM goals`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at ASC, name ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing goals: %w", err)
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

// SetStatus moves a goal to a new status.
func (s *Store) SetStatus(ctx context.Context, id string, status Status) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE goals SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), store.FormatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("updating goal: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Delete removes a goal. Linked habits are kept and unlinked.
func (s *Store) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE habits SET goal_id = NULL WHERE goal_id = ?`, id); err != nil {
		return fmt.Errorf("unlinking habits: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting goal: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return tx.Commit()
}

// HabitCount returns how many habits are linked to the goal.
func (s *Store) HabitCount(ctx context.Context, id string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM habits WHERE goal_id = ?`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting habits: %w", err)
	}
	return n, nil
}
