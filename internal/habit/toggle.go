package habit

import (
	"errors"
	"fmt"

	"github.com/rnwolfe/tally/internal/day"
)

// Action is the ledger mutation a toggle proposes.
type Action string

const (
	ActionCreate    Action = "create"
	ActionIncrement Action = "increment"
	ActionReset     Action = "reset"
)

// Reason says which guard rejected a toggle.
type Reason string

const (
	ReasonFuture      Reason = "future"
	ReasonBeforeStart Reason = "before-start"
	ReasonAfterEnd    Reason = "after-end"
	ReasonOffSchedule Reason = "off-schedule"
)

// ErrNotToggleable matches every *NotToggleableError via errors.Is.
var ErrNotToggleable = errors.New("day is not toggleable")

// NotToggleableError is returned when a toggle targets a future day or a day
// the habit is not scheduled on. No mutation is proposed.
type NotToggleableError struct {
	HabitID string
	Date    day.Key
	Today   day.Key
	Reason  Reason
}

func (e *NotToggleableError) Error() string {
	switch e.Reason {
	case ReasonFuture:
		return fmt.Sprintf("cannot complete %s: it is in the future (today is %s)", e.Date, e.Today)
	case ReasonBeforeStart:
		return fmt.Sprintf("cannot complete %s: habit has not started yet", e.Date)
	case ReasonAfterEnd:
		return fmt.Sprintf("cannot complete %s: habit has already ended", e.Date)
	default:
		return fmt.Sprintf("cannot complete %s: habit is not scheduled on %s", e.Date, e.Date.Weekday())
	}
}

func (e *NotToggleableError) Is(target error) bool { return target == ErrNotToggleable }

// Decision is the outcome of a toggle: the mutation to apply and the state
// the day will be in once it is applied.
type Decision struct {
	Action     Action
	Date       day.Key
	NewCounter int
	Limit      int
	// HasProgress is true while a record exists for the day (any counter).
	HasProgress bool
	// IsFullyComplete is true once the counter has reached the limit.
	IsFullyComplete bool
}

// Progress returns NewCounter/Limit in [0, 1].
func (d Decision) Progress() float64 {
	if d.Limit <= 0 {
		return 0
	}
	p := float64(d.NewCounter) / float64(d.Limit)
	if p > 1 {
		return 1
	}
	return p
}

// CheckToggleable returns a *NotToggleableError if d cannot be toggled.
func CheckToggleable(h Habit, d, today day.Key) error {
	if d.After(today) {
		return &NotToggleableError{HabitID: h.ID, Date: d, Today: today, Reason: ReasonFuture}
	}
	if IsActiveOn(h, d) {
		return nil
	}

	reason := ReasonOffSchedule
	switch {
	case d.Before(h.StartDate):
		reason = ReasonBeforeStart
	case h.EndDate != nil && d.After(*h.EndDate):
		reason = ReasonAfterEnd
	}
	return &NotToggleableError{HabitID: h.ID, Date: d, Today: today, Reason: reason}
}

// Toggle decides the next mutation for d:
//
//	no record              -> create, counter 1
//	record, counter < limit -> increment
//	record, counter >= limit -> reset (delete), counter 0
//
// Calling Toggle limit+1 times, applying each decision in between, returns the
// day to having no record.
func Toggle(h Habit, l *Ledger, d, today day.Key) (Decision, error) {
	if err := CheckToggleable(h, d, today); err != nil {
		return Decision{}, err
	}

	limit := h.Limit()
	dec := Decision{Date: d, Limit: limit}

	existing, ok := l.Get(d)
	switch {
	case !ok:
		dec.Action = ActionCreate
		dec.NewCounter = 1
	case existing.Counter < limit:
		dec.Action = ActionIncrement
		dec.NewCounter = existing.Counter + 1
	default:
		dec.Action = ActionReset
		dec.NewCounter = 0
	}

	dec.HasProgress = dec.NewCounter >= 1
	dec.IsFullyComplete = dec.NewCounter >= limit
	return dec, nil
}
