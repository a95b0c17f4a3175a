package habit

import (
	"github.com/rnwolfe/tally/internal/day"
)

// Status is the heatmap state of one day.
type Status int

const (
	StatusNotScheduled Status = iota
	StatusScheduledIncomplete
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusScheduledIncomplete:
		return "scheduled"
	default:
		return "not-scheduled"
	}
}

// GridEntry is one cell of the activity grid.
type GridEntry struct {
	Date    day.Key
	Status  Status
	Counter int
}

// GridBounds returns the clamped [from, to] range BuildGrid walks. A zero from
// means the habit's start date; a zero to means today. to never exceeds today
// or the habit's end date, and from never precedes the start date.
func GridBounds(h Habit, from, to, today day.Key) (day.Key, day.Key) {
	if from.IsZero() {
		from = h.StartDate
	}
	if to.IsZero() {
		to = today
	}
	from = day.Max(from, h.StartDate)
	to = day.Min(to, today)
	if h.EndDate != nil {
		to = day.Min(to, *h.EndDate)
	}
	return from, to
}

// BuildGrid returns one entry per calendar day in the clamped range, with no
// gaps. A day with any record is Completed even if it was off-schedule when
// recorded (the schedule may have been edited since). An empty range yields
// an empty, non-nil slice.
func BuildGrid(h Habit, l *Ledger, from, to, today day.Key) []GridEntry {
	from, to = GridBounds(h, from, to, today)
	if from.After(to) {
		return []GridEntry{}
	}

	out := make([]GridEntry, 0, from.DaysUntil(to)+1)
	for d := from; !d.After(to); d = d.AddDays(1) {
		e := GridEntry{Date: d, Counter: l.Counter(d)}
		switch {
		case l.HasAny(d):
			e.Status = StatusCompleted
		case IsActiveOn(h, d):
			e.Status = StatusScheduledIncomplete
		default:
			e.Status = StatusNotScheduled
		}
		out = append(out, e)
	}
	return out
}
