package habit

import (
	"math"

	"github.com/rnwolfe/tally/internal/day"
)

// Stats summarizes a habit's history as of a reference day.
type Stats struct {
	Streak                 StreakResult
	CompletedToday         bool
	FullyCompleteToday     bool
	CounterToday           int
	Limit                  int
	ScheduledToday         bool
	ScheduledDays          int
	CompletedScheduledDays int
	CompletionRate         int
	TotalCompletions       int
}

// Summarize computes Stats for h as of today.
//
// CompletionRate is the rounded percentage of scheduled days (start date up to
// min(end date, today)) that have any progress. Off-schedule records still
// count toward streaks and TotalCompletions but not toward the rate.
func Summarize(h Habit, l *Ledger, today day.Key) Stats {
	limit := h.Limit()
	st := Stats{
		Streak:           CalculateStreak(l.Days(), today),
		CounterToday:     l.Counter(today),
		Limit:            limit,
		ScheduledToday:   IsActiveOn(h, today),
		TotalCompletions: l.Len(),
	}
	st.CompletedToday = l.HasAny(today)
	st.FullyCompleteToday = st.CompletedToday && st.CounterToday >= limit

	from, to := GridBounds(h, day.Key{}, day.Key{}, today)
	for d := from; !d.After(to); d = d.AddDays(1) {
		if !IsActiveOn(h, d) {
			continue
		}
		st.ScheduledDays++
		if l.HasAny(d) {
			st.CompletedScheduledDays++
		}
	}
	if st.ScheduledDays > 0 {
		st.CompletionRate = int(math.Round(float64(st.CompletedScheduledDays) / float64(st.ScheduledDays) * 100))
	}
	return st
}
