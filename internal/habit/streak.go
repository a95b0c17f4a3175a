package habit

import (
	"sort"

	"github.com/rnwolfe/tally/internal/day"
)

// StreakResult holds current and longest streak values.
type StreakResult struct {
	Current int `json:"current_streak"`
	Longest int `json:"longest_streak"`
}

// CalculateStreak computes streaks from the days that have any completion.
//
// A streak is a run of consecutive calendar days. The current streak counts
// back from the most recent day and is only alive if that day is today or
// yesterday (the user may not have checked in yet today). The input may be in
// any order and may contain duplicates.
func CalculateStreak(days []day.Key, today day.Key) StreakResult {
	if len(days) == 0 {
		return StreakResult{}
	}

	// Dedupe and sort descending.
	seen := make(map[day.Key]struct{}, len(days))
	desc := make([]day.Key, 0, len(days))
	for _, d := range days {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		desc = append(desc, d)
	}
	sort.Slice(desc, func(i, j int) bool { return desc[i].After(desc[j]) })

	var current int
	if desc[0] == today || desc[0] == today.AddDays(-1) {
		current = 1
		for i := 1; i < len(desc); i++ {
			if desc[i-1].AddDays(-1) != desc[i] {
				break
			}
			current++
		}
	}

	longest := 1
	run := 1
	for i := 1; i < len(desc); i++ {
		if desc[i-1].AddDays(-1) == desc[i] {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}

	if current > longest {
		longest = current
	}
	return StreakResult{Current: current, Longest: longest}
}
