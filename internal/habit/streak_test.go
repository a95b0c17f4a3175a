package habit

import (
	"math/rand"
	"testing"

	"github.com/rnwolfe/tally/internal/day"
)

func mustDay(s string) day.Key {
	return day.MustParse(s)
}

func mustDays(ss ...string) []day.Key {
	out := make([]day.Key, len(ss))
	for i, s := range ss {
		out[i] = mustDay(s)
	}
	return out
}

func TestCalculateStreak_Empty(t *testing.T) {
	res := CalculateStreak(nil, mustDay("2026-02-26"))
	if res.Current != 0 || res.Longest != 0 {
		t.Fatalf("expected 0,0 for empty days, got %d,%d", res.Current, res.Longest)
	}
}

func TestCalculateStreak_TodayOnly(t *testing.T) {
	res := CalculateStreak(mustDays("2026-02-26"), mustDay("2026-02-26"))
	if res.Current != 1 {
		t.Errorf("current streak = %d, want 1", res.Current)
	}
	if res.Longest != 1 {
		t.Errorf("longest streak = %d, want 1", res.Longest)
	}
}

func TestCalculateStreak_YesterdayOnly_StillActive(t *testing.T) {
	res := CalculateStreak(mustDays("2026-02-25"), mustDay("2026-02-26"))
	if res.Current != 1 {
		t.Errorf("current streak = %d, want 1 (grace: completed yesterday)", res.Current)
	}
}

func TestCalculateStreak_ConsecutiveThreeDays(t *testing.T) {
	res := CalculateStreak(mustDays("2026-02-26", "2026-02-25", "2026-02-24"), mustDay("2026-02-26"))
	if res.Current != 3 {
		t.Errorf("current streak = %d, want 3", res.Current)
	}
	if res.Longest != 3 {
		t.Errorf("longest streak = %d, want 3", res.Longest)
	}
}

func TestCalculateStreak_BrokenStreak(t *testing.T) {
	// Nothing today or yesterday: current is 0 but the old run still counts.
	res := CalculateStreak(mustDays("2026-02-24", "2026-02-23"), mustDay("2026-02-26"))
	if res.Current != 0 {
		t.Errorf("current streak = %d, want 0", res.Current)
	}
	if res.Longest != 2 {
		t.Errorf("longest streak = %d, want 2", res.Longest)
	}
}

func TestCalculateStreak_LongestInPast(t *testing.T) {
	days := mustDays(
		"2026-02-26", "2026-02-25",
		"2026-02-10", "2026-02-09", "2026-02-08", "2026-02-07",
	)
	res := CalculateStreak(days, mustDay("2026-02-26"))
	if res.Current != 2 {
		t.Errorf("current streak = %d, want 2", res.Current)
	}
	if res.Longest != 4 {
		t.Errorf("longest streak = %d, want 4", res.Longest)
	}
}

func TestCalculateStreak_GapBreaksCurrent(t *testing.T) {
	// Today, then a hole on the 24th, then two more days.
	res := CalculateStreak(mustDays("2026-02-26", "2026-02-25", "2026-02-23", "2026-02-22"), mustDay("2026-02-26"))
	if res.Current != 2 {
		t.Errorf("current streak = %d, want 2", res.Current)
	}
	if res.Longest != 2 {
		t.Errorf("longest streak = %d, want 2", res.Longest)
	}
}

func TestCalculateStreak_CrossesMonthAndYear(t *testing.T) {
	res := CalculateStreak(mustDays("2025-01-01", "2024-12-31", "2024-12-30"), mustDay("2025-01-01"))
	if res.Current != 3 || res.Longest != 3 {
		t.Fatalf("got %+v, want 3/3", res)
	}

	res = CalculateStreak(mustDays("2024-03-01", "2024-02-29", "2024-02-28"), mustDay("2024-03-02"))
	if res.Current != 3 {
		t.Fatalf("leap-year run: current = %d, want 3", res.Current)
	}
}

func TestCalculateStreak_OrderAndDuplicatesIgnored(t *testing.T) {
	today := mustDay("2026-02-26")
	base := mustDays("2026-02-26", "2026-02-25", "2026-02-24", "2026-02-20", "2026-02-19")
	want := CalculateStreak(base, today)

	shuffled := append([]day.Key(nil), base...)
	shuffled = append(shuffled, base[0], base[3], base[3])
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		if got := CalculateStreak(shuffled, today); got != want {
			t.Fatalf("permutation %d: got %+v, want %+v", i, got, want)
		}
	}
}

func TestCalculateStreak_LongestNeverBelowCurrent(t *testing.T) {
	today := mustDay("2026-02-26")
	cases := [][]day.Key{
		mustDays("2026-02-26"),
		mustDays("2026-02-25", "2026-02-24"),
		mustDays("2026-01-01"),
		mustDays("2026-02-26", "2026-02-24", "2026-02-22"),
	}
	for _, days := range cases {
		res := CalculateStreak(days, today)
		if res.Longest < res.Current {
			t.Errorf("%v: longest %d < current %d", days, res.Longest, res.Current)
		}
		if res.Longest < 1 {
			t.Errorf("%v: longest = %d, want >= 1 for non-empty input", days, res.Longest)
		}
	}
}

func TestCalculateStreak_FutureDayDoesNotCountAsCurrent(t *testing.T) {
	res := CalculateStreak(mustDays("2026-03-01"), mustDay("2026-02-26"))
	if res.Current != 0 {
		t.Errorf("current = %d, want 0", res.Current)
	}
	if res.Longest != 1 {
		t.Errorf("longest = %d, want 1", res.Longest)
	}
}
