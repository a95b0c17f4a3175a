package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/rnwolfe/tally/internal/day"
	"github.com/rnwolfe/tally/internal/habit"
)

func twoWeeks() []habit.GridEntry {
	h := habit.Habit{
		StartDate: day.MustParse("2024-01-01"),
		Frequency: habit.FrequencyOf(time.Monday, time.Wednesday, time.Friday),
	}
	l := habit.BuildLedger([]habit.Completion{
		{Date: day.MustParse("2024-01-01"), Counter: 1},
		{Date: day.MustParse("2024-01-05"), Counter: 1},
		{Date: day.MustParse("2024-01-10"), Counter: 1},
	})
	return habit.BuildGrid(h, l, day.Key{}, day.Key{}, day.MustParse("2024-01-14"))
}

func TestHeatmap_Layout(t *testing.T) {
	out := Heatmap(twoWeeks(), HeatmapOptions{Limit: 1})
	lines := strings.Split(out, "\n")
	if len(lines) != 8 {
		t.Fatalf("expected header + 7 rows, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "Jan") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Su") || !strings.HasPrefix(lines[2], "Mo") {
		t.Errorf("expected Sunday-first rows:\n%s", out)
	}

	if n := strings.Count(out, CellDone); n != 3 {
		t.Errorf("done cells = %d, want 3", n)
	}
	// Scheduled days are 1, 3, 5, 8, 10, 12; three were done.
	if n := strings.Count(out, CellMissed); n != 3 {
		t.Errorf("missed cells = %d, want 3", n)
	}
	if n := strings.Count(out, CellOff); n != 8 {
		t.Errorf("off cells = %d, want 8", n)
	}
}

func TestHeatmap_MondayFirst(t *testing.T) {
	out := Heatmap(twoWeeks(), HeatmapOptions{MondayFirst: true})
	lines := strings.Split(out, "\n")
	if !strings.HasPrefix(lines[1], "Mo") || !strings.HasPrefix(lines[7], "Su") {
		t.Errorf("expected Monday-first rows:\n%s", out)
	}
	// With Monday first, 2024-01-01 starts the first column: two full weeks.
	if got := strings.Count(lines[1], CellDone); got != 1 {
		t.Errorf("Monday row done cells = %d, want 1 (%q)", got, lines[1])
	}
}

func TestHeatmap_Empty(t *testing.T) {
	if !strings.Contains(Heatmap(nil, HeatmapOptions{}), "no days") {
		t.Error("expected placeholder for empty grid")
	}
}

func TestStrip(t *testing.T) {
	entries := twoWeeks()[:3]
	got := Strip(entries, 1)
	if got != CellDone+" "+CellOff+" "+CellMissed {
		t.Errorf("Strip = %q", got)
	}
}
