package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rnwolfe/tally/internal/day"
	"github.com/rnwolfe/tally/internal/habit"
)

// Heatmap glyphs.
const (
	CellDone    = "■"
	CellMissed  = "□"
	CellOff     = "·"
	CellOutside = " "
)

// HeatmapOptions controls heatmap layout.
type HeatmapOptions struct {
	// MondayFirst puts Monday on the top row instead of Sunday.
	MondayFirst bool
	// Limit scales completed-cell intensity by counter/limit.
	Limit int
}

var shades = []lipgloss.Color{Sprout, Fern, Moss, Leaf}

func shade(counter, limit int) lipgloss.Style {
	if limit <= 1 || counter >= limit {
		return lipgloss.NewStyle().Foreground(Leaf)
	}
	idx := counter * (len(shades) - 1) / limit
	return lipgloss.NewStyle().Foreground(shades[idx])
}

func cell(e habit.GridEntry, limit int) string {
	switch e.Status {
	case habit.StatusCompleted:
		return shade(e.Counter, limit).Render(CellDone)
	case habit.StatusScheduledIncomplete:
		return Muted.Render(CellMissed)
	default:
		return lipgloss.NewStyle().Foreground(Faint).Render(CellOff)
	}
}

// Heatmap renders grid entries as a calendar: one row per weekday, one
// column per week, with month labels above the columns. Days outside the
// entries' range are blank.
func Heatmap(entries []habit.GridEntry, opts HeatmapOptions) string {
	if len(entries) == 0 {
		return Muted.Render("  (no days to show)")
	}

	byDay := make(map[day.Key]habit.GridEntry, len(entries))
	for _, e := range entries {
		byDay[e.Date] = e
	}

	first := time.Sunday
	if opts.MondayFirst {
		first = time.Monday
	}
	start := entries[0].Date
	start = start.AddDays(-((int(start.Weekday()) - int(first) + 7) % 7))
	end := entries[len(entries)-1].Date
	weeks := start.DaysUntil(end)/7 + 1

	const labelWidth = 4
	var b strings.Builder

	// Month header: a label where a column's first day starts a new month.
	header := []rune(strings.Repeat(" ", labelWidth+weeks*2))
	lastMonth := time.Month(0)
	nextFree := 0
	for w := 0; w < weeks; w++ {
		col := start.AddDays(w * 7)
		if col.Before(entries[0].Date) {
			col = entries[0].Date
		}
		if col.Month == lastMonth {
			continue
		}
		lastMonth = col.Month
		pos := labelWidth + w*2
		if pos < nextFree {
			continue
		}
		label := []rune(col.Month.String()[:3])
		for i, r := range label {
			if pos+i < len(header) {
				header[pos+i] = r
			}
		}
		nextFree = pos + len(label) + 1
	}
	b.WriteString(Muted.Render(strings.TrimRight(string(header), " ")))
	b.WriteByte('\n')

	for row := 0; row < 7; row++ {
		wd := time.Weekday((int(first) + row) % 7)
		b.WriteString(Muted.Render(wd.String()[:2] + "  "))
		for w := 0; w < weeks; w++ {
			d := start.AddDays(w*7 + row)
			e, ok := byDay[d]
			if ok {
				b.WriteString(cell(e, opts.Limit))
			} else {
				b.WriteString(CellOutside)
			}
			if w < weeks-1 {
				b.WriteByte(' ')
			}
		}
		if row < 6 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Legend explains the heatmap glyphs.
func Legend() string {
	return Muted.Render("  ") +
		Success.Render(CellDone) + Muted.Render(" done  ") +
		Muted.Render(CellMissed+" missed  ") +
		lipgloss.NewStyle().Foreground(Faint).Render(CellOff) + Muted.Render(" not scheduled")
}

// Strip renders entries as a single line of cells, oldest first. Used for
// the compact last-week view in lists.
func Strip(entries []habit.GridEntry, limit int) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(cell(e, limit))
	}
	return b.String()
}
