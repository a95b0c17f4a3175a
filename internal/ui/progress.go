package ui

import (
	"fmt"
	"strings"
)

var rings = []string{"○", "◔", "◑", "◕", "●"}

// Ring renders counter/limit as a single quarter-step glyph. Any progress
// shows at least a quarter; only a full count shows a filled circle.
func Ring(counter, limit int) string {
	if limit < 1 {
		limit = 1
	}
	switch {
	case counter <= 0:
		return rings[0]
	case counter >= limit:
		return rings[4]
	}
	idx := counter * 4 / limit
	if idx < 1 {
		idx = 1
	}
	if idx > 3 {
		idx = 3
	}
	return rings[idx]
}

// StyledRing is Ring colored by state.
func StyledRing(counter, limit int) string {
	r := Ring(counter, limit)
	switch {
	case counter >= max(limit, 1):
		return Success.Render(r)
	case counter > 0:
		return Warning.Render(r)
	default:
		return Muted.Render(r)
	}
}

// Count renders "2/3" for multi-count habits and "" for single ones.
func Count(counter, limit int) string {
	if limit <= 1 {
		return ""
	}
	return fmt.Sprintf("%d/%d", counter, limit)
}

// Bar renders a fixed-width progress bar.
func Bar(counter, limit, width int) string {
	if limit < 1 {
		limit = 1
	}
	if width < 1 {
		width = 10
	}
	filled := counter * width / limit
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return Success.Render(strings.Repeat("█", filled)) + Muted.Render(strings.Repeat("░", width-filled))
}

// Streak renders a streak count with a flame once it is going.
func Streak(n int) string {
	if n == 0 {
		return Muted.Render("0")
	}
	return Accent.Render(fmt.Sprintf("%d %s", n, IconFire))
}
