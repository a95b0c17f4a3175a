package ui

import "github.com/charmbracelet/lipgloss"

// tally's palette: leafy greens for progress, warm ambers for streaks.
var (
	Leaf    = lipgloss.Color("#56D364")
	Moss    = lipgloss.Color("#2EA043")
	Fern    = lipgloss.Color("#196C2E")
	Sprout  = lipgloss.Color("#0E4429")
	Amber   = lipgloss.Color("#FFBF00")
	Ember   = lipgloss.Color("#FF7B29")
	Ruby    = lipgloss.Color("#E0115F")
	Sky     = lipgloss.Color("#58A6FF")
	Dim     = lipgloss.Color("#666666")
	Faint   = lipgloss.Color("#3A3A3A")
	Bright  = lipgloss.Color("#FFFFFF")
	Subtle  = lipgloss.Color("#AAAAAA")

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Leaf)

	Subtitle = lipgloss.NewStyle().
			Foreground(Amber)

	Success = lipgloss.NewStyle().
		Foreground(Leaf)

	Error = lipgloss.NewStyle().
		Foreground(Ruby)

	Warning = lipgloss.NewStyle().
		Foreground(Amber)

	Info = lipgloss.NewStyle().
		Foreground(Sky)

	Muted = lipgloss.NewStyle().
		Foreground(Dim)

	Accent = lipgloss.NewStyle().
		Foreground(Ember).
		Bold(true)

	Banner = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Moss).
		Padding(0, 1)

	KeyStyle = lipgloss.NewStyle().
			Foreground(Amber).
			Bold(true)

	ValueStyle = lipgloss.NewStyle().
			Foreground(Bright)
)

const (
	IconTally  = "𝍸 "
	IconHabit  = "🌱"
	IconGoal   = "🎯"
	IconDone   = "✅"
	IconFire   = "🔥"
	IconStar   = "⭐"
	IconLock   = "🔒"
	IconServer = "🛰 "
	IconWarn   = "⚠️ "
	IconError  = "✗ "
	IconOk     = "✓ "
	IconArrow  = "→"
	IconDot    = "·"
)
