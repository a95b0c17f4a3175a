package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTerminal reports whether f is connected to a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// IsStdoutTTY returns true when stdout is connected to a terminal.
func IsStdoutTTY() bool { return IsTerminal(os.Stdout) }

// IsStdinTTY returns true when stdin is connected to a terminal.
func IsStdinTTY() bool { return IsTerminal(os.Stdin) }

// ConfigureColor disables styling when stdout is not a terminal or NO_COLOR
// is set, so piped output stays plain text.
func ConfigureColor() {
	if _, ok := os.LookupEnv("NO_COLOR"); ok || !IsStdoutTTY() {
		SetPlain()
	}
}

// SetPlain forces every style to render without ANSI sequences.
func SetPlain() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// Width returns the terminal width, or fallback when it cannot be read.
func Width(fallback int) int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}
