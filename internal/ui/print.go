package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Out and ErrOut are where the printers write. Tests swap them for buffers.
var (
	Out    io.Writer = os.Stdout
	ErrOut io.Writer = os.Stderr
)

// Puts prints a styled line to stdout.
func Puts(s string) {
	fmt.Fprintln(Out, s)
}

// Putsf prints a formatted styled line to stdout.
func Putsf(format string, args ...any) {
	fmt.Fprintf(Out, format+"\n", args...)
}

// Warn prints a warning message.
func Warn(msg string) {
	fmt.Fprintln(Out, Warning.Render(IconWarn+msg))
}

// Err prints an error message to stderr.
func Err(msg string) {
	fmt.Fprintln(ErrOut, Error.Bold(true).Render(IconError+msg))
}

// Ok prints a success message.
func Ok(msg string) {
	fmt.Fprintln(Out, Success.Render(IconOk+msg))
}

// Inf prints an info message.
func Inf(msg string) {
	fmt.Fprintln(Out, Info.Render("  "+msg))
}

// Header prints a section header.
func Header(s string) {
	fmt.Fprintln(Out)
	fmt.Fprintln(Out, Title.Render(s))
	fmt.Fprintln(Out, Muted.Render(strings.Repeat("─", len([]rune(s))+2)))
}

// Tip prints a helpful tip.
func Tip(msg string) {
	fmt.Fprintln(Out)
	fmt.Fprintln(Out, Muted.Render("  tip: "+msg))
}

// Kv prints a key-value pair, padded.
func Kv(key string, value string) {
	k := KeyStyle.Render(fmt.Sprintf("  %-12s", key))
	v := ValueStyle.Render(value)
	fmt.Fprintf(Out, "%s %s\n", k, v)
}

// Greet returns the dashboard greeting.
func Greet(name string) string {
	if name == "" {
		return IconTally + "Hey there!"
	}
	return fmt.Sprintf("%sHey %s!", IconTally, name)
}

// Plural returns "1 day" / "3 days".
func Plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
