package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/rnwolfe/tally/internal/day"
	"github.com/rnwolfe/tally/internal/habit"
)

// dateFlag holds a date given on the command line. The raw text is kept and
// resolved later against the configured timezone; Set only checks the form.
type dateFlag struct {
	raw string
}

var _ pflag.Value = (*dateFlag)(nil)

func (f *dateFlag) String() string { return f.raw }

func (f *dateFlag) Set(s string) error {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "today", "yesterday":
		f.raw = strings.ToLower(s)
		return nil
	}
	if _, err := day.ParseIn(s, time.UTC); err != nil {
		return err
	}
	f.raw = s
	return nil
}

func (f *dateFlag) Type() string { return "date" }

// freqFlag parses weekday tokens ("M,W,F", "weekdays", "daily") into a
// habit.Frequency.
type freqFlag struct {
	freq habit.Frequency
	set  bool
}

var _ pflag.Value = (*freqFlag)(nil)

func (f *freqFlag) String() string {
	if !f.set {
		return ""
	}
	return f.freq.String()
}

func (f *freqFlag) Set(s string) error {
	if strings.TrimSpace(s) == "" {
		f.freq, f.set = 0, false
		return nil
	}
	freq, unknown := habit.ParseFrequency([]string{s})
	if len(unknown) > 0 {
		return fmt.Errorf("unknown weekday %s (use e.g. M,W,F, weekdays, weekends or daily)", strings.Join(unknown, ", "))
	}
	if freq.IsEmpty() {
		return fmt.Errorf("no weekdays given")
	}
	f.freq, f.set = freq, true
	return nil
}

func (f *freqFlag) Type() string { return "days" }
