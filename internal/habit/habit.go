// Package habit implements tally's habit engine: schedule evaluation, the
// per-day completion ledger, the toggle state machine, streaks and the
// activity grid, plus the SQLite store that applies toggle decisions.
//
// Everything except Store is pure. Functions that need "today" take it as a
// parameter; only callers at the edge (CLI, TUI, API) read the clock.
package habit

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rnwolfe/tally/internal/day"
)

// DefaultLimit is the per-day counter limit when none is set.
const DefaultLimit = 1

// MaxLimit caps the per-day counter limit accepted from user input.
const MaxLimit = 10

// Habit is a recurring activity definition.
type Habit struct {
	ID           string
	Name         string
	Emoji        string
	Color        string
	Motivation   string
	StartDate    day.Key
	EndDate      *day.Key
	Frequency    Frequency
	LimitCounter int
	Reminder     bool
	Clock        string
	GoalID       *string
	Archived     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Limit returns the effective per-day counter limit (never below 1).
func (h Habit) Limit() int {
	if h.LimitCounter < 1 {
		return DefaultLimit
	}
	return h.LimitCounter
}

// Label returns the display name with the emoji prefix, if any.
func (h Habit) Label() string {
	if h.Emoji == "" {
		return h.Name
	}
	return h.Emoji + " " + h.Name
}

// Validate checks user-supplied fields. An end date before the start date is
// allowed here (the habit is simply never active); callers that want to
// reject it do so explicitly.
func (h Habit) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return fmt.Errorf("habit name must not be empty")
	}
	if h.StartDate.IsZero() {
		return fmt.Errorf("habit start date is required")
	}
	if h.LimitCounter < 0 || h.LimitCounter > MaxLimit {
		return fmt.Errorf("limit must be between 1 and %d, got %d", MaxLimit, h.LimitCounter)
	}
	if h.Clock != "" {
		if _, err := time.Parse("15:04", h.Clock); err != nil {
			return fmt.Errorf("invalid reminder time %q (expected HH:MM)", h.Clock)
		}
	}
	return nil
}

// Frequency is a set of weekdays, stored as a bitmask indexed by time.Weekday.
type Frequency uint8

// EveryDay is the frequency with all seven weekdays set.
const EveryDay Frequency = 1<<7 - 1

// weekdayTokens are the canonical tokens, indexed by time.Weekday.
var weekdayTokens = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// tokenAliases maps lowercased input tokens to weekdays, including the
// one and two-letter shorthands.
var tokenAliases = map[string]time.Weekday{
	"s": time.Sunday, "su": time.Sunday, "sun": time.Sunday, "sunday": time.Sunday,
	"m": time.Monday, "mo": time.Monday, "mon": time.Monday, "monday": time.Monday,
	"t": time.Tuesday, "tu": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"w": time.Wednesday, "we": time.Wednesday, "wed": time.Wednesday, "wednesday": time.Wednesday,
	"th": time.Thursday, "thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"f": time.Friday, "fr": time.Friday, "fri": time.Friday, "friday": time.Friday,
	"sa": time.Saturday, "sat": time.Saturday, "saturday": time.Saturday,
}

// FrequencyOf builds a Frequency from weekdays. Duplicates collapse.
func FrequencyOf(days ...time.Weekday) Frequency {
	var f Frequency
	for _, d := range days {
		if d >= time.Sunday && d <= time.Saturday {
			f |= 1 << uint(d)
		}
	}
	return f
}

// ParseFrequency reads weekday tokens. Unrecognized tokens never match any
// day; they are returned so the caller can warn about them. Tokens may also
// be comma-separated inside a single argument, and "daily"/"weekdays"/
// "weekends" expand to their sets.
func ParseFrequency(tokens []string) (Frequency, []string) {
	var f Frequency
	var unknown []string
	for _, raw := range tokens {
		for _, tok := range strings.Split(raw, ",") {
			tok = strings.ToLower(strings.TrimSpace(tok))
			if tok == "" {
				continue
			}
			switch tok {
			case "daily", "everyday", "all":
				f |= EveryDay
				continue
			case "weekdays":
				f |= FrequencyOf(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)
				continue
			case "weekends":
				f |= FrequencyOf(time.Saturday, time.Sunday)
				continue
			}
			if wd, ok := tokenAliases[tok]; ok {
				f |= FrequencyOf(wd)
				continue
			}
			unknown = append(unknown, tok)
		}
	}
	return f, unknown
}

// Has reports whether wd is in the set.
func (f Frequency) Has(wd time.Weekday) bool {
	if wd < time.Sunday || wd > time.Saturday {
		return false
	}
	return f&(1<<uint(wd)) != 0
}

// IsEmpty reports whether no weekday is set.
func (f Frequency) IsEmpty() bool { return f&EveryDay == 0 }

// Days returns the weekdays in the set, Sunday first.
func (f Frequency) Days() []time.Weekday {
	var days []time.Weekday
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if f.Has(wd) {
			days = append(days, wd)
		}
	}
	return days
}

// Tokens returns the canonical tokens ("Mon", "Wed", ...), Sunday first.
func (f Frequency) Tokens() []string {
	days := f.Days()
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = weekdayTokens[d]
	}
	return out
}

// String renders a compact, human-friendly label.
func (f Frequency) String() string {
	switch f & EveryDay {
	case 0:
		return "never"
	case EveryDay:
		return "daily"
	case FrequencyOf(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday):
		return "weekdays"
	case FrequencyOf(time.Saturday, time.Sunday):
		return "weekends"
	}
	return strings.Join(f.Tokens(), ",")
}

// Encode returns the storage form: canonical tokens joined by commas.
func (f Frequency) Encode() string {
	return strings.Join(f.Tokens(), ",")
}

// DecodeFrequency is the inverse of Encode. Unknown tokens are dropped.
func DecodeFrequency(s string) Frequency {
	if s == "" {
		return 0
	}
	f, _ := ParseFrequency([]string{s})
	return f
}

// IsActiveOn reports whether h is scheduled on d: d lies within
// [StartDate, EndDate] and its weekday is in the frequency set. An end date
// before the start date makes the habit never active.
func IsActiveOn(h Habit, d day.Key) bool {
	if d.Before(h.StartDate) {
		return false
	}
	if h.EndDate != nil && d.After(*h.EndDate) {
		return false
	}
	return h.Frequency.Has(d.Weekday())
}

// ActiveDays returns the scheduled days of h within [from, to], ascending.
func ActiveDays(h Habit, from, to day.Key) []day.Key {
	var out []day.Key
	for d := from; !d.After(to); d = d.AddDays(1) {
		if IsActiveOn(h, d) {
			out = append(out, d)
		}
	}
	return out
}

// SortByName orders habits by case-insensitive name, then ID.
func SortByName(habits []Habit) {
	sort.SliceStable(habits, func(i, j int) bool {
		a, b := strings.ToLower(habits[i].Name), strings.ToLower(habits[j].Name)
		if a != b {
			return a < b
		}
		return habits[i].ID < habits[j].ID
	})
}
