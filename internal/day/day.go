// Package day provides a timezone-agnostic calendar day key.
//
// Every date that enters tally goes through this package exactly once. After
// that, the rest of the code only compares and steps Keys, so a time-of-day or
// a UTC offset can never shift a completion onto the neighbouring day.
package day

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layout is the canonical text form of a Key.
const Layout = "2006-01-02"

// ErrInvalidDate matches every *InvalidDateError via errors.Is.
var ErrInvalidDate = errors.New("invalid date")

// InvalidDateError reports input that could not be read as a calendar date.
type InvalidDateError struct {
	Input string
	Err   error
}

func (e *InvalidDateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid date %q: %v", e.Input, e.Err)
	}
	return fmt.Sprintf("invalid date %q", e.Input)
}

func (e *InvalidDateError) Unwrap() error { return e.Err }

func (e *InvalidDateError) Is(target error) bool { return target == ErrInvalidDate }

// Key identifies a calendar day. The zero Key means "unset".
// Keys are comparable with == and ordered by Compare.
type Key struct {
	Year  int
	Month time.Month
	Day   int
}

// New returns the Key for the given components, normalizing overflow
// (e.g. Jan 32 becomes Feb 1).
func New(year int, month time.Month, d int) Key {
	return FromTime(time.Date(year, month, d, 0, 0, 0, 0, time.UTC))
}

// FromTime reads the calendar day of t in t's own location.
func FromTime(t time.Time) Key {
	y, m, d := t.Date()
	return Key{Year: y, Month: m, Day: d}
}

// Today returns the current day in loc. A nil loc means time.Local.
func Today(loc *time.Location) Key {
	if loc == nil {
		loc = time.Local
	}
	return FromTime(time.Now().In(loc))
}

// Parse reads s as a day in the local timezone. See ParseIn.
func Parse(s string) (Key, error) {
	return ParseIn(s, time.Local)
}

// ParseIn reads s as a calendar day. Plain dates (YYYY-MM-DD, YYYY/MM/DD) are
// taken literally. Timestamps carrying an offset are first moved into loc and
// then truncated to the day, so "2024-01-01T23:30:00-05:00" read in
// America/New_York is Jan 1, not Jan 2.
func ParseIn(s string, loc *time.Location) (Key, error) {
	if loc == nil {
		loc = time.Local
	}
	in := strings.TrimSpace(s)
	if in == "" {
		return Key{}, &InvalidDateError{Input: s, Err: errors.New("empty")}
	}

	for _, layout := range []string{Layout, "2006/01/02"} {
		if t, err := time.Parse(layout, in); err == nil {
			return FromTime(t), nil
		}
	}

	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, in); err == nil {
			return FromTime(t.In(loc)), nil
		}
	}

	// "YYYY-MM-DD HH:MM:SS" is what SQLite's CURRENT_TIMESTAMP produces (UTC).
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", in, time.UTC); err == nil {
		return FromTime(t.In(loc)), nil
	}

	return Key{}, &InvalidDateError{Input: s}
}

// MustParse is Parse for fixtures and constants. It panics on bad input.
func MustParse(s string) Key {
	k, err := ParseIn(s, time.UTC)
	if err != nil {
		panic(err)
	}
	return k
}

// IsZero reports whether k is unset.
func (k Key) IsZero() bool { return k == Key{} }

// Time returns midnight of k in loc. A nil loc means UTC.
func (k Key) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(k.Year, k.Month, k.Day, 0, 0, 0, 0, loc)
}

// Equal reports whether k and o are the same day.
func (k Key) Equal(o Key) bool { return k == o }

// Compare returns -1, 0 or +1.
func (k Key) Compare(o Key) int {
	switch {
	case k.Year != o.Year:
		return cmpInt(k.Year, o.Year)
	case k.Month != o.Month:
		return cmpInt(int(k.Month), int(o.Month))
	default:
		return cmpInt(k.Day, o.Day)
	}
}

func (k Key) Before(o Key) bool { return k.Compare(o) < 0 }

func (k Key) After(o Key) bool { return k.Compare(o) > 0 }

// AddDays steps n calendar days (n may be negative).
func (k Key) AddDays(n int) Key {
	return FromTime(k.Time(time.UTC).AddDate(0, 0, n))
}

// DaysUntil returns the number of calendar days from k to o (negative when o
// is earlier). Computed in UTC so DST transitions never produce 23h days.
func (k Key) DaysUntil(o Key) int {
	return int(o.Time(time.UTC).Sub(k.Time(time.UTC)).Hours() / 24)
}

// Weekday returns the day of the week.
func (k Key) Weekday() time.Weekday {
	return k.Time(time.UTC).Weekday()
}

// String renders YYYY-MM-DD, or "" for the zero Key.
func (k Key) String() string {
	if k.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", k.Year, int(k.Month), k.Day)
}

// Min returns the earlier of a and b.
func Min(a, b Key) Key {
	if b.Before(a) {
		return b
	}
	return a
}

// Max returns the later of a and b.
func Max(a, b Key) Key {
	if b.After(a) {
		return b
	}
	return a
}

func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Key) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*k = Key{}
		return nil
	}
	parsed, err := ParseIn(string(b), time.Local)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Value stores a Key as YYYY-MM-DD text. The zero Key is stored as NULL.
func (k Key) Value() (driver.Value, error) {
	if k.IsZero() {
		return nil, nil
	}
	return k.String(), nil
}

// Scan reads TEXT or DATETIME columns.
func (k *Key) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*k = Key{}
		return nil
	case string:
		return k.UnmarshalText([]byte(v))
	case []byte:
		return k.UnmarshalText(v)
	case time.Time:
		*k = FromTime(v)
		return nil
	default:
		return fmt.Errorf("day: cannot scan %T", src)
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
