package habit

import (
	"sort"
	"time"

	"github.com/rnwolfe/tally/internal/day"
)

// Completion records progress on one habit for one day.
type Completion struct {
	ID        string
	HabitID   string
	Date      day.Key
	Counter   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DataIntegrityWarning describes a duplicate completion record for the same
// day. It is not an error: the ledger keeps the later record and carries on.
type DataIntegrityWarning struct {
	HabitID string
	Date    day.Key
	Kept    Completion
	Dropped Completion
}

// LedgerOption configures BuildLedger.
type LedgerOption func(*ledgerConfig)

type ledgerConfig struct {
	onDuplicate func(DataIntegrityWarning)
}

// WithDuplicateHandler registers fn to observe duplicate records.
func WithDuplicateHandler(fn func(DataIntegrityWarning)) LedgerOption {
	return func(c *ledgerConfig) { c.onDuplicate = fn }
}

// Ledger is a read-only view over a habit's completions keyed by day.
type Ledger struct {
	byDay map[day.Key]Completion
}

// BuildLedger indexes records by day. When two records share a day the one
// appearing later in records wins.
func BuildLedger(records []Completion, opts ...LedgerOption) *Ledger {
	var cfg ledgerConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	l := &Ledger{byDay: make(map[day.Key]Completion, len(records))}
	for _, r := range records {
		if prev, ok := l.byDay[r.Date]; ok && cfg.onDuplicate != nil {
			cfg.onDuplicate(DataIntegrityWarning{
				HabitID: r.HabitID,
				Date:    r.Date,
				Kept:    r,
				Dropped: prev,
			})
		}
		l.byDay[r.Date] = r
	}
	return l
}

// Get returns the record for d, if any.
func (l *Ledger) Get(d day.Key) (Completion, bool) {
	if l == nil {
		return Completion{}, false
	}
	c, ok := l.byDay[d]
	return c, ok
}

// HasAny reports whether any record exists for d. Counter is ignored: partial
// progress counts as showing up that day.
func (l *Ledger) HasAny(d day.Key) bool {
	_, ok := l.Get(d)
	return ok
}

// Counter returns the counter recorded for d, or 0.
func (l *Ledger) Counter(d day.Key) int {
	c, _ := l.Get(d)
	return c.Counter
}

// Len returns the number of distinct days with a record.
func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.byDay)
}

// Days returns every day with a record, ascending.
func (l *Ledger) Days() []day.Key {
	if l == nil {
		return nil
	}
	days := make([]day.Key, 0, len(l.byDay))
	for d := range l.byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// Records returns the surviving records, ordered by day.
func (l *Ledger) Records() []Completion {
	days := l.Days()
	out := make([]Completion, len(days))
	for i, d := range days {
		out[i] = l.byDay[d]
	}
	return out
}
