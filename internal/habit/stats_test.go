package habit

import "testing"

func TestSummarize(t *testing.T) {
	h := mwf("2024-01-01")
	h.LimitCounter = 2
	today := mustDay("2024-01-08") // Monday

	l := BuildLedger([]Completion{
		{Date: mustDay("2024-01-01"), Counter: 2},
		{Date: mustDay("2024-01-03"), Counter: 1},
		{Date: mustDay("2024-01-06"), Counter: 1}, // Saturday, off-schedule
		{Date: mustDay("2024-01-08"), Counter: 1},
	})

	got := Summarize(h, l, today)

	// Scheduled: 01, 03, 05, 08. With progress: 01, 03, 08.
	want := Stats{
		Streak:                 StreakResult{Current: 1, Longest: 1},
		CompletedToday:         true,
		FullyCompleteToday:     false,
		CounterToday:           1,
		Limit:                  2,
		ScheduledToday:         true,
		ScheduledDays:          4,
		CompletedScheduledDays: 3,
		CompletionRate:         75,
		TotalCompletions:       4,
	}
	if got != want {
		t.Errorf("Summarize() = %+v\nwant %+v", got, want)
	}
}

func TestSummarize_NothingScheduled(t *testing.T) {
	h := mwf("2024-02-01")
	st := Summarize(h, nil, mustDay("2024-01-15"))
	if st.ScheduledDays != 0 {
		t.Errorf("ScheduledDays = %d, want 0", st.ScheduledDays)
	}
	if st.CompletionRate != 0 {
		t.Errorf("CompletionRate = %d, want 0", st.CompletionRate)
	}
	if st.Streak != (StreakResult{}) {
		t.Errorf("Streak = %+v, want zero", st.Streak)
	}
}

func TestSummarize_RateRoundsAndRespectsEndDate(t *testing.T) {
	h := Habit{StartDate: mustDay("2024-01-01"), EndDate: ptr(mustDay("2024-01-03")), Frequency: EveryDay}
	l := BuildLedger([]Completion{{Date: mustDay("2024-01-01"), Counter: 1}})
	st := Summarize(h, l, mustDay("2024-03-01"))
	if st.ScheduledDays != 3 {
		t.Errorf("ScheduledDays = %d, want 3", st.ScheduledDays)
	}
	if st.CompletionRate != 33 {
		t.Errorf("CompletionRate = %d, want 33", st.CompletionRate)
	}
	if st.ScheduledToday {
		t.Error("ScheduledToday = true after the end date")
	}
}
