package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rnwolfe/tally/internal/day"
	"github.com/rnwolfe/tally/internal/habit"
	"github.com/rnwolfe/tally/internal/tui"
	"github.com/rnwolfe/tally/internal/ui"
)

var doneCmd = &cobra.Command{
	Use:     "done [habit]",
	Aliases: []string{"do", "check"},
	Short:   "Check off a habit for today (or --date)",
	Long: `Check off a habit. Each call moves the day one step: a habit with
--limit 3 goes 1/3, 2/3, 3/3, and the next call resets the day.

Without a habit, pick one from the day's schedule.

  tally done run
  tally done water --date yesterday`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDone,
}

var doneDate dateFlag

func init() {
	doneCmd.Flags().Var(&doneDate, "date", "Day to toggle (YYYY-MM-DD, today, yesterday)")
}

func runDone(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()
	ctx := ctxOf(cmd)

	d, err := e.parseDate(doneDate.raw)
	if err != nil {
		return err
	}
	today := e.today()

	var h *habit.Habit
	if len(args) == 1 {
		if h, err = e.habits.Resolve(ctx, args[0]); err != nil {
			return err
		}
	} else {
		if h, err = e.pickHabit(cmd, d); err != nil || h == nil {
			return err
		}
	}

	dec, err := e.habits.ApplyToggle(ctx, h.ID, d, today)
	if err != nil {
		var nt *habit.NotToggleableError
		if errors.As(err, &nt) {
			e.log.Debug("toggle rejected", "habit_id", h.ID, "date", d, "reason", nt.Reason)
		}
		return err
	}
	e.log.Info("habit toggled", "habit_id", h.ID, "date", d, "action", dec.Action, "counter", dec.NewCounter)

	printDecision(*h, dec, today)
	if dec.HasProgress && d.Equal(today) {
		l, err := e.ledger(ctx, h.ID)
		if err != nil {
			return err
		}
		if s := habit.CalculateStreak(l.Days(), today); s.Current > 1 {
			ui.Puts("  " + ui.Streak(s.Current))
		}
	}
	return nil
}

func printDecision(h habit.Habit, dec habit.Decision, today day.Key) {
	when := ""
	if !dec.Date.Equal(today) {
		when = " " + ui.Muted.Render("("+dec.Date.String()+")")
	}
	ring := ui.StyledRing(dec.NewCounter, dec.Limit)
	switch {
	case dec.Action == habit.ActionReset:
		ui.Inf(fmt.Sprintf("Reset %s%s", h.Label(), when))
	case dec.IsFullyComplete:
		ui.Ok(fmt.Sprintf("%s %s %s%s", ring, h.Label(), ui.Count(dec.NewCounter, dec.Limit), when))
	default:
		ui.Puts(fmt.Sprintf("  %s %s %s%s", ring, h.Label(), ui.Count(dec.NewCounter, dec.Limit), when))
	}
}

// pickHabit asks which of the day's habits to toggle. It returns nil when the
// user backs out.
func (e *env) pickHabit(cmd *cobra.Command, d day.Key) (*habit.Habit, error) {
	if !ui.IsStdinTTY() || !ui.IsStdoutTTY() {
		return nil, errors.New("which habit? (pass a name or ID)")
	}
	ctx := ctxOf(cmd)
	habits, err := e.habits.List(ctx, habit.ListOptions{})
	if err != nil {
		return nil, err
	}
	var choices []tui.Choice
	for _, h := range habits {
		if !habit.IsActiveOn(h, d) {
			continue
		}
		l, err := e.ledger(ctx, h.ID)
		if err != nil {
			return nil, err
		}
		choices = append(choices, tui.Choice{Habit: h, Counter: l.Counter(d)})
	}
	if len(choices) == 0 {
		ui.Inf("Nothing scheduled on " + d.String())
		return nil, nil
	}
	return tui.PickHabit(fmt.Sprintf("Toggle which habit? (%s)", d), choices)
}
