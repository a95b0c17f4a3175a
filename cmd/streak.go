package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rnwolfe/tally/internal/habit"
	"github.com/rnwolfe/tally/internal/ui"
)

var streakCmd = &cobra.Command{
	Use:   "streak [habit]",
	Short: "Show current and best streaks",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStreak,
}

func runStreak(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()
	ctx := ctxOf(cmd)
	today := e.today()

	var habits []habit.Habit
	if len(args) == 1 {
		h, err := e.habits.Resolve(ctx, args[0])
		if err != nil {
			return err
		}
		habits = []habit.Habit{*h}
	} else {
		if habits, err = e.habits.List(ctx, habit.ListOptions{}); err != nil {
			return err
		}
	}
	if len(habits) == 0 {
		ui.Puts("  No habits yet.")
		return nil
	}

	width := 0
	for _, h := range habits {
		width = max(width, len([]rune(h.Label())))
	}
	ui.Puts("")
	for _, h := range habits {
		l, err := e.ledger(ctx, h.ID)
		if err != nil {
			return err
		}
		s := habit.CalculateStreak(l.Days(), today)
		name := h.Label() + strings.Repeat(" ", width-len([]rune(h.Label())))
		current := ui.Muted.Render("no streak")
		if s.Current > 0 {
			current = ui.Streak(s.Current)
		}
		ui.Putsf("  %s  %s  %s", name, current, ui.Muted.Render(fmt.Sprintf("best %d", s.Longest)))
	}
	ui.Puts("")
	return nil
}
