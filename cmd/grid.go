package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rnwolfe/tally/internal/day"
	"github.com/rnwolfe/tally/internal/habit"
	"github.com/rnwolfe/tally/internal/ui"
)

var gridCmd = &cobra.Command{
	Use:     "grid <habit>",
	Aliases: []string{"heatmap"},
	Short:   "Show a habit's activity heatmap",
	Long: `Show a habit's activity heatmap, one column per week.

By default the last --weeks weeks up to today are shown. --from and --to pick
an explicit range; the range is clamped to the habit's start and end dates.`,
	Args: cobra.ExactArgs(1),
	RunE: runGrid,
}

var (
	gridFrom  dateFlag
	gridTo    dateFlag
	gridWeeks int
)

func init() {
	gridCmd.Flags().Var(&gridFrom, "from", "First day (YYYY-MM-DD)")
	gridCmd.Flags().Var(&gridTo, "to", "Last day (YYYY-MM-DD, default today)")
	gridCmd.Flags().IntVarP(&gridWeeks, "weeks", "w", 20, "Weeks to show when --from is not set")
}

func runGrid(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()
	ctx := ctxOf(cmd)

	h, err := e.habits.Resolve(ctx, args[0])
	if err != nil {
		return err
	}
	today := e.today()

	var from, to day.Key
	if gridTo.raw != "" {
		if to, err = e.parseDate(gridTo.raw); err != nil {
			return err
		}
	} else {
		to = today
	}
	if gridFrom.raw != "" {
		if from, err = e.parseDate(gridFrom.raw); err != nil {
			return err
		}
	} else {
		weeks := gridWeeks
		if weeks < 1 {
			return fmt.Errorf("--weeks must be at least 1")
		}
		if !cmd.Flags().Changed("weeks") {
			// Two columns per week after the weekday labels.
			weeks = max(4, min(weeks, (ui.Width(80)-6)/2))
		}
		from = to.AddDays(-7*weeks + 1)
	}
	if to.Before(from) {
		return fmt.Errorf("--to %s is before --from %s", to, from)
	}

	l, err := e.ledger(ctx, h.ID)
	if err != nil {
		return err
	}
	from, to = habit.GridBounds(*h, from, to, today)
	entries := habit.BuildGrid(*h, l, from, to, today)

	ui.Header(h.Label())
	ui.Puts(ui.Muted.Render(fmt.Sprintf("  %s → %s · %s", from, to, describeSchedule(*h))))
	ui.Puts("")
	if len(entries) == 0 {
		ui.Puts("  Nothing to show in this range.")
		return nil
	}
	ui.Puts(ui.Heatmap(entries, ui.HeatmapOptions{MondayFirst: e.cfg.Habits.WeekStartsMonday(), Limit: h.Limit()}))
	ui.Puts(ui.Legend())
	ui.Puts("")
	return nil
}
