package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/rnwolfe/tally/internal/goal"
	"github.com/rnwolfe/tally/internal/habit"
	"github.com/rnwolfe/tally/internal/ui"
)

var goalCmd = &cobra.Command{
	Use:     "goal",
	Aliases: []string{"goals", "g"},
	Short:   "Group habits under longer-term goals",
	RunE:    runGoalList,
}

var goalAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a goal",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runGoalAdd,
}

var goalListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List goals and their habits",
	Args:    cobra.NoArgs,
	RunE:    runGoalList,
}

var goalLinkCmd = &cobra.Command{
	Use:   "link <habit> [goal]",
	Short: "Link a habit to a goal (no goal unlinks it)",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runGoalLink,
}

var goalRmCmd = &cobra.Command{
	Use:     "rm <goal>",
	Aliases: []string{"remove", "delete"},
	Short:   "Delete a goal (its habits are kept)",
	Args:    cobra.ExactArgs(1),
	RunE:    runGoalRm,
}

var (
	goalDesc   string
	goalEmoji  string
	goalStatus string
	goalYes    bool
)

func goalStatusCmd(use, short string, status goal.Status) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <goal>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setGoalStatus(cmd, args[0], status)
		},
	}
}

func init() {
	goalCmd.AddCommand(goalAddCmd, goalListCmd, goalLinkCmd, goalRmCmd,
		goalStatusCmd("pause", "Pause a goal", goal.StatusPaused),
		goalStatusCmd("resume", "Make a goal active again", goal.StatusActive),
		goalStatusCmd("archive", "Archive a goal", goal.StatusArchived),
	)

	goalAddCmd.Flags().StringVar(&goalDesc, "desc", "", "What the goal is about")
	goalAddCmd.Flags().StringVar(&goalEmoji, "emoji", "", "Emoji shown next to the name")
	goalListCmd.Flags().StringVarP(&goalStatus, "status", "s", "", "Only goals with this status (active, paused, archived)")
	goalRmCmd.Flags().BoolVarP(&goalYes, "yes", "y", false, "Skip the confirmation prompt")
}

func runGoalAdd(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	g := &goal.Goal{
		Name:        strings.Join(args, " "),
		Description: goalDesc,
		Emoji:       goalEmoji,
	}
	if err := e.goals.Add(ctxOf(cmd), g); err != nil {
		return err
	}
	e.log.Info("goal created", "goal_id", g.ID, "name", g.Name)
	ui.Ok("Goal " + ui.Accent.Render(g.Label()))
	ui.Tip(fmt.Sprintf("`tally goal link <habit> %s` to attach habits.", quoteRef(g.Name)))
	return nil
}

func runGoalList(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()
	ctx := ctxOf(cmd)

	var status goal.Status
	if goalStatus != "" {
		if status, err = goal.ParseStatus(goalStatus); err != nil {
			return err
		}
	}
	goals, err := e.goals.List(ctx, status)
	if err != nil {
		return err
	}
	if len(goals) == 0 {
		ui.Puts("  No goals yet.")
		ui.Tip("`tally goal add <name>` to create one.")
		return nil
	}

	ui.Puts("")
	for _, g := range goals {
		line := fmt.Sprintf("  %s  %s", ui.Muted.Render(habit.ShortID(g.ID)), ui.Accent.Render(g.Label()))
		if g.Status != goal.StatusActive {
			line += "  " + ui.Muted.Render("["+g.Status.Label()+"]")
		}
		ui.Puts(line)
		if g.Description != "" {
			ui.Puts("      " + ui.Muted.Render(g.Description))
		}
		habits, err := e.habits.List(ctx, habit.ListOptions{GoalID: &g.ID})
		if err != nil {
			return err
		}
		for _, h := range habits {
			ui.Puts("      " + ui.IconDot + " " + h.Label())
		}
	}
	ui.Puts("")
	return nil
}

func runGoalLink(cmd *cobra.Command, args []string) error {
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
	if len(args) == 1 {
		if err := e.habits.SetGoal(ctx, h.ID, nil); err != nil {
			return err
		}
		ui.Ok("Unlinked " + h.Label())
		return nil
	}
	g, err := e.goals.Resolve(ctx, args[1])
	if err != nil {
		return err
	}
	if err := e.habits.SetGoal(ctx, h.ID, &g.ID); err != nil {
		return err
	}
	ui.Ok(fmt.Sprintf("%s %s %s", h.Label(), ui.IconArrow, g.Label()))
	return nil
}

func setGoalStatus(cmd *cobra.Command, ref string, status goal.Status) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()
	ctx := ctxOf(cmd)

	g, err := e.goals.Resolve(ctx, ref)
	if err != nil {
		return err
	}
	if err := e.goals.SetStatus(ctx, g.ID, status); err != nil {
		return err
	}
	ui.Ok(fmt.Sprintf("%s is %s", g.Label(), status.Label()))
	return nil
}

func runGoalRm(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()
	ctx := ctxOf(cmd)

	g, err := e.goals.Resolve(ctx, args[0])
	if err != nil {
		return err
	}
	n, err := e.goals.HabitCount(ctx, g.ID)
	if err != nil {
		return err
	}

	if !goalYes && ui.IsStdinTTY() {
		confirmed := false
		title := fmt.Sprintf("Delete goal %s?", g.Label())
		if n > 0 {
			title = fmt.Sprintf("Delete goal %s? %s stay but are unlinked.", g.Label(), ui.Plural(n, "habit"))
		}
		if err := huh.NewConfirm().Title(title).Affirmative("Delete").Negative("Keep").Value(&confirmed).Run(); err != nil {
			return err
		}
		if !confirmed {
			return nil
		}
	}

	if err := e.goals.Delete(ctx, g.ID); err != nil {
		return err
	}
	e.log.Info("goal deleted", "goal_id", g.ID, "unlinked_habits", n)
	ui.Ok("Deleted goal " + g.Label())
	return nil
}
