package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/rnwolfe/tally/internal/habit"
	"github.com/rnwolfe/tally/internal/ui"
)

var habitCmd = &cobra.Command{
	Use:     "habit",
	Aliases: []string{"habits", "h"},
	Short:   "Create and manage habits",
	RunE:    runHabitList,
}

var habitAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Start tracking a new habit",
	Long: `Start tracking a new habit.

Schedule it with --days using weekday tokens (M,T,W,Th,F,Sa,Su or
Mon,Tue,...), or one of daily, weekdays, weekends. Without --days the habit
is daily. Without a name, an interactive form opens.

  tally habit add Run --days M,W,F
  tally habit add "Drink water" --limit 8 --emoji 💧`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHabitAdd,
}

var habitListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List habits with this week's activity",
	Args:    cobra.NoArgs,
	RunE:    runHabitList,
}

var habitShowCmd = &cobra.Command{
	Use:   "show <habit>",
	Short: "Show a habit's schedule and stats",
	Args:  cobra.ExactArgs(1),
	RunE:  runHabitShow,
}

var habitEditCmd = &cobra.Command{
	Use:   "edit <habit>",
	Short: "Change a habit's name, schedule or limit",
	Long: `Change a habit. Only the flags you pass are updated.

  tally habit edit run --days weekdays
  tally habit edit water --limit 10 --no-end`,
	Args: cobra.ExactArgs(1),
	RunE: runHabitEdit,
}

var habitRmCmd = &cobra.Command{
	Use:     "rm <habit>",
	Aliases: []string{"remove", "delete"},
	Short:   "Delete a habit and its history",
	Args:    cobra.ExactArgs(1),
	RunE:    runHabitRm,
}

var habitArchiveCmd = &cobra.Command{
	Use:   "archive <habit>",
	Short: "Hide a habit without losing its history",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setArchived(cmd, args[0], true) },
}

var habitUnarchiveCmd = &cobra.Command{
	Use:   "unarchive <habit>",
	Short: "Bring an archived habit back",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setArchived(cmd, args[0], false) },
}

// habitFlags are shared by add and edit.
type habitFlags struct {
	name       string
	days       freqFlag
	start      dateFlag
	end        dateFlag
	noEnd      bool
	limit      int
	emoji      string
	color      string
	motivation string
	reminder   string
	goal       string
}

var (
	habitOpts     habitFlags
	habitArchived bool
	habitYes      bool
	habitListAll  bool
)

func addHabitFlags(cmd *cobra.Command, f *habitFlags) {
	cmd.Flags().VarP(&f.days, "days", "d", "Weekdays to schedule (M,W,F, weekdays, weekends, daily)")
	cmd.Flags().Var(&f.start, "start", "First day of the habit (YYYY-MM-DD, default today)")
	cmd.Flags().Var(&f.end, "end", "Last day of the habit (YYYY-MM-DD)")
	cmd.Flags().IntVarP(&f.limit, "limit", "l", 0, fmt.Sprintf("Check-ins needed per day (1-%d)", habit.MaxLimit))
	cmd.Flags().StringVar(&f.emoji, "emoji", "", "Emoji shown next to the name")
	cmd.Flags().StringVar(&f.color, "color", "", "Display color")
	cmd.Flags().StringVar(&f.motivation, "why", "", "Why this habit matters to you")
	cmd.Flags().StringVar(&f.reminder, "remind", "", "Reminder time (HH:MM)")
	cmd.Flags().StringVarP(&f.goal, "goal", "g", "", "Goal to link the habit to")
}

func init() {
	habitCmd.AddCommand(habitAddCmd, habitListCmd, habitShowCmd, habitEditCmd,
		habitRmCmd, habitArchiveCmd, habitUnarchiveCmd)

	addHabitFlags(habitAddCmd, &habitOpts)
	addHabitFlags(habitEditCmd, &habitOpts)
	habitEditCmd.Flags().StringVar(&habitOpts.name, "name", "", "New name")
	habitEditCmd.Flags().BoolVar(&habitOpts.noEnd, "no-end", false, "Remove the end date")

	habitListCmd.Flags().BoolVarP(&habitArchived, "archived", "a", false, "Show only archived habits")
	habitListCmd.Flags().BoolVar(&habitListAll, "all", false, "Include archived habits")
	habitRmCmd.Flags().BoolVarP(&habitYes, "yes", "y", false, "Skip the confirmation prompt")
}

func runHabitAdd(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()
	ctx := ctxOf(cmd)

	f := habitOpts
	if len(args) == 1 {
		f.name = strings.TrimSpace(args[0])
	}
	if f.name == "" {
		if !ui.IsStdinTTY() || !ui.IsStdoutTTY() {
			return errors.New("a habit name is required")
		}
		goals, err := e.goals.List(ctx, "")
		if err != nil {
			return err
		}
		if err := promptHabit(&f, goals, e.cfg.Habits.DefaultLimit); err != nil {
			return err
		}
	}

	h := &habit.Habit{
		Name:         f.name,
		Emoji:        f.emoji,
		Color:        f.color,
		Motivation:   f.motivation,
		Frequency:    habit.EveryDay,
		LimitCounter: f.limit,
		Clock:        f.reminder,
		Reminder:     f.reminder != "",
	}
	if h.LimitCounter == 0 {
		h.LimitCounter = e.cfg.Habits.DefaultLimit
	}
	if f.days.set {
		h.Frequency = f.days.freq
	}
	if h.StartDate, err = e.parseDate(f.start.raw); err != nil {
		return err
	}
	if f.end.raw != "" {
		end, err := e.parseDate(f.end.raw)
		if err != nil {
			return err
		}
		if end.Before(h.StartDate) {
			return fmt.Errorf("end date %s is before start date %s", end, h.StartDate)
		}
		h.EndDate = &end
	}
	if f.goal != "" {
		g, err := e.goals.Resolve(ctx, f.goal)
		if err != nil {
			return err
		}
		h.GoalID = &g.ID
	}

	if err := e.habits.Create(ctx, h); err != nil {
		return err
	}
	e.log.Info("habit created", "habit_id", h.ID, "name", h.Name, "frequency", h.Frequency.Encode())

	ui.Ok(fmt.Sprintf("Tracking %s %s", ui.Accent.Render(h.Label()), ui.Muted.Render("("+describeSchedule(*h)+")")))
	if h.StartDate.After(e.today()) {
		ui.Inf(fmt.Sprintf("Starts %s", h.StartDate))
	}
	ui.Tip(fmt.Sprintf("`tally done %s` to check it off.", quoteRef(h.Name)))
	return nil
}

// describeSchedule renders "Mon,Wed,Fri · 3x per day · until 2024-06-01".
func describeSchedule(h habit.Habit) string {
	parts := []string{h.Frequency.String()}
	if h.Limit() > 1 {
		parts = append(parts, fmt.Sprintf("%dx per day", h.Limit()))
	}
	if h.EndDate != nil {
		parts = append(parts, "until "+h.EndDate.String())
	}
	return strings.Join(parts, " · ")
}

func quoteRef(name string) string {
	if strings.ContainsAny(name, " \t'\"") {
		return fmt.Sprintf("%q", name)
	}
	return name
}

func runHabitList(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()
	ctx := ctxOf(cmd)

	habits, err := e.habits.List(ctx, habit.ListOptions{
		IncludeArchived: habitListAll,
		ArchivedOnly:    habitArchived,
	})
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		if habitArchived {
			ui.Puts("  No archived habits.")
		} else {
			ui.Puts("  No habits yet.")
			ui.Tip("`tally habit add <name>` to start one.")
		}
		return nil
	}

	today := e.today()
	from := today.AddDays(-6)
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
		streak := habit.CalculateStreak(l.Days(), today)
		strip := ui.Strip(habit.BuildGrid(h, l, from, today, today), h.Limit())
		name := h.Label() + strings.Repeat(" ", width-len([]rune(h.Label())))
		line := fmt.Sprintf("  %s  %s  %s  %s", ui.Muted.Render(habit.ShortID(h.ID)), name, strip, ui.Muted.Render(describeSchedule(h)))
		if streak.Current > 0 {
			line += "  " + ui.Streak(streak.Current)
		}
		if h.Archived {
			line += "  " + ui.Muted.Render("[archived]")
		}
		ui.Puts(line)
	}
	ui.Puts("")
	ui.Puts(ui.Muted.Render("  " + ui.Plural(len(habits), "habit")))
	return nil
}

func runHabitShow(cmd *cobra.Command, args []string) error {
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
	l, err := e.ledger(ctx, h.ID)
	if err != nil {
		return err
	}
	today := e.today()
	st := habit.Summarize(*h, l, today)

	ui.Header(h.Label())
	ui.Kv("ID", h.ID)
	ui.Kv("Schedule", describeSchedule(*h))
	ui.Kv("Started", h.StartDate.String())
	if h.Motivation != "" {
		ui.Kv("Why", h.Motivation)
	}
	if h.Clock != "" {
		ui.Kv("Reminder", h.Clock)
	}
	if h.GoalID != nil {
		if g, err := e.goals.Get(ctx, *h.GoalID); err == nil {
			ui.Kv("Goal", g.Label())
		}
	}
	if h.Archived {
		ui.Kv("Status", "archived")
	}
	ui.Puts("")

	todayLine := "not scheduled"
	if st.ScheduledToday || st.CompletedToday {
		todayLine = ui.StyledRing(st.CounterToday, st.Limit)
		if c := ui.Count(st.CounterToday, st.Limit); c != "" {
			todayLine += " " + c
		}
	}
	ui.Kv("Today", todayLine)
	if !st.ScheduledToday {
		if next := habit.ActiveDays(*h, today.AddDays(1), today.AddDays(7)); len(next) > 0 {
			ui.Kv("Next", next[0].Time(nil).Format("Mon Jan 2"))
		}
	}
	ui.Kv("Streak", fmt.Sprintf("%s  (best %d)", ui.Streak(st.Streak.Current), st.Streak.Longest))
	ui.Kv("Completion", fmt.Sprintf("%s %d%%  (%d of %s)", ui.Bar(st.CompletionRate, 100, 12), st.CompletionRate,
		st.CompletedScheduledDays, ui.Plural(st.ScheduledDays, "scheduled day")))
	ui.Kv("Check-ins", ui.Plural(st.TotalCompletions, "day"))
	ui.Puts("")

	entries := habit.BuildGrid(*h, l, today.AddDays(-7*12+1), today, today)
	ui.Puts(ui.Heatmap(entries, ui.HeatmapOptions{MondayFirst: e.cfg.Habits.WeekStartsMonday(), Limit: h.Limit()}))
	ui.Puts(ui.Legend())
	ui.Puts("")
	return nil
}

func runHabitEdit(cmd *cobra.Command, args []string) error {
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

	flags := cmd.Flags()
	changed := 0
	if flags.Changed("name") {
		h.Name = strings.TrimSpace(habitOpts.name)
		changed++
	}
	if flags.Changed("days") {
		h.Frequency = habitOpts.days.freq
		changed++
	}
	if flags.Changed("start") {
		if h.StartDate, err = e.parseDate(habitOpts.start.raw); err != nil {
			return err
		}
		changed++
	}
	if flags.Changed("end") {
		end, err := e.parseDate(habitOpts.end.raw)
		if err != nil {
			return err
		}
		h.EndDate = &end
		changed++
	}
	if habitOpts.noEnd {
		h.EndDate = nil
		changed++
	}
	if flags.Changed("limit") {
		h.LimitCounter = habitOpts.limit
		changed++
	}
	if flags.Changed("emoji") {
		h.Emoji = habitOpts.emoji
		changed++
	}
	if flags.Changed("color") {
		h.Color = habitOpts.color
		changed++
	}
	if flags.Changed("why") {
		h.Motivation = habitOpts.motivation
		changed++
	}
	if flags.Changed("remind") {
		h.Clock = habitOpts.reminder
		h.Reminder = h.Clock != ""
		changed++
	}
	if flags.Changed("goal") {
		h.GoalID = nil
		if habitOpts.goal != "" && habitOpts.goal != "none" {
			g, err := e.goals.Resolve(ctx, habitOpts.goal)
			if err != nil {
				return err
			}
			h.GoalID = &g.ID
		}
		changed++
	}
	if changed == 0 {
		return errors.New("nothing to change (see `tally habit edit --help`)")
	}
	if h.LimitCounter < 0 || h.LimitCounter > habit.MaxLimit {
		return fmt.Errorf("limit must be between 1 and %d", habit.MaxLimit)
	}
	if h.EndDate != nil && h.EndDate.Before(h.StartDate) {
		return fmt.Errorf("end date %s is before start date %s", h.EndDate, h.StartDate)
	}

	if err := e.habits.Update(ctx, h); err != nil {
		return err
	}
	e.log.Info("habit updated", "habit_id", h.ID, "fields", changed)
	ui.Ok(fmt.Sprintf("Updated %s %s", ui.Accent.Render(h.Label()), ui.Muted.Render("("+describeSchedule(*h)+")")))
	return nil
}

func runHabitRm(cmd *cobra.Command, args []string) error {
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

	if !habitYes && ui.IsStdinTTY() {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete %s and all of its history?", h.Label())).
			Description("Use `tally habit archive` to hide it instead.").
			Affirmative("Delete").
			Negative("Keep").
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			ui.Inf("Kept " + h.Label())
			return nil
		}
	}

	if err := e.habits.Delete(ctx, h.ID); err != nil {
		return err
	}
	e.log.Info("habit deleted", "habit_id", h.ID, "name", h.Name)
	ui.Ok("Deleted " + h.Label())
	return nil
}

func setArchived(cmd *cobra.Command, ref string, archived bool) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()
	ctx := ctxOf(cmd)

	h, err := e.habits.Resolve(ctx, ref)
	if err != nil {
		return err
	}
	if err := e.habits.SetArchived(ctx, h.ID, archived); err != nil {
		return err
	}
	if archived {
		ui.Ok("Archived " + h.Label())
	} else {
		ui.Ok("Restored " + h.Label())
	}
	return nil
}
