package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rnwolfe/tally/internal/config"
	"github.com/rnwolfe/tally/internal/day"
	"github.com/rnwolfe/tally/internal/goal"
	"github.com/rnwolfe/tally/internal/habit"
	"github.com/rnwolfe/tally/internal/logger"
	"github.com/rnwolfe/tally/internal/store"
	"github.com/rnwolfe/tally/internal/tips"
	"github.com/rnwolfe/tally/internal/ui"
)

var rootCmd = &cobra.Command{
	Use:   "tally",
	Short: "A small, local habit tracker",
	Long: `tally keeps track of recurring habits: schedule them on weekdays, check
them off each day, and watch the streaks and heatmaps grow.

Run with no arguments for today's dashboard.`,
	RunE:              runDashboard,
	PersistentPreRunE: setupLogging,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

var verbose bool

var (
	appLog    *slog.Logger
	logCloser io.Closer
)

// now is the clock used to decide "today". Tests replace it.
var now = time.Now

func Execute() {
	ui.ConfigureColor()
	if err := rootCmd.Execute(); err != nil {
		ui.Err(err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(habitCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(streakCmd)
	rootCmd.AddCommand(gridCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(goalCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// setupLogging builds the process logger: JSON to the rolling log file, and
// a console stream on stderr with --verbose.
func setupLogging(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		ui.Warn(err.Error())
	}

	lc := logger.DefaultConfig(config.GetPaths().LogFile)
	lc.Level = level
	lc.NoColor = !ui.IsTerminal(os.Stderr)
	if verbose {
		lc.Level = slog.LevelDebug
		lc.Console = true
	}
	if cmd.Name() == "serve" && !lc.Console {
		lc.Console = true
		lc.Level = min(lc.Level, slog.LevelInfo)
	}

	log, closer, err := logger.New(lc)
	if err != nil {
		// A broken log file must not block the CLI.
		ui.Warn(fmt.Sprintf("logging disabled: %v", err))
		log, closer = logger.Discard(), nil
	}
	appLog, logCloser = log, closer
	slog.SetDefault(log)
	return nil
}

func logOrDiscard() *slog.Logger {
	if appLog == nil {
		return logger.Discard()
	}
	return appLog
}

// env is what most commands need: config, the open database and the stores
// over it.
type env struct {
	cfg    *config.Config
	db     *store.DB
	habits *habit.Store
	goals  *goal.Store
	loc    *time.Location
	log    *slog.Logger
}

func openEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	loc, err := cfg.Habits.Location()
	if err != nil {
		return nil, err
	}
	db, err := store.Open()
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	log := logOrDiscard()
	return &env{
		cfg:    cfg,
		db:     db,
		habits: habit.NewStore(db.Conn()).WithLogger(log),
		goals:  goal.NewStore(db.Conn()),
		loc:    loc,
		log:    log,
	}, nil
}

func (e *env) Close() error { return e.db.Close() }

func (e *env) today() day.Key {
	return day.FromTime(now().In(e.loc))
}

func (e *env) ledger(ctx context.Context, id string) (*habit.Ledger, error) {
	return e.habits.Ledger(ctx, id, habit.WarnDuplicates(e.log))
}

func ctxOf(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

// parseDate reads a date flag in the configured timezone. Empty means today.
func (e *env) parseDate(s string) (day.Key, error) {
	if s == "" {
		return e.today(), nil
	}
	switch s {
	case "today":
		return e.today(), nil
	case "yesterday":
		return e.today().AddDays(-1), nil
	}
	return day.ParseIn(s, e.loc)
}

// runDashboard lists today's scheduled habits with progress and streaks.
func runDashboard(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()
	ctx := ctxOf(cmd)

	ui.Puts(ui.Greet(e.cfg.User.Name))
	today := e.today()
	ui.Puts(ui.Muted.Render("  " + today.Time(nil).Format("Monday, January 2")))
	ui.Puts("")

	habits, err := e.habits.List(ctx, habit.ListOptions{})
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		ui.Puts("  No habits yet.")
		if !config.Initialized() {
			ui.Tip("`tally config set user.name <name>` to make this greeting yours.")
		}
		ui.Tip("`tally habit add \"Drink water\" --days daily` to start one.")
		ui.Puts("")
		return nil
	}

	scheduled, done := 0, 0
	for _, h := range habits {
		if !habit.IsActiveOn(h, today) {
			continue
		}
		scheduled++
		l, err := e.ledger(ctx, h.ID)
		if err != nil {
			return err
		}
		st := habit.Summarize(h, l, today)
		if st.FullyCompleteToday {
			done++
		}
		line := fmt.Sprintf("  %s %s", ui.StyledRing(st.CounterToday, st.Limit), h.Label())
		if c := ui.Count(st.CounterToday, st.Limit); c != "" {
			line += "  " + ui.Muted.Render(c)
		}
		if st.Streak.Current > 0 {
			line += "  " + ui.Streak(st.Streak.Current)
		}
		ui.Puts(line)
	}

	if scheduled == 0 {
		ui.Puts("  Nothing scheduled today. Enjoy the day off.")
	} else {
		ui.Puts("")
		ui.Puts(ui.Muted.Render(fmt.Sprintf("  %d of %d done today", done, scheduled)))
	}
	if scheduled > done {
		ui.Tip("`tally done <habit>` to check one off, or `tally board` to work through the list.")
	} else {
		ui.Tip(tips.DailyExcept(today, "done", "board"))
	}
	ui.Puts("")
	return nil
}
