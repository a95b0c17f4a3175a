package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/rnwolfe/tally/internal/goal"
	"github.com/rnwolfe/tally/internal/habit"
)

// habitFormModel backs the interactive `habit add` form.
type habitFormModel struct {
	Name  string
	Days  string
	Limit string
	Emoji string
	Goal  string
}

func validateDays(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var f freqFlag
	return f.Set(s)
}

func validateLimit(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("limit must be a number")
	}
	if n < 1 || n > habit.MaxLimit {
		return fmt.Errorf("limit must be between 1 and %d", habit.MaxLimit)
	}
	return nil
}

func newHabitForm(fm *habitFormModel, goals []goal.Goal) *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Habit name").
			Value(&fm.Name).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("habit name cannot be empty")
				}
				return nil
			}),
		huh.NewInput().
			Title("Days").
			Description("M,W,F · weekdays · weekends · daily").
			Placeholder("daily").
			Value(&fm.Days).
			Validate(validateDays),
		huh.NewInput().
			Title("Times per day").
			Value(&fm.Limit).
			Validate(validateLimit),
		huh.NewInput().
			Title("Emoji").
			Description("Optional").
			Value(&fm.Emoji),
	}
	if len(goals) > 0 {
		opts := []huh.Option[string]{huh.NewOption("No goal", "")}
		for _, g := range goals {
			opts = append(opts, huh.NewOption(g.Label(), g.ID))
		}
		fields = append(fields, huh.NewSelect[string]().
			Title("Goal").
			Options(opts...).
			Value(&fm.Goal))
	}
	return huh.NewForm(huh.NewGroup(fields...)).WithTheme(huh.ThemeCharm())
}

// promptHabit fills f from the interactive form.
func promptHabit(f *habitFlags, goals []goal.Goal, defaultLimit int) error {
	fm := habitFormModel{
		Days:  "daily",
		Limit: strconv.Itoa(max(defaultLimit, 1)),
		Emoji: f.emoji,
	}
	if err := newHabitForm(&fm, goals).Run(); err != nil {
		return err
	}
	return fm.apply(f)
}

func (fm habitFormModel) apply(f *habitFlags) error {
	f.name = strings.TrimSpace(fm.Name)
	if err := f.days.Set(fm.Days); err != nil {
		return err
	}
	n, err := strconv.Atoi(strings.TrimSpace(fm.Limit))
	if err != nil {
		return fmt.Errorf("limit must be a number")
	}
	f.limit = n
	f.emoji = strings.TrimSpace(fm.Emoji)
	if fm.Goal != "" {
		f.goal = fm.Goal
	}
	return nil
}
