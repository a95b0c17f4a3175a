package api

import (
	"time"

	"github.com/rnwolfe/tally/internal/goal"
	"github.com/rnwolfe/tally/internal/habit"
)

// Habit is the wire form of a habit. Dates are YYYY-MM-DD.
type Habit struct {
	ID           string    `json:"id" example:"3f2b8c1e-7d4a-4e0b-9a51-2c6d8e9f0a1b"`
	Name         string    `json:"name" example:"Read"`
	Emoji        string    `json:"emoji,omitempty" example:"📚"`
	Color        string    `json:"color,omitempty" example:"#56D364"`
	Motivation   string    `json:"motivation,omitempty"`
	StartDate    string    `json:"start_date" example:"2024-01-01"`
	EndDate      *string   `json:"end_date,omitempty" example:"2024-12-31"`
	Frequency    []string  `json:"frequency"`
	LimitCounter int       `json:"limit_counter" example:"1"`
	Reminder     bool      `json:"reminder"`
	Clock        string    `json:"clock,omitempty" example:"07:30"`
	GoalID       *string   `json:"goal_id,omitempty"`
	Archived     bool      `json:"archived"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func habitBody(h habit.Habit) Habit {
	out := Habit{
		ID:           h.ID,
		Name:         h.Name,
		Emoji:        h.Emoji,
		Color:        h.Color,
		Motivation:   h.Motivation,
		StartDate:    h.StartDate.String(),
		Frequency:    h.Frequency.Tokens(),
		LimitCounter: h.Limit(),
		Reminder:     h.Reminder,
		Clock:        h.Clock,
		GoalID:       h.GoalID,
		Archived:     h.Archived,
		CreatedAt:    h.CreatedAt,
		UpdatedAt:    h.UpdatedAt,
	}
	if out.Frequency == nil {
		out.Frequency = []string{}
	}
	if h.EndDate != nil {
		s := h.EndDate.String()
		out.EndDate = &s
	}
	return out
}

// HabitList wraps a list of habits.
type HabitList struct {
	Habits []Habit `json:"habits"`
	Count  int     `json:"count"`
}

// CreateHabitRequest is the payload for creating a habit.
type CreateHabitRequest struct {
	Name         string   `json:"name" minLength:"1" maxLength:"200" example:"Read"`
	Emoji        string   `json:"emoji,omitempty"`
	Color        string   `json:"color,omitempty"`
	Motivation   string   `json:"motivation,omitempty"`
	StartDate    string   `json:"start_date,omitempty" doc:"Defaults to today" example:"2024-01-01"`
	EndDate      string   `json:"end_date,omitempty" example:"2024-12-31"`
	Frequency    []string `json:"frequency" minItems:"1" doc:"Weekday tokens: S M T W TH F SA, Mon..Sun, or daily/weekdays/weekends"`
	LimitCounter int      `json:"limit_counter,omitempty" minimum:"0" maximum:"10" doc:"Repetitions per day, default from config"`
	Reminder     bool     `json:"reminder,omitempty"`
	Clock        string   `json:"clock,omitempty" example:"07:30"`
	GoalID       string   `json:"goal_id,omitempty"`
}

// UpdateHabitRequest is the payload for PATCH. All fields are optional; an
// empty end_date clears it and an empty goal_id unlinks the goal.
type UpdateHabitRequest struct {
	Name         *string  `json:"name,omitempty"`
	Emoji        *string  `json:"emoji,omitempty"`
	Color        *string  `json:"color,omitempty"`
	Motivation   *string  `json:"motivation,omitempty"`
	StartDate    *string  `json:"start_date,omitempty"`
	EndDate      *string  `json:"end_date,omitempty"`
	Frequency    []string `json:"frequency,omitempty"`
	LimitCounter *int     `json:"limit_counter,omitempty" minimum:"1" maximum:"10"`
	Reminder     *bool    `json:"reminder,omitempty"`
	Clock        *string  `json:"clock,omitempty"`
	GoalID       *string  `json:"goal_id,omitempty"`
	Archived     *bool    `json:"archived,omitempty"`
}

// ToggleRequest selects the day to toggle.
type ToggleRequest struct {
	Date string `json:"date,omitempty" doc:"Defaults to today" example:"2024-01-08"`
}

// ToggleResult reports the outcome of a toggle. has_progress and
// is_fully_complete are separate: a 2/3 day has progress but is not complete.
type ToggleResult struct {
	HabitID         string             `json:"habit_id"`
	Date            string             `json:"date"`
	Action          string             `json:"action" enum:"create,increment,reset"`
	Counter         int                `json:"counter"`
	Limit           int                `json:"limit"`
	HasProgress     bool               `json:"has_progress"`
	IsFullyComplete bool               `json:"is_fully_complete"`
	Progress        float64            `json:"progress"`
	Streak          habit.StreakResult `json:"streak"`
}

// Stats is the wire form of habit.Stats.
type Stats struct {
	HabitID                string  `json:"habit_id"`
	Today                  string  `json:"today"`
	CurrentStreak          int     `json:"current_streak"`
	LongestStreak          int     `json:"longest_streak"`
	IsCompletedToday       bool    `json:"is_completed_today"`
	IsFullyCompleteToday   bool    `json:"is_fully_complete_today"`
	CounterToday           int     `json:"counter_today"`
	Limit                  int     `json:"limit"`
	ScheduledToday         bool    `json:"scheduled_today"`
	ScheduledDays          int     `json:"scheduled_days"`
	CompletedScheduledDays int     `json:"completed_scheduled_days"`
	CompletionRate         int     `json:"completion_rate" doc:"Percent of scheduled days with progress"`
	TotalCompletions       int     `json:"total_completions"`
}

// GridDay is one heatmap cell.
type GridDay struct {
	Date    string `json:"date"`
	Status  string `json:"status" enum:"completed,scheduled,not-scheduled"`
	Counter int    `json:"counter"`
}

// Grid is a dense run of days for a heatmap.
type Grid struct {
	HabitID string    `json:"habit_id"`
	From    string    `json:"from,omitempty"`
	To      string    `json:"to,omitempty"`
	Days    []GridDay `json:"days"`
}

// Goal is the wire form of a goal.
type Goal struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Emoji       string    `json:"emoji,omitempty"`
	Status      string    `json:"status" enum:"ACTIVE,PAUSED,ARCHIVED"`
	HabitCount  int       `json:"habit_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func goalBody(g goal.Goal, habitCount int) Goal {
	return Goal{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Emoji:       g.Emoji,
		Status:      string(g.Status),
		HabitCount:  habitCount,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

// GoalList wraps a list of goals.
type GoalList struct {
	Goals []Goal `json:"goals"`
	Count int    `json:"count"`
}

// CreateGoalRequest is the payload for creating a goal.
type CreateGoalRequest struct {
	Name        string `json:"name" minLength:"1" maxLength:"200"`
	Description string `json:"description,omitempty"`
	Emoji       string `json:"emoji,omitempty"`
	Status      string `json:"status,omitempty" enum:"ACTIVE,PAUSED,ARCHIVED"`
}

// UpdateGoalRequest changes a goal's status.
type UpdateGoalRequest struct {
	Status string `json:"status" enum:"ACTIVE,PAUSED,ARCHIVED"`
}
