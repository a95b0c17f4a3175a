package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/rnwolfe/tally/internal/day"
	"github.com/rnwolfe/tally/internal/habit"
)

type ListHabitsInput struct {
	Archived bool   `query:"archived" doc:"Include archived habits"`
	GoalID   string `query:"goal" doc:"Only habits linked to this goal"`
}

type ListHabitsOutput struct {
	Body HabitList
}

type CreateHabitInput struct {
	Body CreateHabitRequest
}

type HabitOutput struct {
	Body Habit
}

type HabitPathInput struct {
	ID string `path:"id" doc:"Habit ID, ID prefix or name"`
}

type UpdateHabitInput struct {
	ID   string `path:"id" doc:"Habit ID, ID prefix or name"`
	Body UpdateHabitRequest
}

type ToggleInput struct {
	ID   string         `path:"id" doc:"Habit ID, ID prefix or name"`
	Body *ToggleRequest `required:"false"`
}

type ToggleOutput struct {
	Body ToggleResult
}

type StatsOutput struct {
	Body Stats
}

type GridInput struct {
	ID   string `path:"id" doc:"Habit ID, ID prefix or name"`
	From string `query:"from" doc:"First day (YYYY-MM-DD); defaults to the start date"`
	To   string `query:"to" doc:"Last day (YYYY-MM-DD); defaults to today"`
}

type GridOutput struct {
	Body Grid
}

func (s *Server) registerHabits(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-habits",
		Method:      http.MethodGet,
		Path:        "/api/v1/habits",
		Summary:     "List habits",
		Tags:        []string{"habits"},
	}, s.listHabits)

	huma.Register(api, huma.Operation{
		OperationID:   "create-habit",
		Method:        http.MethodPost,
		Path:          "/api/v1/habits",
		Summary:       "Create a habit",
		Tags:          []string{"habits"},
		DefaultStatus: http.StatusCreated,
	}, s.createHabit)

	huma.Register(api, huma.Operation{
		OperationID: "get-habit",
		Method:      http.MethodGet,
		Path:        "/api/v1/habits/{id}",
		Summary:     "Get a habit",
		Tags:        []string{"habits"},
	}, s.getHabit)

	huma.Register(api, huma.Operation{
		OperationID: "update-habit",
		Method:      http.MethodPatch,
		Path:        "/api/v1/habits/{id}",
		Summary:     "Update a habit",
		Description: "Only provided fields are changed.",
		Tags:        []string{"habits"},
	}, s.updateHabit)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-habit",
		Method:        http.MethodDelete,
		Path:          "/api/v1/habits/{id}",
		Summary:       "Delete a habit and its completions",
		Tags:          []string{"habits"},
		DefaultStatus: http.StatusNoContent,
	}, s.deleteHabit)

	huma.Register(api, huma.Operation{
		OperationID: "toggle-habit",
		Method:      http.MethodPost,
		Path:        "/api/v1/habits/{id}/toggle",
		Summary:     "Toggle a day",
		Description: "Creates, increments or resets the day's completion. " +
			"Future and unscheduled days are rejected with 422.",
		Tags: []string{"habits"},
	}, s.toggleHabit)

	huma.Register(api, huma.Operation{
		OperationID: "habit-stats",
		Method:      http.MethodGet,
		Path:        "/api/v1/habits/{id}/stats",
		Summary:     "Streaks and completion rate",
		Tags:        []string{"habits"},
	}, s.habitStats)

	huma.Register(api, huma.Operation{
		OperationID: "habit-grid",
		Method:      http.MethodGet,
		Path:        "/api/v1/habits/{id}/grid",
		Summary:     "Day-by-day activity grid",
		Tags:        []string{"habits"},
	}, s.habitGrid)
}

func (s *Server) listHabits(ctx context.Context, in *ListHabitsInput) (*ListHabitsOutput, error) {
	opts := habit.ListOptions{IncludeArchived: in.Archived}
	if in.GoalID != "" {
		opts.GoalID = &in.GoalID
	}
	habits, err := s.habits.List(ctx, opts)
	if err != nil {
		return nil, s.fail("list habits", err)
	}
	out := &ListHabitsOutput{Body: HabitList{Habits: make([]Habit, 0, len(habits)), Count: len(habits)}}
	for _, h := range habits {
		out.Body.Habits = append(out.Body.Habits, habitBody(h))
	}
	return out, nil
}

// parseFrequency rejects unknown weekday tokens and empty sets.
func parseFrequency(tokens []string) (habit.Frequency, error) {
	f, unknown := habit.ParseFrequency(tokens)
	if len(unknown) > 0 {
		return 0, huma.Error400BadRequest(fmt.Sprintf("unknown weekday tokens: %s", strings.Join(unknown, ", ")))
	}
	if f.IsEmpty() {
		return 0, huma.Error400BadRequest("frequency must include at least one weekday")
	}
	return f, nil
}

func (s *Server) createHabit(ctx context.Context, in *CreateHabitInput) (*HabitOutput, error) {
	b := in.Body
	start, err := s.parseDay("start_date", b.StartDate, s.today())
	if err != nil {
		return nil, err
	}
	freq, err := parseFrequency(b.Frequency)
	if err != nil {
		return nil, err
	}

	h := &habit.Habit{
		Name:         strings.TrimSpace(b.Name),
		Emoji:        b.Emoji,
		Color:        b.Color,
		Motivation:   b.Motivation,
		StartDate:    start,
		Frequency:    freq,
		LimitCounter: b.LimitCounter,
		Reminder:     b.Reminder,
		Clock:        b.Clock,
	}
	if h.LimitCounter == 0 {
		h.LimitCounter = s.defaultLimit
	}
	if b.EndDate != "" {
		end, err := s.parseDay("end_date", b.EndDate, day.Key{})
		if err != nil {
			return nil, err
		}
		h.EndDate = &end
	}
	if b.GoalID != "" {
		g, err := s.goals.Resolve(ctx, b.GoalID)
		if err != nil {
			return nil, s.fail("resolve goal", err)
		}
		h.GoalID = &g.ID
	}
	if err := h.Validate(); err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	if err := s.habits.Create(ctx, h); err != nil {
		return nil, s.fail("create habit", err)
	}
	s.log.Info("habit created", "habit_id", h.ID, "name", h.Name)
	return &HabitOutput{Body: habitBody(*h)}, nil
}

func (s *Server) getHabit(ctx context.Context, in *HabitPathInput) (*HabitOutput, error) {
	h, err := s.habits.Resolve(ctx, in.ID)
	if err != nil {
		return nil, s.fail("get habit", err)
	}
	return &HabitOutput{Body: habitBody(*h)}, nil
}

func (s *Server) updateHabit(ctx context.Context, in *UpdateHabitInput) (*HabitOutput, error) {
	h, err := s.habits.Resolve(ctx, in.ID)
	if err != nil {
		return nil, s.fail("get habit", err)
	}

	b := in.Body
	if b.Name != nil {
		h.Name = strings.TrimSpace(*b.Name)
	}
	if b.Emoji != nil {
		h.Emoji = *b.Emoji
	}
	if b.Color != nil {
		h.Color = *b.Color
	}
	if b.Motivation != nil {
		h.Motivation = *b.Motivation
	}
	if b.StartDate != nil {
		if h.StartDate, err = s.parseDay("start_date", *b.StartDate, h.StartDate); err != nil {
			return nil, err
		}
	}
	if b.EndDate != nil {
		if *b.EndDate == "" {
			h.EndDate = nil
		} else {
			end, err := s.parseDay("end_date", *b.EndDate, day.Key{})
			if err != nil {
				return nil, err
			}
			h.EndDate = &end
		}
	}
	if b.Frequency != nil {
		if h.Frequency, err = parseFrequency(b.Frequency); err != nil {
			return nil, err
		}
	}
	if b.LimitCounter != nil {
		h.LimitCounter = *b.LimitCounter
	}
	if b.Reminder != nil {
		h.Reminder = *b.Reminder
	}
	if b.Clock != nil {
		h.Clock = *b.Clock
	}
	if b.Archived != nil {
		h.Archived = *b.Archived
	}
	if b.GoalID != nil {
		if *b.GoalID == "" {
			h.GoalID = nil
		} else {
			g, err := s.goals.Resolve(ctx, *b.GoalID)
			if err != nil {
				return nil, s.fail("resolve goal", err)
			}
			h.GoalID = &g.ID
		}
	}
	if err := h.Validate(); err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	if err := s.habits.Update(ctx, h); err != nil {
		return nil, s.fail("update habit", err)
	}
	return &HabitOutput{Body: habitBody(*h)}, nil
}

func (s *Server) deleteHabit(ctx context.Context, in *HabitPathInput) (*struct{}, error) {
	h, err := s.habits.Resolve(ctx, in.ID)
	if err != nil {
		return nil, s.fail("get habit", err)
	}
	if err := s.habits.Delete(ctx, h.ID); err != nil {
		return nil, s.fail("delete habit", err)
	}
	s.log.Info("habit deleted", "habit_id", h.ID)
	return nil, nil
}

func (s *Server) toggleHabit(ctx context.Context, in *ToggleInput) (*ToggleOutput, error) {
	h, err := s.habits.Resolve(ctx, in.ID)
	if err != nil {
		return nil, s.fail("get habit", err)
	}

	today := s.today()
	d := today
	if in.Body != nil {
		if d, err = s.parseDay("date", in.Body.Date, today); err != nil {
			return nil, err
		}
	}

	dec, err := s.habits.ApplyToggle(ctx, h.ID, d, today)
	if err != nil {
		return nil, s.fail("toggle habit", err)
	}
	s.log.Info("habit toggled",
		"habit_id", h.ID, "date", d.String(), "action", string(dec.Action), "counter", dec.NewCounter)

	l, err := s.habits.Ledger(ctx, h.ID, habit.WarnDuplicates(s.log))
	if err != nil {
		return nil, s.fail("load completions", err)
	}

	return &ToggleOutput{Body: ToggleResult{
		HabitID:         h.ID,
		Date:            d.String(),
		Action:          string(dec.Action),
		Counter:         dec.NewCounter,
		Limit:           dec.Limit,
		HasProgress:     dec.HasProgress,
		IsFullyComplete: dec.IsFullyComplete,
		Progress:        dec.Progress(),
		Streak:          habit.CalculateStreak(l.Days(), today),
	}}, nil
}

func (s *Server) habitStats(ctx context.Context, in *HabitPathInput) (*StatsOutput, error) {
	h, err := s.habits.Resolve(ctx, in.ID)
	if err != nil {
		return nil, s.fail("get habit", err)
	}
	l, err := s.habits.Ledger(ctx, h.ID, habit.WarnDuplicates(s.log))
	if err != nil {
		return nil, s.fail("load completions", err)
	}

	today := s.today()
	st := habit.Summarize(*h, l, today)
	return &StatsOutput{Body: Stats{
		HabitID:                h.ID,
		Today:                  today.String(),
		CurrentStreak:          st.Streak.Current,
		LongestStreak:          st.Streak.Longest,
		IsCompletedToday:       st.CompletedToday,
		IsFullyCompleteToday:   st.FullyCompleteToday,
		CounterToday:           st.CounterToday,
		Limit:                  st.Limit,
		ScheduledToday:         st.ScheduledToday,
		ScheduledDays:          st.ScheduledDays,
		CompletedScheduledDays: st.CompletedScheduledDays,
		CompletionRate:         st.CompletionRate,
		TotalCompletions:       st.TotalCompletions,
	}}, nil
}

func (s *Server) habitGrid(ctx context.Context, in *GridInput) (*GridOutput, error) {
	h, err := s.habits.Resolve(ctx, in.ID)
	if err != nil {
		return nil, s.fail("get habit", err)
	}
	from, err := s.parseDay("from", in.From, day.Key{})
	if err != nil {
		return nil, err
	}
	to, err := s.parseDay("to", in.To, day.Key{})
	if err != nil {
		return nil, err
	}

	today := s.today()
	from, to = habit.GridBounds(*h, from, to, today)
	l, err := s.habits.Ledger(ctx, h.ID, habit.WarnDuplicates(s.log))
	if err != nil {
		return nil, s.fail("load completions", err)
	}

	entries := habit.BuildGrid(*h, l, from, to, today)
	out := &GridOutput{Body: Grid{HabitID: h.ID, Days: make([]GridDay, len(entries))}}
	if len(entries) > 0 {
		out.Body.From = from.String()
		out.Body.To = to.String()
	}
	for i, e := range entries {
		out.Body.Days[i] = GridDay{Date: e.Date.String(), Status: e.Status.String(), Counter: e.Counter}
	}
	return out, nil
}
