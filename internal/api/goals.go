package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/rnwolfe/tally/internal/goal"
)

type ListGoalsInput struct {
	Status string `query:"status" enum:"ACTIVE,PAUSED,ARCHIVED" doc:"Filter by status"`
}

type ListGoalsOutput struct {
	Body GoalList
}

type CreateGoalInput struct {
	Body CreateGoalRequest
}

type GoalOutput struct {
	Body Goal
}

type GoalPathInput struct {
	ID string `path:"id" doc:"Goal ID, ID prefix or name"`
}

type UpdateGoalInput struct {
	ID   string `path:"id" doc:"Goal ID, ID prefix or name"`
	Body UpdateGoalRequest
}

func (s *Server) registerGoals(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-goals",
		Method:      http.MethodGet,
		Path:        "/api/v1/goals",
		Summary:     "List goals",
		Tags:        []string{"goals"},
	}, s.listGoals)

	huma.Register(api, huma.Operation{
		OperationID:   "create-goal",
		Method:        http.MethodPost,
		Path:          "/api/v1/goals",
		Summary:       "Create a goal",
		Tags:          []string{"goals"},
		DefaultStatus: http.StatusCreated,
	}, s.createGoal)

	huma.Register(api, huma.Operation{
		OperationID: "get-goal",
		Method:      http.MethodGet,
		Path:        "/api/v1/goals/{id}",
		Summary:     "Get a goal",
		Tags:        []string{"goals"},
	}, s.getGoal)

	huma.Register(api, huma.Operation{
		OperationID: "update-goal",
		Method:      http.MethodPatch,
		Path:        "/api/v1/goals/{id}",
		Summary:     "Change a goal's status",
		Tags:        []string{"goals"},
	}, s.updateGoal)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-goal",
		Method:        http.MethodDelete,
		Path:          "/api/v1/goals/{id}",
		Summary:       "Delete a goal; linked habits are kept",
		Tags:          []string{"goals"},
		DefaultStatus: http.StatusNoContent,
	}, s.deleteGoal)
}

func (s *Server) goalBody(ctx context.Context, g goal.Goal) (Goal, error) {
	n, err := s.goals.HabitCount(ctx, g.ID)
	if err != nil {
		return Goal{}, s.fail("count habits", err)
	}
	return goalBody(g, n), nil
}

func (s *Server) listGoals(ctx context.Context, in *ListGoalsInput) (*ListGoalsOutput, error) {
	goals, err := s.goals.List(ctx, goal.Status(in.Status))
	if err != nil {
		return nil, s.fail("list goals", err)
	}
	out := &ListGoalsOutput{Body: GoalList{Goals: make([]Goal, 0, len(goals)), Count: len(goals)}}
	for _, g := range goals {
		body, err := s.goalBody(ctx, g)
		if err != nil {
			return nil, err
		}
		out.Body.Goals = append(out.Body.Goals, body)
	}
	return out, nil
}

func (s *Server) createGoal(ctx context.Context, in *CreateGoalInput) (*GoalOutput, error) {
	status, err := goal.ParseStatus(in.Body.Status)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	g := &goal.Goal{
		Name:        strings.TrimSpace(in.Body.Name),
		Description: in.Body.Description,
		Emoji:       in.Body.Emoji,
		Status:      status,
	}
	if err := s.goals.Add(ctx, g); err != nil {
		return nil, s.fail("create goal", err)
	}
	return &GoalOutput{Body: goalBody(*g, 0)}, nil
}

func (s *Server) getGoal(ctx context.Context, in *GoalPathInput) (*GoalOutput, error) {
	g, err := s.goals.Resolve(ctx, in.ID)
	if err != nil {
		return nil, s.fail("get goal", err)
	}
	body, err := s.goalBody(ctx, *g)
	if err != nil {
		return nil, err
	}
	return &GoalOutput{Body: body}, nil
}

func (s *Server) updateGoal(ctx context.Context, in *UpdateGoalInput) (*GoalOutput, error) {
	g, err := s.goals.Resolve(ctx, in.ID)
	if err != nil {
		return nil, s.fail("get goal", err)
	}
	status, err := goal.ParseStatus(in.Body.Status)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	if err := s.goals.SetStatus(ctx, g.ID, status); err != nil {
		return nil, s.fail("update goal", err)
	}
	g, err = s.goals.Get(ctx, g.ID)
	if err != nil {
		return nil, s.fail("get goal", err)
	}
	body, err := s.goalBody(ctx, *g)
	if err != nil {
		return nil, err
	}
	return &GoalOutput{Body: body}, nil
}

func (s *Server) deleteGoal(ctx context.Context, in *GoalPathInput) (*struct{}, error) {
	g, err := s.goals.Resolve(ctx, in.ID)
	if err != nil {
		return nil, s.fail("get goal", err)
	}
	if err := s.goals.Delete(ctx, g.ID); err != nil {
		return nil, s.fail("delete goal", err)
	}
	return nil, nil
}
