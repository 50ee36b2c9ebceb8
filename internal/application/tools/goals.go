package tools

import (
	"context"

	"github.com/productivitybrain/core/internal/application/registry"
	"github.com/productivitybrain/core/internal/domain/entities"
	"github.com/productivitybrain/core/internal/ports"
)

type milestoneInput struct {
	ID        string `json:"id,omitempty" desc:"Existing milestone id; omit for a new milestone"`
	Title     string `json:"title" validate:"required"`
	Completed bool   `json:"completed,omitempty"`
}

type addGoalInput struct {
	Title       string              `json:"title" validate:"required"`
	Description string              `json:"description,omitempty"`
	TargetDate  string              `json:"targetDate,omitempty" validate:"omitempty,timestamp"`
	Progress    int                 `json:"progress,omitempty" validate:"gte=0,lte=100" default:"0"`
	Status      entities.GoalStatus `json:"status,omitempty" validate:"omitempty,oneof=active completed paused" default:"active"`
	Milestones  []milestoneInput    `json:"milestones,omitempty" validate:"omitempty,dive"`
}

type goalUpdates struct {
	Title       *string              `json:"title,omitempty" validate:"omitempty,min=1"`
	Description *string              `json:"description,omitempty"`
	TargetDate  *string              `json:"targetDate,omitempty" validate:"omitempty,timestamp"`
	Progress    *int                 `json:"progress,omitempty" validate:"omitempty,gte=0,lte=100"`
	Status      *entities.GoalStatus `json:"status,omitempty" validate:"omitempty,oneof=active completed paused"`
	Milestones  []milestoneInput     `json:"milestones,omitempty" validate:"omitempty,dive"`
}

type updateGoalInput struct {
	ID      string                      `json:"id" validate:"required" desc:"Goal identifier"`
	Updates registry.Patch[goalUpdates] `json:"updates" desc:"Fields to change; milestones replaces the whole list"`
}

func goalTools(store ports.Store) []registry.Tool {
	return []registry.Tool{
		registry.NewTool("get-goals",
			"Retrieves all goals. Use this to get goals for display or progress tracking.",
			func(ctx context.Context, _ empty) ([]entities.Goal, error) {
				return store.Goals(ctx), nil
			}),

		registry.NewTool("add-goal",
			"Creates a goal with optional milestones. Use this when the user sets a new objective.",
			func(ctx context.Context, in addGoalInput) (entities.Goal, error) {
				target, err := parseTime(store, in.TargetDate)
				if err != nil {
					return entities.Goal{}, err
				}
				return store.AddGoal(ctx, entities.NewGoal{
					Title:       in.Title,
					Description: in.Description,
					TargetDate:  target,
					Progress:    in.Progress,
					Status:      in.Status,
					Milestones:  milestones(store, in.Milestones),
				}), nil
			}),

		registry.NewTool("update-goal",
			"Updates a goal's details, progress, status or milestones. Returns null when the goal does not exist.",
			func(ctx context.Context, in updateGoalInput) (*entities.Goal, error) {
				u := in.Updates.Fields
				patch := entities.GoalPatch{
					Title:           u.Title,
					Description:     nullAsEmpty(in.Updates.IsNull("description"), u.Description),
					ClearTargetDate: in.Updates.IsNull("targetDate"),
					Progress:        u.Progress,
					Status:          u.Status,
					Milestones:      milestones(store, u.Milestones),
					ClearMilestones: in.Updates.IsNull("milestones"),
				}
				if u.TargetDate != nil {
					target, err := parseTime(store, *u.TargetDate)
					if err != nil {
						return nil, err
					}
					patch.TargetDate = target
				}
				return found(store.UpdateGoal(ctx, in.ID, patch)), nil
			}),

		registry.NewTool("delete-goal",
			"Deletes a goal by ID.",
			func(ctx context.Context, in idInput) (bool, error) {
				return store.DeleteGoal(ctx, in.ID), nil
			}),
	}
}

// milestones converts caller milestones, stamping completedAt on completed ones
func milestones(clock ports.Clock, in []milestoneInput) []entities.Milestone {
	if in == nil {
		return nil
	}
	out := make([]entities.Milestone, 0, len(in))
	for _, m := range in {
		ms := entities.Milestone{ID: m.ID, Title: m.Title, Completed: m.Completed}
		if m.Completed {
			now := clock.Now()
			ms.CompletedAt = &now
		}
		out = append(out, ms)
	}
	return out
}
