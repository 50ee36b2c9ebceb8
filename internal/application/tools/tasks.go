package tools

import (
	"context"

	"github.com/productivitybrain/core/internal/application/registry"
	"github.com/productivitybrain/core/internal/domain/entities"
	"github.com/productivitybrain/core/internal/ports"
)

type addTaskInput struct {
	Title         string            `json:"title" validate:"required" desc:"Short task title"`
	Description   string            `json:"description,omitempty"`
	Priority      entities.Priority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high" default:"medium"`
	DueDate       string            `json:"dueDate,omitempty" validate:"omitempty,timestamp" desc:"Due date, ISO 8601"`
	Tags          []string          `json:"tags,omitempty" validate:"omitempty,dive,min=1"`
	EstimatedTime *int              `json:"estimatedTime,omitempty" validate:"omitempty,gte=0" desc:"Estimated effort in minutes"`
}

// taskUpdates lists the task fields update-task may change. Sending null for
// dueDate, tags, estimatedTime or completedAt unsets it.
type taskUpdates struct {
	Title         *string              `json:"title,omitempty" validate:"omitempty,min=1"`
	Description   *string              `json:"description,omitempty"`
	Status        *entities.TaskStatus `json:"status,omitempty" validate:"omitempty,oneof=todo in-progress done"`
	Priority      *entities.Priority   `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	DueDate       *string              `json:"dueDate,omitempty" validate:"omitempty,timestamp"`
	Tags          []string             `json:"tags,omitempty" validate:"omitempty,dive,min=1"`
	EstimatedTime *int                 `json:"estimatedTime,omitempty" validate:"omitempty,gte=0"`
	CompletedAt   *string              `json:"completedAt,omitempty" validate:"omitempty,timestamp"`
}

type updateTaskInput struct {
	ID      string                      `json:"id" validate:"required" desc:"Task identifier"`
	Updates registry.Patch[taskUpdates] `json:"updates" desc:"Fields to change; null clears an optional field"`
}

func taskTools(store ports.Store) []registry.Tool {
	return []registry.Tool{
		registry.NewTool("get-tasks",
			"Retrieves all tasks from storage. Use this to get the current task list for analysis or display.",
			func(ctx context.Context, _ empty) ([]entities.Task, error) {
				return store.Tasks(ctx), nil
			}),

		registry.NewTool("add-task",
			"Creates a new task with the provided details. Use this when the user wants to create or add a task.",
			func(ctx context.Context, in addTaskInput) (entities.Task, error) {
				due, err := parseTime(store, in.DueDate)
				if err != nil {
					return entities.Task{}, err
				}
				return store.AddTask(ctx, entities.NewTask{
					Title:         in.Title,
					Description:   in.Description,
					Status:        entities.TaskStatusTodo,
					Priority:      in.Priority,
					DueDate:       due,
					Tags:          in.Tags,
					EstimatedTime: in.EstimatedTime,
				}), nil
			}),

		registry.NewTool("update-task",
			"Updates an existing task with new information. Use this to modify task details, status, or priority.",
			func(ctx context.Context, in updateTaskInput) (*entities.Task, error) {
				patch, err := taskPatch(store, in.Updates)
				if err != nil {
					return nil, err
				}
				return found(store.UpdateTask(ctx, in.ID, patch)), nil
			}),

		registry.NewTool("delete-task",
			"Deletes a task by ID. Use this when the user wants to remove a task.",
			func(ctx context.Context, in idInput) (bool, error) {
				return store.DeleteTask(ctx, in.ID), nil
			}),
	}
}

func taskPatch(clock ports.Clock, p registry.Patch[taskUpdates]) (entities.TaskPatch, error) {
	u := p.Fields
	patch := entities.TaskPatch{
		Title:              u.Title,
		Description:        nullAsEmpty(p.IsNull("description"), u.Description),
		Status:             u.Status,
		Priority:           u.Priority,
		Tags:               u.Tags,
		EstimatedTime:      u.EstimatedTime,
		ClearDueDate:       p.IsNull("dueDate"),
		ClearTags:          p.IsNull("tags"),
		ClearEstimatedTime: p.IsNull("estimatedTime"),
		ClearCompletedAt:   p.IsNull("completedAt"),
	}

	var err error
	if u.DueDate != nil {
		if patch.DueDate, err = parseTime(clock, *u.DueDate); err != nil {
			return patch, err
		}
	}
	if u.CompletedAt != nil {
		if patch.CompletedAt, err = parseTime(clock, *u.CompletedAt); err != nil {
			return patch, err
		}
	}
	return patch, nil
}
