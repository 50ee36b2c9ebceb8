package tools

import (
	"context"

	"github.com/productivitybrain/core/internal/application/registry"
	"github.com/productivitybrain/core/internal/domain/entities"
	"github.com/productivitybrain/core/internal/ports"
)

type addHabitInput struct {
	Name      string                  `json:"name" validate:"required"`
	Frequency entities.HabitFrequency `json:"frequency,omitempty" validate:"omitempty,oneof=daily weekly" default:"daily"`
}

type toggleHabitInput struct {
	ID   string `json:"id" validate:"required" desc:"Habit identifier"`
	Date string `json:"date,omitempty" validate:"omitempty,datekey" desc:"Day to toggle, YYYY-MM-DD; defaults to today"`
}

func habitTools(store ports.Store) []registry.Tool {
	return []registry.Tool{
		registry.NewTool("get-habits",
			"Retrieves all habits. Use this to get habit tracking data.",
			func(ctx context.Context, _ empty) ([]entities.Habit, error) {
				return store.Habits(ctx), nil
			}),

		registry.NewTool("add-habit",
			"Starts tracking a new habit.",
			func(ctx context.Context, in addHabitInput) (entities.Habit, error) {
				return store.AddHabit(ctx, entities.NewHabit{Name: in.Name, Frequency: in.Frequency}), nil
			}),

		registry.NewTool("toggle-habit",
			"Marks a habit done, or not done, for one day and recomputes its streak. Returns null when the habit does not exist.",
			func(ctx context.Context, in toggleHabitInput) (*entities.Habit, error) {
				date := in.Date
				if date == "" {
					date = entities.DateKey(store.Now())
				}
				return found(store.ToggleHabitDate(ctx, in.ID, date)), nil
			}),

		registry.NewTool("delete-habit",
			"Deletes a habit by ID.",
			func(ctx context.Context, in idInput) (bool, error) {
				return store.DeleteHabit(ctx, in.ID), nil
			}),
	}
}

func focusSessionTools(store ports.Store) []registry.Tool {
	return []registry.Tool{
		registry.NewTool("get-focus-sessions",
			"Retrieves recorded focus sessions.",
			func(ctx context.Context, _ empty) ([]entities.FocusSession, error) {
				return store.FocusSessions(ctx), nil
			}),
	}
}
