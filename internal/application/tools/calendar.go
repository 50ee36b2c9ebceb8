package tools

import (
	"context"

	"github.com/productivitybrain/core/internal/application/registry"
	"github.com/productivitybrain/core/internal/domain/entities"
	"github.com/productivitybrain/core/internal/ports"
)

type addEventInput struct {
	Title       string             `json:"title" validate:"required"`
	Description string             `json:"description,omitempty"`
	StartTime   string             `json:"startTime" validate:"required,timestamp" desc:"Start, ISO 8601"`
	EndTime     string             `json:"endTime" validate:"required,timestamp" desc:"End, ISO 8601"`
	Type        entities.EventType `json:"type,omitempty" validate:"omitempty,oneof=meeting focus break task" default:"meeting"`
	Color       string             `json:"color,omitempty"`
}

type eventUpdates struct {
	Title       *string             `json:"title,omitempty" validate:"omitempty,min=1"`
	Description *string             `json:"description,omitempty"`
	StartTime   *string             `json:"startTime,omitempty" validate:"omitempty,timestamp"`
	EndTime     *string             `json:"endTime,omitempty" validate:"omitempty,timestamp"`
	Type        *entities.EventType `json:"type,omitempty" validate:"omitempty,oneof=meeting focus break task"`
	Color       *string             `json:"color,omitempty"`
}

type updateEventInput struct {
	ID      string                       `json:"id" validate:"required" desc:"Event identifier"`
	Updates registry.Patch[eventUpdates] `json:"updates" desc:"Fields to change; null clears description or color"`
}

func calendarTools(store ports.Store) []registry.Tool {
	return []registry.Tool{
		registry.NewTool("get-calendar-events",
			"Retrieves all calendar events. Use this to get scheduled events for display or analysis.",
			func(ctx context.Context, _ empty) ([]entities.CalendarEvent, error) {
				return store.Events(ctx), nil
			}),

		registry.NewTool("add-calendar-event",
			"Creates a new calendar event. Use this when the user wants to schedule something.",
			func(ctx context.Context, in addEventInput) (entities.CalendarEvent, error) {
				start, err := parseTime(store, in.StartTime)
				if err != nil {
					return entities.CalendarEvent{}, err
				}
				end, err := parseTime(store, in.EndTime)
				if err != nil {
					return entities.CalendarEvent{}, err
				}
				return store.AddEvent(ctx, entities.NewEvent{
					Title:       in.Title,
					Description: in.Description,
					StartTime:   *start,
					EndTime:     *end,
					Type:        in.Type,
					Color:       in.Color,
				}), nil
			}),

		registry.NewTool("update-calendar-event",
			"Updates an existing calendar event, for example to reschedule it. Returns null when the event does not exist.",
			func(ctx context.Context, in updateEventInput) (*entities.CalendarEvent, error) {
				u := in.Updates.Fields
				patch := entities.EventPatch{
					Title:       u.Title,
					Description: nullAsEmpty(in.Updates.IsNull("description"), u.Description),
					Type:        u.Type,
					Color:       nullAsEmpty(in.Updates.IsNull("color"), u.Color),
				}
				var err error
				if u.StartTime != nil {
					if patch.StartTime, err = parseTime(store, *u.StartTime); err != nil {
						return nil, err
					}
				}
				if u.EndTime != nil {
					if patch.EndTime, err = parseTime(store, *u.EndTime); err != nil {
						return nil, err
					}
				}
				return found(store.UpdateEvent(ctx, in.ID, patch)), nil
			}),

		registry.NewTool("delete-calendar-event",
			"Deletes a calendar event by ID.",
			func(ctx context.Context, in idInput) (bool, error) {
				return store.DeleteEvent(ctx, in.ID), nil
			}),
	}
}

// nullAsEmpty maps an explicit null on a plain string field to ""
func nullAsEmpty(isNull bool, v *string) *string {
	if isNull {
		cleared := ""
		return &cleared
	}
	return v
}
