package tools

import (
	"context"

	"github.com/productivitybrain/core/internal/application/registry"
	"github.com/productivitybrain/core/internal/domain/entities"
	"github.com/productivitybrain/core/internal/ports"
)

type addNoteInput struct {
	Title   string             `json:"title" validate:"required"`
	Content string             `json:"content" validate:"required"`
	Color   entities.NoteColor `json:"color,omitempty" validate:"omitempty,oneof=white yellow blue green pink purple"`
	Tags    []string           `json:"tags,omitempty" validate:"omitempty,dive,min=1"`
}

type noteUpdates struct {
	Title   *string             `json:"title,omitempty" validate:"omitempty,min=1"`
	Content *string             `json:"content,omitempty"`
	Color   *entities.NoteColor `json:"color,omitempty" validate:"omitempty,oneof=white yellow blue green pink purple"`
	Tags    []string            `json:"tags,omitempty" validate:"omitempty,dive,min=1"`
}

type updateNoteInput struct {
	ID      string                      `json:"id" validate:"required" desc:"Note identifier"`
	Updates registry.Patch[noteUpdates] `json:"updates" desc:"Fields to change; null clears color or tags"`
}

func noteTools(store ports.Store) []registry.Tool {
	return []registry.Tool{
		registry.NewTool("get-notes",
			"Retrieves all notes. Use this to get notes for display or search.",
			func(ctx context.Context, _ empty) ([]entities.Note, error) {
				return store.Notes(ctx), nil
			}),

		registry.NewTool("add-note",
			"Creates a new note. Use this when the user wants to capture information.",
			func(ctx context.Context, in addNoteInput) (entities.Note, error) {
				return store.AddNote(ctx, entities.NewNote{
					Title:   in.Title,
					Content: in.Content,
					Color:   in.Color,
					Tags:    in.Tags,
				}), nil
			}),

		registry.NewTool("update-note",
			"Edits a note's title, content, color or tags. Returns null when the note does not exist.",
			func(ctx context.Context, in updateNoteInput) (*entities.Note, error) {
				u := in.Updates.Fields
				return found(store.UpdateNote(ctx, in.ID, entities.NotePatch{
					Title:      u.Title,
					Content:    u.Content,
					Color:      u.Color,
					ClearColor: in.Updates.IsNull("color"),
					Tags:       u.Tags,
					ClearTags:  in.Updates.IsNull("tags"),
				})), nil
			}),

		registry.NewTool("delete-note",
			"Deletes a note by ID.",
			func(ctx context.Context, in idInput) (bool, error) {
				return store.DeleteNote(ctx, in.ID), nil
			}),
	}
}
