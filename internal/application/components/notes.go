package components

import (
	"context"
	"sort"
	"strings"

	"github.com/productivitybrain/core/internal/application/registry"
	"github.com/productivitybrain/core/internal/application/ui"
	"github.com/productivitybrain/core/internal/domain/entities"
)

type noteCardProps struct {
	Title   string             `json:"title" validate:"required" desc:"Note title"`
	Content string             `json:"content" validate:"required" desc:"Note content"`
	Color   entities.NoteColor `json:"color,omitempty" validate:"omitempty,oneof=white yellow blue green pink purple" default:"yellow"`
	Tags    []string           `json:"tags,omitempty" validate:"omitempty,dive,min=1"`
}

type notesGridProps struct {
	FilterTag string `json:"filterTag,omitempty" desc:"Only show notes carrying this tag"`
	SortBy    string `json:"sortBy,omitempty" validate:"omitempty,oneof=createdAt updatedAt title" default:"updatedAt" desc:"Sort notes by field"`
}

type noteArgs struct {
	NoteID string `json:"noteId" validate:"required"`
}

func noteCard() registry.Component {
	return registry.NewComponent("NoteCard",
		"Displays a single note card with color and tags. Use this to show one note's content.",
		func(_ context.Context, p noteCardProps) (ui.Node, error) {
			return noteNode(p.Title, p.Content, p.Color, p.Tags), nil
		},
	)
}

func noteNode(title, content string, color entities.NoteColor, tags []string) ui.Node {
	if color == "" {
		color = entities.NoteColorWhite
	}
	card := ui.Card(title, ui.Text(content)).WithAttr("color", string(color))
	if len(tags) > 0 {
		card = card.Append(tagBadges(tags)...)
	}
	return card
}

func notesGrid(d Deps) registry.Component {
	return registry.NewComponent("NotesGrid",
		"Displays notes in a grid layout with optional tag filtering. Use this to browse notes.",
		func(ctx context.Context, p notesGridProps) (ui.Node, error) {
			var notes []entities.Note
			for _, n := range d.Store.Notes(ctx) {
				if p.FilterTag != "" && !n.HasTag(p.FilterTag) {
					continue
				}
				notes = append(notes, n)
			}

			if len(notes) == 0 {
				return ui.Panel("Notes", ui.Empty("No notes found", "Ask me to create a note for you!")), nil
			}

			switch p.SortBy {
			case "title":
				sort.SliceStable(notes, func(i, j int) bool {
					return strings.ToLower(notes[i].Title) < strings.ToLower(notes[j].Title)
				})
			case "createdAt":
				sort.SliceStable(notes, func(i, j int) bool {
					return notes[i].CreatedAt.After(notes[j].CreatedAt)
				})
			default:
				sort.SliceStable(notes, func(i, j int) bool {
					return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
				})
			}

			cards := make([]ui.Node, 0, len(notes))
			for _, n := range notes {
				cards = append(cards, noteNode(n.Title, n.Content, n.Color, n.Tags).
					WithAttr("id", n.ID).
					WithActions(ui.Action{Name: "delete", Label: "Delete", Args: map[string]any{"noteId": n.ID}}))
			}
			return ui.Panel("Notes", ui.Grid(3, cards...)).WithAttr("count", len(notes)), nil
		},
		registry.WithAction("delete", "Delete a note",
			func(ctx context.Context, _ *notesGridProps, a noteArgs) error {
				d.Store.DeleteNote(ctx, a.NoteID)
				return nil
			}),
	)
}
