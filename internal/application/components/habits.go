package components

import (
	"context"
	"fmt"

	"github.com/productivitybrain/core/internal/application/registry"
	"github.com/productivitybrain/core/internal/application/ui"
	"github.com/productivitybrain/core/internal/domain/entities"
)

type habitTrackerProps struct {
	View            string `json:"view,omitempty" validate:"omitempty,oneof=grid list calendar" default:"grid" desc:"Display view type"`
	FilterFrequency string `json:"filterFrequency,omitempty" validate:"omitempty,oneof=all daily weekly" default:"all" desc:"Filter by frequency"`
}

type toggleDayArgs struct {
	HabitID string `json:"habitId" validate:"required"`
	Date    string `json:"date" validate:"required,datekey" desc:"YYYY-MM-DD"`
}

func habitTracker(d Deps) registry.Component {
	return registry.NewComponent("HabitTracker",
		"Displays habits with completion tracking and streaks. Use this to build and monitor daily or weekly habits.",
		func(ctx context.Context, p habitTrackerProps) (ui.Node, error) {
			var habits []entities.Habit
			for _, h := range d.Store.Habits(ctx) {
				if p.FilterFrequency == "all" || string(h.Frequency) == p.FilterFrequency {
					habits = append(habits, h)
				}
			}
			if len(habits) == 0 {
				return ui.Panel("Habit Tracker", ui.Empty("No habits yet", "Ask me to help you start a new habit!")), nil
			}

			days := 7
			if p.View == "calendar" {
				days = 28
			}
			today := entities.StartOfDay(d.Store.Now())

			rows := make([]ui.Node, 0, len(habits))
			for _, h := range habits {
				row := ui.Card(h.Name,
					ui.Badge(titleCase(string(h.Frequency)), string(h.Frequency)),
					ui.Stat("Current streak", fmt.Sprintf("%d days", h.Streak)).WithAttr("days", h.Streak),
				).WithAttr("id", h.ID)

				cells := make([]ui.Node, 0, days)
				for i := days - 1; i >= 0; i-- {
					day := today.AddDate(0, 0, -i)
					key := entities.DateKey(day)
					cells = append(cells, ui.Item(day.Format("Mon 2")).
						WithAttr("date", key).
						WithAttr("completed", h.IsCompletedOn(key)).
						WithAttr("today", i == 0).
						WithActions(ui.Action{
							Name:  "toggle-day",
							Label: "Toggle " + key,
							Args:  map[string]any{"habitId": h.ID, "date": key},
						}))
				}
				strip := ui.Grid(7, cells...)
				rows = append(rows, row.Append(strip, ui.Text(fmt.Sprintf("Best streak: %d days", h.BestStreak))))
			}

			panel := ui.Panel("Habit Tracker").WithAttr("view", p.View)
			if p.View == "list" {
				return panel.Append(ui.List(rows...)), nil
			}
			return panel.Append(ui.Grid(2, rows...)), nil
		},
		registry.WithAction("toggle-day", "Mark or unmark a habit as done on a day",
			func(ctx context.Context, _ *habitTrackerProps, a toggleDayArgs) error {
				d.Store.ToggleHabitDate(ctx, a.HabitID, a.Date)
				return nil
			}),
	)
}
