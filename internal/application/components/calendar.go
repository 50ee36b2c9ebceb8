package components

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/productivitybrain/core/internal/application/registry"
	"github.com/productivitybrain/core/internal/application/ui"
	"github.com/productivitybrain/core/internal/domain/entities"
)

// maxEventsPerDay caps the events listed in one month cell
const maxEventsPerDay = 3

type calendarProps struct {
	View string `json:"view,omitempty" validate:"omitempty,oneof=day week month" default:"month" desc:"Calendar view type"`
	Date string `json:"date,omitempty" validate:"omitempty,timestamp" desc:"Date to display (ISO format)"`
}

type timeBlock struct {
	StartTime string             `json:"startTime" validate:"required,hhmm" desc:"HH:MM"`
	EndTime   string             `json:"endTime" validate:"required,hhmm" desc:"HH:MM"`
	Title     string             `json:"title" validate:"required"`
	Type      entities.EventType `json:"type" validate:"required,oneof=focus meeting break task"`
}

type timeBlocksProps struct {
	Date            string      `json:"date,omitempty" validate:"omitempty,timestamp" desc:"Day to lay out, defaults to today"`
	SuggestedBlocks []timeBlock `json:"suggestedBlocks,omitempty" validate:"omitempty,dive" desc:"Suggested time blocks"`
}

type scheduledTask struct {
	Day       string `json:"day" validate:"required,datekey" desc:"YYYY-MM-DD"`
	TaskID    string `json:"taskId,omitempty"`
	TaskTitle string `json:"taskTitle" validate:"required"`
	TimeSlot  string `json:"timeSlot,omitempty"`
}

type weeklyPlannerProps struct {
	WeekStartDate  string          `json:"weekStartDate,omitempty" validate:"omitempty,timestamp" desc:"First day of the week to plan"`
	Priorities     []string        `json:"priorities,omitempty" desc:"Top priorities for the week"`
	ScheduledTasks []scheduledTask `json:"scheduledTasks,omitempty" validate:"omitempty,dive" desc:"Tasks scheduled for specific days"`
}

func calendar(d Deps) registry.Component {
	return registry.NewComponent("Calendar",
		"Displays a calendar view with events and scheduled tasks. Use this for viewing schedules and planning time.",
		func(ctx context.Context, p calendarProps) (ui.Node, error) {
			anchor, err := anchorDay(d.Store, p.Date)
			if err != nil {
				return ui.Node{}, err
			}
			events := d.Store.Events(ctx)
			sort.SliceStable(events, func(i, j int) bool {
				return events[i].StartTime.Before(events[j].StartTime)
			})

			var (
				title string
				first time.Time
				days  int
			)
			switch p.View {
			case "day":
				title, first, days = anchor.Format("Monday, January 2, 2006"), anchor, 1
			case "week":
				first = entities.StartOfWeek(anchor, d.Analytics.WeekStart())
				days = 7
				title = first.Format("Jan 2") + " - " + first.AddDate(0, 0, 6).Format("Jan 2, 2006")
			default:
				month := entities.StartOfMonth(anchor)
				first = entities.StartOfWeek(month, d.Analytics.WeekStart())
				last := entities.StartOfWeek(month.AddDate(0, 1, -1), d.Analytics.WeekStart()).AddDate(0, 0, 6)
				days = int(last.Sub(first).Hours()/24+0.5) + 1
				title = anchor.Format("January 2006")
			}

			today := d.Store.Now()
			cells := make([]ui.Node, 0, days)
			for i := 0; i < days; i++ {
				day := first.AddDate(0, 0, i)
				cells = append(cells, dayCell(day, events, p.View, anchor, today))
			}

			panel := ui.Panel(title).WithAttr("view", p.View)
			if p.View == "day" {
				return panel.Append(cells...), nil
			}
			return panel.Append(ui.Grid(7, append(weekdayHeaders(d.Analytics.WeekStart()), cells...)...)), nil
		},
	)
}

func weekdayHeaders(start time.Weekday) []ui.Node {
	out := make([]ui.Node, 7)
	for i := range out {
		out[i] = ui.Heading(time.Weekday((int(start) + i) % 7).String()[:3])
	}
	return out
}

// dayCell lists a day's events; month cells truncate to maxEventsPerDay.
func dayCell(day time.Time, events []entities.CalendarEvent, view string, anchor, today time.Time) ui.Node {
	var todays []entities.CalendarEvent
	for _, e := range events {
		if e.OccursOn(day) {
			todays = append(todays, e)
		}
	}

	cell := ui.Column(day.Format("2")).
		WithAttr("date", entities.DateKey(day)).
		WithAttr("today", entities.SameDay(day, today))
	if view == "month" {
		cell = cell.WithAttr("inMonth", day.Month() == anchor.Month())
	}

	shown := todays
	if view == "month" && len(shown) > maxEventsPerDay {
		shown = shown[:maxEventsPerDay]
	}
	for _, e := range shown {
		cell = cell.Append(eventItem(e, day.Location()))
	}
	if hidden := len(todays) - len(shown); hidden > 0 {
		cell = cell.Append(ui.Text(fmt.Sprintf("+%d more", hidden)))
	}
	return cell
}

func eventItem(e entities.CalendarEvent, loc *time.Location) ui.Node {
	return ui.Item(e.StartTime.In(loc).Format("15:04")+" "+e.Title).
		WithAttr("id", e.ID).
		WithAttr("type", string(e.Type)).
		WithAttr("minutes", int(e.Duration().Minutes()))
}

func timeBlocks(d Deps) registry.Component {
	return registry.NewComponent("TimeBlocks",
		"Shows a day's schedule hour by hour alongside suggested time blocks. Use this for time-blocking a day.",
		func(ctx context.Context, p timeBlocksProps) (ui.Node, error) {
			day, err := anchorDay(d.Store, p.Date)
			if err != nil {
				return ui.Node{}, err
			}

			byHour := make(map[int][]entities.CalendarEvent)
			for _, e := range d.Store.Events(ctx) {
				if !e.OccursOn(day) {
					continue
				}
				h := e.StartTime.In(day.Location()).Hour()
				byHour[h] = append(byHour[h], e)
			}

			hours := make([]ui.Node, 0, 24)
			for h := 0; h < 24; h++ {
				row := ui.Item(fmt.Sprintf("%02d:00", h))
				for _, e := range byHour[h] {
					row = row.Append(ui.Badge(e.Title, string(e.Type)).WithAttr("id", e.ID))
				}
				hours = append(hours, row)
			}

			panel := ui.Panel("Time Blocks - "+day.Format("Monday, Jan 2"), ui.List(hours...))
			if len(p.SuggestedBlocks) > 0 {
				suggestions := make([]ui.Node, 0, len(p.SuggestedBlocks))
				for _, b := range p.SuggestedBlocks {
					suggestions = append(suggestions, ui.Item(fmt.Sprintf("%s - %s: %s", b.StartTime, b.EndTime, b.Title)).
						WithAttr("type", string(b.Type)))
				}
				panel = panel.Append(ui.Heading("Suggested Blocks"), ui.List(suggestions...))
			}
			return panel, nil
		},
	)
}

func weeklyPlanner(d Deps) registry.Component {
	return registry.NewComponent("WeeklyPlanner",
		"Displays a weekly planning view with priorities and scheduled tasks per day. Use this for weekly planning sessions.",
		func(ctx context.Context, p weeklyPlannerProps) (ui.Node, error) {
			var start time.Time
			if p.WeekStartDate != "" {
				day, err := anchorDay(d.Store, p.WeekStartDate)
				if err != nil {
					return ui.Node{}, err
				}
				start = day
			} else {
				start = entities.StartOfWeek(d.Store.Now(), d.Analytics.WeekStart())
			}

			status := make(map[string]entities.TaskStatus)
			for _, t := range d.Store.Tasks(ctx) {
				status[t.ID] = t.Status
			}

			end := start.AddDate(0, 0, 6)
			panel := ui.Panel("Weekly Planner", ui.Text(start.Format("Jan 2")+" - "+end.Format("Jan 2, 2006")))

			if len(p.Priorities) > 0 {
				items := make([]ui.Node, 0, len(p.Priorities))
				for i, pr := range p.Priorities {
					items = append(items, ui.Item(fmt.Sprintf("%d. %s", i+1, pr)))
				}
				panel = panel.Append(ui.Heading("Top Priorities"), ui.List(items...))
			}

			days := make([]ui.Node, 0, 7)
			for i := 0; i < 7; i++ {
				day := start.AddDate(0, 0, i)
				key := entities.DateKey(day)
				col := ui.Column(day.Format("Mon Jan 2")).WithAttr("date", key)
				for _, st := range p.ScheduledTasks {
					if st.Day != key {
						continue
					}
					item := ui.Item(st.TaskTitle)
					if st.TimeSlot != "" {
						item = item.Append(ui.Badge(st.TimeSlot, "time"))
					}
					if st.TaskID != "" {
						item = item.WithAttr("taskId", st.TaskID)
						if s, ok := status[st.TaskID]; ok {
							item = item.WithAttr("done", s == entities.TaskStatusDone)
						}
					}
					col = col.Append(item)
				}
				days = append(days, col)
			}
			return panel.Append(ui.Grid(7, days...)), nil
		},
	)
}
