package components

import (
	"context"
	"fmt"
	"strings"

	"github.com/productivitybrain/core/internal/application/registry"
	"github.com/productivitybrain/core/internal/application/ui"
	"github.com/productivitybrain/core/internal/domain/entities"
	"github.com/productivitybrain/core/internal/ports"
)

type goalTrackerProps struct {
	FilterStatus   string `json:"filterStatus,omitempty" validate:"omitempty,oneof=all active completed paused" default:"all" desc:"Filter goals by status"`
	ShowMilestones *bool  `json:"showMilestones,omitempty" default:"true" desc:"Show milestones under each goal"`
}

type progressChartProps struct {
	Type      ports.SeriesKind  `json:"type" validate:"required,oneof=tasks focus goals habits" desc:"Type of data to chart"`
	Period    ports.ChartPeriod `json:"period,omitempty" validate:"omitempty,oneof=week month quarter year" default:"week" desc:"Time period"`
	ChartType string            `json:"chartType,omitempty" validate:"omitempty,oneof=line bar area" default:"line" desc:"Chart visualization type"`
}

type reportMetrics struct {
	TasksCompleted int `json:"tasksCompleted" validate:"gte=0"`
	FocusTime      int `json:"focusTime" validate:"gte=0" desc:"Minutes"`
	GoalProgress   int `json:"goalProgress" validate:"gte=0,lte=100"`
	HabitStreak    int `json:"habitStreak" validate:"gte=0"`
}

type productivityReportProps struct {
	Period          ports.Period   `json:"period" validate:"required,oneof=today week month" desc:"Report period"`
	Insights        []string       `json:"insights,omitempty" desc:"Key insights"`
	Recommendations []string       `json:"recommendations,omitempty" desc:"Recommendations"`
	Metrics         *reportMetrics `json:"metrics,omitempty" desc:"Key metrics, computed from the store when omitted"`
}

var chartTitles = map[ports.SeriesKind]string{
	ports.SeriesTasks:  "Tasks Completed",
	ports.SeriesFocus:  "Focus Time (minutes)",
	ports.SeriesGoals:  "Goal Progress (%)",
	ports.SeriesHabits: "Habit Completion",
}

func goalTracker(d Deps) registry.Component {
	return registry.NewComponent("GoalTracker",
		"Displays goals with progress bars and milestones. Use this to track long-term goals and their progress.",
		func(ctx context.Context, p goalTrackerProps) (ui.Node, error) {
			var goals []entities.Goal
			for _, g := range d.Store.Goals(ctx) {
				if p.FilterStatus == "all" || string(g.Status) == p.FilterStatus {
					goals = append(goals, g)
				}
			}
			if len(goals) == 0 {
				return ui.Panel("Goals", ui.Empty("No goals yet", "Ask me to help you set a goal!")), nil
			}

			showMilestones := p.ShowMilestones == nil || *p.ShowMilestones
			loc := d.Store.Location()

			cards := make([]ui.Node, 0, len(goals))
			for _, g := range goals {
				card := ui.Card(g.Title, ui.Badge(titleCase(string(g.Status)), string(g.Status))).WithAttr("id", g.ID)
				if g.Description != "" {
					card = card.Append(ui.Text(g.Description))
				}
				card = card.Append(ui.Progress("Progress", g.Progress))

				if showMilestones && len(g.Milestones) > 0 {
					items := make([]ui.Node, 0, len(g.Milestones))
					for _, m := range g.Milestones {
						items = append(items, ui.Item(m.Title).WithAttr("completed", m.Completed))
					}
					card = card.Append(
						ui.Heading(fmt.Sprintf("Milestones (%d/%d)", g.CompletedMilestones(), len(g.Milestones))),
						ui.List(items...),
					)
				}
				if g.TargetDate != nil {
					card = card.Append(ui.Text("Target: " + g.TargetDate.In(loc).Format("Jan 2, 2006")))
				}
				cards = append(cards, card)
			}
			return ui.Panel("Goals", cards...), nil
		},
	)
}

func progressChart(d Deps) registry.Component {
	return registry.NewComponent("ProgressChart",
		"Displays progress charts for tasks, focus time, goals or habits over time. Use this to visualize productivity trends.",
		func(ctx context.Context, p progressChartProps) (ui.Node, error) {
			points := d.Analytics.ProgressSeries(ctx, p.Type, p.Period)
			title := chartTitles[p.Type]

			chart := ui.Node{
				Kind: ui.KindChart,
				Text: title,
				Attrs: map[string]any{
					"chartType": p.ChartType,
					"series":    points,
				},
			}
			return ui.Panel(title,
				chart,
				ui.Text(fmt.Sprintf("Showing %s data for %s", p.Period, strings.ToLower(title))),
			), nil
		},
	)
}

func productivityReport(d Deps) registry.Component {
	return registry.NewComponent("ProductivityReport",
		"Displays a productivity report with metrics, insights and recommendations. Use this to summarise how a period went.",
		func(ctx context.Context, p productivityReportProps) (ui.Node, error) {
			m := p.Metrics
			if m == nil {
				stats := d.Analytics.AnalyzeProductivity(ctx, p.Period)
				m = &reportMetrics{
					TasksCompleted: stats.TasksCompleted,
					FocusTime:      stats.FocusTime,
					GoalProgress:   stats.GoalProgress,
					HabitStreak:    stats.CurrentStreak,
				}
			}

			panel := ui.Panel("Productivity Report",
				ui.Text(periodLabel(string(p.Period))),
				ui.Grid(4,
					ui.Stat("Tasks Completed", m.TasksCompleted),
					ui.Stat("Focus Time", fmt.Sprintf("%dh %dm", m.FocusTime/60, m.FocusTime%60)).WithAttr("minutes", m.FocusTime),
					ui.Stat("Goal Progress", fmt.Sprintf("%d%%", m.GoalProgress)).WithAttr("percent", m.GoalProgress),
					ui.Stat("Habit Streak", fmt.Sprintf("%d days", m.HabitStreak)).WithAttr("days", m.HabitStreak),
				),
			)
			if len(p.Insights) > 0 {
				panel = panel.Append(ui.Heading("Insights"), textList(p.Insights))
			}
			if len(p.Recommendations) > 0 {
				panel = panel.Append(ui.Heading("Recommendations"), textList(p.Recommendations))
			}
			return panel, nil
		},
	)
}

func textList(lines []string) ui.Node {
	items := make([]ui.Node, 0, len(lines))
	for _, l := range lines {
		items = append(items, ui.Item(l))
	}
	return ui.List(items...)
}
