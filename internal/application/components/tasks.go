package components

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/productivitybrain/core/internal/application/registry"
	"github.com/productivitybrain/core/internal/application/ui"
	"github.com/productivitybrain/core/internal/domain/entities"
	"github.com/productivitybrain/core/internal/ports"
)

type taskListProps struct {
	FilterStatus   string `json:"filterStatus,omitempty" validate:"omitempty,oneof=all todo in-progress done" default:"all" desc:"Filter tasks by status"`
	FilterPriority string `json:"filterPriority,omitempty" validate:"omitempty,oneof=all low medium high" default:"all" desc:"Filter tasks by priority"`
	SortBy         string `json:"sortBy,omitempty" validate:"omitempty,oneof=dueDate priority createdAt" default:"createdAt" desc:"Sort tasks by field"`
}

type taskBoardProps struct {
	FilterPriority string `json:"filterPriority,omitempty" validate:"omitempty,oneof=all low medium high" default:"all" desc:"Filter tasks by priority"`
}

type taskStatsProps struct {
	Period ports.StatsPeriod `json:"period,omitempty" validate:"omitempty,oneof=today week month all" default:"all" desc:"Time period for statistics"`
}

type taskArgs struct {
	TaskID string `json:"taskId" validate:"required"`
}

type moveTaskArgs struct {
	TaskID string              `json:"taskId" validate:"required"`
	Status entities.TaskStatus `json:"status" validate:"required,oneof=todo in-progress done"`
}

var boardColumns = []struct {
	status entities.TaskStatus
	title  string
}{
	{entities.TaskStatusTodo, "To Do"},
	{entities.TaskStatusInProgress, "In Progress"},
	{entities.TaskStatusDone, "Done"},
}

func taskList(d Deps) registry.Component {
	return registry.NewComponent("TaskList",
		"Displays a list of tasks with options to filter by status or priority. Use this for viewing and managing tasks in a list format.",
		func(ctx context.Context, p taskListProps) (ui.Node, error) {
			var tasks []entities.Task
			for _, t := range d.Store.Tasks(ctx) {
				if p.FilterStatus != "all" && string(t.Status) != p.FilterStatus {
					continue
				}
				if p.FilterPriority != "all" && string(t.Priority) != p.FilterPriority {
					continue
				}
				tasks = append(tasks, t)
			}
			sortTasks(tasks, p.SortBy)

			if len(tasks) == 0 {
				return ui.Panel("Task List", ui.Empty("No tasks found", "Try adjusting your filters or create a new task")), nil
			}

			now := d.Store.Now()
			items := make([]ui.Node, 0, len(tasks))
			for _, t := range tasks {
				items = append(items, taskItem(t, now).WithActions(
					ui.Action{Name: "toggle-status", Label: "Toggle status", Args: map[string]any{"taskId": t.ID}},
					ui.Action{Name: "delete", Label: "Delete", Args: map[string]any{"taskId": t.ID}},
				))
			}
			return ui.Panel("Task List",
				ui.Text(fmt.Sprintf("%d tasks", len(tasks))),
				ui.List(items...),
			).WithAttr("count", len(tasks)), nil
		},
		registry.WithAction("toggle-status", "Advance a task through todo, in-progress and done",
			func(ctx context.Context, _ *taskListProps, a taskArgs) error {
				d.Store.AdvanceTaskStatus(ctx, a.TaskID)
				return nil
			}),
		registry.WithAction("delete", "Delete a task",
			func(ctx context.Context, _ *taskListProps, a taskArgs) error {
				d.Store.DeleteTask(ctx, a.TaskID)
				return nil
			}),
	)
}

// sortTasks orders by due date (undated last), by priority (high first) or
// by creation time (newest first).
func sortTasks(tasks []entities.Task, by string) {
	switch by {
	case "dueDate":
		sort.SliceStable(tasks, func(i, j int) bool {
			a, b := tasks[i].DueDate, tasks[j].DueDate
			if a == nil || b == nil {
				return a != nil && b == nil
			}
			return a.Before(*b)
		})
	case "priority":
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].Priority.Rank() < tasks[j].Priority.Rank()
		})
	default:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		})
	}
}

// taskItem renders one task row with its status, priority, due date,
// estimate and tags.
func taskItem(t entities.Task, now time.Time) ui.Node {
	badges := []ui.Node{
		ui.Badge(string(t.Status), string(t.Status)),
		ui.Badge(string(t.Priority), string(t.Priority)),
	}
	if t.DueDate != nil {
		tone := "due"
		if t.IsOverdue(now) {
			tone = "overdue"
		}
		badges = append(badges, ui.Badge("Due: "+t.DueDate.In(now.Location()).Format("Jan 2, 2006"), tone))
	}
	if t.EstimatedTime != nil {
		badges = append(badges, ui.Badge(fmt.Sprintf("~%dm", *t.EstimatedTime), "estimate"))
	}
	badges = append(badges, tagBadges(t.Tags)...)

	item := ui.Item(t.Title)
	if t.Description != "" {
		item = item.Append(ui.Text(t.Description))
	}
	return item.Append(badges...).
		WithAttr("id", t.ID).
		WithAttr("status", string(t.Status)).
		WithAttr("done", t.Status == entities.TaskStatusDone)
}

func taskBoard(d Deps) registry.Component {
	return registry.NewComponent("TaskBoard",
		"Displays tasks in a kanban board with To Do, In Progress and Done columns. Use this for visual task management.",
		func(ctx context.Context, p taskBoardProps) (ui.Node, error) {
			byStatus := make(map[entities.TaskStatus][]entities.Task, len(boardColumns))
			for _, t := range d.Store.Tasks(ctx) {
				if p.FilterPriority != "all" && string(t.Priority) != p.FilterPriority {
					continue
				}
				byStatus[t.Status] = append(byStatus[t.Status], t)
			}

			now := d.Store.Now()
			columns := make([]ui.Node, 0, len(boardColumns))
			for _, col := range boardColumns {
				tasks := byStatus[col.status]
				column := ui.Column(col.title).
					WithAttr("status", string(col.status)).
					WithAttr("count", len(tasks))
				if len(tasks) == 0 {
					column = column.Append(ui.Empty("No tasks", ""))
				}
				for _, t := range tasks {
					card := taskItem(t, now)
					for _, next := range boardColumns {
						if next.status == t.Status {
							continue
						}
						card = card.WithActions(ui.Action{
							Name:  "move",
							Label: "Move to " + next.title,
							Args:  map[string]any{"taskId": t.ID, "status": string(next.status)},
						})
					}
					column = column.Append(card.WithActions(ui.Action{
						Name: "delete", Label: "Delete", Args: map[string]any{"taskId": t.ID},
					}))
				}
				columns = append(columns, column)
			}
			return ui.Panel("Task Board", ui.Grid(len(columns), columns...)), nil
		},
		registry.WithAction("move", "Move a task to another column",
			func(ctx context.Context, _ *taskBoardProps, a moveTaskArgs) error {
				d.Store.SetTaskStatus(ctx, a.TaskID, a.Status)
				return nil
			}),
		registry.WithAction("delete", "Delete a task",
			func(ctx context.Context, _ *taskBoardProps, a taskArgs) error {
				d.Store.DeleteTask(ctx, a.TaskID)
				return nil
			}),
	)
}

func taskStats(d Deps) registry.Component {
	return registry.NewComponent("TaskStats",
		"Shows task statistics including completion rate, priority breakdown and overdue tasks. Use this to give an overview of task progress.",
		func(ctx context.Context, p taskStatsProps) (ui.Node, error) {
			s := d.Analytics.TaskStats(ctx, p.Period)

			panel := ui.Panel("Task Statistics",
				ui.Text(periodLabel(string(p.Period))),
				ui.Grid(4,
					ui.Stat("Total", s.Total),
					ui.Stat("Completed", s.Completed),
					ui.Stat("In Progress", s.InProgress),
					ui.Stat("To Do", s.Todo),
				),
				ui.Progress("Completion Rate", s.CompletionRate),
				ui.Heading("Active Tasks by Priority"),
				ui.List(
					ui.Stat("High Priority", s.ByPriority.High).WithAttr("tone", "high"),
					ui.Stat("Medium Priority", s.ByPriority.Medium).WithAttr("tone", "medium"),
					ui.Stat("Low Priority", s.ByPriority.Low).WithAttr("tone", "low"),
				),
			)
			if s.Overdue > 0 {
				label := fmt.Sprintf("%d Overdue Task", s.Overdue)
				if s.Overdue > 1 {
					label += "s"
				}
				panel = panel.Append(ui.Badge(label, "overdue"), ui.Text("Tasks past their due date need attention"))
			}
			return panel, nil
		},
	)
}
