package components

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/productivitybrain/core/internal/adapters/storage"
	"github.com/productivitybrain/core/internal/application/registry"
	"github.com/productivitybrain/core/internal/application/services"
	"github.com/productivitybrain/core/internal/application/store"
	"github.com/productivitybrain/core/internal/application/ui"
	"github.com/productivitybrain/core/internal/domain/entities"
	"github.com/productivitybrain/core/internal/infrastructure/logger"
	"github.com/productivitybrain/core/internal/ports"
)

// Wednesday afternoon
var fixedNow = time.Date(2024, 3, 13, 15, 0, 0, 0, time.UTC)

type fixture struct {
	registry *registry.Components
	store    *store.Store
	timers   *services.FocusTimers
}

func setup(t *testing.T) fixture {
	t.Helper()
	s := store.New(storage.NewMemory(), logger.NewNop(),
		store.WithClock(func() time.Time { return fixedNow }),
		store.WithLocation(time.UTC),
	)
	timers := services.NewFocusTimers(s, time.Hour, 25, nil, logger.NewNop())
	t.Cleanup(timers.Close)

	r := registry.NewComponents()
	require.NoError(t, Register(r, Deps{
		Store:     s,
		Analytics: services.NewAnalyticsService(s, time.Sunday, logger.NewNop()),
		Timers:    timers,
	}))
	return fixture{registry: r, store: s, timers: timers}
}

func (f fixture) render(t *testing.T, name, props string) ui.Node {
	t.Helper()
	node, err := f.registry.Render(context.Background(), name, json.RawMessage(props))
	require.NoError(t, err)
	return node
}

func (f fixture) act(t *testing.T, name, action, props, args string) ui.Node {
	t.Helper()
	node, err := f.registry.Act(context.Background(), name, action, json.RawMessage(props), json.RawMessage(args))
	require.NoError(t, err)
	return node
}

func at(day, hour int) time.Time {
	return time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func texts(nodes []ui.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Text)
	}
	return out
}

func stat(t *testing.T, tree ui.Node, label string) any {
	t.Helper()
	n, ok := tree.Find(func(n ui.Node) bool { return n.Kind == ui.KindStat && n.Text == label })
	require.True(t, ok, "stat %q", label)
	return n.Attrs["value"]
}

func seedTasks(f fixture) {
	f.store.SaveTasks(context.Background(), []entities.Task{
		{ID: "task-a", Title: "A", Status: entities.TaskStatusTodo, Priority: entities.PriorityHigh, DueDate: ptr(at(20, 0)), CreatedAt: at(1, 9)},
		{ID: "task-b", Title: "B", Status: entities.TaskStatusInProgress, Priority: entities.PriorityLow, CreatedAt: at(3, 9)},
		{ID: "task-c", Title: "C", Status: entities.TaskStatusDone, Priority: entities.PriorityMedium, DueDate: ptr(at(10, 0)), CreatedAt: at(2, 9), CompletedAt: ptr(at(11, 9))},
		{ID: "task-d", Title: "D", Status: entities.TaskStatusTodo, Priority: entities.PriorityMedium, DueDate: ptr(at(12, 0)), CreatedAt: at(4, 9)},
	})
}

func TestAllComponentsRegistered(t *testing.T) {
	f := setup(t)

	var names []string
	for _, c := range f.registry.List() {
		names = append(names, c.Name)
		assert.NotEmpty(t, c.Description, c.Name)
		assert.Equal(t, "object", c.PropsSchema.Type, c.Name)
	}
	assert.Equal(t, []string{
		"TaskList", "TaskBoard", "TaskStats", "Calendar", "TimeBlocks", "FocusTimer",
		"NoteCard", "NotesGrid", "GoalTracker", "WeeklyPlanner", "ProgressChart",
		"ProductivityReport", "HabitTracker",
	}, names)

	list, ok := f.registry.Get("TaskList")
	require.True(t, ok)
	require.Len(t, list.Actions, 2)
	assert.Equal(t, "toggle-status", list.Actions[0].Name)
	assert.Equal(t, []string{"taskId"}, list.Actions[0].ArgsSchema.Required)
}

func TestTaskListFiltersAndSorts(t *testing.T) {
	f := setup(t)
	seedTasks(f)

	tests := []struct {
		props string
		want  []string
	}{
		{`{}`, []string{"D", "B", "C", "A"}},
		{`{"sortBy":"priority"}`, []string{"A", "C", "D", "B"}},
		{`{"sortBy":"dueDate"}`, []string{"C", "D", "A", "B"}},
		{`{"filterStatus":"todo","sortBy":"dueDate"}`, []string{"D", "A"}},
		{`{"filterPriority":"medium"}`, []string{"D", "C"}},
	}
	for _, tt := range tests {
		t.Run(tt.props, func(t *testing.T) {
			tree := f.render(t, "TaskList", tt.props)
			assert.Equal(t, tt.want, texts(tree.FindAll(ui.OfKind(ui.KindItem))))
			assert.Equal(t, len(tt.want), tree.Attrs["count"])
		})
	}
}

func TestTaskListItemBadges(t *testing.T) {
	f := setup(t)
	seedTasks(f)

	tree := f.render(t, "TaskList", `{"filterStatus":"todo","sortBy":"dueDate"}`)
	items := tree.FindAll(ui.OfKind(ui.KindItem))
	require.Len(t, items, 2)

	overdue, ok := items[0].Find(func(n ui.Node) bool { return n.Kind == ui.KindBadge && n.Attrs["tone"] == "overdue" })
	require.True(t, ok, "D is past due")
	assert.Equal(t, "Due: Mar 12, 2024", overdue.Text)

	_, ok = items[1].Find(func(n ui.Node) bool { return n.Attrs["tone"] == "overdue" })
	assert.False(t, ok)

	require.Len(t, items[0].Actions, 2)
	assert.Equal(t, map[string]any{"taskId": "task-d"}, items[0].Actions[0].Args)
}

func TestTaskListEmpty(t *testing.T) {
	f := setup(t)

	tree := f.render(t, "TaskList", `{}`)
	empty, ok := tree.Find(ui.OfKind(ui.KindEmpty))
	require.True(t, ok)
	assert.Equal(t, "No tasks found", empty.Text)
}

func TestTaskListActions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	task := f.store.AddTask(ctx, entities.NewTask{Title: "A", Priority: entities.PriorityHigh})

	args := `{"taskId":"` + task.ID + `"}`
	tree := f.act(t, "TaskList", "toggle-status", `{}`, args)
	item, ok := tree.Find(ui.OfKind(ui.KindItem))
	require.True(t, ok)
	assert.Equal(t, "in-progress", item.Attrs["status"])

	tree = f.act(t, "TaskList", "toggle-status", `{}`, args)
	item, _ = tree.Find(ui.OfKind(ui.KindItem))
	assert.Equal(t, true, item.Attrs["done"])

	stored := f.store.Tasks(ctx)
	require.Len(t, stored, 1)
	require.NotNil(t, stored[0].CompletedAt)

	tree = f.act(t, "TaskList", "toggle-status", `{"filterStatus":"done"}`, args)
	_, ok = tree.Find(ui.OfKind(ui.KindEmpty))
	assert.True(t, ok, "task went back to todo")
	assert.Nil(t, f.store.Tasks(ctx)[0].CompletedAt)

	f.act(t, "TaskList", "toggle-status", `{}`, `{"taskId":"task-missing"}`)

	tree = f.act(t, "TaskList", "delete", `{}`, args)
	_, ok = tree.Find(ui.OfKind(ui.KindEmpty))
	assert.True(t, ok)
	assert.Empty(t, f.store.Tasks(ctx))
}

func TestTaskBoardMove(t *testing.T) {
	f := setup(t)
	seedTasks(f)

	tree := f.render(t, "TaskBoard", `{}`)
	columns := tree.FindAll(ui.OfKind(ui.KindColumn))
	require.Len(t, columns, 3)
	assert.Equal(t, []string{"To Do", "In Progress", "Done"}, texts(columns))
	assert.Equal(t, 2, columns[0].Attrs["count"])

	tree = f.act(t, "TaskBoard", "move", `{}`, `{"taskId":"task-a","status":"done"}`)
	columns = tree.FindAll(ui.OfKind(ui.KindColumn))
	assert.Equal(t, 1, columns[0].Attrs["count"])
	assert.Equal(t, 2, columns[2].Attrs["count"])

	for _, task := range f.store.Tasks(context.Background()) {
		if task.ID == "task-a" {
			require.NotNil(t, task.CompletedAt)
			assert.True(t, task.CompletedAt.Equal(fixedNow))
		}
	}

	tree = f.render(t, "TaskBoard", `{"filterPriority":"low"}`)
	columns = tree.FindAll(ui.OfKind(ui.KindColumn))
	assert.Equal(t, []any{0, 1, 0}, []any{columns[0].Attrs["count"], columns[1].Attrs["count"], columns[2].Attrs["count"]})

	_, err := f.registry.Act(context.Background(), "TaskBoard", "move", nil, json.RawMessage(`{"taskId":"task-a","status":"blocked"}`))
	var verr *registry.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "action", verr.Kind)
}

func TestTaskStats(t *testing.T) {
	f := setup(t)
	seedTasks(f)

	tree := f.render(t, "TaskStats", `{}`)
	assert.Equal(t, 4, stat(t, tree, "Total"))
	assert.Equal(t, 1, stat(t, tree, "Completed"))
	assert.Equal(t, 1, stat(t, tree, "High Priority"))

	bar, ok := tree.Find(ui.OfKind(ui.KindProgress))
	require.True(t, ok)
	assert.Equal(t, 25, bar.Attrs["percent"])

	overdue, ok := tree.Find(func(n ui.Node) bool { return n.Kind == ui.KindBadge })
	require.True(t, ok)
	assert.Equal(t, "1 Overdue Task", overdue.Text)

	_, err := f.registry.Render(context.Background(), "TaskStats", json.RawMessage(`{"period":"year"}`))
	assert.Error(t, err)
}

func seedEvents(f fixture) {
	ctx := context.Background()
	for i, hour := range []int{9, 11, 13, 16} {
		f.store.AddEvent(ctx, entities.NewEvent{
			Title:     []string{"Standup", "Review", "Lunch", "Focus"}[i],
			StartTime: at(13, hour),
			EndTime:   at(13, hour).Add(30 * time.Minute),
			Type:      entities.EventTypeMeeting,
		})
	}
	f.store.AddEvent(ctx, entities.NewEvent{Title: "Planning", StartTime: at(18, 10), EndTime: at(18, 11), Type: entities.EventTypeTask})
}

func TestCalendarViews(t *testing.T) {
	f := setup(t)
	seedEvents(f)

	t.Run("month", func(t *testing.T) {
		tree := f.render(t, "Calendar", `{}`)
		assert.Equal(t, "March 2024", tree.Text)

		cells := tree.FindAll(ui.OfKind(ui.KindColumn))
		require.Len(t, cells, 42)
		assert.Equal(t, "2024-02-25", cells[0].Attrs["date"])
		assert.Equal(t, false, cells[0].Attrs["inMonth"])
		assert.Equal(t, "2024-04-06", cells[41].Attrs["date"])

		today := cells[17]
		assert.Equal(t, "2024-03-13", today.Attrs["date"])
		assert.Equal(t, true, today.Attrs["today"])
		assert.Equal(t, []string{"09:00 Standup", "11:00 Review", "13:00 Lunch"}, texts(today.FindAll(ui.OfKind(ui.KindItem))))
		more, ok := today.Find(ui.OfKind(ui.KindText))
		require.True(t, ok)
		assert.Equal(t, "+1 more", more.Text)

		headers := tree.FindAll(ui.OfKind(ui.KindHeading))
		assert.Equal(t, "Sun", headers[0].Text)
	})

	t.Run("week", func(t *testing.T) {
		tree := f.render(t, "Calendar", `{"view":"week","date":"2024-03-18"}`)
		cells := tree.FindAll(ui.OfKind(ui.KindColumn))
		require.Len(t, cells, 7)
		assert.Equal(t, "2024-03-17", cells[0].Attrs["date"])
		assert.Equal(t, []string{"10:00 Planning"}, texts(cells[1].FindAll(ui.OfKind(ui.KindItem))))
	})

	t.Run("day", func(t *testing.T) {
		tree := f.render(t, "Calendar", `{"view":"day"}`)
		cells := tree.FindAll(ui.OfKind(ui.KindColumn))
		require.Len(t, cells, 1)
		assert.Len(t, cells[0].FindAll(ui.OfKind(ui.KindItem)), 4, "day view does not truncate")
	})

	_, err := f.registry.Render(context.Background(), "Calendar", json.RawMessage(`{"date":"someday"}`))
	assert.Error(t, err)
}

func TestTimeBlocks(t *testing.T) {
	f := setup(t)
	seedEvents(f)

	tree := f.render(t, "TimeBlocks", `{"suggestedBlocks":[{"startTime":"14:00","endTime":"15:30","title":"Deep work","type":"focus"}]}`)
	list, ok := tree.Find(ui.OfKind(ui.KindList))
	require.True(t, ok)
	require.Len(t, list.Children, 24)
	assert.Equal(t, "09:00", list.Children[9].Text)
	assert.Equal(t, []string{"Standup"}, texts(list.Children[9].Children))
	assert.Empty(t, list.Children[10].Children)

	suggested := tree.FindAll(func(n ui.Node) bool { return n.Kind == ui.KindItem && n.Attrs["type"] == "focus" })
	assert.Equal(t, []string{"14:00 - 15:30: Deep work"}, texts(suggested))

	_, err := f.registry.Render(context.Background(), "TimeBlocks", json.RawMessage(`{"suggestedBlocks":[{"startTime":"2pm","endTime":"15:30","title":"x","type":"focus"}]}`))
	assert.Error(t, err)
}

func TestFocusTimerActions(t *testing.T) {
	defer goleak.VerifyNone(t)
	f := setup(t)
	defer f.timers.Close()

	tree := f.render(t, "FocusTimer", `{"taskTitle":"Write report"}`)
	clock, ok := tree.Find(ui.OfKind(ui.KindTimer))
	require.True(t, ok)
	assert.Equal(t, "25:00", clock.Text)
	require.Len(t, clock.Actions, 1)
	assert.Equal(t, "start", clock.Actions[0].Name)

	props := `{"duration":10,"taskId":"task-1"}`
	tree = f.act(t, "FocusTimer", "start", props, `{}`)
	clock, _ = tree.Find(ui.OfKind(ui.KindTimer))
	assert.Equal(t, "10:00", clock.Text)
	assert.Equal(t, true, clock.Attrs["running"])
	timerID, _ := clock.Attrs["timerId"].(string)
	require.NotEmpty(t, timerID)
	assert.Equal(t, []string{"pause", "reset"}, []string{clock.Actions[0].Name, clock.Actions[1].Name})

	state, ok := f.timers.Get(timerID)
	require.True(t, ok)
	assert.Equal(t, "task-1", state.TaskID)

	tree = f.act(t, "FocusTimer", "pause", props, `{"timerId":"`+timerID+`"}`)
	clock, _ = tree.Find(ui.OfKind(ui.KindTimer))
	assert.Equal(t, false, clock.Attrs["running"])
	assert.Equal(t, "start", clock.Actions[0].Name)
	assert.Equal(t, timerID, clock.Actions[0].Args["timerId"])

	tree = f.act(t, "FocusTimer", "reset", props, `{"timerId":"`+timerID+`"}`)
	clock, _ = tree.Find(ui.OfKind(ui.KindTimer))
	assert.Equal(t, 600, clock.Attrs["remainingSeconds"])

	_, err := f.registry.Act(context.Background(), "FocusTimer", "pause", nil, json.RawMessage(`{"timerId":"timer-missing"}`))
	assert.ErrorIs(t, err, services.ErrTimerNotFound)

	_, err = f.registry.Render(context.Background(), "FocusTimer", json.RawMessage(`{"duration":0.5}`))
	assert.Error(t, err)
}

func TestNoteCard(t *testing.T) {
	f := setup(t)

	tree := f.render(t, "NoteCard", `{"title":"Ideas","content":"Ship it","tags":["work"]}`)
	assert.Equal(t, ui.KindCard, tree.Kind)
	assert.Equal(t, "yellow", tree.Attrs["color"])
	badge, ok := tree.Find(ui.OfKind(ui.KindBadge))
	require.True(t, ok)
	assert.Equal(t, "#work", badge.Text)

	_, err := f.registry.Render(context.Background(), "NoteCard", json.RawMessage(`{"title":"Ideas"}`))
	var verr *registry.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields(), "content")
}

func TestNotesGrid(t *testing.T) {
	f := setup(t)
	f.store.SaveNotes(context.Background(), []entities.Note{
		{ID: "note-1", Title: "banana", Content: "x", Tags: []string{"food"}, CreatedAt: at(1, 9), UpdatedAt: at(5, 9)},
		{ID: "note-2", Title: "Apple", Content: "y", CreatedAt: at(2, 9), UpdatedAt: at(3, 9)},
		{ID: "note-3", Title: "cherry", Content: "z", Tags: []string{"food"}, CreatedAt: at(3, 9), UpdatedAt: at(4, 9)},
	})

	cards := func(tree ui.Node) []string { return texts(tree.FindAll(ui.OfKind(ui.KindCard))) }

	assert.Equal(t, []string{"banana", "cherry", "Apple"}, cards(f.render(t, "NotesGrid", `{}`)))
	assert.Equal(t, []string{"cherry", "Apple", "banana"}, cards(f.render(t, "NotesGrid", `{"sortBy":"createdAt"}`)))
	assert.Equal(t, []string{"Apple", "banana", "cherry"}, cards(f.render(t, "NotesGrid", `{"sortBy":"title"}`)))
	assert.Equal(t, []string{"banana", "cherry"}, cards(f.render(t, "NotesGrid", `{"filterTag":"food"}`)))

	tree := f.act(t, "NotesGrid", "delete", `{"filterTag":"food"}`, `{"noteId":"note-1"}`)
	assert.Equal(t, []string{"cherry"}, cards(tree))

	tree = f.render(t, "NotesGrid", `{"filterTag":"travel"}`)
	_, ok := tree.Find(ui.OfKind(ui.KindEmpty))
	assert.True(t, ok)
}

func TestGoalTracker(t *testing.T) {
	f := setup(t)
	f.store.SaveGoals(context.Background(), []entities.Goal{
		{ID: "goal-1", Title: "Marathon", Progress: 40, Status: entities.GoalStatusActive, TargetDate: ptr(at(30, 0)),
			Milestones: []entities.Milestone{{ID: "m1", Title: "10k", Completed: true}, {ID: "m2", Title: "Half"}}},
		{ID: "goal-2", Title: "Read 12 books", Progress: 100, Status: entities.GoalStatusCompleted},
	})

	tree := f.render(t, "GoalTracker", `{}`)
	assert.Len(t, tree.FindAll(ui.OfKind(ui.KindCard)), 2)
	heading, ok := tree.Find(ui.OfKind(ui.KindHeading))
	require.True(t, ok)
	assert.Equal(t, "Milestones (1/2)", heading.Text)
	_, ok = tree.Find(func(n ui.Node) bool { return n.Text == "Target: Mar 30, 2024" })
	assert.True(t, ok)

	tree = f.render(t, "GoalTracker", `{"showMilestones":false,"filterStatus":"active"}`)
	assert.Equal(t, []string{"Marathon"}, texts(tree.FindAll(ui.OfKind(ui.KindCard))))
	assert.Empty(t, tree.FindAll(ui.OfKind(ui.KindItem)))

	tree = f.render(t, "GoalTracker", `{"filterStatus":"paused"}`)
	_, ok = tree.Find(ui.OfKind(ui.KindEmpty))
	assert.True(t, ok)
}

func TestWeeklyPlanner(t *testing.T) {
	f := setup(t)
	seedTasks(f)

	tree := f.render(t, "WeeklyPlanner", `{
		"priorities":["Ship v2"],
		"scheduledTasks":[
			{"day":"2024-03-11","taskId":"task-c","taskTitle":"C","timeSlot":"09:00"},
			{"day":"2024-03-11","taskId":"task-gone","taskTitle":"Gone"},
			{"day":"2024-03-14","taskId":"task-a","taskTitle":"A"}
		]}`)

	days := tree.FindAll(ui.OfKind(ui.KindColumn))
	require.Len(t, days, 7)
	assert.Equal(t, "2024-03-10", days[0].Attrs["date"])

	monday := days[1].FindAll(ui.OfKind(ui.KindItem))
	require.Len(t, monday, 2)
	assert.Equal(t, true, monday[0].Attrs["done"])
	assert.NotContains(t, monday[1].Attrs, "done", "unknown task ids are shown without status")

	thursday := days[4].FindAll(ui.OfKind(ui.KindItem))
	require.Len(t, thursday, 1)
	assert.Equal(t, false, thursday[0].Attrs["done"])

	_, ok := tree.Find(func(n ui.Node) bool { return n.Text == "1. Ship v2" })
	assert.True(t, ok)

	tree = f.render(t, "WeeklyPlanner", `{"weekStartDate":"2024-03-18"}`)
	assert.Equal(t, "2024-03-18", tree.FindAll(ui.OfKind(ui.KindColumn))[0].Attrs["date"])
}

func TestProgressChart(t *testing.T) {
	f := setup(t)
	seedTasks(f)

	tree := f.render(t, "ProgressChart", `{"type":"tasks"}`)
	chart, ok := tree.Find(ui.OfKind(ui.KindChart))
	require.True(t, ok)
	assert.Equal(t, "line", chart.Attrs["chartType"])
	series, ok := chart.Attrs["series"].([]ports.SeriesPoint)
	require.True(t, ok)
	require.Len(t, series, 7)
	assert.Equal(t, "2024-03-13", series[6].Date)
	assert.Equal(t, "2024-03-11", series[4].Date)
	assert.Equal(t, 1.0, series[4].Value)
	assert.Zero(t, series[5].Value)

	tree = f.render(t, "ProgressChart", `{"type":"focus","period":"year","chartType":"bar"}`)
	chart, _ = tree.Find(ui.OfKind(ui.KindChart))
	assert.Len(t, chart.Attrs["series"], 30)

	_, err := f.registry.Render(context.Background(), "ProgressChart", json.RawMessage(`{}`))
	assert.Error(t, err)
}

func TestProductivityReport(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.store.SaveTasks(ctx, []entities.Task{
		{ID: "t1", Title: "x", Status: entities.TaskStatusDone, Priority: entities.PriorityLow, CreatedAt: at(1, 9), CompletedAt: ptr(at(13, 9))},
	})
	f.store.SaveFocusSessions(ctx, []entities.FocusSession{
		{ID: "s1", Duration: 90, StartTime: at(13, 10), Completed: true},
	})

	tree := f.render(t, "ProductivityReport", `{"period":"today","insights":["Mornings work"]}`)
	assert.Equal(t, 1, stat(t, tree, "Tasks Completed"))
	assert.Equal(t, "1h 30m", stat(t, tree, "Focus Time"))
	_, ok := tree.Find(func(n ui.Node) bool { return n.Kind == ui.KindItem && n.Text == "Mornings work" })
	assert.True(t, ok)
	_, ok = tree.Find(func(n ui.Node) bool { return n.Text == "Recommendations" })
	assert.False(t, ok)

	tree = f.render(t, "ProductivityReport", `{"period":"week","metrics":{"tasksCompleted":9,"focusTime":45,"goalProgress":70,"habitStreak":4}}`)
	assert.Equal(t, 9, stat(t, tree, "Tasks Completed"))
	assert.Equal(t, "0h 45m", stat(t, tree, "Focus Time"))
	assert.Equal(t, "4 days", stat(t, tree, "Habit Streak"))

	_, err := f.registry.Render(ctx, "ProductivityReport", json.RawMessage(`{"period":"week","metrics":{"goalProgress":120}}`))
	assert.Error(t, err)

	_, err = f.registry.Render(ctx, "ProductivityReport", json.RawMessage(`{"period":"week","metrics":{"tasksCompleted":3,"goalProgress":50}}`))
	var verr *registry.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string]string{
		"metrics.focusTime":   "is required",
		"metrics.habitStreak": "is required",
	}, verr.Fields())
}

func TestHabitTracker(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	habit := f.store.AddHabit(ctx, entities.NewHabit{Name: "Read", Frequency: entities.HabitFrequencyDaily})
	f.store.AddHabit(ctx, entities.NewHabit{Name: "Review", Frequency: entities.HabitFrequencyWeekly})

	tree := f.render(t, "HabitTracker", `{"filterFrequency":"daily"}`)
	cards := tree.FindAll(ui.OfKind(ui.KindCard))
	require.Len(t, cards, 1)
	days := cards[0].FindAll(ui.OfKind(ui.KindItem))
	require.Len(t, days, 7)
	assert.Equal(t, "2024-03-07", days[0].Attrs["date"])
	assert.Equal(t, true, days[6].Attrs["today"])

	tree = f.act(t, "HabitTracker", "toggle-day", `{"filterFrequency":"daily"}`, `{"habitId":"`+habit.ID+`","date":"2024-03-13"}`)
	days = tree.FindAll(ui.OfKind(ui.KindItem))
	assert.Equal(t, true, days[6].Attrs["completed"])
	assert.Equal(t, "1 days", stat(t, tree, "Current streak"))

	stored := f.store.Habits(ctx)
	assert.Equal(t, []string{"2024-03-13"}, stored[0].CompletedDates)
	assert.Equal(t, 1, stored[0].BestStreak)

	tree = f.render(t, "HabitTracker", `{"view":"calendar"}`)
	assert.Len(t, tree.FindAll(ui.OfKind(ui.KindItem)), 56)

	for _, date := range []string{"13/03/2024", " 2024-03-12 "} {
		_, err := f.registry.Act(ctx, "HabitTracker", "toggle-day", nil, json.RawMessage(`{"habitId":"`+habit.ID+`","date":"`+date+`"}`))
		var verr *registry.ValidationError
		require.ErrorAs(t, err, &verr, date)
		assert.Contains(t, verr.Fields(), "date")
	}
	assert.Equal(t, []string{"2024-03-13"}, f.store.Habits(ctx)[0].CompletedDates)
}
