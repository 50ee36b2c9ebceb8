package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/productivitybrain/core/internal/adapters/storage"
	"github.com/productivitybrain/core/internal/domain/entities"
	"github.com/productivitybrain/core/internal/infrastructure/logger"
	"github.com/productivitybrain/core/internal/ports"
)

var fixedNow = time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T, kv ports.KeyValueStorage) *Store {
	t.Helper()
	if kv == nil {
		kv = storage.NewMemory()
	}
	return New(kv, logger.NewNop(),
		WithClock(func() time.Time { return fixedNow }),
		WithLocation(time.UTC),
	)
}

func ptr[T any](v T) *T { return &v }

// failingKV accepts reads but rejects writes once broken is set
type failingKV struct {
	*storage.Memory
	mu     sync.Mutex
	broken bool
}

func (f *failingKV) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	broken := f.broken
	f.mu.Unlock()
	if broken {
		return errors.New("quota exceeded")
	}
	return f.Memory.Set(ctx, key, value)
}

func TestAddTaskDefaultsAndID(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	task := s.AddTask(ctx, entities.NewTask{Title: "A", Priority: entities.PriorityHigh})

	assert.True(t, strings.HasPrefix(task.ID, "task-1710081000000-"), task.ID)
	assert.Len(t, task.ID, len("task-1710081000000-")+9)
	assert.Equal(t, entities.TaskStatusTodo, task.Status)
	assert.Equal(t, entities.PriorityHigh, task.Priority)
	assert.Nil(t, task.CompletedAt)
	assert.True(t, task.CreatedAt.Equal(fixedNow))

	other := s.AddTask(ctx, entities.NewTask{Title: "B"})
	assert.Equal(t, entities.PriorityMedium, other.Priority)
	assert.NotEqual(t, task.ID, other.ID)
}

func TestAddYieldsUniqueIDs(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		note := s.AddNote(ctx, entities.NewNote{Title: "n", Content: "c"})
		require.False(t, seen[note.ID], "duplicate id %s", note.ID)
		seen[note.ID] = true
	}
	assert.Len(t, s.Notes(ctx), 50)
}

func TestTaskStatusScenario(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()
	task := s.AddTask(ctx, entities.NewTask{Title: "A", Priority: entities.PriorityHigh})

	got, ok := s.AdvanceTaskStatus(ctx, task.ID)
	require.True(t, ok)
	assert.Equal(t, entities.TaskStatusInProgress, got.Status)

	got, ok = s.AdvanceTaskStatus(ctx, task.ID)
	require.True(t, ok)
	assert.Equal(t, entities.TaskStatusDone, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, got.CompletedAt.Equal(fixedNow))

	got, ok = s.AdvanceTaskStatus(ctx, task.ID)
	require.True(t, ok)
	assert.Equal(t, entities.TaskStatusTodo, got.Status)
	assert.Nil(t, got.CompletedAt)

	stored := s.Tasks(ctx)
	require.Len(t, stored, 1)
	assert.Nil(t, stored[0].CompletedAt)

	_, ok = s.AdvanceTaskStatus(ctx, "task-missing")
	assert.False(t, ok)
}

func TestSetTaskStatus(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()
	task := s.AddTask(ctx, entities.NewTask{Title: "Board"})

	got, ok := s.SetTaskStatus(ctx, task.ID, entities.TaskStatusDone)
	require.True(t, ok)
	assert.NotNil(t, got.CompletedAt)

	got, ok = s.SetTaskStatus(ctx, task.ID, entities.TaskStatusInProgress)
	require.True(t, ok)
	assert.Nil(t, got.CompletedAt)
}

func TestUpdateOverlaysPatch(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()
	a := s.AddTask(ctx, entities.NewTask{Title: "A", Tags: []string{"x"}})
	b := s.AddTask(ctx, entities.NewTask{Title: "B"})

	patch := entities.TaskPatch{Title: ptr("A2"), Status: ptr(entities.TaskStatusDone)}
	updated, ok := s.UpdateTask(ctx, a.ID, patch)
	require.True(t, ok)

	want := a
	want.Title = "A2"
	want.Status = entities.TaskStatusDone
	if diff := cmp.Diff(want, updated); diff != "" {
		t.Errorf("updated task mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, updated.CompletedAt, "update does not stamp completedAt")

	var matches []entities.Task
	for _, task := range s.Tasks(ctx) {
		if task.ID == a.ID {
			matches = append(matches, task)
		}
	}
	require.Len(t, matches, 1)
	if diff := cmp.Diff(want, matches[0]); diff != "" {
		t.Errorf("stored task mismatch (-want +got):\n%s", diff)
	}

	_, ok = s.UpdateTask(ctx, "task-missing", patch)
	assert.False(t, ok)
	stored := s.Tasks(ctx)
	require.Len(t, stored, 2)
	if diff := cmp.Diff(b, stored[1]); diff != "" {
		t.Errorf("untouched task changed (-want +got):\n%s", diff)
	}
}

func TestDeleteTwice(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()
	e1 := s.AddEvent(ctx, entities.NewEvent{Title: "Standup", StartTime: fixedNow, EndTime: fixedNow.Add(15 * time.Minute)})
	s.AddEvent(ctx, entities.NewEvent{Title: "Review", StartTime: fixedNow, EndTime: fixedNow.Add(time.Hour)})

	assert.Equal(t, entities.EventTypeMeeting, e1.Type)
	assert.True(t, s.DeleteEvent(ctx, e1.ID))
	assert.Len(t, s.Events(ctx), 1)
	assert.False(t, s.DeleteEvent(ctx, e1.ID))
	assert.Len(t, s.Events(ctx), 1)
}

func TestRoundTrip(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()
	due := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

	tasks := []entities.Task{
		{ID: "task-1", Title: "One", Status: entities.TaskStatusTodo, Priority: entities.PriorityLow, DueDate: &due, Tags: []string{"a"}, EstimatedTime: ptr(45), CreatedAt: fixedNow},
		{ID: "task-2", Title: "Two", Status: entities.TaskStatusDone, Priority: entities.PriorityHigh, CreatedAt: fixedNow, CompletedAt: &fixedNow},
	}
	s.SaveTasks(ctx, tasks)
	if diff := cmp.Diff(tasks, s.Tasks(ctx), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("tasks round trip (-want +got):\n%s", diff)
	}

	habits := []entities.Habit{{ID: "habit-1", Name: "Read", Frequency: entities.HabitFrequencyDaily, CompletedDates: []string{"2024-03-10"}, Streak: 1, BestStreak: 3}}
	s.SaveHabits(ctx, habits)
	if diff := cmp.Diff(habits, s.Habits(ctx)); diff != "" {
		t.Errorf("habits round trip (-want +got):\n%s", diff)
	}

	goals := []entities.Goal{{ID: "goal-1", Title: "Ship", Progress: 40, Status: entities.GoalStatusActive, Milestones: []entities.Milestone{{ID: "m1", Title: "Beta", Completed: true, CompletedAt: &fixedNow}}}}
	s.SaveGoals(ctx, goals)
	if diff := cmp.Diff(goals, s.Goals(ctx)); diff != "" {
		t.Errorf("goals round trip (-want +got):\n%s", diff)
	}
	events := []entities.CalendarEvent{
		{ID: "event-1", Title: "Standup", Description: "Daily sync", StartTime: fixedNow, EndTime: fixedNow.Add(15 * time.Minute), Type: entities.EventTypeMeeting, Color: "#3b82f6"},
		{ID: "event-2", Title: "Deep work", StartTime: fixedNow.Add(time.Hour), EndTime: fixedNow.Add(3 * time.Hour), Type: entities.EventTypeFocus},
	}
	s.SaveEvents(ctx, events)
	if diff := cmp.Diff(events, s.Events(ctx)); diff != "" {
		t.Errorf("events round trip (-want +got):\n%s", diff)
	}

	notes := []entities.Note{
		{ID: "note-1", Title: "Ideas", Content: "Ship it", Color: entities.NoteColorBlue, Tags: []string{"work", "q2"}, CreatedAt: fixedNow, UpdatedAt: fixedNow.Add(time.Minute)},
		{ID: "note-2", Title: "Plain", Content: "", CreatedAt: fixedNow, UpdatedAt: fixedNow},
	}
	s.SaveNotes(ctx, notes)
	if diff := cmp.Diff(notes, s.Notes(ctx)); diff != "" {
		t.Errorf("notes round trip (-want +got):\n%s", diff)
	}

	ended := fixedNow.Add(25 * time.Minute)
	sessions := []entities.FocusSession{
		{ID: "session-1", TaskID: "task-1", Duration: 25, StartTime: fixedNow, EndTime: &ended, Completed: true},
		{ID: "session-2", Duration: 50, StartTime: fixedNow.Add(time.Hour)},
	}
	s.SaveFocusSessions(ctx, sessions)
	if diff := cmp.Diff(sessions, s.FocusSessions(ctx)); diff != "" {
		t.Errorf("focus sessions round trip (-want +got):\n%s", diff)
	}
}

func TestMalformedCollectionReadsEmpty(t *testing.T) {
	kv := storage.NewMemory()
	s := newTestStore(t, kv)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, s.Key(ports.CollectionTasks), []byte("{not json")))
	require.NoError(t, kv.Set(ctx, s.Key(ports.CollectionNotes), []byte("null")))

	assert.NotNil(t, s.Tasks(ctx))
	assert.Empty(t, s.Tasks(ctx))
	assert.NotNil(t, s.Notes(ctx))
	assert.Empty(t, s.Goals(ctx), "absent key")

	task := s.AddTask(ctx, entities.NewTask{Title: "after corruption"})
	assert.Equal(t, []entities.Task{task}, s.Tasks(ctx))
}

func TestPersistedLayout(t *testing.T) {
	kv := storage.NewMemory()
	s := New(kv, logger.NewNop(), WithKeyPrefix("brain"))
	ctx := context.Background()

	s.AddHabit(ctx, entities.NewHabit{Name: "Walk"})
	s.AddFocusSession(ctx, entities.NewFocusSession{Duration: 25, StartTime: fixedNow, Completed: true})

	assert.ElementsMatch(t, []string{"brain-habits", "brain-focus-sessions"}, kv.Keys())

	raw, err := kv.Get(ctx, "brain-habits")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"completedDates":[]`)
	assert.Contains(t, string(raw), `"frequency":"daily"`)
}

func TestNoteUpdateRefreshesUpdatedAt(t *testing.T) {
	now := fixedNow
	s := New(storage.NewMemory(), logger.NewNop(), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	note := s.AddNote(ctx, entities.NewNote{Title: "Idea", Content: "first", Color: entities.NoteColorYellow, Tags: []string{"x"}})
	now = now.Add(time.Hour)

	got, ok := s.UpdateNote(ctx, note.ID, entities.NotePatch{Content: ptr("second"), ClearColor: true})
	require.True(t, ok)
	assert.Equal(t, "second", got.Content)
	assert.Empty(t, got.Color)
	assert.Equal(t, []string{"x"}, got.Tags)
	assert.True(t, got.CreatedAt.Equal(fixedNow))
	assert.True(t, got.UpdatedAt.Equal(fixedNow.Add(time.Hour)))
}

func TestHabitToggleAndStreaks(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()
	habit := s.AddHabit(ctx, entities.NewHabit{Name: "Meditate"})

	assert.Equal(t, []string{}, habit.CompletedDates)
	assert.Zero(t, habit.Streak)

	s.ToggleHabitDate(ctx, habit.ID, "2024-03-08")
	s.ToggleHabitDate(ctx, habit.ID, "2024-03-09")
	got, ok := s.ToggleHabitDate(ctx, habit.ID, "2024-03-10")
	require.True(t, ok)
	assert.Equal(t, 3, got.Streak)
	assert.Equal(t, 3, got.BestStreak)

	got, _ = s.ToggleHabitDate(ctx, habit.ID, "2024-03-10")
	assert.Equal(t, 0, got.Streak)
	assert.Equal(t, 3, got.BestStreak)

	stored := s.Habits(ctx)
	require.Len(t, stored, 1)
	assert.Equal(t, 0, stored[0].Streak)
	assert.Equal(t, 3, stored[0].BestStreak)
	assert.ElementsMatch(t, []string{"2024-03-08", "2024-03-09"}, stored[0].CompletedDates)

	_, ok = s.ToggleHabitDate(ctx, "habit-missing", "2024-03-10")
	assert.False(t, ok)
	for _, date := range []string{" 2024-03-10 ", "2024-3-10", "10/03/2024"} {
		_, ok = s.ToggleHabitDate(ctx, habit.ID, date)
		assert.False(t, ok, date)
	}
	assert.ElementsMatch(t, []string{"2024-03-08", "2024-03-09"}, s.Habits(ctx)[0].CompletedDates)
}

func TestGoalMilestonesGetIDs(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	goal := s.AddGoal(ctx, entities.NewGoal{Title: "Run a marathon", Milestones: []entities.Milestone{{Title: "10k"}, {Title: "Half"}}})
	assert.Equal(t, entities.GoalStatusActive, goal.Status)
	require.Len(t, goal.Milestones, 2)
	assert.NotEmpty(t, goal.Milestones[0].ID)
	assert.NotEqual(t, goal.Milestones[0].ID, goal.Milestones[1].ID)
}

func TestWriteFailureMarksDegraded(t *testing.T) {
	kv := &failingKV{Memory: storage.NewMemory()}
	s := newTestStore(t, kv)
	ctx := context.Background()

	first := s.AddTask(ctx, entities.NewTask{Title: "persisted"})
	assert.False(t, s.Health().Degraded)

	kv.mu.Lock()
	kv.broken = true
	kv.mu.Unlock()

	lost := s.AddTask(ctx, entities.NewTask{Title: "lost"})
	assert.NotEmpty(t, lost.ID, "callers still get the record")

	health := s.Health()
	assert.True(t, health.Degraded)
	assert.Equal(t, int64(1), health.Failures)
	assert.Equal(t, "quota exceeded", health.LastError)
	assert.Equal(t, ports.CollectionTasks, health.Collection)
	assert.Equal(t, []entities.Task{first}, s.Tasks(ctx))

	kv.mu.Lock()
	kv.broken = false
	kv.mu.Unlock()

	s.AddTask(ctx, entities.NewTask{Title: "recovered"})
	health = s.Health()
	assert.False(t, health.Degraded)
	assert.Equal(t, int64(1), health.Failures)
}

func TestSubscribe(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	events, cancel := s.Subscribe(4)
	task := s.AddTask(ctx, entities.NewTask{Title: "watch me"})
	s.DeleteTask(ctx, task.ID)
	s.DeleteTask(ctx, task.ID)

	got := <-events
	assert.Equal(t, ports.ChangeEvent{Collection: ports.CollectionTasks, Op: ports.ChangeOpAdd, ID: task.ID, At: fixedNow}, got)
	got = <-events
	assert.Equal(t, ports.ChangeOpDelete, got.Op)

	select {
	case extra := <-events:
		t.Fatalf("unexpected event %+v", extra)
	default:
	}

	cancel()
	cancel()
	_, open := <-events
	assert.False(t, open)
}

func TestSubscribeNeverBlocks(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	events, cancel := s.Subscribe(1)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			s.AddNote(ctx, entities.NewNote{Title: "n"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publishing blocked on a full subscriber")
	}
	assert.Len(t, events, 1)
}

func TestConcurrentAddsAreSerialized(t *testing.T) {
	s := New(storage.NewMemory(), logger.NewNop())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddTask(ctx, entities.NewTask{Title: "parallel"})
		}()
	}
	wg.Wait()
	assert.Len(t, s.Tasks(ctx), 25)
}

type scriptedSource struct {
	*storage.Memory
	keys []string
}

func (s *scriptedSource) Watch(_ context.Context, onChange func(string)) error {
	for _, k := range s.keys {
		onChange(k)
	}
	return nil
}

func TestWatchExternal(t *testing.T) {
	src := &scriptedSource{Memory: storage.NewMemory(), keys: []string{"productivity-brain-goals", "unrelated-key", "productivity-brain-bogus"}}
	s := newTestStore(t, src)

	events, cancel := s.Subscribe(8)
	defer cancel()

	require.NoError(t, s.WatchExternal(context.Background()))
	require.Len(t, events, 1)
	got := <-events
	assert.Equal(t, ports.CollectionGoals, got.Collection)
	assert.Equal(t, ports.ChangeOpExternal, got.Op)

	plain := newTestStore(t, storage.NewMemory())
	assert.NoError(t, plain.WatchExternal(context.Background()))
}
