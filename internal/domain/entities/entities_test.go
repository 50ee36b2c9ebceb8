package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStreak(t *testing.T) {
	today := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)
	day := func(offset int) string { return DateKey(today.AddDate(0, 0, -offset)) }

	tests := []struct {
		name  string
		dates []string
		want  int
	}{
		{"empty", nil, 0},
		{"today and two before", []string{day(0), day(1), day(2)}, 3},
		{"yesterday only run", []string{day(1), day(2)}, 0},
		{"gap stops the scan", []string{day(0), day(1), day(3), day(4)}, 2},
		{"unordered input", []string{day(2), day(0), day(1)}, 3},
		{"duplicates", []string{day(0), day(0), day(1)}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeStreak(tt.dates, today))
		})
	}
}

func TestComputeStreakIsBounded(t *testing.T) {
	today := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	var dates []string
	for i := 0; i < 400; i++ {
		dates = append(dates, DateKey(today.AddDate(0, 0, -i)))
	}
	assert.Equal(t, 365, ComputeStreak(dates, today))
}

func TestHabitToggleDate(t *testing.T) {
	today := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	h := Habit{ID: "habit-1", Name: "Read", Frequency: HabitFrequencyDaily, CompletedDates: []string{"2024-03-09"}, BestStreak: 4}

	h = h.ToggleDate("2024-03-10", today)
	assert.ElementsMatch(t, []string{"2024-03-09", "2024-03-10"}, h.CompletedDates)
	assert.Equal(t, 2, h.Streak)
	assert.Equal(t, 4, h.BestStreak)

	h = h.ToggleDate("2024-03-10", today)
	assert.Equal(t, []string{"2024-03-09"}, h.CompletedDates)
	assert.Equal(t, 0, h.Streak)
	assert.Equal(t, 4, h.BestStreak)
}

func TestTaskStatusCycle(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	task := Task{ID: "task-1", Title: "A", Status: TaskStatusTodo, Priority: PriorityHigh}

	task = task.WithStatus(task.Status.Next(), now)
	assert.Equal(t, TaskStatusInProgress, task.Status)
	assert.Nil(t, task.CompletedAt)

	task = task.WithStatus(task.Status.Next(), now)
	assert.Equal(t, TaskStatusDone, task.Status)
	require.NotNil(t, task.CompletedAt)
	assert.True(t, task.CompletedAt.Equal(now))

	task = task.WithStatus(task.Status.Next(), now)
	assert.Equal(t, TaskStatusTodo, task.Status)
	assert.Nil(t, task.CompletedAt)
}

func TestTaskPatchApply(t *testing.T) {
	due := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	est := 30
	task := Task{ID: "task-1", Title: "Old", Priority: PriorityLow, DueDate: &due, EstimatedTime: &est, Tags: []string{"a"}}

	title := "New"
	done := TaskStatusDone
	got := TaskPatch{Title: &title, Status: &done, ClearDueDate: true, Tags: []string{"b", "c"}}.Apply(task)

	assert.Equal(t, "New", got.Title)
	assert.Equal(t, TaskStatusDone, got.Status)
	assert.Nil(t, got.CompletedAt, "a patch never stamps completedAt")
	assert.Nil(t, got.DueDate)
	assert.Equal(t, []string{"b", "c"}, got.Tags)
	assert.Equal(t, &est, got.EstimatedTime)
	assert.Equal(t, PriorityLow, got.Priority)
	assert.Equal(t, "Old", task.Title, "original is untouched")
}

func TestParseTimestamp(t *testing.T) {
	loc := time.FixedZone("test", 2*60*60)
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-10T09:30:00Z", time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)},
		{"2024-03-10T09:30:00", time.Date(2024, 3, 10, 9, 30, 0, 0, loc)},
		{"2024-03-10T09:30", time.Date(2024, 3, 10, 9, 30, 0, 0, loc)},
		{"2024-03-10", time.Date(2024, 3, 10, 0, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in, loc)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	_, err := ParseTimestamp("next tuesday", loc)
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
}

func TestParseDateKey(t *testing.T) {
	got, err := ParseDateKey("2024-03-10", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", DateKey(got))

	for _, in := range []string{" 2024-03-10 ", "2024-03-10\n", "2024-3-10", "2024-03-10T09:00"} {
		_, err := ParseDateKey(in, time.UTC)
		assert.ErrorIs(t, err, ErrInvalidDateKey, "%q", in)
	}
}

func TestStartOfWeek(t *testing.T) {
	wed := time.Date(2024, 3, 13, 17, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), StartOfWeek(wed, time.Sunday))
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), StartOfWeek(wed, time.Monday))

	sun := time.Date(2024, 3, 10, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), StartOfWeek(sun, time.Monday))
}

func TestTaskIsOverdue(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, Task{Status: TaskStatusTodo, DueDate: &past}.IsOverdue(now))
	assert.False(t, Task{Status: TaskStatusDone, DueDate: &past}.IsOverdue(now))
	assert.False(t, Task{Status: TaskStatusTodo, DueDate: &future}.IsOverdue(now))
	assert.False(t, Task{Status: TaskStatusTodo}.IsOverdue(now))
}
