package ports

import (
	"context"
	"time"

	"github.com/productivitybrain/core/internal/domain/entities"
)

// TaskRepository defines the task collection operations
type TaskRepository interface {
	Tasks(ctx context.Context) []entities.Task
	SaveTasks(ctx context.Context, tasks []entities.Task)
	AddTask(ctx context.Context, task entities.NewTask) entities.Task
	UpdateTask(ctx context.Context, id string, patch entities.TaskPatch) (entities.Task, bool)
	DeleteTask(ctx context.Context, id string) bool
	AdvanceTaskStatus(ctx context.Context, id string) (entities.Task, bool)
	SetTaskStatus(ctx context.Context, id string, status entities.TaskStatus) (entities.Task, bool)
}

// EventRepository defines the calendar event collection operations
type EventRepository interface {
	Events(ctx context.Context) []entities.CalendarEvent
	SaveEvents(ctx context.Context, events []entities.CalendarEvent)
	AddEvent(ctx context.Context, event entities.NewEvent) entities.CalendarEvent
	UpdateEvent(ctx context.Context, id string, patch entities.EventPatch) (entities.CalendarEvent, bool)
	DeleteEvent(ctx context.Context, id string) bool
}

// NoteRepository defines the note collection operations
type NoteRepository interface {
	Notes(ctx context.Context) []entities.Note
	SaveNotes(ctx context.Context, notes []entities.Note)
	AddNote(ctx context.Context, note entities.NewNote) entities.Note
	UpdateNote(ctx context.Context, id string, patch entities.NotePatch) (entities.Note, bool)
	DeleteNote(ctx context.Context, id string) bool
}

// GoalRepository defines the goal collection operations
type GoalRepository interface {
	Goals(ctx context.Context) []entities.Goal
	SaveGoals(ctx context.Context, goals []entities.Goal)
	AddGoal(ctx context.Context, goal entities.NewGoal) entities.Goal
	UpdateGoal(ctx context.Context, id string, patch entities.GoalPatch) (entities.Goal, bool)
	DeleteGoal(ctx context.Context, id string) bool
}

// HabitRepository defines the habit collection operations
type HabitRepository interface {
	Habits(ctx context.Context) []entities.Habit
	SaveHabits(ctx context.Context, habits []entities.Habit)
	AddHabit(ctx context.Context, habit entities.NewHabit) entities.Habit
	UpdateHabit(ctx context.Context, id string, patch entities.HabitPatch) (entities.Habit, bool)
	DeleteHabit(ctx context.Context, id string) bool
	ToggleHabitDate(ctx context.Context, id, date string) (entities.Habit, bool)
}

// FocusSessionRepository defines the focus session collection operations
type FocusSessionRepository interface {
	FocusSessions(ctx context.Context) []entities.FocusSession
	SaveFocusSessions(ctx context.Context, sessions []entities.FocusSession)
	AddFocusSession(ctx context.Context, session entities.NewFocusSession) entities.FocusSession
	UpdateFocusSession(ctx context.Context, id string, patch entities.FocusSessionPatch) (entities.FocusSession, bool)
	DeleteFocusSession(ctx context.Context, id string) bool
}

// Clock exposes the store's notion of "now" in the configured location
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

// Store is the full persistent store used by tools, components and summarizers
type Store interface {
	TaskRepository
	EventRepository
	NoteRepository
	GoalRepository
	HabitRepository
	FocusSessionRepository
	Clock
}
