package store

import (
	"context"

	"github.com/productivitybrain/core/internal/domain/entities"
	"github.com/productivitybrain/core/internal/ports"
)

var _ ports.Store = (*Store)(nil)

func taskID(t entities.Task) string                  { return t.ID }
func eventID(e entities.CalendarEvent) string        { return e.ID }
func noteID(n entities.Note) string                  { return n.ID }
func goalID(g entities.Goal) string                  { return g.ID }
func habitID(h entities.Habit) string                { return h.ID }
func focusSessionID(f entities.FocusSession) string { return f.ID }

// Tasks

func (s *Store) Tasks(ctx context.Context) []entities.Task {
	return getAll[entities.Task](ctx, s, ports.CollectionTasks)
}

func (s *Store) SaveTasks(ctx context.Context, tasks []entities.Task) {
	saveAll(ctx, s, ports.CollectionTasks, tasks)
}

// AddTask stores a new task, defaulting status to todo and priority to medium
func (s *Store) AddTask(ctx context.Context, in entities.NewTask) entities.Task {
	return add(ctx, s, ports.CollectionTasks, "task", taskID, func(id string) entities.Task {
		task := entities.Task{
			ID:            id,
			Title:         in.Title,
			Description:   in.Description,
			Status:        in.Status,
			Priority:      in.Priority,
			DueDate:       in.DueDate,
			Tags:          in.Tags,
			EstimatedTime: in.EstimatedTime,
			CreatedAt:     s.timestamp(),
			CompletedAt:   in.CompletedAt,
		}
		if task.Status == "" {
			task.Status = entities.TaskStatusTodo
		}
		if task.Priority == "" {
			task.Priority = entities.PriorityMedium
		}
		return task
	})
}

func (s *Store) UpdateTask(ctx context.Context, id string, patch entities.TaskPatch) (entities.Task, bool) {
	return update(ctx, s, ports.CollectionTasks, id, taskID, patch.Apply)
}

func (s *Store) DeleteTask(ctx context.Context, id string) bool {
	return remove(ctx, s, ports.CollectionTasks, id, taskID)
}

// AdvanceTaskStatus cycles todo, in-progress, done and back to todo
func (s *Store) AdvanceTaskStatus(ctx context.Context, id string) (entities.Task, bool) {
	return update(ctx, s, ports.CollectionTasks, id, taskID, func(t entities.Task) entities.Task {
		return t.WithStatus(t.Status.Next(), s.timestamp())
	})
}

// SetTaskStatus moves a task to status, maintaining completedAt
func (s *Store) SetTaskStatus(ctx context.Context, id string, status entities.TaskStatus) (entities.Task, bool) {
	return update(ctx, s, ports.CollectionTasks, id, taskID, func(t entities.Task) entities.Task {
		return t.WithStatus(status, s.timestamp())
	})
}

// Events

func (s *Store) Events(ctx context.Context) []entities.CalendarEvent {
	return getAll[entities.CalendarEvent](ctx, s, ports.CollectionEvents)
}

func (s *Store) SaveEvents(ctx context.Context, events []entities.CalendarEvent) {
	saveAll(ctx, s, ports.CollectionEvents, events)
}

func (s *Store) AddEvent(ctx context.Context, in entities.NewEvent) entities.CalendarEvent {
	return add(ctx, s, ports.CollectionEvents, "event", eventID, func(id string) entities.CalendarEvent {
		event := entities.CalendarEvent{
			ID:          id,
			Title:       in.Title,
			Description: in.Description,
			StartTime:   in.StartTime,
			EndTime:     in.EndTime,
			Type:        in.Type,
			Color:       in.Color,
		}
		if event.Type == "" {
			event.Type = entities.EventTypeMeeting
		}
		return event
	})
}

func (s *Store) UpdateEvent(ctx context.Context, id string, patch entities.EventPatch) (entities.CalendarEvent, bool) {
	return update(ctx, s, ports.CollectionEvents, id, eventID, patch.Apply)
}

func (s *Store) DeleteEvent(ctx context.Context, id string) bool {
	return remove(ctx, s, ports.CollectionEvents, id, eventID)
}

// Notes

func (s *Store) Notes(ctx context.Context) []entities.Note {
	return getAll[entities.Note](ctx, s, ports.CollectionNotes)
}

func (s *Store) SaveNotes(ctx context.Context, notes []entities.Note) {
	saveAll(ctx, s, ports.CollectionNotes, notes)
}

func (s *Store) AddNote(ctx context.Context, in entities.NewNote) entities.Note {
	return add(ctx, s, ports.CollectionNotes, "note", noteID, func(id string) entities.Note {
		now := s.timestamp()
		return entities.Note{
			ID:        id,
			Title:     in.Title,
			Content:   in.Content,
			Color:     in.Color,
			Tags:      in.Tags,
			CreatedAt: now,
			UpdatedAt: now,
		}
	})
}

// UpdateNote applies patch and refreshes updatedAt
func (s *Store) UpdateNote(ctx context.Context, id string, patch entities.NotePatch) (entities.Note, bool) {
	return update(ctx, s, ports.CollectionNotes, id, noteID, func(n entities.Note) entities.Note {
		n = patch.Apply(n)
		n.UpdatedAt = s.timestamp()
		return n
	})
}

func (s *Store) DeleteNote(ctx context.Context, id string) bool {
	return remove(ctx, s, ports.CollectionNotes, id, noteID)
}

// Goals

func (s *Store) Goals(ctx context.Context) []entities.Goal {
	return getAll[entities.Goal](ctx, s, ports.CollectionGoals)
}

func (s *Store) SaveGoals(ctx context.Context, goals []entities.Goal) {
	saveAll(ctx, s, ports.CollectionGoals, goals)
}

// AddGoal stores a new goal; milestones without an id get one
func (s *Store) AddGoal(ctx context.Context, in entities.NewGoal) entities.Goal {
	return add(ctx, s, ports.CollectionGoals, "goal", goalID, func(id string) entities.Goal {
		goal := entities.Goal{
			ID:          id,
			Title:       in.Title,
			Description: in.Description,
			TargetDate:  in.TargetDate,
			Progress:    in.Progress,
			Status:      in.Status,
			Milestones:  s.withMilestoneIDs(in.Milestones),
		}
		if goal.Status == "" {
			goal.Status = entities.GoalStatusActive
		}
		return goal
	})
}

func (s *Store) UpdateGoal(ctx context.Context, id string, patch entities.GoalPatch) (entities.Goal, bool) {
	patch.Milestones = s.withMilestoneIDs(patch.Milestones)
	return update(ctx, s, ports.CollectionGoals, id, goalID, patch.Apply)
}

func (s *Store) DeleteGoal(ctx context.Context, id string) bool {
	return remove(ctx, s, ports.CollectionGoals, id, goalID)
}

func (s *Store) withMilestoneIDs(milestones []entities.Milestone) []entities.Milestone {
	if milestones == nil {
		return nil
	}
	out := make([]entities.Milestone, len(milestones))
	seen := make(map[string]bool, len(milestones))
	for i, m := range milestones {
		if m.ID == "" {
			m.ID = s.newID("milestone", func(id string) bool { return seen[id] })
		}
		seen[m.ID] = true
		out[i] = m
	}
	return out
}

// Habits

func (s *Store) Habits(ctx context.Context) []entities.Habit {
	return getAll[entities.Habit](ctx, s, ports.CollectionHabits)
}

func (s *Store) SaveHabits(ctx context.Context, habits []entities.Habit) {
	saveAll(ctx, s, ports.CollectionHabits, habits)
}

// AddHabit stores a new habit with no completions and zeroed streaks
func (s *Store) AddHabit(ctx context.Context, in entities.NewHabit) entities.Habit {
	return add(ctx, s, ports.CollectionHabits, "habit", habitID, func(id string) entities.Habit {
		habit := entities.Habit{
			ID:             id,
			Name:           in.Name,
			Frequency:      in.Frequency,
			CompletedDates: []string{},
		}
		if habit.Frequency == "" {
			habit.Frequency = entities.HabitFrequencyDaily
		}
		return habit
	})
}

func (s *Store) UpdateHabit(ctx context.Context, id string, patch entities.HabitPatch) (entities.Habit, bool) {
	return update(ctx, s, ports.CollectionHabits, id, habitID, patch.Apply)
}

func (s *Store) DeleteHabit(ctx context.Context, id string) bool {
	return remove(ctx, s, ports.CollectionHabits, id, habitID)
}

// ToggleHabitDate flips one day and persists completedDates, streak and
// bestStreak in a single write. A date not in YYYY-MM-DD form toggles nothing.
func (s *Store) ToggleHabitDate(ctx context.Context, id, date string) (entities.Habit, bool) {
	day, err := entities.ParseDateKey(date, s.Now().Location())
	if err != nil {
		s.logger.Warnw("Rejected habit toggle", "habit_id", id, "error", err)
		return entities.Habit{}, false
	}
	date = entities.DateKey(day)
	return update(ctx, s, ports.CollectionHabits, id, habitID, func(h entities.Habit) entities.Habit {
		return h.ToggleDate(date, s.Now())
	})
}

// Focus sessions

func (s *Store) FocusSessions(ctx context.Context) []entities.FocusSession {
	return getAll[entities.FocusSession](ctx, s, ports.CollectionFocusSessions)
}

func (s *Store) SaveFocusSessions(ctx context.Context, sessions []entities.FocusSession) {
	saveAll(ctx, s, ports.CollectionFocusSessions, sessions)
}

func (s *Store) AddFocusSession(ctx context.Context, in entities.NewFocusSession) entities.FocusSession {
	return add(ctx, s, ports.CollectionFocusSessions, "session", focusSessionID, func(id string) entities.FocusSession {
		return entities.FocusSession{
			ID:        id,
			TaskID:    in.TaskID,
			Duration:  in.Duration,
			StartTime: in.StartTime,
			EndTime:   in.EndTime,
			Completed: in.Completed,
		}
	})
}

func (s *Store) UpdateFocusSession(ctx context.Context, id string, patch entities.FocusSessionPatch) (entities.FocusSession, bool) {
	return update(ctx, s, ports.CollectionFocusSessions, id, focusSessionID, patch.Apply)
}

func (s *Store) DeleteFocusSession(ctx context.Context, id string) bool {
	return remove(ctx, s, ports.CollectionFocusSessions, id, focusSessionID)
}
