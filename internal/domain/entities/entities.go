package entities

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Common errors
var (
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrInvalidDateKey   = errors.New("invalid date, expected YYYY-MM-DD")
)

// Enums and types
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusDone       TaskStatus = "done"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type EventType string

const (
	EventTypeMeeting EventType = "meeting"
	EventTypeFocus   EventType = "focus"
	EventTypeBreak   EventType = "break"
	EventTypeTask    EventType = "task"
)

type NoteColor string

const (
	NoteColorWhite  NoteColor = "white"
	NoteColorYellow NoteColor = "yellow"
	NoteColorBlue   NoteColor = "blue"
	NoteColorGreen  NoteColor = "green"
	NoteColorPink   NoteColor = "pink"
	NoteColorPurple NoteColor = "purple"
)

type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusPaused    GoalStatus = "paused"
)

type HabitFrequency string

const (
	HabitFrequencyDaily  HabitFrequency = "daily"
	HabitFrequencyWeekly HabitFrequency = "weekly"
)

// Task is a unit of work tracked by the assistant
type Task struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Status        TaskStatus `json:"status"`
	Priority      Priority   `json:"priority"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	EstimatedTime *int       `json:"estimatedTime,omitempty" desc:"Estimated effort in minutes"`
	CreatedAt     time.Time  `json:"createdAt"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}

// CalendarEvent is a block of time on the calendar
type CalendarEvent struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Type        EventType `json:"type"`
	Color       string    `json:"color,omitempty"`
}

// Note is a free-form sticky note
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Color     NoteColor `json:"color,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Goal is a longer running objective with optional milestones
type Goal struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	TargetDate  *time.Time  `json:"targetDate,omitempty"`
	Progress    int         `json:"progress" desc:"Completion percentage, 0-100"`
	Status      GoalStatus  `json:"status"`
	Milestones  []Milestone `json:"milestones,omitempty"`
}

// Milestone is a checkpoint inside a goal
type Milestone struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Habit is a recurring behaviour checked off per calendar day
type Habit struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Frequency      HabitFrequency `json:"frequency"`
	CompletedDates []string       `json:"completedDates" desc:"Days the habit was completed, YYYY-MM-DD"`
	Streak         int            `json:"streak"`
	BestStreak     int            `json:"bestStreak"`
}

// FocusSession records one run of the focus timer
type FocusSession struct {
	ID        string     `json:"id"`
	TaskID    string     `json:"taskId,omitempty"`
	Duration  int        `json:"duration" desc:"Length in minutes"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Completed bool       `json:"completed"`
}

// Business logic methods

// IsValid checks if the task status is valid
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// Next returns the status that follows s in the todo, in-progress, done cycle
func (s TaskStatus) Next() TaskStatus {
	switch s {
	case TaskStatusTodo:
		return TaskStatusInProgress
	case TaskStatusInProgress:
		return TaskStatusDone
	default:
		return TaskStatusTodo
	}
}

func (s TaskStatus) EnumValues() []string {
	return []string{string(TaskStatusTodo), string(TaskStatusInProgress), string(TaskStatusDone)}
}

// IsValid checks if the priority is valid
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank orders priorities from most to least urgent
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

func (p Priority) EnumValues() []string {
	return []string{string(PriorityLow), string(PriorityMedium), string(PriorityHigh)}
}

func (t EventType) IsValid() bool {
	switch t {
	case EventTypeMeeting, EventTypeFocus, EventTypeBreak, EventTypeTask:
		return true
	}
	return false
}

func (t EventType) EnumValues() []string {
	return []string{string(EventTypeMeeting), string(EventTypeFocus), string(EventTypeBreak), string(EventTypeTask)}
}

func (c NoteColor) IsValid() bool {
	for _, v := range c.EnumValues() {
		if string(c) == v {
			return true
		}
	}
	return false
}

func (c NoteColor) EnumValues() []string {
	return []string{
		string(NoteColorWhite), string(NoteColorYellow), string(NoteColorBlue),
		string(NoteColorGreen), string(NoteColorPink), string(NoteColorPurple),
	}
}

func (s GoalStatus) IsValid() bool {
	switch s {
	case GoalStatusActive, GoalStatusCompleted, GoalStatusPaused:
		return true
	}
	return false
}

func (s GoalStatus) EnumValues() []string {
	return []string{string(GoalStatusActive), string(GoalStatusCompleted), string(GoalStatusPaused)}
}

func (f HabitFrequency) IsValid() bool {
	return f == HabitFrequencyDaily || f == HabitFrequencyWeekly
}

func (f HabitFrequency) EnumValues() []string {
	return []string{string(HabitFrequencyDaily), string(HabitFrequencyWeekly)}
}

// IsOverdue reports whether the task has a due date in the past and is not done
func (t Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != TaskStatusDone
}

// HasTag reports whether the task carries tag
func (t Task) HasTag(tag string) bool {
	return containsString(t.Tags, tag)
}

// WithStatus moves the task to status, stamping completedAt when it enters
// done and clearing it when it leaves done.
func (t Task) WithStatus(status TaskStatus, now time.Time) Task {
	if status == TaskStatusDone {
		if t.Status != TaskStatusDone || t.CompletedAt == nil {
			stamp := now
			t.CompletedAt = &stamp
		}
	} else {
		t.CompletedAt = nil
	}
	t.Status = status
	return t
}

// Duration returns the length of the event
func (e CalendarEvent) Duration() time.Duration {
	return e.EndTime.Sub(e.StartTime)
}

// OccursOn reports whether the event starts on the calendar day of day in loc
func (e CalendarEvent) OccursOn(day time.Time) bool {
	return SameDay(e.StartTime.In(day.Location()), day)
}

// HasTag reports whether the note carries tag
func (n Note) HasTag(tag string) bool {
	return containsString(n.Tags, tag)
}

// CompletedMilestones counts finished milestones
func (g Goal) CompletedMilestones() int {
	count := 0
	for _, m := range g.Milestones {
		if m.Completed {
			count++
		}
	}
	return count
}

// IsCompletedOn reports whether the habit was done on the given YYYY-MM-DD day
func (h Habit) IsCompletedOn(date string) bool {
	return containsString(h.CompletedDates, date)
}

// ToggleDate flips membership of date and recomputes streak and bestStreak
// relative to today.
func (h Habit) ToggleDate(date string, today time.Time) Habit {
	dates := make([]string, 0, len(h.CompletedDates)+1)
	found := false
	for _, d := range h.CompletedDates {
		if d == date {
			found = true
			continue
		}
		dates = append(dates, d)
	}
	if !found {
		dates = append(dates, date)
	}

	h.CompletedDates = dates
	h.Streak = ComputeStreak(dates, today)
	if h.Streak > h.BestStreak {
		h.BestStreak = h.Streak
	}
	return h
}

// maxStreakLookback bounds how far back a streak is scanned
const maxStreakLookback = 365

// ComputeStreak counts consecutive completed days ending today inclusive,
// stopping at the first gap.
func ComputeStreak(dates []string, today time.Time) int {
	done := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		done[d] = struct{}{}
	}

	streak := 0
	for i := 0; i < maxStreakLookback; i++ {
		if _, ok := done[DateKey(today.AddDate(0, 0, -i))]; !ok {
			break
		}
		streak++
	}
	return streak
}

// Timestamp helpers

const dateKeyLayout = "2006-01-02"

var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	dateKeyLayout,
}

// DateKey formats t as a YYYY-MM-DD habit date in t's location
func DateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}

// ParseDateKey parses a YYYY-MM-DD date as local midnight in loc. Surrounding
// whitespace is an error since keys are compared as strings.
func ParseDateKey(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateKeyLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateKey, s)
	}
	return t, nil
}

// ParseTimestamp accepts RFC 3339 and the zone-less forms callers commonly
// send, interpreting the latter in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}

// StartOfDay returns local midnight of t's day
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns midnight of the first day of t's week
func StartOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	offset := (int(t.Weekday()) - int(weekStart) + 7) % 7
	return StartOfDay(t).AddDate(0, 0, -offset)
}

// StartOfMonth returns midnight of the first day of t's month
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day in a's location
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
