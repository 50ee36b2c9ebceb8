package entities

import "time"

// NewTask holds the caller-supplied fields of a task; the store assigns the
// id and creation time.
type NewTask struct {
	Title         string
	Description   string
	Status        TaskStatus
	Priority      Priority
	DueDate       *time.Time
	Tags          []string
	EstimatedTime *int
	CompletedAt   *time.Time
}

type NewEvent struct {
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	Type        EventType
	Color       string
}

type NewNote struct {
	Title   string
	Content string
	Color   NoteColor
	Tags    []string
}

type NewGoal struct {
	Title       string
	Description string
	TargetDate  *time.Time
	Progress    int
	Status      GoalStatus
	Milestones  []Milestone
}

type NewHabit struct {
	Name      string
	Frequency HabitFrequency
}

type NewFocusSession struct {
	TaskID    string
	Duration  int
	StartTime time.Time
	EndTime   *time.Time
	Completed bool
}

// TaskPatch is a shallow update of a task. Nil pointers leave a field
// untouched; Clear flags unset optional fields.
type TaskPatch struct {
	Title              *string
	Description        *string
	Status             *TaskStatus
	Priority           *Priority
	DueDate            *time.Time
	ClearDueDate       bool
	Tags               []string
	ClearTags          bool
	EstimatedTime      *int
	ClearEstimatedTime bool
	CompletedAt        *time.Time
	ClearCompletedAt   bool
}

// Apply overlays the patch on t. Status changes through a patch do not touch
// completedAt.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	switch {
	case p.ClearDueDate:
		t.DueDate = nil
	case p.DueDate != nil:
		t.DueDate = copyTime(p.DueDate)
	}
	switch {
	case p.ClearTags:
		t.Tags = nil
	case p.Tags != nil:
		t.Tags = append([]string(nil), p.Tags...)
	}
	switch {
	case p.ClearEstimatedTime:
		t.EstimatedTime = nil
	case p.EstimatedTime != nil:
		v := *p.EstimatedTime
		t.EstimatedTime = &v
	}
	switch {
	case p.ClearCompletedAt:
		t.CompletedAt = nil
	case p.CompletedAt != nil:
		t.CompletedAt = copyTime(p.CompletedAt)
	}
	return t
}

type EventPatch struct {
	Title       *string
	Description *string
	StartTime   *time.Time
	EndTime     *time.Time
	Type        *EventType
	Color       *string
}

func (p EventPatch) Apply(e CalendarEvent) CalendarEvent {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.StartTime != nil {
		e.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		e.EndTime = *p.EndTime
	}
	if p.Type != nil {
		e.Type = *p.Type
	}
	if p.Color != nil {
		e.Color = *p.Color
	}
	return e
}

type NotePatch struct {
	Title      *string
	Content    *string
	Color      *NoteColor
	ClearColor bool
	Tags       []string
	ClearTags  bool
}

// Apply overlays the patch on n; the caller refreshes updatedAt.
func (p NotePatch) Apply(n Note) Note {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	switch {
	case p.ClearColor:
		n.Color = ""
	case p.Color != nil:
		n.Color = *p.Color
	}
	switch {
	case p.ClearTags:
		n.Tags = nil
	case p.Tags != nil:
		n.Tags = append([]string(nil), p.Tags...)
	}
	return n
}

type GoalPatch struct {
	Title           *string
	Description     *string
	TargetDate      *time.Time
	ClearTargetDate bool
	Progress        *int
	Status          *GoalStatus
	Milestones      []Milestone
	ClearMilestones bool
}

func (p GoalPatch) Apply(g Goal) Goal {
	if p.Title != nil {
		g.Title = *p.Title
	}
	if p.Description != nil {
		g.Description = *p.Description
	}
	switch {
	case p.ClearTargetDate:
		g.TargetDate = nil
	case p.TargetDate != nil:
		g.TargetDate = copyTime(p.TargetDate)
	}
	if p.Progress != nil {
		g.Progress = *p.Progress
	}
	if p.Status != nil {
		g.Status = *p.Status
	}
	switch {
	case p.ClearMilestones:
		g.Milestones = nil
	case p.Milestones != nil:
		g.Milestones = append([]Milestone(nil), p.Milestones...)
	}
	return g
}

type HabitPatch struct {
	Name      *string
	Frequency *HabitFrequency
}

func (p HabitPatch) Apply(h Habit) Habit {
	if p.Name != nil {
		h.Name = *p.Name
	}
	if p.Frequency != nil {
		h.Frequency = *p.Frequency
	}
	return h
}

type FocusSessionPatch struct {
	EndTime   *time.Time
	Completed *bool
}

func (p FocusSessionPatch) Apply(s FocusSession) FocusSession {
	if p.EndTime != nil {
		s.EndTime = copyTime(p.EndTime)
	}
	if p.Completed != nil {
		s.Completed = *p.Completed
	}
	return s
}

func copyTime(t *time.Time) *time.Time {
	v := *t
	return &v
}
