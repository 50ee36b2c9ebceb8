package ports

import (
	"context"
	"time"

	"github.com/productivitybrain/core/internal/domain/entities"
)

// AnalyticsService interface for derived productivity figures
type AnalyticsService interface {
	AnalyzeProductivity(ctx context.Context, period Period) ProductivityStats
	SuggestFocusTime(ctx context.Context) []FocusSuggestion
	TaskStats(ctx context.Context, period StatsPeriod) TaskStats
	ProgressSeries(ctx context.Context, kind SeriesKind, period ChartPeriod) []SeriesPoint
	PeriodStart(period Period, now time.Time) time.Time
	WeekStart() time.Weekday
}

// FocusTimerService interface for live focus timers
type FocusTimerService interface {
	Start(ctx context.Context, req StartTimerRequest) (TimerState, error)
	Pause(ctx context.Context, timerID string) (TimerState, error)
	Reset(ctx context.Context, timerID string) (TimerState, error)
	Get(timerID string) (TimerState, bool)
}

// DispatchAuthService interface for dispatch host bearer tokens
type DispatchAuthService interface {
	Enabled() bool
	IssueToken(subject string) (string, time.Time, error)
	ValidateToken(tokenString string) (*DispatchClaims, error)
}

// Request/Response Types

type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

type StatsPeriod string

const (
	StatsPeriodToday StatsPeriod = "today"
	StatsPeriodWeek  StatsPeriod = "week"
	StatsPeriodMonth StatsPeriod = "month"
	StatsPeriodAll   StatsPeriod = "all"
)

type ChartPeriod string

const (
	ChartPeriodWeek    ChartPeriod = "week"
	ChartPeriodMonth   ChartPeriod = "month"
	ChartPeriodQuarter ChartPeriod = "quarter"
	ChartPeriodYear    ChartPeriod = "year"
)

// Days returns the calendar span the chart period covers
func (p ChartPeriod) Days() int {
	switch p {
	case ChartPeriodMonth:
		return 30
	case ChartPeriodQuarter:
		return 90
	case ChartPeriodYear:
		return 365
	default:
		return 7
	}
}

type SeriesKind string

const (
	SeriesTasks  SeriesKind = "tasks"
	SeriesFocus  SeriesKind = "focus"
	SeriesGoals  SeriesKind = "goals"
	SeriesHabits SeriesKind = "habits"
)

// ProductivityStats is the result of analyze-productivity
type ProductivityStats struct {
	TasksCompleted int    `json:"tasksCompleted"`
	FocusTime      int    `json:"focusTime" desc:"Minutes of completed focus sessions"`
	GoalProgress   int    `json:"goalProgress" desc:"Rounded mean progress of active goals"`
	CurrentStreak  int    `json:"currentStreak"`
	Period         Period `json:"period"`
}

// FocusSuggestion is one recommended focus slot
type FocusSuggestion struct {
	StartTime      string          `json:"startTime" desc:"HH:MM"`
	EndTime        string          `json:"endTime" desc:"HH:MM"`
	Reason         string          `json:"reason"`
	AvailableTasks []SuggestedTask `json:"availableTasks"`
}

type SuggestedTask struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Priority      entities.Priority `json:"priority"`
	EstimatedTime *int              `json:"estimatedTime,omitempty"`
}

// TaskStats summarises tasks created within a period
type TaskStats struct {
	Period         StatsPeriod    `json:"period"`
	Total          int            `json:"total"`
	Completed      int            `json:"completed"`
	InProgress     int            `json:"inProgress"`
	Todo           int            `json:"todo"`
	Overdue        int            `json:"overdue"`
	CompletionRate int            `json:"completionRate" desc:"Rounded percentage of completed tasks"`
	ByPriority     PriorityCounts `json:"byPriority" desc:"Open tasks per priority"`
}

type PriorityCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// SeriesPoint is one day of a progress chart
type SeriesPoint struct {
	Date  string  `json:"date"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// StartTimerRequest starts or resumes a focus timer
type StartTimerRequest struct {
	TimerID  string `json:"timerId,omitempty"`
	Duration int    `json:"duration,omitempty"`
	TaskID   string `json:"taskId,omitempty"`
}

// TimerState is a snapshot of one focus timer
type TimerState struct {
	ID               string     `json:"id"`
	TaskID           string     `json:"taskId,omitempty"`
	Duration         int        `json:"duration"`
	RemainingSeconds int        `json:"remainingSeconds"`
	Running          bool       `json:"running"`
	Completed        bool       `json:"completed"`
	StartedAt        *time.Time `json:"startedAt,omitempty"`
}

// DispatchClaims are carried by dispatch host bearer tokens
type DispatchClaims struct {
	Subject   string    `json:"sub"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}
