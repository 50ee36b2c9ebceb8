package services

import (
	"context"
	"math"
	"time"

	"github.com/productivitybrain/core/internal/domain/entities"
	"github.com/productivitybrain/core/internal/infrastructure/logger"
	"github.com/productivitybrain/core/internal/ports"
)

// maxSeriesPoints caps the number of days a progress chart plots
const maxSeriesPoints = 30

// Focus slot suggestions are fixed windows of the working day
var focusSlots = []struct {
	start, end, reason string
	limit              int
	match              func(entities.Task) bool
}{
	{
		start: "09:00", end: "11:00", reason: "Morning peak focus time", limit: 3,
		match: func(t entities.Task) bool {
			return t.Status == entities.TaskStatusTodo && t.Priority == entities.PriorityHigh
		},
	},
	{
		start: "14:00", end: "16:00", reason: "Afternoon deep work session", limit: 2,
		match: func(t entities.Task) bool {
			return t.Status == entities.TaskStatusTodo && t.EstimatedTime != nil && *t.EstimatedTime > 0
		},
	},
}

// AnalyticsService derives productivity figures from the store
type AnalyticsService struct {
	store     ports.Store
	weekStart time.Weekday
	logger    *logger.Logger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(store ports.Store, weekStart time.Weekday, logger *logger.Logger) *AnalyticsService {
	return &AnalyticsService{
		store:     store,
		weekStart: weekStart,
		logger:    logger.WithComponent("analytics"),
	}
}

// WeekStart returns the first day of the week used for "week" windows
func (s *AnalyticsService) WeekStart() time.Weekday {
	return s.weekStart
}

// PeriodStart returns the beginning of the window ending at now
func (s *AnalyticsService) PeriodStart(period ports.Period, now time.Time) time.Time {
	switch period {
	case ports.PeriodWeek:
		return entities.StartOfWeek(now, s.weekStart)
	case ports.PeriodMonth:
		return entities.StartOfMonth(now)
	default:
		return entities.StartOfDay(now)
	}
}

// AnalyzeProductivity summarises completed work between the start of period
// and now, both ends inclusive.
func (s *AnalyticsService) AnalyzeProductivity(ctx context.Context, period ports.Period) ports.ProductivityStats {
	now := s.store.Now()
	start := s.PeriodStart(period, now)
	within := func(t time.Time) bool {
		return !t.Before(start) && !t.After(now)
	}

	stats := ports.ProductivityStats{Period: period}

	for _, t := range s.store.Tasks(ctx) {
		if t.Status == entities.TaskStatusDone && t.CompletedAt != nil && within(*t.CompletedAt) {
			stats.TasksCompleted++
		}
	}

	for _, fs := range s.store.FocusSessions(ctx) {
		if fs.Completed && within(fs.StartTime) {
			stats.FocusTime += fs.Duration
		}
	}

	stats.GoalProgress = activeGoalAverage(s.store.Goals(ctx))

	for _, h := range s.store.Habits(ctx) {
		if h.Streak > stats.CurrentStreak {
			stats.CurrentStreak = h.Streak
		}
	}

	s.logger.Debugw("Productivity analysed",
		"period", period,
		"tasks_completed", stats.TasksCompleted,
		"focus_minutes", stats.FocusTime,
	)
	return stats
}

// SuggestFocusTime proposes the fixed morning and afternoon focus slots with
// the open tasks best suited to each.
func (s *AnalyticsService) SuggestFocusTime(ctx context.Context) []ports.FocusSuggestion {
	tasks := s.store.Tasks(ctx)

	suggestions := make([]ports.FocusSuggestion, 0, len(focusSlots))
	for _, slot := range focusSlots {
		available := make([]ports.SuggestedTask, 0, slot.limit)
		for _, t := range tasks {
			if len(available) == slot.limit {
				break
			}
			if slot.match(t) {
				available = append(available, ports.SuggestedTask{
					ID:            t.ID,
					Title:         t.Title,
					Priority:      t.Priority,
					EstimatedTime: t.EstimatedTime,
				})
			}
		}
		suggestions = append(suggestions, ports.FocusSuggestion{
			StartTime:      slot.start,
			EndTime:        slot.end,
			Reason:         slot.reason,
			AvailableTasks: available,
		})
	}
	return suggestions
}

// TaskStats counts tasks created in the calendar period containing now.
// Priority counts only include tasks that are not done.
func (s *AnalyticsService) TaskStats(ctx context.Context, period ports.StatsPeriod) ports.TaskStats {
	now := s.store.Now()
	inPeriod := s.createdIn(period, now)

	stats := ports.TaskStats{Period: period}
	for _, t := range s.store.Tasks(ctx) {
		if !inPeriod(t.CreatedAt) {
			continue
		}
		stats.Total++

		switch t.Status {
		case entities.TaskStatusDone:
			stats.Completed++
		case entities.TaskStatusInProgress:
			stats.InProgress++
		case entities.TaskStatusTodo:
			stats.Todo++
		}

		if t.Status != entities.TaskStatusDone {
			switch t.Priority {
			case entities.PriorityHigh:
				stats.ByPriority.High++
			case entities.PriorityMedium:
				stats.ByPriority.Medium++
			case entities.PriorityLow:
				stats.ByPriority.Low++
			}
		}

		if t.IsOverdue(now) {
			stats.Overdue++
		}
	}

	if stats.Total > 0 {
		stats.CompletionRate = int(math.Round(float64(stats.Completed) / float64(stats.Total) * 100))
	}
	return stats
}

func (s *AnalyticsService) createdIn(period ports.StatsPeriod, now time.Time) func(time.Time) bool {
	var start, end time.Time
	switch period {
	case ports.StatsPeriodToday:
		start = entities.StartOfDay(now)
		end = start.AddDate(0, 0, 1)
	case ports.StatsPeriodWeek:
		start = entities.StartOfWeek(now, s.weekStart)
		end = start.AddDate(0, 0, 7)
	case ports.StatsPeriodMonth:
		start = entities.StartOfMonth(now)
		end = start.AddDate(0, 1, 0)
	default:
		return func(time.Time) bool { return true }
	}
	return func(t time.Time) bool {
		return !t.Before(start) && t.Before(end)
	}
}

// ProgressSeries returns one point per day ending today, at most
// maxSeriesPoints days long.
func (s *AnalyticsService) ProgressSeries(ctx context.Context, kind ports.SeriesKind, period ports.ChartPeriod) []ports.SeriesPoint {
	now := s.store.Now()
	loc := now.Location()

	days := period.Days()
	if days > maxSeriesPoints {
		days = maxSeriesPoints
	}

	perDay := map[string]float64{}
	flat := -1.0

	switch kind {
	case ports.SeriesTasks:
		for _, t := range s.store.Tasks(ctx) {
			if t.Status == entities.TaskStatusDone && t.CompletedAt != nil {
				perDay[entities.DateKey(t.CompletedAt.In(loc))]++
			}
		}
	case ports.SeriesFocus:
		for _, fs := range s.store.FocusSessions(ctx) {
			if fs.Completed {
				perDay[entities.DateKey(fs.StartTime.In(loc))] += float64(fs.Duration)
			}
		}
	case ports.SeriesHabits:
		for _, h := range s.store.Habits(ctx) {
			for _, d := range h.CompletedDates {
				perDay[d]++
			}
		}
	case ports.SeriesGoals:
		// Goal progress has no history; every day shows the current average.
		flat = float64(activeGoalAverage(s.store.Goals(ctx)))
	}

	today := entities.StartOfDay(now)
	points := make([]ports.SeriesPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		key := entities.DateKey(day)
		value := perDay[key]
		if flat >= 0 {
			value = flat
		}
		points = append(points, ports.SeriesPoint{
			Date:  key,
			Label: day.Format("Jan 2"),
			Value: value,
		})
	}
	return points
}

func activeGoalAverage(goals []entities.Goal) int {
	sum, count := 0, 0
	for _, g := range goals {
		if g.Status == entities.GoalStatusActive {
			sum += g.Progress
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(count)))
}
