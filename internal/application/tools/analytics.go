package tools

import (
	"context"

	"github.com/productivitybrain/core/internal/application/registry"
	"github.com/productivitybrain/core/internal/ports"
)

type analyzeInput struct {
	Period ports.Period `json:"period" validate:"required,oneof=today week month" desc:"Window ending now"`
}

type taskStatsInput struct {
	Period ports.StatsPeriod `json:"period,omitempty" validate:"omitempty,oneof=today week month all" default:"all"`
}

func analyticsTools(analytics ports.AnalyticsService) []registry.Tool {
	return []registry.Tool{
		registry.NewTool("analyze-productivity",
			"Analyzes productivity data and returns statistics. Use this to generate insights about user's productivity.",
			func(ctx context.Context, in analyzeInput) (ports.ProductivityStats, error) {
				return analytics.AnalyzeProductivity(ctx, in.Period), nil
			}),

		registry.NewTool("suggest-focus-time",
			"Suggests optimal focus time slots based on schedule and tasks. Use this to help plan productive work time.",
			func(ctx context.Context, _ empty) ([]ports.FocusSuggestion, error) {
				return analytics.SuggestFocusTime(ctx), nil
			}),

		registry.NewTool("get-task-stats",
			"Counts tasks created in a period by status and priority, with completion rate and overdue count.",
			func(ctx context.Context, in taskStatsInput) (ports.TaskStats, error) {
				return analytics.TaskStats(ctx, in.Period), nil
			}),
	}
}
