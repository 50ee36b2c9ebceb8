// Package tools defines the named operations the dispatch host can call.
// Every tool is a thin typed wrapper over the store or the analytics service.
package tools

import (
	"fmt"
	"time"

	"github.com/productivitybrain/core/internal/application/registry"
	"github.com/productivitybrain/core/internal/domain/entities"
	"github.com/productivitybrain/core/internal/ports"
)

// empty is the input of tools that take no arguments
type empty struct{}

type idInput struct {
	ID string `json:"id" validate:"required" desc:"Record identifier"`
}

// All returns every tool in the order they are listed to the host
func All(store ports.Store, analytics ports.AnalyticsService) []registry.Tool {
	var out []registry.Tool
	out = append(out, taskTools(store)...)
	out = append(out, calendarTools(store)...)
	out = append(out, noteTools(store)...)
	out = append(out, goalTools(store)...)
	out = append(out, habitTools(store)...)
	out = append(out, focusSessionTools(store)...)
	out = append(out, analyticsTools(analytics)...)
	return out
}

// Register adds every tool to r
func Register(r *registry.Tools, store ports.Store, analytics ports.AnalyticsService) error {
	for _, t := range All(store, analytics) {
		if err := r.Register(t); err != nil {
			return fmt.Errorf("failed to register tools: %w", err)
		}
	}
	return nil
}

// parseTime reads a caller timestamp in the store's location; "" means unset
func parseTime(clock ports.Clock, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := entities.ParseTimestamp(s, clock.Location())
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// found turns a comma-ok store result into a nullable tool result
func found[T any](v T, ok bool) *T {
	if !ok {
		return nil
	}
	return &v
}
