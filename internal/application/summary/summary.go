// Package summary computes the ambient facts attached to every dispatch
// request. Each summarizer reads the store fresh and keeps no state.
package summary

import (
	"context"
	"fmt"

	"github.com/productivitybrain/core/internal/domain/entities"
	"github.com/productivitybrain/core/internal/ports"
)

// Entry is one key/value fact
type Entry struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Summarizer produces one entry from the store
type Summarizer func(ctx context.Context, store ports.Store) Entry

// Defaults returns the summarizers in the order they are reported
func Defaults() []Summarizer {
	return []Summarizer{CurrentTasks, TodaysSchedule, ActiveGoals, HabitStreaks}
}

// Collect runs every summarizer against store
func Collect(ctx context.Context, store ports.Store, summarizers ...Summarizer) []Entry {
	if len(summarizers) == 0 {
		summarizers = Defaults()
	}
	out := make([]Entry, 0, len(summarizers))
	for _, s := range summarizers {
		out = append(out, s(ctx, store))
	}
	return out
}

func CurrentTasks(ctx context.Context, store ports.Store) Entry {
	pending, done := 0, 0
	for _, t := range store.Tasks(ctx) {
		if t.Status == entities.TaskStatusDone {
			done++
		} else {
			pending++
		}
	}
	return Entry{Key: "currentTasks", Value: fmt.Sprintf("%d pending tasks, %d completed", pending, done)}
}

func TodaysSchedule(ctx context.Context, store ports.Store) Entry {
	today := store.Now()
	count := 0
	for _, e := range store.Events(ctx) {
		if e.OccursOn(today) {
			count++
		}
	}
	return Entry{Key: "todaysSchedule", Value: fmt.Sprintf("%d events scheduled for today", count)}
}

func ActiveGoals(ctx context.Context, store ports.Store) Entry {
	count := 0
	for _, g := range store.Goals(ctx) {
		if g.Status == entities.GoalStatusActive {
			count++
		}
	}
	return Entry{Key: "activeGoals", Value: fmt.Sprintf("%d active goals", count)}
}

// HabitStreaks reports the habit count and the best current streak
func HabitStreaks(ctx context.Context, store ports.Store) Entry {
	habits := store.Habits(ctx)
	best := 0
	for _, h := range habits {
		if h.Streak > best {
			best = h.Streak
		}
	}
	return Entry{Key: "habitStreaks", Value: fmt.Sprintf("%d habits tracked, best current streak %d days", len(habits), best)}
}
