// Package components defines the widgets the dispatch host can render. A
// render reads the store and returns a ui.Node tree; write-back actions
// mutate the store and return the refreshed tree.
package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/productivitybrain/core/internal/application/registry"
	"github.com/productivitybrain/core/internal/application/ui"
	"github.com/productivitybrain/core/internal/domain/entities"
	"github.com/productivitybrain/core/internal/ports"
)

// Deps are the services components read from and write to
type Deps struct {
	Store     ports.Store
	Analytics ports.AnalyticsService
	Timers    ports.FocusTimerService
}

// All returns every component in the order they are listed to the host
func All(d Deps) []registry.Component {
	return []registry.Component{
		taskList(d),
		taskBoard(d),
		taskStats(d),
		calendar(d),
		timeBlocks(d),
		focusTimer(d),
		noteCard(),
		notesGrid(d),
		goalTracker(d),
		weeklyPlanner(d),
		progressChart(d),
		productivityReport(d),
		habitTracker(d),
	}
}

// Register adds every component to r
func Register(r *registry.Components, d Deps) error {
	for _, c := range All(d) {
		if err := r.Register(c); err != nil {
			return fmt.Errorf("failed to register components: %w", err)
		}
	}
	return nil
}

// anchorDay resolves an optional caller date to local midnight, defaulting
// to today.
func anchorDay(clock ports.Clock, raw string) (time.Time, error) {
	if raw == "" {
		return entities.StartOfDay(clock.Now()), nil
	}
	t, err := entities.ParseTimestamp(raw, clock.Location())
	if err != nil {
		return time.Time{}, err
	}
	return entities.StartOfDay(t.In(clock.Location())), nil
}

func periodLabel(period string) string {
	switch period {
	case "today":
		return "Today"
	case "week":
		return "This Week"
	case "month":
		return "This Month"
	default:
		return "All Time"
	}
}

func tagBadges(tags []string) []ui.Node {
	out := make([]ui.Node, 0, len(tags))
	for _, tag := range tags {
		out = append(out, ui.Badge("#"+tag, "tag"))
	}
	return out
}

func titleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "-", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
