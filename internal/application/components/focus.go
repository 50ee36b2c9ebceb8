package components

import (
	"context"
	"fmt"

	"github.com/productivitybrain/core/internal/application/registry"
	"github.com/productivitybrain/core/internal/application/ui"
	"github.com/productivitybrain/core/internal/ports"
)

type focusTimerProps struct {
	Duration  int    `json:"duration,omitempty" validate:"omitempty,gte=1,lte=480" default:"25" desc:"Duration in minutes"`
	TaskID    string `json:"taskId,omitempty" desc:"Associated task ID"`
	TaskTitle string `json:"taskTitle,omitempty" desc:"Associated task title"`
	TimerID   string `json:"timerId,omitempty" desc:"Running timer to display, set by the start action"`
}

type startTimerArgs struct {
	TimerID string `json:"timerId,omitempty"`
}

type timerArgs struct {
	TimerID string `json:"timerId" validate:"required"`
}

func focusTimer(d Deps) registry.Component {
	return registry.NewComponent("FocusTimer",
		"A Pomodoro-style focus timer to help concentrate on tasks. Use this when the user wants to focus on a specific task.",
		func(_ context.Context, p focusTimerProps) (ui.Node, error) {
			state, ok := d.Timers.Get(p.TimerID)
			if p.TimerID == "" || !ok {
				state = ports.TimerState{Duration: p.Duration, RemainingSeconds: p.Duration * 60}
			}
			return timerPanel(p, state), nil
		},
		registry.WithAction("start", "Start or resume the timer",
			func(ctx context.Context, p *focusTimerProps, a startTimerArgs) error {
				id := a.TimerID
				if id == "" {
					id = p.TimerID
				}
				if _, ok := d.Timers.Get(id); !ok {
					id = ""
				}
				state, err := d.Timers.Start(ctx, ports.StartTimerRequest{TimerID: id, Duration: p.Duration, TaskID: p.TaskID})
				if err != nil {
					return err
				}
				p.TimerID = state.ID
				return nil
			}),
		registry.WithAction("pause", "Pause the timer",
			func(ctx context.Context, p *focusTimerProps, a timerArgs) error {
				if _, err := d.Timers.Pause(ctx, a.TimerID); err != nil {
					return err
				}
				p.TimerID = a.TimerID
				return nil
			}),
		registry.WithAction("reset", "Stop the timer and restore its full duration",
			func(ctx context.Context, p *focusTimerProps, a timerArgs) error {
				if _, err := d.Timers.Reset(ctx, a.TimerID); err != nil {
					return err
				}
				p.TimerID = a.TimerID
				return nil
			}),
	)
}

func timerPanel(p focusTimerProps, s ports.TimerState) ui.Node {
	total := s.Duration * 60
	progress := 0
	if total > 0 {
		progress = (total - s.RemainingSeconds) * 100 / total
	}

	status := "Ready to Focus"
	switch {
	case s.Completed:
		status = "Session Complete!"
	case s.Running:
		status = "Focus Mode Active"
	}

	clock := ui.Node{
		Kind: ui.KindTimer,
		Text: fmt.Sprintf("%02d:%02d", s.RemainingSeconds/60, s.RemainingSeconds%60),
		Attrs: map[string]any{
			"remainingSeconds": s.RemainingSeconds,
			"duration":         s.Duration,
			"running":          s.Running,
			"completed":        s.Completed,
			"progress":         progress,
		},
	}
	if s.ID != "" {
		clock = clock.WithAttr("timerId", s.ID)
	}

	var actions []ui.Action
	if !s.Completed {
		if s.Running {
			actions = append(actions, ui.Action{Name: "pause", Label: "Pause", Args: map[string]any{"timerId": s.ID}})
		} else {
			start := ui.Action{Name: "start", Label: "Start"}
			if s.ID != "" {
				start.Args = map[string]any{"timerId": s.ID}
			}
			actions = append(actions, start)
		}
	}
	if s.ID != "" {
		actions = append(actions, ui.Action{Name: "reset", Label: "Reset", Args: map[string]any{"timerId": s.ID}})
	}

	panel := ui.Panel("Focus Timer")
	if p.TaskTitle != "" {
		panel = panel.Append(ui.Text(p.TaskTitle))
	}
	return panel.Append(
		clock.WithActions(actions...),
		ui.Text(status),
		ui.Text(fmt.Sprintf("Tip: Stay focused for %d minutes. Take a short break after!", s.Duration)),
	)
}
