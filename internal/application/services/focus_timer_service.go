package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/productivitybrain/core/internal/domain/entities"
	"github.com/productivitybrain/core/internal/infrastructure/logger"
	"github.com/productivitybrain/core/internal/infrastructure/metrics"
	"github.com/productivitybrain/core/internal/ports"
)

var (
	ErrTimerNotFound  = errors.New("focus timer not found")
	ErrTimerCompleted = errors.New("focus timer already completed")
	ErrTimersClosed   = errors.New("focus timers are shut down")
)

// CompletionHook runs after a timer expires and its session is recorded
type CompletionHook func(ctx context.Context, session entities.FocusSession) error

// SessionRecorder is what the timers need from the store
type SessionRecorder interface {
	ports.FocusSessionRepository
	ports.Clock
}

type focusTimer struct {
	id        string
	taskID    string
	duration  int
	remaining int
	completed bool
	startedAt *time.Time
	idleSince time.Time
	stop      chan struct{}
}

func (t *focusTimer) state() ports.TimerState {
	s := ports.TimerState{
		ID:               t.id,
		TaskID:           t.taskID,
		Duration:         t.duration,
		RemainingSeconds: t.remaining,
		Running:          t.stop != nil,
		Completed:        t.completed,
	}
	if t.startedAt != nil {
		started := *t.startedAt
		s.StartedAt = &started
	}
	return s
}

// FocusTimers runs countdown timers, one goroutine per running timer.
// Intermediate state lives only in memory; a completed session is written to
// the store when a timer runs out.
type FocusTimers struct {
	store           SessionRecorder
	tick            time.Duration
	defaultDuration int
	onComplete      CompletionHook
	retention       time.Duration
	metrics         *metrics.Metrics
	logger          *logger.Logger

	mu     sync.Mutex
	timers map[string]*focusTimer
	closed bool
	wg     sync.WaitGroup
}

// NewFocusTimers creates the timer service. tick is how often a running
// timer loses one second; production uses one second.
func NewFocusTimers(store SessionRecorder, tick time.Duration, defaultDuration int, m *metrics.Metrics, logger *logger.Logger) *FocusTimers {
	if defaultDuration <= 0 {
		defaultDuration = 25
	}
	return &FocusTimers{
		store:           store,
		tick:            tick,
		defaultDuration: defaultDuration,
		retention:       time.Hour,
		metrics:         m,
		logger:          logger.WithComponent("focus-timers"),
		timers:          make(map[string]*focusTimer),
	}
}

// OnComplete sets the hook fired when a timer expires
func (s *FocusTimers) OnComplete(hook CompletionHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onComplete = hook
}

// SetRetention sets how long a stopped timer stays addressable before it is
// evicted. Paused, reset and completed timers all count as stopped.
func (s *FocusTimers) SetRetention(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retention = d
}

// Start creates a timer, or resumes the paused timer named by req.TimerID
func (s *FocusTimers) Start(ctx context.Context, req ports.StartTimerRequest) (ports.TimerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ports.TimerState{}, ErrTimersClosed
	}
	s.evictIdle()

	var t *focusTimer
	if req.TimerID != "" {
		existing, ok := s.timers[req.TimerID]
		if !ok {
			return ports.TimerState{}, fmt.Errorf("%w: %s", ErrTimerNotFound, req.TimerID)
		}
		if existing.completed {
			return existing.state(), fmt.Errorf("%w: %s", ErrTimerCompleted, req.TimerID)
		}
		t = existing
	} else {
		duration := req.Duration
		if duration <= 0 {
			duration = s.defaultDuration
		}
		t = &focusTimer{
			id:        "timer-" + uuid.NewString(),
			taskID:    req.TaskID,
			duration:  duration,
			remaining: duration * 60,
		}
		s.timers[t.id] = t
	}

	if t.stop != nil {
		return t.state(), nil
	}

	if t.startedAt == nil {
		started := s.store.Now()
		t.startedAt = &started
	}
	t.stop = make(chan struct{})
	s.wg.Add(1)
	go s.run(t, t.stop)
	s.metrics.TimerStarted()

	s.logger.Debugw("Focus timer started", "timer_id", t.id, "task_id", t.taskID, "remaining", t.remaining)
	return t.state(), nil
}

// Pause stops a running timer, keeping its remaining time
func (s *FocusTimers) Pause(ctx context.Context, timerID string) (ports.TimerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timers[timerID]
	if !ok {
		return ports.TimerState{}, fmt.Errorf("%w: %s", ErrTimerNotFound, timerID)
	}
	s.halt(t)
	return t.state(), nil
}

// Reset stops a timer and restores its full duration
func (s *FocusTimers) Reset(ctx context.Context, timerID string) (ports.TimerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timers[timerID]
	if !ok {
		return ports.TimerState{}, fmt.Errorf("%w: %s", ErrTimerNotFound, timerID)
	}
	s.halt(t)
	t.remaining = t.duration * 60
	t.completed = false
	t.startedAt = nil
	return t.state(), nil
}

// Get returns a snapshot of one timer
func (s *FocusTimers) Get(timerID string) (ports.TimerState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timers[timerID]
	if !ok {
		return ports.TimerState{}, false
	}
	return t.state(), true
}

// Close stops every running timer and waits for their goroutines
func (s *FocusTimers) Close() {
	s.mu.Lock()
	s.closed = true
	for _, t := range s.timers {
		s.halt(t)
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// halt stops t's goroutine; callers hold s.mu
func (s *FocusTimers) halt(t *focusTimer) {
	if t.stop == nil {
		return
	}
	close(t.stop)
	t.stop = nil
	t.idleSince = s.store.Now()
	s.metrics.TimerStopped()
}

// evictIdle drops timers stopped for longer than the retention; callers hold s.mu
func (s *FocusTimers) evictIdle() {
	if s.retention <= 0 {
		return
	}
	now := s.store.Now()
	for id, t := range s.timers {
		if t.stop == nil && !t.idleSince.IsZero() && now.Sub(t.idleSince) >= s.retention {
			delete(s.timers, id)
			s.logger.Debugw("Evicted idle focus timer", "timer_id", id, "completed", t.completed)
		}
	}
}

func (s *FocusTimers) run(t *focusTimer, stop chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			if t.stop != stop {
				s.mu.Unlock()
				return
			}
			t.remaining--
			if t.remaining > 0 {
				s.mu.Unlock()
				continue
			}

			t.remaining = 0
			t.completed = true
			s.halt(t)
			session := entities.NewFocusSession{
				TaskID:    t.taskID,
				Duration:  t.duration,
				StartTime: *t.startedAt,
				Completed: true,
			}
			hook := s.onComplete
			s.mu.Unlock()

			s.complete(t.id, session, hook)
			return
		}
	}
}

func (s *FocusTimers) complete(timerID string, session entities.NewFocusSession, hook CompletionHook) {
	ctx := context.Background()

	end := s.store.Now()
	session.EndTime = &end
	recorded := s.store.AddFocusSession(ctx, session)

	s.logger.Infow("Focus session completed",
		"timer_id", timerID,
		"session_id", recorded.ID,
		"task_id", recorded.TaskID,
		"duration", recorded.Duration,
	)

	if hook == nil {
		return
	}
	if err := hook(ctx, recorded); err != nil {
		s.logger.Debugw("Focus completion hook failed", "timer_id", timerID, "error", err)
	}
}
