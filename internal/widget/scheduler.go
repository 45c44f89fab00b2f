package widget

import (
	"sync"
	"time"
)

// Scheduler holds at most one pending task. Scheduling replaces the pending task,
// a task already running always completes, and runs never overlap.
type Scheduler struct {
	delay time.Duration

	mu      sync.Mutex
	seq     uint64
	timer   *time.Timer
	pending func()

	runMu sync.Mutex
}

// NewScheduler creates a scheduler that runs tasks delay after their last trigger.
// A zero delay defers the run to a fresh goroutine, after the caller's turn.
func NewScheduler(delay time.Duration) *Scheduler {
	return &Scheduler{delay: delay}
}

// Schedule replaces any pending task with fn.
func (s *Scheduler) Schedule(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	seq := s.seq
	if s.timer != nil {
		s.timer.Stop()
	}
	s.pending = fn
	s.timer = time.AfterFunc(s.delay, func() { s.fire(seq) })
}

// Pending reports whether a task is waiting to run.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Flush runs the pending task now, on the calling goroutine.
// It reports whether a task was run.
func (s *Scheduler) Flush() bool {
	fn := s.take(0)
	if fn == nil {
		return false
	}
	s.run(fn)
	return true
}

// Cancel drops the pending task. A run in progress is not interrupted.
func (s *Scheduler) Cancel() {
	_ = s.take(0)
}

func (s *Scheduler) fire(seq uint64) {
	if fn := s.take(seq); fn != nil {
		s.run(fn)
	}
}

// take removes the pending task. A non-zero seq only matches the latest schedule,
// so a timer that lost the race against a newer Schedule is a no-op.
func (s *Scheduler) take(seq uint64) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != 0 && seq != s.seq {
		return nil
	}
	fn := s.pending
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	return fn
}

func (s *Scheduler) run(fn func()) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	fn()
}
