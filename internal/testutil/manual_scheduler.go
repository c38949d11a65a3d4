package testutil

import (
	"sort"
	"sync"
	"time"

	"github.com/docsight/docsight/internal/scheduler"
)

// ManualScheduler is a deterministic scheduler.Scheduler for tests.  Time
// only moves when Advance is called, and due callbacks run synchronously on
// the advancing goroutine in firing order.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Time
	entries []*manualTimer
}

type manualTimer struct {
	sched   *ManualScheduler
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.sched.mu.Lock()
	defer t.sched.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// NewManualScheduler creates a ManualScheduler starting at a fixed instant.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) scheduler.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{sched: s, at: s.now.Add(d), fn: f}
	s.entries = append(s.entries, t)
	return t
}

// Advance moves the clock forward by d, firing every due callback in order.
// Callbacks may schedule further timers; those fire too if they fall within
// the advanced window.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	deadline := s.now.Add(d)
	s.mu.Unlock()

	for {
		t := s.popDue(deadline)
		if t == nil {
			break
		}
		t.fn()
	}

	s.mu.Lock()
	s.now = deadline
	s.mu.Unlock()
}

// popDue removes and returns the earliest unfired, unstopped timer at or
// before deadline, advancing the clock to its firing time.
func (s *ManualScheduler) popDue(deadline time.Time) *manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()

	sort.SliceStable(s.entries, func(i, j int) bool {
		return s.entries[i].at.Before(s.entries[j].at)
	})
	for _, t := range s.entries {
		if t.fired || t.stopped {
			continue
		}
		if t.at.After(deadline) {
			return nil
		}
		t.fired = true
		if t.at.After(s.now) {
			s.now = t.at
		}
		return t
	}
	return nil
}

// PendingCount returns how many timers are armed but not yet fired.
func (s *ManualScheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.entries {
		if !t.fired && !t.stopped {
			n++
		}
	}
	return n
}
