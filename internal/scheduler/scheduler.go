// Package scheduler provides the timer primitives behind every deferred
// operation in the engine: debounced scroll capture and multi-attempt scroll
// restoration.  Nothing in the engine blocks; deferred work is always a
// cancellable timer owned by exactly one Task, and a pending timer is the
// only thing that can be cancelled.
package scheduler

import (
	"sync"
	"time"
)

// Timer is a handle to a single pending callback.  Stop prevents the callback
// from firing and reports whether it was still pending.
type Timer interface {
	Stop() bool
}

// Scheduler abstracts time so that tests can drive timer callbacks
// deterministically instead of sleeping.
type Scheduler interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc schedules f to run once after d and returns a handle that can
	// cancel it while still pending.
	AfterFunc(d time.Duration, f func()) Timer
}

type systemScheduler struct{}

// NewSystem returns a Scheduler backed by the real clock and time.AfterFunc.
func NewSystem() Scheduler { return systemScheduler{} }

func (systemScheduler) Now() time.Time { return time.Now() }

func (systemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Task is a single-owner, explicitly cancellable scheduled callback slot.
// Scheduling always cancels any previously pending callback first, and a
// callback that was cancelled while its timer raced the cancel is suppressed
// by a generation check, so a stale timer can never commit.
type Task struct {
	mu    sync.Mutex
	sched Scheduler
	timer Timer
	gen   uint64
}

// NewTask creates a Task that schedules on sched.
func NewTask(sched Scheduler) *Task {
	return &Task{sched: sched}
}

// Schedule arranges for fn to run once after d, cancelling any callback that
// was still pending on this Task.
func (t *Task) Schedule(d time.Duration, fn func()) {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.gen++
	gen := t.gen
	t.timer = t.sched.AfterFunc(d, func() {
		t.mu.Lock()
		if t.gen != gen {
			// Cancelled or rescheduled after this timer was armed.
			t.mu.Unlock()
			return
		}
		t.timer = nil
		t.mu.Unlock()
		fn()
	})
	t.mu.Unlock()
}

// Cancel stops the pending callback, if any, and reports whether one was
// still pending.  Safe to call repeatedly.
func (t *Task) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	if t.timer == nil {
		return false
	}
	t.timer.Stop()
	t.timer = nil
	return true
}

// Pending reports whether a callback is currently scheduled.
func (t *Task) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}
