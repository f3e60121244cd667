// Package sched serializes the booth's work onto a single event loop.
//
// All user actions, timer callbacks and completions of background work run
// on the loop goroutine, one at a time, so the session state they touch
// needs no locking.
package sched

import (
	"context"
	"sync"
	"time"
)

// Task is a handle on a scheduled callback.
type Task interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped the task (false if it already ran or was already stopped).
	Stop() bool
}

// Scheduler is what the booth components use to defer work.
type Scheduler interface {
	// AfterFunc runs fn on the loop once d has elapsed, unless stopped first.
	AfterFunc(d time.Duration, fn func()) Task
	// Post runs fn on the loop as soon as possible.
	Post(fn func())
	// Go runs work off the loop, then runs then on the loop. Nothing waits
	// for it: callers keep going while work is in flight.
	Go(work func(), then func())
}

// Loop is the production Scheduler: one goroutine draining a queue of
// callbacks.
type Loop struct {
	queue chan func()
	done  chan struct{}
	once  sync.Once
}

// NewLoop creates a loop with a buffered queue. Run must be called to start it.
func NewLoop() *Loop {
	return &Loop{
		queue: make(chan func(), 256),
		done:  make(chan struct{}),
	}
}

// Run executes queued callbacks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	defer l.once.Do(func() { close(l.done) })
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.queue:
			fn()
		}
	}
}

// Post enqueues fn. After the loop stopped, fn is dropped.
func (l *Loop) Post(fn func()) {
	select {
	case l.queue <- fn:
	case <-l.done:
	}
}

// Call runs fn on the loop and waits for its result.
func (l *Loop) Call(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	l.Post(func() { result <- fn() })
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return context.Canceled
	}
}

// AfterFunc schedules fn on the loop after d.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Task {
	t := &loopTask{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			// Stop may have been called after the timer fired but before the
			// callback reached the loop; the flag is only read on the loop.
			if t.stopped {
				return
			}
			t.fired = true
			fn()
		})
	})
	return t
}

// Go runs work in its own goroutine and posts then back to the loop.
func (l *Loop) Go(work func(), then func()) {
	go func() {
		work()
		l.Post(then)
	}()
}

type loopTask struct {
	timer   *time.Timer
	stopped bool
	fired   bool
}

// Stop must be called from the loop.
func (t *loopTask) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	t.timer.Stop()
	return true
}
