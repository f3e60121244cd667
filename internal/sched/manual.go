package sched

import (
	"sort"
	"time"
)

// Manual is a deterministic Scheduler driven by a virtual clock. It is meant
// for tests and simulations: nothing runs until Advance, Drain or RunJobs is
// called, and everything runs on the caller's goroutine.
type Manual struct {
	now    time.Duration
	seq    int
	timers []*manualTask
	queue  []func()
	jobs   []manualJob
}

type manualJob struct {
	work func()
	then func()
}

type manualTask struct {
	at      time.Duration
	seq     int
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTask) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// NewManual returns a Manual scheduler at virtual time zero.
func NewManual() *Manual {
	return &Manual{}
}

// Now returns the virtual time elapsed since creation.
func (m *Manual) Now() time.Duration {
	return m.now
}

func (m *Manual) AfterFunc(d time.Duration, fn func()) Task {
	m.seq++
	t := &manualTask{at: m.now + d, seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

func (m *Manual) Post(fn func()) {
	m.queue = append(m.queue, fn)
}

// Go queues the job; it only runs when RunJobs is called, which lets tests
// observe the state while background work is still in flight.
func (m *Manual) Go(work func(), then func()) {
	m.jobs = append(m.jobs, manualJob{work: work, then: then})
}

// Pending returns the number of background jobs not yet run.
func (m *Manual) Pending() int {
	return len(m.jobs)
}

// Drain runs posted callbacks until the queue is empty.
func (m *Manual) Drain() {
	for len(m.queue) > 0 {
		fn := m.queue[0]
		m.queue = m.queue[1:]
		fn()
	}
}

// RunJobs runs every queued background job (and any job they queue), posting
// and draining their completions.
func (m *Manual) RunJobs() {
	for len(m.jobs) > 0 {
		job := m.jobs[0]
		m.jobs = m.jobs[1:]
		job.work()
		m.Post(job.then)
		m.Drain()
	}
}

// Settle drains posted callbacks and background jobs until both are empty.
// Timers are not advanced.
func (m *Manual) Settle() {
	for len(m.queue) > 0 || len(m.jobs) > 0 {
		m.Drain()
		m.RunJobs()
	}
}

// Advance moves the virtual clock forward by d, firing due timers in order
// and draining posted callbacks after each one.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	m.Drain()
	for {
		next := m.nextDue(target)
		if next == nil {
			break
		}
		m.now = next.at
		next.fired = true
		next.fn()
		m.Drain()
	}
	m.now = target
}

func (m *Manual) nextDue(target time.Duration) *manualTask {
	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	m.timers = live
	if len(live) == 0 {
		return nil
	}
	sort.SliceStable(live, func(i, j int) bool {
		if live[i].at != live[j].at {
			return live[i].at < live[j].at
		}
		return live[i].seq < live[j].seq
	})
	if live[0].at > target {
		return nil
	}
	return live[0]
}
