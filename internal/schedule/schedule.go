// Package schedule runs delayed page work: feedback resets, simulated
// submissions, and the close-then-reload continuation after a discussion is
// posted.
//
// Production code uses Real. Tests use Manual and move time with Advance.
package schedule

import (
	"sort"
	"sync"
	"time"
)

// Cancel stops a pending callback. It reports whether the callback was
// stopped before running.
type Cancel func() bool

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Cancel
	Now() time.Time
}

// Real schedules on the wall clock.
type Real struct{}

// AfterFunc uses time.AfterFunc; f runs on its own goroutine.
func (Real) AfterFunc(d time.Duration, f func()) Cancel {
	t := time.AfterFunc(d, f)
	return t.Stop
}

// Now returns time.Now().
func (Real) Now() time.Time {
	return time.Now()
}

// Manual is a virtual clock. Callbacks run synchronously inside Advance, in
// due order, ties in scheduling order.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	seq     int
	pending []*task
}

type task struct {
	due      time.Time
	seq      int
	f        func()
	canceled bool
}

// NewManual creates a virtual clock reading start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the virtual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc queues f to run once the clock has advanced by d.
func (m *Manual) AfterFunc(d time.Duration, f func()) Cancel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &task{due: m.now.Add(d), seq: m.seq, f: f}
	m.pending = append(m.pending, t)
	return func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		if t.canceled || t.f == nil {
			return false
		}
		t.canceled = true
		return true
	}
}

// Advance moves the clock forward by d, running every callback that falls
// due. Callbacks scheduled while advancing run too if they fall inside d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.popDue(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = next.due
		f := next.f
		next.f = nil
		m.mu.Unlock()

		f()
	}
}

// Pending counts callbacks that have neither run nor been canceled.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.pending {
		if !t.canceled && t.f != nil {
			n++
		}
	}
	return n
}

func (m *Manual) popDue(target time.Time) *task {
	live := m.pending[:0]
	for _, t := range m.pending {
		if !t.canceled && t.f != nil {
			live = append(live, t)
		}
	}
	m.pending = live
	if len(live) == 0 {
		return nil
	}

	sort.SliceStable(live, func(i, j int) bool {
		if !live[i].due.Equal(live[j].due) {
			return live[i].due.Before(live[j].due)
		}
		return live[i].seq < live[j].seq
	})
	if live[0].due.After(target) {
		return nil
	}
	next := live[0]
	m.pending = live[1:]
	return next
}

// Continuation is a two-step follow-up: after Delay, First runs and then Then.
//
// The connect page uses it to close the discussion modal and reload the list
// two seconds after a successful post. Nothing guarantees the reload observes
// the new post; the API may not have indexed it yet.
type Continuation struct {
	Delay time.Duration
	First func()
	Then  func()
}

// Start schedules the continuation. When run is non-nil both steps execute
// inside it, which lets callers serialise them with page event dispatch.
func (c Continuation) Start(s Scheduler, run func(func())) Cancel {
	body := func() {
		if c.First != nil {
			c.First()
		}
		if c.Then != nil {
			c.Then()
		}
	}
	return s.AfterFunc(c.Delay, func() {
		if run != nil {
			run(body)
			return
		}
		body()
	})
}
