package schedule

import (
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var epoch = time.Date(2025, 5, 18, 15, 20, 0, 0, time.UTC)

func TestManual_RunsInDueOrder(t *testing.T) {
	m := NewManual(epoch)
	var got []string
	m.AfterFunc(3*time.Second, func() { got = append(got, "reset") })
	m.AfterFunc(1500*time.Millisecond, func() { got = append(got, "success") })
	m.AfterFunc(1500*time.Millisecond, func() { got = append(got, "second at same time") })

	m.Advance(time.Second)
	if len(got) != 0 {
		t.Fatalf("ran early: %v", got)
	}
	m.Advance(time.Second)
	if diff := cmp.Diff([]string{"success", "second at same time"}, got); diff != "" {
		t.Errorf("after 2s (-want +got):\n%s", diff)
	}
	m.Advance(time.Second)
	if diff := cmp.Diff([]string{"success", "second at same time", "reset"}, got); diff != "" {
		t.Errorf("after 3s (-want +got):\n%s", diff)
	}
	if !m.Now().Equal(epoch.Add(3 * time.Second)) {
		t.Errorf("Now() = %v", m.Now())
	}
}

func TestManual_NestedScheduling(t *testing.T) {
	m := NewManual(epoch)
	var at []time.Duration
	m.AfterFunc(1500*time.Millisecond, func() {
		at = append(at, m.Now().Sub(epoch))
		m.AfterFunc(3*time.Second, func() {
			at = append(at, m.Now().Sub(epoch))
		})
	})

	m.Advance(5 * time.Second)
	want := []time.Duration{1500 * time.Millisecond, 4500 * time.Millisecond}
	if diff := cmp.Diff(want, at); diff != "" {
		t.Errorf("callback times (-want +got):\n%s", diff)
	}
}

func TestManual_Cancel(t *testing.T) {
	m := NewManual(epoch)
	ran := false
	cancel := m.AfterFunc(time.Second, func() { ran = true })
	if m.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", m.Pending())
	}
	if !cancel() {
		t.Error("first cancel() = false, want true")
	}
	if cancel() {
		t.Error("second cancel() = true, want false")
	}
	m.Advance(time.Minute)
	if ran {
		t.Error("canceled callback ran")
	}
	if m.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", m.Pending())
	}
}

func TestContinuation_FirstThenThen(t *testing.T) {
	m := NewManual(epoch)
	var steps []string
	var wrapped int
	c := Continuation{
		Delay: 2 * time.Second,
		First: func() { steps = append(steps, "close") },
		Then:  func() { steps = append(steps, "reload") },
	}
	c.Start(m, func(f func()) {
		wrapped++
		f()
	})

	m.Advance(1999 * time.Millisecond)
	if len(steps) != 0 {
		t.Fatalf("ran before delay: %v", steps)
	}
	m.Advance(time.Millisecond)
	if diff := cmp.Diff([]string{"close", "reload"}, steps); diff != "" {
		t.Errorf("steps (-want +got):\n%s", diff)
	}
	if wrapped != 1 {
		t.Errorf("run wrapper called %d times, want 1", wrapped)
	}
}

func TestReal_AfterFunc(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	Continuation{Delay: time.Millisecond, Then: wg.Done}.Start(Real{}, nil)
	wg.Wait()

	cancel := Real{}.AfterFunc(time.Hour, func() { t.Error("should not run") })
	if !cancel() {
		t.Error("cancel() = false for pending timer")
	}
}
