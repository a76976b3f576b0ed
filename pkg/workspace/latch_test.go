package workspace_test

import (
	"testing"
	"time"

	"github.com/goliatone/go-jobform/pkg/workspace"
)

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.stopped = true
	return true
}

type fakeClock struct {
	timers []*fakeTimer
}

func (c *fakeClock) after(d time.Duration, fn func()) workspace.Stopper {
	timer := &fakeTimer{delay: d, fn: fn}
	c.timers = append(c.timers, timer)
	return timer
}

func (c *fakeClock) fireLast() {
	c.timers[len(c.timers)-1].fn()
}

func TestLatchRisingEdgeIsImmediate(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{}
	var changes []bool
	latch := workspace.NewLatch(0,
		workspace.WithAfterFunc(clock.after),
		workspace.WithVisibilityCallback(func(v bool) { changes = append(changes, v) }),
	)

	latch.Set(workspace.SourceWorkspaces, true)
	if !latch.Visible() {
		t.Fatalf("expected indicator to show immediately")
	}
	if len(clock.timers) != 0 {
		t.Fatalf("rising edge must not schedule a timer")
	}

	latch.Set(workspace.SourceWorkspaces, false)
	if !latch.Visible() {
		t.Fatalf("falling edge should be held")
	}
	if len(clock.timers) != 1 || clock.timers[0].delay != workspace.DefaultMinVisible {
		t.Fatalf("expected one hold timer of %v, got %+v", workspace.DefaultMinVisible, clock.timers)
	}

	clock.fireLast()
	if latch.Visible() {
		t.Fatalf("expected indicator hidden after hold")
	}
	if len(changes) != 2 || !changes[0] || changes[1] {
		t.Fatalf("unexpected change sequence %v", changes)
	}
}

func TestLatchOverlappingSourcesDoNotFlicker(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{}
	latch := workspace.NewLatch(100*time.Millisecond, workspace.WithAfterFunc(clock.after))

	latch.Set(workspace.SourceWorkspaces, true)
	latch.Set(workspace.SourceParameters, true)
	latch.Set(workspace.SourceWorkspaces, false)
	if len(clock.timers) != 0 {
		t.Fatalf("no hold while another source is active")
	}

	latch.Set(workspace.SourceParameters, false)
	first := clock.timers[0]

	latch.Set(workspace.SourceParameters, true)
	if !first.stopped {
		t.Fatalf("rising edge should cancel the pending hide")
	}

	// A stale timer firing must not hide an active indicator.
	first.fn()
	if !latch.Visible() {
		t.Fatalf("stale timer hid an active indicator")
	}

	latch.Set(workspace.SourceParameters, false)
	clock.fireLast()
	if latch.Visible() {
		t.Fatalf("expected indicator hidden")
	}
}
