package workspace

import (
	"sync"
	"time"
)

// DefaultMinVisible is how long the loading indicator stays up after the
// last source finishes.
const DefaultMinVisible = 250 * time.Millisecond

// Stopper cancels a pending timer. *time.Timer satisfies it.
type Stopper interface {
	Stop() bool
}

// AfterFunc schedules fn after d. time.AfterFunc is the default.
type AfterFunc func(d time.Duration, fn func()) Stopper

// Latch merges several loading sources into one indicator. Turning on is
// immediate; turning off is held for a minimum duration so overlapping
// sources do not make the indicator flicker.
type Latch struct {
	mu         sync.Mutex
	minVisible time.Duration
	after      AfterFunc
	onChange   func(visible bool)

	active  map[string]struct{}
	visible bool
	pending Stopper
	gen     uint64
}

// LatchOption customises a Latch.
type LatchOption func(*Latch)

// WithAfterFunc replaces the timer implementation, mainly for tests.
func WithAfterFunc(after AfterFunc) LatchOption {
	return func(l *Latch) {
		if after != nil {
			l.after = after
		}
	}
}

// WithVisibilityCallback registers fn to be called whenever the indicator
// changes. fn runs without the latch lock held.
func WithVisibilityCallback(fn func(visible bool)) LatchOption {
	return func(l *Latch) {
		l.onChange = fn
	}
}

// NewLatch creates a Latch. A non-positive minVisible uses
// DefaultMinVisible.
func NewLatch(minVisible time.Duration, opts ...LatchOption) *Latch {
	if minVisible <= 0 {
		minVisible = DefaultMinVisible
	}
	l := &Latch{
		minVisible: minVisible,
		active:     make(map[string]struct{}),
		after: func(d time.Duration, fn func()) Stopper {
			return time.AfterFunc(d, fn)
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Set marks source as loading or idle.
func (l *Latch) Set(source string, loading bool) {
	l.mu.Lock()
	if loading {
		l.active[source] = struct{}{}
	} else {
		delete(l.active, source)
	}

	var notify, state bool
	switch {
	case len(l.active) > 0:
		l.cancelPendingLocked()
		if !l.visible {
			l.visible = true
			notify, state = true, true
		}
	case l.visible && l.pending == nil:
		l.gen++
		gen := l.gen
		l.pending = l.after(l.minVisible, func() { l.expire(gen) })
	}
	l.mu.Unlock()

	if notify && l.onChange != nil {
		l.onChange(state)
	}
}

// Visible reports whether the indicator is shown.
func (l *Latch) Visible() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.visible
}

func (l *Latch) expire(gen uint64) {
	l.mu.Lock()
	if gen != l.gen || len(l.active) > 0 || !l.visible {
		l.mu.Unlock()
		return
	}
	l.visible = false
	l.pending = nil
	l.mu.Unlock()

	if l.onChange != nil {
		l.onChange(false)
	}
}

func (l *Latch) cancelPendingLocked() {
	if l.pending != nil {
		l.pending.Stop()
		l.pending = nil
		l.gen++
	}
}
