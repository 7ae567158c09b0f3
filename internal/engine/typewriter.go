package engine

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// Typewriter reveals a text one rune at a time on a cooperative timer.
// It is single-shot: a new text means a new Typewriter, and the old one is
// cancelled first. Each tick is a discrete, cancellable unit of work.
//
// Completion fires exactly once, either from the final tick (through the
// tick callback with done=true) or from the caller that wins Complete().
// Complete reports whether the caller won so the consumer finishes the
// reveal itself; pending ticks observe the completed flag and stay silent.
type Typewriter struct {
	text     []rune
	full     string
	interval time.Duration
	onTick   func(prefix string, done bool)

	mu    sync.Mutex
	timer *time.Timer
	pos   int

	started   atomic.Bool
	completed atomic.Bool
	cancelled atomic.Bool
}

// NewTypewriter builds a typewriter revealing text at cps characters per
// second. A non-positive speed or nil callback is caller misuse and is
// rejected at construction.
func NewTypewriter(text string, cps float64, onTick func(prefix string, done bool)) (*Typewriter, error) {
	if cps <= 0 {
		return nil, fmt.Errorf("typewriter: speed must be positive, got %v", cps)
	}
	if onTick == nil {
		return nil, fmt.Errorf("typewriter: tick callback is required")
	}
	return &Typewriter{
		text:     []rune(text),
		full:     text,
		interval: time.Duration(float64(time.Second) / cps),
		onTick:   onTick,
	}, nil
}

// Start schedules the first tick. Starting twice is rejected.
func (t *Typewriter) Start() error {
	if !t.started.CompareAndSwap(false, true) {
		return fmt.Errorf("typewriter: already started")
	}
	t.mu.Lock()
	t.timer = time.AfterFunc(t.interval, t.tick)
	t.mu.Unlock()
	return nil
}

// tick reveals one more rune and reschedules itself until the full text is
// out or the typewriter is cancelled or completed out-of-band.
func (t *Typewriter) tick() {
	if t.cancelled.Load() || t.completed.Load() {
		return
	}

	t.mu.Lock()
	// Complete and Cancel flip their flags under this lock; a tick that
	// lost the race stays silent instead of revealing past the winner.
	if t.cancelled.Load() || t.completed.Load() {
		t.mu.Unlock()
		return
	}
	if t.pos >= len(t.text) {
		t.mu.Unlock()
		if t.completed.CompareAndSwap(false, true) {
			t.onTick(t.full, true)
		}
		return
	}
	t.pos++
	prefix := string(t.text[:t.pos])
	last := t.pos >= len(t.text)
	if !last {
		t.timer = time.AfterFunc(t.interval, t.tick)
	}
	t.mu.Unlock()

	if last {
		if t.completed.CompareAndSwap(false, true) {
			t.onTick(t.full, true)
		}
		return
	}
	t.onTick(prefix, false)
}

// Complete jumps straight to the full text. It cancels pending ticks and
// returns the full text plus whether this call won completion; losing calls
// (already completed or cancelled) are no-ops, making Complete idempotent.
func (t *Typewriter) Complete() (string, bool) {
	if t.cancelled.Load() {
		return t.full, false
	}
	t.mu.Lock()
	won := t.completed.CompareAndSwap(false, true)
	if t.timer != nil {
		t.timer.Stop()
	}
	t.mu.Unlock()
	return t.full, won
}

// Cancel abandons the reveal without completing it. No callback fires after
// Cancel returns a true first call.
func (t *Typewriter) Cancel() {
	t.mu.Lock()
	t.cancelled.Store(true)
	if t.timer != nil {
		t.timer.Stop()
	}
	t.mu.Unlock()
}

// Done reports whether the full text has been revealed.
func (t *Typewriter) Done() bool {
	return t.completed.Load()
}
