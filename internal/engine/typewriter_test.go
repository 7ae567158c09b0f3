package engine

import (
	"strings"
	"sync"
	"testing"
	"time"
)

// collector gathers ticks behind a mutex; callbacks run on timer goroutines.
type collector struct {
	mu       sync.Mutex
	prefixes []string
	dones    int
	done     chan struct{}
}

func newCollector() *collector {
	return &collector{done: make(chan struct{})}
}

func (c *collector) tick(prefix string, done bool) {
	c.mu.Lock()
	c.prefixes = append(c.prefixes, prefix)
	if done {
		c.dones++
		if c.dones == 1 {
			close(c.done)
		}
	}
	c.mu.Unlock()
}

func (c *collector) wait(t *testing.T) {
	t.Helper()
	select {
	case <-c.done:
	case <-time.After(5 * time.Second):
		t.Fatal("typewriter never completed")
	}
}

func TestNewTypewriterRejectsBadInput(t *testing.T) {
	if _, err := NewTypewriter("hi", 0, func(string, bool) {}); err == nil {
		t.Error("zero speed accepted")
	}
	if _, err := NewTypewriter("hi", -3, func(string, bool) {}); err == nil {
		t.Error("negative speed accepted")
	}
	if _, err := NewTypewriter("hi", 10, nil); err == nil {
		t.Error("nil callback accepted")
	}
}

func TestTypewriterRevealsMonotonicPrefixes(t *testing.T) {
	const text = "héllo, 旅人!" // multi-byte runes must never split
	c := newCollector()
	tw, err := NewTypewriter(text, 2000, c.tick)
	if err != nil {
		t.Fatal(err)
	}
	if err := tw.Start(); err != nil {
		t.Fatal(err)
	}
	c.wait(t)

	c.mu.Lock()
	defer c.mu.Unlock()
	prev := ""
	for _, p := range c.prefixes {
		if !strings.HasPrefix(text, p) {
			t.Fatalf("tick %q is not a prefix of %q", p, text)
		}
		if len(p) < len(prev) {
			t.Fatalf("reveal went backwards: %q after %q", p, prev)
		}
		prev = p
	}
	if last := c.prefixes[len(c.prefixes)-1]; last != text {
		t.Errorf("final tick = %q, want full text", last)
	}
	if c.dones != 1 {
		t.Errorf("done fired %d times", c.dones)
	}
	if !tw.Done() {
		t.Error("Done() = false after completion")
	}
}

func TestTypewriterStartTwice(t *testing.T) {
	tw, _ := NewTypewriter("ab", 1000, func(string, bool) {})
	if err := tw.Start(); err != nil {
		t.Fatal(err)
	}
	if err := tw.Start(); err == nil {
		t.Error("second start accepted")
	}
	tw.Cancel()
}

func TestCompleteWinsOverTicks(t *testing.T) {
	// With one character per second the first tick is far away; Complete
	// must win and report so.
	tw, _ := NewTypewriter("slow reveal", 1, func(string, bool) {})
	if err := tw.Start(); err != nil {
		t.Fatal(err)
	}
	full, won := tw.Complete()
	if full != "slow reveal" || !won {
		t.Fatalf("Complete = (%q, %v), want full text and won", full, won)
	}

	// Idempotent: the second call loses.
	if _, won := tw.Complete(); won {
		t.Error("second Complete also won")
	}
	if !tw.Done() {
		t.Error("Done() = false after Complete")
	}
}

func TestNoTicksAfterCancel(t *testing.T) {
	c := newCollector()
	tw, _ := NewTypewriter("abcdef", 1000, c.tick)
	if err := tw.Start(); err != nil {
		t.Fatal(err)
	}
	tw.Cancel()
	time.Sleep(20 * time.Millisecond)

	c.mu.Lock()
	n := len(c.prefixes)
	c.mu.Unlock()
	time.Sleep(20 * time.Millisecond)
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.prefixes) != n {
		t.Errorf("ticks kept firing after cancel: %d -> %d", n, len(c.prefixes))
	}
	if c.dones != 0 {
		t.Error("cancelled typewriter reported completion")
	}
}

func TestCompleteAfterCancelLoses(t *testing.T) {
	tw, _ := NewTypewriter("abc", 100, func(string, bool) {})
	_ = tw.Start()
	tw.Cancel()
	if _, won := tw.Complete(); won {
		t.Error("Complete won on a cancelled typewriter")
	}
}

func TestEmptyTextCompletesImmediately(t *testing.T) {
	c := newCollector()
	tw, err := NewTypewriter("", 1000, c.tick)
	if err != nil {
		t.Fatal(err)
	}
	if err := tw.Start(); err != nil {
		t.Fatal(err)
	}
	c.wait(t)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dones != 1 {
		t.Errorf("done fired %d times", c.dones)
	}
	if last := c.prefixes[len(c.prefixes)-1]; last != "" {
		t.Errorf("final tick = %q for empty text", last)
	}
}

func TestCompleteRacingTicksStaysOrdered(t *testing.T) {
	// Complete races a fast tick chain; the stream must stay a growing
	// prefix sequence with at most one done delivery.
	const text = "the ferry horn sounds twice over the water"
	for i := 0; i < 40; i++ {
		var mu sync.Mutex
		var prev string
		var dones int
		tw, err := NewTypewriter(text, 100000, func(prefix string, done bool) {
			mu.Lock()
			defer mu.Unlock()
			if done {
				dones++
				return
			}
			if !strings.HasPrefix(prefix, prev) {
				t.Errorf("prefix %q does not extend %q", prefix, prev)
			}
			prev = prefix
		})
		if err != nil {
			t.Fatalf("NewTypewriter: %v", err)
		}
		if err := tw.Start(); err != nil {
			t.Fatalf("Start: %v", err)
		}
		full, _ := tw.Complete()
		if full != text {
			t.Fatalf("full = %q", full)
		}
		if !tw.Done() {
			t.Error("Done() = false after Complete")
		}
		time.Sleep(time.Millisecond)
		mu.Lock()
		if dones > 1 {
			t.Fatalf("done delivered %d times", dones)
		}
		mu.Unlock()
	}
}
