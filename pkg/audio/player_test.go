package audio

import (
	"math"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock. Each Tick call gets a fresh
// channel; fire delivers a tick to the most recent loop only.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	latest chan time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *fakeClock) Tick(time.Duration) (<-chan time.Time, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latest = make(chan time.Time, 1)
	return c.latest, func() {}
}

func (c *fakeClock) fire() {
	c.mu.Lock()
	ch := c.latest
	c.mu.Unlock()
	ch <- time.Time{}
}

// tenSecondBuffer is 100 samples at 10 Hz.
func tenSecondBuffer() *Buffer {
	return &Buffer{PCM: make([]byte, 200), SampleRate: 10}
}

func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-6
}

func TestPlayWithoutBuffer(t *testing.T) {
	p := NewPlayer(newFakeClock())
	if err := p.Play(); err != ErrNoBuffer {
		t.Fatalf("expected ErrNoBuffer, got %v", err)
	}
}

func TestPauseCapturesElapsedOffset(t *testing.T) {
	clock := newFakeClock()
	p := NewPlayer(clock)
	defer p.Close()
	p.Load(tenSecondBuffer())

	if err := p.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	clock.Advance(2 * time.Second)
	p.Pause()

	if got := p.Offset(); !approx(got, 2.0) {
		t.Fatalf("offset = %v, want 2.0", got)
	}
	if p.State() != StatePaused {
		t.Fatalf("state = %s, want paused", p.State())
	}
}

func TestResumeContinuesFromOffset(t *testing.T) {
	clock := newFakeClock()
	p := NewPlayer(clock)
	defer p.Close()
	p.Load(tenSecondBuffer())

	p.Play()
	clock.Advance(2 * time.Second)
	p.Pause()

	p.Play()
	clock.Advance(3 * time.Second)
	p.Pause()

	if got := p.Offset(); !approx(got, 5.0) {
		t.Fatalf("offset after resume = %v, want 5.0", got)
	}
}

func TestOffsetLiveWhilePlaying(t *testing.T) {
	clock := newFakeClock()
	p := NewPlayer(clock)
	defer p.Close()
	p.Load(tenSecondBuffer())

	p.Play()
	clock.Advance(4 * time.Second)

	if got := p.Offset(); !approx(got, 4.0) {
		t.Fatalf("live offset = %v, want 4.0", got)
	}
	if p.State() != StatePlaying {
		t.Fatalf("state = %s, want playing", p.State())
	}
}

func TestProgressSampling(t *testing.T) {
	clock := newFakeClock()
	p := NewPlayer(clock)
	defer p.Close()
	p.Load(tenSecondBuffer())

	progress := make(chan float64, 1)
	p.OnProgress(func(pct float64) { progress <- pct })

	p.Play()
	clock.Advance(5 * time.Second)
	clock.fire()

	select {
	case pct := <-progress:
		if !approx(pct, 50.0) {
			t.Fatalf("progress = %v, want 50.0", pct)
		}
	case <-time.After(time.Second):
		t.Fatal("progress callback never fired")
	}
}

func TestNaturalEndResetsOffset(t *testing.T) {
	clock := newFakeClock()
	p := NewPlayer(clock)
	defer p.Close()
	p.Load(tenSecondBuffer())

	ended := make(chan struct{}, 1)
	p.OnEnded(func() { ended <- struct{}{} })

	p.Play()
	clock.Advance(10*time.Second + 50*time.Millisecond)
	clock.fire()

	select {
	case <-ended:
	case <-time.After(time.Second):
		t.Fatal("ended callback never fired")
	}

	if p.State() != StateEnded {
		t.Fatalf("state = %s, want ended", p.State())
	}
	if got := p.Offset(); got != 0 {
		t.Fatalf("offset after natural end = %v, want 0", got)
	}
	if got := p.Progress(); got != 0 {
		t.Fatalf("progress after natural end = %v, want 0", got)
	}

	// A fresh Play restarts from the beginning.
	p.Play()
	if got := p.Offset(); !approx(got, 0) {
		t.Fatalf("offset after replay = %v, want 0", got)
	}
	if p.State() != StatePlaying {
		t.Fatalf("state = %s, want playing", p.State())
	}
}

func TestEarlyFinishKeepsOffset(t *testing.T) {
	clock := newFakeClock()
	p := NewPlayer(clock)
	defer p.Close()
	p.Load(tenSecondBuffer())

	p.Play()
	clock.Advance(4 * time.Second)
	p.Finish()

	if p.State() != StateEnded {
		t.Fatalf("state = %s, want ended", p.State())
	}
	if got := p.Offset(); !approx(got, 4.0) {
		t.Fatalf("offset after early stop = %v, want 4.0", got)
	}
}

func TestFinishNearEndRewinds(t *testing.T) {
	clock := newFakeClock()
	p := NewPlayer(clock)
	defer p.Close()
	p.Load(tenSecondBuffer())

	p.Play()
	clock.Advance(10*time.Second - 50*time.Millisecond)
	p.Finish()

	if got := p.Offset(); got != 0 {
		t.Fatalf("offset within end epsilon = %v, want 0", got)
	}
}

func TestLoadResetsState(t *testing.T) {
	clock := newFakeClock()
	p := NewPlayer(clock)
	defer p.Close()
	p.Load(tenSecondBuffer())

	p.Play()
	clock.Advance(2 * time.Second)
	p.Pause()

	p.Load(tenSecondBuffer())

	if p.State() != StateIdle {
		t.Fatalf("state after load = %s, want idle", p.State())
	}
	if got := p.Offset(); got != 0 {
		t.Fatalf("offset after load = %v, want 0", got)
	}
}

func TestResetClearsState(t *testing.T) {
	clock := newFakeClock()
	p := NewPlayer(clock)
	defer p.Close()
	p.Load(tenSecondBuffer())

	p.Play()
	clock.Advance(7 * time.Second)
	p.Reset()

	if p.State() != StateIdle {
		t.Fatalf("state = %s, want idle", p.State())
	}
	if p.Offset() != 0 || p.Progress() != 0 {
		t.Fatalf("offset/progress not cleared: %v / %v", p.Offset(), p.Progress())
	}
}

func TestPlayWhilePlayingCarriesElapsed(t *testing.T) {
	clock := newFakeClock()
	p := NewPlayer(clock)
	defer p.Close()
	p.Load(tenSecondBuffer())

	p.Play()
	clock.Advance(3 * time.Second)
	p.Play()

	if got := p.Offset(); !approx(got, 3.0) {
		t.Fatalf("offset after re-play = %v, want 3.0", got)
	}
	if p.State() != StatePlaying {
		t.Fatalf("state = %s, want playing", p.State())
	}
}

func TestPauseWhenNotPlayingIsNoOp(t *testing.T) {
	p := NewPlayer(newFakeClock())
	p.Load(tenSecondBuffer())
	p.Pause()
	if p.State() != StateIdle {
		t.Fatalf("state = %s, want idle", p.State())
	}
}
