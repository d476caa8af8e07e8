package audio

import (
	"errors"
	"sync"
	"time"
)

// State names a playback phase.
type State string

const (
	StateIdle    State = "idle"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
	StateEnded   State = "ended"
)

const (
	// progressInterval is the sampling period of the progress loop.
	progressInterval = 100 * time.Millisecond

	// endEpsilonSeconds distinguishes a natural end of audio from an early
	// stop. Only playback that ran to within this margin of the full
	// duration rewinds the stored offset.
	endEpsilonSeconds = 0.1
)

// ErrNoBuffer is returned by Play when no audio has been loaded.
var ErrNoBuffer = errors.New("no audio buffer loaded")

// Clock abstracts wall time and tick scheduling so playback math is testable
// without real timers.
type Clock interface {
	Now() time.Time
	// Tick returns a channel delivering periodic ticks and a stop function
	// releasing the underlying timer.
	Tick(interval time.Duration) (<-chan time.Time, func())
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Tick(interval time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(interval)
	return t.C, t.Stop
}

// Player schedules a decoded buffer against a clock with pause/resume offset
// tracking. A single progress loop samples elapsed time while playing; a new
// Play always cancels the previous loop before starting its own.
type Player struct {
	mu     sync.Mutex
	clock  Clock
	buffer *Buffer

	state    State
	offset   float64 // seconds into the buffer while paused
	progress float64 // percent, clamped to [0,100]
	startRef time.Time

	cancel chan struct{}

	onProgress func(percent float64)
	onEnded    func()
}

// NewPlayer creates an idle player. A nil clock means wall time.
func NewPlayer(clock Clock) *Player {
	if clock == nil {
		clock = realClock{}
	}
	return &Player{clock: clock, state: StateIdle}
}

// OnProgress registers a callback fired from the progress loop with the
// current percentage. Pass nil to unregister.
func (p *Player) OnProgress(fn func(percent float64)) {
	p.mu.Lock()
	p.onProgress = fn
	p.mu.Unlock()
}

// OnEnded registers a callback fired when playback reaches the end of the
// buffer.
func (p *Player) OnEnded(fn func()) {
	p.mu.Lock()
	p.onEnded = fn
	p.mu.Unlock()
}

// Load swaps in a new buffer. Any active playback stops and all position
// state is cleared, so buffers never resume each other's offsets.
func (p *Player) Load(buffer *Buffer) {
	p.mu.Lock()
	p.stopLoopLocked()
	p.buffer = buffer
	p.state = StateIdle
	p.offset = 0
	p.progress = 0
	p.mu.Unlock()
}

// Play starts or resumes playback from the stored offset. An offset at or
// past the end rewinds to the beginning first.
func (p *Player) Play() error {
	p.mu.Lock()

	if p.buffer == nil {
		p.mu.Unlock()
		return ErrNoBuffer
	}

	// A live loop from an earlier Play must not survive this call.
	if p.state == StatePlaying {
		p.offset = p.elapsedLocked()
	}
	p.stopLoopLocked()

	if p.offset >= p.buffer.Duration() {
		p.offset = 0
		p.progress = 0
	}

	p.startRef = p.clock.Now().Add(-time.Duration(p.offset * float64(time.Second)))
	p.state = StatePlaying

	cancel := make(chan struct{})
	p.cancel = cancel
	ticks, stop := p.clock.Tick(progressInterval)
	p.mu.Unlock()

	go p.loop(cancel, ticks, stop)
	return nil
}

// Pause freezes playback, capturing the elapsed offset for a later resume.
// Calling it in any state but playing is a no-op.
func (p *Player) Pause() {
	p.mu.Lock()
	if p.state != StatePlaying {
		p.mu.Unlock()
		return
	}
	p.offset = p.elapsedLocked()
	p.stopLoopLocked()
	p.state = StatePaused
	p.mu.Unlock()
}

// Finish records that the underlying audio source completed on its own.
// Completion within the end epsilon of the full duration rewinds the offset
// so the next Play restarts from the beginning; an early stop keeps the
// elapsed offset instead of reporting a false 100%.
func (p *Player) Finish() {
	p.mu.Lock()
	if p.state != StatePlaying {
		p.mu.Unlock()
		return
	}
	elapsed := p.elapsedLocked()
	p.stopLoopLocked()
	p.state = StateEnded
	if p.buffer.Duration()-elapsed < endEpsilonSeconds {
		p.offset = 0
		p.progress = 0
	} else {
		p.offset = elapsed
	}
	onEnded := p.onEnded
	p.mu.Unlock()

	if onEnded != nil {
		onEnded()
	}
}

// Reset stops playback and clears all position state.
func (p *Player) Reset() {
	p.mu.Lock()
	p.stopLoopLocked()
	p.state = StateIdle
	p.offset = 0
	p.progress = 0
	p.mu.Unlock()
}

// Close tears the player down. No timers or loops remain after it returns.
func (p *Player) Close() {
	p.Reset()
}

// State reports the current playback phase.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Offset reports the position in seconds: live elapsed time while playing,
// the stored pause offset otherwise.
func (p *Player) Offset() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StatePlaying {
		return p.elapsedLocked()
	}
	return p.offset
}

// Progress reports the last sampled percentage in [0,100].
func (p *Player) Progress() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.progress
}

func (p *Player) elapsedLocked() float64 {
	elapsed := p.clock.Now().Sub(p.startRef).Seconds()
	if d := p.buffer.Duration(); elapsed > d {
		return d
	}
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

func (p *Player) stopLoopLocked() {
	if p.cancel != nil {
		close(p.cancel)
		p.cancel = nil
	}
}

func (p *Player) loop(cancel chan struct{}, ticks <-chan time.Time, stop func()) {
	defer stop()
	for {
		select {
		case <-cancel:
			return
		case <-ticks:
			if !p.step(cancel) {
				return
			}
		}
	}
}

// step samples elapsed time once. It returns false when the loop should
// terminate because playback left the playing state or reached the end.
func (p *Player) step(cancel chan struct{}) bool {
	p.mu.Lock()

	if p.state != StatePlaying || p.cancel != cancel {
		p.mu.Unlock()
		return false
	}

	elapsed := p.clock.Now().Sub(p.startRef).Seconds()
	duration := p.buffer.Duration()

	percent := 0.0
	if duration > 0 {
		percent = elapsed / duration * 100
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	p.progress = percent
	onProgress := p.onProgress

	ended := elapsed >= duration
	var onEnded func()
	if ended {
		p.state = StateEnded
		if p.cancel == cancel {
			p.cancel = nil
		}
		if duration-elapsed < endEpsilonSeconds {
			p.offset = 0
			p.progress = 0
		} else {
			p.offset = elapsed
		}
		onEnded = p.onEnded
	}
	p.mu.Unlock()

	if onProgress != nil {
		onProgress(percent)
	}
	if onEnded != nil {
		onEnded()
	}
	return !ended
}
