// Package timer calls back once per elapsed second while a game clock runs.
package timer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

const DefaultTick = 100 * time.Millisecond

type Direction uint8

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Down {
		return "down"
	}
	return "up"
}

// Callback receives the clock reading split into minutes and seconds.
type Callback func(mins, secs int)

type Option func(*Timer)

// CountDown makes the timer start at from seconds and count towards zero.
func CountDown(from int) Option {
	return func(t *Timer) {
		t.dir = Down
		t.from, t.seconds = from, from
	}
}

// StartAt sets the initial reading without changing the direction.
func StartAt(seconds int) Option {
	return func(t *Timer) { t.from, t.seconds = seconds, seconds }
}

func WithTick(d time.Duration) Option {
	return func(t *Timer) { t.tick = d }
}

// WithClock replaces the wall clock the timer measures elapsed time with.
func WithClock(now func() time.Time) Option {
	return func(t *Timer) { t.now = now }
}

// Source is an outside clock read in whole seconds. *minefield.Board is one.
type Source interface {
	Seconds() int
}

// FromSource makes the timer measure elapsed time on s instead of the wall
// clock, so its reading moves with s.
func FromSource(s Source) Option {
	return func(t *Timer) { t.source = s }
}

type Timer struct {
	mu       sync.Mutex
	callback Callback
	dir      Direction
	from     int
	seconds  int
	running  bool
	last     time.Time
	source   Source
	lastRead int

	tick time.Duration
	now  func() time.Time

	loop sync.Once
	stop sync.Once
	quit chan struct{}
	done chan struct{}
}

func New(callback Callback, opts ...Option) *Timer {
	t := &Timer{
		callback: callback,
		tick:     DefaultTick,
		now:      time.Now,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Run starts or resumes the clock. The first call starts the goroutine that
// polls the clock every tick.
func (t *Timer) Run() {
	t.mu.Lock()
	if !t.running {
		t.mark()
		t.running = true
	}
	t.mu.Unlock()

	t.loop.Do(func() { go t.poll() })
}

func (t *Timer) Resume() { t.Run() }

func (t *Timer) Pause() {
	t.mu.Lock()
	t.running = false
	t.mu.Unlock()
}

// Reset puts the reading back to where the timer started.
func (t *Timer) Reset() {
	t.ResetTo(t.from)
}

// ResetTo sets the reading and starts the next second from now.
func (t *Timer) ResetTo(seconds int) {
	t.mu.Lock()
	t.seconds = seconds
	t.mark()
	t.mu.Unlock()
}

// mark remembers where the current second started. Callers hold t.mu.
func (t *Timer) mark() {
	if t.source != nil {
		t.lastRead = t.source.Seconds()
		return
	}
	t.last = t.now()
}

// elapsed returns the whole seconds since mark. Callers hold t.mu.
func (t *Timer) elapsed() int {
	if t.source != nil {
		return t.source.Seconds() - t.lastRead
	}
	return int(t.now().Sub(t.last) / time.Second)
}

func (t *Timer) consume(elapsed int) {
	if t.source != nil {
		t.lastRead += elapsed
		return
	}
	t.last = t.last.Add(time.Duration(elapsed) * time.Second)
}

func (t *Timer) Flip() {
	t.mu.Lock()
	if t.dir == Up {
		t.dir = Down
	} else {
		t.dir = Up
	}
	t.mu.Unlock()
}

func (t *Timer) Up() {
	t.mu.Lock()
	t.dir = Up
	t.mu.Unlock()
}

func (t *Timer) Down() {
	t.mu.Lock()
	t.dir = Down
	t.mu.Unlock()
}

func (t *Timer) Direction() Direction {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dir
}

func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *Timer) Seconds() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seconds
}

// Stop ends the polling goroutine. A stopped timer cannot be run again.
func (t *Timer) Stop(ctx context.Context) error {
	t.Pause()
	t.stop.Do(func() { close(t.quit) })
	t.loop.Do(func() { close(t.done) })
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Timer) poll() {
	defer close(t.done)
	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()
	for {
		select {
		case <-t.quit:
			return
		case <-ticker.C:
			t.advance()
		}
	}
}

// advance moves the reading by every whole second elapsed since the last
// callback and reports the new reading.
func (t *Timer) advance() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	elapsed := t.elapsed()
	if elapsed < 0 {
		// the source was restarted under us
		t.mark()
		t.mu.Unlock()
		return
	}
	if elapsed < 1 {
		t.mu.Unlock()
		return
	}
	if elapsed > 1 {
		Log.WithField("missed", elapsed-1).Warn("timer missed callbacks")
	}
	t.consume(elapsed)
	if t.dir == Up {
		t.seconds += elapsed
	} else {
		t.seconds -= elapsed
		if t.seconds <= 0 {
			t.seconds = 0
			t.running = false
		}
	}
	mins, secs := t.seconds/60, t.seconds%60
	t.mu.Unlock()

	t.fire(mins, secs)
}

func (t *Timer) fire(mins, secs int) {
	if t.callback == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			Log.WithField("panic", r).Error("timer callback failed")
		}
	}()
	t.callback(mins, secs)
}
