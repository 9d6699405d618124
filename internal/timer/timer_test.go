package timer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/polysweeper/internal/minefield"
)

func TestMain(m *testing.M) {
	Log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	m.Run()
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type reading struct{ mins, secs int }

func recorder() (Callback, func() []reading) {
	var mu sync.Mutex
	var got []reading
	return func(mins, secs int) {
			mu.Lock()
			got = append(got, reading{mins, secs})
			mu.Unlock()
		}, func() []reading {
			mu.Lock()
			defer mu.Unlock()
			return append([]reading(nil), got...)
		}
}

func TestCountUp(t *testing.T) {
	clock := newFakeClock()
	cb, got := recorder()
	tm := New(cb, WithClock(clock.Now), StartAt(58))

	tm.mu.Lock()
	tm.running, tm.last = true, clock.Now()
	tm.mu.Unlock()

	clock.Advance(900 * time.Millisecond)
	tm.advance()
	assert.Empty(t, got())

	clock.Advance(200 * time.Millisecond)
	tm.advance()
	clock.Advance(time.Second)
	tm.advance()

	assert.Equal(t, []reading{{0, 59}, {1, 0}}, got())
	assert.Equal(t, 60, tm.Seconds())
}

func TestMissedSecondsAreCaughtUp(t *testing.T) {
	clock := newFakeClock()
	cb, got := recorder()
	tm := New(cb, WithClock(clock.Now))
	tm.mu.Lock()
	tm.running, tm.last = true, clock.Now()
	tm.mu.Unlock()

	clock.Advance(3500 * time.Millisecond)
	tm.advance()
	assert.Equal(t, []reading{{0, 3}}, got())

	clock.Advance(500 * time.Millisecond)
	tm.advance()
	assert.Equal(t, []reading{{0, 3}, {0, 4}}, got())
}

func TestCountDownStopsAtZero(t *testing.T) {
	clock := newFakeClock()
	cb, got := recorder()
	tm := New(cb, WithClock(clock.Now), CountDown(2))
	assert.Equal(t, Down, tm.Direction())
	tm.mu.Lock()
	tm.running, tm.last = true, clock.Now()
	tm.mu.Unlock()

	clock.Advance(5 * time.Second)
	tm.advance()
	assert.Equal(t, 0, tm.Seconds())
	assert.False(t, tm.Running())
	assert.Equal(t, []reading{{0, 0}}, got())

	clock.Advance(time.Second)
	tm.advance()
	assert.Len(t, got(), 1)

	tm.Reset()
	assert.Equal(t, 2, tm.Seconds())
}

func TestPausedTimerDoesNotAdvance(t *testing.T) {
	clock := newFakeClock()
	tm := New(nil, WithClock(clock.Now))

	clock.Advance(10 * time.Second)
	tm.advance()
	assert.Equal(t, 0, tm.Seconds())
}

func TestDirection(t *testing.T) {
	tm := New(nil)
	assert.Equal(t, Up, tm.Direction())
	tm.Flip()
	assert.Equal(t, Down, tm.Direction())
	tm.Flip()
	assert.Equal(t, Up, tm.Direction())
	tm.Down()
	assert.Equal(t, Down, tm.Direction())
	tm.Up()
	assert.Equal(t, Up, tm.Direction())

	tm.ResetTo(42)
	assert.Equal(t, 42, tm.Seconds())
}

func TestCallbackPanicIsRecovered(t *testing.T) {
	clock := newFakeClock()
	tm := New(func(int, int) { panic("boom") }, WithClock(clock.Now))
	tm.mu.Lock()
	tm.running, tm.last = true, clock.Now()
	tm.mu.Unlock()

	clock.Advance(time.Second)
	assert.NotPanics(t, tm.advance)
	assert.Equal(t, 1, tm.Seconds())
}

func TestRunAndStop(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping timer loop in short mode")
	}

	clock := newFakeClock()
	ticks := make(chan reading, 16)
	tm := New(func(mins, secs int) {
		select {
		case ticks <- reading{mins, secs}:
		default:
		}
	}, WithClock(clock.Now), WithTick(time.Millisecond))

	tm.Run()
	require.True(t, tm.Running())
	clock.Advance(time.Second)

	select {
	case r := <-ticks:
		assert.Equal(t, reading{0, 1}, r)
	case <-time.After(2 * time.Second):
		t.Fatal("no callback")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, tm.Stop(ctx))
	assert.False(t, tm.Running())
	require.NoError(t, tm.Stop(ctx))
}

func TestStopWithoutRun(t *testing.T) {
	tm := New(nil)
	require.NoError(t, tm.Stop(context.Background()))
}

type counter struct {
	mu sync.Mutex
	n  int
}

func (c *counter) Seconds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func (c *counter) set(n int) {
	c.mu.Lock()
	c.n = n
	c.mu.Unlock()
}

func TestFromSource(t *testing.T) {
	src := &counter{}
	cb, got := recorder()
	tm := New(cb, FromSource(src))
	tm.mu.Lock()
	tm.running = true
	tm.mark()
	tm.mu.Unlock()

	src.set(1)
	tm.advance()
	src.set(3)
	tm.advance()
	assert.Equal(t, []reading{{0, 1}, {0, 3}}, got())

	// the source restarts along with the reading
	src.set(0)
	tm.ResetTo(0)
	tm.advance()
	src.set(1)
	tm.advance()

	// restarted without a reset: the reading keeps going from here
	src.set(0)
	tm.advance()
	src.set(2)
	tm.advance()

	assert.Equal(t, []reading{{0, 1}, {0, 3}, {0, 1}, {0, 3}}, got())
	assert.Equal(t, 3, tm.Seconds())
}

func TestFollowsBoardAcrossNewGames(t *testing.T) {
	clock := newFakeClock()
	board := minefield.New(
		minefield.Config{Topology: minefield.Square, Width: 3, Height: 3, Mines: 1},
		minefield.WithClock(clock.Now),
	)
	_, _, err := board.Create()
	require.NoError(t, err)

	cb, got := recorder()
	tm := New(cb, FromSource(board))
	tm.mu.Lock()
	tm.running = true
	tm.mark()
	tm.mu.Unlock()

	clock.Advance(2500 * time.Millisecond)
	tm.advance()
	assert.Equal(t, board.Seconds(), tm.Seconds())

	// a second is under way on the old field when the new one starts
	_, _, err = board.Create()
	require.NoError(t, err)
	tm.ResetTo(0)

	clock.Advance(600 * time.Millisecond)
	tm.advance()
	assert.Equal(t, 0, tm.Seconds())

	clock.Advance(400 * time.Millisecond)
	tm.advance()
	assert.Equal(t, 1, board.Seconds())
	assert.Equal(t, []reading{{0, 2}, {0, 1}}, got())
}
