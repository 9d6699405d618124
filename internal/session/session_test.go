package session

import (
	"encoding/json"
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

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestManager(c *clock, opts ...Option) *Manager {
	cfg := minefield.Config{Topology: minefield.Square, Width: 3, Height: 3, Mines: 1}
	placer := minefield.MinesAt(cfg.Topology, cfg.Dims(), minefield.At(2, 2))
	opts = append([]Option{
		WithClock(c.now),
		WithBoardOptions(minefield.WithPlacer(placer)),
	}, opts...)
	return NewManager(opts...)
}

var small = minefield.Config{Topology: minefield.Square, Width: 3, Height: 3, Mines: 1}

func TestWinningGame(t *testing.T) {
	c := &clock{time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	m := newTestManager(c)

	g, err := m.Create(small, nil)
	require.NoError(t, err)
	assert.Len(t, g.ID(), 22)

	got, err := m.Get(g.ID())
	require.NoError(t, err)
	assert.Same(t, g, got)

	res, err := g.Apply(Move{Kind: Flag, At: minefield.At(2, 2)})
	require.NoError(t, err)
	assert.True(t, res.Changed)

	c.t = c.t.Add(42 * time.Second)
	res, err = g.Apply(Move{Kind: Uncover, At: minefield.At(0, 0)})
	require.NoError(t, err)
	assert.Len(t, res.Uncovered, 8)
	assert.Equal(t, Won, res.Status)

	c.t = c.t.Add(time.Hour)
	assert.Equal(t, 42, g.Seconds())

	_, err = g.Apply(Move{Kind: Uncover, At: minefield.At(2, 2)})
	assert.ErrorIs(t, err, ErrGameOver)

	snap := g.Snapshot()
	assert.Equal(t, Won, snap.Status)
	assert.Equal(t, 0, snap.MinesRemaining)
	require.NotNil(t, snap.EndedAt)
	assert.Len(t, snap.Cells, 9)
}

func TestLosingGame(t *testing.T) {
	c := &clock{time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	m := newTestManager(c)
	g, err := m.Create(small, nil)
	require.NoError(t, err)

	res, err := g.Apply(Move{Kind: Uncover, At: minefield.At(2, 2)})
	require.NoError(t, err)
	assert.Equal(t, Lost, res.Status)
	assert.Equal(t, []minefield.Coord{minefield.At(2, 2)}, res.Uncovered)

	snap := g.Snapshot()
	for _, cell := range snap.Cells {
		if cell.Coord == minefield.At(2, 2) {
			assert.Equal(t, minefield.TokenMine, cell.Token)
		} else {
			assert.Equal(t, minefield.TokenCovered, cell.Token)
		}
	}
}

func TestMarks(t *testing.T) {
	c := &clock{time.Now()}
	g, err := newTestManager(c).Create(small, nil)
	require.NoError(t, err)
	at := minefield.At(1, 1)

	tests := []struct {
		kind    MoveKind
		changed bool
		state   minefield.State
	}{
		{Question, true, minefield.Questionable},
		{Question, false, minefield.Questionable},
		{Flag, true, minefield.Flagged},
		{Unmark, true, minefield.Covered},
		{Cycle, true, minefield.Flagged},
		{Cycle, true, minefield.Questionable},
		{Cycle, true, minefield.Covered},
	}
	for _, test := range tests {
		res, err := g.Apply(Move{Kind: test.kind, At: at})
		require.NoError(t, err)
		assert.Equal(t, test.changed, res.Changed, test.kind.String())
		assert.Equal(t, test.state, g.board.State(at), test.kind.String())
	}

	_, err = g.Apply(Move{Kind: Uncover, At: minefield.At(7, 7)})
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = g.Apply(Move{Kind: MoveKind(42), At: at})
	assert.ErrorIs(t, err, ErrUnknownMove)
}

func TestForfeit(t *testing.T) {
	c := &clock{time.Now()}
	g, err := newTestManager(c).Create(small, nil)
	require.NoError(t, err)

	res := g.Forfeit()
	assert.Equal(t, Forfeited, res.Status)
	assert.Equal(t, []minefield.Coord{minefield.At(2, 2)}, res.Uncovered)

	res = g.Forfeit()
	assert.False(t, res.Changed)
	assert.Equal(t, Forfeited, g.Status())
}

func TestManagerLimitAndSweep(t *testing.T) {
	c := &clock{time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	m := newTestManager(c, WithLimit(2), WithTTL(time.Minute))

	a, err := m.Create(small, nil)
	require.NoError(t, err)
	_, err = m.Create(small, nil)
	require.NoError(t, err)
	_, err = m.Create(small, nil)
	assert.ErrorIs(t, err, ErrTooMany)

	c.t = c.t.Add(50 * time.Second)
	_, err = a.Apply(Move{Kind: Cycle, At: minefield.At(0, 0)})
	require.NoError(t, err)

	c.t = c.t.Add(30 * time.Second)
	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 1, m.Len())
	_, err = m.Get(a.ID())
	assert.NoError(t, err)

	m.Delete(a.ID())
	_, err = m.Get(a.ID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateRejectsBadField(t *testing.T) {
	m := NewManager()
	_, err := m.Create(minefield.Config{Topology: minefield.Hexagon, Width: 2, Height: 2, Mines: 9}, nil)
	assert.ErrorIs(t, err, minefield.ErrInvalidConfig)
	assert.Equal(t, 0, m.Len())
}

func TestSnapshotJSON(t *testing.T) {
	c := &clock{time.Now()}
	g, err := newTestManager(c).Create(small, nil)
	require.NoError(t, err)

	b, err := json.Marshal(g.Snapshot())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "square", decoded["topology"])
	assert.Equal(t, "playing", decoded["status"])
	assert.NotContains(t, decoded, "ended_at")

	cells := decoded["cells"].([]any)
	require.Len(t, cells, 9)
	assert.Equal(t, map[string]any{"x": 0.0, "y": 0.0, "token": -2.0}, cells[0])
}

func TestParseMoveKind(t *testing.T) {
	for _, k := range []MoveKind{Uncover, Flag, Question, Unmark, Cycle} {
		parsed, err := ParseMoveKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	parsed, err := ParseMoveKind("o")
	require.NoError(t, err)
	assert.Equal(t, Uncover, parsed)

	_, err = ParseMoveKind("chord")
	assert.ErrorIs(t, err, ErrUnknownMove)
}

func TestHint(t *testing.T) {
	c := &clock{time.Now()}
	g, err := newTestManager(c).Create(small, nil)
	require.NoError(t, err)

	hint, err := g.Hint()
	require.NoError(t, err)
	assert.True(t, hint.Empty())

	for _, at := range []minefield.Coord{minefield.At(1, 1), minefield.At(2, 1)} {
		_, err := g.Apply(Move{Kind: Uncover, At: at})
		require.NoError(t, err)
	}
	hint, err = g.Hint()
	require.NoError(t, err)
	assert.ElementsMatch(t, []minefield.Coord{
		minefield.At(0, 0), minefield.At(0, 1), minefield.At(0, 2),
	}, hint.Safe)
	assert.Empty(t, hint.Mines)

	res, err := g.Apply(Move{Kind: Uncover, At: minefield.At(0, 0)})
	require.NoError(t, err)
	require.Equal(t, Won, res.Status)
	_, err = g.Hint()
	assert.ErrorIs(t, err, ErrGameOver)
}
