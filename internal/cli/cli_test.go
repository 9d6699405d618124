package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/polysweeper/internal/minefield"
	"github.com/vancomm/polysweeper/internal/scores"
	"github.com/vancomm/polysweeper/internal/timer"
)

func TestMain(m *testing.M) {
	for _, l := range []*logrus.Logger{Log, scores.Log, minefield.Log} {
		l.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: true,
		})
	}
	m.Run()
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"", Command{Action: Nop}},
		{"A0", Command{Action: Uncover, At: minefield.At(0, 0)}},
		{"c12", Command{Action: Uncover, At: minefield.At(28, 12)}},
		{"!C2", Command{Action: Flag, At: minefield.At(2, 2)}},
		{"?B1", Command{Action: Question, At: minefield.At(1, 1)}},
		{".B1", Command{Action: Unmark, At: minefield.At(1, 1)}},
		{"help", Command{Action: Help}},
		{"H", Command{Action: Help}},
		{"restart", Command{Action: New}},
		{"s", Command{Action: ShowScores}},
		{"s5", Command{Action: Uncover, At: minefield.At(44, 5)}},
		{"quit", Command{Action: Exit}},
		{"hint", Command{Action: Hint}},
		{"clear", Command{Action: ClearScores}},
		{"CLEAR All", Command{Action: ClearAllScores}},
		{"diff medium", Command{Action: SetDifficulty, Difficulty: minefield.Intermediate}},
		{"dim 12 7", Command{Action: SetDimensions, Width: 12, Height: 7}},
		{"mines 20", Command{Action: SetMines, Mines: 20}},
		{"sq", Command{Action: SetTopology, Topology: minefield.Square}},
		{"octagonal", Command{Action: SetTopology, Topology: minefield.FlatOctagon}},
		{"topo 'triangle'", Command{Action: SetTopology, Topology: minefield.Triangle}},
		{"flag D3", Command{Action: Flag, At: minefield.At(3, 3)}},
		{"uncover A1", Command{Action: Uncover, At: minefield.At(0, 1)}},
	}
	for _, test := range tests {
		t.Run(test.line, func(t *testing.T) {
			got, err := ParseCommand(test.line)
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	for _, line := range []string{"diff nightmare", "dim 3", "mines many", "topo pentagon", "flag", "!", "?5", "hello world", `"unclosed`, "clear some"} {
		_, err := ParseCommand(line)
		assert.Error(t, err, line)
	}
	_, err := ParseCommand("?5")
	assert.ErrorIs(t, err, ErrBadLocation)
	_, err = ParseCommand("hello world")
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newBoard(t minefield.Topology, c *clock) *minefield.Board {
	cfg := minefield.Config{Topology: t, Width: 3, Height: 3, Mines: 1}
	return minefield.New(cfg,
		minefield.WithClock(c.now),
		minefield.WithPlacer(minefield.MinesAt(t, cfg.Dims(), minefield.At(2, 2))),
	)
}

func TestRender(t *testing.T) {
	c := &clock{time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	b := newBoard(minefield.Square, c)
	_, _, err := b.Create()
	require.NoError(t, err)

	b.MarkAs(minefield.At(1, 0), minefield.Flagged)
	b.MarkAs(minefield.At(2, 0), minefield.Questionable)
	b.Uncover(minefield.At(1, 1))
	c.t = c.t.Add(65 * time.Second)

	var out bytes.Buffer
	require.NoError(t, Render(&out, b))
	assert.Equal(t, "01:05 000\n ABC\n0▯⚑?\n1▯1▯\n2▯▯▯\n", out.String())
}

func TestRenderFlatOctagon(t *testing.T) {
	c := &clock{time.Now()}
	b := newBoard(minefield.FlatOctagon, c)
	_, _, err := b.Create()
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Render(&out, b))
	assert.Equal(t, "00:00 001\n ABC\n0┌┬┐\n1├┼┤\n2└┴┘\n", out.String())
}

func TestPlayable(t *testing.T) {
	assert.NoError(t, Playable(minefield.Triangle, 30, 16))
	assert.ErrorIs(t, Playable(minefield.Cylinder, 2, 2), ErrNoLayout)
	assert.ErrorIs(t, Playable(minefield.StaggeredOctagon, 30, 16), ErrNoLayout)
	assert.ErrorIs(t, Playable(minefield.Square, 0, 3), minefield.ErrInvalidConfig)
}

type script struct {
	lines   []string
	prompts []string
}

func (s *script) SetPrompt(p string) { s.prompts = append(s.prompts, p) }

func (s *script) Refresh() {}

func (s *script) Readline() (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

type memStore struct{ table *scores.Table }

func (m *memStore) Load(context.Context) (*scores.Table, error) {
	if m.table == nil {
		return nil, scores.ErrNotFound
	}
	t := scores.NewTable()
	t.Merge(m.table)
	return t, nil
}

func (m *memStore) Save(_ context.Context, t *scores.Table) error {
	m.table = scores.NewTable()
	m.table.Merge(t)
	return nil
}

func newTestGame(t *testing.T, c *clock, lines ...string) (*Game, *script, *bytes.Buffer, *memStore) {
	t.Helper()
	store := &memStore{}
	keeper, err := scores.NewKeeper(context.Background(), store, "cli")
	require.NoError(t, err)
	in := &script{lines: lines}
	var out bytes.Buffer
	g := NewGame(newBoard(minefield.Square, c), keeper, in, &out,
		WithTimerOptions(timer.WithTick(time.Hour)))
	return g, in, &out, store
}

func TestWinningRound(t *testing.T) {
	c := &clock{time.Now()}
	g, in, out, store := newTestGame(t, c, "help", "!C2", "A0", "ann", "n")

	c.t = c.t.Add(3 * time.Second)
	require.NoError(t, g.Run(context.Background()))

	assert.Contains(t, out.String(), "Commands:")
	assert.Contains(t, out.String(), "Seconds | Name")
	assert.Contains(t, out.String(), "      0 | ann")
	assert.Contains(t, in.prompts, "You got a high score! Enter your name: ")
	assert.Equal(t, "Play again (y/n)? ", in.prompts[len(in.prompts)-1])

	mode := minefield.Config{Topology: minefield.Square, Width: 3, Height: 3, Mines: 1}.Mode()
	top := store.table.Top("cli", mode, scores.DefaultTop)
	require.Len(t, top, 1)
	assert.Equal(t, "ann", top[0].Scorer)
}

func TestSavedNameIsOffered(t *testing.T) {
	c := &clock{time.Now()}
	g, in, _, store := newTestGame(t, c, "A0", "", "ann", "y", "A0", "", "n")

	require.NoError(t, g.Run(context.Background()))

	assert.Contains(t, in.prompts, "No, really, enter something: ")
	assert.Contains(t, in.prompts, "You got a high score! Enter your name [ann]: ")
	mode := minefield.Config{Topology: minefield.Square, Width: 3, Height: 3, Mines: 1}.Mode()
	assert.Equal(t, 2, store.table.Len("cli", mode))
}

func TestLosingRound(t *testing.T) {
	c := &clock{time.Now()}
	g, _, out, store := newTestGame(t, c, "C2", "n")

	require.NoError(t, g.Run(context.Background()))
	assert.Contains(t, out.String(), "2▯▯*\n")
	assert.Contains(t, out.String(), "You lose!")
	assert.Nil(t, store.table)
}

func TestCommandsOutsideTheField(t *testing.T) {
	c := &clock{time.Now()}
	g, _, out, _ := newTestGame(t, c, "Z9", "topo super", "bogus words", "dim 4 4", "exit")

	require.NoError(t, g.Run(context.Background()))
	text := out.String()
	assert.Contains(t, text, ErrBadLocation.Error())
	assert.Contains(t, text, ErrNoLayout.Error())
	assert.Contains(t, text, ErrUnknownCommand.Error())
	assert.Equal(t, 4, g.board.Config().Width)
	assert.Equal(t, 1, strings.Count(text, " ABC\n"))
}

func TestLocation(t *testing.T) {
	for _, loc := range []string{"A0", "C2", "c12", "Z9"} {
		at, err := ParseLocation(loc)
		require.NoError(t, err)
		assert.Equal(t, loc, Location(at))
	}
}

func TestHint(t *testing.T) {
	c := &clock{time.Now()}
	g, _, out, _ := newTestGame(t, c, "hint", "B1", "C1", "hint", "exit")

	require.NoError(t, g.Run(context.Background()))
	text := out.String()
	assert.Contains(t, text, "Nothing is certain, you have to guess.\n")
	assert.NotContains(t, text, "Mines:")

	var safe []string
	for _, line := range strings.Split(text, "\n") {
		if rest, ok := strings.CutPrefix(line, "Safe: "); ok {
			safe = strings.Fields(rest)
		}
	}
	assert.ElementsMatch(t, []string{"A0", "A1", "A2"}, safe)
}

func TestTopologyStartsNewField(t *testing.T) {
	c := &clock{time.Now()}
	g, _, out, _ := newTestGame(t, c, "B1", "oct", "exit")

	require.NoError(t, g.Run(context.Background()))
	text := out.String()
	assert.Contains(t, text, "0┌┬┐\n1├┼┤\n2└┴┘\n")
	assert.Equal(t, minefield.FlatOctagon, g.board.Topology())
	assert.Equal(t, 0, g.board.Uncovered())
	assert.Equal(t, g.board.Mode(), g.keeper.Mode())
}

func TestClearScores(t *testing.T) {
	square := minefield.Config{Topology: minefield.Square, Width: 3, Height: 3, Mines: 1}.Mode()
	triangle := minefield.Config{Topology: minefield.Triangle, Width: 3, Height: 3, Mines: 1}.Mode()
	filled := func() *memStore {
		table := scores.NewTable()
		table.Insert("cli", square, scores.Score{ID: 1, Scorer: "ann", Seconds: 7})
		table.Insert("cli", triangle, scores.Score{ID: 2, Scorer: "bob", Seconds: 9})
		return &memStore{table: table}
	}
	run := func(t *testing.T, store *memStore, lines ...string) string {
		keeper, err := scores.NewKeeper(context.Background(), store, "cli")
		require.NoError(t, err)
		var out bytes.Buffer
		g := NewGame(newBoard(minefield.Square, &clock{time.Now()}), keeper, &script{lines: lines}, &out,
			WithTimerOptions(timer.WithTick(time.Hour)))
		require.NoError(t, g.Run(context.Background()))
		return out.String()
	}

	t.Run("mode", func(t *testing.T) {
		store := filled()
		text := run(t, store, "clear", "exit")
		assert.Contains(t, text, "Scores cleared.\n")
		assert.Equal(t, 0, store.table.Len("cli", square))
		assert.Equal(t, 1, store.table.Len("cli", triangle))
	})

	t.Run("all", func(t *testing.T) {
		store := filled()
		text := run(t, store, "clear all", "exit")
		assert.Contains(t, text, "Scores cleared.\n")
		assert.Equal(t, 0, store.table.Len("cli", square))
		assert.Equal(t, 0, store.table.Len("cli", triangle))
	})
}

type lockedClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *lockedClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *lockedClock) add(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type promptLine struct {
	mu sync.Mutex
	p  string
}

func (l *promptLine) SetPrompt(p string) {
	l.mu.Lock()
	l.p = p
	l.mu.Unlock()
}

func (l *promptLine) Refresh() {}

func (l *promptLine) Readline() (string, error) { return "", io.EOF }

func (l *promptLine) prompt() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p
}

func TestPromptClockFollowsBoard(t *testing.T) {
	c := &lockedClock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	board := minefield.New(
		minefield.Config{Topology: minefield.Square, Width: 3, Height: 3, Mines: 1},
		minefield.WithClock(c.now),
	)
	_, _, err := board.Create()
	require.NoError(t, err)
	keeper, err := scores.NewKeeper(context.Background(), &memStore{}, "cli")
	require.NoError(t, err)
	in := &promptLine{}
	g := NewGame(board, keeper, in, io.Discard, WithTimerOptions(timer.WithTick(time.Millisecond)))

	clk := g.newClock()
	clk.Run()
	defer clk.Stop(context.Background())

	c.add(75 * time.Second)
	require.Eventually(t, func() bool {
		return in.prompt() == commandPrompt(1, 15)
	}, time.Second, time.Millisecond)
	assert.Equal(t, board.Seconds(), clk.Seconds())
}
