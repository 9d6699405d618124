// Package cli is the terminal front end: command parsing, field rendering
// and the interactive game loop.
package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/vancomm/polysweeper/internal/minefield"
)

// Columns names the display columns in coordinates typed by the player.
const Columns = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadLocation    = errors.New("bad cell location")
)

type Action uint8

const (
	Nop Action = iota
	Help
	New
	ShowScores
	Exit
	SetDifficulty
	SetDimensions
	SetMines
	SetTopology
	Uncover
	Flag
	Question
	Unmark
	Hint
	ClearScores
	ClearAllScores
)

type Command struct {
	Action     Action
	At         minefield.Coord
	Difficulty minefield.Difficulty
	Width      int
	Height     int
	Mines      int
	Topology   minefield.Topology
}

// ParseLocation reads a column letter followed by a row number, like "C12".
func ParseLocation(s string) (minefield.Coord, error) {
	if s == "" {
		return minefield.Coord{}, fmt.Errorf("%w: empty", ErrBadLocation)
	}
	x := strings.IndexByte(Columns, s[0])
	if x < 0 {
		return minefield.Coord{}, fmt.Errorf("%w: no column %q", ErrBadLocation, s[:1])
	}
	y, err := strconv.Atoi(s[1:])
	if err != nil || y < 0 {
		return minefield.Coord{}, fmt.Errorf("%w: no row %q", ErrBadLocation, s[1:])
	}
	return minefield.At(x, y), nil
}

// Location is the inverse of ParseLocation.
func Location(c minefield.Coord) string {
	x, y := c.XY()
	if x < 0 || x >= len(Columns) {
		return c.String()
	}
	return Columns[x:x+1] + strconv.Itoa(y)
}

func located(a Action, s string) (Command, error) {
	at, err := ParseLocation(s)
	if err != nil {
		return Command{}, err
	}
	return Command{Action: a, At: at}, nil
}

func intArgs(args []string, n int) ([]int, error) {
	if len(args) < n {
		return nil, fmt.Errorf("want %d numbers, got %d", n, len(args))
	}
	out := make([]int, n)
	for i := range out {
		v, err := strconv.Atoi(args[i])
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", args[i])
		}
		out[i] = v
	}
	return out, nil
}

// ParseCommand turns one input line into a command. Cell commands are the
// location alone to uncover, or the location prefixed with "!" to flag, "?"
// to question or "." to unmark.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{Action: Nop}, nil
	}
	switch line[0] {
	case '!':
		return located(Flag, line[1:])
	case '?':
		return located(Question, line[1:])
	case '.':
		return located(Unmark, line[1:])
	}

	words, err := shellquote.Split(line)
	if err != nil {
		return Command{}, err
	}
	if len(words) == 0 {
		return Command{Action: Nop}, nil
	}
	cmd, args := strings.ToLower(words[0]), words[1:]
	arg := func() string {
		if len(args) == 0 {
			return ""
		}
		return args[0]
	}

	switch cmd {
	case "h", "help":
		return Command{Action: Help}, nil
	case "new", "reset", "restart":
		return Command{Action: New}, nil
	case "s", "score", "scores":
		return Command{Action: ShowScores}, nil
	case "exit", "quit":
		return Command{Action: Exit}, nil
	case "hint":
		return Command{Action: Hint}, nil
	case "clear":
		switch strings.ToLower(arg()) {
		case "":
			return Command{Action: ClearScores}, nil
		case "all":
			return Command{Action: ClearAllScores}, nil
		}
		return Command{}, fmt.Errorf("%w: clear %q", ErrUnknownCommand, arg())
	case "dif", "diff", "difficulty":
		d, err := minefield.ParseDifficulty(arg())
		if err != nil {
			return Command{}, err
		}
		return Command{Action: SetDifficulty, Difficulty: d}, nil
	case "dim", "dims", "dimensions":
		n, err := intArgs(args, 2)
		if err != nil {
			return Command{}, err
		}
		return Command{Action: SetDimensions, Width: n[0], Height: n[1]}, nil
	case "mine", "mines":
		n, err := intArgs(args, 1)
		if err != nil {
			return Command{}, err
		}
		return Command{Action: SetMines, Mines: n[0]}, nil
	case "sq", "square":
		return Command{Action: SetTopology, Topology: minefield.Square}, nil
	case "oct", "octagon", "octagonal":
		return Command{Action: SetTopology, Topology: minefield.FlatOctagon}, nil
	case "topo", "topology":
		t, err := minefield.ParseTopology(arg())
		if err != nil {
			return Command{}, err
		}
		return Command{Action: SetTopology, Topology: t}, nil
	case "uncover":
		return located(Uncover, arg())
	case "flag":
		return located(Flag, arg())
	case "question":
		return located(Question, arg())
	case "unmark":
		return located(Unmark, arg())
	}

	if len(words) == 1 {
		if c, err := located(Uncover, words[0]); err == nil {
			return c, nil
		}
	}
	return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, words[0])
}
