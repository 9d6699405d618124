package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/polysweeper/internal/minefield"
	"github.com/vancomm/polysweeper/internal/scores"
	"github.com/vancomm/polysweeper/internal/solver"
	"github.com/vancomm/polysweeper/internal/timer"
)

var Log = logrus.New()

// Prompter reads lines from the player. *readline.Instance implements it.
type Prompter interface {
	SetPrompt(p string)
	Readline() (string, error)
	Refresh()
}

// ErrQuit means the player asked to leave.
var ErrQuit = errors.New("quit")

const helpText = `Commands:
 help: Print this help message
 new: Start a new game
 scores: Show the best times for this mode
 clear: Delete the best times for this mode
 clear all: Delete the best times for every mode
 exit: Exit game
 diff DIFFICULTY: Set the difficulty to beginner, intermediate, or difficult
 dim COLS ROWS: Change the dimensions of the map. Must start a new game after
 mines MINES: Change the mines on the map. Must start a new game after
 square: Start a new square game (8 neighboring cells)
 oct: Start a new octagonal game (4 neighboring cells)
 topo NAME: Start a new game on any drawable topology
 hint: List the cells the numbers prove safe or mined
Coordinate commands (for X enter column letter, for Y enter the number):
 XY: Uncover cell
 !XY: Flag cell (you cannot uncover a cell while it's flagged)
 ?XY: Question cell (you can uncover this cell but it looks distinct)
 .XY: Unmark cell
`

type Game struct {
	board  *minefield.Board
	keeper *scores.Keeper
	in     Prompter
	out    io.Writer

	savedName string
	timerOpts []timer.Option
}

type Option func(*Game)

// WithTimerOptions passes options to the clock shown in the prompt.
func WithTimerOptions(opts ...timer.Option) Option {
	return func(g *Game) { g.timerOpts = opts }
}

func NewGame(
	board *minefield.Board, keeper *scores.Keeper, in Prompter, out io.Writer, opts ...Option,
) *Game {
	g := &Game{board: board, keeper: keeper, in: in, out: out}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func commandPrompt(mins, secs int) string {
	return fmt.Sprintf("[%02d:%02d] Enter command: ", mins, secs)
}

func (g *Game) readline(prompt string) (string, error) {
	g.in.SetPrompt(prompt)
	line, err := g.in.Readline()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return "", ErrQuit
	}
	return strings.TrimSpace(line), err
}

func (g *Game) println(a ...any) {
	fmt.Fprintln(g.out, a...)
}

// Run plays rounds until the player declines another one or quits.
func (g *Game) Run(ctx context.Context) error {
	for {
		err := g.Play(ctx)
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			return err
		}
		again, err := g.readline("Play again (y/n)? ")
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			return err
		}
		if strings.ToLower(again) != "y" {
			return nil
		}
	}
}

func (g *Game) create() error {
	cfg := g.board.Config()
	if err := Playable(cfg.Topology, cfg.Width, cfg.Height); err != nil {
		return err
	}
	if _, _, err := g.board.Create(); err != nil {
		return err
	}
	g.keeper.SetMode(g.board.Mode())
	return nil
}

// newClock makes the prompt clock. It reads the board so that the prompt and
// the recorded time agree.
func (g *Game) newClock() *timer.Timer {
	opts := append([]timer.Option{timer.FromSource(g.board)}, g.timerOpts...)
	return timer.New(func(mins, secs int) {
		g.in.SetPrompt(commandPrompt(mins, secs))
		g.in.Refresh()
	}, opts...)
}

// Play runs one round until it is won, lost or abandoned. It returns ErrQuit
// when the player wants to leave.
func (g *Game) Play(ctx context.Context) error {
	if err := g.create(); err != nil {
		return err
	}

	clock := g.newClock()
	clock.Run()
	defer clock.Stop(ctx)

	printNext := true
	for !g.board.Cleared() {
		if printNext {
			if err := Render(g.out, g.board); err != nil {
				return err
			}
		}
		printNext = false

		mins, secs := g.board.MinSecs()
		line, err := g.readline(commandPrompt(mins, secs))
		if err != nil {
			return err
		}
		cmd, err := ParseCommand(line)
		if err != nil {
			g.println(err)
			continue
		}

		switch cmd.Action {
		case Help:
			g.println(strings.TrimRight(helpText, "\n"))
		case New:
			if err := g.create(); err != nil {
				g.println(err)
				continue
			}
			clock.ResetTo(0)
			printNext = true
		case ShowScores:
			g.showScores(ctx)
		case ClearScores:
			g.clearScores(ctx, g.keeper.ClearMode)
		case ClearAllScores:
			g.clearScores(ctx, g.keeper.ClearGame)
		case Exit:
			return ErrQuit
		case Hint:
			g.printHint(solver.Deduce(g.board))
		case SetDifficulty:
			g.board.SetConfig(cmd.Difficulty.Config(g.board.Config().Topology))
			if err := g.create(); err != nil {
				g.println(err)
				continue
			}
			clock.ResetTo(0)
			printNext = true
		case SetDimensions:
			g.board.SetDimensions(cmd.Width, cmd.Height)
		case SetMines:
			g.board.SetMines(cmd.Mines)
		case SetTopology:
			cfg := g.board.Config()
			if err := Playable(cmd.Topology, cfg.Width, cfg.Height); err != nil {
				g.println(err)
				continue
			}
			g.board.SetTopology(cmd.Topology)
			if err := g.create(); err != nil {
				g.println(err)
				continue
			}
			clock.ResetTo(0)
			printNext = true
		case Uncover:
			if !g.board.Contains(cmd.At) {
				g.println(ErrBadLocation)
				continue
			}
			if mine, _ := g.board.Uncover(cmd.At); mine {
				clock.Pause()
				g.board.RevealMines()
				if err := Render(g.out, g.board); err != nil {
					return err
				}
				g.println("You lose!")
				return nil
			}
			printNext = true
		case Flag:
			printNext = g.board.MarkAs(cmd.At, minefield.Flagged)
		case Question:
			printNext = g.board.MarkAs(cmd.At, minefield.Questionable)
		case Unmark:
			printNext = g.board.MarkAs(cmd.At, minefield.Covered)
		}
	}

	clock.Pause()
	if err := Render(g.out, g.board); err != nil {
		return err
	}
	return g.win(ctx)
}

func (g *Game) printHint(h solver.Hint) {
	if h.Empty() {
		g.println("Nothing is certain, you have to guess.")
		return
	}
	locations := func(coords []minefield.Coord) string {
		return strings.Join(lo.Map(coords, func(c minefield.Coord, _ int) string {
			return Location(c)
		}), " ")
	}
	if len(h.Safe) > 0 {
		g.println("Safe:", locations(h.Safe))
	}
	if len(h.Mines) > 0 {
		g.println("Mines:", locations(h.Mines))
	}
}

func (g *Game) win(ctx context.Context) error {
	seconds := g.board.Seconds()
	if !g.keeper.InTop(seconds) {
		g.println("You win!")
		return nil
	}

	prompt := "You got a high score! Enter your name: "
	if g.savedName != "" {
		prompt = fmt.Sprintf("You got a high score! Enter your name [%s]: ", g.savedName)
	}
	name, err := g.readline(prompt)
	for err == nil && name == "" && g.savedName == "" {
		name, err = g.readline("No, really, enter something: ")
	}
	if err != nil {
		return err
	}
	if name == "" {
		name = g.savedName
	}
	g.savedName = name

	g.keeper.Add(name, seconds)
	if err := g.keeper.Save(ctx); err != nil {
		Log.WithError(err).Error("unable to save scores")
		g.println("Your score could not be saved.")
	}
	g.printScores()
	return nil
}

func (g *Game) showScores(ctx context.Context) {
	if err := g.keeper.Read(ctx); err != nil {
		Log.WithError(err).Warn("unable to read scores")
	}
	g.printScores()
}

func (g *Game) clearScores(ctx context.Context, drop func(context.Context) error) {
	if err := drop(ctx); err != nil {
		Log.WithError(err).Error("unable to clear scores")
		g.println("The scores could not be cleared.")
		return
	}
	g.println("Scores cleared.")
}

func (g *Game) printScores() {
	g.println(g.keeper.Mode().Name(), g.board.Topology())
	g.println("Seconds | Name")
	for _, s := range g.keeper.Top() {
		fmt.Fprintf(g.out, "%7d | %s\n", s.Seconds, s.Scorer)
	}
}
