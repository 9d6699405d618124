package session

import (
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/polysweeper/internal/minefield"
	"github.com/vancomm/polysweeper/internal/solver"
)

type Status uint8

const (
	Playing Status = iota
	Won
	Lost
	Forfeited
)

func (s Status) String() string {
	switch s {
	case Won:
		return "won"
	case Lost:
		return "lost"
	case Forfeited:
		return "forfeited"
	default:
		return "playing"
	}
}

func ParseStatus(s string) (Status, error) {
	for st := Playing; st <= Forfeited; st++ {
		if st.String() == s {
			return st, nil
		}
	}
	return Playing, fmt.Errorf("unknown game status %q", s)
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func newID() string {
	u := [16]byte(uuid.New())
	return base64.RawURLEncoding.EncodeToString(u[:])
}

// Game is one live board. Every method locks the game, so a board only ever
// sees one writer at a time.
type Game struct {
	mu       sync.Mutex
	id       string
	board    *minefield.Board
	status   Status
	playerID *int64
	recordID int64

	endedAt  time.Time
	lastSeen time.Time
	now      func() time.Time
}

// Result describes what a move changed.
type Result struct {
	Changed   bool              `json:"changed"`
	Uncovered []minefield.Coord `json:"uncovered,omitempty"`
	Status    Status            `json:"status"`
}

func (g *Game) ID() string { return g.id }

func (g *Game) PlayerID() *int64 { return g.playerID }

// RecordID is the id of the stored copy of this game, zero when the game is
// not stored.
func (g *Game) RecordID() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.recordID
}

func (g *Game) SetRecordID(id int64) {
	g.mu.Lock()
	g.recordID = id
	g.mu.Unlock()
}

func (g *Game) Config() minefield.Config {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board.Config()
}

func (g *Game) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

func (g *Game) touch() {
	g.lastSeen = g.now()
}

func (g *Game) idle(now time.Time) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return now.Sub(g.lastSeen)
}

func (g *Game) Apply(m Move) (Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.touch()

	if g.status != Playing {
		return Result{Status: g.status}, ErrGameOver
	}
	if !g.board.Contains(m.At) {
		return Result{Status: g.status}, ErrOutOfBounds
	}

	var res Result
	switch m.Kind {
	case Uncover:
		mine, uncovered := g.board.Uncover(m.At)
		res.Changed, res.Uncovered = len(uncovered) > 0, uncovered
		if mine {
			g.board.RevealMines()
			g.end(Lost)
		} else if g.board.Cleared() {
			g.end(Won)
		}
	case Flag:
		res.Changed = g.board.MarkAs(m.At, minefield.Flagged)
	case Question:
		res.Changed = g.board.MarkAs(m.At, minefield.Questionable)
	case Unmark:
		res.Changed = g.board.MarkAs(m.At, minefield.Covered)
	case Cycle:
		res.Changed = g.board.Mark(m.At)
	default:
		return Result{Status: g.status}, ErrUnknownMove
	}
	res.Status = g.status

	Log.WithFields(logrus.Fields{
		"game":    g.id,
		"move":    m.String(),
		"changed": res.Changed,
		"status":  g.status.String(),
	}).Debug("move applied")
	return res, nil
}

// Forfeit ends a running game and shows its mines.
func (g *Game) Forfeit() Result {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.touch()

	if g.status != Playing {
		return Result{Status: g.status}
	}
	revealed := g.board.RevealMines()
	g.end(Forfeited)
	return Result{Changed: len(revealed) > 0, Uncovered: revealed, Status: g.status}
}

// Hint lists the covered cells that the uncovered numbers prove safe or
// mined.
func (g *Game) Hint() (solver.Hint, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.touch()

	if g.status != Playing {
		return solver.Hint{}, ErrGameOver
	}
	return solver.Deduce(g.board), nil
}

func (g *Game) end(s Status) {
	g.status = s
	g.endedAt = g.now()
}

func (g *Game) seconds() int {
	start := g.board.StartedAt()
	if g.status == Playing {
		return g.board.Seconds()
	}
	return int(g.endedAt.Sub(start) / time.Second)
}

func (g *Game) Seconds() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seconds()
}

type CellView struct {
	minefield.Coord
	Token minefield.Token `json:"token"`
}

type Snapshot struct {
	ID             string             `json:"id"`
	Topology       minefield.Topology `json:"topology"`
	Width          int                `json:"width"`
	Height         int                `json:"height"`
	Mines          int                `json:"mines"`
	DisplayWidth   int                `json:"display_width"`
	DisplayHeight  int                `json:"display_height"`
	Status         Status             `json:"status"`
	MinesRemaining int                `json:"mines_remaining"`
	Seconds        int                `json:"seconds"`
	StartedAt      int64              `json:"started_at"`
	EndedAt        *int64             `json:"ended_at,omitempty"`
	Cells          []CellView         `json:"cells"`
}

func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	cfg := g.board.Config()
	w, h := g.board.Size()
	s := Snapshot{
		ID:             g.id,
		Topology:       cfg.Topology,
		Width:          cfg.Width,
		Height:         cfg.Height,
		Mines:          cfg.Mines,
		DisplayWidth:   w,
		DisplayHeight:  h,
		Status:         g.status,
		MinesRemaining: g.board.MinesRemaining(),
		Seconds:        g.seconds(),
		StartedAt:      g.board.StartedAt().UnixMilli(),
		Cells: lo.Map(g.board.Coordinates(), func(c minefield.Coord, _ int) CellView {
			return CellView{Coord: c, Token: g.board.Token(c)}
		}),
	}
	if g.status != Playing {
		s.EndedAt = lo.ToPtr(g.endedAt.UnixMilli())
	}
	return s
}
