// Package solver deduces which covered cells of a field are certainly safe or
// certainly mined, using only what a player can see. It knows nothing about
// the shape of the field beyond the neighbor relation, so it works for every
// topology.
package solver

import (
	"github.com/gammazero/deque"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/polysweeper/internal/minefield"
)

var Log = logrus.New()

// Field is the player's view of a board.
type Field interface {
	Coordinates() []minefield.Coord
	Neighbors(c minefield.Coord) []minefield.Coord
	Token(c minefield.Coord) minefield.Token
}

type Hint struct {
	Safe  []minefield.Coord `json:"safe"`
	Mines []minefield.Coord `json:"mines"`
}

func (h Hint) Empty() bool {
	return len(h.Safe) == 0 && len(h.Mines) == 0
}

// Solver holds the deductions made so far. Player marks are not trusted:
// a flagged cell counts as covered until the numbers prove it mined.
type Solver struct {
	field        Field
	known        map[minefield.Coord]bool // true for a mine
	order        []minefield.Coord
	inspectQueue deque.Deque[minefield.Coord]
	queued       map[minefield.Coord]bool
}

func New(f Field) *Solver {
	return &Solver{
		field:  f,
		known:  make(map[minefield.Coord]bool),
		queued: make(map[minefield.Coord]bool),
	}
}

// Deduce runs a solver over f and returns everything it could prove.
func Deduce(f Field) Hint {
	return New(f).Solve()
}

func (s *Solver) count(c minefield.Coord) (int, bool) {
	t := s.field.Token(c)
	return int(t), t >= 0
}

func (s *Solver) covered(c minefield.Coord) bool {
	return !s.field.Token(c).Uncovered()
}

func (s *Solver) push(c minefield.Coord) {
	if _, ok := s.count(c); !ok || s.queued[c] {
		return
	}
	s.queued[c] = true
	s.inspectQueue.PushBack(c)
}

func (s *Solver) learn(c minefield.Coord, mine bool) {
	if _, ok := s.known[c]; ok {
		return
	}
	s.known[c] = mine
	s.order = append(s.order, c)
	for _, n := range s.field.Neighbors(c) {
		s.push(n)
	}
}

// unknown returns the covered neighbors of c that are not deduced yet and the
// number of mines still hidden among them.
func (s *Solver) unknown(c minefield.Coord) ([]minefield.Coord, int) {
	remaining, _ := s.count(c)
	var cells []minefield.Coord
	for _, n := range s.field.Neighbors(c) {
		if !s.covered(n) {
			continue
		}
		mine, ok := s.known[n]
		switch {
		case !ok:
			cells = append(cells, n)
		case mine:
			remaining--
		}
	}
	return cells, remaining
}

func (s *Solver) settle(cells []minefield.Coord, mine bool) {
	for _, c := range cells {
		s.learn(c, mine)
	}
}

func (s *Solver) inspectCell(c minefield.Coord) {
	cells, mines := s.unknown(c)
	if len(cells) == 0 {
		return
	}
	if mines == 0 {
		s.settle(cells, false)
		return
	}
	if mines == len(cells) {
		s.settle(cells, true)
		return
	}

	// compare with every numbered cell that shares an unknown neighbor
	seen := map[minefield.Coord]bool{c: true}
	for _, u := range cells {
		for _, other := range s.field.Neighbors(u) {
			if seen[other] {
				continue
			}
			seen[other] = true
			if _, ok := s.count(other); !ok {
				continue
			}
			otherCells, otherMines := s.unknown(other)
			if len(otherCells) == 0 || len(otherCells) >= len(cells) {
				continue
			}
			if len(lo.Intersect(cells, otherCells)) != len(otherCells) {
				continue
			}
			rest := lo.Without(cells, otherCells...)
			switch mines - otherMines {
			case 0:
				s.settle(rest, false)
				return
			case len(rest):
				s.settle(rest, true)
				return
			}
		}
	}
}

func (s *Solver) processInspectQueue() {
	for s.inspectQueue.Len() != 0 {
		c := s.inspectQueue.PopFront()
		s.queued[c] = false
		s.inspectCell(c)
	}
}

// Solve inspects every uncovered number until no new deduction follows.
func (s *Solver) Solve() Hint {
	for _, c := range s.field.Coordinates() {
		s.push(c)
	}
	s.processInspectQueue()

	h := Hint{Safe: []minefield.Coord{}, Mines: []minefield.Coord{}}
	for _, c := range s.order {
		if s.known[c] {
			if s.field.Token(c) != minefield.TokenFlagged {
				h.Mines = append(h.Mines, c)
			}
		} else {
			h.Safe = append(h.Safe, c)
		}
	}
	Log.WithFields(logrus.Fields{
		"safe":  len(h.Safe),
		"mines": len(h.Mines),
	}).Debug("deductions made")
	return h
}
