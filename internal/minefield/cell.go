package minefield

import "strconv"

type Kind uint8

const (
	Normal Kind = iota
	Mine
)

func (k Kind) String() string {
	if k == Mine {
		return "mine"
	}
	return "normal"
}

type State uint8

const (
	Covered State = iota
	Flagged
	Questionable
	Uncovered
)

func (s State) String() string {
	switch s {
	case Covered:
		return "covered"
	case Flagged:
		return "flagged"
	case Questionable:
		return "questionable"
	case Uncovered:
		return "uncovered"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}

type Transition struct {
	From, To State
}

// Cell is one node of the field graph. Neighbors are indices into the
// owning board's cell store.
type Cell struct {
	coord     Coord
	kind      Kind
	state     State
	count     int
	neighbors []int
}

func newCell(kind Kind, coord Coord) Cell {
	return Cell{coord: coord, kind: kind}
}

func (c *Cell) Coord() Coord { return c.coord }

func (c *Cell) Kind() Kind { return c.kind }

func (c *Cell) State() State { return c.state }

// AdjacentMines is the number of mined neighbors.
func (c *Cell) AdjacentMines() int { return c.count }

// attach records a one-way neighbor link. The board calls it for both ends.
func (c *Cell) attach(index int, other *Cell) {
	c.neighbors = append(c.neighbors, index)
	if other.kind == Mine {
		c.count++
	}
}

// Cycle steps the mark Covered -> Flagged -> Questionable -> Covered.
// Uncovered cells are left alone.
func (c *Cell) Cycle() (Transition, bool) {
	old := c.state
	switch c.state {
	case Covered:
		c.state = Flagged
	case Flagged:
		c.state = Questionable
	case Questionable:
		c.state = Covered
	}
	return Transition{old, c.state}, old != c.state
}

// Set marks the cell with the given state. Uncovered cells stay uncovered,
// and a cell can only become uncovered through uncover.
func (c *Cell) Set(s State) (Transition, bool) {
	old := c.state
	if c.state != Uncovered && s != Uncovered {
		c.state = s
	}
	return Transition{old, c.state}, old != c.state
}

// uncover reveals this cell only. It reports false when the cell is already
// uncovered or is protected by a flag.
func (c *Cell) uncover() bool {
	if c.state == Uncovered || c.state == Flagged {
		return false
	}
	c.state = Uncovered
	return true
}

func (c *Cell) Token() Token {
	switch c.state {
	case Uncovered:
		if c.kind == Mine {
			return TokenMine
		}
		return Token(c.count)
	case Flagged:
		return TokenFlagged
	case Questionable:
		return TokenQuestion
	default:
		return TokenCovered
	}
}

// Token is what a front end shows for a cell: one of the negative markers
// below, or the adjacent mine count of an uncovered cell.
type Token int8

const (
	TokenEmpty    Token = -5 // no field yet
	TokenMine     Token = -4
	TokenQuestion Token = -3
	TokenCovered  Token = -2
	TokenFlagged  Token = -1
	// 0 to 12 for an uncovered cell with that many mined neighbors
)

func (t Token) Uncovered() bool {
	return t >= 0 || t == TokenMine
}

func (t Token) String() string {
	switch {
	case t == TokenEmpty:
		return ""
	case t == TokenMine:
		return "*"
	case t == TokenQuestion:
		return "?"
	case t == TokenCovered:
		return " "
	case t == TokenFlagged:
		return "!"
	case t >= 0:
		return strconv.Itoa(int(t))
	default:
		return "#"
	}
}
