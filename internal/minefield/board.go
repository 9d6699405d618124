package minefield

import (
	"errors"
	"fmt"
	"hash/maphash"
	"math/rand/v2"
	"slices"
	"sync/atomic"
	"time"

	"github.com/gammazero/deque"
	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

// Placer picks the indices, in construction order, of the cells that hold
// mines.
type Placer func(r *rand.Rand, cells, mines int) []int

// RandomPlacer draws mines uniformly without replacement.
func RandomPlacer(r *rand.Rand, cells, mines int) []int {
	candidates := make([]int, cells)
	for i := range candidates {
		candidates[i] = i
	}
	picked := make([]int, 0, mines)
	k := cells
	for range mines {
		i := r.IntN(k)
		picked = append(picked, candidates[i])
		k--
		candidates[i] = candidates[k]
	}
	return picked
}

// FixedPlacer always places mines at the given construction indices.
func FixedPlacer(indices ...int) Placer {
	return func(*rand.Rand, int, int) []int {
		return slices.Clone(indices)
	}
}

// MinesAt places mines at the given coordinates of a topology.
func MinesAt(t Topology, d Dims, coords ...Coord) Placer {
	order := make(map[Coord]int)
	for i, c := range t.Coordinates(d) {
		order[c] = i
	}
	indices := make([]int, 0, len(coords))
	for _, c := range coords {
		if i, ok := order[c]; ok {
			indices = append(indices, i)
		}
	}
	return FixedPlacer(indices...)
}

type Option func(*Board)

func WithRand(r *rand.Rand) Option {
	return func(b *Board) { b.rnd = r }
}

func WithPlacer(p Placer) Option {
	return func(b *Board) { b.place = p }
}

func WithClock(now func() time.Time) Option {
	return func(b *Board) { b.now = now }
}

// Board owns every cell of a field. Calls that change it must come from a
// single goroutine; only [Board.Seconds] and [Board.StartedAt] may be read
// concurrently.
type Board struct {
	start Config
	field Config

	cells []Cell
	index map[Coord]int

	uncovered, flagged int
	created            bool
	startedAt          atomic.Pointer[time.Time]

	rnd   *rand.Rand
	place Placer
	now   func() time.Time
}

func createRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

// New returns a board holding only its starting configuration. Call
// [Board.Create] to build a field.
func New(cfg Config, opts ...Option) *Board {
	b := &Board{start: cfg, place: RandomPlacer, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	if b.rnd == nil {
		b.rnd = createRand()
	}
	return b
}

func (b *Board) validate(cells int) error {
	cfg := b.start
	if cfg.Width < 1 || cfg.Height < 1 || cfg.Mines < 0 || cfg.Mines > cells {
		return fmt.Errorf(
			"%w: %s %dx%d with %d mines",
			ErrInvalidConfig, cfg.Topology, cfg.Width, cfg.Height, cfg.Mines,
		)
	}
	return nil
}

func checkPlacement(mines []int, cells, want int) error {
	if len(mines) != want {
		return fmt.Errorf("%w: placed %d mines, want %d", ErrInvalidConfig, len(mines), want)
	}
	for i, m := range mines {
		if m < 0 || m >= cells || i > 0 && mines[i-1] == m {
			return fmt.Errorf("%w: bad mine position %d", ErrInvalidConfig, m)
		}
	}
	return nil
}

// Create builds a new field from the starting configuration, discarding the
// previous one, and returns its display size. A topology that stitches to a
// cell it has not built yet aborts construction with a [StitchError].
func (b *Board) Create() (width, height int, err error) {
	defer func() {
		if r := recover(); r != nil {
			var se StitchError
			if e, ok := r.(error); !ok || !errors.As(e, &se) {
				panic(r)
			}
			Log.WithError(se).Error("field construction aborted")
			b.cells, b.index, b.created = nil, nil, false
			b.startedAt.Store(nil)
			width, height, err = 0, 0, se
		}
	}()

	cfg := b.start
	if cfg.Width < 1 || cfg.Height < 1 {
		return 0, 0, b.validate(0)
	}
	dims := cfg.Dims()
	coords := cfg.Topology.Coordinates(dims)
	if err := b.validate(len(coords)); err != nil {
		return 0, 0, err
	}

	mines := b.place(b.rnd, len(coords), cfg.Mines)
	slices.Sort(mines)
	if err := checkPlacement(mines, len(coords), cfg.Mines); err != nil {
		return 0, 0, err
	}

	b.created = false
	b.field = cfg
	b.uncovered, b.flagged = 0, 0
	b.cells = make([]Cell, 0, len(coords))
	b.index = make(map[Coord]int, len(coords))

	for i, c := range coords {
		kind, prev := cfg.Topology.Stitch(dims, c)
		if len(mines) > 0 && mines[0] == i {
			kind = Mine
			mines = mines[1:]
		} else if kind == Mine {
			kind = Normal
		}

		b.cells = append(b.cells, newCell(kind, c))
		b.index[c] = i
		cell := &b.cells[i]

		for _, n := range prev {
			j, ok := b.index[n]
			if !ok {
				panic(StitchError{Topology: cfg.Topology, Coord: c, Neighbor: n})
			}
			other := &b.cells[j]
			cell.attach(j, other)
			other.attach(i, cell)
		}
	}

	now := b.now()
	b.startedAt.Store(&now)
	b.created = true

	Log.WithFields(logrus.Fields{
		"topology": cfg.Topology.String(),
		"width":    cfg.Width,
		"height":   cfg.Height,
		"mines":    cfg.Mines,
		"cells":    len(b.cells),
	}).Debug("field created")

	width, height = cfg.Topology.DisplaySize(dims)
	return width, height, nil
}

func (b *Board) lookup(c Coord) (*Cell, int, bool) {
	i, ok := b.index[c]
	if !ok {
		return nil, 0, false
	}
	return &b.cells[i], i, true
}

// Uncover reveals the cell at c. Uncovering a cell with no mined neighbors
// also reveals its neighbors, spreading through every connected cell with no
// mined neighbors. Hitting a mine locks the board until the next Create.
func (b *Board) Uncover(c Coord) (mine bool, uncovered []Coord) {
	if !b.created {
		return false, nil
	}
	_, i, ok := b.lookup(c)
	if !ok {
		return false, nil
	}
	mine, uncovered = b.flood(i)
	if mine {
		b.created = false
		return true, uncovered
	}
	b.uncovered += len(uncovered)
	return false, uncovered
}

func (b *Board) flood(start int) (bool, []Coord) {
	cell := &b.cells[start]
	if !cell.uncover() {
		return false, nil
	}
	revealed := []Coord{cell.coord}
	if cell.kind == Mine {
		return true, revealed
	}

	var todo deque.Deque[int]
	if cell.count == 0 {
		todo.PushBack(start)
	}
	for todo.Len() > 0 {
		for _, j := range b.cells[todo.PopFront()].neighbors {
			// a neighbor of a cell without mined neighbors is never a mine
			n := &b.cells[j]
			if !n.uncover() {
				continue
			}
			revealed = append(revealed, n.coord)
			if n.count == 0 {
				todo.PushBack(j)
			}
		}
	}
	return false, revealed
}

// Mark cycles the mark of the cell at c and reports whether it changed.
func (b *Board) Mark(c Coord) bool {
	return b.mark(c, (*Cell).Cycle)
}

// MarkAs sets the mark of the cell at c and reports whether it changed.
func (b *Board) MarkAs(c Coord, s State) bool {
	return b.mark(c, func(cell *Cell) (Transition, bool) {
		return cell.Set(s)
	})
}

func (b *Board) mark(c Coord, apply func(*Cell) (Transition, bool)) bool {
	if !b.created {
		return false
	}
	cell, _, ok := b.lookup(c)
	if !ok {
		return false
	}
	t, changed := apply(cell)
	if !changed {
		return false
	}
	if t.From == Flagged {
		b.flagged--
	} else if t.To == Flagged {
		b.flagged++
	}
	return true
}

// RevealMines uncovers every mine that is neither uncovered nor flagged and
// ends the round. It is meant for showing the field after a loss or forfeit.
func (b *Board) RevealMines() []Coord {
	var revealed []Coord
	for i := range b.cells {
		cell := &b.cells[i]
		if cell.kind == Mine && cell.uncover() {
			revealed = append(revealed, cell.coord)
		}
	}
	b.created = false
	return revealed
}

func (b *Board) Token(c Coord) Token {
	cell, _, ok := b.lookup(c)
	if !ok {
		return TokenEmpty
	}
	return cell.Token()
}

// Cleared reports whether every cell without a mine is uncovered. Its result
// is meaningless right after an Uncover that hit a mine.
func (b *Board) Cleared() bool {
	return b.cells != nil && b.uncovered == len(b.cells)-b.field.Mines
}

// MinesRemaining is mines minus flags. It goes negative when the player
// places more flags than there are mines.
func (b *Board) MinesRemaining() int {
	if b.cells == nil {
		return b.start.Mines
	}
	return b.field.Mines - b.flagged
}

func (b *Board) Created() bool { return b.created }

func (b *Board) current() Config {
	if b.cells == nil {
		return b.start
	}
	return b.field
}

// Size returns the display size of the current field, or of the starting
// configuration when there is none.
func (b *Board) Size() (width, height int) {
	cfg := b.current()
	return cfg.Topology.DisplaySize(cfg.Dims())
}

func (b *Board) Topology() Topology { return b.current().Topology }

func (b *Board) Mode() ModeKey { return b.current().Mode() }

// Config returns the starting configuration used by the next Create.
func (b *Board) Config() Config { return b.start }

func (b *Board) SetConfig(cfg Config) { b.start = cfg }

func (b *Board) SetDimensions(width, height int) {
	b.start.Width, b.start.Height = width, height
}

func (b *Board) SetMines(mines int) { b.start.Mines = mines }

func (b *Board) SetTopology(t Topology) { b.start.Topology = t }

func (b *Board) StartedAt() time.Time {
	if t := b.startedAt.Load(); t != nil {
		return *t
	}
	return time.Time{}
}

// Seconds is the number of whole seconds since the field was created.
func (b *Board) Seconds() int {
	t := b.startedAt.Load()
	if t == nil {
		return 0
	}
	return int(b.now().Sub(*t) / time.Second)
}

func (b *Board) MinSecs() (mins, secs int) {
	s := b.Seconds()
	return s / 60, s % 60
}

// Len is the number of cells in the field.
func (b *Board) Len() int { return len(b.cells) }

func (b *Board) Uncovered() int { return b.uncovered }

func (b *Board) Flagged() int { return b.flagged }

func (b *Board) Contains(c Coord) bool {
	_, ok := b.index[c]
	return ok
}

// Coordinates lists the cells of the field in construction order.
func (b *Board) Coordinates() []Coord {
	coords := make([]Coord, len(b.cells))
	for i := range b.cells {
		coords[i] = b.cells[i].coord
	}
	return coords
}

func (b *Board) Neighbors(c Coord) []Coord {
	cell, _, ok := b.lookup(c)
	if !ok {
		return nil
	}
	coords := make([]Coord, len(cell.neighbors))
	for i, j := range cell.neighbors {
		coords[i] = b.cells[j].coord
	}
	return coords
}

func (b *Board) Mine(c Coord) bool {
	cell, _, ok := b.lookup(c)
	return ok && cell.kind == Mine
}

func (b *Board) AdjacentMines(c Coord) int {
	cell, _, ok := b.lookup(c)
	if !ok {
		return 0
	}
	return cell.count
}

func (b *Board) State(c Coord) State {
	cell, _, ok := b.lookup(c)
	if !ok {
		return Covered
	}
	return cell.state
}
