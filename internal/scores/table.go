// Package scores keeps the best times per game and field mode.
package scores

import (
	"cmp"
	"math/rand/v2"
	"slices"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/polysweeper/internal/minefield"
)

var Log = logrus.New()

const DefaultTop = 5

type Score struct {
	ID      uint16
	Scorer  string
	Seconds int
}

// Table maps a game name and a field mode to the scores recorded for it.
// Exported fields are what gets persisted.
type Table struct {
	Games map[string]map[minefield.ModeKey][]Score
}

func NewTable() *Table {
	return &Table{Games: make(map[string]map[minefield.ModeKey][]Score)}
}

func (t *Table) modes(game string) map[minefield.ModeKey][]Score {
	if t.Games == nil {
		t.Games = make(map[string]map[minefield.ModeKey][]Score)
	}
	m, ok := t.Games[game]
	if !ok {
		m = make(map[minefield.ModeKey][]Score)
		t.Games[game] = m
	}
	return m
}

// Insert appends s unless an identical score is already recorded.
func (t *Table) Insert(game string, mode minefield.ModeKey, s Score) bool {
	modes := t.modes(game)
	if slices.Contains(modes[mode], s) {
		return false
	}
	modes[mode] = append(modes[mode], s)
	return true
}

func (t *Table) Len(game string, mode minefield.ModeKey) int {
	return len(t.Games[game][mode])
}

// Top returns at most n scores of a mode, fastest first.
func (t *Table) Top(game string, mode minefield.ModeKey, n int) []Score {
	scores := slices.Clone(t.Games[game][mode])
	slices.SortStableFunc(scores, func(a, b Score) int {
		return cmp.Compare(a.Seconds, b.Seconds)
	})
	if len(scores) > n {
		scores = scores[:n]
	}
	return scores
}

// InTop reports whether a time of seconds would make the top n.
func (t *Table) InTop(game string, mode minefield.ModeKey, seconds, n int) bool {
	top := t.Top(game, mode, n)
	return len(top) < n || seconds < top[len(top)-1].Seconds
}

func (t *Table) ClearMode(game string, mode minefield.ModeKey) {
	t.modes(game)[mode] = nil
}

func (t *Table) ClearGame(game string) {
	t.Games[game] = make(map[minefield.ModeKey][]Score)
}

// Modes lists the modes of a game that have at least one score.
func (t *Table) Modes(game string) []minefield.ModeKey {
	keys := lo.Keys(lo.PickBy(t.Games[game], func(_ minefield.ModeKey, s []Score) bool {
		return len(s) > 0
	}))
	slices.SortFunc(keys, func(a, b minefield.ModeKey) int {
		return cmp.Or(
			cmp.Compare(a.Topology, b.Topology),
			cmp.Compare(a.Width, b.Width),
			cmp.Compare(a.Height, b.Height),
			cmp.Compare(a.Mines, b.Mines),
		)
	})
	return keys
}

// Merge adds every score of other that t does not have yet.
func (t *Table) Merge(other *Table) {
	for game, modes := range other.Games {
		t.modes(game)
		for mode, scores := range modes {
			for _, s := range scores {
				t.Insert(game, mode, s)
			}
		}
	}
}

// newID builds a score id. The high byte is random. When the table was read
// from storage the top bit is set and the low byte holds the list length.
func newID(r *rand.Rand, loaded bool, length int) uint16 {
	hi := uint16(r.IntN(0x7F)) << 8
	if loaded {
		return hi | 0x8000 | uint16(length)&0xFF
	}
	return hi | uint16(r.IntN(0xFF))
}
