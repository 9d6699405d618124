package minefield

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDims = []Dims{{1, 1}, {1, 4}, {4, 1}, {2, 3}, {5, 4}, {9, 9}}

func TestCoordinatesAreUnique(t *testing.T) {
	for _, top := range Topologies() {
		for _, d := range testDims {
			coords := top.Coordinates(d)
			seen := make(map[Coord]bool, len(coords))
			for _, c := range coords {
				require.False(t, seen[c], "%s %v: %s listed twice", top, d, c)
				seen[c] = true
			}
			assert.Equal(t, coords, top.Coordinates(d))
		}
	}
}

func TestStitchingOnlyNamesEarlierCells(t *testing.T) {
	for _, top := range Topologies() {
		for _, d := range testDims {
			seen := make(map[Coord]bool)
			for _, c := range top.Coordinates(d) {
				_, prev := top.Stitch(d, c)
				for _, n := range prev {
					assert.True(t, seen[n], "%s %v: %s -> %s", top, d, c, n)
					assert.NotEqual(t, c, n)
				}
				seen[c] = true
			}
		}
	}
}

func TestFieldInvariants(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for _, top := range Topologies() {
		for _, d := range testDims {
			t.Run(fmt.Sprintf("%s/%dx%d", top, d.Width, d.Height), func(t *testing.T) {
				cells := len(top.Coordinates(d))
				cfg := Config{Topology: top, Width: d.Width, Height: d.Height, Mines: cells / 5}
				b := New(cfg, WithRand(r))
				_, _, err := b.Create()
				require.NoError(t, err)
				require.Equal(t, cells, b.Len())

				mines := 0
				for _, c := range b.Coordinates() {
					if b.Mine(c) {
						mines++
					}
					neighbors := b.Neighbors(c)
					count := 0
					seen := make(map[Coord]bool)
					for _, n := range neighbors {
						assert.False(t, seen[n], "%s linked to %s twice", c, n)
						seen[n] = true
						assert.Contains(t, b.Neighbors(n), c, "link %s -> %s is one-way", c, n)
						if b.Mine(n) {
							count++
						}
					}
					assert.Equal(t, count, b.AdjacentMines(c), "count of %s", c)
					assert.Equal(t, Covered, b.State(c))
				}
				assert.Equal(t, cfg.Mines, mines)
			})
		}
	}
}

func TestNeighborCounts(t *testing.T) {
	tests := []struct {
		top  Topology
		d    Dims
		c    Coord
		want int
	}{
		{Square, Dims{5, 5}, At(2, 2), 8},
		{Square, Dims{5, 5}, At(0, 0), 3},
		{Square, Dims{5, 5}, At(4, 2), 5},
		{Hexagon, Dims{6, 6}, At(2, 2), 6},
		{Hexagon, Dims{6, 6}, At(3, 2), 6},
		{FlatOctagon, Dims{5, 5}, At(2, 2), 4},
		{StaggeredOctagon, Dims{5, 5}, At(4, 2), 4},
		{StaggeredOctagon, Dims{5, 5}, At(3, 1), 4},
		{StaggeredOctagon, Dims{5, 5}, At(0, 0), 1},
		{FullFlatOctagon, Dims{4, 4}, At(1, 2), 8},
		{FullFlatOctagon, Dims{4, 4}, At(1, 1), 4},
		{FullFlatOctagon, Dims{4, 4}, At(0, 0), 3},
		{FullStaggeredOctagon, Dims{5, 5}, At(2, 2), 8},
		{FullStaggeredOctagon, Dims{5, 5}, At(2, 1), 4},
		{Triangle, Dims{7, 5}, At(3, 2), 12},
		{Triangle, Dims{7, 5}, At(2, 2), 12},
		{Triangle, Dims{7, 5}, At(0, 0), 5},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%s %s", test.top, test.c), func(t *testing.T) {
			b := New(Config{Topology: test.top, Width: test.d.Width, Height: test.d.Height})
			_, _, err := b.Create()
			require.NoError(t, err)
			assert.Len(t, b.Neighbors(test.c), test.want)
		})
	}
}

func TestCylinderLayout(t *testing.T) {
	d := Dims{3, 3}
	b := New(Config{Topology: Cylinder, Width: d.Width, Height: d.Height, Mines: 10})
	_, _, err := b.Create()
	require.NoError(t, err)
	assert.Equal(t, 25*9+4*4, b.Len())

	net := 0
	for _, n := range netRows {
		net += n
	}
	assert.Equal(t, 25, net)
	assert.Len(t, Cylinder.Coordinates(d), b.Len())

	seams := 0
	for _, c := range b.Coordinates() {
		if c.X.IsWhole() {
			continue
		}
		seams++
		assert.Len(t, b.Neighbors(c), 7, "seam %s", c)
	}
	assert.Equal(t, 16, seams)

	// Middle net: its top corners touch two junctions.
	assert.Len(t, b.Neighbors(netCoord(Whole(1), Whole(1), netPos{0, 0})), 8)
	assert.Contains(t, b.Neighbors(netCoord(Whole(1), Whole(1), netPos{0, 0})),
		seamCoord(Halfway(0), Halfway(0), seamBottom))
}

func TestDisplaySize(t *testing.T) {
	tests := []struct {
		top  Topology
		w, h int
	}{
		{Square, 7, 5},
		{StaggeredOctagon, 14, 5},
		{FullFlatOctagon, 7, 9},
		{Cylinder, 7, 5},
	}
	for _, test := range tests {
		w, h := test.top.DisplaySize(Dims{7, 5})
		assert.Equal(t, test.w, w, test.top.String())
		assert.Equal(t, test.h, h, test.top.String())
	}
}

func TestParseTopology(t *testing.T) {
	for _, top := range Topologies() {
		parsed, err := ParseTopology(top.String())
		require.NoError(t, err)
		assert.Equal(t, top, parsed)
	}

	parsed, err := ParseTopology(" HEX ")
	require.NoError(t, err)
	assert.Equal(t, Hexagon, parsed)

	_, err = ParseTopology("dodecahedron")
	assert.ErrorIs(t, err, ErrUnknownTopology)
}

func TestFloodReachesConnectedZeroRegion(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for _, top := range Topologies() {
		t.Run(top.String(), func(t *testing.T) {
			cfg := Config{Topology: top, Width: 6, Height: 6}
			cfg.Mines = len(top.Coordinates(cfg.Dims())) / 8
			b := New(cfg, WithRand(r))
			_, _, err := b.Create()
			require.NoError(t, err)

			var start Coord
			found := false
			for _, c := range b.Coordinates() {
				if !b.Mine(c) && b.AdjacentMines(c) == 0 {
					start, found = c, true
					break
				}
			}
			if !found {
				t.Skip("no empty cell")
			}

			want := map[Coord]bool{start: true}
			todo := []Coord{start}
			for len(todo) > 0 {
				c := todo[0]
				todo = todo[1:]
				if b.AdjacentMines(c) > 0 {
					continue
				}
				for _, n := range b.Neighbors(c) {
					if !want[n] {
						want[n] = true
						todo = append(todo, n)
					}
				}
			}

			mine, uncovered := b.Uncover(start)
			require.False(t, mine)
			got := make(map[Coord]bool, len(uncovered))
			for _, c := range uncovered {
				got[c] = true
			}
			assert.Len(t, uncovered, len(got))
			assert.Equal(t, want, got)
		})
	}
}

func TestClearingEveryTopology(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for _, top := range Topologies() {
		t.Run(top.String(), func(t *testing.T) {
			cfg := Config{Topology: top, Width: 4, Height: 3, Mines: 3}
			b := New(cfg, WithRand(r))
			_, _, err := b.Create()
			require.NoError(t, err)

			require.False(t, b.Cleared())
			for _, c := range b.Coordinates() {
				if b.Mine(c) {
					continue
				}
				mine, _ := b.Uncover(c)
				require.False(t, mine)
			}
			assert.True(t, b.Cleared())
			assert.Equal(t, b.Len()-cfg.Mines, b.Uncovered())
		})
	}
}
