package minefield

import (
	"fmt"
	"strings"
)

// Topology selects how cells tessellate. Every topology pairs an enumeration
// order with a stitching rule that only ever names coordinates already
// emitted by that order, so the whole graph is linked in a single pass.
type Topology uint8

const (
	Square Topology = iota
	Hexagon
	FlatOctagon
	StaggeredOctagon
	FullFlatOctagon
	FullStaggeredOctagon
	Triangle
	Cylinder
)

var topologyNames = [...]string{
	Square:               "square",
	Hexagon:              "hexagon",
	FlatOctagon:          "octagon-flat",
	StaggeredOctagon:     "octagon-staggered",
	FullFlatOctagon:      "octagon-full-flat",
	FullStaggeredOctagon: "octagon-full-staggered",
	Triangle:             "triangle",
	Cylinder:             "super",
}

func Topologies() []Topology {
	return []Topology{
		Square, Hexagon, FlatOctagon, StaggeredOctagon,
		FullFlatOctagon, FullStaggeredOctagon, Triangle, Cylinder,
	}
}

func (t Topology) String() string {
	if int(t) < len(topologyNames) {
		return topologyNames[t]
	}
	return fmt.Sprintf("Topology(%d)", t)
}

func ParseTopology(s string) (Topology, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "sq":
		return Square, nil
	case "hex":
		return Hexagon, nil
	case "oct", "octagon":
		return FlatOctagon, nil
	case "tri":
		return Triangle, nil
	case "cylinder":
		return Cylinder, nil
	}
	for i, n := range topologyNames {
		if n == name {
			return Topology(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTopology, s)
}

// MarshalText lets topologies travel as their names in JSON and query strings.
func (t Topology) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Topology) UnmarshalText(b []byte) error {
	parsed, err := ParseTopology(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Dims is the configured size of a field. Its meaning depends on the
// topology: cells per row and rows for planar ones, octagons per row and
// octagon rows for the octagon variants, cylinders for the cylinder one.
type Dims struct {
	Width, Height int
}

// Coordinates lists every cell of a field in construction order. The result
// is the same on every call.
func (t Topology) Coordinates(d Dims) []Coord {
	switch t {
	case StaggeredOctagon:
		return staggeredCoordinates(d)
	case FullFlatOctagon:
		return fullFlatCoordinates(d)
	case Cylinder:
		return cylinderCoordinates(d)
	default:
		return rectCoordinates(d)
	}
}

// Stitch returns the type hint of c and its neighbors that precede it in
// [Topology.Coordinates] order.
func (t Topology) Stitch(d Dims, c Coord) (Kind, []Coord) {
	if t == Cylinder {
		return Normal, cylinderStitch(d, c)
	}
	x, y := c.XY()
	var n neighbors
	switch t {
	case Square:
		n.add(x > 0, x-1, y)
		n.add(x > 0 && y > 0, x-1, y-1)
		n.add(y > 0, x, y-1)
		n.add(y > 0 && x < d.Width-1, x+1, y-1)
	case Hexagon:
		// Odd columns sit half a cell higher than even ones.
		odd := x&1 == 1
		n.add(odd && y > 0, x-1, y-1)
		n.add(x > 0, x-1, y)
		n.add(y > 0, x, y-1)
		n.add(odd && y > 0 && x < d.Width-1, x+1, y-1)
	case FlatOctagon:
		n.add(x > 0, x-1, y)
		n.add(y > 0, x, y-1)
	case StaggeredOctagon:
		// x runs over doubled positions; short rows start at 1.
		if y > 0 {
			n.add(x > 0, x-1, y-1)
			n.add(x < 2*d.Width-2, x+1, y-1)
		}
	case FullFlatOctagon:
		if y&1 == 0 {
			n.add(x > 0, x-1, y)
			n.add(y > 1, x, y-2)
			n.add(y > 0 && x > 0, x-1, y-1)
			n.add(y > 0 && x < d.Width-1, x, y-1)
		} else {
			// rhombus between four octagons
			n.add(true, x, y-1)
			n.add(true, x+1, y-1)
		}
	case FullStaggeredOctagon:
		// Octagons and small squares alternate like a checkerboard.
		octagon := (x+y)&1 == 0
		n.add(octagon && x > 0 && y > 0, x-1, y-1)
		n.add(x > 0, x-1, y)
		n.add(y > 0, x, y-1)
		n.add(octagon && y > 0 && x < d.Width-1, x+1, y-1)
	case Triangle:
		// (0,0) points up; parity alternates along rows and columns.
		upright := x&1 == y&1
		n.add(!upright && y > 0 && x > 1, x-2, y-1)
		n.add(y > 0 && x > 0, x-1, y-1)
		n.add(y > 0, x, y-1)
		n.add(y > 0 && x < d.Width-1, x+1, y-1)
		n.add(!upright && y > 0 && x < d.Width-2, x+2, y-1)
		n.add(x > 1, x-2, y)
		n.add(x > 0, x-1, y)
	}
	return Normal, n
}

// DisplaySize is the grid a front end needs to draw the field.
func (t Topology) DisplaySize(d Dims) (width, height int) {
	switch t {
	case StaggeredOctagon:
		return d.Width * 2, d.Height
	case FullFlatOctagon:
		return d.Width, 2*d.Height - 1
	default:
		return d.Width, d.Height
	}
}

type neighbors []Coord

func (n *neighbors) add(ok bool, x, y int) {
	if ok {
		*n = append(*n, At(x, y))
	}
}

func rectCoordinates(d Dims) []Coord {
	coords := make([]Coord, 0, d.Width*d.Height)
	for y := range d.Height {
		for x := range d.Width {
			coords = append(coords, At(x, y))
		}
	}
	return coords
}

func staggeredCoordinates(d Dims) []Coord {
	coords := make([]Coord, 0, d.Width*d.Height)
	for y := range d.Height {
		short := y & 1
		for x := range d.Width - short {
			coords = append(coords, At(short+2*x, y))
		}
	}
	return coords
}

func fullFlatCoordinates(d Dims) []Coord {
	coords := make([]Coord, 0, 2*d.Width*d.Height)
	for y := range 2*d.Height - 1 {
		for x := range d.Width - y&1 {
			coords = append(coords, At(x, y))
		}
	}
	return coords
}
