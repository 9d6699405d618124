package minefield

import (
	"fmt"
	"strconv"
	"strings"
)

// Half is a coordinate component measured in half steps, so that seam cells
// of the cylinder topology can sit between two whole positions.
type Half int

func Whole(n int) Half {
	return Half(2 * n)
}

// Halfway returns n + 0.5.
func Halfway(n int) Half {
	return Half(2*n + 1)
}

func (h Half) IsWhole() bool {
	return h%2 == 0
}

func (h Half) Floor() int {
	if h < 0 {
		return (int(h) - 1) / 2
	}
	return int(h) / 2
}

func (h Half) Add(n int) Half {
	return h + Whole(n)
}

func (h Half) String() string {
	if h.IsWhole() {
		return strconv.Itoa(int(h) / 2)
	}
	return strconv.FormatFloat(float64(h)/2, 'f', 1, 64)
}

// ParseHalf accepts a whole number or a whole number followed by ".5".
func ParseHalf(s string) (Half, error) {
	whole, frac, found := strings.Cut(strings.TrimSpace(s), ".")
	n, err := strconv.Atoi(whole)
	if err != nil {
		return 0, fmt.Errorf("invalid coordinate %q", s)
	}
	if !found || strings.TrimRight(frac, "0") == "" {
		return Whole(n), nil
	}
	if strings.TrimRight(frac, "0") != "5" {
		return 0, fmt.Errorf("invalid coordinate %q: only halves are allowed", s)
	}
	if strings.HasPrefix(whole, "-") {
		return Halfway(n - 1), nil
	}
	return Halfway(n), nil
}

// MarshalJSON writes h as a number, 1.5 for three half steps.
func (h Half) MarshalJSON() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Half) UnmarshalJSON(b []byte) error {
	parsed, err := ParseHalf(string(b))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Coord identifies a cell. Planar topologies only use X and Y. The cylinder
// topology addresses a cylinder (or a junction between four cylinders) with
// X and Y and the position inside it with U and V.
type Coord struct {
	X Half `json:"x"`
	Y Half `json:"y"`
	U Half `json:"u,omitempty"`
	V Half `json:"v,omitempty"`
}

// At returns the planar coordinate (x, y).
func At(x, y int) Coord {
	return Coord{X: Whole(x), Y: Whole(y)}
}

// XY returns the whole planar position of c.
func (c Coord) XY() (x, y int) {
	return c.X.Floor(), c.Y.Floor()
}

// Offset shifts the macro position of c by whole steps.
func (c Coord) Offset(dx, dy int) Coord {
	return Coord{X: c.X.Add(dx), Y: c.Y.Add(dy), U: c.U, V: c.V}
}

func (c Coord) planar() bool {
	return c.U == 0 && c.V == 0 && c.X.IsWhole() && c.Y.IsWhole()
}

func (c Coord) String() string {
	if c.planar() {
		return fmt.Sprintf("(%s,%s)", c.X, c.Y)
	}
	return fmt.Sprintf("(%s,%s:%s,%s)", c.X, c.Y, c.U, c.V)
}
