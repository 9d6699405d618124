package minefield

/*
 * Cylinder fields are a grid of identical 25-cell nets. Rows of a net hold
 * 3, 5, 2, 5, 2, 5 and 3 cells, so the corners of every net are empty. Where
 * four nets meet, the gap is filled by a diamond of four seam cells that
 * belong to a junction addressed halfway between the cylinders:
 *
 *	  UL   T   UR
 *	     L   R
 *	  LL   B   LR
 *
 * Nets are built row by row. The junction below-left of a net is built right
 * after that net, when both of its upper cylinders exist. The lower cylinders
 * stitch back to it when their turn comes.
 */

type netPos struct{ u, v int }

var netRows = [7]int{3, 5, 2, 5, 2, 5, 3}

// netLinks holds the links inside one net, keyed by cell, naming earlier
// cells of the same net only.
var netLinks = map[netPos][]netPos{
	{0, 0}: nil,
	{1, 0}: {{0, 0}},
	{2, 0}: {{1, 0}},

	{0, 1}: {{0, 0}},
	{1, 1}: {{0, 0}, {1, 0}, {0, 1}},
	{2, 1}: {{0, 0}, {1, 0}, {2, 0}, {1, 1}},
	{3, 1}: {{1, 0}, {2, 0}, {2, 1}},
	{4, 1}: {{2, 0}, {3, 1}},

	{0, 2}: {{1, 1}, {2, 1}},
	{1, 2}: {{2, 1}, {3, 1}, {0, 2}},

	{0, 3}: {{0, 1}, {1, 1}},
	{1, 3}: {{0, 1}, {1, 1}, {2, 1}, {0, 2}, {0, 3}},
	{2, 3}: {{0, 2}, {1, 2}},
	{3, 3}: {{2, 1}, {3, 1}, {4, 1}, {1, 2}},
	{4, 3}: {{3, 1}, {4, 1}, {3, 3}},

	{0, 4}: {{0, 2}, {1, 3}, {2, 3}},
	{1, 4}: {{1, 2}, {2, 3}, {3, 3}, {0, 4}},

	{0, 5}: {{0, 3}, {1, 3}},
	{1, 5}: {{0, 3}, {1, 3}, {0, 4}, {0, 5}},
	{2, 5}: {{1, 3}, {3, 3}, {0, 4}, {1, 4}, {1, 5}},
	{3, 5}: {{3, 3}, {4, 3}, {1, 4}, {2, 5}},
	{4, 5}: {{3, 3}, {4, 3}, {3, 5}},

	{0, 6}: {{0, 5}, {1, 5}, {2, 5}},
	{1, 6}: {{1, 5}, {2, 5}, {3, 5}, {0, 6}},
	{2, 6}: {{2, 5}, {3, 5}, {4, 5}, {1, 6}},
}

// upLinks joins the top row of a net to the bottom row of the net above.
var upLinks = map[netPos][]netPos{
	{0, 0}: {{0, 6}, {1, 6}},
	{1, 0}: {{0, 6}, {1, 6}, {2, 6}},
	{2, 0}: {{1, 6}, {2, 6}},
}

// leftLinks joins the left column of a net to the right column of the net
// to its left.
var leftLinks = map[netPos][]netPos{
	{0, 1}: {{4, 1}, {4, 3}},
	{0, 3}: {{4, 1}, {4, 3}, {4, 5}},
	{0, 5}: {{4, 3}, {4, 5}},
}

var (
	seamTop    = Coord{U: Halfway(0)}
	seamLeft   = Coord{V: Halfway(0)}
	seamRight  = Coord{U: Whole(1), V: Halfway(0)}
	seamBottom = Coord{U: Halfway(0), V: Whole(1)}
)

func netCoord(cx, cy Half, p netPos) Coord {
	return Coord{X: cx, Y: cy, U: Whole(p.u), V: Whole(p.v)}
}

func seamCoord(jx, jy Half, seam Coord) Coord {
	return Coord{X: jx, Y: jy, U: seam.U, V: seam.V}
}

func cylinderCoordinates(d Dims) []Coord {
	coords := make([]Coord, 0, 25*d.Width*d.Height+4*d.Width*d.Height)
	for cy := range d.Height {
		for cx := range d.Width {
			for v, n := range netRows {
				for u := range n {
					coords = append(coords, netCoord(Whole(cx), Whole(cy), netPos{u, v}))
				}
			}
			if cx > 0 && cy < d.Height-1 {
				jx, jy := Halfway(cx-1), Halfway(cy)
				coords = append(coords,
					seamCoord(jx, jy, seamTop),
					seamCoord(jx, jy, seamLeft),
					seamCoord(jx, jy, seamRight),
					seamCoord(jx, jy, seamBottom),
				)
			}
		}
	}
	return coords
}

func cylinderStitch(d Dims, c Coord) []Coord {
	if !c.X.IsWhole() {
		return seamStitch(c)
	}

	cx, cy := c.XY()
	p := netPos{c.U.Floor(), c.V.Floor()}

	var out []Coord
	for _, q := range netLinks[p] {
		out = append(out, netCoord(c.X, c.Y, q))
	}
	if cy > 0 {
		for _, q := range upLinks[p] {
			out = append(out, netCoord(c.X, c.Y-2, q))
		}
	}
	if cx > 0 {
		for _, q := range leftLinks[p] {
			out = append(out, netCoord(c.X-2, c.Y, q))
		}
	}

	if cy == 0 {
		return out
	}
	switch p {
	case netPos{0, 0}, netPos{0, 1}:
		// top-left corner: right and bottom seams of the junction up-left
		if cx > 0 {
			out = append(out,
				seamCoord(c.X-1, c.Y-1, seamRight),
				seamCoord(c.X-1, c.Y-1, seamBottom),
			)
		}
	case netPos{2, 0}, netPos{4, 1}:
		// top-right corner: left and bottom seams of the junction up-right
		if cx < d.Width-1 {
			out = append(out,
				seamCoord(c.X+1, c.Y-1, seamLeft),
				seamCoord(c.X+1, c.Y-1, seamBottom),
			)
		}
	}
	return out
}

// seamStitch links a seam cell to the bottom corners of the two cylinders
// above its junction and to the seams of the same junction built before it.
func seamStitch(c Coord) []Coord {
	ul := func(p netPos) Coord { return netCoord(c.X-1, c.Y-1, p) }
	ur := func(p netPos) Coord { return netCoord(c.X+1, c.Y-1, p) }
	seam := func(s Coord) Coord { return seamCoord(c.X, c.Y, s) }

	switch (Coord{U: c.U, V: c.V}) {
	case seamTop:
		return []Coord{ul(netPos{2, 6}), ul(netPos{4, 5}), ur(netPos{0, 6}), ur(netPos{0, 5})}
	case seamLeft:
		return []Coord{seam(seamTop), ul(netPos{2, 6}), ul(netPos{4, 5})}
	case seamRight:
		return []Coord{seam(seamTop), seam(seamLeft), ur(netPos{0, 6}), ur(netPos{0, 5})}
	case seamBottom:
		return []Coord{seam(seamTop), seam(seamLeft), seam(seamRight)}
	}
	return nil
}
