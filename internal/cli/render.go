package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vancomm/polysweeper/internal/minefield"
)

var ErrNoLayout = errors.New("topology has no terminal layout")

// Playable reports whether the terminal can draw fields of topology t with
// the given dimensions.
func Playable(t minefield.Topology, width, height int) error {
	if t == minefield.Cylinder {
		return fmt.Errorf("%w: %s", ErrNoLayout, t)
	}
	w, h := t.DisplaySize(minefield.Dims{Width: width, Height: height})
	if w < 1 || h < 1 {
		return fmt.Errorf("%w: %dx%d is empty", minefield.ErrInvalidConfig, width, height)
	}
	if w > len(Columns) {
		return fmt.Errorf("%w: %s needs %d columns, at most %d fit", ErrNoLayout, t, w, len(Columns))
	}
	return nil
}

func octagonCorner(x, y, w, h int) string {
	switch {
	case x == 0 && y == 0:
		return "┌"
	case x == w-1 && y == 0:
		return "┐"
	case x == 0 && y == h-1:
		return "└"
	case x == w-1 && y == h-1:
		return "┘"
	case x == 0:
		return "├"
	case y == 0:
		return "┬"
	case x == w-1:
		return "┤"
	case y == h-1:
		return "┴"
	}
	return "┼"
}

// Icon is how the terminal shows a cell.
func Icon(b *minefield.Board, c minefield.Coord) string {
	switch t := b.Token(c); t {
	case minefield.TokenEmpty:
		return " "
	case minefield.TokenCovered:
		if b.Topology() == minefield.FlatOctagon {
			x, y := c.XY()
			w, h := b.Size()
			return octagonCorner(x, y, w, h)
		}
		return "▯"
	case minefield.TokenFlagged:
		return "⚑"
	case minefield.TokenQuestion:
		return "?"
	case minefield.TokenMine:
		return "*"
	default:
		// up to 12 neighbors on a triangle field
		return strconv.FormatInt(int64(t), 16)
	}
}

// Render draws the clock and mine counter, the column letters and one line
// per display row.
func Render(w io.Writer, b *minefield.Board) error {
	width, height := b.Size()

	mins, secs := b.MinSecs()
	clock := fmt.Sprintf("%02d:%02d", mins, secs)
	mines := fmt.Sprintf("%03d", b.MinesRemaining())
	gap := max(width-len(clock)-len(mines)+1, 1)

	var sb strings.Builder
	sb.WriteString(clock + strings.Repeat(" ", gap) + mines + "\n")

	label := len(strconv.Itoa(height - 1))
	sb.WriteString(strings.Repeat(" ", label))
	for x := range width {
		if x < len(Columns) {
			sb.WriteByte(Columns[x])
		} else {
			sb.WriteByte('#')
		}
	}
	sb.WriteByte('\n')

	for y := range height {
		fmt.Fprintf(&sb, "%*d", label, y)
		for x := range width {
			sb.WriteString(Icon(b, minefield.At(x, y)))
		}
		sb.WriteByte('\n')
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
