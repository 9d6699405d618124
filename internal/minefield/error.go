package minefield

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig   = errors.New("invalid field configuration")
	ErrUnknownTopology = errors.New("unknown topology")
)

// StitchError means a topology named a neighbor that the enumeration had not
// produced yet. It is a bug in the topology, never a player error.
type StitchError struct {
	Topology Topology
	Coord    Coord
	Neighbor Coord
}

// [StitchError] implements [error]
func (e StitchError) Error() string {
	return fmt.Sprintf(
		"%s: stitching for %s returned uncreated neighbor %s",
		e.Topology, e.Coord, e.Neighbor,
	)
}
