package minefield

import (
	"fmt"
	"strings"
)

type Config struct {
	Topology Topology `json:"topology"`
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	Mines    int      `json:"mines"`
}

func (c Config) Dims() Dims {
	return Dims{Width: c.Width, Height: c.Height}
}

// Mode identifies a game mode for high score tables.
func (c Config) Mode() ModeKey {
	return ModeKey{
		Topology: c.Topology.String(),
		Width:    c.Width,
		Height:   c.Height,
		Mines:    c.Mines,
	}
}

// ModeKey partitions high score tables.
type ModeKey struct {
	Topology string `json:"topology"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Mines    int    `json:"mines"`
}

func (m ModeKey) Name() string {
	for _, d := range []Difficulty{Beginner, Intermediate, Difficult} {
		c := d.Config(Square)
		if m.Width == c.Width && m.Height == c.Height && m.Mines == c.Mines {
			return d.String()
		}
	}
	return fmt.Sprintf("Custom (%dx%d;%d)", m.Width, m.Height, m.Mines)
}

func (m ModeKey) String() string {
	return fmt.Sprintf("%s %dx%d(%d)", m.Topology, m.Width, m.Height, m.Mines)
}

type Difficulty uint8

const (
	Beginner Difficulty = iota
	Intermediate
	Difficult
)

func (d Difficulty) String() string {
	switch d {
	case Beginner:
		return "Beginner"
	case Intermediate:
		return "Intermediate"
	default:
		return "Difficult"
	}
}

func (d Difficulty) Config(t Topology) Config {
	switch d {
	case Beginner:
		return Config{Topology: t, Width: 9, Height: 9, Mines: 10}
	case Intermediate:
		return Config{Topology: t, Width: 16, Height: 16, Mines: 40}
	default:
		return Config{Topology: t, Width: 30, Height: 16, Mines: 99}
	}
}

func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(s) {
	case "b", "begin", "beginner", "e", "easy":
		return Beginner, nil
	case "i", "inter", "intermediate", "m", "med", "medium":
		return Intermediate, nil
	case "d", "dif", "diff", "difficult", "h", "hard":
		return Difficult, nil
	}
	return 0, fmt.Errorf("unknown difficulty %q", s)
}
