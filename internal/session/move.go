package session

import (
	"fmt"
	"strings"

	"github.com/vancomm/polysweeper/internal/minefield"
)

type MoveKind uint8

const (
	Uncover MoveKind = iota
	Flag
	Question
	Unmark
	Cycle
)

var moveNames = [...]string{
	Uncover:  "uncover",
	Flag:     "flag",
	Question: "question",
	Unmark:   "unmark",
	Cycle:    "cycle",
}

func (k MoveKind) String() string {
	if int(k) < len(moveNames) {
		return moveNames[k]
	}
	return fmt.Sprintf("MoveKind(%d)", k)
}

// ParseMoveKind accepts full names and the one letter forms used by the
// websocket protocol.
func ParseMoveKind(s string) (MoveKind, error) {
	switch strings.ToLower(s) {
	case "uncover", "open", "o":
		return Uncover, nil
	case "flag":
		return Flag, nil
	case "question", "q":
		return Question, nil
	case "unmark", "u":
		return Unmark, nil
	case "cycle", "mark", "f":
		return Cycle, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMove, s)
}

func (k MoveKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *MoveKind) UnmarshalText(b []byte) error {
	parsed, err := ParseMoveKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

type Move struct {
	Kind MoveKind
	At   minefield.Coord
}

func (m Move) String() string {
	return m.Kind.String() + " " + m.At.String()
}
