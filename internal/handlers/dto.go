package handlers

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"

	"github.com/gorilla/schema"

	"github.com/vancomm/polysweeper/internal/config"
	"github.com/vancomm/polysweeper/internal/minefield"
	"github.com/vancomm/polysweeper/internal/repository"
	"github.com/vancomm/polysweeper/internal/session"
)

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	dec.RegisterConverter(minefield.Half(0), func(s string) reflect.Value {
		h, err := minefield.ParseHalf(s)
		if err != nil {
			return reflect.Value{}
		}
		return reflect.ValueOf(h)
	})
	dec.RegisterConverter(minefield.Square, func(s string) reflect.Value {
		t, err := minefield.ParseTopology(s)
		if err != nil {
			return reflect.Value{}
		}
		return reflect.ValueOf(t)
	})
	dec.RegisterConverter(session.Uncover, func(s string) reflect.Value {
		k, err := session.ParseMoveKind(s)
		if err != nil {
			return reflect.Value{}
		}
		return reflect.ValueOf(k)
	})
	return dec
}

type NewGameDTO struct {
	Topology   minefield.Topology `schema:"topology"`
	Difficulty string             `schema:"difficulty"`
	Width      int                `schema:"width"`
	Height     int                `schema:"height"`
	MineCount  int                `schema:"mine_count"`
}

// ParseNewGameDTO fills the fields missing from src with the configured
// defaults. A difficulty overrides width, height and mine count.
func ParseNewGameDTO(src url.Values, limits *config.Game) (minefield.Config, error) {
	def := limits.Default
	dto := NewGameDTO{
		Topology:  def.Topology,
		Width:     def.Width,
		Height:    def.Height,
		MineCount: def.Mines,
	}
	if err := decoder.Decode(&dto, src); err != nil {
		return minefield.Config{}, err
	}

	cfg := minefield.Config{
		Topology: dto.Topology,
		Width:    dto.Width,
		Height:   dto.Height,
		Mines:    dto.MineCount,
	}
	if dto.Difficulty != "" {
		d, err := minefield.ParseDifficulty(dto.Difficulty)
		if err != nil {
			return minefield.Config{}, err
		}
		cfg = d.Config(dto.Topology)
	}
	if err := limits.Check(cfg); err != nil {
		return minefield.Config{}, err
	}
	return cfg, nil
}

type MoveDTO struct {
	Kind session.MoveKind `schema:"move,required"`
	X    minefield.Half   `schema:"x,required"`
	Y    minefield.Half   `schema:"y,required"`
	U    minefield.Half   `schema:"u"`
	V    minefield.Half   `schema:"v"`
}

func ParseMoveDTO(src url.Values) (session.Move, error) {
	var dto MoveDTO
	if err := decoder.Decode(&dto, src); err != nil {
		return session.Move{}, err
	}
	return session.Move{
		Kind: dto.Kind,
		At:   minefield.Coord{X: dto.X, Y: dto.Y, U: dto.U, V: dto.V},
	}, nil
}

type ModeDTO struct {
	Topology  minefield.Topology `schema:"topology,required"`
	Width     int                `schema:"width,required"`
	Height    int                `schema:"height,required"`
	MineCount int                `schema:"mine_count,required"`
}

type HighscoreDTO struct {
	Username string `schema:"username"`
	Limit    int    `schema:"limit"`
}

var ErrPartialMode = errors.New("topology, width, height and mine_count go together")

func ParseHighscoreFilter(src url.Values) (repository.HighscoreFilter, error) {
	var filter repository.HighscoreFilter

	var dto HighscoreDTO
	if err := decoder.Decode(&dto, src); err != nil {
		return filter, err
	}
	if dto.Username != "" {
		filter.Username = &dto.Username
	}
	if dto.Limit < 0 {
		return filter, fmt.Errorf("negative limit %d", dto.Limit)
	}
	filter.Limit = dto.Limit

	if src.Has("topology") || src.Has("width") || src.Has("height") || src.Has("mine_count") {
		var mode ModeDTO
		if err := decoder.Decode(&mode, src); err != nil {
			return filter, fmt.Errorf("%w: %w", ErrPartialMode, err)
		}
		key := minefield.Config{
			Topology: mode.Topology,
			Width:    mode.Width,
			Height:   mode.Height,
			Mines:    mode.MineCount,
		}.Mode()
		filter.Mode = &key
	}
	return filter, nil
}

// GameDTO is a game as the API shows it.
type GameDTO struct {
	session.Snapshot
	RecordID int64 `json:"record_id,omitempty"`
}

type MoveResultDTO struct {
	Result session.Result `json:"result"`
	Game   GameDTO        `json:"game"`
}
