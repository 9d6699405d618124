package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vancomm/polysweeper/internal/minefield"
)

// Game holds field defaults and limits shared by the server and the
// terminal front end.
type Game struct {
	Default     minefield.Config
	MaxWidth    int
	MaxHeight   int
	MaxSessions int
	SessionTTL  time.Duration
	ScoresPath  string
	ScoresTable string
}

func newGameViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("MINES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("topology", minefield.Square.String())
	v.SetDefault("difficulty", "")
	v.SetDefault("width", 9)
	v.SetDefault("height", 9)
	v.SetDefault("mines", 10)
	v.SetDefault("max_width", 100)
	v.SetDefault("max_height", 100)
	v.SetDefault("max_sessions", 10000)
	v.SetDefault("session_ttl", "24h")
	v.SetDefault("scores.path", "scores.db")
	v.SetDefault("scores.table", "scores")
	return v
}

// NewGame layers built-in defaults, the optional config file and MINES_*
// env variables, in increasing priority. A difficulty name overrides the
// width, height and mines settings.
func NewGame(file string) (*Game, error) {
	v := newGameViper()
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read game config: %w", err)
		}
	}

	topology, err := minefield.ParseTopology(v.GetString("topology"))
	if err != nil {
		return nil, err
	}
	field := minefield.Config{
		Topology: topology,
		Width:    v.GetInt("width"),
		Height:   v.GetInt("height"),
		Mines:    v.GetInt("mines"),
	}
	if name := v.GetString("difficulty"); name != "" {
		d, err := minefield.ParseDifficulty(name)
		if err != nil {
			return nil, err
		}
		field = d.Config(topology)
	}

	g := &Game{
		Default:     field,
		MaxWidth:    v.GetInt("max_width"),
		MaxHeight:   v.GetInt("max_height"),
		MaxSessions: v.GetInt("max_sessions"),
		SessionTTL:  v.GetDuration("session_ttl"),
		ScoresPath:  v.GetString("scores.path"),
		ScoresTable: v.GetString("scores.table"),
	}
	if err := g.Check(field); err != nil {
		return nil, fmt.Errorf("bad default field: %w", err)
	}
	return g, nil
}

// Check rejects fields outside the configured limits.
func (g *Game) Check(c minefield.Config) error {
	if c.Width < 1 || c.Height < 1 || c.Width > g.MaxWidth || c.Height > g.MaxHeight {
		return fmt.Errorf(
			"%w: %dx%d is outside 1x1..%dx%d",
			minefield.ErrInvalidConfig, c.Width, c.Height, g.MaxWidth, g.MaxHeight,
		)
	}
	if c.Mines < 0 {
		return fmt.Errorf("%w: negative mine count", minefield.ErrInvalidConfig)
	}
	return nil
}
