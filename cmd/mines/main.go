package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/chzyer/readline"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/polysweeper/internal/cli"
	"github.com/vancomm/polysweeper/internal/config"
	"github.com/vancomm/polysweeper/internal/minefield"
	"github.com/vancomm/polysweeper/internal/scores"
	"github.com/vancomm/polysweeper/internal/solver"
)

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func main() {
	configFile := flag.String("config", os.Getenv("MINES_CONFIG"), "game config file")
	topology := flag.String("topology", "", "field topology, overrides the config")
	difficulty := flag.String("difficulty", "", "beginner, intermediate or difficult")
	flag.Parse()

	_ = godotenv.Load()

	level := slog.LevelWarn
	if config.Development() {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level}))

	// the library loggers would draw over the prompt
	for _, l := range []*logrus.Logger{cli.Log, scores.Log, minefield.Log, solver.Log} {
		l.SetLevel(logrus.WarnLevel)
	}

	if err := run(*configFile, *topology, *difficulty); err != nil {
		logger.Error("mines failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func fieldConfig(cfg minefield.Config, topology, difficulty string) (minefield.Config, error) {
	if topology != "" {
		t, err := minefield.ParseTopology(topology)
		if err != nil {
			return cfg, err
		}
		cfg.Topology = t
	}
	if difficulty != "" {
		d, err := minefield.ParseDifficulty(difficulty)
		if err != nil {
			return cfg, err
		}
		cfg = d.Config(cfg.Topology)
	}
	return cfg, cli.Playable(cfg.Topology, cfg.Width, cfg.Height)
}

func run(configFile, topology, difficulty string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	gameCfg, err := config.NewGame(configFile)
	if err != nil {
		return err
	}
	field, err := fieldConfig(gameCfg.Default, topology, difficulty)
	if err != nil {
		return err
	}

	db, err := sql.Open("sqlite3", gameCfg.ScoresPath)
	if err != nil {
		return fmt.Errorf("unable to open score database: %w", err)
	}
	defer db.Close()

	store, err := scores.NewSQLiteStore(ctx, db, gameCfg.ScoresTable)
	if err != nil {
		return fmt.Errorf("unable to prepare score table: %w", err)
	}
	keeper, err := scores.NewKeeper(ctx, store, "cli")
	if err != nil {
		return fmt.Errorf("unable to read scores: %w", err)
	}

	l, err := readline.NewEx(&readline.Config{
		Prompt:          "Enter command: ",
		HistoryFile:     filepath.Join(os.TempDir(), "mines.history"),
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return err
	}
	defer l.Close()

	game := cli.NewGame(minefield.New(field), keeper, l, l.Stdout())
	if err := game.Run(ctx); err != nil {
		return err
	}
	fmt.Fprintln(l.Stdout(), "Quitting")
	return nil
}
