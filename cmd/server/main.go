package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/polysweeper/internal/app"
	"github.com/vancomm/polysweeper/internal/config"
	"github.com/vancomm/polysweeper/internal/database"
	"github.com/vancomm/polysweeper/internal/minefield"
	"github.com/vancomm/polysweeper/internal/repository"
	"github.com/vancomm/polysweeper/internal/session"
	"github.com/vancomm/polysweeper/internal/solver"
	"github.com/vancomm/polysweeper/internal/timer"
)

const sweepInterval = time.Minute

func main() {
	configFile := flag.String("config", os.Getenv("MINES_CONFIG"), "game config file")
	flag.Parse()

	// a missing .env is fine outside development
	envErr := godotenv.Load()

	var handler slog.Handler = slog.NewJSONHandler(os.Stderr, nil)
	if config.Development() {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level: slog.LevelDebug,
		})
		for _, l := range []*logrus.Logger{minefield.Log, session.Log, solver.Log, timer.Log} {
			l.SetLevel(logrus.DebugLevel)
		}
	}
	logger := slog.New(handler)
	if envErr != nil {
		logger.Debug("no .env loaded", slog.Any("error", envErr))
	}

	if err := run(logger, *configFile); err != nil {
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, configFile string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	appCfg, err := config.NewApp()
	if err != nil {
		return err
	}
	gameCfg, err := config.NewGame(configFile)
	if err != nil {
		return err
	}
	jwt, err := config.NewJWT()
	if err != nil {
		return err
	}
	cookies, err := config.NewCookies(jwt)
	if err != nil {
		return err
	}
	ws, err := config.NewWebSocket(appCfg.AllowedOrigins)
	if err != nil {
		return err
	}

	db, err := database.Connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	games := session.NewManager(
		session.WithLimit(gameCfg.MaxSessions),
		session.WithTTL(gameCfg.SessionTTL),
	)

	server := app.New(logger, appCfg, app.Deps{
		Repo:    repository.New(db),
		Games:   games,
		Game:    gameCfg,
		Cookies: cookies,
		WS:      ws,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Start(ctx) })
	g.Go(func() error { return games.Run(ctx, sweepInterval) })
	return g.Wait()
}
