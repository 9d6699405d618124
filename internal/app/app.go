// Package app wires the handlers into an HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/vancomm/polysweeper/internal/config"
	"github.com/vancomm/polysweeper/internal/handlers"
	"github.com/vancomm/polysweeper/internal/middleware"
	"github.com/vancomm/polysweeper/internal/session"
)

// Deps are the collaborators the handlers share.
type Deps struct {
	Repo    handlers.Repository
	Games   *session.Manager
	Game    *config.Game
	Cookies *config.Cookies
	WS      *config.WebSocket
}

type App struct {
	logger  *slog.Logger
	cfg     *config.App
	deps    Deps
	router  *mux.Router
	handler http.Handler
}

func New(logger *slog.Logger, cfg *config.App, deps Deps) *App {
	a := &App{
		logger: logger,
		cfg:    cfg,
		deps:   deps,
		router: mux.NewRouter(),
	}
	a.loadRoutes()
	a.handler = middleware.Wrap(
		a.router,
		middleware.Auth(logger, deps.Cookies),
		middleware.Cors(cfg.AllowedOrigins),
		middleware.Logging(logger),
	)
	return a
}

func (a *App) Handler() http.Handler { return a.handler }

// Start serves until ctx is done, then shuts the server down gracefully.
func (a *App) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:        a.cfg.Addr(),
		Handler:     a.handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to listen and serve: %w", err)
		}
		close(errCh)
	}()

	a.logger.Info("server listening",
		slog.String("addr", a.cfg.Addr()),
		slog.String("base_path", a.cfg.BasePath),
	)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	sCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(sCtx); err != nil {
		return fmt.Errorf("unable to shut down: %w", err)
	}
	return nil
}
