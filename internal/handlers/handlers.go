// Package handlers implements the HTTP and websocket endpoints of the game
// server.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/vancomm/polysweeper/internal/repository"
	"github.com/vancomm/polysweeper/internal/session"
)

// Repository is the storage the handlers need. *repository.Queries
// implements it.
type Repository interface {
	CreatePlayer(ctx context.Context, params repository.CreatePlayerParams) (*repository.Player, error)
	FetchPlayer(ctx context.Context, username string) (*repository.Player, error)
	CreateGameSession(ctx context.Context, snap *session.Snapshot, params repository.CreateGameSessionParams) (*repository.GameSession, error)
	FetchGameSession(ctx context.Context, gameSessionId int64) (*repository.GameSession, error)
	UpdateGameSession(ctx context.Context, gameSessionId int64, params repository.UpdateGameSessionParams) (*repository.GameSession, error)
	GetHighscores(ctx context.Context, filter repository.HighscoreFilter) ([]repository.Highscore, error)
}

func sendJSON(w http.ResponseWriter, status int, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(payload)
	return err
}

func sendJSONOrLog(w http.ResponseWriter, logger *slog.Logger, v any) {
	sendStatusOrLog(w, logger, http.StatusOK, v)
}

func sendStatusOrLog(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	if err := sendJSON(w, status, v); err != nil {
		logger.Error(
			"unable to send response",
			slog.Any("response", v),
			slog.Any("error", err),
		)
	}
}

func wrapError(err error) map[string]string {
	return map[string]string{
		"error": err.Error(),
	}
}

func sendError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	sendStatusOrLog(w, logger, status, wrapError(err))
}

func internalError(w http.ResponseWriter, logger *slog.Logger, msg string, err error) {
	w.WriteHeader(http.StatusInternalServerError)
	logger.Error(msg, slog.Any("error", err))
}
