package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"

	"github.com/vancomm/polysweeper/internal/config"
	"github.com/vancomm/polysweeper/internal/middleware"
	"github.com/vancomm/polysweeper/internal/minefield"
	"github.com/vancomm/polysweeper/internal/repository"
	"github.com/vancomm/polysweeper/internal/session"
	"github.com/vancomm/polysweeper/internal/timer"
)

var ErrNotYourGame = errors.New("game belongs to another player")

type GameHandler struct {
	logger *slog.Logger
	games  *session.Manager
	repo   Repository
	limits *config.Game
	ws     *config.WebSocket
	tick   time.Duration
}

func NewGameHandler(
	logger *slog.Logger,
	games *session.Manager,
	repo Repository,
	limits *config.Game,
	ws *config.WebSocket,
) *GameHandler {
	return &GameHandler{
		logger: logger,
		games:  games,
		repo:   repo,
		limits: limits,
		ws:     ws,
		tick:   timer.DefaultTick,
	}
}

func playerID(r *http.Request) *int64 {
	claims, ok := middleware.PlayerClaims(r.Context())
	if !ok {
		return nil
	}
	id := claims.PlayerID
	return &id
}

// game looks up the game named in the path and checks that the caller may
// touch it. It writes the error response itself.
func (h GameHandler) game(w http.ResponseWriter, r *http.Request) (*session.Game, bool) {
	g, err := h.games.Get(mux.Vars(r)["id"])
	if err != nil {
		sendError(w, h.logger, http.StatusNotFound, err)
		return nil, false
	}
	if owner := g.PlayerID(); owner != nil {
		if caller := playerID(r); caller == nil || *caller != *owner {
			sendError(w, h.logger, http.StatusForbidden, ErrNotYourGame)
			return nil, false
		}
	}
	return g, true
}

func (h GameHandler) dto(g *session.Game) GameDTO {
	return GameDTO{Snapshot: g.Snapshot(), RecordID: g.RecordID()}
}

// save writes the current state of g over its stored record.
func (h GameHandler) save(ctx context.Context, g *session.Game) error {
	snap := g.Snapshot()
	params, err := repository.UpdateFromSnapshot(&snap)
	if err != nil {
		return fmt.Errorf("unable to encode game state: %w", err)
	}
	if _, err := h.repo.UpdateGameSession(ctx, g.RecordID(), params); err != nil {
		return fmt.Errorf("unable to update game session: %w", err)
	}
	return nil
}

func (h GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	cfg, err := ParseNewGameDTO(r.URL.Query(), h.limits)
	if err != nil {
		sendError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	owner := playerID(r)
	g, err := h.games.Create(cfg, owner)
	switch {
	case errors.Is(err, minefield.ErrInvalidConfig):
		sendError(w, h.logger, http.StatusBadRequest, err)
		return
	case errors.Is(err, session.ErrTooMany):
		sendError(w, h.logger, http.StatusServiceUnavailable, err)
		return
	case err != nil:
		internalError(w, h.logger, "unable to create a game", err)
		return
	}

	snap := g.Snapshot()
	record, err := h.repo.CreateGameSession(
		r.Context(), &snap, repository.CreateGameSessionParams{PlayerId: owner},
	)
	if err != nil {
		h.games.Delete(g.ID())
		internalError(w, h.logger, "unable to store game session", err)
		return
	}
	g.SetRecordID(record.GameSessionId)

	h.logger.Debug("game created",
		slog.String("id", g.ID()),
		slog.Int64("record", record.GameSessionId),
		slog.String("topology", cfg.Topology.String()),
	)
	sendStatusOrLog(w, h.logger, http.StatusCreated, h.dto(g))
}

func (h GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	g, ok := h.game(w, r)
	if !ok {
		return
	}
	sendJSONOrLog(w, h.logger, h.dto(g))
}

func (h GameHandler) Move(w http.ResponseWriter, r *http.Request) {
	g, ok := h.game(w, r)
	if !ok {
		return
	}

	move, err := ParseMoveDTO(r.URL.Query())
	if err != nil {
		sendError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	res, err := g.Apply(move)
	switch {
	case errors.Is(err, session.ErrGameOver):
		sendError(w, h.logger, http.StatusConflict, err)
		return
	case err != nil:
		sendError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if res.Changed {
		if err := h.save(r.Context(), g); err != nil {
			internalError(w, h.logger, "unable to save move", err)
			return
		}
	}
	sendJSONOrLog(w, h.logger, MoveResultDTO{Result: res, Game: h.dto(g)})
}

func (h GameHandler) Forfeit(w http.ResponseWriter, r *http.Request) {
	g, ok := h.game(w, r)
	if !ok {
		return
	}

	res := g.Forfeit()
	if err := h.save(r.Context(), g); err != nil {
		internalError(w, h.logger, "unable to save forfeit", err)
		return
	}
	sendJSONOrLog(w, h.logger, MoveResultDTO{Result: res, Game: h.dto(g)})
}

func (h GameHandler) Hint(w http.ResponseWriter, r *http.Request) {
	g, ok := h.game(w, r)
	if !ok {
		return
	}

	hint, err := g.Hint()
	if err != nil {
		sendError(w, h.logger, http.StatusConflict, err)
		return
	}
	sendJSONOrLog(w, h.logger, hint)
}

// FetchRecord returns a stored game, which outlives the live one.
func (h GameHandler) FetchRecord(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		sendError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	record, err := h.repo.FetchGameSession(r.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		internalError(w, h.logger, "unable to fetch game session", err)
		return
	}

	snap, err := record.Snapshot()
	if err != nil {
		internalError(w, h.logger, "stored game state is invalid", err)
		return
	}
	sendJSONOrLog(w, h.logger, GameDTO{Snapshot: *snap, RecordID: record.GameSessionId})
}
