package handlers

import (
	"log/slog"
	"net/http"

	"github.com/samber/lo"

	"github.com/vancomm/polysweeper/internal/repository"
)

type Highscores struct {
	logger *slog.Logger
	repo   Repository
}

func NewHighscores(logger *slog.Logger, repo Repository) *Highscores {
	return &Highscores{logger: logger, repo: repo}
}

func (h Highscores) Fetch(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseHighscoreFilter(r.URL.Query())
	if err != nil {
		sendError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	highscores, err := h.repo.GetHighscores(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to fetch highscores",
			slog.Any("error", err), slog.Any("filter", filter))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	sendJSONOrLog(w, h.logger, lo.Ternary(highscores == nil, []repository.Highscore{}, highscores))
}
