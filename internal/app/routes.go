package app

import (
	"net/http"

	"github.com/vancomm/polysweeper/internal/handlers"
)

func (a *App) loadRoutes() {
	router := a.router
	if a.cfg.BasePath != "" {
		router = router.PathPrefix(a.cfg.BasePath).Subrouter()
	}

	game := handlers.NewGameHandler(a.logger, a.deps.Games, a.deps.Repo, a.deps.Game, a.deps.WS)
	auth := handlers.NewAuth(a.logger, a.deps.Repo, a.deps.Cookies)
	highscores := handlers.NewHighscores(a.logger, a.deps.Repo)

	router.Methods(http.MethodPost).Path("/game").HandlerFunc(game.NewGame)
	router.Methods(http.MethodGet).Path("/game/{id}").HandlerFunc(game.Fetch)
	router.Methods(http.MethodPost).Path("/game/{id}/move").HandlerFunc(game.Move)
	router.Methods(http.MethodPost).Path("/game/{id}/forfeit").HandlerFunc(game.Forfeit)
	router.Methods(http.MethodGet).Path("/game/{id}/hint").HandlerFunc(game.Hint)
	router.Methods(http.MethodGet).Path("/game/{id}/connect").HandlerFunc(game.ConnectWS)
	router.Methods(http.MethodGet).Path("/record/{id:[0-9]+}").HandlerFunc(game.FetchRecord)
	router.Methods(http.MethodGet).Path("/highscores").HandlerFunc(highscores.Fetch)

	router.Methods(http.MethodPost).Path("/register").HandlerFunc(auth.Register)
	router.Methods(http.MethodPost).Path("/login").HandlerFunc(auth.Login)
	router.Methods(http.MethodPost).Path("/logout").HandlerFunc(auth.Logout)
	router.Methods(http.MethodGet).Path("/status").HandlerFunc(auth.Status)

	router.Methods(http.MethodGet).Path("/health").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}
