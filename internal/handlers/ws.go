package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vancomm/polysweeper/internal/minefield"
	"github.com/vancomm/polysweeper/internal/session"
	"github.com/vancomm/polysweeper/internal/solver"
	"github.com/vancomm/polysweeper/internal/timer"
)

// Websocket commands, one per line:
//
//	g            send the state without moving
//	o x y [u v]  uncover
//	f x y [u v]  cycle the mark
//	q x y [u v]  question mark
//	u x y [u v]  remove the mark
//	r            forfeit
//	h            send a hint
const (
	wsNoop    = "g"
	wsForfeit = "r"
	wsHint    = "h"
)

var ErrBadCommand = errors.New("bad command")

type ClockDTO struct {
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

type wsMessage struct {
	Type  string       `json:"type"`
	Game  *GameDTO     `json:"game,omitempty"`
	Clock *ClockDTO    `json:"clock,omitempty"`
	Hint  *solver.Hint `json:"hint,omitempty"`
	Error string       `json:"error,omitempty"`
}

// wsConn serializes writes from the game loop, the clock and the pinger.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) send(m wsMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(m)
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second))
}

func parseCoord(args []string) (minefield.Coord, error) {
	if len(args) != 2 && len(args) != 4 {
		return minefield.Coord{}, fmt.Errorf("%w: want x y or x y u v", ErrBadCommand)
	}
	var halves [4]minefield.Half
	for i, arg := range args {
		h, err := minefield.ParseHalf(arg)
		if err != nil {
			return minefield.Coord{}, fmt.Errorf("%w: %w", ErrBadCommand, err)
		}
		halves[i] = h
	}
	return minefield.Coord{X: halves[0], Y: halves[1], U: halves[2], V: halves[3]}, nil
}

// execute runs one command line against g.
func execute(g *session.Game, line string) (session.Result, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return session.Result{Status: g.Status()}, nil
	}
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case wsNoop:
		return session.Result{Status: g.Status()}, nil
	case wsForfeit:
		return g.Forfeit(), nil
	}

	kind, err := session.ParseMoveKind(cmd)
	if err != nil {
		return session.Result{}, fmt.Errorf("%w: %q", ErrBadCommand, cmd)
	}
	at, err := parseCoord(args)
	if err != nil {
		return session.Result{}, err
	}
	return g.Apply(session.Move{Kind: kind, At: at})
}

func (h GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	g, ok := h.game(w, r)
	if !ok {
		return
	}

	conn, err := h.ws.Upgrader.Upgrade(w, r, nil) // headers sent here
	if err != nil {
		h.logger.Error("unable to upgrade", slog.Any("error", err))
		return
	}
	defer conn.Close()

	logger := h.logger.With(slog.String("game", g.ID()))
	logger.Debug("established ws connection")

	if err := h.runGameLoop(r.Context(), logger, conn, g); err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			logger.Debug("ws closed")
			return
		}
		logger.Warn("error in ws loop", slog.Any("error", err))
	}
}

func (h GameHandler) runGameLoop(
	ctx context.Context, logger *slog.Logger, conn *websocket.Conn, g *session.Game,
) error {
	c := &wsConn{conn: conn}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if h.ws.ReadLimit > 0 {
		conn.SetReadLimit(h.ws.ReadLimit)
	}
	if h.ws.PingInterval > 0 {
		go h.pingLoop(ctx, logger, c)
	}

	clock := timer.New(func(mins, secs int) {
		if err := c.send(wsMessage{Type: "clock", Clock: &ClockDTO{mins, secs}}); err != nil {
			logger.Debug("unable to send clock", slog.Any("error", err))
		}
	}, timer.StartAt(g.Seconds()), timer.WithTick(h.tick))
	defer clock.Stop(context.Background())
	if g.Status() == session.Playing {
		clock.Run()
	}

	dto := h.dto(g)
	if err := c.send(wsMessage{Type: "state", Game: &dto}); err != nil {
		return fmt.Errorf("unable to write json: %w", err)
	}

	for {
		mt, buf, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if mt != websocket.TextMessage {
			return nil
		}

		status := g.Status()
		changed := false
		var cmdErr error
	LINES:
		for _, line := range strings.Split(strings.TrimSpace(string(buf)), "\n") {
			logger.Debug("\t> " + line)
			if strings.TrimSpace(line) == wsHint {
				hint, err := g.Hint()
				if err != nil {
					cmdErr = err
					break
				}
				if err := c.send(wsMessage{Type: "hint", Hint: &hint}); err != nil {
					return fmt.Errorf("unable to write json: %w", err)
				}
				continue
			}
			res, err := execute(g, line)
			if err != nil {
				cmdErr = err
				break
			}
			changed = changed || res.Changed
			if res.Status != session.Playing {
				clock.Pause()
				break LINES
			}
		}

		// a game can end without changing a cell, e.g. a forfeit with every
		// mine flagged
		if changed || g.Status() != status {
			if err := h.save(ctx, g); err != nil {
				return err
			}
		}

		if cmdErr != nil {
			if err := c.send(wsMessage{Type: "error", Error: cmdErr.Error()}); err != nil {
				return fmt.Errorf("unable to write json: %w", err)
			}
		}
		dto := h.dto(g)
		if err := c.send(wsMessage{Type: "state", Game: &dto}); err != nil {
			return fmt.Errorf("unable to write json: %w", err)
		}
	}
}

func (h GameHandler) pingLoop(ctx context.Context, logger *slog.Logger, c *wsConn) {
	ticker := time.NewTicker(h.ws.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.ping(); err != nil {
				logger.Debug("ping failed", slog.Any("error", err))
				return
			}
		}
	}
}
