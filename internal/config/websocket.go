package config

import (
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
)

type WebSocket struct {
	Upgrader     websocket.Upgrader
	PingInterval time.Duration
	ReadLimit    int64
}

// NewWebSocket accepts upgrades from the given origins, or from any origin
// when the list is empty.
func NewWebSocket(origins []string) (*WebSocket, error) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(origins) == 0 {
				return true
			}
			return slices.Contains(origins, r.Header.Get("Origin"))
		},
	}

	ws := &WebSocket{
		Upgrader:     upgrader,
		PingInterval: 30 * time.Second,
		ReadLimit:    512,
	}

	return ws, nil
}
