// Package session keeps the live games of the server in memory.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/polysweeper/internal/minefield"
)

var Log = logrus.New()

var (
	ErrNotFound    = errors.New("game not found")
	ErrTooMany     = errors.New("too many live games")
	ErrGameOver    = errors.New("game is over")
	ErrOutOfBounds = errors.New("no such cell")
	ErrUnknownMove = errors.New("unknown move")
)

type Option func(*Manager)

// WithLimit caps the number of live games. Zero means no cap.
func WithLimit(n int) Option {
	return func(m *Manager) { m.limit = n }
}

// WithTTL makes Sweep drop games that were not touched for d.
func WithTTL(d time.Duration) Option {
	return func(m *Manager) { m.ttl = d }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithBoardOptions passes options to every board the manager creates.
func WithBoardOptions(opts ...minefield.Option) Option {
	return func(m *Manager) { m.boardOpts = opts }
}

type Manager struct {
	mu    sync.RWMutex
	games map[string]*Game

	limit     int
	ttl       time.Duration
	now       func() time.Time
	boardOpts []minefield.Option
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		games: make(map[string]*Game),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create builds a new field and registers a game for it.
func (m *Manager) Create(cfg minefield.Config, playerID *int64) (*Game, error) {
	opts := append([]minefield.Option{minefield.WithClock(m.now)}, m.boardOpts...)
	board := minefield.New(cfg, opts...)
	if _, _, err := board.Create(); err != nil {
		return nil, err
	}

	g := &Game{
		id:       newID(),
		board:    board,
		playerID: playerID,
		now:      m.now,
	}
	g.touch()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.limit > 0 && len(m.games) >= m.limit {
		return nil, ErrTooMany
	}
	m.games[g.id] = g

	Log.WithFields(logrus.Fields{
		"game":     g.id,
		"topology": cfg.Topology.String(),
		"cells":    board.Len(),
	}).Info("game created")
	return g, nil
}

func (m *Manager) Get(id string) (*Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	return g, nil
}

func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.games, id)
	m.mu.Unlock()
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

// Sweep drops games idle for longer than the TTL and returns how many went.
func (m *Manager) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, g := range m.games {
		if g.idle(now) > m.ttl {
			delete(m.games, id)
			n++
		}
	}
	if n > 0 {
		Log.WithField("count", n).Info("swept idle games")
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Sweep()
		}
	}
}
