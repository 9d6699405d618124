package scores

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/gob"
	"errors"
	"fmt"
	"sync"
)

// Store persists a whole score table.
type Store interface {
	Load(ctx context.Context) (*Table, error)
	Save(ctx context.Context, t *Table) error
}

var (
	ErrBadName  = fmt.Errorf("bad name for store")
	ErrNotFound = fmt.Errorf("value not found")
)

const tableKey = "scores"

// SQLiteStore is a gob encoded key/value table in a sqlite database. The
// score table lives under a single key.
type SQLiteStore struct {
	mu   sync.Mutex
	name string
	db   *sql.DB
}

func isLetter(c rune) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isLetters(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if !isLetter(c) {
			return false
		}
	}
	return true
}

// Creates the key/value table if needed. name becomes the table name and may
// only contain upper- or lowercase Latin letters.
func NewSQLiteStore(ctx context.Context, db *sql.DB, name string) (*SQLiteStore, error) {
	if !isLetters(name) {
		return nil, ErrBadName
	}

	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS `+name+` (
	key		TEXT PRIMARY KEY,
	value	BLOB
);`)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{name: name, db: db}, nil
}

// Get decodes the value stored under key into value, which must be a pointer
// or nil. A missing key yields [ErrNotFound].
func (s *SQLiteStore) Get(ctx context.Context, key string, value any) error {
	var v []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM `+s.name+` WHERE key = ?;`, key,
	).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	} else if err != nil {
		return err
	}
	if value == nil {
		return nil
	}
	return gob.NewDecoder(bytes.NewReader(v)).Decode(value)
}

// Inserts a new key-value pair or updates an existing one.
func (s *SQLiteStore) Set(ctx context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(value); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO `+s.name+` (key, value)
VALUES(?, ?)
ON CONFLICT(key)
DO UPDATE SET value=excluded.value;`,
		key, buf.Bytes())
	return err
}

func (s *SQLiteStore) Load(ctx context.Context) (*Table, error) {
	t := NewTable()
	if err := s.Get(ctx, tableKey, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *SQLiteStore) Save(ctx context.Context, t *Table) error {
	return s.Set(ctx, tableKey, t)
}
