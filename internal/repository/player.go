package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// Player is a registered account. Game sessions and high scores refer to it
// by PlayerId; anonymous games have none.
type Player struct {
	PlayerId     int64
	Username     string
	PasswordHash []byte
	CreatedAt    pgtype.Timestamptz
	UpdatedAt    pgtype.Timestamptz
}

const playerColumns = "player_id, username, password_hash, created_at, updated_at"

type CreatePlayerParams struct {
	Username     string
	PasswordHash []byte // bcrypt
}

// CreatePlayer registers a new account. A taken username fails with a
// unique_violation that handlers report as a conflict.
func (q *Queries) CreatePlayer(ctx context.Context, params CreatePlayerParams) (*Player, error) {
	rows, _ := q.db.Query(ctx, `
	INSERT INTO player (username, password_hash)
	VALUES (@username, @passwordHash)
	RETURNING `+playerColumns,
		pgx.NamedArgs{
			"username":     params.Username,
			"passwordHash": params.PasswordHash,
		},
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[Player])
}

// FetchPlayer looks an account up for login. An unknown username yields
// pgx.ErrNoRows.
func (q *Queries) FetchPlayer(ctx context.Context, username string) (*Player, error) {
	rows, _ := q.db.Query(ctx,
		"SELECT "+playerColumns+" FROM player WHERE username = @username",
		pgx.NamedArgs{"username": username},
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[Player])
}
