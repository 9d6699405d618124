package repository

import (
	"bytes"
	"context"
	"encoding/gob"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vancomm/polysweeper/internal/session"
)

// GameSession is a stored game. State holds the gob encoded snapshot taken
// on the last update.
type GameSession struct {
	GameSessionId int64
	PlayerId      *int64
	Topology      string
	Width         int
	Height        int
	MineCount     int
	Status        string
	StartedAt     pgtype.Timestamptz
	EndedAt       pgtype.Timestamptz
	State         []byte
	CreatedAt     pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
}

func EncodeState(snap *session.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeState(state []byte) (*session.Snapshot, error) {
	var snap session.Snapshot
	if err := gob.NewDecoder(bytes.NewReader(state)).Decode(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s GameSession) Snapshot() (*session.Snapshot, error) {
	return DecodeState(s.State)
}

type CreateGameSessionParams struct {
	PlayerId *int64
}

func (p CreateGameSessionParams) UpdateArgs(args *pgx.NamedArgs) *pgx.NamedArgs {
	(*args)["player_id"] = p.PlayerId
	return args
}

func (q Queries) CreateGameSession(
	ctx context.Context, snap *session.Snapshot, params CreateGameSessionParams,
) (*GameSession, error) {
	state, err := EncodeState(snap)
	if err != nil {
		return nil, err
	}

	args := pgx.NamedArgs{
		"topology":   snap.Topology.String(),
		"width":      snap.Width,
		"height":     snap.Height,
		"mine_count": snap.Mines,
		"status":     snap.Status.String(),
		"started_at": time.UnixMilli(snap.StartedAt),
		"state":      state,
	}
	params.UpdateArgs(&args)

	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO game_session (
			player_id, topology, width, height, mine_count, status, started_at, state
		)
		VALUES (
			@player_id, @topology, @width, @height, @mine_count, @status, @started_at, @state
		)
		RETURNING *;`,
		args,
	)
	return pgx.CollectExactlyOneRow(
		rows, pgx.RowToAddrOfStructByName[GameSession],
	)
}

func (q Queries) FetchGameSession(ctx context.Context, gameSessionId int64) (*GameSession, error) {
	rows, _ := q.db.Query(
		ctx,
		"SELECT * FROM game_session WHERE game_session_id = $1",
		gameSessionId,
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
}

type UpdateGameSessionParams struct {
	Status  *session.Status
	EndedAt *time.Time
	State   *[]byte
}

// UpdateFromSnapshot fills every field from snap.
func UpdateFromSnapshot(snap *session.Snapshot) (UpdateGameSessionParams, error) {
	state, err := EncodeState(snap)
	if err != nil {
		return UpdateGameSessionParams{}, err
	}
	p := UpdateGameSessionParams{Status: &snap.Status, State: &state}
	if snap.EndedAt != nil {
		endedAt := time.UnixMilli(*snap.EndedAt)
		p.EndedAt = &endedAt
	}
	return p, nil
}

func (p UpdateGameSessionParams) SetClause() (string, map[string]any) {
	parts := []string{"updated_at = now()"}
	args := make(map[string]any)

	if p.Status != nil {
		parts = append(parts, "status = @status")
		args["status"] = p.Status.String()
	}
	if p.EndedAt != nil {
		parts = append(parts, "ended_at = @ended_at")
		args["ended_at"] = *p.EndedAt
	}
	if p.State != nil {
		parts = append(parts, "state = @state")
		args["state"] = *p.State
	}

	return strings.Join(parts, ", "), args
}

func (q Queries) UpdateGameSession(
	ctx context.Context, gameSessionId int64, params UpdateGameSessionParams,
) (*GameSession, error) {
	setClause, args := params.SetClause()
	args["game_session_id"] = gameSessionId
	rows, _ := q.db.Query(
		ctx,
		"UPDATE game_session SET "+setClause+" WHERE game_session_id = @game_session_id RETURNING *",
		pgx.NamedArgs(args),
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
}
