package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/park285/Cheese-Board/pkg/chessdto"
)

const createSnapshotsTable = `
	CREATE TABLE IF NOT EXISTS chess_snapshots (
		id          BIGSERIAL PRIMARY KEY,
		session_id  TEXT        NOT NULL,
		player_id   TEXT        NOT NULL,
		board       JSONB       NOT NULL,
		fen         TEXT        NOT NULL,
		taken_at    TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS chess_snapshots_player_idx ON chess_snapshots (player_id, taken_at DESC, id DESC);`

// PostgresStore appends snapshots to the chess_snapshots table.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects, pings and ensures the schema exists.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for postgres history")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := NewPostgresStore(db)
	if err := s.EnsureSchema(pctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createSnapshotsTable); err != nil {
		return fmt.Errorf("create chess_snapshots: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *PostgresStore) Append(ctx context.Context, snap Snapshot) error {
	snap, err := normalize(snap)
	if err != nil {
		return err
	}
	rec := Encode(snap)
	grid, err := json.Marshal(rec.Board)
	if err != nil {
		return fmt.Errorf("marshal board: %w", err)
	}
	const query = `
		INSERT INTO chess_snapshots (session_id, player_id, board, fen, taken_at)
		VALUES ($1, $2, $3::jsonb, $4, $5)`
	if _, err := s.db.ExecContext(ctx, query, snap.SessionID, snap.PlayerID, grid, rec.FEN, snap.Timestamp.UTC()); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

func (s *PostgresStore) Latest(ctx context.Context, playerID string) (*Snapshot, error) {
	list, err := s.List(ctx, playerID, 1)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

func (s *PostgresStore) List(ctx context.Context, playerID string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	const query = `
		SELECT session_id, player_id, board, taken_at
		FROM chess_snapshots
		WHERE player_id = $1
		ORDER BY taken_at DESC, id DESC
		LIMIT $2`
	rows, err := s.db.QueryContext(ctx, query, strings.TrimSpace(playerID), limit)
	if err != nil {
		return nil, fmt.Errorf("select snapshots: %w", err)
	}
	defer rows.Close()

	out := make([]Snapshot, 0, limit)
	for rows.Next() {
		var (
			snap    Snapshot
			rawGrid []byte
			grid    chessdto.Grid
		)
		if err := rows.Scan(&snap.SessionID, &snap.PlayerID, &rawGrid, &snap.Timestamp); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if err := json.Unmarshal(rawGrid, &grid); err != nil {
			return nil, fmt.Errorf("unmarshal board: %w", err)
		}
		if snap.Board, err = DecodeGrid(grid); err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return out, nil
}
