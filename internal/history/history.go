// Package history persists board snapshots taken after each completed move.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/park285/Cheese-Board/internal/board"
	"github.com/park285/Cheese-Board/pkg/chessdto"
)

var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Snapshot is an immutable record of a board at one point in time.
type Snapshot struct {
	SessionID string
	Board     board.Board
	Timestamp time.Time
	PlayerID  string
}

// Store is the persistence collaborator. Latest returns (nil, nil) when the player has
// no history. List returns newest first; limit <= 0 means the store default.
type Store interface {
	Append(ctx context.Context, snap Snapshot) error
	Latest(ctx context.Context, playerID string) (*Snapshot, error)
	List(ctx context.Context, playerID string, limit int) ([]Snapshot, error)
}

const defaultListLimit = 20

// normalize trims the ids every store keys on and rejects incomplete snapshots.
func normalize(snap Snapshot) (Snapshot, error) {
	snap.SessionID = strings.TrimSpace(snap.SessionID)
	snap.PlayerID = strings.TrimSpace(snap.PlayerID)
	if snap.SessionID == "" || snap.PlayerID == "" {
		return Snapshot{}, ErrInvalidSnapshot
	}
	if snap.Timestamp.IsZero() {
		return Snapshot{}, fmt.Errorf("%w: zero timestamp", ErrInvalidSnapshot)
	}
	return snap, nil
}

// Encode converts a snapshot into its wire record.
func Encode(snap Snapshot) chessdto.SnapshotRecord {
	return chessdto.SnapshotRecord{
		SessionID: snap.SessionID,
		Board:     EncodeGrid(snap.Board),
		Timestamp: snap.Timestamp.UTC().Format(time.RFC3339Nano),
		PlayerID:  snap.PlayerID,
		FEN:       snap.Board.Placement(),
	}
}

// Decode is the inverse of Encode. Unknown kinds or colors are rejected.
func Decode(rec chessdto.SnapshotRecord) (Snapshot, error) {
	ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(rec.Timestamp))
	if err != nil {
		return Snapshot{}, fmt.Errorf("parse timestamp: %w", err)
	}
	b, err := DecodeGrid(rec.Board)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{SessionID: rec.SessionID, Board: b, Timestamp: ts, PlayerID: rec.PlayerID}, nil
}

func EncodeGrid(b board.Board) chessdto.Grid {
	var g chessdto.Grid
	cells := b.Grid()
	for r := range cells {
		for c, p := range cells[r] {
			if p.IsZero() {
				continue
			}
			g[r][c] = &chessdto.Piece{Kind: string(p.Kind), Color: string(p.Color)}
		}
	}
	return g
}

func DecodeGrid(g chessdto.Grid) (board.Board, error) {
	var cells [board.Size][board.Size]board.Piece
	for r := range g {
		for c, p := range g[r] {
			if p == nil {
				continue
			}
			kind, err := board.ParseKind(p.Kind)
			if err != nil {
				return board.Board{}, fmt.Errorf("square (%d,%d): %w", r, c, err)
			}
			color, err := board.ParseColor(p.Color)
			if err != nil {
				return board.Board{}, fmt.Errorf("square (%d,%d): %w", r, c, err)
			}
			cells[r][c] = board.Piece{Kind: kind, Color: color}
		}
	}
	return board.FromGrid(cells), nil
}
