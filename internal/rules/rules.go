// Package rules decides whether a single move is legal motion for the moving piece.
// It knows piece geometry and capture rules only; check, castling, en passant and
// promotion are not modelled.
package rules

import "github.com/park285/Cheese-Board/internal/board"

const (
	whitePawnStartRow = 6
	blackPawnStartRow = 1
)

// IsLegal reports whether moving the piece on from to to is legal for active.
// Off-board squares, an origin that is empty or holds a piece of the other side, and
// zero-distance moves are illegal.
func IsLegal(b board.Board, active board.Color, from, to board.Square) bool {
	if !from.Valid() || !to.Valid() || from == to {
		return false
	}
	piece, ok := b.At(from)
	if !ok || piece.Color != active {
		return false
	}
	target, occupied := b.At(to)
	if occupied && target.Color == active {
		return false
	}

	rowDiff := abs(to.Row - from.Row)
	colDiff := abs(to.Col - from.Col)

	switch piece.Kind {
	case board.Pawn:
		return pawnLegal(b, piece.Color, from, to, occupied)
	case board.Rook:
		return (from.Row == to.Row || from.Col == to.Col) && PathClear(b, from, to)
	case board.Knight:
		return (rowDiff == 2 && colDiff == 1) || (rowDiff == 1 && colDiff == 2)
	case board.Bishop:
		return rowDiff == colDiff && PathClear(b, from, to)
	case board.Queen:
		return (from.Row == to.Row || from.Col == to.Col || rowDiff == colDiff) && PathClear(b, from, to)
	case board.King:
		return rowDiff <= 1 && colDiff <= 1
	default:
		return false
	}
}

func pawnLegal(b board.Board, color board.Color, from, to board.Square, targetOccupied bool) bool {
	dir, startRow := -1, whitePawnStartRow
	if color == board.Black {
		dir, startRow = 1, blackPawnStartRow
	}
	step := to.Row - from.Row

	if from.Col == to.Col {
		if targetOccupied {
			return false
		}
		if step == dir {
			return true
		}
		if step == 2*dir && from.Row == startRow {
			return !b.Occupied(board.Sq(from.Row+dir, from.Col))
		}
		return false
	}
	// diagonal captures only, judged on distance alone; en passant is not supported
	return abs(step) == 1 && abs(to.Col-from.Col) == 1 && targetOccupied
}

// PathClear reports whether every square strictly between from and to is empty.
// from and to must share a row, column or diagonal; other pairs report false.
func PathClear(b board.Board, from, to board.Square) bool {
	dr, dc := to.Row-from.Row, to.Col-from.Col
	if dr != 0 && dc != 0 && abs(dr) != abs(dc) {
		return false
	}
	stepR, stepC := sign(dr), sign(dc)
	r, c := from.Row+stepR, from.Col+stepC
	for r != to.Row || c != to.Col {
		if b.Occupied(board.Sq(r, c)) {
			return false
		}
		r += stepR
		c += stepC
	}
	return true
}

// Destinations lists every square the piece on from may legally move to.
func Destinations(b board.Board, active board.Color, from board.Square) []board.Square {
	var out []board.Square
	for r := 0; r < board.Size; r++ {
		for c := 0; c < board.Size; c++ {
			to := board.Sq(r, c)
			if IsLegal(b, active, from, to) {
				out = append(out, to)
			}
		}
	}
	return out
}

// LegalMoves enumerates every legal move for the pieces of active.
func LegalMoves(b board.Board, active board.Color) []board.Move {
	var out []board.Move
	for _, from := range b.Squares(active) {
		for _, to := range Destinations(b, active, from) {
			out = append(out, board.Move{From: from, To: to})
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	if v > 0 {
		return 1
	}
	if v < 0 {
		return -1
	}
	return 0
}
