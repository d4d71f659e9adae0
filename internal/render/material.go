package render

import (
	"fmt"

	nchess "github.com/corentings/chess/v2"
)

var pieceValues = map[nchess.PieceType]int{
	nchess.Pawn:   1,
	nchess.Knight: 3,
	nchess.Bishop: 3,
	nchess.Rook:   5,
	nchess.Queen:  9,
}

// MaterialScore is the summed piece value per side; kings count zero.
type MaterialScore struct {
	White int
	Black int
}

func (m MaterialScore) Diff() int { return m.White - m.Black }

func Material(board *nchess.Board) MaterialScore {
	var m MaterialScore
	if board == nil {
		return m
	}
	for _, piece := range board.SquareMap() {
		v := pieceValues[piece.Type()]
		switch piece.Color() {
		case nchess.White:
			m.White += v
		case nchess.Black:
			m.Black += v
		}
	}
	return m
}

func formatMaterialDiff(m MaterialScore) string {
	diff := m.Diff()
	if diff == 0 {
		return "0"
	}
	return fmt.Sprintf("%+d", diff)
}
