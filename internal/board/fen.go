package board

import nchess "github.com/corentings/chess/v2"

// ChessBoard converts b into the chess library's board type. Row 0 maps to rank 8.
func (b Board) ChessBoard() *nchess.Board {
	m := make(map[nchess.Square]nchess.Piece, 32)
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			p := b.cells[r][c]
			if p.IsZero() {
				continue
			}
			m[Sq(r, c).ChessSquare()] = chessPiece(p)
		}
	}
	return nchess.NewBoard(m)
}

// ChessSquare maps s onto the chess library's square, row 0 being rank 8.
func (s Square) ChessSquare() nchess.Square {
	return nchess.NewSquare(nchess.File(s.Col), nchess.Rank(Size-1-s.Row))
}

// Placement returns the piece-placement field of a FEN string.
func (b Board) Placement() string { return b.ChessBoard().String() }

func chessPiece(p Piece) nchess.Piece {
	white := p.Color == White
	switch p.Kind {
	case Pawn:
		if white {
			return nchess.WhitePawn
		}
		return nchess.BlackPawn
	case Rook:
		if white {
			return nchess.WhiteRook
		}
		return nchess.BlackRook
	case Knight:
		if white {
			return nchess.WhiteKnight
		}
		return nchess.BlackKnight
	case Bishop:
		if white {
			return nchess.WhiteBishop
		}
		return nchess.BlackBishop
	case Queen:
		if white {
			return nchess.WhiteQueen
		}
		return nchess.BlackQueen
	case King:
		if white {
			return nchess.WhiteKing
		}
		return nchess.BlackKing
	default:
		return nchess.NoPiece
	}
}
