package board

// Board maps every square to an optional piece. It is a value type: assigning a Board
// copies all 64 squares, which is how snapshots are taken.
type Board struct {
	cells [Size][Size]Piece
}

var backRank = [Size]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// Initial returns the standard starting layout.
func Initial() Board {
	var b Board
	for col := 0; col < Size; col++ {
		b.cells[0][col] = Piece{Kind: backRank[col], Color: Black}
		b.cells[1][col] = Piece{Kind: Pawn, Color: Black}
		b.cells[6][col] = Piece{Kind: Pawn, Color: White}
		b.cells[7][col] = Piece{Kind: backRank[col], Color: White}
	}
	return b
}

// At returns the piece on sq. ok is false for empty or off-board squares.
func (b Board) At(sq Square) (Piece, bool) {
	if !sq.Valid() {
		return Piece{}, false
	}
	p := b.cells[sq.Row][sq.Col]
	return p, !p.IsZero()
}

// Occupied reports whether sq holds a piece.
func (b Board) Occupied(sq Square) bool {
	_, ok := b.At(sq)
	return ok
}

// Place sets sq to p. Off-board squares are ignored.
func (b *Board) Place(sq Square, p Piece) {
	if !sq.Valid() {
		return
	}
	b.cells[sq.Row][sq.Col] = p
}

// Clear empties sq.
func (b *Board) Clear(sq Square) { b.Place(sq, Piece{}) }

// Relocate moves whatever stands on from onto to, replacing any occupant.
func (b *Board) Relocate(from, to Square) {
	if !from.Valid() || !to.Valid() || from == to {
		return
	}
	p := b.cells[from.Row][from.Col]
	b.cells[to.Row][to.Col] = p
	b.cells[from.Row][from.Col] = Piece{}
}

// Squares lists squares holding a piece of color c in row-major order.
func (b Board) Squares(c Color) []Square {
	out := make([]Square, 0, 16)
	for r := 0; r < Size; r++ {
		for col := 0; col < Size; col++ {
			p := b.cells[r][col]
			if !p.IsZero() && p.Color == c {
				out = append(out, Square{Row: r, Col: col})
			}
		}
	}
	return out
}

// Count returns the number of occupied squares.
func (b Board) Count() int {
	n := 0
	for r := 0; r < Size; r++ {
		for col := 0; col < Size; col++ {
			if !b.cells[r][col].IsZero() {
				n++
			}
		}
	}
	return n
}

// Grid exposes a copy of the cells for encoders and renderers.
func (b Board) Grid() [Size][Size]Piece { return b.cells }

// FromGrid builds a board from raw cells.
func FromGrid(g [Size][Size]Piece) Board { return Board{cells: g} }
