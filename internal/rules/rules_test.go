package rules

import (
	"sort"
	"testing"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/Cheese-Board/internal/board"
)

func piece(k board.Kind, c board.Color) board.Piece { return board.Piece{Kind: k, Color: c} }

func emptyWith(pieces map[board.Square]board.Piece) board.Board {
	var b board.Board
	for sq, p := range pieces {
		b.Place(sq, p)
	}
	return b
}

func allSquares() []board.Square {
	out := make([]board.Square, 0, 64)
	for r := 0; r < board.Size; r++ {
		for c := 0; c < board.Size; c++ {
			out = append(out, board.Sq(r, c))
		}
	}
	return out
}

func sortMoves(ms []board.Move) {
	sort.Slice(ms, func(i, j int) bool {
		a, b := ms[i], ms[j]
		if a.From != b.From {
			if a.From.Row != b.From.Row {
				return a.From.Row < b.From.Row
			}
			return a.From.Col < b.From.Col
		}
		if a.To.Row != b.To.Row {
			return a.To.Row < b.To.Row
		}
		return a.To.Col < b.To.Col
	})
}

func TestInitialBoardWhiteMoves(t *testing.T) {
	b := board.Initial()
	want := map[board.Move]bool{}
	for col := 0; col < board.Size; col++ {
		want[board.Move{From: board.Sq(6, col), To: board.Sq(5, col)}] = true
		want[board.Move{From: board.Sq(6, col), To: board.Sq(4, col)}] = true
	}
	for _, m := range []board.Move{
		{From: board.Sq(7, 1), To: board.Sq(5, 0)},
		{From: board.Sq(7, 1), To: board.Sq(5, 2)},
		{From: board.Sq(7, 6), To: board.Sq(5, 5)},
		{From: board.Sq(7, 6), To: board.Sq(5, 7)},
	} {
		want[m] = true
	}

	got := 0
	for _, from := range allSquares() {
		for _, to := range allSquares() {
			legal := IsLegal(b, board.White, from, to)
			m := board.Move{From: from, To: to}
			if legal != want[m] {
				t.Fatalf("IsLegal(%v) = %v, want %v", m, legal, want[m])
			}
			if legal {
				got++
			}
		}
	}
	if got != len(want) {
		t.Fatalf("expected %d legal pairs, got %d", len(want), got)
	}

	// a2->a3 and a2->a4 legal, a2->a5 not
	if !IsLegal(b, board.White, board.Sq(6, 0), board.Sq(5, 0)) || !IsLegal(b, board.White, board.Sq(6, 0), board.Sq(4, 0)) {
		t.Fatalf("pawn opening moves rejected")
	}
	if IsLegal(b, board.White, board.Sq(6, 0), board.Sq(3, 0)) {
		t.Fatalf("three-step pawn move accepted")
	}
}

// The opening position has no castling, en passant or promotion, so this engine and a full
// chess implementation must agree on White's first moves.
func TestInitialBoardMatchesChessLibrary(t *testing.T) {
	game := nchess.NewGame()
	var lib []board.Move
	for _, mv := range game.ValidMoves() {
		from := board.Sq(7-int(mv.S1().Rank()), int(mv.S1().File()))
		to := board.Sq(7-int(mv.S2().Rank()), int(mv.S2().File()))
		lib = append(lib, board.Move{From: from, To: to})
	}
	ours := LegalMoves(board.Initial(), board.White)
	sortMoves(lib)
	sortMoves(ours)
	if len(lib) != len(ours) {
		t.Fatalf("move count mismatch: lib=%d ours=%d", len(lib), len(ours))
	}
	for i := range lib {
		if lib[i] != ours[i] {
			t.Fatalf("move %d differs: lib=%v ours=%v", i, lib[i], ours[i])
		}
	}
}

func TestRookPathBlocked(t *testing.T) {
	from := board.Sq(4, 0)
	cases := []struct {
		name    string
		blocker board.Square
		to      board.Square
		target  *board.Piece
	}{
		{"row empty target", board.Sq(4, 3), board.Sq(4, 6), nil},
		{"row opponent target", board.Sq(4, 3), board.Sq(4, 6), &board.Piece{Kind: board.Pawn, Color: board.Black}},
		{"column empty target", board.Sq(2, 0), board.Sq(0, 0), nil},
		{"column opponent target", board.Sq(6, 0), board.Sq(7, 0), &board.Piece{Kind: board.Rook, Color: board.Black}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pieces := map[board.Square]board.Piece{
				from:       piece(board.Rook, board.White),
				tc.blocker: piece(board.Knight, board.Black),
			}
			if tc.target != nil {
				pieces[tc.to] = *tc.target
			}
			b := emptyWith(pieces)
			if IsLegal(b, board.White, from, tc.to) {
				t.Fatalf("rook jumped over %v to %v", tc.blocker, tc.to)
			}
		})
	}

	b := emptyWith(map[board.Square]board.Piece{
		from:           piece(board.Rook, board.White),
		board.Sq(4, 5): piece(board.Pawn, board.Black),
		board.Sq(4, 2): piece(board.Pawn, board.White),
	})
	if !IsLegal(b, board.White, from, board.Sq(4, 1)) {
		t.Fatalf("rook should reach square before own blocker")
	}
	if IsLegal(b, board.White, from, board.Sq(4, 2)) {
		t.Fatalf("rook captured own piece")
	}
	if IsLegal(b, board.White, from, board.Sq(4, 5)) {
		t.Fatalf("rook passed through own blocker")
	}
	if IsLegal(b, board.White, from, board.Sq(5, 1)) {
		t.Fatalf("rook moved diagonally")
	}
}

func TestPawnCannotCaptureStraight(t *testing.T) {
	for _, blocker := range []board.Color{board.White, board.Black} {
		b := emptyWith(map[board.Square]board.Piece{
			board.Sq(6, 4): piece(board.Pawn, board.White),
			board.Sq(5, 4): piece(board.Knight, blocker),
		})
		if IsLegal(b, board.White, board.Sq(6, 4), board.Sq(5, 4)) {
			t.Fatalf("pawn captured straight ahead (%s blocker)", blocker)
		}
		if IsLegal(b, board.White, board.Sq(6, 4), board.Sq(4, 4)) {
			t.Fatalf("pawn jumped over %s blocker", blocker)
		}
	}
	// two-step onto an occupied square
	b := emptyWith(map[board.Square]board.Piece{
		board.Sq(1, 2): piece(board.Pawn, board.Black),
		board.Sq(3, 2): piece(board.Pawn, board.White),
	})
	if IsLegal(b, board.Black, board.Sq(1, 2), board.Sq(3, 2)) {
		t.Fatalf("pawn double step onto occupied square accepted")
	}
	if !IsLegal(b, board.Black, board.Sq(1, 2), board.Sq(2, 2)) {
		t.Fatalf("black single step rejected")
	}
}

func TestPawnDiagonal(t *testing.T) {
	b := emptyWith(map[board.Square]board.Piece{
		board.Sq(4, 4): piece(board.Pawn, board.White),
		board.Sq(3, 5): piece(board.Pawn, board.Black),
	})
	if IsLegal(b, board.White, board.Sq(4, 4), board.Sq(3, 3)) {
		t.Fatalf("pawn moved diagonally onto empty square")
	}
	if !IsLegal(b, board.White, board.Sq(4, 4), board.Sq(3, 5)) {
		t.Fatalf("pawn capture rejected")
	}
	if IsLegal(b, board.White, board.Sq(4, 4), board.Sq(2, 6)) {
		t.Fatalf("pawn captured two squares away")
	}
	// not from the start row: no double step
	if IsLegal(b, board.White, board.Sq(4, 4), board.Sq(2, 4)) {
		t.Fatalf("double step accepted off the start row")
	}
	// black moves down the board
	if !IsLegal(b, board.Black, board.Sq(3, 5), board.Sq(4, 5)) {
		t.Fatalf("black pawn forward rejected")
	}
	if IsLegal(b, board.Black, board.Sq(3, 5), board.Sq(2, 5)) {
		t.Fatalf("black pawn moved backwards")
	}
}

func TestSlidersAndLeapers(t *testing.T) {
	b := emptyWith(map[board.Square]board.Piece{
		board.Sq(4, 4): piece(board.Queen, board.White),
		board.Sq(2, 2): piece(board.Pawn, board.Black),
		board.Sq(7, 2): piece(board.Bishop, board.White),
		board.Sq(0, 1): piece(board.Knight, board.Black),
		board.Sq(1, 2): piece(board.Pawn, board.Black),
		board.Sq(1, 1): piece(board.Pawn, board.Black),
		board.Sq(0, 4): piece(board.King, board.Black),
	})
	tests := []struct {
		name   string
		active board.Color
		from   board.Square
		to     board.Square
		want   bool
	}{
		{"queen diagonal capture", board.White, board.Sq(4, 4), board.Sq(2, 2), true},
		{"queen diagonal through piece", board.White, board.Sq(4, 4), board.Sq(1, 1), false},
		{"queen straight", board.White, board.Sq(4, 4), board.Sq(4, 0), true},
		{"queen knight-shape", board.White, board.Sq(4, 4), board.Sq(2, 3), false},
		{"bishop diagonal", board.White, board.Sq(7, 2), board.Sq(5, 0), true},
		{"bishop straight", board.White, board.Sq(7, 2), board.Sq(5, 2), false},
		{"knight onto own piece", board.Black, board.Sq(0, 1), board.Sq(2, 2), false},
		{"knight jumps over pawns", board.Black, board.Sq(0, 1), board.Sq(2, 0), true},
		{"knight straight", board.Black, board.Sq(0, 1), board.Sq(2, 1), false},
		{"king step", board.Black, board.Sq(0, 4), board.Sq(1, 4), true},
		{"king diagonal step", board.Black, board.Sq(0, 4), board.Sq(1, 5), true},
		{"king two steps", board.Black, board.Sq(0, 4), board.Sq(2, 4), false},
		{"king null move", board.Black, board.Sq(0, 4), board.Sq(0, 4), false},
		{"empty origin", board.White, board.Sq(3, 3), board.Sq(3, 4), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsLegal(b, tc.active, tc.from, tc.to); got != tc.want {
				t.Fatalf("IsLegal(%v->%v) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestOpponentPiecesNeverMove(t *testing.T) {
	b := board.Initial()
	if IsLegal(b, board.White, board.Sq(0, 0), board.Sq(0, 1)) {
		t.Fatalf("black rook took its own knight on White's turn")
	}
	for _, active := range []board.Color{board.White, board.Black} {
		for _, from := range b.Squares(active.Opponent()) {
			if d := Destinations(b, active, from); len(d) != 0 {
				t.Fatalf("%s to move: piece on %v has destinations %v", active, from, d)
			}
			for _, to := range allSquares() {
				if IsLegal(b, active, from, to) {
					t.Fatalf("%s to move: %v->%v accepted", active, from, to)
				}
			}
		}
	}
	for _, mv := range LegalMoves(b, board.Black) {
		if p, _ := b.At(mv.From); p.Color != board.Black {
			t.Fatalf("LegalMoves(Black) includes %v", mv)
		}
	}
}

func TestOutOfRangeRejected(t *testing.T) {
	b := board.Initial()
	bad := []board.Square{board.Sq(-1, 0), board.Sq(8, 3), board.Sq(3, -2), board.Sq(0, 8)}
	for _, sq := range bad {
		if IsLegal(b, board.White, sq, board.Sq(4, 4)) {
			t.Fatalf("off-board origin %v accepted", sq)
		}
		if IsLegal(b, board.White, board.Sq(6, 0), sq) {
			t.Fatalf("off-board destination %v accepted", sq)
		}
	}
	// rook on the edge must not wrap
	edge := emptyWith(map[board.Square]board.Piece{board.Sq(0, 7): piece(board.Rook, board.White)})
	if IsLegal(edge, board.White, board.Sq(0, 7), board.Sq(0, 8)) {
		t.Fatalf("rook moved off the board")
	}
}

func TestIsLegalIsPure(t *testing.T) {
	b := board.Initial()
	before := b
	for _, from := range allSquares() {
		for _, to := range allSquares() {
			first := IsLegal(b, board.Black, from, to)
			second := IsLegal(b, board.Black, from, to)
			if first != second {
				t.Fatalf("non-deterministic result for %v->%v", from, to)
			}
		}
	}
	if b != before {
		t.Fatalf("validator mutated the board")
	}
}

func TestPathClear(t *testing.T) {
	b := emptyWith(map[board.Square]board.Piece{board.Sq(3, 3): piece(board.Pawn, board.White)})
	if PathClear(b, board.Sq(0, 0), board.Sq(5, 5)) {
		t.Fatalf("diagonal path through (3,3) reported clear")
	}
	if !PathClear(b, board.Sq(0, 0), board.Sq(3, 3)) {
		t.Fatalf("destination square must not count as blocking")
	}
	if !PathClear(b, board.Sq(3, 0), board.Sq(3, 1)) {
		t.Fatalf("adjacent squares are always clear")
	}
	if PathClear(b, board.Sq(0, 0), board.Sq(1, 2)) {
		t.Fatalf("non-line pair reported clear")
	}
}

func TestDestinationsForKnight(t *testing.T) {
	got := Destinations(board.Initial(), board.White, board.Sq(7, 6))
	if len(got) != 2 || got[0] != board.Sq(5, 5) || got[1] != board.Sq(5, 7) {
		t.Fatalf("unexpected knight destinations: %v", got)
	}
	if d := Destinations(board.Initial(), board.White, board.Sq(7, 0)); len(d) != 0 {
		t.Fatalf("boxed-in rook has destinations: %v", d)
	}
}
