package board

import "testing"

func TestInitialLayout(t *testing.T) {
	b := Initial()
	if n := b.Count(); n != 32 {
		t.Fatalf("expected 32 pieces, got %d", n)
	}
	for col := 0; col < Size; col++ {
		if p, ok := b.At(Sq(6, col)); !ok || p != (Piece{Kind: Pawn, Color: White}) {
			t.Fatalf("white pawn missing at col %d: %v", col, p)
		}
		if p, ok := b.At(Sq(1, col)); !ok || p != (Piece{Kind: Pawn, Color: Black}) {
			t.Fatalf("black pawn missing at col %d: %v", col, p)
		}
		if p, _ := b.At(Sq(0, col)); p.Kind != backRank[col] || p.Color != Black {
			t.Fatalf("black back rank col %d: got %v", col, p)
		}
		if p, _ := b.At(Sq(7, col)); p.Kind != backRank[col] || p.Color != White {
			t.Fatalf("white back rank col %d: got %v", col, p)
		}
		for row := 2; row <= 5; row++ {
			if b.Occupied(Sq(row, col)) {
				t.Fatalf("expected empty square at (%d,%d)", row, col)
			}
		}
	}
	if p, _ := b.At(Sq(7, 4)); p.Kind != King {
		t.Fatalf("white king expected on (7,4), got %v", p)
	}
}

func TestAtOutOfRange(t *testing.T) {
	b := Initial()
	for _, sq := range []Square{Sq(-1, 0), Sq(0, -1), Sq(8, 0), Sq(0, 8), Sq(100, -100)} {
		if _, ok := b.At(sq); ok {
			t.Fatalf("expected no piece off-board at %v", sq)
		}
	}
	// off-board writes are ignored
	b.Place(Sq(8, 8), Piece{Kind: Queen, Color: White})
	if b.Count() != 32 {
		t.Fatalf("off-board place changed the board")
	}
}

func TestRelocateAndValueSemantics(t *testing.T) {
	b := Initial()
	snap := b
	b.Relocate(Sq(6, 4), Sq(4, 4))
	if b.Occupied(Sq(6, 4)) {
		t.Fatalf("origin not cleared")
	}
	if p, ok := b.At(Sq(4, 4)); !ok || p.Kind != Pawn || p.Color != White {
		t.Fatalf("pawn not relocated: %v", p)
	}
	if !snap.Occupied(Sq(6, 4)) || snap.Occupied(Sq(4, 4)) {
		t.Fatalf("copy was mutated through relocate")
	}

	// capture replaces the occupant
	b.Relocate(Sq(7, 3), Sq(1, 3))
	if p, _ := b.At(Sq(1, 3)); p.Color != White || p.Kind != Queen {
		t.Fatalf("capture did not replace occupant: %v", p)
	}
	if b.Count() != 31 {
		t.Fatalf("expected 31 pieces after capture, got %d", b.Count())
	}
}

func TestSquaresByColor(t *testing.T) {
	b := Initial()
	white := b.Squares(White)
	if len(white) != 16 {
		t.Fatalf("expected 16 white squares, got %d", len(white))
	}
	if white[0] != Sq(6, 0) || white[15] != Sq(7, 7) {
		t.Fatalf("unexpected ordering: first=%v last=%v", white[0], white[15])
	}
	var empty Board
	if len(empty.Squares(Black)) != 0 {
		t.Fatalf("empty board should list no squares")
	}
}

func TestParseColorAndKind(t *testing.T) {
	cases := map[string]Color{"white": White, "W": White, " black ": Black, "b": Black}
	for in, want := range cases {
		got, err := ParseColor(in)
		if err != nil || got != want {
			t.Fatalf("ParseColor(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseColor("red"); err == nil {
		t.Fatalf("expected error for unknown color")
	}
	if k, err := ParseKind("Knight"); err != nil || k != Knight {
		t.Fatalf("ParseKind: %v %v", k, err)
	}
	if _, err := ParseKind(""); err == nil {
		t.Fatalf("expected error for empty kind")
	}
	if White.Opponent() != Black || Black.Opponent() != White {
		t.Fatalf("Opponent mismatch")
	}
}

func TestPlacement(t *testing.T) {
	if got := Initial().Placement(); got != "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR" {
		t.Fatalf("unexpected initial placement: %s", got)
	}
	b := Initial()
	b.Relocate(Sq(6, 4), Sq(4, 4))
	if got := b.Placement(); got != "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR" {
		t.Fatalf("unexpected placement after e4: %s", got)
	}
}

func TestChessSquare(t *testing.T) {
	cases := []struct {
		sq   Square
		want string
	}{
		{Sq(0, 0), "a8"},
		{Sq(7, 0), "a1"},
		{Sq(6, 4), "e2"},
		{Sq(0, 7), "h8"},
	}
	for _, tc := range cases {
		if got := tc.sq.ChessSquare().String(); got != tc.want {
			t.Errorf("%v -> %s, want %s", tc.sq, got, tc.want)
		}
	}
}
