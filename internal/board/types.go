package board

import (
	"fmt"
	"strings"
)

// Size is the number of rows and columns on the board.
const Size = 8

// Color identifies a side.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Opponent returns the other side.
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) Valid() bool { return c == White || c == Black }

func (c Color) String() string { return string(c) }

// ParseColor accepts "white"/"w" and "black"/"b" in any case.
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	default:
		return "", fmt.Errorf("unknown color %q", s)
	}
}

// Kind is the movement class of a piece. The zero value marks an empty square.
type Kind string

const (
	NoKind Kind = ""
	Pawn   Kind = "pawn"
	Rook   Kind = "rook"
	Knight Kind = "knight"
	Bishop Kind = "bishop"
	Queen  Kind = "queen"
	King   Kind = "king"
)

// Kinds lists every real piece kind.
var Kinds = []Kind{Pawn, Rook, Knight, Bishop, Queen, King}

func (k Kind) String() string {
	if k == NoKind {
		return "none"
	}
	return string(k)
}

// ParseKind is the inverse of Kind.String for real kinds.
func ParseKind(s string) (Kind, error) {
	v := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range Kinds {
		if k == v {
			return k, nil
		}
	}
	return NoKind, fmt.Errorf("unknown piece kind %q", s)
}

// Piece is an immutable (kind, color) value.
type Piece struct {
	Kind  Kind  `json:"kind"`
	Color Color `json:"color"`
}

// IsZero reports whether p is the empty-square marker.
func (p Piece) IsZero() bool { return p.Kind == NoKind }

func (p Piece) String() string {
	if p.IsZero() {
		return "empty"
	}
	return string(p.Color) + " " + string(p.Kind)
}

// Square addresses one cell by row and column. Row 0 is Black's back rank.
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Sq is shorthand for Square{Row: row, Col: col}.
func Sq(row, col int) Square { return Square{Row: row, Col: col} }

// Valid reports whether both coordinates are on the board.
func (s Square) Valid() bool {
	return s.Row >= 0 && s.Row < Size && s.Col >= 0 && s.Col < Size
}

func (s Square) String() string { return fmt.Sprintf("(%d,%d)", s.Row, s.Col) }

// Move is a (from, to) pair. Moves are never persisted on their own.
type Move struct {
	From Square `json:"from"`
	To   Square `json:"to"`
}

func (m Move) String() string { return m.From.String() + "->" + m.To.String() }
