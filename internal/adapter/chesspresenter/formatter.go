package chesspresenter

import (
	"fmt"
	"strings"

	"github.com/park285/Cheese-Board/internal/session"
	"github.com/park285/Cheese-Board/pkg/chessdto"
)

const (
	historyHeading = "♜ Saved games"
	emptySquare    = "·"
)

var glyphs = map[string]map[string]string{
	"white": {"pawn": "♙", "rook": "♖", "knight": "♘", "bishop": "♗", "queen": "♕", "king": "♔"},
	"black": {"pawn": "♟", "rook": "♜", "knight": "♞", "bishop": "♝", "queen": "♛", "king": "♚"},
}

// Formatter renders session DTOs into plain text for logs, terminals and chat displays.
type Formatter struct{}

func NewFormatter() *Formatter { return &Formatter{} }

// Board draws the grid with row indexes on the left and column indexes underneath.
func (f *Formatter) Board(state *chessdto.SessionState) string {
	if state == nil {
		return ""
	}
	marks := map[chessdto.Square]bool{}
	for _, sq := range state.Highlights {
		marks[sq] = true
	}

	var sb strings.Builder
	for r := range state.Board {
		fmt.Fprintf(&sb, "%d ", r)
		for c, p := range state.Board[r] {
			sq := chessdto.Square{Row: r, Col: c}
			cell := emptySquare
			if p != nil {
				cell = glyphs[p.Color][p.Kind]
			}
			switch {
			case state.Selected != nil && *state.Selected == sq:
				sb.WriteString("[" + cell + "]")
			case marks[sq]:
				sb.WriteString("<" + cell + ">")
			default:
				sb.WriteString(" " + cell + " ")
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("  ")
	for c := 0; c < len(state.Board); c++ {
		fmt.Fprintf(&sb, " %d ", c)
	}
	return sb.String()
}

// Header names the mode, for the image HUD.
func (f *Formatter) Header(state *chessdto.SessionState) string {
	if state == nil || !state.Automated {
		return "Player vs Player"
	}
	return "Player vs Computer"
}

// Turn is the status line: who moves and the time left.
func (f *Formatter) Turn(state *chessdto.SessionState) string {
	if state == nil {
		return ""
	}
	who := capitalize(state.ActiveColor) + " to move"
	if state.Automated && state.ActiveColor == state.AutomatedColor {
		who = capitalize(state.ActiveColor) + " thinking"
	}
	return who + " " + FormatClock(state.RemainingSeconds)
}

// Event returns a one-line announcement, or "" for changes not worth announcing.
func (f *Formatter) Event(ev session.Event, state *chessdto.SessionState) string {
	if state == nil {
		return ""
	}
	switch ev {
	case session.EventNewGame:
		return fmt.Sprintf("♟️ New game started (%s). White moves first.", f.Header(state))
	case session.EventLoad:
		return "♞ Saved game loaded. White to move."
	case session.EventMove, session.EventAutoMove:
		if state.LastMove == nil {
			return ""
		}
		mover := "Black"
		if state.ActiveColor == "black" {
			mover = "White"
		}
		return fmt.Sprintf("%s moved %s → %s", mover, formatSquare(state.LastMove.From), formatSquare(state.LastMove.To))
	default:
		return ""
	}
}

func (f *Formatter) History(entries []chessdto.HistoryEntry) string {
	if len(entries) == 0 {
		return "No saved games yet."
	}
	var sb strings.Builder
	sb.WriteString(historyHeading)
	for i, e := range entries {
		fmt.Fprintf(&sb, "\n%d. %s  %s  (%d pieces)", i+1, e.Timestamp, shortID(e.SessionID), e.Pieces)
	}
	return sb.String()
}

// FormatClock renders seconds as MM:SS.
func FormatClock(sec int) string {
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%02d:%02d", sec/60, sec%60)
}

func formatSquare(sq chessdto.Square) string {
	return fmt.Sprintf("(%d,%d)", sq.Row, sq.Col)
}

func shortID(id string) string {
	id = strings.TrimPrefix(id, "CHESS_")
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
