package chesspresenter

import (
	"time"

	"github.com/park285/Cheese-Board/internal/board"
	"github.com/park285/Cheese-Board/internal/history"
	"github.com/park285/Cheese-Board/internal/session"
	"github.com/park285/Cheese-Board/pkg/chessdto"
)

// ToDTOState converts a session state into its wire form. remaining is the countdown in
// seconds; image may be nil.
func ToDTOState(st session.State, remaining int, image []byte) *chessdto.SessionState {
	out := &chessdto.SessionState{
		SessionID:        st.SessionID,
		PlayerID:         st.PlayerID,
		Board:            history.EncodeGrid(st.Board),
		ActiveColor:      st.Active.String(),
		Automated:        st.Automated,
		RemainingSeconds: remaining,
		BoardImage:       append([]byte(nil), image...),
	}
	if st.Automated {
		out.AutomatedColor = st.AutomatedColor.String()
	}
	if st.Selected != nil {
		sel := ToDTOSquare(*st.Selected)
		out.Selected = &sel
	}
	if len(st.Highlights) > 0 {
		out.Highlights = ToDTOSquares(st.Highlights)
	}
	if st.LastMove != nil {
		out.LastMove = &chessdto.Move{From: ToDTOSquare(st.LastMove.From), To: ToDTOSquare(st.LastMove.To)}
	}
	return out
}

func ToDTOSquare(sq board.Square) chessdto.Square {
	return chessdto.Square{Row: sq.Row, Col: sq.Col}
}

func ToDTOSquares(list []board.Square) []chessdto.Square {
	out := make([]chessdto.Square, 0, len(list))
	for _, sq := range list {
		out = append(out, ToDTOSquare(sq))
	}
	return out
}

func FromDTOSquare(sq chessdto.Square) board.Square {
	return board.Sq(sq.Row, sq.Col)
}

func ToDTOHistory(list []history.Snapshot) []chessdto.HistoryEntry {
	out := make([]chessdto.HistoryEntry, 0, len(list))
	for _, snap := range list {
		out = append(out, chessdto.HistoryEntry{
			SessionID: snap.SessionID,
			Timestamp: snap.Timestamp.UTC().Format(time.RFC3339),
			PlayerID:  snap.PlayerID,
			FEN:       snap.Board.Placement(),
			Pieces:    snap.Board.Count(),
		})
	}
	return out
}
