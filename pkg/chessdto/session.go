package chessdto

// Piece is the wire form of an occupied square.
type Piece struct {
	Kind  string `json:"kind"`
	Color string `json:"color"`
}

// Grid is an 8x8 board; nil entries are empty squares. Row 0 is Black's back rank.
type Grid [8][8]*Piece

type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type Move struct {
	From Square `json:"from"`
	To   Square `json:"to"`
}

// SessionState is what the rendering side needs after every change.
type SessionState struct {
	SessionID        string   `json:"sessionId"`
	PlayerID         string   `json:"playerId"`
	Board            Grid     `json:"board"`
	ActiveColor      string   `json:"activeColor"`
	Selected         *Square  `json:"selected,omitempty"`
	Highlights       []Square `json:"highlights,omitempty"`
	LastMove         *Move    `json:"lastMove,omitempty"`
	Automated        bool     `json:"automated"`
	AutomatedColor   string   `json:"automatedColor,omitempty"`
	RemainingSeconds int      `json:"remainingSeconds,omitempty"`
	BoardImage       []byte   `json:"-"`
}
