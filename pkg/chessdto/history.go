package chessdto

// SnapshotRecord is the persisted form of one board snapshot.
// Timestamp is ISO-8601 (RFC 3339). FEN carries the piece placement for external tools
// and is ignored on load.
type SnapshotRecord struct {
	SessionID string `json:"sessionId"`
	Board     Grid   `json:"board"`
	Timestamp string `json:"timestamp"`
	PlayerID  string `json:"playerId"`
	FEN       string `json:"fen,omitempty"`
}

// HistoryEntry is a listing row for a history panel.
type HistoryEntry struct {
	SessionID string `json:"sessionId"`
	Timestamp string `json:"timestamp"`
	PlayerID  string `json:"playerId"`
	FEN       string `json:"fen,omitempty"`
	Pieces    int    `json:"pieces"`
}
