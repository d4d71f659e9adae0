package chessdto

type ClickRequest struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// ClickResponse reports what a click did. Moved implies Legal.
type ClickResponse struct {
	Selected bool          `json:"selected"`
	Moved    bool          `json:"moved"`
	Legal    bool          `json:"legal"`
	State    *SessionState `json:"state"`
}

type MoveRequest struct {
	From Square `json:"from"`
	To   Square `json:"to"`
}

type MoveResponse struct {
	Legal bool          `json:"legal"`
	State *SessionState `json:"state"`
}

type ModeRequest struct {
	Automated bool `json:"automated"`
}

type LoadResponse struct {
	Found bool          `json:"found"`
	State *SessionState `json:"state"`
}

type MovesResponse struct {
	From         Square   `json:"from"`
	Destinations []Square `json:"destinations"`
}
