// Package display bridges a game session to a remote board display: frames go out over
// HTTP or a WebSocket, clicks and commands come back over the WebSocket.
package display

import "github.com/park285/Cheese-Board/pkg/chessdto"

// Frame types sent to the display.
const (
	FrameText  = "text"
	FrameImage = "image"
	FrameState = "state"
)

// Frame is one outgoing message. Data carries text or a base64 PNG.
type Frame struct {
	Type  string                 `json:"type"`
	Data  string                 `json:"data,omitempty"`
	State *chessdto.SessionState `json:"state,omitempty"`
}

// Event types received from the display.
const (
	EventClick = "click"
	EventNew   = "new"
	EventMode  = "mode"
	EventLoad  = "load"
)

// Event is one incoming command. Row and Col are set for clicks, Automated for mode.
type Event struct {
	Type      string `json:"type"`
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	Automated *bool  `json:"automated,omitempty"`
}

type WebSocketState int

const (
	WSStateDisconnected WebSocketState = iota
	WSStateConnecting
	WSStateConnected
	WSStateReconnecting
	WSStateFailed
)

func (s WebSocketState) String() string {
	switch s {
	case WSStateConnecting:
		return "connecting"
	case WSStateConnected:
		return "connected"
	case WSStateReconnecting:
		return "reconnecting"
	case WSStateFailed:
		return "failed"
	default:
		return "disconnected"
	}
}

// HeaderProvider allows injecting per-request headers
type HeaderProvider func() map[string]string

type EventCallback func(ev *Event)

type StateCallback func(state WebSocketState)
