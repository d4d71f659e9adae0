package session

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/park285/Cheese-Board/internal/board"
)

// Event names the change a listener is told about.
type Event string

const (
	EventSelect   Event = "select"
	EventDeselect Event = "deselect"
	EventMove     Event = "move"
	EventAutoMove Event = "auto_move"
	EventNewGame  Event = "new_game"
	EventLoad     Event = "load"
)

// State is a copy of everything a renderer needs. Highlights is set while a piece is selected.
type State struct {
	SessionID      string
	PlayerID       string
	Board          board.Board
	Active         board.Color
	Selected       *board.Square
	Highlights     []board.Square
	LastMove       *board.Move
	Automated      bool
	AutomatedColor board.Color
}

// Listener is called after the session lock is released.
type Listener func(ev Event, st State)

// ClickResult reports the outcome of one click.
type ClickResult struct {
	Selected bool
	Moved    bool
	Legal    bool
}

// IDGenerator returns an opaque identifier unique within the process.
type IDGenerator func() string

// NewID returns CHESS_ followed by a random UUID.
func NewID() string {
	return "CHESS_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Timer is the handle of a scheduled automated move; *time.Timer satisfies it.
type Timer interface {
	Stop() bool
}

// ScheduleFunc runs f once after d.
type ScheduleFunc func(d time.Duration, f func()) Timer

func afterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Config holds the mode settings of a session.
type Config struct {
	Automated      bool
	AutomatedColor board.Color
	AutoMoveDelay  time.Duration
	PlayerID       string
}

const defaultAutoMoveDelay = time.Second
