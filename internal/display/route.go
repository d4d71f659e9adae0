package display

import (
	"context"
	"time"

	"github.com/park285/Cheese-Board/internal/board"
	"github.com/park285/Cheese-Board/internal/session"
	"go.uber.org/zap"
)

// Handler is the part of a game session that display events drive.
type Handler interface {
	Click(ctx context.Context, sq board.Square) session.ClickResult
	NewGame()
	SetAutomated(on bool)
	LoadLatestSnapshot(ctx context.Context) (bool, error)
}

const eventTimeout = 5 * time.Second

// Route feeds events received on ws into h and returns the callback id.
func Route(ws *WebSocket, h Handler, logger *zap.Logger) int {
	if logger == nil {
		logger = zap.NewNop()
	}
	return ws.OnEvent(func(ev *Event) { Dispatch(h, ev, logger) })
}

// Dispatch applies one event. Unknown types and out-of-range clicks are logged and dropped.
func Dispatch(h Handler, ev *Event, logger *zap.Logger) {
	if ev == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	switch ev.Type {
	case EventClick:
		sq := board.Sq(ev.Row, ev.Col)
		if !sq.Valid() {
			logger.Warn("display_click_out_of_range", zap.Int("row", ev.Row), zap.Int("col", ev.Col))
			return
		}
		h.Click(ctx, sq)
	case EventNew:
		h.NewGame()
	case EventMode:
		if ev.Automated == nil {
			logger.Warn("display_mode_missing_flag")
			return
		}
		h.SetAutomated(*ev.Automated)
	case EventLoad:
		if _, err := h.LoadLatestSnapshot(ctx); err != nil {
			logger.Warn("display_load_error", zap.Error(err))
		}
	default:
		logger.Warn("display_unknown_event", zap.String("type", ev.Type))
	}
}
