package display

import (
	"context"
	"errors"

	"github.com/park285/Cheese-Board/pkg/chessdto"
	"go.uber.org/zap"
)

// Egress abstracts frame sending over HTTP or WebSocket.
type Egress interface {
	SendText(ctx context.Context, message string) error
	SendImage(ctx context.Context, imageBase64 string) error
	SendState(ctx context.Context, state *chessdto.SessionState) error
}

type transportMode string

const (
	transportHTTP transportMode = "http"
	transportWS   transportMode = "ws"
	transportAuto transportMode = "auto"
)

// NewEgress creates an Egress based on mode. When mode is auto, WS is preferred when connected;
// on WS failure, it falls back to HTTP once.
func NewEgress(mode string, dryrun bool, c *Client, ws *WebSocket, logger *zap.Logger) Egress {
	if logger == nil {
		logger = zap.NewNop()
	}
	wse := &wsEgress{ws: ws, dryrun: dryrun, logger: logger}
	switch transportMode(mode) {
	case transportWS:
		return wse
	case transportAuto:
		return &autoEgress{ws: wse, http: &httpEgress{c: c}, logger: logger}
	default:
		return &httpEgress{c: c}
	}
}

type httpEgress struct{ c *Client }

var errHTTPUnavailable = errors.New("http egress not available")

func (h *httpEgress) SendText(ctx context.Context, message string) error {
	if h.c == nil {
		return errHTTPUnavailable
	}
	return h.c.SendText(ctx, message)
}

func (h *httpEgress) SendImage(ctx context.Context, imageBase64 string) error {
	if h.c == nil {
		return errHTTPUnavailable
	}
	return h.c.SendImage(ctx, imageBase64)
}

func (h *httpEgress) SendState(ctx context.Context, state *chessdto.SessionState) error {
	if h.c == nil {
		return errHTTPUnavailable
	}
	return h.c.SendState(ctx, state)
}

// wsEgress writes Frames over the WebSocket.
type wsEgress struct {
	ws     *WebSocket
	dryrun bool
	logger *zap.Logger
}

func (w *wsEgress) SendText(ctx context.Context, message string) error {
	return w.write(ctx, Frame{Type: FrameText, Data: message})
}

func (w *wsEgress) SendImage(ctx context.Context, imageBase64 string) error {
	return w.write(ctx, Frame{Type: FrameImage, Data: imageBase64})
}

func (w *wsEgress) SendState(ctx context.Context, state *chessdto.SessionState) error {
	return w.write(ctx, Frame{Type: FrameState, State: state})
}

func (w *wsEgress) write(ctx context.Context, f Frame) error {
	if w.ws == nil {
		return errors.New("ws egress not available")
	}
	if w.dryrun {
		w.logger.Info("ws_egress_dryrun", zap.String("type", f.Type))
		return nil
	}
	return w.ws.WriteJSON(ctx, f)
}

func (w *wsEgress) connected() bool { return w != nil && w.ws != nil && w.ws.Connected() }

// autoEgress prefers WS if available, with single fallback to HTTP.
type autoEgress struct {
	ws     *wsEgress
	http   *httpEgress
	logger *zap.Logger
}

func (a *autoEgress) SendText(ctx context.Context, message string) error {
	return a.send(ctx, FrameText, func(e Egress) error { return e.SendText(ctx, message) })
}

func (a *autoEgress) SendImage(ctx context.Context, imageBase64 string) error {
	return a.send(ctx, FrameImage, func(e Egress) error { return e.SendImage(ctx, imageBase64) })
}

func (a *autoEgress) SendState(ctx context.Context, state *chessdto.SessionState) error {
	return a.send(ctx, FrameState, func(e Egress) error { return e.SendState(ctx, state) })
}

func (a *autoEgress) send(_ context.Context, kind string, fn func(Egress) error) error {
	if a.ws.connected() {
		err := fn(a.ws)
		if err == nil {
			return nil
		}
		a.logger.Warn("egress_fallback", zap.String("type", kind), zap.Error(err))
	}
	return fn(a.http)
}
