package display

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/park285/Cheese-Board/internal/board"
	"github.com/park285/Cheese-Board/internal/session"
	"github.com/park285/Cheese-Board/pkg/chessdto"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// frameServer serves a fasthttp handler on an in-memory listener and returns a client for it.
func frameServer(t *testing.T, h fasthttp.RequestHandler, opts ...Option) *Client {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: h}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() {
		_ = srv.Shutdown()
		_ = ln.Close()
	})
	dial := func(string) (net.Conn, error) { return ln.Dial() }
	return NewClient("http://display.local/", append([]Option{WithDial(dial)}, opts...)...)
}

func TestClientPostsFrames(t *testing.T) {
	var mu sync.Mutex
	var frames []Frame
	var token string
	c := frameServer(t, func(ctx *fasthttp.RequestCtx) {
		if string(ctx.Path()) != "/frame" || !ctx.IsPost() {
			ctx.SetStatusCode(fasthttp.StatusNotFound)
			return
		}
		var f Frame
		if err := json.Unmarshal(ctx.PostBody(), &f); err != nil {
			ctx.SetStatusCode(fasthttp.StatusBadRequest)
			return
		}
		mu.Lock()
		frames = append(frames, f)
		token = string(ctx.Request.Header.Peek("X-Display-Token"))
		mu.Unlock()
	}, WithHeaderProvider(func() map[string]string {
		return map[string]string{"X-Display-Token": "secret", " ": "ignored"}
	}))

	ctx := context.Background()
	if err := c.SendText(ctx, "hello"); err != nil {
		t.Fatalf("send text: %v", err)
	}
	if err := c.SendImage(ctx, "aGk="); err != nil {
		t.Fatalf("send image: %v", err)
	}
	if err := c.SendState(ctx, &chessdto.SessionState{SessionID: "S"}); err != nil {
		t.Fatalf("send state: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(frames) != 3 {
		t.Fatalf("frames = %d", len(frames))
	}
	if frames[0].Type != FrameText || frames[0].Data != "hello" || frames[1].Type != FrameImage {
		t.Fatalf("frames = %+v", frames)
	}
	if frames[2].State == nil || frames[2].State.SessionID != "S" {
		t.Fatalf("state frame = %+v", frames[2])
	}
	if token != "secret" {
		t.Fatalf("header not forwarded: %q", token)
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := frameServer(t, func(ctx *fasthttp.RequestCtx) {
		if calls.Add(1) < 3 {
			ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
			return
		}
		ctx.SetStatusCode(fasthttp.StatusNoContent)
	})
	if err := c.SendText(context.Background(), "x"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := frameServer(t, func(ctx *fasthttp.RequestCtx) {
		calls.Add(1)
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		ctx.SetBodyString("bad frame")
	})
	err := c.SendText(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "status=400") {
		t.Fatalf("err = %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestBackoffDuration(t *testing.T) {
	if backoffDuration(0) != 100*time.Millisecond || backoffDuration(3) != 400*time.Millisecond {
		t.Fatalf("backoff steps wrong")
	}
	if backoffDuration(99) != backoffDuration(6) {
		t.Fatalf("backoff should cap")
	}
}

// wsPeer accepts one display connection, pushes events and collects frames.
type wsPeer struct {
	srv    *httptest.Server
	conns  chan *websocket.Conn
	frames chan Frame
}

func newWSPeer(t *testing.T) *wsPeer {
	t.Helper()
	p := &wsPeer{conns: make(chan *websocket.Conn, 1), frames: make(chan Frame, 8)}
	p.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		conn.SetReadLimit(4 << 20)
		p.conns <- conn
		for {
			var f Frame
			if err := wsjson.Read(r.Context(), conn, &f); err != nil {
				return
			}
			p.frames <- f
		}
	}))
	t.Cleanup(p.srv.Close)
	return p
}

func (p *wsPeer) url() string { return "ws" + strings.TrimPrefix(p.srv.URL, "http") }

type fakeHandler struct {
	mu     sync.Mutex
	clicks []board.Square
	news   int
	modes  []bool
	loads  int
	done   chan struct{}
}

func (f *fakeHandler) Click(_ context.Context, sq board.Square) session.ClickResult {
	f.mu.Lock()
	f.clicks = append(f.clicks, sq)
	f.mu.Unlock()
	f.done <- struct{}{}
	return session.ClickResult{Selected: true}
}

func (f *fakeHandler) NewGame() {
	f.mu.Lock()
	f.news++
	f.mu.Unlock()
	f.done <- struct{}{}
}

func (f *fakeHandler) SetAutomated(on bool) {
	f.mu.Lock()
	f.modes = append(f.modes, on)
	f.mu.Unlock()
	f.done <- struct{}{}
}

func (f *fakeHandler) LoadLatestSnapshot(context.Context) (bool, error) {
	f.mu.Lock()
	f.loads++
	f.mu.Unlock()
	f.done <- struct{}{}
	return false, errors.New("no store")
}

func wait(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for event")
	}
}

func TestWebSocketRoundTrip(t *testing.T) {
	peer := newWSPeer(t)
	ws := NewWebSocket(peer.url(), 0)
	h := &fakeHandler{done: make(chan struct{}, 8)}
	Route(ws, h, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ws.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer ws.Close(context.Background())
	if !ws.Connected() || ws.State() != WSStateConnected {
		t.Fatalf("state = %s", ws.State())
	}

	server := <-peer.conns
	on := true
	for _, ev := range []Event{
		{Type: EventClick, Row: 6, Col: 4},
		{Type: EventNew},
		{Type: EventMode, Automated: &on},
		{Type: EventLoad},
	} {
		if err := wsjson.Write(ctx, server, ev); err != nil {
			t.Fatalf("server write: %v", err)
		}
		wait(t, h.done)
	}
	h.mu.Lock()
	if len(h.clicks) != 1 || h.clicks[0] != board.Sq(6, 4) || h.news != 1 || len(h.modes) != 1 || !h.modes[0] || h.loads != 1 {
		t.Fatalf("handler saw clicks=%v news=%d modes=%v loads=%d", h.clicks, h.news, h.modes, h.loads)
	}
	h.mu.Unlock()

	eg := NewEgress("ws", false, nil, ws, zap.NewNop())
	if err := eg.SendText(ctx, "White moved"); err != nil {
		t.Fatalf("egress: %v", err)
	}
	select {
	case f := <-peer.frames:
		if f.Type != FrameText || f.Data != "White moved" {
			t.Fatalf("frame = %+v", f)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("frame not received")
	}
}

func TestWebSocketWriteWhenDisconnected(t *testing.T) {
	ws := NewWebSocket("ws://127.0.0.1:1/none", 0)
	if err := ws.WriteJSON(context.Background(), Frame{Type: FrameText}); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("err = %v", err)
	}
}

func TestDispatchIgnoresBadEvents(t *testing.T) {
	h := &fakeHandler{done: make(chan struct{}, 8)}
	Dispatch(h, &Event{Type: EventClick, Row: 9, Col: 0}, zap.NewNop())
	Dispatch(h, &Event{Type: EventMode}, zap.NewNop())
	Dispatch(h, &Event{Type: "dance"}, zap.NewNop())
	Dispatch(h, nil, zap.NewNop())
	if len(h.done) != 0 {
		t.Fatalf("bad events reached the handler")
	}
}

func TestAutoEgressFallsBackToHTTP(t *testing.T) {
	var got atomic.Int32
	c := frameServer(t, func(ctx *fasthttp.RequestCtx) { got.Add(1) })
	ws := NewWebSocket("ws://127.0.0.1:1/none", 0)
	eg := NewEgress("auto", false, c, ws, zap.NewNop())
	if err := eg.SendImage(context.Background(), "aGk="); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got.Load() != 1 {
		t.Fatalf("http not used, calls = %d", got.Load())
	}

	if err := NewEgress("http", false, nil, nil, nil).SendText(context.Background(), "x"); err == nil {
		t.Fatalf("http egress without client should fail")
	}
	if err := NewEgress("ws", true, nil, ws, nil).SendText(context.Background(), "x"); err != nil {
		t.Fatalf("dry run should succeed: %v", err)
	}
}
