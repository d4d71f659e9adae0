// Package httpapi exposes one game session over a small JSON API.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/park285/Cheese-Board/internal/adapter/chesspresenter"
	"github.com/park285/Cheese-Board/internal/board"
	"github.com/park285/Cheese-Board/internal/history"
	"github.com/park285/Cheese-Board/internal/session"
	"github.com/park285/Cheese-Board/pkg/chessdto"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Game is the session surface the API drives; *session.Session satisfies it.
type Game interface {
	State() session.State
	Click(ctx context.Context, sq board.Square) session.ClickResult
	TryMove(ctx context.Context, from, to board.Square) bool
	Destinations(from board.Square) []board.Square
	NewGame()
	SetAutomated(on bool)
	LoadLatestSnapshot(ctx context.Context) (bool, error)
	History(ctx context.Context, limit int) ([]history.Snapshot, error)
}

const (
	maxBodySize     = 1 << 16
	requestTimeout  = 10 * time.Second
	defaultHistory  = 20
	contentTypeJSON = "application/json"
)

type Server struct {
	game      Game
	presenter *chesspresenter.Presenter
	remaining func() int
	origin    string
	logger    *zap.Logger
}

type Option func(*Server)

// WithRemaining supplies the countdown reading reported in every state.
func WithRemaining(fn func() int) Option {
	return func(s *Server) { s.remaining = fn }
}

// WithCORSOrigin allows browser calls from origin.
func WithCORSOrigin(origin string) Option {
	return func(s *Server) { s.origin = origin }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

func New(game Game, presenter *chesspresenter.Presenter, opts ...Option) *Server {
	s := &Server{
		game:      game,
		presenter: presenter,
		remaining: func() int { return 0 },
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed request handler.
func (s *Server) Handler() fasthttp.RequestHandler {
	return s.withCORS(s.route)
}

// NewHTTPServer wraps Handler in a fasthttp.Server with the body limit applied.
func (s *Server) NewHTTPServer() *fasthttp.Server {
	return &fasthttp.Server{
		Handler:            s.Handler(),
		Name:               "cheese-board",
		MaxRequestBodySize: maxBodySize,
		ReadTimeout:        requestTimeout,
		WriteTimeout:       requestTimeout,
	}
}

func (s *Server) route(ctx *fasthttp.RequestCtx) {
	method := string(ctx.Method())
	path := string(ctx.Path())

	switch {
	case method == fasthttp.MethodGet && path == "/state":
		s.handleState(ctx)
	case method == fasthttp.MethodGet && path == "/board.png":
		s.handleBoardPNG(ctx)
	case method == fasthttp.MethodGet && path == "/moves":
		s.handleMoves(ctx)
	case method == fasthttp.MethodPost && path == "/click":
		s.handleClick(ctx)
	case method == fasthttp.MethodPost && path == "/move":
		s.handleMove(ctx)
	case method == fasthttp.MethodPost && path == "/new":
		s.game.NewGame()
		s.writeState(ctx)
	case method == fasthttp.MethodPost && path == "/mode":
		s.handleMode(ctx)
	case method == fasthttp.MethodPost && path == "/load":
		s.handleLoad(ctx)
	case method == fasthttp.MethodGet && path == "/history":
		s.handleHistory(ctx)
	case method == fasthttp.MethodGet && path == "/health":
		ctx.SetStatusCode(fasthttp.StatusNoContent)
	default:
		if isKnownPath(path) {
			writeError(ctx, fasthttp.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
			return
		}
		writeError(ctx, fasthttp.StatusNotFound, "not_found", "no such route")
	}
}

func isKnownPath(path string) bool {
	switch path {
	case "/state", "/board.png", "/moves", "/click", "/move", "/new", "/mode", "/load", "/history", "/health":
		return true
	}
	return false
}

func (s *Server) withCORS(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if s.origin != "" {
			ctx.Response.Header.Set("Access-Control-Allow-Origin", s.origin)
			ctx.Response.Header.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			ctx.Response.Header.Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if ctx.IsOptions() {
			ctx.SetStatusCode(fasthttp.StatusNoContent)
			return
		}
		next(ctx)
	}
}

func (s *Server) handleState(ctx *fasthttp.RequestCtx) {
	s.writeState(ctx)
}

func (s *Server) handleBoardPNG(ctx *fasthttp.RequestCtx) {
	if s.presenter == nil {
		writeError(ctx, fasthttp.StatusServiceUnavailable, "render_unavailable", "no renderer configured")
		return
	}
	rctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	dto, err := s.presenter.Snapshot(rctx, s.game.State(), s.remaining())
	if err != nil || len(dto.BoardImage) == 0 {
		s.logger.Warn("render_error", zap.Error(err))
		writeError(ctx, fasthttp.StatusInternalServerError, "render_failed", "could not render board")
		return
	}
	ctx.SetContentType("image/png")
	ctx.Response.Header.Set("Cache-Control", "no-store")
	ctx.SetBody(dto.BoardImage)
}

func (s *Server) handleMoves(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()
	row, errRow := strconv.Atoi(string(args.Peek("row")))
	col, errCol := strconv.Atoi(string(args.Peek("col")))
	if errRow != nil || errCol != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "bad_square", "row and col must be integers")
		return
	}
	sq := board.Sq(row, col)
	if !sq.Valid() {
		writeError(ctx, fasthttp.StatusBadRequest, "bad_square", "square is off the board")
		return
	}
	dests := s.game.Destinations(sq)
	writeJSON(ctx, fasthttp.StatusOK, chessdto.MovesResponse{
		From:         chesspresenter.ToDTOSquare(sq),
		Destinations: chesspresenter.ToDTOSquares(dests),
	})
}

func (s *Server) handleClick(ctx *fasthttp.RequestCtx) {
	var req chessdto.ClickRequest
	if !decodeBody(ctx, &req) {
		return
	}
	sq := board.Sq(req.Row, req.Col)
	if !sq.Valid() {
		writeError(ctx, fasthttp.StatusBadRequest, "bad_square", "square is off the board")
		return
	}
	res := s.game.Click(ctx, sq)
	writeJSON(ctx, fasthttp.StatusOK, chessdto.ClickResponse{
		Selected: res.Selected,
		Moved:    res.Moved,
		Legal:    res.Legal,
		State:    s.stateDTO(),
	})
}

func (s *Server) handleMove(ctx *fasthttp.RequestCtx) {
	var req chessdto.MoveRequest
	if !decodeBody(ctx, &req) {
		return
	}
	from := chesspresenter.FromDTOSquare(req.From)
	to := chesspresenter.FromDTOSquare(req.To)
	if !from.Valid() || !to.Valid() {
		writeError(ctx, fasthttp.StatusBadRequest, "bad_square", "square is off the board")
		return
	}
	legal := s.game.TryMove(ctx, from, to)
	writeJSON(ctx, fasthttp.StatusOK, chessdto.MoveResponse{Legal: legal, State: s.stateDTO()})
}

func (s *Server) handleMode(ctx *fasthttp.RequestCtx) {
	var req chessdto.ModeRequest
	if !decodeBody(ctx, &req) {
		return
	}
	s.game.SetAutomated(req.Automated)
	s.writeState(ctx)
}

func (s *Server) handleLoad(ctx *fasthttp.RequestCtx) {
	found, err := s.game.LoadLatestSnapshot(ctx)
	if err != nil {
		s.logger.Warn("snapshot_load_error", zap.Error(err))
		writeJSON(ctx, fasthttp.StatusBadGateway, chessdto.DomainError{
			Code: "history_unavailable", Message: "could not load snapshot", Retryable: true,
		})
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, chessdto.LoadResponse{Found: found, State: s.stateDTO()})
}

func (s *Server) handleHistory(ctx *fasthttp.RequestCtx) {
	limit := defaultHistory
	if raw := ctx.QueryArgs().Peek("limit"); len(raw) > 0 {
		n, err := strconv.Atoi(string(raw))
		if err != nil || n <= 0 {
			writeError(ctx, fasthttp.StatusBadRequest, "bad_limit", "limit must be a positive integer")
			return
		}
		limit = n
	}
	list, err := s.game.History(ctx, limit)
	if err != nil {
		s.logger.Warn("snapshot_list_error", zap.Error(err))
		writeJSON(ctx, fasthttp.StatusBadGateway, chessdto.DomainError{
			Code: "history_unavailable", Message: "could not list snapshots", Retryable: true,
		})
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, chesspresenter.ToDTOHistory(list))
}

func (s *Server) stateDTO() *chessdto.SessionState {
	return chesspresenter.ToDTOState(s.game.State(), s.remaining(), nil)
}

func (s *Server) writeState(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, s.stateDTO())
}

func decodeBody(ctx *fasthttp.RequestCtx, v any) bool {
	body := ctx.PostBody()
	if len(body) == 0 {
		writeError(ctx, fasthttp.StatusBadRequest, "empty_body", "request body is required")
		return false
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var syntaxErr *json.SyntaxError
		msg := "invalid JSON"
		if !errors.As(err, &syntaxErr) {
			msg = err.Error()
		}
		writeError(ctx, fasthttp.StatusBadRequest, "bad_json", msg)
		return false
	}
	return true
}

func writeError(ctx *fasthttp.RequestCtx, status int, code, msg string) {
	writeJSON(ctx, status, chessdto.DomainError{Code: code, Message: msg})
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		ctx.Error("encode response", fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType(contentTypeJSON)
	ctx.SetBody(payload)
}
