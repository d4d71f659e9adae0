// Package session owns a single game: the board, whose turn it is, the click selection
// and the automated opponent. It is the only code that mutates a board.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/park285/Cheese-Board/internal/board"
	"github.com/park285/Cheese-Board/internal/history"
	"github.com/park285/Cheese-Board/internal/obslog"
	"github.com/park285/Cheese-Board/internal/rules"
	"github.com/park285/Cheese-Board/internal/selector"
	"go.uber.org/zap"
)

const persistTimeout = 5 * time.Second

type Session struct {
	mu sync.Mutex

	board     board.Board
	active    board.Color
	sessionID string
	playerID  string
	selected  *board.Square
	lastMove  *board.Move

	automated bool
	autoColor board.Color
	delay     time.Duration

	// gen changes whenever the game is replaced; scheduled moves from an older gen are dropped.
	gen     uint64
	pending Timer

	selector selector.Selector
	store    history.Store
	ids      IDGenerator
	now      func() time.Time
	schedule ScheduleFunc
	logger   *zap.Logger

	lmu       sync.RWMutex
	listeners []Listener
}

type Option func(*Session)

func WithSelector(sel selector.Selector) Option {
	return func(s *Session) { s.selector = sel }
}

// WithStore sets the persistence collaborator. Without one, snapshots are dropped.
func WithStore(st history.Store) Option {
	return func(s *Session) { s.store = st }
}

func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Session) { s.ids = gen }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithScheduler replaces time.AfterFunc. fn must not run f synchronously: it is called with
// the session lock held.
func WithScheduler(fn ScheduleFunc) Option {
	return func(s *Session) { s.schedule = fn }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// New creates a session with a fresh initial board and White to move.
func New(cfg Config, opts ...Option) *Session {
	s := &Session{
		automated: cfg.Automated,
		autoColor: cfg.AutomatedColor,
		delay:     cfg.AutoMoveDelay,
		ids:       NewID,
		now:       time.Now,
		schedule:  afterFunc,
	}
	for _, opt := range opts {
		opt(s)
	}
	if !s.autoColor.Valid() {
		s.autoColor = board.Black
	}
	if s.delay <= 0 {
		s.delay = defaultAutoMoveDelay
	}
	if s.selector == nil {
		s.selector = selector.NewRandom(nil)
	}
	if s.logger == nil {
		s.logger = obslog.L()
	}
	s.playerID = cfg.PlayerID
	if s.playerID == "" {
		s.playerID = s.ids()
	}

	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
	return s
}

// OnChange registers a listener for every state change.
func (s *Session) OnChange(l Listener) {
	if l == nil {
		return
	}
	s.lmu.Lock()
	s.listeners = append(s.listeners, l)
	s.lmu.Unlock()
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) PlayerID() string { return s.playerID }

// Click drives the selection state machine. The second click always clears the selection,
// whether or not it produced a move.
func (s *Session) Click(ctx context.Context, sq board.Square) ClickResult {
	s.mu.Lock()
	if s.automatedTurnLocked() {
		s.mu.Unlock()
		return ClickResult{}
	}

	if s.selected == nil {
		p, ok := s.board.At(sq)
		if !ok || p.Color != s.active {
			s.mu.Unlock()
			return ClickResult{}
		}
		sel := sq
		s.selected = &sel
		st := s.stateLocked()
		s.mu.Unlock()
		s.notify(EventSelect, st)
		return ClickResult{Selected: true}
	}

	from := *s.selected
	s.selected = nil
	if !rules.IsLegal(s.board, s.active, from, sq) {
		st := s.stateLocked()
		s.mu.Unlock()
		s.notify(EventDeselect, st)
		return ClickResult{}
	}
	snap := s.applyLocked(from, sq)
	st := s.stateLocked()
	s.mu.Unlock()

	s.logMove("game_move", from, sq, st)
	s.persist(ctx, snap)
	s.notify(EventMove, st)
	return ClickResult{Moved: true, Legal: true}
}

// TryMove attempts from->to for the side to move. It reports false, with no state change,
// when the move is illegal, from does not hold a piece of the side to move, or the
// automated side is to move.
func (s *Session) TryMove(ctx context.Context, from, to board.Square) bool {
	s.mu.Lock()
	if s.automatedTurnLocked() {
		s.mu.Unlock()
		return false
	}
	p, ok := s.board.At(from)
	if !ok || p.Color != s.active || !rules.IsLegal(s.board, s.active, from, to) {
		s.mu.Unlock()
		return false
	}
	s.selected = nil
	snap := s.applyLocked(from, to)
	st := s.stateLocked()
	s.mu.Unlock()

	s.logMove("game_move", from, to, st)
	s.persist(ctx, snap)
	s.notify(EventMove, st)
	return true
}

// Destinations lists legal targets for the piece on from, for highlighting.
func (s *Session) Destinations(from board.Square) []board.Square {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.board.At(from)
	if !ok || p.Color != s.active {
		return nil
	}
	return rules.Destinations(s.board, s.active, from)
}

// NewGame replaces the game with a fresh one and cancels any pending automated move.
func (s *Session) NewGame() {
	s.mu.Lock()
	s.resetLocked()
	st := s.stateLocked()
	s.mu.Unlock()
	s.logger.Info("game_new", zap.String("session_id", st.SessionID), zap.Bool("automated", st.Automated))
	s.notify(EventNewGame, st)
}

// SetAutomated switches between playing the computer and two callers, starting a new game.
func (s *Session) SetAutomated(on bool) {
	s.mu.Lock()
	s.automated = on
	s.resetLocked()
	st := s.stateLocked()
	s.mu.Unlock()
	s.logger.Info("game_mode", zap.String("session_id", st.SessionID), zap.Bool("automated", on))
	s.notify(EventNewGame, st)
}

// OnTimeExpired is the countdown hook: the game is over and a new one starts.
func (s *Session) OnTimeExpired() {
	s.logger.Info("game_time_expired", zap.String("session_id", s.State().SessionID))
	s.NewGame()
}

// LoadLatestSnapshot replaces the board and session id with this player's most recent
// snapshot. It returns false and leaves the session untouched when there is none.
// A loaded game always resumes with White to move and nothing selected.
func (s *Session) LoadLatestSnapshot(ctx context.Context) (bool, error) {
	if s.store == nil {
		return false, nil
	}
	snap, err := s.store.Latest(ctx, s.playerID)
	if err != nil {
		return false, err
	}
	if snap == nil {
		return false, nil
	}

	s.mu.Lock()
	s.cancelPendingLocked()
	s.board = snap.Board
	s.sessionID = snap.SessionID
	s.active = board.White
	s.selected = nil
	s.lastMove = nil
	s.maybeScheduleLocked()
	st := s.stateLocked()
	s.mu.Unlock()

	s.logger.Info("game_load",
		zap.String("session_id", st.SessionID),
		zap.String("player_id", s.playerID),
		zap.Time("snapshot_at", snap.Timestamp),
	)
	s.notify(EventLoad, st)
	return true, nil
}

// History lists this player's snapshots, newest first.
func (s *Session) History(ctx context.Context, limit int) ([]history.Snapshot, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.List(ctx, s.playerID, limit)
}

// Close cancels any pending automated move.
func (s *Session) Close() {
	s.mu.Lock()
	s.cancelPendingLocked()
	s.mu.Unlock()
}

func (s *Session) resetLocked() {
	s.cancelPendingLocked()
	s.board = board.Initial()
	s.active = board.White
	s.sessionID = s.ids()
	s.selected = nil
	s.lastMove = nil
	s.maybeScheduleLocked()
}

func (s *Session) applyLocked(from, to board.Square) history.Snapshot {
	s.board.Relocate(from, to)
	s.active = s.active.Opponent()
	s.lastMove = &board.Move{From: from, To: to}
	snap := history.Snapshot{
		SessionID: s.sessionID,
		Board:     s.board,
		Timestamp: s.now(),
		PlayerID:  s.playerID,
	}
	s.maybeScheduleLocked()
	return snap
}

func (s *Session) automatedTurnLocked() bool {
	return s.automated && s.active == s.autoColor
}

func (s *Session) maybeScheduleLocked() {
	if !s.automatedTurnLocked() {
		return
	}
	gen, sid := s.gen, s.sessionID
	s.pending = s.schedule(s.delay, func() { s.runAutomatedMove(gen, sid) })
}

func (s *Session) cancelPendingLocked() {
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.gen++
}

func (s *Session) runAutomatedMove(gen uint64, sessionID string) {
	s.mu.Lock()
	if s.gen != gen || s.sessionID != sessionID || !s.automatedTurnLocked() {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	mv, ok := s.selector.SelectMove(s.board, s.active)
	if !ok {
		color := s.active
		s.mu.Unlock()
		s.logger.Info("auto_move_none",
			zap.String("session_id", sessionID),
			zap.String("color", color.String()),
			zap.String("selector", s.selector.Name()),
		)
		return
	}
	s.selected = nil
	snap := s.applyLocked(mv.From, mv.To)
	st := s.stateLocked()
	s.mu.Unlock()

	s.logMove("auto_move", mv.From, mv.To, st, zap.String("selector", s.selector.Name()))
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	s.persist(ctx, snap)
	s.notify(EventAutoMove, st)
}

func (s *Session) stateLocked() State {
	st := State{
		SessionID:      s.sessionID,
		PlayerID:       s.playerID,
		Board:          s.board,
		Active:         s.active,
		Automated:      s.automated,
		AutomatedColor: s.autoColor,
	}
	if s.lastMove != nil {
		mv := *s.lastMove
		st.LastMove = &mv
	}
	if s.selected != nil {
		sel := *s.selected
		st.Selected = &sel
		st.Highlights = rules.Destinations(s.board, s.active, sel)
	}
	return st
}

func (s *Session) persist(ctx context.Context, snap history.Snapshot) {
	if s.store == nil {
		return
	}
	if err := s.store.Append(ctx, snap); err != nil {
		s.logger.Warn("snapshot_append_error", zap.String("session_id", snap.SessionID), zap.Error(err))
	}
}

func (s *Session) notify(ev Event, st State) {
	s.lmu.RLock()
	ls := make([]Listener, len(s.listeners))
	copy(ls, s.listeners)
	s.lmu.RUnlock()
	for _, l := range ls {
		l(ev, st)
	}
}

func (s *Session) logMove(msg string, from, to board.Square, st State, extra ...zap.Field) {
	fields := append([]zap.Field{
		zap.String("session_id", st.SessionID),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
		zap.String("turn", st.Active.String()),
	}, extra...)
	s.logger.Info(msg, fields...)
}
