package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/park285/Cheese-Board/internal/adapter/chesspresenter"
	"github.com/park285/Cheese-Board/internal/board"
	"github.com/park285/Cheese-Board/internal/clock"
	appcfg "github.com/park285/Cheese-Board/internal/config"
	"github.com/park285/Cheese-Board/internal/display"
	"github.com/park285/Cheese-Board/internal/history"
	"github.com/park285/Cheese-Board/internal/httpapi"
	"github.com/park285/Cheese-Board/internal/obslog"
	"github.com/park285/Cheese-Board/internal/render"
	"github.com/park285/Cheese-Board/internal/session"
	"go.uber.org/zap"
)

const (
	presentTimeout  = 10 * time.Second
	presentQueue    = 32
	shutdownTimeout = 5 * time.Second
)

type change struct {
	ev session.Event
	st session.State
}

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.Init(cfg.LogOptions()); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal("history_init_error", zap.String("backend", cfg.HistoryBackend), zap.Error(err))
	}
	defer closeStore()

	autoColor, err := board.ParseColor(cfg.AutomatedColor)
	if err != nil {
		logger.Fatal("config_error", zap.Error(err))
	}
	game := session.New(session.Config{
		Automated:      cfg.AutomatedOpponent,
		AutomatedColor: autoColor,
		AutoMoveDelay:  cfg.AutoMoveDelay(),
		PlayerID:       cfg.PlayerID,
	}, session.WithStore(store), session.WithLogger(logger.Named("session")))
	defer game.Close()

	countdown := clock.New(cfg.GameTimeLimit(), clock.OnExpire(game.OnTimeExpired))
	go countdown.Run(ctx)

	var (
		egress display.Egress
		ws     *display.WebSocket
	)
	if cfg.DisplayEnabled() {
		egress, ws = connectDisplay(ctx, cfg, game, logger)
	}
	if ws != nil {
		defer func() { _ = ws.Close(context.Background()) }()
	}

	sink := chesspresenter.Sink{}
	if egress != nil {
		sink.SendMessage = egress.SendText
		sink.SendImage = egress.SendImage
	}
	presenter := chesspresenter.NewPresenter(render.NewSVGBoardRenderer(), chesspresenter.NewFormatter(), sink)

	changes := make(chan change, presentQueue)
	game.OnChange(func(ev session.Event, st session.State) {
		if ev == session.EventNewGame || ev == session.EventLoad {
			countdown.Reset()
		}
		select {
		case changes <- change{ev: ev, st: st}:
		default:
			logger.Warn("present_queue_full", zap.String("event", string(ev)))
		}
	})
	go presentLoop(ctx, changes, presenter, egress, countdown, logger)

	api := httpapi.New(game, presenter,
		httpapi.WithRemaining(countdown.Remaining),
		httpapi.WithCORSOrigin(cfg.CORSOrigin),
		httpapi.WithLogger(logger.Named("http")),
	)
	srv := api.NewHTTPServer()
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(cfg.HTTPAddr) }()
	logger.Info("http_listening",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("session_id", game.State().SessionID),
		zap.String("player_id", game.PlayerID()),
		zap.Bool("automated", cfg.AutomatedOpponent),
	)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Error("http_serve_error", zap.Error(err))
		}
	}
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.ShutdownWithContext(sctx); err != nil {
		logger.Warn("http_shutdown_error", zap.Error(err))
	}
	logger.Info("shutdown_complete")
}

func openStore(ctx context.Context, cfg *appcfg.AppConfig) (history.Store, func(), error) {
	switch cfg.HistoryBackend {
	case appcfg.BackendRedis:
		rdb, err := history.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return history.NewRedisStore(rdb, cfg.HistoryTTL()), func() { _ = rdb.Close() }, nil
	case appcfg.BackendPostgres:
		pg, err := history.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return pg, func() { _ = pg.Close() }, nil
	case appcfg.BackendMemory:
		return history.NewMemoryStore(), func() {}, nil
	}
	return nil, nil, errors.New("unknown history backend " + cfg.HistoryBackend)
}

// connectDisplay wires the remote display. A failed WebSocket dial is not fatal: the
// reconnect loop keeps trying and auto mode falls back to HTTP meanwhile.
func connectDisplay(ctx context.Context, cfg *appcfg.AppConfig, game *session.Session, logger *zap.Logger) (display.Egress, *display.WebSocket) {
	var client *display.Client
	if cfg.DisplayBaseURL != "" {
		client = display.NewClient(cfg.DisplayBaseURL)
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := client.Ping(pctx); err != nil {
			logger.Warn("display_ping_failed", zap.String("url", cfg.DisplayBaseURL), zap.Error(err))
		}
		cancel()
	}

	var ws *display.WebSocket
	if cfg.DisplayWSURL != "" {
		ws = display.NewWebSocket(cfg.DisplayWSURL, 5)
		ws.OnStateChange(func(state display.WebSocketState) {
			logger.Info("display_ws_state", zap.String("state", state.String()))
		})
		display.Route(ws, game, logger.Named("display"))
		cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := ws.Connect(cctx); err != nil {
			logger.Warn("display_ws_connect_failed", zap.String("url", cfg.DisplayWSURL), zap.Error(err))
		}
		cancel()
	}
	return display.NewEgress(cfg.DisplayTransport, false, client, ws, logger.Named("egress")), ws
}

// presentLoop renders changes in order and pushes them to the display, if any.
func presentLoop(ctx context.Context, changes <-chan change, p *chesspresenter.Presenter, egress display.Egress, countdown *clock.Countdown, logger *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-changes:
			if egress == nil {
				continue
			}
			pctx, cancel := context.WithTimeout(ctx, presentTimeout)
			dto, err := p.Present(pctx, c.ev, c.st, countdown.Remaining())
			if err != nil {
				logger.Warn("present_error", zap.String("event", string(c.ev)), zap.Error(err))
			} else if err := egress.SendState(pctx, dto); err != nil {
				logger.Warn("state_push_error", zap.Error(err))
			}
			cancel()
		}
	}
}
