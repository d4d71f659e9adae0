// displaycheck probes a remote board display: it pings the HTTP endpoint, posts one text
// frame and, when a WebSocket URL is configured, prints the events it receives for a while.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	appcfg "github.com/park285/Cheese-Board/internal/config"
	"github.com/park285/Cheese-Board/internal/display"
)

const observeWindow = 10 * time.Second

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if !cfg.DisplayEnabled() {
		log.Fatal("DISPLAY_BASE_URL or DISPLAY_WS_URL is required")
	}

	if cfg.DisplayBaseURL != "" {
		client := display.NewClient(cfg.DisplayBaseURL, display.WithTimeout(8*time.Second))
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := client.Ping(ctx); err != nil {
			log.Printf("/health error: %v", err)
		} else {
			log.Printf("/health ok: %s", cfg.DisplayBaseURL)
		}
		if err := client.SendText(ctx, "displaycheck: hello"); err != nil {
			log.Printf("/frame error: %v", err)
		} else {
			log.Println("/frame ok")
		}
		cancel()
	}

	if cfg.DisplayWSURL == "" {
		log.Println("DISPLAY_WS_URL not set; skipping WS check")
		return
	}

	ws := display.NewWebSocket(cfg.DisplayWSURL, 0)
	ws.OnStateChange(func(state display.WebSocketState) {
		log.Printf("WS state: %s", state)
	})
	ws.OnEvent(func(ev *display.Event) {
		fmt.Printf("WS event type=%s row=%d col=%d\n", ev.Type, ev.Row, ev.Col)
	})

	cctx, ccancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer ccancel()
	if err := ws.Connect(cctx); err != nil {
		log.Printf("WS connect error: %v", err)
		return
	}

	t := time.NewTimer(observeWindow)
	<-t.C

	_ = ws.Close(context.Background())
}
