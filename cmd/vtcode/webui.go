package main

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/vtcode/vtcode/pkg/bus"
	"github.com/vtcode/vtcode/pkg/vtlog"
)

// serveWebUI exposes the event bus over a websocket at /events, mirroring
// the teacher's webui channel pattern but stripped to a single read-only
// event mirror: a remote UI collaborator connects, and every bus.Event from
// that point on is forwarded as a JSON frame via bus.WSBridge. It never
// accepts inbound messages; steering stays on the local REPL/one-shot path.
func serveWebUI(ctx context.Context, eventBus *bus.Bus, addr string) {
	log := vtlog.For("cmd.webui")

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}
		bridge := bus.NewWSBridge(conn)
		go func() {
			if err := bridge.Run(ctx, eventBus.Subscribe()); err != nil {
				log.Debug().Err(err).Msg("webui bridge closed")
			}
		}()
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	log.Info().Str("addr", addr).Msg("web UI event bridge listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("web UI server stopped")
	}
}
