package bus

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vtcode/vtcode/pkg/vtlog"
)

// WSBridge forwards every Event from a Bus subscription to a websocket
// connection as a JSON text frame, for a remote UI collaborator. This is
// additive to the in-process Sink model: it is itself a best-effort
// subscriber and never blocks turn execution on a slow or disconnected
// network peer.
type WSBridge struct {
	conn *websocket.Conn
}

// NewWSBridge wraps an already-established websocket connection.
func NewWSBridge(conn *websocket.Conn) *WSBridge {
	return &WSBridge{conn: conn}
}

const writeTimeout = 2 * time.Second

// Run consumes events from the bus until ctx is cancelled or the channel
// closes, writing each as a JSON frame. A write error closes the connection
// and returns; it does not panic or retry, matching the bus's drop-rather-
// than-block discipline.
func (w *WSBridge) Run(ctx context.Context, events <-chan Event) error {
	defer w.conn.Close()
	log := vtlog.For("bus.wsbridge")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			w.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := w.conn.WriteJSON(ev); err != nil {
				log.Warn().Err(err).Msg("websocket bridge write failed, closing")
				return err
			}
		}
	}
}
