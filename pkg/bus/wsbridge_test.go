package bus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWSBridgeForwardsEventsAsJSONFrames(t *testing.T) {
	events := make(chan Event, 1)
	done := make(chan error, 1)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		bridge := NewWSBridge(conn)
		done <- bridge.Run(context.Background(), events)
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer client.Close()

	events <- Event{Kind: KindTurnStarted, TurnID: "t1"}

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	var received Event
	require.NoError(t, client.ReadJSON(&received))
	assert.Equal(t, KindTurnStarted, received.Kind)
	assert.Equal(t, "t1", received.TurnID)

	close(events)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("bridge.Run did not return after channel close")
	}
}

func TestWSBridgeStopsOnContextCancellation(t *testing.T) {
	events := make(chan Event)
	done := make(chan error, 1)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		bridge := NewWSBridge(conn)
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(50 * time.Millisecond)
			cancel()
		}()
		done <- bridge.Run(ctx, events)
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer client.Close()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("bridge.Run did not return after context cancellation")
	}
}
