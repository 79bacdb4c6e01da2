package signal

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rutaCognizant/planning-poker/internal/app"
	"github.com/rutaCognizant/planning-poker/internal/core"
)

type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func startServer(t *testing.T, opts Options) (*app.Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	hub := app.NewHub()
	go hub.Run(ctx)

	ctl := NewSignalWSController(hub, opts)
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { ctl.HandleSignal(ctx, c) })
	srv := httptest.NewServer(r)

	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func sendJSON(t *testing.T, ws *websocket.Conn, typ string, payload any) {
	t.Helper()
	require.NoError(t, ws.WriteJSON(map[string]any{"type": typ, "payload": payload}))
}

func readFrame(t *testing.T, ws *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f frame
	require.NoError(t, ws.ReadJSON(&f))
	return f
}

func testOptions() Options {
	return Options{
		ReadLimit:  4096,
		PingPeriod: time.Second,
		SendBuffer: 16,
		RateLimit:  20,
		RateWindow: time.Second,
	}
}

func TestSignalRoundTrip(t *testing.T) {
	hub, url := startServer(t, testOptions())

	alice := dial(t, url)
	sendJSON(t, alice, "create-room", map[string]any{"roomName": "Sprint 1", "userName": "Alice"})
	created := readFrame(t, alice)
	require.Equal(t, "room-created", created.Type)

	var p struct {
		RoomID string `json:"roomId"`
	}
	require.NoError(t, json.Unmarshal(created.Payload, &p))
	require.Len(t, p.RoomID, 8)

	bob := dial(t, url)
	sendJSON(t, bob, "join-room", map[string]any{"roomId": p.RoomID, "userName": "Bob"})
	assert.Equal(t, "room-joined", readFrame(t, bob).Type)
	assert.Equal(t, "user-joined", readFrame(t, alice).Type)

	sendJSON(t, bob, "cast-vote", map[string]any{"vote": "8"})
	voted := readFrame(t, alice)
	assert.Equal(t, "vote-cast", voted.Type)
	assert.Contains(t, string(voted.Payload), `"hidden"`)
	assert.Equal(t, "vote-cast", readFrame(t, bob).Type)

	require.NoError(t, bob.Close())
	assert.Equal(t, "user-left", readFrame(t, alice).Type)

	require.NoError(t, alice.Close())
	require.Eventually(t, func() bool {
		s, err := hub.Stats(context.Background())
		return err == nil && s.ActiveRooms == 0 && s.Connections == 0
	}, 2*time.Second, 20*time.Millisecond)
}

func TestSignalDropsBadFrames(t *testing.T) {
	_, url := startServer(t, testOptions())
	ws := dial(t, url)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("{not json")))
	sendJSON(t, ws, "launch-rockets", map[string]any{})
	sendJSON(t, ws, "cast-vote", map[string]any{"vote": "7"})
	sendJSON(t, ws, "ping", nil)

	assert.Equal(t, "pong", readFrame(t, ws).Type, "connection survives bad frames")
}

func TestSignalRateLimit(t *testing.T) {
	opts := testOptions()
	opts.RateLimit = 2
	opts.RateWindow = time.Minute
	_, url := startServer(t, opts)
	ws := dial(t, url)

	for range 3 {
		sendJSON(t, ws, "ping", nil)
	}
	assert.Equal(t, "pong", readFrame(t, ws).Type)
	assert.Equal(t, "pong", readFrame(t, ws).Type)

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := ws.ReadMessage()
	assert.Error(t, err, "third ping is dropped")
}

func TestWsSignalConnBackpressure(t *testing.T) {
	c := &WsSignalConn{send: make(chan core.Frame, 1)}
	require.NoError(t, c.TrySend(core.Frame("a")))
	assert.ErrorIs(t, c.TrySend(core.Frame("b")), ErrBackpressure)
}
