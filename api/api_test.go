package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cameroncuttingedge/tic_tac_toe_rooms/config"
	"github.com/cameroncuttingedge/tic_tac_toe_rooms/events"
	"github.com/cameroncuttingedge/tic_tac_toe_rooms/game"
	"github.com/cameroncuttingedge/tic_tac_toe_rooms/metrics"
	"github.com/cameroncuttingedge/tic_tac_toe_rooms/websocket"
	gorillaws "github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wsConfig = config.WebSocketConfig{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	SendBuffer:      16,
	MaxMessageSize:  4096,
	WriteWait:       time.Second,
	PongWait:        10 * time.Second,
	PingPeriod:      9 * time.Second,
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	svc := game.NewService(game.NewRegistry(), game.WithConclusionDelay(10*time.Millisecond), game.WithMetrics(m))
	hub := websocket.NewHub(svc, m)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(New(svc, hub, wsConfig, reg).Router())
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *gorillaws.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func write(t *testing.T, conn *gorillaws.Conn, event string, data any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(events.Envelope{Event: event, Data: data}))
}

func read(t *testing.T, conn *gorillaws.Conn, event string) events.RawEnvelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env events.RawEnvelope
	require.NoError(t, conn.ReadJSON(&env))
	require.Equal(t, event, env.Event)
	return env
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestStatusHandler(t *testing.T) {
	srv := newTestServer(t)
	status, body := get(t, srv.URL+"/")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Server is running", body)
}

func TestGameStateNotFound(t *testing.T) {
	srv := newTestServer(t)
	status, _ := get(t, srv.URL+"/game/nope/state")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGameOverWebSocket(t *testing.T) {
	srv := newTestServer(t)
	host := dial(t, srv)
	guest := dial(t, srv)

	write(t, host, events.CreateGame, events.CreateGamePayload{RoomID: "r1", BoardSizeLabel: "3x3", HostPlaysX: true})
	env := read(t, host, events.AssignSymbol)
	var assigned events.AssignSymbolPayload
	require.NoError(t, json.Unmarshal(env.Data, &assigned))
	assert.Equal(t, events.AssignSymbolPayload{Symbol: "X", IsHost: true}, assigned)
	read(t, host, events.WaitingForOpponent)

	status, body := get(t, srv.URL+"/game/r1/state")
	require.Equal(t, http.StatusOK, status)
	var state events.GameState
	require.NoError(t, json.Unmarshal([]byte(body), &state))
	assert.Len(t, state.Players, 1)
	assert.Equal(t, state.Players[0], state.Host)
	assert.Len(t, state.WinningLines, 8)

	write(t, guest, events.JoinGame, "r1")
	read(t, guest, events.AssignSymbol)
	read(t, guest, events.GameStart)
	read(t, host, events.GameStart)

	moves := []struct {
		conn *gorillaws.Conn
		idx  int
	}{{host, 0}, {guest, 3}, {host, 1}, {guest, 4}, {host, 2}}
	for _, m := range moves {
		write(t, m.conn, events.MakeMove, events.MakeMovePayload{RoomID: "r1", CellIndex: m.idx})
		read(t, host, events.UpdateBoard)
		read(t, guest, events.UpdateBoard)
	}

	for _, conn := range []*gorillaws.Conn{host, guest} {
		env := read(t, conn, events.GameOver)
		var over events.GameOverPayload
		require.NoError(t, json.Unmarshal(env.Data, &over))
		assert.Equal(t, events.GameOverPayload{Winner: "X", WinningLine: []int{0, 1, 2}}, over)
	}

	host.Close()
	read(t, guest, events.HostLeft)

	require.Eventually(t, func() bool {
		status, _ := get(t, srv.URL+"/game/r1/state")
		return status == http.StatusNotFound
	}, 2*time.Second, 20*time.Millisecond)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv)
	write(t, conn, events.JoinGame, "missing")
	read(t, conn, events.GameNotFound)

	status, body := get(t, srv.URL+"/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "tictactoe_connections 1")
	assert.Contains(t, body, `tictactoe_events_total{event="joinGame"} 1`)
}
