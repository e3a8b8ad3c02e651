package signal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/campfire/internal/app"
	"github.com/dkeye/campfire/internal/app/orch"
	"github.com/dkeye/campfire/internal/domain"
	"github.com/dkeye/campfire/internal/store"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wsHarness struct {
	t     *testing.T
	o     *orch.Orchestrator
	users *store.Users
	rooms *store.Rooms
	srv   *httptest.Server
	ctl   *SignalWSController
}

func newWSHarness(t *testing.T, limiter Limiter) *wsHarness {
	t.Helper()
	db, err := store.Open(store.Config{Driver: store.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))
	t.Cleanup(func() { _ = store.Close(db) })

	h := &wsHarness{t: t, users: store.NewUsers(db), rooms: store.NewRooms(db)}
	h.o = orch.New(app.NewRegistry(), orch.Stores{
		Rooms:    h.rooms,
		Messages: store.NewMessages(db),
		Projects: store.NewProjects(db),
		Identity: h.users,
	}, app.SimplePolicy{})
	h.ctl = NewSignalWSController(h.o, limiter, Options{SendBuffer: 16})

	ctx, cancel := context.WithCancel(context.Background())
	h.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var user *domain.User
		if name := r.URL.Query().Get("as"); name != "" {
			u, err := h.users.Ensure(r.Context(), name, "")
			if err == nil {
				user = &u
			}
		}
		h.ctl.HandleSignal(ctx, w, r, user)
	}))
	t.Cleanup(func() {
		cancel()
		h.srv.Close()
	})
	return h
}

func (h *wsHarness) dial(query string) *websocket.Conn {
	h.t.Helper()
	url := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "/?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(h.t, err)
	h.t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(v))
}

// next reads events until one of type typ arrives.
func next(t *testing.T, conn *websocket.Conn, typ string) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var ev map[string]any
		require.NoError(t, json.Unmarshal(data, &ev))
		if ev["type"] == typ {
			return ev
		}
	}
}

func TestSignal_Ping(t *testing.T) {
	h := newWSHarness(t, nil)
	conn := h.dial("as=alice")

	send(t, conn, map[string]any{"type": "ping"})
	next(t, conn, "pong")
}

func TestSignal_BadPayload(t *testing.T) {
	h := newWSHarness(t, nil)
	conn := h.dial("as=alice")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	ev := next(t, conn, "error")
	assert.Equal(t, "bad_payload", ev["error"])

	send(t, conn, map[string]any{"type": "ping"})
	next(t, conn, "pong")
}

func TestSignal_CreateJoinChat(t *testing.T) {
	h := newWSHarness(t, nil)
	alice := h.dial("as=alice")
	bob := h.dial("as=bob")

	send(t, alice, map[string]any{"type": "createRoom", "id": "1", "name": "study-1"})
	ack := next(t, alice, "ack")
	assert.Equal(t, "1", ack["id"])
	assert.Equal(t, "createRoom", ack["event"])
	assert.Equal(t, true, ack["ok"])
	roomID := ack["roomId"].(string)
	require.NotEmpty(t, roomID)

	created := next(t, bob, "room_created")
	assert.Equal(t, roomID, created["roomId"])

	send(t, alice, map[string]any{"type": "joinRoom", "id": "2", "identifier": "study-1"})
	ack = next(t, alice, "ack")
	assert.Equal(t, true, ack["ok"])
	assert.Equal(t, "study-1", ack["roomName"])
	assert.Equal(t, []any{}, ack["history"])

	send(t, bob, map[string]any{"type": "joinRoom", "id": "3", "identifier": roomID})
	require.Equal(t, true, next(t, bob, "ack")["ok"])
	joined := next(t, alice, "message")
	assert.Equal(t, true, joined["system"])
	assert.Equal(t, "bob joined", joined["text"])

	send(t, alice, map[string]any{"type": "chatMessage", "id": "4", "text": "hi"})
	for _, c := range []*websocket.Conn{alice, bob} {
		msg := next(t, c, "message")
		assert.Equal(t, "alice", msg["username"])
		assert.Equal(t, "hi", msg["text"])
	}
	ack = next(t, alice, "ack")
	assert.Equal(t, "chatMessage", ack["event"])
	assert.Equal(t, true, ack["ok"])
}

func TestSignal_JoinUnknownRoom(t *testing.T) {
	h := newWSHarness(t, nil)
	conn := h.dial("as=alice")

	send(t, conn, map[string]any{"type": "joinRoom", "identifier": "nowhere"})
	nf := next(t, conn, "room_not_found")
	assert.Equal(t, "nowhere", nf["identifier"])
	ack := next(t, conn, "ack")
	assert.Equal(t, false, ack["ok"])
	assert.Equal(t, orch.CodeRoomNotFound, ack["error"])
}

func TestSignal_AnonymousUsesPayloadUsername(t *testing.T) {
	h := newWSHarness(t, nil)
	_, err := h.users.Ensure(context.Background(), "student1", "Alice Johnson")
	require.NoError(t, err)
	_, err = h.rooms.Create(context.Background(), "lobby")
	require.NoError(t, err)
	conn := h.dial("")

	send(t, conn, map[string]any{"type": "joinRoom", "roomId": "lobby", "username": "Alice Johnson"})
	require.Equal(t, true, next(t, conn, "ack")["ok"])

	send(t, conn, map[string]any{"type": "whoami"})
	who := next(t, conn, "whoami")
	assert.Equal(t, "student1", who["username"])
	assert.Equal(t, "lobby", who["roomName"])
}

func TestSignal_RateLimited(t *testing.T) {
	h := newWSHarness(t, NewRoomRateLimiter(1, time.Minute))
	_, err := h.rooms.Create(context.Background(), "lobby")
	require.NoError(t, err)
	conn := h.dial("as=alice")

	send(t, conn, map[string]any{"type": "joinRoom", "identifier": "lobby"})
	require.Equal(t, true, next(t, conn, "ack")["ok"])

	send(t, conn, map[string]any{"type": "chatMessage", "text": "one"})
	require.Equal(t, true, next(t, conn, "ack")["ok"])

	send(t, conn, map[string]any{"type": "chatMessage", "text": "two"})
	ack := next(t, conn, "ack")
	assert.Equal(t, false, ack["ok"])
	assert.Equal(t, codeRateLimited, ack["error"])
}

func TestSignal_CloseDisconnects(t *testing.T) {
	h := newWSHarness(t, nil)
	_, err := h.rooms.Create(context.Background(), "lobby")
	require.NoError(t, err)
	alice := h.dial("as=alice")
	bob := h.dial("as=bob")

	send(t, alice, map[string]any{"type": "joinRoom", "identifier": "lobby"})
	require.Equal(t, true, next(t, alice, "ack")["ok"])
	send(t, bob, map[string]any{"type": "joinRoom", "identifier": "lobby"})
	require.Equal(t, true, next(t, bob, "ack")["ok"])

	require.NoError(t, alice.Close())

	left := next(t, bob, "message")
	assert.Equal(t, "alice left", left["text"])
	require.Eventually(t, func() bool { return h.o.Registry.Count() == 1 }, 2*time.Second, 10*time.Millisecond)
}
