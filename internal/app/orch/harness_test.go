package orch

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
	"sync"
	"testing"

	"github.com/dkeye/campfire/internal/app"
	"github.com/dkeye/campfire/internal/core"
	"github.com/dkeye/campfire/internal/domain"
	"github.com/dkeye/campfire/internal/store"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var errQueueFull = errors.New("queue full")

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	full   bool
	closed bool
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.full || c.closed {
		return errQueueFull
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) setFull(full bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.full = full
}

type event map[string]any

func (c *fakeConn) events(t *testing.T) []event {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]event, 0, len(c.frames))
	for _, f := range c.frames {
		var e event
		require.NoError(t, json.Unmarshal(f, &e))
		out = append(out, e)
	}
	return out
}

func (c *fakeConn) eventsOfType(t *testing.T, typ string) []event {
	t.Helper()
	var out []event
	for _, e := range c.events(t) {
		if e["type"] == typ {
			out = append(out, e)
		}
	}
	return out
}

type harness struct {
	t        *testing.T
	o        *Orchestrator
	db       *gorm.DB
	rooms    *store.Rooms
	messages *store.Messages
	projects *store.Projects
	users    *store.Users
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := store.Open(store.Config{Driver: store.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))
	t.Cleanup(func() { _ = store.Close(db) })

	h := &harness{
		t:        t,
		db:       db,
		rooms:    store.NewRooms(db),
		messages: store.NewMessages(db),
		projects: store.NewProjects(db),
		users:    store.NewUsers(db),
	}
	h.o = New(app.NewRegistry(), Stores{
		Rooms:    h.rooms,
		Messages: h.messages,
		Projects: h.projects,
		Identity: h.users,
	}, app.SimplePolicy{})
	return h
}

func (h *harness) user(username string) domain.User {
	h.t.Helper()
	u, err := h.users.Ensure(context.Background(), username, "")
	require.NoError(h.t, err)
	return u
}

func (h *harness) room(room domain.Room) domain.Room {
	h.t.Helper()
	r, err := h.rooms.Insert(context.Background(), room)
	require.NoError(h.t, err)
	return r
}

type client struct {
	h    *harness
	sid  core.SessionID
	conn *fakeConn
	name string
}

// connect binds a connection with a verified identity.
func (h *harness) connect(sid string, user domain.User) *client {
	conn := &fakeConn{}
	u := user
	h.o.Connect(core.SessionID(sid), &u, conn, nil)
	return &client{h: h, sid: core.SessionID(sid), conn: conn, name: user.Username}
}

// connectAnon binds a connection whose identity comes from payload usernames.
func (h *harness) connectAnon(sid, username string) *client {
	conn := &fakeConn{}
	h.o.Connect(core.SessionID(sid), nil, conn, nil)
	return &client{h: h, sid: core.SessionID(sid), conn: conn, name: username}
}

// do dispatches cmd and reports the ack, if any was sent.
func (c *client) do(cmd Command) (Ack, bool) {
	var got Ack
	called := false
	c.h.o.Dispatch(context.Background(), c.sid, cmd, func(a Ack) {
		got = a
		called = true
	})
	return got, called
}

func (c *client) join(identifier string) Ack {
	c.h.t.Helper()
	ref, err := domain.ParseRoomRef(identifier)
	require.NoError(c.h.t, err)
	ack, called := c.do(JoinRoom{Ref: ref, Username: c.name})
	require.True(c.h.t, called)
	return ack
}

func (c *client) say(text string) (Ack, bool) {
	return c.do(SendMessage{Text: text, Username: c.name})
}

func (c *client) leave() Ack {
	ack, _ := c.do(LeaveRoom{Username: c.name})
	return ack
}

// failingLog is a MessageLog whose writes always fail.
type failingLog struct {
	core.MessageLog
}

func (failingLog) Append(context.Context, domain.Room, domain.User, string) (domain.Message, error) {
	return domain.Message{}, domain.ErrPersistence
}

// hookedLog runs before on every History call; an error from it becomes
// the sequence's only element.
type hookedLog struct {
	core.MessageLog
	before func(roomID domain.RoomID) error
}

func (l hookedLog) History(ctx context.Context, roomID domain.RoomID, since uint64) iter.Seq2[domain.Message, error] {
	if err := l.before(roomID); err != nil {
		return func(yield func(domain.Message, error) bool) {
			yield(domain.Message{}, err)
		}
	}
	return l.MessageLog.History(ctx, roomID, since)
}

// dropRoom deletes a room behind the orchestrator's back.
func (h *harness) dropRoom(id domain.RoomID) {
	h.t.Helper()
	require.NoError(h.t, h.db.Exec("DELETE FROM rooms WHERE id = ?", string(id)).Error)
}
