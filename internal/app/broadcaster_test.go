package app

import (
	"testing"

	"github.com/dkeye/campfire/internal/core"
	"github.com/dkeye/campfire/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcaster_ToRoomSkipsExcludedAndOtherRooms(t *testing.T) {
	reg := NewRegistry()
	a := bindFake(reg, "a")
	b := bindFake(reg, "b")
	c := bindFake(reg, "c")
	reg.SetRoom("a", general, alice)
	reg.SetRoom("b", general, bob)
	reg.SetRoom("c", random, bob)

	res := NewBroadcaster(reg).ToRoom(general.ID, NewSystemEvent(general.ID, "alice joined"), "a")

	assert.Equal(t, 1, res.SendTo)
	assert.Empty(t, res.Dropped)
	assert.Empty(t, a.events(t))
	assert.Empty(t, c.events(t))

	evs := b.events(t)
	require.Len(t, evs, 1)
	assert.Equal(t, EventMessage, evs[0]["type"])
	assert.Equal(t, domain.SystemUsername, evs[0]["username"])
	assert.Equal(t, true, evs[0]["system"])
	assert.Equal(t, "alice joined", evs[0]["text"])
}

func TestBroadcaster_ReportsDropped(t *testing.T) {
	reg := NewRegistry()
	bindFake(reg, "a")
	slow := bindFake(reg, "slow")
	slow.full = true
	reg.SetRoom("a", general, alice)
	reg.SetRoom("slow", general, bob)

	res := NewBroadcaster(reg).ToRoom(general.ID, NewMessageEvent(domain.Message{RoomID: general.ID, Text: "hi", Seq: 1}))
	assert.Equal(t, 1, res.SendTo)
	assert.Equal(t, []core.SessionID{"slow"}, res.Dropped)
}

func TestBroadcaster_ToAllIncludesUnjoined(t *testing.T) {
	reg := NewRegistry()
	a := bindFake(reg, "a")
	b := bindFake(reg, "b")
	reg.SetRoom("a", general, alice)

	res := NewBroadcaster(reg).ToAll(NewRoomCreatedEvent(random))
	assert.Equal(t, 2, res.SendTo)
	for _, c := range []*fakeConn{a, b} {
		evs := c.events(t)
		require.Len(t, evs, 1)
		assert.Equal(t, EventRoomCreated, evs[0]["type"])
		assert.Equal(t, string(random.ID), evs[0]["roomId"])
	}
}

func TestBroadcaster_ToSession(t *testing.T) {
	reg := NewRegistry()
	a := bindFake(reg, "a")
	bc := NewBroadcaster(reg)

	require.NoError(t, bc.ToSession("a", NewRoomNotFoundEvent("nope")))
	evs := a.events(t)
	require.Len(t, evs, 1)
	assert.Equal(t, "nope", evs[0]["identifier"])

	assert.ErrorIs(t, bc.ToSession("ghost", NewRoomNotFoundEvent("x")), ErrUnknownSession)
}
