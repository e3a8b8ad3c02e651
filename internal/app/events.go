package app

import (
	"time"

	"github.com/dkeye/campfire/internal/domain"
)

// Outbound event types.
const (
	EventMessage      = "message"
	EventRoomCreated  = "room_created"
	EventRoomNotFound = "room_not_found"
	EventAck          = "ack"
	EventPong         = "pong"
	EventError        = "error"
)

type MessageEvent struct {
	Type      string        `json:"type"`
	RoomID    domain.RoomID `json:"roomId"`
	Username  string        `json:"username"`
	Text      string        `json:"text"`
	Timestamp time.Time     `json:"timestamp"`
	Seq       uint64        `json:"seq,omitempty"`
	System    bool          `json:"system,omitempty"`
}

func NewMessageEvent(m domain.Message) MessageEvent {
	return MessageEvent{
		Type:      EventMessage,
		RoomID:    m.RoomID,
		Username:  m.SenderName,
		Text:      m.Text,
		Timestamp: m.CreatedAt,
		Seq:       m.Seq,
	}
}

// NewSystemEvent builds a notice that is broadcast but never persisted.
func NewSystemEvent(roomID domain.RoomID, text string) MessageEvent {
	return MessageEvent{
		Type:      EventMessage,
		RoomID:    roomID,
		Username:  domain.SystemUsername,
		Text:      text,
		Timestamp: time.Now().UTC(),
		System:    true,
	}
}

type RoomCreatedEvent struct {
	Type   string          `json:"type"`
	RoomID domain.RoomID   `json:"roomId"`
	Name   domain.RoomName `json:"name"`
}

func NewRoomCreatedEvent(room domain.Room) RoomCreatedEvent {
	return RoomCreatedEvent{Type: EventRoomCreated, RoomID: room.ID, Name: room.Name}
}

type RoomNotFoundEvent struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

func NewRoomNotFoundEvent(identifier string) RoomNotFoundEvent {
	return RoomNotFoundEvent{Type: EventRoomNotFound, Identifier: identifier}
}
