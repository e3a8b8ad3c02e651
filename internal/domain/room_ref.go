package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// RoomRef names a room either by durable id or by name.
// The only implementations are RoomByID and RoomByName.
type RoomRef interface {
	isRoomRef()
	String() string
}

type RoomByID struct{ ID RoomID }

type RoomByName struct{ Name RoomName }

func (RoomByID) isRoomRef()   {}
func (RoomByName) isRoomRef() {}

func (r RoomByID) String() string   { return string(r.ID) }
func (r RoomByName) String() string { return string(r.Name) }

// ParseRoomRef classifies a wire identifier once, at the edge.
func ParseRoomRef(raw string) (RoomRef, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, fmt.Errorf("%w: room identifier is empty", ErrValidation)
	}
	if _, err := uuid.Parse(s); err == nil {
		return RoomByID{ID: RoomID(s)}, nil
	}
	return RoomByName{Name: RoomName(s)}, nil
}

// Matches reports whether ref points at room.
func Matches(ref RoomRef, room *Room) bool {
	if ref == nil || room == nil {
		return false
	}
	switch r := ref.(type) {
	case RoomByID:
		return r.ID == room.ID || RoomName(r.ID) == room.Name
	case RoomByName:
		return r.Name == room.Name
	}
	return false
}
