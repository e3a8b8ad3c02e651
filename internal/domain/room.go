package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

const MaxRoomNameLen = 64

type (
	RoomName string
	RoomID   string
)

// Room is the durable room record. ProjectID nil means a standalone room;
// an empty AllowList means the project-membership rule decides access.
type Room struct {
	ID        RoomID     `json:"id"`
	Name      RoomName   `json:"name"`
	ProjectID *ProjectID `json:"project_id,omitempty"`
	AllowList []UserID   `json:"allow_list,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (r *Room) Allows(uid UserID) bool {
	return slices.Contains(r.AllowList, uid)
}

// NewRoomName trims and validates a user-supplied room name.
func NewRoomName(raw string) (RoomName, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", fmt.Errorf("%w: room name is empty", ErrValidation)
	}
	if len(name) > MaxRoomNameLen {
		return "", fmt.Errorf("%w: room name longer than %d bytes", ErrValidation, MaxRoomNameLen)
	}
	return RoomName(name), nil
}
