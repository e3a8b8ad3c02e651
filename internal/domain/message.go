package domain

import "time"

type MessageID string

// Message is an immutable log entry of a room.
// Seq increases by one per append within a room; (CreatedAt, Seq) orders history.
type Message struct {
	ID         MessageID  `json:"id"`
	RoomID     RoomID     `json:"room_id"`
	ProjectID  *ProjectID `json:"project_id,omitempty"`
	SenderID   UserID     `json:"sender_id"`
	SenderName string     `json:"sender_name"`
	Text       string     `json:"text"`
	Seq        uint64     `json:"seq"`
	CreatedAt  time.Time  `json:"created_at"`
}
