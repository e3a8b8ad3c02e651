package store

import (
	"time"

	"github.com/dkeye/campfire/internal/domain"
)

type userModel struct {
	ID        string `gorm:"primaryKey;size:36"`
	Username  string `gorm:"size:36;uniqueIndex;not null"`
	Name      string `gorm:"size:128"`
	CreatedAt time.Time
}

func (userModel) TableName() string { return "users" }

func (m userModel) toDomain() domain.User {
	return domain.User{ID: domain.UserID(m.ID), Username: m.Username}
}

type projectModel struct {
	ID        string               `gorm:"primaryKey;size:36"`
	Title     string               `gorm:"size:128;not null"`
	Members   []projectMemberModel `gorm:"foreignKey:ProjectID"`
	CreatedAt time.Time
}

func (projectModel) TableName() string { return "projects" }

type projectMemberModel struct {
	ProjectID string `gorm:"primaryKey;size:36"`
	UserID    string `gorm:"primaryKey;size:36"`
	Role      string `gorm:"size:32"`
}

func (projectMemberModel) TableName() string { return "project_members" }

type roomModel struct {
	ID        string            `gorm:"primaryKey;size:36"`
	Name      string            `gorm:"size:64;uniqueIndex;not null"`
	ProjectID *string           `gorm:"size:36;index"`
	AllowList []roomMemberModel `gorm:"foreignKey:RoomID"`
	CreatedAt time.Time
}

func (roomModel) TableName() string { return "rooms" }

func (m roomModel) toDomain() domain.Room {
	r := domain.Room{
		ID:        domain.RoomID(m.ID),
		Name:      domain.RoomName(m.Name),
		CreatedAt: m.CreatedAt,
	}
	if m.ProjectID != nil {
		pid := domain.ProjectID(*m.ProjectID)
		r.ProjectID = &pid
	}
	for _, a := range m.AllowList {
		r.AllowList = append(r.AllowList, domain.UserID(a.UserID))
	}
	return r
}

type roomMemberModel struct {
	RoomID string `gorm:"primaryKey;size:36"`
	UserID string `gorm:"primaryKey;size:36"`
}

func (roomMemberModel) TableName() string { return "room_allowed_members" }

type messageModel struct {
	ID         string    `gorm:"primaryKey;size:36"`
	RoomID     string    `gorm:"size:36;not null;uniqueIndex:idx_messages_room_seq,priority:1"`
	Seq        uint64    `gorm:"not null;uniqueIndex:idx_messages_room_seq,priority:2"`
	ProjectID  *string   `gorm:"size:36"`
	SenderID   string    `gorm:"size:36;not null"`
	SenderName string    `gorm:"size:36"`
	Text       string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

func (messageModel) TableName() string { return "messages" }

func (m messageModel) toDomain() domain.Message {
	msg := domain.Message{
		ID:         domain.MessageID(m.ID),
		RoomID:     domain.RoomID(m.RoomID),
		SenderID:   domain.UserID(m.SenderID),
		SenderName: m.SenderName,
		Text:       m.Text,
		Seq:        m.Seq,
		CreatedAt:  m.CreatedAt,
	}
	if m.ProjectID != nil {
		pid := domain.ProjectID(*m.ProjectID)
		msg.ProjectID = &pid
	}
	return msg
}
