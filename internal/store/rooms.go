package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/campfire/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Rooms is the room directory. Every call reads the database; nothing is cached.
type Rooms struct {
	db *gorm.DB
}

func NewRooms(db *gorm.DB) *Rooms {
	return &Rooms{db: db}
}

// Resolve looks a room up by id, falling back to a name lookup with the same text,
// or by name. The allow-list is loaded in the same transaction.
func (r *Rooms) Resolve(ctx context.Context, ref domain.RoomRef) (domain.Room, error) {
	switch ref := ref.(type) {
	case domain.RoomByID:
		room, err := r.findBy(ctx, "id = ?", string(ref.ID))
		if errors.Is(err, domain.ErrRoomNotFound) {
			return r.findBy(ctx, "name = ?", string(ref.ID))
		}
		return room, err
	case domain.RoomByName:
		return r.findBy(ctx, "name = ?", string(ref.Name))
	default:
		return domain.Room{}, fmt.Errorf("%w: unsupported room reference", domain.ErrValidation)
	}
}

func (r *Rooms) findBy(ctx context.Context, query string, arg any) (domain.Room, error) {
	var m roomModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Preload("AllowList").First(&m, query, arg).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Room{}, domain.ErrRoomNotFound
		}
		return domain.Room{}, fmt.Errorf("%w: find room: %v", domain.ErrPersistence, err)
	}
	return m.toDomain(), nil
}

// Create inserts a standalone room. Name uniqueness is enforced by the
// database index alone, so of N concurrent creators exactly one succeeds.
func (r *Rooms) Create(ctx context.Context, name domain.RoomName) (domain.Room, error) {
	return r.Insert(ctx, domain.Room{Name: name})
}

// Insert stores a fully specified room, including project scope and allow-list.
func (r *Rooms) Insert(ctx context.Context, room domain.Room) (domain.Room, error) {
	if room.ID == "" {
		room.ID = domain.RoomID(uuid.NewString())
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now().UTC()
	}
	m := roomModel{
		ID:        string(room.ID),
		Name:      string(room.Name),
		CreatedAt: room.CreatedAt,
	}
	if room.ProjectID != nil {
		pid := string(*room.ProjectID)
		m.ProjectID = &pid
	}
	for _, uid := range room.AllowList {
		m.AllowList = append(m.AllowList, roomMemberModel{RoomID: m.ID, UserID: string(uid)})
	}

	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Room{}, fmt.Errorf("%w: %s", domain.ErrConflict, room.Name)
		}
		return domain.Room{}, fmt.Errorf("%w: create room: %v", domain.ErrPersistence, err)
	}
	log.Info().Str("module", "store.rooms").Str("room_id", m.ID).Str("room", m.Name).Msg("room created")
	return m.toDomain(), nil
}

func (r *Rooms) List(ctx context.Context) ([]domain.Room, error) {
	var models []roomModel
	if err := r.db.WithContext(ctx).Preload("AllowList").Order("created_at ASC, name ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("%w: list rooms: %v", domain.ErrPersistence, err)
	}
	out := make([]domain.Room, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}
