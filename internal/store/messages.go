package store

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/dkeye/campfire/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultHistoryBatch = 200

// Messages is the per-room append-only message log.
type Messages struct {
	db    *gorm.DB
	now   func() time.Time
	batch int
}

func NewMessages(db *gorm.DB) *Messages {
	return &Messages{db: db, now: time.Now, batch: defaultHistoryBatch}
}

// Append stores text as the next message of room. Seq is last+1 and the
// timestamp never goes below the previous message's, even if the clock steps back.
func (l *Messages) Append(ctx context.Context, room domain.Room, sender domain.User, text string) (domain.Message, error) {
	var out messageModel
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rm roomModel
		if err := tx.Select("id", "project_id").First(&rm, "id = ?", string(room.ID)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrRoomNotFound
			}
			return err
		}

		var last []messageModel
		if err := tx.Select("seq", "created_at").
			Where("room_id = ?", rm.ID).
			Order("seq DESC").
			Limit(1).
			Find(&last).Error; err != nil {
			return err
		}

		ts := l.now().UTC()
		var seq uint64 = 1
		if len(last) > 0 {
			seq = last[0].Seq + 1
			if last[0].CreatedAt.After(ts) {
				ts = last[0].CreatedAt
			}
		}

		out = messageModel{
			ID:         uuid.NewString(),
			RoomID:     rm.ID,
			Seq:        seq,
			ProjectID:  rm.ProjectID,
			SenderID:   string(sender.ID),
			SenderName: sender.Username,
			Text:       text,
			CreatedAt:  ts,
		}
		return tx.Create(&out).Error
	})
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			return domain.Message{}, err
		}
		return domain.Message{}, fmt.Errorf("%w: append message: %v", domain.ErrPersistence, err)
	}
	return out.toDomain(), nil
}

// History pages through the room's messages with Seq > since using a keyset
// cursor. Seq order equals (CreatedAt, Seq) order because Append keeps
// timestamps non-decreasing.
func (l *Messages) History(ctx context.Context, roomID domain.RoomID, since uint64) iter.Seq2[domain.Message, error] {
	return func(yield func(domain.Message, error) bool) {
		cursor := since
		for {
			var batch []messageModel
			err := l.db.WithContext(ctx).
				Where("room_id = ? AND seq > ?", string(roomID), cursor).
				Order("seq ASC").
				Limit(l.batch).
				Find(&batch).Error
			if err != nil {
				yield(domain.Message{}, fmt.Errorf("%w: read history: %v", domain.ErrPersistence, err))
				return
			}
			for _, m := range batch {
				if !yield(m.toDomain(), nil) {
					return
				}
			}
			if len(batch) < l.batch {
				return
			}
			cursor = batch[len(batch)-1].Seq
		}
	}
}
