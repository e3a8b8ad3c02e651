package core

import (
	"context"
	"iter"

	"github.com/dkeye/campfire/internal/domain"
)

// RoomDirectory resolves and creates durable rooms.
type RoomDirectory interface {
	Resolve(ctx context.Context, ref domain.RoomRef) (domain.Room, error)
	Create(ctx context.Context, name domain.RoomName) (domain.Room, error)
	List(ctx context.Context) ([]domain.Room, error)
}

// MessageLog is the append-only ordered history of every room.
type MessageLog interface {
	Append(ctx context.Context, room domain.Room, sender domain.User, text string) (domain.Message, error)
	// History yields messages with Seq > since, oldest first.
	// Ranging the sequence twice queries the store twice.
	History(ctx context.Context, roomID domain.RoomID, since uint64) iter.Seq2[domain.Message, error]
}

type ProjectMembership interface {
	IsMember(ctx context.Context, pid domain.ProjectID, uid domain.UserID) (bool, error)
}

// IdentityResolver maps a display name supplied by an anonymous
// connection to a known user.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, username string) (domain.User, error)
}

// Collect drains a history sequence into a slice.
func Collect(seq iter.Seq2[domain.Message, error]) ([]domain.Message, error) {
	out := make([]domain.Message, 0)
	for m, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
