package orch

import (
	"context"
	"strings"

	"github.com/dkeye/campfire/internal/app"
	"github.com/dkeye/campfire/internal/core"
	"github.com/dkeye/campfire/internal/domain"
	"github.com/rs/zerolog/log"
)

// sendMessage persists text in the sender's current room and fans it out to
// every member, sender included. Append and fanout happen under the room
// lock, so delivery order equals Seq order.
func (o *Orchestrator) sendMessage(ctx context.Context, sid core.SessionID, c SendMessage, ack AckFunc) {
	cur, ok := o.Registry.RoomOf(sid)
	if !ok {
		log.Debug().Str("module", "orch").Str("sid", string(sid)).Msg("message from non-member dropped")
		return
	}
	if c.Ref != nil && !domain.Matches(c.Ref, &cur.Room) {
		log.Debug().Str("module", "orch").Str("sid", string(sid)).Str("ref", c.Ref.String()).Msg("message for foreign room dropped")
		return
	}
	if strings.TrimSpace(c.Text) == "" {
		ack(failAck(domain.ErrValidation))
		return
	}

	var dropped []core.SessionID
	o.Locks.With(cur.Room.ID, func() {
		msg, err := o.Messages.Append(ctx, cur.Room, cur.User, c.Text)
		if err != nil {
			log.Error().Err(err).Str("module", "orch").Str("sid", string(sid)).Str("room_id", string(cur.Room.ID)).Msg("append message")
			ack(failAck(err))
			return
		}
		dropped = o.Broadcast.ToRoom(cur.Room.ID, app.NewMessageEvent(msg)).Dropped
		ack(Ack{OK: true, RoomID: cur.Room.ID, RoomName: cur.Room.Name})
	})
	o.applyPolicy(cur.Room.ID, dropped)
}
