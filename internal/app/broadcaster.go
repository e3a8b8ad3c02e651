package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/dkeye/campfire/internal/core"
	"github.com/dkeye/campfire/internal/domain"
	"github.com/rs/zerolog/log"
)

var ErrUnknownSession = errors.New("unknown session")

// Broadcaster encodes an event once and hands the frame to every target
// connection's send queue without blocking.
type Broadcaster struct {
	reg *Registry
}

func NewBroadcaster(reg *Registry) *Broadcaster {
	return &Broadcaster{reg: reg}
}

// ToRoom delivers ev to the current members of roomID except the excluded sessions.
func (b *Broadcaster) ToRoom(roomID domain.RoomID, ev any, exclude ...core.SessionID) core.PublishResult {
	frame, err := encode(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "app.broadcaster").Msg("encode event")
		return core.PublishResult{}
	}
	res := publish(b.reg.MembersOf(roomID), frame, exclude)
	log.Debug().Str("module", "app.broadcaster").Str("room_id", string(roomID)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

// ToAll delivers ev to every bound connection, joined or not.
func (b *Broadcaster) ToAll(ev any) core.PublishResult {
	frame, err := encode(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "app.broadcaster").Msg("encode event")
		return core.PublishResult{}
	}
	return publish(b.reg.All(), frame, nil)
}

func (b *Broadcaster) ToSession(sid core.SessionID, ev any) error {
	sess, ok := b.reg.Session(sid)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSession, sid)
	}
	frame, err := encode(ev)
	if err != nil {
		return err
	}
	return sess.Signal().TrySend(frame)
}

func publish(members []Member, frame core.Frame, exclude []core.SessionID) core.PublishResult {
	res := core.PublishResult{}
	for _, m := range members {
		if slices.Contains(exclude, m.SID) {
			continue
		}
		if err := m.Session.Signal().TrySend(frame); err != nil {
			res.Dropped = append(res.Dropped, m.SID)
			continue
		}
		res.SendTo++
	}
	return res
}

func encode(ev any) (core.Frame, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", ev, err)
	}
	return b, nil
}
