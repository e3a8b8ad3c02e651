package orch

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/campfire/internal/app"
	"github.com/dkeye/campfire/internal/core"
	"github.com/dkeye/campfire/internal/domain"
	"github.com/rs/zerolog/log"
)

// CreateRoom validates name, stores a standalone room and announces it to
// every connection. Conflicts leave no side effects.
func (o *Orchestrator) CreateRoom(ctx context.Context, rawName string) (domain.Room, error) {
	name, err := domain.NewRoomName(rawName)
	if err != nil {
		return domain.Room{}, err
	}
	room, err := o.Rooms.Create(ctx, name)
	if err != nil {
		return domain.Room{}, err
	}
	res := o.Broadcast.ToAll(app.NewRoomCreatedEvent(room))
	log.Info().Str("module", "orch").Str("room_id", string(room.ID)).Str("room", string(room.Name)).Int("notified", res.SendTo).Msg("room created")
	o.applyPolicy(room.ID, res.Dropped)
	return room, nil
}

func (o *Orchestrator) createRoom(ctx context.Context, sid core.SessionID, c CreateRoom, ack AckFunc) {
	room, err := o.CreateRoom(ctx, c.Name)
	if err != nil {
		log.Info().Err(err).Str("module", "orch").Str("sid", string(sid)).Str("room", c.Name).Msg("create room rejected")
		ack(failAck(err))
		return
	}
	ack(Ack{OK: true, RoomID: room.ID, RoomName: room.Name})
}

func (o *Orchestrator) joinRoom(ctx context.Context, sid core.SessionID, c JoinRoom, ack AckFunc) {
	if c.Ref == nil {
		ack(failAck(domain.ErrValidation))
		return
	}
	sess, ok := o.Registry.Session(sid)
	if !ok {
		log.Warn().Str("module", "orch").Str("sid", string(sid)).Msg("join from unbound session")
		ack(failAck(domain.ErrValidation))
		return
	}

	room, err := o.Rooms.Resolve(ctx, c.Ref)
	if err != nil {
		o.rejectJoin(sid, c.Ref, err, ack)
		return
	}
	user, err := o.identify(ctx, sess, c.Username)
	if err != nil {
		log.Info().Err(err).Str("module", "orch").Str("sid", string(sid)).Str("username", c.Username).Msg("join: unknown identity")
		ack(failAck(err))
		return
	}
	decision, err := o.decide(ctx, user, room)
	if err != nil {
		o.rejectJoin(sid, c.Ref, err, ack)
		return
	}
	if !decision.Allowed {
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("user", string(user.ID)).Str("room", string(room.Name)).Str("reason", decision.Reason).Msg("join denied")
		ack(Ack{Error: decision.Reason})
		return
	}

	resync := false
	if cur, ok := o.Registry.RoomOf(sid); ok && cur.Room.ID == room.ID {
		resync = true
	}

	var dropped []core.SessionID
	joined := false
	o.Locks.With(room.ID, func() {
		history, err := core.Collect(o.Messages.History(ctx, room.ID, 0))
		if err != nil {
			log.Error().Err(err).Str("module", "orch").Str("room_id", string(room.ID)).Msg("join: read history")
			ack(failAck(err))
			return
		}
		// The previous room is left only once the new one is certain.
		if !resync {
			o.leave(sid)
		}
		if !o.Registry.SetRoom(sid, room, user) {
			log.Warn().Str("module", "orch").Str("sid", string(sid)).Str("room", string(room.Name)).Msg("join: session went away")
			ack(failAck(domain.ErrValidation))
			return
		}
		joined = true
		ack(Ack{OK: true, RoomID: room.ID, RoomName: room.Name, History: history})
		if resync {
			return
		}
		notice := app.NewSystemEvent(room.ID, fmt.Sprintf("%s joined", user.Username))
		dropped = o.Broadcast.ToRoom(room.ID, notice, sid).Dropped
	})
	if !joined {
		return
	}
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(room.Name)).Bool("resync", resync).Msg("joined room")
	o.applyPolicy(room.ID, dropped)
}

func (o *Orchestrator) rejectJoin(sid core.SessionID, ref domain.RoomRef, err error, ack AckFunc) {
	if !errors.Is(err, domain.ErrRoomNotFound) {
		log.Error().Err(err).Str("module", "orch").Str("sid", string(sid)).Str("ref", ref.String()).Msg("join: resolve room")
		ack(failAck(err))
		return
	}
	if sendErr := o.Broadcast.ToSession(sid, app.NewRoomNotFoundEvent(ref.String())); sendErr != nil {
		log.Warn().Err(sendErr).Str("module", "orch").Str("sid", string(sid)).Msg("room_not_found push")
	}
	ack(failAck(err))
}

// identify prefers the verified identity bound to the connection.
func (o *Orchestrator) identify(ctx context.Context, sess core.MemberSession, username string) (domain.User, error) {
	if u := sess.Meta(); u != nil {
		return *u, nil
	}
	if o.Identity == nil {
		return domain.User{}, domain.ErrUserNotFound
	}
	return o.Identity.ResolveIdentity(ctx, username)
}

// decide fetches project membership only when the room's rules need it.
// A project that cannot be read makes the room unreachable.
func (o *Orchestrator) decide(ctx context.Context, user domain.User, room domain.Room) (core.Decision, error) {
	member := false
	if core.NeedsProjectCheck(room) {
		ok, err := o.Projects.IsMember(ctx, *room.ProjectID, user.ID)
		if err != nil {
			log.Warn().Err(err).Str("module", "orch").Str("room", string(room.Name)).Str("project", string(*room.ProjectID)).Msg("project lookup failed")
			return core.Decision{}, fmt.Errorf("%w: project of %s", domain.ErrRoomNotFound, room.Name)
		}
		member = ok
	}
	return core.Authorize(user.ID, room, member), nil
}

func (o *Orchestrator) leaveRoom(sid core.SessionID, c LeaveRoom, ack AckFunc) {
	cur, ok := o.Registry.RoomOf(sid)
	if ok && (c.Ref == nil || domain.Matches(c.Ref, &cur.Room)) {
		o.leave(sid)
	}
	ack(okAck())
}

// leave clears the membership of sid and tells the remaining members.
// It never takes a room lock.
func (o *Orchestrator) leave(sid core.SessionID) {
	prev, ok := o.Registry.ClearRoom(sid)
	if !ok {
		return
	}
	res := o.Broadcast.ToRoom(prev.Room.ID, app.NewSystemEvent(prev.Room.ID, fmt.Sprintf("%s left", prev.User.Username)))
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(prev.Room.Name)).Msg("left room")
	o.applyPolicy(prev.Room.ID, res.Dropped)
}

// disconnect is idempotent and safe for connections that never joined.
func (o *Orchestrator) disconnect(sid core.SessionID) {
	prev, ok := o.Registry.Unbind(sid)
	if !ok {
		return
	}
	o.Broadcast.ToRoom(prev.Room.ID, app.NewSystemEvent(prev.Room.ID, fmt.Sprintf("%s left", prev.User.Username)))
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(prev.Room.Name)).Msg("disconnected from room")
}

// ListRooms returns every room with its live connection count.
func (o *Orchestrator) ListRooms(ctx context.Context) ([]core.RoomInfo, error) {
	rooms, err := o.Rooms.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]core.RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, core.RoomInfo{ID: r.ID, Name: r.Name, MemberCount: o.Registry.CountIn(r.ID)})
	}
	return out, nil
}

// RoomHistory returns the history of ref for user after the same access
// check a join performs. It has no side effects on the registry.
func (o *Orchestrator) RoomHistory(ctx context.Context, user domain.User, ref domain.RoomRef, since uint64) (domain.Room, []domain.Message, error) {
	room, err := o.Rooms.Resolve(ctx, ref)
	if err != nil {
		return domain.Room{}, nil, err
	}
	decision, err := o.decide(ctx, user, room)
	if err != nil {
		return domain.Room{}, nil, err
	}
	if err := decision.Err(); err != nil {
		return domain.Room{}, nil, err
	}
	msgs, err := core.Collect(o.Messages.History(ctx, room.ID, since))
	if err != nil {
		return domain.Room{}, nil, err
	}
	return room, msgs, nil
}
