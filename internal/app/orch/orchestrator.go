package orch

import (
	"context"

	"github.com/dkeye/campfire/internal/app"
	"github.com/dkeye/campfire/internal/core"
	"github.com/dkeye/campfire/internal/domain"
	"github.com/rs/zerolog/log"
)

type Orchestrator struct {
	Registry  *app.Registry
	Broadcast *app.Broadcaster
	Locks     *app.RoomLocks
	Policy    app.Policy

	Rooms    core.RoomDirectory
	Messages core.MessageLog
	Projects core.ProjectMembership
	Identity core.IdentityResolver
}

// Stores groups the durable collaborators of the orchestrator.
type Stores struct {
	Rooms    core.RoomDirectory
	Messages core.MessageLog
	Projects core.ProjectMembership
	Identity core.IdentityResolver
}

func New(reg *app.Registry, stores Stores, policy app.Policy) *Orchestrator {
	return &Orchestrator{
		Registry:  reg,
		Broadcast: app.NewBroadcaster(reg),
		Locks:     app.NewRoomLocks(),
		Policy:    policy,
		Rooms:     stores.Rooms,
		Messages:  stores.Messages,
		Projects:  stores.Projects,
		Identity:  stores.Identity,
	}
}

// Connect registers a fresh connection. user is nil for anonymous connections.
func (o *Orchestrator) Connect(sid core.SessionID, user *domain.User, signal core.SignalConnection, cancel context.CancelFunc) {
	o.Registry.Bind(sid, core.NewMemberSession(user, signal), cancel)
}

// Dispatch runs cmd on behalf of sid. Callers must not dispatch concurrently
// for the same sid. ack may be invoked while a room lock is held, so it must
// only enqueue.
func (o *Orchestrator) Dispatch(ctx context.Context, sid core.SessionID, cmd Command, ack AckFunc) {
	if ack == nil {
		ack = func(Ack) {}
	}
	switch c := cmd.(type) {
	case CreateRoom:
		o.createRoom(ctx, sid, c, ack)
	case JoinRoom:
		o.joinRoom(ctx, sid, c, ack)
	case SendMessage:
		o.sendMessage(ctx, sid, c, ack)
	case LeaveRoom:
		o.leaveRoom(sid, c, ack)
	case Disconnect:
		o.disconnect(sid)
		ack(okAck())
	default:
		log.Warn().Str("module", "orch").Str("sid", string(sid)).Msgf("unknown command %T", cmd)
		ack(failAck(domain.ErrValidation))
	}
}

// KickBySID drops a connection from the server, closing its transport.
func (o *Orchestrator) KickBySID(sid core.SessionID) {
	o.Registry.Cancel(sid)
	o.disconnect(sid)
}

func (o *Orchestrator) applyPolicy(roomID domain.RoomID, dropped []core.SessionID) {
	if o.Policy == nil {
		return
	}
	for _, sid := range dropped {
		sess, ok := o.Registry.Session(sid)
		if !ok {
			continue
		}
		member := app.Member{SID: sid, Session: sess}
		switch o.Policy.OnBackPressure(roomID, member) {
		case app.KickMember:
			log.Warn().Str("module", "orch").Str("sid", string(sid)).Str("room_id", string(roomID)).Msg("kicking slow member")
			o.KickBySID(sid)
		case app.DropFrame, app.NoAction:
		}
	}
}
