package app

import (
	"context"
	"sync"

	"github.com/dkeye/campfire/internal/core"
	"github.com/dkeye/campfire/internal/domain"
	"github.com/rs/zerolog/log"
)

// Membership is the room a connection is in and the identity it joined as.
type Membership struct {
	Room domain.Room
	User domain.User
}

type sessionEntry struct {
	Membership *Membership
	Session    core.MemberSession
	Cancel     context.CancelFunc
}

// Member is a point-in-time view of one connection.
type Member struct {
	SID     core.SessionID
	Session core.MemberSession
	User    domain.User
}

// Registry maps live connections to at most one room each.
// It is process-local and rebuilt from empty on restart.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
	rooms    map[domain.RoomID]map[core.SessionID]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
		rooms:    make(map[domain.RoomID]map[core.SessionID]struct{}),
	}
}

func (r *Registry) Bind(sid core.SessionID, sess core.MemberSession, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = &sessionEntry{Session: sess, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound session")
}

// Unbind forgets sid and returns the membership it held, if any.
func (r *Registry) Unbind(sid core.SessionID) (Membership, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return Membership{}, false
	}
	delete(r.sessions, sid)
	prev := r.detachLocked(sid, e)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
	if prev == nil {
		return Membership{}, false
	}
	return *prev, true
}

func (r *Registry) Session(sid core.SessionID) (core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Session, true
	}
	return nil, false
}

func (r *Registry) RoomOf(sid core.SessionID) (Membership, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	if !ok || e.Membership == nil {
		return Membership{}, false
	}
	return *e.Membership, true
}

// SetRoom records sid as a member of room. Any previous membership is replaced;
// callers wanting leave semantics call ClearRoom first.
func (r *Registry) SetRoom(sid core.SessionID, room domain.Room, user domain.User) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return false
	}
	r.detachLocked(sid, e)
	e.Membership = &Membership{Room: room, User: user}
	set, ok := r.rooms[room.ID]
	if !ok {
		set = make(map[core.SessionID]struct{})
		r.rooms[room.ID] = set
	}
	set[sid] = struct{}{}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(room.Name)).Msg("updated room")
	return true
}

func (r *Registry) ClearRoom(sid core.SessionID) (Membership, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return Membership{}, false
	}
	prev := r.detachLocked(sid, e)
	if prev == nil {
		return Membership{}, false
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("removed room association")
	return *prev, true
}

func (r *Registry) detachLocked(sid core.SessionID, e *sessionEntry) *Membership {
	prev := e.Membership
	if prev == nil {
		return nil
	}
	e.Membership = nil
	if set, ok := r.rooms[prev.Room.ID]; ok {
		delete(set, sid)
		if len(set) == 0 {
			delete(r.rooms, prev.Room.ID)
		}
	}
	return prev
}

func (r *Registry) MembersOf(roomID domain.RoomID) []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.rooms[roomID]
	out := make([]Member, 0, len(set))
	for sid := range set {
		e := r.sessions[sid]
		out = append(out, Member{SID: sid, Session: e.Session, User: e.Membership.User})
	}
	return out
}

func (r *Registry) All() []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Member, 0, len(r.sessions))
	for sid, e := range r.sessions {
		m := Member{SID: sid, Session: e.Session}
		if e.Membership != nil {
			m.User = e.Membership.User
		}
		out = append(out, m)
	}
	return out
}

func (r *Registry) CountIn(roomID domain.RoomID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomID])
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) Cancel(sid core.SessionID) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}
