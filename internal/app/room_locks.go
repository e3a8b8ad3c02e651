package app

import (
	"sync"

	"github.com/dkeye/campfire/internal/domain"
)

type roomLock struct {
	mu   sync.Mutex
	refs int
}

// RoomLocks hands out one mutex per room. Holding it serialises
// append-then-fanout and join-then-history for that room only.
// An entry lives only while some caller holds or waits for it.
type RoomLocks struct {
	mu    sync.Mutex
	locks map[domain.RoomID]*roomLock
}

func NewRoomLocks() *RoomLocks {
	return &RoomLocks{locks: make(map[domain.RoomID]*roomLock)}
}

func (l *RoomLocks) acquire(id domain.RoomID) *roomLock {
	l.mu.Lock()
	rl, ok := l.locks[id]
	if !ok {
		rl = &roomLock{}
		l.locks[id] = rl
	}
	rl.refs++
	l.mu.Unlock()
	return rl
}

func (l *RoomLocks) release(id domain.RoomID, rl *roomLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rl.refs--
	if rl.refs == 0 {
		delete(l.locks, id)
	}
}

func (l *RoomLocks) With(id domain.RoomID, fn func()) {
	rl := l.acquire(id)
	defer l.release(id, rl)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	fn()
}
