package core

import "github.com/dkeye/campfire/internal/domain"

// memberSession implements MemberSession by pairing meta + transport.
// meta is nil for an anonymous connection.
type memberSession struct {
	meta   *domain.User
	signal SignalConnection
}

func NewMemberSession(meta *domain.User, signal SignalConnection) MemberSession {
	return &memberSession{meta: meta, signal: signal}
}

func (m *memberSession) Meta() *domain.User       { return m.meta }
func (m *memberSession) Signal() SignalConnection { return m.signal }
