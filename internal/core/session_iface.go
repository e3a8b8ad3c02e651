package core

import "github.com/dkeye/campfire/internal/domain"

// MemberSession binds a verified user and its transport endpoint.
// This is what the registry stores and the broadcaster fans out to.
type MemberSession interface {
	Meta() *domain.User
	Signal() SignalConnection
}
