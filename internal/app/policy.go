package app

import "github.com/dkeye/campfire/internal/domain"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

// Policy decides what happens to a member whose send queue is full.
type Policy interface {
	OnBackPressure(roomID domain.RoomID, member Member) BackpressureAction
}

type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(domain.RoomID, Member) BackpressureAction {
	return KickMember
}

// LenientPolicy drops the frame for the slow member and keeps it connected.
type LenientPolicy struct{}

func (LenientPolicy) OnBackPressure(domain.RoomID, Member) BackpressureAction {
	return DropFrame
}

// PolicyByName maps a config value to a Policy; unknown names fall back to SimplePolicy.
func PolicyByName(name string) Policy {
	switch name {
	case "drop":
		return LenientPolicy{}
	default:
		return SimplePolicy{}
	}
}
