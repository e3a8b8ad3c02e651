package core

import (
	"fmt"

	"github.com/dkeye/campfire/internal/domain"
)

const (
	ReasonNotAllowListed   = "not allow-listed"
	ReasonNotProjectMember = "not a project member"
)

// Decision is the outcome of a room access check.
type Decision struct {
	Allowed bool
	Reason  string
}

func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return fmt.Errorf("%w: %s", domain.ErrDenied, d.Reason)
}

// NeedsProjectCheck reports whether Authorize will consult project membership for room.
func NeedsProjectCheck(room domain.Room) bool {
	return len(room.AllowList) == 0 && room.ProjectID != nil
}

// Authorize decides whether user may join room. It is evaluated on every join;
// an explicit allow-list takes precedence over project membership.
func Authorize(user domain.UserID, room domain.Room, projectMember bool) Decision {
	switch {
	case len(room.AllowList) > 0:
		if room.Allows(user) {
			return Decision{Allowed: true}
		}
		return Decision{Reason: ReasonNotAllowListed}
	case room.ProjectID != nil:
		if projectMember {
			return Decision{Allowed: true}
		}
		return Decision{Reason: ReasonNotProjectMember}
	default:
		return Decision{Allowed: true}
	}
}
