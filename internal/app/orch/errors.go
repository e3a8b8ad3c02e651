package orch

import (
	"errors"

	"github.com/dkeye/campfire/internal/domain"
)

// Wire error codes.
const (
	CodeInvalidRequest = "invalid_request"
	CodeRoomNotFound   = "room_not_found"
	CodeUserNotFound   = "user_not_found"
	CodeRoomExists     = "room_exists"
	CodeAccessDenied   = "access_denied"
	CodeInternal       = "internal_error"
)

// ErrorCode maps a domain error to the short code sent to clients.
// Anything unrecognised becomes CodeInternal so store details never leak.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrUsernameEmpty),
		errors.Is(err, domain.ErrUsernameTooLong):
		return CodeInvalidRequest
	case errors.Is(err, domain.ErrRoomNotFound), errors.Is(err, domain.ErrProjectNotFound):
		return CodeRoomNotFound
	case errors.Is(err, domain.ErrUserNotFound):
		return CodeUserNotFound
	case errors.Is(err, domain.ErrConflict):
		return CodeRoomExists
	case errors.Is(err, domain.ErrDenied):
		return CodeAccessDenied
	default:
		return CodeInternal
	}
}
