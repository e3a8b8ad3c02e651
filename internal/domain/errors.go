package domain

import "errors"

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")

	ErrValidation      = errors.New("invalid request")
	ErrRoomNotFound    = errors.New("room not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrConflict        = errors.New("room already exists")
	ErrDenied          = errors.New("access denied")
	ErrPersistence     = errors.New("persistence failure")
)
