// Package domain contains entity without logic, just meta-data
package domain

import "strings"

const (
	MaxUserIDLen   = 36
	MaxUsernameLen = 36

	// SystemUsername is the sender shown on join/leave notices.
	SystemUsername = "System"
)

type UserID string

type User struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
}

func ValidateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if len(username) == 0 {
		return "", ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return "", ErrUsernameTooLong
	}
	return username, nil
}
