package orch

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dkeye/campfire/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("%w: empty", domain.ErrValidation), CodeInvalidRequest},
		{domain.ErrUsernameEmpty, CodeInvalidRequest},
		{domain.ErrRoomNotFound, CodeRoomNotFound},
		{domain.ErrProjectNotFound, CodeRoomNotFound},
		{domain.ErrUserNotFound, CodeUserNotFound},
		{fmt.Errorf("%w: general", domain.ErrConflict), CodeRoomExists},
		{fmt.Errorf("%w: reason", domain.ErrDenied), CodeAccessDenied},
		{fmt.Errorf("%w: disk full", domain.ErrPersistence), CodeInternal},
		{errors.New("anything else"), CodeInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorCode(tt.err), "%v", tt.err)
	}
}
