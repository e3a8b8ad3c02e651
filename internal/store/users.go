package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/dkeye/campfire/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const searchLimit = 10

type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

// ResolveIdentity maps a client-supplied display name to a known user,
// matching the username first and the full name second.
func (u *Users) ResolveIdentity(ctx context.Context, username string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.User{}, domain.ErrUserNotFound
	}
	for _, column := range []string{"username", "name"} {
		var models []userModel
		if err := u.db.WithContext(ctx).
			Where(column+" = ?", username).
			Order("username ASC").
			Limit(1).
			Find(&models).Error; err != nil {
			return domain.User{}, fmt.Errorf("%w: resolve identity: %v", domain.ErrPersistence, err)
		}
		if len(models) > 0 {
			return models[0].toDomain(), nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

// Search matches q as a substring of username or name.
func (u *Users) Search(ctx context.Context, q string) ([]domain.User, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []domain.User{}, nil
	}
	pattern := "%" + strings.ToLower(q) + "%"
	var models []userModel
	if err := u.db.WithContext(ctx).
		Where("LOWER(username) LIKE ? OR LOWER(name) LIKE ?", pattern, pattern).
		Order("username ASC").
		Limit(searchLimit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("%w: search users: %v", domain.ErrPersistence, err)
	}
	out := make([]domain.User, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}

// Ensure returns the user with username, creating it when missing.
func (u *Users) Ensure(ctx context.Context, username, name string) (domain.User, error) {
	username, err := domain.ValidateUsername(username)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	m := userModel{Username: username}
	err = u.db.WithContext(ctx).
		Where(userModel{Username: username}).
		Attrs(userModel{ID: uuid.NewString(), Name: name}).
		FirstOrCreate(&m).Error
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: ensure user: %v", domain.ErrPersistence, err)
	}
	log.Debug().Str("module", "store.users").Str("user_id", m.ID).Str("username", m.Username).Msg("user ensured")
	return m.toDomain(), nil
}
