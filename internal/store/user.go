package store

import (
	"context"

	"github.com/askdoc/askdoc-api/internal/domain"
)

// UserStore defines the interface for user persistence.
// Version: 1.0
type UserStore interface {
	// Upsert inserts the user or, if a user with the same email already
	// exists, refreshes their profile fields. Used on OAuth callback.
	Upsert(ctx context.Context, user *domain.User) error

	// GetByEmail retrieves a user by email.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
