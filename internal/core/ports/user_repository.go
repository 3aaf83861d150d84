package ports

import (
	"context"

	"github.com/99minutos/accounts-api/internal/core/domain"
)

// UserRepository defines the persistence operations for user accounts.
// Lookups return domain.ErrUserNotFound when no document matches.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteByUsername(ctx context.Context, username string) error
}

// IdempotencyStore remembers the outcome of a registration keyed by the
// client-supplied Idempotency-Key header.
type IdempotencyStore interface {
	Lookup(ctx context.Context, key string) (*domain.User, bool, error)
	Save(ctx context.Context, key string, user *domain.User) error
	Forget(ctx context.Context, key string) error
}
