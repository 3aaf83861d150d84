package ports

import (
	"context"

	"github.com/99minutos/accounts-api/internal/core/domain"
)

// RegisterInput carries a registration request from the transport layer.
type RegisterInput struct {
	Username       string
	Email          string
	Password       string
	Role           string
	IdempotencyKey string
}

// RegisterResult is returned by AuthService.Register.
type RegisterResult struct {
	User *domain.User
	// Replayed is true when the Idempotency-Key matched an earlier registration.
	Replayed bool
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*RegisterResult, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}

// AccountService deletes accounts. Authorization is enforced before these
// calls are reached.
type AccountService interface {
	DeleteByID(ctx context.Context, actor domain.Principal, id string) error
	DeleteByUsername(ctx context.Context, actor domain.Principal, username string) error
}
