package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/accounts-api/internal/core/domain"
	"github.com/99minutos/accounts-api/internal/core/ports"
)

// AuthService implements registration and login.
type AuthService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	idem   ports.IdempotencyStore
	log    zerolog.Logger
}

// NewAuthService wires the service. idem may be nil, which disables
// idempotent registration.
func NewAuthService(
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	idem ports.IdempotencyStore,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, tokens: tokens, idem: idem, log: log}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
	if !domain.IsRegistrableRole(in.Role) {
		return nil, domain.ErrInvalidRole
	}

	if s.idem != nil && in.IdempotencyKey != "" {
		prev, err := s.replay(ctx, in)
		if err != nil {
			return nil, err
		}
		if prev != nil {
			return &ports.RegisterResult{User: prev, Replayed: true}, nil
		}
	}

	existing, err := s.repo.FindByEmail(ctx, in.Email)
	switch {
	case err == nil && existing != nil:
		return nil, domain.ErrDuplicateEmail
	case err != nil && !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("register: lookup email: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("register: create user: %w", err)
	}

	if s.idem != nil && in.IdempotencyKey != "" {
		if err := s.idem.Save(ctx, in.IdempotencyKey, created); err != nil {
			s.logFor(ctx).Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("failed to store idempotency key")
		}
	}

	s.logFor(ctx).Info().Str("user_id", created.ID).Str("role", created.Role).Msg("user registered")
	return &ports.RegisterResult{User: created}, nil
}

// replay returns the user recorded under in.IdempotencyKey when the entry
// matches in and the account still exists. A key presented with a different
// payload is ErrIdempotencyKeyReused. Entries for deleted accounts are dropped
// and the registration proceeds. Store failures are logged and treated as a
// miss.
func (s *AuthService) replay(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	log := s.logFor(ctx).With().Str("idempotency_key", in.IdempotencyKey).Logger()

	prev, found, err := s.idem.Lookup(ctx, in.IdempotencyKey)
	if err != nil {
		log.Warn().Err(err).Msg("idempotency lookup failed, registering anyway")
		return nil, nil
	}
	if !found {
		return nil, nil
	}

	if prev.Email != in.Email || prev.Username != in.Username || prev.Role != in.Role {
		log.Warn().Msg("idempotency key reused with a different payload")
		return nil, domain.ErrIdempotencyKeyReused
	}

	if _, err := s.repo.FindByID(ctx, prev.ID); err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("register: check replayed user: %w", err)
		}
		log.Info().Str("user_id", prev.ID).Msg("replayed user no longer exists, dropping entry")
		if err := s.idem.Forget(ctx, in.IdempotencyKey); err != nil {
			log.Warn().Err(err).Msg("failed to drop stale idempotency entry")
		}
		return nil, nil
	}

	log.Info().Str("user_id", prev.ID).Msg("idempotent replay")
	return prev, nil
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password both yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logFor(ctx).Debug().Str("reason", "unknown_email").Msg("login rejected")
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("login: lookup email: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logFor(ctx).Debug().Str("reason", "password_mismatch").Str("user_id", user.ID).Msg("login rejected")
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, fmt.Errorf("login: issue token: %w", err)
	}

	return token, user, nil
}
