package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/accounts-api/internal/core/domain"
	"github.com/99minutos/accounts-api/internal/core/ports"
)

// AccountService removes user accounts.
type AccountService struct {
	repo ports.UserRepository
	log  zerolog.Logger
}

func NewAccountService(repo ports.UserRepository, log zerolog.Logger) *AccountService {
	return &AccountService{repo: repo, log: log}
}

// DeleteByID removes the account with the given id, or returns
// domain.ErrUserNotFound.
func (s *AccountService) DeleteByID(ctx context.Context, actor domain.Principal, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("delete by id: %w", err)
	}
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("delete by id: %w", err)
	}

	s.logFor(ctx).Info().Str("actor_id", actor.UserID).Str("target_id", id).Msg("user deleted")
	return nil
}

// DeleteByUsername removes the account with the given username, or returns
// domain.ErrUserNotFound.
func (s *AccountService) DeleteByUsername(ctx context.Context, actor domain.Principal, username string) error {
	if _, err := s.repo.FindByUsername(ctx, username); err != nil {
		return fmt.Errorf("delete by username: %w", err)
	}
	if err := s.repo.DeleteByUsername(ctx, username); err != nil {
		return fmt.Errorf("delete by username: %w", err)
	}

	s.logFor(ctx).Info().Str("actor_id", actor.UserID).Str("target_username", username).Msg("user deleted")
	return nil
}
