package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/99minutos/accounts-api/pkg/logger"
)

// Entries written while serving a request carry its request id when the
// router attached a request logger to ctx.

func (s *AuthService) logFor(ctx context.Context) *zerolog.Logger {
	l := logger.FromContext(ctx, s.log)
	return &l
}

func (s *AccountService) logFor(ctx context.Context) *zerolog.Logger {
	l := logger.FromContext(ctx, s.log)
	return &l
}
