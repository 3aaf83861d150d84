package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/accounts-api/internal/api/middleware"
	"github.com/99minutos/accounts-api/internal/core/domain"
)

// ctxPrincipal returns the caller injected by the Auth middleware. Its
// absence means the route was wired without the gate; treat it as
// unauthenticated.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	p, ok := middleware.Principal(c)
	if !ok || p.UserID == "" {
		return domain.Principal{}, domain.ErrMissingToken
	}
	return p, nil
}
