package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/accounts-api/internal/api/metrics"
	"github.com/99minutos/accounts-api/internal/core/domain"
)

const principalKey = "principal"

// TokenVerifier validates a bearer token and returns the caller it identifies.
type TokenVerifier interface {
	Verify(token string) (*domain.Principal, error)
}

// Auth extracts the bearer token from the Authorization header, verifies it
// and stores the resulting principal on the context. The scheme word is not
// checked; the second whitespace-separated segment is taken as the token.
func Auth(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				metrics.AuthRejectionsTotal.WithLabelValues("missing_token").Inc()
				return domain.ErrMissingToken
			}

			var token string
			if parts := strings.Fields(authHeader); len(parts) > 1 {
				token = parts[1]
			}

			p, err := verifier.Verify(token)
			if err != nil {
				metrics.AuthRejectionsTotal.WithLabelValues("invalid_token").Inc()
				return domain.ErrTokenInvalid
			}

			c.Set(principalKey, *p)
			return next(c)
		}
	}
}

// Principal returns the caller stored by Auth.
func Principal(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get(principalKey).(domain.Principal)
	return p, ok
}
