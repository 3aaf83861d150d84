package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/accounts-api/internal/api/metrics"
	"github.com/99minutos/accounts-api/internal/core/domain"
)

// Selector picks the principal attribute compared against a path parameter.
type Selector func(p domain.Principal) string

// ByUserID selects the principal's subject id.
func ByUserID(p domain.Principal) string { return p.UserID }

// ByUsername selects the principal's username.
func ByUsername(p domain.Principal) string { return p.Username }

// SelfOrAdmin lets the request through when the caller is an admin or when
// the selected principal attribute equals the named path parameter. It must
// run after Auth.
func SelfOrAdmin(param string, sel Selector) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := Principal(c)
			if !ok {
				return domain.ErrMissingToken
			}

			target := c.Param(param)
			if p.IsAdmin() || (target != "" && sel(p) == target) {
				return next(c)
			}

			metrics.AuthRejectionsTotal.WithLabelValues("forbidden").Inc()
			return domain.ErrForbidden
		}
	}
}
