package middleware

import "github.com/labstack/echo/v4"

// CommitErrors renders a handler error through the echo error handler before
// returning to outer middleware, so middleware that reads the response status
// (request metrics, access log) sees the mapped code instead of a raw error.
func CommitErrors() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := next(c); err != nil {
				c.Error(err)
			}
			return nil
		}
	}
}
