package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/accounts-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Message string `json:"msg"`
}

const (
	msgForbidden = "Unauthorized: You can only delete your own account unless you are an admin"
	msgInternal  = "Server error"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes and messages.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"msg": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	switch {
	case errors.Is(err, domain.ErrMissingToken):
		return http.StatusUnauthorized, "No token, authorization denied"
	case errors.Is(err, domain.ErrTokenInvalid):
		return http.StatusUnauthorized, "Token is not valid"
	case errors.Is(err, domain.ErrInvalidRole):
		return http.StatusBadRequest, "Invalid role selected."
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusBadRequest, "User already exists"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusBadRequest, "Invalid credentials"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, msgForbidden
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, domain.ErrIdempotencyKeyReused):
		return http.StatusUnprocessableEntity, "Idempotency-Key already used for a different request"
	}

	// Echo's own errors (bind failures, unknown routes, validation).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			logUnhandled(log, c, err)
			return he.Code, msgInternal
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	logUnhandled(log, c, err)
	return http.StatusInternalServerError, msgInternal
}

func logUnhandled(log zerolog.Logger, c echo.Context, err error) {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")
}
