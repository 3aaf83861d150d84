package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/accounts-api/internal/api/metrics"
	"github.com/99minutos/accounts-api/internal/core/ports"
)

// AccountHandler serves the authenticated account deletion routes.
type AccountHandler struct {
	service ports.AccountService
}

func NewAccountHandler(service ports.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// DeleteByID handles DELETE /api/auth/delete/:id.
//
// @Summary      Delete a user by id
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  messageResponse
// @Failure      403  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Failure      500  {object}  messageResponse
// @Router       /api/auth/delete/{id} [delete]
func (h *AccountHandler) DeleteByID(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteByID(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}

	metrics.DeletionsTotal.WithLabelValues("id").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "User deleted successfully"})
}

// DeleteByUsername handles DELETE /api/auth/delete/username/:username.
//
// @Summary      Delete a user by username
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  messageResponse
// @Failure      401       {object}  messageResponse
// @Failure      403       {object}  messageResponse
// @Failure      404       {object}  messageResponse
// @Failure      500       {object}  messageResponse
// @Router       /api/auth/delete/username/{username} [delete]
func (h *AccountHandler) DeleteByUsername(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteByUsername(c.Request().Context(), actor, c.Param("username")); err != nil {
		return err
	}

	metrics.DeletionsTotal.WithLabelValues("username").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "User deleted successfully"})
}
