package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/toronto-opendata/auth-service/internal/core/service"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type updateUserRequest struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type setFlagRequest struct {
	Value bool `json:"value"`
}

// List returns all users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {array}  domain.User
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.users.GetAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Me returns the authenticated caller's own record.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Success      200  {object}  domain.User
// @Failure      401  {object}  map[string]string
// @Router       /api/users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	user, err := h.users.GetByUsername(c.Request().Context(), principal.Username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Get returns one user by id.
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.users.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Update applies profile changes to a user.
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.users.UpdateProfile(c.Request().Context(), c.Param("id"), req.FirstName, req.LastName, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// ChangePassword verifies the old password and stores a new hash.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.users.ChangePassword(c.Request().Context(), c.Param("id"), req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// SetEnabled enables or disables an account.
func (h *UserHandler) SetEnabled(c echo.Context) error {
	var req setFlagRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	user, err := h.users.SetEnabled(c.Request().Context(), c.Param("id"), req.Value)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// SetLocked locks or unlocks an account.
func (h *UserHandler) SetLocked(c echo.Context) error {
	var req setFlagRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	user, err := h.users.SetLocked(c.Request().Context(), c.Param("id"), req.Value)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// AssignRole grants a role to a user.
func (h *UserHandler) AssignRole(c echo.Context) error {
	user, err := h.users.AssignRole(c.Request().Context(), c.Param("id"), c.Param("roleId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// RemoveRole revokes a role from a user.
func (h *UserHandler) RemoveRole(c echo.Context) error {
	user, err := h.users.RemoveRole(c.Request().Context(), c.Param("id"), c.Param("roleId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Delete removes a user account.
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.users.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
