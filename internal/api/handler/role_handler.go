package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/toronto-opendata/auth-service/internal/core/service"
)

type RoleHandler struct {
	roles *service.RoleService
}

func NewRoleHandler(roles *service.RoleService) *RoleHandler {
	return &RoleHandler{roles: roles}
}

type roleRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=64"`
	Description string `json:"description,omitempty"`
}

type roleUpdateRequest struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// List returns all roles.
//
// @Summary      List roles
// @Tags         roles
// @Produce      json
// @Success      200  {array}  domain.Role
// @Router       /api/roles [get]
func (h *RoleHandler) List(c echo.Context) error {
	roles, err := h.roles.GetAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roles)
}

// Get returns one role by id.
func (h *RoleHandler) Get(c echo.Context) error {
	role, err := h.roles.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, role)
}

// GetByName returns one role by its unique name.
func (h *RoleHandler) GetByName(c echo.Context) error {
	role, err := h.roles.GetByName(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, role)
}

// Create adds a new role.
func (h *RoleHandler) Create(c echo.Context) error {
	var req roleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	role, err := h.roles.Create(c.Request().Context(), req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, role)
}

// Update renames a role or changes its description.
func (h *RoleHandler) Update(c echo.Context) error {
	var req roleUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	role, err := h.roles.Update(c.Request().Context(), c.Param("id"), req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, role)
}

// Delete removes a role after severing every membership edge.
func (h *RoleHandler) Delete(c echo.Context) error {
	if err := h.roles.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AssignPermission grants a permission to a role.
func (h *RoleHandler) AssignPermission(c echo.Context) error {
	role, err := h.roles.AssignPermission(c.Request().Context(), c.Param("id"), c.Param("permissionId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, role)
}

// RemovePermission revokes a permission from a role.
func (h *RoleHandler) RemovePermission(c echo.Context) error {
	role, err := h.roles.RemovePermission(c.Request().Context(), c.Param("id"), c.Param("permissionId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, role)
}

// Permissions lists the permissions granted by a role.
func (h *RoleHandler) Permissions(c echo.Context) error {
	perms, err := h.roles.GetPermissions(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, perms)
}
