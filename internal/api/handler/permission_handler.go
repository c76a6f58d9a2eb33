package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/toronto-opendata/auth-service/internal/core/service"
)

type PermissionHandler struct {
	permissions *service.PermissionService
}

func NewPermissionHandler(permissions *service.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissions: permissions}
}

type permissionRequest struct {
	Resource    string `json:"resource" validate:"required,min=2,max=64"`
	Action      string `json:"action" validate:"required,min=2,max=64"`
	Description string `json:"description,omitempty"`
}

type permissionUpdateRequest struct {
	Resource    string `json:"resource,omitempty"`
	Action      string `json:"action,omitempty"`
	Description string `json:"description,omitempty"`
}

// List returns all permissions.
//
// @Summary      List permissions
// @Tags         permissions
// @Produce      json
// @Success      200  {array}  domain.Permission
// @Router       /api/permissions [get]
func (h *PermissionHandler) List(c echo.Context) error {
	perms, err := h.permissions.GetAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, perms)
}

// Get returns one permission by id.
func (h *PermissionHandler) Get(c echo.Context) error {
	perm, err := h.permissions.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, perm)
}

// ByResource lists permissions for one resource.
func (h *PermissionHandler) ByResource(c echo.Context) error {
	perms, err := h.permissions.GetByResource(c.Request().Context(), c.Param("resource"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, perms)
}

// ByAction lists permissions for one action.
func (h *PermissionHandler) ByAction(c echo.Context) error {
	perms, err := h.permissions.GetByAction(c.Request().Context(), c.Param("action"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, perms)
}

// ByResourceAndAction returns the single permission for a pair.
func (h *PermissionHandler) ByResourceAndAction(c echo.Context) error {
	perm, err := h.permissions.GetByResourceAndAction(c.Request().Context(), c.Param("resource"), c.Param("action"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, perm)
}

// Exists reports whether a (resource, action) permission exists. The pair is
// taken from query parameters.
func (h *PermissionHandler) Exists(c echo.Context) error {
	exists, err := h.permissions.Exists(c.Request().Context(), c.QueryParam("resource"), c.QueryParam("action"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"exists": exists})
}

// Create adds a new permission; the display name is derived server-side.
func (h *PermissionHandler) Create(c echo.Context) error {
	var req permissionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	perm, err := h.permissions.Create(c.Request().Context(), req.Resource, req.Action, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, perm)
}

// Update changes a permission's pair or description.
func (h *PermissionHandler) Update(c echo.Context) error {
	var req permissionUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	perm, err := h.permissions.Update(c.Request().Context(), c.Param("id"), req.Resource, req.Action, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, perm)
}

// Delete removes a permission after severing it from every role.
func (h *PermissionHandler) Delete(c echo.Context) error {
	if err := h.permissions.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
