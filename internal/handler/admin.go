package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/movie-ticketing/internal/model"
)

// Reports produces the administrator dashboard.
type Reports interface {
    Dashboard(ctx context.Context) (model.Dashboard, error)
}

// Admins grants and revokes the administrator capability.
type Admins interface {
    Promote(ctx context.Context, userID uint64, caller model.Caller) (model.User, error)
    Demote(ctx context.Context, userID uint64, caller model.Caller) (model.User, error)
}

// AdminHandler serves /v1/admin endpoints that are not catalog writes.
type AdminHandler struct {
    reports Reports
    admins  Admins
}

func NewAdminHandler(reports Reports, admins Admins) *AdminHandler {
    if reports == nil || admins == nil {
        panic("handler: NewAdminHandler requires reports and admins")
    }
    return &AdminHandler{reports: reports, admins: admins}
}

// Dashboard handles GET /v1/admin/dashboard.
func (h *AdminHandler) Dashboard(c echo.Context) error {
    d, err := h.reports.Dashboard(c.Request().Context())
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, d)
}

// Promote handles POST /v1/admin/users/:id/promote.
func (h *AdminHandler) Promote(c echo.Context) error {
    return h.setAdmin(c, h.admins.Promote)
}

// Demote handles POST /v1/admin/users/:id/demote.
func (h *AdminHandler) Demote(c echo.Context) error {
    return h.setAdmin(c, h.admins.Demote)
}

func (h *AdminHandler) setAdmin(c echo.Context, apply func(context.Context, uint64, model.Caller) (model.User, error)) error {
    who, err := caller(c)
    if err != nil {
        return writeError(c, err)
    }
    id, ok := paramID(c, "id")
    if !ok {
        return badID(c, "user")
    }
    u, err := apply(c.Request().Context(), id, who)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, u)
}
