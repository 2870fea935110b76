package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/movie-ticketing/internal/middleware"
)

// registerAdmin mounts catalog writes and reporting under /v1/admin.
func registerAdmin(v1 *echo.Group, h Handlers, m Middleware) {
    g := v1.Group("/admin", m.Auth.Required(), middleware.RequireAdmin())

    g.POST("/movies", h.Catalog.CreateMovie)
    g.PATCH("/movies/:id", h.Catalog.UpdateMovie)
    g.DELETE("/movies/:id", h.Catalog.DeleteMovie)

    g.POST("/showtimes", h.Catalog.CreateShowtime)
    g.DELETE("/showtimes/:id", h.Catalog.DeleteShowtime)

    g.GET("/dashboard", h.Admin.Dashboard)
    g.POST("/users/:id/promote", h.Admin.Promote)
    g.POST("/users/:id/demote", h.Admin.Demote)
}
