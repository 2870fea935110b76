package router

import (
    "github.com/labstack/echo/v4"
)

// registerCustomer mounts the endpoints of any authenticated user.
// Ownership is checked by the reservation service, so administrators
// reach other users' reservations through the same routes.
func registerCustomer(v1 *echo.Group, h Handlers, m Middleware) {
    authed := m.Auth.Required()

    v1.POST("/showtimes/:id/reservations", h.Reservations.Create, authed, m.RateLimit)
    v1.GET("/me/reservations", h.Reservations.List, authed)
    v1.GET("/reservations/:id", h.Reservations.Get, authed)
    v1.POST("/reservations/:id/cancel", h.Reservations.Cancel, authed, m.RateLimit)

    v1.GET("/movies/:id/ratings/me", h.Ratings.Mine, authed)
}
