package router // router wires handlers and middleware onto an Echo instance

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/movie-ticketing/internal/handler"
    "github.com/iliyamo/movie-ticketing/internal/middleware"
)

// Handlers groups everything the routes dispatch to.
type Handlers struct {
    Health       echo.HandlerFunc
    Catalog      *handler.CatalogHandler
    Reservations *handler.ReservationHandler
    Ratings      *handler.RatingHandler
    Admin        *handler.AdminHandler
}

// Middleware groups the per-route middleware.  Cache and RateLimit may be
// pass-through when Redis is unavailable.
type Middleware struct {
    Auth      *middleware.Authenticator
    Cache     echo.MiddlewareFunc
    RateLimit echo.MiddlewareFunc
}

// Register mounts every route under /v1 plus the health probes.
func Register(e *echo.Echo, h Handlers, m Middleware) {
    if m.Cache == nil {
        m.Cache = noop
    }
    if m.RateLimit == nil {
        m.RateLimit = noop
    }
    e.GET("/healthz", h.Health)

    v1 := e.Group("/v1")
    registerPublic(v1, h, m)
    registerCustomer(v1, h, m)
    registerAdmin(v1, h, m)
}

// registerPublic mounts the anonymous read endpoints, and rating
// submission which accepts an optional token.  Only the listings are
// cached; movie detail, ratings and seats reflect writes immediately.
func registerPublic(g *echo.Group, h Handlers, m Middleware) {
    g.GET("/movies", h.Catalog.ListMovies, m.Cache)
    g.GET("/movies/:id", h.Catalog.GetMovie)
    g.GET("/movies/:id/ratings", h.Ratings.List)
    g.GET("/showtimes", h.Catalog.ListShowtimes, m.Cache)
    g.GET("/showtimes/:id/seats", h.Catalog.ShowtimeSeats)

    g.POST("/movies/:id/ratings", h.Ratings.Upsert, m.Auth.Optional(), m.RateLimit)
}

func noop(next echo.HandlerFunc) echo.HandlerFunc { return next }
