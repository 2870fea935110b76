package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/movie-ticketing/internal/model"
)

// Reservations is the part of service.ReservationService the handlers
// call.
type Reservations interface {
    Create(ctx context.Context, showtimeID uint64, ticketCount int, caller model.Caller) (*model.Reservation, error)
    Cancel(ctx context.Context, reservationID uint64, caller model.Caller) (*model.Reservation, error)
    ListForUser(ctx context.Context, caller model.Caller) ([]model.ReservationDetail, error)
    Get(ctx context.Context, reservationID uint64, caller model.Caller) (*model.ReservationDetail, error)
}

type reservationRequest struct {
    TicketCount int `json:"ticket_count" validate:"required,min=1,max=4294967295"`
}

// ReservationHandler serves the caller's reservations.  Every route is
// mounted behind Authenticator.Required.
type ReservationHandler struct {
    reservations Reservations
}

func NewReservationHandler(reservations Reservations) *ReservationHandler {
    if reservations == nil {
        panic("handler: NewReservationHandler requires a reservation service")
    }
    return &ReservationHandler{reservations: reservations}
}

// Create handles POST /v1/showtimes/:id/reservations.
func (h *ReservationHandler) Create(c echo.Context) error {
    who, err := caller(c)
    if err != nil {
        return writeError(c, err)
    }
    showtimeID, ok := paramID(c, "id")
    if !ok {
        return badID(c, "showtime")
    }
    var req reservationRequest
    if err := bind(c, &req); err != nil {
        return writeError(c, err)
    }
    res, err := h.reservations.Create(c.Request().Context(), showtimeID, req.TicketCount, who)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, res)
}

// List handles GET /v1/me/reservations.  Past upcoming reservations are
// reported and stored as completed.
func (h *ReservationHandler) List(c echo.Context) error {
    who, err := caller(c)
    if err != nil {
        return writeError(c, err)
    }
    list, err := h.reservations.ListForUser(c.Request().Context(), who)
    if err != nil {
        return writeError(c, err)
    }
    if list == nil {
        list = []model.ReservationDetail{}
    }
    return c.JSON(http.StatusOK, list)
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
    who, err := caller(c)
    if err != nil {
        return writeError(c, err)
    }
    id, ok := paramID(c, "id")
    if !ok {
        return badID(c, "reservation")
    }
    res, err := h.reservations.Get(c.Request().Context(), id, who)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, res)
}

// Cancel handles POST /v1/reservations/:id/cancel.
func (h *ReservationHandler) Cancel(c echo.Context) error {
    who, err := caller(c)
    if err != nil {
        return writeError(c, err)
    }
    id, ok := paramID(c, "id")
    if !ok {
        return badID(c, "reservation")
    }
    res, err := h.reservations.Cancel(c.Request().Context(), id, who)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, res)
}
