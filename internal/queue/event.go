// Package queue carries reservation notifications over RabbitMQ: a
// publisher used by the reservation engine after commit and a consumer
// that records each confirmation.
package queue

import (
    "time"

    "github.com/iliyamo/movie-ticketing/internal/model"
)

// ReservationCreatedQueue is the durable queue confirmations travel on.
const ReservationCreatedQueue = "reservation.created"

// ReservationCreatedEvent is published once a reservation is committed.
// It contains enough information for downstream consumers to confirm the
// booking without querying the primary database.
type ReservationCreatedEvent struct {
    ReservationID   uint64 `json:"reservation_id"`
    UserID          uint64 `json:"user_id"`
    Username        string `json:"username"`
    ShowtimeID      uint64 `json:"showtime_id"`
    MovieTitle      string `json:"movie_title"`
    ShowDate        string `json:"show_date"`
    ShowTime        string `json:"show_time"`
    TicketCount     uint32 `json:"ticket_count"`
    TotalPriceCents int64  `json:"total_price_cents"`
    CreatedAt       string `json:"created_at"` // RFC 3339, UTC
}

// NewReservationCreatedEvent converts a confirmation into its wire form.
func NewReservationCreatedEvent(c model.ReservationConfirmation) ReservationCreatedEvent {
    return ReservationCreatedEvent{
        ReservationID:   c.ReservationID,
        UserID:          c.UserID,
        Username:        c.Username,
        ShowtimeID:      c.ShowtimeID,
        MovieTitle:      c.MovieTitle,
        ShowDate:        c.ShowDate,
        ShowTime:        c.ShowTime,
        TicketCount:     c.TicketCount,
        TotalPriceCents: c.TotalPriceCents,
        CreatedAt:       c.CreatedAt.UTC().Format(time.RFC3339),
    }
}
