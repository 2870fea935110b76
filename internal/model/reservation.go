package model

import "time"

// DefaultTicketPriceCents is the fixed per-ticket price (12.00) used
// unless configured otherwise.
const DefaultTicketPriceCents int64 = 1200

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
    StatusUpcoming  ReservationStatus = "upcoming"
    StatusCompleted ReservationStatus = "completed"
    StatusCancelled ReservationStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s ReservationStatus) Valid() bool {
    switch s {
    case StatusUpcoming, StatusCompleted, StatusCancelled:
        return true
    }
    return false
}

// Terminal reports whether no transition leaves s.
func (s ReservationStatus) Terminal() bool {
    return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether the lifecycle allows moving from s to
// next.  Only upcoming reservations move, either to cancelled (by the
// owner or an administrator) or to completed (once the showtime date
// has passed).
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
    if s != StatusUpcoming {
        return false
    }
    return next == StatusCancelled || next == StatusCompleted
}

// Reservation records a user's claim on a number of seats of a single
// showtime.  TotalPriceCents is fixed at creation as ticket count times
// the unit price.
//
// Fields:
//  ID              – primary key identifier.
//  UserID          – user who made the reservation.
//  ShowtimeID      – showtime being reserved.
//  TicketCount     – number of seats claimed (positive).
//  TotalPriceCents – total price in cents.
//  Status          – upcoming, completed or cancelled.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Reservation struct {
    ID              uint64            `json:"id"`                // reservations.id
    UserID          uint64            `json:"user_id"`           // reservations.user_id
    ShowtimeID      uint64            `json:"showtime_id"`       // reservations.showtime_id
    TicketCount     uint32            `json:"ticket_count"`      // reservations.ticket_count
    TotalPriceCents int64             `json:"total_price_cents"` // reservations.total_price_cents
    Status          ReservationStatus `json:"status"`            // reservations.status
    CreatedAt       time.Time         `json:"created_at"`        // reservations.created_at
    UpdatedAt       time.Time         `json:"updated_at"`        // reservations.updated_at
}

// ReservationDetail is a reservation joined with its showtime and movie
// for display to the owning user.
type ReservationDetail struct {
    Reservation
    MovieID    uint64  `json:"movie_id"`
    MovieTitle string  `json:"movie_title"`
    PosterURL  *string `json:"poster_image,omitempty"`
    ShowDate   string  `json:"show_date"`
    ShowTime   string  `json:"show_time"`
}

// ReservationConfirmation carries what a notification needs to confirm
// a freshly created reservation without reading the store again.
type ReservationConfirmation struct {
    ReservationID   uint64
    UserID          uint64
    Username        string
    ShowtimeID      uint64
    MovieTitle      string
    ShowDate        string
    ShowTime        string
    TicketCount     uint32
    TotalPriceCents int64
    CreatedAt       time.Time
}
