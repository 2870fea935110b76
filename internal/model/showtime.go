package model

import "time"

// DefaultShowtimeCapacity is the seat count used when a showtime is
// created without an explicit capacity.
const DefaultShowtimeCapacity uint32 = 60

// DateLayout and TimeLayout are the wire formats for a showtime's
// calendar date and time of day.
const (
    DateLayout = "2006-01-02"
    TimeLayout = "15:04"
)

// Showtime represents a scheduled screening of a movie.  No two
// showtimes share the same (movie, date, time) triple.  Capacity is
// fixed at creation and is never mutated by reservations; reserved and
// available seats are always derived from the reservations table.
//
// Fields:
//  ID        – primary key identifier.
//  MovieID   – movie being screened.
//  Date      – calendar date (midnight UTC, date part only).
//  Time      – time of day in "HH:MM".
//  Capacity  – total number of seats.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Showtime struct {
    ID        uint64    `json:"id"`         // showtimes.id
    MovieID   uint64    `json:"movie_id"`   // showtimes.movie_id
    Date      time.Time `json:"-"`          // showtimes.show_date
    Time      string    `json:"time"`       // showtimes.show_time
    Capacity  uint32    `json:"capacity"`   // showtimes.capacity
    CreatedAt time.Time `json:"created_at"` // showtimes.created_at
    UpdatedAt time.Time `json:"updated_at"` // showtimes.updated_at
}

// DateString formats the showtime's calendar date as YYYY-MM-DD.
func (s Showtime) DateString() string { return s.Date.Format(DateLayout) }

// ShowtimeAvailability is a showtime annotated with its movie title and
// seat accounting at the time it was read.
type ShowtimeAvailability struct {
    ID         uint64 `json:"id"`
    MovieID    uint64 `json:"movie_id"`
    MovieTitle string `json:"movie_title"`
    Date       string `json:"date"`
    Time       string `json:"time"`
    Capacity   uint32 `json:"capacity"`
    Reserved   uint32 `json:"reserved_seats"`
    Available  uint32 `json:"available_seats"`
}

// AvailableSeats is capacity minus reserved, never reported below zero.
func AvailableSeats(capacity, reserved uint32) uint32 {
    if reserved >= capacity {
        return 0
    }
    return capacity - reserved
}
