package service

import (
    "context"
    "database/sql"

    "github.com/iliyamo/movie-ticketing/internal/model"
    "github.com/iliyamo/movie-ticketing/internal/repository"
)

// SeatLedger derives reserved and available seats of a showtime from its
// reservations.  It never writes and never caches.
type SeatLedger struct {
    showtimes    *repository.ShowtimeRepo
    reservations *repository.ReservationRepo
}

func NewSeatLedger(showtimes *repository.ShowtimeRepo, reservations *repository.ReservationRepo) *SeatLedger {
    return &SeatLedger{showtimes: showtimes, reservations: reservations}
}

// ReservedSeats is the sum of ticket counts of the showtime's
// non-cancelled reservations.
func (l *SeatLedger) ReservedSeats(ctx context.Context, showtimeID uint64) (uint32, error) {
    if _, err := l.showtimes.GetByID(ctx, showtimeID); err != nil {
        return 0, notFound(err, "showtime", showtimeID)
    }
    return l.reservations.ReservedSeats(ctx, showtimeID)
}

// AvailableSeats is capacity minus reserved seats, never below zero.
func (l *SeatLedger) AvailableSeats(ctx context.Context, showtimeID uint64) (uint32, error) {
    s, err := l.showtimes.GetByID(ctx, showtimeID)
    if err != nil {
        return 0, notFound(err, "showtime", showtimeID)
    }
    reserved, err := l.reservations.ReservedSeats(ctx, showtimeID)
    if err != nil {
        return 0, err
    }
    return model.AvailableSeats(s.Capacity, reserved), nil
}

// lockForReservation locks the showtime row inside tx and returns the
// showtime with its seats available at that instant.  Any other
// transaction calling it for the same showtime waits until tx ends, so
// the returned count stays valid until commit.
func (l *SeatLedger) lockForReservation(ctx context.Context, tx *sql.Tx, showtimeID uint64) (*model.Showtime, uint32, error) {
    s, err := l.showtimes.LockTx(ctx, tx, showtimeID)
    if err != nil {
        return nil, 0, notFound(err, "showtime", showtimeID)
    }
    reserved, err := l.reservations.ReservedSeatsTx(ctx, tx, showtimeID)
    if err != nil {
        return nil, 0, err
    }
    return s, model.AvailableSeats(s.Capacity, reserved), nil
}
