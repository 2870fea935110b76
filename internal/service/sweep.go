package service

import (
    "time"

    "github.com/iliyamo/movie-ticketing/internal/model"
)

// Sweep applies the time-triggered upcoming -> completed transition to
// rows as of now.  It returns the updated rows and the ids that changed;
// the input slice is not modified.  A reservation completes once its
// showtime's calendar date is strictly before now's date in now's
// location, so a showtime later today stays upcoming.  Sweep is
// idempotent: sweeping its own output changes nothing.
func Sweep(now time.Time, rows []model.ReservationDetail) ([]model.ReservationDetail, []uint64) {
    today := now.Format(model.DateLayout)
    out := make([]model.ReservationDetail, len(rows))
    var completed []uint64
    for i, r := range rows {
        // YYYY-MM-DD orders lexically.
        if r.ShowDate < today && r.Status.CanTransitionTo(model.StatusCompleted) {
            r.Status = model.StatusCompleted
            completed = append(completed, r.ID)
        }
        out[i] = r
    }
    return out, completed
}
