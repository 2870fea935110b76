// This file holds the showtime repository.  A showtime is a scheduled
// screening of a movie on a calendar date at a time of day with a fixed
// seat capacity.  Dates are persisted in a DATE column and times in a TIME
// column; reads format the time back to "HH:MM".
package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/iliyamo/movie-ticketing/internal/model"
)

// ShowtimeRepo manages persistence for showtimes.
type ShowtimeRepo struct {
    db *sql.DB
}

// NewShowtimeRepo constructs a ShowtimeRepo with the given DB handle.
func NewShowtimeRepo(db *sql.DB) *ShowtimeRepo { return &ShowtimeRepo{db: db} }


const showtimeColumns = `id, movie_id, show_date, DATE_FORMAT(show_time, '%H:%i'), capacity, created_at, updated_at`

// Create inserts a showtime and reloads it.  A second showtime for the
// same (movie, date, time) yields ErrConflict and an unknown movie yields
// ErrNotFound.
func (r *ShowtimeRepo) Create(ctx context.Context, s *model.Showtime) error {
    const q = `INSERT INTO showtimes (movie_id, show_date, show_time, capacity) VALUES (?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, s.MovieID, s.DateString(), s.Time, s.Capacity)
    if err != nil {
        switch {
        case isDuplicate(err):
            return ErrConflict
        case isMissingParent(err):
            return ErrNotFound
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    created, err := r.GetByID(ctx, uint64(id))
    if err != nil {
        return err
    }
    *s = *created
    return nil
}

// GetByID returns the showtime with the given id or ErrNotFound.
func (r *ShowtimeRepo) GetByID(ctx context.Context, id uint64) (*model.Showtime, error) {
    return getShowtime(ctx, r.db, `SELECT `+showtimeColumns+` FROM showtimes WHERE id = ?`, id)
}

// LockTx reads the showtime with an exclusive row lock held until tx
// ends.  Reservation creation takes this lock before counting seats, so
// concurrent creations for one showtime run their capacity checks one
// after another.
func (r *ShowtimeRepo) LockTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Showtime, error) {
    return getShowtime(ctx, tx, `SELECT `+showtimeColumns+` FROM showtimes WHERE id = ? FOR UPDATE`, id)
}

func getShowtime(ctx context.Context, q querier, query string, id uint64) (*model.Showtime, error) {
    var s model.Showtime
    err := q.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.MovieID, &s.Date, &s.Time, &s.Capacity, &s.CreatedAt, &s.UpdatedAt)
    if err != nil {
        return nil, noRows(err)
    }
    return &s, nil
}

// ShowtimeFilter narrows List.  Nil fields do not filter.
type ShowtimeFilter struct {
    Date    *string // YYYY-MM-DD
    MovieID *uint64
}

// List returns showtimes with their movie title and seat accounting,
// ordered by date, time and id.  Reserved seats count every
// non-cancelled reservation.
func (r *ShowtimeRepo) List(ctx context.Context, f ShowtimeFilter) ([]model.ShowtimeAvailability, error) {
    var (
        where []string
        args  []any
    )
    if f.Date != nil {
        where = append(where, "s.show_date = ?")
        args = append(args, *f.Date)
    }
    if f.MovieID != nil {
        where = append(where, "s.movie_id = ?")
        args = append(args, *f.MovieID)
    }
    q := `SELECT s.id, s.movie_id, m.title, DATE_FORMAT(s.show_date, '%Y-%m-%d'), DATE_FORMAT(s.show_time, '%H:%i'), s.capacity,
                 COALESCE(SUM(CASE WHEN r.status <> 'cancelled' THEN r.ticket_count ELSE 0 END), 0)
          FROM showtimes s
          JOIN movies m ON m.id = s.movie_id
          LEFT JOIN reservations r ON r.showtime_id = s.id`
    if len(where) > 0 {
        q += " WHERE " + strings.Join(where, " AND ")
    }
    q += ` GROUP BY s.id, m.title ORDER BY s.show_date ASC, s.show_time ASC, s.id ASC`

    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    result := []model.ShowtimeAvailability{}
    for rows.Next() {
        var a model.ShowtimeAvailability
        if err := rows.Scan(&a.ID, &a.MovieID, &a.MovieTitle, &a.Date, &a.Time, &a.Capacity, &a.Reserved); err != nil {
            return nil, err
        }
        a.Available = model.AvailableSeats(a.Capacity, a.Reserved)
        result = append(result, a)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return result, nil
}

// Delete removes a showtime and, through the foreign key, its
// reservations.
func (r *ShowtimeRepo) Delete(ctx context.Context, id uint64) error {
    res, err := r.db.ExecContext(ctx, `DELETE FROM showtimes WHERE id = ?`, id)
    if err != nil {
        return err
    }
    return affectedOne(res)
}
