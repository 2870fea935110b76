package repository

import (
    "context"
    "database/sql"
    "time"
)

// StatsRepo runs the aggregate queries behind the administrator
// dashboard.  Every call reads committed data; nothing is cached.
type StatsRepo struct {
    db *sql.DB
}

func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

// CountMovies returns the number of catalog movies.
func (r *StatsRepo) CountMovies(ctx context.Context) (int64, error) {
    return r.count(ctx, `SELECT COUNT(*) FROM movies`)
}

// CountUsers returns the number of user accounts.
func (r *StatsRepo) CountUsers(ctx context.Context) (int64, error) {
    return r.count(ctx, `SELECT COUNT(*) FROM users`)
}

// CountActiveReservationsOn counts non-cancelled reservations whose
// showtime falls on date (YYYY-MM-DD).
func (r *StatsRepo) CountActiveReservationsOn(ctx context.Context, date string) (int64, error) {
    const q = `SELECT COUNT(*) FROM reservations r
               JOIN showtimes s ON s.id = r.showtime_id
               WHERE s.show_date = ? AND r.status <> 'cancelled'`
    return r.count(ctx, q, date)
}

// RevenueBetween sums total_price_cents of reservations created in
// [from, to).  Cancelled reservations are included.
func (r *StatsRepo) RevenueBetween(ctx context.Context, from, to time.Time) (int64, error) {
    const q = `SELECT COALESCE(SUM(total_price_cents), 0) FROM reservations WHERE created_at >= ? AND created_at < ?`
    return r.count(ctx, q, from.UTC(), to.UTC())
}

func (r *StatsRepo) count(ctx context.Context, q string, args ...any) (int64, error) {
    var n int64
    if err := r.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
        return 0, err
    }
    return n, nil
}
