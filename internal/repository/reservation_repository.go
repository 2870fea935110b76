package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/iliyamo/movie-ticketing/internal/model"
)

// ReservationRepo provides persistence for reservations and the seat
// accounting derived from them.  All timestamp fields are stored in UTC.
// Methods with a Tx suffix run inside the caller's transaction; the caller
// must commit or roll it back.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }


const reservedSeatsQuery = `SELECT COALESCE(SUM(ticket_count), 0) FROM reservations WHERE showtime_id = ? AND status <> 'cancelled'`

// ReservedSeats sums ticket_count over the showtime's non-cancelled
// reservations using committed data.
func (r *ReservationRepo) ReservedSeats(ctx context.Context, showtimeID uint64) (uint32, error) {
    return reservedSeats(ctx, r.db, showtimeID)
}

// ReservedSeatsTx is ReservedSeats evaluated inside tx, after the caller
// has locked the showtime row.
func (r *ReservationRepo) ReservedSeatsTx(ctx context.Context, tx *sql.Tx, showtimeID uint64) (uint32, error) {
    return reservedSeats(ctx, tx, showtimeID)
}

func reservedSeats(ctx context.Context, q querier, showtimeID uint64) (uint32, error) {
    var n uint32
    if err := q.QueryRowContext(ctx, reservedSeatsQuery, showtimeID).Scan(&n); err != nil {
        return 0, err
    }
    return n, nil
}

const reservationColumns = `id, user_id, showtime_id, ticket_count, total_price_cents, status, created_at, updated_at`

// CreateTx inserts a reservation within tx and reads it back so that the
// generated ID, status default and timestamps are populated on res.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
    const q = `INSERT INTO reservations (user_id, showtime_id, ticket_count, total_price_cents, status) VALUES (?, ?, ?, ?, ?)`
    result, err := tx.ExecContext(ctx, q, res.UserID, res.ShowtimeID, res.TicketCount, res.TotalPriceCents, res.Status)
    if err != nil {
        if isMissingParent(err) {
            return ErrNotFound
        }
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    created, err := getReservation(ctx, tx, `SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, uint64(id))
    if err != nil {
        return err
    }
    *res = *created
    return nil
}

// GetForUpdateTx reads a reservation and locks its row until tx ends.
func (r *ReservationRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Reservation, error) {
    return getReservation(ctx, tx, `SELECT `+reservationColumns+` FROM reservations WHERE id = ? FOR UPDATE`, id)
}

func getReservation(ctx context.Context, q querier, query string, id uint64) (*model.Reservation, error) {
    var res model.Reservation
    err := q.QueryRowContext(ctx, query, id).Scan(
        &res.ID, &res.UserID, &res.ShowtimeID, &res.TicketCount,
        &res.TotalPriceCents, &res.Status, &res.CreatedAt, &res.UpdatedAt,
    )
    if err != nil {
        return nil, noRows(err)
    }
    return &res, nil
}

// UpdateStatusTx sets the status of one reservation.  The caller is
// responsible for checking that the transition is allowed.
func (r *ReservationRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.ReservationStatus) error {
    res, err := tx.ExecContext(ctx, `UPDATE reservations SET status = ? WHERE id = ?`, status, id)
    if err != nil {
        return err
    }
    return affectedOne(res)
}

const detailQuery = `SELECT r.id, r.user_id, r.showtime_id, r.ticket_count, r.total_price_cents, r.status, r.created_at, r.updated_at,
                 m.id, m.title, m.poster_url, DATE_FORMAT(s.show_date, '%Y-%m-%d'), DATE_FORMAT(s.show_time, '%H:%i')
          FROM reservations r
          JOIN showtimes s ON s.id = r.showtime_id
          JOIN movies m ON m.id = s.movie_id`

// ListByUserForUpdateTx returns every reservation of the user joined with
// its showtime and movie, ordered by id, and locks the reservation rows
// (not the joined showtimes) until tx ends.
func (r *ReservationRepo) ListByUserForUpdateTx(ctx context.Context, tx *sql.Tx, userID uint64) ([]model.ReservationDetail, error) {
    rows, err := tx.QueryContext(ctx, detailQuery+` WHERE r.user_id = ? ORDER BY r.id ASC FOR UPDATE OF r`, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    result := []model.ReservationDetail{}
    for rows.Next() {
        d, err := scanDetail(rows)
        if err != nil {
            return nil, err
        }
        result = append(result, *d)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return result, nil
}

// GetDetail returns one reservation joined with its showtime and movie.
func (r *ReservationRepo) GetDetail(ctx context.Context, id uint64) (*model.ReservationDetail, error) {
    d, err := scanDetail(r.db.QueryRowContext(ctx, detailQuery+` WHERE r.id = ?`, id))
    if err != nil {
        return nil, noRows(err)
    }
    return d, nil
}

func scanDetail(row rowScanner) (*model.ReservationDetail, error) {
    var (
        d      model.ReservationDetail
        poster sql.NullString
    )
    if err := row.Scan(
        &d.ID, &d.UserID, &d.ShowtimeID, &d.TicketCount, &d.TotalPriceCents, &d.Status, &d.CreatedAt, &d.UpdatedAt,
        &d.MovieID, &d.MovieTitle, &poster, &d.ShowDate, &d.ShowTime,
    ); err != nil {
        return nil, err
    }
    if poster.Valid {
        p := poster.String
        d.PosterURL = &p
    }
    return &d, nil
}

// MarkCompletedTx moves the given reservations from upcoming to completed
// in one statement.  Rows that are no longer upcoming are left alone.
// It returns the number of rows changed; an empty id list is a no-op.
func (r *ReservationRepo) MarkCompletedTx(ctx context.Context, tx *sql.Tx, ids []uint64) (int64, error) {
    if len(ids) == 0 {
        return 0, nil
    }
    args := make([]any, 0, len(ids)+2)
    args = append(args, model.StatusCompleted, model.StatusUpcoming)
    for _, id := range ids {
        args = append(args, id)
    }
    q := `UPDATE reservations SET status = ? WHERE status = ? AND id IN (?` + strings.Repeat(", ?", len(ids)-1) + `)`
    res, err := tx.ExecContext(ctx, q, args...)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}
