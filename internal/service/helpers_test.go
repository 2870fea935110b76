package service

import (
    "context"
    "database/sql"
    "errors"
    "sync"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/movie-ticketing/internal/model"
)

var stamp = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() { db.Close() })
    return db, mock
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
    t.Helper()
    assert.NoError(t, mock.ExpectationsWereMet())
}

// recordingNotifier captures confirmations and can be told to fail.
type recordingNotifier struct {
    mu   sync.Mutex
    sent []model.ReservationConfirmation
    err  error
}

func (n *recordingNotifier) ReservationCreated(_ context.Context, c model.ReservationConfirmation) error {
    n.mu.Lock()
    defer n.mu.Unlock()
    n.sent = append(n.sent, c)
    return n.err
}

func (n *recordingNotifier) confirmations() []model.ReservationConfirmation {
    n.mu.Lock()
    defer n.mu.Unlock()
    return append([]model.ReservationConfirmation(nil), n.sent...)
}

var errBroker = errors.New("broker unreachable")

func showtimeRows(id uint64, date string, capacity uint32) *sqlmock.Rows {
    d, _ := time.Parse(model.DateLayout, date)
    return sqlmock.NewRows([]string{"id", "movie_id", "show_date", "show_time", "capacity", "created_at", "updated_at"}).
        AddRow(id, 1, d, "19:30", capacity, stamp, stamp)
}

func sumRows(n int) *sqlmock.Rows {
    return sqlmock.NewRows([]string{"sum"}).AddRow(n)
}

func reservationRows(id, userID, showtimeID uint64, tickets uint32, status model.ReservationStatus) *sqlmock.Rows {
    return sqlmock.NewRows([]string{"id", "user_id", "showtime_id", "ticket_count", "total_price_cents", "status", "created_at", "updated_at"}).
        AddRow(id, userID, showtimeID, tickets, int64(tickets)*model.DefaultTicketPriceCents, string(status), stamp, stamp)
}

func movieRows(id uint64, title string) *sqlmock.Rows {
    return sqlmock.NewRows([]string{"id", "title", "description", "genre", "director", "cast_list", "duration", "poster_url", "created_at", "updated_at"}).
        AddRow(id, title, "", "", "", `[]`, "", nil, stamp, stamp)
}

func existsRows() *sqlmock.Rows { return sqlmock.NewRows([]string{"1"}).AddRow(1) }

func noRows() *sqlmock.Rows { return sqlmock.NewRows([]string{"1"}) }
