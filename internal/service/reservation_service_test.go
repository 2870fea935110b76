package service

import (
    "context"
    "math"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
    "go.uber.org/zap/zaptest/observer"

    "github.com/iliyamo/movie-ticketing/internal/model"
    "github.com/iliyamo/movie-ticketing/internal/repository"
)

const (
    lockShowtime   = `FROM showtimes WHERE id = \? FOR UPDATE`
    sumReserved    = `SUM\(ticket_count\), 0\) FROM reservations WHERE showtime_id = \? AND status <> 'cancelled'`
    insertRes      = `INSERT INTO reservations`
    selectRes      = `FROM reservations WHERE id = \?`
    lockRes        = `FROM reservations WHERE id = \? FOR UPDATE`
    selectMovie    = `FROM movies m WHERE m.id = \?`
    updateResState = `UPDATE reservations SET status = \? WHERE id = \?`
)

var (
    neo      = model.Caller{ID: 42, Username: "neo"}
    smith    = model.Caller{ID: 43, Username: "smith"}
    morpheus = model.Caller{ID: 1, Username: "morpheus", IsAdmin: true}
)

func newReservationService(t *testing.T, n Notifier, clock Clock, log *zap.Logger) (*ReservationService, sqlmock.Sqlmock) {
    db, mock := newMock(t)
    showtimes := repository.NewShowtimeRepo(db)
    reservations := repository.NewReservationRepo(db)
    svc := NewReservationService(db, NewSeatLedger(showtimes, reservations), reservations, repository.NewMovieRepo(db),
        n, clock, log, ReservationOptions{})
    return svc, mock
}

func expectCreate(mock sqlmock.Sqlmock, showtimeID uint64, capacity uint32, reserved int, tickets uint32, newID uint64) {
    mock.ExpectBegin()
    mock.ExpectQuery(lockShowtime).WithArgs(showtimeID).WillReturnRows(showtimeRows(showtimeID, "2025-03-12", capacity))
    mock.ExpectQuery(sumReserved).WithArgs(showtimeID).WillReturnRows(sumRows(reserved))
    mock.ExpectExec(insertRes).
        WithArgs(neo.ID, showtimeID, tickets, int64(tickets)*model.DefaultTicketPriceCents, model.StatusUpcoming).
        WillReturnResult(sqlmock.NewResult(int64(newID), 1))
    mock.ExpectQuery(selectRes).WithArgs(newID).WillReturnRows(reservationRows(newID, neo.ID, showtimeID, tickets, model.StatusUpcoming))
    mock.ExpectCommit()
}

func TestCreateFillsShowtimeThenRejectsNextRequest(t *testing.T) {
    n := &recordingNotifier{}
    svc, mock := newReservationService(t, n, FixedClock{At: stamp}, nil)
    ctx := context.Background()

    expectCreate(mock, 4, 2, 0, 2, 100)
    mock.ExpectQuery(selectMovie).WithArgs(uint64(1)).WillReturnRows(movieRows(1, "Alien"))

    res, err := svc.Create(ctx, 4, 2, neo)
    require.NoError(t, err)
    svc.Wait()
    assert.Equal(t, uint64(100), res.ID)
    assert.Equal(t, model.StatusUpcoming, res.Status)
    assert.Equal(t, int64(2400), res.TotalPriceCents)

    mock.ExpectBegin()
    mock.ExpectQuery(lockShowtime).WithArgs(uint64(4)).WillReturnRows(showtimeRows(4, "2025-03-12", 2))
    mock.ExpectQuery(sumReserved).WithArgs(uint64(4)).WillReturnRows(sumRows(2))
    mock.ExpectRollback()

    _, err = svc.Create(ctx, 4, 1, smith)
    assert.ErrorIs(t, err, ErrCapacity)
    expectationsMet(t, mock)

    sent := n.confirmations()
    require.Len(t, sent, 1)
    assert.Equal(t, "Alien", sent[0].MovieTitle)
    assert.Equal(t, uint64(100), sent[0].ReservationID)
    assert.Equal(t, "2025-03-12", sent[0].ShowDate)
    assert.Equal(t, "19:30", sent[0].ShowTime)
    assert.Equal(t, "neo", sent[0].Username)
}

func TestCreateUsesConfiguredUnitPrice(t *testing.T) {
    db, mock := newMock(t)
    showtimes := repository.NewShowtimeRepo(db)
    reservations := repository.NewReservationRepo(db)
    svc := NewReservationService(db, NewSeatLedger(showtimes, reservations), reservations, repository.NewMovieRepo(db),
        nil, FixedClock{At: stamp}, nil, ReservationOptions{UnitPriceCents: 950})

    mock.ExpectBegin()
    mock.ExpectQuery(lockShowtime).WithArgs(uint64(4)).WillReturnRows(showtimeRows(4, "2025-03-12", 60))
    mock.ExpectQuery(sumReserved).WithArgs(uint64(4)).WillReturnRows(sumRows(0))
    mock.ExpectExec(insertRes).WithArgs(neo.ID, uint64(4), uint32(3), int64(2850), model.StatusUpcoming).
        WillReturnResult(sqlmock.NewResult(5, 1))
    mock.ExpectQuery(selectRes).WithArgs(uint64(5)).WillReturnRows(reservationRows(5, neo.ID, 4, 3, model.StatusUpcoming))
    mock.ExpectCommit()

    _, err := svc.Create(context.Background(), 4, 3, neo)
    require.NoError(t, err)
    svc.Wait()
    expectationsMet(t, mock)
}

func TestCreateValidatesBeforeTouchingStore(t *testing.T) {
    svc, mock := newReservationService(t, nil, FixedClock{At: stamp}, nil)

    for _, n := range []int{0, -3} {
        _, err := svc.Create(context.Background(), 4, n, neo)
        assert.ErrorIs(t, err, ErrValidation)
    }
    _, err := svc.Create(context.Background(), 4, 1, model.Caller{})
    assert.ErrorIs(t, err, ErrValidation)
    expectationsMet(t, mock)
}

func TestCreateRejectsTicketCountBeyondSeatCounter(t *testing.T) {
    svc, mock := newReservationService(t, nil, FixedClock{At: stamp}, nil)

    // 2^32+1 would wrap to a single seat while being priced in full.
    _, err := svc.Create(context.Background(), 4, int(int64(math.MaxUint32)+2), neo)
    assert.ErrorIs(t, err, ErrValidation)
    expectationsMet(t, mock)
}

func TestCreateUnknownShowtime(t *testing.T) {
    svc, mock := newReservationService(t, nil, FixedClock{At: stamp}, nil)
    mock.ExpectBegin()
    mock.ExpectQuery(lockShowtime).WithArgs(uint64(99)).WillReturnRows(sqlmock.NewRows([]string{"id"}))
    mock.ExpectRollback()

    _, err := svc.Create(context.Background(), 99, 1, neo)
    assert.ErrorIs(t, err, ErrNotFound)
    expectationsMet(t, mock)
}

func TestCreateSwallowsNotificationFailure(t *testing.T) {
    core, logs := observer.New(zapcore.WarnLevel)
    n := &recordingNotifier{err: errBroker}
    svc, mock := newReservationService(t, n, FixedClock{At: stamp}, zap.New(core))

    expectCreate(mock, 4, 10, 3, 1, 7)
    mock.ExpectQuery(selectMovie).WithArgs(uint64(1)).WillReturnRows(movieRows(1, "Alien"))

    res, err := svc.Create(context.Background(), 4, 1, neo)
    require.NoError(t, err)
    svc.Wait()
    assert.Equal(t, uint64(7), res.ID)
    assert.Len(t, n.confirmations(), 1)
    assert.Equal(t, 1, logs.FilterMessage("reservation notification failed").Len())
    expectationsMet(t, mock)
}

func TestCancelLifecycle(t *testing.T) {
    svc, mock := newReservationService(t, nil, FixedClock{At: stamp}, nil)
    ctx := context.Background()

    mock.ExpectBegin()
    mock.ExpectQuery(lockRes).WithArgs(uint64(9)).WillReturnRows(reservationRows(9, neo.ID, 4, 2, model.StatusUpcoming))
    mock.ExpectExec(updateResState).WithArgs(model.StatusCancelled, uint64(9)).WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectCommit()

    res, err := svc.Cancel(ctx, 9, neo)
    require.NoError(t, err)
    assert.Equal(t, model.StatusCancelled, res.Status)

    mock.ExpectBegin()
    mock.ExpectQuery(lockRes).WithArgs(uint64(9)).WillReturnRows(reservationRows(9, neo.ID, 4, 2, model.StatusCancelled))
    mock.ExpectRollback()

    _, err = svc.Cancel(ctx, 9, neo)
    assert.ErrorIs(t, err, ErrState)
    expectationsMet(t, mock)
}

func TestCancelAuthorization(t *testing.T) {
    svc, mock := newReservationService(t, nil, FixedClock{At: stamp}, nil)
    ctx := context.Background()

    mock.ExpectBegin()
    mock.ExpectQuery(lockRes).WithArgs(uint64(9)).WillReturnRows(reservationRows(9, neo.ID, 4, 2, model.StatusUpcoming))
    mock.ExpectRollback()
    _, err := svc.Cancel(ctx, 9, smith)
    assert.ErrorIs(t, err, ErrForbidden)

    mock.ExpectBegin()
    mock.ExpectQuery(lockRes).WithArgs(uint64(9)).WillReturnRows(reservationRows(9, neo.ID, 4, 2, model.StatusUpcoming))
    mock.ExpectExec(updateResState).WithArgs(model.StatusCancelled, uint64(9)).WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectCommit()
    res, err := svc.Cancel(ctx, 9, morpheus)
    require.NoError(t, err)
    assert.Equal(t, model.StatusCancelled, res.Status)

    mock.ExpectBegin()
    mock.ExpectQuery(lockRes).WithArgs(uint64(10)).WillReturnRows(sqlmock.NewRows([]string{"id"}))
    mock.ExpectRollback()
    _, err = svc.Cancel(ctx, 10, neo)
    assert.ErrorIs(t, err, ErrNotFound)
    expectationsMet(t, mock)
}

func detailRows() *sqlmock.Rows {
    return sqlmock.NewRows([]string{"id", "user_id", "showtime_id", "ticket_count", "total", "status", "created_at", "updated_at",
        "movie_id", "title", "poster", "date", "time"})
}

func TestListForUserCompletesPastShowtimes(t *testing.T) {
    now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
    svc, mock := newReservationService(t, nil, FixedClock{At: now}, nil)

    rows := detailRows().
        AddRow(1, neo.ID, 3, 2, 2400, "upcoming", stamp, stamp, 1, "Alien", nil, "2025-03-09", "19:30").
        AddRow(2, neo.ID, 4, 1, 1200, "upcoming", stamp, stamp, 1, "Alien", nil, "2025-03-10", "22:00").
        AddRow(3, neo.ID, 2, 1, 1200, "cancelled", stamp, stamp, 2, "Up", nil, "2025-03-01", "18:00")
    mock.ExpectBegin()
    mock.ExpectQuery(`WHERE r.user_id = \? ORDER BY r.id ASC FOR UPDATE OF r`).WithArgs(neo.ID).WillReturnRows(rows)
    mock.ExpectExec(`UPDATE reservations SET status = \? WHERE status = \? AND id IN \(\?\)`).
        WithArgs(model.StatusCompleted, model.StatusUpcoming, uint64(1)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectCommit()

    list, err := svc.ListForUser(context.Background(), neo)
    require.NoError(t, err)
    require.Len(t, list, 3)
    assert.Equal(t, model.StatusCompleted, list[0].Status)
    assert.Equal(t, model.StatusUpcoming, list[1].Status)
    assert.Equal(t, model.StatusCancelled, list[2].Status)
    expectationsMet(t, mock)
}

func TestListForUserWithoutChangesSkipsUpdate(t *testing.T) {
    svc, mock := newReservationService(t, nil, FixedClock{At: stamp}, nil)
    mock.ExpectBegin()
    mock.ExpectQuery(`FOR UPDATE OF r`).WithArgs(neo.ID).WillReturnRows(detailRows())
    mock.ExpectCommit()

    list, err := svc.ListForUser(context.Background(), neo)
    require.NoError(t, err)
    assert.Empty(t, list)
    expectationsMet(t, mock)
}

func TestGetReservationOwnerOrAdmin(t *testing.T) {
    svc, mock := newReservationService(t, nil, FixedClock{At: stamp}, nil)
    row := func() *sqlmock.Rows {
        return detailRows().AddRow(9, neo.ID, 4, 2, 2400, "upcoming", stamp, stamp, 1, "Alien", "alien.jpg", "2025-03-12", "19:30")
    }
    mock.ExpectQuery(`WHERE r.id = \?`).WithArgs(uint64(9)).WillReturnRows(row())
    mock.ExpectQuery(`WHERE r.id = \?`).WithArgs(uint64(9)).WillReturnRows(row())
    mock.ExpectQuery(`WHERE r.id = \?`).WithArgs(uint64(9)).WillReturnRows(row())

    d, err := svc.Get(context.Background(), 9, neo)
    require.NoError(t, err)
    assert.Equal(t, "Alien", d.MovieTitle)
    _, err = svc.Get(context.Background(), 9, morpheus)
    assert.NoError(t, err)
    _, err = svc.Get(context.Background(), 9, smith)
    assert.ErrorIs(t, err, ErrForbidden)
    expectationsMet(t, mock)
}

func TestSeatLedger(t *testing.T) {
    db, mock := newMock(t)
    ledger := NewSeatLedger(repository.NewShowtimeRepo(db), repository.NewReservationRepo(db))

    mock.ExpectQuery(`FROM showtimes WHERE id = \?`).WithArgs(uint64(4)).WillReturnRows(showtimeRows(4, "2025-03-12", 2))
    mock.ExpectQuery(sumReserved).WithArgs(uint64(4)).WillReturnRows(sumRows(3))
    mock.ExpectQuery(`FROM showtimes WHERE id = \?`).WithArgs(uint64(4)).WillReturnRows(showtimeRows(4, "2025-03-12", 2))
    mock.ExpectQuery(sumReserved).WithArgs(uint64(4)).WillReturnRows(sumRows(3))
    mock.ExpectQuery(`FROM showtimes WHERE id = \?`).WithArgs(uint64(5)).WillReturnRows(sqlmock.NewRows([]string{"id"}))

    available, err := ledger.AvailableSeats(context.Background(), 4)
    require.NoError(t, err)
    assert.Zero(t, available)

    reserved, err := ledger.ReservedSeats(context.Background(), 4)
    require.NoError(t, err)
    assert.Equal(t, uint32(3), reserved)

    _, err = ledger.AvailableSeats(context.Background(), 5)
    assert.ErrorIs(t, err, ErrNotFound)
    expectationsMet(t, mock)
}
