package service

import (
    "context"
    "database/sql"
    "fmt"
    "math"
    "sync"
    "time"

    "go.uber.org/zap"

    "github.com/iliyamo/movie-ticketing/internal/model"
    "github.com/iliyamo/movie-ticketing/internal/repository"
)

// DefaultNotifyTimeout bounds one confirmation dispatch.
const DefaultNotifyTimeout = 5 * time.Second

// ReservationOptions tunes a ReservationService.  Zero values fall back
// to the defaults.
type ReservationOptions struct {
    UnitPriceCents int64
    NotifyTimeout  time.Duration
}

// ReservationService creates, cancels and lists reservations.  It keeps
// the invariant that the ticket counts of a showtime's non-cancelled
// reservations never exceed its capacity.
type ReservationService struct {
    db           *sql.DB
    ledger       *SeatLedger
    reservations *repository.ReservationRepo
    movies       *repository.MovieRepo
    notifier     Notifier
    clock        Clock
    log          *zap.Logger

    unitPrice     int64
    notifyTimeout time.Duration
    inflight      sync.WaitGroup
}

// NewReservationService wires the engine.  notifier may be nil, in which
// case no confirmations are sent.
func NewReservationService(
    db *sql.DB,
    ledger *SeatLedger,
    reservations *repository.ReservationRepo,
    movies *repository.MovieRepo,
    notifier Notifier,
    clock Clock,
    log *zap.Logger,
    opts ReservationOptions,
) *ReservationService {
    if opts.UnitPriceCents <= 0 {
        opts.UnitPriceCents = model.DefaultTicketPriceCents
    }
    if opts.NotifyTimeout <= 0 {
        opts.NotifyTimeout = DefaultNotifyTimeout
    }
    if log == nil {
        log = zap.NewNop()
    }
    return &ReservationService{
        db:            db,
        ledger:        ledger,
        reservations:  reservations,
        movies:        movies,
        notifier:      notifier,
        clock:         clock,
        log:           log.Named("reservations"),
        unitPrice:     opts.UnitPriceCents,
        notifyTimeout: opts.NotifyTimeout,
    }
}

// Create reserves ticketCount seats of the showtime for the caller.  The
// capacity check and the insert share one transaction that holds the
// showtime's row lock, so concurrent creations cannot jointly overcommit.
// A confirmation is dispatched after commit.
func (s *ReservationService) Create(ctx context.Context, showtimeID uint64, ticketCount int, caller model.Caller) (*model.Reservation, error) {
    if ticketCount < 1 {
        return nil, validationf("ticket count must be at least 1, got %d", ticketCount)
    }
    if int64(ticketCount) > math.MaxUint32 {
        return nil, validationf("ticket count %d is out of range", ticketCount)
    }
    if caller.ID == 0 {
        return nil, validationf("reservations require a known user")
    }

    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, fmt.Errorf("begin reservation: %w", err)
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    show, available, err := s.ledger.lockForReservation(ctx, tx, showtimeID)
    if err != nil {
        return nil, err
    }
    if available < uint32(ticketCount) {
        return nil, fmt.Errorf("%w: requested %d, available %d", ErrCapacity, ticketCount, available)
    }
    res := &model.Reservation{
        UserID:          caller.ID,
        ShowtimeID:      showtimeID,
        TicketCount:     uint32(ticketCount),
        TotalPriceCents: int64(ticketCount) * s.unitPrice,
        Status:          model.StatusUpcoming,
    }
    if err := s.reservations.CreateTx(ctx, tx, res); err != nil {
        return nil, notFound(err, "showtime", showtimeID)
    }
    if err := tx.Commit(); err != nil {
        return nil, fmt.Errorf("commit reservation: %w", err)
    }
    committed = true

    s.log.Info("reservation created",
        zap.Uint64("reservation_id", res.ID),
        zap.Uint64("showtime_id", showtimeID),
        zap.Uint64("user_id", caller.ID),
        zap.Uint32("tickets", res.TicketCount),
    )
    s.notifyCreated(*res, *show, caller)
    return res, nil
}

// notifyCreated sends the confirmation on its own goroutine with its own
// deadline.  Failures are logged and dropped.
func (s *ReservationService) notifyCreated(res model.Reservation, show model.Showtime, caller model.Caller) {
    if s.notifier == nil {
        return
    }
    s.inflight.Add(1)
    go func() {
        defer s.inflight.Done()
        defer func() {
            if r := recover(); r != nil {
                s.log.Error("reservation notification panicked", zap.Uint64("reservation_id", res.ID), zap.Any("panic", r))
            }
        }()
        ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
        defer cancel()

        conf := model.ReservationConfirmation{
            ReservationID:   res.ID,
            UserID:          caller.ID,
            Username:        caller.Username,
            ShowtimeID:      show.ID,
            ShowDate:        show.DateString(),
            ShowTime:        show.Time,
            TicketCount:     res.TicketCount,
            TotalPriceCents: res.TotalPriceCents,
            CreatedAt:       res.CreatedAt,
        }
        if m, err := s.movies.GetByID(ctx, show.MovieID); err == nil {
            conf.MovieTitle = m.Title
        } else {
            s.log.Warn("confirmation without movie title", zap.Uint64("movie_id", show.MovieID), zap.Error(err))
        }
        if err := s.notifier.ReservationCreated(ctx, conf); err != nil {
            s.log.Warn("reservation notification failed", zap.Uint64("reservation_id", res.ID), zap.Error(err))
        }
    }()
}

// Wait blocks until every in-flight confirmation has finished.
func (s *ReservationService) Wait() { s.inflight.Wait() }

// Cancel moves an upcoming reservation to cancelled.  Only the owner or
// an administrator may cancel, and a second cancel fails with ErrState.
func (s *ReservationService) Cancel(ctx context.Context, reservationID uint64, caller model.Caller) (*model.Reservation, error) {
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, fmt.Errorf("begin cancel: %w", err)
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    res, err := s.reservations.GetForUpdateTx(ctx, tx, reservationID)
    if err != nil {
        return nil, notFound(err, "reservation", reservationID)
    }
    if !caller.CanActFor(res.UserID) {
        return nil, fmt.Errorf("%w: reservation %d belongs to another user", ErrForbidden, reservationID)
    }
    if !res.Status.CanTransitionTo(model.StatusCancelled) {
        return nil, fmt.Errorf("%w: reservation %d is %s", ErrState, reservationID, res.Status)
    }
    if err := s.reservations.UpdateStatusTx(ctx, tx, reservationID, model.StatusCancelled); err != nil {
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, fmt.Errorf("commit cancel: %w", err)
    }
    committed = true
    res.Status = model.StatusCancelled

    s.log.Info("reservation cancelled",
        zap.Uint64("reservation_id", reservationID),
        zap.Uint64("by_user_id", caller.ID),
        zap.Bool("by_admin", caller.ID != res.UserID),
    )
    return res, nil
}

// ListForUser returns all of the caller's reservations ordered by
// creation.  Before returning, upcoming reservations whose showtime date
// has passed are completed and the change is persisted in the same
// transaction as the read.
func (s *ReservationService) ListForUser(ctx context.Context, caller model.Caller) ([]model.ReservationDetail, error) {
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, fmt.Errorf("begin list: %w", err)
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    rows, err := s.reservations.ListByUserForUpdateTx(ctx, tx, caller.ID)
    if err != nil {
        return nil, err
    }
    swept, completed := Sweep(s.clock.Now(), rows)
    if len(completed) > 0 {
        if _, err := s.reservations.MarkCompletedTx(ctx, tx, completed); err != nil {
            return nil, err
        }
    }
    if err := tx.Commit(); err != nil {
        return nil, fmt.Errorf("commit list: %w", err)
    }
    committed = true

    if len(completed) > 0 {
        s.log.Debug("reservations completed", zap.Uint64("user_id", caller.ID), zap.Int("count", len(completed)))
    }
    return swept, nil
}

// Get returns one reservation with its showtime and movie.  Only the
// owner or an administrator may read it.
func (s *ReservationService) Get(ctx context.Context, reservationID uint64, caller model.Caller) (*model.ReservationDetail, error) {
    d, err := s.reservations.GetDetail(ctx, reservationID)
    if err != nil {
        return nil, notFound(err, "reservation", reservationID)
    }
    if !caller.CanActFor(d.UserID) {
        return nil, fmt.Errorf("%w: reservation %d belongs to another user", ErrForbidden, reservationID)
    }
    return d, nil
}
