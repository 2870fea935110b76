package service

import (
    "context"

    "github.com/iliyamo/movie-ticketing/internal/model"
)

// IdentityResolver maps a caller-supplied handle (numeric id or
// username) to a caller.  It returns an error wrapping
// repository.ErrNotFound for unknown handles.
type IdentityResolver interface {
    Resolve(ctx context.Context, handle string) (model.Caller, error)
}

// Notifier delivers a confirmation for a freshly created reservation.
// It is called after commit; its errors are logged and never reach the
// caller of Create.
type Notifier interface {
    ReservationCreated(ctx context.Context, c model.ReservationConfirmation) error
}
