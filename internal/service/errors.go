// Package service holds the core operations of the ticketing backend:
// seat accounting, the reservation lifecycle, rating upserts and the
// dashboard counters.  Operations take a resolved caller or identity and
// return plain model values; every failure a caller can act on wraps one
// of the sentinel errors below.
package service

import (
    "errors"
    "fmt"

    "github.com/iliyamo/movie-ticketing/internal/repository"
)

var (
    // ErrValidation marks malformed or out-of-range input.
    ErrValidation = errors.New("validation failed")
    // ErrNotFound marks a referenced entity that does not exist.
    ErrNotFound = errors.New("not found")
    // ErrForbidden marks a caller without rights on the resource.
    ErrForbidden = errors.New("forbidden")
    // ErrCapacity marks a reservation that would overcommit a showtime.
    // The caller may retry after re-reading availability.
    ErrCapacity = errors.New("not enough seats available")
    // ErrState marks an illegal lifecycle transition.
    ErrState = errors.New("invalid state transition")
    // ErrConflict marks a write that collides with a uniqueness rule.
    ErrConflict = errors.New("conflict")
)

func validationf(format string, args ...any) error {
    return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// notFound translates repository.ErrNotFound into ErrNotFound naming the
// missing entity.  Other errors pass through unchanged.
func notFound(err error, what string, id uint64) error {
    if errors.Is(err, repository.ErrNotFound) {
        return fmt.Errorf("%w: %s %d", ErrNotFound, what, id)
    }
    return err
}
