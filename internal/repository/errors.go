// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow the service layer to
// distinguish between different failure scenarios without inspecting
// driver errors. For example, ErrNotFound indicates that a row keyed by
// the given identifier does not exist, while ErrConflict signals that a
// write collided with a unique key (e.g. a second showtime for the same
// movie, date and time).
package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a row addressed by its key does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert or update violates a unique
// key.  The service layer translates it into its own conflict error.
var ErrConflict = errors.New("conflict")

// MySQL server error numbers the repositories react to.
const (
    errDuplicateEntry  = 1062
    errNoReferencedRow = 1452
    errDeadlock        = 1213
)

func mysqlErrNumber(err error) uint16 {
    var me *mysql.MySQLError
    if errors.As(err, &me) {
        return me.Number
    }
    return 0
}

// isDuplicate reports whether err is a unique key violation.
func isDuplicate(err error) bool { return mysqlErrNumber(err) == errDuplicateEntry }

// isDeadlock reports whether InnoDB chose this transaction as a deadlock
// victim.  The transaction has already been rolled back by the server.
func isDeadlock(err error) bool { return mysqlErrNumber(err) == errDeadlock }

// isMissingParent reports whether err is a foreign key violation on insert.
func isMissingParent(err error) bool { return mysqlErrNumber(err) == errNoReferencedRow }

// querier is satisfied by both *sql.DB and *sql.Tx so read helpers can run
// inside or outside a transaction.
type querier interface {
    ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
    QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
    QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// noRows maps sql.ErrNoRows to ErrNotFound and leaves other errors alone.
func noRows(err error) error {
    if errors.Is(err, sql.ErrNoRows) {
        return ErrNotFound
    }
    return err
}

// affectedOne returns ErrNotFound when an UPDATE or DELETE matched no row.
func affectedOne(res sql.Result) error {
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrNotFound
    }
    return nil
}
