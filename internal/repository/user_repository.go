package repository

import (
    "context"
    "database/sql"
    "strconv"
    "strings"

    "github.com/iliyamo/movie-ticketing/internal/model"
)

// UserRepo reads user accounts and flips the administrator flag.  Account
// creation and credentials are managed elsewhere.
type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, username, email, is_admin, created_at, updated_at`

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
    return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id)
}

// GetByUsername fetches a user by exact username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
    return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = ? LIMIT 1`, strings.TrimSpace(username))
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (model.User, error) {
    var u model.User
    err := r.db.QueryRowContext(ctx, q, arg).Scan(&u.ID, &u.Username, &u.Email, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
    if err != nil {
        return model.User{}, noRows(err)
    }
    return u, nil
}

// Resolve maps a caller handle to a user.  A handle that parses as a
// positive integer is looked up by id, anything else by username.
func (r *UserRepo) Resolve(ctx context.Context, handle string) (model.Caller, error) {
    handle = strings.TrimSpace(handle)
    if handle == "" {
        return model.Caller{}, ErrNotFound
    }
    var (
        u   model.User
        err error
    )
    if id, perr := strconv.ParseUint(handle, 10, 64); perr == nil && id > 0 {
        u, err = r.GetByID(ctx, id)
    } else {
        u, err = r.GetByUsername(ctx, handle)
    }
    if err != nil {
        return model.Caller{}, err
    }
    return u.Caller(), nil
}

// SetAdmin sets the administrator flag of the user.
func (r *UserRepo) SetAdmin(ctx context.Context, id uint64, admin bool) error {
    res, err := r.db.ExecContext(ctx, `UPDATE users SET is_admin = ? WHERE id = ?`, admin, id)
    if err != nil {
        return err
    }
    return affectedOne(res)
}
