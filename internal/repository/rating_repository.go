package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/movie-ticketing/internal/model"
)

// RatingRepo stores movie ratings.  A rating with a user is unique per
// (user, movie) through uq_ratings_user_movie; anonymous ratings carry a
// NULL user_id and are never deduplicated.
type RatingRepo struct {
    db *sql.DB
}

// NewRatingRepo constructs a RatingRepo with the given DB handle.
func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{db: db} }


// FindByUserForUpdateTx returns the user's rating of the movie and locks
// it until tx ends, or ErrNotFound.
func (r *RatingRepo) FindByUserForUpdateTx(ctx context.Context, tx *sql.Tx, movieID, userID uint64) (*model.Rating, error) {
    const q = `SELECT id, movie_id, user_id, score, comment, created_at, updated_at
               FROM ratings WHERE movie_id = ? AND user_id = ? FOR UPDATE`
    var (
        rt      model.Rating
        uid     sql.NullInt64
        comment sql.NullString
    )
    err := tx.QueryRowContext(ctx, q, movieID, userID).Scan(&rt.ID, &rt.MovieID, &uid, &rt.Score, &comment, &rt.CreatedAt, &rt.UpdatedAt)
    if err != nil {
        return nil, noRows(err)
    }
    if uid.Valid {
        v := uint64(uid.Int64)
        rt.UserID = &v
    }
    if comment.Valid {
        c := comment.String
        rt.Comment = &c
    }
    return &rt, nil
}

// Insert adds a rating outside any transaction.  It is used for anonymous
// ratings, which have no key to lock on.
func (r *RatingRepo) Insert(ctx context.Context, rt *model.Rating) error {
    return insertRating(ctx, r.db, rt)
}

// InsertTx adds a rating inside tx.  A concurrent insert for the same
// (user, movie) surfaces as ErrConflict, either as a duplicate key or as
// the deadlock two gap locks on the missing key produce.
func (r *RatingRepo) InsertTx(ctx context.Context, tx *sql.Tx, rt *model.Rating) error {
    return insertRating(ctx, tx, rt)
}

func insertRating(ctx context.Context, q querier, rt *model.Rating) error {
    const ins = `INSERT INTO ratings (movie_id, user_id, score, comment) VALUES (?, ?, ?, ?)`
    res, err := q.ExecContext(ctx, ins, rt.MovieID, rt.UserID, rt.Score, rt.Comment)
    if err != nil {
        switch {
        case isDuplicate(err), isDeadlock(err):
            // both mean another writer claimed the (user, movie) key first
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
    rt.ID = uint64(id)
    return nil
}

// UpdateTx overwrites score and comment of an existing rating.
func (r *RatingRepo) UpdateTx(ctx context.Context, tx *sql.Tx, id uint64, score uint8, comment *string) error {
    res, err := tx.ExecContext(ctx, `UPDATE ratings SET score = ?, comment = ? WHERE id = ?`, score, comment, id)
    if err != nil {
        return err
    }
    return affectedOne(res)
}

const entryQuery = `SELECT r.id, r.user_id, u.username, r.score, r.comment, r.created_at
          FROM ratings r
          LEFT JOIN users u ON u.id = r.user_id`

// ListByMovie returns the movie's ratings newest first, each with the
// rater's username or the anonymous display name.
func (r *RatingRepo) ListByMovie(ctx context.Context, movieID uint64) ([]model.RatingEntry, error) {
    rows, err := r.db.QueryContext(ctx, entryQuery+` WHERE r.movie_id = ? ORDER BY r.created_at DESC, r.id DESC`, movieID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    result := []model.RatingEntry{}
    for rows.Next() {
        e, err := scanEntry(rows)
        if err != nil {
            return nil, err
        }
        result = append(result, *e)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return result, nil
}

// GetByUser returns the user's rating of the movie or ErrNotFound.
func (r *RatingRepo) GetByUser(ctx context.Context, movieID, userID uint64) (*model.RatingEntry, error) {
    e, err := scanEntry(r.db.QueryRowContext(ctx, entryQuery+` WHERE r.movie_id = ? AND r.user_id = ?`, movieID, userID))
    if err != nil {
        return nil, noRows(err)
    }
    return e, nil
}

func scanEntry(row rowScanner) (*model.RatingEntry, error) {
    var (
        e        model.RatingEntry
        uid      sql.NullInt64
        username sql.NullString
        comment  sql.NullString
    )
    if err := row.Scan(&e.ID, &uid, &username, &e.Score, &comment, &e.CreatedAt); err != nil {
        return nil, err
    }
    e.DisplayName = model.AnonymousDisplayName
    if uid.Valid {
        v := uint64(uid.Int64)
        e.UserID = &v
    }
    if username.Valid {
        e.DisplayName = username.String
    }
    if comment.Valid {
        c := comment.String
        e.Comment = &c
    }
    return &e, nil
}
