package repository

import (
    "context"
    "database/sql"
    "encoding/json"
    "errors"
    "fmt"

    "github.com/iliyamo/movie-ticketing/internal/model"
)

// MovieRepo manages persistence for catalog movies.  The cast list is
// stored as a JSON array in movies.cast_list; rating aggregates are
// computed on read from the ratings table.
type MovieRepo struct {
    db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the given DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

const movieColumns = `m.id, m.title, m.description, m.genre, m.director, m.cast_list, m.duration, m.poster_url, m.created_at, m.updated_at`

// Create inserts a new movie and reloads it so that the generated ID and
// timestamps are populated on m.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
    cast, err := encodeCast(m.Cast)
    if err != nil {
        return err
    }
    const q = `INSERT INTO movies (title, description, genre, director, cast_list, duration, poster_url) VALUES (?, ?, ?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, m.Title, m.Description, m.Genre, m.Director, cast, m.Duration, m.PosterURL)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    created, err := r.GetByID(ctx, uint64(id))
    if err != nil {
        return err
    }
    *m = *created
    return nil
}

// GetByID returns the movie with the given id or ErrNotFound.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
    q := `SELECT ` + movieColumns + ` FROM movies m WHERE m.id = ?`
    m, err := scanMovie(r.db.QueryRowContext(ctx, q, id))
    if err != nil {
        return nil, noRows(err)
    }
    return m, nil
}

// Exists reports whether a movie with the given id exists.
func (r *MovieRepo) Exists(ctx context.Context, id uint64) (bool, error) {
    var one int
    err := r.db.QueryRowContext(ctx, `SELECT 1 FROM movies WHERE id = ? LIMIT 1`, id).Scan(&one)
    if errors.Is(err, sql.ErrNoRows) {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return true, nil
}

const summaryQuery = `SELECT ` + movieColumns + `, COALESCE(AVG(r.score), 0), COUNT(r.id)
               FROM movies m
               LEFT JOIN ratings r ON r.movie_id = m.id`

// List returns every movie with its average rating and rating count,
// ordered by id.  An empty catalog yields an empty slice.
func (r *MovieRepo) List(ctx context.Context) ([]model.MovieSummary, error) {
    rows, err := r.db.QueryContext(ctx, summaryQuery+` GROUP BY m.id ORDER BY m.id ASC`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    result := []model.MovieSummary{}
    for rows.Next() {
        s, err := scanSummary(rows)
        if err != nil {
            return nil, err
        }
        result = append(result, *s)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return result, nil
}

// Summary returns a single movie with its rating aggregate.
func (r *MovieRepo) Summary(ctx context.Context, id uint64) (*model.MovieSummary, error) {
    s, err := scanSummary(r.db.QueryRowContext(ctx, summaryQuery+` WHERE m.id = ? GROUP BY m.id`, id))
    if err != nil {
        return nil, noRows(err)
    }
    return s, nil
}

// Update overwrites every editable column of the movie identified by m.ID.
// Callers merge partial changes before calling.  It returns ErrNotFound
// when the movie does not exist.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
    cast, err := encodeCast(m.Cast)
    if err != nil {
        return err
    }
    const q = `UPDATE movies SET title = ?, description = ?, genre = ?, director = ?, cast_list = ?, duration = ?, poster_url = ? WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, m.Title, m.Description, m.Genre, m.Director, cast, m.Duration, m.PosterURL, m.ID)
    if err != nil {
        return err
    }
    return affectedOne(res)
}

// Delete removes the movie.  Showtimes, their reservations and the
// movie's ratings go with it through ON DELETE CASCADE.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
    res, err := r.db.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
    if err != nil {
        return err
    }
    return affectedOne(res)
}

type rowScanner interface {
    Scan(dest ...any) error
}

func scanMovie(row rowScanner) (*model.Movie, error) {
    var (
        m      model.Movie
        cast   []byte
        poster sql.NullString
    )
    if err := row.Scan(&m.ID, &m.Title, &m.Description, &m.Genre, &m.Director, &cast, &m.Duration, &poster, &m.CreatedAt, &m.UpdatedAt); err != nil {
        return nil, err
    }
    if err := decodeCast(cast, &m); err != nil {
        return nil, err
    }
    if poster.Valid {
        p := poster.String
        m.PosterURL = &p
    }
    return &m, nil
}

func scanSummary(row rowScanner) (*model.MovieSummary, error) {
    var (
        s      model.MovieSummary
        cast   []byte
        poster sql.NullString
    )
    m := &s.Movie
    if err := row.Scan(&m.ID, &m.Title, &m.Description, &m.Genre, &m.Director, &cast, &m.Duration, &poster,
        &m.CreatedAt, &m.UpdatedAt, &s.AverageRating, &s.RatingCount); err != nil {
        return nil, err
    }
    if err := decodeCast(cast, m); err != nil {
        return nil, err
    }
    if poster.Valid {
        p := poster.String
        m.PosterURL = &p
    }
    return &s, nil
}

func encodeCast(cast []string) (string, error) {
    if cast == nil {
        cast = []string{}
    }
    b, err := json.Marshal(cast)
    if err != nil {
        return "", fmt.Errorf("encode cast: %w", err)
    }
    return string(b), nil
}

func decodeCast(raw []byte, m *model.Movie) error {
    m.Cast = []string{}
    if len(raw) == 0 {
        return nil
    }
    if err := json.Unmarshal(raw, &m.Cast); err != nil {
        return fmt.Errorf("decode cast of movie %d: %w", m.ID, err)
    }
    return nil
}
