package service

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "strings"

    "go.uber.org/zap"

    "github.com/iliyamo/movie-ticketing/internal/model"
    "github.com/iliyamo/movie-ticketing/internal/repository"
)

// RatingService keeps one rating per (user, movie) for known users and
// appends a row per submission for anonymous callers.
type RatingService struct {
    db      *sql.DB
    ratings *repository.RatingRepo
    movies  *repository.MovieRepo
    log     *zap.Logger
}

func NewRatingService(db *sql.DB, ratings *repository.RatingRepo, movies *repository.MovieRepo, log *zap.Logger) *RatingService {
    if log == nil {
        log = zap.NewNop()
    }
    return &RatingService{db: db, ratings: ratings, movies: movies, log: log.Named("ratings")}
}

// upsertAttempts bounds how often a known user's upsert runs when it
// loses the insert race for its key.  The second attempt finds the
// winner's row and updates it.
const upsertAttempts = 2

// Upsert records a score for the movie.  A known identity overwrites its
// previous rating and reports OutcomeUpdated, or inserts and reports
// OutcomeCreated.  An anonymous identity always inserts.
func (s *RatingService) Upsert(ctx context.Context, movieID uint64, who model.Identity, score int, comment *string) (*model.Rating, model.UpsertOutcome, error) {
    if score < model.MinScore || score > model.MaxScore {
        return nil, "", validationf("score must be between %d and %d, got %d", model.MinScore, model.MaxScore, score)
    }
    if err := s.requireMovie(ctx, movieID); err != nil {
        return nil, "", err
    }
    comment = trimOptional(comment)

    userID, known := who.UserID()
    if !known {
        rt := &model.Rating{MovieID: movieID, Score: uint8(score), Comment: comment}
        if err := s.ratings.Insert(ctx, rt); err != nil {
            return nil, "", notFound(err, "movie", movieID)
        }
        return rt, model.OutcomeCreated, nil
    }

    var err error
    for attempt := 1; attempt <= upsertAttempts; attempt++ {
        var (
            rt      *model.Rating
            outcome model.UpsertOutcome
        )
        rt, outcome, err = s.upsertKnown(ctx, movieID, userID, uint8(score), comment)
        if err == nil {
            return rt, outcome, nil
        }
        if !errors.Is(err, repository.ErrConflict) {
            return nil, "", err
        }
        s.log.Debug("rating insert lost race, retrying", zap.Uint64("movie_id", movieID), zap.Uint64("user_id", userID), zap.Int("attempt", attempt))
    }
    return nil, "", fmt.Errorf("%w: rating of movie %d by user %d changed concurrently", ErrConflict, movieID, userID)
}

func (s *RatingService) upsertKnown(ctx context.Context, movieID, userID uint64, score uint8, comment *string) (*model.Rating, model.UpsertOutcome, error) {
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, "", fmt.Errorf("begin rating: %w", err)
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    outcome := model.OutcomeUpdated
    rt, err := s.ratings.FindByUserForUpdateTx(ctx, tx, movieID, userID)
    switch {
    case err == nil:
        if err := s.ratings.UpdateTx(ctx, tx, rt.ID, score, comment); err != nil {
            return nil, "", err
        }
        rt.Score, rt.Comment = score, comment
    case errors.Is(err, repository.ErrNotFound):
        outcome = model.OutcomeCreated
        rt = &model.Rating{MovieID: movieID, UserID: &userID, Score: score, Comment: comment}
        if err := s.ratings.InsertTx(ctx, tx, rt); err != nil {
            return nil, "", notFound(err, "movie", movieID)
        }
    default:
        return nil, "", err
    }
    if err := tx.Commit(); err != nil {
        return nil, "", fmt.Errorf("commit rating: %w", err)
    }
    committed = true
    return rt, outcome, nil
}

// AverageAndList returns the mean score (0 without ratings) and every
// rating of the movie, newest first.
func (s *RatingService) AverageAndList(ctx context.Context, movieID uint64) (model.RatingSummary, error) {
    if err := s.requireMovie(ctx, movieID); err != nil {
        return model.RatingSummary{}, err
    }
    entries, err := s.ratings.ListByMovie(ctx, movieID)
    if err != nil {
        return model.RatingSummary{}, err
    }
    return model.RatingSummary{Average: averageScore(entries), Count: len(entries), Ratings: entries}, nil
}

// GetForUser returns the identity's rating of the movie.  Anonymous
// ratings are not addressable, so an anonymous identity always gets
// ErrNotFound.
func (s *RatingService) GetForUser(ctx context.Context, movieID uint64, who model.Identity) (*model.RatingEntry, error) {
    userID, known := who.UserID()
    if !known {
        return nil, fmt.Errorf("%w: anonymous ratings cannot be looked up", ErrNotFound)
    }
    e, err := s.ratings.GetByUser(ctx, movieID, userID)
    if errors.Is(err, repository.ErrNotFound) {
        return nil, fmt.Errorf("%w: no rating of movie %d by user %d", ErrNotFound, movieID, userID)
    }
    return e, err
}

func (s *RatingService) requireMovie(ctx context.Context, movieID uint64) error {
    ok, err := s.movies.Exists(ctx, movieID)
    if err != nil {
        return err
    }
    if !ok {
        return fmt.Errorf("%w: movie %d", ErrNotFound, movieID)
    }
    return nil
}

func averageScore(entries []model.RatingEntry) float64 {
    if len(entries) == 0 {
        return 0
    }
    var sum int
    for _, e := range entries {
        sum += int(e.Score)
    }
    return float64(sum) / float64(len(entries))
}

// trimOptional trims an optional string and drops it when blank.
func trimOptional(c *string) *string {
    if c == nil {
        return nil
    }
    t := strings.TrimSpace(*c)
    if t == "" {
        return nil
    }
    return &t
}
