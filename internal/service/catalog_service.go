package service

import (
    "context"
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/iliyamo/movie-ticketing/internal/model"
    "github.com/iliyamo/movie-ticketing/internal/repository"
)

// MovieInput carries the fields of a new movie.
type MovieInput struct {
    Title       string
    Description string
    Genre       string
    Director    string
    Cast        []string
    Duration    string
    PosterURL   *string
}

// MoviePatch carries a partial update; nil fields are left unchanged.
type MoviePatch struct {
    Title       *string
    Description *string
    Genre       *string
    Director    *string
    Cast        *[]string
    Duration    *string
    PosterURL   *string
}

// ShowtimeInput carries the fields of a new showtime.  A nil Capacity
// means the default of 60 seats.
type ShowtimeInput struct {
    MovieID  uint64
    Date     string // YYYY-MM-DD
    Time     string // HH:MM
    Capacity *int
}

// CatalogService manages movies and showtimes.
type CatalogService struct {
    movies    *repository.MovieRepo
    showtimes *repository.ShowtimeRepo
}

func NewCatalogService(movies *repository.MovieRepo, showtimes *repository.ShowtimeRepo) *CatalogService {
    return &CatalogService{movies: movies, showtimes: showtimes}
}

// CreateMovie validates and stores a new movie.
func (s *CatalogService) CreateMovie(ctx context.Context, in MovieInput) (*model.Movie, error) {
    m := &model.Movie{
        Title:       strings.TrimSpace(in.Title),
        Description: strings.TrimSpace(in.Description),
        Genre:       strings.TrimSpace(in.Genre),
        Director:    strings.TrimSpace(in.Director),
        Cast:        cleanCast(in.Cast),
        Duration:    strings.TrimSpace(in.Duration),
        PosterURL:   trimOptional(in.PosterURL),
    }
    if m.Title == "" {
        return nil, validationf("title is required")
    }
    if err := s.movies.Create(ctx, m); err != nil {
        return nil, err
    }
    return m, nil
}

// UpdateMovie applies a partial update.
func (s *CatalogService) UpdateMovie(ctx context.Context, id uint64, p MoviePatch) (*model.Movie, error) {
    m, err := s.movies.GetByID(ctx, id)
    if err != nil {
        return nil, notFound(err, "movie", id)
    }
    if p.Title != nil {
        m.Title = strings.TrimSpace(*p.Title)
        if m.Title == "" {
            return nil, validationf("title cannot be empty")
        }
    }
    if p.Description != nil {
        m.Description = strings.TrimSpace(*p.Description)
    }
    if p.Genre != nil {
        m.Genre = strings.TrimSpace(*p.Genre)
    }
    if p.Director != nil {
        m.Director = strings.TrimSpace(*p.Director)
    }
    if p.Cast != nil {
        m.Cast = cleanCast(*p.Cast)
    }
    if p.Duration != nil {
        m.Duration = strings.TrimSpace(*p.Duration)
    }
    if p.PosterURL != nil {
        m.PosterURL = trimOptional(p.PosterURL)
    }
    if err := s.movies.Update(ctx, m); err != nil {
        return nil, notFound(err, "movie", id)
    }
    return s.movies.GetByID(ctx, id)
}

// GetMovie returns the movie with its rating aggregate and its
// showtimes with current availability.
func (s *CatalogService) GetMovie(ctx context.Context, id uint64) (*model.MovieDetail, error) {
    sum, err := s.movies.Summary(ctx, id)
    if err != nil {
        return nil, notFound(err, "movie", id)
    }
    shows, err := s.showtimes.List(ctx, repository.ShowtimeFilter{MovieID: &id})
    if err != nil {
        return nil, err
    }
    return &model.MovieDetail{MovieSummary: *sum, Showtimes: shows}, nil
}

// ListMovies returns every movie with its rating aggregate.
func (s *CatalogService) ListMovies(ctx context.Context) ([]model.MovieSummary, error) {
    return s.movies.List(ctx)
}

// DeleteMovie removes the movie with its showtimes, their reservations
// and its ratings.
func (s *CatalogService) DeleteMovie(ctx context.Context, id uint64) error {
    return notFound(s.movies.Delete(ctx, id), "movie", id)
}

// CreateShowtime schedules a screening.  The (movie, date, time) triple
// must be unused.
func (s *CatalogService) CreateShowtime(ctx context.Context, in ShowtimeInput) (*model.Showtime, error) {
    date, err := parseDate(in.Date)
    if err != nil {
        return nil, err
    }
    clock, err := time.Parse(model.TimeLayout, strings.TrimSpace(in.Time))
    if err != nil {
        return nil, validationf("time must be HH:MM, got %q", in.Time)
    }
    capacity := model.DefaultShowtimeCapacity
    if in.Capacity != nil {
        if *in.Capacity <= 0 {
            return nil, validationf("capacity must be positive, got %d", *in.Capacity)
        }
        capacity = uint32(*in.Capacity)
    }
    ok, err := s.movies.Exists(ctx, in.MovieID)
    if err != nil {
        return nil, err
    }
    if !ok {
        return nil, fmt.Errorf("%w: movie %d", ErrNotFound, in.MovieID)
    }
    show := &model.Showtime{MovieID: in.MovieID, Date: date, Time: clock.Format(model.TimeLayout), Capacity: capacity}
    if err := s.showtimes.Create(ctx, show); err != nil {
        switch {
        case errors.Is(err, repository.ErrConflict):
            return nil, fmt.Errorf("%w: movie %d already has a showtime on %s at %s", ErrConflict, in.MovieID, show.DateString(), show.Time)
        case errors.Is(err, repository.ErrNotFound):
            return nil, fmt.Errorf("%w: movie %d", ErrNotFound, in.MovieID)
        }
        return nil, err
    }
    return show, nil
}

// ListShowtimes returns showtimes with availability, optionally filtered
// by date (YYYY-MM-DD) and movie.
func (s *CatalogService) ListShowtimes(ctx context.Context, date *string, movieID *uint64) ([]model.ShowtimeAvailability, error) {
    var f repository.ShowtimeFilter
    if date != nil && strings.TrimSpace(*date) != "" {
        d, err := parseDate(*date)
        if err != nil {
            return nil, err
        }
        ds := d.Format(model.DateLayout)
        f.Date = &ds
    }
    f.MovieID = movieID
    return s.showtimes.List(ctx, f)
}

// DeleteShowtime removes a showtime and its reservations.
func (s *CatalogService) DeleteShowtime(ctx context.Context, id uint64) error {
    return notFound(s.showtimes.Delete(ctx, id), "showtime", id)
}

func parseDate(v string) (time.Time, error) {
    d, err := time.Parse(model.DateLayout, strings.TrimSpace(v))
    if err != nil {
        return time.Time{}, validationf("date must be YYYY-MM-DD, got %q", v)
    }
    return d, nil
}

// cleanCast trims every name and drops blanks, keeping billing order.
func cleanCast(in []string) []string {
    out := make([]string, 0, len(in))
    for _, name := range in {
        if name = strings.TrimSpace(name); name != "" {
            out = append(out, name)
        }
    }
    return out
}
