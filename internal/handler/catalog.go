package handler

import (
    "context"
    "fmt"
    "net/http"
    "strconv"
    "time"

    "github.com/jinzhu/copier"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/movie-ticketing/internal/model"
    "github.com/iliyamo/movie-ticketing/internal/service"
)

// Catalog is the part of service.CatalogService the handlers call.
type Catalog interface {
    CreateMovie(ctx context.Context, in service.MovieInput) (*model.Movie, error)
    UpdateMovie(ctx context.Context, id uint64, p service.MoviePatch) (*model.Movie, error)
    GetMovie(ctx context.Context, id uint64) (*model.MovieDetail, error)
    ListMovies(ctx context.Context) ([]model.MovieSummary, error)
    DeleteMovie(ctx context.Context, id uint64) error
    CreateShowtime(ctx context.Context, in service.ShowtimeInput) (*model.Showtime, error)
    ListShowtimes(ctx context.Context, date *string, movieID *uint64) ([]model.ShowtimeAvailability, error)
    DeleteShowtime(ctx context.Context, id uint64) error
}

// Seats reports live seat availability of a showtime.
type Seats interface {
    ReservedSeats(ctx context.Context, showtimeID uint64) (uint32, error)
    AvailableSeats(ctx context.Context, showtimeID uint64) (uint32, error)
}

type movieRequest struct {
    Title       string   `json:"title" validate:"required,max=255"`
    Description string   `json:"description"`
    Genre       string   `json:"genre" validate:"max=100"`
    Director    string   `json:"director" validate:"max=255"`
    Cast        []string `json:"cast" validate:"dive,max=255"`
    Duration    string   `json:"duration" validate:"max=50"`
    PosterURL   *string  `json:"poster_image" validate:"omitempty,max=512"`
}

type moviePatchRequest struct {
    Title       *string   `json:"title" validate:"omitempty,max=255"`
    Description *string   `json:"description"`
    Genre       *string   `json:"genre" validate:"omitempty,max=100"`
    Director    *string   `json:"director" validate:"omitempty,max=255"`
    Cast        *[]string `json:"cast" validate:"omitempty,dive,max=255"`
    Duration    *string   `json:"duration" validate:"omitempty,max=50"`
    PosterURL   *string   `json:"poster_image" validate:"omitempty,max=512"`
}

type showtimeRequest struct {
    MovieID  uint64 `json:"movie_id" validate:"required"`
    Date     string `json:"date" validate:"required"`
    Time     string `json:"time" validate:"required"`
    Capacity *int   `json:"capacity"`
}

type showtimeResponse struct {
    ID        uint64    `json:"id"`
    MovieID   uint64    `json:"movie_id"`
    Date      string    `json:"date"`
    Time      string    `json:"time"`
    Capacity  uint32    `json:"capacity"`
    CreatedAt time.Time `json:"created_at"`
}

type seatsResponse struct {
    ShowtimeID uint64 `json:"showtime_id"`
    Reserved   uint32 `json:"reserved_seats"`
    Available  uint32 `json:"available_seats"`
}

// CatalogHandler serves movies and showtimes.  Reads are public; writes
// are mounted behind RequireAdmin by the router.
type CatalogHandler struct {
    catalog Catalog
    seats   Seats
}

// NewCatalogHandler panics when a dependency is missing, since the
// server cannot serve any catalog route without them.
func NewCatalogHandler(catalog Catalog, seats Seats) *CatalogHandler {
    if catalog == nil || seats == nil {
        panic("handler: NewCatalogHandler requires a catalog and a seat ledger")
    }
    return &CatalogHandler{catalog: catalog, seats: seats}
}

// ListMovies handles GET /v1/movies.
func (h *CatalogHandler) ListMovies(c echo.Context) error {
    movies, err := h.catalog.ListMovies(c.Request().Context())
    if err != nil {
        return writeError(c, err)
    }
    if movies == nil {
        movies = []model.MovieSummary{}
    }
    return c.JSON(http.StatusOK, movies)
}

// GetMovie handles GET /v1/movies/:id.
func (h *CatalogHandler) GetMovie(c echo.Context) error {
    id, ok := paramID(c, "id")
    if !ok {
        return badID(c, "movie")
    }
    m, err := h.catalog.GetMovie(c.Request().Context(), id)
    if err != nil {
        return writeError(c, err)
    }
    if m.Showtimes == nil {
        m.Showtimes = []model.ShowtimeAvailability{}
    }
    return c.JSON(http.StatusOK, m)
}

// CreateMovie handles POST /v1/admin/movies.
func (h *CatalogHandler) CreateMovie(c echo.Context) error {
    var req movieRequest
    if err := bind(c, &req); err != nil {
        return writeError(c, err)
    }
    var in service.MovieInput
    if err := copier.Copy(&in, &req); err != nil {
        return writeError(c, err)
    }
    m, err := h.catalog.CreateMovie(c.Request().Context(), in)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, m)
}

// UpdateMovie handles PATCH /v1/admin/movies/:id.
func (h *CatalogHandler) UpdateMovie(c echo.Context) error {
    id, ok := paramID(c, "id")
    if !ok {
        return badID(c, "movie")
    }
    var req moviePatchRequest
    if err := bind(c, &req); err != nil {
        return writeError(c, err)
    }
    var p service.MoviePatch
    if err := copier.Copy(&p, &req); err != nil {
        return writeError(c, err)
    }
    m, err := h.catalog.UpdateMovie(c.Request().Context(), id, p)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, m)
}

// DeleteMovie handles DELETE /v1/admin/movies/:id.
func (h *CatalogHandler) DeleteMovie(c echo.Context) error {
    id, ok := paramID(c, "id")
    if !ok {
        return badID(c, "movie")
    }
    if err := h.catalog.DeleteMovie(c.Request().Context(), id); err != nil {
        return writeError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// ListShowtimes handles GET /v1/showtimes?date=YYYY-MM-DD&movie_id=N.
func (h *CatalogHandler) ListShowtimes(c echo.Context) error {
    var date *string
    if v := c.QueryParam("date"); v != "" {
        date = &v
    }
    var movieID *uint64
    if v := c.QueryParam("movie_id"); v != "" {
        id, err := strconv.ParseUint(v, 10, 64)
        if err != nil || id == 0 {
            return writeError(c, fmt.Errorf("%w: movie_id must be a positive integer", service.ErrValidation))
        }
        movieID = &id
    }
    shows, err := h.catalog.ListShowtimes(c.Request().Context(), date, movieID)
    if err != nil {
        return writeError(c, err)
    }
    if shows == nil {
        shows = []model.ShowtimeAvailability{}
    }
    return c.JSON(http.StatusOK, shows)
}

// ShowtimeSeats handles GET /v1/showtimes/:id/seats.
func (h *CatalogHandler) ShowtimeSeats(c echo.Context) error {
    id, ok := paramID(c, "id")
    if !ok {
        return badID(c, "showtime")
    }
    ctx := c.Request().Context()
    reserved, err := h.seats.ReservedSeats(ctx, id)
    if err != nil {
        return writeError(c, err)
    }
    available, err := h.seats.AvailableSeats(ctx, id)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, seatsResponse{ShowtimeID: id, Reserved: reserved, Available: available})
}

// CreateShowtime handles POST /v1/admin/showtimes.
func (h *CatalogHandler) CreateShowtime(c echo.Context) error {
    var req showtimeRequest
    if err := bind(c, &req); err != nil {
        return writeError(c, err)
    }
    show, err := h.catalog.CreateShowtime(c.Request().Context(), service.ShowtimeInput{
        MovieID:  req.MovieID,
        Date:     req.Date,
        Time:     req.Time,
        Capacity: req.Capacity,
    })
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, showtimeResponse{
        ID:        show.ID,
        MovieID:   show.MovieID,
        Date:      show.DateString(),
        Time:      show.Time,
        Capacity:  show.Capacity,
        CreatedAt: show.CreatedAt,
    })
}

// DeleteShowtime handles DELETE /v1/admin/showtimes/:id.
func (h *CatalogHandler) DeleteShowtime(c echo.Context) error {
    id, ok := paramID(c, "id")
    if !ok {
        return badID(c, "showtime")
    }
    if err := h.catalog.DeleteShowtime(c.Request().Context(), id); err != nil {
        return writeError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}
