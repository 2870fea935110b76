package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/movie-ticketing/internal/middleware"
    "github.com/iliyamo/movie-ticketing/internal/model"
)

// Ratings is the part of service.RatingService the handlers call.
type Ratings interface {
    Upsert(ctx context.Context, movieID uint64, who model.Identity, score int, comment *string) (*model.Rating, model.UpsertOutcome, error)
    AverageAndList(ctx context.Context, movieID uint64) (model.RatingSummary, error)
    GetForUser(ctx context.Context, movieID uint64, who model.Identity) (*model.RatingEntry, error)
}

type ratingRequest struct {
    Score   int     `json:"score" validate:"required,min=1,max=5"`
    Comment *string `json:"comment" validate:"omitempty,max=2000"`
}

type ratingResponse struct {
    ID        uint64              `json:"id"`
    MovieID   uint64              `json:"movie_id"`
    UserID    *uint64             `json:"user_id"`
    Score     uint8               `json:"score"`
    Comment   *string             `json:"comment"`
    Outcome   model.UpsertOutcome `json:"outcome"`
    UpdatedAt time.Time           `json:"updated_at"`
}

// RatingHandler serves movie ratings.  Submitting works with or without
// a token; an anonymous submission always adds a new rating.
type RatingHandler struct {
    ratings Ratings
}

func NewRatingHandler(ratings Ratings) *RatingHandler {
    if ratings == nil {
        panic("handler: NewRatingHandler requires a rating service")
    }
    return &RatingHandler{ratings: ratings}
}

// Upsert handles POST /v1/movies/:id/ratings.  It answers 201 when a
// rating was added and 200 when the caller's rating was overwritten.
func (h *RatingHandler) Upsert(c echo.Context) error {
    movieID, ok := paramID(c, "id")
    if !ok {
        return badID(c, "movie")
    }
    var req ratingRequest
    if err := bind(c, &req); err != nil {
        return writeError(c, err)
    }
    r, outcome, err := h.ratings.Upsert(c.Request().Context(), movieID, middleware.IdentityFrom(c), req.Score, req.Comment)
    if err != nil {
        return writeError(c, err)
    }
    status := http.StatusOK
    if outcome == model.OutcomeCreated {
        status = http.StatusCreated
    }
    return c.JSON(status, ratingResponse{
        ID:        r.ID,
        MovieID:   r.MovieID,
        UserID:    r.UserID,
        Score:     r.Score,
        Comment:   r.Comment,
        Outcome:   outcome,
        UpdatedAt: r.UpdatedAt,
    })
}

// List handles GET /v1/movies/:id/ratings.
func (h *RatingHandler) List(c echo.Context) error {
    movieID, ok := paramID(c, "id")
    if !ok {
        return badID(c, "movie")
    }
    sum, err := h.ratings.AverageAndList(c.Request().Context(), movieID)
    if err != nil {
        return writeError(c, err)
    }
    if sum.Ratings == nil {
        sum.Ratings = []model.RatingEntry{}
    }
    return c.JSON(http.StatusOK, sum)
}

// Mine handles GET /v1/movies/:id/ratings/me.  It answers 404 when the
// caller has not rated the movie.
func (h *RatingHandler) Mine(c echo.Context) error {
    who, err := caller(c)
    if err != nil {
        return writeError(c, err)
    }
    movieID, ok := paramID(c, "id")
    if !ok {
        return badID(c, "movie")
    }
    entry, err := h.ratings.GetForUser(c.Request().Context(), movieID, who.Identity())
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, entry)
}
