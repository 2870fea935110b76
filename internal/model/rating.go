package model

import "time"

// MinScore and MaxScore bound a rating's score.
const (
    MinScore = 1
    MaxScore = 5
)

// AnonymousDisplayName is shown for ratings submitted without an identity.
const AnonymousDisplayName = "Anonymous"

// Rating is a score for a movie.  UserID is nil for anonymous ratings;
// at most one rating exists per (user, movie) when the user is present.
type Rating struct {
    ID        uint64    // ratings.id
    MovieID   uint64    // ratings.movie_id
    UserID    *uint64   // ratings.user_id (nullable)
    Score     uint8     // ratings.score
    Comment   *string   // ratings.comment (nullable)
    CreatedAt time.Time // ratings.created_at
    UpdatedAt time.Time // ratings.updated_at
}

// RatingEntry is a rating annotated with the rater's display name.
type RatingEntry struct {
    ID          uint64    `json:"id"`
    UserID      *uint64   `json:"user_id"`
    DisplayName string    `json:"username"`
    Score       uint8     `json:"score"`
    Comment     *string   `json:"comment"`
    CreatedAt   time.Time `json:"created_at"`
}

// RatingSummary is the mean score and the full list of a movie's
// ratings, newest first.  Average is 0 when there are no ratings.
type RatingSummary struct {
    Average float64       `json:"average_rating"`
    Count   int           `json:"rating_count"`
    Ratings []RatingEntry `json:"ratings"`
}

// UpsertOutcome tells whether an upsert inserted or overwrote a row.
type UpsertOutcome string

const (
    OutcomeCreated UpsertOutcome = "created"
    OutcomeUpdated UpsertOutcome = "updated"
)
