package model

import "time"

// Movie is a catalog entry that showtimes and ratings hang off.  The
// cast keeps its billing order, so it is persisted as a JSON array
// rather than a comma separated string.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – display title.
//  Description – free-form synopsis.
//  Genre       – single genre label.
//  Director    – director name.
//  Cast        – ordered list of cast names.
//  Duration    – display string such as "2h 15m".
//  PosterURL   – optional poster reference.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Movie struct {
    ID          uint64    `json:"id"`           // movies.id
    Title       string    `json:"title"`        // movies.title
    Description string    `json:"description"`  // movies.description
    Genre       string    `json:"genre"`        // movies.genre
    Director    string    `json:"director"`     // movies.director
    Cast        []string  `json:"cast"`         // movies.cast_list (JSON array)
    Duration    string    `json:"duration"`     // movies.duration
    PosterURL   *string   `json:"poster_image"` // movies.poster_url (nullable)
    CreatedAt   time.Time `json:"created_at"`   // movies.created_at
    UpdatedAt   time.Time `json:"updated_at"`   // movies.updated_at
}

// MovieSummary is a movie together with its rating aggregate.
type MovieSummary struct {
    Movie
    AverageRating float64 `json:"average_rating"`
    RatingCount   int64   `json:"rating_count"`
}

// MovieDetail extends MovieSummary with the movie's showtimes and their
// current seat availability.
type MovieDetail struct {
    MovieSummary
    Showtimes []ShowtimeAvailability `json:"showtimes"`
}
