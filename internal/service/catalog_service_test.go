package service

import (
    "context"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/go-sql-driver/mysql"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/movie-ticketing/internal/model"
    "github.com/iliyamo/movie-ticketing/internal/repository"
)

func newCatalogService(t *testing.T) (*CatalogService, sqlmock.Sqlmock) {
    db, mock := newMock(t)
    return NewCatalogService(repository.NewMovieRepo(db), repository.NewShowtimeRepo(db)), mock
}

func intPtr(n int) *int { return &n }

func TestCreateShowtimeDefaultsCapacity(t *testing.T) {
    svc, mock := newCatalogService(t)
    mock.ExpectQuery(movieExists).WithArgs(uint64(1)).WillReturnRows(existsRows())
    mock.ExpectExec(`INSERT INTO showtimes`).WithArgs(uint64(1), "2025-03-12", "19:30", model.DefaultShowtimeCapacity).
        WillReturnResult(sqlmock.NewResult(4, 1))
    mock.ExpectQuery(`FROM showtimes WHERE id = \?`).WithArgs(uint64(4)).WillReturnRows(showtimeRows(4, "2025-03-12", 60))

    s, err := svc.CreateShowtime(context.Background(), ShowtimeInput{MovieID: 1, Date: "2025-03-12", Time: "19:30"})
    require.NoError(t, err)
    assert.Equal(t, uint64(4), s.ID)
    assert.Equal(t, uint32(60), s.Capacity)
    expectationsMet(t, mock)
}

func TestCreateShowtimeValidation(t *testing.T) {
    svc, mock := newCatalogService(t)
    cases := []ShowtimeInput{
        {MovieID: 1, Date: "12/03/2025", Time: "19:30"},
        {MovieID: 1, Date: "2025-03-12", Time: "7pm"},
        {MovieID: 1, Date: "2025-03-12", Time: "19:30", Capacity: intPtr(0)},
        {MovieID: 1, Date: "2025-03-12", Time: "19:30", Capacity: intPtr(-5)},
    }
    for _, in := range cases {
        _, err := svc.CreateShowtime(context.Background(), in)
        assert.ErrorIs(t, err, ErrValidation, "%+v", in)
    }
    expectationsMet(t, mock)
}

func TestCreateShowtimeDuplicateSlot(t *testing.T) {
    svc, mock := newCatalogService(t)
    mock.ExpectQuery(movieExists).WithArgs(uint64(1)).WillReturnRows(existsRows())
    mock.ExpectExec(`INSERT INTO showtimes`).WillReturnError(&mysql.MySQLError{Number: 1062})
    mock.ExpectQuery(movieExists).WithArgs(uint64(2)).WillReturnRows(noRows())

    _, err := svc.CreateShowtime(context.Background(), ShowtimeInput{MovieID: 1, Date: "2025-03-12", Time: "19:30", Capacity: intPtr(2)})
    assert.ErrorIs(t, err, ErrConflict)

    _, err = svc.CreateShowtime(context.Background(), ShowtimeInput{MovieID: 2, Date: "2025-03-12", Time: "19:30"})
    assert.ErrorIs(t, err, ErrNotFound)
    expectationsMet(t, mock)
}

func TestCreateMovieTrimsCast(t *testing.T) {
    svc, mock := newCatalogService(t)
    mock.ExpectExec(`INSERT INTO movies`).
        WithArgs("Heat", "", "Crime", "Michael Mann", `["Al Pacino","Robert De Niro"]`, "2h 50m", nil).
        WillReturnResult(sqlmock.NewResult(7, 1))
    mock.ExpectQuery(`FROM movies m WHERE m.id = \?`).WithArgs(uint64(7)).WillReturnRows(movieRows(7, "Heat"))

    m, err := svc.CreateMovie(context.Background(), MovieInput{
        Title: " Heat ", Genre: "Crime", Director: "Michael Mann",
        Cast: []string{" Al Pacino", "", "Robert De Niro "}, Duration: "2h 50m", PosterURL: strPtr(" "),
    })
    require.NoError(t, err)
    assert.Equal(t, uint64(7), m.ID)

    _, err = svc.CreateMovie(context.Background(), MovieInput{Title: "   "})
    assert.ErrorIs(t, err, ErrValidation)
    expectationsMet(t, mock)
}

func TestUpdateMovieAppliesPatch(t *testing.T) {
    svc, mock := newCatalogService(t)
    mock.ExpectQuery(`FROM movies m WHERE m.id = \?`).WithArgs(uint64(7)).WillReturnRows(movieRows(7, "Heat"))
    mock.ExpectExec(`UPDATE movies SET`).
        WithArgs("Heat", "", "Thriller", "", `[]`, "", nil, uint64(7)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectQuery(`FROM movies m WHERE m.id = \?`).WithArgs(uint64(7)).WillReturnRows(movieRows(7, "Heat"))

    _, err := svc.UpdateMovie(context.Background(), 7, MoviePatch{Genre: strPtr("Thriller")})
    require.NoError(t, err)

    mock.ExpectQuery(`FROM movies m WHERE m.id = \?`).WithArgs(uint64(8)).WillReturnRows(sqlmock.NewRows([]string{"id"}))
    _, err = svc.UpdateMovie(context.Background(), 8, MoviePatch{})
    assert.ErrorIs(t, err, ErrNotFound)
    expectationsMet(t, mock)
}

func TestGetMovieIncludesShowtimes(t *testing.T) {
    svc, mock := newCatalogService(t)
    summary := sqlmock.NewRows([]string{"id", "title", "description", "genre", "director", "cast_list", "duration", "poster_url", "created_at", "updated_at", "avg", "count"}).
        AddRow(1, "Alien", "", "", "", `[]`, "", nil, stamp, stamp, "4.0000", 1)
    mock.ExpectQuery(`WHERE m.id = \? GROUP BY m.id`).WithArgs(uint64(1)).WillReturnRows(summary)
    mock.ExpectQuery(`WHERE s.movie_id = \? GROUP BY s.id`).WithArgs(uint64(1)).WillReturnRows(
        sqlmock.NewRows([]string{"id", "movie_id", "title", "date", "time", "capacity", "reserved"}).
            AddRow(4, 1, "Alien", "2025-03-12", "19:30", 60, 2))

    d, err := svc.GetMovie(context.Background(), 1)
    require.NoError(t, err)
    assert.InDelta(t, 4.0, d.AverageRating, 1e-9)
    require.Len(t, d.Showtimes, 1)
    assert.Equal(t, uint32(58), d.Showtimes[0].Available)
    expectationsMet(t, mock)
}

func TestListShowtimesValidatesDate(t *testing.T) {
    svc, mock := newCatalogService(t)
    bad := "tomorrow"
    _, err := svc.ListShowtimes(context.Background(), &bad, nil)
    assert.ErrorIs(t, err, ErrValidation)

    good := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC).Format(model.DateLayout)
    mock.ExpectQuery(`WHERE s.show_date = \? GROUP BY`).WithArgs("2025-03-12").
        WillReturnRows(sqlmock.NewRows([]string{"id", "movie_id", "title", "date", "time", "capacity", "reserved"}))
    list, err := svc.ListShowtimes(context.Background(), &good, nil)
    require.NoError(t, err)
    assert.Empty(t, list)
    expectationsMet(t, mock)
}

func TestDeleteMissingShowtime(t *testing.T) {
    svc, mock := newCatalogService(t)
    mock.ExpectExec(`DELETE FROM showtimes WHERE id = \?`).WithArgs(uint64(5)).WillReturnResult(sqlmock.NewResult(0, 0))
    assert.ErrorIs(t, svc.DeleteShowtime(context.Background(), 5), ErrNotFound)
    expectationsMet(t, mock)
}
