package service

import (
    "context"

    "github.com/iliyamo/movie-ticketing/internal/model"
    "github.com/iliyamo/movie-ticketing/internal/repository"
)

// ReportService computes the administrator dashboard from committed data
// on every call.
type ReportService struct {
    stats *repository.StatsRepo
    clock Clock
}

func NewReportService(stats *repository.StatsRepo, clock Clock) *ReportService {
    return &ReportService{stats: stats, clock: clock}
}

// Dashboard returns the catalog and user counts, the number of
// non-cancelled reservations for showtimes today, and the revenue of
// reservations created this week (Monday to Sunday in the clock's
// location).  Weekly revenue counts cancelled reservations too.
func (s *ReportService) Dashboard(ctx context.Context) (model.Dashboard, error) {
    var (
        d   model.Dashboard
        err error
    )
    now := s.clock.Now()
    if d.MovieCount, err = s.stats.CountMovies(ctx); err != nil {
        return model.Dashboard{}, err
    }
    if d.UserCount, err = s.stats.CountUsers(ctx); err != nil {
        return model.Dashboard{}, err
    }
    if d.TodayReservations, err = s.stats.CountActiveReservationsOn(ctx, now.Format(model.DateLayout)); err != nil {
        return model.Dashboard{}, err
    }
    from, to := weekBounds(now)
    if d.WeeklyRevenueCents, err = s.stats.RevenueBetween(ctx, from, to); err != nil {
        return model.Dashboard{}, err
    }
    return d, nil
}
