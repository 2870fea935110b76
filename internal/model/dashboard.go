package model

// Dashboard holds the administrator counters.  All values are derived
// from committed data on every call.
type Dashboard struct {
    MovieCount         int64 `json:"movie_count"`
    UserCount          int64 `json:"user_count"`
    TodayReservations  int64 `json:"today_reservations"`
    WeeklyRevenueCents int64 `json:"weekly_revenue_cents"`
}
