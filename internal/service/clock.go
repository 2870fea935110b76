package service

import "time"

// Clock supplies the current instant.  Its location decides what "today"
// and "this week" mean.
type Clock interface {
    Now() time.Time
}

// SystemClock reads the wall clock in a fixed location.
type SystemClock struct {
    Loc *time.Location
}

func (c SystemClock) Now() time.Time {
    if c.Loc == nil {
        return time.Now()
    }
    return time.Now().In(c.Loc)
}

// FixedClock always returns the same instant.
type FixedClock struct {
    At time.Time
}

func (c FixedClock) Now() time.Time { return c.At }

// weekBounds returns Monday 00:00 of the week containing now and the
// following Monday 00:00, both in now's location.
func weekBounds(now time.Time) (time.Time, time.Time) {
    daysSinceMonday := (int(now.Weekday()) + 6) % 7
    y, m, d := now.Date()
    start := time.Date(y, m, d-daysSinceMonday, 0, 0, 0, 0, now.Location())
    return start, start.AddDate(0, 0, 7)
}
