package progress

import "time"

// DayLayout is the calendar-day format stored in the user metadata.
const DayLayout = "2006-01-02"

// Clock yields the current local calendar day and the one before it.
// Both are computed once per operation and passed down as plain values.
type Clock interface {
	Days() (today, yesterday string)
}

// SystemClock reads the wall clock in a fixed location.
type SystemClock struct {
	Location *time.Location
	Now      func() time.Time
}

// NewSystemClock returns a clock for loc; nil means the process's local zone.
func NewSystemClock(loc *time.Location) SystemClock {
	if loc == nil {
		loc = time.Local
	}
	return SystemClock{Location: loc, Now: time.Now}
}

func (c SystemClock) Days() (string, string) {
	return CalendarDays(c.Now(), c.Location)
}

// CalendarDays formats t's calendar day in loc and the calendar day before it.
func CalendarDays(t time.Time, loc *time.Location) (today, yesterday string) {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	// noon keeps the arithmetic clear of DST transitions at midnight
	day := time.Date(y, m, d, 12, 0, 0, 0, loc)
	return day.Format(DayLayout), day.AddDate(0, 0, -1).Format(DayLayout)
}
