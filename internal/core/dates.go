package core

import (
	"math"
	"time"
)

// Date is a calendar date with no time-of-day significance. All day-level
// comparisons truncate to UTC midnight first so the local timezone of the
// caller can never shift a due date across a day boundary.
type Date struct {
	time.Time
}

// NewDate creates a Date at UTC midnight.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its UTC calendar date.
func DateOf(t time.Time) Date {
	return Date{Time: DateOnlyUTC(t)}
}

// ParseDate parses an ISO "2006-01-02" date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// ISO renders the date in string-sortable ISO form.
func (d Date) ISO() string {
	return d.UTC().Format("2006-01-02")
}

// AddDays shifts the date by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// AddMonths shifts the date by n calendar months using the native
// normalization of time.AddDate: Jan 31 + 1 month lands in early March
// rather than being clamped to Feb 28. This matches the behavior of the
// common calendar libraries the reminder dates were written against.
func (d Date) AddMonths(n int) Date {
	return Date{Time: d.Time.AddDate(0, n, 0)}
}

// DateOnlyUTC truncates t to UTC midnight, eliminating time-of-day and
// local-offset effects before any day-granularity comparison.
func DateOnlyUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// IsSameDayUTC reports whether a and b fall on the same UTC calendar day.
func IsSameDayUTC(a, b time.Time) bool {
	return DateOnlyUTC(a).Equal(DateOnlyUTC(b))
}

// IsBeforeDayUTC reports whether a falls on a strictly earlier UTC calendar
// day than b. All "is it overdue" logic routes through here.
func IsBeforeDayUTC(a, b time.Time) bool {
	return DateOnlyUTC(a).Before(DateOnlyUTC(b))
}

// DaysUntil returns the number of days from now until the due date, rounded
// up, negative when the date has already passed.
func DaysUntil(due time.Time, now time.Time) int {
	diff := due.Sub(now).Hours() / 24
	return int(math.Ceil(diff))
}
