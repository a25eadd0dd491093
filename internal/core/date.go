package core

import (
	"fmt"
	"time"
)

// Dates are plain "YYYY-MM-DD" calendar values with no time zone attached.
// All arithmetic goes through a day index (days since the Unix epoch,
// computed in UTC) so that a week window never shifts across a timezone
// boundary.

const dateLayout = "2006-01-02"

// ParseDate validates a "YYYY-MM-DD" string.
func ParseDate(s string) error {
	if _, err := time.Parse(dateLayout, s); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// DayIndex returns the number of calendar days between the Unix epoch and
// the given date.
func DayIndex(date string) (int, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return 0, ErrInvalidDate
	}
	return int(t.Unix() / 86400), nil
}

// DateFromIndex is the inverse of DayIndex.
func DateFromIndex(idx int) string {
	return time.Unix(int64(idx)*86400, 0).UTC().Format(dateLayout)
}

// AddDays shifts a date by n calendar days (n may be negative).
func AddDays(date string, n int) (string, error) {
	idx, err := DayIndex(date)
	if err != nil {
		return "", err
	}
	return DateFromIndex(idx + n), nil
}

// YearMonth returns the "YYYY-MM" prefix of a date.
func YearMonth(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

// MonthDays returns every date of the month containing the given date, in
// calendar order.
func MonthDays(date string) ([]string, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	out := make([]string, 0, last.Day())
	for d := 1; d <= last.Day(); d++ {
		out = append(out, fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), d))
	}
	return out, nil
}

// Today returns the current date in the local calendar.
func Today() string {
	return time.Now().Format(dateLayout)
}
