package domain

import "time"

// DateLayout is the wire and storage format of calendar dates
const DateLayout = "2006-01-02"

// Day truncates t to its calendar date at UTC midnight.
// Operations are day-granular so every date in the engine goes through Day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, Validationf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// DateKey formats a date as YYYY-MM-DD
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysBetween returns the number of whole calendar days from a to b (negative if b is before a)
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}
