package core

import (
	"fmt"
	"time"
)

const dateKeyLayout = "2006-01-02"

// DateKey formats a calendar date as YYYY-MM-DD. It works on calendar fields
// only, so the result never shifts with the local timezone.
func DateKey(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// ParseDateKey splits a YYYY-MM-DD key back into its parts.
func ParseDateKey(key string) (year, month, day int, err error) {
	t, err := time.Parse(dateKeyLayout, key)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidDate, key)
	}
	return t.Year(), int(t.Month()), t.Day(), nil
}

// DaysInMonth returns the number of days in the given month (1-12).
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// CurrentDateValues returns the calendar fields of now, used to prefill forms.
func CurrentDateValues(now time.Time) (year, month, day int) {
	return now.Year(), int(now.Month()), now.Day()
}
