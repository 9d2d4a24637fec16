package utils

import "time"

// DateLayout is the YYYY-MM-DD layout used for status dates.
const DateLayout = "2006-01-02"

// FormatDate returns t as YYYY-MM-DD in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
