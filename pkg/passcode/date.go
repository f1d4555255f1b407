package passcode

import (
	"regexp"
	"time"
)

// DateLayout is the fixed date convention used across the dialog,
// matching the ru-RU short date rendering of the predecessor system.
const DateLayout = "02.01.2006"

var dateShape = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)

// ValidateDate checks that text is a calendar-correct date in DD.MM.YYYY
// form and returns it unchanged. The year range is not restricted.
// Side-effect free.
func ValidateDate(text string) (string, bool) {
	if !dateShape.MatchString(text) {
		return "", false
	}
	day, month, year := SplitDate(text)

	// Rebuild the date and require day and month to survive
	// normalization. time.Date wraps out-of-range values, so day 0,
	// month 13 or Feb 31 come back changed and are rejected here.
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || int(d.Month()) != month {
		return "", false
	}
	return text, true
}

// FormatDate renders t in the fixed DD.MM.YYYY convention.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
