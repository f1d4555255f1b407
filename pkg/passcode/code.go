// Package passcode implements the pass-code formula and the input
// validators for the dialog: serial numbers and DD.MM.YYYY dates.
package passcode

import (
	"strconv"
	"strings"
)

// Compute derives the pass code from a validated DD.MM.YYYY date:
//
//	year + 20*day + 3*month
//
// This is a deliberately simple, non-cryptographic checksum-style code
// with no business meaning beyond being deterministic over the date.
// Inputs must have passed ValidateDate first; Compute does no validation
// of its own.
func Compute(date string) int {
	day, month, year := SplitDate(date)
	return year + 20*day + 3*month
}

// SplitDate breaks a DD.MM.YYYY string into its numeric fields.
func SplitDate(date string) (day, month, year int) {
	parts := strings.SplitN(date, ".", 3)
	if len(parts) != 3 {
		return 0, 0, 0
	}
	day, _ = strconv.Atoi(parts[0])
	month, _ = strconv.Atoi(parts[1])
	year, _ = strconv.Atoi(parts[2])
	return day, month, year
}
