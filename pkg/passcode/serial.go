package passcode

import (
	"regexp"
	"strings"
)

// serialShape accepts four digits, two letters, four digits. The letter
// pair matches both Latin and Cyrillic alphabets: field input arrives
// from either keyboard layout and look-alike letters are accepted on
// purpose.
var serialShape = regexp.MustCompile(`(?i)^[0-9]{4}[A-ZА-Я]{2}[0-9]{4}$`)

// NormalizeSerial validates a unit serial number and returns it
// uppercased.
func NormalizeSerial(text string) (string, bool) {
	if !serialShape.MatchString(text) {
		return "", false
	}
	return strings.ToUpper(text), true
}
