package domain

// PassCodeRecord is the output of one completed dialog. It is immutable
// once built and handed to the record sink exactly once.
type PassCodeRecord struct {
	ChatID       int64
	FirstName    string
	LastName     string
	UserName     string
	SerialNumber string
	Date         string
	Day          int
	Month        int
	Year         int
	PassCode     int
}
