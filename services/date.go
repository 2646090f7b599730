package services

import (
	"errors"
	"time"
)

// DateLayout is the format of HTML5 date inputs and date query parameters
const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date format: expected YYYY-MM-DD")

// ParseDate parses a YYYY-MM-DD string as midnight in loc; nil loc means UTC
func ParseDate(dateStr string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	parsedTime, err := time.ParseInLocation(DateLayout, dateStr, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return parsedTime, nil
}

// EndOfDay returns the last second of t's calendar day
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// LoadLocation resolves an IANA zone name, falling back to UTC
func LoadLocation(name string) *time.Location {
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return time.UTC
}
