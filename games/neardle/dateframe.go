/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package neardle

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrDateFormat = errors.New("unrecognized release date format")

// Dateframe is an inclusive range of release years.
type Dateframe struct {
	Start int
	End   int
}

func (d Dateframe) String() string {
	return fmt.Sprintf("%d-%d", d.Start, d.End)
}

// ParseDateframe reads a range written as "1975-1995".
func ParseDateframe(s string) (Dateframe, error) {
	start, end, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Dateframe{}, fmt.Errorf("invalid date range %q (expected e.g. 1975-1995)", s)
	}

	startYear, err := parseYear(strings.TrimSpace(start))
	if err != nil {
		return Dateframe{}, err
	}

	endYear, err := parseYear(strings.TrimSpace(end))
	if err != nil {
		return Dateframe{}, err
	}

	if endYear < startYear {
		return Dateframe{}, fmt.Errorf("invalid date range %q: end before start", s)
	}

	return Dateframe{Start: startYear, End: endYear}, nil
}

// Contains reports whether the release date falls within the frame.
func (d Dateframe) Contains(date string) (bool, error) {
	released, err := parseReleaseDate(date)
	if err != nil {
		return false, err
	}

	from := time.Date(d.Start, time.January, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(d.End+1, time.January, 1, 0, 0, 0, 0, time.UTC)

	return !released.Before(from) && released.Before(until), nil
}

// DateInDateframe checks a release date of year, month or day precision
// against a frame given as start and end years.
func DateInDateframe(date, start, end string) (bool, error) {
	startYear, err := parseYear(start)
	if err != nil {
		return false, err
	}

	endYear, err := parseYear(end)
	if err != nil {
		return false, err
	}

	return Dateframe{Start: startYear, End: endYear}.Contains(date)
}

// ReleaseYear extracts the year of a release date.
func ReleaseYear(date string) (int, error) {
	released, err := parseReleaseDate(date)
	if err != nil {
		return 0, err
	}

	return released.Year(), nil
}

func parseReleaseDate(date string) (time.Time, error) {
	var layout string

	switch len(date) {
	case 10:
		layout = time.DateOnly
	case 7:
		layout = "2006-01"
	case 4:
		layout = "2006"
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrDateFormat, date)
	}

	t, err := time.Parse(layout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrDateFormat, date)
	}

	return t, nil
}

func parseYear(s string) (int, error) {
	if len(s) != 4 {
		return 0, fmt.Errorf("%w: year %q", ErrDateFormat, s)
	}

	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: year %q", ErrDateFormat, s)
	}

	return year, nil
}
