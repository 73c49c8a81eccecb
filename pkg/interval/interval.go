// Package interval models a stay as a half-open range of calendar dates.
//
// An interval [Start, End) occupies every night from Start up to, but not
// including, End. Two stays that share only a boundary day (one checks out
// the morning the other checks in) do not overlap.
package interval

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO-8601 calendar date format used for storage and
// comparison. Lexicographic order of such strings equals chronological order.
const DateLayout = "2006-01-02"

var (
	ErrInvalidRange = errors.New("check-out must be after check-in")
	ErrInvalidDate  = errors.New("invalid date, expected YYYY-MM-DD")
)

type Interval struct {
	Start time.Time
	End   time.Time
}

// Normalize truncates both instants to calendar dates and builds the
// interval. Year, month and day are taken as given; no timezone conversion
// is applied.
func Normalize(checkIn, checkOut time.Time) (Interval, error) {
	start := toDate(checkIn)
	end := toDate(checkOut)

	if !end.After(start) {
		return Interval{}, fmt.Errorf("%w: %s to %s", ErrInvalidRange, start.Format(DateLayout), end.Format(DateLayout))
	}

	return Interval{Start: start, End: end}, nil
}

func Parse(checkIn, checkOut string) (Interval, error) {
	start, err := ParseDate(checkIn)
	if err != nil {
		return Interval{}, err
	}
	end, err := ParseDate(checkOut)
	if err != nil {
		return Interval{}, err
	}
	return Normalize(start, end)
}

// ParseDate accepts a bare ISO date or an RFC 3339 timestamp, whose time of
// day is dropped.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}

	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return toDate(t), nil
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

func (i Interval) Overlaps(other Interval) bool {
	return Overlaps(i, other)
}

func (i Interval) Contains(day time.Time) bool {
	d := toDate(day)
	return !d.Before(i.Start) && d.Before(i.End)
}

func (i Interval) Nights() int {
	return int(i.End.Sub(i.Start).Hours() / 24)
}

func (i Interval) StartISO() string {
	return i.Start.Format(DateLayout)
}

func (i Interval) EndISO() string {
	return i.End.Format(DateLayout)
}

func (i Interval) String() string {
	return "[" + i.StartISO() + ", " + i.EndISO() + ")"
}

func toDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
