package domain

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for dates (CSV columns and API payloads).
const DateLayout = "2006-01-02"

// Date is a calendar date with no time-of-day or zone component.
// The zero Date is the "unscheduled" sentinel and serializes as "".
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a Date from its components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf truncates a time.Time to its calendar date.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string. The empty string parses to the
// sentinel (zero) Date.
func ParseDate(s string) (Date, error) {
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("domain.ParseDate: %w", err)
	}
	return DateOf(t), nil
}

// IsZero reports whether d is the unscheduled sentinel.
func (d Date) IsZero() bool {
	return d == Date{}
}

// String formats d as YYYY-MM-DD, or "" for the sentinel.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.time().Format(DateLayout)
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool {
	return other.Before(d)
}

// AddDays returns the date n calendar days after d. n may be negative.
func (d Date) AddDays(n int) Date {
	return DateOf(d.time().AddDate(0, 0, n))
}

// Weekday returns the day of week for d.
func (d Date) Weekday() time.Weekday {
	return d.time().Weekday()
}

// IsWeekday reports whether d falls on Monday through Friday.
func (d Date) IsWeekday() bool {
	wd := d.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

func (d Date) time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Clock provides the current date. Injected so overdue checks are testable.
type Clock interface {
	Today() Date
}

// SystemClock reads the local wall clock.
type SystemClock struct{}

func (SystemClock) Today() Date {
	return DateOf(time.Now())
}
