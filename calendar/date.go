/*
Package calendar provides the day-level calendar arithmetic the planning engine runs on.

PURPOSE:
  Everything in a project timeline is measured in whole days: phase deadlines,
  holiday ranges, drag deltas, segment spans. This package owns the Date type
  (a day normalized to UTC midnight), inclusive date ranges, weekly work-hour
  schedules and the working-day calculation built on top of them.

KEY CONCEPTS:
  - Date:           A calendar day. Two Dates for the same day are always ==.
  - DateRange:      Inclusive [Start, End]. Start after End is an InvalidRangeError.
  - WeeklySchedule: Work slots per weekday. A day with zero hours is not a working day.
  - Holiday:        A DateRange during which nobody works, whatever the schedule says.
  - WeekdaySet:     Project-specific weekday exclusions (e.g. "no weekend work").

SEE ALSO:
  - workdays.go: WorkingDays and Capacity
  - schedule.go: WorkSlot and WeeklySchedule
  - recurrence/: expands recurring phase templates into Dates
*/
package calendar

import (
	"time"
)

// =============================================================================
// DATE - A calendar day, normalized to midnight UTC
// =============================================================================

// DateLayout is the wire format for dates everywhere in the engine.
const DateLayout = "2006-01-02"

// Date is a single calendar day. The wrapped time is always midnight UTC,
// so Dates compare correctly with ==.
type Date struct {
	Time time.Time
}

// NewDate builds a Date from its components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf normalizes a time to its calendar day, read in the time's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// MustParseDate is ParseDate for fixtures and tests. It panics on bad input.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Comparison
func (d Date) Before(other Date) bool        { return d.Time.Before(other.Time) }
func (d Date) After(other Date) bool         { return d.Time.After(other.Time) }
func (d Date) Equal(other Date) bool         { return d.Time.Equal(other.Time) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{Time: d.Time.AddDate(0, n, 0)} }

// Properties
func (d Date) Year() int             { return d.Time.Year() }
func (d Date) Month() time.Month     { return d.Time.Month() }
func (d Date) Day() int              { return d.Time.Day() }
func (d Date) Weekday() time.Weekday { return d.Time.Weekday() }
func (d Date) IsZero() bool          { return d.Time.IsZero() }
func (d Date) String() string        { return d.Time.Format(DateLayout) }

// Min returns the earlier of two dates.
func Min(a, b Date) Date {
	if a.Before(b) {
		return a
	}
	return b
}

// Max returns the later of two dates.
func Max(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}

// DaysBetween returns the signed number of days from one date to another.
func DaysBetween(from, to Date) int {
	return int(to.Time.Sub(from.Time).Hours() / 24)
}

// StartOfMonth returns the first day of the date's month.
func StartOfMonth(d Date) Date { return NewDate(d.Year(), d.Month(), 1) }

// EndOfMonth returns the last day of the date's month.
func EndOfMonth(d Date) Date {
	return Date{Time: time.Date(d.Year(), d.Month()+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)}
}

// DaysInMonth returns how many days the date's month has.
func DaysInMonth(d Date) int { return EndOfMonth(d).Day() }
