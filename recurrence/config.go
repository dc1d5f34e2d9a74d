/*
Package recurrence expands recurring phase templates into concrete occurrence dates.

PURPOSE:
  A recurring phase is a template ("every second Monday", "the 15th of each
  month", "the last Friday of the month") rather than a stored record. The
  timeline only ever needs the occurrences that fall inside a window, so the
  expander works on demand: find the first occurrence on or after the window
  start, step by the pattern's natural interval, stop at the window end or
  at the safety cap.

PATTERNS:
  daily    every Interval days, starting at the window start
  weekly   every Interval weeks on WeeklyDayOfWeek
  monthly  every Interval months, either
             date:      on MonthlyDate (29-31 clamp to the month's last day)
             dayOfWeek: on the MonthlyWeekOfMonth-th MonthlyDayOfWeek (5 = last)

STEPPING:
  Once the first occurrence is known it becomes the DTSTART of an RFC 5545
  rule and github.com/teambition/rrule-go does the stepping.

SEE ALSO:
  - expand.go: Expand and OccurrenceRanges
  - planning/allocate.go: turns occurrences into synthetic phases
*/
package recurrence

import (
	"time"
)

// =============================================================================
// CONFIG
// =============================================================================

// Type is the recurrence frequency.
type Type string

const (
	Daily   Type = "daily"
	Weekly  Type = "weekly"
	Monthly Type = "monthly"
)

// MonthlyPattern selects how a monthly rule picks its day.
type MonthlyPattern string

const (
	MonthlyByDate      MonthlyPattern = "date"
	MonthlyByDayOfWeek MonthlyPattern = "dayOfWeek"
)

// LastWeekOfMonth is the MonthlyWeekOfMonth value meaning "the last one".
const LastWeekOfMonth = 5

// Config is a recurrence rule. Only the fields of the selected Type and
// MonthlyPattern are read.
type Config struct {
	Type     Type `json:"type" yaml:"type"`
	Interval int  `json:"interval" yaml:"interval"`

	// Weekly
	WeeklyDayOfWeek *time.Weekday `json:"weekly_day_of_week,omitempty" yaml:"weekly_day_of_week,omitempty"`

	// Monthly
	MonthlyPattern     MonthlyPattern `json:"monthly_pattern,omitempty" yaml:"monthly_pattern,omitempty"`
	MonthlyDate        int            `json:"monthly_date,omitempty" yaml:"monthly_date,omitempty"`
	MonthlyWeekOfMonth int            `json:"monthly_week_of_month,omitempty" yaml:"monthly_week_of_month,omitempty"`
	MonthlyDayOfWeek   *time.Weekday  `json:"monthly_day_of_week,omitempty" yaml:"monthly_day_of_week,omitempty"`
}

// Clone returns a copy that shares no weekday pointers with c.
func (c Config) Clone() *Config {
	if c.WeeklyDayOfWeek != nil {
		wd := *c.WeeklyDayOfWeek
		c.WeeklyDayOfWeek = &wd
	}
	if c.MonthlyDayOfWeek != nil {
		wd := *c.MonthlyDayOfWeek
		c.MonthlyDayOfWeek = &wd
	}
	return &c
}

// WeeklyOn builds a weekly rule.
func WeeklyOn(wd time.Weekday, interval int) Config {
	return Config{Type: Weekly, Interval: interval, WeeklyDayOfWeek: &wd}
}

// MonthlyOnDate builds a monthly rule on a day of the month.
func MonthlyOnDate(day, interval int) Config {
	return Config{Type: Monthly, Interval: interval, MonthlyPattern: MonthlyByDate, MonthlyDate: day}
}

// MonthlyOnWeekday builds a monthly rule on the nth weekday of the month.
func MonthlyOnWeekday(week int, wd time.Weekday, interval int) Config {
	return Config{
		Type:               Monthly,
		Interval:           interval,
		MonthlyPattern:     MonthlyByDayOfWeek,
		MonthlyWeekOfMonth: week,
		MonthlyDayOfWeek:   &wd,
	}
}

// Validate checks that every field the pattern needs is present and in range.
func (c Config) Validate() error {
	if c.Interval < 1 {
		return invalid("interval", "must be a positive integer")
	}
	switch c.Type {
	case Daily:
		return nil
	case Weekly:
		if c.WeeklyDayOfWeek == nil {
			return invalid("weekly_day_of_week", "required for weekly recurrence")
		}
		if !validWeekday(*c.WeeklyDayOfWeek) {
			return invalid("weekly_day_of_week", "must be 0-6")
		}
		return nil
	case Monthly:
		switch c.MonthlyPattern {
		case MonthlyByDate:
			if c.MonthlyDate < 1 || c.MonthlyDate > 31 {
				return invalid("monthly_date", "must be 1-31")
			}
			return nil
		case MonthlyByDayOfWeek:
			if c.MonthlyWeekOfMonth < 1 || c.MonthlyWeekOfMonth > LastWeekOfMonth {
				return invalid("monthly_week_of_month", "must be 1-5")
			}
			if c.MonthlyDayOfWeek == nil {
				return invalid("monthly_day_of_week", "required for dayOfWeek pattern")
			}
			if !validWeekday(*c.MonthlyDayOfWeek) {
				return invalid("monthly_day_of_week", "must be 0-6")
			}
			return nil
		default:
			return invalid("monthly_pattern", "must be \"date\" or \"dayOfWeek\"")
		}
	default:
		return invalid("type", "must be daily, weekly or monthly")
	}
}

func validWeekday(wd time.Weekday) bool {
	return wd >= time.Sunday && wd <= time.Saturday
}
