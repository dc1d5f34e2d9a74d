package recurrence

import (
	"time"

	"github.com/teambition/rrule-go"

	"github.com/warp/timeline-engine/calendar"
)

// DefaultCap bounds an expansion when the caller passes no cap. It protects
// against malformed configs producing unbounded series.
const DefaultCap = 100

// =============================================================================
// EXPANSION
// =============================================================================

// Expand returns the occurrences of the rule inside the window, ascending,
// at most cap of them (DefaultCap when cap <= 0).
//
// Nothing outside [window.Start, window.End] is ever emitted, so callers can
// expand only the viewport instead of the project lifetime.
func Expand(cfg Config, window calendar.DateRange, cap int) ([]calendar.Date, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if window.IsEmpty() {
		return nil, nil
	}
	if err := window.Validate(); err != nil {
		return nil, err
	}
	if cap <= 0 {
		cap = DefaultCap
	}

	first := FirstOccurrence(cfg, window.Start)
	if first.After(window.End) {
		return nil, nil
	}

	rule, err := rrule.NewRRule(cfg.ruleOption(first, window.End))
	if err != nil {
		return nil, &InvalidRecurrenceConfigError{Field: "rule", Reason: err.Error()}
	}

	var out []calendar.Date
	next := rule.Iterator()
	for len(out) < cap {
		t, ok := next()
		if !ok {
			break
		}
		occ := calendar.DateOf(t)
		if occ.After(window.End) {
			break
		}
		if occ.Before(window.Start) {
			continue
		}
		out = append(out, occ)
	}
	return out, nil
}

// FirstOccurrence returns the first date on or after from that matches the rule.
// The config must be valid.
func FirstOccurrence(cfg Config, from calendar.Date) calendar.Date {
	switch cfg.Type {
	case Weekly:
		offset := (int(*cfg.WeeklyDayOfWeek) - int(from.Weekday()) + 7) % 7
		return from.AddDays(offset)
	case Monthly:
		month := calendar.StartOfMonth(from)
		candidate := cfg.dayIn(month)
		if candidate.Before(from) {
			candidate = cfg.dayIn(month.AddMonths(1))
		}
		return candidate
	default:
		return from
	}
}

// dayIn returns the rule's day inside the month starting at month.
func (c Config) dayIn(month calendar.Date) calendar.Date {
	if c.MonthlyPattern == MonthlyByDayOfWeek {
		return NthWeekday(month, c.MonthlyWeekOfMonth, *c.MonthlyDayOfWeek)
	}
	day := c.MonthlyDate
	if last := calendar.DaysInMonth(month); day > last {
		day = last
	}
	return calendar.NewDate(month.Year(), month.Month(), day)
}

// NthWeekday returns the nth weekday of the month containing d.
// n == LastWeekOfMonth means the last such weekday.
func NthWeekday(d calendar.Date, n int, wd time.Weekday) calendar.Date {
	if n >= LastWeekOfMonth {
		end := calendar.EndOfMonth(d)
		back := (int(end.Weekday()) - int(wd) + 7) % 7
		return end.AddDays(-back)
	}
	start := calendar.StartOfMonth(d)
	offset := (int(wd) - int(start.Weekday()) + 7) % 7
	return start.AddDays(offset + 7*(n-1))
}

// ruleOption translates the config into an RFC 5545 rule anchored at first.
func (c Config) ruleOption(first, until calendar.Date) rrule.ROption {
	opt := rrule.ROption{
		Dtstart:  first.Time,
		Until:    until.Time,
		Interval: c.Interval,
	}
	switch c.Type {
	case Daily:
		opt.Freq = rrule.DAILY
	case Weekly:
		opt.Freq = rrule.WEEKLY
		opt.Byweekday = []rrule.Weekday{rruleWeekday(*c.WeeklyDayOfWeek, 0)}
	case Monthly:
		opt.Freq = rrule.MONTHLY
		if c.MonthlyPattern == MonthlyByDayOfWeek {
			n := c.MonthlyWeekOfMonth
			if n >= LastWeekOfMonth {
				n = -1
			}
			opt.Byweekday = []rrule.Weekday{rruleWeekday(*c.MonthlyDayOfWeek, n)}
		} else if c.MonthlyDate <= 28 {
			opt.Bymonthday = []int{c.MonthlyDate}
		} else {
			// 29-31: take the last existing day among 28..N, which clamps
			// short months to their final day.
			for day := 28; day <= c.MonthlyDate; day++ {
				opt.Bymonthday = append(opt.Bymonthday, day)
			}
			opt.Bysetpos = []int{-1}
		}
	}
	return opt
}

func rruleWeekday(wd time.Weekday, n int) rrule.Weekday {
	days := [...]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}
	day := days[wd]
	if n == 0 {
		return day
	}
	return day.Nth(n)
}

// =============================================================================
// OCCURRENCE RANGES
// =============================================================================

// OccurrenceRanges turns occurrences into the work periods leading up to them.
//
// Period i covers [o(i-1), o(i) - 1 day]. The first period starts at the
// project start instead, so days before the first anchor are still covered;
// it is omitted when the project starts on or after the first occurrence.
func OccurrenceRanges(occurrences []calendar.Date, projectStart calendar.Date) []calendar.DateRange {
	ranges := make([]calendar.DateRange, 0, len(occurrences))
	for i, occ := range occurrences {
		start := projectStart
		if i > 0 {
			start = occurrences[i-1]
		}
		end := occ.AddDays(-1)
		if start.After(end) {
			continue
		}
		ranges = append(ranges, calendar.DateRange{Start: start, End: end})
	}
	return ranges
}
