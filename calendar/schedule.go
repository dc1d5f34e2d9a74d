package calendar

import (
	"fmt"
	"sort"
	"time"
)

// =============================================================================
// WORK SLOTS AND WEEKLY SCHEDULE
// =============================================================================

// WorkSlot is one block of working time inside a day, e.g. 09:00-12:30.
type WorkSlot struct {
	StartTime string  `json:"start_time" yaml:"start_time"` // "HH:MM"
	EndTime   string  `json:"end_time" yaml:"end_time"`     // "HH:MM"
	Duration  float64 `json:"duration" yaml:"duration"`     // hours
}

// Hours returns the slot length. An explicit Duration wins; otherwise the
// length is derived from the clock times. Malformed or inverted times count as zero.
func (s WorkSlot) Hours() float64 {
	if s.Duration > 0 {
		return s.Duration
	}
	start, err1 := parseClock(s.StartTime)
	end, err2 := parseClock(s.EndTime)
	if err1 != nil || err2 != nil || end <= start {
		return 0
	}
	return float64(end-start) / 60
}

// parseClock returns minutes since midnight for "HH:MM".
func parseClock(v string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(v, "%d:%d", &h, &m); err != nil {
		return 0, err
	}
	if h < 0 || h > 24 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock time out of range: %q", v)
	}
	return h*60 + m, nil
}

// WeeklySchedule maps each weekday to its slots, in chronological order.
// Missing weekdays have no slots and therefore no working time.
type WeeklySchedule map[time.Weekday][]WorkSlot

// HoursOn returns the scheduled hours for a weekday.
func (ws WeeklySchedule) HoursOn(wd time.Weekday) float64 {
	var total float64
	for _, slot := range ws[wd] {
		total += slot.Hours()
	}
	return total
}

// IsWorkingWeekday reports whether the weekday has any scheduled time.
func (ws WeeklySchedule) IsWorkingWeekday(wd time.Weekday) bool {
	return ws.HoursOn(wd) > 0
}

// WeeklyHours returns the total scheduled hours in a week.
func (ws WeeklySchedule) WeeklyHours() float64 {
	var total float64
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		total += ws.HoursOn(wd)
	}
	return total
}

// Weekdays returns the weekdays that have slots, Sunday first.
func (ws WeeklySchedule) Weekdays() []time.Weekday {
	out := make([]time.Weekday, 0, len(ws))
	for wd := range ws {
		out = append(out, wd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// StandardWeek returns a Monday-Friday schedule with a single 09:00 slot
// of the given length each day.
func StandardWeek(hoursPerDay float64) WeeklySchedule {
	ws := make(WeeklySchedule, 5)
	end := 9*60 + int(hoursPerDay*60)
	slot := WorkSlot{
		StartTime: "09:00",
		EndTime:   fmt.Sprintf("%02d:%02d", end/60, end%60),
		Duration:  hoursPerDay,
	}
	for wd := time.Monday; wd <= time.Friday; wd++ {
		ws[wd] = []WorkSlot{slot}
	}
	return ws
}

// =============================================================================
// WEEKDAY SET - Project day-type exclusions
// =============================================================================

// WeekdaySet is a bitmask of weekdays. The zero value is the empty set.
type WeekdaySet uint8

// NewWeekdaySet builds a set from weekdays.
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.Add(d)
	}
	return s
}

// Weekends is the common Saturday+Sunday exclusion.
var Weekends = NewWeekdaySet(time.Saturday, time.Sunday)

func (s WeekdaySet) Add(d time.Weekday) WeekdaySet { return s | 1<<uint(d) }
func (s WeekdaySet) Has(d time.Weekday) bool       { return s&(1<<uint(d)) != 0 }

// List returns the weekdays in the set, Sunday first.
func (s WeekdaySet) List() []time.Weekday {
	var out []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// Holiday is a named span of days on which no work is scheduled.
type Holiday struct {
	ID    string
	Name  string
	Range DateRange
}

// Holidays is a list of holiday ranges.
type Holidays []Holiday

// Validate fails fast on the first inverted holiday range.
func (hs Holidays) Validate() error {
	for _, h := range hs {
		if err := h.Range.Validate(); err != nil {
			return fmt.Errorf("holiday %q: %w", h.ID, err)
		}
	}
	return nil
}

// Contains reports whether the date falls in any holiday.
func (hs Holidays) Contains(d Date) bool {
	for _, h := range hs {
		if h.Range.Contains(d) {
			return true
		}
	}
	return false
}

// Within returns the holidays that overlap the range.
func (hs Holidays) Within(r DateRange) Holidays {
	var out Holidays
	for _, h := range hs {
		if h.Range.Overlaps(r) {
			out = append(out, h)
		}
	}
	return out
}
