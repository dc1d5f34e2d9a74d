package calendar

import "time"

// =============================================================================
// WORKING DAYS
// =============================================================================

// WorkingDays returns, in ascending order, every day of the range that
//   - is not inside any holiday,
//   - is not an excluded weekday,
//   - has scheduled hours > 0.
//
// The empty range yields nil. An inverted range or holiday is an InvalidRangeError.
// The function is pure; the planning Engine memoizes it.
func WorkingDays(rng DateRange, schedule WeeklySchedule, holidays []Holiday, exclusions WeekdaySet) ([]Date, error) {
	if rng.IsEmpty() {
		return nil, nil
	}
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	relevant := Holidays(holidays)
	if err := relevant.Validate(); err != nil {
		return nil, err
	}
	relevant = relevant.Within(rng)

	// Hours per weekday are resolved once, not once per day.
	var working [7]bool
	for wd := range working {
		working[wd] = schedule.HoursOn(time.Weekday(wd)) > 0 && !exclusions.Has(time.Weekday(wd))
	}

	var days []Date
	for current := rng.Start; current.BeforeOrEqual(rng.End); current = current.AddDays(1) {
		if !working[current.Weekday()] {
			continue
		}
		if relevant.Contains(current) {
			continue
		}
		days = append(days, current)
	}
	return days, nil
}

// Capacity sums the scheduled hours over the given working days.
func Capacity(days []Date, schedule WeeklySchedule) float64 {
	var total float64
	for _, d := range days {
		total += schedule.HoursOn(d.Weekday())
	}
	return total
}

// IsWorkingDay checks a single date with the same rules as WorkingDays.
func IsWorkingDay(d Date, schedule WeeklySchedule, holidays []Holiday, exclusions WeekdaySet) bool {
	if exclusions.Has(d.Weekday()) || schedule.HoursOn(d.Weekday()) <= 0 {
		return false
	}
	return !Holidays(holidays).Contains(d)
}
