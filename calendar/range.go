package calendar

// =============================================================================
// DATE RANGE - Inclusive span of days
// =============================================================================

// DateRange is an inclusive span of days [Start, End].
// The zero value is the empty range.
//
// Examples:
//   - A project window: Jan 1 - Jan 31
//   - A holiday:        Dec 24 - Dec 26
//   - A segment:        the day after the previous deadline through this deadline
type DateRange struct {
	Start Date
	End   Date
}

// NewDateRange validates and returns a range.
func NewDateRange(start, end Date) (DateRange, error) {
	r := DateRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// Validate fails with InvalidRangeError when Start is after End.
func (r DateRange) Validate() error {
	if r.Start.After(r.End) {
		return &InvalidRangeError{Start: r.Start, End: r.End}
	}
	return nil
}

// IsEmpty reports whether the range is the zero value.
func (r DateRange) IsEmpty() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Contains returns true if the date is within [Start, End].
func (r DateRange) Contains(d Date) bool {
	return d.AfterOrEqual(r.Start) && d.BeforeOrEqual(r.End)
}

// ContainsRange reports whether other lies entirely inside r.
func (r DateRange) ContainsRange(other DateRange) bool {
	return r.Contains(other.Start) && r.Contains(other.End)
}

// Overlaps reports whether the two ranges share at least one day.
func (r DateRange) Overlaps(other DateRange) bool {
	return !r.End.Before(other.Start) && !other.End.Before(r.Start)
}

// Len returns the number of days in the range, 0 for an empty or inverted range.
func (r DateRange) Len() int {
	if r.IsEmpty() || r.Start.After(r.End) {
		return 0
	}
	return DaysBetween(r.Start, r.End) + 1
}

// Days returns every day in the range in ascending order.
func (r DateRange) Days() []Date {
	if r.Len() == 0 {
		return nil
	}
	days := make([]Date, 0, r.Len())
	for current := r.Start; current.BeforeOrEqual(r.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// String returns a string representation of the range.
func (r DateRange) String() string {
	return "[" + r.Start.String() + ", " + r.End.String() + "]"
}
