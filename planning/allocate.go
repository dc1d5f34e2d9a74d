/*
allocate.go - Segment allocation

PURPOSE:
  Splits a project window into contiguous segments, one per phase deadline,
  and works out the auto-estimate for each: the hours per working day still
  needed once already-planned time is subtracted.

ALGORITHM:
  1. Validate the phase set; expand a recurring template into one synthetic
     phase per occurrence, each allocating the template's TimeAllocation.
  2. Sort by deadline.
  3. Segment i runs from the day after the previous deadline (window start
     for the first) through deadline i, inclusive.
  4. Working days come from calendar.WorkingDays.
  5. Planned hours = events of this project that start inside the segment.
  6. Remaining = max(0, allocation - planned); HoursPerDay = Remaining / days.
  7. If the budget exceeds the sum of allocations and the window reaches past
     the last deadline, a trailing segment holds the difference.

EXAMPLE:
  Window Jan 1-31, budget 80h, Mon-Fri schedule, one phase due Jan 15 (40h):
    Jan 1-15   40h / 11 working days = 3.64 h/day
    Jan 16-31  40h / 12 working days = 3.33 h/day (trailing)

SEE ALSO:
  - engine.go: memoized entry point
  - recurrence/expand.go: occurrence expansion
*/
package planning

import (
	"fmt"

	"github.com/warp/timeline-engine/calendar"
	"github.com/warp/timeline-engine/recurrence"
)

// AllocationInput contains everything one allocation depends on.
type AllocationInput struct {
	ProjectID  ProjectID
	Phases     []Phase
	Window     calendar.DateRange
	Budget     float64
	Schedule   calendar.WeeklySchedule
	Holidays   []calendar.Holiday
	Events     []CalendarEvent
	Exclusions calendar.WeekdaySet

	// OccurrenceCap bounds template expansion (recurrence.DefaultCap when 0).
	OccurrenceCap int
}

// WorkingDaysFunc matches calendar.WorkingDays so a memoized version can be injected.
type WorkingDaysFunc func(calendar.DateRange, calendar.WeeklySchedule, []calendar.Holiday, calendar.WeekdaySet) ([]calendar.Date, error)

// Allocator computes segments. The zero value uses calendar.WorkingDays.
type Allocator struct {
	WorkingDays WorkingDaysFunc
}

// Allocate computes segments with the default Allocator.
func Allocate(in AllocationInput) ([]Segment, error) {
	return Allocator{}.Allocate(in)
}

// allocationItem is one deadline to allocate against.
type allocationItem struct {
	phase      Phase
	templateID PhaseID
	occurrence int
}

// Allocate partitions the window into segments.
func (a Allocator) Allocate(in AllocationInput) ([]Segment, error) {
	if err := in.Window.Validate(); err != nil {
		return nil, err
	}
	if len(in.Phases) == 0 {
		return []Segment{}, nil
	}
	if err := ValidatePhaseSet(in.Phases); err != nil {
		return nil, err
	}

	items, err := resolveItems(in)
	if err != nil {
		return nil, err
	}

	workingDays := a.WorkingDays
	if workingDays == nil {
		workingDays = calendar.WorkingDays
	}

	segments := make([]Segment, 0, len(items)+1)
	cursor := in.Window.Start
	var allocated float64

	for _, it := range items {
		phase := it.phase
		seg := Segment{
			Start:          cursor,
			End:            phase.End,
			Phase:          &phase,
			TemplateID:     it.templateID,
			Occurrence:     it.occurrence,
			AllocatedHours: phase.TimeAllocation,
		}
		if err := fillSegment(&seg, in, workingDays); err != nil {
			return nil, fmt.Errorf("segment for phase %s: %w", phase.ID, err)
		}
		segments = append(segments, seg)

		allocated += phase.TimeAllocation
		if !phase.End.Before(cursor) {
			cursor = phase.End.AddDays(1)
		}
	}

	if in.Budget > allocated && cursor.BeforeOrEqual(in.Window.End) {
		seg := Segment{
			Start:          cursor,
			End:            in.Window.End,
			Trailing:       true,
			AllocatedHours: in.Budget - allocated,
		}
		if err := fillSegment(&seg, in, workingDays); err != nil {
			return nil, fmt.Errorf("trailing segment: %w", err)
		}
		segments = append(segments, seg)
	}

	return segments, nil
}

// resolveItems replaces a template with its occurrences and sorts by deadline.
func resolveItems(in AllocationInput) ([]allocationItem, error) {
	template, ok := Template(in.Phases)
	if !ok {
		sorted := SortByDeadline(in.Phases)
		items := make([]allocationItem, 0, len(sorted))
		for _, p := range sorted {
			items = append(items, allocationItem{phase: p})
		}
		return items, nil
	}

	occurrences, err := recurrence.Expand(*template.Recurrence, in.Window, in.OccurrenceCap)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", template.ID, err)
	}
	items := make([]allocationItem, 0, len(occurrences))
	for i, occ := range occurrences {
		items = append(items, allocationItem{
			phase:      OccurrencePhase(template, occ, i+1),
			templateID: template.ID,
			occurrence: i + 1,
		})
	}
	return items, nil
}

// OccurrencePhase builds the synthetic fixed phase for one template occurrence.
func OccurrencePhase(template Phase, occ calendar.Date, n int) Phase {
	name := template.Name
	if name == "" {
		name = string(template.ID)
	}
	return Phase{
		ID:             PhaseID(fmt.Sprintf("%s@%s", template.ID, occ)),
		ProjectID:      template.ProjectID,
		Name:           fmt.Sprintf("%s #%d", name, n),
		Kind:           KindFixed,
		End:            occ,
		TimeAllocation: template.TimeAllocation,
	}
}

// fillSegment computes working days, planned time and the hour rate.
func fillSegment(seg *Segment, in AllocationInput, workingDays WorkingDaysFunc) error {
	if seg.IsEmpty() {
		seg.RemainingHours = seg.AllocatedHours
		return nil
	}

	span := calendar.DateRange{Start: seg.Start, End: seg.End}
	days, err := workingDays(span, in.Schedule, in.Holidays, in.Exclusions)
	if err != nil {
		return err
	}
	seg.WorkingDays = days
	seg.CapacityHours = calendar.Capacity(days, in.Schedule)
	seg.PlannedHours = plannedHours(in.Events, in.ProjectID, span)

	seg.RemainingHours = seg.AllocatedHours - seg.PlannedHours
	if seg.RemainingHours < 0 {
		seg.RemainingHours = 0
	}
	if len(days) > 0 {
		seg.HoursPerDay = seg.RemainingHours / float64(len(days))
	}
	return nil
}

// plannedHours sums the project's events that start inside the span.
func plannedHours(events []CalendarEvent, projectID ProjectID, span calendar.DateRange) float64 {
	var total float64
	for _, e := range events {
		if e.ProjectID != projectID {
			continue
		}
		if !span.Contains(e.Day()) {
			continue
		}
		total += e.PlannedHours()
	}
	return total
}

// TotalAllocated sums AllocatedHours across segments.
func TotalAllocated(segments []Segment) float64 {
	var total float64
	for _, s := range segments {
		total += s.AllocatedHours
	}
	return total
}
