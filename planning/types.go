/*
Package planning provides the phase allocation engine.

PURPOSE:
  A project carries an hour budget and a set of phases (milestones), each with
  a deadline and an hour allocation. This package answers "how many hours per
  day does each stretch of the timeline need?" and "does the plan fit the
  budget?". It works on immutable snapshots handed in by the caller and never
  touches storage.

KEY CONCEPTS IN THIS FILE (types.go):
  - Phase:         Tagged union. Kind fixed = a stored milestone with a deadline.
                   Kind recurring = a template expanded into occurrences on demand.
  - Project:       Window, budget and weekday exclusions.
  - CalendarEvent: Time already planned against a project.
  - Segment:       Derived span between consecutive deadlines with its hour rate.
  - PhaseUpdate:   The only write the engine ever asks the repository to make.

DESIGN PRINCIPLES:
  1. Immutability: Inputs are snapshots, outputs are new values.
  2. Explicit kinds: "is this recurring" is decided once, in factory, via Kind.
  3. Plain hours: float64 hours everywhere, rounding is a presentation concern.

USAGE:
  segments, err := planning.Allocate(planning.AllocationInput{
      ProjectID: project.ID,
      Phases:    phases,
      Window:    project.Window(calendar.DateOf(time.Now())),
      Budget:    project.EstimatedHours,
      Schedule:  schedule,
  })

SEE ALSO:
  - allocate.go: Segment allocation
  - budget.go: Budget validation
  - engine.go: Memoized front door used by the API
  - boundary/: Drag bounds on top of these types
*/
package planning

import (
	"time"

	"github.com/warp/timeline-engine/calendar"
	"github.com/warp/timeline-engine/recurrence"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ProjectID string
type PhaseID string

// =============================================================================
// PHASE - Fixed milestone or recurring template
// =============================================================================

type PhaseKind string

const (
	KindFixed     PhaseKind = "fixed"
	KindRecurring PhaseKind = "recurring"
)

// Phase is a budgeted checkpoint within a project.
//
// For KindFixed, End is the deadline and Start is optional.
// For KindRecurring, Recurrence is set and TimeAllocation is per occurrence;
// Start/End are ignored by allocation.
type Phase struct {
	ID             PhaseID
	ProjectID      ProjectID
	Name           string
	Kind           PhaseKind
	Start          *calendar.Date
	End            calendar.Date
	TimeAllocation float64
	Recurrence     *recurrence.Config
}

// IsTemplate reports whether the phase is a recurring template.
func (p Phase) IsTemplate() bool { return p.Kind == KindRecurring }

// Deadline is the phase's end date.
func (p Phase) Deadline() calendar.Date { return p.End }

// Range returns [Start, End]; ok is false when the phase has no start.
func (p Phase) Range() (calendar.DateRange, bool) {
	if p.Start == nil {
		return calendar.DateRange{}, false
	}
	return calendar.DateRange{Start: *p.Start, End: p.End}, true
}

// DatePtr returns a pointer to a copy of d.
func DatePtr(d calendar.Date) *calendar.Date { return &d }

// =============================================================================
// PROJECT
// =============================================================================

// ContinuousHorizonDays is how far ahead a continuous project's window reaches.
const ContinuousHorizonDays = 365

// Project owns phases and the budget they allocate against.
type Project struct {
	ID             ProjectID
	Name           string
	Start          calendar.Date
	End            calendar.Date
	Continuous     bool
	EstimatedHours float64
	Exclusions     calendar.WeekdaySet
}

// Window returns the project's effective date range. Continuous projects ignore
// End and look ContinuousHorizonDays ahead of asOf (or of Start, if later).
func (p Project) Window(asOf calendar.Date) calendar.DateRange {
	if !p.Continuous {
		return calendar.DateRange{Start: p.Start, End: p.End}
	}
	from := calendar.Max(p.Start, asOf)
	return calendar.DateRange{Start: p.Start, End: from.AddDays(ContinuousHorizonDays)}
}

// =============================================================================
// CALENDAR EVENT - Planned time
// =============================================================================

// CalendarEvent is time already scheduled against a project.
type CalendarEvent struct {
	ID        string
	ProjectID ProjectID
	Title     string
	Start     time.Time
	End       time.Time
}

// Day is the calendar day the event is counted on.
func (e CalendarEvent) Day() calendar.Date { return calendar.DateOf(e.Start) }

// PlannedHours returns the event's duration in hours, clipped at the midnight
// following its start. Inverted events count as zero.
func (e CalendarEvent) PlannedHours() float64 {
	end := e.End
	midnight := time.Date(e.Start.Year(), e.Start.Month(), e.Start.Day()+1, 0, 0, 0, 0, e.Start.Location())
	if end.After(midnight) {
		end = midnight
	}
	if !end.After(e.Start) {
		return 0
	}
	return end.Sub(e.Start).Hours()
}

// =============================================================================
// SEGMENT - Derived, never persisted
// =============================================================================

// Segment is the span of days leading up to one deadline (or, when Trailing,
// the span after the last deadline that holds the unallocated budget).
//
// A zero-length segment has Start after End and no working days.
type Segment struct {
	Start      calendar.Date
	End        calendar.Date
	Phase      *Phase // nil for the trailing segment
	TemplateID PhaseID
	Occurrence int // 1-based occurrence number for recurring templates, 0 otherwise
	Trailing   bool

	AllocatedHours float64
	PlannedHours   float64
	RemainingHours float64
	WorkingDays    []calendar.Date
	HoursPerDay    float64
	CapacityHours  float64
}

// IsEmpty reports a zero-length segment.
func (s Segment) IsEmpty() bool { return s.Start.After(s.End) }

// OverCapacity reports whether the auto-estimate exceeds scheduled hours.
func (s Segment) OverCapacity() bool {
	return s.RemainingHours > s.CapacityHours
}

// =============================================================================
// PHASE UPDATE - Written on drag commit only
// =============================================================================

// PhaseUpdate is a partial change to a phase's boundaries. A changed end is
// written to both End and DueDate so the two deadline fields stay in sync.
type PhaseUpdate struct {
	PhaseID PhaseID
	Start   *calendar.Date
	End     *calendar.Date
	DueDate *calendar.Date
}

// Apply returns a copy of p with the update applied.
func (u PhaseUpdate) Apply(p Phase) Phase {
	if u.Start != nil {
		p.Start = DatePtr(*u.Start)
	}
	if u.End != nil {
		p.End = *u.End
	} else if u.DueDate != nil {
		p.End = *u.DueDate
	}
	return p
}
