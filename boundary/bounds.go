/*
Package boundary keeps phase boundaries legal while a user drags them.

PURPOSE:
  Phases of one project never overlap and each spans at least one day. This
  package computes how far a boundary may move before breaking that rule,
  clamps candidate dates into the legal range, and models a drag as a value
  that moves through Idle -> Resizing -> Committed | Cancelled.

BOUNDS (phases ordered by deadline):
  resize-start  min = previous end + 1         max = own end - 1
  resize-end    min = own start + 1            max = next start - 1
  move          min = previous end + 1         max = next start - 1 - length
                (bounds apply to the new start; the end follows)

  A nil bound means no neighbour on that side; the caller locks it to the
  project edge. When the next phase has no start, its deadline minus one
  day stands in for "next start - 1".

  Bounds are computed from the phases themselves, never from what is visible
  on screen, so they do not change as the user scrolls.

SEE ALSO:
  - drag.go: the drag state machine
  - layout.go: overlap validation on commit
*/
package boundary

import (
	"fmt"

	"github.com/warp/timeline-engine/calendar"
	"github.com/warp/timeline-engine/planning"
)

// Action is the kind of drag being performed.
type Action string

const (
	ResizeStart Action = "resize-start"
	ResizeEnd   Action = "resize-end"
	Move        Action = "move"
)

// ParseAction validates an action name.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ResizeStart, ResizeEnd, Move:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// Bounds is the legal, inclusive range for the active boundary.
type Bounds struct {
	MinDate *calendar.Date
	MaxDate *calendar.Date
}

// Clamp moves d into the bounds. A nil bound does not constrain.
func (b Bounds) Clamp(d calendar.Date) calendar.Date {
	if b.MaxDate != nil && d.After(*b.MaxDate) {
		d = *b.MaxDate
	}
	if b.MinDate != nil && d.Before(*b.MinDate) {
		d = *b.MinDate
	}
	return d
}

// Contains reports whether d lies inside the bounds.
func (b Bounds) Contains(d calendar.Date) bool {
	return (b.MinDate == nil || !d.Before(*b.MinDate)) && (b.MaxDate == nil || !d.After(*b.MaxDate))
}

// Resolve computes the bounds for dragging one boundary of the target phase.
func Resolve(phases []planning.Phase, targetID planning.PhaseID, action Action) (Bounds, error) {
	ordered, idx, err := locate(phases, targetID)
	if err != nil {
		return Bounds{}, err
	}
	target := ordered[idx]

	var afterPrev, beforeNext *calendar.Date
	if idx > 0 {
		afterPrev = planning.DatePtr(ordered[idx-1].End.AddDays(1))
	}
	if idx < len(ordered)-1 {
		next := ordered[idx+1]
		limit := next.End
		if next.Start != nil {
			limit = *next.Start
		}
		beforeNext = planning.DatePtr(limit.AddDays(-1))
	}

	switch action {
	case ResizeStart:
		if target.Start == nil {
			return Bounds{}, noStart(target)
		}
		return Bounds{MinDate: afterPrev, MaxDate: planning.DatePtr(target.End.AddDays(-1))}, nil

	case ResizeEnd:
		b := Bounds{MaxDate: beforeNext}
		switch {
		case target.Start != nil:
			b.MinDate = planning.DatePtr(target.Start.AddDays(1))
		case afterPrev != nil:
			// Implicit start is the day after the previous deadline.
			b.MinDate = planning.DatePtr(afterPrev.AddDays(1))
		}
		return b, nil

	case Move:
		if target.Start == nil {
			return Bounds{}, noStart(target)
		}
		b := Bounds{MinDate: afterPrev}
		if beforeNext != nil {
			length := calendar.DaysBetween(*target.Start, target.End)
			b.MaxDate = planning.DatePtr(beforeNext.AddDays(-length))
		}
		return b, nil
	}
	return Bounds{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
}

// locate orders the fixed phases by deadline and finds the target.
func locate(phases []planning.Phase, targetID planning.PhaseID) ([]planning.Phase, int, error) {
	idx, err := planning.FindPhase(phases, targetID)
	if err != nil {
		return nil, -1, err
	}
	if phases[idx].IsTemplate() {
		return nil, -1, fmt.Errorf("%w: template %s has no draggable boundaries", planning.ErrInvalidPhase, targetID)
	}
	ordered := planning.SortByDeadline(planning.FixedPhases(phases))
	idx, _ = planning.FindPhase(ordered, targetID)
	return ordered, idx, nil
}

func noStart(p planning.Phase) error {
	return fmt.Errorf("%w: phase %s has no start date", planning.ErrInvalidPhase, p.ID)
}
