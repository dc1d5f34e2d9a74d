package boundary

import (
	"github.com/warp/timeline-engine/calendar"
	"github.com/warp/timeline-engine/planning"
)

// ValidateLayout checks that every fixed phase with a start spans at least one
// day and that no two phases share a date. A phase without a start occupies
// only its deadline.
func ValidateLayout(phases []planning.Phase) error {
	ordered := planning.SortByDeadline(planning.FixedPhases(phases))

	for _, p := range ordered {
		if p.Start != nil && !p.End.After(*p.Start) {
			return &OverlapViolationError{PhaseID: p.ID}
		}
	}
	for i := 0; i < len(ordered); i++ {
		a := span(ordered[i])
		for j := i + 1; j < len(ordered); j++ {
			if a.Overlaps(span(ordered[j])) {
				return &OverlapViolationError{PhaseID: ordered[i].ID, OtherID: ordered[j].ID}
			}
		}
	}
	return nil
}

// ApplyUpdate returns a copy of phases with the update applied, or an error
// (leaving phases untouched) when the result would break the layout.
func ApplyUpdate(phases []planning.Phase, update planning.PhaseUpdate) ([]planning.Phase, error) {
	idx, err := planning.FindPhase(phases, update.PhaseID)
	if err != nil {
		return nil, err
	}
	out := append([]planning.Phase(nil), phases...)
	out[idx] = update.Apply(out[idx])
	if err := ValidateLayout(out); err != nil {
		return nil, err
	}
	return out, nil
}

// span is the phase's occupied range; a phase without a start occupies its
// deadline only.
func span(p planning.Phase) calendar.DateRange {
	if r, ok := p.Range(); ok {
		return r
	}
	return calendar.DateRange{Start: p.End, End: p.End}
}
