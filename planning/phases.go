package planning

import (
	"fmt"
	"sort"
)

// ValidatePhaseSet enforces the per-project phase rules:
//   - at most one recurring template,
//   - a template never shares a project with fixed phases,
//   - a template carries a recurrence config.
func ValidatePhaseSet(phases []Phase) error {
	var templates, fixed int
	var projectID ProjectID
	for _, p := range phases {
		projectID = p.ProjectID
		switch p.Kind {
		case KindRecurring:
			templates++
			if p.Recurrence == nil {
				return &PhaseSetError{ProjectID: projectID, Err: fmt.Errorf("%w: template %s has no recurrence", ErrInvalidPhase, p.ID)}
			}
		case KindFixed:
			fixed++
		default:
			return &PhaseSetError{ProjectID: projectID, Err: fmt.Errorf("%w: phase %s has unknown kind %q", ErrInvalidPhase, p.ID, p.Kind)}
		}
		if p.TimeAllocation < 0 {
			return &PhaseSetError{ProjectID: projectID, Err: fmt.Errorf("%w: phase %s has negative allocation", ErrInvalidPhase, p.ID)}
		}
	}
	if templates > 1 {
		return &PhaseSetError{ProjectID: projectID, Err: ErrMultipleTemplates}
	}
	if templates == 1 && fixed > 0 {
		return &PhaseSetError{ProjectID: projectID, Err: ErrMixedPhaseKinds}
	}
	return nil
}

// Template returns the project's recurring template, if any.
func Template(phases []Phase) (Phase, bool) {
	for _, p := range phases {
		if p.IsTemplate() {
			return p, true
		}
	}
	return Phase{}, false
}

// FixedPhases returns the non-template phases.
func FixedPhases(phases []Phase) []Phase {
	out := make([]Phase, 0, len(phases))
	for _, p := range phases {
		if !p.IsTemplate() {
			out = append(out, p)
		}
	}
	return out
}

// SortByDeadline returns a copy sorted by deadline, ties by ID.
func SortByDeadline(phases []Phase) []Phase {
	out := append([]Phase(nil), phases...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].End.Equal(out[j].End) {
			return out[i].End.Before(out[j].End)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// FindPhase returns the index of the phase with the given ID.
func FindPhase(phases []Phase, id PhaseID) (int, error) {
	for i, p := range phases {
		if p.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrPhaseNotFound, id)
}
