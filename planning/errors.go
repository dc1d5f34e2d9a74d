/*
errors.go - Error types for the planning engine

ERROR CATEGORIES:
  1. Lookup errors   - Project or phase does not exist
  2. Phase set rules - Template/fixed mixing, more than one template
  3. Input errors    - Surfaced from calendar and recurrence unchanged

Budget overage is NOT an error. Validate reports it as IsValid=false with an
Overage amount because users may over-allocate on purpose.

SEE ALSO:
  - calendar/errors.go: InvalidRangeError
  - recurrence/errors.go: InvalidRecurrenceConfigError
  - boundary/errors.go: OverlapViolationError
*/
package planning

import (
	"errors"
	"fmt"

	"github.com/warp/timeline-engine/calendar"
	"github.com/warp/timeline-engine/recurrence"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrProjectNotFound is returned when a referenced project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")

	// ErrPhaseNotFound is returned when a referenced phase doesn't exist.
	ErrPhaseNotFound = errors.New("phase not found")

	// ErrMultipleTemplates is returned when a project has more than one recurring template.
	ErrMultipleTemplates = errors.New("project has more than one recurring template")

	// ErrMixedPhaseKinds is returned when templates and fixed phases share a project.
	ErrMixedPhaseKinds = errors.New("recurring templates and fixed phases cannot be mixed")

	// ErrInvalidPhase is returned for a phase that contradicts its own kind.
	ErrInvalidPhase = errors.New("invalid phase")
)

// PhaseSetError reports which rule a project's phase list broke.
type PhaseSetError struct {
	ProjectID ProjectID
	Err       error
}

func (e *PhaseSetError) Error() string {
	return fmt.Sprintf("project %s: %v", e.ProjectID, e.Err)
}

func (e *PhaseSetError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, calendar.ErrInvalidRange) ||
		errors.Is(err, recurrence.ErrInvalidRecurrenceConfig) ||
		errors.Is(err, ErrMultipleTemplates) ||
		errors.Is(err, ErrMixedPhaseKinds) ||
		errors.Is(err, ErrInvalidPhase)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProjectNotFound) || errors.Is(err, ErrPhaseNotFound)
}
