package boundary

import (
	"errors"
	"fmt"

	"github.com/warp/timeline-engine/planning"
)

var (
	// ErrOverlapViolation is returned when a layout breaks the no-overlap or
	// minimum-duration rule. Reachable only when Resolve is bypassed.
	ErrOverlapViolation = errors.New("phase boundaries overlap")

	// ErrUnknownAction is returned for an action other than resize-start, resize-end or move.
	ErrUnknownAction = errors.New("unknown drag action")

	// ErrNotDragging is returned when committing a drag that is not in progress.
	ErrNotDragging = errors.New("no drag in progress")
)

// OverlapViolationError names the phases whose ranges collide. OtherID is
// empty when a single phase is shorter than one day.
type OverlapViolationError struct {
	PhaseID planning.PhaseID
	OtherID planning.PhaseID
}

func (e *OverlapViolationError) Error() string {
	if e.OtherID == "" {
		return fmt.Sprintf("phase %s must span at least one day", e.PhaseID)
	}
	return fmt.Sprintf("phase %s overlaps phase %s", e.PhaseID, e.OtherID)
}

func (e *OverlapViolationError) Unwrap() error { return ErrOverlapViolation }
