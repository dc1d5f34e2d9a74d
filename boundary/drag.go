package boundary

import (
	"fmt"
	"math"

	"github.com/warp/timeline-engine/calendar"
	"github.com/warp/timeline-engine/planning"
)

// =============================================================================
// VIEWPORT - pixel to day conversion
// =============================================================================

// Mode is the timeline zoom level.
type Mode string

const (
	ModeDays  Mode = "days"
	ModeWeeks Mode = "weeks"
)

// Default pixel widths of one day per mode.
const (
	DefaultDayModePixels  = 40.0
	DefaultWeekModePixels = 11.0
)

// Viewport maps pointer movement to days. PixelsPerDay overrides the mode default.
type Viewport struct {
	Mode         Mode
	PixelsPerDay float64
}

// DayDelta converts a pixel offset to a whole number of days, rounding to nearest.
func (v Viewport) DayDelta(pixels float64) int {
	ppd := v.PixelsPerDay
	if ppd <= 0 {
		ppd = DefaultDayModePixels
		if v.Mode == ModeWeeks {
			ppd = DefaultWeekModePixels
		}
	}
	return int(math.Round(pixels / ppd))
}

// =============================================================================
// DRAG - Idle -> Resizing -> Committed | Cancelled
// =============================================================================

// State is a drag's lifecycle position.
type State string

const (
	Idle      State = "idle"
	Resizing  State = "resizing"
	Committed State = "committed"
	Cancelled State = "cancelled"
)

// Drag is one in-flight boundary drag. It is a value: every transition
// returns a new Drag and leaves the receiver unchanged.
type Drag struct {
	State         State
	PhaseID       planning.PhaseID
	Action        Action
	OriginalStart *calendar.Date
	OriginalEnd   calendar.Date
	Bounds        Bounds

	// Candidate is the clamped date of the active boundary (the start for move).
	Candidate calendar.Date

	phases []planning.Phase
}

// Begin captures the phase's boundaries and bounds and enters Resizing.
func Begin(phases []planning.Phase, id planning.PhaseID, action Action) (Drag, error) {
	bounds, err := Resolve(phases, id, action)
	if err != nil {
		return Drag{State: Idle}, err
	}
	idx, _ := planning.FindPhase(phases, id)
	p := phases[idx]

	d := Drag{
		State:       Resizing,
		PhaseID:     id,
		Action:      action,
		OriginalEnd: p.End,
		Bounds:      bounds,
		phases:      append([]planning.Phase(nil), phases...),
	}
	if p.Start != nil {
		d.OriginalStart = planning.DatePtr(*p.Start)
	}
	d.Candidate = d.original()
	return d, nil
}

// original is the active boundary's date at drag start.
func (d Drag) original() calendar.Date {
	if d.Action == ResizeEnd {
		return d.OriginalEnd
	}
	return *d.OriginalStart
}

// Move sets the candidate to the original date shifted by the pixel offset
// measured from the drag start, clamped into bounds. A move outside Resizing
// is ignored.
func (d Drag) Move(pixelDelta float64, vp Viewport) Drag {
	if d.State != Resizing {
		return d
	}
	d.Candidate = d.Bounds.Clamp(d.original().AddDays(vp.DayDelta(pixelDelta)))
	return d
}

// MoveTo sets the candidate to a date directly, clamped into bounds.
func (d Drag) MoveTo(date calendar.Date) Drag {
	if d.State != Resizing {
		return d
	}
	d.Candidate = d.Bounds.Clamp(date)
	return d
}

// Changed reports whether the candidate differs from the original.
func (d Drag) Changed() bool {
	return d.State == Resizing && !d.Candidate.Equal(d.original())
}

// Commit ends the drag. The update is nil when nothing changed. A changed end
// is written to both End and DueDate. On error the drag stays Resizing so the
// caller can cancel it; nothing is applied.
func (d Drag) Commit() (Drag, *planning.PhaseUpdate, error) {
	if d.State != Resizing {
		return d, nil, fmt.Errorf("%w: drag is %s", ErrNotDragging, d.State)
	}
	if !d.Changed() {
		d.State = Committed
		return d, nil, nil
	}

	update := &planning.PhaseUpdate{PhaseID: d.PhaseID}
	switch d.Action {
	case ResizeStart:
		update.Start = planning.DatePtr(d.Candidate)
	case ResizeEnd:
		update.End = planning.DatePtr(d.Candidate)
		update.DueDate = planning.DatePtr(d.Candidate)
	case Move:
		shift := calendar.DaysBetween(*d.OriginalStart, d.Candidate)
		end := d.OriginalEnd.AddDays(shift)
		update.Start = planning.DatePtr(d.Candidate)
		update.End = planning.DatePtr(end)
		update.DueDate = planning.DatePtr(end)
	}

	if _, err := ApplyUpdate(d.phases, *update); err != nil {
		return d, nil, err
	}
	d.State = Committed
	return d, update, nil
}

// Cancel abandons the drag. Nothing is written.
func (d Drag) Cancel() Drag {
	if d.State == Resizing || d.State == Idle {
		d.State = Cancelled
		d.Candidate = calendar.Date{}
	}
	return d
}
