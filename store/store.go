// Package store defines persistence for projects, phases, events and the
// workspace calendar. Implementations live in store/memory and store/sqlite.
package store

import (
	"context"
	"errors"

	"github.com/warp/timeline-engine/calendar"
	"github.com/warp/timeline-engine/planning"
)

// ErrHolidayNotFound is returned when deleting an unknown holiday.
var ErrHolidayNotFound = errors.New("holiday not found")

// Store is the read side the planning engine consumes plus the writes the
// API performs. Missing projects and phases are reported with
// planning.ErrProjectNotFound and planning.ErrPhaseNotFound.
type Store interface {
	planning.Repository
	planning.CalendarSource

	ListProjects(ctx context.Context) ([]planning.Project, error)
	SaveProject(ctx context.Context, p planning.Project) error

	// SavePhase inserts or replaces a phase. Phase set rules are the caller's job.
	SavePhase(ctx context.Context, p planning.Phase) error
	DeletePhase(ctx context.Context, id planning.PhaseID) error

	SaveEvent(ctx context.Context, e planning.CalendarEvent) error

	SaveSchedule(ctx context.Context, s calendar.WeeklySchedule) error
	SaveHoliday(ctx context.Context, h calendar.Holiday) error
	DeleteHoliday(ctx context.Context, id string) error

	// Reset removes all data and restores the standard week.
	Reset(ctx context.Context) error
}

// DefaultHoursPerDay is the Monday-Friday schedule a new store starts with.
const DefaultHoursPerDay = 8
