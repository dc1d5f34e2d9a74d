package planning

import (
	"context"
	"fmt"

	"github.com/warp/timeline-engine/calendar"
)

// =============================================================================
// COLLABORATOR INTERFACES
// =============================================================================

// Repository reads project snapshots and applies committed phase updates.
// UpdatePhase is only called on drag commit, never during a move.
type Repository interface {
	GetProject(ctx context.Context, id ProjectID) (Project, error)
	ListPhases(ctx context.Context, projectID ProjectID) ([]Phase, error)
	ListEvents(ctx context.Context, projectID ProjectID) ([]CalendarEvent, error)
	UpdatePhase(ctx context.Context, update PhaseUpdate) error
}

// CalendarSource provides the workspace's schedule and holidays.
type CalendarSource interface {
	Schedule(ctx context.Context) (calendar.WeeklySchedule, error)
	Holidays(ctx context.Context) ([]calendar.Holiday, error)
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot is everything one project computation reads, captured at once.
type Snapshot struct {
	Project  Project
	Phases   []Phase
	Events   []CalendarEvent
	Schedule calendar.WeeklySchedule
	Holidays []calendar.Holiday
}

// LoadSnapshot reads a project snapshot from its collaborators.
func LoadSnapshot(ctx context.Context, repo Repository, src CalendarSource, id ProjectID) (Snapshot, error) {
	project, err := repo.GetProject(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	phases, err := repo.ListPhases(ctx, id)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list phases: %w", err)
	}
	events, err := repo.ListEvents(ctx, id)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list events: %w", err)
	}
	schedule, err := src.Schedule(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load schedule: %w", err)
	}
	holidays, err := src.Holidays(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load holidays: %w", err)
	}
	return Snapshot{
		Project:  project,
		Phases:   phases,
		Events:   events,
		Schedule: schedule,
		Holidays: holidays,
	}, nil
}

// AllocationInput builds the allocator input for the snapshot as of a date.
func (s Snapshot) AllocationInput(asOf calendar.Date) AllocationInput {
	return AllocationInput{
		ProjectID:  s.Project.ID,
		Phases:     s.Phases,
		Window:     s.Project.Window(asOf),
		Budget:     s.Project.EstimatedHours,
		Schedule:   s.Schedule,
		Holidays:   s.Holidays,
		Events:     s.Events,
		Exclusions: s.Project.Exclusions,
	}
}

// Budget validates the snapshot's phases against the project estimate.
func (s Snapshot) Budget(excludePhaseID PhaseID) BudgetReport {
	return Validate(s.Phases, s.Project.EstimatedHours, excludePhaseID)
}
