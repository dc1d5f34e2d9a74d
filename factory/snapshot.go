/*
Package factory converts project documents into planning types.

PURPOSE:
  Projects, phases, events, schedules and holidays arrive as JSON (API bodies)
  or YAML (snapshot files for the CLI). This is the one place that decides
  whether a phase is a recurring template, so everything downstream switches
  on planning.PhaseKind instead of re-deriving it from which fields are set.

JSON SCHEMA (YAML uses the same keys):
  {
    "project": {
      "id": "website", "name": "Website relaunch",
      "start_date": "2025-01-01", "end_date": "2025-01-31",
      "estimated_hours": 80, "excluded_weekdays": ["friday"]
    },
    "phases": [
      {"id": "design", "name": "Design", "end_date": "2025-01-15", "time_allocation": 40},
      {"id": "review", "is_recurring": true, "time_allocation": 2,
       "recurrence": {"type": "weekly", "interval": 1, "weekly_day_of_week": 1}}
    ],
    "events":   [{"id": "e1", "start_time": "2025-01-02T09:00:00Z", "end_time": "2025-01-02T12:00:00Z"}],
    "schedule": {"monday": [{"start_time": "09:00", "end_time": "17:00", "duration": 8}]},
    "holidays": [{"id": "ny", "name": "New Year", "start_date": "2025-01-01", "end_date": "2025-01-01"}]
  }

RESOLUTION RULES:
  - is_recurring decides the kind; recurrence is ignored on fixed phases.
  - end_date and due_date both name the deadline; end_date wins when both
    are present and differ.
  - A fixed phase needs a deadline. A template needs a valid recurrence.
  - A missing schedule becomes the factory's standard week.

SEE ALSO:
  - planning/types.go: target types
  - api/dto.go: response shapes
*/
package factory

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/warp/timeline-engine/calendar"
	"github.com/warp/timeline-engine/planning"
	"github.com/warp/timeline-engine/recurrence"
)

// =============================================================================
// DOCUMENT TYPES
// =============================================================================

// ProjectJSON is the document form of a project.
type ProjectJSON struct {
	ID               string   `json:"id" yaml:"id"`
	Name             string   `json:"name" yaml:"name"`
	StartDate        string   `json:"start_date" yaml:"start_date"`
	EndDate          string   `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	Continuous       bool     `json:"continuous,omitempty" yaml:"continuous,omitempty"`
	EstimatedHours   float64  `json:"estimated_hours" yaml:"estimated_hours"`
	ExcludedWeekdays []string `json:"excluded_weekdays,omitempty" yaml:"excluded_weekdays,omitempty"`
}

// PhaseJSON is the document form of a phase.
type PhaseJSON struct {
	ID             string             `json:"id" yaml:"id"`
	ProjectID      string             `json:"project_id,omitempty" yaml:"project_id,omitempty"`
	Name           string             `json:"name,omitempty" yaml:"name,omitempty"`
	StartDate      string             `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate        string             `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	DueDate        string             `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	TimeAllocation float64            `json:"time_allocation" yaml:"time_allocation"`
	IsRecurring    bool               `json:"is_recurring,omitempty" yaml:"is_recurring,omitempty"`
	Recurrence     *recurrence.Config `json:"recurrence,omitempty" yaml:"recurrence,omitempty"`
}

// EventJSON is the document form of a calendar event.
type EventJSON struct {
	ID        string    `json:"id" yaml:"id"`
	ProjectID string    `json:"project_id,omitempty" yaml:"project_id,omitempty"`
	Title     string    `json:"title,omitempty" yaml:"title,omitempty"`
	StartTime time.Time `json:"start_time" yaml:"start_time"`
	EndTime   time.Time `json:"end_time" yaml:"end_time"`
}

// HolidayJSON is the document form of a holiday.
type HolidayJSON struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	StartDate string `json:"start_date" yaml:"start_date"`
	EndDate   string `json:"end_date,omitempty" yaml:"end_date,omitempty"`
}

// ScheduleJSON maps lower-case weekday names to work slots.
type ScheduleJSON map[string][]calendar.WorkSlot

// SnapshotJSON is a complete project document.
type SnapshotJSON struct {
	Project  ProjectJSON   `json:"project" yaml:"project"`
	Phases   []PhaseJSON   `json:"phases" yaml:"phases"`
	Events   []EventJSON   `json:"events,omitempty" yaml:"events,omitempty"`
	Schedule ScheduleJSON  `json:"schedule,omitempty" yaml:"schedule,omitempty"`
	Holidays []HolidayJSON `json:"holidays,omitempty" yaml:"holidays,omitempty"`
}

// =============================================================================
// FACTORY
// =============================================================================

// DefaultHoursPerDay is the standard week used when a document has no schedule.
const DefaultHoursPerDay = 8

// Factory converts documents to planning types.
type Factory struct {
	// HoursPerDay for the Monday-Friday week used when no schedule is given.
	HoursPerDay float64
}

// New creates a factory with the default standard week.
func New() *Factory {
	return &Factory{HoursPerDay: DefaultHoursPerDay}
}

// ParseSnapshot parses a JSON project document.
func (f *Factory) ParseSnapshot(data []byte) (planning.Snapshot, error) {
	var doc SnapshotJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return planning.Snapshot{}, fmt.Errorf("failed to parse snapshot JSON: %w", err)
	}
	return f.FromJSON(doc)
}

// ParseSnapshotYAML parses a YAML project document.
func (f *Factory) ParseSnapshotYAML(data []byte) (planning.Snapshot, error) {
	var doc SnapshotJSON
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return planning.Snapshot{}, fmt.Errorf("failed to parse snapshot YAML: %w", err)
	}
	return f.FromJSON(doc)
}

// FromJSON converts a document into a snapshot. Phases and events inherit
// the project's ID when they carry none.
func (f *Factory) FromJSON(doc SnapshotJSON) (planning.Snapshot, error) {
	project, err := f.Project(doc.Project)
	if err != nil {
		return planning.Snapshot{}, err
	}

	snap := planning.Snapshot{Project: project}
	for _, pj := range doc.Phases {
		if pj.ProjectID == "" {
			pj.ProjectID = doc.Project.ID
		}
		phase, err := f.Phase(pj)
		if err != nil {
			return planning.Snapshot{}, err
		}
		snap.Phases = append(snap.Phases, phase)
	}
	if err := planning.ValidatePhaseSet(snap.Phases); err != nil {
		return planning.Snapshot{}, err
	}

	for _, ej := range doc.Events {
		if ej.ProjectID == "" {
			ej.ProjectID = doc.Project.ID
		}
		snap.Events = append(snap.Events, f.Event(ej))
	}

	snap.Schedule, err = f.Schedule(doc.Schedule)
	if err != nil {
		return planning.Snapshot{}, err
	}

	for _, hj := range doc.Holidays {
		h, err := f.Holiday(hj)
		if err != nil {
			return planning.Snapshot{}, err
		}
		snap.Holidays = append(snap.Holidays, h)
	}
	return snap, nil
}

// Project converts a project document.
func (f *Factory) Project(pj ProjectJSON) (planning.Project, error) {
	if pj.ID == "" {
		return planning.Project{}, fmt.Errorf("project requires id")
	}
	start, err := calendar.ParseDate(pj.StartDate)
	if err != nil {
		return planning.Project{}, fmt.Errorf("project %s: invalid start_date: %w", pj.ID, err)
	}

	project := planning.Project{
		ID:             planning.ProjectID(pj.ID),
		Name:           pj.Name,
		Start:          start,
		Continuous:     pj.Continuous,
		EstimatedHours: pj.EstimatedHours,
	}
	if !pj.Continuous {
		if project.End, err = calendar.ParseDate(pj.EndDate); err != nil {
			return planning.Project{}, fmt.Errorf("project %s: invalid end_date: %w", pj.ID, err)
		}
		if _, err := calendar.NewDateRange(project.Start, project.End); err != nil {
			return planning.Project{}, fmt.Errorf("project %s: %w", pj.ID, err)
		}
	}
	for _, name := range pj.ExcludedWeekdays {
		wd, err := ParseWeekday(name)
		if err != nil {
			return planning.Project{}, fmt.Errorf("project %s: %w", pj.ID, err)
		}
		project.Exclusions = project.Exclusions.Add(wd)
	}
	return project, nil
}

// Phase converts a phase document and resolves its kind and deadline.
func (f *Factory) Phase(pj PhaseJSON) (planning.Phase, error) {
	if pj.ID == "" {
		return planning.Phase{}, fmt.Errorf("%w: phase requires id", planning.ErrInvalidPhase)
	}
	phase := planning.Phase{
		ID:             planning.PhaseID(pj.ID),
		ProjectID:      planning.ProjectID(pj.ProjectID),
		Name:           pj.Name,
		TimeAllocation: pj.TimeAllocation,
	}

	if pj.IsRecurring {
		if pj.Recurrence == nil {
			return planning.Phase{}, fmt.Errorf("%w: recurring phase %s requires recurrence", planning.ErrInvalidPhase, pj.ID)
		}
		if err := pj.Recurrence.Validate(); err != nil {
			return planning.Phase{}, fmt.Errorf("phase %s: %w", pj.ID, err)
		}
		cfg := *pj.Recurrence
		phase.Kind = planning.KindRecurring
		phase.Recurrence = &cfg
		return phase, nil
	}

	phase.Kind = planning.KindFixed
	deadline := pj.EndDate
	if deadline == "" {
		deadline = pj.DueDate
	}
	if deadline == "" {
		return planning.Phase{}, fmt.Errorf("%w: phase %s requires end_date or due_date", planning.ErrInvalidPhase, pj.ID)
	}
	end, err := calendar.ParseDate(deadline)
	if err != nil {
		return planning.Phase{}, fmt.Errorf("%w: phase %s: %v", planning.ErrInvalidPhase, pj.ID, err)
	}
	phase.End = end

	if pj.StartDate != "" {
		start, err := calendar.ParseDate(pj.StartDate)
		if err != nil {
			return planning.Phase{}, fmt.Errorf("%w: phase %s: %v", planning.ErrInvalidPhase, pj.ID, err)
		}
		if _, err := calendar.NewDateRange(start, end); err != nil {
			return planning.Phase{}, fmt.Errorf("phase %s: %w", pj.ID, err)
		}
		phase.Start = &start
	}
	return phase, nil
}

// Event converts an event document.
func (f *Factory) Event(ej EventJSON) planning.CalendarEvent {
	return planning.CalendarEvent{
		ID:        ej.ID,
		ProjectID: planning.ProjectID(ej.ProjectID),
		Title:     ej.Title,
		Start:     ej.StartTime,
		End:       ej.EndTime,
	}
}

// Holiday converts a holiday document. A missing end date means a single day.
func (f *Factory) Holiday(hj HolidayJSON) (calendar.Holiday, error) {
	start, err := calendar.ParseDate(hj.StartDate)
	if err != nil {
		return calendar.Holiday{}, fmt.Errorf("holiday %s: invalid start_date: %w", hj.ID, err)
	}
	end := start
	if hj.EndDate != "" {
		if end, err = calendar.ParseDate(hj.EndDate); err != nil {
			return calendar.Holiday{}, fmt.Errorf("holiday %s: invalid end_date: %w", hj.ID, err)
		}
	}
	rng, err := calendar.NewDateRange(start, end)
	if err != nil {
		return calendar.Holiday{}, fmt.Errorf("holiday %s: %w", hj.ID, err)
	}
	return calendar.Holiday{ID: hj.ID, Name: hj.Name, Range: rng}, nil
}

// Schedule converts a schedule document. Empty means the standard week.
func (f *Factory) Schedule(sj ScheduleJSON) (calendar.WeeklySchedule, error) {
	if len(sj) == 0 {
		hours := f.HoursPerDay
		if hours <= 0 {
			hours = DefaultHoursPerDay
		}
		return calendar.StandardWeek(hours), nil
	}
	schedule := calendar.WeeklySchedule{}
	for name, slots := range sj {
		wd, err := ParseWeekday(name)
		if err != nil {
			return nil, fmt.Errorf("schedule: %w", err)
		}
		schedule[wd] = append([]calendar.WorkSlot(nil), slots...)
	}
	return schedule, nil
}

// =============================================================================
// REVERSE CONVERSION
// =============================================================================

// PhaseToJSON converts a phase back to its document form.
func PhaseToJSON(p planning.Phase) PhaseJSON {
	pj := PhaseJSON{
		ID:             string(p.ID),
		ProjectID:      string(p.ProjectID),
		Name:           p.Name,
		TimeAllocation: p.TimeAllocation,
	}
	if p.IsTemplate() {
		pj.IsRecurring = true
		pj.Recurrence = p.Recurrence
		return pj
	}
	pj.EndDate = p.End.String()
	pj.DueDate = p.End.String()
	if p.Start != nil {
		pj.StartDate = p.Start.String()
	}
	return pj
}

// ProjectToJSON converts a project back to its document form.
func ProjectToJSON(p planning.Project) ProjectJSON {
	pj := ProjectJSON{
		ID:             string(p.ID),
		Name:           p.Name,
		StartDate:      p.Start.String(),
		Continuous:     p.Continuous,
		EstimatedHours: p.EstimatedHours,
	}
	if !p.Continuous {
		pj.EndDate = p.End.String()
	}
	for _, wd := range p.Exclusions.List() {
		pj.ExcludedWeekdays = append(pj.ExcludedWeekdays, strings.ToLower(wd.String()))
	}
	return pj
}

// ScheduleToJSON converts a schedule back to its document form.
func ScheduleToJSON(s calendar.WeeklySchedule) ScheduleJSON {
	out := ScheduleJSON{}
	for wd, slots := range s {
		out[strings.ToLower(wd.String())] = slots
	}
	return out
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

// ParseWeekday accepts full or three-letter English names in any case, or 0-6.
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		full := strings.ToLower(wd.String())
		if name == full || name == full[:3] || name == fmt.Sprint(int(wd)) {
			return wd, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}
