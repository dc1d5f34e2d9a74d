// Package memory provides an in-memory store for tests and development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/timeline-engine/calendar"
	"github.com/warp/timeline-engine/planning"
	"github.com/warp/timeline-engine/store"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

// Memory implements store.Store. Values are copied in and out so callers
// never share state with the store.
type Memory struct {
	mu       sync.RWMutex
	projects map[planning.ProjectID]planning.Project
	phases   map[planning.PhaseID]planning.Phase
	events   map[string]planning.CalendarEvent
	schedule calendar.WeeklySchedule
	holidays map[string]calendar.Holiday
}

var _ store.Store = (*Memory)(nil)

// New creates an empty store with the standard week.
func New() *Memory {
	m := &Memory{}
	m.resetLocked()
	return m
}

func (m *Memory) resetLocked() {
	m.projects = make(map[planning.ProjectID]planning.Project)
	m.phases = make(map[planning.PhaseID]planning.Phase)
	m.events = make(map[string]planning.CalendarEvent)
	m.holidays = make(map[string]calendar.Holiday)
	m.schedule = calendar.StandardWeek(store.DefaultHoursPerDay)
}

// Reset removes all data.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
	return nil
}

// =============================================================================
// PROJECTS
// =============================================================================

func (m *Memory) GetProject(_ context.Context, id planning.ProjectID) (planning.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.projects[id]
	if !ok {
		return planning.Project{}, fmt.Errorf("%w: %s", planning.ErrProjectNotFound, id)
	}
	return p, nil
}

func (m *Memory) ListProjects(_ context.Context) ([]planning.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]planning.Project, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) SaveProject(_ context.Context, p planning.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = p
	return nil
}

// =============================================================================
// PHASES
// =============================================================================

// ListPhases returns the project's phases ordered by deadline.
func (m *Memory) ListPhases(_ context.Context, projectID planning.ProjectID) ([]planning.Phase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []planning.Phase
	for _, p := range m.phases {
		if p.ProjectID == projectID {
			out = append(out, clonePhase(p))
		}
	}
	return planning.SortByDeadline(out), nil
}

func (m *Memory) SavePhase(_ context.Context, p planning.Phase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phases[p.ID] = clonePhase(p)
	return nil
}

func (m *Memory) DeletePhase(_ context.Context, id planning.PhaseID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.phases[id]; !ok {
		return fmt.Errorf("%w: %s", planning.ErrPhaseNotFound, id)
	}
	delete(m.phases, id)
	return nil
}

// UpdatePhase applies a committed boundary change.
func (m *Memory) UpdatePhase(_ context.Context, u planning.PhaseUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.phases[u.PhaseID]
	if !ok {
		return fmt.Errorf("%w: %s", planning.ErrPhaseNotFound, u.PhaseID)
	}
	m.phases[u.PhaseID] = u.Apply(p)
	return nil
}

func clonePhase(p planning.Phase) planning.Phase {
	if p.Start != nil {
		p.Start = planning.DatePtr(*p.Start)
	}
	if p.Recurrence != nil {
		cfg := *p.Recurrence
		p.Recurrence = &cfg
	}
	return p
}

// =============================================================================
// EVENTS
// =============================================================================

// ListEvents returns the project's events ordered by start time.
func (m *Memory) ListEvents(_ context.Context, projectID planning.ProjectID) ([]planning.CalendarEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []planning.CalendarEvent
	for _, e := range m.events {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) SaveEvent(_ context.Context, e planning.CalendarEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[e.ID] = e
	return nil
}

// =============================================================================
// CALENDAR
// =============================================================================

func (m *Memory) Schedule(_ context.Context) (calendar.WeeklySchedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneSchedule(m.schedule), nil
}

func (m *Memory) SaveSchedule(_ context.Context, s calendar.WeeklySchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedule = cloneSchedule(s)
	return nil
}

// Holidays returns all holidays ordered by start date.
func (m *Memory) Holidays(_ context.Context) ([]calendar.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]calendar.Holiday, 0, len(m.holidays))
	for _, h := range m.holidays {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Range.Start.Equal(out[j].Range.Start) {
			return out[i].Range.Start.Before(out[j].Range.Start)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) SaveHoliday(_ context.Context, h calendar.Holiday) error {
	if err := h.Range.Validate(); err != nil {
		return fmt.Errorf("holiday %s: %w", h.ID, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holidays[h.ID] = h
	return nil
}

func (m *Memory) DeleteHoliday(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.holidays[id]; !ok {
		return fmt.Errorf("%w: %s", store.ErrHolidayNotFound, id)
	}
	delete(m.holidays, id)
	return nil
}

func cloneSchedule(s calendar.WeeklySchedule) calendar.WeeklySchedule {
	out := make(calendar.WeeklySchedule, len(s))
	for wd, slots := range s {
		out[wd] = append([]calendar.WorkSlot(nil), slots...)
	}
	return out
}
