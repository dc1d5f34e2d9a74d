// Package storetest runs the same behavioural checks against every store.Store.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timeline-engine/calendar"
	"github.com/warp/timeline-engine/planning"
	"github.com/warp/timeline-engine/recurrence"
	"github.com/warp/timeline-engine/store"
)

func d(s string) calendar.Date { return calendar.MustParseDate(s) }

// Run exercises s. The store must start empty.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("Projects", func(t *testing.T) { testProjects(t, newStore(t)) })
	t.Run("Phases", func(t *testing.T) { testPhases(t, newStore(t)) })
	t.Run("Template", func(t *testing.T) { testTemplate(t, newStore(t)) })
	t.Run("Events", func(t *testing.T) { testEvents(t, newStore(t)) })
	t.Run("Calendar", func(t *testing.T) { testCalendar(t, newStore(t)) })
	t.Run("Reset", func(t *testing.T) { testReset(t, newStore(t)) })
}

func testProjects(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.GetProject(ctx, "missing")
	assert.ErrorIs(t, err, planning.ErrProjectNotFound)

	web := planning.Project{
		ID: "web", Name: "Website", Start: d("2025-01-01"), End: d("2025-01-31"),
		EstimatedHours: 80.5, Exclusions: calendar.NewWeekdaySet(time.Friday),
	}
	ops := planning.Project{ID: "ops", Name: "Ops", Start: d("2025-01-01"), Continuous: true}
	require.NoError(t, s.SaveProject(ctx, web))
	require.NoError(t, s.SaveProject(ctx, ops))

	got, err := s.GetProject(ctx, "web")
	require.NoError(t, err)
	assert.Equal(t, web, got)

	all, err := s.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, planning.ProjectID("ops"), all[0].ID)
	assert.True(t, all[0].Continuous)

	web.EstimatedHours = 100
	require.NoError(t, s.SaveProject(ctx, web))
	got, err = s.GetProject(ctx, "web")
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.EstimatedHours)
}

func testPhases(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.SaveProject(ctx, planning.Project{ID: "web", Start: d("2025-01-01"), End: d("2025-01-31")}))

	build := planning.Phase{ID: "build", ProjectID: "web", Name: "Build", Kind: planning.KindFixed,
		Start: planning.DatePtr(d("2025-01-16")), End: d("2025-01-24"), TimeAllocation: 20.25}
	design := planning.Phase{ID: "design", ProjectID: "web", Name: "Design", Kind: planning.KindFixed,
		End: d("2025-01-15"), TimeAllocation: 40}
	other := planning.Phase{ID: "x", ProjectID: "other", Kind: planning.KindFixed, End: d("2025-01-01")}
	for _, p := range []planning.Phase{build, design, other} {
		require.NoError(t, s.SavePhase(ctx, p))
	}

	phases, err := s.ListPhases(ctx, "web")
	require.NoError(t, err)
	require.Len(t, phases, 2)
	assert.Equal(t, design, phases[0])
	assert.Equal(t, build, phases[1])

	// Drag commit writes through UpdatePhase
	end := d("2025-01-27")
	require.NoError(t, s.UpdatePhase(ctx, planning.PhaseUpdate{PhaseID: "build", End: &end, DueDate: &end}))
	phases, err = s.ListPhases(ctx, "web")
	require.NoError(t, err)
	assert.Equal(t, end, phases[1].End)
	assert.Equal(t, d("2025-01-16"), *phases[1].Start)

	err = s.UpdatePhase(ctx, planning.PhaseUpdate{PhaseID: "missing", End: &end})
	assert.ErrorIs(t, err, planning.ErrPhaseNotFound)

	require.NoError(t, s.DeletePhase(ctx, "design"))
	phases, err = s.ListPhases(ctx, "web")
	require.NoError(t, err)
	assert.Len(t, phases, 1)
	assert.ErrorIs(t, s.DeletePhase(ctx, "design"), planning.ErrPhaseNotFound)
}

func testTemplate(t *testing.T, s store.Store) {
	ctx := context.Background()
	cfg := recurrence.MonthlyOnWeekday(recurrence.LastWeekOfMonth, time.Friday, 2)
	template := planning.Phase{ID: "retro", ProjectID: "ops", Name: "Retro", Kind: planning.KindRecurring,
		TimeAllocation: 3, Recurrence: &cfg}

	require.NoError(t, s.SavePhase(ctx, template))
	phases, err := s.ListPhases(ctx, "ops")
	require.NoError(t, err)

	require.Len(t, phases, 1)
	assert.Equal(t, planning.KindRecurring, phases[0].Kind)
	require.NotNil(t, phases[0].Recurrence)
	assert.Equal(t, cfg, *phases[0].Recurrence)
}

func testEvents(t *testing.T, s store.Store) {
	ctx := context.Background()
	start := time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)
	late := planning.CalendarEvent{ID: "e2", ProjectID: "web", Title: "Review", Start: start.Add(48 * time.Hour), End: start.Add(50 * time.Hour)}
	early := planning.CalendarEvent{ID: "e1", ProjectID: "web", Title: "Kickoff", Start: start, End: start.Add(90 * time.Minute)}
	require.NoError(t, s.SaveEvent(ctx, late))
	require.NoError(t, s.SaveEvent(ctx, early))
	require.NoError(t, s.SaveEvent(ctx, planning.CalendarEvent{ID: "e3", ProjectID: "ops", Start: start, End: start}))

	events, err := s.ListEvents(ctx, "web")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "e1", events[0].ID)
	assert.True(t, events[0].Start.Equal(start))
	assert.InDelta(t, 1.5, events[0].PlannedHours(), 1e-9)
}

func testCalendar(t *testing.T, s store.Store) {
	ctx := context.Background()

	schedule, err := s.Schedule(ctx)
	require.NoError(t, err)
	assert.Equal(t, 40.0, schedule.WeeklyHours())

	custom := calendar.WeeklySchedule{
		time.Monday: {{StartTime: "09:00", EndTime: "12:00"}, {StartTime: "13:00", EndTime: "17:00"}},
		time.Friday: {{StartTime: "09:00", EndTime: "13:00", Duration: 4}},
	}
	require.NoError(t, s.SaveSchedule(ctx, custom))
	schedule, err = s.Schedule(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7.0, schedule.HoursOn(time.Monday))
	assert.Equal(t, "13:00", schedule[time.Monday][1].StartTime)
	assert.Equal(t, 0.0, schedule.HoursOn(time.Tuesday))

	ny := calendar.Holiday{ID: "ny", Name: "New Year", Range: calendar.DateRange{Start: d("2025-01-01"), End: d("2025-01-01")}}
	xmas := calendar.Holiday{ID: "xmas", Name: "Christmas", Range: calendar.DateRange{Start: d("2024-12-24"), End: d("2024-12-26")}}
	require.NoError(t, s.SaveHoliday(ctx, ny))
	require.NoError(t, s.SaveHoliday(ctx, xmas))

	holidays, err := s.Holidays(ctx)
	require.NoError(t, err)
	require.Len(t, holidays, 2)
	assert.Equal(t, xmas, holidays[0])
	assert.Equal(t, ny, holidays[1])

	bad := calendar.Holiday{ID: "bad", Range: calendar.DateRange{Start: d("2025-02-02"), End: d("2025-02-01")}}
	assert.ErrorIs(t, s.SaveHoliday(ctx, bad), calendar.ErrInvalidRange)

	require.NoError(t, s.DeleteHoliday(ctx, "ny"))
	assert.ErrorIs(t, s.DeleteHoliday(ctx, "ny"), store.ErrHolidayNotFound)
}

func testReset(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.SaveProject(ctx, planning.Project{ID: "web", Start: d("2025-01-01"), End: d("2025-01-31")}))
	require.NoError(t, s.SaveSchedule(ctx, calendar.WeeklySchedule{}))

	require.NoError(t, s.Reset(ctx))

	projects, err := s.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
	schedule, err := s.Schedule(ctx)
	require.NoError(t, err)
	assert.Equal(t, 40.0, schedule.WeeklyHours())
}
