package factory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timeline-engine/calendar"
	"github.com/warp/timeline-engine/factory"
	"github.com/warp/timeline-engine/planning"
	"github.com/warp/timeline-engine/recurrence"
)

const websiteJSON = `{
  "project": {
    "id": "website", "name": "Website relaunch",
    "start_date": "2025-01-01", "end_date": "2025-01-31",
    "estimated_hours": 80, "excluded_weekdays": ["Fri"]
  },
  "phases": [
    {"id": "design", "name": "Design", "due_date": "2025-01-15", "time_allocation": 40},
    {"id": "build", "start_date": "2025-01-16", "end_date": "2025-01-24", "due_date": "2025-01-20", "time_allocation": 20}
  ],
  "events": [
    {"id": "e1", "title": "Kickoff", "start_time": "2025-01-02T09:00:00Z", "end_time": "2025-01-02T12:00:00Z"}
  ],
  "holidays": [
    {"id": "ny", "name": "New Year", "start_date": "2025-01-01"}
  ]
}`

func TestParseSnapshot_JSON(t *testing.T) {
	snap, err := factory.New().ParseSnapshot([]byte(websiteJSON))
	require.NoError(t, err)

	assert.Equal(t, planning.ProjectID("website"), snap.Project.ID)
	assert.Equal(t, 80.0, snap.Project.EstimatedHours)
	assert.True(t, snap.Project.Exclusions.Has(time.Friday))
	assert.Equal(t, calendar.MustParseDate("2025-01-31"), snap.Project.End)

	require.Len(t, snap.Phases, 2)
	design := snap.Phases[0]
	assert.Equal(t, planning.KindFixed, design.Kind)
	assert.Equal(t, planning.ProjectID("website"), design.ProjectID)
	assert.Equal(t, calendar.MustParseDate("2025-01-15"), design.End)
	assert.Nil(t, design.Start)

	// end_date wins over due_date
	build := snap.Phases[1]
	assert.Equal(t, calendar.MustParseDate("2025-01-24"), build.End)
	require.NotNil(t, build.Start)
	assert.Equal(t, calendar.MustParseDate("2025-01-16"), *build.Start)

	require.Len(t, snap.Events, 1)
	assert.InDelta(t, 3.0, snap.Events[0].PlannedHours(), 1e-9)
	assert.Equal(t, planning.ProjectID("website"), snap.Events[0].ProjectID)

	require.Len(t, snap.Holidays, 1)
	assert.Equal(t, 1, snap.Holidays[0].Range.Len())

	// No schedule given: standard week
	assert.Equal(t, 40.0, snap.Schedule.WeeklyHours())
}

func TestParseSnapshot_YAML_RecurringTemplate(t *testing.T) {
	doc := `
project:
  id: ops
  start_date: "2025-01-01"
  continuous: true
  estimated_hours: 0
phases:
  - id: review
    name: Weekly review
    is_recurring: true
    time_allocation: 2
    end_date: "2025-03-01"
    recurrence:
      type: weekly
      interval: 1
      weekly_day_of_week: 1
schedule:
  monday:
    - start_time: "09:00"
      end_time: "13:00"
  tuesday:
    - start_time: "09:00"
      end_time: "17:00"
      duration: 6
`
	snap, err := factory.New().ParseSnapshotYAML([]byte(doc))
	require.NoError(t, err)

	assert.True(t, snap.Project.Continuous)
	require.Len(t, snap.Phases, 1)
	review := snap.Phases[0]
	assert.Equal(t, planning.KindRecurring, review.Kind)
	require.NotNil(t, review.Recurrence)
	assert.Equal(t, recurrence.Weekly, review.Recurrence.Type)
	assert.Equal(t, time.Monday, *review.Recurrence.WeeklyDayOfWeek)

	assert.Equal(t, 4.0, snap.Schedule.HoursOn(time.Monday))
	assert.Equal(t, 6.0, snap.Schedule.HoursOn(time.Tuesday))
	assert.Equal(t, 0.0, snap.Schedule.HoursOn(time.Wednesday))
}

func TestPhase_KindDecidedByFlagOnly(t *testing.T) {
	cfg := recurrence.WeeklyOn(time.Monday, 1)
	// A stray recurrence on a fixed phase is ignored
	phase, err := factory.New().Phase(factory.PhaseJSON{ID: "a", EndDate: "2025-01-10", Recurrence: &cfg})
	require.NoError(t, err)

	assert.Equal(t, planning.KindFixed, phase.Kind)
	assert.Nil(t, phase.Recurrence)
}

func TestPhase_Errors(t *testing.T) {
	f := factory.New()

	_, err := f.Phase(factory.PhaseJSON{ID: "a"})
	assert.ErrorIs(t, err, planning.ErrInvalidPhase)

	_, err = f.Phase(factory.PhaseJSON{ID: "a", IsRecurring: true})
	assert.ErrorIs(t, err, planning.ErrInvalidPhase)

	_, err = f.Phase(factory.PhaseJSON{ID: "a", IsRecurring: true, Recurrence: &recurrence.Config{Type: recurrence.Weekly, Interval: 1}})
	assert.ErrorIs(t, err, recurrence.ErrInvalidRecurrenceConfig)

	_, err = f.Phase(factory.PhaseJSON{ID: "a", StartDate: "2025-01-20", EndDate: "2025-01-10"})
	assert.ErrorIs(t, err, calendar.ErrInvalidRange)
}

func TestFromJSON_MixedKinds_Rejected(t *testing.T) {
	cfg := recurrence.WeeklyOn(time.Monday, 1)
	doc := factory.SnapshotJSON{
		Project: factory.ProjectJSON{ID: "p", StartDate: "2025-01-01", EndDate: "2025-01-31"},
		Phases: []factory.PhaseJSON{
			{ID: "a", EndDate: "2025-01-10"},
			{ID: "t", IsRecurring: true, Recurrence: &cfg},
		},
	}

	_, err := factory.New().FromJSON(doc)

	assert.ErrorIs(t, err, planning.ErrMixedPhaseKinds)
}

func TestProject_InvertedDates_Rejected(t *testing.T) {
	_, err := factory.New().Project(factory.ProjectJSON{ID: "p", StartDate: "2025-02-01", EndDate: "2025-01-01"})

	assert.ErrorIs(t, err, calendar.ErrInvalidRange)
}

func TestReverseConversion(t *testing.T) {
	f := factory.New()
	original := factory.PhaseJSON{ID: "a", ProjectID: "p", Name: "A", StartDate: "2025-01-02", EndDate: "2025-01-10", TimeAllocation: 5}
	phase, err := f.Phase(original)
	require.NoError(t, err)

	back := factory.PhaseToJSON(phase)
	assert.Equal(t, "2025-01-10", back.EndDate)
	assert.Equal(t, "2025-01-10", back.DueDate)
	assert.Equal(t, "2025-01-02", back.StartDate)

	project, err := f.Project(factory.ProjectJSON{ID: "p", StartDate: "2025-01-01", EndDate: "2025-01-31", ExcludedWeekdays: []string{"saturday", "0"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"sunday", "saturday"}, factory.ProjectToJSON(project).ExcludedWeekdays)
}

func TestParseWeekday(t *testing.T) {
	for in, want := range map[string]time.Weekday{"monday": time.Monday, "TUE": time.Tuesday, " Sunday ": time.Sunday, "6": time.Saturday} {
		got, err := factory.ParseWeekday(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := factory.ParseWeekday("someday")
	assert.Error(t, err)
}
