package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timeline-engine/calendar"
	"github.com/warp/timeline-engine/planning"
	"github.com/warp/timeline-engine/store"
	"github.com/warp/timeline-engine/store/sqlite"
	"github.com/warp/timeline-engine/store/storetest"
)

func newStore(t *testing.T) store.Store {
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLite(t *testing.T) {
	storetest.Run(t, newStore)
}

func TestSQLite_HoursSurviveExactly(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	phase := planning.Phase{ID: "a", ProjectID: "p", Kind: planning.KindFixed, End: calendar.MustParseDate("2025-01-10"), TimeAllocation: 0.1 + 0.2}
	require.NoError(t, s.SavePhase(ctx, phase))

	phases, err := s.ListPhases(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, phase.TimeAllocation, phases[0].TimeAllocation)
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "timeline.db")

	s, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveProject(ctx, planning.Project{ID: "web", Start: calendar.MustParseDate("2025-01-01"), End: calendar.MustParseDate("2025-01-31"), EstimatedHours: 80}))
	require.NoError(t, s.SaveSchedule(ctx, calendar.StandardWeek(6)))
	require.NoError(t, s.Close())

	reopened, err := sqlite.New(path)
	require.NoError(t, err)
	defer reopened.Close()

	project, err := reopened.GetProject(ctx, "web")
	require.NoError(t, err)
	assert.Equal(t, 80.0, project.EstimatedHours)

	// An existing schedule is not reseeded
	schedule, err := reopened.Schedule(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30.0, schedule.WeeklyHours())
}
