/*
handlers_test.go - HTTP tests for the API handlers

Tests for:
- Project CRUD and error mapping
- Segment allocation, budget and occurrences over HTTP
- Drag bounds and drag commits persisting the clamped date
- Schedule, holidays and ICS import
*/
package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timeline-engine/cache"
	"github.com/warp/timeline-engine/factory"
	"github.com/warp/timeline-engine/planning"
	"github.com/warp/timeline-engine/store/memory"
)

var jan1 = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

type testServer struct {
	handler *Handler
	router  http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	reg := prometheus.NewRegistry()
	engine := planning.NewEngineWithOptions(cache.Options{Capacity: 50, TTL: time.Minute}, cache.NewMetrics(reg))
	h := NewHandler(memory.New(), engine, Options{
		Now:    func() time.Time { return jan1 },
		Logger: zerolog.Nop(),
	})
	return &testServer{handler: h, router: NewRouter(h, RouterOptions{Gatherer: reg})}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// seedWebsite loads a January 2025 project with three fixed phases:
// design Jan 2-10 (40h), build Jan 13-17 (20h), ship Jan 20-28 (10h).
func (s *testServer) seedWebsite(t *testing.T) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/projects", factory.ProjectJSON{
		ID: "web", Name: "Website", StartDate: "2025-01-01", EndDate: "2025-01-31", EstimatedHours: 80,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	for _, p := range []factory.PhaseJSON{
		{ID: "design", Name: "Design", StartDate: "2025-01-02", EndDate: "2025-01-10", TimeAllocation: 40},
		{ID: "build", Name: "Build", StartDate: "2025-01-13", EndDate: "2025-01-17", TimeAllocation: 20},
		{ID: "ship", Name: "Ship", StartDate: "2025-01-20", DueDate: "2025-01-28", TimeAllocation: 10},
	} {
		rec := s.do(t, http.MethodPost, "/api/projects/web/phases", p)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
}

// =============================================================================
// PROJECTS
// =============================================================================

func TestCreateProject_GeneratesID(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/projects", factory.ProjectJSON{
		Name: "Ops", StartDate: "2025-01-01", Continuous: true, ExcludedWeekdays: []string{"fri"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[factory.ProjectJSON](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, []string{"friday"}, created.ExcludedWeekdays)

	rec = s.do(t, http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]factory.ProjectJSON](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
}

func TestCreateProject_Invalid(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/projects", factory.ProjectJSON{ID: "x", StartDate: "2025-02-01", EndDate: "2025-01-01"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/projects", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProject(t *testing.T) {
	s := newTestServer(t)
	s.seedWebsite(t)

	rec := s.do(t, http.MethodGet, "/api/projects/web", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[ProjectDetailDTO](t, rec)
	require.Len(t, detail.Phases, 3)
	assert.Equal(t, "design", detail.Phases[0].ID)
	assert.Equal(t, "2025-01-28", detail.Phases[2].EndDate)

	rec = s.do(t, http.MethodGet, "/api/projects/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[ErrorResponse](t, rec).Code)
}

// =============================================================================
// SEGMENTS AND BUDGET
// =============================================================================

func TestGetSegments(t *testing.T) {
	s := newTestServer(t)
	s.seedWebsite(t)

	rec := s.do(t, http.MethodGet, "/api/projects/web/segments", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[SegmentsResponse](t, rec)

	require.Len(t, resp.Segments, 4)
	assert.Equal(t, 80.0, resp.TotalAllocated)

	design := resp.Segments[0]
	assert.Equal(t, "2025-01-01", design.Start)
	assert.Equal(t, "2025-01-10", design.End)
	assert.Equal(t, 8, design.WorkingDays)
	assert.Equal(t, 5.0, design.HoursPerDay)

	assert.Equal(t, "2025-01-11", resp.Segments[1].Start)
	assert.Equal(t, 4.0, resp.Segments[1].HoursPerDay)
	assert.Equal(t, 1.43, resp.Segments[2].HoursPerDay)

	trailing := resp.Segments[3]
	assert.True(t, trailing.Trailing)
	assert.Empty(t, trailing.PhaseID)
	assert.Equal(t, "2025-01-29", trailing.Start)
	assert.Equal(t, 10.0, trailing.AllocatedHours)
	assert.Equal(t, 3.33, trailing.HoursPerDay)
}

func TestGetSegments_PlannedEventsReduceRate(t *testing.T) {
	s := newTestServer(t)
	s.seedWebsite(t)

	// Warm the cache before the event exists
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/projects/web/segments", nil).Code)

	start := time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)
	rec := s.do(t, http.MethodPost, "/api/projects/web/events", factory.EventJSON{
		Title: "Workshop", StartTime: start, EndTime: start.Add(3 * time.Hour),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decode[SegmentsResponse](t, s.do(t, http.MethodGet, "/api/projects/web/segments", nil))
	design := resp.Segments[0]
	assert.Equal(t, 3.0, design.PlannedHours)
	assert.Equal(t, 37.0, design.RemainingHours)
	assert.Equal(t, 4.63, design.HoursPerDay)
}

func TestCreateEvent_Invalid(t *testing.T) {
	s := newTestServer(t)
	s.seedWebsite(t)
	start := time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)

	rec := s.do(t, http.MethodPost, "/api/projects/web/events", factory.EventJSON{StartTime: start, EndTime: start.Add(-time.Hour)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/projects/nope/events", factory.EventJSON{StartTime: start, EndTime: start.Add(time.Hour)})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetBudget(t *testing.T) {
	s := newTestServer(t)
	s.seedWebsite(t)

	rec := s.do(t, http.MethodGet, "/api/projects/web/budget", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[BudgetDTO](t, rec)
	assert.True(t, report.IsValid)
	assert.Equal(t, 70.0, report.TotalAllocated)
	assert.Equal(t, 87.5, report.Utilization)
	assert.Equal(t, 10.0, report.Remaining)
	assert.Nil(t, report.Occurrences)

	report = decode[BudgetDTO](t, s.do(t, http.MethodGet, "/api/projects/web/budget?exclude=design", nil))
	assert.Equal(t, 30.0, report.TotalAllocated)
}

func TestSavePhase_ReportsOverBudget(t *testing.T) {
	s := newTestServer(t)
	s.seedWebsite(t)

	rec := s.do(t, http.MethodPost, "/api/projects/web/phases", factory.PhaseJSON{
		ID: "build", Name: "Build", StartDate: "2025-01-13", EndDate: "2025-01-17", TimeAllocation: 45,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[SavePhaseResponse](t, rec)
	assert.False(t, resp.Budget.IsValid)
	assert.Equal(t, 95.0, resp.Budget.TotalAllocated)
	assert.Equal(t, 15.0, resp.Budget.Overage)
	assert.NotEmpty(t, resp.Budget.Recommendations)
}

func TestSavePhase_Rejections(t *testing.T) {
	s := newTestServer(t)
	s.seedWebsite(t)

	// GIVEN overlapping dates WHEN saving THEN conflict
	rec := s.do(t, http.MethodPost, "/api/projects/web/phases", factory.PhaseJSON{
		ID: "qa", StartDate: "2025-01-15", EndDate: "2025-01-22", TimeAllocation: 5,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "overlap", decode[ErrorResponse](t, rec).Code)

	// GIVEN fixed phases WHEN adding a template THEN mixed kinds are rejected
	rec = s.do(t, http.MethodPost, "/api/projects/web/phases", map[string]any{
		"id": "standup", "is_recurring": true, "time_allocation": 1,
		"recurrence": map[string]any{"type": "weekly", "interval": 1, "weekly_day_of_week": 1},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// No deadline
	rec = s.do(t, http.MethodPost, "/api/projects/web/phases", factory.PhaseJSON{ID: "x", TimeAllocation: 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown project
	rec = s.do(t, http.MethodPost, "/api/projects/nope/phases", factory.PhaseJSON{ID: "x", EndDate: "2025-01-05"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	detail := decode[ProjectDetailDTO](t, s.do(t, http.MethodGet, "/api/projects/web", nil))
	assert.Len(t, detail.Phases, 3)
}

func TestDeletePhase(t *testing.T) {
	s := newTestServer(t)
	s.seedWebsite(t)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/api/projects/web/phases/ship", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/projects/web/phases/ship", nil).Code)
}

func TestDeletePhase_OtherProject_NotFound(t *testing.T) {
	// GIVEN: Two projects, each with its own phases
	s := newTestServer(t)
	s.seedWebsite(t)
	seedOps(t, s)

	// WHEN: Deleting ops' template through the web project
	rec := s.do(t, http.MethodDelete, "/api/projects/web/phases/standup", nil)

	// THEN: 404, and the template is still there
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[ErrorResponse](t, rec).Code)
	resp := decode[OccurrencesResponse](t, s.do(t, http.MethodGet, "/api/projects/ops/occurrences", nil))
	assert.Len(t, resp.Occurrences, 4)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/projects/missing/phases/design", nil).Code)
}

// =============================================================================
// RECURRING TEMPLATES
// =============================================================================

func seedOps(t *testing.T, s *testServer) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/projects", factory.ProjectJSON{
		ID: "ops", StartDate: "2025-01-01", EndDate: "2025-01-31",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/projects/ops/phases", map[string]any{
		"id": "standup", "name": "Standup", "is_recurring": true, "time_allocation": 2,
		"recurrence": map[string]any{"type": "weekly", "interval": 1, "weekly_day_of_week": 1},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestGetOccurrences(t *testing.T) {
	s := newTestServer(t)
	seedOps(t, s)

	rec := s.do(t, http.MethodGet, "/api/projects/ops/occurrences", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[OccurrencesResponse](t, rec)
	assert.Equal(t, []string{"2025-01-06", "2025-01-13", "2025-01-20", "2025-01-27"}, resp.Occurrences)
	require.Len(t, resp.Periods, 4)
	assert.Equal(t, DateRangeDTO{Start: "2025-01-01", End: "2025-01-05"}, resp.Periods[0])
	assert.Equal(t, DateRangeDTO{Start: "2025-01-20", End: "2025-01-26"}, resp.Periods[3])

	resp = decode[OccurrencesResponse](t, s.do(t, http.MethodGet, "/api/projects/ops/occurrences?from=2025-01-10&to=2025-01-20", nil))
	assert.Equal(t, []string{"2025-01-13", "2025-01-20"}, resp.Occurrences)

	rec = s.do(t, http.MethodGet, "/api/projects/ops/occurrences?from=2025-02-10&to=2025-01-20", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOccurrences_NoTemplate(t *testing.T) {
	s := newTestServer(t)
	s.seedWebsite(t)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/projects/web/occurrences", nil).Code)
}

func TestTemplateBudgetAndSegments(t *testing.T) {
	s := newTestServer(t)
	seedOps(t, s)

	report := decode[BudgetDTO](t, s.do(t, http.MethodGet, "/api/projects/ops/budget", nil))
	assert.True(t, report.IsValid)
	assert.True(t, report.HasTemplate)
	require.NotNil(t, report.Occurrences)
	assert.Equal(t, 4, *report.Occurrences)
	assert.Equal(t, 8.0, *report.CommittedHours)

	resp := decode[SegmentsResponse](t, s.do(t, http.MethodGet, "/api/projects/ops/segments", nil))
	require.Len(t, resp.Segments, 4)
	assert.Equal(t, "standup", resp.Segments[0].TemplateID)
	assert.Equal(t, 1, resp.Segments[0].Occurrence)
	assert.Equal(t, 0.5, resp.Segments[0].HoursPerDay) // Jan 1-6: 4 working days
}

// =============================================================================
// DRAG
// =============================================================================

func TestGetBounds(t *testing.T) {
	s := newTestServer(t)
	s.seedWebsite(t)

	tests := []struct {
		phase, action string
		min, max      string
	}{
		{"build", "resize-end", "2025-01-14", "2025-01-19"},
		{"build", "resize-start", "2025-01-11", "2025-01-16"},
		{"build", "move", "2025-01-11", "2025-01-15"},
		{"ship", "resize-end", "2025-01-21", "2025-01-31"},
		{"design", "resize-start", "2025-01-01", "2025-01-09"},
		{"design", "move", "2025-01-01", "2025-01-04"},
	}
	for _, tt := range tests {
		t.Run(tt.phase+"/"+tt.action, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, "/api/projects/web/phases/"+tt.phase+"/bounds?action="+tt.action, nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			b := decode[BoundsDTO](t, rec)
			assert.Equal(t, tt.min, b.MinDate)
			assert.Equal(t, tt.max, b.MaxDate)
		})
	}

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/projects/web/phases/build/bounds?action=stretch", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/projects/web/phases/nope/bounds?action=move", nil).Code)
}

func TestDrag_CommitPersistsClampedDate(t *testing.T) {
	s := newTestServer(t)
	s.seedWebsite(t)

	// GIVEN build ends Jan 17 and ship starts Jan 20
	// WHEN build's end is dragged to Jan 25
	rec := s.do(t, http.MethodPost, "/api/projects/web/phases/build/drag", DragRequest{Action: "resize-end", Date: "2025-01-25"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	drag := decode[DragDTO](t, rec)

	// THEN it stops the day before ship starts
	assert.Equal(t, "committed", drag.State)
	assert.Equal(t, "2025-01-19", drag.Candidate)
	require.NotNil(t, drag.Update)
	assert.Equal(t, "2025-01-19", *drag.Update.End)
	assert.Equal(t, "2025-01-19", *drag.Update.DueDate)
	assert.Nil(t, drag.Update.Start)

	detail := decode[ProjectDetailDTO](t, s.do(t, http.MethodGet, "/api/projects/web", nil))
	assert.Equal(t, "2025-01-19", detail.Phases[1].EndDate)
	assert.Equal(t, "2025-01-13", detail.Phases[1].StartDate)
}

func TestDrag_PixelsMoveWholePhase(t *testing.T) {
	s := newTestServer(t)
	s.seedWebsite(t)

	// 40px per day in days mode: -40px is one day earlier
	delta := -40.0
	rec := s.do(t, http.MethodPost, "/api/projects/web/phases/design/drag", DragRequest{Action: "move", PixelDelta: &delta})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	drag := decode[DragDTO](t, rec)
	require.NotNil(t, drag.Update)
	assert.Equal(t, "2025-01-01", *drag.Update.Start)
	assert.Equal(t, "2025-01-09", *drag.Update.End)

	// 11px per day in weeks mode: 22px is two days later
	delta = 22
	rec = s.do(t, http.MethodPost, "/api/projects/web/phases/ship/drag", DragRequest{Action: "resize-end", PixelDelta: &delta, Mode: "weeks"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "2025-01-30", decode[DragDTO](t, rec).Candidate)
}

func TestDrag_Unchanged(t *testing.T) {
	s := newTestServer(t)
	s.seedWebsite(t)

	rec := s.do(t, http.MethodPost, "/api/projects/web/phases/build/drag", DragRequest{Action: "resize-start", Date: "2025-01-13"})
	require.Equal(t, http.StatusOK, rec.Code)
	drag := decode[DragDTO](t, rec)
	assert.False(t, drag.Changed)
	assert.Nil(t, drag.Update)
}

func TestDrag_BadRequests(t *testing.T) {
	s := newTestServer(t)
	s.seedWebsite(t)

	tests := []struct {
		name string
		req  DragRequest
		want int
	}{
		{"unknown action", DragRequest{Action: "spin", Date: "2025-01-20"}, http.StatusBadRequest},
		{"no position", DragRequest{Action: "resize-end"}, http.StatusBadRequest},
		{"bad date", DragRequest{Action: "resize-end", Date: "01/20/2025"}, http.StatusBadRequest},
		{"bad mode", DragRequest{Action: "resize-end", PixelDelta: new(float64), Mode: "months"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/projects/web/phases/build/drag", tt.req)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestDrag_TemplateRejected(t *testing.T) {
	s := newTestServer(t)
	seedOps(t, s)

	rec := s.do(t, http.MethodPost, "/api/projects/ops/phases/standup/drag", DragRequest{Action: "resize-end", Date: "2025-01-10"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// CALENDAR
// =============================================================================

func TestSchedule(t *testing.T) {
	s := newTestServer(t)

	sched := decode[factory.ScheduleJSON](t, s.do(t, http.MethodGet, "/api/schedule", nil))
	assert.Len(t, sched, 5)

	rec := s.do(t, http.MethodPut, "/api/schedule", map[string]any{
		"mon": []map[string]any{{"start_time": "09:00", "end_time": "13:00", "duration": 4}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	sched = decode[factory.ScheduleJSON](t, s.do(t, http.MethodGet, "/api/schedule", nil))
	require.Len(t, sched, 1)
	assert.Equal(t, 4.0, sched["monday"][0].Duration)

	rec = s.do(t, http.MethodPut, "/api/schedule", map[string]any{"someday": []any{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHolidays(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/holidays", factory.HolidayJSON{ID: "ny", Name: "New Year", StartDate: "2025-01-01"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "2025-01-01", decode[factory.HolidayJSON](t, rec).EndDate)

	rec = s.do(t, http.MethodPost, "/api/holidays", factory.HolidayJSON{StartDate: "2025-03-02", EndDate: "2025-03-01"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	list := decode[[]factory.HolidayJSON](t, s.do(t, http.MethodGet, "/api/holidays", nil))
	require.Len(t, list, 1)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/api/holidays/ny", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/holidays/ny", nil).Code)
}

func TestHolidays_ShrinkWorkingDays(t *testing.T) {
	s := newTestServer(t)
	s.seedWebsite(t)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/projects/web/segments", nil).Code)

	rec := s.do(t, http.MethodPost, "/api/holidays", factory.HolidayJSON{ID: "ny", StartDate: "2025-01-01"})
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decode[SegmentsResponse](t, s.do(t, http.MethodGet, "/api/projects/web/segments", nil))
	assert.Equal(t, 7, resp.Segments[0].WorkingDays)
}

func TestImportHolidays(t *testing.T) {
	s := newTestServer(t)
	feed := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:xmas",
		"SUMMARY:Christmas",
		"DTSTART;VALUE=DATE:20251225",
		"DTEND;VALUE=DATE:20251227",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	rec := s.do(t, http.MethodPost, "/api/holidays/import", feed)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[HolidayImportResponse](t, rec)
	require.Equal(t, 1, resp.Imported)
	assert.Equal(t, "2025-12-25", resp.Holidays[0].StartDate)
	assert.Equal(t, "2025-12-26", resp.Holidays[0].EndDate)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/holidays/import", "").Code)
}

// =============================================================================
// ADMIN
// =============================================================================

func TestClearCacheAndMetrics(t *testing.T) {
	s := newTestServer(t)
	s.seedWebsite(t)

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/projects/web/segments", nil).Code)
	}
	rec := s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `timeline_cache_hits_total{cache="segments"} 1`)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/cache/clear", nil).Code)
	assert.Zero(t, s.handler.Engine.Caches()[1].Purge())
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestClassify(t *testing.T) {
	status, _ := classify(context.Canceled)
	assert.Equal(t, http.StatusInternalServerError, status)
	status, _ = classify(planning.ErrPhaseNotFound)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = classify(badRequest("x"))
	assert.Equal(t, http.StatusBadRequest, status)
}
