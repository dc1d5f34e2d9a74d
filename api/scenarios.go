/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	projects for demos. Dates are laid out relative to today so segments
	always have working days left in them.

AVAILABLE SCENARIOS:

	website-relaunch: Fixed phases with a holiday and planned meetings
	weekly-standup:   Continuous project driven by a weekly template
	monthly-report:   Monthly template on the 31st (clamped in short months)
	over-budget:      Fixed phases that exceed the estimate

HOW SCENARIOS WORK:
 1. Reset store (clear all data, restore the standard week)
 2. Build a factory.SnapshotJSON document
 3. Convert it through the factory (same rules as the API)
 4. Save project, phases, events, schedule and holidays
 5. Clear the engine caches

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "weekly-standup"}

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: project endpoints used to inspect a loaded scenario
  - factory/snapshot.go: document schema
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/warp/timeline-engine/calendar"
	"github.com/warp/timeline-engine/factory"
	"github.com/warp/timeline-engine/recurrence"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "website-relaunch",
		Name:        "Website Relaunch",
		Description: "Three fixed phases, a company holiday and planned meetings",
		Category:    "fixed",
	},
	{
		ID:          "weekly-standup",
		Name:        "Weekly Standup",
		Description: "Continuous project with a 2h weekly template on Mondays",
		Category:    "recurring",
	},
	{
		ID:          "monthly-report",
		Name:        "Monthly Report",
		Description: "Report due on the 31st, clamped to shorter month ends",
		Category:    "recurring",
	},
	{
		ID:          "over-budget",
		Name:        "Over Budget",
		Description: "Phases allocate more hours than the project estimate",
		Category:    "fixed",
	},
}

// scenarioDocs builds each scenario's document relative to today.
var scenarioDocs = map[string]func(today calendar.Date) factory.SnapshotJSON{
	"website-relaunch": websiteRelaunch,
	"weekly-standup":   weeklyStandup,
	"monthly-report":   monthlyReport,
	"over-budget":      overBudget,
}

// ListScenarios returns all available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
// GET /api/scenarios/current
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the store and loads a predefined scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	build, ok := scenarioDocs[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", fmt.Errorf("scenario %q", req.ScenarioID))
		return
	}

	if err := h.loadScenario(r.Context(), build(h.today())); err != nil {
		h.fail(w, "Failed to load scenario", err)
		return
	}

	h.mu.Lock()
	h.currentScenario = req.ScenarioID
	h.mu.Unlock()

	h.Logger.Info().Str("scenario", req.ScenarioID).Msg("scenario loaded")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data and caches.
// POST /api/scenarios/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		h.fail(w, "Failed to reset database", err)
		return
	}
	h.Engine.Clear()

	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// loadScenario converts doc through the factory and persists it.
func (h *Handler) loadScenario(ctx context.Context, doc factory.SnapshotJSON) error {
	snap, err := h.Factory.FromJSON(doc)
	if err != nil {
		return fmt.Errorf("build scenario: %w", err)
	}

	if err := h.Store.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	h.Engine.Clear()

	if err := h.Store.SaveProject(ctx, snap.Project); err != nil {
		return err
	}
	for _, p := range snap.Phases {
		if err := h.Store.SavePhase(ctx, p); err != nil {
			return err
		}
	}
	for _, e := range snap.Events {
		if err := h.Store.SaveEvent(ctx, e); err != nil {
			return err
		}
	}
	if len(doc.Schedule) > 0 {
		if err := h.Store.SaveSchedule(ctx, snap.Schedule); err != nil {
			return err
		}
	}
	for _, hol := range snap.Holidays {
		if err := h.Store.SaveHoliday(ctx, hol); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// SCENARIO DOCUMENTS
// =============================================================================

func websiteRelaunch(today calendar.Date) factory.SnapshotJSON {
	start := today
	meeting := time.Date(today.Year(), today.Month(), today.Day()+2, 14, 0, 0, 0, time.UTC)
	return factory.SnapshotJSON{
		Project: factory.ProjectJSON{
			ID:             "website-relaunch",
			Name:           "Website Relaunch",
			StartDate:      start.String(),
			EndDate:        start.AddDays(41).String(),
			EstimatedHours: 160,
		},
		Phases: []factory.PhaseJSON{
			{ID: "design", Name: "Design", StartDate: start.String(), EndDate: start.AddDays(9).String(), TimeAllocation: 40},
			{ID: "build", Name: "Build", StartDate: start.AddDays(12).String(), EndDate: start.AddDays(27).String(), TimeAllocation: 80},
			{ID: "launch", Name: "Launch", StartDate: start.AddDays(30).String(), DueDate: start.AddDays(34).String(), TimeAllocation: 16},
		},
		Events: []factory.EventJSON{
			{ID: "kickoff", Title: "Kickoff", StartTime: meeting, EndTime: meeting.Add(2 * time.Hour)},
			{ID: "design-review", Title: "Design review", StartTime: meeting.AddDate(0, 0, 5), EndTime: meeting.AddDate(0, 0, 5).Add(90 * time.Minute)},
		},
		Holidays: []factory.HolidayJSON{
			{ID: "company-day", Name: "Company Day", StartDate: start.AddDays(15).String()},
		},
	}
}

func weeklyStandup(today calendar.Date) factory.SnapshotJSON {
	cfg := recurrence.WeeklyOn(time.Monday, 1)
	return factory.SnapshotJSON{
		Project: factory.ProjectJSON{
			ID:             "weekly-standup",
			Name:           "Team Rituals",
			StartDate:      today.String(),
			Continuous:     true,
			EstimatedHours: 0,
		},
		Phases: []factory.PhaseJSON{
			{ID: "standup", Name: "Standup prep", IsRecurring: true, TimeAllocation: 2, Recurrence: &cfg},
		},
	}
}

func monthlyReport(today calendar.Date) factory.SnapshotJSON {
	cfg := recurrence.MonthlyOnDate(31, 1)
	start := calendar.StartOfMonth(today)
	return factory.SnapshotJSON{
		Project: factory.ProjectJSON{
			ID:               "monthly-report",
			Name:             "Monthly Report",
			StartDate:        start.String(),
			EndDate:          calendar.EndOfMonth(start.AddMonths(5)).String(),
			EstimatedHours:   48,
			ExcludedWeekdays: []string{"friday"},
		},
		Phases: []factory.PhaseJSON{
			{ID: "report", Name: "Report", IsRecurring: true, TimeAllocation: 8, Recurrence: &cfg},
		},
		Schedule: factory.ScheduleJSON{
			"monday":    {{StartTime: "09:00", EndTime: "15:00", Duration: 6}},
			"tuesday":   {{StartTime: "09:00", EndTime: "15:00", Duration: 6}},
			"wednesday": {{StartTime: "09:00", EndTime: "15:00", Duration: 6}},
			"thursday":  {{StartTime: "09:00", EndTime: "15:00", Duration: 6}},
			"friday":    {{StartTime: "09:00", EndTime: "13:00", Duration: 4}},
		},
	}
}

func overBudget(today calendar.Date) factory.SnapshotJSON {
	return factory.SnapshotJSON{
		Project: factory.ProjectJSON{
			ID:             "over-budget",
			Name:           "Data Migration",
			StartDate:      today.String(),
			EndDate:        today.AddDays(27).String(),
			EstimatedHours: 60,
		},
		Phases: []factory.PhaseJSON{
			{ID: "audit", Name: "Audit", EndDate: today.AddDays(6).String(), TimeAllocation: 45},
			{ID: "migrate", Name: "Migrate", EndDate: today.AddDays(20).String(), TimeAllocation: 30},
			{ID: "verify", Name: "Verify", EndDate: today.AddDays(27).String(), TimeAllocation: 0.5},
		},
	}
}
