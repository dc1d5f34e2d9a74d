package api

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/warp/timeline-engine/calendar"
	"github.com/warp/timeline-engine/factory"
	"github.com/warp/timeline-engine/ics"
)

// maxFeedBytes caps ICS uploads.
const maxFeedBytes = 4 << 20

// =============================================================================
// SCHEDULE ENDPOINTS
// =============================================================================

// GetSchedule returns the workspace's weekly schedule.
// GET /api/schedule
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.Store.Schedule(r.Context())
	if err != nil {
		h.fail(w, "Failed to load schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, factory.ScheduleToJSON(schedule))
}

// PutSchedule replaces the weekly schedule. An empty body object restores
// the standard week.
// PUT /api/schedule
func (h *Handler) PutSchedule(w http.ResponseWriter, r *http.Request) {
	var req factory.ScheduleJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	schedule, err := h.Factory.Schedule(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid schedule", err)
		return
	}
	if err := h.Store.SaveSchedule(r.Context(), schedule); err != nil {
		h.fail(w, "Failed to save schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, factory.ScheduleToJSON(schedule))
}

// =============================================================================
// HOLIDAY ENDPOINTS
// =============================================================================

// ListHolidays returns all holidays.
// GET /api/holidays
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.Store.Holidays(r.Context())
	if err != nil {
		h.fail(w, "Failed to list holidays", err)
		return
	}
	dtos := make([]factory.HolidayJSON, len(holidays))
	for i, hol := range holidays {
		dtos[i] = toHolidayJSON(hol)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateHoliday adds a holiday. A missing end date means a single day.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req factory.HolidayJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	holiday, err := h.Factory.Holiday(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid holiday", err)
		return
	}
	if err := h.Store.SaveHoliday(r.Context(), holiday); err != nil {
		h.fail(w, "Failed to save holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayJSON(holiday))
}

// ImportHolidays reads an ICS feed from the body and saves one holiday per
// event instance. Recurring events expand within from..to, which defaults to
// the previous, current and next calendar year.
// POST /api/holidays/import?from=&to=
func (h *Handler) ImportHolidays(w http.ResponseWriter, r *http.Request) {
	year := h.today().Year()
	def := calendar.DateRange{
		Start: calendar.NewDate(year-1, 1, 1),
		End:   calendar.NewDate(year+1, 12, 31),
	}
	window, err := rangeFromQuery(r, def)
	if err != nil {
		h.fail(w, "Invalid date range", err)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxFeedBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body", err)
		return
	}

	holidays, err := ics.NewImporter(window, h.Logger).Import(body)
	if err != nil {
		h.fail(w, "Failed to import calendar", badRequest("%v", err))
		return
	}

	resp := HolidayImportResponse{Holidays: make([]factory.HolidayJSON, 0, len(holidays))}
	for _, hol := range holidays {
		if err := h.Store.SaveHoliday(r.Context(), hol); err != nil {
			h.fail(w, "Failed to save holiday", err)
			return
		}
		resp.Holidays = append(resp.Holidays, toHolidayJSON(hol))
	}
	resp.Imported = len(resp.Holidays)

	h.Logger.Info().Int("imported", resp.Imported).Msg("holidays imported")
	writeJSON(w, http.StatusCreated, resp)
}

// DeleteHoliday removes a holiday.
// DELETE /api/holidays/{id}
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "Failed to delete holiday", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
