/*
handlers.go - HTTP API handlers for the timeline planning engine

PURPOSE:
  Exposes the planning engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the domain packages.

ENDPOINTS:
  Projects:
    GET    /api/projects                              List projects
    POST   /api/projects                              Create or replace a project
    GET    /api/projects/{id}                         Project with phases
    GET    /api/projects/{id}/segments                Segment allocation
    GET    /api/projects/{id}/budget?exclude=         Budget validation
    GET    /api/projects/{id}/occurrences?from=&to=   Template occurrences

  Phases:
    POST   /api/projects/{id}/phases                  Create or replace a phase
    DELETE /api/projects/{id}/phases/{phaseID}        Delete a phase
    GET    /api/projects/{id}/phases/{phaseID}/bounds Drag bounds (?action=)
    POST   /api/projects/{id}/phases/{phaseID}/drag   Apply a drag gesture

  Events:
    POST   /api/projects/{id}/events                  Record planned time

  Calendar (calendar.go):
    GET/PUT /api/schedule, GET/POST /api/holidays, POST /api/holidays/import,
    DELETE /api/holidays/{id}

  Admin:
    POST   /api/cache/clear                           Drop memoized results

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: persistence (memory or sqlite)
  - Engine: memoized allocation
  - Factory: document to domain conversion
  Each request loads a fresh planning.Snapshot, so the engine only ever sees
  immutable inputs.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Boundary overlap
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/warp/timeline-engine/boundary"
	"github.com/warp/timeline-engine/calendar"
	"github.com/warp/timeline-engine/factory"
	"github.com/warp/timeline-engine/ics"
	"github.com/warp/timeline-engine/planning"
	"github.com/warp/timeline-engine/recurrence"
	"github.com/warp/timeline-engine/store"
)

// errBadRequest marks malformed requests that no domain package rejected.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Options tunes a Handler. Zero values fall back to package defaults.
type Options struct {
	OccurrenceCap  int
	DayModePixels  float64
	WeekModePixels float64
	Now            func() time.Time
	Logger         zerolog.Logger
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   store.Store
	Engine  *planning.Engine
	Factory *factory.Factory
	Logger  zerolog.Logger

	occurrenceCap int
	viewports     map[boundary.Mode]boundary.Viewport
	now           func() time.Time

	// Track currently loaded scenario
	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler over the given store and engine.
func NewHandler(st store.Store, engine *planning.Engine, opts Options) *Handler {
	if opts.OccurrenceCap <= 0 {
		opts.OccurrenceCap = recurrence.DefaultCap
	}
	if opts.DayModePixels <= 0 {
		opts.DayModePixels = boundary.DefaultDayModePixels
	}
	if opts.WeekModePixels <= 0 {
		opts.WeekModePixels = boundary.DefaultWeekModePixels
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Handler{
		Store:         st,
		Engine:        engine,
		Factory:       factory.New(),
		Logger:        opts.Logger.With().Str("component", "api").Logger(),
		occurrenceCap: opts.OccurrenceCap,
		viewports: map[boundary.Mode]boundary.Viewport{
			boundary.ModeDays:  {Mode: boundary.ModeDays, PixelsPerDay: opts.DayModePixels},
			boundary.ModeWeeks: {Mode: boundary.ModeWeeks, PixelsPerDay: opts.WeekModePixels},
		},
		now: opts.Now,
	}
}

func (h *Handler) today() calendar.Date {
	return calendar.DateOf(h.now())
}

// snapshot loads everything one project computation needs.
func (h *Handler) snapshot(r *http.Request) (planning.Snapshot, error) {
	id := planning.ProjectID(chi.URLParam(r, "id"))
	return planning.LoadSnapshot(r.Context(), h.Store, h.Store, id)
}

// =============================================================================
// PROJECT ENDPOINTS
// =============================================================================

// ListProjects returns all projects.
// GET /api/projects
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Store.ListProjects(r.Context())
	if err != nil {
		h.fail(w, "Failed to list projects", err)
		return
	}

	dtos := make([]factory.ProjectJSON, len(projects))
	for i, p := range projects {
		dtos[i] = factory.ProjectToJSON(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateProject creates or replaces a project. A missing id is generated.
// POST /api/projects
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req factory.ProjectJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	project, err := h.Factory.Project(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid project", err)
		return
	}
	if err := h.Store.SaveProject(r.Context(), project); err != nil {
		h.fail(w, "Failed to save project", err)
		return
	}

	h.Logger.Info().Str("project_id", string(project.ID)).Msg("project saved")
	writeJSON(w, http.StatusCreated, factory.ProjectToJSON(project))
}

// GetProject returns a project and its phases.
// GET /api/projects/{id}
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshot(r)
	if err != nil {
		h.fail(w, "Failed to load project", err)
		return
	}

	phases := planning.SortByDeadline(snap.Phases)
	dto := ProjectDetailDTO{
		Project: factory.ProjectToJSON(snap.Project),
		Phases:  make([]factory.PhaseJSON, len(phases)),
	}
	for i, p := range phases {
		dto.Phases[i] = factory.PhaseToJSON(p)
	}
	writeJSON(w, http.StatusOK, dto)
}

// GetSegments returns the project's allocation as of today.
// GET /api/projects/{id}/segments
func (h *Handler) GetSegments(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshot(r)
	if err != nil {
		h.fail(w, "Failed to load project", err)
		return
	}

	in := snap.AllocationInput(h.today())
	in.OccurrenceCap = h.occurrenceCap
	segments, err := h.Engine.Allocate(in)
	if err != nil {
		h.fail(w, "Failed to allocate segments", err)
		return
	}
	writeJSON(w, http.StatusOK, NewSegmentsResponse(snap.Project.ID, in.Window, segments))
}

// GetBudget validates phase allocations against the project estimate.
// GET /api/projects/{id}/budget?exclude=phaseID
func (h *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshot(r)
	if err != nil {
		h.fail(w, "Failed to load project", err)
		return
	}

	exclude := planning.PhaseID(r.URL.Query().Get("exclude"))
	dto := NewBudgetDTO(snap.Budget(exclude))

	if template, ok := planning.Template(snap.Phases); ok && template.ID != exclude {
		count, committed, err := planning.RecurringCommitment(template, snap.Project.Window(h.today()), h.occurrenceCap)
		if err != nil {
			h.fail(w, "Failed to expand template", err)
			return
		}
		committed = hours(committed)
		dto.Occurrences = &count
		dto.CommittedHours = &committed
	}
	writeJSON(w, http.StatusOK, dto)
}

// GetOccurrences expands the project's recurring template. from and to
// default to the project window.
// GET /api/projects/{id}/occurrences?from=&to=
func (h *Handler) GetOccurrences(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshot(r)
	if err != nil {
		h.fail(w, "Failed to load project", err)
		return
	}
	template, ok := planning.Template(snap.Phases)
	if !ok {
		writeError(w, http.StatusBadRequest, "Project has no recurring template", nil)
		return
	}

	window := snap.Project.Window(h.today())
	if window, err = rangeFromQuery(r, window); err != nil {
		h.fail(w, "Invalid date range", err)
		return
	}

	occurrences, err := recurrence.Expand(*template.Recurrence, window, h.occurrenceCap)
	if err != nil {
		h.fail(w, "Failed to expand template", err)
		return
	}

	resp := OccurrencesResponse{
		TemplateID:  string(template.ID),
		From:        window.Start.String(),
		To:          window.End.String(),
		Occurrences: make([]string, len(occurrences)),
		Periods:     toDateRangeDTOs(recurrence.OccurrenceRanges(occurrences, window.Start)),
	}
	for i, occ := range occurrences {
		resp.Occurrences[i] = occ.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// PHASE ENDPOINTS
// =============================================================================

// SavePhase creates or replaces a phase. The resulting phase set must obey
// the template rules and keep fixed phases from overlapping. Going over
// budget is reported, not rejected.
// POST /api/projects/{id}/phases
func (h *Handler) SavePhase(w http.ResponseWriter, r *http.Request) {
	var req factory.PhaseJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	req.ProjectID = chi.URLParam(r, "id")

	phase, err := h.Factory.Phase(req)
	if err != nil {
		h.fail(w, "Invalid phase", err)
		return
	}

	snap, err := h.snapshot(r)
	if err != nil {
		h.fail(w, "Failed to load project", err)
		return
	}

	phases := append([]planning.Phase{phase}, without(snap.Phases, phase.ID)...)
	if err := planning.ValidatePhaseSet(phases); err != nil {
		h.fail(w, "Invalid phase set", err)
		return
	}
	if err := boundary.ValidateLayout(planning.FixedPhases(phases)); err != nil {
		h.fail(w, "Phase overlaps another phase", err)
		return
	}

	if err := h.Store.SavePhase(r.Context(), phase); err != nil {
		h.fail(w, "Failed to save phase", err)
		return
	}

	if ok, _ := planning.CanAllocate(snap.Phases, snap.Project.EstimatedHours, phase.TimeAllocation, phase.ID); !ok {
		h.Logger.Warn().
			Str("project_id", string(snap.Project.ID)).
			Str("phase_id", string(phase.ID)).
			Msg("phase allocation exceeds project budget")
	}
	writeJSON(w, http.StatusCreated, SavePhaseResponse{
		Phase:  factory.PhaseToJSON(phase),
		Budget: NewBudgetDTO(planning.Validate(phases, snap.Project.EstimatedHours, "")),
	})
}

// DeletePhase removes a phase of the project in the path. A phase of another
// project is not found.
// DELETE /api/projects/{id}/phases/{phaseID}
func (h *Handler) DeletePhase(w http.ResponseWriter, r *http.Request) {
	id := planning.PhaseID(chi.URLParam(r, "phaseID"))
	snap, err := h.snapshot(r)
	if err != nil {
		h.fail(w, "Failed to load project", err)
		return
	}
	if _, err := planning.FindPhase(snap.Phases, id); err != nil {
		h.fail(w, "Phase not found", err)
		return
	}
	if err := h.Store.DeletePhase(r.Context(), id); err != nil {
		h.fail(w, "Failed to delete phase", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GetBounds returns how far one boundary of a phase may be dragged.
// GET /api/projects/{id}/phases/{phaseID}/bounds?action=resize-end
func (h *Handler) GetBounds(w http.ResponseWriter, r *http.Request) {
	action, err := boundary.ParseAction(r.URL.Query().Get("action"))
	if err != nil {
		h.fail(w, "Invalid action", err)
		return
	}
	snap, err := h.snapshot(r)
	if err != nil {
		h.fail(w, "Failed to load project", err)
		return
	}

	id := planning.PhaseID(chi.URLParam(r, "phaseID"))
	bounds, err := boundary.Resolve(snap.Phases, id, action)
	if err != nil {
		h.fail(w, "Failed to resolve bounds", err)
		return
	}
	idx, _ := planning.FindPhase(snap.Phases, id)
	bounds = lockToWindow(bounds, action, snap.Phases[idx], snap.Project.Window(h.today()))

	writeJSON(w, http.StatusOK, BoundsDTO{
		PhaseID: string(id),
		Action:  string(action),
		MinDate: bounds.MinDate.String(),
		MaxDate: bounds.MaxDate.String(),
	})
}

// Drag runs one drag gesture (begin, move, commit) and persists the result.
// Only the committed update is written.
// POST /api/projects/{id}/phases/{phaseID}/drag
func (h *Handler) Drag(w http.ResponseWriter, r *http.Request) {
	var req DragRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	action, err := boundary.ParseAction(req.Action)
	if err != nil {
		h.fail(w, "Invalid action", err)
		return
	}

	snap, err := h.snapshot(r)
	if err != nil {
		h.fail(w, "Failed to load project", err)
		return
	}

	id := planning.PhaseID(chi.URLParam(r, "phaseID"))
	drag, err := boundary.Begin(snap.Phases, id, action)
	if err != nil {
		h.fail(w, "Failed to start drag", err)
		return
	}
	idx, _ := planning.FindPhase(snap.Phases, id)
	drag.Bounds = lockToWindow(drag.Bounds, action, snap.Phases[idx], snap.Project.Window(h.today()))

	switch {
	case req.Date != "":
		date, err := calendar.ParseDate(req.Date)
		if err != nil {
			h.fail(w, "Invalid date", badRequest("%v", err))
			return
		}
		drag = drag.MoveTo(date)
	case req.PixelDelta != nil:
		vp, err := h.viewport(req.Mode, req.PixelsPerDay)
		if err != nil {
			h.fail(w, "Invalid viewport", err)
			return
		}
		drag = drag.Move(*req.PixelDelta, vp)
	default:
		writeError(w, http.StatusBadRequest, "Either date or pixel_delta is required", nil)
		return
	}

	drag, update, err := drag.Commit()
	if err != nil {
		h.fail(w, "Failed to commit drag", err)
		return
	}
	if update != nil {
		if err := h.Store.UpdatePhase(r.Context(), *update); err != nil {
			h.fail(w, "Failed to save phase", err)
			return
		}
		h.Logger.Info().
			Str("phase_id", string(id)).
			Str("action", string(action)).
			Stringer("candidate", drag.Candidate).
			Msg("drag committed")
	}
	writeJSON(w, http.StatusOK, toDragDTO(drag, update))
}

// viewport picks the pixel scale for a drag. An explicit width overrides the
// mode's default.
func (h *Handler) viewport(mode string, pixelsPerDay float64) (boundary.Viewport, error) {
	if mode == "" {
		mode = string(boundary.ModeDays)
	}
	vp, ok := h.viewports[boundary.Mode(mode)]
	if !ok {
		return boundary.Viewport{}, badRequest("unknown mode %q", mode)
	}
	if pixelsPerDay > 0 {
		vp.PixelsPerDay = pixelsPerDay
	}
	return vp, nil
}

// lockToWindow fills open bounds with the project window edges.
func lockToWindow(b boundary.Bounds, action boundary.Action, p planning.Phase, window calendar.DateRange) boundary.Bounds {
	if b.MinDate == nil {
		b.MinDate = planning.DatePtr(window.Start)
	}
	if b.MaxDate == nil {
		maxDate := window.End
		if action == boundary.Move && p.Start != nil {
			maxDate = maxDate.AddDays(-calendar.DaysBetween(*p.Start, p.End))
		}
		b.MaxDate = planning.DatePtr(maxDate)
	}
	return b
}

func without(phases []planning.Phase, id planning.PhaseID) []planning.Phase {
	out := make([]planning.Phase, 0, len(phases))
	for _, p := range phases {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

// =============================================================================
// EVENT ENDPOINTS
// =============================================================================

// CreateEvent records time already planned against a project.
// POST /api/projects/{id}/events
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req factory.EventJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	req.ProjectID = chi.URLParam(r, "id")

	if req.StartTime.IsZero() || req.EndTime.Before(req.StartTime) {
		writeError(w, http.StatusBadRequest, "end_time must not precede start_time", nil)
		return
	}
	if _, err := h.Store.GetProject(r.Context(), planning.ProjectID(req.ProjectID)); err != nil {
		h.fail(w, "Failed to load project", err)
		return
	}

	if err := h.Store.SaveEvent(r.Context(), h.Factory.Event(req)); err != nil {
		h.fail(w, "Failed to save event", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// =============================================================================
// ADMIN ENDPOINTS
// =============================================================================

// ClearCache drops every memoized calculation.
// POST /api/cache/clear
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.Engine.Clear()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// fail writes err with the status its category maps to. Unexpected errors
// are logged.
func (h *Handler) fail(w http.ResponseWriter, message string, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error().Err(err).Msg(message)
	}
	resp := ErrorResponse{Error: message, Code: code}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func classify(err error) (int, string) {
	switch {
	case planning.IsNotFound(err), errors.Is(err, store.ErrHolidayNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, boundary.ErrOverlapViolation):
		return http.StatusConflict, "overlap"
	case planning.IsClientError(err),
		errors.Is(err, boundary.ErrUnknownAction),
		errors.Is(err, boundary.ErrNotDragging),
		errors.Is(err, ics.ErrEmptyFeed),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "invalid_input"
	}
	return http.StatusInternalServerError, "internal"
}

// rangeFromQuery reads optional from/to query dates over a default range.
func rangeFromQuery(r *http.Request, def calendar.DateRange) (calendar.DateRange, error) {
	rng := def
	if v := r.URL.Query().Get("from"); v != "" {
		d, err := calendar.ParseDate(v)
		if err != nil {
			return rng, badRequest("from: %v", err)
		}
		rng.Start = d
	}
	if v := r.URL.Query().Get("to"); v != "" {
		d, err := calendar.ParseDate(v)
		if err != nil {
			return rng, badRequest("to: %v", err)
		}
		rng.End = d
	}
	if err := rng.Validate(); err != nil {
		return rng, err
	}
	return rng, nil
}
