/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Request bodies reuse the
  factory document types (factory.ProjectJSON, factory.PhaseJSON, ...) so the
  API and snapshot files share one schema. Responses are flattened here.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

HOURS:
  Every hour figure is rounded to two decimals with shopspring/decimal on the
  way out. Internally hours stay float64.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/snapshot.go: request document types
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/timeline-engine/boundary"
	"github.com/warp/timeline-engine/calendar"
	"github.com/warp/timeline-engine/factory"
	"github.com/warp/timeline-engine/planning"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// ProjectDetailDTO is a project with its phases.
type ProjectDetailDTO struct {
	Project factory.ProjectJSON `json:"project"`
	Phases  []factory.PhaseJSON `json:"phases"`
}

// SegmentDTO represents one allocation segment.
type SegmentDTO struct {
	Start          string  `json:"start"`
	End            string  `json:"end"`
	PhaseID        string  `json:"phase_id,omitempty"`
	PhaseName      string  `json:"phase_name,omitempty"`
	TemplateID     string  `json:"template_id,omitempty"`
	Occurrence     int     `json:"occurrence,omitempty"`
	Trailing       bool    `json:"trailing"`
	Empty          bool    `json:"empty"`
	AllocatedHours float64 `json:"allocated_hours"`
	PlannedHours   float64 `json:"planned_hours"`
	RemainingHours float64 `json:"remaining_hours"`
	HoursPerDay    float64 `json:"hours_per_day"`
	CapacityHours  float64 `json:"capacity_hours"`
	WorkingDays    int     `json:"working_days"`
	OverCapacity   bool    `json:"over_capacity"`
}

// SegmentsResponse is the allocation for a project.
type SegmentsResponse struct {
	ProjectID      string       `json:"project_id"`
	WindowStart    string       `json:"window_start"`
	WindowEnd      string       `json:"window_end"`
	TotalAllocated float64      `json:"total_allocated"`
	Segments       []SegmentDTO `json:"segments"`
}

// BudgetDTO represents a budget validation report.
type BudgetDTO struct {
	IsValid         bool     `json:"is_valid"`
	TotalAllocated  float64  `json:"total_allocated"`
	Budget          float64  `json:"budget"`
	Utilization     float64  `json:"utilization"`
	Remaining       float64  `json:"remaining"`
	Overage         float64  `json:"overage"`
	HasTemplate     bool     `json:"has_template"`
	Recommendations []string `json:"recommendations"`

	// Set when the project runs on a recurring template.
	Occurrences    *int     `json:"occurrences,omitempty"`
	CommittedHours *float64 `json:"committed_hours,omitempty"`
}

// OccurrencesResponse lists a template's occurrences and the work periods
// leading up to them.
type OccurrencesResponse struct {
	TemplateID  string         `json:"template_id"`
	From        string         `json:"from"`
	To          string         `json:"to"`
	Occurrences []string       `json:"occurrences"`
	Periods     []DateRangeDTO `json:"periods"`
}

// DateRangeDTO is an inclusive date range.
type DateRangeDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// SavePhaseResponse is returned after creating or replacing a phase.
type SavePhaseResponse struct {
	Phase  factory.PhaseJSON `json:"phase"`
	Budget BudgetDTO         `json:"budget"`
}

// BoundsDTO is the legal range for one drag action. Open edges are filled
// with the project window.
type BoundsDTO struct {
	PhaseID string `json:"phase_id"`
	Action  string `json:"action"`
	MinDate string `json:"min_date"`
	MaxDate string `json:"max_date"`
}

// DragRequest describes a completed drag gesture. Either Date or PixelDelta
// positions the boundary; Date wins when both are set.
type DragRequest struct {
	Action       string   `json:"action"`
	PixelDelta   *float64 `json:"pixel_delta,omitempty"`
	Mode         string   `json:"mode,omitempty"`
	PixelsPerDay float64  `json:"pixels_per_day,omitempty"`
	Date         string   `json:"date,omitempty"`
}

// DragDTO is the result of a committed drag.
type DragDTO struct {
	PhaseID   string          `json:"phase_id"`
	Action    string          `json:"action"`
	State     string          `json:"state"`
	Candidate string          `json:"candidate"`
	Changed   bool            `json:"changed"`
	Update    *PhaseUpdateDTO `json:"update,omitempty"`
}

// PhaseUpdateDTO is the write applied on commit.
type PhaseUpdateDTO struct {
	Start   *string `json:"start,omitempty"`
	End     *string `json:"end,omitempty"`
	DueDate *string `json:"due_date,omitempty"`
}

// HolidayImportResponse lists holidays saved from an ICS feed.
type HolidayImportResponse struct {
	Imported int                   `json:"imported"`
	Holidays []factory.HolidayJSON `json:"holidays"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"` // "fixed" or "recurring"
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

// hours rounds to two decimals for display.
func hours(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

func toSegmentDTO(s planning.Segment) SegmentDTO {
	dto := SegmentDTO{
		Start:          s.Start.String(),
		End:            s.End.String(),
		TemplateID:     string(s.TemplateID),
		Occurrence:     s.Occurrence,
		Trailing:       s.Trailing,
		Empty:          s.IsEmpty(),
		AllocatedHours: hours(s.AllocatedHours),
		PlannedHours:   hours(s.PlannedHours),
		RemainingHours: hours(s.RemainingHours),
		HoursPerDay:    hours(s.HoursPerDay),
		CapacityHours:  hours(s.CapacityHours),
		WorkingDays:    len(s.WorkingDays),
		OverCapacity:   s.OverCapacity(),
	}
	if s.Phase != nil {
		dto.PhaseID = string(s.Phase.ID)
		dto.PhaseName = s.Phase.Name
	}
	return dto
}

// NewSegmentsResponse flattens an allocation for output.
func NewSegmentsResponse(projectID planning.ProjectID, window calendar.DateRange, segments []planning.Segment) SegmentsResponse {
	resp := SegmentsResponse{
		ProjectID:      string(projectID),
		WindowStart:    window.Start.String(),
		WindowEnd:      window.End.String(),
		TotalAllocated: hours(planning.TotalAllocated(segments)),
		Segments:       make([]SegmentDTO, len(segments)),
	}
	for i, s := range segments {
		resp.Segments[i] = toSegmentDTO(s)
	}
	return resp
}

// NewBudgetDTO flattens a budget report for output.
func NewBudgetDTO(r planning.BudgetReport) BudgetDTO {
	recs := r.Recommendations
	if recs == nil {
		recs = []string{}
	}
	return BudgetDTO{
		IsValid:         r.IsValid,
		TotalAllocated:  hours(r.TotalAllocated),
		Budget:          hours(r.Budget),
		Utilization:     hours(r.Utilization),
		Remaining:       hours(r.Remaining),
		Overage:         hours(r.Overage),
		HasTemplate:     r.HasTemplate,
		Recommendations: recs,
	}
}

func toDateRangeDTOs(ranges []calendar.DateRange) []DateRangeDTO {
	dtos := make([]DateRangeDTO, len(ranges))
	for i, r := range ranges {
		dtos[i] = DateRangeDTO{Start: r.Start.String(), End: r.End.String()}
	}
	return dtos
}

func toDragDTO(d boundary.Drag, update *planning.PhaseUpdate) DragDTO {
	dto := DragDTO{
		PhaseID:   string(d.PhaseID),
		Action:    string(d.Action),
		State:     string(d.State),
		Candidate: d.Candidate.String(),
		Changed:   update != nil,
	}
	if update != nil {
		dto.Update = &PhaseUpdateDTO{
			Start:   dateString(update.Start),
			End:     dateString(update.End),
			DueDate: dateString(update.DueDate),
		}
	}
	return dto
}

func dateString(d *calendar.Date) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func toHolidayJSON(h calendar.Holiday) factory.HolidayJSON {
	return factory.HolidayJSON{
		ID:        h.ID,
		Name:      h.Name,
		StartDate: h.Range.Start.String(),
		EndDate:   h.Range.End.String(),
	}
}
