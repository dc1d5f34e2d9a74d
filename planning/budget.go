/*
budget.go - Budget validation

PURPOSE:
  Answers "do the phases fit the project's estimated hours?" and produces
  advisory recommendations. Over-allocation is reported, never rejected.

RULES:
  - Recurring template present: the commitment is open-ended, so validation
    against the fixed budget is skipped (IsValid=true, Remaining=0).
  - Otherwise IsValid = TotalAllocated <= Budget.

RECOMMENDATION THRESHOLDS:
  overage (any amount), utilization > 90%, utilization < 50%,
  average allocation < 1h per phase, one phase holding > 50% of the budget.

SEE ALSO:
  - allocate.go: per-segment hour rates
*/
package planning

import (
	"fmt"

	"github.com/warp/timeline-engine/calendar"
	"github.com/warp/timeline-engine/recurrence"
)

const (
	highUtilizationPercent = 90
	lowUtilizationPercent  = 50
	minAverageHours        = 1
	dominantPhaseShare     = 0.5
)

// BudgetReport is the result of validating allocations against a budget.
type BudgetReport struct {
	IsValid         bool
	TotalAllocated  float64
	Budget          float64
	Utilization     float64 // percent of budget
	Remaining       float64
	Overage         float64 // > 0 only when over budget
	HasTemplate     bool
	Recommendations []string
}

// Validate checks phase allocations against the budget. The phase with
// excludePhaseID (if any) is left out, which lets callers validate an edit
// of that phase by adding its proposed allocation separately.
func Validate(phases []Phase, budget float64, excludePhaseID PhaseID) BudgetReport {
	report := BudgetReport{Budget: budget, Recommendations: []string{}}

	var counted []Phase
	for _, p := range phases {
		if excludePhaseID != "" && p.ID == excludePhaseID {
			continue
		}
		if p.IsTemplate() {
			report.HasTemplate = true
			continue
		}
		counted = append(counted, p)
		report.TotalAllocated += p.TimeAllocation
	}

	if report.HasTemplate {
		report.IsValid = true
		return report
	}

	if budget > 0 {
		report.Utilization = report.TotalAllocated / budget * 100
	}
	report.IsValid = report.TotalAllocated <= budget
	if report.IsValid {
		report.Remaining = budget - report.TotalAllocated
	} else {
		report.Overage = report.TotalAllocated - budget
	}

	report.Recommendations = recommendations(report, counted)
	return report
}

func recommendations(r BudgetReport, phases []Phase) []string {
	recs := []string{}
	if r.Overage > 0 {
		recs = append(recs, fmt.Sprintf("Over budget by %.1fh: reduce phase allocations or raise the project estimate", r.Overage))
	}
	if r.Utilization > highUtilizationPercent {
		recs = append(recs, "Budget is nearly fully allocated; leave room for unplanned work")
	}
	if r.Utilization < lowUtilizationPercent {
		recs = append(recs, "Less than half of the budget is allocated to phases")
	}
	if len(phases) > 0 && r.TotalAllocated/float64(len(phases)) < minAverageHours {
		recs = append(recs, "Average phase allocation is under 1h; consider merging small phases")
	}
	if r.Budget > 0 {
		for _, p := range phases {
			if p.TimeAllocation > r.Budget*dominantPhaseShare {
				recs = append(recs, fmt.Sprintf("Phase %q holds more than half of the budget; consider splitting it", displayName(p)))
			}
		}
	}
	return recs
}

func displayName(p Phase) string {
	if p.Name != "" {
		return p.Name
	}
	return string(p.ID)
}

// CanAllocate checks whether giving the phase `hours` keeps the project within
// budget. Pass an empty phaseID for a new phase.
func CanAllocate(phases []Phase, budget, hours float64, phaseID PhaseID) (bool, BudgetReport) {
	report := Validate(phases, budget, phaseID)
	if report.HasTemplate {
		return true, report
	}
	return report.TotalAllocated+hours <= budget, report
}

// RecurringCommitment returns how many occurrences a template has inside the
// window and the hours they commit in total.
func RecurringCommitment(template Phase, window calendar.DateRange, cap int) (int, float64, error) {
	if !template.IsTemplate() || template.Recurrence == nil {
		return 0, 0, fmt.Errorf("%w: %s is not a recurring template", ErrInvalidPhase, template.ID)
	}
	occurrences, err := recurrence.Expand(*template.Recurrence, window, cap)
	if err != nil {
		return 0, 0, err
	}
	return len(occurrences), float64(len(occurrences)) * template.TimeAllocation, nil
}
