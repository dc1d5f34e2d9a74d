package planning_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timeline-engine/planning"
)

func TestValidate_WithinBudget(t *testing.T) {
	report := planning.Validate([]planning.Phase{fixed("a", "2025-01-10", 20), fixed("b", "2025-01-20", 20)}, 80, "")

	assert.True(t, report.IsValid)
	assert.InDelta(t, 40.0, report.TotalAllocated, 1e-9)
	assert.InDelta(t, 50.0, report.Utilization, 1e-9)
	assert.InDelta(t, 40.0, report.Remaining, 1e-9)
	assert.Equal(t, 0.0, report.Overage)
	assert.Empty(t, report.Recommendations)
}

func TestValidate_OverBudget_ReportedNotRejected(t *testing.T) {
	report := planning.Validate([]planning.Phase{fixed("a", "2025-01-10", 50), fixed("b", "2025-01-20", 40)}, 80, "")

	assert.False(t, report.IsValid)
	assert.InDelta(t, 10.0, report.Overage, 1e-9)
	assert.Equal(t, 0.0, report.Remaining)
	require.NotEmpty(t, report.Recommendations)
	assert.Contains(t, report.Recommendations[0], "Over budget by 10.0h")
	assert.Contains(t, report.Recommendations, `Phase "a" holds more than half of the budget; consider splitting it`)
	// Over 100% utilization is also above the high-utilization threshold.
	assert.Contains(t, report.Recommendations, "Budget is nearly fully allocated; leave room for unplanned work")
}

func TestValidate_HighUtilization(t *testing.T) {
	report := planning.Validate([]planning.Phase{fixed("a", "2025-01-10", 38), fixed("b", "2025-01-20", 37)}, 80, "")

	assert.True(t, report.IsValid)
	assert.Equal(t, []string{"Budget is nearly fully allocated; leave room for unplanned work"}, report.Recommendations)
}

func TestValidate_LowUtilizationAndTinyPhases(t *testing.T) {
	report := planning.Validate([]planning.Phase{fixed("a", "2025-01-10", 0.5), fixed("b", "2025-01-20", 0.5)}, 80, "")

	assert.Equal(t, []string{
		"Less than half of the budget is allocated to phases",
		"Average phase allocation is under 1h; consider merging small phases",
	}, report.Recommendations)
}

func TestValidate_ExcludePhase(t *testing.T) {
	phases := []planning.Phase{fixed("a", "2025-01-10", 50), fixed("b", "2025-01-20", 40)}

	report := planning.Validate(phases, 80, "a")

	assert.True(t, report.IsValid)
	assert.InDelta(t, 40.0, report.TotalAllocated, 1e-9)
}

func TestValidate_TemplateBypassesBudget(t *testing.T) {
	// GIVEN: A recurring template whose occurrences would overrun any budget
	report := planning.Validate([]planning.Phase{weeklyTemplate(time.Monday, 500)}, 10, "")

	// THEN: Validation is skipped
	assert.True(t, report.IsValid)
	assert.True(t, report.HasTemplate)
	assert.Equal(t, 0.0, report.Remaining)
	assert.Empty(t, report.Recommendations)
}

func TestValidate_ZeroBudget_ZeroUtilization(t *testing.T) {
	report := planning.Validate([]planning.Phase{fixed("a", "2025-01-10", 5)}, 0, "")

	assert.Equal(t, 0.0, report.Utilization)
	assert.False(t, report.IsValid)
	assert.InDelta(t, 5.0, report.Overage, 1e-9)
}

func TestCanAllocate(t *testing.T) {
	phases := []planning.Phase{fixed("a", "2025-01-10", 50), fixed("b", "2025-01-20", 20)}

	ok, _ := planning.CanAllocate(phases, 80, 10, "")
	assert.True(t, ok)

	ok, _ = planning.CanAllocate(phases, 80, 11, "")
	assert.False(t, ok)

	// Replacing b's 20h with 30h fits exactly
	ok, report := planning.CanAllocate(phases, 80, 30, "b")
	assert.True(t, ok)
	assert.InDelta(t, 50.0, report.TotalAllocated, 1e-9)
}

func TestRecurringCommitment(t *testing.T) {
	n, hours, err := planning.RecurringCommitment(weeklyTemplate(time.Monday, 5), jan2025(), 0)
	require.NoError(t, err)

	assert.Equal(t, 4, n)
	assert.InDelta(t, 20.0, hours, 1e-9)

	_, _, err = planning.RecurringCommitment(fixed("a", "2025-01-10", 5), jan2025(), 0)
	assert.ErrorIs(t, err, planning.ErrInvalidPhase)
}

func TestValidatePhaseSet_RejectsNegativeAllocation(t *testing.T) {
	err := planning.ValidatePhaseSet([]planning.Phase{fixed("a", "2025-01-10", -1)})

	var setErr *planning.PhaseSetError
	require.ErrorAs(t, err, &setErr)
	assert.Equal(t, planning.ProjectID("p1"), setErr.ProjectID)
	assert.ErrorIs(t, err, planning.ErrInvalidPhase)
}

func TestPhaseUpdate_Apply(t *testing.T) {
	p := fixed("a", "2025-01-10", 5)
	start := d("2025-01-02")

	updated := planning.PhaseUpdate{PhaseID: "a", Start: &start, DueDate: planning.DatePtr(d("2025-01-12"))}.Apply(p)

	require.NotNil(t, updated.Start)
	assert.Equal(t, start, *updated.Start)
	assert.Equal(t, d("2025-01-12"), updated.End)
	assert.Nil(t, p.Start)
}
