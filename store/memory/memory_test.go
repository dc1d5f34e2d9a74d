package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timeline-engine/calendar"
	"github.com/warp/timeline-engine/planning"
	"github.com/warp/timeline-engine/store"
	"github.com/warp/timeline-engine/store/memory"
	"github.com/warp/timeline-engine/store/storetest"
)

func TestMemory(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return memory.New() })
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := memory.New()
	start := calendar.MustParseDate("2025-01-02")
	require.NoError(t, m.SavePhase(ctx, planning.Phase{ID: "a", ProjectID: "p", Kind: planning.KindFixed, Start: &start, End: calendar.MustParseDate("2025-01-10")}))

	phases, err := m.ListPhases(ctx, "p")
	require.NoError(t, err)
	*phases[0].Start = calendar.MustParseDate("2025-01-05")

	again, err := m.ListPhases(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, calendar.MustParseDate("2025-01-02"), *again[0].Start)
}
