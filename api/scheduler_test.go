package api

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timeline-engine/cache"
)

func TestCacheJanitor_RunNow(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	a := cache.New[int](cache.Options{Name: "a", TTL: time.Minute, Now: clock}, nil)
	b := cache.New[string](cache.Options{Name: "b", TTL: time.Hour, Now: clock}, nil)
	a.Put(1, 1)
	a.Put(2, 2)
	b.Put(1, "x")

	j := NewCacheJanitor([]cache.Purger{a, b}, zerolog.Nop())
	assert.Zero(t, j.RunNow())

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 2, j.RunNow())
	assert.Zero(t, a.Len())
	assert.Equal(t, 1, b.Len())
}

func TestCacheJanitor_StartStop(t *testing.T) {
	j := NewCacheJanitor(nil, zerolog.Nop())

	require.NoError(t, j.Start(""))
	assert.Error(t, j.Start("not a schedule"))

	require.NoError(t, j.Start("@every 1h"))
	assert.Error(t, j.Start("@every 1h"))
	j.Stop()
	j.Stop()
}
