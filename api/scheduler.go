/*
scheduler.go - Cache janitor

PURPOSE:
  Periodically drops expired entries from the engine's calculation caches so
  memory held by stale results is returned between requests. Expired entries
  are never served either way; the janitor only reclaims space.

CONFIGURATION:
  - Schedule: cron expression (robfig/cron syntax, "@every 1m" by default)
  - Empty schedule: janitor disabled

USAGE:
  janitor := NewCacheJanitor(engine.Caches(), logger)
  if err := janitor.Start("@every 1m"); err != nil { ... }
  // ... later
  janitor.Stop()

SEE ALSO:
  - cache/cache.go: Purge
  - handlers.go: ClearCache endpoint (manual clearing)
*/
package api

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/warp/timeline-engine/cache"
)

// CacheJanitor purges expired cache entries on a cron schedule.
type CacheJanitor struct {
	caches []cache.Purger
	logger zerolog.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

// NewCacheJanitor creates a janitor over the given caches.
func NewCacheJanitor(caches []cache.Purger, logger zerolog.Logger) *CacheJanitor {
	return &CacheJanitor{
		caches: caches,
		logger: logger.With().Str("component", "janitor").Logger(),
	}
}

// Start schedules purging. An empty schedule leaves the janitor disabled.
func (j *CacheJanitor) Start(spec string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if spec == "" {
		j.logger.Info().Msg("disabled, not starting")
		return nil
	}
	if j.cron != nil {
		return fmt.Errorf("janitor already started")
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, func() { j.RunNow() }); err != nil {
		return fmt.Errorf("invalid purge schedule %q: %w", spec, err)
	}
	c.Start()
	j.cron = c

	j.logger.Info().Str("schedule", spec).Msg("started")
	return nil
}

// Stop stops the schedule and waits for a running purge to finish.
func (j *CacheJanitor) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.cron != nil {
		<-j.cron.Stop().Done()
		j.cron = nil
		j.logger.Info().Msg("stopped")
	}
}

// RunNow purges every cache immediately and returns how many entries were
// dropped.
func (j *CacheJanitor) RunNow() int {
	total := 0
	for _, c := range j.caches {
		n := c.Purge()
		total += n
		if n > 0 {
			j.logger.Debug().Str("cache", c.Name()).Int("purged", n).Msg("expired entries dropped")
		}
	}
	return total
}
