package planning

import (
	"slices"
	"time"

	"github.com/warp/timeline-engine/cache"
	"github.com/warp/timeline-engine/calendar"
)

// =============================================================================
// ENGINE - Memoized front door
// =============================================================================

// Engine memoizes WorkingDays and Allocate. Both caches are injected so tests
// and the API control capacity, TTL and clock. A nil cache disables memoization
// for that calculation.
type Engine struct {
	days     *cache.Cache[[]calendar.Date]
	segments *cache.Cache[[]Segment]
}

// NewEngine creates an engine over the given caches.
func NewEngine(days *cache.Cache[[]calendar.Date], segments *cache.Cache[[]Segment]) *Engine {
	return &Engine{days: days, segments: segments}
}

// NewEngineWithOptions builds both caches from one set of options.
func NewEngineWithOptions(opts cache.Options, metrics *cache.Metrics) *Engine {
	dayOpts, segOpts := opts, opts
	dayOpts.Name = "working_days"
	segOpts.Name = "segments"
	return NewEngine(
		cache.New[[]calendar.Date](dayOpts, metrics),
		cache.New[[]Segment](segOpts, metrics),
	)
}

// Caches returns the engine's caches for purging and clearing.
func (e *Engine) Caches() []cache.Purger {
	var out []cache.Purger
	if e.days != nil {
		out = append(out, e.days)
	}
	if e.segments != nil {
		out = append(out, e.segments)
	}
	return out
}

// Clear empties every cache. Results are unaffected.
func (e *Engine) Clear() {
	for _, c := range e.Caches() {
		c.Clear()
	}
}

// WorkingDays is calendar.WorkingDays, memoized. The returned slice is shared
// with the cache and must not be modified.
func (e *Engine) WorkingDays(rng calendar.DateRange, schedule calendar.WeeklySchedule, holidays []calendar.Holiday, exclusions calendar.WeekdaySet) ([]calendar.Date, error) {
	if e.days == nil {
		return calendar.WorkingDays(rng, schedule, holidays, exclusions)
	}
	key := cache.NewKey("working_days")
	writeRange(key, rng)
	writeSchedule(key, schedule)
	writeHolidays(key, holidays)
	key.Int(int64(exclusions))

	return e.days.Memoize(key.Sum(), func() ([]calendar.Date, error) {
		return calendar.WorkingDays(rng, schedule, holidays, exclusions)
	})
}

// Allocate is planning.Allocate, memoized, with working days also served
// from the cache. The result is a deep copy the caller may modify.
func (e *Engine) Allocate(in AllocationInput) ([]Segment, error) {
	alloc := Allocator{WorkingDays: e.WorkingDays}
	if e.segments == nil {
		segments, err := alloc.Allocate(in)
		if err != nil {
			return nil, err
		}
		return cloneSegments(segments), nil
	}
	segments, err := e.segments.Memoize(AllocationKey(in), func() ([]Segment, error) {
		return alloc.Allocate(in)
	})
	if err != nil {
		return nil, err
	}
	return cloneSegments(segments), nil
}

// cloneSegments copies segments together with their working days and phases.
func cloneSegments(segments []Segment) []Segment {
	if segments == nil {
		return nil
	}
	out := make([]Segment, len(segments))
	for i, s := range segments {
		s.WorkingDays = slices.Clone(s.WorkingDays)
		if s.Phase != nil {
			p := *s.Phase
			if p.Start != nil {
				p.Start = DatePtr(*p.Start)
			}
			if p.Recurrence != nil {
				p.Recurrence = p.Recurrence.Clone()
			}
			s.Phase = &p
		}
		out[i] = s
	}
	return out
}

// =============================================================================
// FINGERPRINTS
// =============================================================================

// AllocationKey hashes every input that can change an allocation.
func AllocationKey(in AllocationInput) uint64 {
	key := cache.NewKey("segments").String(string(in.ProjectID))
	writeRange(key, in.Window)
	key.Float(in.Budget).Int(int64(in.Exclusions)).Int(int64(in.OccurrenceCap))
	writeSchedule(key, in.Schedule)
	writeHolidays(key, in.Holidays)

	key.Int(int64(len(in.Phases)))
	for _, p := range in.Phases {
		key.String(string(p.ID)).String(string(p.Kind)).Time(p.End.Time).Float(p.TimeAllocation).String(p.Name)
		if p.Start != nil {
			key.Bool(true).Time(p.Start.Time)
		} else {
			key.Bool(false)
		}
		if r := p.Recurrence; r != nil {
			key.String(string(r.Type)).Int(int64(r.Interval)).String(string(r.MonthlyPattern)).
				Int(int64(r.MonthlyDate)).Int(int64(r.MonthlyWeekOfMonth)).
				Int(weekdayOrNone(r.WeeklyDayOfWeek)).Int(weekdayOrNone(r.MonthlyDayOfWeek))
		}
	}

	key.Int(int64(len(in.Events)))
	for _, ev := range in.Events {
		// The same instant in another zone can land on another day.
		key.String(ev.ID).String(string(ev.ProjectID)).Int(ev.Start.UnixNano()).Int(ev.End.UnixNano()).
			Time(ev.Day().Time).Float(ev.PlannedHours())
	}
	return key.Sum()
}

func writeRange(key *cache.Key, r calendar.DateRange) {
	key.Time(r.Start.Time).Time(r.End.Time)
}

func writeSchedule(key *cache.Key, schedule calendar.WeeklySchedule) {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		slots := schedule[wd]
		key.Int(int64(len(slots)))
		for _, s := range slots {
			key.String(s.StartTime).String(s.EndTime).Float(s.Duration)
		}
	}
}

func writeHolidays(key *cache.Key, holidays []calendar.Holiday) {
	key.Int(int64(len(holidays)))
	for _, h := range holidays {
		key.String(h.ID)
		writeRange(key, h.Range)
	}
}

func weekdayOrNone(wd *time.Weekday) int64 {
	if wd == nil {
		return -1
	}
	return int64(*wd)
}
