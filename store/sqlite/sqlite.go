/*
Package sqlite provides a SQLite-backed implementation of store.Store.

KEY TABLES:
  projects:       Project window, budget and weekday exclusions
  phases:         Fixed phases and recurring templates (recurrence as JSON)
  events:         Planned calendar time per project
  holidays:       Workspace holidays as inclusive date ranges
  schedule_slots: The weekly schedule, one row per work slot

STORAGE FORMATS:
  Dates are TEXT "YYYY-MM-DD". Event times are TEXT RFC 3339. Hours are
  TEXT decimals (shopspring/decimal) so 0.1-style values survive exactly.
  The recurrence config is stored as JSON in phases.recurrence_json.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety and a single connection, which also
  keeps ":memory:" databases alive across calls.

USAGE:
  store, err := sqlite.New("./data/timeline.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). A database without schedule rows is
  seeded with the standard Monday-Friday week.

SEE ALSO:
  - store/store.go: Interface definition
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/timeline-engine/calendar"
	"github.com/warp/timeline-engine/planning"
	"github.com/warp/timeline-engine/recurrence"
	"github.com/warp/timeline-engine/store"
)

// Store implements store.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ store.Store = (*Store)(nil)

// New opens (and migrates) the database at dbPath.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := s.seedSchedule(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed schedule: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		start_date TEXT NOT NULL,
		end_date TEXT,
		continuous BOOLEAN NOT NULL DEFAULT FALSE,
		estimated_hours TEXT NOT NULL DEFAULT '0',
		excluded_weekdays INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS phases (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		kind TEXT NOT NULL,
		start_date TEXT,
		end_date TEXT,
		time_allocation TEXT NOT NULL DEFAULT '0',
		recurrence_json TEXT,
		updated_at TEXT NOT NULL
	);

	-- Allocation reads every phase of a project ordered by deadline
	CREATE INDEX IF NOT EXISTS idx_phases_project_end
		ON phases(project_id, end_date);

	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_project_start
		ON events(project_id, start_time);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_holidays_start
		ON holidays(start_date);

	CREATE TABLE IF NOT EXISTS schedule_slots (
		weekday INTEGER NOT NULL,
		position INTEGER NOT NULL,
		start_time TEXT NOT NULL DEFAULT '',
		end_time TEXT NOT NULL DEFAULT '',
		duration TEXT NOT NULL DEFAULT '0',
		PRIMARY KEY (weekday, position)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) seedSchedule(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schedule_slots").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return s.SaveSchedule(ctx, calendar.StandardWeek(store.DefaultHoursPerDay))
}

// =============================================================================
// PROJECTS
// =============================================================================

// SaveProject inserts or replaces a project.
func (s *Store) SaveProject(ctx context.Context, p planning.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO projects (id, name, start_date, end_date, continuous, estimated_hours,
		                      excluded_weekdays, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			continuous = excluded.continuous,
			estimated_hours = excluded.estimated_hours,
			excluded_weekdays = excluded.excluded_weekdays,
			updated_at = excluded.updated_at
	`
	now := time.Now().UTC().Format(time.RFC3339)
	var end sql.NullString
	if !p.Continuous {
		end = nullString(p.End.String())
	}
	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Start.String(), end, p.Continuous,
		formatHours(p.EstimatedHours), int(p.Exclusions), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

// GetProject retrieves a project by ID.
func (s *Store) GetProject(ctx context.Context, id planning.ProjectID) (planning.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, start_date, end_date, continuous, estimated_hours, excluded_weekdays
		FROM projects WHERE id = ?
	`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return planning.Project{}, fmt.Errorf("%w: %s", planning.ErrProjectNotFound, id)
	}
	return p, err
}

// ListProjects returns all projects ordered by ID.
func (s *Store) ListProjects(ctx context.Context) ([]planning.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, start_date, end_date, continuous, estimated_hours, excluded_weekdays
		FROM projects ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var out []planning.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (planning.Project, error) {
	var (
		p                planning.Project
		id, start, hours string
		end              sql.NullString
		excluded         int
	)
	if err := row.Scan(&id, &p.Name, &start, &end, &p.Continuous, &hours, &excluded); err != nil {
		return planning.Project{}, err
	}
	p.ID = planning.ProjectID(id)
	p.Start = parseDate(start)
	if end.Valid {
		p.End = parseDate(end.String)
	}
	p.EstimatedHours = parseHours(hours)
	p.Exclusions = calendar.WeekdaySet(excluded)
	return p, nil
}

// =============================================================================
// PHASES
// =============================================================================

// SavePhase inserts or replaces a phase.
func (s *Store) SavePhase(ctx context.Context, p planning.Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var recurrenceJSON sql.NullString
	if p.Recurrence != nil {
		b, err := json.Marshal(p.Recurrence)
		if err != nil {
			return fmt.Errorf("failed to encode recurrence: %w", err)
		}
		recurrenceJSON = nullString(string(b))
	}
	var start, end sql.NullString
	if p.Start != nil {
		start = nullString(p.Start.String())
	}
	if !p.End.IsZero() {
		end = nullString(p.End.String())
	}

	query := `
		INSERT INTO phases (id, project_id, name, kind, start_date, end_date, time_allocation,
		                    recurrence_json, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			project_id = excluded.project_id,
			name = excluded.name,
			kind = excluded.kind,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			time_allocation = excluded.time_allocation,
			recurrence_json = excluded.recurrence_json,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.ProjectID, p.Name, p.Kind, start, end,
		formatHours(p.TimeAllocation), recurrenceJSON, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save phase: %w", err)
	}
	return nil
}

// ListPhases returns the project's phases ordered by deadline.
func (s *Store) ListPhases(ctx context.Context, projectID planning.ProjectID) ([]planning.Phase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, name, kind, start_date, end_date, time_allocation, recurrence_json
		FROM phases WHERE project_id = ?
		ORDER BY end_date ASC, id ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query phases: %w", err)
	}
	defer rows.Close()

	var out []planning.Phase
	for rows.Next() {
		p, err := scanPhase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPhase(row scanner) (planning.Phase, error) {
	var (
		p                          planning.Phase
		id, projectID, kind, hours string
		start, end, recurrenceJSON sql.NullString
	)
	if err := row.Scan(&id, &projectID, &p.Name, &kind, &start, &end, &hours, &recurrenceJSON); err != nil {
		return planning.Phase{}, fmt.Errorf("failed to scan phase: %w", err)
	}
	p.ID = planning.PhaseID(id)
	p.ProjectID = planning.ProjectID(projectID)
	p.Kind = planning.PhaseKind(kind)
	p.TimeAllocation = parseHours(hours)
	if start.Valid {
		p.Start = planning.DatePtr(parseDate(start.String))
	}
	if end.Valid {
		p.End = parseDate(end.String)
	}
	if recurrenceJSON.Valid {
		var cfg recurrence.Config
		if err := json.Unmarshal([]byte(recurrenceJSON.String), &cfg); err != nil {
			return planning.Phase{}, fmt.Errorf("phase %s: failed to decode recurrence: %w", id, err)
		}
		p.Recurrence = &cfg
	}
	return p, nil
}

// UpdatePhase applies a committed boundary change.
func (s *Store) UpdatePhase(ctx context.Context, u planning.PhaseUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var start, end sql.NullString
	if u.Start != nil {
		start = nullString(u.Start.String())
	}
	switch {
	case u.End != nil:
		end = nullString(u.End.String())
	case u.DueDate != nil:
		end = nullString(u.DueDate.String())
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE phases SET
			start_date = COALESCE(?, start_date),
			end_date = COALESCE(?, end_date),
			updated_at = ?
		WHERE id = ?
	`, start, end, time.Now().UTC().Format(time.RFC3339), u.PhaseID)
	if err != nil {
		return fmt.Errorf("failed to update phase: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", planning.ErrPhaseNotFound, u.PhaseID)
	}
	return nil
}

// DeletePhase removes a phase.
func (s *Store) DeletePhase(ctx context.Context, id planning.PhaseID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM phases WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete phase: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", planning.ErrPhaseNotFound, id)
	}
	return nil
}

// =============================================================================
// EVENTS
// =============================================================================

// SaveEvent inserts or replaces an event.
func (s *Store) SaveEvent(ctx context.Context, e planning.CalendarEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, project_id, title, start_time, end_time)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			project_id = excluded.project_id,
			title = excluded.title,
			start_time = excluded.start_time,
			end_time = excluded.end_time
	`, e.ID, e.ProjectID, e.Title, e.Start.Format(time.RFC3339Nano), e.End.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}
	return nil
}

// ListEvents returns the project's events ordered by start time.
func (s *Store) ListEvents(ctx context.Context, projectID planning.ProjectID) ([]planning.CalendarEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, title, start_time, end_time
		FROM events WHERE project_id = ?
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var out []planning.CalendarEvent
	for rows.Next() {
		var (
			e                        planning.CalendarEvent
			projectIDStr, start, end string
		)
		if err := rows.Scan(&e.ID, &projectIDStr, &e.Title, &start, &end); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.ProjectID = planning.ProjectID(projectIDStr)
		if e.Start, err = time.Parse(time.RFC3339Nano, start); err != nil {
			return nil, fmt.Errorf("event %s: %w", e.ID, err)
		}
		if e.End, err = time.Parse(time.RFC3339Nano, end); err != nil {
			return nil, fmt.Errorf("event %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// RFC 3339 text with mixed offsets does not sort chronologically in SQL.
	sortEvents(out)
	return out, nil
}

// =============================================================================
// CALENDAR
// =============================================================================

// Schedule returns the weekly schedule.
func (s *Store) Schedule(ctx context.Context) (calendar.WeeklySchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT weekday, start_time, end_time, duration
		FROM schedule_slots ORDER BY weekday, position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule: %w", err)
	}
	defer rows.Close()

	schedule := calendar.WeeklySchedule{}
	for rows.Next() {
		var (
			wd       int
			slot     calendar.WorkSlot
			duration string
		)
		if err := rows.Scan(&wd, &slot.StartTime, &slot.EndTime, &duration); err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slot.Duration = parseHours(duration)
		schedule[time.Weekday(wd)] = append(schedule[time.Weekday(wd)], slot)
	}
	return schedule, rows.Err()
}

// SaveSchedule replaces the weekly schedule atomically.
func (s *Store) SaveSchedule(ctx context.Context, schedule calendar.WeeklySchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM schedule_slots"); err != nil {
		return err
	}
	for wd, slots := range schedule {
		for i, slot := range slots {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO schedule_slots (weekday, position, start_time, end_time, duration)
				VALUES (?, ?, ?, ?, ?)
			`, int(wd), i, slot.StartTime, slot.EndTime, formatHours(slot.Duration))
			if err != nil {
				return fmt.Errorf("failed to save slot: %w", err)
			}
		}
	}
	return tx.Commit()
}

// SaveHoliday inserts or replaces a holiday.
func (s *Store) SaveHoliday(ctx context.Context, h calendar.Holiday) error {
	if err := h.Range.Validate(); err != nil {
		return fmt.Errorf("holiday %s: %w", h.ID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holidays (id, name, start_date, end_date, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			start_date = excluded.start_date,
			end_date = excluded.end_date
	`, h.ID, h.Name, h.Range.Start.String(), h.Range.End.String(), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save holiday: %w", err)
	}
	return nil
}

// Holidays returns all holidays ordered by start date.
func (s *Store) Holidays(ctx context.Context) ([]calendar.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, start_date, end_date
		FROM holidays ORDER BY start_date ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	var out []calendar.Holiday
	for rows.Next() {
		var (
			h          calendar.Holiday
			start, end string
		)
		if err := rows.Scan(&h.ID, &h.Name, &start, &end); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		h.Range = calendar.DateRange{Start: parseDate(start), End: parseDate(end)}
		out = append(out, h)
	}
	return out, rows.Err()
}

// DeleteHoliday deletes a holiday by ID.
func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM holidays WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", store.ErrHolidayNotFound, id)
	}
	return nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo) and restores the standard week.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	tables := []string{"projects", "phases", "events", "holidays", "schedule_slots"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	s.mu.Unlock()
	return s.seedSchedule(ctx)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func formatHours(h float64) string {
	return decimal.NewFromFloat(h).String()
}

func parseHours(s string) float64 {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

// parseDate reads a stored date. Rows are only written by this package, so a
// malformed value means corruption and is read as the zero date.
func parseDate(s string) calendar.Date {
	d, err := calendar.ParseDate(s)
	if err != nil {
		return calendar.Date{}
	}
	return d
}

func sortEvents(events []planning.CalendarEvent) {
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Start.Equal(events[j].Start) {
			return events[i].Start.Before(events[j].Start)
		}
		return events[i].ID < events[j].ID
	})
}
