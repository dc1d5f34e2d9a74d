// Package ics imports holidays from iCalendar feeds.
//
// Every VEVENT becomes a holiday covering the days it spans. All-day events
// use an exclusive DTEND (RFC 5545), so the last holiday day is DTEND - 1.
// Events carrying an RRULE (typically FREQ=YEARLY) are expanded inside the
// import window; without a window only the first instance is kept.
package ics

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/rs/zerolog"
	"github.com/teambition/rrule-go"

	"github.com/warp/timeline-engine/calendar"
)

// ErrEmptyFeed is returned for an empty body.
var ErrEmptyFeed = errors.New("empty ICS body")

// Importer converts ICS payloads to holidays.
type Importer struct {
	// Window bounds RRULE expansion. The zero value disables it.
	Window calendar.DateRange
	Logger zerolog.Logger
}

// NewImporter creates an importer that logs skipped events to logger.
func NewImporter(window calendar.DateRange, logger zerolog.Logger) *Importer {
	return &Importer{Window: window, Logger: logger.With().Str("component", "ics").Logger()}
}

// Import parses body and returns one holiday per event instance. Events that
// cannot be read are logged and skipped.
func (im *Importer) Import(body []byte) ([]calendar.Holiday, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyFeed
	}
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse ICS: %w", err)
	}

	var out []calendar.Holiday
	for _, ve := range cal.Events() {
		hs, err := im.holidays(ve)
		if err != nil {
			im.Logger.Warn().Err(err).Msg("skipping VEVENT")
			continue
		}
		out = append(out, hs...)
	}
	im.Logger.Debug().Int("holidays", len(out)).Msg("ics import completed")
	return out, nil
}

func (im *Importer) holidays(ve *ical.VEvent) ([]calendar.Holiday, error) {
	uid := ""
	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		uid = p.Value
	}
	if uid == "" {
		return nil, errors.New("missing UID")
	}
	name := ""
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		name = p.Value
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return nil, fmt.Errorf("event %s: DTSTART: %w", uid, err)
	}
	first := calendar.DateOf(start)
	last := first
	if end, err := ve.GetEndAt(); err == nil {
		last = calendar.DateOf(end)
		// DTEND is exclusive, so an end at midnight belongs to the previous day.
		if end.Equal(time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location())) {
			last = last.AddDays(-1)
		}
	}
	if last.Before(first) {
		last = first
	}
	length := calendar.DaysBetween(first, last)

	p := ve.GetProperty(ical.ComponentPropertyRrule)
	if p == nil || im.Window.IsEmpty() {
		return []calendar.Holiday{{ID: uid, Name: name, Range: calendar.DateRange{Start: first, End: last}}}, nil
	}

	opt, err := rrule.StrToROption(p.Value)
	if err != nil {
		return nil, fmt.Errorf("event %s: RRULE: %w", uid, err)
	}
	opt.Dtstart = first.Time
	rule, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("event %s: RRULE: %w", uid, err)
	}

	var out []calendar.Holiday
	for _, t := range rule.Between(im.Window.Start.Time, im.Window.End.Time, true) {
		s := calendar.DateOf(t)
		out = append(out, calendar.Holiday{
			ID:    fmt.Sprintf("%s@%s", uid, s),
			Name:  name,
			Range: calendar.DateRange{Start: s, End: s.AddDays(length)},
		})
	}
	return out, nil
}
