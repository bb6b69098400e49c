package feed

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "github.com/RubberMartyr/jvgh-kantinedienst/internal/log"
)

// ParseError marks a malformed fixture record or timestamp. Offending records
// are skipped; parsing continues with the rest of the feed.
type ParseError struct {
	Field string
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("feed parse: bad %s %q", e.Field, e.Value)
}

// ParsedFixture is the normalized representation of one kept fixture record,
// before recurrence expansion.
type ParsedFixture struct {
	UID      string
	Summary  string
	Location string

	Start time.Time
	End   time.Time

	// Recurrence fields; expansion is done in expand.go.
	RawRRule string
	ExDates  []time.Time
}

// Parser converts a raw calendar-feed body into home fixtures.
type Parser struct {
	// HomeVenue must appear in the left-hand token of a "/"-split summary
	// for the record to be kept. Away and malformed fixtures are dropped.
	HomeVenue string

	// Loc is the location local (non-UTC) feed timestamps are read in.
	// Nil means time.Local.
	Loc *time.Location
}

// Parse scans the feed body and returns the kept fixture records. Records
// with an unparseable start are skipped; a missing or invalid end defaults
// to start + 1 hour.
func (p *Parser) Parse(body []byte) ([]ParsedFixture, error) {
	if len(body) == 0 {
		return nil, errors.New("empty feed body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	fixtures := make([]ParsedFixture, 0)

	for _, ve := range cal.Events() {
		fx, perr := p.parseEvent(ve)
		if perr != nil {
			// Log and skip this record, but keep parsing others.
			appLog.Debug("feed record skipped", "reason", perr.Error())
			continue
		}
		if !p.isHomeFixture(fx.Summary) {
			continue
		}
		fixtures = append(fixtures, fx)
	}

	appLog.Info("feed parse completed", "kept", len(fixtures))
	return fixtures, nil
}

func (p *Parser) parseEvent(ve *ical.VEvent) (ParsedFixture, error) {
	var out ParsedFixture

	if uid := ve.GetProperty(ical.ComponentPropertyUniqueId); uid != nil {
		out.UID = uid.Value
	}
	if s := ve.GetProperty(ical.ComponentPropertySummary); s != nil {
		out.Summary = s.Value
	}
	if l := ve.GetProperty(ical.ComponentPropertyLocation); l != nil {
		out.Location = l.Value
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return out, &ParseError{Field: "DTSTART", Value: ""}
	}
	start, err := p.parseFeedTime(dtStart.Value)
	if err != nil {
		return out, err
	}
	out.Start = start

	// Missing or invalid DTEND defaults to start + 1 hour.
	out.End = start.Add(time.Hour)
	if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil {
		if end, endErr := p.parseFeedTime(dtEnd.Value); endErr == nil {
			out.End = end
		}
	}

	if rr := ve.GetProperty(ical.ComponentPropertyRrule); rr != nil {
		out.RawRRule = rr.Value
	}
	for _, ex := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(ex.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, exErr := p.parseFeedTime(part); exErr == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	return out, nil
}

// isHomeFixture applies the home-venue keep-filter: the summary is split on
// "/" and the record is kept only when the left-hand token names the home
// venue. "Herk-De-Stad / Away United" is kept, the reverse is dropped.
func (p *Parser) isHomeFixture(summary string) bool {
	parts := strings.Split(summary, "/")
	if len(parts) < 2 {
		return false
	}
	return strings.Contains(parts[0], p.HomeVenue)
}

// parseFeedTime parses the five timestamp encodings the feed uses:
// date-only, local date-time and UTC date-time, the latter two each with or
// without seconds.
func (p *Parser) parseFeedTime(raw string) (time.Time, error) {
	// Field values may arrive as "TZID=...:20260214T180000"; keep the part
	// after the last colon, mirroring how the feed is scanned upstream.
	if i := strings.LastIndex(raw, ":"); i >= 0 {
		raw = raw[i+1:]
	}
	raw = strings.TrimSpace(raw)

	loc := p.Loc
	if loc == nil {
		loc = time.Local
	}

	switch {
	case len(raw) == 8: // YYYYMMDD (date-only)
		return time.ParseInLocation("20060102", raw, loc)
	case len(raw) == 13 && raw[8] == 'T': // YYYYMMDDTHHMM (local, no seconds)
		return time.ParseInLocation("20060102T1504", raw, loc)
	case len(raw) == 14 && raw[8] == 'T' && raw[13] == 'Z': // YYYYMMDDTHHMMZ (UTC, no seconds)
		return time.Parse("20060102T1504Z", raw)
	case len(raw) == 15 && raw[8] == 'T': // YYYYMMDDTHHMMSS (local)
		return time.ParseInLocation("20060102T150405", raw, loc)
	case len(raw) == 16 && raw[8] == 'T' && raw[15] == 'Z': // YYYYMMDDTHHMMSSZ (UTC)
		return time.Parse("20060102T150405Z", raw)
	}

	return time.Time{}, &ParseError{Field: "timestamp", Value: raw}
}
