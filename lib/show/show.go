// Package show holds the canonical show record and the rules for turning
// scraped text into one.
package show

import (
	"fmt"
	"strings"
	"time"
)

// RawRecord is a listing exactly as a venue parser extracted it. Any field
// may be empty or padded with whitespace.
type RawRecord struct {
	Source           string
	Title            string
	Venue            string
	SaleDates        string
	PerformanceDates string
	Pricing          string
	Description      string
	BookingLink      string
}

// Show is a normalized listing. Build one with Normalize; the zero value is
// not a valid show.
type Show struct {
	Title            string
	Venue            string
	SaleDates        string
	PerformanceDates string
	Pricing          string
	Description      string
	BookingLink      string

	// Source is the id of the monitored theater the listing came from.
	// It is carried for the report and never takes part in matching.
	Source string
	// CapturedAt is the snapshot date, stamped by the snapshot store.
	CapturedAt time.Time
}

// Valid reports whether the show satisfies the title/venue invariant.
func (s Show) Valid() bool {
	return strings.TrimSpace(s.Title) != "" || strings.TrimSpace(s.Venue) != ""
}

func (s Show) String() string {
	return fmt.Sprintf("%s (%s)", s.Title, s.Venue)
}

// SourceError is a per-source failure reported by the scraping layer. The
// core only appends to and forwards these.
type SourceError struct {
	Source  string
	Message string
}

func (e SourceError) String() string {
	if e.Source == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Message)
}

// MalformedRecordError is returned by Normalize when a raw record has neither
// a title nor a venue.
type MalformedRecordError struct {
	Record RawRecord
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf(
		"malformed record from %q: title and venue are both empty (link %q)",
		e.Record.Source, strings.TrimSpace(e.Record.BookingLink),
	)
}

// AsSourceError converts the failure into an entry for the pass-through
// error list.
func (e *MalformedRecordError) AsSourceError() SourceError {
	return SourceError{Source: e.Record.Source, Message: e.Error()}
}
