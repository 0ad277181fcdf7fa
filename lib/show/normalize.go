package show

import (
	"errors"
	"theaterwatch/lib/textutil"
)

// Normalize trims every text field and collapses internal whitespace runs to
// a single space. Case is kept as scraped. Records with neither title nor
// venue are rejected with *MalformedRecordError.
func Normalize(raw RawRecord) (Show, error) {
	s := Show{
		Title:            textutil.Collapse(raw.Title),
		Venue:            textutil.Collapse(raw.Venue),
		SaleDates:        textutil.Collapse(raw.SaleDates),
		PerformanceDates: textutil.Collapse(raw.PerformanceDates),
		Pricing:          textutil.Collapse(raw.Pricing),
		Description:      textutil.Collapse(raw.Description),
		BookingLink:      textutil.Collapse(raw.BookingLink),
		Source:           textutil.Collapse(raw.Source),
	}
	if !s.Valid() {
		return Show{}, &MalformedRecordError{Record: raw}
	}
	return s, nil
}

// NormalizeAll normalizes a batch, dropping malformed records and reporting
// each one as a SourceError. Valid records keep their input order.
func NormalizeAll(raws []RawRecord) ([]Show, []SourceError) {
	shows := make([]Show, 0, len(raws))
	var errs []SourceError
	for _, raw := range raws {
		s, err := Normalize(raw)
		var malformed *MalformedRecordError
		if errors.As(err, &malformed) {
			errs = append(errs, malformed.AsSourceError())
			continue
		}
		shows = append(shows, s)
	}
	return shows, errs
}
