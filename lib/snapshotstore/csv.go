package snapshotstore

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"theaterwatch/lib/show"
	"time"
)

const (
	colTitle            = "title"
	colVenue            = "venue"
	colSaleDates        = "sale_dates"
	colPerformanceDates = "performance_dates"
	colPricing          = "pricing"
	colDescription      = "description"
	colBookingLink      = "booking_link"
	colSource           = "source"
	colCapturedAt       = "captured_at"
)

var header = []string{
	colTitle,
	colVenue,
	colSaleDates,
	colPerformanceDates,
	colPricing,
	colDescription,
	colBookingLink,
	colSource,
	colCapturedAt,
}

// column names written by earlier versions of the scraper
var legacyColumns = map[string]string{
	"url":         colBookingLink,
	"price_range": colPricing,
	"theater_id":  colSource,
}

func writeCSV(w io.Writer, shows []show.Show) error {
	writer := csv.NewWriter(w)
	err := writer.Write(header)
	if err != nil {
		return err
	}
	for _, s := range shows {
		err = writer.Write([]string{
			s.Title,
			s.Venue,
			s.SaleDates,
			s.PerformanceDates,
			s.Pricing,
			s.Description,
			s.BookingLink,
			s.Source,
			s.CapturedAt.Format(time.DateOnly),
		})
		if err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

type row map[string]string

func (r row) get(column string) string {
	return r[column]
}

// joinRange renders the start/end date pair used by legacy snapshots.
func joinRange(start, end string) string {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	switch {
	case start == "":
		return end
	case end == "" || end == start:
		return start
	}
	return start + " - " + end
}

func (r row) raw() show.RawRecord {
	performance := r.get(colPerformanceDates)
	if performance == "" {
		performance = joinRange(r.get("performance_start_date"), r.get("performance_end_date"))
	}
	sale := r.get(colSaleDates)
	if sale == "" {
		sale = joinRange(r.get("member_sale_date"), r.get("general_sale_date"))
	}
	return show.RawRecord{
		Source:           r.get(colSource),
		Title:            r.get(colTitle),
		Venue:            r.get(colVenue),
		SaleDates:        sale,
		PerformanceDates: performance,
		Pricing:          r.get(colPricing),
		Description:      r.get(colDescription),
		BookingLink:      r.get(colBookingLink),
	}
}

// readCSV returns one row per record keyed by column name. Rows shorter or
// longer than the header are rejected.
func readCSV(r io.Reader) ([]row, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header")
	}

	columns := make([]string, len(records[0]))
	for i, name := range records[0] {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if canonical, ok := legacyColumns[name]; ok {
			name = canonical
		}
		columns[i] = name
	}

	rows := make([]row, 0, len(records)-1)
	for _, record := range records[1:] {
		r := make(row, len(columns))
		for i, value := range record {
			r[columns[i]] = value
		}
		rows = append(rows, r)
	}
	return rows, nil
}
