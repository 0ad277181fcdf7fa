package show

import (
	"fmt"
	"theaterwatch/lib/textutil"
)

// Field names one of the free-text attributes that can change between runs.
type Field string

const (
	FieldSaleDates        Field = "sale_dates"
	FieldPerformanceDates Field = "performance_dates"
	FieldPricing          Field = "pricing"
	FieldDescription      Field = "description"
	FieldBookingLink      Field = "booking_link"
)

// DefaultCompareFields is the field list used when a comparison is not given
// one explicitly. Title and venue are identity, not compared.
var DefaultCompareFields = []Field{
	FieldSaleDates,
	FieldPerformanceDates,
	FieldPricing,
	FieldDescription,
	FieldBookingLink,
}

var fieldLabels = map[Field]string{
	FieldSaleDates:        "Sale Dates",
	FieldPerformanceDates: "Performance Dates",
	FieldPricing:          "Price Range",
	FieldDescription:      "Description",
	FieldBookingLink:      "URL",
}

// Label is the human readable name used in reports.
func (f Field) Label() string {
	label, ok := fieldLabels[f]
	if !ok {
		return string(f)
	}
	return label
}

// ParseField resolves a field name from configuration.
func ParseField(name string) (Field, error) {
	f := Field(textutil.NormalizeName(name))
	if _, ok := fieldLabels[f]; !ok {
		return "", fmt.Errorf("unknown show field %q", name)
	}
	return f, nil
}

// Get returns the value of a comparable field.
func (s Show) Get(f Field) string {
	switch f {
	case FieldSaleDates:
		return s.SaleDates
	case FieldPerformanceDates:
		return s.PerformanceDates
	case FieldPricing:
		return s.Pricing
	case FieldDescription:
		return s.Description
	case FieldBookingLink:
		return s.BookingLink
	}
	return ""
}
