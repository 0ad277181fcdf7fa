// Package report renders a change set into the plain text email sent after
// each run.
package report

import (
	"fmt"
	"strings"
	"text/template"
	"theaterwatch/lib/show"
	"theaterwatch/lib/showdiff"
	"time"
)

// DateLayout is how dates are written in subjects and headings.
const DateLayout = "02 Jan 2006"

// Input is everything a report may rely on.
type Input struct {
	// SubjectPrefix is prepended verbatim to the subject, ex. "[Theater Updates] ".
	SubjectPrefix string
	// Date is the date of the run.
	Date time.Time
	// PreviousDate is the snapshot the run was compared against, zero on
	// the first run.
	PreviousDate time.Time
	ChangeSet    showdiff.ChangeSet
	Hints        []showdiff.RenameHint
	// Errors are the per-source failures, printed as given.
	Errors []show.SourceError
}

type Report struct {
	Subject string
	Body    string
}

const bodyTemplate = `# London Theater Updates - {{ date .Date }}
{{ if .PreviousDate.IsZero }}No previous snapshot, every show is listed as new.{{ else }}Compared with the snapshot of {{ date .PreviousDate }}.{{ end }}
{{ .Counts }}

## New Shows ({{ len .ChangeSet.Added }})
{{ range .ChangeSet.Added }}
### {{ heading . }}
{{ details . }}

---
{{ else }}
No new shows detected.
{{ end }}
## Updated Shows ({{ len .ChangeSet.Updated }})
{{ range .ChangeSet.Updated }}
### {{ heading .Current }}
{{ range .Deltas }}{{ .Field.Label }}: {{ na .Old }} -> {{ na .New }}
{{ end }}
---
{{ else }}
No updated shows detected.
{{ end }}
## Removed Shows ({{ len .ChangeSet.Removed }})
{{ range .ChangeSet.Removed }}
### {{ heading . }}
{{ details . }}

---
{{ else }}
No removed shows detected.
{{ end }}
{{- if .Hints }}
## Possibly Renamed ({{ len .Hints }})

{{ range .Hints }}- {{ heading .Removed }} -> {{ .Added.Title }} ({{ percent .Similarity }} similar)
{{ end }}
{{- end }}
## Unchanged Shows ({{ len .ChangeSet.Unchanged }})

{{ range .ChangeSet.Unchanged }}- {{ heading .Current }}
{{ else }}No unchanged shows found.
{{ end }}
{{- if .Errors }}
## Errors Encountered ({{ len .Errors }})

{{ range $i, $err := .Errors }}{{ inc $i }}. {{ $err.Message }}
{{ end }}
{{- end }}`

var detailFields = []show.Field{
	show.FieldBookingLink,
	show.FieldPerformanceDates,
	show.FieldSaleDates,
	show.FieldPricing,
	show.FieldDescription,
}

func heading(s show.Show) string {
	switch {
	case s.Title == "":
		return s.Venue
	case s.Venue == "":
		return s.Title
	}
	return fmt.Sprintf("%s (%s)", s.Title, s.Venue)
}

func details(s show.Show) string {
	lines := []string{
		fmt.Sprintf("Title: %s", s.Title),
		fmt.Sprintf("Venue: %s", s.Venue),
	}
	for _, f := range detailFields {
		value := s.Get(f)
		if value == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", f.Label(), value))
	}
	return strings.Join(lines, "\n")
}

var body = template.Must(template.New("report").Funcs(template.FuncMap{
	"date":    func(t time.Time) string { return t.Format(DateLayout) },
	"heading": heading,
	"details": details,
	"inc":     func(i int) int { return i + 1 },
	"percent": func(f float64) string { return fmt.Sprintf("%.0f%%", f*100) },
	"na": func(value string) string {
		if value == "" {
			return "N/A"
		}
		return value
	},
}).Parse(bodyTemplate))

type view struct {
	Input
	Counts showdiff.Counts
}

// Subject returns the subject line for a run on date.
func Subject(prefix string, date time.Time) string {
	return fmt.Sprintf("%sLondon Theater Updates - %s", prefix, date.Format(DateLayout))
}

// Build renders the report. The result depends only on in, never on the
// wall clock.
func Build(in Input) (Report, error) {
	buff := &strings.Builder{}
	err := body.Execute(buff, view{
		Input:  in,
		Counts: in.ChangeSet.Counts(),
	})
	if err != nil {
		return Report{}, fmt.Errorf("render report: %w", err)
	}
	return Report{
		Subject: Subject(in.SubjectPrefix, in.Date),
		Body:    buff.String(),
	}, nil
}
