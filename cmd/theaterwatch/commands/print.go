package commands

import (
	"fmt"
	"os"
	"strings"
	"theaterwatch/lib/report"
	"theaterwatch/lib/show"
	"theaterwatch/lib/showdiff"
	"theaterwatch/services/theaterwatch"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	return t
}

func printResult(result theaterwatch.Result) {
	counts := result.ChangeSet.Counts()

	t := newTable()
	t.SetTitle("Summary of changes, %s", result.Date.Format(report.DateLayout))
	t.AppendHeader(table.Row{"", "Shows"})
	t.AppendRows([]table.Row{
		{"Scraped", result.Scraped},
		{"New", counts.Added},
		{"Updated", counts.Updated},
		{"Removed", counts.Removed},
		{"Unchanged", counts.Unchanged},
		{"Possibly renamed", len(result.Hints)},
		{"Errors", len(result.Errors)},
	})
	t.Render()

	if !result.ChangeSet.HasChanges() && !result.PreviousDate.IsZero() {
		fmt.Printf("No changes since %s\n", result.PreviousDate.Format(report.DateLayout))
	}
	for i, e := range result.Errors {
		fmt.Printf("%d. %s\n", i+1, e.Message)
	}
	switch {
	case result.EmailErr != nil:
		fmt.Printf("Email was not sent: %s\n", result.EmailErr)
	case result.Emailed:
		fmt.Printf("Email sent: %s\n", result.Report.Subject)
	}
}

func showName(s show.Show) string {
	return fmt.Sprintf("%s (%s)", s.Title, s.Venue)
}

func printChangeSet(cs showdiff.ChangeSet, hints []showdiff.RenameHint, unchanged bool) {
	t := newTable()
	t.AppendHeader(table.Row{"Change", "Show", "Details"})
	for _, s := range cs.Added {
		t.AppendRow(table.Row{"new", showName(s), s.PerformanceDates})
	}
	for _, m := range cs.Updated {
		deltas := make([]string, len(m.Deltas))
		for i, d := range m.Deltas {
			deltas[i] = d.String()
		}
		t.AppendRow(table.Row{"updated", showName(m.Current), strings.Join(deltas, "\n")})
	}
	for _, s := range cs.Removed {
		t.AppendRow(table.Row{"removed", showName(s), s.PerformanceDates})
	}
	for _, h := range hints {
		t.AppendRow(table.Row{
			"renamed?",
			showName(h.Added),
			fmt.Sprintf("was %q (%.0f%% similar)", h.Removed.Title, h.Similarity*100),
		})
	}
	if unchanged {
		for _, m := range cs.Unchanged {
			t.AppendRow(table.Row{"unchanged", showName(m.Current), ""})
		}
	}
	t.AppendFooter(table.Row{"", cs.Counts().String(), ""})
	t.Render()
}
