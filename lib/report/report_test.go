package report

import (
	"strings"
	"testing"
	"theaterwatch/lib/show"
	"theaterwatch/lib/showdiff"
	"time"

	"github.com/stretchr/testify/require"
)

var runDate = time.Date(2025, 3, 4, 8, 0, 0, 0, time.UTC)

func TestSubject(t *testing.T) {
	require.Equal(
		t,
		"[Theater Updates] London Theater Updates - 04 Mar 2025",
		Subject("[Theater Updates] ", runDate),
	)
	require.Equal(t, "London Theater Updates - 04 Mar 2025", Subject("", runDate))
}

func TestBuild(t *testing.T) {
	hamletOld := show.Show{
		Title:            "Hamlet",
		Venue:            "National Theatre",
		PerformanceDates: "1 Jun - 1 Jul",
	}
	hamletNew := hamletOld
	hamletNew.PerformanceDates = "1 Jun - 15 Jul"
	hamletNew.Pricing = "£20"

	macbeth := show.Show{
		Title:       "Macbeth",
		Venue:       "Donmar Warehouse",
		BookingLink: "https://www.donmarwarehouse.com/productions/macbeth",
		Description: "Shakespeare's shortest tragedy.",
	}
	twelfth := show.Show{Title: "Twelfth Night", Venue: "Royal Shakespeare Company"}
	twelfthRenamed := show.Show{Title: "Twelfth Night!", Venue: "Royal Shakespeare Company"}
	nye := show.Show{Title: "Nye", Venue: "National Theatre"}

	cs := showdiff.ChangeSet{
		Added:   []show.Show{macbeth, twelfthRenamed},
		Removed: []show.Show{twelfth},
		Updated: []showdiff.Match{{
			Previous: hamletOld,
			Current:  hamletNew,
			Deltas: []showdiff.FieldDelta{
				{Field: show.FieldPerformanceDates, Old: "1 Jun - 1 Jul", New: "1 Jun - 15 Jul"},
				{Field: show.FieldPricing, Old: "", New: "£20"},
			},
		}},
		Unchanged: []showdiff.Match{{Previous: nye, Current: nye}},
	}

	r, err := Build(Input{
		SubjectPrefix: "[Theater Updates] ",
		Date:          runDate,
		PreviousDate:  runDate.AddDate(0, 0, -1),
		ChangeSet:     cs,
		Hints: []showdiff.RenameHint{{
			Removed:    twelfth,
			Added:      twelfthRenamed,
			Similarity: 0.98,
		}},
		Errors: []show.SourceError{
			{Source: "bridge", Message: "Error scraping bridge: GET https://bridgetheatre.co.uk/performances/: 503 Service Unavailable"},
			{Source: "rsc", Message: "No shows found on rsc at https://www.rsc.org.uk/whats-on/in/london/?from=ql"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "[Theater Updates] London Theater Updates - 04 Mar 2025", r.Subject)

	for _, expect := range []string{
		"# London Theater Updates - 04 Mar 2025",
		"Compared with the snapshot of 03 Mar 2025.",
		"2 new, 1 updated, 1 removed, 1 unchanged",
		"## New Shows (2)",
		"### Macbeth (Donmar Warehouse)",
		"URL: https://www.donmarwarehouse.com/productions/macbeth",
		"Description: Shakespeare's shortest tragedy.",
		"## Updated Shows (1)",
		"### Hamlet (National Theatre)",
		"Performance Dates: 1 Jun - 1 Jul -> 1 Jun - 15 Jul",
		"Price Range: N/A -> £20",
		"## Removed Shows (1)",
		"### Twelfth Night (Royal Shakespeare Company)",
		"## Possibly Renamed (1)",
		"- Twelfth Night (Royal Shakespeare Company) -> Twelfth Night! (98% similar)",
		"## Unchanged Shows (1)",
		"- Nye (National Theatre)",
		"## Errors Encountered (2)",
		"1. Error scraping bridge: GET https://bridgetheatre.co.uk/performances/: 503 Service Unavailable",
		"2. No shows found on rsc at https://www.rsc.org.uk/whats-on/in/london/?from=ql",
	} {
		require.Contains(t, r.Body, expect)
	}

	// sections keep their order
	var last int
	for _, section := range []string{"## New", "## Updated", "## Removed", "## Possibly Renamed", "## Unchanged", "## Errors"} {
		idx := strings.Index(r.Body, section)
		require.Greater(t, idx, last, section)
		last = idx
	}
}

func TestBuildEmpty(t *testing.T) {
	r, err := Build(Input{Date: runDate})
	require.NoError(t, err)

	require.Equal(t, "London Theater Updates - 04 Mar 2025", r.Subject)
	for _, expect := range []string{
		"No previous snapshot, every show is listed as new.",
		"No new shows detected.",
		"No updated shows detected.",
		"No removed shows detected.",
		"No unchanged shows found.",
	} {
		require.Contains(t, r.Body, expect)
	}
	require.NotContains(t, r.Body, "Possibly Renamed")
	require.NotContains(t, r.Body, "Errors Encountered")
	require.NotContains(t, r.Body, "<no value>")
}

func TestBuildDoesNotEscape(t *testing.T) {
	r, err := Build(Input{
		Date: runDate,
		ChangeSet: showdiff.ChangeSet{
			Added: []show.Show{{Title: "Romeo & Juliet", Venue: "<Globe>"}},
		},
	})
	require.NoError(t, err)
	require.Contains(t, r.Body, "### Romeo & Juliet (<Globe>)")
}

func TestHeading(t *testing.T) {
	require.Equal(t, "Hamlet (Donmar)", heading(show.Show{Title: "Hamlet", Venue: "Donmar"}))
	require.Equal(t, "Donmar", heading(show.Show{Venue: "Donmar"}))
	require.Equal(t, "Hamlet", heading(show.Show{Title: "Hamlet"}))
}
