package theaterwatch

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"theaterwatch/lib/report"
	"theaterwatch/lib/runlog"
	"theaterwatch/lib/scraper"
	"theaterwatch/lib/show"
	"theaterwatch/lib/showdiff"
	"theaterwatch/lib/snapshotstore"
	"theaterwatch/lib/telemetry"
	"theaterwatch/lib/testutil"
	"theaterwatch/lib/timezone"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeScraper struct {
	mutex   sync.Mutex
	records []show.RawRecord
	errs    []show.SourceError
	calls   [][]scraper.Source

	entered chan struct{}
	block   chan struct{}
}

func (f *fakeScraper) ScrapeAll(ctx context.Context, sources []scraper.Source) ([]show.RawRecord, []show.SourceError) {
	f.mutex.Lock()
	f.calls = append(f.calls, sources)
	records := slices.Clone(f.records)
	errs := slices.Clone(f.errs)
	f.mutex.Unlock()

	if f.entered != nil {
		close(f.entered)
	}
	if f.block != nil {
		<-f.block
	}
	return records, errs
}

type fakeMailer struct {
	sent []report.Report
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, r report.Report) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, r)
	return nil
}

var testSources = []scraper.Source{
	{ID: "national", URL: "https://national.example/", Venue: "National Theatre", Kind: scraper.KindStatic},
	{ID: "donmar", URL: "https://donmar.example/", Venue: "Donmar Warehouse", Kind: scraper.KindStatic},
}

type fixture struct {
	service Service
	scraper *fakeScraper
	mailer  *fakeMailer
	store   snapshotstore.Store
	runs    runlog.Store
	tel     *telemetry.MemoryAPI
}

func setup(t *testing.T, keep int) fixture {
	testutil.DebugLogging(t)
	ctx := context.Background()
	runs, err := runlog.NewStore(ctx, testutil.OpenMemoryDB(t))
	require.NoError(t, err)

	f := fixture{
		scraper: &fakeScraper{},
		mailer:  &fakeMailer{},
		store:   snapshotstore.New(t.TempDir(), &telemetry.MemoryAPI{}),
		runs:    runs,
		tel:     &telemetry.MemoryAPI{},
	}
	f.service = NewService(Options{
		Sources:       testSources,
		Scraper:       f.scraper,
		Store:         f.store,
		Mailer:        f.mailer,
		RunLog:        runs,
		SubjectPrefix: "[Theater Updates] ",
		HintThreshold: showdiff.DefaultHintThreshold,
		KeepSnapshots: keep,
		Tel:           f.tel,
	})
	return f
}

func day(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, timezone.Location)
}

func hamlet(dates string) show.RawRecord {
	return show.RawRecord{
		Source:           "national",
		Title:            "Hamlet",
		Venue:            "National Theatre",
		PerformanceDates: dates,
	}
}

var macbeth = show.RawRecord{Source: "donmar", Title: "Macbeth", Venue: "Donmar Warehouse"}

func TestRunFirstThenSecond(t *testing.T) {
	f := setup(t, 0)
	ctx := context.Background()

	f.scraper.records = []show.RawRecord{hamlet("1 Jun - 1 Jul"), macbeth}
	f.scraper.errs = []show.SourceError{{Source: "bridge", Message: "Error scraping bridge: timeout"}}

	first, err := f.service.Run(ctx, RunOptions{Date: day(4)})
	require.NoError(t, err)
	require.True(t, first.PreviousDate.IsZero())
	require.Equal(t, 2, first.Scraped)
	require.Equal(t, showdiff.Counts{Added: 2}, first.ChangeSet.Counts())
	require.Len(t, first.Errors, 1)
	require.True(t, first.Emailed)
	require.Len(t, f.mailer.sent, 1)
	require.Equal(t, "[Theater Updates] London Theater Updates - 04 Mar 2025", f.mailer.sent[0].Subject)
	require.Contains(t, f.mailer.sent[0].Body, "1. Error scraping bridge: timeout")

	saved, err := f.store.Load(ctx, day(4))
	require.NoError(t, err)
	require.Len(t, saved, 2)

	f.scraper.records = []show.RawRecord{hamlet("1 Jun - 15 Jul")}
	f.scraper.errs = nil

	second, err := f.service.Run(ctx, RunOptions{Date: day(5)})
	require.NoError(t, err)
	require.Equal(t, day(4), second.PreviousDate)
	require.Equal(t, showdiff.Counts{Updated: 1, Removed: 1}, second.ChangeSet.Counts())
	require.Equal(t, []showdiff.FieldDelta{{
		Field: show.FieldPerformanceDates,
		Old:   "1 Jun - 1 Jul",
		New:   "1 Jun - 15 Jul",
	}}, second.ChangeSet.Updated[0].Deltas)
	require.Equal(t, "Macbeth", second.ChangeSet.Removed[0].Title)
	require.Contains(t, second.Report.Body, "Performance Dates: 1 Jun - 1 Jul -> 1 Jun - 15 Jul")

	runs, err := f.runs.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	for _, run := range runs {
		require.Equal(t, runlog.StatusOK, run.Status)
		require.True(t, run.Emailed)
	}
}

func TestRunSameDayOverwrites(t *testing.T) {
	f := setup(t, 0)
	ctx := context.Background()

	f.scraper.records = []show.RawRecord{hamlet("1 Jun - 1 Jul"), macbeth}
	_, err := f.service.Run(ctx, RunOptions{Date: day(4), NoEmail: true})
	require.NoError(t, err)

	f.scraper.records = []show.RawRecord{macbeth}
	result, err := f.service.Run(ctx, RunOptions{Date: day(4), NoEmail: true})
	require.NoError(t, err)
	// the earlier snapshot of the same day is not "previous"
	require.True(t, result.PreviousDate.IsZero())
	require.Equal(t, showdiff.Counts{Added: 1}, result.ChangeSet.Counts())

	saved, err := f.store.Load(ctx, day(4))
	require.NoError(t, err)
	require.Len(t, saved, 1)
	require.Empty(t, f.mailer.sent)
}

func TestRunNothingScraped(t *testing.T) {
	f := setup(t, 0)
	ctx := context.Background()

	f.scraper.errs = []show.SourceError{{Source: "national", Message: "No shows found on national at https://national.example/"}}
	f.scraper.records = []show.RawRecord{{Source: "national", Title: "  ", BookingLink: "https://national.example/x"}}

	result, err := f.service.Run(ctx, RunOptions{Date: day(4)})
	require.ErrorIs(t, err, ErrNothingScraped)
	require.Len(t, result.Errors, 2)
	require.Empty(t, f.mailer.sent)

	_, err = f.store.Load(ctx, day(4))
	require.ErrorIs(t, err, snapshotstore.ErrSnapshotNotFound)

	runs, err := f.runs.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, runlog.StatusNothingScraped, runs[0].Status)
	require.Equal(t, 2, runs[0].Errors)
}

func TestRunMalformedRecordsAreReported(t *testing.T) {
	f := setup(t, 0)

	f.scraper.records = []show.RawRecord{macbeth, {Source: "donmar", Description: "no title or venue"}}
	result, err := f.service.Run(context.Background(), RunOptions{Date: day(4), NoEmail: true})
	require.NoError(t, err)
	require.Equal(t, 1, result.Scraped)
	require.Len(t, result.Errors, 1)
	require.Equal(t, "donmar", result.Errors[0].Source)
	require.Contains(t, result.Report.Body, "## Errors Encountered (1)")
}

func TestRunEmailFailureIsNotFatal(t *testing.T) {
	f := setup(t, 0)
	f.mailer.err = errors.New("535 authentication failed")
	f.scraper.records = []show.RawRecord{macbeth}

	result, err := f.service.Run(context.Background(), RunOptions{Date: day(4)})
	require.NoError(t, err)
	require.False(t, result.Emailed)
	require.ErrorContains(t, result.EmailErr, "535")
	require.Equal(t, []string{"theaterwatch: theaterwatch.email"}, f.tel.IDs(telemetry.KindBroken))

	runs, err := f.runs.List(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, runlog.StatusOK, runs[0].Status)
	require.False(t, runs[0].Emailed)
	require.Equal(t, "535 authentication failed", runs[0].Message)
}

func TestRunTheaterFilter(t *testing.T) {
	f := setup(t, 0)
	f.scraper.records = []show.RawRecord{macbeth}

	_, err := f.service.Run(context.Background(), RunOptions{Date: day(4), Theaters: []string{"donmar", "globe"}, NoEmail: true})
	require.NoError(t, err)
	require.Equal(t, [][]scraper.Source{{testSources[1]}}, f.scraper.calls)

	_, err = f.service.Run(context.Background(), RunOptions{Date: day(5), Theaters: []string{"globe"}})
	require.EqualError(t, err, "No valid theater IDs found among: globe")
	require.Len(t, f.scraper.calls, 1)

	runs, err := f.runs.List(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, runlog.StatusFailed, runs[0].Status)
}

func TestRunPrunes(t *testing.T) {
	f := setup(t, 2)
	f.scraper.records = []show.RawRecord{macbeth}

	for d := 1; d <= 3; d++ {
		_, err := f.service.Run(context.Background(), RunOptions{Date: day(d), NoEmail: true})
		require.NoError(t, err)
	}

	dates, err := f.store.Dates(context.Background())
	require.NoError(t, err)
	require.Equal(t, []time.Time{day(2), day(3)}, dates)
}

func TestRunRenameHints(t *testing.T) {
	f := setup(t, 0)
	ctx := context.Background()

	f.scraper.records = []show.RawRecord{{Source: "donmar", Title: "The Seagull", Venue: "Donmar Warehouse"}}
	_, err := f.service.Run(ctx, RunOptions{Date: day(4), NoEmail: true})
	require.NoError(t, err)

	f.scraper.records = []show.RawRecord{{Source: "donmar", Title: "The Seagulls", Venue: "Donmar Warehouse"}}
	result, err := f.service.Run(ctx, RunOptions{Date: day(5), NoEmail: true})
	require.NoError(t, err)
	require.Equal(t, showdiff.Counts{Added: 1, Removed: 1}, result.ChangeSet.Counts())
	require.Len(t, result.Hints, 1)
	require.Contains(t, result.Report.Body, "## Possibly Renamed (1)")
}

func TestRunAlreadyRunning(t *testing.T) {
	f := setup(t, 0)
	f.scraper.records = []show.RawRecord{macbeth}
	f.scraper.entered = make(chan struct{})
	f.scraper.block = make(chan struct{})

	done := make(chan error)
	go func() {
		_, err := f.service.Run(context.Background(), RunOptions{Date: day(4), NoEmail: true})
		done <- err
	}()

	<-f.scraper.entered
	_, err := f.service.Run(context.Background(), RunOptions{Date: day(4), NoEmail: true})
	require.ErrorIs(t, err, ErrAlreadyRunning)

	close(f.scraper.block)
	require.NoError(t, <-done)
}

func TestRunDefaultsToToday(t *testing.T) {
	f := setup(t, 0)
	now := time.Date(2025, 6, 30, 23, 30, 0, 0, time.UTC)
	f.service.opts.Now = func() time.Time { return now }
	f.scraper.records = []show.RawRecord{macbeth}

	result, err := f.service.Run(context.Background(), RunOptions{NoEmail: true})
	require.NoError(t, err)
	// 23:30 UTC is already the next day in London summer time
	require.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, timezone.Location), result.Date)
}
