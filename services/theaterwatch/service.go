// Package theaterwatch runs the daily pipeline: scrape every monitored
// theater, store the day's snapshot, compare it against the previous one and
// email the differences.
package theaterwatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"theaterwatch/lib/report"
	"theaterwatch/lib/runlog"
	"theaterwatch/lib/scraper"
	"theaterwatch/lib/show"
	"theaterwatch/lib/showdiff"
	"theaterwatch/lib/snapshotstore"
	"theaterwatch/lib/telemetry"
	"theaterwatch/lib/timezone"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("theaterwatch/services/theaterwatch")

const (
	report_email   = "theaterwatch.email"
	report_runlog  = "theaterwatch.runlog"
	report_prune   = "theaterwatch.prune"
	report_added   = "theaterwatch.added"
	report_removed = "theaterwatch.removed"
	report_updated = "theaterwatch.updated"
)

var (
	// ErrNothingScraped is returned when no source produced a single show.
	// The previous snapshot is left as the latest one.
	ErrNothingScraped = errors.New("no shows were scraped")
	// ErrAlreadyRunning is returned when a run is requested while another
	// one is still in progress.
	ErrAlreadyRunning = errors.New("a run is already in progress")
)

// Scraper fetches and parses sources.
type Scraper interface {
	ScrapeAll(ctx context.Context, sources []scraper.Source) ([]show.RawRecord, []show.SourceError)
}

type Mailer interface {
	Send(ctx context.Context, r report.Report) error
}

type RunRecorder interface {
	Record(ctx context.Context, run runlog.Run) (int64, error)
}

type Options struct {
	Sources  []scraper.Source
	Scraper  Scraper
	Store    snapshotstore.Store
	Comparer showdiff.Comparer
	// Mailer may be nil, runs then never email.
	Mailer Mailer
	// RunLog may be nil, runs are then not recorded.
	RunLog        RunRecorder
	SubjectPrefix string
	HintThreshold float64
	KeepSnapshots int
	Tel           telemetry.API
	// Now defaults to timezone.Now.
	Now func() time.Time
}

type Service struct {
	opts  Options
	tel   telemetry.API
	mutex *sync.Mutex
}

func NewService(opts Options) Service {
	if opts.Now == nil {
		opts.Now = timezone.Now
	}
	return Service{
		opts:  opts,
		tel:   telemetry.NewScopedAPI("theaterwatch", opts.Tel),
		mutex: &sync.Mutex{},
	}
}

func (s Service) Sources() []scraper.Source {
	return s.opts.Sources
}

type RunOptions struct {
	// Date is the snapshot date, today in London when zero.
	Date time.Time
	// Theaters restricts the run to these source ids.
	Theaters []string
	NoEmail  bool
}

type Result struct {
	Date time.Time
	// PreviousDate is zero when there was no earlier snapshot.
	PreviousDate time.Time
	Scraped      int
	ChangeSet    showdiff.ChangeSet
	Hints        []showdiff.RenameHint
	// Errors holds every per-source failure and dropped record.
	Errors  []show.SourceError
	Report  report.Report
	Emailed bool
	// EmailErr is set when sending failed, which does not fail the run.
	EmailErr error
	Pruned   []time.Time
}

// Run executes the pipeline once.
func (s Service) Run(ctx context.Context, opts RunOptions) (result Result, err error) {
	if !s.mutex.TryLock() {
		return Result{}, ErrAlreadyRunning
	}
	defer s.mutex.Unlock()

	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	started := s.opts.Now()
	date := opts.Date
	if date.IsZero() {
		date = started
	}
	date = timezone.Day(date)
	result.Date = date
	span.SetAttributes(attribute.String("date", date.Format(timezone.DateLayout)))

	slog.InfoContext(ctx, "theater scraper starting", "date", date.Format(timezone.DateLayout))

	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		s.record(ctx, started, result, err)
	}()

	sources, err := FilterSources(s.opts.Sources, opts.Theaters)
	if err != nil {
		slog.ErrorContext(ctx, err.Error())
		return result, err
	}

	raws, errs := s.opts.Scraper.ScrapeAll(ctx, sources)
	shows, malformed := show.NormalizeAll(raws)
	for _, m := range malformed {
		slog.WarnContext(ctx, "dropped malformed record", "source", m.Source, "err", m.Message)
	}
	result.Errors = append(errs, malformed...)
	result.Scraped = len(shows)

	if len(shows) == 0 {
		slog.ErrorContext(ctx, "No shows were scraped. Exiting.")
		return result, ErrNothingScraped
	}

	previous, found, err := s.opts.Store.MostRecentBefore(ctx, date)
	if err != nil {
		return result, fmt.Errorf("load previous snapshot: %w", err)
	}
	if found {
		result.PreviousDate = previous.Date
		slog.InfoContext(ctx, "comparing with previous snapshot", "previous", previous.Date.Format(timezone.DateLayout))
	} else {
		slog.InfoContext(ctx, "no previous snapshot found, every show is new")
	}

	err = s.opts.Store.Save(ctx, date, shows)
	if err != nil {
		return result, fmt.Errorf("save snapshot: %w", err)
	}

	cs, err := s.opts.Comparer.Compare(previous.Shows, shows)
	if err != nil {
		return result, fmt.Errorf("compare snapshots: %w", err)
	}
	result.ChangeSet = cs
	result.Hints = showdiff.RenameHints(cs, s.opts.HintThreshold)

	counts := cs.Counts()
	slog.InfoContext(ctx, fmt.Sprintf("Comparison results: %s", counts))
	s.tel.ReportCount(report_added, int64(counts.Added))
	s.tel.ReportCount(report_removed, int64(counts.Removed))
	s.tel.ReportCount(report_updated, int64(counts.Updated))

	result.Report, err = report.Build(report.Input{
		SubjectPrefix: s.opts.SubjectPrefix,
		Date:          date,
		PreviousDate:  result.PreviousDate,
		ChangeSet:     cs,
		Hints:         result.Hints,
		Errors:        result.Errors,
	})
	if err != nil {
		return result, err
	}

	switch {
	case opts.NoEmail:
		slog.InfoContext(ctx, "email notification disabled")
	case s.opts.Mailer == nil:
		slog.InfoContext(ctx, "no mailer configured, skipping email")
	default:
		result.EmailErr = s.opts.Mailer.Send(ctx, result.Report)
		if result.EmailErr != nil {
			s.tel.ReportBroken(report_email, result.EmailErr)
		} else {
			result.Emailed = true
		}
	}

	if s.opts.KeepSnapshots > 0 {
		pruned, err := s.opts.Store.Prune(ctx, s.opts.KeepSnapshots)
		if err != nil {
			s.tel.ReportWarning(report_prune, err)
		}
		result.Pruned = pruned
	}

	slog.InfoContext(
		ctx, "theater scraper completed",
		"duration", s.opts.Now().Sub(started).Round(time.Millisecond),
	)
	return result, nil
}

func (s Service) record(ctx context.Context, started time.Time, result Result, runErr error) {
	if s.opts.RunLog == nil {
		return
	}

	counts := result.ChangeSet.Counts()
	run := runlog.Run{
		RunDate:      result.Date,
		PreviousDate: result.PreviousDate,
		StartedAt:    started,
		FinishedAt:   s.opts.Now(),
		Status:       runlog.StatusOK,
		Scraped:      result.Scraped,
		Added:        counts.Added,
		Removed:      counts.Removed,
		Updated:      counts.Updated,
		Unchanged:    counts.Unchanged,
		Errors:       len(result.Errors),
		Emailed:      result.Emailed,
	}
	switch {
	case errors.Is(runErr, ErrNothingScraped):
		run.Status = runlog.StatusNothingScraped
	case runErr != nil:
		run.Status = runlog.StatusFailed
		run.Message = runErr.Error()
	case result.EmailErr != nil:
		run.Message = result.EmailErr.Error()
	}

	// record even when the run was cancelled
	ctx = context.WithoutCancel(ctx)
	_, err := s.opts.RunLog.Record(ctx, run)
	if err != nil {
		s.tel.ReportBroken(report_runlog, err)
	}
}
