// Package scraper turns monitored listing pages into raw show records.
//
// each source goes through the same steps:
// 1. fetch the page, statically or through a headless browser depending on
// the source's Kind.
// 2. parse the HTML into a goquery document.
// 3. hand the document to the venue's Parser, which is a pure function of
// the page.
// 4. stamp the records with the source id and fallback venue.
//
// failures never abort the batch, they become show.SourceError entries that
// are forwarded to the report.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"theaterwatch/lib/show"
	"theaterwatch/lib/telemetry"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("theaterwatch/lib/scraper")

const (
	report_fetch = "scraper.fetch"
	report_empty = "scraper.empty"
	report_shows = "scraper.shows"
)

// Fetcher downloads the HTML of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type Options struct {
	Static  Fetcher
	Dynamic Fetcher
	// Parsers maps source ids to their parser.
	Parsers map[string]Parser
	// Concurrency bounds how many sources are fetched at once, defaults to 1.
	Concurrency int
	Tel         telemetry.API
}

type Scraper struct {
	static      Fetcher
	dynamic     Fetcher
	parsers     map[string]Parser
	concurrency int
	tel         telemetry.API
}

func New(opts Options) Scraper {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return Scraper{
		static:      opts.Static,
		dynamic:     opts.Dynamic,
		parsers:     opts.Parsers,
		concurrency: opts.Concurrency,
		tel:         telemetry.NewScopedAPI("scraper", opts.Tel),
	}
}

func (s Scraper) fetcher(kind Kind) (Fetcher, error) {
	switch kind {
	case KindDynamic:
		if s.dynamic == nil {
			return nil, fmt.Errorf("no dynamic fetcher configured")
		}
		return s.dynamic, nil
	default:
		if s.static == nil {
			return nil, fmt.Errorf("no static fetcher configured")
		}
		return s.static, nil
	}
}

// Scrape fetches and parses a single source.
func (s Scraper) Scrape(ctx context.Context, src Source) ([]show.RawRecord, error) {
	ctx, span := tracer.Start(ctx, "Scrape")
	defer span.End()
	span.SetAttributes(
		attribute.String("source", src.ID),
		attribute.String("url", src.URL),
		attribute.String("kind", string(src.Kind)),
	)

	parse, ok := s.parsers[src.ID]
	if !ok {
		err := fmt.Errorf("no parser registered for %q", src.ID)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	fetcher, err := s.fetcher(src.Kind)
	if err != nil {
		return nil, err
	}

	body, err := fetcher.Fetch(ctx, src.URL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return nil, err
	}
	page, err := NewPage(src.URL, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, err
	}

	records := parse(page)
	for i := range records {
		records[i].Source = src.ID
		if strings.TrimSpace(records[i].Venue) == "" {
			records[i].Venue = src.Venue
		}
	}
	span.SetAttributes(attribute.Int("records", len(records)))
	return records, nil
}

type result struct {
	records []show.RawRecord
	err     *show.SourceError
}

// ScrapeAll scrapes every source, at most Concurrency at a time. Records and
// errors come back in source order no matter which fetch finishes first.
func (s Scraper) ScrapeAll(ctx context.Context, sources []Source) ([]show.RawRecord, []show.SourceError) {
	ctx, span := tracer.Start(ctx, "ScrapeAll")
	defer span.End()

	slog.InfoContext(ctx, "starting to scrape theater websites", "count", len(sources))

	results := make([]result, len(sources))
	group := errgroup.Group{}
	group.SetLimit(s.concurrency)

	for i, src := range sources {
		group.Go(func() error {
			results[i] = s.scrapeOne(ctx, src)
			return nil
		})
	}
	group.Wait()

	var records []show.RawRecord
	var errs []show.SourceError
	for _, r := range results {
		records = append(records, r.records...)
		if r.err != nil {
			errs = append(errs, *r.err)
		}
	}

	slog.InfoContext(
		ctx, fmt.Sprintf("Scraped a total of %d shows from %d theaters", len(records), len(sources)),
		"errors", len(errs),
	)
	s.tel.ReportCount(report_shows, int64(len(records)))
	span.SetAttributes(
		attribute.Int("records", len(records)),
		attribute.Int("errors", len(errs)),
	)
	return records, errs
}

func (s Scraper) scrapeOne(ctx context.Context, src Source) result {
	start := time.Now()
	slog.InfoContext(ctx, "scraping", "source", src.ID, "url", src.URL, "kind", src.Kind)
	defer func() {
		slog.InfoContext(
			ctx, "finished scraping",
			"source", src.ID,
			"duration", time.Since(start).Round(time.Millisecond),
		)
	}()

	if ctx.Err() != nil {
		return result{err: &show.SourceError{
			Source:  src.ID,
			Message: fmt.Sprintf("Error scraping %s: %s", src.ID, ctx.Err()),
		}}
	}

	records, err := s.Scrape(ctx, src)
	if err != nil {
		s.tel.ReportBroken(report_fetch, err, src.ID, src.URL)
		return result{err: &show.SourceError{
			Source:  src.ID,
			Message: fmt.Sprintf("Error scraping %s: %s", src.ID, err),
		}}
	}
	if len(records) == 0 {
		message := fmt.Sprintf("No shows found on %s at %s", src.ID, src.URL)
		s.tel.ReportWarning(report_empty, src.ID, src.URL)
		return result{err: &show.SourceError{Source: src.ID, Message: message}}
	}

	slog.InfoContext(ctx, "successfully scraped shows", "source", src.ID, "count", len(records))
	return result{records: records}
}
