package theaterwatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"theaterwatch/lib/report"
	"theaterwatch/lib/restyutil"
	"theaterwatch/lib/runlog"
	"theaterwatch/lib/scraper"
	"theaterwatch/lib/showdiff"
	"theaterwatch/lib/snapshotstore"
	"theaterwatch/lib/telemetry"
	"theaterwatch/lib/venues"
	"time"
)

type OpenOptions struct {
	// DumpHttp, when set, is a directory in which each run creates a new
	// dump-* directory holding every static request/response pair.
	DumpHttp string
	Tel      telemetry.API
}

// Deps are the resources opened for a Service, Close releases them.
type Deps struct {
	Service Service
	RunLog  *runlog.Store

	closers []io.Closer
}

func (d Deps) Close() error {
	var errlist []error
	for _, c := range d.closers {
		err := c.Close()
		if err != nil {
			errlist = append(errlist, err)
		}
	}
	return errors.Join(errlist...)
}

// Open builds a Service and everything it needs from a validated config.
func Open(ctx context.Context, config Config, opts OpenOptions) (Deps, error) {
	if opts.Tel == nil {
		opts.Tel = telemetry.SlogAPI{}
	}
	deps := Deps{}

	sources, err := config.ResolveSources(venues.Defaults())
	if err != nil {
		return deps, err
	}
	sources, err = FilterSources(sources, config.Theaters)
	if err != nil {
		return deps, err
	}
	fields, err := config.Fields()
	if err != nil {
		return deps, err
	}

	var dump restyutil.InstrumentOutput
	if opts.DumpHttp != "" {
		out, err := restyutil.NewFilesystemOutput(opts.DumpHttp)
		if err != nil {
			return deps, fmt.Errorf("open http dump dir: %w", err)
		}
		slog.InfoContext(ctx, "dumping http exchanges", "dir", out.Dir())
		dump = out
	}

	scraperOpts := scraper.Options{
		Static: scraper.NewStaticFetcher(scraper.StaticOptions{
			UserAgent:        config.Scrape.UserAgent,
			Timeout:          config.Scrape.Timeout(),
			Retries:          config.Scrape.Retries,
			RetryDelay:       config.Scrape.RetryDelay(),
			CloudflareBypass: config.Scrape.CloudflareBypass,
			Dump:             dump,
		}),
		Parsers:     venues.Parsers(),
		Concurrency: config.Scrape.Concurrency,
		Tel:         opts.Tel,
	}
	for _, src := range sources {
		if src.Kind != scraper.KindDynamic {
			continue
		}
		dynamic := scraper.NewDynamicFetcher(scraper.DynamicOptions{
			RemoteURL: config.Browser.RemoteURL,
			Timeout:   config.Scrape.Timeout(),
			Settle:    time.Duration(config.Browser.SettleMillis) * time.Millisecond,
			UserAgent: config.Scrape.UserAgent,
		})
		scraperOpts.Dynamic = dynamic
		deps.closers = append(deps.closers, dynamic)
		break
	}

	var mailer Mailer
	if config.Email.Enabled {
		mailer = report.NewSmtpMailer(config.Email.Smtp())
	}

	var recorder RunRecorder
	if config.RunLog.Enabled() {
		db, err := config.RunLog.OpenDB()
		if err != nil {
			deps.Close()
			return Deps{}, fmt.Errorf("open run log: %w", err)
		}
		store, err := runlog.NewStore(ctx, db)
		if err != nil {
			db.Close()
			deps.Close()
			return Deps{}, err
		}
		deps.RunLog = &store
		deps.closers = append(deps.closers, store)
		recorder = store
	} else {
		slog.InfoContext(ctx, "run log disabled")
	}

	deps.Service = NewService(Options{
		Sources:       sources,
		Scraper:       scraper.New(scraperOpts),
		Store:         snapshotstore.New(config.SnapshotDir, opts.Tel),
		Comparer:      showdiff.NewComparer(fields...),
		Mailer:        mailer,
		RunLog:        recorder,
		SubjectPrefix: config.Email.SubjectPrefix,
		HintThreshold: config.HintThreshold,
		KeepSnapshots: config.KeepSnapshots,
		Tel:           opts.Tel,
	})
	return deps, nil
}
