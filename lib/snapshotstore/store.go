// Package snapshotstore keeps one CSV file of shows per calendar day.
package snapshotstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"theaterwatch/lib/show"
	"theaterwatch/lib/telemetry"
	"theaterwatch/lib/timezone"
	"time"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("theaterwatch/lib/snapshotstore")

const (
	report_load       = "store.load"
	report_list       = "store.list"
	report_bad_record = "store.bad-record"

	filePrefix     = "theater_snapshot_"
	fileExt        = ".csv"
	fileDateLayout = "20060102"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

type SnapshotNotFoundError struct {
	Date time.Time
	Path string
}

func (e *SnapshotNotFoundError) Error() string {
	return fmt.Sprintf("no snapshot for %s at %s", e.Date.Format(timezone.DateLayout), e.Path)
}

func (e *SnapshotNotFoundError) Unwrap() error {
	return ErrSnapshotNotFound
}

// Snapshot is every show captured on one date.
type Snapshot struct {
	Date  time.Time
	Shows []show.Show
}

// Store reads and writes snapshots in a single directory. Dates are always
// taken from file names.
type Store struct {
	dir string
	tel telemetry.API
}

func New(dir string, tel telemetry.API) Store {
	return Store{
		dir: dir,
		tel: telemetry.NewScopedAPI("snapshotstore", tel),
	}
}

func (s Store) Dir() string {
	return s.dir
}

// FileName returns the file name used for the snapshot of date.
func FileName(date time.Time) string {
	return filePrefix + timezone.Day(date).Format(fileDateLayout) + fileExt
}

// ParseFileName extracts the date from a snapshot file name.
func ParseFileName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileExt) {
		return time.Time{}, false
	}
	datePart := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileExt)
	date, err := time.ParseInLocation(fileDateLayout, datePart, timezone.Location)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

func (s Store) path(date time.Time) string {
	return filepath.Join(s.dir, FileName(date))
}

// Save writes shows as the snapshot for date, replacing any earlier snapshot
// of the same date. The file is written to a temporary name in the same
// directory and renamed into place, so readers never see a partial file.
func (s Store) Save(ctx context.Context, date time.Time, shows []show.Show) (err error) {
	ctx, span := tracer.Start(ctx, "Save")
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to save snapshot")
		}
	}()

	date = timezone.Day(date)
	span.SetAttributes(
		attribute.String("date", date.Format(timezone.DateLayout)),
		attribute.Int("shows", len(shows)),
	)

	stamped := make([]show.Show, len(shows))
	for i, sh := range shows {
		if !sh.Valid() {
			return fmt.Errorf("save snapshot: record %d has neither title nor venue", i)
		}
		sh.CapturedAt = date
		stamped[i] = sh
	}

	err = os.MkdirAll(s.dir, 0755)
	if err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	suffix, err := random.String(8)
	if err != nil {
		return err
	}
	target := s.path(date)
	tmp := filepath.Join(s.dir, fmt.Sprintf(".%s.%s.tmp", FileName(date), suffix))

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()

	err = writeCSV(f, stamped)
	if err == nil {
		err = f.Sync()
	}
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write temp snapshot: %w", err)
	}

	err = os.Rename(tmp, target)
	if err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot of date. Rows that break the show invariant are
// skipped and reported.
func (s Store) Load(ctx context.Context, date time.Time) ([]show.Show, error) {
	ctx, span := tracer.Start(ctx, "Load")
	defer span.End()

	date = timezone.Day(date)
	path := s.path(date)
	span.SetAttributes(attribute.String("path", path))

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, &SnapshotNotFoundError{Date: date, Path: path}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open snapshot")
		return nil, err
	}
	defer f.Close()

	rows, err := readCSV(f)
	if err != nil {
		s.tel.ReportBroken(report_load, err, path)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse snapshot")
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	shows := make([]show.Show, 0, len(rows))
	for i, r := range rows {
		sh, err := show.Normalize(r.raw())
		if err != nil {
			s.tel.ReportWarning(report_bad_record, path, i+1, err)
			continue
		}
		sh.CapturedAt = date
		shows = append(shows, sh)
	}
	span.SetAttributes(attribute.Int("shows", len(shows)))
	return shows, nil
}

// Dates lists every stored snapshot date in ascending order. A missing
// directory holds no snapshots.
func (s Store) Dates(ctx context.Context) ([]time.Time, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		s.tel.ReportBroken(report_list, err, s.dir)
		return nil, err
	}

	var dates []time.Time
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		date, ok := ParseFileName(e.Name())
		if !ok {
			continue
		}
		dates = append(dates, date)
	}
	slices.SortFunc(dates, func(a, b time.Time) int {
		return a.Compare(b)
	})
	return dates, nil
}

// MostRecentBefore loads the latest snapshot dated strictly before date. It
// returns false when there is none, which is the first run.
func (s Store) MostRecentBefore(ctx context.Context, date time.Time) (Snapshot, bool, error) {
	date = timezone.Day(date)
	dates, err := s.Dates(ctx)
	if err != nil {
		return Snapshot{}, false, err
	}

	for i := len(dates) - 1; i >= 0; i-- {
		if !dates[i].Before(date) {
			continue
		}
		shows, err := s.Load(ctx, dates[i])
		if err != nil {
			return Snapshot{}, false, err
		}
		return Snapshot{Date: dates[i], Shows: shows}, true, nil
	}
	return Snapshot{}, false, nil
}

// Prune deletes all but the newest keep snapshots and returns the deleted
// dates. keep <= 0 keeps everything.
func (s Store) Prune(ctx context.Context, keep int) ([]time.Time, error) {
	if keep <= 0 {
		return nil, nil
	}
	dates, err := s.Dates(ctx)
	if err != nil {
		return nil, err
	}
	if len(dates) <= keep {
		return nil, nil
	}

	stale := dates[:len(dates)-keep]
	for _, date := range stale {
		err := os.Remove(s.path(date))
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("prune %s: %w", FileName(date), err)
		}
	}
	return stale, nil
}
