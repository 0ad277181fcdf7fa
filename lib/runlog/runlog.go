// Package runlog records one row per pipeline run in a SQLite (or libsql)
// database so runs can be audited after the fact.
package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"theaterwatch/lib/timezone"
	"time"

	_ "embed"
)

//go:embed schema.sql
var Schema string

type Status string

const (
	StatusOK             Status = "ok"
	StatusNothingScraped Status = "nothing-scraped"
	StatusFailed         Status = "failed"
)

// Run is one pipeline execution.
type Run struct {
	ID           int64
	RunDate      time.Time
	PreviousDate time.Time // zero on the first run
	StartedAt    time.Time
	FinishedAt   time.Time
	Status       Status
	Scraped      int
	Added        int
	Removed      int
	Updated      int
	Unchanged    int
	Errors       int
	Emailed      bool
	Message      string
}

type Store struct {
	db *sql.DB
}

// NewStore creates the schema if needed.
func NewStore(ctx context.Context, database *sql.DB) (Store, error) {
	_, err := database.ExecContext(ctx, Schema)
	if err != nil {
		return Store{}, fmt.Errorf("create run log schema: %w", err)
	}
	return Store{db: database}, nil
}

func (s Store) Close() error {
	return s.db.Close()
}

func formatDate(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(timezone.DateLayout), Valid: true}
}

func (s Store) Record(ctx context.Context, run Run) (int64, error) {
	emailed := 0
	if run.Emailed {
		emailed = 1
	}
	res, err := s.db.ExecContext(
		ctx,
		`insert into run(
			run_date, previous_date, started_at, finished_at, status,
			scraped, added, removed, updated, unchanged, errors, emailed, message
		) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		formatDate(run.RunDate).String,
		formatDate(run.PreviousDate),
		run.StartedAt.Unix(),
		run.FinishedAt.Unix(),
		string(run.Status),
		run.Scraped,
		run.Added,
		run.Removed,
		run.Updated,
		run.Unchanged,
		run.Errors,
		emailed,
		run.Message,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// List returns up to limit runs, newest first. limit <= 0 returns all.
func (s Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(
		ctx,
		`select
			id, run_date, previous_date, started_at, finished_at, status,
			scraped, added, removed, updated, unchanged, errors, emailed, message
		from run
		order by started_at desc, id desc
		limit ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run          Run
			runDate      string
			previousDate sql.NullString
			startedAt    int64
			finishedAt   int64
			status       string
			emailed      int
		)
		err := rows.Scan(
			&run.ID, &runDate, &previousDate, &startedAt, &finishedAt, &status,
			&run.Scraped, &run.Added, &run.Removed, &run.Updated, &run.Unchanged,
			&run.Errors, &emailed, &run.Message,
		)
		if err != nil {
			return nil, err
		}

		run.RunDate, err = timezone.ParseDate(runDate)
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", run.ID, err)
		}
		if previousDate.Valid {
			run.PreviousDate, err = timezone.ParseDate(previousDate.String)
			if err != nil {
				return nil, fmt.Errorf("run %d: %w", run.ID, err)
			}
		}
		run.StartedAt = time.Unix(startedAt, 0).In(timezone.Location)
		run.FinishedAt = time.Unix(finishedAt, 0).In(timezone.Location)
		run.Status = Status(status)
		run.Emailed = emailed != 0
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
