package runlog

import (
	"context"
	"testing"
	"theaterwatch/lib/testutil"
	"theaterwatch/lib/timezone"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	store, err := NewStore(ctx, testutil.OpenMemoryDB(t))
	require.NoError(t, err)

	{
		runs, err := store.List(ctx, 10)
		require.NoError(t, err)
		require.Len(t, runs, 0)
	}

	first := Run{
		RunDate:    time.Date(2025, time.March, 1, 0, 0, 0, 0, timezone.Location),
		StartedAt:  time.Date(2025, time.March, 1, 8, 0, 0, 0, timezone.Location),
		FinishedAt: time.Date(2025, time.March, 1, 8, 2, 0, 0, timezone.Location),
		Status:     StatusOK,
		Scraped:    42,
		Added:      42,
		Emailed:    true,
	}
	second := Run{
		RunDate:      time.Date(2025, time.March, 2, 0, 0, 0, 0, timezone.Location),
		PreviousDate: time.Date(2025, time.March, 1, 0, 0, 0, 0, timezone.Location),
		StartedAt:    time.Date(2025, time.March, 2, 8, 0, 0, 0, timezone.Location),
		FinishedAt:   time.Date(2025, time.March, 2, 8, 1, 0, 0, timezone.Location),
		Status:       StatusOK,
		Scraped:      40,
		Added:        1,
		Removed:      3,
		Updated:      2,
		Unchanged:    37,
		Errors:       1,
		Message:      "smtp: connection refused",
	}
	third := Run{
		RunDate:    time.Date(2025, time.March, 3, 0, 0, 0, 0, timezone.Location),
		StartedAt:  time.Date(2025, time.March, 3, 8, 0, 0, 0, timezone.Location),
		FinishedAt: time.Date(2025, time.March, 3, 8, 0, 30, 0, timezone.Location),
		Status:     StatusNothingScraped,
		Errors:     10,
	}

	for _, run := range []Run{first, second, third} {
		id, err := store.Record(ctx, run)
		require.NoError(t, err)
		require.NotZero(t, id)
	}

	runs, err := store.List(ctx, 2)
	require.NoError(t, err)
	diff := cmp.Diff([]Run{third, second}, runs, cmpopts.IgnoreFields(Run{}, "ID"))
	if diff != "" {
		t.Fatal("unexpected runs", diff)
	}

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.True(t, all[2].PreviousDate.IsZero())
	require.True(t, all[2].Emailed)
}
