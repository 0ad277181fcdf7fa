package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	mem := &MemoryAPI{}
	scoped := NewScopedAPI("scraper", NewScopedAPI("donmar", mem))

	scoped.ReportBroken("fetch", "boom")
	scoped.ReportWarning("parse")
	scoped.ReportCount("shows", 12)

	require.Equal(t, []string{"scraper: donmar: fetch"}, mem.IDs(KindBroken))
	require.Equal(t, []string{"scraper: donmar: parse"}, mem.IDs(KindWarning))

	counts := mem.Reports(KindCount)
	require.Len(t, counts, 1)
	require.Equal(t, int64(12), counts[0].Count)
	require.Equal(t, []any{"boom"}, mem.Reports(KindBroken)[0].Params)
}

func TestSetupWithoutEndpoints(t *testing.T) {
	tel, err := Setup(context.Background(), "test", Config{})
	require.NoError(t, err)
	require.Nil(t, tel.TracerProvider)
	require.Nil(t, tel.MeterProvider)
	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestInitSlogLogFile(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)
	// 23:30 UTC is already the next day in London summer time
	day := time.Date(2025, 6, 30, 23, 30, 0, 0, time.UTC).In(london)

	dir := t.TempDir()
	closer, err := InitSlog(true, dir, day)
	require.NoError(t, err)

	SlogAPI{}.ReportWarning("test.warning", "value")
	require.NoError(t, closer.Close())

	matches, err := filepath.Glob(filepath.Join(dir, "theater_scraper_*.log"))
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "theater_scraper_20250701.log")}, matches)

	contents, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	require.Contains(t, string(contents), "test.warning")

	_, err = InitSlog(false, "", day)
	require.NoError(t, err)
}
