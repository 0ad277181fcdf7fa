package testutil

import (
	"database/sql"
	"log/slog"
	"os"
	"testing"
	configlibsql "theaterwatch/lib/configutil/libsql"
)

// OpenMemoryDB opens a private in-memory SQLite database that is closed when
// the test ends.
func OpenMemoryDB(t testing.TB) *sql.DB {
	t.Helper()
	db, err := configlibsql.Struct{File: ":memory:"}.OpenDB()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

// DebugLogging routes slog to stderr at debug level for the duration of a
// test.
func DebugLogging(t testing.TB) {
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))
	t.Cleanup(func() {
		slog.SetDefault(previous)
	})
}
