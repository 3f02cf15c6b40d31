package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/center-roster/internal/persistence"
	"github.com/example/center-roster/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Students persistence.StudentRepository
	Trainers persistence.TrainerRepository
	Sessions persistence.SessionRepository
	Rules    persistence.BlockedDayRuleRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// also registers a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	path := filepath.Join(dir, "roster.db")

	pool, err := sqlite.NewConnectionPool("file:" + path)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := pool.Migrate(context.Background()); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Students: sqlite.NewStudentRepository(pool),
		Trainers: sqlite.NewTrainerRepository(pool),
		Sessions: sqlite.NewSessionRepository(pool),
		Rules:    sqlite.NewBlockedDayRepository(pool),
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
