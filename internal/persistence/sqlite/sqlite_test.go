package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/center-roster/internal/persistence"
)

// newTestPool opens a migrated SQLite database in a temporary directory.
func newTestPool(t *testing.T) *ConnectionPool {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "roster.db")
	pool, err := NewConnectionPool(dsn)
	if err != nil {
		t.Fatalf("NewConnectionPool failed: %v", err)
	}
	t.Cleanup(func() {
		if cerr := pool.Close(); cerr != nil {
			t.Errorf("Close failed: %v", cerr)
		}
	})

	if err := pool.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	return pool
}

func testTimestamp() time.Time {
	return time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
}

func seedStudent(t *testing.T, pool *ConnectionPool, id, email string) {
	t.Helper()
	repo := NewStudentRepository(pool)
	err := repo.CreateStudent(context.Background(), persistence.Student{
		ID:        id,
		Name:      "Student " + id,
		Email:     email,
		CreatedAt: testTimestamp(),
		UpdatedAt: testTimestamp(),
	})
	if err != nil {
		t.Fatalf("seed student %s failed: %v", id, err)
	}
}

func seedTrainer(t *testing.T, pool *ConnectionPool, id, email string) {
	t.Helper()
	repo := NewTrainerRepository(pool)
	err := repo.CreateTrainer(context.Background(), persistence.Trainer{
		ID:        id,
		Name:      "Trainer " + id,
		Email:     email,
		CreatedAt: testTimestamp(),
		UpdatedAt: testTimestamp(),
	})
	if err != nil {
		t.Fatalf("seed trainer %s failed: %v", id, err)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	pool := newTestPool(t)

	// Running the migrations again must be a no-op.
	if err := pool.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}

	var count int
	row := pool.DB().QueryRow("SELECT COUNT(*) FROM schema_migrations")
	if err := row.Scan(&count); err != nil {
		t.Fatalf("counting applied migrations failed: %v", err)
	}
	if count != len(migrations) {
		t.Errorf("Expected %d applied migrations, got %d", len(migrations), count)
	}
}
