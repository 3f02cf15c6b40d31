package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/center-roster/internal/persistence"
)

func TestStudentRepository_CreateStudent(t *testing.T) {
	pool := newTestPool(t)
	repo := NewStudentRepository(pool)
	ctx := context.Background()

	notes := "prefers morning slots"
	student := persistence.Student{
		ID:        "student-1",
		Name:      "Asha Patel",
		Email:     "asha@example.com",
		Notes:     &notes,
		CreatedAt: testTimestamp(),
		UpdatedAt: testTimestamp(),
	}

	if err := repo.CreateStudent(ctx, student); err != nil {
		t.Fatalf("CreateStudent failed: %v", err)
	}

	retrieved, err := repo.GetStudent(ctx, "student-1")
	if err != nil {
		t.Fatalf("GetStudent failed: %v", err)
	}
	if retrieved.Name != "Asha Patel" {
		t.Errorf("Expected name 'Asha Patel', got '%s'", retrieved.Name)
	}
	if retrieved.Email != "asha@example.com" {
		t.Errorf("Expected email 'asha@example.com', got '%s'", retrieved.Email)
	}
	if retrieved.Notes == nil || *retrieved.Notes != notes {
		t.Errorf("Expected notes %q, got %v", notes, retrieved.Notes)
	}
	if !retrieved.CreatedAt.Equal(testTimestamp()) {
		t.Errorf("Expected created_at %v, got %v", testTimestamp(), retrieved.CreatedAt)
	}
}

func TestStudentRepository_CreateStudent_DuplicateEmail(t *testing.T) {
	pool := newTestPool(t)
	repo := NewStudentRepository(pool)
	ctx := context.Background()

	seedStudent(t, pool, "student-1", "asha@example.com")

	// Email uniqueness is case-insensitive.
	err := repo.CreateStudent(ctx, persistence.Student{
		ID:        "student-2",
		Name:      "Other",
		Email:     "ASHA@example.com",
		CreatedAt: testTimestamp(),
		UpdatedAt: testTimestamp(),
	})
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("Expected ErrDuplicate, got %v", err)
	}
}

func TestStudentRepository_UpdateStudent(t *testing.T) {
	pool := newTestPool(t)
	repo := NewStudentRepository(pool)
	ctx := context.Background()

	seedStudent(t, pool, "student-1", "asha@example.com")

	updated := persistence.Student{
		ID:        "student-1",
		Name:      "Asha P.",
		Email:     "asha.p@example.com",
		UpdatedAt: testTimestamp().Add(time.Hour),
	}
	if err := repo.UpdateStudent(ctx, updated); err != nil {
		t.Fatalf("UpdateStudent failed: %v", err)
	}

	retrieved, err := repo.GetStudent(ctx, "student-1")
	if err != nil {
		t.Fatalf("GetStudent failed: %v", err)
	}
	if retrieved.Name != "Asha P." {
		t.Errorf("Expected updated name, got '%s'", retrieved.Name)
	}
	if retrieved.Notes != nil {
		t.Errorf("Expected notes cleared, got %v", *retrieved.Notes)
	}
}

func TestStudentRepository_UpdateStudent_Missing(t *testing.T) {
	pool := newTestPool(t)
	repo := NewStudentRepository(pool)

	err := repo.UpdateStudent(context.Background(), persistence.Student{
		ID:    "ghost",
		Name:  "Nobody",
		Email: "nobody@example.com",
	})
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestStudentRepository_ListStudents(t *testing.T) {
	pool := newTestPool(t)
	repo := NewStudentRepository(pool)

	seedStudent(t, pool, "b", "b@example.com")
	seedStudent(t, pool, "a", "a@example.com")

	students, err := repo.ListStudents(context.Background())
	if err != nil {
		t.Fatalf("ListStudents failed: %v", err)
	}
	if len(students) != 2 {
		t.Fatalf("Expected 2 students, got %d", len(students))
	}
	// Ordered by name.
	if students[0].ID != "a" || students[1].ID != "b" {
		t.Errorf("Expected name order [a b], got [%s %s]", students[0].ID, students[1].ID)
	}
}

func TestStudentRepository_DeleteStudent(t *testing.T) {
	pool := newTestPool(t)
	repo := NewStudentRepository(pool)
	ctx := context.Background()

	seedStudent(t, pool, "student-1", "asha@example.com")

	if err := repo.DeleteStudent(ctx, "student-1"); err != nil {
		t.Fatalf("DeleteStudent failed: %v", err)
	}
	if _, err := repo.GetStudent(ctx, "student-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.DeleteStudent(ctx, "student-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for second delete, got %v", err)
	}
}

func TestStudentRepository_DeleteStudentDetachesSessions(t *testing.T) {
	pool := newTestPool(t)
	repo := NewStudentRepository(pool)
	sessions := NewSessionRepository(pool)
	ctx := context.Background()

	seedStudent(t, pool, "student-1", "asha@example.com")
	seedTrainer(t, pool, "trainer-1", "ben@example.com")

	session := sessionFixture("session-1", func(s *persistence.Session) {
		s.Status = "cancelled"
	})
	if err := sessions.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if err := repo.DeleteStudent(ctx, "student-1"); err != nil {
		t.Fatalf("DeleteStudent failed: %v", err)
	}
	if _, err := repo.GetStudent(ctx, "student-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound after delete, got %v", err)
	}

	// The session survives with the name carried over as an ad-hoc client.
	detached, err := sessions.GetSession(ctx, "session-1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if detached.StudentID != nil {
		t.Errorf("Expected student_id cleared, got %q", *detached.StudentID)
	}
	if detached.ClientName == nil || *detached.ClientName != "Student student-1" {
		t.Errorf("Expected client name Student student-1, got %v", detached.ClientName)
	}
}
