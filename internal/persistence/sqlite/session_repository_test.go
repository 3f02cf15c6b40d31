package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/example/center-roster/internal/persistence"
)

func sessionFixture(id string, mutate func(*persistence.Session)) persistence.Session {
	studentID := "student-1"
	session := persistence.Session{
		ID:        id,
		Type:      "tabletop-training",
		Date:      "2024-06-10",
		StartTime: "13:00",
		EndTime:   "14:00",
		Seat:      1,
		StudentID: &studentID,
		TrainerID: "trainer-1",
		Status:    "scheduled",
		CreatedAt: testTimestamp(),
		UpdatedAt: testTimestamp(),
	}
	if mutate != nil {
		mutate(&session)
	}
	return session
}

func newSessionRepositoryTest(t *testing.T) (*SessionRepository, *ConnectionPool) {
	t.Helper()
	pool := newTestPool(t)
	seedStudent(t, pool, "student-1", "asha@example.com")
	seedTrainer(t, pool, "trainer-1", "ben@example.com")
	return NewSessionRepository(pool), pool
}

func TestSessionRepository_CreateSession(t *testing.T) {
	repo, _ := newSessionRepositoryTest(t)
	ctx := context.Background()

	if err := repo.CreateSession(ctx, sessionFixture("session-1", nil)); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	retrieved, err := repo.GetSession(ctx, "session-1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if retrieved.Type != "tabletop-training" {
		t.Errorf("Expected type 'tabletop-training', got '%s'", retrieved.Type)
	}
	if retrieved.StudentID == nil || *retrieved.StudentID != "student-1" {
		t.Errorf("Expected student_id 'student-1', got %v", retrieved.StudentID)
	}
	if retrieved.ClientName != nil {
		t.Errorf("Expected nil client_name, got %v", *retrieved.ClientName)
	}
	if retrieved.Status != "scheduled" {
		t.Errorf("Expected status 'scheduled', got '%s'", retrieved.Status)
	}
}

func TestSessionRepository_CreateSession_ClientName(t *testing.T) {
	repo, _ := newSessionRepositoryTest(t)
	ctx := context.Background()

	clientName := "Acme Corp"
	session := sessionFixture("session-1", func(s *persistence.Session) {
		s.Type = "gt-assessment"
		s.StudentID = nil
		s.ClientName = &clientName
	})
	if err := repo.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	retrieved, err := repo.GetSession(ctx, "session-1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if retrieved.ClientName == nil || *retrieved.ClientName != "Acme Corp" {
		t.Errorf("Expected client_name 'Acme Corp', got %v", retrieved.ClientName)
	}
	if retrieved.StudentID != nil {
		t.Errorf("Expected nil student_id, got %v", *retrieved.StudentID)
	}
}

func TestSessionRepository_CreateSession_ParticipantExclusivity(t *testing.T) {
	repo, _ := newSessionRepositoryTest(t)
	ctx := context.Background()

	// Neither participant field set.
	neither := sessionFixture("session-1", func(s *persistence.Session) {
		s.StudentID = nil
	})
	if err := repo.CreateSession(ctx, neither); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("Expected ErrConstraintViolation for missing participant, got %v", err)
	}

	// Both participant fields set.
	clientName := "Acme Corp"
	both := sessionFixture("session-2", func(s *persistence.Session) {
		s.ClientName = &clientName
	})
	if err := repo.CreateSession(ctx, both); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("Expected ErrConstraintViolation for both participants, got %v", err)
	}
}

func TestSessionRepository_CreateSession_UnknownTrainer(t *testing.T) {
	repo, _ := newSessionRepositoryTest(t)

	session := sessionFixture("session-1", func(s *persistence.Session) {
		s.TrainerID = "ghost"
	})
	err := repo.CreateSession(context.Background(), session)
	if !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("Expected ErrForeignKeyViolation, got %v", err)
	}
}

func TestSessionRepository_UpdateSession(t *testing.T) {
	repo, _ := newSessionRepositoryTest(t)
	ctx := context.Background()

	if err := repo.CreateSession(ctx, sessionFixture("session-1", nil)); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	moved := sessionFixture("session-1", func(s *persistence.Session) {
		s.Seat = 3
		s.StartTime = "15:00"
		s.EndTime = "16:00"
		s.Status = "completed"
	})
	if err := repo.UpdateSession(ctx, moved); err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}

	retrieved, err := repo.GetSession(ctx, "session-1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if retrieved.Seat != 3 || retrieved.StartTime != "15:00" {
		t.Errorf("Expected seat 3 at 15:00, got seat %d at %s", retrieved.Seat, retrieved.StartTime)
	}
	if retrieved.Status != "completed" {
		t.Errorf("Expected status 'completed', got '%s'", retrieved.Status)
	}
}

func TestSessionRepository_UpdateSession_Missing(t *testing.T) {
	repo, _ := newSessionRepositoryTest(t)

	err := repo.UpdateSession(context.Background(), sessionFixture("ghost", nil))
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepository_ListSessions_Filters(t *testing.T) {
	repo, pool := newSessionRepositoryTest(t)
	ctx := context.Background()
	seedTrainer(t, pool, "trainer-2", "cara@example.com")

	fixtures := []persistence.Session{
		sessionFixture("session-1", nil),
		sessionFixture("session-2", func(s *persistence.Session) {
			s.Type = "remote"
			s.StartTime = "10:00"
			s.EndTime = "11:00"
			s.TrainerID = "trainer-2"
		}),
		sessionFixture("session-3", func(s *persistence.Session) {
			s.Date = "2024-06-11"
			s.Status = "cancelled"
		}),
	}
	for _, session := range fixtures {
		if err := repo.CreateSession(ctx, session); err != nil {
			t.Fatalf("CreateSession %s failed: %v", session.ID, err)
		}
	}

	cases := []struct {
		name   string
		filter persistence.SessionFilter
		want   []string
	}{
		{"by date, start-time order", persistence.SessionFilter{Date: "2024-06-10"}, []string{"session-2", "session-1"}},
		{"by type", persistence.SessionFilter{Type: "remote"}, []string{"session-2"}},
		{"by trainer", persistence.SessionFilter{TrainerID: "trainer-2"}, []string{"session-2"}},
		{"by student", persistence.SessionFilter{StudentID: "student-1"}, []string{"session-2", "session-1", "session-3"}},
		{"by status", persistence.SessionFilter{Status: "cancelled"}, []string{"session-3"}},
		{"by date range", persistence.SessionFilter{DateFrom: "2024-06-11", DateTo: "2024-06-30"}, []string{"session-3"}},
		{"no match", persistence.SessionFilter{Date: "2024-07-01"}, []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sessions, err := repo.ListSessions(ctx, tc.filter)
			if err != nil {
				t.Fatalf("ListSessions failed: %v", err)
			}
			if len(sessions) != len(tc.want) {
				t.Fatalf("Expected %d sessions, got %d", len(tc.want), len(sessions))
			}
			for i, id := range tc.want {
				if sessions[i].ID != id {
					t.Errorf("Expected sessions[%d] = %s, got %s", i, id, sessions[i].ID)
				}
			}
		})
	}
}
