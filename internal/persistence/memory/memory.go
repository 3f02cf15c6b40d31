// Package memory provides a mutex-guarded in-memory implementation of the
// persistence repositories. It backs dev mode and the application-layer
// tests; writes are last-write-wins with no cross-process coordination.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/example/center-roster/internal/persistence"
)

// Store holds every collection behind a single lock. Each read returns a
// copy so callers can never mutate stored state in place.
type Store struct {
	mu       sync.RWMutex
	students map[string]persistence.Student
	trainers map[string]persistence.Trainer
	sessions map[string]persistence.Session
	rules    map[string]persistence.BlockedDayRule
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		students: make(map[string]persistence.Student),
		trainers: make(map[string]persistence.Trainer),
		sessions: make(map[string]persistence.Session),
		rules:    make(map[string]persistence.BlockedDayRule),
	}
}

// Close releases resources held by the store. No-op for the in-memory
// implementation.
func (s *Store) Close() error {
	return nil
}

// Migrate initialises the store. No-op for the in-memory implementation.
func (s *Store) Migrate(context.Context) error {
	return nil
}

// --- StudentRepository implementation ---

// CreateStudent stores a new student.
func (s *Store) CreateStudent(ctx context.Context, student persistence.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.students[student.ID]; ok {
		return fmt.Errorf("%w: student %s", persistence.ErrDuplicate, student.ID)
	}
	if err := s.ensureUniqueStudentEmailLocked(student.ID, student.Email); err != nil {
		return err
	}

	s.students[student.ID] = student
	return nil
}

// UpdateStudent updates an existing student.
func (s *Store) UpdateStudent(ctx context.Context, student persistence.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.students[student.ID]; !ok {
		return persistence.ErrNotFound
	}
	if err := s.ensureUniqueStudentEmailLocked(student.ID, student.Email); err != nil {
		return err
	}

	s.students[student.ID] = student
	return nil
}

// GetStudent retrieves a student by ID.
func (s *Store) GetStudent(ctx context.Context, id string) (persistence.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	student, ok := s.students[id]
	if !ok {
		return persistence.Student{}, persistence.ErrNotFound
	}
	return student, nil
}

// ListStudents returns all students ordered by name.
func (s *Store) ListStudents(ctx context.Context) ([]persistence.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	students := make([]persistence.Student, 0, len(s.students))
	for _, student := range s.students {
		students = append(students, student)
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].Name == students[j].Name {
			return students[i].ID < students[j].ID
		}
		return students[i].Name < students[j].Name
	})
	return students, nil
}

// DeleteStudent removes a student by ID. Sessions that referenced the
// student keep the name as an ad-hoc client, mirroring the SQLite store.
func (s *Store) DeleteStudent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	student, ok := s.students[id]
	if !ok {
		return persistence.ErrNotFound
	}

	for sessionID, session := range s.sessions {
		if session.StudentID == nil || *session.StudentID != id {
			continue
		}
		name := student.Name
		session.StudentID = nil
		session.ClientName = &name
		s.sessions[sessionID] = session
	}

	delete(s.students, id)
	return nil
}

func (s *Store) ensureUniqueStudentEmailLocked(id, email string) error {
	lower := strings.ToLower(email)
	for existingID, student := range s.students {
		if existingID == id {
			continue
		}
		if strings.ToLower(student.Email) == lower {
			return fmt.Errorf("%w: email %s", persistence.ErrDuplicate, email)
		}
	}
	return nil
}

// --- TrainerRepository implementation ---

// CreateTrainer stores a new trainer.
func (s *Store) CreateTrainer(ctx context.Context, trainer persistence.Trainer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.trainers[trainer.ID]; ok {
		return fmt.Errorf("%w: trainer %s", persistence.ErrDuplicate, trainer.ID)
	}
	if err := s.ensureUniqueTrainerEmailLocked(trainer.ID, trainer.Email); err != nil {
		return err
	}

	s.trainers[trainer.ID] = trainer
	return nil
}

// UpdateTrainer updates an existing trainer.
func (s *Store) UpdateTrainer(ctx context.Context, trainer persistence.Trainer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.trainers[trainer.ID]; !ok {
		return persistence.ErrNotFound
	}
	if err := s.ensureUniqueTrainerEmailLocked(trainer.ID, trainer.Email); err != nil {
		return err
	}

	s.trainers[trainer.ID] = trainer
	return nil
}

// GetTrainer retrieves a trainer by ID.
func (s *Store) GetTrainer(ctx context.Context, id string) (persistence.Trainer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trainer, ok := s.trainers[id]
	if !ok {
		return persistence.Trainer{}, persistence.ErrNotFound
	}
	return trainer, nil
}

// ListTrainers returns all trainers ordered by name.
func (s *Store) ListTrainers(ctx context.Context) ([]persistence.Trainer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trainers := make([]persistence.Trainer, 0, len(s.trainers))
	for _, trainer := range s.trainers {
		trainers = append(trainers, trainer)
	}
	sort.Slice(trainers, func(i, j int) bool {
		if trainers[i].Name == trainers[j].Name {
			return trainers[i].ID < trainers[j].ID
		}
		return trainers[i].Name < trainers[j].Name
	})
	return trainers, nil
}

// DeleteTrainer removes a trainer by ID. Sessions cannot exist without a
// trainer, so the delete fails while any session still references one,
// mirroring the SQLite foreign key.
func (s *Store) DeleteTrainer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.trainers[id]; !ok {
		return persistence.ErrNotFound
	}
	for _, session := range s.sessions {
		if session.TrainerID == id {
			return fmt.Errorf("%w: trainer %s has sessions", persistence.ErrForeignKeyViolation, id)
		}
	}
	delete(s.trainers, id)
	return nil
}

func (s *Store) ensureUniqueTrainerEmailLocked(id, email string) error {
	lower := strings.ToLower(email)
	for existingID, trainer := range s.trainers {
		if existingID == id {
			continue
		}
		if strings.ToLower(trainer.Email) == lower {
			return fmt.Errorf("%w: email %s", persistence.ErrDuplicate, email)
		}
	}
	return nil
}

// --- SessionRepository implementation ---

// CreateSession stores a new session.
func (s *Store) CreateSession(ctx context.Context, session persistence.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; ok {
		return fmt.Errorf("%w: session %s", persistence.ErrDuplicate, session.ID)
	}

	s.sessions[session.ID] = cloneSession(session)
	return nil
}

// UpdateSession updates an existing session.
func (s *Store) UpdateSession(ctx context.Context, session persistence.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; !ok {
		return persistence.ErrNotFound
	}

	s.sessions[session.ID] = cloneSession(session)
	return nil
}

// GetSession retrieves a session by ID.
func (s *Store) GetSession(ctx context.Context, id string) (persistence.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return cloneSession(session), nil
}

// ListSessions returns sessions matching the filter ordered by date, start
// time, then ID.
func (s *Store) ListSessions(ctx context.Context, filter persistence.SessionFilter) ([]persistence.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]persistence.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		if !matchesFilter(session, filter) {
			continue
		}
		sessions = append(sessions, cloneSession(session))
	}

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].Date != sessions[j].Date {
			return sessions[i].Date < sessions[j].Date
		}
		if sessions[i].StartTime != sessions[j].StartTime {
			return sessions[i].StartTime < sessions[j].StartTime
		}
		return sessions[i].ID < sessions[j].ID
	})
	return sessions, nil
}

func matchesFilter(session persistence.Session, filter persistence.SessionFilter) bool {
	if filter.Date != "" && session.Date != filter.Date {
		return false
	}
	if filter.DateFrom != "" && session.Date < filter.DateFrom {
		return false
	}
	if filter.DateTo != "" && session.Date > filter.DateTo {
		return false
	}
	if filter.Type != "" && session.Type != filter.Type {
		return false
	}
	if filter.TrainerID != "" && session.TrainerID != filter.TrainerID {
		return false
	}
	if filter.StudentID != "" && (session.StudentID == nil || *session.StudentID != filter.StudentID) {
		return false
	}
	if filter.Status != "" && session.Status != filter.Status {
		return false
	}
	return true
}

func cloneSession(session persistence.Session) persistence.Session {
	clone := session
	if session.StudentID != nil {
		id := *session.StudentID
		clone.StudentID = &id
	}
	if session.ClientName != nil {
		name := *session.ClientName
		clone.ClientName = &name
	}
	return clone
}

// --- BlockedDayRuleRepository implementation ---

// CreateRule stores a new blocked-day rule.
func (s *Store) CreateRule(ctx context.Context, rule persistence.BlockedDayRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rules[rule.ID]; ok {
		return fmt.Errorf("%w: rule %s", persistence.ErrDuplicate, rule.ID)
	}

	s.rules[rule.ID] = cloneRule(rule)
	return nil
}

// GetRule retrieves a blocked-day rule by ID.
func (s *Store) GetRule(ctx context.Context, id string) (persistence.BlockedDayRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rule, ok := s.rules[id]
	if !ok {
		return persistence.BlockedDayRule{}, persistence.ErrNotFound
	}
	return cloneRule(rule), nil
}

// ListRules returns all blocked-day rules ordered by creation time.
func (s *Store) ListRules(ctx context.Context) ([]persistence.BlockedDayRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rules := make([]persistence.BlockedDayRule, 0, len(s.rules))
	for _, rule := range s.rules {
		rules = append(rules, cloneRule(rule))
	}
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].CreatedAt.Equal(rules[j].CreatedAt) {
			return rules[i].ID < rules[j].ID
		}
		return rules[i].CreatedAt.Before(rules[j].CreatedAt)
	})
	return rules, nil
}

// DeleteRule removes a blocked-day rule by ID.
func (s *Store) DeleteRule(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rules[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.rules, id)
	return nil
}

func cloneRule(rule persistence.BlockedDayRule) persistence.BlockedDayRule {
	clone := rule
	clone.StartDate = clonePtr(rule.StartDate)
	clone.EndDate = clonePtr(rule.EndDate)
	clone.StartTime = clonePtr(rule.StartTime)
	clone.EndTime = clonePtr(rule.EndTime)
	clone.Reason = clonePtr(rule.Reason)
	if rule.ExcludeMonths != nil {
		clone.ExcludeMonths = append([]int(nil), rule.ExcludeMonths...)
	}
	return clone
}

func clonePtr(value *string) *string {
	if value == nil {
		return nil
	}
	s := *value
	return &s
}
