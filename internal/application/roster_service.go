package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/example/center-roster/internal/persistence"
	"github.com/example/center-roster/internal/scheduler"
)

// RosterService manages the people in the center: students and trainers.
// Deleting either is refused while future scheduled sessions still reference
// them.
type RosterService struct {
	students    persistence.StudentRepository
	trainers    persistence.TrainerRepository
	sessions    persistence.SessionRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRosterService wires dependencies for roster operations.
func NewRosterService(
	students persistence.StudentRepository,
	trainers persistence.TrainerRepository,
	sessions persistence.SessionRepository,
	idGenerator func() string,
	now func() time.Time,
) *RosterService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RosterService{
		students:    students,
		trainers:    trainers,
		sessions:    sessions,
		idGenerator: idGenerator,
		now:         now,
	}
}

// NewRosterServiceWithLogger wires dependencies along with a base logger.
func NewRosterServiceWithLogger(
	students persistence.StudentRepository,
	trainers persistence.TrainerRepository,
	sessions persistence.SessionRepository,
	idGenerator func() string,
	now func() time.Time,
	logger *slog.Logger,
) *RosterService {
	svc := NewRosterService(students, trainers, sessions, idGenerator, now)
	svc.logger = defaultLogger(logger)
	return svc
}

// CreateStudent validates and persists a new student.
func (s *RosterService) CreateStudent(ctx context.Context, input StudentInput) (Student, error) {
	if s == nil || s.students == nil {
		return Student{}, fmt.Errorf("student repository not configured")
	}
	logger := serviceLogger(ctx, s.logger, "roster", "create_student")

	input = normalizeStudentInput(input)
	if vErr := validatePersonFields(input.Name, input.Email); vErr != nil {
		return Student{}, vErr
	}

	createdAt := s.now()
	student := Student{
		ID:        s.idGenerator(),
		Name:      input.Name,
		Email:     input.Email,
		Notes:     input.Notes,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}

	if err := s.students.CreateStudent(ctx, studentToRecord(student)); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			vErr := &ValidationError{}
			vErr.add("email", "email is already registered")
			return Student{}, vErr
		}
		return Student{}, mapRepoError(err)
	}

	logger.InfoContext(ctx, "student created", "student_id", student.ID)
	return student, nil
}

// GetStudent retrieves a student by ID.
func (s *RosterService) GetStudent(ctx context.Context, id string) (Student, error) {
	if s == nil || s.students == nil {
		return Student{}, fmt.Errorf("student repository not configured")
	}
	record, err := s.students.GetStudent(ctx, id)
	if err != nil {
		return Student{}, mapRepoError(err)
	}
	return studentFromRecord(record), nil
}

// UpdateStudent rewrites a student's profile fields.
func (s *RosterService) UpdateStudent(ctx context.Context, id string, input StudentInput) (Student, error) {
	if s == nil || s.students == nil {
		return Student{}, fmt.Errorf("student repository not configured")
	}
	logger := serviceLogger(ctx, s.logger, "roster", "update_student", "student_id", id)

	record, err := s.students.GetStudent(ctx, id)
	if err != nil {
		return Student{}, mapRepoError(err)
	}
	student := studentFromRecord(record)

	input = normalizeStudentInput(input)
	if vErr := validatePersonFields(input.Name, input.Email); vErr != nil {
		return Student{}, vErr
	}

	student.Name = input.Name
	student.Email = input.Email
	student.Notes = input.Notes
	student.UpdatedAt = s.now()

	if err := s.students.UpdateStudent(ctx, studentToRecord(student)); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			vErr := &ValidationError{}
			vErr.add("email", "email is already registered")
			return Student{}, vErr
		}
		return Student{}, mapRepoError(err)
	}

	logger.InfoContext(ctx, "student updated")
	return student, nil
}

// ListStudents returns all students sorted by name.
func (s *RosterService) ListStudents(ctx context.Context) ([]Student, error) {
	if s == nil || s.students == nil {
		return nil, fmt.Errorf("student repository not configured")
	}
	records, err := s.students.ListStudents(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	students := make([]Student, 0, len(records))
	for _, record := range records {
		students = append(students, studentFromRecord(record))
	}
	return students, nil
}

// DeleteStudent removes a student. Deletion is refused while the student has
// future scheduled sessions; past and cancelled sessions keep the student's
// name as an ad-hoc client.
func (s *RosterService) DeleteStudent(ctx context.Context, id string) error {
	if s == nil || s.students == nil {
		return fmt.Errorf("student repository not configured")
	}
	logger := serviceLogger(ctx, s.logger, "roster", "delete_student", "student_id", id)

	if _, err := s.students.GetStudent(ctx, id); err != nil {
		return mapRepoError(err)
	}

	busy, err := s.hasUpcomingSessions(ctx, persistence.SessionFilter{StudentID: id})
	if err != nil {
		return err
	}
	if busy {
		vErr := &ValidationError{}
		vErr.add("student_id", "the student has upcoming sessions")
		return vErr
	}

	if err := s.students.DeleteStudent(ctx, id); err != nil {
		return mapRepoError(err)
	}
	logger.InfoContext(ctx, "student deleted")
	return nil
}

// CreateTrainer validates and persists a new trainer.
func (s *RosterService) CreateTrainer(ctx context.Context, input TrainerInput) (Trainer, error) {
	if s == nil || s.trainers == nil {
		return Trainer{}, fmt.Errorf("trainer repository not configured")
	}
	logger := serviceLogger(ctx, s.logger, "roster", "create_trainer")

	input = normalizeTrainerInput(input)
	if vErr := validatePersonFields(input.Name, input.Email); vErr != nil {
		return Trainer{}, vErr
	}

	createdAt := s.now()
	trainer := Trainer{
		ID:                 s.idGenerator(),
		Name:               input.Name,
		Email:              input.Email,
		CanDoGTAssessments: input.CanDoGTAssessments,
		CreatedAt:          createdAt,
		UpdatedAt:          createdAt,
	}

	if err := s.trainers.CreateTrainer(ctx, trainerToRecord(trainer)); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			vErr := &ValidationError{}
			vErr.add("email", "email is already registered")
			return Trainer{}, vErr
		}
		return Trainer{}, mapRepoError(err)
	}

	logger.InfoContext(ctx, "trainer created", "trainer_id", trainer.ID)
	return trainer, nil
}

// GetTrainer retrieves a trainer by ID.
func (s *RosterService) GetTrainer(ctx context.Context, id string) (Trainer, error) {
	if s == nil || s.trainers == nil {
		return Trainer{}, fmt.Errorf("trainer repository not configured")
	}
	record, err := s.trainers.GetTrainer(ctx, id)
	if err != nil {
		return Trainer{}, mapRepoError(err)
	}
	return trainerFromRecord(record), nil
}

// UpdateTrainer rewrites a trainer's profile fields. Revoking gt-assessment
// qualification does not touch already booked sessions.
func (s *RosterService) UpdateTrainer(ctx context.Context, id string, input TrainerInput) (Trainer, error) {
	if s == nil || s.trainers == nil {
		return Trainer{}, fmt.Errorf("trainer repository not configured")
	}
	logger := serviceLogger(ctx, s.logger, "roster", "update_trainer", "trainer_id", id)

	record, err := s.trainers.GetTrainer(ctx, id)
	if err != nil {
		return Trainer{}, mapRepoError(err)
	}
	trainer := trainerFromRecord(record)

	input = normalizeTrainerInput(input)
	if vErr := validatePersonFields(input.Name, input.Email); vErr != nil {
		return Trainer{}, vErr
	}

	trainer.Name = input.Name
	trainer.Email = input.Email
	trainer.CanDoGTAssessments = input.CanDoGTAssessments
	trainer.UpdatedAt = s.now()

	if err := s.trainers.UpdateTrainer(ctx, trainerToRecord(trainer)); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			vErr := &ValidationError{}
			vErr.add("email", "email is already registered")
			return Trainer{}, vErr
		}
		return Trainer{}, mapRepoError(err)
	}

	logger.InfoContext(ctx, "trainer updated")
	return trainer, nil
}

// ListTrainers returns all trainers sorted by name.
func (s *RosterService) ListTrainers(ctx context.Context) ([]Trainer, error) {
	if s == nil || s.trainers == nil {
		return nil, fmt.Errorf("trainer repository not configured")
	}
	records, err := s.trainers.ListTrainers(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	trainers := make([]Trainer, 0, len(records))
	for _, record := range records {
		trainers = append(trainers, trainerFromRecord(record))
	}
	return trainers, nil
}

// DeleteTrainer removes a trainer. Every session, past or cancelled
// included, carries its trainer, so deletion is refused while any session
// still references the trainer.
func (s *RosterService) DeleteTrainer(ctx context.Context, id string) error {
	if s == nil || s.trainers == nil {
		return fmt.Errorf("trainer repository not configured")
	}
	logger := serviceLogger(ctx, s.logger, "roster", "delete_trainer", "trainer_id", id)

	if _, err := s.trainers.GetTrainer(ctx, id); err != nil {
		return mapRepoError(err)
	}

	busy, err := s.hasAnySessions(ctx, persistence.SessionFilter{TrainerID: id})
	if err != nil {
		return err
	}
	if busy {
		vErr := &ValidationError{}
		vErr.add("trainer_id", "the trainer has sessions on record")
		return vErr
	}

	if err := s.trainers.DeleteTrainer(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrForeignKeyViolation) {
			vErr := &ValidationError{}
			vErr.add("trainer_id", "the trainer has sessions on record")
			return vErr
		}
		return mapRepoError(err)
	}
	logger.InfoContext(ctx, "trainer deleted")
	return nil
}

// hasUpcomingSessions reports whether any scheduled session matching the
// filter starts today or later.
func (s *RosterService) hasUpcomingSessions(ctx context.Context, filter persistence.SessionFilter) (bool, error) {
	filter.DateFrom = s.now().Format(dateLayout)
	filter.Status = string(scheduler.StatusScheduled)
	return s.hasAnySessions(ctx, filter)
}

// hasAnySessions reports whether any session at all matches the filter.
func (s *RosterService) hasAnySessions(ctx context.Context, filter persistence.SessionFilter) (bool, error) {
	if s.sessions == nil {
		return false, nil
	}
	records, err := s.sessions.ListSessions(ctx, filter)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return len(records) > 0, nil
}

func normalizeStudentInput(input StudentInput) StudentInput {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Notes = strings.TrimSpace(input.Notes)
	return input
}

func normalizeTrainerInput(input TrainerInput) TrainerInput {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	return input
}

func validatePersonFields(name, email string) *ValidationError {
	vErr := &ValidationError{}
	if name == "" {
		vErr.add("name", "name is required")
	}
	if email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		vErr.add("email", "email is invalid")
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
