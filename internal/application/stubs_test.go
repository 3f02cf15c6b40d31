package application

import (
	"context"

	"github.com/example/center-roster/internal/persistence"
)

type studentRepoStub struct {
	createErr error
	created   persistence.Student

	students map[string]persistence.Student

	updateErr error
	updated   persistence.Student

	deleteErr error
	deletedID string

	listErr error
}

func (r *studentRepoStub) CreateStudent(ctx context.Context, student persistence.Student) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = student
	return nil
}

func (r *studentRepoStub) UpdateStudent(ctx context.Context, student persistence.Student) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updated = student
	return nil
}

func (r *studentRepoStub) GetStudent(ctx context.Context, id string) (persistence.Student, error) {
	student, ok := r.students[id]
	if !ok {
		return persistence.Student{}, persistence.ErrNotFound
	}
	return student, nil
}

func (r *studentRepoStub) ListStudents(ctx context.Context) ([]persistence.Student, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]persistence.Student, 0, len(r.students))
	for _, student := range r.students {
		out = append(out, student)
	}
	return out, nil
}

func (r *studentRepoStub) DeleteStudent(ctx context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deletedID = id
	return nil
}

type trainerRepoStub struct {
	createErr error
	created   persistence.Trainer

	trainers map[string]persistence.Trainer

	updateErr error
	updated   persistence.Trainer

	deleteErr error
	deletedID string

	listErr error
}

func (r *trainerRepoStub) CreateTrainer(ctx context.Context, trainer persistence.Trainer) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = trainer
	return nil
}

func (r *trainerRepoStub) UpdateTrainer(ctx context.Context, trainer persistence.Trainer) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updated = trainer
	return nil
}

func (r *trainerRepoStub) GetTrainer(ctx context.Context, id string) (persistence.Trainer, error) {
	trainer, ok := r.trainers[id]
	if !ok {
		return persistence.Trainer{}, persistence.ErrNotFound
	}
	return trainer, nil
}

func (r *trainerRepoStub) ListTrainers(ctx context.Context) ([]persistence.Trainer, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]persistence.Trainer, 0, len(r.trainers))
	for _, trainer := range r.trainers {
		out = append(out, trainer)
	}
	return out, nil
}

func (r *trainerRepoStub) DeleteTrainer(ctx context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deletedID = id
	return nil
}

type sessionRepoStub struct {
	createErr error
	created   persistence.Session

	sessions []persistence.Session

	updateErr error
	updated   persistence.Session

	listErr error
}

func (r *sessionRepoStub) CreateSession(ctx context.Context, session persistence.Session) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = session
	return nil
}

func (r *sessionRepoStub) UpdateSession(ctx context.Context, session persistence.Session) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updated = session
	return nil
}

func (r *sessionRepoStub) GetSession(ctx context.Context, id string) (persistence.Session, error) {
	for _, session := range r.sessions {
		if session.ID == id {
			return session, nil
		}
	}
	return persistence.Session{}, persistence.ErrNotFound
}

func (r *sessionRepoStub) ListSessions(ctx context.Context, filter persistence.SessionFilter) ([]persistence.Session, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]persistence.Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		if filter.Date != "" && session.Date != filter.Date {
			continue
		}
		if filter.DateFrom != "" && session.Date < filter.DateFrom {
			continue
		}
		if filter.DateTo != "" && session.Date > filter.DateTo {
			continue
		}
		if filter.Type != "" && session.Type != filter.Type {
			continue
		}
		if filter.TrainerID != "" && session.TrainerID != filter.TrainerID {
			continue
		}
		if filter.StudentID != "" && (session.StudentID == nil || *session.StudentID != filter.StudentID) {
			continue
		}
		if filter.Status != "" && session.Status != filter.Status {
			continue
		}
		out = append(out, session)
	}
	return out, nil
}

type ruleRepoStub struct {
	createErr error
	created   persistence.BlockedDayRule

	rules map[string]persistence.BlockedDayRule

	deleteErr error
	deletedID string

	listErr error
}

func (r *ruleRepoStub) CreateRule(ctx context.Context, rule persistence.BlockedDayRule) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = rule
	return nil
}

func (r *ruleRepoStub) GetRule(ctx context.Context, id string) (persistence.BlockedDayRule, error) {
	rule, ok := r.rules[id]
	if !ok {
		return persistence.BlockedDayRule{}, persistence.ErrNotFound
	}
	return rule, nil
}

func (r *ruleRepoStub) ListRules(ctx context.Context) ([]persistence.BlockedDayRule, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]persistence.BlockedDayRule, 0, len(r.rules))
	for _, rule := range r.rules {
		out = append(out, rule)
	}
	return out, nil
}

func (r *ruleRepoStub) DeleteRule(ctx context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if r.rules != nil {
		if _, ok := r.rules[id]; !ok {
			return persistence.ErrNotFound
		}
	}
	r.deletedID = id
	return nil
}
