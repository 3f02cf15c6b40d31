package persistence

import "context"

// StudentRepository exposes CRUD operations for students.
type StudentRepository interface {
	CreateStudent(ctx context.Context, student Student) error
	UpdateStudent(ctx context.Context, student Student) error
	GetStudent(ctx context.Context, id string) (Student, error)
	ListStudents(ctx context.Context) ([]Student, error)
	DeleteStudent(ctx context.Context, id string) error
}

// TrainerRepository exposes CRUD operations for trainers.
type TrainerRepository interface {
	CreateTrainer(ctx context.Context, trainer Trainer) error
	UpdateTrainer(ctx context.Context, trainer Trainer) error
	GetTrainer(ctx context.Context, id string) (Trainer, error)
	ListTrainers(ctx context.Context) ([]Trainer, error)
	DeleteTrainer(ctx context.Context, id string) error
}

// SessionFilter narrows session queries. Zero-valued fields are ignored.
// Cancelled sessions are included; read paths that must exclude them filter
// on status themselves.
type SessionFilter struct {
	Date      string
	DateFrom  string
	DateTo    string
	Type      string
	TrainerID string
	StudentID string
	Status    string
}

// SessionRepository stores training sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) error
	UpdateSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, id string) (Session, error)
	ListSessions(ctx context.Context, filter SessionFilter) ([]Session, error)
}

// BlockedDayRuleRepository stores blocked-day rules. Rules are immutable:
// there is no update operation.
type BlockedDayRuleRepository interface {
	CreateRule(ctx context.Context, rule BlockedDayRule) error
	GetRule(ctx context.Context, id string) (BlockedDayRule, error)
	ListRules(ctx context.Context) ([]BlockedDayRule, error)
	DeleteRule(ctx context.Context, id string) error
}
