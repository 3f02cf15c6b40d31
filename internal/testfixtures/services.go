package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/center-roster/internal/application"
	"github.com/example/center-roster/internal/persistence"
	"github.com/example/center-roster/internal/scheduler"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// SessionServiceDeps captures dependencies for constructing a session service.
type SessionServiceDeps struct {
	Sessions    persistence.SessionRepository
	Students    persistence.StudentRepository
	Trainers    persistence.TrainerRepository
	Rules       persistence.BlockedDayRuleRepository
	Seats       scheduler.SeatConfig
	SlotOptions scheduler.SlotOptions
	Cache       application.CacheOptions
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewSessionService builds a session service using the supplied dependencies
// combined with the factory defaults.
func (f *ServiceFactory) NewSessionService(deps SessionServiceDeps) *application.SessionService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	if deps.Logger != nil {
		return application.NewSessionServiceWithLogger(
			deps.Sessions, deps.Students, deps.Trainers, deps.Rules,
			deps.Seats, deps.SlotOptions, deps.Cache, idGen, now, deps.Logger)
	}
	return application.NewSessionService(
		deps.Sessions, deps.Students, deps.Trainers, deps.Rules,
		deps.Seats, deps.SlotOptions, deps.Cache, idGen, now)
}

// RosterServiceDeps captures dependencies for constructing a roster service.
type RosterServiceDeps struct {
	Students    persistence.StudentRepository
	Trainers    persistence.TrainerRepository
	Sessions    persistence.SessionRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewRosterService builds a roster service using the supplied dependencies
// combined with the factory defaults.
func (f *ServiceFactory) NewRosterService(deps RosterServiceDeps) *application.RosterService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	if deps.Logger != nil {
		return application.NewRosterServiceWithLogger(
			deps.Students, deps.Trainers, deps.Sessions, idGen, now, deps.Logger)
	}
	return application.NewRosterService(deps.Students, deps.Trainers, deps.Sessions, idGen, now)
}

// BlockedDayServiceDeps captures dependencies for constructing a blocked-day
// service.
type BlockedDayServiceDeps struct {
	Rules       persistence.BlockedDayRuleRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewBlockedDayService builds a blocked-day service using the supplied
// dependencies combined with the factory defaults.
func (f *ServiceFactory) NewBlockedDayService(deps BlockedDayServiceDeps) *application.BlockedDayService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	if deps.Logger != nil {
		return application.NewBlockedDayServiceWithLogger(deps.Rules, idGen, now, deps.Logger)
	}
	return application.NewBlockedDayService(deps.Rules, idGen, now)
}
