package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/center-roster/internal/persistence"
	"github.com/example/center-roster/internal/scheduler"
)

var (
	studentCounter uint64
	trainerCounter uint64
	sessionCounter uint64
	ruleCounter    uint64
)

var referenceTime = time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// StudentFixture represents a deterministic student record for persistence
// and service tests.
type StudentFixture struct {
	ID    string
	Name  string
	Email string
	Notes string
}

// NewStudentFixture produces a unique student fixture. Overrides mutate the
// fixture before it is returned.
func NewStudentFixture(overrides ...func(*StudentFixture)) StudentFixture {
	n := atomic.AddUint64(&studentCounter, 1)
	fixture := StudentFixture{
		ID:    fmt.Sprintf("student-%d", n),
		Name:  fmt.Sprintf("Student %d", n),
		Email: fmt.Sprintf("student%d@example.com", n),
	}
	for _, override := range overrides {
		override(&fixture)
	}
	return fixture
}

// Record materialises the fixture as a persistence record.
func (f StudentFixture) Record() persistence.Student {
	var notes *string
	if f.Notes != "" {
		notes = &f.Notes
	}
	return persistence.Student{
		ID:        f.ID,
		Name:      f.Name,
		Email:     f.Email,
		Notes:     notes,
		CreatedAt: ReferenceTime(),
		UpdatedAt: ReferenceTime(),
	}
}

// TrainerFixture represents a deterministic trainer record.
type TrainerFixture struct {
	ID                 string
	Name               string
	Email              string
	CanDoGTAssessments bool
}

// NewTrainerFixture produces a unique trainer fixture.
func NewTrainerFixture(overrides ...func(*TrainerFixture)) TrainerFixture {
	n := atomic.AddUint64(&trainerCounter, 1)
	fixture := TrainerFixture{
		ID:    fmt.Sprintf("trainer-%d", n),
		Name:  fmt.Sprintf("Trainer %d", n),
		Email: fmt.Sprintf("trainer%d@example.com", n),
	}
	for _, override := range overrides {
		override(&fixture)
	}
	return fixture
}

// Record materialises the fixture as a persistence record.
func (f TrainerFixture) Record() persistence.Trainer {
	return persistence.Trainer{
		ID:                 f.ID,
		Name:               f.Name,
		Email:              f.Email,
		CanDoGTAssessments: f.CanDoGTAssessments,
		CreatedAt:          ReferenceTime(),
		UpdatedAt:          ReferenceTime(),
	}
}

// SessionFixture represents a deterministic session record. The default is a
// scheduled tabletop training on the reference day.
type SessionFixture struct {
	ID         string
	Type       scheduler.SessionType
	Date       string
	StartTime  string
	EndTime    string
	Seat       int
	StudentID  string
	ClientName string
	TrainerID  string
	Status     scheduler.Status
}

// NewSessionFixture produces a unique session fixture.
func NewSessionFixture(overrides ...func(*SessionFixture)) SessionFixture {
	n := atomic.AddUint64(&sessionCounter, 1)
	fixture := SessionFixture{
		ID:        fmt.Sprintf("session-%d", n),
		Type:      scheduler.TypeTabletopTraining,
		Date:      "2024-06-10",
		StartTime: "13:00",
		EndTime:   "14:00",
		Seat:      1,
		StudentID: fmt.Sprintf("student-%d", n),
		TrainerID: fmt.Sprintf("trainer-%d", n),
		Status:    scheduler.StatusScheduled,
	}
	for _, override := range overrides {
		override(&fixture)
	}
	return fixture
}

// Record materialises the fixture as a persistence record.
func (f SessionFixture) Record() persistence.Session {
	var studentID, clientName *string
	if f.StudentID != "" {
		studentID = &f.StudentID
	}
	if f.ClientName != "" {
		clientName = &f.ClientName
	}
	return persistence.Session{
		ID:         f.ID,
		Type:       string(f.Type),
		Date:       f.Date,
		StartTime:  f.StartTime,
		EndTime:    f.EndTime,
		Seat:       f.Seat,
		StudentID:  studentID,
		ClientName: clientName,
		TrainerID:  f.TrainerID,
		Status:     string(f.Status),
		CreatedAt:  ReferenceTime(),
		UpdatedAt:  ReferenceTime(),
	}
}

// Scheduler materialises the fixture as a scheduler session for conflict and
// grid tests.
func (f SessionFixture) Scheduler() scheduler.Session {
	return scheduler.Session{
		ID:         f.ID,
		Type:       f.Type,
		Date:       f.Date,
		StartTime:  f.StartTime,
		EndTime:    f.EndTime,
		Seat:       f.Seat,
		StudentID:  f.StudentID,
		ClientName: f.ClientName,
		TrainerID:  f.TrainerID,
		Status:     f.Status,
	}
}

// BlockedDayRuleFixture represents a deterministic blocked-day rule. The
// default is a single literal blocked day.
type BlockedDayRuleFixture struct {
	ID            string
	StartDate     string
	EndDate       string
	StartTime     string
	EndTime       string
	Recurring     bool
	Nth           int
	Weekday       int
	ExcludeMonths []int
	Reason        string
}

// NewBlockedDayRuleFixture produces a unique rule fixture.
func NewBlockedDayRuleFixture(overrides ...func(*BlockedDayRuleFixture)) BlockedDayRuleFixture {
	n := atomic.AddUint64(&ruleCounter, 1)
	fixture := BlockedDayRuleFixture{
		ID:        fmt.Sprintf("rule-%d", n),
		StartDate: "2024-06-10",
		EndDate:   "2024-06-10",
	}
	for _, override := range overrides {
		override(&fixture)
	}
	return fixture
}

// Record materialises the fixture as a persistence record.
func (f BlockedDayRuleFixture) Record() persistence.BlockedDayRule {
	record := persistence.BlockedDayRule{
		ID:        f.ID,
		Recurring: f.Recurring,
		Nth:       f.Nth,
		Weekday:   f.Weekday,
		CreatedAt: ReferenceTime(),
	}
	if f.StartDate != "" {
		value := f.StartDate
		record.StartDate = &value
	}
	if f.EndDate != "" {
		value := f.EndDate
		record.EndDate = &value
	}
	if f.StartTime != "" {
		value := f.StartTime
		record.StartTime = &value
	}
	if f.EndTime != "" {
		value := f.EndTime
		record.EndTime = &value
	}
	if f.Reason != "" {
		value := f.Reason
		record.Reason = &value
	}
	if len(f.ExcludeMonths) > 0 {
		record.ExcludeMonths = append([]int(nil), f.ExcludeMonths...)
	}
	return record
}
