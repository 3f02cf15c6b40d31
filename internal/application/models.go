package application

import (
	"time"

	"github.com/example/center-roster/internal/blockeddays"
	"github.com/example/center-roster/internal/persistence"
	"github.com/example/center-roster/internal/scheduler"
)

// Student represents a registered student exposed by the application services.
type Student struct {
	ID        string
	Name      string
	Email     string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StudentInput captures caller provided student fields.
type StudentInput struct {
	Name  string
	Email string
	Notes string
}

// Trainer represents a staff member exposed by the application services.
type Trainer struct {
	ID                 string
	Name               string
	Email              string
	CanDoGTAssessments bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TrainerInput captures caller provided trainer fields.
type TrainerInput struct {
	Name               string
	Email              string
	CanDoGTAssessments bool
}

// Session represents a scheduled training session exposed by the application
// services.
type Session struct {
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
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SessionInput captures caller provided session fields. Seat 0 requests
// automatic assignment of the lowest free seat.
type SessionInput struct {
	Type       scheduler.SessionType
	Date       string
	StartTime  string
	EndTime    string
	Seat       int
	StudentID  string
	ClientName string
	TrainerID  string
}

// SessionListFilter narrows session listings. Zero-valued fields are ignored.
type SessionListFilter struct {
	Date             string
	DateFrom         string
	DateTo           string
	Type             scheduler.SessionType
	TrainerID        string
	StudentID        string
	Status           scheduler.Status
	IncludeCancelled bool
}

// BlockedDayRule represents a stored booking exclusion rule.
type BlockedDayRule struct {
	ID         string
	StartDate  string
	EndDate    string
	StartTime  string
	EndTime    string
	Recurrence *blockeddays.Recurrence
	Reason     string
	CreatedAt  time.Time
}

// BlockedDayRuleInput captures caller provided rule fields. When Recurring is
// set, Nth and Weekday define the monthly occurrence and the date fields are
// ignored; otherwise StartDate (and optionally EndDate) define a literal
// range.
type BlockedDayRuleInput struct {
	StartDate     string
	EndDate       string
	StartTime     string
	EndTime       string
	Recurring     bool
	Nth           int
	Weekday       time.Weekday
	ExcludeMonths []time.Month
	Reason        string
}

// TrainerWorkload summarizes one trainer's load over a date range.
type TrainerWorkload struct {
	TrainerID    string
	TrainerName  string
	SessionCount int
	TotalMinutes int
	ByType       map[scheduler.SessionType]int
}

// TypeUtilization reports booked seat-minutes against capacity for one
// session type over a date range.
type TypeUtilization struct {
	Type            scheduler.SessionType
	BookedMinutes   int
	CapacityMinutes int
	Utilization     float64
}

func studentFromRecord(record persistence.Student) Student {
	student := Student{
		ID:        record.ID,
		Name:      record.Name,
		Email:     record.Email,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
	if record.Notes != nil {
		student.Notes = *record.Notes
	}
	return student
}

func studentToRecord(student Student) persistence.Student {
	record := persistence.Student{
		ID:        student.ID,
		Name:      student.Name,
		Email:     student.Email,
		CreatedAt: student.CreatedAt,
		UpdatedAt: student.UpdatedAt,
	}
	if student.Notes != "" {
		notes := student.Notes
		record.Notes = &notes
	}
	return record
}

func trainerFromRecord(record persistence.Trainer) Trainer {
	return Trainer{
		ID:                 record.ID,
		Name:               record.Name,
		Email:              record.Email,
		CanDoGTAssessments: record.CanDoGTAssessments,
		CreatedAt:          record.CreatedAt,
		UpdatedAt:          record.UpdatedAt,
	}
}

func trainerToRecord(trainer Trainer) persistence.Trainer {
	return persistence.Trainer{
		ID:                 trainer.ID,
		Name:               trainer.Name,
		Email:              trainer.Email,
		CanDoGTAssessments: trainer.CanDoGTAssessments,
		CreatedAt:          trainer.CreatedAt,
		UpdatedAt:          trainer.UpdatedAt,
	}
}

func sessionFromRecord(record persistence.Session) Session {
	session := Session{
		ID:        record.ID,
		Type:      scheduler.SessionType(record.Type),
		Date:      record.Date,
		StartTime: record.StartTime,
		EndTime:   record.EndTime,
		Seat:      record.Seat,
		TrainerID: record.TrainerID,
		Status:    scheduler.Status(record.Status),
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
	if record.StudentID != nil {
		session.StudentID = *record.StudentID
	}
	if record.ClientName != nil {
		session.ClientName = *record.ClientName
	}
	return session
}

func sessionToRecord(session Session) persistence.Session {
	record := persistence.Session{
		ID:        session.ID,
		Type:      string(session.Type),
		Date:      session.Date,
		StartTime: session.StartTime,
		EndTime:   session.EndTime,
		Seat:      session.Seat,
		TrainerID: session.TrainerID,
		Status:    string(session.Status),
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
	if session.StudentID != "" {
		id := session.StudentID
		record.StudentID = &id
	}
	if session.ClientName != "" {
		name := session.ClientName
		record.ClientName = &name
	}
	return record
}

// toSchedulerSession projects an application session onto the pure
// scheduling core's session shape.
func toSchedulerSession(session Session) scheduler.Session {
	return scheduler.Session{
		ID:         session.ID,
		Type:       session.Type,
		Date:       session.Date,
		StartTime:  session.StartTime,
		EndTime:    session.EndTime,
		Seat:       session.Seat,
		StudentID:  session.StudentID,
		ClientName: session.ClientName,
		TrainerID:  session.TrainerID,
		Status:     session.Status,
	}
}

func schedulerSessionsFromRecords(records []persistence.Session) []scheduler.Session {
	sessions := make([]scheduler.Session, 0, len(records))
	for _, record := range records {
		sessions = append(sessions, toSchedulerSession(sessionFromRecord(record)))
	}
	return sessions
}

func ruleFromRecord(record persistence.BlockedDayRule) BlockedDayRule {
	rule := BlockedDayRule{
		ID:        record.ID,
		CreatedAt: record.CreatedAt,
	}
	if record.StartDate != nil {
		rule.StartDate = *record.StartDate
	}
	if record.EndDate != nil {
		rule.EndDate = *record.EndDate
	}
	if record.StartTime != nil {
		rule.StartTime = *record.StartTime
	}
	if record.EndTime != nil {
		rule.EndTime = *record.EndTime
	}
	if record.Reason != nil {
		rule.Reason = *record.Reason
	}
	if record.Recurring {
		months := make([]time.Month, 0, len(record.ExcludeMonths))
		for _, month := range record.ExcludeMonths {
			months = append(months, time.Month(month))
		}
		rule.Recurrence = &blockeddays.Recurrence{
			Nth:           record.Nth,
			Weekday:       time.Weekday(record.Weekday),
			ExcludeMonths: months,
		}
	}
	return rule
}

func ruleToRecord(rule BlockedDayRule) persistence.BlockedDayRule {
	record := persistence.BlockedDayRule{
		ID:        rule.ID,
		CreatedAt: rule.CreatedAt,
	}
	record.StartDate = optionalString(rule.StartDate)
	record.EndDate = optionalString(rule.EndDate)
	record.StartTime = optionalString(rule.StartTime)
	record.EndTime = optionalString(rule.EndTime)
	record.Reason = optionalString(rule.Reason)
	if rule.Recurrence != nil {
		record.Recurring = true
		record.Nth = rule.Recurrence.Nth
		record.Weekday = int(rule.Recurrence.Weekday)
		record.ExcludeMonths = make([]int, 0, len(rule.Recurrence.ExcludeMonths))
		for _, month := range rule.Recurrence.ExcludeMonths {
			record.ExcludeMonths = append(record.ExcludeMonths, int(month))
		}
	}
	return record
}

// toExpanderRule projects a stored rule onto the expansion engine's rule
// shape.
func toExpanderRule(rule BlockedDayRule) blockeddays.Rule {
	return blockeddays.Rule{
		ID:         rule.ID,
		StartDate:  rule.StartDate,
		EndDate:    rule.EndDate,
		StartTime:  rule.StartTime,
		EndTime:    rule.EndTime,
		Recurrence: rule.Recurrence,
		Reason:     rule.Reason,
	}
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
