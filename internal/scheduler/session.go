// Package scheduler implements the pure scheduling core: session domain
// types, seat availability resolution, and time-slot validation. Functions in
// this package take the session list as a parameter and never touch storage.
package scheduler

// SessionType categorizes a training activity. Each type has its own seat
// (lane) capacity for a given day.
type SessionType string

const (
	// TypeTabletopTraining is an in-person tabletop training session.
	TypeTabletopTraining SessionType = "tabletop-training"
	// TypeDigitalTraining is an in-person digital training session.
	TypeDigitalTraining SessionType = "digital-training"
	// TypeAccelerateRx is an accelerate-rx program session.
	TypeAccelerateRx SessionType = "accelerate-rx"
	// TypeRemote is a remotely delivered session.
	TypeRemote SessionType = "remote"
	// TypeGTAssessment is a one-off assessment for a walk-in client rather
	// than a registered student.
	TypeGTAssessment SessionType = "gt-assessment"
)

// SessionTypes lists every supported type in display order.
func SessionTypes() []SessionType {
	return []SessionType{
		TypeTabletopTraining,
		TypeDigitalTraining,
		TypeAccelerateRx,
		TypeRemote,
		TypeGTAssessment,
	}
}

// Valid reports whether t is a known session type.
func (t SessionType) Valid() bool {
	switch t {
	case TypeTabletopTraining, TypeDigitalTraining, TypeAccelerateRx, TypeRemote, TypeGTAssessment:
		return true
	}
	return false
}

// UsesClientName reports whether sessions of this type identify their subject
// by an ad-hoc client name instead of a registered student.
func (t SessionType) UsesClientName() bool {
	return t == TypeGTAssessment
}

// Status tracks the lifecycle of a session. Cancellation is a soft delete:
// cancelled sessions stay in storage but are ignored by conflict checks and
// grid display.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no-show"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Session is the scheduling unit placed on the daily grid.
//
// Date is a literal "YYYY-MM-DD" local calendar day; day grouping is string
// equality and deliberately timezone-naive. StartTime and EndTime are
// wall-clock "HH:MM" values forming the half-open window [StartTime, EndTime).
// Seat is 1-indexed within the type's capacity. StudentID and ClientName are
// mutually exclusive: gt-assessment sessions carry ClientName, every other
// type carries StudentID.
type Session struct {
	ID         string
	Type       SessionType
	Date       string
	StartTime  string
	EndTime    string
	Seat       int
	StudentID  string
	ClientName string
	TrainerID  string
	Status     Status
}

// SeatConfig maps each session type to its seat (lane) count. It is supplied
// by the caller as process-wide configuration, never derived.
type SeatConfig map[SessionType]int

// DefaultSeatConfig returns the center's standard capacity per type.
func DefaultSeatConfig() SeatConfig {
	return SeatConfig{
		TypeTabletopTraining: 10,
		TypeDigitalTraining:  10,
		TypeAccelerateRx:     3,
		TypeRemote:           4,
		TypeGTAssessment:     4,
	}
}
