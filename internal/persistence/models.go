package persistence

import "time"

// Student represents a registered student in the roster.
type Student struct {
	ID        string
	Name      string
	Email     string
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Trainer represents a staff member who delivers sessions. Only trainers with
// CanDoGTAssessments may be assigned to gt-assessment sessions.
type Trainer struct {
	ID                 string
	Name               string
	Email              string
	CanDoGTAssessments bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Session represents a scheduled training session. Date is the literal
// "YYYY-MM-DD" local calendar day; StartTime and EndTime are "HH:MM"
// wall-clock values. Exactly one of StudentID or ClientName is set, keyed by
// the session type. Cancelled sessions are retained, not deleted.
type Session struct {
	ID         string
	Type       string
	Date       string
	StartTime  string
	EndTime    string
	Seat       int
	StudentID  *string
	ClientName *string
	TrainerID  string
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// BlockedDayRule represents an admin-defined booking exclusion: a literal
// date range, or a monthly nth-weekday recurrence when Recurring is set.
// ExcludeMonths holds month numbers (1-12) skipped by the recurrence.
type BlockedDayRule struct {
	ID            string
	StartDate     *string
	EndDate       *string
	StartTime     *string
	EndTime       *string
	Recurring     bool
	Nth           int
	Weekday       int
	ExcludeMonths []int
	Reason        *string
	CreatedAt     time.Time
}
