package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/center-roster/internal/blockeddays"
	"github.com/example/center-roster/internal/persistence"
	"github.com/example/center-roster/internal/scheduler"
)

const dateLayout = "2006-01-02"

// SessionService orchestrates validation and persistence for training
// sessions: slot constraints, seat availability, trainer eligibility, and
// blocked-window exclusion.
type SessionService struct {
	sessions    persistence.SessionRepository
	students    persistence.StudentRepository
	trainers    persistence.TrainerRepository
	rules       persistence.BlockedDayRuleRepository
	expander    *blockeddays.Engine
	seats       scheduler.SeatConfig
	slotOpts    scheduler.SlotOptions
	cache       *availabilityCache
	idGenerator func() string
	now         func() time.Time
	location    *time.Location
	logger      *slog.Logger
}

// NewSessionService wires dependencies for session operations.
func NewSessionService(
	sessions persistence.SessionRepository,
	students persistence.StudentRepository,
	trainers persistence.TrainerRepository,
	rules persistence.BlockedDayRuleRepository,
	seats scheduler.SeatConfig,
	slotOpts scheduler.SlotOptions,
	cacheOpts CacheOptions,
	idGenerator func() string,
	now func() time.Time,
) *SessionService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if seats == nil {
		seats = scheduler.DefaultSeatConfig()
	}
	if slotOpts.Increment <= 0 {
		slotOpts = scheduler.DefaultSlotOptions()
	}
	return &SessionService{
		sessions:    sessions,
		students:    students,
		trainers:    trainers,
		rules:       rules,
		expander:    blockeddays.NewEngine(time.Local),
		seats:       seats,
		slotOpts:    slotOpts,
		cache:       newAvailabilityCache(cacheOpts.TTL, cacheOpts.MaxEntries, now),
		idGenerator: idGenerator,
		now:         now,
		location:    time.Local,
	}
}

// NewSessionServiceWithLogger wires dependencies along with a base logger.
func NewSessionServiceWithLogger(
	sessions persistence.SessionRepository,
	students persistence.StudentRepository,
	trainers persistence.TrainerRepository,
	rules persistence.BlockedDayRuleRepository,
	seats scheduler.SeatConfig,
	slotOpts scheduler.SlotOptions,
	cacheOpts CacheOptions,
	idGenerator func() string,
	now func() time.Time,
	logger *slog.Logger,
) *SessionService {
	svc := NewSessionService(sessions, students, trainers, rules, seats, slotOpts, cacheOpts, idGenerator, now)
	svc.logger = defaultLogger(logger)
	return svc
}

// CreateSession validates the request and persists a new scheduled session.
// Seat 0 requests automatic assignment of the lowest free seat.
func (s *SessionService) CreateSession(ctx context.Context, input SessionInput) (Session, error) {
	if s == nil {
		return Session{}, fmt.Errorf("SessionService is nil")
	}
	if s.sessions == nil {
		return Session{}, fmt.Errorf("session repository not configured")
	}
	logger := serviceLogger(ctx, s.logger, "sessions", "create")

	input = normalizeSessionInput(input)

	vErr := &ValidationError{}
	s.validateSessionCore(input, vErr)
	if vErr.HasErrors() {
		return Session{}, vErr
	}

	if err := s.ensureParticipants(ctx, input, vErr); err != nil {
		return Session{}, err
	}

	seat, err := s.resolveSeat(ctx, input, "", vErr)
	if err != nil {
		return Session{}, err
	}

	if err := s.ensureNotBlocked(ctx, input.Date, input.StartTime, input.EndTime, vErr); err != nil {
		return Session{}, err
	}

	if vErr.HasErrors() {
		return Session{}, vErr
	}

	createdAt := s.now()
	session := Session{
		ID:         s.idGenerator(),
		Type:       input.Type,
		Date:       input.Date,
		StartTime:  input.StartTime,
		EndTime:    input.EndTime,
		Seat:       seat,
		StudentID:  input.StudentID,
		ClientName: input.ClientName,
		TrainerID:  input.TrainerID,
		Status:     scheduler.StatusScheduled,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}

	if err := s.sessions.CreateSession(ctx, sessionToRecord(session)); err != nil {
		return Session{}, mapRepoError(err)
	}

	s.cache.Invalidate()
	logger.InfoContext(ctx, "session created", "session_id", session.ID, "type", session.Type, "date", session.Date)
	return session, nil
}

// GetSession retrieves a session by ID.
func (s *SessionService) GetSession(ctx context.Context, id string) (Session, error) {
	if s == nil || s.sessions == nil {
		return Session{}, fmt.Errorf("session repository not configured")
	}
	record, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return Session{}, mapRepoError(err)
	}
	return sessionFromRecord(record), nil
}

// UpdateSession re-validates and rewrites an existing session. Cancelled
// sessions cannot be edited.
func (s *SessionService) UpdateSession(ctx context.Context, id string, input SessionInput) (Session, error) {
	if s == nil || s.sessions == nil {
		return Session{}, fmt.Errorf("session repository not configured")
	}
	logger := serviceLogger(ctx, s.logger, "sessions", "update", "session_id", id)

	record, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return Session{}, mapRepoError(err)
	}
	existing := sessionFromRecord(record)

	if existing.Status == scheduler.StatusCancelled {
		vErr := &ValidationError{}
		vErr.add("status", "cancelled sessions cannot be edited")
		return Session{}, vErr
	}

	input = normalizeSessionInput(input)

	vErr := &ValidationError{}
	s.validateSessionCore(input, vErr)
	if vErr.HasErrors() {
		return Session{}, vErr
	}

	if err := s.ensureParticipants(ctx, input, vErr); err != nil {
		return Session{}, err
	}

	seat, err := s.resolveSeat(ctx, input, existing.ID, vErr)
	if err != nil {
		return Session{}, err
	}

	if err := s.ensureNotBlocked(ctx, input.Date, input.StartTime, input.EndTime, vErr); err != nil {
		return Session{}, err
	}

	if vErr.HasErrors() {
		return Session{}, vErr
	}

	updated := existing
	updated.Type = input.Type
	updated.Date = input.Date
	updated.StartTime = input.StartTime
	updated.EndTime = input.EndTime
	updated.Seat = seat
	updated.StudentID = input.StudentID
	updated.ClientName = input.ClientName
	updated.TrainerID = input.TrainerID
	updated.UpdatedAt = s.now()

	if err := s.sessions.UpdateSession(ctx, sessionToRecord(updated)); err != nil {
		return Session{}, mapRepoError(err)
	}

	s.cache.Invalidate()
	logger.InfoContext(ctx, "session updated")
	return updated, nil
}

// MoveSession commits a drag-reschedule: a new seat and time window on the
// same day. The move is re-validated against the seat invariant and blocked
// windows even though the grid previewed it, since storage may have changed
// between hover and drop.
func (s *SessionService) MoveSession(ctx context.Context, id string, newSeat int, newStart, newEnd string) (Session, error) {
	if s == nil || s.sessions == nil {
		return Session{}, fmt.Errorf("session repository not configured")
	}
	logger := serviceLogger(ctx, s.logger, "sessions", "move", "session_id", id)

	record, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return Session{}, mapRepoError(err)
	}
	existing := sessionFromRecord(record)

	vErr := &ValidationError{}
	if existing.Status != scheduler.StatusScheduled {
		vErr.add("status", "only scheduled sessions can be moved")
		return Session{}, vErr
	}

	if err := scheduler.ValidateSlot(newStart, newEnd, s.slotOpts); err != nil {
		vErr.add("time", err.Error())
		return Session{}, vErr
	}

	if newSeat < 1 || newSeat > s.seats[existing.Type] {
		vErr.add("seat", fmt.Sprintf("seat must be between 1 and %d", s.seats[existing.Type]))
		return Session{}, vErr
	}

	day, err := s.daySessions(ctx, existing.Date)
	if err != nil {
		return Session{}, err
	}
	if scheduler.SeatTaken(existing.Type, existing.Date, newStart, newEnd, newSeat, day, existing.ID) {
		vErr.add("seat", fmt.Sprintf("seat %d is already booked for that time", newSeat))
		return Session{}, vErr
	}

	if err := s.ensureNotBlocked(ctx, existing.Date, newStart, newEnd, vErr); err != nil {
		return Session{}, err
	}
	if vErr.HasErrors() {
		return Session{}, vErr
	}

	updated := existing
	updated.Seat = newSeat
	updated.StartTime = newStart
	updated.EndTime = newEnd
	updated.UpdatedAt = s.now()

	if err := s.sessions.UpdateSession(ctx, sessionToRecord(updated)); err != nil {
		return Session{}, mapRepoError(err)
	}

	s.cache.Invalidate()
	logger.InfoContext(ctx, "session moved", "seat", newSeat, "start", newStart, "end", newEnd)
	return updated, nil
}

// SetStatus transitions a session's lifecycle state. Cancelled sessions are
// terminal.
func (s *SessionService) SetStatus(ctx context.Context, id string, status scheduler.Status) (Session, error) {
	if s == nil || s.sessions == nil {
		return Session{}, fmt.Errorf("session repository not configured")
	}
	logger := serviceLogger(ctx, s.logger, "sessions", "set_status", "session_id", id)

	vErr := &ValidationError{}
	if !status.Valid() {
		vErr.add("status", "unknown status")
		return Session{}, vErr
	}

	record, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return Session{}, mapRepoError(err)
	}
	existing := sessionFromRecord(record)

	if existing.Status == scheduler.StatusCancelled && status != scheduler.StatusCancelled {
		vErr.add("status", "cancelled sessions cannot change status")
		return Session{}, vErr
	}

	updated := existing
	updated.Status = status
	updated.UpdatedAt = s.now()

	if err := s.sessions.UpdateSession(ctx, sessionToRecord(updated)); err != nil {
		return Session{}, mapRepoError(err)
	}

	s.cache.Invalidate()
	logger.InfoContext(ctx, "session status changed", "status", status)
	return updated, nil
}

// CancelSession soft-deletes a session. The record is retained; conflict
// checks and grid display ignore it from now on.
func (s *SessionService) CancelSession(ctx context.Context, id string) (Session, error) {
	return s.SetStatus(ctx, id, scheduler.StatusCancelled)
}

// ListSessions enumerates sessions matching the filter, ordered by date and
// start time. Cancelled sessions are excluded unless the filter asks for
// them.
func (s *SessionService) ListSessions(ctx context.Context, filter SessionListFilter) ([]Session, error) {
	if s == nil || s.sessions == nil {
		return nil, fmt.Errorf("session repository not configured")
	}

	records, err := s.sessions.ListSessions(ctx, persistence.SessionFilter{
		Date:      filter.Date,
		DateFrom:  filter.DateFrom,
		DateTo:    filter.DateTo,
		Type:      string(filter.Type),
		TrainerID: filter.TrainerID,
		StudentID: filter.StudentID,
		Status:    string(filter.Status),
	})
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	sessions := make([]Session, 0, len(records))
	for _, record := range records {
		session := sessionFromRecord(record)
		if session.Status == scheduler.StatusCancelled &&
			!filter.IncludeCancelled && filter.Status != scheduler.StatusCancelled {
			continue
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// AvailableSeats computes the free seats for a proposed window, reading the
// day's sessions from storage. Results are cached briefly; any session write
// invalidates the cache.
func (s *SessionService) AvailableSeats(ctx context.Context, sessionType scheduler.SessionType, date, start, end, excludeID string) ([]int, error) {
	if s == nil || s.sessions == nil {
		return nil, fmt.Errorf("session repository not configured")
	}

	key := strings.Join([]string{string(sessionType), date, start, end, excludeID}, "|")
	if seats, ok := s.cache.Get(key); ok {
		return seats, nil
	}

	day, err := s.daySessions(ctx, date)
	if err != nil {
		return nil, err
	}

	seats := scheduler.AvailableSeats(sessionType, date, start, end, day, s.seats, excludeID)
	s.cache.Store(key, seats)
	return seats, nil
}

// SeatConfig exposes the configured per-type capacities.
func (s *SessionService) SeatConfig() scheduler.SeatConfig {
	return s.seats
}

// StartTimeOptions lists the start times a new session may use, in the
// configured increment across business hours.
func (s *SessionService) StartTimeOptions() []string {
	return scheduler.StartTimes(s.slotOpts)
}

// EndTimeOptions lists the end times reachable from the given start time
// within the duration and business-hour limits.
func (s *SessionService) EndTimeOptions(start string) []string {
	return scheduler.EndTimes(start, s.slotOpts)
}

func (s *SessionService) daySessions(ctx context.Context, date string) ([]scheduler.Session, error) {
	records, err := s.sessions.ListSessions(ctx, persistence.SessionFilter{Date: date})
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return schedulerSessionsFromRecords(records), nil
}

func (s *SessionService) validateSessionCore(input SessionInput, vErr *ValidationError) {
	if !input.Type.Valid() {
		vErr.add("type", "unknown session type")
	}

	if input.Date == "" {
		vErr.add("date", "date is required")
	} else if _, err := time.ParseInLocation(dateLayout, input.Date, s.location); err != nil {
		vErr.add("date", "date must be formatted YYYY-MM-DD")
	}

	if err := scheduler.ValidateSlot(input.StartTime, input.EndTime, s.slotOpts); err != nil {
		vErr.add("time", err.Error())
	}

	if input.TrainerID == "" {
		vErr.add("trainer_id", "trainer is required")
	}

	if !input.Type.Valid() {
		return
	}
	if input.Type.UsesClientName() {
		if input.ClientName == "" {
			vErr.add("client_name", "client name is required for gt-assessment sessions")
		}
		if input.StudentID != "" {
			vErr.add("student_id", "gt-assessment sessions take a client name, not a student")
		}
	} else {
		if input.StudentID == "" {
			vErr.add("student_id", "student is required")
		}
		if input.ClientName != "" {
			vErr.add("client_name", "only gt-assessment sessions take a client name")
		}
	}
}

// ensureParticipants verifies the trainer (and, for student sessions, the
// student) exist and that the trainer may run gt-assessments when required.
func (s *SessionService) ensureParticipants(ctx context.Context, input SessionInput, vErr *ValidationError) error {
	if input.TrainerID != "" && s.trainers != nil {
		trainer, err := s.trainers.GetTrainer(ctx, input.TrainerID)
		switch {
		case errors.Is(err, persistence.ErrNotFound):
			vErr.add("trainer_id", "trainer does not exist")
		case err != nil:
			return err
		case input.Type == scheduler.TypeGTAssessment && !trainer.CanDoGTAssessments:
			vErr.add("trainer_id", "trainer is not qualified for gt-assessments")
		}
	}

	if input.StudentID != "" && s.students != nil {
		if _, err := s.students.GetStudent(ctx, input.StudentID); err != nil {
			if errors.Is(err, persistence.ErrNotFound) {
				vErr.add("student_id", "student does not exist")
			} else {
				return err
			}
		}
	}

	return nil
}

// resolveSeat returns the seat to persist: the requested seat when it is in
// range and free, or the lowest free seat when the input requests automatic
// assignment. Seat exhaustion and double-booking are recorded as field
// errors.
func (s *SessionService) resolveSeat(ctx context.Context, input SessionInput, excludeID string, vErr *ValidationError) (int, error) {
	if !input.Type.Valid() || vErr.HasErrors() {
		return input.Seat, nil
	}

	day, err := s.daySessions(ctx, input.Date)
	if err != nil {
		return 0, err
	}
	available := scheduler.AvailableSeats(input.Type, input.Date, input.StartTime, input.EndTime, day, s.seats, excludeID)

	if input.Seat == 0 {
		if len(available) == 0 {
			vErr.add("seat", "no seats are available for the selected time")
			return 0, nil
		}
		return available[0], nil
	}

	if input.Seat < 1 || input.Seat > s.seats[input.Type] {
		vErr.add("seat", fmt.Sprintf("seat must be between 1 and %d", s.seats[input.Type]))
		return 0, nil
	}
	for _, seat := range available {
		if seat == input.Seat {
			return input.Seat, nil
		}
	}
	vErr.add("seat", fmt.Sprintf("seat %d is already booked for that time", input.Seat))
	return 0, nil
}

// ensureNotBlocked rejects windows that intersect an effective blocked
// interval on the session's day.
func (s *SessionService) ensureNotBlocked(ctx context.Context, date, start, end string, vErr *ValidationError) error {
	if s.rules == nil || date == "" || start == "" || end == "" {
		return nil
	}

	day, err := time.ParseInLocation(dateLayout, date, s.location)
	if err != nil {
		return nil
	}

	records, err := s.rules.ListRules(ctx)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil
		}
		return err
	}

	rules := make([]blockeddays.Rule, 0, len(records))
	for _, record := range records {
		rules = append(rules, toExpanderRule(ruleFromRecord(record)))
	}

	blocks := s.expander.EffectiveBlocks(rules, day, day)
	if blockeddays.IsBlocked(atTime(day, start), atTime(day, end), blocks) {
		vErr.add("time", "the selected time falls within a blocked period")
	}
	return nil
}

func atTime(day time.Time, hhmm string) time.Time {
	parsed, err := time.Parse("15:04", hhmm)
	if err != nil {
		return day
	}
	return time.Date(day.Year(), day.Month(), day.Day(), parsed.Hour(), parsed.Minute(), 0, 0, day.Location())
}

func normalizeSessionInput(input SessionInput) SessionInput {
	input.Date = strings.TrimSpace(input.Date)
	input.StartTime = strings.TrimSpace(input.StartTime)
	input.EndTime = strings.TrimSpace(input.EndTime)
	input.StudentID = strings.TrimSpace(input.StudentID)
	input.ClientName = strings.TrimSpace(input.ClientName)
	input.TrainerID = strings.TrimSpace(input.TrainerID)
	return input
}

func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("participants", "related records are missing")
		return vErr
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("time", "the session violates a storage constraint")
		return vErr
	}
	return err
}
