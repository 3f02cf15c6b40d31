package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/example/center-roster/internal/persistence"
	"github.com/example/center-roster/internal/scheduler"
	"github.com/example/center-roster/internal/timeutil"
)

// AnalyticsService derives reporting views from stored sessions: per-trainer
// workload and per-type seat utilization. Cancelled sessions never count.
type AnalyticsService struct {
	sessions      persistence.SessionRepository
	trainers      persistence.TrainerRepository
	seats         scheduler.SeatConfig
	businessStart string
	businessEnd   string
	location      *time.Location
	logger        *slog.Logger
}

// NewAnalyticsService wires dependencies for reporting queries.
func NewAnalyticsService(
	sessions persistence.SessionRepository,
	trainers persistence.TrainerRepository,
	seats scheduler.SeatConfig,
	businessStart, businessEnd string,
) *AnalyticsService {
	if seats == nil {
		seats = scheduler.DefaultSeatConfig()
	}
	if businessStart == "" {
		businessStart = "10:00"
	}
	if businessEnd == "" {
		businessEnd = "19:00"
	}
	return &AnalyticsService{
		sessions:      sessions,
		trainers:      trainers,
		seats:         seats,
		businessStart: businessStart,
		businessEnd:   businessEnd,
		location:      time.Local,
	}
}

// NewAnalyticsServiceWithLogger wires dependencies along with a base logger.
func NewAnalyticsServiceWithLogger(
	sessions persistence.SessionRepository,
	trainers persistence.TrainerRepository,
	seats scheduler.SeatConfig,
	businessStart, businessEnd string,
	logger *slog.Logger,
) *AnalyticsService {
	svc := NewAnalyticsService(sessions, trainers, seats, businessStart, businessEnd)
	svc.logger = defaultLogger(logger)
	return svc
}

// TrainerWorkloads aggregates session counts and minutes per trainer over an
// inclusive date range, sorted by trainer name.
func (s *AnalyticsService) TrainerWorkloads(ctx context.Context, fromDate, toDate string) ([]TrainerWorkload, error) {
	if s == nil || s.sessions == nil {
		return nil, fmt.Errorf("session repository not configured")
	}
	logger := serviceLogger(ctx, s.logger, "analytics", "trainer_workloads", "from", fromDate, "to", toDate)

	if err := s.validateRange(fromDate, toDate); err != nil {
		return nil, err
	}

	records, err := s.rangeSessions(ctx, fromDate, toDate)
	if err != nil {
		return nil, err
	}

	names := map[string]string{}
	if s.trainers != nil {
		trainerRecords, err := s.trainers.ListTrainers(ctx)
		if err != nil && !errors.Is(err, persistence.ErrNotFound) {
			return nil, err
		}
		for _, trainer := range trainerRecords {
			names[trainer.ID] = trainer.Name
		}
	}

	byTrainer := map[string]*TrainerWorkload{}
	for _, record := range records {
		session := sessionFromRecord(record)
		if session.Status == scheduler.StatusCancelled {
			continue
		}
		workload, ok := byTrainer[session.TrainerID]
		if !ok {
			workload = &TrainerWorkload{
				TrainerID:   session.TrainerID,
				TrainerName: names[session.TrainerID],
				ByType:      map[scheduler.SessionType]int{},
			}
			byTrainer[session.TrainerID] = workload
		}
		minutes := timeutil.Duration(session.StartTime, session.EndTime)
		workload.SessionCount++
		workload.TotalMinutes += minutes
		workload.ByType[session.Type] += minutes
	}

	workloads := make([]TrainerWorkload, 0, len(byTrainer))
	for _, workload := range byTrainer {
		workloads = append(workloads, *workload)
	}
	sort.Slice(workloads, func(i, j int) bool {
		if workloads[i].TrainerName != workloads[j].TrainerName {
			return workloads[i].TrainerName < workloads[j].TrainerName
		}
		return workloads[i].TrainerID < workloads[j].TrainerID
	})

	logger.InfoContext(ctx, "trainer workloads computed", "trainers", len(workloads))
	return workloads, nil
}

// SeatUtilization reports booked seat-minutes against total capacity per
// session type over an inclusive date range. Capacity is seats times the
// business-day length times the number of days; blocked windows are not
// subtracted.
func (s *AnalyticsService) SeatUtilization(ctx context.Context, fromDate, toDate string) ([]TypeUtilization, error) {
	if s == nil || s.sessions == nil {
		return nil, fmt.Errorf("session repository not configured")
	}
	logger := serviceLogger(ctx, s.logger, "analytics", "seat_utilization", "from", fromDate, "to", toDate)

	if err := s.validateRange(fromDate, toDate); err != nil {
		return nil, err
	}

	records, err := s.rangeSessions(ctx, fromDate, toDate)
	if err != nil {
		return nil, err
	}

	booked := map[scheduler.SessionType]int{}
	for _, record := range records {
		session := sessionFromRecord(record)
		if session.Status == scheduler.StatusCancelled {
			continue
		}
		booked[session.Type] += timeutil.Duration(session.StartTime, session.EndTime)
	}

	days := s.daysInRange(fromDate, toDate)
	dayMinutes := timeutil.Duration(s.businessStart, s.businessEnd)

	utilizations := make([]TypeUtilization, 0, len(scheduler.SessionTypes()))
	for _, sessionType := range scheduler.SessionTypes() {
		capacity := s.seats[sessionType] * dayMinutes * days
		utilization := TypeUtilization{
			Type:            sessionType,
			BookedMinutes:   booked[sessionType],
			CapacityMinutes: capacity,
		}
		if capacity > 0 {
			utilization.Utilization = float64(utilization.BookedMinutes) / float64(capacity)
		}
		utilizations = append(utilizations, utilization)
	}

	logger.InfoContext(ctx, "seat utilization computed", "days", days)
	return utilizations, nil
}

func (s *AnalyticsService) rangeSessions(ctx context.Context, fromDate, toDate string) ([]persistence.Session, error) {
	records, err := s.sessions.ListSessions(ctx, persistence.SessionFilter{DateFrom: fromDate, DateTo: toDate})
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return records, nil
}

func (s *AnalyticsService) validateRange(fromDate, toDate string) error {
	vErr := &ValidationError{}
	from, fromErr := time.ParseInLocation(dateLayout, fromDate, s.location)
	if fromErr != nil {
		vErr.add("from", "from must be formatted YYYY-MM-DD")
	}
	to, toErr := time.ParseInLocation(dateLayout, toDate, s.location)
	if toErr != nil {
		vErr.add("to", "to must be formatted YYYY-MM-DD")
	}
	if fromErr == nil && toErr == nil && to.Before(from) {
		vErr.add("to", "to must not be before from")
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

// daysInRange counts calendar days inclusively, stepping by calendar day so
// daylight-saving transitions do not skew the count.
func (s *AnalyticsService) daysInRange(fromDate, toDate string) int {
	from, err := time.ParseInLocation(dateLayout, fromDate, s.location)
	if err != nil {
		return 0
	}
	to, err := time.ParseInLocation(dateLayout, toDate, s.location)
	if err != nil {
		return 0
	}
	days := 0
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		days++
	}
	return days
}
