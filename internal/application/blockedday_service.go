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
)

// BlockedDayService manages booking exclusion rules and expands them into
// concrete blocked windows. Rules are immutable: correcting one means
// deleting it and creating a replacement.
type BlockedDayService struct {
	rules       persistence.BlockedDayRuleRepository
	expander    *blockeddays.Engine
	idGenerator func() string
	now         func() time.Time
	location    *time.Location
	logger      *slog.Logger
}

// NewBlockedDayService wires dependencies for blocked-day operations.
func NewBlockedDayService(
	rules persistence.BlockedDayRuleRepository,
	idGenerator func() string,
	now func() time.Time,
) *BlockedDayService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BlockedDayService{
		rules:       rules,
		expander:    blockeddays.NewEngine(time.Local),
		idGenerator: idGenerator,
		now:         now,
		location:    time.Local,
	}
}

// NewBlockedDayServiceWithLogger wires dependencies along with a base logger.
func NewBlockedDayServiceWithLogger(
	rules persistence.BlockedDayRuleRepository,
	idGenerator func() string,
	now func() time.Time,
	logger *slog.Logger,
) *BlockedDayService {
	svc := NewBlockedDayService(rules, idGenerator, now)
	svc.logger = defaultLogger(logger)
	return svc
}

// CreateRule validates and persists a new blocked-day rule.
func (s *BlockedDayService) CreateRule(ctx context.Context, input BlockedDayRuleInput) (BlockedDayRule, error) {
	if s == nil || s.rules == nil {
		return BlockedDayRule{}, fmt.Errorf("blocked-day repository not configured")
	}
	logger := serviceLogger(ctx, s.logger, "blocked_days", "create")

	input = normalizeRuleInput(input)

	vErr := &ValidationError{}
	s.validateRuleInput(input, vErr)
	if vErr.HasErrors() {
		return BlockedDayRule{}, vErr
	}

	rule := BlockedDayRule{
		ID:        s.idGenerator(),
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		Reason:    input.Reason,
		CreatedAt: s.now(),
	}
	if input.Recurring {
		rule.StartDate = ""
		rule.EndDate = ""
		rule.Recurrence = &blockeddays.Recurrence{
			Nth:           input.Nth,
			Weekday:       input.Weekday,
			ExcludeMonths: append([]time.Month(nil), input.ExcludeMonths...),
		}
	}

	if err := s.rules.CreateRule(ctx, ruleToRecord(rule)); err != nil {
		return BlockedDayRule{}, mapRepoError(err)
	}

	logger.InfoContext(ctx, "blocked-day rule created", "rule_id", rule.ID, "recurring", input.Recurring)
	return rule, nil
}

// GetRule retrieves a rule by ID.
func (s *BlockedDayService) GetRule(ctx context.Context, id string) (BlockedDayRule, error) {
	if s == nil || s.rules == nil {
		return BlockedDayRule{}, fmt.Errorf("blocked-day repository not configured")
	}
	record, err := s.rules.GetRule(ctx, id)
	if err != nil {
		return BlockedDayRule{}, mapRepoError(err)
	}
	return ruleFromRecord(record), nil
}

// ListRules returns all stored rules.
func (s *BlockedDayService) ListRules(ctx context.Context) ([]BlockedDayRule, error) {
	if s == nil || s.rules == nil {
		return nil, fmt.Errorf("blocked-day repository not configured")
	}
	records, err := s.rules.ListRules(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	rules := make([]BlockedDayRule, 0, len(records))
	for _, record := range records {
		rules = append(rules, ruleFromRecord(record))
	}
	return rules, nil
}

// DeleteRule removes a rule. Existing sessions are never touched; the rule
// simply stops contributing blocked windows.
func (s *BlockedDayService) DeleteRule(ctx context.Context, id string) error {
	if s == nil || s.rules == nil {
		return fmt.Errorf("blocked-day repository not configured")
	}
	logger := serviceLogger(ctx, s.logger, "blocked_days", "delete", "rule_id", id)

	if err := s.rules.DeleteRule(ctx, id); err != nil {
		return mapRepoError(err)
	}
	logger.InfoContext(ctx, "blocked-day rule deleted")
	return nil
}

// EffectiveBlocks expands every stored rule over the inclusive date range
// and returns the merged, chronologically sorted blocked windows.
func (s *BlockedDayService) EffectiveBlocks(ctx context.Context, fromDate, toDate string) ([]blockeddays.EffectiveBlock, error) {
	if s == nil || s.rules == nil {
		return nil, fmt.Errorf("blocked-day repository not configured")
	}

	from, err := time.ParseInLocation(dateLayout, fromDate, s.location)
	if err != nil {
		vErr := &ValidationError{}
		vErr.add("from", "from must be formatted YYYY-MM-DD")
		return nil, vErr
	}
	to, err := time.ParseInLocation(dateLayout, toDate, s.location)
	if err != nil {
		vErr := &ValidationError{}
		vErr.add("to", "to must be formatted YYYY-MM-DD")
		return nil, vErr
	}
	if to.Before(from) {
		vErr := &ValidationError{}
		vErr.add("to", "to must not be before from")
		return nil, vErr
	}

	records, err := s.rules.ListRules(ctx)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	rules := make([]blockeddays.Rule, 0, len(records))
	for _, record := range records {
		rules = append(rules, toExpanderRule(ruleFromRecord(record)))
	}
	return s.expander.EffectiveBlocks(rules, from, to), nil
}

func (s *BlockedDayService) validateRuleInput(input BlockedDayRuleInput, vErr *ValidationError) {
	if input.Recurring {
		if input.Nth < 1 || input.Nth > 5 {
			vErr.add("nth", "nth must be between 1 and 5")
		}
		if input.Weekday < time.Sunday || input.Weekday > time.Saturday {
			vErr.add("weekday", "weekday must be between Sunday and Saturday")
		}
		for _, month := range input.ExcludeMonths {
			if month < time.January || month > time.December {
				vErr.add("exclude_months", "months must be between 1 and 12")
				break
			}
		}
	} else {
		if input.StartDate == "" {
			vErr.add("start_date", "start date is required")
		} else if _, err := time.ParseInLocation(dateLayout, input.StartDate, s.location); err != nil {
			vErr.add("start_date", "start date must be formatted YYYY-MM-DD")
		}
		if input.EndDate != "" {
			end, err := time.ParseInLocation(dateLayout, input.EndDate, s.location)
			if err != nil {
				vErr.add("end_date", "end date must be formatted YYYY-MM-DD")
			} else if start, startErr := time.ParseInLocation(dateLayout, input.StartDate, s.location); startErr == nil && end.Before(start) {
				vErr.add("end_date", "end date must not be before start date")
			}
		}
	}

	validateRuleTime(vErr, "start_time", input.StartTime)
	validateRuleTime(vErr, "end_time", input.EndTime)
	if input.StartTime != "" && input.EndTime != "" && input.EndTime <= input.StartTime {
		vErr.add("end_time", "end time must be after start time")
	}
}

func validateRuleTime(vErr *ValidationError, field, value string) {
	if value == "" {
		return
	}
	if _, err := time.Parse("15:04", value); err != nil {
		vErr.add(field, "time must be formatted HH:MM")
	}
}

func normalizeRuleInput(input BlockedDayRuleInput) BlockedDayRuleInput {
	input.StartDate = strings.TrimSpace(input.StartDate)
	input.EndDate = strings.TrimSpace(input.EndDate)
	input.StartTime = strings.TrimSpace(input.StartTime)
	input.EndTime = strings.TrimSpace(input.EndTime)
	input.Reason = strings.TrimSpace(input.Reason)
	return input
}
