package sqlite

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/example/center-roster/internal/persistence"
)

// BlockedDayRepository implements persistence.BlockedDayRuleRepository using
// SQLite. Excluded months are stored as a comma-separated list of month
// numbers; rules carry no update path by design.
type BlockedDayRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewBlockedDayRepository creates a new SQLite blocked-day rule repository.
func NewBlockedDayRepository(pool *ConnectionPool) *BlockedDayRepository {
	return &BlockedDayRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const blockedDayColumns = `id, start_date, end_date, start_time, end_time,
	recurring, nth, weekday, exclude_months, reason, created_at`

// CreateRule inserts a new blocked-day rule.
func (r *BlockedDayRepository) CreateRule(ctx context.Context, rule persistence.BlockedDayRule) error {
	if rule.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.helper.Exec(ctx, `
		INSERT INTO blocked_day_rules (`+blockedDayColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rule.ID,
		nullString(rule.StartDate),
		nullString(rule.EndDate),
		nullString(rule.StartTime),
		nullString(rule.EndTime),
		boolToInt(rule.Recurring),
		rule.Nth,
		rule.Weekday,
		joinMonths(rule.ExcludeMonths),
		nullString(rule.Reason),
		rule.CreatedAt.Format(time.RFC3339),
	)
	return r.mapper.MapError(err)
}

// GetRule retrieves a blocked-day rule by ID.
func (r *BlockedDayRepository) GetRule(ctx context.Context, id string) (persistence.BlockedDayRule, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+blockedDayColumns+` FROM blocked_day_rules WHERE id = ?`, id)
	rule, err := scanBlockedDayRule(row)
	if err != nil {
		return persistence.BlockedDayRule{}, r.mapper.MapError(err)
	}
	return rule, nil
}

// ListRules returns all blocked-day rules ordered by creation time.
func (r *BlockedDayRepository) ListRules(ctx context.Context) ([]persistence.BlockedDayRule, error) {
	rows, err := r.helper.Query(ctx, `SELECT `+blockedDayColumns+` FROM blocked_day_rules ORDER BY created_at, id`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	rules := make([]persistence.BlockedDayRule, 0)
	for rows.Next() {
		rule, err := scanBlockedDayRule(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return rules, nil
}

// DeleteRule removes a blocked-day rule by ID.
func (r *BlockedDayRepository) DeleteRule(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM blocked_day_rules WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return r.mapper.MapError(err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func scanBlockedDayRule(row rowScanner) (persistence.BlockedDayRule, error) {
	var (
		rule               persistence.BlockedDayRule
		startDate, endDate sql.NullString
		startTime, endTime sql.NullString
		recurring          int
		excludeMonths      string
		reason             sql.NullString
		createdAt          string
	)

	err := row.Scan(
		&rule.ID,
		&startDate,
		&endDate,
		&startTime,
		&endTime,
		&recurring,
		&rule.Nth,
		&rule.Weekday,
		&excludeMonths,
		&reason,
		&createdAt,
	)
	if err != nil {
		return persistence.BlockedDayRule{}, err
	}

	rule.StartDate = stringPtr(startDate)
	rule.EndDate = stringPtr(endDate)
	rule.StartTime = stringPtr(startTime)
	rule.EndTime = stringPtr(endTime)
	rule.Recurring = recurring != 0
	rule.ExcludeMonths = splitMonths(excludeMonths)
	rule.Reason = stringPtr(reason)
	rule.CreatedAt = parseTimestamp(createdAt)
	return rule, nil
}

func joinMonths(months []int) string {
	if len(months) == 0 {
		return ""
	}
	parts := make([]string, len(months))
	for i, month := range months {
		parts[i] = strconv.Itoa(month)
	}
	return strings.Join(parts, ",")
}

func splitMonths(value string) []int {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	months := make([]int, 0, len(parts))
	for _, part := range parts {
		month, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		months = append(months, month)
	}
	return months
}
