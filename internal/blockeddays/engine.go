// Package blockeddays expands admin-defined blocked-day rules into concrete
// time intervals that the scheduling flows exclude from booking.
package blockeddays

import (
	"sort"
	"time"
)

const dateLayout = "2006-01-02"

// Recurrence describes a monthly nth-weekday rule, e.g. the first Monday of
// every month. Months listed in ExcludeMonths produce no occurrence.
type Recurrence struct {
	Nth           int
	Weekday       time.Weekday
	ExcludeMonths []time.Month
}

// Rule is a stored blocked-day definition: either a literal date range
// (StartDate through EndDate, default a single day) or a monthly recurrence.
// StartTime and EndTime optionally narrow each blocked day to a sub-window;
// when absent the whole day is blocked. When Recurrence is set, the day-level
// StartDate/EndDate values are ignored and the caller's query range supplies
// the bounds. Rules are created and removed, never mutated.
type Rule struct {
	ID         string
	StartDate  string
	EndDate    string
	StartTime  string
	EndTime    string
	Recurrence *Recurrence
	Reason     string
}

// EffectiveBlock is one concrete blocked interval produced by expansion.
type EffectiveBlock struct {
	Start time.Time
	End   time.Time
}

// Engine expands blocked-day rules against query ranges. All expansion is
// done in the engine's location using naive local wall-clock arithmetic.
type Engine struct {
	location *time.Location
}

// NewEngine constructs an Engine that expands rules in the provided location.
// If loc is nil, the process-local timezone is used.
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{location: loc}
}

// EffectiveBlocks expands every rule against the inclusive day range
// [from, to] and returns the union of the resulting intervals, ordered by
// start time. The rules are never mutated; repeated calls with the same
// inputs yield the same output.
func (e *Engine) EffectiveBlocks(rules []Rule, from, to time.Time) []EffectiveBlock {
	loc := e.location
	if loc == nil {
		loc = time.Local
	}

	rangeStart := startOfDay(from.In(loc))
	rangeEnd := startOfDay(to.In(loc))
	if rangeEnd.Before(rangeStart) {
		return nil
	}

	blocks := make([]EffectiveBlock, 0)
	for _, rule := range rules {
		if rule.Recurrence != nil {
			blocks = append(blocks, expandRecurring(rule, rangeStart, rangeEnd, loc)...)
			continue
		}
		blocks = append(blocks, expandLiteral(rule, rangeStart, rangeEnd, loc)...)
	}

	sort.Slice(blocks, func(i, j int) bool {
		if blocks[i].Start.Equal(blocks[j].Start) {
			return blocks[i].End.Before(blocks[j].End)
		}
		return blocks[i].Start.Before(blocks[j].Start)
	})

	return blocks
}

// IsBlocked reports whether the candidate window [start, end) intersects any
// of the expanded blocks.
func IsBlocked(start, end time.Time, blocks []EffectiveBlock) bool {
	for _, block := range blocks {
		if start.Before(block.End) && block.Start.Before(end) {
			return true
		}
	}
	return false
}

func expandLiteral(rule Rule, rangeStart, rangeEnd time.Time, loc *time.Location) []EffectiveBlock {
	first, err := time.ParseInLocation(dateLayout, rule.StartDate, loc)
	if err != nil {
		return nil
	}
	last := first
	if rule.EndDate != "" {
		parsed, err := time.ParseInLocation(dateLayout, rule.EndDate, loc)
		if err != nil {
			return nil
		}
		last = parsed
	}

	blocks := make([]EffectiveBlock, 0)
	// Step by calendar day, not 24h: DST transitions must not skip or repeat
	// a date.
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		if day.Before(rangeStart) || day.After(rangeEnd) {
			continue
		}
		blocks = append(blocks, blockForDay(day, rule.StartTime, rule.EndTime, loc))
	}
	return blocks
}

func expandRecurring(rule Rule, rangeStart, rangeEnd time.Time, loc *time.Location) []EffectiveBlock {
	rec := rule.Recurrence

	excluded := make(map[time.Month]struct{}, len(rec.ExcludeMonths))
	for _, month := range rec.ExcludeMonths {
		excluded[month] = struct{}{}
	}

	blocks := make([]EffectiveBlock, 0)
	for month := firstOfMonth(rangeStart); !month.After(rangeEnd); month = month.AddDate(0, 1, 0) {
		if _, skip := excluded[month.Month()]; skip {
			continue
		}
		day, ok := nthWeekdayOfMonth(month.Year(), month.Month(), rec.Nth, rec.Weekday, loc)
		if !ok {
			continue
		}
		if day.Before(rangeStart) || day.After(rangeEnd) {
			continue
		}
		blocks = append(blocks, blockForDay(day, rule.StartTime, rule.EndTime, loc))
	}
	return blocks
}

// nthWeekdayOfMonth computes the nth occurrence of the weekday within the
// month. The second return value is false when the month has no such
// occurrence; the date never wraps into the following month.
func nthWeekdayOfMonth(year int, month time.Month, nth int, weekday time.Weekday, loc *time.Location) (time.Time, bool) {
	if nth < 1 {
		return time.Time{}, false
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	candidate := first.AddDate(0, 0, offset+(nth-1)*7)
	if candidate.Month() != month {
		return time.Time{}, false
	}
	return candidate, true
}

func blockForDay(day time.Time, startTime, endTime string, loc *time.Location) EffectiveBlock {
	if startTime == "" {
		startTime = "00:00"
	}
	if endTime == "" {
		endTime = "23:59"
	}
	return EffectiveBlock{
		Start: atTimeOfDay(day, startTime, loc),
		End:   atTimeOfDay(day, endTime, loc),
	}
}

func atTimeOfDay(day time.Time, hhmm string, loc *time.Location) time.Time {
	parsed, err := time.Parse("15:04", hhmm)
	if err != nil {
		return startOfDay(day)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), parsed.Hour(), parsed.Minute(), 0, 0, loc)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
