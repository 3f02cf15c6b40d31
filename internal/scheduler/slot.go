package scheduler

import (
	"fmt"

	"github.com/example/center-roster/internal/timeutil"
)

// SlotOptions bounds time-slot validation. Durations and the increment are in
// minutes; BusinessStart and BusinessEnd are "HH:MM" wall-clock bounds.
type SlotOptions struct {
	Increment     int
	MinDuration   int
	MaxDuration   int
	BusinessStart string
	BusinessEnd   string
}

// DefaultSlotOptions returns the standard booking constraints: 15-minute
// alignment, 30-minute minimum, 2-hour maximum, 10:00-19:00 business hours.
// One legacy intake flow overrides MinDuration to 60.
func DefaultSlotOptions() SlotOptions {
	return SlotOptions{
		Increment:     15,
		MinDuration:   30,
		MaxDuration:   120,
		BusinessStart: "10:00",
		BusinessEnd:   "19:00",
	}
}

// SlotError reports why a proposed time slot was rejected. It is surfaced
// inline next to the offending form field, never used for control flow beyond
// the immediate caller.
type SlotError struct {
	Message string
}

// Error implements the error interface.
func (e *SlotError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// ValidateSlot checks a proposed [start, end) window against the slot
// constraints. Checks run in a fixed order and the first failure wins: both
// times present, both increment-aligned, positive duration, duration within
// [MinDuration, MaxDuration], window inside business hours. A nil return
// means the slot is acceptable.
//
// Blocked-window rejection is a separate concern (see blockeddays.IsBlocked):
// not every call site has blocked-day context available.
func ValidateSlot(start, end string, opts SlotOptions) error {
	if opts.Increment <= 0 {
		opts = DefaultSlotOptions()
	}

	if start == "" || end == "" {
		return &SlotError{Message: "start and end times are required"}
	}
	if timeutil.ToMinutes(start)%opts.Increment != 0 {
		return &SlotError{Message: fmt.Sprintf("start time must be aligned to %d minutes", opts.Increment)}
	}
	if timeutil.ToMinutes(end)%opts.Increment != 0 {
		return &SlotError{Message: fmt.Sprintf("end time must be aligned to %d minutes", opts.Increment)}
	}

	duration := timeutil.Duration(start, end)
	if duration <= 0 {
		return &SlotError{Message: "end time must be after start time"}
	}
	if duration < opts.MinDuration {
		return &SlotError{Message: fmt.Sprintf("sessions must be at least %d minutes", opts.MinDuration)}
	}
	if duration > opts.MaxDuration {
		return &SlotError{Message: fmt.Sprintf("sessions must be at most %d minutes", opts.MaxDuration)}
	}

	if opts.BusinessStart != "" && opts.BusinessEnd != "" {
		if timeutil.ToMinutes(start) < timeutil.ToMinutes(opts.BusinessStart) ||
			timeutil.ToMinutes(end) > timeutil.ToMinutes(opts.BusinessEnd) {
			return &SlotError{Message: fmt.Sprintf(
				"sessions must fall within business hours (%s-%s)",
				opts.BusinessStart, opts.BusinessEnd)}
		}
	}

	return nil
}

// StartTimes enumerates the permitted start times under the slot options, and
// EndTimes the permitted end times for a session anchored at the given start.
// The UI populates its time selectors from these, so a value absent here is
// also a value ValidateSlot rejects.
func StartTimes(opts SlotOptions) []string {
	if opts.Increment <= 0 {
		opts = DefaultSlotOptions()
	}
	return timeutil.StartOptions(opts.BusinessStart, opts.BusinessEnd, opts.Increment, opts.MinDuration)
}

// EndTimes enumerates the permitted end times for a session starting at anchor.
func EndTimes(anchor string, opts SlotOptions) []string {
	if opts.Increment <= 0 {
		opts = DefaultSlotOptions()
	}
	return timeutil.EndOptions(anchor, opts.BusinessEnd, opts.Increment, opts.MinDuration, opts.MaxDuration)
}
