package scheduler

import "github.com/example/center-roster/internal/timeutil"

// Overlaps reports whether the half-open windows [start1, end1) and
// [start2, end2) intersect. Back-to-back windows (end1 == start2) do not
// overlap.
func Overlaps(start1, end1, start2, end2 string) bool {
	return timeutil.ToMinutes(start1) < timeutil.ToMinutes(end2) &&
		timeutil.ToMinutes(start2) < timeutil.ToMinutes(end1)
}

// AvailableSeats returns, in ascending order, the 1-indexed seats of the
// given type that are free for the proposed window on the given date.
//
// Sessions of a different type or date, cancelled sessions, and the session
// identified by excludeID (the record being edited or dragged) never occupy a
// seat. A conflicting record without a seat assignment is skipped; that state
// should not occur for scheduled sessions but stale data must not panic the
// resolver.
func AvailableSeats(sessionType SessionType, date, start, end string, sessions []Session, seats SeatConfig, excludeID string) []int {
	occupied := occupiedSeats(sessionType, date, start, end, sessions, excludeID)

	capacity := seats[sessionType]
	available := make([]int, 0, capacity)
	for seat := 1; seat <= capacity; seat++ {
		if _, taken := occupied[seat]; !taken {
			available = append(available, seat)
		}
	}
	return available
}

// SeatTaken reports whether one specific seat conflicts with an existing
// session for the proposed window. It applies the same filtering rules as
// AvailableSeats and drives the drag-reschedule conflict preview.
func SeatTaken(sessionType SessionType, date, start, end string, seat int, sessions []Session, excludeID string) bool {
	occupied := occupiedSeats(sessionType, date, start, end, sessions, excludeID)
	_, taken := occupied[seat]
	return taken
}

func occupiedSeats(sessionType SessionType, date, start, end string, sessions []Session, excludeID string) map[int]struct{} {
	occupied := make(map[int]struct{})
	for _, existing := range sessions {
		if existing.Type != sessionType || existing.Date != date {
			continue
		}
		if existing.Status == StatusCancelled {
			continue
		}
		if excludeID != "" && existing.ID == excludeID {
			continue
		}
		if existing.Seat <= 0 {
			continue
		}
		if Overlaps(start, end, existing.StartTime, existing.EndTime) {
			occupied[existing.Seat] = struct{}{}
		}
	}
	return occupied
}
