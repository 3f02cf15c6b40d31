// Package timeutil implements wall-clock minute arithmetic over "HH:MM"
// strings and discretized slot option generation for the scheduling core.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
)

// ToMinutes converts an "HH:MM" string to minutes since midnight.
//
// No bounds validation is performed: malformed input yields whatever the
// numeric parse produces. Callers validate alignment and range separately.
func ToMinutes(hhmm string) int {
	hh, mm, _ := strings.Cut(hhmm, ":")
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	return h*60 + m
}

// ToHHMM converts minutes since midnight to a zero-padded "HH:MM" string.
// It is the exact inverse of ToMinutes for the domain 0..1439.
func ToHHMM(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Duration returns the signed length in minutes of the window [start, end).
// The result is negative when end precedes start; rejecting that is the
// caller's responsibility.
func Duration(start, end string) int {
	return ToMinutes(end) - ToMinutes(start)
}

// StartOptions enumerates every increment-aligned start time within business
// hours that still leaves room for a session of at least minDuration minutes
// before businessEnd. The sequence is ascending and deterministic.
func StartOptions(businessStart, businessEnd string, increment, minDuration int) []string {
	if increment <= 0 {
		return nil
	}

	first := ToMinutes(businessStart)
	last := ToMinutes(businessEnd) - minDuration

	options := make([]string, 0)
	for m := first; m <= last; m += increment {
		options = append(options, ToHHMM(m))
	}
	return options
}

// EndOptions enumerates every increment-aligned end time for a session
// anchored at the given start time, bounded below by the minimum duration and
// above by both the maximum duration and businessEnd.
func EndOptions(anchor, businessEnd string, increment, minDuration, maxDuration int) []string {
	if increment <= 0 {
		return nil
	}

	start := ToMinutes(anchor)
	first := start + minDuration
	last := start + maxDuration
	if boundary := ToMinutes(businessEnd); boundary < last {
		last = boundary
	}

	options := make([]string, 0)
	for m := first; m <= last; m += increment {
		options = append(options, ToHHMM(m))
	}
	return options
}
