// Package deadline provides pure functions for classifying tax obligation
// due dates against a reference day. These functions have ZERO dependencies
// on HTTP or database infrastructure; the current time is always injected
// by the caller.
package deadline

import "time"

// DefaultWindowDays is how far ahead a due date still counts as "upcoming".
const DefaultWindowDays = 30

// Status values for a classified due date.
const (
	StatusOverdue  = "overdue"
	StatusUpcoming = "upcoming"
	StatusIgnored  = "ignored" // beyond the lookahead window
)

// DiffDays returns dueDate minus today in whole days.
// Both inputs are reduced to their calendar date in a single location, so
// the result depends only on the dates, never on the time of day or on the
// zone each value was parsed in.
func DiffDays(today, dueDate time.Time) int {
	t := truncateToDay(today)
	d := truncateToDay(dueDate)
	return int(d.Sub(t).Hours() / 24)
}

// Classify buckets a due date relative to today.
// A negative difference is overdue with severity = days overdue.
// A difference in [0, windowDays] is upcoming (due today counts as upcoming,
// and the window boundary is inclusive). Anything further out is ignored.
// Returns the status and the severity in days for that status.
func Classify(today, dueDate time.Time, windowDays int) (string, int) {
	diff := DiffDays(today, dueDate)
	switch {
	case diff < 0:
		return StatusOverdue, -diff
	case diff <= windowDays:
		return StatusUpcoming, diff
	default:
		return StatusIgnored, diff
	}
}

// truncateToDay rebuilds t as midnight UTC of its calendar date.
// Anchoring every input to one location keeps the subtraction in DiffDays
// a whole number of days even when today and the due date carry
// different zones (the server clock vs parsed YYYY-MM-DD dates).
func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
