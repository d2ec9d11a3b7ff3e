// Package schedule holds the pure temporal arithmetic behind availability
// templates and slot generation: no storage, no clocks, deterministic output.
package schedule

import (
	"time"

	"tutorhub/internal/models"
)

// ClockRangesOverlap applies the half-open interval test to two time-of-day
// ranges: they overlap when each starts before the other ends.
func ClockRangesOverlap(aStart, aEnd, bStart, bEnd models.TimeOfDay) bool {
	return aStart < bEnd && aEnd > bStart
}

// Overlaps applies the same half-open test to absolute intervals.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// WindowsCoexist reports whether two validity windows share at least one
// date. A nil bound is unbounded on that side, so the windows are disjoint
// only when one provably ends strictly before the other begins.
func WindowsCoexist(aFrom, aUntil, bFrom, bUntil *models.Date) bool {
	if aUntil != nil && bFrom != nil && aUntil.Before(*bFrom) {
		return false
	}
	if aFrom != nil && bUntil != nil && aFrom.After(*bUntil) {
		return false
	}
	return true
}

// FindConflict returns the first existing template that conflicts with the
// candidate, or nil. A conflict requires both an overlapping time range on
// the same weekday and a coexisting validity window; templates sharing a
// time range but active in disjoint date ranges do not conflict. excludeID
// skips the template being updated (0 excludes nothing).
func FindConflict(candidate *models.AvailabilityTemplate, existing []models.AvailabilityTemplate, excludeID int64) *models.AvailabilityTemplate {
	for i := range existing {
		other := &existing[i]
		if excludeID != 0 && other.ID == excludeID {
			continue
		}
		if other.Weekday != candidate.Weekday {
			continue
		}
		if !ClockRangesOverlap(candidate.StartTime, candidate.EndTime, other.StartTime, other.EndTime) {
			continue
		}
		if WindowsCoexist(candidate.ValidFrom, candidate.ValidUntil, other.ValidFrom, other.ValidUntil) {
			return other
		}
	}
	return nil
}
