package models

import "time"

// AvailabilityTemplate is a recurring weekly availability window declared by
// a tutor: a weekday plus a clock-time range, active during an optional
// validity window. Weekday follows the platform convention 0=Sunday.
type AvailabilityTemplate struct {
	ID           int64     `json:"slot_id"`
	TutorID      int64     `json:"tutor_id"`
	Weekday      int       `json:"weekday"`
	StartTime    TimeOfDay `json:"start_time"`
	EndTime      TimeOfDay `json:"end_time"`
	LocationMode string    `json:"location_mode"`
	LocationNote string    `json:"location_note,omitempty"`
	ValidFrom    *Date     `json:"valid_from"`
	ValidUntil   *Date     `json:"valid_until"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ActiveOn reports whether the template's validity window contains the date.
// A nil bound is unbounded on that side.
func (t *AvailabilityTemplate) ActiveOn(day Date) bool {
	if t.ValidFrom != nil && day.Before(*t.ValidFrom) {
		return false
	}
	if t.ValidUntil != nil && day.After(*t.ValidUntil) {
		return false
	}
	return true
}

// Duration presets for resolving a template's valid_until from its start
// date. "forever" maps to no expiry.
const (
	DurationWeek     = "week"
	DurationMonth    = "month"
	DurationSemester = "semester"
	DurationForever  = "forever"
)

// DurationDays maps a preset to its length in days. Presets absent from the
// map (and "forever") yield no expiry.
var DurationDays = map[string]int{
	DurationWeek:     7,
	DurationMonth:    28,
	DurationSemester: 112,
}

// DefaultDuration applies when a template is created without an explicit
// valid_until or duration preset.
const DefaultDuration = DurationSemester

// TimeSlot is a derived, fixed-length bookable window for one concrete date.
// Slots are computed fresh per query and carry no identity.
type TimeSlot struct {
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	IsAvailable bool      `json:"is_available"`
}

// SlotDuration is the fixed length of generated booking slots.
const SlotDuration = time.Hour
