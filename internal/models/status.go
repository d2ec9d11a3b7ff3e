package models

import "fmt"

// BookingStatus is the closed set of booking lifecycle states.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

// ParseBookingStatus validates a raw status value. Unknown values are a
// construction-time error, not something to compare strings against later.
func ParseBookingStatus(raw string) (BookingStatus, error) {
	switch BookingStatus(raw) {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return BookingStatus(raw), nil
	}
	return "", fmt.Errorf("invalid booking status %q (must be one of: pending, confirmed, cancelled, completed)", raw)
}

// Active reports whether a booking in this status occupies its time slot.
// Only cancelled bookings release the slot.
func (s BookingStatus) Active() bool {
	return s != StatusCancelled
}

// documented lifecycle: pending -> confirmed | cancelled,
// confirmed -> completed | cancelled; completed and cancelled are terminal.
var statusTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether moving from s to next follows the documented
// lifecycle graph. Status updates are not rejected on this basis; callers use
// it to flag unusual transitions.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
