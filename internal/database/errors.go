package database

import "errors"

// Sentinel errors shared across the storage and service layers. The API
// boundary maps them to HTTP status codes with errors.Is; everything else
// wraps them with context via fmt.Errorf("...: %w", ...).
var (
	ErrNotFound        = errors.New("resource not found")
	ErrForbidden       = errors.New("acting party does not own the resource")
	ErrValidation      = errors.New("validation failed")
	ErrInvalidRange    = errors.New("start time must be before end time")
	ErrSlotOverlap     = errors.New("availability slot overlaps an existing slot")
	ErrBookingConflict = errors.New("time slot is already booked")
)
