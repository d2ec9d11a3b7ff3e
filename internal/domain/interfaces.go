package domain

import (
	"context"
	"time"

	"tutorhub/internal/models"
)

// ScheduleStore persists recurring availability templates.
type ScheduleStore interface {
	CreateTemplate(ctx context.Context, tpl *models.AvailabilityTemplate) error
	UpdateTemplate(ctx context.Context, tpl *models.AvailabilityTemplate) error
	DeleteTemplate(ctx context.Context, id int64) error
	GetTemplate(ctx context.Context, id int64) (*models.AvailabilityTemplate, error)
	ListTemplates(ctx context.Context, tutorID int64) ([]models.AvailabilityTemplate, error)
	ActiveTemplates(ctx context.Context, tutorID int64, weekday int, day models.Date) ([]models.AvailabilityTemplate, error)
}

// BookingStore persists bookings. CreateBooking must be atomic: the conflict
// check and the insert happen in one transaction.
type BookingStore interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	BookingsByStudent(ctx context.Context, studentID int64) ([]models.Booking, error)
	BookingsByTutor(ctx context.Context, tutorID int64) ([]models.Booking, error)
	SearchBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) (*models.Booking, error)
	ActiveBookingsOn(ctx context.Context, tutorID int64, day models.Date) ([]models.Booking, error)
	ActiveBookingsBetween(ctx context.Context, tutorID int64, from, to time.Time) ([]models.Booking, error)
	BookingsByTutorBetween(ctx context.Context, tutorID int64, from, to time.Time) ([]models.Booking, error)
}

// Directory resolves display names for bookings and validates tutor ids.
type Directory interface {
	UserNames(ctx context.Context, ids []int64) (map[int64]string, error)
	TutorUserIDs(ctx context.Context, tutorIDs []int64) (map[int64]int64, error)
	CourseTitles(ctx context.Context, ids []int64) (map[int64]string, error)
	TutorExists(ctx context.Context, tutorID int64) (bool, error)
}

// AvailabilityCache caches computed free slots per tutor and day. Entries are
// stored under a per-tutor version; GetDay reports the version it observed and
// SetDay must receive that same version back. A write raced by an intervening
// InvalidateTutor then lands under a dead version instead of resurrecting
// stale data. Implementations must treat a miss as ok=false, not an error.
type AvailabilityCache interface {
	GetDay(ctx context.Context, tutorID int64, day models.Date) (slots []models.TimeSlot, version int64, ok bool, err error)
	SetDay(ctx context.Context, tutorID int64, day models.Date, version int64, slots []models.TimeSlot) error
	InvalidateTutor(ctx context.Context, tutorID int64) error
}
