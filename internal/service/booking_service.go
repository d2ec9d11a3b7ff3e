package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tutorhub/internal/database"
	"tutorhub/internal/domain"
	"tutorhub/internal/events"
	"tutorhub/internal/metrics"
	"tutorhub/internal/models"

	"github.com/rs/zerolog"
)

// BookingInput carries the fields of a booking create request.
type BookingInput struct {
	TutorID     int64
	StudentID   int64
	StartTime   time.Time
	EndTime     time.Time
	CourseID    int64
	MeetingLink string
	Notes       string
}

type BookingService struct {
	store     domain.BookingStore
	directory domain.Directory
	cache     domain.AvailabilityCache
	eventBus  *events.EventBus
	locks     *tutorLocks
	logger    *zerolog.Logger
}

func NewBookingService(store domain.BookingStore, directory domain.Directory, cache domain.AvailabilityCache, eventBus *events.EventBus, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		store:     store,
		directory: directory,
		cache:     cache,
		eventBus:  eventBus,
		locks:     newTutorLocks(),
		logger:    logger,
	}
}

// CreateBooking validates the request and inserts the booking in pending
// state. The conflict check runs inside the storage transaction; the
// per-tutor lock on top closes the check-then-act window between concurrent
// requests for the same tutor.
func (s *BookingService) CreateBooking(ctx context.Context, in BookingInput) (*models.BookingDetail, error) {
	if in.CourseID == 0 {
		return nil, fmt.Errorf("%w: course_id is required", database.ErrValidation)
	}
	if in.TutorID == 0 || in.StudentID == 0 {
		return nil, fmt.Errorf("%w: tutor_id and student_id are required", database.ErrValidation)
	}
	if !in.StartTime.Before(in.EndTime) {
		return nil, fmt.Errorf("%w: start time is not before end time", database.ErrInvalidRange)
	}

	booking := &models.Booking{
		TutorID:     in.TutorID,
		StudentID:   in.StudentID,
		StartTime:   in.StartTime.UTC(),
		EndTime:     in.EndTime.UTC(),
		CourseID:    in.CourseID,
		MeetingLink: in.MeetingLink,
		Notes:       in.Notes,
		Status:      models.StatusPending,
	}

	lock := s.locks.lock(in.TutorID)
	defer lock.Unlock()

	if err := s.store.CreateBooking(ctx, booking); err != nil {
		if errors.Is(err, database.ErrBookingConflict) {
			metrics.IncBookingConflict()
		}
		return nil, err
	}

	metrics.IncBookingCreated()
	s.invalidate(ctx, in.TutorID)
	s.publishEvent(events.EventBookingCreated, booking, 0)

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("tutor_id", booking.TutorID).
		Int64("student_id", booking.StudentID).
		Time("start_time", booking.StartTime).
		Msg("booking created")

	return s.enrichOne(ctx, booking)
}

func (s *BookingService) GetByStudent(ctx context.Context, studentID int64) ([]models.BookingDetail, error) {
	bookings, err := s.store.BookingsByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, bookings)
}

func (s *BookingService) GetByTutor(ctx context.Context, tutorID int64) ([]models.BookingDetail, error) {
	bookings, err := s.store.BookingsByTutor(ctx, tutorID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, bookings)
}

func (s *BookingService) Search(ctx context.Context, filter models.BookingFilter) ([]models.BookingDetail, error) {
	bookings, err := s.store.SearchBookings(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, bookings)
}

// UpdateStatus sets a booking's status on behalf of the owning tutor. Any
// valid status is accepted from any current status; departures from the
// documented lifecycle are logged, not rejected.
func (s *BookingService) UpdateStatus(ctx context.Context, bookingID int64, rawStatus string, actingTutorID int64) (*models.BookingDetail, error) {
	status, err := models.ParseBookingStatus(rawStatus)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", database.ErrValidation, err)
	}

	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.TutorID != actingTutorID {
		return nil, fmt.Errorf("%w: booking %d belongs to another tutor", database.ErrForbidden, bookingID)
	}

	if !booking.Status.CanTransition(status) {
		s.logger.Warn().
			Int64("booking_id", bookingID).
			Str("from", string(booking.Status)).
			Str("to", string(status)).
			Msg("booking status change outside documented lifecycle")
	}

	updated, err := s.store.UpdateBookingStatus(ctx, bookingID, status)
	if err != nil {
		return nil, err
	}

	metrics.IncStatusChange(string(status))
	s.invalidate(ctx, updated.TutorID)
	s.publishEvent(eventForStatus(status), updated, actingTutorID)

	return s.enrichOne(ctx, updated)
}

// TutorBookingsBetween returns a tutor's enriched bookings of every status
// starting inside [from, to). Backs report exports.
func (s *BookingService) TutorBookingsBetween(ctx context.Context, tutorID int64, from, to time.Time) ([]models.BookingDetail, error) {
	exists, err := s.directory.TutorExists(ctx, tutorID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: tutor %d", database.ErrNotFound, tutorID)
	}

	bookings, err := s.store.BookingsByTutorBetween(ctx, tutorID, from, to)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, bookings)
}

func eventForStatus(status models.BookingStatus) string {
	switch status {
	case models.StatusConfirmed:
		return events.EventBookingConfirmed
	case models.StatusCancelled:
		return events.EventBookingCancelled
	case models.StatusCompleted:
		return events.EventBookingCompleted
	default:
		return events.EventBookingCreated
	}
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, changedBy int64) {
	payload := events.BookingEventPayload{
		BookingID:   booking.ID,
		TutorID:     booking.TutorID,
		StudentID:   booking.StudentID,
		CourseID:    booking.CourseID,
		Status:      string(booking.Status),
		StartTime:   booking.StartTime,
		EndTime:     booking.EndTime,
		ChangedByID: changedBy,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("failed to publish booking event")
	}
}

func (s *BookingService) invalidate(ctx context.Context, tutorID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateTutor(ctx, tutorID); err != nil {
		s.logger.Warn().Err(err).Int64("tutor_id", tutorID).Msg("availability cache invalidation failed")
	}
}

func (s *BookingService) enrichOne(ctx context.Context, booking *models.Booking) (*models.BookingDetail, error) {
	details, err := s.enrich(ctx, []models.Booking{*booking})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// enrich attaches tutor/student display names and course titles via batch
// lookups. Records missing from the directory degrade to empty strings.
func (s *BookingService) enrich(ctx context.Context, bookings []models.Booking) ([]models.BookingDetail, error) {
	details := make([]models.BookingDetail, 0, len(bookings))
	if len(bookings) == 0 {
		return details, nil
	}

	tutorSet := make(map[int64]struct{})
	courseSet := make(map[int64]struct{})
	for _, b := range bookings {
		tutorSet[b.TutorID] = struct{}{}
		courseSet[b.CourseID] = struct{}{}
	}

	tutorUsers, err := s.directory.TutorUserIDs(ctx, keys(tutorSet))
	if err != nil {
		return nil, err
	}

	userSet := make(map[int64]struct{})
	for _, b := range bookings {
		userSet[b.StudentID] = struct{}{}
	}
	for _, userID := range tutorUsers {
		userSet[userID] = struct{}{}
	}

	names, err := s.directory.UserNames(ctx, keys(userSet))
	if err != nil {
		return nil, err
	}
	titles, err := s.directory.CourseTitles(ctx, keys(courseSet))
	if err != nil {
		return nil, err
	}

	for _, b := range bookings {
		details = append(details, models.BookingDetail{
			Booking:     b,
			TutorName:   names[tutorUsers[b.TutorID]],
			StudentName: names[b.StudentID],
			CourseTitle: titles[b.CourseID],
		})
	}
	return details, nil
}

func keys(set map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
