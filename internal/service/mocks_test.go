package service

import (
	"context"
	"time"

	"tutorhub/internal/models"

	"github.com/stretchr/testify/mock"
)

type mockScheduleStore struct {
	mock.Mock
}

func (m *mockScheduleStore) CreateTemplate(ctx context.Context, tpl *models.AvailabilityTemplate) error {
	return m.Called(ctx, tpl).Error(0)
}
func (m *mockScheduleStore) UpdateTemplate(ctx context.Context, tpl *models.AvailabilityTemplate) error {
	return m.Called(ctx, tpl).Error(0)
}
func (m *mockScheduleStore) DeleteTemplate(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockScheduleStore) GetTemplate(ctx context.Context, id int64) (*models.AvailabilityTemplate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AvailabilityTemplate), args.Error(1)
}
func (m *mockScheduleStore) ListTemplates(ctx context.Context, tutorID int64) ([]models.AvailabilityTemplate, error) {
	args := m.Called(ctx, tutorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AvailabilityTemplate), args.Error(1)
}
func (m *mockScheduleStore) ActiveTemplates(ctx context.Context, tutorID int64, weekday int, day models.Date) ([]models.AvailabilityTemplate, error) {
	args := m.Called(ctx, tutorID, weekday, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AvailabilityTemplate), args.Error(1)
}

type mockBookingStore struct {
	mock.Mock
}

func (m *mockBookingStore) CreateBooking(ctx context.Context, booking *models.Booking) error {
	return m.Called(ctx, booking).Error(0)
}
func (m *mockBookingStore) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockBookingStore) BookingsByStudent(ctx context.Context, studentID int64) ([]models.Booking, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}
func (m *mockBookingStore) BookingsByTutor(ctx context.Context, tutorID int64) ([]models.Booking, error) {
	args := m.Called(ctx, tutorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}
func (m *mockBookingStore) SearchBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}
func (m *mockBookingStore) UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) (*models.Booking, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockBookingStore) ActiveBookingsOn(ctx context.Context, tutorID int64, day models.Date) ([]models.Booking, error) {
	args := m.Called(ctx, tutorID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}
func (m *mockBookingStore) ActiveBookingsBetween(ctx context.Context, tutorID int64, from, to time.Time) ([]models.Booking, error) {
	args := m.Called(ctx, tutorID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}
func (m *mockBookingStore) BookingsByTutorBetween(ctx context.Context, tutorID int64, from, to time.Time) ([]models.Booking, error) {
	args := m.Called(ctx, tutorID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

type mockDirectory struct {
	mock.Mock
}

func (m *mockDirectory) UserNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]string), args.Error(1)
}
func (m *mockDirectory) TutorUserIDs(ctx context.Context, tutorIDs []int64) (map[int64]int64, error) {
	args := m.Called(ctx, tutorIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]int64), args.Error(1)
}
func (m *mockDirectory) CourseTitles(ctx context.Context, ids []int64) (map[int64]string, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]string), args.Error(1)
}
func (m *mockDirectory) TutorExists(ctx context.Context, tutorID int64) (bool, error) {
	args := m.Called(ctx, tutorID)
	return args.Bool(0), args.Error(1)
}
