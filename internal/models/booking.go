package models

import "time"

// Booking is a scheduled session between a student and a tutor at a concrete
// date-time interval. Bookings are never physically deleted; cancellation is
// a status change.
type Booking struct {
	ID          int64         `json:"booking_id"`
	TutorID     int64         `json:"tutor_id"`
	StudentID   int64         `json:"student_id"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	CourseID    int64         `json:"course_id"`
	MeetingLink string        `json:"meeting_link,omitempty"`
	Notes       string        `json:"notes,omitempty"`
	Status      BookingStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// BookingDetail is a booking enriched with display names resolved through
// the read-only user and course collaborators. Missing lookups leave the
// fields empty rather than failing the query.
type BookingDetail struct {
	Booking
	TutorName   string `json:"tutor_name,omitempty"`
	StudentName string `json:"student_name,omitempty"`
	CourseTitle string `json:"course_title,omitempty"`
}

// BookingFilter narrows a booking search. Nil fields are not applied;
// non-nil filters combine with AND.
type BookingFilter struct {
	StudentID *int64
	TutorID   *int64
	Status    *BookingStatus
}
