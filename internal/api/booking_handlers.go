package api

import (
	"net/http"
	"strconv"
	"time"

	"tutorhub/internal/models"
	"tutorhub/internal/service"

	"github.com/labstack/echo/v4"
)

type createBookingRequest struct {
	TutorID     int64     `json:"tutor_id"`
	StudentID   int64     `json:"student_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	CourseID    int64     `json:"course_id"`
	MeetingLink string    `json:"meeting_link"`
	Notes       string    `json:"notes"`
}

type updateStatusRequest struct {
	Status  string `json:"status"`
	TutorID int64  `json:"tutor_id"`
}

func (s *Server) createBooking(c echo.Context) error {
	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	detail, err := s.bookings.CreateBooking(c.Request().Context(), service.BookingInput{
		TutorID:     req.TutorID,
		StudentID:   req.StudentID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		CourseID:    req.CourseID,
		MeetingLink: req.MeetingLink,
		Notes:       req.Notes,
	})
	if err != nil {
		return writeError(c, s.logger, err)
	}
	return c.JSON(http.StatusCreated, detail)
}

func (s *Server) bookingsByStudent(c echo.Context) error {
	studentID, ok := parseID(c, "student_id")
	if !ok {
		return badRequest(c, "invalid student_id")
	}

	details, err := s.bookings.GetByStudent(c.Request().Context(), studentID)
	if err != nil {
		return writeError(c, s.logger, err)
	}
	return c.JSON(http.StatusOK, details)
}

func (s *Server) bookingsByTutor(c echo.Context) error {
	tutorID, ok := parseID(c, "tutor_id")
	if !ok {
		return badRequest(c, "invalid tutor_id")
	}

	details, err := s.bookings.GetByTutor(c.Request().Context(), tutorID)
	if err != nil {
		return writeError(c, s.logger, err)
	}
	return c.JSON(http.StatusOK, details)
}

func (s *Server) searchBookings(c echo.Context) error {
	var filter models.BookingFilter

	if raw := c.QueryParam("student_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return badRequest(c, "invalid student_id")
		}
		filter.StudentID = &id
	}
	if raw := c.QueryParam("tutor_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return badRequest(c, "invalid tutor_id")
		}
		filter.TutorID = &id
	}
	if raw := c.QueryParam("status"); raw != "" {
		status, err := models.ParseBookingStatus(raw)
		if err != nil {
			return badRequest(c, err.Error())
		}
		filter.Status = &status
	}

	details, err := s.bookings.Search(c.Request().Context(), filter)
	if err != nil {
		return writeError(c, s.logger, err)
	}
	return c.JSON(http.StatusOK, details)
}

func (s *Server) updateBookingStatus(c echo.Context) error {
	bookingID, ok := parseID(c, "booking_id")
	if !ok {
		return badRequest(c, "invalid booking_id")
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.TutorID == 0 {
		return badRequest(c, "tutor_id is required")
	}

	detail, err := s.bookings.UpdateStatus(c.Request().Context(), bookingID, req.Status, req.TutorID)
	if err != nil {
		return writeError(c, s.logger, err)
	}
	return c.JSON(http.StatusOK, detail)
}
