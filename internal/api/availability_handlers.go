package api

import (
	"net/http"
	"strconv"

	"tutorhub/internal/models"
	"tutorhub/internal/service"

	"github.com/labstack/echo/v4"
)

type templateRequest struct {
	Weekday      *int              `json:"weekday"`
	StartTime    *models.TimeOfDay `json:"start_time"`
	EndTime      *models.TimeOfDay `json:"end_time"`
	LocationMode *string           `json:"location_mode"`
	LocationNote *string           `json:"location_note"`
	ValidFrom    *models.Date      `json:"valid_from"`
	ValidUntil   *models.Date      `json:"valid_until"`
	Duration     string            `json:"duration"`
}

type availabilityResponse struct {
	TutorID int64             `json:"tutor_id"`
	Date    models.Date       `json:"date"`
	Slots   []models.TimeSlot `json:"slots"`
}

type availabilityRangeResponse struct {
	TutorID        int64         `json:"tutor_id"`
	StartDate      models.Date   `json:"start_date"`
	EndDate        models.Date   `json:"end_date"`
	AvailableDates []models.Date `json:"available_dates"`
}

func parseID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (s *Server) getAvailability(c echo.Context) error {
	tutorID, ok := parseID(c, "tutor_id")
	if !ok {
		return badRequest(c, "invalid tutor_id")
	}

	raw := c.QueryParam("date")
	if raw == "" {
		return badRequest(c, "date is required")
	}
	day, err := models.ParseDate(raw)
	if err != nil {
		return badRequest(c, "invalid date format; expected YYYY-MM-DD")
	}

	slots, err := s.availability.GetAvailability(c.Request().Context(), tutorID, day)
	if err != nil {
		return writeError(c, s.logger, err)
	}
	if slots == nil {
		slots = []models.TimeSlot{}
	}

	return c.JSON(http.StatusOK, availabilityResponse{TutorID: tutorID, Date: day, Slots: slots})
}

func (s *Server) getAvailabilityRange(c echo.Context) error {
	tutorID, ok := parseID(c, "tutor_id")
	if !ok {
		return badRequest(c, "invalid tutor_id")
	}

	start, err := models.ParseDate(c.QueryParam("start_date"))
	if err != nil {
		return badRequest(c, "invalid start_date; expected YYYY-MM-DD")
	}
	end, err := models.ParseDate(c.QueryParam("end_date"))
	if err != nil {
		return badRequest(c, "invalid end_date; expected YYYY-MM-DD")
	}

	dates, err := s.availability.GetAvailabilityRange(c.Request().Context(), tutorID, start, end)
	if err != nil {
		return writeError(c, s.logger, err)
	}

	return c.JSON(http.StatusOK, availabilityRangeResponse{
		TutorID:        tutorID,
		StartDate:      start,
		EndDate:        end,
		AvailableDates: dates,
	})
}

func (s *Server) listTemplates(c echo.Context) error {
	tutorID, ok := parseID(c, "tutor_id")
	if !ok {
		return badRequest(c, "invalid tutor_id")
	}

	templates, err := s.availability.ListTemplates(c.Request().Context(), tutorID)
	if err != nil {
		return writeError(c, s.logger, err)
	}
	if templates == nil {
		templates = []models.AvailabilityTemplate{}
	}
	return c.JSON(http.StatusOK, templates)
}

func (s *Server) createTemplate(c echo.Context) error {
	tutorID, ok := parseID(c, "tutor_id")
	if !ok {
		return badRequest(c, "invalid tutor_id")
	}

	var req templateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Weekday == nil || req.StartTime == nil || req.EndTime == nil {
		return badRequest(c, "weekday, start_time and end_time are required")
	}

	in := service.TemplateInput{
		TutorID:    tutorID,
		Weekday:    *req.Weekday,
		StartTime:  *req.StartTime,
		EndTime:    *req.EndTime,
		ValidFrom:  req.ValidFrom,
		ValidUntil: req.ValidUntil,
		Duration:   req.Duration,
	}
	if req.LocationMode != nil {
		in.LocationMode = *req.LocationMode
	} else {
		in.LocationMode = "online"
	}
	if req.LocationNote != nil {
		in.LocationNote = *req.LocationNote
	}

	tpl, err := s.availability.CreateTemplate(c.Request().Context(), in)
	if err != nil {
		return writeError(c, s.logger, err)
	}
	return c.JSON(http.StatusCreated, tpl)
}

func (s *Server) updateTemplate(c echo.Context) error {
	tutorID, ok := parseID(c, "tutor_id")
	if !ok {
		return badRequest(c, "invalid tutor_id")
	}
	slotID, ok := parseID(c, "slot_id")
	if !ok {
		return badRequest(c, "invalid slot_id")
	}

	var req templateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	upd := service.TemplateUpdate{
		Weekday:      req.Weekday,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		LocationMode: req.LocationMode,
		LocationNote: req.LocationNote,
	}

	tpl, err := s.availability.UpdateTemplate(c.Request().Context(), slotID, tutorID, upd)
	if err != nil {
		return writeError(c, s.logger, err)
	}
	return c.JSON(http.StatusOK, tpl)
}

func (s *Server) deleteTemplate(c echo.Context) error {
	tutorID, ok := parseID(c, "tutor_id")
	if !ok {
		return badRequest(c, "invalid tutor_id")
	}
	slotID, ok := parseID(c, "slot_id")
	if !ok {
		return badRequest(c, "invalid slot_id")
	}

	if err := s.availability.DeleteTemplate(c.Request().Context(), slotID, tutorID); err != nil {
		return writeError(c, s.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}
