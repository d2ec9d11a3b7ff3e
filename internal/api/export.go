package api

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"tutorhub/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
)

// exportTutorBookings streams an XLSX report of one tutor's bookings over
// a date range. The range defaults to the last 30 days. A copy of every
// report is archived under the configured exports directory.
func (s *Server) exportTutorBookings(c echo.Context) error {
	tutorID, ok := parseID(c, "tutor_id")
	if !ok {
		return badRequest(c, "invalid tutor_id")
	}

	end := models.Today().AddDays(1)
	start := end.AddDays(-31)
	if raw := c.QueryParam("start_date"); raw != "" {
		d, err := models.ParseDate(raw)
		if err != nil {
			return badRequest(c, "invalid start_date; expected YYYY-MM-DD")
		}
		start = d
	}
	if raw := c.QueryParam("end_date"); raw != "" {
		d, err := models.ParseDate(raw)
		if err != nil {
			return badRequest(c, "invalid end_date; expected YYYY-MM-DD")
		}
		end = d.AddDays(1)
	}

	details, err := s.bookings.TutorBookingsBetween(c.Request().Context(), tutorID, start.Time(), end.Time())
	if err != nil {
		return writeError(c, s.logger, err)
	}

	data, err := buildBookingsWorkbook(details)
	if err != nil {
		return writeError(c, s.logger, err)
	}

	fileName := fmt.Sprintf("bookings_tutor%d_%s_to_%s.xlsx", tutorID, start, end.AddDays(-1))
	s.archiveExport(fileName, data)

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", fileName))
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// archiveExport keeps a server-side copy of a generated report. Failures are
// logged, not surfaced: the download must not break over a full disk.
func (s *Server) archiveExport(fileName string, data []byte) {
	if s.exportDir == "" {
		return
	}
	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		s.logger.Warn().Err(err).Str("dir", s.exportDir).Msg("failed to create exports directory")
		return
	}
	path := filepath.Join(s.exportDir, fileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("failed to archive export")
		return
	}
	s.logger.Info().Str("path", path).Msg("export archived")
}

func buildBookingsWorkbook(details []models.BookingDetail) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Bookings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{"ID", "Date", "Start", "End", "Student", "Course", "Status", "Meeting link", "Notes"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(sheetName, "A1", lastHeader, headerStyle)

	for i, d := range details {
		row := i + 2
		values := []any{
			d.ID,
			d.StartTime.Format("2006-01-02"),
			d.StartTime.Format("15:04"),
			d.EndTime.Format("15:04"),
			d.StudentName,
			d.CourseTitle,
			string(d.Status),
			d.MeetingLink,
			d.Notes,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetName, cell, value)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 8)
	_ = f.SetColWidth(sheetName, "B", "D", 12)
	_ = f.SetColWidth(sheetName, "E", "I", 24)
	_ = f.DeleteSheet("Sheet1")

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("error writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}
