package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tutorhub/internal/config"
	"tutorhub/internal/database"
	"tutorhub/internal/events"
	"tutorhub/internal/models"
	"tutorhub/internal/repository"
	"tutorhub/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *database.DB) {
	t.Helper()
	logger := zerolog.New(zerolog.NewConsoleWriter()).Level(zerolog.Disabled)

	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cache := repository.NewMemoryAvailabilityCache(5 * time.Minute)
	bus := events.NewEventBus()

	availability := service.NewAvailabilityService(db, db, cache, bus, &logger)
	bookings := service.NewBookingService(db, db, cache, bus, &logger)

	exports := config.ExportConfig{Path: filepath.Join(t.TempDir(), "exports")}
	srv := NewServer(config.HTTPConfig{Port: 0}, exports, availability, bookings, &logger)
	return srv, db
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echoContentType, echoJSONType)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

const (
	echoContentType = "Content-Type"
	echoJSONType    = "application/json"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

// Full flow: publish a weekly slot, read the generated hours, book one of
// them, and watch it disappear from availability.
func TestScheduleFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	// Monday slot, 09:00-12:00
	rec := doJSON(t, srv, http.MethodPost, "/schedule/tutors/5/availability-slots",
		`{"weekday": 1, "start_time": "09:00", "end_time": "12:00", "valid_from": "2026-09-01", "duration": "forever"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var tpl models.AvailabilityTemplate
	decodeBody(t, rec, &tpl)
	require.NotZero(t, tpl.ID)
	assert.Equal(t, int64(5), tpl.TutorID)
	assert.Nil(t, tpl.ValidUntil)

	// 2026-09-07 is a Monday
	rec = doJSON(t, srv, http.MethodGet, "/schedule/tutors/5/availability?date=2026-09-07", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var avail availabilityResponse
	decodeBody(t, rec, &avail)
	require.Len(t, avail.Slots, 3)
	assert.True(t, avail.Slots[0].IsAvailable)

	rec = doJSON(t, srv, http.MethodPost, "/schedule/bookings",
		`{"tutor_id": 5, "student_id": 9, "course_id": 3,
		  "start_time": "2026-09-07T10:00:00Z", "end_time": "2026-09-07T11:00:00Z"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var detail models.BookingDetail
	decodeBody(t, rec, &detail)
	require.NotZero(t, detail.ID)
	assert.Equal(t, models.StatusPending, detail.Status)

	rec = doJSON(t, srv, http.MethodGet, "/schedule/tutors/5/availability?date=2026-09-07", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &avail)
	assert.Len(t, avail.Slots, 2, "the booked hour must be gone")

	rec = doJSON(t, srv, http.MethodGet, "/schedule/tutors/5/availability-range?start_date=2026-09-06&end_date=2026-09-08", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var rangeResp availabilityRangeResponse
	decodeBody(t, rec, &rangeResp)
	require.Len(t, rangeResp.AvailableDates, 1)
	assert.Equal(t, "2026-09-07", rangeResp.AvailableDates[0].String())
}

func TestAvailabilityEmptyDayIsArray(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/schedule/tutors/5/availability?date=2026-09-08", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"slots":[]`)
	assert.NotContains(t, rec.Body.String(), `"slots":null`)
}

func TestTemplateEndpointErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	t.Run("OverlapRejected", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/schedule/tutors/5/availability-slots",
			`{"weekday": 2, "start_time": "09:00", "end_time": "11:00"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = doJSON(t, srv, http.MethodPost, "/schedule/tutors/5/availability-slots",
			`{"weekday": 2, "start_time": "10:00", "end_time": "12:00"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "error")
	})

	t.Run("InvertedRange", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/schedule/tutors/5/availability-slots",
			`{"weekday": 3, "start_time": "12:00", "end_time": "09:00"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("WeekdayOutOfRange", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/schedule/tutors/5/availability-slots",
			`{"weekday": 7, "start_time": "09:00", "end_time": "10:00"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("MissingFields", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/schedule/tutors/5/availability-slots",
			`{"weekday": 3}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("UpdateWrongOwner", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/schedule/tutors/6/availability-slots",
			`{"weekday": 4, "start_time": "09:00", "end_time": "10:00"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		var tpl models.AvailabilityTemplate
		decodeBody(t, rec, &tpl)

		rec = doJSON(t, srv, http.MethodPut, fmt.Sprintf("/schedule/tutors/7/availability-slots/%d", tpl.ID),
			`{"location_mode": "in_person"}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("UpdateMissingSlot", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPut, "/schedule/tutors/5/availability-slots/9999",
			`{"location_mode": "online"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("DeleteThenGone", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/schedule/tutors/8/availability-slots",
			`{"weekday": 5, "start_time": "09:00", "end_time": "10:00"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		var tpl models.AvailabilityTemplate
		decodeBody(t, rec, &tpl)

		rec = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/schedule/tutors/8/availability-slots/%d", tpl.ID), "")
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/schedule/tutors/8/availability-slots/%d", tpl.ID), "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("BadDateParam", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/schedule/tutors/5/availability?date=07-09-2026", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("BadTutorID", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/schedule/tutors/abc/availability-slots", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestBookingEndpoints(t *testing.T) {
	srv, db := newTestServer(t)
	ctx := context.Background()

	require.NoError(t, db.UpsertUser(ctx, models.User{ID: 50, FirstName: "Anna", LastName: "Keller"}))
	require.NoError(t, db.UpsertUser(ctx, models.User{ID: 9, FirstName: "Ben", LastName: "Ortiz"}))
	require.NoError(t, db.UpsertTutorProfile(ctx, models.TutorProfile{TutorID: 5, UserID: 50}))
	require.NoError(t, db.UpsertCourse(ctx, models.Course{ID: 3, Title: "Linear Algebra"}))

	create := func(t *testing.T, body string) models.BookingDetail {
		t.Helper()
		rec := doJSON(t, srv, http.MethodPost, "/schedule/bookings", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var detail models.BookingDetail
		decodeBody(t, rec, &detail)
		return detail
	}

	booked := create(t, `{"tutor_id": 5, "student_id": 9, "course_id": 3,
		"start_time": "2026-09-07T10:00:00Z", "end_time": "2026-09-07T11:00:00Z"}`)
	assert.Equal(t, "Anna Keller", booked.TutorName)
	assert.Equal(t, "Ben Ortiz", booked.StudentName)
	assert.Equal(t, "Linear Algebra", booked.CourseTitle)

	t.Run("ConflictMapsTo400", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/schedule/bookings",
			`{"tutor_id": 5, "student_id": 10, "course_id": 3,
			  "start_time": "2026-09-07T10:30:00Z", "end_time": "2026-09-07T11:30:00Z"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("MissingCourse", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/schedule/bookings",
			`{"tutor_id": 5, "student_id": 9,
			  "start_time": "2026-09-08T10:00:00Z", "end_time": "2026-09-08T11:00:00Z"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("ByStudent", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/schedule/bookings/student/9", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var details []models.BookingDetail
		decodeBody(t, rec, &details)
		require.Len(t, details, 1)
		assert.Equal(t, booked.ID, details[0].ID)
	})

	t.Run("SearchByStatus", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/schedule/bookings?tutor_id=5&status=pending", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var details []models.BookingDetail
		decodeBody(t, rec, &details)
		assert.Len(t, details, 1)
	})

	t.Run("SearchBadStatus", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/schedule/bookings?status=paused", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("StatusUpdate", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPut, fmt.Sprintf("/schedule/bookings/%d/status", booked.ID),
			`{"status": "confirmed", "tutor_id": 5}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var detail models.BookingDetail
		decodeBody(t, rec, &detail)
		assert.Equal(t, models.StatusConfirmed, detail.Status)
	})

	t.Run("StatusUpdateWrongTutor", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPut, fmt.Sprintf("/schedule/bookings/%d/status", booked.ID),
			`{"status": "cancelled", "tutor_id": 7}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("StatusUpdateUnknownBooking", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPut, "/schedule/bookings/9999/status",
			`{"status": "confirmed", "tutor_id": 5}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("StatusUpdateBadValue", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPut, fmt.Sprintf("/schedule/bookings/%d/status", booked.ID),
			`{"status": "paused", "tutor_id": 5}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Export", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet,
			"/schedule/bookings/tutor/5/export?start_date=2026-09-01&end_date=2026-09-30", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			rec.Header().Get(echoContentType))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "bookings_tutor5_")
		assert.NotEmpty(t, rec.Body.Bytes())

		// the configured exports directory keeps a copy
		archived, err := os.ReadFile(filepath.Join(srv.exportDir, "bookings_tutor5_2026-09-01_to_2026-09-30.xlsx"))
		require.NoError(t, err)
		assert.Equal(t, rec.Body.Bytes(), archived)
	})

	t.Run("ExportUnknownTutor", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/schedule/bookings/tutor/42/export", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRequestIDPropagation(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-Id"))

	rec = doJSON(t, srv, http.MethodGet, "/healthz", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"), "a request id is minted when absent")
}
