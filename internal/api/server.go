package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"tutorhub/internal/config"
	"tutorhub/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Server exposes the schedule HTTP surface.
type Server struct {
	echo         *echo.Echo
	cfg          config.HTTPConfig
	exportDir    string
	availability *service.AvailabilityService
	bookings     *service.BookingService
	logger       *zerolog.Logger
}

func NewServer(cfg config.HTTPConfig, exports config.ExportConfig, availability *service.AvailabilityService, bookings *service.BookingService, logger *zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:         e,
		cfg:          cfg,
		exportDir:    exports.Path,
		availability: availability,
		bookings:     bookings,
		logger:       logger,
	}

	e.Use(requestID())
	e.Use(requestLogger(logger))
	e.Use(rateLimit(cfg.RateLimit))

	e.GET("/healthz", s.health)

	g := e.Group("/schedule")
	g.GET("/tutors/:tutor_id/availability", s.getAvailability)
	g.GET("/tutors/:tutor_id/availability-range", s.getAvailabilityRange)
	g.GET("/tutors/:tutor_id/availability-slots", s.listTemplates)
	g.POST("/tutors/:tutor_id/availability-slots", s.createTemplate)
	g.PUT("/tutors/:tutor_id/availability-slots/:slot_id", s.updateTemplate)
	g.DELETE("/tutors/:tutor_id/availability-slots/:slot_id", s.deleteTemplate)

	g.POST("/bookings", s.createBooking)
	g.GET("/bookings", s.searchBookings)
	g.GET("/bookings/student/:student_id", s.bookingsByStudent)
	g.GET("/bookings/tutor/:tutor_id", s.bookingsByTutor)
	g.GET("/bookings/tutor/:tutor_id/export", s.exportTutorBookings)
	g.PUT("/bookings/:booking_id/status", s.updateBookingStatus)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.logger.Info().Str("addr", addr).Msg("HTTP server listening")

	s.echo.Server.ReadTimeout = time.Duration(s.cfg.ReadTimeout) * time.Second
	s.echo.Server.WriteTimeout = time.Duration(s.cfg.WriteTimeout) * time.Second

	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler returns the echo engine for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
