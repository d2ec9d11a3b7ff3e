package api

import (
	"errors"
	"net/http"

	"tutorhub/internal/database"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps storage sentinel errors to HTTP status codes. Anything
// unrecognized is logged server-side and surfaces as a generic 500.
func writeError(c echo.Context, logger *zerolog.Logger, err error) error {
	switch {
	case errors.Is(err, database.ErrValidation),
		errors.Is(err, database.ErrInvalidRange),
		errors.Is(err, database.ErrSlotOverlap),
		errors.Is(err, database.ErrBookingConflict):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, database.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, database.ErrForbidden):
		return c.JSON(http.StatusForbidden, errorResponse{Error: err.Error()})
	default:
		logger.Error().Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Msg("request failed")
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}
