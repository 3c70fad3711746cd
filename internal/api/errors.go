package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pathakanu/myPlants/internal/tracker"
)

// writeError maps service errors to HTTP responses. Persistence details are
// logged, not returned.
func (h *Handler) writeError(c echo.Context, err error) error {
	var (
		validation *tracker.ValidationError
		scheduling *tracker.ScheduleUpdateError
		persist    *tracker.PersistenceError
	)
	switch {
	case errors.As(err, &validation):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": validation.Error(), "field": validation.Field})
	case errors.Is(err, tracker.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
	case errors.Is(err, tracker.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.As(err, &scheduling):
		h.log.WithError(err).Error("api: schedule update failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":    "watering recorded but schedule update failed",
			"step":     "schedule_update",
			"event_id": scheduling.EventID.String(),
		})
	case errors.As(err, &persist):
		h.log.WithError(err).WithField("op", persist.Op).Error("api: persistence failure")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	default:
		h.log.WithError(err).Error("api: unexpected error")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
