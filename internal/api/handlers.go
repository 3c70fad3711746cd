package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pathakanu/myPlants/internal/reminder"
	"github.com/pathakanu/myPlants/internal/tracker"
)

// pathID parses :id. Malformed ids cannot name an existing row, so they are
// reported as not found.
func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, tracker.ErrNotFound
	}
	return id, nil
}

func badBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
}

func (h *Handler) ListPlants(c echo.Context) error {
	plants, err := h.plants.ListPlants(c.Request().Context(), userID(c))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, plants)
}

func (h *Handler) CreatePlant(c echo.Context) error {
	var in tracker.PlantInput
	if err := c.Bind(&in); err != nil {
		return badBody(c)
	}
	p, err := h.plants.CreatePlant(c.Request().Context(), userID(c), in)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPlant(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.writeError(c, err)
	}
	p, err := h.plants.GetPlant(c.Request().Context(), userID(c), id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdatePlant(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.writeError(c, err)
	}
	var in tracker.PlantInput
	if err := c.Bind(&in); err != nil {
		return badBody(c)
	}
	p, err := h.plants.UpdatePlant(c.Request().Context(), userID(c), id, in)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePlant(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.writeError(c, err)
	}
	if err := h.plants.DeletePlant(c.Request().Context(), userID(c), id); err != nil {
		return h.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RecordWatering logs a watering. An empty body is a quick water with the
// plant's default amount at the current time.
func (h *Handler) RecordWatering(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.writeError(c, err)
	}
	ctx := c.Request().Context()

	var res *tracker.WateringResult
	if c.Request().ContentLength == 0 {
		res, err = h.plants.QuickWater(ctx, userID(c), id)
	} else {
		var in tracker.WateringInput
		if err := c.Bind(&in); err != nil {
			return badBody(c)
		}
		res, err = h.plants.RecordWatering(ctx, userID(c), id, in)
	}
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *Handler) WateringHistory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.writeError(c, err)
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer", "field": "limit"})
		}
	}
	events, err := h.plants.WateringHistory(c.Request().Context(), userID(c), id, limit)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, events)
}

func (h *Handler) RecomputeSchedule(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.writeError(c, err)
	}
	p, err := h.plants.RecomputeSchedule(c.Request().Context(), userID(c), id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListNotifications(c echo.Context) error {
	list, err := h.plants.Notifications(c.Request().Context(), userID(c))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) CreateNotification(c echo.Context) error {
	var in tracker.NotificationInput
	if err := c.Bind(&in); err != nil {
		return badBody(c)
	}
	n, err := h.plants.CreateNotification(c.Request().Context(), userID(c), in)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, n)
}

func (h *Handler) MarkNotificationRead(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.writeError(c, err)
	}
	if err := h.plants.MarkNotificationRead(c.Request().Context(), userID(c), id); err != nil {
		return h.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Stats(c echo.Context) error {
	stats, err := h.plants.Stats(c.Request().Context(), userID(c))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetProfile(c echo.Context) error {
	p, err := h.plants.Profile(c.Request().Context(), userID(c))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	var in tracker.ProfileInput
	if err := c.Bind(&in); err != nil {
		return badBody(c)
	}
	p, err := h.plants.UpdateProfile(c.Request().Context(), userID(c), in)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// CheckWatering runs one reminder scan and returns its summary.
func (h *Handler) CheckWatering(c echo.Context) error {
	if h.scanner == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "reminder scan not configured"})
	}
	summary, err := h.scanner.Scan(c.Request().Context(), h.now())
	if errors.Is(err, reminder.ErrScanInProgress) {
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	}
	if err != nil {
		h.log.WithError(err).Error("api: reminder scan failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, summary)
}
