// Package api exposes the plant tracker over HTTP with echo.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pathakanu/myPlants/internal/reminder"
	"github.com/pathakanu/myPlants/internal/tracker"
	"github.com/sirupsen/logrus"
)

// Pinger checks backend connectivity for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler groups the HTTP handlers.
type Handler struct {
	plants     *tracker.Service
	scanner    *reminder.Scanner
	db         Pinger
	cronSecret string
	now        func() time.Time
	started    time.Time
	log        logrus.FieldLogger
}

// Options configures New.
type Options struct {
	Plants     *tracker.Service
	Scanner    *reminder.Scanner
	DB         Pinger
	CronSecret string
	// Webhook, when set, is mounted at /twilio/webhook.
	Webhook http.Handler
	Clock   func() time.Time
	Logger  logrus.FieldLogger
}

// New builds the echo instance with every route registered.
func New(opts Options) *echo.Echo {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	h := &Handler{
		plants:     opts.Plants,
		scanner:    opts.Scanner,
		db:         opts.DB,
		cronSecret: opts.CronSecret,
		now:        clock,
		started:    clock(),
		log:        opts.Logger,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echoMiddleware.Recover())
	e.Use(requestLogger(opts.Logger))

	e.GET("/health", h.Health)
	if opts.Webhook != nil {
		e.POST("/twilio/webhook", echo.WrapHandler(opts.Webhook))
	}

	cron := e.Group("/api/cron", h.requireCronSecret)
	cron.GET("/check-watering", h.CheckWatering)
	cron.POST("/check-watering", h.CheckWatering)

	api := e.Group("/api", Identity())
	api.GET("/plants", h.ListPlants)
	api.POST("/plants", h.CreatePlant)
	api.GET("/plants/:id", h.GetPlant)
	api.PUT("/plants/:id", h.UpdatePlant)
	api.DELETE("/plants/:id", h.DeletePlant)
	api.POST("/plants/:id/water", h.RecordWatering)
	api.GET("/plants/:id/history", h.WateringHistory)
	api.POST("/plants/:id/recompute", h.RecomputeSchedule)

	api.GET("/notifications", h.ListNotifications)
	api.POST("/notifications", h.CreateNotification)
	api.PATCH("/notifications/:id/read", h.MarkNotificationRead)

	api.GET("/dashboard/stats", h.Stats)
	api.GET("/profile", h.GetProfile)
	api.PUT("/profile", h.UpdateProfile)
	return e
}

// Health reports uptime and database connectivity.
func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 800*time.Millisecond)
	defer cancel()

	type check struct {
		OK  bool   `json:"ok"`
		Err string `json:"err,omitempty"`
	}
	db := check{OK: true}
	if h.db == nil {
		db = check{Err: "database not configured"}
	} else if err := h.db.Ping(ctx); err != nil {
		db = check{Err: "ping: " + err.Error()}
	}

	status := http.StatusOK
	if !db.OK {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, map[string]any{
		"status":     map[string]any{"ok": db.OK},
		"uptime_sec": int(h.now().Sub(h.started).Seconds()),
		"checks":     map[string]any{"database": db},
		"time":       h.now().Format(time.RFC3339),
	})
}

func requestLogger(log logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			log.WithFields(logrus.Fields{
				"method":  c.Request().Method,
				"path":    c.Path(),
				"status":  c.Response().Status,
				"latency": time.Since(start).String(),
			}).Debug("http request")
			return nil
		}
	}
}
