// Package tracker implements the user-facing plant operations: plant
// management, watering events with schedule recompute, notifications and
// profiles. Every call is scoped to an already authenticated user id.
package tracker

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pathakanu/myPlants/internal/model"
	"github.com/pathakanu/myPlants/internal/schedule"
	"github.com/pathakanu/myPlants/internal/store"
	"github.com/sirupsen/logrus"
)

// Store is the persistence surface the service relies on.
type Store interface {
	CreatePlant(ctx context.Context, p *model.Plant) error
	ListPlants(ctx context.Context, userID string) ([]model.Plant, error)
	GetPlant(ctx context.Context, userID string, id uuid.UUID) (*model.Plant, error)
	FindPlantByName(ctx context.Context, userID, name string) (*model.Plant, error)
	UpdatePlant(ctx context.Context, p *model.Plant, reschedule bool) error
	DeletePlant(ctx context.Context, userID string, id uuid.UUID) error
	UpdatePlantSchedule(ctx context.Context, userID string, plantID uuid.UUID, lastWatered, nextWatering time.Time) (*model.Plant, error)

	InsertWateringEvent(ctx context.Context, e *model.WateringEvent) error
	ListWateringHistory(ctx context.Context, userID string, plantID uuid.UUID, limit int) ([]model.WateringEvent, error)
	LatestWateringEvent(ctx context.Context, userID string, plantID uuid.UUID) (*model.WateringEvent, error)
	CountWateringsSince(ctx context.Context, userID string, since time.Time) (int64, error)

	InsertNotification(ctx context.Context, n *model.Notification) error
	ListNotifications(ctx context.Context, userID string) ([]store.NotificationView, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkNotificationRead(ctx context.Context, userID string, id uuid.UUID, at time.Time) error

	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	UpsertProfile(ctx context.Context, p *model.Profile) error
	FindProfileByWhatsApp(ctx context.Context, number string) (*model.Profile, error)
}

// Service coordinates plant, watering and notification operations.
type Service struct {
	store Store
	now   func() time.Time
	loc   *time.Location
	log   logrus.FieldLogger
}

// New creates a Service. A nil clock defaults to time.Now; loc is used to
// interpret timestamps that carry no zone and defaults to UTC.
func New(st Store, clock func() time.Time, loc *time.Location, log logrus.FieldLogger) *Service {
	if clock == nil {
		clock = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: st, now: clock, loc: loc, log: log}
}

// PlantView is a plant annotated with its schedule status at the time of the read.
type PlantView struct {
	model.Plant
	Status    schedule.Status `json:"status"`
	DaysUntil *int            `json:"days_until"`
}

func (s *Service) view(p model.Plant, now time.Time) PlantView {
	v := PlantView{Plant: p, Status: schedule.StatusOf(&p, now)}
	if days, ok := schedule.DaysUntil(&p, now); ok {
		v.DaysUntil = &days
	}
	return v
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUnauthenticated
	}
	return nil
}

// ParseTimestamp accepts RFC 3339 timestamps and the zone-less
// "2006-01-02T15:04[:05]" form sent by datetime-local inputs, which is read in
// the service's location.
func (s *Service) ParseTimestamp(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, invalid(field, "timestamp is required")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, value, s.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, invalid(field, "unparseable timestamp "+value)
}
