// Package reminder turns overdue plants into watering reminders, at most one
// per plant per reminder window.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pathakanu/myPlants/internal/model"
	"github.com/pathakanu/myPlants/internal/schedule"
	"github.com/pathakanu/myPlants/internal/store"
)

// DefaultWindow is the trailing lookback used to suppress repeated reminders.
const DefaultWindow = 24 * time.Hour

// Store is the persistence surface used by the scan.
type Store interface {
	FindOverdue(ctx context.Context, now time.Time) ([]model.Plant, error)
	FindRecentReminder(ctx context.Context, plantID uuid.UUID, typ string, since time.Time) (*model.Notification, error)
	InsertNotification(ctx context.Context, n *model.Notification) error
}

// Outcome is the result of evaluating one plant.
type Outcome string

const (
	// OutcomeCreated means a new reminder was stored.
	OutcomeCreated Outcome = "created"
	// OutcomeSuppressed means a reminder already exists inside the window.
	// It is not an error.
	OutcomeSuppressed Outcome = "suppressed"
	// OutcomeNotDue means the plant is not overdue at the evaluation time.
	OutcomeNotDue Outcome = "not_due"
)

// Deduplicator decides whether an overdue plant gets a new reminder.
//
// The lookback query only avoids needless inserts. Two concurrent scans can
// both pass it; the unique (plant_id, type, day_bucket) index then rejects the
// second insert, which is reported as OutcomeSuppressed.
type Deduplicator struct {
	store  Store
	window time.Duration
}

// NewDeduplicator creates a Deduplicator. A non-positive window uses DefaultWindow.
func NewDeduplicator(st Store, window time.Duration) *Deduplicator {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Deduplicator{store: st, window: window}
}

// Evaluate applies the reminder rule to plant at now and stores the reminder
// when one is due. The returned notification is nil unless the outcome is
// OutcomeCreated.
func (d *Deduplicator) Evaluate(ctx context.Context, plant *model.Plant, now time.Time) (Outcome, *model.Notification, error) {
	if !schedule.IsOverdue(plant, now) {
		return OutcomeNotDue, nil, nil
	}

	recent, err := d.store.FindRecentReminder(ctx, plant.ID, model.TypeWateringReminder, now.Add(-d.window))
	if err != nil {
		return "", nil, fmt.Errorf("find recent reminder: %w", err)
	}
	if recent != nil {
		return OutcomeSuppressed, nil, nil
	}

	n := Compose(plant, now)
	if err := d.store.InsertNotification(ctx, n); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return OutcomeSuppressed, nil, nil
		}
		return "", nil, fmt.Errorf("insert reminder: %w", err)
	}
	return OutcomeCreated, n, nil
}

// Compose builds the reminder for plant evaluated at now. The content depends
// only on the plant's name and species.
func Compose(plant *model.Plant, now time.Time) *model.Notification {
	message := fmt.Sprintf("It's time to water your %s!", plant.Name)
	if species := strings.TrimSpace(plant.Species); species != "" {
		message = fmt.Sprintf("It's time to water your %s (%s)!", plant.Name, species)
	}
	return &model.Notification{
		UserID:       plant.UserID,
		PlantID:      plant.ID,
		Type:         model.TypeWateringReminder,
		DayBucket:    model.DayBucketFor(now),
		Title:        fmt.Sprintf("Time to water %s", plant.Name),
		Message:      message,
		ScheduledFor: now,
		CreatedAt:    now,
	}
}
