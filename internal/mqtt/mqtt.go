// Package mqtt publishes watering reminder events to an MQTT broker.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DefaultTopic is used when no topic is configured.
const DefaultTopic = "plants/reminders"

// Publisher publishes reminder events.
type Publisher interface {
	// Publish sends a reminder event. Errors are reported, never fatal.
	Publish(event ReminderEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ReminderEvent is a watering reminder as seen by home automation consumers.
type ReminderEvent struct {
	NotificationID uuid.UUID
	PlantID        uuid.UUID
	UserID         string
	PlantName      string
	Species        string
	Title          string
	Message        string
	ScheduledFor   time.Time
	NextWatering   *time.Time
}

// Payload is the JSON message body.
type Payload struct {
	Reminder ReminderPayload `json:"reminder"`
}

// ReminderPayload contains the reminder details.
type ReminderPayload struct {
	Timestamp      string `json:"timestamp"`
	NotificationID string `json:"notification_id"`
	PlantID        string `json:"plant_id"`
	UserID         string `json:"user_id"`
	Plant          string `json:"plant"`
	Species        string `json:"species,omitempty"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	NextWatering   string `json:"next_watering,omitempty"`
}

// FormatPayload creates the JSON payload for a reminder event.
func FormatPayload(event ReminderEvent) ([]byte, error) {
	p := ReminderPayload{
		Timestamp:      event.ScheduledFor.UTC().Format(time.RFC3339),
		NotificationID: event.NotificationID.String(),
		PlantID:        event.PlantID.String(),
		UserID:         event.UserID,
		Plant:          event.PlantName,
		Species:        event.Species,
		Title:          event.Title,
		Message:        event.Message,
	}
	if event.NextWatering != nil {
		p.NextWatering = event.NextWatering.UTC().Format(time.RFC3339)
	}
	return json.Marshal(Payload{Reminder: p})
}

// TopicFor returns the per-user topic below base.
func TopicFor(base, userID string) string {
	if base == "" {
		base = DefaultTopic
	}
	return base + "/" + userID
}
