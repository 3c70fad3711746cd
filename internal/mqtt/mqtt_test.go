package mqtt

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestFormatPayload(t *testing.T) {
	t.Parallel()

	next := time.Date(2026, 3, 17, 9, 0, 0, 0, time.UTC)
	event := ReminderEvent{
		NotificationID: uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		PlantID:        uuid.MustParse("22222222-2222-2222-2222-222222222222"),
		UserID:         "alice",
		PlantName:      "Ficus",
		Title:          "Time to water Ficus",
		Message:        "It's time to water your Ficus!",
		ScheduledFor:   time.Date(2026, 3, 10, 10, 0, 0, 0, time.FixedZone("CET", 3600)),
		NextWatering:   &next,
	}

	data, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("FormatPayload: %v", err)
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Reminder.Timestamp != "2026-03-10T09:00:00Z" {
		t.Errorf("timestamp: got %q", p.Reminder.Timestamp)
	}
	if p.Reminder.PlantID != "22222222-2222-2222-2222-222222222222" {
		t.Errorf("plant_id: got %q", p.Reminder.PlantID)
	}
	if p.Reminder.NextWatering != "2026-03-17T09:00:00Z" {
		t.Errorf("next_watering: got %q", p.Reminder.NextWatering)
	}
	if p.Reminder.Species != "" {
		t.Errorf("species should be omitted, got %q", p.Reminder.Species)
	}
}

func TestTopicFor(t *testing.T) {
	t.Parallel()

	if got := TopicFor("", "alice"); got != "plants/reminders/alice" {
		t.Errorf("default topic: got %q", got)
	}
	if got := TopicFor("home/garden", "bob"); got != "home/garden/bob" {
		t.Errorf("custom topic: got %q", got)
	}
}
