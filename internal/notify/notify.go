// Package notify delivers stored watering reminders over external channels.
// Delivery happens after the reminder is persisted; a failed delivery never
// removes the in-app notification.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pathakanu/myPlants/internal/model"
	"github.com/pathakanu/myPlants/internal/mqtt"
	"github.com/pathakanu/myPlants/internal/store"
)

// Channel delivers a reminder over one medium.
type Channel interface {
	Notify(ctx context.Context, plant model.Plant, n model.Notification) error
}

// Multi fans a reminder out to every channel and joins their errors.
type Multi []Channel

// Notify delivers n on every channel.
func (m Multi) Notify(ctx context.Context, plant model.Plant, n model.Notification) error {
	var errs []error
	for _, ch := range m {
		if err := ch.Notify(ctx, plant, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ProfileLookup resolves a user's contact details.
type ProfileLookup interface {
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
}

// Sender sends a WhatsApp message.
type Sender interface {
	SendWhatsAppMessage(ctx context.Context, to, body string) error
}

// TipWriter produces an optional care tip for a plant.
type TipWriter interface {
	CareTip(ctx context.Context, plantName, species string) (string, error)
}

// WhatsApp sends reminders to owners who registered a WhatsApp number.
type WhatsApp struct {
	profiles ProfileLookup
	sender   Sender
	tips     TipWriter
}

// NewWhatsApp creates the WhatsApp channel. tips may be nil.
func NewWhatsApp(profiles ProfileLookup, sender Sender, tips TipWriter) *WhatsApp {
	return &WhatsApp{profiles: profiles, sender: sender, tips: tips}
}

// Notify sends the reminder text, plus a care tip when one is available.
// Owners without a profile or number are skipped silently.
func (w *WhatsApp) Notify(ctx context.Context, plant model.Plant, n model.Notification) error {
	profile, err := w.profiles.GetProfile(ctx, n.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("whatsapp: load profile: %w", err)
	}
	if strings.TrimSpace(profile.WhatsAppNumber) == "" {
		return nil
	}

	body := FormatWhatsApp(plant, n, w.tip(ctx, plant))
	if err := w.sender.SendWhatsAppMessage(ctx, profile.WhatsAppNumber, body); err != nil {
		return fmt.Errorf("whatsapp: %w", err)
	}
	return nil
}

func (w *WhatsApp) tip(ctx context.Context, plant model.Plant) string {
	if w.tips == nil {
		return ""
	}
	tip, err := w.tips.CareTip(ctx, plant.Name, plant.Species)
	if err != nil {
		return ""
	}
	return tip
}

// FormatWhatsApp renders the outbound message body.
func FormatWhatsApp(plant model.Plant, n model.Notification, tip string) string {
	var sb strings.Builder
	sb.WriteString(n.Title)
	sb.WriteString("\n")
	sb.WriteString(n.Message)
	if tip = strings.TrimSpace(tip); tip != "" {
		sb.WriteString("\nTip: ")
		sb.WriteString(tip)
	}
	sb.WriteString("\nReply \"watered ")
	sb.WriteString(plant.Name)
	sb.WriteString("\" once done.")
	return sb.String()
}

// MQTT publishes reminders as JSON events.
type MQTT struct {
	publisher mqtt.Publisher
}

// NewMQTT creates the MQTT channel.
func NewMQTT(publisher mqtt.Publisher) *MQTT {
	return &MQTT{publisher: publisher}
}

// Notify publishes the reminder on the owner's topic.
func (m *MQTT) Notify(_ context.Context, plant model.Plant, n model.Notification) error {
	return m.publisher.Publish(mqtt.ReminderEvent{
		NotificationID: n.ID,
		PlantID:        plant.ID,
		UserID:         n.UserID,
		PlantName:      plant.Name,
		Species:        plant.Species,
		Title:          n.Title,
		Message:        n.Message,
		ScheduledFor:   n.ScheduledFor,
		NextWatering:   plant.NextWatering,
	})
}
