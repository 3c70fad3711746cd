package tracker

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pathakanu/myPlants/internal/model"
	"github.com/pathakanu/myPlants/internal/store"
)

// NotificationList is the user's notification feed.
type NotificationList struct {
	Notifications []store.NotificationView `json:"notifications"`
	Unread        int64                    `json:"unread"`
}

// NotificationInput creates a notification directly on behalf of the user.
type NotificationInput struct {
	PlantID      uuid.UUID `json:"plant_id"`
	Type         string    `json:"type"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	ScheduledFor string    `json:"scheduled_for"`
}

// Notifications returns the user's notifications, newest first, with the unread count.
func (s *Service) Notifications(ctx context.Context, userID string) (*NotificationList, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	views, err := s.store.ListNotifications(ctx, userID)
	if err != nil {
		return nil, storeErr("list notifications", err)
	}
	unread, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return nil, storeErr("count unread notifications", err)
	}
	if views == nil {
		views = []store.NotificationView{}
	}
	return &NotificationList{Notifications: views, Unread: unread}, nil
}

// CreateNotification stores a notification for one of the user's plants.
// Directly created notifications carry no day bucket and are never deduplicated.
func (s *Service) CreateNotification(ctx context.Context, userID string, in NotificationInput) (*model.Notification, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	switch {
	case in.PlantID == uuid.Nil:
		return nil, invalid("plant_id", "is required")
	case strings.TrimSpace(in.Type) == "":
		return nil, invalid("type", "must not be empty")
	case strings.TrimSpace(in.Title) == "":
		return nil, invalid("title", "must not be empty")
	case strings.TrimSpace(in.Message) == "":
		return nil, invalid("message", "must not be empty")
	}

	now := s.now()
	scheduledFor := now
	if strings.TrimSpace(in.ScheduledFor) != "" {
		parsed, err := s.ParseTimestamp("scheduled_for", in.ScheduledFor)
		if err != nil {
			return nil, err
		}
		scheduledFor = parsed
	}

	if _, err := s.ownedPlant(ctx, userID, in.PlantID); err != nil {
		return nil, err
	}

	n := &model.Notification{
		UserID:       userID,
		PlantID:      in.PlantID,
		Type:         strings.TrimSpace(in.Type),
		Title:        strings.TrimSpace(in.Title),
		Message:      strings.TrimSpace(in.Message),
		ScheduledFor: scheduledFor,
		CreatedAt:    now,
	}
	if err := s.store.InsertNotification(ctx, n); err != nil {
		return nil, storeErr("insert notification", err)
	}
	return n, nil
}

// MarkNotificationRead marks one of the user's notifications as read.
func (s *Service) MarkNotificationRead(ctx context.Context, userID string, id uuid.UUID) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if err := s.store.MarkNotificationRead(ctx, userID, id, s.now()); err != nil {
		return storeErr("mark notification read", err)
	}
	return nil
}
