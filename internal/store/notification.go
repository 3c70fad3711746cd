package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pathakanu/myPlants/internal/model"
)

// NotificationView is a notification joined with its plant's name and species.
type NotificationView struct {
	model.Notification
	PlantName    string `json:"plant_name"`
	PlantSpecies string `json:"plant_species"`
}

// FindRecentReminder returns the newest notification of the given type for the
// plant created at or after since, or nil when there is none.
func (s *GormStore) FindRecentReminder(ctx context.Context, plantID uuid.UUID, typ string, since time.Time) (*model.Notification, error) {
	var found []model.Notification
	err := s.db.WithContext(ctx).
		Where("plant_id = ? AND type = ? AND created_at >= ?", plantID, typ, since.UTC()).
		Order("created_at DESC").
		Limit(1).
		Find(&found).Error
	if err != nil {
		return nil, translate(err)
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

// InsertNotification stores n. ErrDuplicate means another reminder for the
// same plant, type and day bucket already exists.
func (s *GormStore) InsertNotification(ctx context.Context, n *model.Notification) error {
	n.ScheduledFor = n.ScheduledFor.UTC()
	n.CreatedAt = n.CreatedAt.UTC()
	return translate(s.db.WithContext(ctx).Create(n).Error)
}

// ListNotifications returns the user's notifications, newest first.
func (s *GormStore) ListNotifications(ctx context.Context, userID string) ([]NotificationView, error) {
	var out []NotificationView
	err := s.db.WithContext(ctx).
		Table("notifications").
		Select("notifications.*, plants.name AS plant_name, plants.species AS plant_species").
		Joins("LEFT JOIN plants ON plants.id = notifications.plant_id").
		Where("notifications.user_id = ?", userID).
		Order("notifications.created_at DESC").
		Scan(&out).Error
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// CountUnread returns how many of the user's notifications are unread.
func (s *GormStore) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, translate(err)
}

// MarkNotificationRead flips is_read to true. Marking an already read
// notification is a no-op; it is never flipped back.
func (s *GormStore) MarkNotificationRead(ctx context.Context, userID string, id uuid.UUID, at time.Time) error {
	res := s.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ? AND user_id = ? AND is_read = ?", id, userID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": at.UTC(),
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Count(&count).Error
	if err != nil {
		return translate(err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
