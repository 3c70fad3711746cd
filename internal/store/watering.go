package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pathakanu/myPlants/internal/model"
)

// InsertWateringEvent appends an event to the watering history.
func (s *GormStore) InsertWateringEvent(ctx context.Context, e *model.WateringEvent) error {
	e.WateredAt = e.WateredAt.UTC()
	return translate(s.db.WithContext(ctx).Create(e).Error)
}

// ListWateringHistory returns the plant's events, most recent watering first.
// A non-positive limit returns every event.
func (s *GormStore) ListWateringHistory(ctx context.Context, userID string, plantID uuid.UUID, limit int) ([]model.WateringEvent, error) {
	var events []model.WateringEvent
	q := s.db.WithContext(ctx).
		Where("plant_id = ? AND user_id = ?", plantID, userID).
		Order("watered_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&events).Error; err != nil {
		return nil, translate(err)
	}
	return events, nil
}

// CountWateringsSince counts the user's events watered at or after since.
func (s *GormStore) CountWateringsSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.WateringEvent{}).
		Where("user_id = ? AND watered_at >= ?", userID, since.UTC()).
		Count(&count).Error
	return count, translate(err)
}

// LatestWateringEvent returns the most recently recorded event for the plant,
// ordered by record time rather than watered_at.
func (s *GormStore) LatestWateringEvent(ctx context.Context, userID string, plantID uuid.UUID) (*model.WateringEvent, error) {
	var event model.WateringEvent
	err := s.db.WithContext(ctx).
		Where("plant_id = ? AND user_id = ?", plantID, userID).
		Order("created_at DESC").
		First(&event).Error
	if err != nil {
		return nil, translate(err)
	}
	return &event, nil
}
