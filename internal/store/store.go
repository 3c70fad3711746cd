// Package store persists plants, watering history, notifications and profiles
// through gorm. Every user-facing query is scoped by the owning user id.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pathakanu/myPlants/internal/model"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when no row matches the id and owner.
	ErrNotFound = errors.New("store: record not found")
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("store: duplicate record")
	// ErrStale is returned when a guarded update finds the row was watered
	// after the caller read it.
	ErrStale = errors.New("store: record changed since read")
)

// GormStore implements the persistence operations on top of a *gorm.DB.
type GormStore struct {
	db *gorm.DB
}

// New wraps db.
func New(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Ping checks database connectivity.
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// CreatePlant inserts a new plant.
func (s *GormStore) CreatePlant(ctx context.Context, p *model.Plant) error {
	normalizePlant(p)
	return translate(s.db.WithContext(ctx).Create(p).Error)
}

// ListPlants returns the user's plants, newest first.
func (s *GormStore) ListPlants(ctx context.Context, userID string) ([]model.Plant, error) {
	var plants []model.Plant
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&plants).Error
	if err != nil {
		return nil, translate(err)
	}
	return plants, nil
}

// GetPlant loads a plant owned by userID.
func (s *GormStore) GetPlant(ctx context.Context, userID string, id uuid.UUID) (*model.Plant, error) {
	var plant model.Plant
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&plant).Error
	if err != nil {
		return nil, translate(err)
	}
	return &plant, nil
}

// FindPlantByName looks a plant up by case-insensitive name within the user's collection.
func (s *GormStore) FindPlantByName(ctx context.Context, userID, name string) (*model.Plant, error) {
	var plant model.Plant
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND LOWER(name) = ?", userID, strings.ToLower(strings.TrimSpace(name))).
		Order("created_at ASC").
		First(&plant).Error
	if err != nil {
		return nil, translate(err)
	}
	return &plant, nil
}

// UpdatePlant writes the editable plant columns, matching on id and owner.
// next_watering is written only when reschedule is set, and then only if
// last_watered still holds the value p was read with; otherwise ErrStale.
func (s *GormStore) UpdatePlant(ctx context.Context, p *model.Plant, reschedule bool) error {
	normalizePlant(p)
	fields := map[string]interface{}{
		"name":            p.Name,
		"species":         p.Species,
		"location":        p.Location,
		"image_url":       p.ImageURL,
		"notes":           p.Notes,
		"purchase_date":   p.PurchaseDate,
		"water_amount":    p.WaterAmount,
		"water_frequency": p.WaterFrequency,
		"updated_at":      p.UpdatedAt,
	}

	q := s.db.WithContext(ctx).
		Model(&model.Plant{}).
		Where("id = ? AND user_id = ?", p.ID, p.UserID)
	if reschedule {
		fields["next_watering"] = p.NextWatering
		if p.LastWatered == nil {
			q = q.Where("last_watered IS NULL")
		} else {
			q = q.Where("last_watered = ?", *p.LastWatered)
		}
	}

	res := q.Updates(fields)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		if reschedule {
			if _, err := s.GetPlant(ctx, p.UserID, p.ID); err == nil {
				return ErrStale
			}
		}
		return ErrNotFound
	}
	return nil
}

// DeletePlant removes a plant with its watering history and notifications.
func (s *GormStore) DeletePlant(ctx context.Context, userID string, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Plant{})
		if res.Error != nil {
			return translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("plant_id = ? AND user_id = ?", id, userID).Delete(&model.WateringEvent{}).Error; err != nil {
			return translate(err)
		}
		if err := tx.Where("plant_id = ? AND user_id = ?", id, userID).Delete(&model.Notification{}).Error; err != nil {
			return translate(err)
		}
		return nil
	})
}

// FindOverdue returns every plant, across all users, whose next watering is at or before now.
func (s *GormStore) FindOverdue(ctx context.Context, now time.Time) ([]model.Plant, error) {
	var plants []model.Plant
	err := s.db.WithContext(ctx).
		Where("next_watering IS NOT NULL AND next_watering <= ?", now.UTC()).
		Order("next_watering ASC").
		Find(&plants).Error
	if err != nil {
		return nil, translate(err)
	}
	return plants, nil
}

// UpdatePlantSchedule sets last_watered and next_watering with a single
// conditional update on id and owner, then returns the stored plant.
func (s *GormStore) UpdatePlantSchedule(ctx context.Context, userID string, plantID uuid.UUID, lastWatered, nextWatering time.Time) (*model.Plant, error) {
	res := s.db.WithContext(ctx).
		Model(&model.Plant{}).
		Where("id = ? AND user_id = ?", plantID, userID).
		Updates(map[string]interface{}{
			"last_watered":  lastWatered.UTC(),
			"next_watering": nextWatering.UTC(),
			"updated_at":    time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetPlant(ctx, userID, plantID)
}

func normalizePlant(p *model.Plant) {
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	p.NextWatering = utcPtr(p.NextWatering)
	p.LastWatered = utcPtr(p.LastWatered)
	p.PurchaseDate = utcPtr(p.PurchaseDate)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return ErrDuplicate
	default:
		return err
	}
}

// isUniqueViolation catches drivers that do not implement gorm's error translator.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
