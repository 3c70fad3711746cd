package store

import (
	"context"

	"github.com/pathakanu/myPlants/internal/model"
	"gorm.io/gorm/clause"
)

// GetProfile loads the user's profile.
func (s *GormStore) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	var profile model.Profile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

// UpsertProfile creates the profile or overwrites its contact fields.
func (s *GormStore) UpsertProfile(ctx context.Context, p *model.Profile) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "full_name", "whatsapp_number", "updated_at"}),
	}).Create(p).Error
	return translate(err)
}

// FindProfileByWhatsApp resolves a WhatsApp sender number to a profile.
func (s *GormStore) FindProfileByWhatsApp(ctx context.Context, number string) (*model.Profile, error) {
	var profile model.Profile
	if err := s.db.WithContext(ctx).Where("whatsapp_number = ?", number).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}
