package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WateringEvent records a single act of watering. Rows are never updated.
type WateringEvent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlantID   uuid.UUID `gorm:"type:uuid;index;not null" json:"plant_id"`
	UserID    string    `gorm:"index;not null" json:"user_id"`
	Amount    int       `gorm:"not null" json:"amount"`
	Notes     *string   `gorm:"type:text" json:"notes"`
	WateredAt time.Time `gorm:"index;not null" json:"watered_at"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName keeps the historical table name.
func (WateringEvent) TableName() string {
	return "watering_history"
}

func (e *WateringEvent) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
