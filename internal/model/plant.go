package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Plant is a houseplant registered by a user together with its watering schedule.
type Plant struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         string     `gorm:"index;not null" json:"user_id"`
	Name           string     `gorm:"not null" json:"name"`
	Species        string     `json:"species"`
	Location       string     `json:"location,omitempty"`
	ImageURL       string     `json:"image_url,omitempty"`
	Notes          string     `gorm:"type:text" json:"notes,omitempty"`
	PurchaseDate   *time.Time `json:"purchase_date,omitempty"`
	WaterAmount    int        `gorm:"not null" json:"water_amount"`
	WaterFrequency int        `gorm:"not null" json:"water_frequency"`
	LastWatered    *time.Time `json:"last_watered"`
	NextWatering   *time.Time `gorm:"index" json:"next_watering"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// BeforeCreate assigns a random identifier when none was provided.
func (p *Plant) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
