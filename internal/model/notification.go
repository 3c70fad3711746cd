package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TypeWateringReminder tags notifications emitted by the overdue scan.
const TypeWateringReminder = "watering_reminder"

// DayBucketLayout formats the UTC calendar day used by the reminder uniqueness constraint.
const DayBucketLayout = "2006-01-02"

// Notification is an in-app message addressed to a plant's owner.
//
// DayBucket is only populated for scan-created reminders. Together with PlantID and
// Type it forms a unique key, so at most one scan reminder per plant per UTC day can
// be stored no matter how many scans race. Rows with a NULL bucket never collide.
type Notification struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string     `gorm:"index;not null" json:"user_id"`
	PlantID      uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_notifications_dedup,priority:1" json:"plant_id"`
	Type         string     `gorm:"not null;uniqueIndex:idx_notifications_dedup,priority:2" json:"type"`
	DayBucket    *string    `gorm:"size:10;uniqueIndex:idx_notifications_dedup,priority:3" json:"-"`
	Title        string     `gorm:"not null" json:"title"`
	Message      string     `gorm:"type:text;not null" json:"message"`
	IsRead       bool       `gorm:"not null;default:false" json:"is_read"`
	ReadAt       *time.Time `json:"read_at,omitempty"`
	ScheduledFor time.Time  `json:"scheduled_for"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
}

func (n *Notification) BeforeCreate(*gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// DayBucketFor returns the bucket key for t.
func DayBucketFor(t time.Time) *string {
	bucket := t.UTC().Format(DayBucketLayout)
	return &bucket
}
