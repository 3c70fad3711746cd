package model

import "time"

// Profile holds contact details for an authenticated user.
type Profile struct {
	UserID         string    `gorm:"primaryKey" json:"id"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name,omitempty"`
	WhatsAppNumber string    `gorm:"column:whatsapp_number;index" json:"whatsapp_number,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
