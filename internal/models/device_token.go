package models

import "time"

type DeviceToken struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	UserID     string `gorm:"size:64;index;not null" json:"user_id"`
	Token      string `gorm:"size:512;uniqueIndex;not null" json:"-"`
	DeviceInfo string `gorm:"size:255" json:"device_info"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (DeviceToken) TableName() string { return "fcm_tokens" }
