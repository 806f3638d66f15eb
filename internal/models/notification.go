package models

import "time"

// Notification is a user-facing message. Column names follow the table the
// front-end already reads from.
type Notification struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID string `gorm:"size:64;index;not null" json:"user_id"`

	Title string `gorm:"column:titulo;size:200;not null" json:"titulo"`
	Body  string `gorm:"column:mensaje;type:text;not null" json:"mensaje"`
	Type  string `gorm:"column:tipo;size:50;not null" json:"tipo"`
	Read  bool   `gorm:"column:leida;not null" json:"leida"`

	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
