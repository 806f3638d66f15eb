package models

import (
	"time"

	"gorm.io/datatypes"
)

type OutboxEvent struct {
	ID string `gorm:"type:uuid;primaryKey" json:"id"`

	AggregateType string         `gorm:"size:50;not null" json:"aggregate_type"`
	AggregateID   string         `gorm:"size:64;index;not null" json:"aggregate_id"`
	EventType     string         `gorm:"size:100;not null" json:"event_type"`
	Payload       datatypes.JSON `gorm:"type:jsonb;not null" json:"payload"`

	Attempts    int        `gorm:"not null" json:"attempts"`
	LastError   string     `gorm:"type:text" json:"last_error"`
	DeliveredAt *time.Time `gorm:"index" json:"delivered_at"`

	CreatedAt time.Time `json:"created_at"`
}
