package models

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrActivityImmutable is returned when something tries to rewrite history.
var ErrActivityImmutable = errors.New("activity records are append-only")

// Activity is one entry of the audit trail. Rows are written once and never
// updated or deleted.
type Activity struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time         `gorm:"index;not null" json:"created_at"`
	ActorID       *uint             `gorm:"index" json:"actor_id"`
	ActorName     string            `gorm:"size:64" json:"actor_name"`
	Category      string            `gorm:"size:32;index;not null" json:"category"`
	Description   string            `gorm:"size:255;not null" json:"description"`
	SessionID     *uint             `gorm:"index" json:"session_id"`
	EntityType    string            `gorm:"size:64;index" json:"entity_type"`
	EntityID      string            `gorm:"size:64" json:"entity_id"`
	Fingerprint   string            `gorm:"size:160;index" json:"fingerprint"`
	CorrelationID string            `gorm:"size:64" json:"correlation_id"`
	Metadata      datatypes.JSONMap `gorm:"type:json" json:"metadata"`
}

// TableName pins the table name.
func (Activity) TableName() string {
	return "activities"
}

// BeforeUpdate blocks updates through the ORM.
func (a *Activity) BeforeUpdate(tx *gorm.DB) error {
	return ErrActivityImmutable
}

// BeforeDelete blocks deletes through the ORM.
func (a *Activity) BeforeDelete(tx *gorm.DB) error {
	return ErrActivityImmutable
}
