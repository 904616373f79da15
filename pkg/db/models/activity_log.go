package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ActivityLog records a technician activity. Feeding entries carry the feed
// item and amount that were deducted from inventory when the log was created.
type ActivityLog struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TechnicianID    uuid.UUID           `gorm:"column:technician_id;type:uuid;not null;index"`
	TechnicianName  string              `gorm:"column:technician_name;not null"`
	AnimalType      string              `gorm:"column:animal_type;not null"`
	EventType       string              `gorm:"column:event_type;not null;index"`
	Description     string              `gorm:"column:description;not null;default:''"`
	FeedItemID      *uuid.UUID          `gorm:"column:feed_item_id;type:uuid"`
	FeedAmount      decimal.NullDecimal `gorm:"column:feed_amount;type:numeric(14,3)"`
	AttachedFileURL *string             `gorm:"column:attached_file_url"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime;index"`
}

func (ActivityLog) TableName() string { return "activity_logs" }
