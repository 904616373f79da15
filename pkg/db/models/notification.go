package models

import (
	"time"

	"github.com/Just-andreew/aquagen-farm/pkg/enums"
	"github.com/google/uuid"
)

// Notification is an in-app message. A nil UserID means a broadcast visible to
// every active user.
type Notification struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    *uuid.UUID             `gorm:"column:user_id;type:uuid;index"`
	Type      enums.NotificationType `gorm:"column:type;type:notification_type_enum;not null"`
	Title     string                 `gorm:"column:title;not null"`
	Message   string                 `gorm:"column:message;not null"`
	ReadAt    *time.Time             `gorm:"column:read_at"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}

func (Notification) TableName() string { return "notifications" }
