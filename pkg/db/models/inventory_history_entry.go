package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryHistoryEntry is an append-only record of a quantity change. Change
// keeps the raw signed delta even when the stored quantity clamped at zero.
// ItemName is denormalized so the trail survives item deletion.
type InventoryHistoryEntry struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ItemID        uuid.UUID       `gorm:"column:item_id;type:uuid;not null;index"`
	ItemName      string          `gorm:"column:item_name;not null"`
	Change        decimal.Decimal `gorm:"column:change;type:numeric(14,3);not null"`
	ChangedBy     uuid.UUID       `gorm:"column:changed_by;type:uuid;not null"`
	ChangedByName string          `gorm:"column:changed_by_name;not null"`
	Reason        string          `gorm:"column:reason;not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (InventoryHistoryEntry) TableName() string { return "inventory_history_entries" }
