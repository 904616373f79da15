package models

import (
	"time"

	"github.com/Just-andreew/aquagen-farm/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryItem tracks on-hand stock for a single supply item. Quantity never
// goes below zero and Status is always consistent with Quantity.
type InventoryItem struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ItemName    string            `gorm:"column:item_name;not null"`
	Quantity    decimal.Decimal   `gorm:"column:quantity;type:numeric(14,3);not null;default:0"`
	Unit        string            `gorm:"column:unit;not null"`
	Status      enums.StockStatus `gorm:"column:status;type:stock_status_enum;not null"`
	LastUpdated time.Time         `gorm:"column:last_updated;not null"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
}

func (InventoryItem) TableName() string { return "inventory_items" }
