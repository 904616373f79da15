package payloads

import (
	"time"

	"github.com/Just-andreew/aquagen-farm/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryItemAddedEvent announces a new stock item.
type InventoryItemAddedEvent struct {
	ItemID   uuid.UUID         `json:"item_id"`
	ItemName string            `json:"item_name"`
	Quantity decimal.Decimal   `json:"quantity"`
	Unit     string            `json:"unit"`
	Status   enums.StockStatus `json:"status"`
}

// InventoryDeltaAppliedEvent records one quantity change. Change carries the
// raw signed delta; QuantityAfter is the clamped stored value.
type InventoryDeltaAppliedEvent struct {
	ItemID        uuid.UUID         `json:"item_id"`
	ItemName      string            `json:"item_name"`
	Change        decimal.Decimal   `json:"change"`
	QuantityAfter decimal.Decimal   `json:"quantity_after"`
	Status        enums.StockStatus `json:"status"`
	Reason        string            `json:"reason"`
}

// InventoryStockAlertEvent is emitted when an item degrades to low or
// out_of_stock.
type InventoryStockAlertEvent struct {
	ItemID   uuid.UUID         `json:"item_id"`
	ItemName string            `json:"item_name"`
	Quantity decimal.Decimal   `json:"quantity"`
	Unit     string            `json:"unit"`
	Status   enums.StockStatus `json:"status"`
}

// TaskConsumedItem mirrors a consumption declaration applied on completion.
type TaskConsumedItem struct {
	ItemID   uuid.UUID       `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// TaskCompletedEvent announces the first (and only) completion of a task.
type TaskCompletedEvent struct {
	TaskID        uuid.UUID          `json:"task_id"`
	Title         string             `json:"title"`
	CompletedBy   uuid.UUID          `json:"completed_by"`
	CompletedAt   time.Time          `json:"completed_at"`
	ConsumedItems []TaskConsumedItem `json:"consumed_items,omitempty"`
}

// EmergencyReportedEvent announces a new incident.
type EmergencyReportedEvent struct {
	ReportID       uuid.UUID               `json:"report_id"`
	Title          string                  `json:"title"`
	Severity       enums.EmergencySeverity `json:"severity"`
	ReportedBy     uuid.UUID               `json:"reported_by"`
	ReportedByName string                  `json:"reported_by_name"`
}
