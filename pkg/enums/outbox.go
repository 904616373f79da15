package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateInventoryItem OutboxAggregateType = "inventory_item"
	AggregateTask          OutboxAggregateType = "task"
	AggregateActivityLog   OutboxAggregateType = "activity_log"
	AggregateEmergency     OutboxAggregateType = "emergency_report"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateInventoryItem,
	AggregateTask,
	AggregateActivityLog,
	AggregateEmergency,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventInventoryItemAdded    OutboxEventType = "inventory_item_added"
	EventInventoryDeltaApplied OutboxEventType = "inventory_delta_applied"
	EventInventoryStockLow     OutboxEventType = "inventory_stock_low"
	EventInventoryStockOut     OutboxEventType = "inventory_stock_out"
	EventTaskCompleted         OutboxEventType = "task_completed"
	EventEmergencyReported     OutboxEventType = "emergency_reported"
)

var validOutboxEventTypes = []OutboxEventType{
	EventInventoryItemAdded,
	EventInventoryDeltaApplied,
	EventInventoryStockLow,
	EventInventoryStockOut,
	EventTaskCompleted,
	EventEmergencyReported,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
