package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConsumedItem pairs an inventory item with the quantity a task consumes on
// completion.
type ConsumedItem struct {
	ItemID   uuid.UUID       `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// ConsumedInventory is the JSONB list of consumption declarations stored on a
// task row.
type ConsumedInventory []ConsumedItem

func (c *ConsumedInventory) Scan(src any) error {
	if src == nil {
		*c = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("ConsumedInventory: unsupported Scan type %T", src)
	}
}

func (c ConsumedInventory) Value() (driver.Value, error) {
	if len(c) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}
