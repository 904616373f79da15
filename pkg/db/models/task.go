package models

import (
	"time"

	dbtypes "github.com/Just-andreew/aquagen-farm/pkg/db/types"
	"github.com/Just-andreew/aquagen-farm/pkg/enums"
	"github.com/google/uuid"
)

// Task is a unit of farm work moving through the todo/in_progress/done
// workflow. ConsumedAt marks the first arrival at done, which is the only
// point the consumption declarations are applied to inventory.
type Task struct {
	ID                uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title             string                    `gorm:"column:title;not null"`
	Description       string                    `gorm:"column:description;not null;default:''"`
	Status            enums.TaskStatus          `gorm:"column:status;type:task_status_enum;not null"`
	AssignedTo        *uuid.UUID                `gorm:"column:assigned_to;type:uuid"`
	AssignedToName    *string                   `gorm:"column:assigned_to_name"`
	CreatedBy         uuid.UUID                 `gorm:"column:created_by;type:uuid;not null"`
	UpdatedBy         *uuid.UUID                `gorm:"column:updated_by;type:uuid"`
	DueDate           *time.Time                `gorm:"column:due_date"`
	ConsumedInventory dbtypes.ConsumedInventory `gorm:"column:consumed_inventory;type:jsonb;not null;default:'[]'"`
	ConsumedAt        *time.Time                `gorm:"column:consumed_at"`
	CreatedAt         time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}

func (Task) TableName() string { return "tasks" }
