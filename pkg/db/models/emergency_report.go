package models

import (
	"time"

	"github.com/Just-andreew/aquagen-farm/pkg/enums"
	"github.com/google/uuid"
)

// EmergencyReport captures an incident raised by farm staff.
type EmergencyReport struct {
	ID             uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title          string                  `gorm:"column:title;not null"`
	Description    string                  `gorm:"column:description;not null;default:''"`
	Severity       enums.EmergencySeverity `gorm:"column:severity;type:emergency_severity_enum;not null"`
	ReportedBy     uuid.UUID               `gorm:"column:reported_by;type:uuid;not null"`
	ReportedByName string                  `gorm:"column:reported_by_name;not null"`
	CreatedAt      time.Time               `gorm:"column:created_at;autoCreateTime"`
}

func (EmergencyReport) TableName() string { return "emergency_reports" }
