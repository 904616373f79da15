package types

import (
	"github.com/Just-andreew/aquagen-farm/pkg/enums"
	"github.com/google/uuid"
)

// Actor identifies the authenticated user performing a mutation. Name is
// denormalized into audit rows so the trail stays readable after staff churn.
type Actor struct {
	UserID uuid.UUID
	Name   string
	Role   enums.UserRole
}
