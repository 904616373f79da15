package activity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Just-andreew/aquagen-farm/pkg/db/models"
	pkgerrors "github.com/Just-andreew/aquagen-farm/pkg/errors"
	"github.com/Just-andreew/aquagen-farm/pkg/logger"
	pkgpagination "github.com/Just-andreew/aquagen-farm/pkg/pagination"
	"github.com/Just-andreew/aquagen-farm/pkg/types"
)

// EventTypeFeeding is the log event type carrying the inventory side effect.
const EventTypeFeeding = "feeding"

type activityRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) (*models.ActivityLog, error)
	List(ctx context.Context, opts listQuery) ([]models.ActivityLog, error)
}

type feedDeducter interface {
	ApplyDelta(ctx context.Context, itemID uuid.UUID, delta decimal.Decimal, reason string, actor types.Actor) (*models.InventoryItem, error)
}

// CreateLogInput holds the fields accepted when recording an activity.
type CreateLogInput struct {
	AnimalType      string
	EventType       string
	Description     string
	FeedItemID      *uuid.UUID
	FeedAmount      *decimal.Decimal
	AttachedFileURL *string
}

// ListParams are the inputs for log listings.
type ListParams struct {
	AnimalType string
	EventType  string
	Technician *uuid.UUID
	From       *time.Time
	To         *time.Time
	Limit      int
	Cursor     string
}

// ListResult carries one page of log entries plus the next cursor.
type ListResult struct {
	Logs   []models.ActivityLog `json:"logs"`
	Cursor string               `json:"cursor"`
}

// Service exposes the activity log operations.
type Service interface {
	CreateLog(ctx context.Context, input CreateLogInput, actor types.Actor) (*models.ActivityLog, error)
	ListLogs(ctx context.Context, params ListParams) (*ListResult, error)
}

type service struct {
	repo      activityRepository
	inventory feedDeducter
	logg      *logger.Logger
}

// NewService builds the activity log service.
func NewService(repo activityRepository, inventory feedDeducter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("activity repository required")
	}
	if inventory == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	return &service{repo: repo, inventory: inventory, logg: logg}, nil
}

// CreateLog records the activity. Feeding entries deduct the fed amount from
// inventory first; a failed deduction fails the log so the caller learns the
// feed item is unusable.
func (s *service) CreateLog(ctx context.Context, input CreateLogInput, actor types.Actor) (*models.ActivityLog, error) {
	animalType := strings.TrimSpace(input.AnimalType)
	eventType := strings.TrimSpace(input.EventType)
	if animalType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "animal_type is required")
	}
	if eventType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event_type is required")
	}
	if actor.UserID == uuid.Nil || strings.TrimSpace(actor.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor identity missing")
	}

	entry := &models.ActivityLog{
		TechnicianID:    actor.UserID,
		TechnicianName:  actor.Name,
		AnimalType:      animalType,
		EventType:       eventType,
		Description:     strings.TrimSpace(input.Description),
		AttachedFileURL: input.AttachedFileURL,
	}

	if eventType == EventTypeFeeding {
		if input.FeedItemID == nil || input.FeedAmount == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "feeding logs require feed_item_id and feed_amount")
		}
		if input.FeedAmount.Sign() <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "feed_amount must be positive")
		}

		reason := fmt.Sprintf("Fed to %s", animalType)
		if _, err := s.inventory.ApplyDelta(ctx, *input.FeedItemID, input.FeedAmount.Neg(), reason, actor); err != nil {
			return nil, err
		}
		entry.FeedItemID = input.FeedItemID
		entry.FeedAmount = decimal.NullDecimal{Decimal: *input.FeedAmount, Valid: true}
	} else if input.FeedItemID != nil || input.FeedAmount != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "feed fields are only valid on feeding logs")
	}

	created, err := s.repo.Create(ctx, entry)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create activity log")
	}
	return created, nil
}

func (s *service) ListLogs(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.From != nil && params.To != nil && params.To.Before(*params.From) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "to must not precede from")
	}

	limit := pkgpagination.NormalizeLimit(params.Limit)
	query := listQuery{
		animalType: strings.TrimSpace(params.AnimalType),
		eventType:  strings.TrimSpace(params.EventType),
		technician: params.Technician,
		from:       params.From,
		to:         params.To,
		limit:      pkgpagination.LimitWithBuffer(params.Limit),
	}
	if params.Cursor != "" {
		cursor, err := pkgpagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list activity logs")
	}

	nextCursor := ""
	if len(rows) > limit {
		nextCursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{
			CreatedAt: rows[limit].CreatedAt,
			ID:        rows[limit].ID,
		})
		rows = rows[:limit]
	}

	return &ListResult{Logs: rows, Cursor: nextCursor}, nil
}
