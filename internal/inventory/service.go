package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/Just-andreew/aquagen-farm/pkg/db/models"
	"github.com/Just-andreew/aquagen-farm/pkg/enums"
	pkgerrors "github.com/Just-andreew/aquagen-farm/pkg/errors"
	"github.com/Just-andreew/aquagen-farm/pkg/logger"
	"github.com/Just-andreew/aquagen-farm/pkg/outbox"
	"github.com/Just-andreew/aquagen-farm/pkg/outbox/payloads"
	pkgpagination "github.com/Just-andreew/aquagen-farm/pkg/pagination"
	"github.com/Just-andreew/aquagen-farm/pkg/types"
)

type transactor interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type inventoryRepository interface {
	CreateTx(tx *gorm.DB, item *models.InventoryItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*models.InventoryItem, error)
	UpdateQuantityTx(tx *gorm.DB, item *models.InventoryItem) error
	InsertHistoryTx(tx *gorm.DB, entry *models.InventoryHistoryEntry) error
	List(ctx context.Context, opts listQuery) ([]models.InventoryItem, error)
	ListHistory(ctx context.Context, opts historyQuery) ([]models.InventoryHistoryEntry, error)
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ConsumePair declares one item/quantity to deduct.
type ConsumePair struct {
	ItemID   uuid.UUID
	Quantity decimal.Decimal
}

// AddItemInput holds the fields required to register a new stock item.
type AddItemInput struct {
	Name     string
	Quantity decimal.Decimal
	Unit     string
}

// ListParams are the inputs for item listings.
type ListParams struct {
	Status string
	Limit  int
	Cursor string
}

// ListResult carries one page of items plus the next cursor.
type ListResult struct {
	Items  []models.InventoryItem `json:"items"`
	Cursor string                 `json:"cursor"`
}

// HistoryParams are the inputs for audit trail listings.
type HistoryParams struct {
	ItemID *uuid.UUID
	From   *time.Time
	To     *time.Time
	Limit  int
	Cursor string
}

// HistoryResult carries one page of history entries plus the next cursor.
type HistoryResult struct {
	Entries []models.InventoryHistoryEntry `json:"entries"`
	Cursor  string                         `json:"cursor"`
}

// Service exposes the stock ledger: item registration, delta application with
// clamping and audit, batch consumption, and read paths.
type Service interface {
	AddItem(ctx context.Context, input AddItemInput, actor types.Actor) (*models.InventoryItem, error)
	ApplyDelta(ctx context.Context, itemID uuid.UUID, delta decimal.Decimal, reason string, actor types.Actor) (*models.InventoryItem, error)
	ConsumeMany(ctx context.Context, pairs []ConsumePair, reason string, actor types.Actor) error
	GetItem(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	ListItems(ctx context.Context, params ListParams) (*ListResult, error)
	ListHistory(ctx context.Context, params HistoryParams) (*HistoryResult, error)
}

type service struct {
	db     transactor
	repo   inventoryRepository
	events outboxEmitter
	logg   *logger.Logger
	now    func() time.Time
}

// NewService builds the inventory service.
func NewService(db transactor, repo inventoryRepository, events outboxEmitter, logg *logger.Logger) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("transactor required")
	}
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{
		db:     db,
		repo:   repo,
		events: events,
		logg:   logg,
		now:    time.Now,
	}, nil
}

func (s *service) AddItem(ctx context.Context, input AddItemInput, actor types.Actor) (*models.InventoryItem, error) {
	name := strings.TrimSpace(input.Name)
	unit := strings.TrimSpace(input.Unit)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	}
	if unit == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit is required")
	}
	if input.Quantity.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor identity missing")
	}

	now := s.now()
	item := &models.InventoryItem{
		ItemName:    name,
		Quantity:    input.Quantity,
		Unit:        unit,
		Status:      DeriveStatus(input.Quantity),
		LastUpdated: now,
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inventory item")
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventInventoryItemAdded,
			AggregateType: enums.AggregateInventoryItem,
			AggregateID:   item.ID,
			Actor:         actorRef(actor),
			Data: payloads.InventoryItemAddedEvent{
				ItemID:   item.ID,
				ItemName: item.ItemName,
				Quantity: item.Quantity,
				Unit:     item.Unit,
				Status:   item.Status,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) ApplyDelta(ctx context.Context, itemID uuid.UUID, delta decimal.Decimal, reason string, actor types.Actor) (*models.InventoryItem, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason is required")
	}
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor identity missing")
	}

	var updated *models.InventoryItem
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		item, err := s.repo.FindByIDForUpdate(tx, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock inventory item")
		}

		prevStatus := item.Status
		item.Quantity = ClampQuantity(item.Quantity.Add(delta))
		item.Status = DeriveStatus(item.Quantity)
		item.LastUpdated = s.now()

		if err := s.repo.UpdateQuantityTx(tx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update inventory item")
		}

		// the audit trail keeps the raw signed delta, not the clamped effect
		entry := &models.InventoryHistoryEntry{
			ItemID:        item.ID,
			ItemName:      item.ItemName,
			Change:        delta,
			ChangedBy:     actor.UserID,
			ChangedByName: actor.Name,
			Reason:        reason,
		}
		if err := s.repo.InsertHistoryTx(tx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append inventory history")
		}

		if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventInventoryDeltaApplied,
			AggregateType: enums.AggregateInventoryItem,
			AggregateID:   item.ID,
			Actor:         actorRef(actor),
			Data: payloads.InventoryDeltaAppliedEvent{
				ItemID:        item.ID,
				ItemName:      item.ItemName,
				Change:        delta,
				QuantityAfter: item.Quantity,
				Status:        item.Status,
				Reason:        reason,
			},
		}); err != nil {
			return err
		}

		if alert, ok := stockAlertEvent(prevStatus, item); ok {
			if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     alert,
				AggregateType: enums.AggregateInventoryItem,
				AggregateID:   item.ID,
				Actor:         actorRef(actor),
				Data: payloads.InventoryStockAlertEvent{
					ItemID:   item.ID,
					ItemName: item.ItemName,
					Quantity: item.Quantity,
					Unit:     item.Unit,
					Status:   item.Status,
				},
			}); err != nil {
				return err
			}
		}

		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ConsumeMany applies each pair as an independent deduction. A failure on one
// item never blocks the remaining entries; errors are aggregated for the caller.
func (s *service) ConsumeMany(ctx context.Context, pairs []ConsumePair, reason string, actor types.Actor) error {
	var errs error
	for _, pair := range pairs {
		if pair.Quantity.Sign() <= 0 {
			errs = multierr.Append(errs, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %s: consume quantity must be positive", pair.ItemID)))
			continue
		}
		if _, err := s.ApplyDelta(ctx, pair.ItemID, pair.Quantity.Neg(), reason, actor); err != nil {
			if s.logg != nil {
				logCtx := s.logg.WithFields(ctx, map[string]any{"item_id": pair.ItemID.String(), "error": err.Error()})
				s.logg.Warn(logCtx, "consume entry failed")
			}
			errs = multierr.Append(errs, fmt.Errorf("item %s: %w", pair.ItemID, err))
		}
	}
	return errs
}

func (s *service) GetItem(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup inventory item")
	}
	return item, nil
}

func (s *service) ListItems(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Status != "" {
		if _, err := enums.ParseStockStatus(params.Status); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
	}

	limit := pkgpagination.NormalizeLimit(params.Limit)
	query := listQuery{
		status: params.Status,
		limit:  pkgpagination.LimitWithBuffer(params.Limit),
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inventory items")
	}

	nextCursor := ""
	if len(rows) > limit {
		nextCursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{
			CreatedAt: rows[limit].CreatedAt,
			ID:        rows[limit].ID,
		})
		rows = rows[:limit]
	}

	return &ListResult{Items: rows, Cursor: nextCursor}, nil
}

func (s *service) ListHistory(ctx context.Context, params HistoryParams) (*HistoryResult, error) {
	limit := pkgpagination.NormalizeLimit(params.Limit)
	query := historyQuery{
		itemID: params.ItemID,
		from:   params.From,
		to:     params.To,
		limit:  pkgpagination.LimitWithBuffer(params.Limit),
	}
	if params.Cursor != "" {
		cursor, err := pkgpagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, err := s.repo.ListHistory(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inventory history")
	}

	nextCursor := ""
	if len(rows) > limit {
		nextCursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{
			CreatedAt: rows[limit].CreatedAt,
			ID:        rows[limit].ID,
		})
		rows = rows[:limit]
	}

	return &HistoryResult{Entries: rows, Cursor: nextCursor}, nil
}

// stockAlertEvent reports the alert event to emit when a mutation degrades the
// item's status.
func stockAlertEvent(prev enums.StockStatus, item *models.InventoryItem) (enums.OutboxEventType, bool) {
	if item.Status == prev {
		return "", false
	}
	switch item.Status {
	case enums.StockStatusOutOfStock:
		return enums.EventInventoryStockOut, true
	case enums.StockStatusLow:
		if prev == enums.StockStatusInStock {
			return enums.EventInventoryStockLow, true
		}
	}
	return "", false
}

func actorRef(actor types.Actor) *outbox.ActorRef {
	if actor.UserID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{
		UserID: actor.UserID,
		Name:   actor.Name,
		Role:   actor.Role.String(),
	}
}
